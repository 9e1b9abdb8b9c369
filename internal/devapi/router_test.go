package devapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tillpad/internal/devapi"
)

var tokenPattern = regexp.MustCompile(`<meta name="csrf-token" content="([^"]+)">`)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := devapi.NewStore()
	devapi.Seed(store)

	srv := httptest.NewServer(devapi.New(devapi.NewHandler(store, devapi.NewCSRF("test-secret")), []string{"*"}))
	t.Cleanup(srv.Close)

	return srv
}

func fetchToken(t *testing.T, srv *httptest.Server) string {
	t.Helper()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	m := tokenPattern.FindSubmatch(body)
	require.NotNil(t, m, "landing page carries the token")

	return string(m[1])
}

func call(t *testing.T, srv *httptest.Server, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader

	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("X-CSRFToken", token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func TestRouter_CSRF(t *testing.T) {
	srv := newServer(t)
	token := fetchToken(t, srv)

	type testCase struct {
		name   string
		token  string
		status int
	}

	tests := []testCase{
		{name: "missing token", token: "", status: http.StatusForbidden},
		{name: "forged token", token: "not-a-jwt", status: http.StatusForbidden},
		{name: "valid token", token: token, status: http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(t, srv, http.MethodPost, "/api/temp_bills", tt.token, map[string]any{})
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}

	resp := call(t, srv, http.MethodGet, "/products", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "reads need no token")
}

func TestCSRF_OtherSecret(t *testing.T) {
	token, err := devapi.NewCSRF("one").Issue()
	require.NoError(t, err)

	require.NoError(t, devapi.NewCSRF("one").Verify(token))
	assert.ErrorIs(t, devapi.NewCSRF("two").Verify(token), devapi.ErrBadToken)
}

func TestRouter_BillLifecycle(t *testing.T) {
	srv := newServer(t)
	token := fetchToken(t, srv)

	resp := call(t, srv, http.MethodPost, "/api/temp_bills", token, map[string]any{"client_id": 1})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Success bool   `json:"success"`
		BillID  int64  `json:"bill_id"`
		Number  string `json:"bill_number"`
	}

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.True(t, created.Success)
	assert.True(t, strings.HasPrefix(created.Number, "TEMP-"))

	resp = call(t, srv, http.MethodPost, "/api/temp_bills/1/items", token, map[string]any{"product_id": 5, "quantity": 2})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(t, srv, http.MethodPost, "/api/temp_bills/1/finalize", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(t, srv, http.MethodPost, "/api/temp_bills/1/items", token, map[string]any{"product_id": 5, "quantity": 1})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var failure struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&failure))
	assert.False(t, failure.Success)
	assert.Contains(t, failure.Error, "finalized")

	resp = call(t, srv, http.MethodGet, "/api/temp_bills/1/export/pdf", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), created.Number+".pdf")

	pdf, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	resp = call(t, srv, http.MethodGet, "/api/temp_bills/1/export/doc", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = call(t, srv, http.MethodGet, "/api/temp_bills/1/preview", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var preview struct {
		HTML string `json:"html"`
	}

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&preview))
	assert.Contains(t, preview.HTML, "Havells LED Bulb 9W")
	assert.Contains(t, preview.HTML, "₹198.00")
}

func TestRouter_Errors(t *testing.T) {
	srv := newServer(t)
	token := fetchToken(t, srv)

	type testCase struct {
		name   string
		method string
		path   string
		body   any
		status int
	}

	tests := []testCase{
		{name: "unknown bill", method: http.MethodGet, path: "/api/temp_bills/77", status: http.StatusNotFound},
		{name: "bad bill id", method: http.MethodGet, path: "/api/temp_bills/abc", status: http.StatusBadRequest},
		{name: "unknown client", method: http.MethodGet, path: "/api/clients/77", status: http.StatusNotFound},
		{name: "empty bulk delete", method: http.MethodPost, path: "/bulk_delete", body: map[string]any{"ids": []int64{}}, status: http.StatusBadRequest},
		{name: "negative quantity", method: http.MethodPost, path: "/update_quantity/1", body: map[string]any{"quantity": -4}, status: http.StatusBadRequest},
		{name: "unknown product", method: http.MethodPost, path: "/delete_product/404", status: http.StatusNotFound},
		{name: "zero product id on quick add", method: http.MethodPost, path: "/api/temp_bills/add_item", body: map[string]any{"product_id": 0}, status: http.StatusBadRequest},
		{name: "malformed json", method: http.MethodPost, path: "/update_quantity/1", body: "not an object", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(t, srv, tt.method, tt.path, token, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestRouter_ValidationMessages(t *testing.T) {
	srv := newServer(t)
	token := fetchToken(t, srv)

	resp := call(t, srv, http.MethodPost, "/api/temp_bills", token, map[string]any{})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	type testCase struct {
		name string
		path string
		body any
		want string
	}

	tests := []testCase{
		{name: "item without product", path: "/api/temp_bills/1/items", body: map[string]any{"quantity": 1}, want: "product_id must be greater than 0"},
		{name: "item without quantity", path: "/api/temp_bills/1/items", body: map[string]any{"product_id": 3}, want: "quantity must be greater than 0"},
		{name: "negative stock", path: "/update_quantity/1", body: map[string]any{"quantity": -1}, want: "quantity must be 0 or greater"},
		{name: "empty selection", path: "/bulk_delete", body: map[string]any{"ids": []int64{}}, want: "ids is required"},
		{name: "bad id in selection", path: "/bulk_delete", body: map[string]any{"ids": []int64{1, -2}}, want: "ids[1] must be greater than 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(t, srv, http.MethodPost, tt.path, token, tt.body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var failure struct {
				Error string `json:"error"`
			}

			require.NoError(t, json.NewDecoder(resp.Body).Decode(&failure))
			assert.Equal(t, tt.want, failure.Error)
		})
	}
}
