package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var ErrNoToken = errors.New("csrf-token meta tag not found")

// TokenSource supplies the anti-forgery token sent with every request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a token from configuration.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

// PageToken reads the token from the csrf-token meta tag of the hosting page
// and caches it until Invalidate.
type PageToken struct {
	url    string
	client *http.Client

	mu    sync.Mutex
	token string
}

func NewPageToken(pageURL string, client *http.Client) *PageToken {
	if client == nil {
		client = http.DefaultClient
	}

	return &PageToken{url: pageURL, client: client}
}

func (p *PageToken) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" {
		return p.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return "", fmt.Errorf("creating token request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &NetworkError{Op: "GET " + p.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &HTTPError{Op: "GET " + p.url, Status: resp.StatusCode}
	}

	token, err := ExtractToken(resp.Body)
	if err != nil {
		return "", err
	}

	p.token = token

	return token, nil
}

// Invalidate drops the cached token so the next call fetches the page again.
func (p *PageToken) Invalidate() {
	p.mu.Lock()
	p.token = ""
	p.mu.Unlock()
}

// ExtractToken finds <meta name="csrf-token" content="..."> in an HTML page.
func ExtractToken(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parsing page: %w", err)
	}

	for n := range doc.Descendants() {
		if n.Type != html.ElementNode || n.DataAtom != atom.Meta {
			continue
		}

		var name, content string

		for _, a := range n.Attr {
			switch strings.ToLower(a.Key) {
			case "name":
				name = a.Val
			case "content":
				content = a.Val
			}
		}

		if strings.EqualFold(name, "csrf-token") && content != "" {
			return content, nil
		}
	}

	return "", ErrNoToken
}
