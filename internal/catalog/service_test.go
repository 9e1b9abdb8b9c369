package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tillpad/internal/catalog"
)

func TestService_BulkDelete(t *testing.T) {
	type args struct {
		ids []int64
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *catalog.MockBackend)
		want      int
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{ids: []int64{3, 5}},
			setupMock: func(m *catalog.MockBackend) {
				m.EXPECT().BulkDelete(gomock.Any(), []int64{3, 5}).Return(2, nil)
			},
			want: 2,
		},
		{
			name:    "EmptySelectionMakesNoRequest",
			args:    args{ids: nil},
			wantErr: catalog.ErrEmptySelection,
		},
		{
			name: "BackendError",
			args: args{ids: []int64{1}},
			setupMock: func(m *catalog.MockBackend) {
				m.EXPECT().BulkDelete(gomock.Any(), gomock.Any()).Return(0, errors.New("forbidden"))
			},
			wantErr: errors.New("any"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := catalog.NewMockBackend(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(m)
			}

			got, err := catalog.NewService(m).BulkDelete(context.Background(), tt.args.ids)

			if tt.wantErr != nil {
				require.Error(t, err)

				if errors.Is(tt.wantErr, catalog.ErrEmptySelection) {
					assert.ErrorIs(t, err, catalog.ErrEmptySelection)
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_SetQuantity(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantQty int
	}{
		{name: "Number", raw: "12", wantQty: 12},
		{name: "Padded", raw: " 7 ", wantQty: 7},
		{name: "Negative", raw: "-3", wantQty: 0},
		{name: "NotANumber", raw: "ten", wantQty: 0},
		{name: "Fraction", raw: "1.5", wantQty: 0},
		{name: "Empty", raw: "", wantQty: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := catalog.NewMockBackend(ctrl)
			m.EXPECT().UpdateQuantity(gomock.Any(), int64(4), tt.wantQty).
				Return(&catalog.QuantityUpdate{NewQuantity: tt.wantQty, IsLowStock: tt.wantQty < 5}, nil)

			got, err := catalog.NewService(m).SetQuantity(context.Background(), 4, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.wantQty, got.NewQuantity)
		})
	}
}

func TestService_Perform(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := catalog.NewMockBackend(ctrl)
	m.EXPECT().DeleteProduct(gomock.Any(), int64(1)).Return(nil)
	m.EXPECT().RestoreProduct(gomock.Any(), int64(2)).Return(errors.New("gone"))

	svc := catalog.NewService(m)
	ctx := context.Background()

	assert.NoError(t, svc.Perform(ctx, catalog.ActionDelete, 1))
	assert.Error(t, svc.Perform(ctx, catalog.ActionRestore, 2))
	assert.ErrorIs(t, svc.Perform(ctx, catalog.ActionEdit, 3), catalog.ErrUnknownAction)
}

func TestService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := catalog.NewMockBackend(ctrl)
	m.EXPECT().ListProducts(gomock.Any(), catalog.ProductQuery{Search: "wire", Page: 1}).
		Return(&catalog.ProductPage{Products: []catalog.Product{{ID: 1}}, CurrentPage: 1, TotalPages: 1, TotalProducts: 1}, nil)

	page, err := catalog.NewService(m).List(context.Background(), catalog.ProductQuery{Search: "wire"})
	require.NoError(t, err)
	assert.Len(t, page.Products, 1)
}

func TestService_SavePriceAndQuantity(t *testing.T) {
	type testCase struct {
		name      string
		form      catalog.ProductForm
		setupMock func(m *catalog.MockBackend)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			form: catalog.ProductForm{Description: "Wire", Price: "120.50", Quantity: "3"},
			setupMock: func(m *catalog.MockBackend) {
				m.EXPECT().UpdatePrice(gomock.Any(), int64(8), 3, decimal.RequireFromString("120.50")).Return(nil)
			},
		},
		{
			name:    "ZeroPrice",
			form:    catalog.ProductForm{Description: "Wire", Price: "0", Quantity: "3"},
			wantErr: catalog.ErrPriceInvalid,
		},
		{
			name:    "NegativeQuantity",
			form:    catalog.ProductForm{Description: "Wire", Price: "1", Quantity: "-1"},
			wantErr: catalog.ErrQuantityInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := catalog.NewMockBackend(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(m)
			}

			err := catalog.NewService(m).SavePriceAndQuantity(context.Background(), 8, tt.form)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestProductForm_Validate(t *testing.T) {
	tests := []struct {
		name    string
		form    catalog.ProductForm
		wantErr []error
	}{
		{name: "Valid", form: catalog.ProductForm{Description: "Bulb", Price: "9.99", Quantity: "0"}},
		{name: "PriceNotANumber", form: catalog.ProductForm{Description: "Bulb", Price: "abc", Quantity: "1"}, wantErr: []error{catalog.ErrPriceInvalid}},
		{name: "QuantityFraction", form: catalog.ProductForm{Description: "Bulb", Price: "1", Quantity: "2.5"}, wantErr: []error{catalog.ErrQuantityInvalid}},
		{
			name:    "AllBad",
			form:    catalog.ProductForm{Price: "-1", Quantity: "x"},
			wantErr: []error{catalog.ErrDescriptionMissing, catalog.ErrPriceInvalid, catalog.ErrQuantityInvalid},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate()
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}

			for _, want := range tt.wantErr {
				assert.ErrorIs(t, err, want)
			}
		})
	}

	assert.Equal(t, "Price must be a positive number", catalog.ValidatePrice("0").Error())
	assert.Equal(t, "Quantity must be 0 or greater", catalog.ValidateQuantity("-2").Error())
}

func TestSelection(t *testing.T) {
	s := catalog.NewSelection()

	assert.False(t, s.Toggle(1), "selection requires bulk mode")
	assert.Equal(t, 0, s.Len())

	require.True(t, s.ToggleBulk())
	assert.True(t, s.Toggle(9))
	assert.True(t, s.Toggle(2))
	assert.True(t, s.Toggle(5))
	assert.False(t, s.Toggle(5))

	assert.Equal(t, []int64{2, 9}, s.IDs())
	assert.True(t, s.Selected(9))
	assert.False(t, s.Selected(5))

	assert.False(t, s.ToggleBulk())
	assert.Empty(t, s.IDs())
}

func TestMenu(t *testing.T) {
	assert.Equal(t, []catalog.Action{catalog.ActionRestore}, catalog.Menu(true))
	assert.Equal(t, []catalog.Action{catalog.ActionEdit, catalog.ActionDelete}, catalog.Menu(false))
	assert.Equal(t, "Restore", catalog.ActionRestore.Label())
}
