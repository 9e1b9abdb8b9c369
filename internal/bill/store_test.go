package bill_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tillpad/internal/bill"
)

var (
	productA = bill.Product{ID: 1, Brand: "Anchor", Description: "Switch", UnitPrice: dec("10")}
	productB = bill.Product{ID: 2, Brand: "Havells", Description: "Wire", UnitPrice: dec("250")}
	productC = bill.Product{ID: 3, Brand: "Philips", Description: "Bulb", UnitPrice: dec("99.50")}
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// echoSave answers saves like the backend: temporary ids get numeric ids.
func echoSave(_ context.Context, id int64, snap bill.Snapshot) (*bill.Bill, error) {
	items := make([]bill.LineItem, len(snap.Items))
	for i, it := range snap.Items {
		if it.ID.Temporary() {
			it.ID = bill.ItemID(fmt.Sprintf("%d", 100+it.ProductID))
		}

		items[i] = it
	}

	return &bill.Bill{ID: id, Number: "TEMP-1", Items: items, Status: bill.StatusDraft}, nil
}

func newLoadedStore(t *testing.T, m *bill.MockBackend) *bill.Store {
	t.Helper()

	m.EXPECT().GetBill(gomock.Any(), int64(1)).Return(&bill.Bill{ID: 1, Number: "TEMP-1", Status: bill.StatusDraft}, nil)

	s := bill.NewStore(m, bill.WithLogger(quietLogger()))
	require.NoError(t, s.LoadBill(context.Background(), 1))

	return s
}

func TestStore_AddItem(t *testing.T) {
	type args struct {
		adds []int
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *bill.MockBackend)
		wantQty   int
		wantErr   error
	}

	tests := []testCase{
		{
			name: "MergesSameProduct",
			args: args{adds: []int{2, 3}},
			setupMock: func(m *bill.MockBackend) {
				m.EXPECT().SaveBill(gomock.Any(), int64(1), gomock.Any()).DoAndReturn(echoSave).Times(2)
			},
			wantQty: 5,
		},
		{
			name:    "ZeroQuantity",
			args:    args{adds: []int{0}},
			wantErr: bill.ErrInvalidQuantity,
		},
		{
			name:    "NegativeQuantity",
			args:    args{adds: []int{-2}},
			wantErr: bill.ErrInvalidQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := bill.NewMockBackend(ctrl)
			s := newLoadedStore(t, m)

			if tt.setupMock != nil {
				tt.setupMock(m)
			}

			var err error
			for _, q := range tt.args.adds {
				if err = s.AddItem(context.Background(), productA, q); err != nil {
					break
				}
			}

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, s.Snapshot().Items)

				return
			}

			require.NoError(t, err)

			items := s.Snapshot().Items
			require.Len(t, items, 1)
			assert.Equal(t, tt.wantQty, items[0].Quantity)
			assert.True(t, dec("10").Equal(items[0].UnitPrice))
			assert.Equal(t, "Anchor Switch", items[0].ProductName)
		})
	}
}

func TestStore_UpdateItemQuantity(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := bill.NewMockBackend(ctrl)
	s := newLoadedStore(t, m)
	ctx := context.Background()

	m.EXPECT().SaveBill(gomock.Any(), int64(1), gomock.Any()).DoAndReturn(echoSave).Times(4)

	require.NoError(t, s.AddItem(ctx, productA, 1))
	require.NoError(t, s.AddItem(ctx, productB, 1))

	id := s.Snapshot().Items[0].ID

	found, err := s.UpdateItemQuantity(ctx, id, 7)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 7, s.Snapshot().Items[0].Quantity)

	found, err = s.UpdateItemQuantity(ctx, id, 0)
	require.NoError(t, err)
	assert.True(t, found)

	items := s.Snapshot().Items
	require.Len(t, items, 1)
	assert.Equal(t, productB.ID, items[0].ProductID)

	// Not found is reported, not raised, and does not save.
	found, err = s.UpdateItemQuantity(ctx, "missing", 3)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_AdjustItemQuantity(t *testing.T) {
	type testCase struct {
		name    string
		deltas  []int
		wantQty int // 0 means the line is gone
	}

	tests := []testCase{
		{name: "Increments", deltas: []int{1, 1}, wantQty: 4},
		{name: "Decrements", deltas: []int{-1}, wantQty: 1},
		{name: "RemovesAtZero", deltas: []int{-1, -1}, wantQty: 0},
		{name: "RemovesBelowZero", deltas: []int{-5}, wantQty: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := bill.NewMockBackend(ctrl)
			s := newLoadedStore(t, m)
			ctx := context.Background()

			m.EXPECT().SaveBill(gomock.Any(), int64(1), gomock.Any()).DoAndReturn(echoSave).AnyTimes()

			require.NoError(t, s.AddItem(ctx, productA, 2))

			id := s.Snapshot().Items[0].ID

			for _, d := range tt.deltas {
				found, err := s.AdjustItemQuantity(ctx, id, d)
				require.NoError(t, err)
				assert.True(t, found)
			}

			items := s.Snapshot().Items
			if tt.wantQty == 0 {
				assert.Empty(t, items)
				return
			}

			require.Len(t, items, 1)
			assert.Equal(t, tt.wantQty, items[0].Quantity)
		})
	}
}

func TestStore_AdjustItemQuantityConcurrent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := bill.NewMockBackend(ctrl)
	s := newLoadedStore(t, m)
	ctx := context.Background()

	m.EXPECT().SaveBill(gomock.Any(), int64(1), gomock.Any()).DoAndReturn(echoSave).AnyTimes()

	require.NoError(t, s.AddItem(ctx, productA, 2))

	id := s.Snapshot().Items[0].ID

	var wg sync.WaitGroup

	for range 8 {
		wg.Go(func() {
			_, err := s.AdjustItemQuantity(ctx, id, 1)
			assert.NoError(t, err)
		})
	}

	wg.Wait()

	assert.Equal(t, 10, s.Snapshot().Items[0].Quantity)
}

func TestStore_RemoveItem(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := bill.NewMockBackend(ctrl)
	s := newLoadedStore(t, m)
	ctx := context.Background()

	m.EXPECT().SaveBill(gomock.Any(), int64(1), gomock.Any()).DoAndReturn(echoSave).Times(2)

	require.NoError(t, s.AddItem(ctx, productA, 1))

	id := s.Snapshot().Items[0].ID
	require.NoError(t, s.RemoveItem(ctx, id))
	assert.Empty(t, s.Snapshot().Items)

	// Second removal is a no-op and makes no request.
	require.NoError(t, s.RemoveItem(ctx, id))
	assert.Empty(t, s.Snapshot().Items)
}

func TestStore_DiscountAndTaxAreIndependent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := bill.NewMockBackend(ctrl)
	s := newLoadedStore(t, m)
	ctx := context.Background()

	var last bill.Snapshot

	m.EXPECT().SaveBill(gomock.Any(), int64(1), gomock.Any()).
		DoAndReturn(func(ctx context.Context, id int64, snap bill.Snapshot) (*bill.Bill, error) {
			last = snap
			return echoSave(ctx, id, snap)
		}).Times(4)

	require.NoError(t, s.AddItem(ctx, productA, 2))
	require.NoError(t, s.ApplyTax(ctx, bill.Tax{Kind: bill.KindPercentage, Value: dec("18")}))
	require.NoError(t, s.ApplyDiscount(ctx, bill.Discount{Kind: bill.KindPercentage, Value: dec("10")}))
	require.NoError(t, s.RemoveDiscount(ctx))

	b := s.Snapshot()
	assert.Nil(t, b.Discount)
	require.NotNil(t, b.Tax)
	assert.Equal(t, "Tax", b.Tax.Name)
	assert.True(t, dec("18").Equal(b.Tax.Value))

	assert.Nil(t, last.Discount)
	assert.NotNil(t, last.Tax)
}

func TestStore_TotalsFromDiscount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := bill.NewMockBackend(ctrl)
	s := newLoadedStore(t, m)
	ctx := context.Background()

	m.EXPECT().SaveBill(gomock.Any(), int64(1), gomock.Any()).DoAndReturn(echoSave).Times(2)

	require.NoError(t, s.AddItem(ctx, productA, 2))
	require.NoError(t, s.ApplyDiscount(ctx, bill.Discount{Kind: bill.KindPercentage, Value: dec("10")}))

	assert.True(t, dec("18").Equal(s.Totals().Total))
}

func TestStore_InvalidAdjustment(t *testing.T) {
	tests := []struct {
		name string
		d    bill.Discount
	}{
		{name: "UnknownKind", d: bill.Discount{Kind: "bogus", Value: dec("1")}},
		{name: "Negative", d: bill.Discount{Kind: bill.KindFixed, Value: dec("-1")}},
		{name: "OverHundredPercent", d: bill.Discount{Kind: bill.KindPercentage, Value: dec("101")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			s := newLoadedStore(t, bill.NewMockBackend(ctrl))

			err := s.ApplyDiscount(context.Background(), tt.d)
			assert.ErrorIs(t, err, bill.ErrInvalidAdjust)
			assert.Nil(t, s.Snapshot().Discount)
		})
	}
}

func TestStore_EmptyStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No expectations: any backend call fails the test.
	s := bill.NewStore(bill.NewMockBackend(ctrl), bill.WithLogger(quietLogger()))
	ctx := context.Background()

	assert.Equal(t, bill.PhaseEmpty, s.Phase())
	assert.ErrorIs(t, s.AddItem(ctx, productA, 1), bill.ErrNoBill)
	assert.ErrorIs(t, s.RemoveDiscount(ctx), bill.ErrNoBill)
	assert.NoError(t, s.SaveBill(ctx))

	got, err := s.FinalizeBill(ctx)
	assert.NoError(t, err)
	assert.Nil(t, got)

	assert.ErrorIs(t, s.LoadBill(ctx, 0), bill.ErrNoBillID)
}

func TestStore_CreateNewBill(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(m *bill.MockBackend)
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(m *bill.MockBackend) {
				m.EXPECT().CreateBill(gomock.Any(), bill.CreateParams{}).Return(&bill.Created{ID: 9, Number: "TEMP-9"}, nil)
			},
		},
		{
			name: "BackendError",
			setupMock: func(m *bill.MockBackend) {
				m.EXPECT().CreateBill(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))
			},
			wantErr: true,
		},
		{
			name: "NoID",
			setupMock: func(m *bill.MockBackend) {
				m.EXPECT().CreateBill(gomock.Any(), gomock.Any()).Return(&bill.Created{}, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := bill.NewMockBackend(ctrl)
			tt.setupMock(m)

			s := bill.NewStore(m, bill.WithLogger(quietLogger()))
			got, err := s.CreateNewBill(context.Background())

			if tt.wantErr {
				require.ErrorIs(t, err, bill.ErrCreateFailed)
				assert.ErrorIs(t, s.Err(), bill.ErrCreateFailed)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, int64(9), got.ID)
			assert.Equal(t, bill.PhaseEmpty, s.Phase())
		})
	}
}

func TestStore_LoadBillFailureClears(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := bill.NewMockBackend(ctrl)
	s := newLoadedStore(t, m)

	m.EXPECT().GetBill(gomock.Any(), int64(2)).Return(nil, errors.New("down"))

	err := s.LoadBill(context.Background(), 2)
	require.ErrorIs(t, err, bill.ErrLoadFailed)
	assert.Equal(t, bill.PhaseEmpty, s.Phase())
	assert.Equal(t, bill.Bill{}, s.Snapshot())
	assert.ErrorIs(t, s.Err(), bill.ErrLoadFailed)
}

func TestStore_SaveFailureKeepsEdits(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := bill.NewMockBackend(ctrl)
	s := newLoadedStore(t, m)
	ctx := context.Background()

	gomock.InOrder(
		m.EXPECT().SaveBill(gomock.Any(), int64(1), gomock.Any()).Return(nil, errors.New("timeout")),
		m.EXPECT().SaveBill(gomock.Any(), int64(1), gomock.Any()).DoAndReturn(echoSave),
	)

	err := s.AddItem(ctx, productA, 1)
	require.ErrorIs(t, err, bill.ErrSaveFailed)
	assert.Len(t, s.Snapshot().Items, 1)
	assert.True(t, s.Dirty())
	assert.ErrorIs(t, s.Err(), bill.ErrSaveFailed)

	require.NoError(t, s.SaveBill(ctx))
	assert.False(t, s.Dirty())
	assert.NoError(t, s.Err())
}

func TestStore_ReconcilesTemporaryIDs(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := bill.NewMockBackend(ctrl)
	s := newLoadedStore(t, m)
	ctx := context.Background()

	var sent []bill.Snapshot

	m.EXPECT().SaveBill(gomock.Any(), int64(1), gomock.Any()).
		DoAndReturn(func(ctx context.Context, id int64, snap bill.Snapshot) (*bill.Bill, error) {
			sent = append(sent, snap)
			return echoSave(ctx, id, snap)
		}).Times(2)

	require.NoError(t, s.AddItem(ctx, productC, 1))

	items := s.Snapshot().Items
	require.Len(t, items, 1)
	assert.Equal(t, bill.ItemID("103"), items[0].ID)
	assert.True(t, sent[0].Items[0].ID.Temporary())

	tmp := sent[0].Items[0].ID
	assert.Equal(t, bill.ItemID("103"), s.Resolve(tmp))

	// A UI still holding the temporary id reaches the same line.
	found, err := s.UpdateItemQuantity(ctx, tmp, 4)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, bill.ItemID("103"), sent[1].Items[0].ID)
	assert.Equal(t, 4, sent[1].Items[0].Quantity)
}

func TestStore_SavesCoalesce(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := bill.NewMockBackend(ctrl)
	s := newLoadedStore(t, m)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})

	var (
		calls atomic.Int32
		mu    sync.Mutex
		last  bill.Snapshot
	)

	m.EXPECT().SaveBill(gomock.Any(), int64(1), gomock.Any()).
		DoAndReturn(func(ctx context.Context, id int64, snap bill.Snapshot) (*bill.Bill, error) {
			if calls.Add(1) == 1 {
				close(started)
				<-release
			}

			mu.Lock()
			last = snap
			mu.Unlock()

			return echoSave(ctx, id, snap)
		}).Times(2)

	var wg sync.WaitGroup

	wg.Go(func() { assert.NoError(t, s.AddItem(ctx, productA, 1)) })

	<-started

	wg.Go(func() { assert.NoError(t, s.AddItem(ctx, productB, 1)) })
	wg.Go(func() { assert.NoError(t, s.AddItem(ctx, productC, 1)) })

	require.Eventually(t, func() bool {
		return len(s.Snapshot().Items) == 3
	}, time.Second, 5*time.Millisecond)

	close(release)
	wg.Wait()

	assert.Equal(t, int32(2), calls.Load())
	assert.Len(t, last.Items, 3)
	assert.False(t, s.Dirty())

	for _, it := range s.Snapshot().Items {
		assert.False(t, it.ID.Temporary(), "item %s not reconciled", it.ID)
	}
}

func TestStore_FinalizeBill(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := bill.NewMockBackend(ctrl)
	s := newLoadedStore(t, m)
	ctx := context.Background()

	m.EXPECT().SaveBill(gomock.Any(), int64(1), gomock.Any()).Return(nil, errors.New("offline"))
	require.Error(t, s.AddItem(ctx, productA, 2))

	serverTotals := &bill.Totals{Subtotal: dec("20"), Discount: dec("0"), Taxable: dec("20"), Tax: dec("0"), Total: dec("20")}

	gomock.InOrder(
		m.EXPECT().SaveBill(gomock.Any(), int64(1), gomock.Any()).DoAndReturn(echoSave),
		m.EXPECT().FinalizeBill(gomock.Any(), int64(1)).Return(&bill.Bill{
			ID:     1,
			Number: "TEMP-1",
			Items:  []bill.LineItem{{ID: "101", ProductID: 1, UnitPrice: dec("10"), Quantity: 2}},
			Status: bill.StatusFinalized,
			Totals: serverTotals,
		}, nil),
	)

	got, err := s.FinalizeBill(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, bill.StatusFinalized, got.Status)
	assert.Equal(t, bill.PhaseFinalized, s.Phase())
	assert.True(t, dec("20").Equal(s.Totals().Total))

	assert.ErrorIs(t, s.AddItem(ctx, productA, 1), bill.ErrFinalized)
	assert.ErrorIs(t, s.ApplyTax(ctx, bill.Tax{Kind: bill.KindFixed, Value: dec("1")}), bill.ErrFinalized)

	_, err = s.FinalizeBill(ctx)
	assert.ErrorIs(t, err, bill.ErrFinalized)

	s.ClearBill()
	assert.Equal(t, bill.PhaseEmpty, s.Phase())
}

func TestStore_FinalizeFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := bill.NewMockBackend(ctrl)
	s := newLoadedStore(t, m)

	m.EXPECT().FinalizeBill(gomock.Any(), int64(1)).Return(nil, errors.New("409"))

	_, err := s.FinalizeBill(context.Background())
	require.ErrorIs(t, err, bill.ErrFinalizeFailed)
	assert.Equal(t, bill.PhaseDraft, s.Phase())
	assert.ErrorIs(t, s.Err(), bill.ErrFinalizeFailed)
}

func TestStore_OnChange(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := bill.NewMockBackend(ctrl)

	var (
		mu      sync.Mutex
		changes []bill.Bill
	)

	s := bill.NewStore(m, bill.WithLogger(quietLogger()), bill.OnChange(func(b bill.Bill) {
		mu.Lock()
		changes = append(changes, b)
		mu.Unlock()
	}))

	m.EXPECT().GetBill(gomock.Any(), int64(5)).Return(&bill.Bill{ID: 5, Status: bill.StatusDraft}, nil)
	m.EXPECT().SaveBill(gomock.Any(), int64(5), gomock.Any()).DoAndReturn(echoSave)

	ctx := context.Background()
	require.NoError(t, s.LoadBill(ctx, 5))
	require.NoError(t, s.SetClient(ctx, new(int64(3))))

	mu.Lock()
	defer mu.Unlock()

	// load, local edit, save acknowledged
	require.Len(t, changes, 3)
	require.NotNil(t, changes[1].ClientID)
	assert.Equal(t, int64(3), *changes[1].ClientID)
}
