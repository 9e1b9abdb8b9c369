package bill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/shopspring/decimal"
)

var (
	ErrCreateFailed     = errors.New("failed to create bill")
	ErrLoadFailed       = errors.New("failed to load bill")
	ErrSaveFailed       = errors.New("failed to save bill")
	ErrFinalizeFailed   = errors.New("failed to finalize bill")
	ErrInvalidQuantity  = errors.New("quantity must be a positive integer")
	ErrInvalidAdjust    = errors.New("invalid discount or tax")
	ErrNoBill           = errors.New("no bill loaded")
	ErrNoBillID         = errors.New("bill id is required; create the bill first")
	ErrFinalized        = errors.New("bill is finalized")
	ErrItemNotFound     = errors.New("item not found")
	errUnexpectedCreate = errors.New("backend returned no bill id")

	// errUnchanged lets a mutation report success without a new version.
	errUnchanged = errors.New("unchanged")
)

//go:generate mockgen -source=store.go -destination=backend_mock.go -package=bill
type Backend interface {
	CreateBill(ctx context.Context, params CreateParams) (*Created, error)
	GetBill(ctx context.Context, id int64) (*Bill, error)
	SaveBill(ctx context.Context, id int64, snap Snapshot) (*Bill, error)
	FinalizeBill(ctx context.Context, id int64) (*Bill, error)
}

// Phase is the local lifecycle of the store's bill.
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseDraft
	PhaseFinalized
)

func (p Phase) String() string {
	switch p {
	case PhaseDraft:
		return "draft"
	case PhaseFinalized:
		return "finalized"
	}

	return "empty"
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// OnChange registers fn to be called with a copy of the bill after every
// local change. fn runs outside the store lock.
func OnChange(fn func(Bill)) Option {
	return func(s *Store) { s.onChange = fn }
}

// Store holds the one bill being edited in a UI session.
//
// Every mutation bumps version and then saves. Saves run one at a time under
// saveMu and write the full state as it is when the save starts, so a save
// that finds its version already persisted does nothing and the newest state
// always reaches the backend last.
type Store struct {
	backend  Backend
	logger   *slog.Logger
	onChange func(Bill)

	saveMu sync.Mutex

	mu      sync.Mutex
	bill    *Bill
	version uint64
	saved   uint64
	aliases map[ItemID]ItemID
	err     error
}

func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		logger:  slog.Default(),
		aliases: map[ItemID]ItemID{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CreateNewBill asks the backend for a new empty bill. The store state is
// left untouched; callers load the returned id to start editing it.
func (s *Store) CreateNewBill(ctx context.Context) (*Created, error) {
	created, err := s.backend.CreateBill(ctx, CreateParams{})
	if err == nil && (created == nil || created.ID == 0) {
		err = errUnexpectedCreate
	}

	if err != nil {
		return nil, s.fail(fmt.Errorf("%w: %w", ErrCreateFailed, err))
	}

	s.setErr(nil)

	return created, nil
}

// LoadBill replaces the current state with the backend's bill. On failure the
// store is cleared so stale data is never shown as live.
func (s *Store) LoadBill(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrNoBillID
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	b, err := s.backend.GetBill(ctx, id)
	if err == nil && b == nil {
		err = ErrNoBill
	}

	s.mu.Lock()
	s.reset()

	if err != nil {
		s.err = fmt.Errorf("%w: %w", ErrLoadFailed, err)
		err = s.err
		s.mu.Unlock()

		s.notify()

		return err
	}

	loaded := b.Clone()
	if loaded.ID == 0 {
		loaded.ID = id
	}

	s.bill = &loaded
	s.mu.Unlock()

	s.notify()

	return nil
}

// AddItem adds qty of product, merging into the existing line for the same
// product when there is one.
func (s *Store) AddItem(ctx context.Context, p Product, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	return s.mutate(ctx, func(b *Bill) error {
		for i := range b.Items {
			if b.Items[i].ProductID == p.ID {
				b.Items[i].Quantity += qty
				return nil
			}
		}

		b.Items = append(b.Items, LineItem{
			ID:          NewTemporaryID(),
			ProductID:   p.ID,
			ProductName: p.Name(),
			UnitPrice:   p.UnitPrice,
			Quantity:    qty,
		})

		return nil
	})
}

// UpdateItemQuantity sets the quantity of a line, removing it when qty <= 0.
// It reports false without saving when the line does not exist.
func (s *Store) UpdateItemQuantity(ctx context.Context, id ItemID, qty int) (bool, error) {
	return s.changeQuantity(ctx, id, func(int) int { return qty })
}

// AdjustItemQuantity adds delta to the quantity the line has when the change
// is applied, removing the line when the result is <= 0. It reports false
// without saving when the line does not exist.
func (s *Store) AdjustItemQuantity(ctx context.Context, id ItemID, delta int) (bool, error) {
	return s.changeQuantity(ctx, id, func(qty int) int { return qty + delta })
}

func (s *Store) changeQuantity(ctx context.Context, id ItemID, next func(qty int) int) (bool, error) {
	found := false

	err := s.mutate(ctx, func(b *Bill) error {
		i := s.indexOf(b, id)
		if i < 0 {
			return ErrItemNotFound
		}

		found = true

		if qty := next(b.Items[i].Quantity); qty <= 0 {
			b.Items = slices.Delete(b.Items, i, i+1)
		} else {
			b.Items[i].Quantity = qty
		}

		return nil
	})
	if errors.Is(err, ErrItemNotFound) {
		return false, nil
	}

	return found, err
}

// RemoveItem removes a line. Removing a line that is not there is not an error.
func (s *Store) RemoveItem(ctx context.Context, id ItemID) error {
	return s.mutate(ctx, func(b *Bill) error {
		i := s.indexOf(b, id)
		if i < 0 {
			return errUnchanged
		}

		b.Items = slices.Delete(b.Items, i, i+1)

		return nil
	})
}

func (s *Store) SetClient(ctx context.Context, clientID *int64) error {
	return s.mutate(ctx, func(b *Bill) error {
		b.ClientID = nil
		if clientID != nil {
			b.ClientID = new(*clientID)
		}

		return nil
	})
}

func (s *Store) ApplyDiscount(ctx context.Context, d Discount) error {
	if err := validateAdjust(d.Kind, d.Value); err != nil {
		return err
	}

	return s.mutate(ctx, func(b *Bill) error {
		b.Discount = &d
		return nil
	})
}

func (s *Store) RemoveDiscount(ctx context.Context) error {
	return s.mutate(ctx, func(b *Bill) error {
		b.Discount = nil
		return nil
	})
}

func (s *Store) ApplyTax(ctx context.Context, t Tax) error {
	if err := validateAdjust(t.Kind, t.Value); err != nil {
		return err
	}

	if t.Name == "" {
		t.Name = "Tax"
	}

	return s.mutate(ctx, func(b *Bill) error {
		b.Tax = &t
		return nil
	})
}

func (s *Store) RemoveTax(ctx context.Context) error {
	return s.mutate(ctx, func(b *Bill) error {
		b.Tax = nil
		return nil
	})
}

// SaveBill writes the full local state to the backend. Without a bill id it
// logs a warning and does nothing. On failure local edits are kept so the
// caller can retry.
func (s *Store) SaveBill(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	return s.save(ctx)
}

// save must be called with saveMu held.
func (s *Store) save(ctx context.Context) error {
	s.mu.Lock()

	if s.bill == nil || s.bill.ID == 0 {
		s.mu.Unlock()
		s.logger.Warn("save skipped: bill has not been created yet")

		return nil
	}

	if s.bill.Status == StatusFinalized {
		s.mu.Unlock()
		return ErrFinalized
	}

	if s.version == s.saved {
		s.mu.Unlock()
		return nil
	}

	id, version, snap := s.bill.ID, s.version, s.bill.Snapshot()
	s.mu.Unlock()

	resp, err := s.backend.SaveBill(ctx, id, snap)

	s.mu.Lock()

	if err != nil {
		s.err = fmt.Errorf("%w: %w", ErrSaveFailed, err)
		err = s.err
		s.mu.Unlock()

		s.logger.Error("failed to save bill", "bill_id", id, "error", err)
		s.notify()

		return err
	}

	if s.bill == nil || s.bill.ID != id {
		// Cleared or replaced while the request was in flight.
		s.mu.Unlock()
		return nil
	}

	if resp != nil {
		s.reconcile(resp.Items)

		if resp.Number != "" {
			s.bill.Number = resp.Number
		}
	}

	if version > s.saved {
		s.saved = version
	}

	s.err = nil
	s.mu.Unlock()

	s.notify()

	return nil
}

// reconcile swaps temporary ids for the ids the backend assigned, matching
// lines by product. Old ids stay resolvable through the alias table.
func (s *Store) reconcile(saved []LineItem) {
	byProduct := make(map[int64]ItemID, len(saved))
	for _, it := range saved {
		if it.ID != "" && !it.ID.Temporary() {
			byProduct[it.ProductID] = it.ID
		}
	}

	for i := range s.bill.Items {
		it := &s.bill.Items[i]
		if !it.ID.Temporary() {
			continue
		}

		if backendID, ok := byProduct[it.ProductID]; ok {
			s.aliases[it.ID] = backendID
			it.ID = backendID
		}
	}
}

// FinalizeBill flushes pending edits and then finalizes the bill on the
// backend, replacing local state with the backend's finalized bill. Without
// a bill id it returns nil and makes no request.
func (s *Store) FinalizeBill(ctx context.Context) (*Bill, error) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if s.bill == nil || s.bill.ID == 0 {
		s.mu.Unlock()
		return nil, nil
	}

	if s.bill.Status == StatusFinalized {
		s.mu.Unlock()
		return nil, ErrFinalized
	}

	id := s.bill.ID
	s.mu.Unlock()

	if err := s.save(ctx); err != nil {
		return nil, s.fail(fmt.Errorf("%w: %w", ErrFinalizeFailed, err))
	}

	b, err := s.backend.FinalizeBill(ctx, id)
	if err == nil && b == nil {
		err = ErrNoBill
	}

	if err != nil {
		return nil, s.fail(fmt.Errorf("%w: %w", ErrFinalizeFailed, err))
	}

	final := b.Clone()
	final.Status = StatusFinalized

	s.mu.Lock()
	s.bill = &final
	s.saved = s.version
	s.err = nil
	s.mu.Unlock()

	s.notify()

	return new(final.Clone()), nil
}

// ClearBill drops the current bill.
func (s *Store) ClearBill() {
	s.mu.Lock()
	s.reset()
	s.mu.Unlock()

	s.notify()
}

// Snapshot returns a copy of the current bill, or the zero Bill when empty.
func (s *Store) Snapshot() Bill {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bill == nil {
		return Bill{}
	}

	return s.bill.Clone()
}

func (s *Store) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.phase()
}

func (s *Store) phase() Phase {
	switch {
	case s.bill == nil:
		return PhaseEmpty
	case s.bill.Status == StatusFinalized:
		return PhaseFinalized
	}

	return PhaseDraft
}

// Dirty reports whether a draft has edits the backend has not acknowledged.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.phase() == PhaseDraft && s.version != s.saved
}

// Totals returns the backend totals of a finalized bill, otherwise the
// locally computed ones.
func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bill == nil {
		return Compute(nil, nil, nil)
	}

	if s.bill.Totals != nil && s.bill.Status == StatusFinalized {
		return *s.bill.Totals
	}

	return Compute(s.bill.Items, s.bill.Discount, s.bill.Tax)
}

// Err returns the last recorded failure, cleared by the next success.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

// Resolve maps a possibly stale temporary id to the line's current id.
func (s *Store) Resolve(id ItemID) ItemID {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.resolve(id)
}

func (s *Store) resolve(id ItemID) ItemID {
	if to, ok := s.aliases[id]; ok {
		return to
	}

	return id
}

// mutate applies fn to the draft under the lock and then saves.
func (s *Store) mutate(ctx context.Context, fn func(b *Bill) error) error {
	s.mu.Lock()

	switch s.phase() {
	case PhaseEmpty:
		s.mu.Unlock()
		return ErrNoBill
	case PhaseFinalized:
		s.mu.Unlock()
		return ErrFinalized
	}

	if err := fn(s.bill); err != nil {
		s.mu.Unlock()

		if errors.Is(err, errUnchanged) {
			return nil
		}

		return err
	}

	s.version++
	s.mu.Unlock()

	s.notify()

	return s.SaveBill(ctx)
}

// indexOf must be called with mu held.
func (s *Store) indexOf(b *Bill, id ItemID) int {
	id = s.resolve(id)

	return slices.IndexFunc(b.Items, func(it LineItem) bool { return it.ID == id })
}

// reset must be called with mu held.
func (s *Store) reset() {
	s.bill = nil
	s.version = 0
	s.saved = 0
	s.err = nil
	clear(s.aliases)
}

func (s *Store) fail(err error) error {
	s.setErr(err)
	s.logger.Error("bill operation failed", "error", err)
	s.notify()

	return err
}

func (s *Store) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *Store) notify() {
	if s.onChange == nil {
		return
	}

	s.onChange(s.Snapshot())
}

func validateAdjust(kind Kind, value decimal.Decimal) error {
	switch {
	case kind != KindPercentage && kind != KindFixed:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidAdjust, kind)
	case value.IsNegative():
		return fmt.Errorf("%w: value must not be negative", ErrInvalidAdjust)
	case kind == KindPercentage && value.GreaterThan(hundred):
		return fmt.Errorf("%w: percentage above 100", ErrInvalidAdjust)
	}

	return nil
}
