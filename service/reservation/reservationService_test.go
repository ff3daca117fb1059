// service/reservation/reservation_service_test.go
package reservationsvc_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vijender883/bookyard/model"
	rrepo "github.com/vijender883/bookyard/repository/reservation"
	resvsvc "github.com/vijender883/bookyard/service/reservation"
)

// memStore is an in-memory rrepo.Store. ExecTx stages all writes on a
// copy of the state and publishes it only when fn succeeds, mirroring
// the commit/rollback behavior of the real store.
type memStore struct {
	mu sync.Mutex
	st memState

	failDebit error // injected into InsertLedgerEntry for debits
}

type memState struct {
	books        map[int64]*model.Book
	members      map[uuid.UUID]bool
	entries      []model.LedgerEntry
	reservations map[int64]*model.Reservation
	nextResvID   int64
}

func newMemStore() *memStore {
	return &memStore{st: memState{
		books:        map[int64]*model.Book{},
		members:      map[uuid.UUID]bool{},
		reservations: map[int64]*model.Reservation{},
		nextResvID:   1,
	}}
}

func (s *memStore) addBook(b model.Book) {
	s.st.books[b.ID] = &b
}

func (s *memStore) addMember(id uuid.UUID, credits int) {
	s.st.members[id] = true
	if credits != 0 {
		s.st.entries = append(s.st.entries, model.LedgerEntry{
			MemberID: id, Amount: credits, EntryType: model.LedgerAdjustment,
		})
	}
}

func (st memState) clone() memState {
	out := memState{
		books:        make(map[int64]*model.Book, len(st.books)),
		members:      make(map[uuid.UUID]bool, len(st.members)),
		entries:      append([]model.LedgerEntry(nil), st.entries...),
		reservations: make(map[int64]*model.Reservation, len(st.reservations)),
		nextResvID:   st.nextResvID,
	}
	for id, b := range st.books {
		cp := *b
		out.books[id] = &cp
	}
	for id := range st.members {
		out.members[id] = true
	}
	for id, r := range st.reservations {
		cp := *r
		out.reservations[id] = &cp
	}
	return out
}

func (st memState) balance(id uuid.UUID) int {
	bal := 0
	for _, e := range st.entries {
		if e.MemberID == id {
			bal += e.Amount
		}
	}
	return bal
}

func (s *memStore) ExecTx(ctx context.Context, fn func(tx rrepo.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	staged := s.st.clone()
	if err := fn(&memTx{st: &staged, failDebit: s.failDebit}); err != nil {
		return err
	}
	s.st = staged
	return nil
}

func (s *memStore) GetReservation(ctx context.Context, id int64) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.st.reservations[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *r
	return &cp, nil
}

func (s *memStore) GetBookOwner(ctx context.Context, bookID int64) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.st.books[bookID]
	if !ok {
		return uuid.Nil, sql.ErrNoRows
	}
	return b.OwnerID, nil
}

func (s *memStore) ListByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]rrepo.HistoryRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []rrepo.HistoryRow
	for _, r := range s.st.reservations {
		if r.BorrowerID != borrowerID {
			continue
		}
		out = append(out, rrepo.HistoryRow{
			ReservationID: r.ID,
			BookID:        r.BookID,
			Status:        r.Status,
			StartDate:     r.StartDate,
			EndDate:       r.EndDate,
			CreditsUsed:   r.CreditsUsed,
		})
	}
	return out, nil
}

func (s *memStore) stock(bookID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.books[bookID].StockCount
}

func (s *memStore) balanceOf(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.balance(id)
}

func (s *memStore) reservationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.reservations)
}

type memTx struct {
	st        *memState
	failDebit error
}

func (t *memTx) GetBookForUpdate(ctx context.Context, bookID int64) (*model.Book, error) {
	b, ok := t.st.books[bookID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *b
	return &cp, nil
}

func (t *memTx) ReserveCapacity(ctx context.Context, bookID int64) error {
	b, ok := t.st.books[bookID]
	if !ok || !b.IsActive || b.StockCount <= 0 {
		return rrepo.ErrNoCapacity
	}
	b.StockCount--
	return nil
}

func (t *memTx) ReleaseCapacity(ctx context.Context, bookID int64) error {
	b, ok := t.st.books[bookID]
	if !ok {
		return sql.ErrNoRows
	}
	b.StockCount++
	return nil
}

func (t *memTx) LockMemberBalance(ctx context.Context, memberID uuid.UUID) (int, error) {
	if !t.st.members[memberID] {
		return 0, sql.ErrNoRows
	}
	return t.st.balance(memberID), nil
}

func (t *memTx) InsertLedgerEntry(ctx context.Context, memberID uuid.UUID, amount int, entryType model.LedgerType, description string) error {
	if t.failDebit != nil && amount < 0 {
		return t.failDebit
	}
	t.st.entries = append(t.st.entries, model.LedgerEntry{
		MemberID: memberID, Amount: amount, EntryType: entryType, Description: description,
	})
	return nil
}

func (t *memTx) InsertReservation(ctx context.Context, r *model.Reservation) (int64, error) {
	id := t.st.nextResvID
	t.st.nextResvID++
	cp := *r
	cp.ID = id
	t.st.reservations[id] = &cp
	return id, nil
}

func (t *memTx) GetReservationForUpdate(ctx context.Context, id int64) (*model.Reservation, error) {
	r, ok := t.st.reservations[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *r
	return &cp, nil
}

func (t *memTx) SetReservationStatus(ctx context.Context, id int64, status model.ReservationStatus) error {
	r, ok := t.st.reservations[id]
	if !ok {
		return sql.ErrNoRows
	}
	r.Status = status
	return nil
}

type notifierMock struct {
	mu    sync.Mutex
	calls int
}

func (n *notifierMock) ReservationCreated(actorID uuid.UUID, reservationID, bookID int64, bookTitle string) {
	n.mu.Lock()
	n.calls++
	n.mu.Unlock()
}

func (n *notifierMock) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

func window(days int) (time.Time, time.Time) {
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, days)
}

func TestCreate_Success(t *testing.T) {
	store := newMemStore()
	owner := uuid.New()
	borrower := uuid.New()
	store.addBook(model.Book{ID: 1, OwnerID: owner, Title: "Matilda", Intent: model.IntentShare, StockCount: 2, IsActive: true})
	store.addMember(borrower, 10)

	n := &notifierMock{}
	s := resvsvc.New(store, n)

	start, end := window(3) // share, 3 days -> 3 credits
	r, err := s.Create(context.Background(), borrower, 1, start, end)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if r.Status != model.ReservationPending {
		t.Fatalf("status = %s; want pending", r.Status)
	}
	if r.CreditsUsed != 3 {
		t.Fatalf("credits_used = %d; want 3", r.CreditsUsed)
	}
	if got := store.stock(1); got != 1 {
		t.Fatalf("stock = %d; want 1", got)
	}
	if got := store.balanceOf(borrower); got != 7 {
		t.Fatalf("balance = %d; want 7", got)
	}
	if n.count() != 1 {
		t.Fatalf("notifier calls = %d; want 1", n.count())
	}
}

func TestCreate_InvalidWindow(t *testing.T) {
	store := newMemStore()
	s := resvsvc.New(store, &notifierMock{})

	start, _ := window(1)
	if _, err := s.Create(context.Background(), uuid.New(), 1, start, start); resvsvc.Code(err) != resvsvc.ErrInvalidWindow {
		t.Fatalf("code = %q; want INVALID_WINDOW", resvsvc.Code(err))
	}
}

func TestCreate_Unavailable(t *testing.T) {
	store := newMemStore()
	borrower := uuid.New()
	store.addBook(model.Book{ID: 1, Intent: model.IntentShare, StockCount: 0, IsActive: true})
	store.addBook(model.Book{ID: 2, Intent: model.IntentShare, StockCount: 3, IsActive: false})
	store.addMember(borrower, 100)
	s := resvsvc.New(store, &notifierMock{})

	start, end := window(1)
	for _, bookID := range []int64{1, 2} {
		_, err := s.Create(context.Background(), borrower, bookID, start, end)
		if resvsvc.Code(err) != resvsvc.ErrUnavailable {
			t.Fatalf("book %d: code = %q; want UNAVAILABLE", bookID, resvsvc.Code(err))
		}
	}
	if got := store.balanceOf(borrower); got != 100 {
		t.Fatalf("balance = %d; want untouched 100", got)
	}
	if store.reservationCount() != 0 {
		t.Fatal("no reservation row should exist")
	}
}

func TestCreate_InsufficientCredits_RollsBackCapacity(t *testing.T) {
	store := newMemStore()
	borrower := uuid.New()
	store.addBook(model.Book{ID: 1, Intent: model.IntentShare, StockCount: 1, IsActive: true})
	store.addMember(borrower, 2)
	s := resvsvc.New(store, &notifierMock{})

	start, end := window(5) // costs 5, borrower has 2
	_, err := s.Create(context.Background(), borrower, 1, start, end)
	if resvsvc.Code(err) != resvsvc.ErrInsufficientCredits {
		t.Fatalf("code = %q; want INSUFFICIENT_CREDITS", resvsvc.Code(err))
	}
	if got := store.stock(1); got != 1 {
		t.Fatalf("stock = %d; want 1 (capacity released on rollback)", got)
	}
	if got := store.balanceOf(borrower); got != 2 {
		t.Fatalf("balance = %d; want untouched 2", got)
	}
	if store.reservationCount() != 0 {
		t.Fatal("no reservation row should exist")
	}
}

func TestCreate_DebitFailureIsAtomic(t *testing.T) {
	store := newMemStore()
	borrower := uuid.New()
	store.addBook(model.Book{ID: 1, Intent: model.IntentShare, StockCount: 1, IsActive: true})
	store.addMember(borrower, 10)
	store.failDebit = errors.New("injected ledger failure")

	n := &notifierMock{}
	s := resvsvc.New(store, n)

	start, end := window(2)
	if _, err := s.Create(context.Background(), borrower, 1, start, end); err == nil {
		t.Fatal("expected injected failure")
	}
	if got := store.stock(1); got != 1 {
		t.Fatalf("stock = %d; want 1 (unchanged after failed create)", got)
	}
	if store.reservationCount() != 0 {
		t.Fatal("no partial reservation row may survive")
	}
	if got := store.balanceOf(borrower); got != 10 {
		t.Fatalf("balance = %d; want untouched 10", got)
	}
	if n.count() != 0 {
		t.Fatal("notifier must not fire on a failed create")
	}
}

func TestCreate_NotFound(t *testing.T) {
	store := newMemStore()
	s := resvsvc.New(store, &notifierMock{})

	start, end := window(1)
	if _, err := s.Create(context.Background(), uuid.New(), 99, start, end); resvsvc.Code(err) != resvsvc.ErrNotFound {
		t.Fatalf("code = %q; want NOT_FOUND", resvsvc.Code(err))
	}
}

func TestTransitions_Table(t *testing.T) {
	mk := func(t *testing.T) (*memStore, resvsvc.Service, int64) {
		t.Helper()
		store := newMemStore()
		borrower := uuid.New()
		store.addBook(model.Book{ID: 1, Intent: model.IntentGiveaway, StockCount: 1, IsActive: true})
		store.addMember(borrower, 10)
		s := resvsvc.New(store, &notifierMock{})
		start, end := window(2)
		r, err := s.Create(context.Background(), borrower, 1, start, end)
		if err != nil {
			t.Fatalf("setup create: %v", err)
		}
		return store, s, r.ID
	}
	ctx := context.Background()

	t.Run("confirm from pending", func(t *testing.T) {
		_, s, id := mk(t)
		r, err := s.Confirm(ctx, id)
		if err != nil || r.Status != model.ReservationActive {
			t.Fatalf("got %v %v; want active nil", r, err)
		}
	})

	t.Run("complete from pending fails", func(t *testing.T) {
		store, s, id := mk(t)
		if _, err := s.Complete(ctx, id); resvsvc.Code(err) != resvsvc.ErrInvalidTransition {
			t.Fatalf("code = %q; want INVALID_TRANSITION", resvsvc.Code(err))
		}
		r, _ := store.GetReservation(ctx, id)
		if r.Status != model.ReservationPending {
			t.Fatalf("status changed to %s on failed transition", r.Status)
		}
	})

	t.Run("complete from active", func(t *testing.T) {
		_, s, id := mk(t)
		if _, err := s.Confirm(ctx, id); err != nil {
			t.Fatal(err)
		}
		r, err := s.Complete(ctx, id)
		if err != nil || r.Status != model.ReservationCompleted {
			t.Fatalf("got %v %v; want completed nil", r, err)
		}
	})

	t.Run("terminal states immutable", func(t *testing.T) {
		_, s, id := mk(t)
		if _, err := s.Cancel(ctx, id); err != nil {
			t.Fatal(err)
		}
		for name, fn := range map[string]func(context.Context, int64) (*model.Reservation, error){
			"confirm": s.Confirm, "cancel": s.Cancel, "complete": s.Complete,
		} {
			if _, err := fn(ctx, id); resvsvc.Code(err) != resvsvc.ErrInvalidTransition {
				t.Fatalf("%s on cancelled: code = %q; want INVALID_TRANSITION", name, resvsvc.Code(err))
			}
		}
	})

	t.Run("unknown reservation", func(t *testing.T) {
		_, s, _ := mk(t)
		if _, err := s.Confirm(ctx, 404); resvsvc.Code(err) != resvsvc.ErrNotFound {
			t.Fatalf("code = %q; want NOT_FOUND", resvsvc.Code(err))
		}
	})
}

func TestCancel_PendingRefundsInFull(t *testing.T) {
	store := newMemStore()
	borrower := uuid.New()
	store.addBook(model.Book{ID: 1, Intent: model.IntentShare, StockCount: 1, IsActive: true})
	store.addMember(borrower, 10)
	s := resvsvc.New(store, &notifierMock{})

	start, end := window(4) // 4 credits
	r, err := s.Create(context.Background(), borrower, 1, start, end)
	if err != nil {
		t.Fatal(err)
	}
	if got := store.balanceOf(borrower); got != 6 {
		t.Fatalf("balance after create = %d; want 6", got)
	}

	out, err := s.Cancel(context.Background(), r.ID)
	if err != nil || out.Status != model.ReservationCancelled {
		t.Fatalf("got %v %v; want cancelled nil", out, err)
	}
	if got := store.balanceOf(borrower); got != 10 {
		t.Fatalf("balance after cancel = %d; want full refund to 10", got)
	}
	if got := store.stock(1); got != 1 {
		t.Fatalf("stock = %d; want restored to 1", got)
	}
}

func TestCancel_ActiveRefundsPartially(t *testing.T) {
	store := newMemStore()
	borrower := uuid.New()
	store.addBook(model.Book{ID: 1, Intent: model.IntentShare, StockCount: 1, IsActive: true})
	store.addMember(borrower, 20)
	s := resvsvc.New(store, &notifierMock{})

	// Window straddling now: partial refund, strictly between 0 and cost.
	start := time.Now().UTC().Add(-24 * time.Hour)
	end := time.Now().UTC().Add(24 * time.Hour)
	r, err := s.Create(context.Background(), borrower, 1, start, end)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Confirm(context.Background(), r.ID); err != nil {
		t.Fatal(err)
	}
	spent := r.CreditsUsed
	before := store.balanceOf(borrower)

	if _, err := s.Cancel(context.Background(), r.ID); err != nil {
		t.Fatal(err)
	}
	refund := store.balanceOf(borrower) - before
	if refund < 0 || refund >= spent {
		t.Fatalf("refund = %d; want partial (0 <= refund < %d)", refund, spent)
	}
	if got := store.stock(1); got != 1 {
		t.Fatalf("stock = %d; want restored to 1", got)
	}
}

func TestCreate_Concurrent_ExactlyStockWinners(t *testing.T) {
	const (
		stock   = 3
		callers = 10
	)
	store := newMemStore()
	store.addBook(model.Book{ID: 1, Intent: model.IntentGiveaway, StockCount: stock, IsActive: true})
	borrowers := make([]uuid.UUID, callers)
	for i := range borrowers {
		borrowers[i] = uuid.New()
		store.addMember(borrowers[i], 100)
	}
	s := resvsvc.New(store, &notifierMock{})

	start, end := window(2)
	var (
		wg                 sync.WaitGroup
		mu                 sync.Mutex
		wins, unavailable  int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(b uuid.UUID) {
			defer wg.Done()
			_, err := s.Create(context.Background(), b, 1, start, end)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case resvsvc.Code(err) == resvsvc.ErrUnavailable:
				unavailable++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(borrowers[i])
	}
	wg.Wait()

	if wins != stock || unavailable != callers-stock {
		t.Fatalf("wins=%d unavailable=%d; want %d and %d", wins, unavailable, stock, callers-stock)
	}
	if got := store.stock(1); got != 0 {
		t.Fatalf("stock = %d; want 0, never negative", got)
	}
}

func TestScenario_TwoBorrowersOneCopy(t *testing.T) {
	store := newMemStore()
	rich, poor := uuid.New(), uuid.New()
	store.addBook(model.Book{ID: 1, Intent: model.IntentShare, StockCount: 1, IsActive: true})
	store.addMember(rich, 10)
	store.addMember(poor, 3)
	s := resvsvc.New(store, &notifierMock{})

	start, end := window(5) // share, 5 days -> 5 credits

	if _, err := s.Create(context.Background(), rich, 1, start, end); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := s.Create(context.Background(), poor, 1, start, end); resvsvc.Code(err) != resvsvc.ErrUnavailable {
		t.Fatalf("second create code = %q; want UNAVAILABLE", resvsvc.Code(err))
	}

	if got := store.balanceOf(rich); got != 5 {
		t.Fatalf("winner balance = %d; want 5", got)
	}
	if got := store.balanceOf(poor); got != 3 {
		t.Fatalf("loser balance = %d; want untouched 3", got)
	}
	if store.reservationCount() != 1 {
		t.Fatalf("reservations = %d; want exactly 1", store.reservationCount())
	}
}
