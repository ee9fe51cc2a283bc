package reservation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lmoretti/event-seat-reservation/internal/domain"
)

// memSeatStore implements domain.SeatStore in memory with the same
// all-or-nothing compare-and-set semantics as the Redis script.
type memSeatStore struct {
	mu    sync.Mutex
	seats map[int64]map[domain.SeatKey]domain.SeatStatus
}

func newMemSeatStore() *memSeatStore {
	return &memSeatStore{
		seats: make(map[int64]map[domain.SeatKey]domain.SeatStatus),
	}
}

func (s *memSeatStore) GetSeatStatuses(ctx context.Context, eventID int64) (map[domain.SeatKey]domain.SeatStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make(map[domain.SeatKey]domain.SeatStatus, len(s.seats[eventID]))
	for key, status := range s.seats[eventID] {
		snapshot[key] = status
	}

	return snapshot, nil
}

func (s *memSeatStore) CompareAndSetSeats(
	ctx context.Context,
	eventID int64,
	keys []domain.SeatKey,
	expected, next domain.SeatStatus) ([]domain.SeatKey, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	grid := s.seats[eventID]
	if grid == nil {
		grid = make(map[domain.SeatKey]domain.SeatStatus)
		s.seats[eventID] = grid
	}

	var conflicts []domain.SeatKey
	for _, key := range keys {
		status, ok := grid[key]
		if !ok {
			status = domain.SeatFree
		}
		if status != expected {
			conflicts = append(conflicts, key)
		}
	}

	if len(conflicts) > 0 {
		return conflicts, nil
	}

	for _, key := range keys {
		if next == domain.SeatFree {
			delete(grid, key)
		} else {
			grid[key] = next
		}
	}

	return nil, nil
}

func (s *memSeatStore) status(eventID int64, key domain.SeatKey) domain.SeatStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, ok := s.seats[eventID][key]
	if !ok {
		return domain.SeatFree
	}

	return status
}

type holdKey struct {
	eventID int64
	token   string
}

// memHoldStore implements domain.HoldStore in memory. Expiry frees the
// hold's seats through the seat store, mirroring the Redis sweep script.
type memHoldStore struct {
	mu    sync.Mutex
	seats *memSeatStore
	holds map[holdKey]*domain.Hold
}

func newMemHoldStore(seats *memSeatStore) *memHoldStore {
	return &memHoldStore{
		seats: seats,
		holds: make(map[holdKey]*domain.Hold),
	}
}

func (s *memHoldStore) Put(ctx context.Context, hold *domain.Hold) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *hold
	s.holds[holdKey{hold.EventID, hold.HolderToken}] = &copied

	return nil
}

func (s *memHoldStore) GetByHolder(ctx context.Context, eventID int64, holderToken string) (*domain.Hold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hold, ok := s.holds[holdKey{eventID, holderToken}]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	copied := *hold

	return &copied, nil
}

func (s *memHoldStore) Delete(ctx context.Context, eventID int64, holderToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.holds, holdKey{eventID, holderToken})

	return nil
}

func (s *memHoldStore) MarkConsumed(ctx context.Context, hold *domain.Hold, saleID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.holds[holdKey{hold.EventID, hold.HolderToken}]
	if !ok {
		return fmt.Errorf("hold %s: %w", hold.ID, domain.ErrRecordNotFound)
	}

	stored.Consumed = true
	stored.SaleID = saleID
	hold.Consumed = true
	hold.SaleID = saleID

	return nil
}

func (s *memHoldStore) ActiveByEvent(ctx context.Context, eventID int64, now time.Time) ([]domain.Hold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var active []domain.Hold
	for key, hold := range s.holds {
		if key.eventID != eventID || hold.Consumed || hold.Expired(now) {
			continue
		}
		active = append(active, *hold)
	}

	return active, nil
}

func (s *memHoldStore) ExpireEvent(ctx context.Context, eventID int64, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reclaimed := 0
	for key, hold := range s.holds {
		if key.eventID != eventID || hold.Consumed || !hold.Expired(now) {
			continue
		}

		if _, err := s.seats.CompareAndSetSeats(ctx, eventID, hold.Seats, domain.SeatHeld, domain.SeatFree); err != nil {
			return reclaimed, err
		}

		delete(s.holds, key)
		reclaimed++
	}

	return reclaimed, nil
}

func (s *memHoldStore) ExpireAll(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	events := make(map[int64]bool)
	for key := range s.holds {
		events[key.eventID] = true
	}
	s.mu.Unlock()

	total := 0
	for eventID := range events {
		reclaimed, err := s.ExpireEvent(ctx, eventID, now)
		total += reclaimed
		if err != nil {
			return total, err
		}
	}

	return total, nil
}

// memSaleRepo implements domain.SaleRepository in memory with the same
// uniqueness guarantee as the sales table's (event_id, hold_token) constraint.
type memSaleRepo struct {
	mu     sync.Mutex
	nextID int64
	sales  map[holdKey]*domain.Sale
}

func newMemSaleRepo() *memSaleRepo {
	return &memSaleRepo{
		sales: make(map[holdKey]*domain.Sale),
	}
}

func (r *memSaleRepo) Create(ctx context.Context, sale *domain.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := holdKey{sale.EventID, sale.HoldToken}
	if _, ok := r.sales[key]; ok {
		return domain.ErrDuplicateSale
	}

	r.nextID++
	sale.ID = r.nextID
	sale.CreatedAt = time.Now()

	copied := *sale
	r.sales[key] = &copied

	return nil
}

func (r *memSaleRepo) GetByHoldToken(ctx context.Context, eventID int64, holdToken string) (*domain.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sale, ok := r.sales[holdKey{eventID, holdToken}]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	copied := *sale

	return &copied, nil
}
