package memory

import (
	"context"
	"sync"

	domainbooking "seabreeze/internal/domain/booking"
	domaincatalog "seabreeze/internal/domain/catalog"
	domainrebooking "seabreeze/internal/domain/rebooking"
)

// CatalogRepository keeps units and rate records in memory. Rates preserve
// insertion order so the first-active-match policy stays deterministic.
type CatalogRepository struct {
	mu    sync.RWMutex
	units map[domaincatalog.UnitID]*domaincatalog.Unit
	rates []*domaincatalog.RateRecord
	byID  map[domaincatalog.RateID]*domaincatalog.RateRecord
}

// NewCatalogRepository builds an empty catalog.
func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{
		units: make(map[domaincatalog.UnitID]*domaincatalog.Unit),
		byID:  make(map[domaincatalog.RateID]*domaincatalog.RateRecord),
	}
}

func (r *CatalogRepository) UnitByID(ctx context.Context, id domaincatalog.UnitID) (*domaincatalog.Unit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	unit, ok := r.units[id]
	if !ok {
		return nil, domaincatalog.ErrUnitNotFound
	}
	return unit, nil
}

func (r *CatalogRepository) RateByID(ctx context.Context, id domaincatalog.RateID) (*domaincatalog.RateRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rate, ok := r.byID[id]
	if !ok {
		return nil, domaincatalog.ErrRateNotFound
	}
	return rate, nil
}

func (r *CatalogRepository) ActiveRate(ctx context.Context, unit domaincatalog.UnitID, mode domaincatalog.BookingMode) (*domaincatalog.RateRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rate := range r.rates {
		if rate.UnitID == unit && rate.Mode == mode && rate.Active {
			return rate, nil
		}
	}
	return nil, domaincatalog.ErrRateNotFound
}

func (r *CatalogRepository) ListActiveUnits(ctx context.Context) ([]*domaincatalog.Unit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	units := make([]*domaincatalog.Unit, 0, len(r.units))
	for _, unit := range r.units {
		if unit.Active {
			units = append(units, unit)
		}
	}
	return units, nil
}

func (r *CatalogRepository) SaveUnit(ctx context.Context, unit *domaincatalog.Unit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.units[unit.ID] = unit
	return nil
}

func (r *CatalogRepository) SaveRate(ctx context.Context, rate *domaincatalog.RateRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[rate.ID]; !exists {
		r.rates = append(r.rates, rate)
	} else {
		for i, stored := range r.rates {
			if stored.ID == rate.ID {
				r.rates[i] = rate
				break
			}
		}
	}
	r.byID[rate.ID] = rate
	return nil
}

var _ domaincatalog.Repository = (*CatalogRepository)(nil)

// BookingRepository stores bookings in memory.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

// NewBookingRepository builds an empty booking repo.
func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return b, nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.Version++
	r.items[b.ID] = b
	return nil
}

func (r *BookingRepository) ListOccupying(ctx context.Context, unit domaincatalog.UnitID, mode domaincatalog.BookingMode) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found []*domainbooking.Booking
	for _, b := range r.items {
		if b.Status.Occupies() && b.Mode == mode && b.HasUnit(unit) {
			found = append(found, b)
		}
	}
	return found, nil
}

func (r *BookingRepository) List(ctx context.Context, scope domainbooking.Scope) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found []*domainbooking.Booking
	for _, b := range r.items {
		if scope.GuestID != "" && b.GuestID != scope.GuestID {
			continue
		}
		found = append(found, b)
	}
	return found, nil
}

var _ domainbooking.Repository = (*BookingRepository)(nil)

// RebookingRepository stores rebooking proposals in memory. Create checks
// and inserts under one lock, which is what keeps two concurrent proposals
// for the same booking from both landing.
type RebookingRepository struct {
	mu    sync.RWMutex
	items map[domainrebooking.RebookingID]*domainrebooking.Rebooking
}

// NewRebookingRepository builds an empty rebooking repo.
func NewRebookingRepository() *RebookingRepository {
	return &RebookingRepository{items: make(map[domainrebooking.RebookingID]*domainrebooking.Rebooking)}
}

func (r *RebookingRepository) ByID(ctx context.Context, id domainrebooking.RebookingID) (*domainrebooking.Rebooking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reb, ok := r.items[id]
	if !ok {
		return nil, domainrebooking.ErrNotFound
	}
	return reb, nil
}

func (r *RebookingRepository) Create(ctx context.Context, reb *domainrebooking.Rebooking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.items {
		if stored.BookingID == reb.BookingID && stored.Status.Outstanding() {
			return domainrebooking.ErrOutstandingExists
		}
	}
	reb.Version++
	r.items[reb.ID] = reb
	return nil
}

func (r *RebookingRepository) Save(ctx context.Context, reb *domainrebooking.Rebooking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reb.Version++
	r.items[reb.ID] = reb
	return nil
}

func (r *RebookingRepository) OutstandingForBooking(ctx context.Context, id domainbooking.BookingID) (*domainrebooking.Rebooking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, stored := range r.items {
		if stored.BookingID == id && stored.Status.Outstanding() {
			return stored, nil
		}
	}
	return nil, domainrebooking.ErrNotFound
}

var _ domainrebooking.Repository = (*RebookingRepository)(nil)
