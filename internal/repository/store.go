package repository

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"fleet-dashboard/internal/models"

	"github.com/sirupsen/logrus"
)

var (
	ErrVehicleNotFound           = errors.New("vehicle not found")
	ErrMaintenanceRecordNotFound = errors.New("maintenance record not found")
	ErrInvalidVehicleStatus      = errors.New("invalid vehicle status")
)

// Store holds the fleet and its service history in memory. Every mutation
// recomputes the dashboard statistics before observers are notified.
type Store struct {
	mu         sync.RWMutex
	vehicles   []models.Vehicle
	records    []models.MaintenanceRecord
	stats      models.DashboardStats
	version    uint64
	vehicleSeq idSequence
	recordSeq  idSequence
	now        func() time.Time
	log        logrus.FieldLogger

	observerMu   sync.RWMutex
	observers    []subscription
	nextObserver int
}

type Option func(*Store)

func WithVehicles(vehicles []models.Vehicle) Option {
	return func(s *Store) {
		s.vehicles = append([]models.Vehicle(nil), vehicles...)
	}
}

func WithMaintenanceRecords(records []models.MaintenanceRecord) Option {
	return func(s *Store) {
		s.records = append([]models.MaintenanceRecord(nil), records...)
	}
}

// WithClock replaces time.Now for date assignment and statistics.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Store) {
		s.log = log
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		vehicles: []models.Vehicle{},
		records:  []models.MaintenanceRecord{},
		now:      time.Now,
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, v := range s.vehicles {
		s.vehicleSeq.observe(v.ID)
	}
	for _, r := range s.records {
		s.recordSeq.observe(r.ID)
	}
	s.stats = ComputeStatistics(s.vehicles, s.records, s.now())

	return s
}

// Vehicles returns a copy of the fleet in insertion order.
func (s *Store) Vehicles() []models.Vehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Vehicle(nil), s.vehicles...)
}

// MaintenanceRecords returns a copy of every record in insertion order.
func (s *Store) MaintenanceRecords() []models.MaintenanceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.MaintenanceRecord(nil), s.records...)
}

// Snapshot returns both collections as of the same instant.
func (s *Store) Snapshot() ([]models.Vehicle, []models.MaintenanceRecord) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Vehicle(nil), s.vehicles...), append([]models.MaintenanceRecord(nil), s.records...)
}

func (s *Store) GetStatistics() models.DashboardStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// RefreshStatistics recomputes the time-dependent counts against the
// current clock without mutating either collection.
func (s *Store) RefreshStatistics() models.DashboardStats {
	s.mu.Lock()
	stats := s.recompute()
	s.mu.Unlock()

	s.notify(ChangeEvent{
		Kind:  StatisticsRefreshed,
		Stats: stats,
	})
	return stats
}

// Now exposes the store clock so callers share one notion of today.
func (s *Store) Now() time.Time {
	return s.now()
}

// Version increases with every mutation and statistics refresh. Views
// derived from the store can compare it to detect that they are stale.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// recompute must be called with mu held for writing.
func (s *Store) recompute() models.DashboardStats {
	s.stats = ComputeStatistics(s.vehicles, s.records, s.now())
	s.version++
	return s.stats
}

type subscription struct {
	id int
	fn Observer
}

// Subscribe registers fn for every change. The returned func removes it.
func (s *Store) Subscribe(fn Observer) func() {
	s.observerMu.Lock()
	defer s.observerMu.Unlock()

	s.nextObserver++
	id := s.nextObserver
	s.observers = append(s.observers, subscription{id: id, fn: fn})

	return func() {
		s.observerMu.Lock()
		defer s.observerMu.Unlock()
		for i, sub := range s.observers {
			if sub.id == id {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// notify runs outside mu so observers may read the store.
func (s *Store) notify(event ChangeEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}

	s.observerMu.RLock()
	observers := make([]subscription, len(s.observers))
	copy(observers, s.observers)
	s.observerMu.RUnlock()

	for _, sub := range observers {
		sub.fn(event)
	}
}

// idSequence hands out decimal ids that are never reused, even after the
// entity holding the highest id is deleted.
type idSequence struct {
	last uint64
}

func (q *idSequence) next() string {
	q.last++
	return strconv.FormatUint(q.last, 10)
}

func (q *idSequence) observe(id string) {
	if n, err := strconv.ParseUint(id, 10, 64); err == nil && n > q.last {
		q.last = n
	}
}
