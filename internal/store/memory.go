package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/aqimon/aqi-alerting/internal/airquality"
)

// LocationStore is a concurrency-safe in-memory location record store with a
// case-insensitive name index. Saves are last-write-wins, which keeps
// concurrent backfill races idempotent instead of producing duplicates.
type LocationStore struct {
	mu     sync.RWMutex
	byID   map[string]airquality.Location
	byName map[string]string // lowercased name -> id
}

// NewLocationStore creates an empty LocationStore.
func NewLocationStore() *LocationStore {
	return &LocationStore{
		byID:   make(map[string]airquality.Location),
		byName: make(map[string]string),
	}
}

// FindByName looks up a location by exact name, case-insensitively.
func (s *LocationStore) FindByName(name string) (airquality.Location, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return airquality.Location{}, false
	}
	loc, ok := s.byID[id]
	return loc, ok
}

// Get returns a location by id.
func (s *LocationStore) Get(id string) (airquality.Location, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	loc, ok := s.byID[id]
	return loc, ok
}

// Save inserts or updates a location by id and refreshes the name index.
func (s *LocationStore) Save(loc airquality.Location) airquality.Location {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Drop the stale index entry when a backfill renamed the location.
	if prev, ok := s.byID[loc.ID]; ok && !strings.EqualFold(prev.Name, loc.Name) {
		delete(s.byName, strings.ToLower(prev.Name))
	}

	s.byID[loc.ID] = loc
	s.byName[strings.ToLower(loc.Name)] = loc.ID
	return loc
}

// ReadingStore keeps append-only reading histories per location with the
// same count/age retention options as any bounded snapshot store.
type ReadingStore struct {
	mu         sync.RWMutex
	byLocation map[string][]airquality.Reading

	maxHistory int           // max readings per location, <= 0 means unlimited
	maxAge     time.Duration // max reading age, 0 means unlimited
}

// NewReadingStore creates a ReadingStore with optional retention limits.
func NewReadingStore(maxHistory int, maxAge time.Duration) *ReadingStore {
	return &ReadingStore{
		byLocation: make(map[string][]airquality.Reading),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// Save appends a reading to its location's history and enforces retention.
func (s *ReadingStore) Save(r airquality.Reading) airquality.Reading {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.byLocation[r.LocationID], r)

	if s.maxHistory > 0 && len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}
	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(history); i++ {
			if !history[i].RecordedAt.Before(cutoff) {
				break
			}
		}
		if i > 0 && i < len(history) {
			history = history[i:]
		}
	}

	s.byLocation[r.LocationID] = history
	return r
}

// LatestFor returns the reading with the greatest RecordedAt for a location.
func (s *ReadingStore) LatestFor(locationID string) (airquality.Reading, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.byLocation[locationID]
	if len(history) == 0 {
		return airquality.Reading{}, false
	}

	latest := history[0]
	for _, r := range history[1:] {
		if r.RecordedAt.After(latest.RecordedAt) {
			latest = r
		}
	}
	return latest, true
}

// HistoryFor returns all readings for a location, newest first.
func (s *ReadingStore) HistoryFor(locationID string) []airquality.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.byLocation[locationID]
	out := make([]airquality.Reading, len(history))
	copy(out, history)
	sort.Slice(out, func(i, j int) bool {
		return out[i].RecordedAt.After(out[j].RecordedAt)
	})
	return out
}

// SubscriberStore holds subscribers in insertion order. The registration
// collaborator owns writes; the pipeline only enumerates and reads.
type SubscriberStore struct {
	mu    sync.RWMutex
	byID  map[string]airquality.Subscriber
	order []string
}

// NewSubscriberStore creates an empty SubscriberStore.
func NewSubscriberStore() *SubscriberStore {
	return &SubscriberStore{byID: make(map[string]airquality.Subscriber)}
}

// All returns subscribers in insertion order. Order is a processing
// convenience, not a guarantee.
func (s *SubscriberStore) All() []airquality.Subscriber {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]airquality.Subscriber, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Get returns a subscriber by id.
func (s *SubscriberStore) Get(id string) (airquality.Subscriber, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.byID[id]
	return sub, ok
}

// Save inserts or updates a subscriber, assigning an ID when absent.
func (s *SubscriberStore) Save(sub airquality.Subscriber) airquality.Subscriber {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if _, exists := s.byID[sub.ID]; !exists {
		s.order = append(s.order, sub.ID)
	}
	s.byID[sub.ID] = sub
	return sub
}

// NotificationStore records alert notifications per subscriber.
type NotificationStore struct {
	mu           sync.RWMutex
	byID         map[string]airquality.Notification
	bySubscriber map[string][]string
	clock        clockwork.Clock
}

// NewNotificationStore creates a NotificationStore. A nil clock falls back
// to the real clock.
func NewNotificationStore(clock clockwork.Clock) *NotificationStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &NotificationStore{
		byID:         make(map[string]airquality.Notification),
		bySubscriber: make(map[string][]string),
		clock:        clock,
	}
}

// Create records a new unread notification.
func (s *NotificationStore) Create(subscriberID, locationID, message string) airquality.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := airquality.Notification{
		ID:           uuid.NewString(),
		SubscriberID: subscriberID,
		LocationID:   locationID,
		Message:      message,
		IsRead:       false,
		CreatedAt:    s.clock.Now().UTC(),
	}
	s.byID[n.ID] = n
	s.bySubscriber[subscriberID] = append(s.bySubscriber[subscriberID], n.ID)
	return n
}

// ForSubscriber returns a subscriber's notifications, newest first.
func (s *NotificationStore) ForSubscriber(subscriberID string) []airquality.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.bySubscriber[subscriberID]
	out := make([]airquality.Notification, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		out = append(out, s.byID[ids[i]])
	}
	return out
}

// MarkRead flags a notification as read.
func (s *NotificationStore) MarkRead(id string) (airquality.Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.byID[id]
	if !ok {
		return airquality.Notification{}, false
	}
	n.IsRead = true
	s.byID[id] = n
	return n, true
}
