package devserver

import (
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/harrylevesque/ecoadmin/internal/models"
	"github.com/harrylevesque/ecoadmin/internal/utils"
)

// Resources served under /admin/{resource}, with the wire name of their key.
var resourceKeys = map[string]string{
	"bookings":             "id",
	"itineraries":          "Id",
	"itinerary-requests":   "id",
	"users":                "id",
	"partner-applications": "Id",
	"locations":            "LocationId",
	"feedback":             "id",
}

type collection struct {
	idKey   string
	order   []string
	records map[string]map[string]any
}

// Store is the in-memory backing of the dev server. Records keep whatever
// field casing they were stored with, like the real backends do.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
	analytics   map[string]any
}

// NewStore creates an empty store with every known resource.
func NewStore() *Store {
	s := &Store{collections: make(map[string]*collection)}
	for name, key := range resourceKeys {
		s.collections[name] = &collection{idKey: key, records: make(map[string]map[string]any)}
	}
	return s
}

func notFound(resource string) error {
	return utils.New(http.StatusNotFound, resource+" not found")
}

func (s *Store) collection(resource string) (*collection, error) {
	c, ok := s.collections[resource]
	if !ok {
		return nil, notFound("resource " + resource)
	}
	return c, nil
}

// fieldKey finds the key of rec matching name in any casing.
func fieldKey(rec map[string]any, name string) (string, bool) {
	want := models.Canonical(name)
	if _, ok := rec[name]; ok {
		return name, true
	}
	for k := range rec {
		if models.Canonical(k) == want {
			return k, true
		}
	}
	return "", false
}

func idOf(rec map[string]any, idKey string) string {
	k, ok := fieldKey(rec, idKey)
	if !ok {
		return ""
	}
	return models.Stringify(rec[k])
}

func copyRecord(rec map[string]any) map[string]any {
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

// List returns copies of every record in insertion order.
func (s *Store) List(resource string) ([]map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, err := s.collection(resource)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, copyRecord(c.records[id]))
	}
	return out, nil
}

func (s *Store) Count(resource string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.collections[resource]; ok {
		return len(c.order)
	}
	return 0
}

func (s *Store) Get(resource, id string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, err := s.collection(resource)
	if err != nil {
		return nil, err
	}
	rec, ok := c.records[id]
	if !ok {
		return nil, notFound("record " + id)
	}
	return copyRecord(rec), nil
}

// Create stores rec, assigning a uuid key when it has none.
func (s *Store) Create(resource string, rec map[string]any) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.collection(resource)
	if err != nil {
		return nil, err
	}
	rec = copyRecord(rec)
	id := idOf(rec, c.idKey)
	if id == "" {
		if k, ok := fieldKey(rec, c.idKey); ok {
			delete(rec, k)
		}
		id = uuid.NewString()
		rec[c.idKey] = id
	}
	if _, exists := c.records[id]; exists {
		return nil, utils.New(http.StatusConflict, "record "+id+" already exists")
	}
	c.order = append(c.order, id)
	c.records[id] = rec
	return copyRecord(rec), nil
}

// Update merges patch into the record. Fields keep their stored casing and
// the key cannot change.
func (s *Store) Update(resource, id string, patch map[string]any) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.collection(resource)
	if err != nil {
		return nil, err
	}
	rec, ok := c.records[id]
	if !ok {
		return nil, notFound("record " + id)
	}
	for k, v := range patch {
		if models.Canonical(k) == models.Canonical(c.idKey) {
			continue
		}
		if existing, ok := fieldKey(rec, k); ok {
			k = existing
		}
		rec[k] = v
	}
	return copyRecord(rec), nil
}

// SetStatus writes the record's status field.
func (s *Store) SetStatus(resource, id, status string) (map[string]any, error) {
	if strings.TrimSpace(status) == "" {
		return nil, utils.New(http.StatusBadRequest, "status is required")
	}
	return s.Update(resource, id, map[string]any{"status": status})
}

func (s *Store) Delete(resource, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.collection(resource)
	if err != nil {
		return err
	}
	if _, ok := c.records[id]; !ok {
		return notFound("record " + id)
	}
	delete(c.records, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// Analytics returns the seeded summary, filling TotalBookings from the store
// when the seed leaves it out.
func (s *Store) Analytics() map[string]any {
	s.mu.RLock()
	out := copyRecord(s.analytics)
	s.mu.RUnlock()
	if _, ok := fieldKey(out, "TotalBookings"); !ok {
		out["TotalBookings"] = s.Count("bookings")
	}
	return out
}

func (s *Store) SetAnalytics(a map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analytics = copyRecord(a)
}
