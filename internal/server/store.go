package server

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/gabor-tools-mcp/internal/gabor"
	"github.com/ironsheep/gabor-tools-mcp/internal/ndarray"
)

// Result is one stored gabor_compute run.
type Result struct {
	ID      string
	Path    string
	Created time.Time

	Bank   gabor.BankSpec
	Params gabor.Params

	// Output holds phases*orientations response planes.
	Output ndarray.View[float32]

	// ROI and OutputBox are in plane and output coordinates.
	ROI       gabor.Rect
	OutputBox gabor.Rect

	// Region and Scale map plane coordinates back onto the source image.
	Region image.Rectangle
	Scale  float64
}

// Orientations returns the angle of every filter in degrees.
func (r *Result) Orientations() []float64 {
	angles := make([]float64, r.Bank.Orientations)
	for i := range angles {
		angles[i] = r.Bank.OrientationDegrees(i)
	}
	return angles
}

// ResultStore keeps the most recent results, evicting the oldest once
// capacity is reached.
type ResultStore struct {
	mu       sync.Mutex
	capacity int
	order    []string
	items    map[string]*Result
}

// NewResultStore creates a store holding at most capacity results. A
// capacity below 1 is treated as 1.
func NewResultStore(capacity int) *ResultStore {
	return &ResultStore{
		capacity: max(capacity, 1),
		items:    make(map[string]*Result),
	}
}

// Put assigns r a fresh ID, stores it and returns the ID.
func (s *ResultStore) Put(r *Result) string {
	r.ID = uuid.NewString()
	r.Created = time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.order) >= s.capacity {
		delete(s.items, s.order[0])
		s.order = s.order[1:]
	}
	s.items[r.ID] = r
	s.order = append(s.order, r.ID)
	return r.ID
}

// Get returns the result stored under id.
func (s *ResultStore) Get(id string) (*Result, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid result id %q: %w", id, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("unknown result id %s (results expire after %d newer runs)", id, s.capacity)
	}
	return r, nil
}

// Len reports the number of stored results.
func (s *ResultStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}
