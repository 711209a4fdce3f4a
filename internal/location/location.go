// Package location tracks each vehicle's last known position. Updates
// overwrite; the engine keeps no history.
package location

import (
	"sync"

	"github.com/example/transit-messaging/internal/models"
)

// Store is the minimal interface the router and the ETA endpoint need.
type Store interface {
	Upsert(s models.VehicleLocationSample) error
	Last(busID int64) (models.VehicleLocationSample, bool)
}

// Index is the in-memory fallback used when no Redis address is configured.
type Index struct {
	mu      sync.RWMutex
	samples map[int64]models.VehicleLocationSample
}

func NewIndex() *Index {
	return &Index{samples: make(map[int64]models.VehicleLocationSample)}
}

func (i *Index) Upsert(s models.VehicleLocationSample) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.samples[s.BusID] = s
	return nil
}

func (i *Index) Last(busID int64) (models.VehicleLocationSample, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	s, ok := i.samples[busID]
	return s, ok
}
