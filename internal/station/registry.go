package station

import (
	"sync"

	"go.uber.org/zap"

	"chargenet/internal/types"
)

// Registry tracks charging stations by id for quick lookups.
type Registry struct {
	logger *zap.Logger

	mu       sync.RWMutex
	stations map[types.StationID]*ChargingStation
	hooks    []AddHook
}

// NewRegistry returns an empty station registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		logger:   logger,
		stations: make(map[types.StationID]*ChargingStation),
	}
}

// RegisterAddHook attaches an EVSE-addition observer to every current
// and future station in the registry.
func (r *Registry) RegisterAddHook(hook AddHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, hook)
	for _, st := range r.stations {
		st.RegisterAddHook(hook)
	}
}

// Create adds a station, returning the existing one on duplicate id.
func (r *Registry) Create(id types.StationID) *ChargingStation {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.stations[id]; ok {
		return existing
	}
	st := NewChargingStation(id, r.logger)
	for _, hook := range r.hooks {
		st.RegisterAddHook(hook)
	}
	r.stations[id] = st
	return st
}

// Get looks up a station by id.
func (r *Registry) Get(id types.StationID) (*ChargingStation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.stations[id]
	return st, ok
}

// List returns all registered stations.
func (r *Registry) List() []*ChargingStation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*ChargingStation, 0, len(r.stations))
	for _, st := range r.stations {
		list = append(list, st)
	}
	return list
}
