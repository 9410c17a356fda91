package ws

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"chargenet/internal/station"
	"chargenet/internal/types"
)

// Manager tracks station connections and drives the Offline/Online
// condition on the station registry. The EVSE state machine never flips
// connectivity itself; this is the collaborator that does.
type Manager struct {
	registry     *station.Registry
	logger       *zap.Logger
	pingInterval time.Duration

	mu          sync.RWMutex
	connections map[types.StationID]*Connection
}

// NewManager builds the connection manager.
func NewManager(registry *station.Registry, pingInterval time.Duration, logger *zap.Logger) *Manager {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		registry:     registry,
		logger:       logger,
		pingInterval: pingInterval,
		connections:  make(map[types.StationID]*Connection),
	}
}

// Add registers a new connection and brings the station online. An
// existing connection for the same station is replaced and closed.
func (m *Manager) Add(conn *Connection) {
	m.mu.Lock()
	previous := m.connections[conn.StationID()]
	m.connections[conn.StationID()] = conn
	m.mu.Unlock()

	if previous != nil {
		_ = previous.Close()
	}
	if st, ok := m.registry.Get(conn.StationID()); ok {
		st.SetOnline()
	}
	m.logger.Info("station connected", zap.String("station_id", conn.StationID().String()))
}

// Remove drops a connection and takes the station offline.
func (m *Manager) Remove(stationID types.StationID) {
	m.mu.Lock()
	delete(m.connections, stationID)
	m.mu.Unlock()

	if st, ok := m.registry.Get(stationID); ok {
		st.SetOffline()
	}
	m.logger.Info("station disconnected", zap.String("station_id", stationID.String()))
}

// Connected reports whether the station currently has a live link.
func (m *Manager) Connected(stationID types.StationID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.connections[stationID]
	return ok
}

// Start begins the ping loop keeping connections alive.
func (m *Manager) Start(ctx context.Context) {
	ticker := time.NewTicker(m.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.mu.RLock()
			for _, conn := range m.connections {
				_ = conn.Ping()
			}
			m.mu.RUnlock()
		}
	}
}
