package ws

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"chargenet/internal/types"
)

// Server upgrades HTTP connections from stations to WebSockets.
type Server struct {
	manager      *Manager
	logger       *zap.Logger
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
}

// NewServer builds the ws attach endpoint.
func NewServer(manager *Manager, writeTimeout time.Duration, logger *zap.Logger) *Server {
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &Server{
		manager:      manager,
		logger:       logger,
		writeTimeout: writeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// HandleAttach serves GET /ws/{stationID}.
func (s *Server) HandleAttach(w http.ResponseWriter, r *http.Request) {
	stationID := types.StationID(chi.URLParam(r, "stationID"))
	if !stationID.IsSet() {
		http.Error(w, "missing station id", http.StatusBadRequest)
		return
	}

	wsConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed",
			zap.String("station_id", stationID.String()), zap.Error(err))
		return
	}

	conn := NewConnection(stationID, wsConn, s.writeTimeout, s.logger, s.manager.Remove)
	s.manager.Add(conn)
	go conn.ReadLoop()
}
