package ws

import (
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"chargenet/internal/types"
)

// Connection is one live station link. The network core only consumes
// the resulting connected/disconnected condition; payloads carry no
// protocol here.
type Connection struct {
	stationID    types.StationID
	ws           *websocket.Conn
	logger       *zap.Logger
	writeTimeout time.Duration
	onClose      func(types.StationID)
}

// NewConnection wraps an upgraded websocket.
func NewConnection(stationID types.StationID, ws *websocket.Conn, writeTimeout time.Duration, logger *zap.Logger, onClose func(types.StationID)) *Connection {
	return &Connection{
		stationID:    stationID,
		ws:           ws,
		logger:       logger,
		writeTimeout: writeTimeout,
		onClose:      onClose,
	}
}

// StationID returns the connected station's identifier.
func (c *Connection) StationID() types.StationID {
	return c.stationID
}

// ReadLoop consumes frames until the peer goes away, keeping the read
// deadline alive on pongs. Returns when the connection is closed.
func (c *Connection) ReadLoop() {
	defer c.cleanup()
	c.ws.SetReadLimit(64 * 1024)
	c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			c.logger.Info("station connection closed",
				zap.String("station_id", c.stationID.String()), zap.Error(err))
			return
		}
		c.logger.Debug("station frame ignored",
			zap.String("station_id", c.stationID.String()),
			zap.Int("bytes", len(message)))
	}
}

// Ping sends a keepalive probe.
func (c *Connection) Ping() error {
	c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.ws.WriteMessage(websocket.PingMessage, []byte("ping"))
}

// Close tears the link down.
func (c *Connection) Close() error {
	return c.ws.Close()
}

func (c *Connection) cleanup() {
	_ = c.ws.Close()
	if c.onClose != nil {
		c.onClose(c.stationID)
	}
}
