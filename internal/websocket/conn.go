package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/jerseylab/jerseylab-backend/pkg/logger"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second

	// must stay below pongWait
	pingPeriod = pongWait * 9 / 10

	// the feed is server to client; clients only send pings
	maxMessageSize = 1024
)

// Conn is the socket behind a feed client.
type Conn struct {
	*websocket.Conn
}

func (c *Conn) writeFrame(messageType int, data []byte) error {
	c.SetWriteDeadline(time.Now().Add(writeWait))
	return c.WriteMessage(messageType, data)
}

// ReadPump keeps the read side alive and hands client frames to the hub.
// It returns once the peer goes away, unregistering the client.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	extend := func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	}
	extend("")
	c.Conn.SetPongHandler(extend)

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("Admin feed connection dropped", logger.Fields{
					"user_id": c.UserID,
					"error":   err.Error(),
				})
			}
			return
		}
		c.Hub.HandleClientMessage(c, message)
	}
}

// WritePump delivers feed events one frame each and pings the peer.
// A closed Send channel ends the session with a normal close frame.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.Send:
			if !ok {
				closing := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "feed closed")
				c.Conn.writeFrame(websocket.CloseMessage, closing)
				return
			}
			if err := c.Conn.writeFrame(websocket.TextMessage, event); err != nil {
				logger.Warn("Failed to deliver feed event", logger.Fields{
					"user_id": c.UserID,
					"error":   err.Error(),
				})
				return
			}

		case <-ticker.C:
			if err := c.Conn.writeFrame(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
