package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// How long a single write to a listener may block the publisher
var feedWriteWait = 5 * time.Second

type feedConn interface {
	SetWriteDeadline(t time.Time) error
	WriteMessage(messageType int, data []byte) error
}

// feedWriter serializes writes to one connection and stops after the first failure
type feedWriter struct {
	mutex       sync.Mutex
	conn        feedConn
	isConnected bool
}

func newFeedWriter(conn feedConn) *feedWriter {
	return &feedWriter{conn: conn, isConnected: true}
}

func (w *feedWriter) write(mt int, data []byte) bool {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if !w.isConnected {
		return false
	}
	if err := w.conn.SetWriteDeadline(time.Now().Add(feedWriteWait)); err != nil {
		w.isConnected = false
		return false
	}
	if err := w.conn.WriteMessage(mt, data); err != nil {
		log.Debug("Websocket write failed", "error", err)
		w.isConnected = false
		return false
	}
	return true
}

func (w *feedWriter) close() {
	w.mutex.Lock()
	w.isConnected = false
	w.mutex.Unlock()
}

// CommunityFeed streams the attributions of one guild over a websocket
func CommunityFeed(c *gin.Context) {
	guildID := c.Param("id")
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// Writes come from the publishing goroutines as well as from the ping replies below
	writer := newFeedWriter(conn)
	client, unsubscribe := hub.Subscribe(guildID, func(data []byte) bool {
		return writer.write(websocket.TextMessage, data)
	})
	defer unsubscribe()
	log.Debug("Feed listener connected", "guild_id", guildID, "client_id", client.ID)

	// Main read cycle
	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			writer.close()
			break
		}
		if string(message) == "ping" {
			writer.write(mt, []byte("pong"))
		}
	}
	log.Debug("Feed listener left", "guild_id", guildID, "client_id", client.ID)
}
