package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/nao1215/worklog"
	"github.com/nao1215/worklog/domain/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer
	maxMessageSize = 4096
	// Outgoing messages buffered per session
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// session is one connected grid. Search and scroll events are paced on the
// read goroutine before they reach the coordinator.
type session struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	server *Server
	logger *slog.Logger

	search         *worklog.Debouncer
	scroll         *worklog.FrameThrottle
	trailingScroll *worklog.Debouncer
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already replied
		s.requestLogger(r).Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	id := uuid.NewString()
	sess := &session{
		id:             id,
		conn:           conn,
		send:           make(chan []byte, sendBuffer),
		server:         s,
		logger:         s.logger.With(slog.String("session_id", id)),
		search:         worklog.NewDebouncer(s.opts.searchDebounce),
		scroll:         worklog.NewFrameThrottle(s.opts.scrollThrottle),
		trailingScroll: worklog.NewDebouncer(s.opts.scrollThrottle),
	}
	if !s.hub.join(sess) {
		_ = conn.Close()
		return
	}
	sess.logger.Info("websocket session opened")

	go sess.writePump()
	if view, err := s.view(); err == nil {
		s.hub.sendTo(sess, ServerMessage{Type: MessageView, View: view})
	}
	sess.readPump()
}

func (c *session) readPump() {
	defer func() {
		c.search.Stop()
		c.trailingScroll.Stop()
		c.server.hub.leave(c)
		_ = c.conn.Close()
		c.logger.Info("websocket session closed")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("unexpected websocket close", slog.String("error", err.Error()))
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.reject(err)
			continue
		}
		if err := c.server.validate.Struct(msg); err != nil {
			c.reject(err)
			continue
		}
		c.dispatch(msg)
	}
}

func (c *session) dispatch(msg ClientMessage) {
	switch msg.Type {
	case MessageSearch:
		term := msg.Term
		c.search.Trigger(func() {
			c.server.apply(func(p *worklog.Pipeline) { p.Search(term) })
		})
	case MessageSort:
		col, err := model.ParseColumn(msg.Column)
		if err != nil {
			c.reject(err)
			return
		}
		c.server.apply(func(p *worklog.Pipeline) { p.ClickSort(col) })
	case MessageScroll:
		offset := msg.Offset
		scroll := func() { c.server.scroll(offset) }
		if c.scroll.Do(scroll) {
			c.trailingScroll.Stop()
			return
		}
		// deliver the final position once scrolling pauses
		c.trailingScroll.Trigger(scroll)
	}
}

func (c *session) reject(err error) {
	c.server.hub.sendTo(c, ServerMessage{Type: MessageError, Error: errorFor(err)})
}

func (c *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Debug("websocket write failed", slog.String("error", err.Error()))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
