package server

import (
	"encoding/json"
	"log/slog"
)

type directMessage struct {
	session *session
	data    []byte
}

// hub tracks the connected sessions and fans messages out to them.
// Sessions are only touched by the hub goroutine.
type hub struct {
	sessions   map[*session]struct{}
	register   chan *session
	unregister chan *session
	broadcast  chan []byte
	direct     chan directMessage
	quit       chan struct{}
	stopped    chan struct{}
	logger     *slog.Logger
}

func newHub(logger *slog.Logger) *hub {
	h := &hub{
		sessions:   make(map[*session]struct{}),
		register:   make(chan *session),
		unregister: make(chan *session),
		broadcast:  make(chan []byte, 16),
		direct:     make(chan directMessage, 16),
		quit:       make(chan struct{}),
		stopped:    make(chan struct{}),
		logger:     logger,
	}
	go h.run()
	return h
}

func (h *hub) run() {
	defer close(h.stopped)
	for {
		select {
		case s := <-h.register:
			h.sessions[s] = struct{}{}
			h.logger.Debug("session registered",
				slog.String("session_id", s.id),
				slog.Int("sessions", len(h.sessions)))
		case s := <-h.unregister:
			if _, ok := h.sessions[s]; ok {
				delete(h.sessions, s)
				close(s.send)
				h.logger.Debug("session unregistered",
					slog.String("session_id", s.id),
					slog.Int("sessions", len(h.sessions)))
			}
		case data := <-h.broadcast:
			for s := range h.sessions {
				h.deliver(s, data)
			}
		case msg := <-h.direct:
			if _, ok := h.sessions[msg.session]; ok {
				h.deliver(msg.session, msg.data)
			}
		case <-h.quit:
			for s := range h.sessions {
				delete(h.sessions, s)
				close(s.send)
			}
			return
		}
	}
}

// deliver never blocks the hub. A session that cannot keep up loses the
// message; the next view replaces it anyway.
func (h *hub) deliver(s *session, data []byte) {
	select {
	case s.send <- data:
	default:
		h.logger.Warn("session send buffer full, message dropped", slog.String("session_id", s.id))
	}
}

func (h *hub) join(s *session) bool {
	select {
	case h.register <- s:
		return true
	case <-h.quit:
		return false
	}
}

func (h *hub) leave(s *session) {
	select {
	case h.unregister <- s:
	case <-h.quit:
	}
}

// publish sends msg to every session.
func (h *hub) publish(msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode message", slog.String("type", msg.Type), slog.String("error", err.Error()))
		return
	}
	select {
	case h.broadcast <- data:
	case <-h.quit:
	}
}

// sendTo sends msg to a single session.
func (h *hub) sendTo(s *session, msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode message", slog.String("type", msg.Type), slog.String("error", err.Error()))
		return
	}
	select {
	case h.direct <- directMessage{session: s, data: data}:
	case <-h.quit:
	}
}

func (h *hub) close() {
	select {
	case <-h.quit:
	default:
		close(h.quit)
	}
	<-h.stopped
}
