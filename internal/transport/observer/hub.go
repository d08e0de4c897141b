package observer

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"mirror-ca/internal/sims/mirror"
)

type session struct {
	out   chan []byte
	every int
	cells bool
}

// Hub fans completed-tick frames out to observer sessions. Publish is called
// from the stepping goroutine and never blocks it; slow sessions lose frames.
type Hub struct {
	mu        sync.RWMutex
	bootstrap BootstrapResponse
	sessions  map[string]*session
	nextID    atomic.Uint64
	dropped   atomic.Int64
}

func NewHub() *Hub {
	return &Hub{sessions: map[string]*session{}}
}

// SetBootstrap replaces the document served to new observers.
func (h *Hub) SetBootstrap(b BootstrapResponse) {
	b.ProtocolVersion = Version
	h.mu.Lock()
	h.bootstrap = b
	h.mu.Unlock()
}

// Bootstrap returns the document served to new observers.
func (h *Hub) Bootstrap() BootstrapResponse {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.bootstrap
}

// BootstrapFor builds the bootstrap document for w.
func BootstrapFor(w *mirror.World) BootstrapResponse {
	cfg := w.Config()
	palette := make([]uint8, 0, 4*len(w.Palette()))
	for _, c := range w.Palette() {
		palette = append(palette, c.R, c.G, c.B, c.A)
	}
	return BootstrapResponse{
		ProtocolVersion: Version,
		Sim:             w.Name(),
		N:               cfg.N,
		Mode:            string(cfg.Mode),
		Tick:            w.Stats().Ticks,
		Parameters:      w.Parameters(),
		Palette:         palette,
	}
}

// FrameFor encodes the last completed tick of w. Call it between steps.
func FrameFor(w *mirror.World) (Frame, error) {
	s := w.Stats()
	msg := TickMsg{
		Type:            "TICK",
		ProtocolVersion: Version,
		Stats:           s,
		Status:          s.String(),
	}
	statsOnly, err := json.Marshal(msg)
	if err != nil {
		return Frame{}, err
	}
	v := w.View()
	size := w.Size()
	msg.View = &ViewFrame{
		Axis:  v.Axis.String(),
		Index: v.Index,
		W:     size.W,
		H:     size.H,
		Cells: w.Cells(),
	}
	withView, err := json.Marshal(msg)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Ticks: s.Ticks, withView: withView, statsOnly: statsOnly}, nil
}

func (h *Hub) join(sub SubscribeMsg) (string, *session) {
	id := fmt.Sprintf("O%d", h.nextID.Add(1))
	s := &session{out: make(chan []byte, 8)}
	applySubscribe(s, sub)
	h.mu.Lock()
	h.sessions[id] = s
	h.mu.Unlock()
	return id, s
}

func (h *Hub) update(id string, sub SubscribeMsg) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.sessions[id]; ok {
		applySubscribe(s, sub)
	}
}

func (h *Hub) leave(id string) {
	h.mu.Lock()
	delete(h.sessions, id)
	h.mu.Unlock()
}

// Sessions returns the number of connected observers.
func (h *Hub) Sessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Dropped returns the number of frames discarded for slow observers.
func (h *Hub) Dropped() int64 { return h.dropped.Load() }

// Publish queues f to every session whose interval divides the tick count.
func (h *Hub) Publish(f Frame) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.sessions {
		if s.every > 1 && f.Ticks%uint64(s.every) != 0 {
			continue
		}
		b := f.statsOnly
		if s.cells {
			b = f.withView
		}
		select {
		case s.out <- b:
		default:
			h.dropped.Add(1)
		}
	}
}

func applySubscribe(s *session, sub SubscribeMsg) {
	every := sub.Every
	if every <= 0 {
		every = 1
	}
	if every > 10000 {
		every = 10000
	}
	s.every = every
	s.cells = sub.Cells
}
