package observer

import (
	"mirror-ca/internal/core"
	"mirror-ca/internal/sims/mirror"
)

// Version is the observer protocol version.
const Version = "0.1"

// SubscribeMsg is the first client message; it may be re-sent to change the
// frame interval.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	// Every sends one frame per Every completed ticks.
	Every int `json:"every,omitempty"`
	// Cells requests the view plane in each frame.
	Cells bool `json:"cells,omitempty"`
}

// BootstrapResponse is served on GET /bootstrap.
type BootstrapResponse struct {
	ProtocolVersion string                 `json:"protocol_version"`
	Sim             string                 `json:"sim"`
	N               int                    `json:"n"`
	Mode            string                 `json:"mode"`
	Tick            uint64                 `json:"tick"`
	Parameters      core.ParameterSnapshot `json:"parameters"`
	// Palette is RGBA quadruples indexed by display byte.
	Palette []uint8 `json:"palette"`
}

// TickMsg is sent after completed ticks.
type TickMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	Stats           mirror.Stats `json:"stats"`
	Status          string       `json:"status"`
	View            *ViewFrame   `json:"view,omitempty"`
}

// ViewFrame carries the display bytes of the current view plane.
type ViewFrame struct {
	Axis  string `json:"axis"`
	Index int    `json:"index"`
	W     int    `json:"w"`
	H     int    `json:"h"`
	Cells []byte `json:"cells"`
}

// Frame is one published tick, pre-encoded with and without the view plane.
type Frame struct {
	Ticks     uint64
	withView  []byte
	statsOnly []byte
}
