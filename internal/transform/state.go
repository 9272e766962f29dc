// Package transform implements interactive move and resize of a frame:
// pointer tracking, edge snapping, size-hint fixing and workspace warping
// at the screen edge.
package transform

// Phase represents the current phase of an interactive transform
type Phase int

const (
	// PhaseInactive means no transform is in progress
	PhaseInactive Phase = iota
	// PhaseMoving means the frame follows the pointer
	PhaseMoving
	// PhaseResizing means one frame edge follows the pointer
	PhaseResizing
)

// String returns the string representation of the phase
func (p Phase) String() string {
	switch p {
	case PhaseInactive:
		return "inactive"
	case PhaseMoving:
		return "moving"
	case PhaseResizing:
		return "resizing"
	default:
		return "unknown"
	}
}

// Edge selects which side of the frame a resize drags.
type Edge int

const (
	// EdgeRight drags the right edge; the left edge stays put
	EdgeRight Edge = iota
	// EdgeLeft drags the left edge; the right edge stays put
	EdgeLeft
)

// Options are the user preferences that shape a move.
type Options struct {
	SnapThreshold    int
	WorkspaceWarping bool
	Opaque           bool
}
