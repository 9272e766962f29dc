package window

import (
	"errors"
	"time"

	"github.com/1broseidon/fluxcore/internal/attrib"
	"github.com/1broseidon/fluxcore/internal/geom"
	"github.com/1broseidon/fluxcore/internal/hints"
)

// SurfaceID identifies a native surface. Managed windows and transient-for
// links refer to surfaces by id only; the Manager resolves ids.
type SurfaceID uint32

// None is the zero surface. As a reparent target it means the root.
const None SurfaceID = 0

var (
	// ErrSurfaceGone is returned by providers when the target surface was
	// destroyed before the request was made.
	ErrSurfaceGone = errors.New("surface no longer exists")
	// ErrUnmanageable is returned when a surface must not be framed.
	ErrUnmanageable = errors.New("surface cannot be managed")
)

// SurfaceAttributes is the provider's view of a native surface.
type SurfaceAttributes struct {
	Geometry         geom.Rect
	Border           int
	OverrideRedirect bool
	Viewable         bool
}

// Cursor selects the pointer shape used during a grab.
type Cursor int

const (
	CursorMove Cursor = iota
	CursorResizeLeft
	CursorResizeRight
)

// SurfaceProvider performs requests against the native surfaces. Methods
// that can fail because the surface disappeared return ErrSurfaceGone.
type SurfaceProvider interface {
	Attributes(id SurfaceID) (SurfaceAttributes, error)
	Alive(id SurfaceID) bool

	CreateFrame(r geom.Rect, border int) (SurfaceID, error)
	DestroyFrame(frame SurfaceID)
	Reparent(id, parent SurfaceID, x, y int) error
	SetSaveSet(id SurfaceID, add bool)
	MoveResize(id SurfaceID, r geom.Rect) error
	SetBorderWidth(id SurfaceID, width int) error
	Show(id SurfaceID)
	// Hide unmaps id without the resulting unmap being reported back as an
	// UnmapNotify event.
	Hide(id SurfaceID)
	RaiseInFrame(id SurfaceID)
	Restack(order []SurfaceID)
	SendConfigureNotify(id SurfaceID, r geom.Rect, border int)

	GrabButtons(frame, client SurfaceID)
	ReplayPointer()
	GrabPointer(c Cursor) error
	UngrabPointer()
	WarpPointer(dx, dy int)
	SurfaceAt(x, y int) SurfaceID
	// Pointer reports the pointer position in root coordinates.
	Pointer() (x, y int, err error)

	SetInputFocus(id SurfaceID) error
	SendTakeFocus(id SurfaceID) error
	SendDelete(id SurfaceID) error
	Kill(id SurfaceID) error
	InstallColormap(id SurfaceID, install bool)

	DrawOutline(r geom.Rect)
	ClearOutline()
}

// HintDecoder returns decoded client properties. A false second result
// means the property is absent, which is never an error.
type HintDecoder interface {
	Title(id SurfaceID) string
	IconTitle(id SurfaceID) string
	Class(id SurfaceID) (instance, class string)
	SizeHints(id SurfaceID) (hints.SizeHints, bool)
	WMHints(id SurfaceID) (hints.WMHints, bool)
	MotifHints(id SurfaceID) (hints.MotifHints, bool)
	Protocols(id SurfaceID) hints.Protocols
	TransientFor(id SurfaceID) (SurfaceID, bool)
	Modal(id SurfaceID) bool
	AttributeHints(id SurfaceID) (attrib.Hints, bool)
}

// StateStore persists WM_STATE and the attribute record on client
// surfaces.
type StateStore interface {
	WriteState(id SurfaceID, s attrib.State) error
	ReadState(id SurfaceID) (attrib.State, bool)
	WriteAttributes(id SurfaceID, a attrib.Attributes) error
	ReadAttributes(id SurfaceID) (attrib.Attributes, bool)
}

// Screen is the workspace container the windows live in.
type Screen interface {
	Bounds() geom.Rect
	MaxArea() geom.Rect
	CurrentWorkspace() int
	WorkspaceCount() int
	SwitchWorkspace(id int)

	// AddWindow puts w on workspace ws; place asks for automatic placement.
	AddWindow(w *Window, ws int, place bool)
	RemoveWindow(w *Window)
	Reassociate(w *Window, ws int, ignoreSticky bool)
	// SnapTargets returns the outer rectangles w may snap to besides the
	// screen edges: other windows on the current workspace, the toolbar
	// and the slit.
	SnapTargets(w *Window) []geom.Rect

	ShowPosition(x, y int)
	ShowGeometry(unitsW, unitsH int)
	HideGeometry()
}

// Scheduler runs f on the control thread after d. The returned function
// cancels it.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) (stop func())
}

// Change says what about a window changed.
type Change int

const (
	ChangeState Change = iota
	ChangeLayer
	ChangeWorkspace
	ChangeTitle
	ChangeFocus
	ChangeStacking
	ChangeClients
	ChangeDecorations
	ChangeAdded
	ChangeRemoved
)

// String returns the string representation of the change
func (c Change) String() string {
	switch c {
	case ChangeState:
		return "state"
	case ChangeLayer:
		return "layer"
	case ChangeWorkspace:
		return "workspace"
	case ChangeTitle:
		return "title"
	case ChangeFocus:
		return "focus"
	case ChangeStacking:
		return "stacking"
	case ChangeClients:
		return "clients"
	case ChangeDecorations:
		return "decorations"
	case ChangeAdded:
		return "added"
	case ChangeRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Listener is notified after a window changed.
type Listener interface {
	WindowChanged(w *Window, c Change)
}
