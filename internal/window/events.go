package window

import "github.com/1broseidon/fluxcore/internal/attrib"

// Event is a decoded protocol event aimed at a managed window. The set of
// implementations is closed; handlers switch over all of them.
type Event interface {
	Target() SurfaceID
	event()
}

// Region is the part of a frame an input event happened in.
type Region int

const (
	RegionClient Region = iota
	RegionFrame
	RegionTitlebar
	RegionLabel
	RegionHandle
	RegionGripLeft
	RegionGripRight
	RegionRoot
)

// Property names a client property that changed.
type Property int

const (
	PropTitle Property = iota
	PropIconTitle
	PropClass
	PropWMHints
	PropNormalHints
	PropTransientFor
	PropProtocols
	PropMotifHints
)

// Modifier is a keyboard modifier mask.
type Modifier uint16

const (
	ModShift Modifier = 1 << 0
	ModCtrl  Modifier = 1 << 2
	ModAlt   Modifier = 1 << 3
)

// Buttons is the mask of pointer buttons held during motion.
type Buttons uint16

const (
	Button1Held Buttons = 1 << iota
	Button2Held
	Button3Held
)

// ConfigMask selects which fields of a ConfigureRequest are set.
type ConfigMask uint16

const (
	ConfigX ConfigMask = 1 << iota
	ConfigY
	ConfigWidth
	ConfigHeight
	ConfigBorder
	ConfigSibling
	ConfigStackMode
)

// StackMode is the stacking request carried by a ConfigureRequest.
type StackMode int

const (
	StackAbove StackMode = iota
	StackBelow
	StackTopIf
	StackBottomIf
	StackOpposite
)

// MapRequest asks for a client to be shown.
type MapRequest struct{ Window SurfaceID }

// MapNotify reports that a client became mapped.
type MapNotify struct{ Window SurfaceID }

// UnmapNotify reports that a client unmapped itself.
type UnmapNotify struct{ Window SurfaceID }

// DestroyNotify reports that a client surface was destroyed.
type DestroyNotify struct{ Window SurfaceID }

// PropertyNotify reports a changed client property.
type PropertyNotify struct {
	Window   SurfaceID
	Property Property
}

// ConfigureRequest is a client asking to change its geometry or stacking.
type ConfigureRequest struct {
	Window    SurfaceID
	Mask      ConfigMask
	X, Y      int
	Width     int
	Height    int
	Border    int
	StackMode StackMode
}

// ButtonPress is a pointer button going down. Client is the tab's surface
// when Region is RegionLabel.
type ButtonPress struct {
	Window       SurfaceID
	Client       SurfaceID
	Region       Region
	Button       int
	Mods         Modifier
	RootX, RootY int
}

// ButtonRelease is a pointer button going up.
type ButtonRelease struct {
	Window       SurfaceID
	Button       int
	RootX, RootY int
}

// Motion is a pointer motion sample.
type Motion struct {
	Window       SurfaceID
	Client       SurfaceID
	Region       Region
	Buttons      Buttons
	Mods         Modifier
	RootX, RootY int
}

// Enter is the pointer entering a frame. Grab is set for crossings caused
// by pointer grabs.
type Enter struct {
	Window SurfaceID
	Grab   bool
}

// Leave is the pointer leaving a frame.
type Leave struct{ Window SurfaceID }

// AttributeRequest is a client asking to change its persisted attributes.
type AttributeRequest struct {
	Window SurfaceID
	Hints  attrib.Hints
}

func (e MapRequest) Target() SurfaceID       { return e.Window }
func (e MapNotify) Target() SurfaceID        { return e.Window }
func (e UnmapNotify) Target() SurfaceID      { return e.Window }
func (e DestroyNotify) Target() SurfaceID    { return e.Window }
func (e PropertyNotify) Target() SurfaceID   { return e.Window }
func (e ConfigureRequest) Target() SurfaceID { return e.Window }
func (e ButtonPress) Target() SurfaceID      { return e.Window }
func (e ButtonRelease) Target() SurfaceID    { return e.Window }
func (e Motion) Target() SurfaceID           { return e.Window }
func (e Enter) Target() SurfaceID            { return e.Window }
func (e Leave) Target() SurfaceID            { return e.Window }
func (e AttributeRequest) Target() SurfaceID { return e.Window }

func (MapRequest) event()       {}
func (MapNotify) event()        {}
func (UnmapNotify) event()      {}
func (DestroyNotify) event()    {}
func (PropertyNotify) event()   {}
func (ConfigureRequest) event() {}
func (ButtonPress) event()      {}
func (ButtonRelease) event()    {}
func (Motion) event()           {}
func (Enter) event()            {}
func (Leave) event()            {}
func (AttributeRequest) event() {}
