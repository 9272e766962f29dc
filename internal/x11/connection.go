// Package x11 connects the window core to an X server: it performs the
// surface requests, decodes client properties, persists window manager
// state on clients, translates protocol events and publishes EWMH root
// properties.
package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/fluxcore/internal/geom"
	"github.com/1broseidon/fluxcore/internal/window"
)

// ErrOtherWM is returned by BecomeWM when another window manager already
// selected substructure redirection on the root.
var ErrOtherWM = errors.New("another window manager is running")

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	check *xwindow.Window
}

// NewConnection establishes a connection to the X11 server. An empty
// display uses $DISPLAY.
func NewConnection(display string) (*Connection, error) {
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to display %q: %w", display, err)
	}

	// Initialize keybind and mousebind (required for global hotkeys and
	// the button grabs on frames)
	keybind.Initialize(xu)
	mousebind.Initialize(xu)

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// BecomeWM selects substructure redirection on the root and creates the
// _NET_SUPPORTING_WM_CHECK window named name.
func (c *Connection) BecomeWM(name string) error {
	root := xwindow.New(c.XUtil, c.Root)
	err := root.Listen(
		xproto.EventMaskSubstructureRedirect,
		xproto.EventMaskSubstructureNotify,
		xproto.EventMaskStructureNotify,
		xproto.EventMaskPropertyChange,
		xproto.EventMaskFocusChange,
	)
	if err != nil {
		var access xproto.AccessError
		if errors.As(err, &access) {
			return ErrOtherWM
		}
		return fmt.Errorf("failed to select root events: %w", err)
	}

	check, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return fmt.Errorf("failed to allocate check window: %w", err)
	}
	if err := check.CreateChecked(c.Root, -1, -1, 1, 1, xproto.CwOverrideRedirect, 1); err != nil {
		return fmt.Errorf("failed to create check window: %w", err)
	}
	c.check = check

	if err := ewmh.SupportingWmCheckSet(c.XUtil, c.Root, check.Id); err != nil {
		return err
	}
	if err := ewmh.SupportingWmCheckSet(c.XUtil, check.Id, check.Id); err != nil {
		return err
	}
	return ewmh.WmNameSet(c.XUtil, check.Id, name)
}

// RootGeometry returns the root window rectangle.
func (c *Connection) RootGeometry() geom.Rect {
	r := xwindow.RootGeometry(c.XUtil)
	return geom.Rect{X: r.X(), Y: r.Y(), Width: r.Width(), Height: r.Height()}
}

// TopLevels returns the mapped, non override-redirect children of the root
// in stacking order, bottom first.
func (c *Connection) TopLevels() ([]window.SurfaceID, error) {
	tree, err := xproto.QueryTree(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to query root children: %w", err)
	}

	var ids []window.SurfaceID
	for _, child := range tree.Children {
		if c.check != nil && child == c.check.Id {
			continue
		}
		attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), child).Reply()
		if err != nil {
			continue
		}
		if attrs.OverrideRedirect || attrs.MapState != xproto.MapStateViewable {
			continue
		}
		ids = append(ids, window.SurfaceID(child))
	}
	return ids, nil
}

// Quit stops the X event loop.
func (c *Connection) Quit() {
	xevent.Quit(c.XUtil)
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	if c.check != nil {
		c.check.Destroy()
		c.check = nil
	}
	c.XUtil.Conn().Close()
}
