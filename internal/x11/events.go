package x11

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"

	"github.com/1broseidon/fluxcore/internal/geom"
	"github.com/1broseidon/fluxcore/internal/hints"
	"github.com/1broseidon/fluxcore/internal/screen"
	"github.com/1broseidon/fluxcore/internal/window"
)

// Keyboard modifiers and held buttons forwarded to the core.
const (
	modMask    = xproto.ModMaskShift | xproto.ModMaskControl | xproto.ModMask1
	buttonMask = xproto.KeyButMaskButton1 | xproto.KeyButMaskButton2 | xproto.KeyButMaskButton3
)

// Events translates X events into window core events and runs the
// client messages and dock bookkeeping the core does not know about.
type Events struct {
	conn   *Connection
	prov   *Provider
	dec    *Decoder
	mgr    *window.Manager
	scr    *screen.Screen
	pub    *Publisher
	logger *slog.Logger

	docks []window.SurfaceID
}

// NewEvents creates the translator.
func NewEvents(conn *Connection, prov *Provider, dec *Decoder, mgr *window.Manager, scr *screen.Screen, pub *Publisher, logger *slog.Logger) *Events {
	if logger == nil {
		logger = slog.Default()
	}
	return &Events{
		conn:   conn,
		prov:   prov,
		dec:    dec,
		mgr:    mgr,
		scr:    scr,
		pub:    pub,
		logger: logger,
	}
}

// Connect installs the translator as an xevent hook and subscribes to
// RandR screen changes. Key events pass through to keybind callbacks.
func (e *Events) Connect() {
	if err := randr.Init(e.conn.XUtil.Conn()); err != nil {
		e.logger.Warn("randr unavailable, screen changes will not be tracked", "error", err)
	} else {
		randr.SelectInput(e.conn.XUtil.Conn(), e.conn.Root, randr.NotifyMaskScreenChange)
	}
	xevent.HookFun(func(_ *xgbutil.XUtil, ev interface{}) bool {
		e.handle(ev)
		return true
	}).Connect(e.conn.XUtil)
}

// Adopt frames the windows found at startup and maps docks unmanaged.
func (e *Events) Adopt(ids []window.SurfaceID) {
	var clients []window.SurfaceID
	for _, id := range ids {
		if IsDock(e.dec.WindowTypes(id)) {
			e.addDock(id)
			continue
		}
		clients = append(clients, id)
	}
	e.mgr.Adopt(clients)
}

func (e *Events) handle(ev interface{}) {
	switch x := ev.(type) {
	case xproto.MapRequestEvent:
		e.mapRequest(x)
	case xproto.MapNotifyEvent:
		if e.prov.IsFrame(window.SurfaceID(x.Window)) {
			return
		}
		e.mgr.Dispatch(window.MapNotify{Window: window.SurfaceID(x.Window)})
	case xproto.UnmapNotifyEvent:
		e.unmapNotify(x)
	case xproto.DestroyNotifyEvent:
		id := window.SurfaceID(x.Window)
		if e.prov.IsFrame(id) {
			return
		}
		delete(e.prov.ignoreUnmap, id)
		if e.removeDock(id) {
			return
		}
		e.mgr.Dispatch(window.DestroyNotify{Window: id})
	case xproto.ConfigureRequestEvent:
		e.configureRequest(x)
	case xproto.PropertyNotifyEvent:
		e.propertyNotify(x)
	case xproto.ButtonPressEvent:
		e.buttonPress(x)
	case xproto.ButtonReleaseEvent:
		e.mgr.Dispatch(window.ButtonRelease{
			Window: window.SurfaceID(x.Event),
			Button: int(x.Detail),
			RootX:  int(x.RootX),
			RootY:  int(x.RootY),
		})
	case xproto.MotionNotifyEvent:
		e.motion(x)
	case xproto.EnterNotifyEvent:
		if x.Detail == xproto.NotifyDetailInferior {
			return
		}
		e.mgr.Dispatch(window.Enter{
			Window: window.SurfaceID(x.Event),
			Grab:   x.Mode != xproto.NotifyModeNormal,
		})
	case xproto.LeaveNotifyEvent:
		if x.Detail == xproto.NotifyDetailInferior {
			return
		}
		e.mgr.Dispatch(window.Leave{Window: window.SurfaceID(x.Event)})
	case xproto.ClientMessageEvent:
		e.clientMessage(x)
	case randr.ScreenChangeNotifyEvent:
		e.scr.SetBounds(geom.Rect{Width: int(x.Width), Height: int(x.Height)})
		e.refreshStruts()
	}
}

func (e *Events) mapRequest(x xproto.MapRequestEvent) {
	id := window.SurfaceID(x.Window)
	if _, managed := e.mgr.Lookup(id); !managed && IsDock(e.dec.WindowTypes(id)) {
		xproto.MapWindow(e.conn.XUtil.Conn(), x.Window)
		e.addDock(id)
		return
	}
	e.mgr.Dispatch(window.MapRequest{Window: id})
}

func (e *Events) unmapNotify(x xproto.UnmapNotifyEvent) {
	id := window.SurfaceID(x.Window)
	if e.prov.IsFrame(id) {
		return
	}
	if e.prov.consumeUnmap(id) {
		return
	}
	if e.removeDock(id) {
		return
	}
	e.mgr.Dispatch(window.UnmapNotify{Window: id})
}

func (e *Events) configureRequest(x xproto.ConfigureRequestEvent) {
	id := window.SurfaceID(x.Window)
	if _, managed := e.mgr.Lookup(id); managed {
		e.mgr.Dispatch(window.ConfigureRequest{
			Window:    id,
			Mask:      window.ConfigMask(x.ValueMask),
			X:         int(x.X),
			Y:         int(x.Y),
			Width:     int(x.Width),
			Height:    int(x.Height),
			Border:    int(x.BorderWidth),
			StackMode: window.StackMode(x.StackMode),
		})
		return
	}

	// Not ours: grant the request as asked.
	mask, values := configureValues(x)
	xproto.ConfigureWindow(e.conn.XUtil.Conn(), x.Window, mask, values)
}

// configureValues rebuilds the value list of a ConfigureRequest in mask
// bit order.
func configureValues(x xproto.ConfigureRequestEvent) (uint16, []uint32) {
	var values []uint32
	mask := x.ValueMask
	if mask&xproto.ConfigWindowX != 0 {
		values = append(values, uint32(int32(x.X)))
	}
	if mask&xproto.ConfigWindowY != 0 {
		values = append(values, uint32(int32(x.Y)))
	}
	if mask&xproto.ConfigWindowWidth != 0 {
		values = append(values, uint32(x.Width))
	}
	if mask&xproto.ConfigWindowHeight != 0 {
		values = append(values, uint32(x.Height))
	}
	if mask&xproto.ConfigWindowBorderWidth != 0 {
		values = append(values, uint32(x.BorderWidth))
	}
	if mask&xproto.ConfigWindowSibling != 0 {
		values = append(values, uint32(x.Sibling))
	}
	if mask&xproto.ConfigWindowStackMode != 0 {
		values = append(values, uint32(x.StackMode))
	}
	return mask, values
}

// propertyAtoms maps client property names to the core's property kinds.
var propertyAtoms = map[string]window.Property{
	"WM_NAME":           window.PropTitle,
	"_NET_WM_NAME":      window.PropTitle,
	"WM_ICON_NAME":      window.PropIconTitle,
	"_NET_WM_ICON_NAME": window.PropIconTitle,
	"WM_CLASS":          window.PropClass,
	"WM_HINTS":          window.PropWMHints,
	"WM_NORMAL_HINTS":   window.PropNormalHints,
	"WM_TRANSIENT_FOR":  window.PropTransientFor,
	"WM_PROTOCOLS":      window.PropProtocols,
	"_MOTIF_WM_HINTS":   window.PropMotifHints,
}

func (e *Events) propertyNotify(x xproto.PropertyNotifyEvent) {
	id := window.SurfaceID(x.Window)
	name, err := xprop.AtomName(e.conn.XUtil, x.Atom)
	if err != nil {
		return
	}

	switch name {
	case "_NET_WM_STRUT", "_NET_WM_STRUT_PARTIAL":
		if slices.Contains(e.docks, id) {
			e.refreshStruts()
		}
		return
	case AtomAttributeHints:
		if h, ok := e.dec.AttributeHints(id); ok {
			e.mgr.Dispatch(window.AttributeRequest{Window: id, Hints: h})
		}
		return
	}

	if prop, ok := propertyAtoms[name]; ok {
		e.mgr.Dispatch(window.PropertyNotify{Window: id, Property: prop})
	}
}

func (e *Events) buttonPress(x xproto.ButtonPressEvent) {
	id := window.SurfaceID(x.Event)
	region, client, ok := e.region(id, int(x.EventX), int(x.EventY))
	if !ok {
		return
	}
	e.mgr.Dispatch(window.ButtonPress{
		Window: id,
		Client: client,
		Region: region,
		Button: int(x.Detail),
		Mods:   window.Modifier(x.State & modMask),
		RootX:  int(x.RootX),
		RootY:  int(x.RootY),
	})
}

func (e *Events) motion(x xproto.MotionNotifyEvent) {
	id := window.SurfaceID(x.Event)
	region, client, _ := e.region(id, int(x.EventX), int(x.EventY))
	e.mgr.Dispatch(window.Motion{
		Window:  id,
		Client:  client,
		Region:  region,
		Buttons: window.Buttons((x.State & buttonMask) >> 8),
		Mods:    window.Modifier(x.State & modMask),
		RootX:   int(x.RootX),
		RootY:   int(x.RootY),
	})
}

// region finds the frame part under a point given in id's coordinates.
func (e *Events) region(id window.SurfaceID, x, y int) (window.Region, window.SurfaceID, bool) {
	w, ok := e.mgr.Lookup(id)
	if !ok {
		return window.RegionRoot, window.None, false
	}
	if id != w.ID() {
		return window.RegionClient, id, true
	}
	clients := w.Clients()
	region, tab := frameRegion(w.Geometry(), w.Decorations(), w.IsShaded(), e.mgr.Options().Theme, len(clients), x, y)
	if region == window.RegionLabel && tab >= 0 && tab < len(clients) {
		return region, clients[tab], true
	}
	return region, w.Client(), true
}

// frameRegion maps a point inside a frame of the given size to the frame
// part it falls in. tab is the index of the client whose tab is under a
// label point, or -1.
func frameRegion(size geom.Rect, decor hints.Decorations, shaded bool, theme window.Theme, clients, x, y int) (region window.Region, tab int) {
	titleH := 0
	if decor.Titlebar {
		titleH = theme.TitleHeight
	}
	handleH := 0
	if decor.Handle && !shaded {
		handleH = theme.HandleHeight
	}
	height := size.Height
	if shaded {
		height = max(1, titleH)
	}

	if y < titleH {
		labelX := titleH
		labelW := size.Width - 2*titleH
		if labelW > 0 && x >= labelX && x < labelX+labelW {
			if clients < 1 {
				return window.RegionLabel, -1
			}
			return window.RegionLabel, (x - labelX) * clients / labelW
		}
		return window.RegionTitlebar, -1
	}

	if handleH > 0 && y >= height-handleH {
		grip := min(max(titleH, 20), size.Width/3)
		switch {
		case x < grip:
			return window.RegionGripLeft, -1
		case x >= size.Width-grip:
			return window.RegionGripRight, -1
		default:
			return window.RegionHandle, -1
		}
	}

	if y >= height {
		return window.RegionFrame, -1
	}
	return window.RegionClient, -1
}

func (e *Events) clientMessage(x xproto.ClientMessageEvent) {
	name, err := xprop.AtomName(e.conn.XUtil, x.Type)
	if err != nil {
		return
	}
	data := x.Data.Data32
	if len(data) < 5 {
		return
	}
	id := window.SurfaceID(x.Window)

	switch name {
	case "_NET_CURRENT_DESKTOP":
		e.scr.SwitchWorkspace(int(data[0]))
		return
	case "_NET_NUMBER_OF_DESKTOPS", "_NET_DESKTOP_NAMES":
		e.logger.Debug("ignoring workspace layout request", "message", name)
		return
	}

	w, ok := e.mgr.Lookup(id)
	if !ok {
		return
	}

	switch name {
	case "WM_CHANGE_STATE":
		if data[0] == uint32(3) && !w.IsIconic() {
			w.Iconify()
		}
	case "_NET_ACTIVE_WINDOW":
		e.activate(w, id)
	case "_NET_CLOSE_WINDOW":
		w.Close()
	case "_NET_WM_DESKTOP":
		if data[0] == allDesktops {
			if !w.IsStuck() {
				w.Stick()
			}
			return
		}
		if w.IsStuck() {
			w.Stick()
		}
		e.scr.SendToWorkspace(w, int(data[0]))
	case "_NET_WM_STATE":
		var names []string
		for _, a := range data[1:3] {
			if a == 0 {
				continue
			}
			if n, err := xprop.AtomName(e.conn.XUtil, xproto.Atom(a)); err == nil {
				names = append(names, n)
			}
		}
		applyNetWMState(w, netStateAction(data[0]), names, e.mgr.Options().DefaultLayer)
	default:
		e.logger.Debug("unhandled client message", "message", name, "window", fmt.Sprintf("%#x", uint32(id)))
	}
}

// activate shows, raises and focuses the window that owns client id.
func (e *Events) activate(w *window.Window, id window.SurfaceID) {
	if !w.IsStuck() && w.Workspace() != e.scr.CurrentWorkspace() {
		e.scr.SwitchWorkspace(w.Workspace())
	}
	if w.IsIconic() {
		w.Deiconify(false, false)
	}
	if id != w.Client() {
		w.SetActiveClient(id, false)
	}
	w.Raise()
	w.SetInputFocus()
}

type netStateAction int

const (
	netStateRemove netStateAction = iota
	netStateAdd
	netStateToggle
)

func (a netStateAction) want(current bool) bool {
	switch a {
	case netStateRemove:
		return false
	case netStateAdd:
		return true
	default:
		return !current
	}
}

// netWindow is the part of a window a _NET_WM_STATE request acts on.
type netWindow interface {
	IsShaded() bool
	IsStuck() bool
	IsIconic() bool
	IsMaximized() bool
	Layer() int
	Shade()
	Stick()
	Iconify()
	Deiconify(reassoc, raise bool)
	Maximize()
	MaximizeHorizontal()
	MaximizeVertical()
	MoveToLayer(n int) int
}

// applyNetWMState carries out a _NET_WM_STATE client message.
func applyNetWMState(w netWindow, action netStateAction, names []string, defaultLayer int) {
	horz := slices.Contains(names, "_NET_WM_STATE_MAXIMIZED_HORZ")
	vert := slices.Contains(names, "_NET_WM_STATE_MAXIMIZED_VERT")
	switch {
	case horz && vert:
		if action.want(w.IsMaximized()) != w.IsMaximized() {
			w.Maximize()
		}
	case horz || vert:
		want := action.want(w.IsMaximized())
		switch {
		case want && !w.IsMaximized() && horz:
			w.MaximizeHorizontal()
		case want && !w.IsMaximized() && vert:
			w.MaximizeVertical()
		case !want && w.IsMaximized():
			w.Maximize()
		}
	}

	for _, name := range names {
		switch name {
		case "_NET_WM_STATE_SHADED":
			if action.want(w.IsShaded()) != w.IsShaded() {
				w.Shade()
			}
		case "_NET_WM_STATE_STICKY":
			if action.want(w.IsStuck()) != w.IsStuck() {
				w.Stick()
			}
		case "_NET_WM_STATE_HIDDEN":
			want := action.want(w.IsIconic())
			if want && !w.IsIconic() {
				w.Iconify()
			} else if !want && w.IsIconic() {
				w.Deiconify(false, true)
			}
		case "_NET_WM_STATE_ABOVE":
			above := w.Layer() < defaultLayer
			if action.want(above) {
				w.MoveToLayer(max(0, defaultLayer-2))
			} else if above {
				w.MoveToLayer(defaultLayer)
			}
		case "_NET_WM_STATE_BELOW":
			below := w.Layer() > defaultLayer
			if action.want(below) {
				w.MoveToLayer(defaultLayer + 2)
			} else if below {
				w.MoveToLayer(defaultLayer)
			}
		}
	}
}

func (e *Events) addDock(id window.SurfaceID) {
	if slices.Contains(e.docks, id) {
		return
	}
	e.docks = append(e.docks, id)
	xproto.ChangeWindowAttributes(e.conn.XUtil.Conn(), xproto.Window(id),
		xproto.CwEventMask, []uint32{xproto.EventMaskPropertyChange})
	e.logger.Debug("dock mapped", "window", fmt.Sprintf("%#x", uint32(id)))
	e.refreshStruts()
}

func (e *Events) removeDock(id window.SurfaceID) bool {
	i := slices.Index(e.docks, id)
	if i < 0 {
		return false
	}
	e.docks = slices.Delete(e.docks, i, i+1)
	e.refreshStruts()
	return true
}

// refreshStruts recomputes the reserved edges and republishes the
// workspace properties.
func (e *Events) refreshStruts() {
	struts, rects := e.conn.DockStruts(e.docks, e.scr.Bounds())
	e.scr.SetStruts(struts)
	e.scr.SetReserved(rects)
	if e.pub != nil {
		e.pub.WorkspacesChanged(e.scr)
	}
}
