package x11

import (
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xcursor"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/fluxcore/internal/geom"
	"github.com/1broseidon/fluxcore/internal/window"
)

// Frame colors
const (
	ColorFrameBg     uint32 = 0x2e3440
	ColorFrameBorder uint32 = 0x4c566a
	ColorOutline     uint32 = 0xffffff
)

const frameEventMask = xproto.EventMaskSubstructureRedirect |
	xproto.EventMaskSubstructureNotify |
	xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskButtonMotion |
	xproto.EventMaskEnterWindow |
	xproto.EventMaskLeaveWindow |
	xproto.EventMaskExposure

const clientEventMask = xproto.EventMaskPropertyChange |
	xproto.EventMaskFocusChange |
	xproto.EventMaskColorMapChange

// Provider implements window.SurfaceProvider on an X connection.
type Provider struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	logger *slog.Logger

	frames      map[window.SurfaceID]bool
	ignoreUnmap map[window.SurfaceID]int
	cursors     map[window.Cursor]xproto.Cursor

	outlineGC xproto.Gcontext
	outline   *geom.Rect
}

// NewProvider creates a provider and the cursors used during grabs.
func NewProvider(conn *Connection, logger *slog.Logger) (*Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Provider{
		xu:          conn.XUtil,
		root:        conn.Root,
		logger:      logger,
		frames:      make(map[window.SurfaceID]bool),
		ignoreUnmap: make(map[window.SurfaceID]int),
		cursors:     make(map[window.Cursor]xproto.Cursor),
	}

	shapes := map[window.Cursor]uint16{
		window.CursorMove:        xcursor.Fleur,
		window.CursorResizeLeft:  xcursor.BottomLeftCorner,
		window.CursorResizeRight: xcursor.BottomRightCorner,
	}
	for c, shape := range shapes {
		cur, err := xcursor.CreateCursor(p.xu, shape)
		if err != nil {
			return nil, fmt.Errorf("failed to create cursor: %w", err)
		}
		p.cursors[c] = cur
	}
	if normal, err := xcursor.CreateCursor(p.xu, xcursor.LeftPtr); err == nil {
		xwindow.New(p.xu, p.root).Change(xproto.CwCursor, uint32(normal))
	}

	gc, err := xproto.NewGcontextId(p.xu.Conn())
	if err != nil {
		return nil, fmt.Errorf("failed to allocate outline gc: %w", err)
	}
	err = xproto.CreateGCChecked(
		p.xu.Conn(),
		gc,
		xproto.Drawable(p.root),
		xproto.GcFunction|xproto.GcForeground|xproto.GcSubwindowMode,
		[]uint32{
			xproto.GxXor,                        // function
			ColorOutline,                        // foreground
			xproto.SubwindowModeIncludeInferiors, // subwindow_mode
		},
	).Check()
	if err != nil {
		return nil, fmt.Errorf("failed to create outline gc: %w", err)
	}
	p.outlineGC = gc

	return p, nil
}

// IsFrame reports whether id is a frame created by this provider.
func (p *Provider) IsFrame(id window.SurfaceID) bool {
	return p.frames[id]
}

// consumeUnmap reports whether an UnmapNotify for id was caused by Hide
// and should be dropped.
func (p *Provider) consumeUnmap(id window.SurfaceID) bool {
	n := p.ignoreUnmap[id]
	if n == 0 {
		return false
	}
	if n == 1 {
		delete(p.ignoreUnmap, id)
	} else {
		p.ignoreUnmap[id] = n - 1
	}
	return true
}

func gone(id window.SurfaceID, err error) error {
	return fmt.Errorf("%w: %#x: %v", window.ErrSurfaceGone, uint32(id), err)
}

func (p *Provider) Attributes(id window.SurfaceID) (window.SurfaceAttributes, error) {
	conn := p.xu.Conn()
	attrs, err := xproto.GetWindowAttributes(conn, xproto.Window(id)).Reply()
	if err != nil {
		return window.SurfaceAttributes{}, gone(id, err)
	}
	g, err := xproto.GetGeometry(conn, xproto.Drawable(id)).Reply()
	if err != nil {
		return window.SurfaceAttributes{}, gone(id, err)
	}
	return window.SurfaceAttributes{
		Geometry: geom.Rect{
			X:      int(g.X),
			Y:      int(g.Y),
			Width:  int(g.Width),
			Height: int(g.Height),
		},
		Border:           int(g.BorderWidth),
		OverrideRedirect: attrs.OverrideRedirect,
		Viewable:         attrs.MapState == xproto.MapStateViewable,
	}, nil
}

func (p *Provider) Alive(id window.SurfaceID) bool {
	_, err := xproto.GetGeometry(p.xu.Conn(), xproto.Drawable(id)).Reply()
	return err == nil
}

func (p *Provider) CreateFrame(r geom.Rect, border int) (window.SurfaceID, error) {
	win, err := xwindow.Generate(p.xu)
	if err != nil {
		return window.None, fmt.Errorf("failed to allocate frame id: %w", err)
	}
	err = win.CreateChecked(p.root, r.X, r.Y, max(1, r.Width), max(1, r.Height),
		xproto.CwBackPixel|xproto.CwBorderPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
		ColorFrameBg, ColorFrameBorder, 1, frameEventMask)
	if err != nil {
		return window.None, fmt.Errorf("failed to create frame: %w", err)
	}
	id := window.SurfaceID(win.Id)
	p.frames[id] = true
	if border > 0 {
		if err := p.SetBorderWidth(id, border); err != nil {
			p.DestroyFrame(id)
			return window.None, err
		}
	}
	return id, nil
}

func (p *Provider) DestroyFrame(frame window.SurfaceID) {
	if !p.frames[frame] {
		return
	}
	delete(p.frames, frame)
	mousebind.Detach(p.xu, xproto.Window(frame))
	xwindow.New(p.xu, xproto.Window(frame)).Destroy()
}

func (p *Provider) Reparent(id, parent window.SurfaceID, x, y int) error {
	conn := p.xu.Conn()
	target := xproto.Window(parent)
	if parent == window.None {
		target = p.root
	}

	// Reparenting a mapped window unmaps it first.
	if attrs, err := xproto.GetWindowAttributes(conn, xproto.Window(id)).Reply(); err == nil &&
		attrs.MapState != xproto.MapStateUnmapped {
		p.ignoreUnmap[id]++
	}

	mask := uint32(clientEventMask)
	if parent == window.None {
		mask = xproto.EventMaskNoEvent
	}
	xwindow.New(p.xu, xproto.Window(id)).Change(xproto.CwEventMask, mask)

	err := xproto.ReparentWindowChecked(conn, xproto.Window(id), target, int16(x), int16(y)).Check()
	if err != nil {
		delete(p.ignoreUnmap, id)
		return gone(id, err)
	}
	return nil
}

func (p *Provider) SetSaveSet(id window.SurfaceID, add bool) {
	mode := byte(xproto.SetModeDelete)
	if add {
		mode = xproto.SetModeInsert
	}
	xproto.ChangeSaveSet(p.xu.Conn(), mode, xproto.Window(id))
}

func (p *Provider) MoveResize(id window.SurfaceID, r geom.Rect) error {
	err := xproto.ConfigureWindowChecked(p.xu.Conn(), xproto.Window(id),
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{
			uint32(int32(r.X)),
			uint32(int32(r.Y)),
			uint32(max(1, r.Width)),
			uint32(max(1, r.Height)),
		}).Check()
	if err != nil {
		return gone(id, err)
	}
	return nil
}

func (p *Provider) SetBorderWidth(id window.SurfaceID, width int) error {
	err := xproto.ConfigureWindowChecked(p.xu.Conn(), xproto.Window(id),
		xproto.ConfigWindowBorderWidth, []uint32{uint32(max(0, width))}).Check()
	if err != nil {
		return gone(id, err)
	}
	return nil
}

func (p *Provider) Show(id window.SurfaceID) {
	xproto.MapWindow(p.xu.Conn(), xproto.Window(id))
}

func (p *Provider) Hide(id window.SurfaceID) {
	conn := p.xu.Conn()
	if !p.frames[id] {
		attrs, err := xproto.GetWindowAttributes(conn, xproto.Window(id)).Reply()
		if err != nil || attrs.MapState == xproto.MapStateUnmapped {
			return
		}
		p.ignoreUnmap[id]++
	}
	xproto.UnmapWindow(conn, xproto.Window(id))
}

func (p *Provider) RaiseInFrame(id window.SurfaceID) {
	xwindow.New(p.xu, xproto.Window(id)).Stack(xproto.StackModeAbove)
}

// Restack applies a top to bottom order by chaining each window below the
// one before it.
func (p *Provider) Restack(order []window.SurfaceID) {
	if len(order) == 0 {
		return
	}
	xwindow.New(p.xu, xproto.Window(order[0])).Stack(xproto.StackModeAbove)
	for i := 1; i < len(order); i++ {
		xwindow.New(p.xu, xproto.Window(order[i])).StackSibling(xproto.Window(order[i-1]), xproto.StackModeBelow)
	}
}

// SendConfigureNotify tells a client its root position with a synthetic
// ConfigureNotify.
func (p *Provider) SendConfigureNotify(id window.SurfaceID, r geom.Rect, border int) {
	ev := xproto.ConfigureNotifyEvent{
		Event:            xproto.Window(id),
		Window:           xproto.Window(id),
		AboveSibling:     0,
		X:                int16(r.X),
		Y:                int16(r.Y),
		Width:            uint16(max(1, r.Width)),
		Height:           uint16(max(1, r.Height)),
		BorderWidth:      uint16(border),
		OverrideRedirect: false,
	}
	xproto.SendEvent(p.xu.Conn(), false, xproto.Window(id),
		xproto.EventMaskStructureNotify, string(ev.Bytes()))
}

// GrabButtons installs the click-to-focus grab on the client and the
// Alt move/resize grabs on the frame.
func (p *Provider) GrabButtons(frame, client window.SurfaceID) {
	mousebind.Grab(p.xu, xproto.Window(client), xproto.ModMaskAny, xproto.ButtonIndex1, true)
	mousebind.Grab(p.xu, xproto.Window(frame), xproto.ModMask1, xproto.ButtonIndex1, false)
	mousebind.Grab(p.xu, xproto.Window(frame), xproto.ModMask1, xproto.ButtonIndex3, false)
}

func (p *Provider) ReplayPointer() {
	xevent.ReplayPointer(p.xu)
}

func (p *Provider) GrabPointer(c window.Cursor) error {
	ok, err := mousebind.GrabPointer(p.xu, p.root, 0, p.cursors[c])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("pointer grab refused")
	}
	return nil
}

func (p *Provider) UngrabPointer() {
	mousebind.UngrabPointer(p.xu)
}

func (p *Provider) WarpPointer(dx, dy int) {
	xproto.WarpPointer(p.xu.Conn(), 0, 0, 0, 0, 0, 0, int16(dx), int16(dy))
}

// SurfaceAt returns the top-level window under the root position.
func (p *Provider) SurfaceAt(x, y int) window.SurfaceID {
	reply, err := xproto.TranslateCoordinates(p.xu.Conn(), p.root, p.root, int16(x), int16(y)).Reply()
	if err != nil {
		return window.None
	}
	return window.SurfaceID(reply.Child)
}

func (p *Provider) Pointer() (x, y int, err error) {
	reply, err := xproto.QueryPointer(p.xu.Conn(), p.root).Reply()
	if err != nil {
		return 0, 0, err
	}
	return int(reply.RootX), int(reply.RootY), nil
}

func (p *Provider) SetInputFocus(id window.SurfaceID) error {
	err := xproto.SetInputFocusChecked(p.xu.Conn(), xproto.InputFocusPointerRoot,
		xproto.Window(id), p.xu.TimeGet()).Check()
	if err != nil {
		return gone(id, err)
	}
	return nil
}

func (p *Provider) SendTakeFocus(id window.SurfaceID) error {
	return p.sendProtocol(id, "WM_TAKE_FOCUS")
}

func (p *Provider) SendDelete(id window.SurfaceID) error {
	return p.sendProtocol(id, "WM_DELETE_WINDOW")
}

func (p *Provider) sendProtocol(id window.SurfaceID, name string) error {
	protocols, err := xprop.Atm(p.xu, "WM_PROTOCOLS")
	if err != nil {
		return err
	}
	atom, err := xprop.Atm(p.xu, name)
	if err != nil {
		return err
	}
	cm, err := xevent.NewClientMessage(32, xproto.Window(id), protocols,
		int(atom), int(p.xu.TimeGet()))
	if err != nil {
		return err
	}
	err = xproto.SendEventChecked(p.xu.Conn(), false, xproto.Window(id),
		xproto.EventMaskNoEvent, string(cm.Bytes())).Check()
	if err != nil {
		return gone(id, err)
	}
	return nil
}

func (p *Provider) Kill(id window.SurfaceID) error {
	if err := xproto.KillClientChecked(p.xu.Conn(), uint32(id)).Check(); err != nil {
		return gone(id, err)
	}
	return nil
}

func (p *Provider) InstallColormap(id window.SurfaceID, install bool) {
	attrs, err := xproto.GetWindowAttributes(p.xu.Conn(), xproto.Window(id)).Reply()
	if err != nil || attrs.Colormap == 0 {
		return
	}
	if install {
		xproto.InstallColormap(p.xu.Conn(), attrs.Colormap)
	} else {
		xproto.UninstallColormap(p.xu.Conn(), attrs.Colormap)
	}
}

// DrawOutline XORs a rectangle onto the root, erasing the previous one.
func (p *Provider) DrawOutline(r geom.Rect) {
	p.ClearOutline()
	p.xorRect(r)
	p.outline = &r
}

func (p *Provider) ClearOutline() {
	if p.outline == nil {
		return
	}
	p.xorRect(*p.outline)
	p.outline = nil
}

func (p *Provider) xorRect(r geom.Rect) {
	xproto.PolyRectangle(p.xu.Conn(), xproto.Drawable(p.root), p.outlineGC, []xproto.Rectangle{{
		X:      int16(r.X),
		Y:      int16(r.Y),
		Width:  uint16(max(1, r.Width)),
		Height: uint16(max(1, r.Height)),
	}})
}

var _ window.SurfaceProvider = (*Provider)(nil)
