package x11

import (
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/fluxcore/internal/attrib"
	"github.com/1broseidon/fluxcore/internal/screen"
	"github.com/1broseidon/fluxcore/internal/window"
)

// allDesktops is the _NET_WM_DESKTOP value of sticky windows.
const allDesktops = 0xFFFFFFFF

var supported = []string{
	"_NET_SUPPORTED",
	"_NET_SUPPORTING_WM_CHECK",
	"_NET_CLIENT_LIST",
	"_NET_CLIENT_LIST_STACKING",
	"_NET_ACTIVE_WINDOW",
	"_NET_CLOSE_WINDOW",
	"_NET_NUMBER_OF_DESKTOPS",
	"_NET_CURRENT_DESKTOP",
	"_NET_DESKTOP_NAMES",
	"_NET_DESKTOP_GEOMETRY",
	"_NET_DESKTOP_VIEWPORT",
	"_NET_WORKAREA",
	"_NET_FRAME_EXTENTS",
	"_NET_WM_NAME",
	"_NET_WM_ICON_NAME",
	"_NET_WM_DESKTOP",
	"_NET_WM_STATE",
	"_NET_WM_STATE_MODAL",
	"_NET_WM_STATE_STICKY",
	"_NET_WM_STATE_MAXIMIZED_VERT",
	"_NET_WM_STATE_MAXIMIZED_HORZ",
	"_NET_WM_STATE_SHADED",
	"_NET_WM_STATE_HIDDEN",
	"_NET_WM_STATE_ABOVE",
	"_NET_WM_STATE_BELOW",
	"_NET_WM_STATE_FOCUSED",
	"_NET_WM_WINDOW_TYPE",
	"_NET_WM_WINDOW_TYPE_DOCK",
	"_NET_WM_WINDOW_TYPE_DESKTOP",
	"_NET_WM_STRUT",
	"_NET_WM_STRUT_PARTIAL",
}

// Publisher mirrors the window and workspace state into the EWMH root and
// client properties. It implements window.Listener and screen.Observer.
type Publisher struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	mgr    *window.Manager
	logger *slog.Logger
}

// NewPublisher creates a publisher and advertises the supported hints.
func NewPublisher(conn *Connection, mgr *window.Manager, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Publisher{
		xu:     conn.XUtil,
		root:   conn.Root,
		mgr:    mgr,
		logger: logger,
	}
	if err := ewmh.SupportedSet(p.xu, supported); err != nil {
		p.logger.Warn("failed to set _NET_SUPPORTED", "error", err)
	}
	return p
}

// WindowChanged implements window.Listener.
func (p *Publisher) WindowChanged(w *window.Window, c window.Change) {
	switch c {
	case window.ChangeAdded:
		p.publishClients()
		p.publishDesktop(w)
		p.publishState(w)
		p.publishExtents(w)
	case window.ChangeRemoved:
		p.publishClients()
		p.publishActive()
	case window.ChangeClients:
		p.publishClients()
		p.publishDesktop(w)
		p.publishState(w)
		p.publishExtents(w)
	case window.ChangeStacking, window.ChangeLayer:
		p.publishStacking()
		p.publishState(w)
	case window.ChangeFocus:
		p.publishActive()
		p.publishState(w)
	case window.ChangeWorkspace:
		p.publishDesktop(w)
		p.publishState(w)
	case window.ChangeState:
		p.publishState(w)
		p.publishExtents(w)
	case window.ChangeDecorations:
		p.publishExtents(w)
	}
}

// WorkspacesChanged implements screen.Observer.
func (p *Publisher) WorkspacesChanged(s *screen.Screen) {
	count := s.WorkspaceCount()
	if err := ewmh.NumberOfDesktopsSet(p.xu, uint(count)); err != nil {
		p.logger.Debug("failed to set _NET_NUMBER_OF_DESKTOPS", "error", err)
	}
	if err := ewmh.CurrentDesktopSet(p.xu, uint(s.CurrentWorkspace())); err != nil {
		p.logger.Debug("failed to set _NET_CURRENT_DESKTOP", "error", err)
	}
	if err := ewmh.DesktopNamesSet(p.xu, s.WorkspaceNames()); err != nil {
		p.logger.Debug("failed to set _NET_DESKTOP_NAMES", "error", err)
	}

	bounds := s.Bounds()
	_ = ewmh.DesktopGeometrySet(p.xu, &ewmh.DesktopGeometry{Width: bounds.Width, Height: bounds.Height})

	area := s.MaxArea()
	workareas := make([]ewmh.Workarea, count)
	viewports := make([]ewmh.DesktopViewport, count)
	for i := range workareas {
		workareas[i] = ewmh.Workarea{
			X:      area.X,
			Y:      area.Y,
			Width:  uint(area.Width),
			Height: uint(area.Height),
		}
	}
	if err := ewmh.WorkareaSet(p.xu, workareas); err != nil {
		p.logger.Debug("failed to set _NET_WORKAREA", "error", err)
	}
	_ = ewmh.DesktopViewportSet(p.xu, viewports)
}

// Clear removes the per-session root properties on shutdown.
func (p *Publisher) Clear() {
	_ = ewmh.ClientListSet(p.xu, nil)
	_ = ewmh.ClientListStackingSet(p.xu, nil)
	_ = ewmh.ActiveWindowSet(p.xu, 0)
}

func (p *Publisher) publishClients() {
	var ids []xproto.Window
	for _, w := range p.mgr.Windows() {
		for _, c := range w.Clients() {
			ids = append(ids, xproto.Window(c))
		}
	}
	if err := ewmh.ClientListSet(p.xu, ids); err != nil {
		p.logger.Debug("failed to set _NET_CLIENT_LIST", "error", err)
	}
	p.publishStacking()
}

// publishStacking writes the client list bottom to top.
func (p *Publisher) publishStacking() {
	order := p.mgr.Stacking()
	var ids []xproto.Window
	for i := len(order) - 1; i >= 0; i-- {
		for _, c := range order[i].Clients() {
			ids = append(ids, xproto.Window(c))
		}
	}
	if err := ewmh.ClientListStackingSet(p.xu, ids); err != nil {
		p.logger.Debug("failed to set _NET_CLIENT_LIST_STACKING", "error", err)
	}
}

func (p *Publisher) publishActive() {
	var active xproto.Window
	if w := p.mgr.Focused(); w != nil {
		active = xproto.Window(w.Client())
	}
	if err := ewmh.ActiveWindowSet(p.xu, active); err != nil {
		p.logger.Debug("failed to set _NET_ACTIVE_WINDOW", "error", err)
	}
}

func (p *Publisher) publishDesktop(w *window.Window) {
	desk := uint(w.Workspace())
	if w.IsStuck() {
		desk = allDesktops
	}
	for _, c := range w.Clients() {
		_ = ewmh.WmDesktopSet(p.xu, xproto.Window(c), desk)
	}
}

func (p *Publisher) publishState(w *window.Window) {
	defaultLayer := p.mgr.Options().DefaultLayer
	for _, c := range w.Clients() {
		modal := false
		if s, ok := p.mgr.Surface(c); ok {
			modal = s.Modal
		}
		_ = ewmh.WmStateSet(p.xu, xproto.Window(c), netWMState(w, modal, defaultLayer))
	}
}

// netWMState lists the _NET_WM_STATE atoms describing w.
func netWMState(w *window.Window, modal bool, defaultLayer int) []string {
	var states []string
	if modal {
		states = append(states, "_NET_WM_STATE_MODAL")
	}
	if w.IsStuck() {
		states = append(states, "_NET_WM_STATE_STICKY")
	}
	a := w.Attributes()
	if a.Has(attrib.FlagMaxVert) {
		states = append(states, "_NET_WM_STATE_MAXIMIZED_VERT")
	}
	if a.Has(attrib.FlagMaxHoriz) {
		states = append(states, "_NET_WM_STATE_MAXIMIZED_HORZ")
	}
	if w.IsShaded() {
		states = append(states, "_NET_WM_STATE_SHADED")
	}
	if w.IsIconic() {
		states = append(states, "_NET_WM_STATE_HIDDEN")
	}
	switch {
	case w.Layer() < defaultLayer:
		states = append(states, "_NET_WM_STATE_ABOVE")
	case w.Layer() > defaultLayer:
		states = append(states, "_NET_WM_STATE_BELOW")
	}
	if w.IsFocused() {
		states = append(states, "_NET_WM_STATE_FOCUSED")
	}
	return states
}

func (p *Publisher) publishExtents(w *window.Window) {
	ext := frameExtents(w.Decorations().Titlebar, w.Decorations().Handle, w.Decorations().Border, p.mgr.Options().Theme)
	for _, c := range w.Clients() {
		_ = ewmh.FrameExtentsSet(p.xu, xproto.Window(c), &ext)
	}
}

func frameExtents(titlebar, handle, border bool, theme window.Theme) ewmh.FrameExtents {
	var ext ewmh.FrameExtents
	if border {
		ext.Left = theme.BorderWidth
		ext.Right = theme.BorderWidth
		ext.Top = theme.BorderWidth
		ext.Bottom = theme.BorderWidth
	}
	if titlebar {
		ext.Top += theme.TitleHeight
	}
	if handle {
		ext.Bottom += theme.HandleHeight
	}
	return ext
}

var (
	_ window.Listener = (*Publisher)(nil)
	_ screen.Observer = (*Publisher)(nil)
)
