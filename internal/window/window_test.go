package window

import (
	"errors"
	"slices"
	"testing"

	"github.com/1broseidon/fluxcore/internal/attrib"
	"github.com/1broseidon/fluxcore/internal/geom"
	"github.com/1broseidon/fluxcore/internal/hints"
)

func TestManageFramesClient(t *testing.T) {
	h := newHarness(t)
	h.addClient(100, frameRect())

	w, err := h.m.Manage(100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := geom.Rect{X: 10, Y: 20, Width: 300, Height: 224}
	if w.Geometry() != want {
		t.Fatalf("expected frame %v, got %v", want, w.Geometry())
	}
	if h.p.parent[100] != w.ID() {
		t.Fatalf("expected client reparented into frame %d, got %d", w.ID(), h.p.parent[100])
	}
	if h.st.states[100] != attrib.StateNormal {
		t.Fatalf("expected WM_STATE normal, got %v", h.st.states[100])
	}
	if got := h.p.configured[100]; got != (geom.Rect{X: 11, Y: 39, Width: 300, Height: 200}) {
		t.Fatalf("unexpected synthetic configure %v", got)
	}
	if w.Layer() != 8 {
		t.Fatalf("expected default layer 8, got %d", w.Layer())
	}
	if w.Title() != "client-100" {
		t.Fatalf("expected title client-100, got %q", w.Title())
	}

	again, err := h.m.Manage(100)
	if err != nil || again != w {
		t.Fatalf("expected managing twice to return the same window")
	}
}

func TestManageOverrideRedirect(t *testing.T) {
	h := newHarness(t)
	h.p.attrs[100] = SurfaceAttributes{Geometry: frameRect(), OverrideRedirect: true}

	if _, err := h.m.Manage(100); !errors.Is(err, ErrUnmanageable) {
		t.Fatalf("expected ErrUnmanageable, got %v", err)
	}
	if _, err := h.m.Manage(200); !errors.Is(err, ErrSurfaceGone) {
		t.Fatalf("expected ErrSurfaceGone for unknown surface, got %v", err)
	}
	if len(h.m.Windows()) != 0 {
		t.Fatalf("expected no windows")
	}
}

func TestMapRequestShowsWindow(t *testing.T) {
	h := newHarness(t)
	h.addClient(100, frameRect())

	w := h.mapClient(t, 100)
	if w.State() != attrib.StateNormal {
		t.Fatalf("expected normal, got %v", w.State())
	}
	if !h.p.visible[w.ID()] || !h.p.visible[100] {
		t.Fatalf("expected frame and client shown")
	}
	if h.p.stack[0] != w.ID() {
		t.Fatalf("expected new window on top, got %v", h.p.stack)
	}
}

func TestMapRequestInitialIconic(t *testing.T) {
	h := newHarness(t)
	d := h.addClient(100, frameRect())
	d.wm = &hints.WMHints{HasState: true, InitialState: attrib.StateIconic}

	w := h.mapClient(t, 100)
	if w.State() != attrib.StateIconic {
		t.Fatalf("expected iconic, got %v", w.State())
	}
	if h.p.visible[w.ID()] {
		t.Fatalf("expected frame hidden")
	}
	if h.st.states[100] != attrib.StateIconic {
		t.Fatalf("expected WM_STATE iconic, got %v", h.st.states[100])
	}

	// a later map request from the client shows it
	h.m.Dispatch(MapRequest{Window: 100})
	if w.State() != attrib.StateNormal || !h.p.visible[w.ID()] {
		t.Fatalf("expected window shown on remap, got %v", w.State())
	}
}

func TestAttachDetachRoundTrip(t *testing.T) {
	h := newHarness(t)
	h.addClient(100, frameRect())
	h.addClient(101, geom.Rect{X: 400, Y: 300, Width: 200, Height: 100})

	w1 := h.mapClient(t, 100)
	w2 := h.mapClient(t, 101)

	if w1.Detach(100) {
		t.Fatalf("expected detach of the only member to fail")
	}

	if !w1.Attach(101) {
		t.Fatalf("expected attach to succeed")
	}
	if got := w1.Clients(); !slices.Equal(got, []SurfaceID{100, 101}) {
		t.Fatalf("expected clients [100 101], got %v", got)
	}
	if _, ok := h.m.Lookup(w2.ID()); ok {
		t.Fatalf("expected emptied window to be destroyed")
	}
	if got, _ := h.m.Lookup(101); got != w1 {
		t.Fatalf("expected 101 owned by the attaching window")
	}
	if w1.Attach(101) {
		t.Fatalf("expected attaching an own member to fail")
	}

	if !w1.Detach(101) {
		t.Fatalf("expected detach to succeed")
	}
	nw, ok := h.m.Lookup(101)
	if !ok || nw == w1 {
		t.Fatalf("expected 101 in a new window")
	}
	if w1.Client() != 100 || nw.Client() != 101 {
		t.Fatalf("expected each window to show its own surface, got %d and %d", w1.Client(), nw.Client())
	}
	if len(w1.Clients()) != 1 || len(nw.Clients()) != 1 {
		t.Fatalf("expected two single-member windows")
	}
	if h.p.parent[101] != nw.ID() {
		t.Fatalf("expected 101 reparented into the new frame")
	}
}

func TestSetActiveClient(t *testing.T) {
	h := newHarness(t)
	h.addClient(100, frameRect())
	h.addClient(101, frameRect())
	w := h.mapClient(t, 100)
	h.mapClient(t, 101)
	w.Attach(101)

	if w.SetActiveClient(555, false) {
		t.Fatalf("expected non-member to be rejected")
	}
	if !w.SetActiveClient(101, true) || w.Client() != 101 {
		t.Fatalf("expected 101 active")
	}
	if h.p.focus != 101 {
		t.Fatalf("expected focus on 101, got %d", h.p.focus)
	}

	w.NextClient()
	if w.Client() != 100 {
		t.Fatalf("expected wraparound to 100, got %d", w.Client())
	}
	w.PrevClient()
	if w.Client() != 101 {
		t.Fatalf("expected 101 after prev, got %d", w.Client())
	}
}

func TestIconifyDeiconifyRoundTrip(t *testing.T) {
	h := newHarness(t)
	h.sc.current = 2
	h.addClient(100, frameRect())
	h.addClient(101, frameRect())
	w := h.mapClient(t, 100)
	h.mapClient(t, 101)
	w.Attach(101)
	w.SetActiveClient(101, false)

	w.Iconify()
	if w.State() != attrib.StateIconic || h.p.visible[w.ID()] {
		t.Fatalf("expected iconic and hidden")
	}
	for _, c := range []SurfaceID{100, 101} {
		if h.st.states[c] != attrib.StateIconic {
			t.Fatalf("expected WM_STATE iconic on %d, got %v", c, h.st.states[c])
		}
	}

	w.Deiconify(false, false)
	if w.State() != attrib.StateNormal {
		t.Fatalf("expected normal, got %v", w.State())
	}
	if w.Client() != 101 {
		t.Fatalf("expected active surface 101 kept, got %d", w.Client())
	}
	if w.Workspace() != 2 {
		t.Fatalf("expected workspace 2 kept, got %d", w.Workspace())
	}
	if !h.p.visible[w.ID()] {
		t.Fatalf("expected frame shown again")
	}
}

func TestIconifyFollowsTransients(t *testing.T) {
	h := newHarness(t)
	h.addClient(100, frameRect())
	d := h.addClient(101, geom.Rect{X: 50, Y: 50, Width: 100, Height: 80})
	d.transient = 100

	parent := h.mapClient(t, 100)
	dialog := h.mapClient(t, 101)

	parent.Iconify()
	if !dialog.IsIconic() {
		t.Fatalf("expected transient iconified with its parent")
	}

	parent.Deiconify(true, false)
	if parent.IsIconic() || dialog.IsIconic() {
		t.Fatalf("expected transients to follow deiconify")
	}

	dialog.Iconify()
	if !parent.IsIconic() {
		t.Fatalf("expected parent iconified with its transient")
	}
}

func TestTransientInheritsLayerAndStacksAbove(t *testing.T) {
	h := newHarness(t)
	h.addClient(100, frameRect())
	d := h.addClient(101, geom.Rect{X: 50, Y: 50, Width: 100, Height: 80})
	d.transient = 100
	h.addClient(102, frameRect())

	parent := h.mapClient(t, 100)
	parent.MoveToLayer(6)
	dialog := h.mapClient(t, 101)
	other := h.mapClient(t, 102)

	if dialog.Layer() != 6 {
		t.Fatalf("expected transient on its parent's layer, got %d", dialog.Layer())
	}
	if dialog.Decorations().Handle || dialog.Functions().Maximize {
		t.Fatalf("expected transient decorations reduced")
	}

	other.MoveToLayer(6)
	parent.Raise()
	want := []SurfaceID{dialog.ID(), parent.ID(), other.ID()}
	if !slices.Equal(h.p.stack, want) {
		t.Fatalf("expected stacking %v, got %v", want, h.p.stack)
	}
}

func TestShade(t *testing.T) {
	h := newHarness(t)
	h.addClient(100, frameRect())
	w := h.mapClient(t, 100)

	w.Shade()
	if !w.IsShaded() || w.State() != attrib.StateNormal {
		t.Fatalf("expected shaded normal window")
	}
	if w.ProtocolState() != attrib.StateIconic || h.st.states[100] != attrib.StateIconic {
		t.Fatalf("expected shaded window reported as iconic")
	}
	if h.p.rects[w.ID()].Height != 18 {
		t.Fatalf("expected frame collapsed to title height, got %d", h.p.rects[w.ID()].Height)
	}
	if !w.Attributes().Has(attrib.FlagShaded) {
		t.Fatalf("expected shaded attribute")
	}

	w.Shade()
	if w.IsShaded() || h.st.states[100] != attrib.StateNormal {
		t.Fatalf("expected unshaded normal window")
	}
	if h.p.rects[w.ID()].Height != 224 {
		t.Fatalf("expected full height restored, got %d", h.p.rects[w.ID()].Height)
	}
}

func TestShadeRequiresTitlebar(t *testing.T) {
	h := newHarness(t)
	d := h.addClient(100, frameRect())
	d.motif = &hints.MotifHints{Flags: hints.MotifFlagDecorations, Decorations: hints.MotifDecorBorder}
	w := h.mapClient(t, 100)

	w.Shade()
	if w.IsShaded() {
		t.Fatalf("expected shade to need a titlebar")
	}
}

func TestMaximizeToggle(t *testing.T) {
	h := newHarness(t)
	h.addClient(100, frameRect())
	w := h.mapClient(t, 100)
	before := w.Geometry()

	w.Maximize()
	want := geom.Rect{X: 0, Y: 20, Width: 998, Height: 758}
	if !w.IsMaximized() || w.Geometry() != want {
		t.Fatalf("expected maximized to %v, got %v", want, w.Geometry())
	}
	a := w.Attributes()
	if !a.Has(attrib.FlagMaxHoriz) || !a.Has(attrib.FlagMaxVert) || a.PremaxW != uint32(before.Width) {
		t.Fatalf("expected maximize recorded in attributes, got %+v", a)
	}

	w.Maximize()
	if w.IsMaximized() || w.Geometry() != before {
		t.Fatalf("expected %v restored, got %v", before, w.Geometry())
	}
}

func TestMaximizeAxis(t *testing.T) {
	h := newHarness(t)
	h.addClient(100, frameRect())
	w := h.mapClient(t, 100)

	w.MaximizeHorizontal()
	if w.IsMaximized() {
		t.Fatalf("expected per-axis maximize to leave the flag alone")
	}
	if g := w.Geometry(); g.X != 0 || g.Width != 998 || g.Y != 20 || g.Height != 224 {
		t.Fatalf("unexpected geometry %v", g)
	}

	w.MaximizeVertical()
	if g := w.Geometry(); g.Y != 20 || g.Height != 758 {
		t.Fatalf("unexpected geometry %v", g)
	}
}

func TestStick(t *testing.T) {
	h := newHarness(t)
	h.addClient(100, frameRect())
	w := h.mapClient(t, 100)

	w.Stick()
	if !w.IsStuck() || !h.st.attrs[100].Has(attrib.FlagOmnipresent) {
		t.Fatalf("expected omnipresent attribute persisted")
	}
	h.sc.current = 3
	if !w.Visible() {
		t.Fatalf("expected stuck window visible on every workspace")
	}
	w.Stick()
	if w.IsStuck() || h.st.attrs[100].Flags&attrib.FlagOmnipresent != 0 {
		t.Fatalf("expected omnipresent cleared")
	}
}

func TestRestoreAttributes(t *testing.T) {
	h := newHarness(t)
	h.addClient(100, frameRect())
	h.st.states[100] = attrib.StateNormal
	h.st.attrs[100] = attrib.Attributes{
		Flags:     attrib.FlagShaded | attrib.FlagWorkspace | attrib.FlagStack,
		Attrib:    attrib.FlagShaded,
		Workspace: 2,
		Stack:     4,
	}

	w := h.mapClient(t, 100)
	if !w.IsShaded() {
		t.Fatalf("expected shade restored")
	}
	if w.Workspace() != 2 || w.Layer() != 4 {
		t.Fatalf("expected workspace 2 layer 4, got %d and %d", w.Workspace(), w.Layer())
	}
	if w.State() != attrib.StateWithdrawn || h.p.visible[w.ID()] {
		t.Fatalf("expected window on another workspace to stay hidden, got %v", w.State())
	}
}

func TestRestoreMaximized(t *testing.T) {
	h := newHarness(t)
	h.addClient(100, geom.Rect{X: 0, Y: 20, Width: 998, Height: 734})
	h.st.attrs[100] = attrib.Attributes{
		Flags:   attrib.FlagMaxHoriz | attrib.FlagMaxVert,
		Attrib:  attrib.FlagMaxHoriz | attrib.FlagMaxVert,
		PremaxX: 40,
		PremaxY: 50,
		PremaxW: 300,
		PremaxH: 224,
	}

	w := h.mapClient(t, 100)
	if !w.IsMaximized() {
		t.Fatalf("expected maximize restored")
	}
	w.Maximize()
	if want := (geom.Rect{X: 40, Y: 50, Width: 300, Height: 224}); w.Geometry() != want {
		t.Fatalf("expected persisted premax %v, got %v", want, w.Geometry())
	}
}

func TestAttributeRequest(t *testing.T) {
	h := newHarness(t)
	h.addClient(100, frameRect())
	w := h.mapClient(t, 100)

	h.m.Dispatch(AttributeRequest{Window: 100, Hints: attrib.Hints{Flags: attrib.FlagStack, Stack: 0}})
	if w.Layer() != 1 {
		t.Fatalf("expected layer clamped below the menu layer, got %d", w.Layer())
	}

	h.m.Dispatch(AttributeRequest{Window: 100, Hints: attrib.Hints{
		Flags:  attrib.FlagShaded | attrib.FlagOmnipresent,
		Attrib: attrib.FlagShaded | attrib.FlagOmnipresent,
	}})
	if !w.IsShaded() || !w.IsStuck() {
		t.Fatalf("expected shade and stick applied")
	}

	h.m.Dispatch(AttributeRequest{Window: 100, Hints: attrib.Hints{Flags: attrib.FlagDecoration, Decoration: uint32(hints.PresetNone)}})
	if w.Decorations().Titlebar || w.IsShaded() {
		t.Fatalf("expected decorations removed and shade dropped")
	}
}

func TestToggleDecoration(t *testing.T) {
	h := newHarness(t)
	h.addClient(100, frameRect())
	w := h.mapClient(t, 100)

	w.ToggleDecoration()
	if w.Decorations().Enabled || w.Decorations().Titlebar {
		t.Fatalf("expected decorations off")
	}
	if w.Geometry().Height != 200 || w.Border() != 0 {
		t.Fatalf("expected frame to shrink to the client, got %v border %d", w.Geometry(), w.Border())
	}

	w.ToggleDecoration()
	if !w.Decorations().Titlebar || w.Geometry().Height != 224 {
		t.Fatalf("expected decorations back, got %v", w.Geometry())
	}
}

func TestCloseUsesDeleteProtocol(t *testing.T) {
	h := newHarness(t)
	d := h.addClient(100, frameRect())
	d.protocols = hints.Protocols{DeleteWindow: true}
	h.addClient(101, frameRect())
	w1 := h.mapClient(t, 100)
	w2 := h.mapClient(t, 101)

	if !w1.Functions().Close || w2.Functions().Close {
		t.Fatalf("expected close only with WM_DELETE_WINDOW")
	}
	w1.Close()
	w2.Close()
	if !slices.Equal(h.p.deleted, []SurfaceID{100}) || len(h.p.killed) != 0 {
		t.Fatalf("expected only a delete for 100, got %v %v", h.p.deleted, h.p.killed)
	}
}

func degenerateSize() *hints.SizeHints {
	return &hints.SizeHints{
		Flags:     hints.PMinSize | hints.PMaxSize,
		MinWidth:  100,
		MinHeight: 50,
		MaxWidth:  100,
		MaxHeight: 50,
	}
}

func TestDegenerateClientFramedAtFixedSize(t *testing.T) {
	h := newHarness(t)
	d := h.addClient(100, frameRect())
	d.size = degenerateSize()
	w := h.mapClient(t, 100)

	if got := h.p.configured[100]; got.Width != 100 || got.Height != 50 {
		t.Fatalf("expected client constrained to 100x50, got %v", got)
	}
	if w.Geometry().Width != 100 {
		t.Fatalf("expected frame width 100, got %v", w.Geometry())
	}
}

func TestMaximizeRefusedWithoutFunction(t *testing.T) {
	h := newHarness(t)
	d := h.addClient(100, frameRect())
	d.size = degenerateSize()
	w := h.mapClient(t, 100)
	before := w.Geometry()

	if w.Functions().Maximize {
		t.Fatalf("expected no maximize function for a fixed size client")
	}
	w.Maximize()
	if w.IsMaximized() || w.Geometry() != before {
		t.Fatalf("expected maximize refused, got %v maximized=%v", w.Geometry(), w.IsMaximized())
	}
	w.MaximizeHorizontal()
	w.MaximizeVertical()
	if w.Geometry() != before {
		t.Fatalf("expected per-axis maximize refused, got %v", w.Geometry())
	}

	w.ApplyAttributeHints(attrib.Hints{
		Flags:  attrib.FlagMaxHoriz | attrib.FlagMaxVert,
		Attrib: attrib.FlagMaxHoriz | attrib.FlagMaxVert,
	})
	if w.IsMaximized() || w.Geometry() != before {
		t.Fatalf("expected client maximize request refused, got %v", w.Geometry())
	}
}

func TestIconifyRefusedWithoutFunction(t *testing.T) {
	h := newHarness(t)
	h.addClient(100, frameRect())
	w := h.mapClient(t, 100)

	w.SetDecoration(hints.PresetTool)
	if w.Functions().Iconify {
		t.Fatalf("expected tool preset to drop the iconify function")
	}
	w.Iconify()
	if w.IsIconic() || !h.p.visible[w.ID()] {
		t.Fatalf("expected iconify refused, got %v", w.State())
	}
}

func TestCloseRefusedWithoutFunction(t *testing.T) {
	h := newHarness(t)
	d := h.addClient(100, frameRect())
	d.protocols = hints.Protocols{DeleteWindow: true}
	d.motif = &hints.MotifHints{Flags: hints.MotifFlagFunctions, Functions: hints.MotifFuncMove}
	w := h.mapClient(t, 100)

	if w.Functions().Close {
		t.Fatalf("expected motif hints to drop the close function")
	}
	w.Close()
	if len(h.p.deleted) != 0 || len(h.p.killed) != 0 {
		t.Fatalf("expected close refused, got %v %v", h.p.deleted, h.p.killed)
	}
}

func TestWithdrawCancelsResize(t *testing.T) {
	h := newHarness(t)
	h.addClient(100, frameRect())
	w := h.mapClient(t, 100)
	before := w.Geometry()

	h.m.Dispatch(ButtonPress{Window: w.ID(), Region: RegionGripRight, Button: 1, RootX: 310, RootY: 244})
	h.m.Dispatch(Motion{Window: w.ID(), Region: RegionGripRight, Buttons: Button1Held, RootX: 410, RootY: 294})
	if !w.IsResizing() {
		t.Fatalf("expected resize in progress")
	}

	w.Withdraw()
	if w.IsResizing() || h.p.grabbed || h.p.outline != nil || h.m.dragging != nil {
		t.Fatalf("expected resize abandoned and pointer released")
	}
	if w.Geometry() != before {
		t.Fatalf("expected geometry %v kept, got %v", before, w.Geometry())
	}
}

func TestCloseCancelsMove(t *testing.T) {
	h := newHarness(t)
	d := h.addClient(100, frameRect())
	d.protocols = hints.Protocols{DeleteWindow: true}
	w := h.mapClient(t, 100)

	h.m.Dispatch(ButtonPress{Window: w.ID(), Region: RegionTitlebar, Button: 1, RootX: 50, RootY: 30})
	h.m.Dispatch(Motion{Window: w.ID(), Region: RegionTitlebar, Buttons: Button1Held, RootX: 150, RootY: 130})
	if !w.IsMoving() {
		t.Fatalf("expected move in progress")
	}

	w.Close()
	if w.IsMoving() || h.p.grabbed || h.m.dragging != nil {
		t.Fatalf("expected move abandoned and pointer released")
	}
	if !slices.Equal(h.p.deleted, []SurfaceID{100}) {
		t.Fatalf("expected delete sent, got %v", h.p.deleted)
	}
}

func TestModalFocusRedirect(t *testing.T) {
	h := newHarness(t)
	h.addClient(100, frameRect())
	d := h.addClient(101, geom.Rect{X: 50, Y: 50, Width: 100, Height: 80})
	d.transient = 100
	d.modal = true

	parent := h.mapClient(t, 100)
	dialog := h.mapClient(t, 101)

	if !parent.SetInputFocus() {
		t.Fatalf("expected focus to succeed")
	}
	if h.p.focus != 101 || h.m.Focused() != dialog {
		t.Fatalf("expected focus redirected to the modal dialog, got %d", h.p.focus)
	}
}

func TestFocusRejectsGoneSurface(t *testing.T) {
	h := newHarness(t)
	h.addClient(100, frameRect())
	w := h.mapClient(t, 100)

	h.p.gone[100] = true
	if w.SetInputFocus() {
		t.Fatalf("expected focus on a gone surface to fail")
	}
	if h.m.Focused() == w {
		t.Fatalf("expected focus unchanged")
	}
}

func TestFocusTakeFocusProtocol(t *testing.T) {
	h := newHarness(t)
	d := h.addClient(100, frameRect())
	d.wm = &hints.WMHints{HasInput: true, Input: false}
	d.protocols = hints.Protocols{TakeFocus: true}
	w := h.mapClient(t, 100)

	if w.SetInputFocus() {
		t.Fatalf("expected globally active client not to be focused directly")
	}
	if !slices.Contains(h.p.takeFocus, SurfaceID(100)) {
		t.Fatalf("expected WM_TAKE_FOCUS sent")
	}
}

func TestOffscreenCorrection(t *testing.T) {
	h := newHarness(t)
	h.addClient(100, frameRect())
	w := h.mapClient(t, 100)

	w.Move(-500, 100)
	w.SetInputFocus()
	if g := w.Geometry(); g.X != 1 || g.Y != 101 {
		t.Fatalf("expected frame pulled back on screen, got %v", g)
	}
}

func TestSloppyFocusAutoRaise(t *testing.T) {
	h := newHarness(t, func(o *Options) {
		o.FocusPolicy = SloppyFocus
		o.AutoRaise = true
	})
	h.addClient(100, frameRect())
	h.addClient(101, frameRect())
	w1 := h.mapClient(t, 100)
	w2 := h.mapClient(t, 101)

	h.m.Dispatch(Enter{Window: w1.ID()})
	if h.m.Focused() != w1 || h.sched.live() != 1 {
		t.Fatalf("expected focus and a pending auto-raise")
	}
	if !h.p.colormaps[100] {
		t.Fatalf("expected colormap installed")
	}
	if h.p.stack[0] != w2.ID() {
		t.Fatalf("expected no raise before the timer fires")
	}

	h.sched.fire()
	if h.p.stack[0] != w1.ID() {
		t.Fatalf("expected auto-raise, got %v", h.p.stack)
	}
}

func TestAutoRaiseCancelledOnFocusChange(t *testing.T) {
	h := newHarness(t, func(o *Options) {
		o.FocusPolicy = SloppyFocus
		o.AutoRaise = true
	})
	h.addClient(100, frameRect())
	h.addClient(101, frameRect())
	w1 := h.mapClient(t, 100)
	w2 := h.mapClient(t, 101)

	h.m.Dispatch(Enter{Window: w1.ID()})
	w1.SetFocusFlag(false)
	if h.sched.live() != 0 {
		t.Fatalf("expected pending auto-raise cancelled")
	}
	h.sched.fire()
	if h.p.stack[0] != w2.ID() {
		t.Fatalf("expected cancelled auto-raise not to raise")
	}
}

func TestEnterIgnoredForGrabs(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.FocusPolicy = SloppyFocus })
	h.addClient(100, frameRect())
	w := h.mapClient(t, 100)

	h.m.Dispatch(Enter{Window: w.ID(), Grab: true})
	if h.m.Focused() == w {
		t.Fatalf("expected grab crossings to be ignored")
	}
}

func TestConfigureRequest(t *testing.T) {
	h := newHarness(t)
	h.addClient(100, frameRect())
	h.addClient(101, frameRect())
	w := h.mapClient(t, 100)
	h.mapClient(t, 101)

	h.m.Dispatch(ConfigureRequest{Window: 100, Mask: ConfigWidth | ConfigHeight, Width: 400, Height: 300})
	if g := w.Geometry(); g.Width != 400 || g.Height != 324 {
		t.Fatalf("expected frame sized for a 400x300 client, got %v", g)
	}
	if got := h.p.configured[100]; got.Width != 400 || got.Height != 300 {
		t.Fatalf("expected synthetic configure 400x300, got %v", got)
	}

	h.m.Dispatch(ConfigureRequest{Window: 100, Mask: ConfigStackMode, StackMode: StackAbove})
	if h.p.stack[0] != w.ID() {
		t.Fatalf("expected raise on stack mode above")
	}
	h.m.Dispatch(ConfigureRequest{Window: 100, Mask: ConfigStackMode, StackMode: StackBelow})
	if h.p.stack[len(h.p.stack)-1] != w.ID() {
		t.Fatalf("expected lower on stack mode below")
	}
}

func TestPropertyNotifyRederives(t *testing.T) {
	h := newHarness(t)
	d := h.addClient(100, frameRect())
	w := h.mapClient(t, 100)

	d.size = &hints.SizeHints{
		Flags:     hints.PMinSize | hints.PMaxSize,
		MinWidth:  100,
		MinHeight: 50,
		MaxWidth:  100,
		MaxHeight: 50,
	}
	h.m.Dispatch(PropertyNotify{Window: 100, Property: PropNormalHints})
	if w.Functions().Resize || w.Functions().Maximize || w.Decorations().Handle {
		t.Fatalf("expected degenerate hints to remove resize, maximize and handle")
	}
	if w.Geometry().Height != 218 {
		t.Fatalf("expected frame to lose the handle height, got %d", w.Geometry().Height)
	}

	d.title = "renamed"
	h.m.Dispatch(PropertyNotify{Window: 100, Property: PropTitle})
	if w.Title() != "renamed" {
		t.Fatalf("expected title updated, got %q", w.Title())
	}
}

func TestUnmapReleasesClient(t *testing.T) {
	h := newHarness(t)
	h.addClient(100, frameRect())
	w := h.mapClient(t, 100)
	frame := w.ID()

	h.m.Dispatch(UnmapNotify{Window: 100})
	if _, ok := h.m.Lookup(100); ok {
		t.Fatalf("expected client released")
	}
	if h.p.parent[100] != None {
		t.Fatalf("expected client back on the root")
	}
	if h.st.states[100] != attrib.StateWithdrawn {
		t.Fatalf("expected WM_STATE withdrawn, got %v", h.st.states[100])
	}
	if !slices.Contains(h.p.destroyed, frame) {
		t.Fatalf("expected frame destroyed")
	}
}

func TestShutdownRemapsClients(t *testing.T) {
	h := newHarness(t)
	h.addClient(100, frameRect())
	h.mapClient(t, 100)

	h.m.Shutdown()
	if !h.p.visible[100] || h.p.parent[100] != None {
		t.Fatalf("expected client remapped on the root")
	}
	if h.st.states[100] != attrib.StateNormal {
		t.Fatalf("expected persisted state kept for the next manager, got %v", h.st.states[100])
	}
}

func TestAdoptKeepsPosition(t *testing.T) {
	h := newHarness(t)
	h.addClient(100, geom.Rect{X: 700, Y: 600, Width: 200, Height: 100})
	h.st.states[100] = attrib.StateIconic

	h.m.Adopt([]SurfaceID{100})
	w, ok := h.m.Lookup(100)
	if !ok {
		t.Fatalf("expected adoption")
	}
	if g := w.Geometry(); g.X != 700 || g.Y != 600 {
		t.Fatalf("expected position kept, got %v", g)
	}
	if !w.IsIconic() {
		t.Fatalf("expected persisted iconic state honoured at startup")
	}
}
