package x11

import (
	"slices"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/motif"
	"github.com/BurntSushi/xgbutil/xprop"

	"github.com/1broseidon/fluxcore/internal/attrib"
	"github.com/1broseidon/fluxcore/internal/hints"
	"github.com/1broseidon/fluxcore/internal/window"
)

// Property names owned by the window manager.
const (
	AtomAttributes     = "_FLUXBOX_ATTRIBUTES"
	AtomAttributeHints = "_FLUXBOX_HINTS"
)

// Decoder reads client properties. It implements window.HintDecoder and
// window.StateStore.
type Decoder struct {
	xu *xgbutil.XUtil
}

// NewDecoder creates a decoder on the connection.
func NewDecoder(conn *Connection) *Decoder {
	return &Decoder{xu: conn.XUtil}
}

func (d *Decoder) Title(id window.SurfaceID) string {
	if name, err := ewmh.WmNameGet(d.xu, xproto.Window(id)); err == nil && name != "" {
		return name
	}
	name, _ := icccm.WmNameGet(d.xu, xproto.Window(id))
	return name
}

func (d *Decoder) IconTitle(id window.SurfaceID) string {
	if name, err := ewmh.WmIconNameGet(d.xu, xproto.Window(id)); err == nil && name != "" {
		return name
	}
	name, _ := icccm.WmIconNameGet(d.xu, xproto.Window(id))
	return name
}

func (d *Decoder) Class(id window.SurfaceID) (instance, class string) {
	c, err := icccm.WmClassGet(d.xu, xproto.Window(id))
	if err != nil || c == nil {
		return "", ""
	}
	return c.Instance, c.Class
}

func (d *Decoder) SizeHints(id window.SurfaceID) (hints.SizeHints, bool) {
	nh, err := icccm.WmNormalHintsGet(d.xu, xproto.Window(id))
	if err != nil || nh == nil {
		return hints.SizeHints{}, false
	}
	return sizeHintsFrom(nh), true
}

func sizeHintsFrom(nh *icccm.NormalHints) hints.SizeHints {
	return hints.SizeHints{
		Flags:      hints.SizeFlags(nh.Flags),
		MinWidth:   int(nh.MinWidth),
		MinHeight:  int(nh.MinHeight),
		MaxWidth:   int(nh.MaxWidth),
		MaxHeight:  int(nh.MaxHeight),
		BaseWidth:  int(nh.BaseWidth),
		BaseHeight: int(nh.BaseHeight),
		WidthInc:   int(nh.WidthInc),
		HeightInc:  int(nh.HeightInc),
		MinAspectX: int(nh.MinAspectNum),
		MinAspectY: int(nh.MinAspectDen),
		MaxAspectX: int(nh.MaxAspectNum),
		MaxAspectY: int(nh.MaxAspectDen),
		Gravity:    hints.Gravity(nh.WinGravity),
	}
}

func (d *Decoder) WMHints(id window.SurfaceID) (hints.WMHints, bool) {
	h, err := icccm.WmHintsGet(d.xu, xproto.Window(id))
	if err != nil || h == nil {
		return hints.WMHints{}, false
	}
	return wmHintsFrom(h), true
}

func wmHintsFrom(h *icccm.Hints) hints.WMHints {
	out := hints.WMHints{}
	if h.Flags&icccm.HintInput != 0 {
		out.HasInput = true
		out.Input = h.Input != 0
	}
	if h.Flags&icccm.HintState != 0 {
		out.HasState = true
		out.InitialState = attrib.State(h.InitialState)
	}
	if h.Flags&icccm.HintWindowGroup != 0 {
		out.Group = uint32(h.WindowGroup)
	}
	return out
}

func (d *Decoder) MotifHints(id window.SurfaceID) (hints.MotifHints, bool) {
	mh, err := motif.WmHintsGet(d.xu, xproto.Window(id))
	if err != nil || mh == nil {
		return hints.MotifHints{}, false
	}
	return hints.MotifHints{
		Flags:       uint32(mh.Flags),
		Functions:   uint32(mh.Function),
		Decorations: uint32(mh.Decoration),
	}, true
}

func (d *Decoder) Protocols(id window.SurfaceID) hints.Protocols {
	names, err := icccm.WmProtocolsGet(d.xu, xproto.Window(id))
	if err != nil {
		return hints.Protocols{}
	}
	return protocolsFrom(names)
}

func protocolsFrom(names []string) hints.Protocols {
	return hints.Protocols{
		DeleteWindow: slices.Contains(names, "WM_DELETE_WINDOW"),
		TakeFocus:    slices.Contains(names, "WM_TAKE_FOCUS"),
	}
}

func (d *Decoder) TransientFor(id window.SurfaceID) (window.SurfaceID, bool) {
	parent, err := icccm.WmTransientForGet(d.xu, xproto.Window(id))
	if err != nil || parent == 0 {
		return window.None, false
	}
	return window.SurfaceID(parent), true
}

func (d *Decoder) Modal(id window.SurfaceID) bool {
	states, err := ewmh.WmStateGet(d.xu, xproto.Window(id))
	if err != nil {
		return false
	}
	return slices.Contains(states, "_NET_WM_STATE_MODAL")
}

func (d *Decoder) AttributeHints(id window.SurfaceID) (attrib.Hints, bool) {
	words, ok := d.words(id, AtomAttributeHints)
	if !ok {
		return attrib.Hints{}, false
	}
	h, err := attrib.HintsFromWords(words)
	if err != nil {
		return attrib.Hints{}, false
	}
	return h, true
}

// WindowTypes returns the _NET_WM_WINDOW_TYPE atoms of id.
func (d *Decoder) WindowTypes(id window.SurfaceID) []string {
	types, err := ewmh.WmWindowTypeGet(d.xu, xproto.Window(id))
	if err != nil {
		return nil
	}
	return types
}

func (d *Decoder) WriteState(id window.SurfaceID, s attrib.State) error {
	return icccm.WmStateSet(d.xu, xproto.Window(id), &icccm.WmState{State: uint(s)})
}

func (d *Decoder) ReadState(id window.SurfaceID) (attrib.State, bool) {
	st, err := icccm.WmStateGet(d.xu, xproto.Window(id))
	if err != nil || st == nil {
		return attrib.StateWithdrawn, false
	}
	return attrib.State(st.State), true
}

func (d *Decoder) WriteAttributes(id window.SurfaceID, a attrib.Attributes) error {
	return xprop.ChangeProp(d.xu, xproto.Window(id), 32, AtomAttributes, AtomAttributes, attrib.Encode(a.Words()))
}

func (d *Decoder) ReadAttributes(id window.SurfaceID) (attrib.Attributes, bool) {
	words, ok := d.words(id, AtomAttributes)
	if !ok {
		return attrib.Attributes{}, false
	}
	a, err := attrib.AttributesFromWords(words)
	if err != nil {
		return attrib.Attributes{}, false
	}
	return a, true
}

func (d *Decoder) words(id window.SurfaceID, prop string) ([]uint32, bool) {
	reply, err := xprop.GetProperty(d.xu, xproto.Window(id), prop)
	if err != nil || reply == nil || reply.Format != 32 {
		return nil, false
	}
	words, err := attrib.Decode(reply.Value)
	if err != nil {
		return nil, false
	}
	return words, true
}

var (
	_ window.HintDecoder = (*Decoder)(nil)
	_ window.StateStore  = (*Decoder)(nil)
)
