// Package hints turns client-declared protocol hints into the decoration
// and capability flags a managed window is allowed to have.
package hints

import (
	"fmt"

	"github.com/1broseidon/fluxcore/internal/attrib"
)

// Motif hint bits, as carried in _MOTIF_WM_HINTS.
const (
	MotifFlagFunctions   uint32 = 1 << 0
	MotifFlagDecorations uint32 = 1 << 1

	MotifFuncAll      uint32 = 1 << 0
	MotifFuncResize   uint32 = 1 << 1
	MotifFuncMove     uint32 = 1 << 2
	MotifFuncMinimize uint32 = 1 << 3
	MotifFuncMaximize uint32 = 1 << 4
	MotifFuncClose    uint32 = 1 << 5

	MotifDecorAll      uint32 = 1 << 0
	MotifDecorBorder   uint32 = 1 << 1
	MotifDecorResizeH  uint32 = 1 << 2
	MotifDecorTitle    uint32 = 1 << 3
	MotifDecorMenu     uint32 = 1 << 4
	MotifDecorMinimize uint32 = 1 << 5
	MotifDecorMaximize uint32 = 1 << 6
)

// MotifHints is the decoded _MOTIF_WM_HINTS property.
type MotifHints struct {
	Flags       uint32
	Functions   uint32
	Decorations uint32
}

// FocusModel is the ICCCM input model derived from WM_HINTS and
// WM_PROTOCOLS.
type FocusModel int

const (
	FocusPassive FocusModel = iota
	FocusLocallyActive
	FocusGloballyActive
	FocusNoInput
)

// String returns the string representation of the focus model
func (f FocusModel) String() string {
	switch f {
	case FocusPassive:
		return "passive"
	case FocusLocallyActive:
		return "locally-active"
	case FocusGloballyActive:
		return "globally-active"
	case FocusNoInput:
		return "no-input"
	default:
		return "unknown"
	}
}

// AcceptsInput reports whether the window manager should set input focus
// on the client directly.
func (f FocusModel) AcceptsInput() bool {
	return f == FocusPassive || f == FocusLocallyActive
}

// WMHints is the decoded WM_HINTS property.
type WMHints struct {
	HasInput     bool
	Input        bool
	HasState     bool
	InitialState attrib.State
	Group        uint32
}

// Protocols records which WM_PROTOCOLS a client takes part in.
type Protocols struct {
	DeleteWindow bool
	TakeFocus    bool
}

// FocusModelFor derives the input model. Missing WM_HINTS mean passive.
func FocusModelFor(wm WMHints, p Protocols) FocusModel {
	if !wm.HasInput {
		return FocusPassive
	}
	switch {
	case wm.Input && p.TakeFocus:
		return FocusLocallyActive
	case wm.Input:
		return FocusPassive
	case p.TakeFocus:
		return FocusGloballyActive
	default:
		return FocusNoInput
	}
}

// Decorations is the set of frame elements a window shows.
type Decorations struct {
	Titlebar bool
	Handle   bool
	Border   bool
	Iconify  bool
	Maximize bool
	Close    bool
	Menu     bool
	Sticky   bool
	Shade    bool
	Tab      bool
	Enabled  bool
}

// DecorMask is the packed form of Decorations.
type DecorMask uint32

const (
	DecorTitlebar DecorMask = 1 << iota
	DecorHandle
	DecorBorder
	DecorIconify
	DecorMaximize
	DecorClose
	DecorMenu
	DecorSticky
	DecorShade
	DecorTab
	DecorEnabled
)

// Mask packs the decorations into bits.
func (d Decorations) Mask() DecorMask {
	var m DecorMask
	set := func(on bool, bit DecorMask) {
		if on {
			m |= bit
		}
	}
	set(d.Titlebar, DecorTitlebar)
	set(d.Handle, DecorHandle)
	set(d.Border, DecorBorder)
	set(d.Iconify, DecorIconify)
	set(d.Maximize, DecorMaximize)
	set(d.Close, DecorClose)
	set(d.Menu, DecorMenu)
	set(d.Sticky, DecorSticky)
	set(d.Shade, DecorShade)
	set(d.Tab, DecorTab)
	set(d.Enabled, DecorEnabled)
	return m
}

// DecorationsFromMask unpacks a mask.
func DecorationsFromMask(m DecorMask) Decorations {
	return Decorations{
		Titlebar: m&DecorTitlebar != 0,
		Handle:   m&DecorHandle != 0,
		Border:   m&DecorBorder != 0,
		Iconify:  m&DecorIconify != 0,
		Maximize: m&DecorMaximize != 0,
		Close:    m&DecorClose != 0,
		Menu:     m&DecorMenu != 0,
		Sticky:   m&DecorSticky != 0,
		Shade:    m&DecorShade != 0,
		Tab:      m&DecorTab != 0,
		Enabled:  m&DecorEnabled != 0,
	}
}

// Functions is the set of operations a window permits.
type Functions struct {
	Resize   bool
	Move     bool
	Iconify  bool
	Maximize bool
	Close    bool
}

// Preset is a named decoration style selectable by the user or by the
// client through attribute hints.
type Preset uint32

const (
	PresetNone Preset = iota
	PresetNormal
	PresetTiny
	PresetTool
)

// String returns the string representation of the preset
func (p Preset) String() string {
	switch p {
	case PresetNone:
		return "none"
	case PresetNormal:
		return "normal"
	case PresetTiny:
		return "tiny"
	case PresetTool:
		return "tool"
	default:
		return fmt.Sprintf("preset(%d)", uint32(p))
	}
}

// ParsePreset maps a configuration name to a preset.
func ParsePreset(name string) (Preset, error) {
	switch name {
	case "none":
		return PresetNone, nil
	case "normal", "":
		return PresetNormal, nil
	case "tiny":
		return PresetTiny, nil
	case "tool":
		return PresetTool, nil
	default:
		return PresetNormal, fmt.Errorf("unknown decoration preset %q", name)
	}
}

// Input is everything Derive looks at.
type Input struct {
	Size      SizeHints
	Motif     *MotifHints
	Preset    *Preset
	Transient bool
	CanClose  bool
}

// Result is the derived flag set.
type Result struct {
	Decorations Decorations
	Functions   Functions
}

// Derive computes decorations and functions. Rules apply in order: normal
// defaults, then a selected preset or the motif hints, then transience,
// then degenerate size bounds. The result depends on nothing but in.
func Derive(in Input) Result {
	d := Decorations{
		Titlebar: true,
		Handle:   true,
		Border:   true,
		Iconify:  true,
		Maximize: true,
		Close:    in.CanClose,
		Menu:     true,
		Sticky:   true,
		Shade:    true,
		Tab:      true,
		Enabled:  true,
	}
	f := Functions{
		Resize:   true,
		Move:     true,
		Iconify:  true,
		Maximize: true,
		Close:    in.CanClose,
	}

	switch {
	case in.Preset != nil:
		applyPreset(*in.Preset, &d, &f)
	case in.Motif != nil:
		applyMotif(*in.Motif, &d, &f)
	}

	if in.Transient {
		d.Maximize = false
		d.Handle = false
		d.Border = false
		f.Maximize = false
	}

	if in.Size.Degenerate() {
		d.Maximize = false
		d.Handle = false
		d.Tab = false
		f.Resize = false
		f.Maximize = false
	}

	return Result{Decorations: d, Functions: f}
}

func applyMotif(m MotifHints, d *Decorations, f *Functions) {
	if m.Flags&MotifFlagDecorations != 0 && m.Decorations&MotifDecorAll == 0 {
		d.Titlebar = m.Decorations&MotifDecorTitle != 0
		// tabs only on windows with a titlebar
		d.Tab = d.Titlebar
		d.Border = m.Decorations&MotifDecorBorder != 0
		d.Handle = m.Decorations&MotifDecorResizeH != 0
		d.Iconify = m.Decorations&MotifDecorMinimize != 0
		d.Maximize = m.Decorations&MotifDecorMaximize != 0
		d.Close = false
		d.Menu = true
	}

	if m.Flags&MotifFlagFunctions != 0 && m.Functions&MotifFuncAll == 0 {
		f.Resize = m.Functions&MotifFuncResize != 0
		f.Move = m.Functions&MotifFuncMove != 0
		f.Iconify = m.Functions&MotifFuncMinimize != 0
		f.Maximize = m.Functions&MotifFuncMaximize != 0
		f.Close = m.Functions&MotifFuncClose != 0
	}
}

func applyPreset(p Preset, d *Decorations, f *Functions) {
	switch p {
	case PresetNone:
		d.Titlebar, d.Border, d.Handle = false, false, false
		d.Iconify, d.Maximize, d.Tab = false, false, false
		d.Menu = true
		d.Enabled = false
	case PresetTiny:
		d.Titlebar, d.Iconify, d.Menu = true, true, true
		d.Border, d.Handle, d.Maximize = false, false, false
		f.Move, f.Iconify = true, true
		f.Resize, f.Maximize = false, false
	case PresetTool:
		d.Titlebar, d.Menu = true, true
		d.Iconify, d.Border, d.Handle, d.Maximize = false, false, false, false
		f.Move = true
		f.Resize, f.Maximize, f.Iconify = false, false, false
	default:
		d.Titlebar, d.Border, d.Handle = true, true, true
		d.Iconify, d.Maximize, d.Menu = true, true, true
		f.Resize, f.Move, f.Iconify, f.Maximize = true, true, true, true
	}
}
