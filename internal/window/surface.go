package window

import (
	"github.com/1broseidon/fluxcore/internal/attrib"
	"github.com/1broseidon/fluxcore/internal/geom"
	"github.com/1broseidon/fluxcore/internal/hints"
)

// Surface is one client window and its decoded properties.
type Surface struct {
	ID        SurfaceID
	Geometry  geom.Rect
	OldBorder int

	Title     string
	IconTitle string
	Instance  string
	Class     string

	Size      hints.SizeHints
	Motif     *hints.MotifHints
	WM        hints.WMHints
	Protocols hints.Protocols
	Focus     hints.FocusModel

	TransientFor SurfaceID
	Modal        bool
	AttrHints    *attrib.Hints

	// WM_STATE found on the surface before it was framed, consumed by
	// the first map request.
	savedState attrib.State
	hasSaved   bool
	firstMap   bool
}

// Transient reports whether s declared a transient-for surface.
func (s *Surface) Transient() bool {
	return s.TransientFor != None && s.TransientFor != s.ID
}

func loadSurface(d HintDecoder, id SurfaceID, a SurfaceAttributes) *Surface {
	s := &Surface{
		ID:        id,
		Geometry:  a.Geometry,
		OldBorder: a.Border,
	}
	s.reloadTitles(d)
	s.Instance, s.Class = d.Class(id)
	s.reloadSizeHints(d)
	s.reloadMotif(d)
	s.reloadWMHints(d)
	s.reloadProtocols(d)
	s.reloadTransient(d)
	if h, ok := d.AttributeHints(id); ok {
		s.AttrHints = &h
	}
	return s
}

func (s *Surface) reloadTitles(d HintDecoder) {
	s.Title = d.Title(s.ID)
	s.IconTitle = d.IconTitle(s.ID)
	if s.IconTitle == "" {
		s.IconTitle = s.Title
	}
}

func (s *Surface) reloadSizeHints(d HintDecoder) {
	if sh, ok := d.SizeHints(s.ID); ok {
		s.Size = sh.Normalize()
	} else {
		s.Size = hints.DefaultSizeHints()
	}
}

func (s *Surface) reloadMotif(d HintDecoder) {
	s.Motif = nil
	if mh, ok := d.MotifHints(s.ID); ok {
		s.Motif = &mh
	}
}

func (s *Surface) reloadWMHints(d HintDecoder) {
	s.WM = hints.WMHints{}
	if wm, ok := d.WMHints(s.ID); ok {
		s.WM = wm
	}
	s.Focus = hints.FocusModelFor(s.WM, s.Protocols)
}

func (s *Surface) reloadProtocols(d HintDecoder) {
	s.Protocols = d.Protocols(s.ID)
	s.Focus = hints.FocusModelFor(s.WM, s.Protocols)
}

func (s *Surface) reloadTransient(d HintDecoder) {
	s.TransientFor = None
	if parent, ok := d.TransientFor(s.ID); ok && parent != s.ID {
		s.TransientFor = parent
	}
	s.Modal = d.Modal(s.ID)
}
