package x11

import (
	"slices"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/fluxcore/internal/geom"
	"github.com/1broseidon/fluxcore/internal/window"
)

// IsDock reports whether the window types mark a surface that is mapped
// without a frame and may reserve screen edges.
func IsDock(types []string) bool {
	return slices.Contains(types, "_NET_WM_WINDOW_TYPE_DOCK") ||
		slices.Contains(types, "_NET_WM_WINDOW_TYPE_DESKTOP")
}

// DockStruts sums the edge reservations of docks over root and returns
// the dock rectangles windows may snap to.
func (c *Connection) DockStruts(docks []window.SurfaceID, root geom.Rect) (geom.Struts, []geom.Rect) {
	var struts geom.Struts
	var rects []geom.Rect
	for _, id := range docks {
		if sp, ok := c.dockStrut(xproto.Window(id), root); ok {
			struts.Add(root, root.Width, root.Height, sp)
		}
		if g, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(id)).Reply(); err == nil {
			rects = append(rects, geom.Rect{
				X:      int(g.X),
				Y:      int(g.Y),
				Width:  int(g.Width) + 2*int(g.BorderWidth),
				Height: int(g.Height) + 2*int(g.BorderWidth),
			})
		}
	}
	return struts, rects
}

func (c *Connection) dockStrut(win xproto.Window, root geom.Rect) (geom.StrutPartial, bool) {
	if sp, err := ewmh.WmStrutPartialGet(c.XUtil, win); err == nil {
		return partialFrom(sp), true
	}

	// Some docks only set _NET_WM_STRUT (no partial ranges).
	if s, err := ewmh.WmStrutGet(c.XUtil, win); err == nil {
		return geom.FullStrut(int(s.Left), int(s.Right), int(s.Top), int(s.Bottom), root.Width, root.Height), true
	}
	return geom.StrutPartial{}, false
}

func partialFrom(sp *ewmh.WmStrutPartial) geom.StrutPartial {
	return geom.StrutPartial{
		Left:         int(sp.Left),
		Right:        int(sp.Right),
		Top:          int(sp.Top),
		Bottom:       int(sp.Bottom),
		LeftStartY:   int(sp.LeftStartY),
		LeftEndY:     int(sp.LeftEndY),
		RightStartY:  int(sp.RightStartY),
		RightEndY:    int(sp.RightEndY),
		TopStartX:    int(sp.TopStartX),
		TopEndX:      int(sp.TopEndX),
		BottomStartX: int(sp.BottomStartX),
		BottomEndX:   int(sp.BottomEndX),
	}
}
