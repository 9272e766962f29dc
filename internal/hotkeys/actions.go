package hotkeys

import (
	"log/slog"

	"github.com/1broseidon/fluxcore/internal/config"
	"github.com/1broseidon/fluxcore/internal/screen"
	"github.com/1broseidon/fluxcore/internal/window"
)

// Target is what key binding actions operate on.
type Target struct {
	Manager  *window.Manager
	Screen   *screen.Screen
	Provider window.SurfaceProvider
	// ArrangeGap is the gap in pixels used by arrange_windows.
	ArrangeGap int
	Logger     *slog.Logger
}

// Actions maps every config action name to a function acting on the focused
// window or the current workspace. The functions must run on the event loop.
func Actions(t Target) map[string]func() {
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}

	focused := func(f func(w *window.Window)) func() {
		return func() {
			if w := t.Manager.Focused(); w != nil {
				f(w)
			}
		}
	}
	sendBy := func(delta int) func() {
		return focused(func(w *window.Window) {
			n := t.Screen.WorkspaceCount()
			if n == 0 {
				return
			}
			t.Screen.SendToWorkspace(w, (w.Workspace()+delta+n)%n)
		})
	}

	return map[string]func(){
		config.ActionClose: focused((*window.Window).Close),
		config.ActionKill: focused(func(w *window.Window) {
			if err := t.Provider.Kill(w.Client()); err != nil {
				logger.Debug("kill failed", "surface", w.Client(), "error", err)
			}
		}),
		config.ActionIconify:            focused((*window.Window).Iconify),
		config.ActionMaximize:           focused((*window.Window).Maximize),
		config.ActionMaximizeVertical:   focused((*window.Window).MaximizeVertical),
		config.ActionMaximizeHorizontal: focused((*window.Window).MaximizeHorizontal),
		config.ActionShade:              focused((*window.Window).Shade),
		config.ActionStick:              focused((*window.Window).Stick),
		config.ActionRaise:              focused((*window.Window).Raise),
		config.ActionLower:              focused((*window.Window).Lower),
		config.ActionRaiseLayer:         focused((*window.Window).RaiseLayer),
		config.ActionLowerLayer:         focused((*window.Window).LowerLayer),
		config.ActionToggleDecoration:   focused((*window.Window).ToggleDecoration),
		config.ActionNextTab:            focused((*window.Window).NextClient),
		config.ActionPrevTab:            focused((*window.Window).PrevClient),
		config.ActionDetachClient: focused(func(w *window.Window) {
			w.Detach(w.Client())
		}),
		config.ActionStartMoving: focused(func(w *window.Window) {
			w.StartMoving()
		}),
		config.ActionNextWorkspace: func() { t.Screen.NextWorkspace() },
		config.ActionPrevWorkspace: func() { t.Screen.PrevWorkspace() },
		config.ActionSendToNext:    sendBy(1),
		config.ActionSendToPrev:    sendBy(-1),
		config.ActionArrangeWindows: func() {
			n, err := t.Screen.ArrangeWindows(t.ArrangeGap)
			if err != nil {
				logger.Warn("arrange failed", "error", err)
				return
			}
			logger.Debug("arranged windows", "count", n)
		},
	}
}
