package hotkeys

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Handler manages global keyboard shortcuts on the root window.
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	logger *slog.Logger
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler.
func NewHandler(xu *xgbutil.XUtil, root xproto.Window, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:     xu,
		root:   root,
		logger: logger,
	}
}

type binding struct {
	action string
	keys   string
}

// bindOrder resolves the key map into bindings sorted by action name.
// Unknown actions and key sequences claimed by an earlier action are
// reported and skipped.
func bindOrder(keys map[string]string, actions map[string]func()) ([]binding, []string) {
	names := make([]string, 0, len(keys))
	for name := range keys {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []binding
	var skipped []string
	claimed := make(map[string]string)
	for _, name := range names {
		seq := keys[name]
		if seq == "" {
			continue
		}
		if _, ok := actions[name]; !ok {
			skipped = append(skipped, fmt.Sprintf("unknown action %q", name))
			continue
		}
		if prev, ok := claimed[seq]; ok {
			skipped = append(skipped, fmt.Sprintf("%q for %s already bound to %s", seq, name, prev))
			continue
		}
		claimed[seq] = name
		out = append(out, binding{action: name, keys: seq})
	}
	return out, skipped
}

// Bind registers every configured key sequence with its action and returns
// the number of bindings that took effect. Failures are logged.
func (h *Handler) Bind(keys map[string]string, actions map[string]func()) int {
	bindings, skipped := bindOrder(keys, actions)
	for _, msg := range skipped {
		h.logger.Warn("skipping key binding", "reason", msg)
	}

	bound := 0
	for _, b := range bindings {
		fn := actions[b.action]
		action := b.action
		if err := h.RegisterFunc(b.keys, func() {
			h.logger.Debug("key binding triggered", "action", action)
			fn()
		}); err != nil {
			h.logger.Warn("failed to register hotkey", "action", b.action, "keys", b.keys, "error", err)
			continue
		}
		h.logger.Debug("registered hotkey", "action", b.action, "keys", b.keys)
		bound++
	}
	return bound
}

// Unbind removes every key binding on the root window.
func (h *Handler) Unbind() {
	keybind.Detach(h.xu, h.root)
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")
	xevent.IgnoreMods = ignoreMasks(uint16(xproto.ModMaskLock), numLock, scrollLock)
}

// ignoreMasks returns every combination of the lock modifiers, including
// the empty one, so bindings fire regardless of lock state.
func ignoreMasks(caps, numLock, scrollLock uint16) []uint16 {
	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}
	slices.Sort(ignore)
	return ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
