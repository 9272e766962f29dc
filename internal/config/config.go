package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/1broseidon/fluxcore/internal/screen"
	"github.com/1broseidon/fluxcore/internal/window"
	"gopkg.in/yaml.v3"
)

// Theme holds the decoration sizes.
type Theme struct {
	BorderWidth  int `yaml:"border_width"`
	TitleHeight  int `yaml:"title_height"`
	HandleHeight int `yaml:"handle_height"`
}

// Key binding actions. Keys in the keys map must be one of these.
const (
	ActionClose              = "close"
	ActionKill               = "kill"
	ActionIconify            = "iconify"
	ActionMaximize           = "maximize"
	ActionMaximizeVertical   = "maximize_vertical"
	ActionMaximizeHorizontal = "maximize_horizontal"
	ActionShade              = "shade"
	ActionStick              = "stick"
	ActionRaise              = "raise"
	ActionLower              = "lower"
	ActionRaiseLayer         = "raise_layer"
	ActionLowerLayer         = "lower_layer"
	ActionToggleDecoration   = "toggle_decoration"
	ActionNextTab            = "next_tab"
	ActionPrevTab            = "prev_tab"
	ActionDetachClient       = "detach_client"
	ActionStartMoving        = "start_moving"
	ActionNextWorkspace      = "next_workspace"
	ActionPrevWorkspace      = "prev_workspace"
	ActionSendToNext         = "send_to_next_workspace"
	ActionSendToPrev         = "send_to_prev_workspace"
	ActionArrangeWindows     = "arrange_windows"
)

// Actions lists every bindable action.
func Actions() []string {
	return []string{
		ActionClose,
		ActionKill,
		ActionIconify,
		ActionMaximize,
		ActionMaximizeVertical,
		ActionMaximizeHorizontal,
		ActionShade,
		ActionStick,
		ActionRaise,
		ActionLower,
		ActionRaiseLayer,
		ActionLowerLayer,
		ActionToggleDecoration,
		ActionNextTab,
		ActionPrevTab,
		ActionDetachClient,
		ActionStartMoving,
		ActionNextWorkspace,
		ActionPrevWorkspace,
		ActionSendToNext,
		ActionSendToPrev,
		ActionArrangeWindows,
	}
}

// Config holds the application configuration.
type Config struct {
	Display            string            `yaml:"display,omitempty"`
	XAuthority         string            `yaml:"xauthority,omitempty"`
	EdgeSnapThreshold  int               `yaml:"edge_snap_threshold"`
	WorkspaceWarping   bool              `yaml:"workspace_warping"`
	OpaqueMove         bool              `yaml:"opaque_move"`
	ShowWindowPosition bool              `yaml:"show_window_position"`
	FocusNew           bool              `yaml:"focus_new"`
	FocusModel         string            `yaml:"focus_model"`
	AutoRaise          bool              `yaml:"auto_raise"`
	AutoRaiseDelayMS   int               `yaml:"auto_raise_delay_ms"`
	ClickRaises        bool              `yaml:"click_raises"`
	Workspaces         int               `yaml:"workspaces"`
	WorkspaceNames     []string          `yaml:"workspace_names,omitempty"`
	Placement          string            `yaml:"placement"`
	ArrangeGap         int               `yaml:"arrange_gap"`
	MenuLayer          int               `yaml:"menu_layer"`
	DefaultLayer       int               `yaml:"default_layer"`
	NumLayers          int               `yaml:"num_layers"`
	Theme              Theme             `yaml:"theme"`
	Keys               map[string]string `yaml:"keys"`
	LogLevel           string            `yaml:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		EdgeSnapThreshold: 10,
		OpaqueMove:        true,
		FocusNew:          true,
		FocusModel:        window.ClickToFocus.String(),
		AutoRaiseDelayMS:  250,
		ClickRaises:       true,
		Workspaces:        4,
		Placement:         screen.PlacementRowSmart.String(),
		ArrangeGap:        0,
		MenuLayer:         0,
		DefaultLayer:      8,
		NumLayers:         13,
		Theme: Theme{
			BorderWidth:  1,
			TitleHeight:  18,
			HandleHeight: 6,
		},
		Keys:     defaultKeys(),
		LogLevel: "info",
	}
}

func defaultKeys() map[string]string {
	return map[string]string{
		ActionClose:          "Mod1-F4",
		ActionIconify:        "Mod1-F9",
		ActionMaximize:       "Mod1-F10",
		ActionShade:          "Mod1-F5",
		ActionStick:          "Mod1-F6",
		ActionRaise:          "Mod1-F2",
		ActionLower:          "Mod1-F3",
		ActionNextTab:        "Mod4-Tab",
		ActionPrevTab:        "Mod4-Shift-Tab",
		ActionStartMoving:    "Mod1-F7",
		ActionNextWorkspace:  "Control-Mod1-Right",
		ActionPrevWorkspace:  "Control-Mod1-Left",
		ActionSendToNext:     "Control-Mod1-Shift-Right",
		ActionSendToPrev:     "Control-Mod1-Shift-Left",
		ActionArrangeWindows: "Mod4-a",
	}
}

// FocusPolicy parses focus_model.
func (c *Config) FocusPolicy() (window.FocusPolicy, error) {
	switch c.FocusModel {
	case "click":
		return window.ClickToFocus, nil
	case "sloppy":
		return window.SloppyFocus, nil
	case "semi-sloppy":
		return window.SemiSloppyFocus, nil
	default:
		return window.ClickToFocus, fmt.Errorf("focus_model must be one of: click, sloppy, semi-sloppy")
	}
}

var errLogLevel = errors.New("log_level must be one of: debug, info, warning, error")

func validLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warning", "error":
		return true
	}
	return false
}

// SlogLevel maps log_level onto a slog level. Unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WindowOptions converts the configuration into window core options.
// The config must have been validated.
func (c *Config) WindowOptions() window.Options {
	opts := window.DefaultOptions()
	if p, err := c.FocusPolicy(); err == nil {
		opts.FocusPolicy = p
	}
	opts.FocusNew = c.FocusNew
	opts.AutoRaise = c.AutoRaise
	opts.AutoRaiseDelay = time.Duration(c.AutoRaiseDelayMS) * time.Millisecond
	opts.ClickRaises = c.ClickRaises
	opts.OpaqueMove = c.OpaqueMove
	opts.WorkspaceWarping = c.WorkspaceWarping
	opts.EdgeSnapThreshold = c.EdgeSnapThreshold
	opts.ShowPosition = c.ShowWindowPosition
	opts.MenuLayer = c.MenuLayer
	opts.DefaultLayer = c.DefaultLayer
	opts.NumLayers = c.NumLayers
	opts.Theme = window.Theme{
		BorderWidth:  c.Theme.BorderWidth,
		TitleHeight:  c.Theme.TitleHeight,
		HandleHeight: c.Theme.HandleHeight,
	}
	return opts
}

// ScreenOptions converts the configuration into workspace options.
func (c *Config) ScreenOptions() screen.Options {
	opts := screen.DefaultOptions()
	opts.Workspaces = c.Workspaces
	opts.Names = slices.Clone(c.WorkspaceNames)
	if p, err := screen.ParsePlacement(c.Placement); err == nil {
		opts.Placement = p
	}
	return opts
}

// Save writes the configuration to the standard location.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if c.EdgeSnapThreshold < 0 {
		return &ValidationError{Path: "edge_snap_threshold", Err: fmt.Errorf("edge_snap_threshold must be >= 0")}
	}
	if _, err := c.FocusPolicy(); err != nil {
		return &ValidationError{Path: "focus_model", Err: err}
	}
	if c.AutoRaiseDelayMS < 0 {
		return &ValidationError{Path: "auto_raise_delay_ms", Err: fmt.Errorf("auto_raise_delay_ms must be >= 0")}
	}
	if c.Workspaces < 1 {
		return &ValidationError{Path: "workspaces", Err: fmt.Errorf("workspaces must be >= 1")}
	}
	if len(c.WorkspaceNames) > c.Workspaces {
		return &ValidationError{Path: "workspace_names", Err: fmt.Errorf("workspace_names has %d entries for %d workspaces", len(c.WorkspaceNames), c.Workspaces)}
	}
	if _, err := screen.ParsePlacement(c.Placement); err != nil {
		return &ValidationError{Path: "placement", Err: err}
	}
	if c.ArrangeGap < 0 {
		return &ValidationError{Path: "arrange_gap", Err: fmt.Errorf("arrange_gap must be >= 0")}
	}
	if c.NumLayers < 2 {
		return &ValidationError{Path: "num_layers", Err: fmt.Errorf("num_layers must be >= 2")}
	}
	if c.MenuLayer < 0 || c.MenuLayer >= c.NumLayers-1 {
		return &ValidationError{Path: "menu_layer", Err: fmt.Errorf("menu_layer must be between 0 and %d", c.NumLayers-2)}
	}
	if c.DefaultLayer <= c.MenuLayer || c.DefaultLayer >= c.NumLayers {
		return &ValidationError{Path: "default_layer", Err: fmt.Errorf("default_layer must be between %d and %d", c.MenuLayer+1, c.NumLayers-1)}
	}
	if c.Theme.BorderWidth < 0 {
		return &ValidationError{Path: "theme.border_width", Err: fmt.Errorf("border_width must be >= 0")}
	}
	if c.Theme.TitleHeight < 0 {
		return &ValidationError{Path: "theme.title_height", Err: fmt.Errorf("title_height must be >= 0")}
	}
	if c.Theme.HandleHeight < 0 {
		return &ValidationError{Path: "theme.handle_height", Err: fmt.Errorf("handle_height must be >= 0")}
	}
	if c.Keys == nil {
		return &ValidationError{Path: "keys", Err: fmt.Errorf("keys must not be null")}
	}
	known := Actions()
	for action, seq := range c.Keys {
		if !slices.Contains(known, action) {
			return &ValidationError{Path: "keys." + action, Err: fmt.Errorf("unknown action %q", action)}
		}
		if strings.TrimSpace(seq) == "" {
			return &ValidationError{Path: "keys." + action, Err: fmt.Errorf("key sequence must not be empty")}
		}
	}
	if !validLogLevel(c.LogLevel) {
		return &ValidationError{Path: "log_level", Err: errLogLevel}
	}

	if warnings := c.validationWarnings(); len(warnings) > 0 {
		for _, w := range warnings {
			fmt.Fprintln(os.Stderr, "warning:", w)
		}
	}
	return nil
}

func (c *Config) validationWarnings() []string {
	if c == nil {
		return nil
	}

	var warnings []string

	if c.AutoRaise && c.FocusModel == "click" {
		warnings = append(warnings, "auto_raise has no effect with focus_model click")
	}

	bound := make(map[string]string, len(c.Keys))
	actions := make([]string, 0, len(c.Keys))
	for action := range c.Keys {
		actions = append(actions, action)
	}
	slices.Sort(actions)
	for _, action := range actions {
		seq := c.Keys[action]
		if other, ok := bound[seq]; ok {
			warnings = append(warnings, fmt.Sprintf("keys.%s uses %q which is already bound to %s; the first one wins", action, seq, other))
			continue
		}
		bound[seq] = action
	}

	return warnings
}
