package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/fluxcore/internal/screen"
	"github.com/1broseidon/fluxcore/internal/window"
)

func writeConfig(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.Keys[ActionClose] != "Mod1-F4" {
		t.Fatalf("expected close bound to Mod1-F4, got %q", cfg.Keys[ActionClose])
	}
}

func TestDefaultConfig_MatchesWindowDefaults(t *testing.T) {
	got := DefaultConfig().WindowOptions()
	want := window.DefaultOptions()
	want.EdgeSnapThreshold = 10
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Workspaces != 4 {
		t.Fatalf("expected 4 workspaces, got %d", res.Config.Workspaces)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files loaded, got %v", res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.FocusModel != "click" {
		t.Fatalf("expected focus_model click, got %q", res.Config.FocusModel)
	}
}

func TestLoadFromPath_Overrides(t *testing.T) {
	data := strings.Join([]string{
		"focus_model: sloppy",
		"auto_raise: true",
		"auto_raise_delay_ms: 400",
		"opaque_move: false",
		"workspace_warping: true",
		"edge_snap_threshold: 4",
		"workspaces: 3",
		"workspace_names: [web, code]",
		"placement: cascade",
		"theme:",
		"  title_height: 22",
		"keys:",
		"  kill: Mod4-k",
		"  close: \"\"",
		"",
	}, "\n")
	path := writeConfig(t, t.TempDir(), "config.yaml", data)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config

	opts := cfg.WindowOptions()
	if opts.FocusPolicy != window.SloppyFocus {
		t.Fatalf("expected sloppy focus, got %v", opts.FocusPolicy)
	}
	if !opts.AutoRaise || opts.AutoRaiseDelay != 400*time.Millisecond {
		t.Fatalf("expected auto raise after 400ms, got %v %v", opts.AutoRaise, opts.AutoRaiseDelay)
	}
	if opts.OpaqueMove || !opts.WorkspaceWarping || opts.EdgeSnapThreshold != 4 {
		t.Fatalf("unexpected move options %+v", opts)
	}
	if opts.Theme.TitleHeight != 22 || opts.Theme.BorderWidth != 1 {
		t.Fatalf("expected title 22 with default border, got %+v", opts.Theme)
	}

	sopts := cfg.ScreenOptions()
	if sopts.Workspaces != 3 || sopts.Placement != screen.PlacementCascade {
		t.Fatalf("unexpected screen options %+v", sopts)
	}
	if len(sopts.Names) != 2 || sopts.Names[1] != "code" {
		t.Fatalf("expected names [web code], got %v", sopts.Names)
	}

	if cfg.Keys[ActionKill] != "Mod4-k" {
		t.Fatalf("expected kill bound, got %q", cfg.Keys[ActionKill])
	}
	if _, ok := cfg.Keys[ActionClose]; ok {
		t.Fatalf("expected close to be unbound")
	}
	if cfg.Keys[ActionIconify] != "Mod1-F9" {
		t.Fatalf("expected default iconify binding to survive, got %q", cfg.Keys[ActionIconify])
	}
}

func TestLoadFromPath_DisplayAndXAuthority(t *testing.T) {
	data := strings.Join([]string{
		"display: \":1\"",
		"xauthority: \"/tmp/test-xauth\"",
		"",
	}, "\n")
	path := writeConfig(t, t.TempDir(), "config.yaml", data)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Display != ":1" {
		t.Fatalf("expected display :1, got %q", res.Config.Display)
	}
	if res.Config.XAuthority != "/tmp/test-xauth" {
		t.Fatalf("expected xauthority /tmp/test-xauth, got %q", res.Config.XAuthority)
	}

	val, src, err := Explain(res, "display")
	if err != nil {
		t.Fatalf("explain display: %v", err)
	}
	if val != ":1" {
		t.Fatalf("expected explain display :1, got %#v", val)
	}
	if src.Kind != SourceFile {
		t.Fatalf("expected display source kind file, got %#v", src)
	}
}

func TestExplain_DefaultsAndNested(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "theme:\n  title_height: 22\n")
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	val, src, err := Explain(res, "theme.title_height")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != 22 || src.Kind != SourceFile || src.Line != 2 {
		t.Fatalf("expected 22 from line 2, got %#v %#v", val, src)
	}

	val, src, err = Explain(res, "menu_layer")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != 0 || src.Kind != SourceDefault {
		t.Fatalf("expected default 0, got %#v %#v", val, src)
	}

	val, _, err = Explain(res, "keys.kill")
	if err != nil {
		t.Fatalf("explain unbound action: %v", err)
	}
	if val != "" {
		t.Fatalf("expected unbound kill, got %#v", val)
	}

	if _, _, err := Explain(res, "theme.nope"); err == nil {
		t.Fatalf("expected unknown path error")
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "unknown_key: 1\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown_key") && !strings.Contains(err.Error(), "field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "workspaces: 2\nfocus_model: lazy\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if verr.Path != "focus_model" || verr.Source.Line != 2 {
		t.Fatalf("expected focus_model at line 2, got %#v", verr)
	}
	if !strings.HasPrefix(err.Error(), verr.Source.File+":2:") {
		t.Fatalf("expected file:line:col prefix, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"negative snap", func(c *Config) { c.EdgeSnapThreshold = -1 }, "edge_snap_threshold"},
		{"no workspaces", func(c *Config) { c.Workspaces = 0 }, "workspaces"},
		{"too many names", func(c *Config) { c.WorkspaceNames = []string{"a", "b", "c", "d", "e"} }, "workspace_names"},
		{"bad placement", func(c *Config) { c.Placement = "random" }, "placement"},
		{"default layer in menu layer", func(c *Config) { c.DefaultLayer = 0 }, "default_layer"},
		{"default layer out of range", func(c *Config) { c.DefaultLayer = 13 }, "default_layer"},
		{"menu layer too high", func(c *Config) { c.MenuLayer = 12 }, "menu_layer"},
		{"negative border", func(c *Config) { c.Theme.BorderWidth = -1 }, "theme.border_width"},
		{"unknown action", func(c *Config) { c.Keys["explode"] = "Mod4-x" }, "keys.explode"},
		{"empty sequence", func(c *Config) { c.Keys[ActionKill] = " " }, "keys.kill"},
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }, "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("expected path %q, got %q", tt.path, verr.Path)
			}
		})
	}
}

func TestValidationWarnings_DuplicateKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Keys[ActionKill] = cfg.Keys[ActionClose]
	warnings := cfg.validationWarnings()
	if len(warnings) != 1 || !strings.Contains(warnings[0], "keys.kill") {
		t.Fatalf("expected duplicate warning for kill, got %v", warnings)
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()

	// config.d loaded first, in sorted order.
	configD := filepath.Join(dir, "config.d")
	if err := os.MkdirAll(configD, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeConfig(t, configD, "10-base.yaml", "edge_snap_threshold: 5\ntheme:\n  border_width: 2\n")
	writeConfig(t, configD, "20-override.yaml", "edge_snap_threshold: 6\ntheme:\n  title_height: 20\n")

	// Main file overrides includes.
	main := strings.Join([]string{
		"include:",
		"  - config.d",
		"edge_snap_threshold: 7",
		"",
	}, "\n")
	path := writeConfig(t, dir, "config.yaml", main)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.EdgeSnapThreshold != 7 {
		t.Fatalf("expected edge_snap_threshold to be 7, got %d", res.Config.EdgeSnapThreshold)
	}
	if res.Config.Theme.BorderWidth != 2 || res.Config.Theme.TitleHeight != 20 {
		t.Fatalf("expected merged theme, got %+v", res.Config.Theme)
	}
	if len(res.Files) != 3 || res.Files[2] != res.Sources["edge_snap_threshold"].File {
		t.Fatalf("expected main file loaded last, got %v", res.Files)
	}
}

func TestLoadFromPath_IncludeMissingPathHasContext(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "include:\n  - missing.yaml\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "include") || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected include error, got %v", err)
	}
	if !strings.Contains(err.Error(), path+":") {
		t.Fatalf("expected error to include file:line:col prefix, got %v", err)
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	dir := t.TempDir()
	a := writeConfig(t, dir, "a.yaml", "include: b.yaml\n")
	writeConfig(t, dir, "b.yaml", "include: a.yaml\n")

	_, err := LoadFromPath(a)
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestLoadFromPath_IncludedBadValueNamesInclude(t *testing.T) {
	dir := t.TempDir()
	inc := writeConfig(t, dir, "focus.yaml", "auto_raise: true\nfocus_model: lazy\n")
	path := writeConfig(t, dir, "config.yaml", "include: focus.yaml\nfocus_model: click\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Path != "focus_model" {
		t.Fatalf("expected focus_model, got %q", verr.Path)
	}
	if verr.Source.File != canonicalPath(inc) || verr.Source.Line != 2 {
		t.Fatalf("expected %s:2, got %s:%d", inc, verr.Source.File, verr.Source.Line)
	}
}

func TestLoadFromPath_LayerSectionCheckedPerFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "layers.yaml", "num_layers: 13\nmenu_layer: -1\n")
	path := writeConfig(t, dir, "config.yaml", "include: layers.yaml\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Path != "menu_layer" || !strings.HasSuffix(verr.Source.File, "layers.yaml") {
		t.Fatalf("expected menu_layer in layers.yaml, got %v", err)
	}
}

func TestLoadFromPath_MergedLayersValidatedAfterFold(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "layers.yaml", "num_layers: 4\n")
	path := writeConfig(t, dir, "config.yaml", "include: layers.yaml\ndefault_layer: 6\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Path != "default_layer" || verr.Source.File != canonicalPath(path) || verr.Source.Line != 2 {
		t.Fatalf("expected default_layer at %s:2, got %v", path, err)
	}
}

func TestLoadFromPath_SharedIncludeMergedOnce(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "common.yaml", "arrange_gap: 3\n")
	writeConfig(t, dir, "a.yaml", "include: common.yaml\n")
	writeConfig(t, dir, "b.yaml", "include: common.yaml\n")
	path := writeConfig(t, dir, "config.yaml", "include:\n  - a.yaml\n  - b.yaml\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(res.Files) != 4 {
		t.Fatalf("expected 4 files, got %v", res.Files)
	}
	if res.Config.ArrangeGap != 3 {
		t.Fatalf("expected arrange_gap 3, got %d", res.Config.ArrangeGap)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := DefaultConfig()
	cfg.FocusModel = "semi-sloppy"
	cfg.WorkspaceNames = []string{"one"}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.FocusModel != "semi-sloppy" || res.Config.WorkspaceNames[0] != "one" {
		t.Fatalf("expected saved values back, got %+v", res.Config)
	}
}

func TestSlogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for name, want := range cases {
		cfg := DefaultConfig()
		cfg.LogLevel = name
		if got := cfg.SlogLevel(); got != want {
			t.Fatalf("expected %v for %q, got %v", want, name, got)
		}
	}
}
