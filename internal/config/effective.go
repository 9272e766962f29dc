package config

import "fmt"

// ValidationError reports an invalid setting, with the file position that
// set it when known.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig overlays raw on the defaults. A keys entry with an
// empty sequence unbinds the default for that action.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	applyPtr(&cfg.Display, raw.Display)
	applyPtr(&cfg.XAuthority, raw.XAuthority)
	applyPtr(&cfg.EdgeSnapThreshold, raw.EdgeSnapThreshold)
	applyPtr(&cfg.WorkspaceWarping, raw.WorkspaceWarping)
	applyPtr(&cfg.OpaqueMove, raw.OpaqueMove)
	applyPtr(&cfg.ShowWindowPosition, raw.ShowWindowPosition)
	applyPtr(&cfg.FocusNew, raw.FocusNew)
	applyPtr(&cfg.FocusModel, raw.FocusModel)
	applyPtr(&cfg.AutoRaise, raw.AutoRaise)
	applyPtr(&cfg.AutoRaiseDelayMS, raw.AutoRaiseDelayMS)
	applyPtr(&cfg.ClickRaises, raw.ClickRaises)
	applyPtr(&cfg.Workspaces, raw.Workspaces)
	applyPtr(&cfg.Placement, raw.Placement)
	applyPtr(&cfg.ArrangeGap, raw.ArrangeGap)
	applyPtr(&cfg.MenuLayer, raw.MenuLayer)
	applyPtr(&cfg.DefaultLayer, raw.DefaultLayer)
	applyPtr(&cfg.NumLayers, raw.NumLayers)
	applyPtr(&cfg.LogLevel, raw.LogLevel)

	if raw.WorkspaceNames != nil {
		cfg.WorkspaceNames = raw.WorkspaceNames
	}
	if raw.Theme != nil {
		applyPtr(&cfg.Theme.BorderWidth, raw.Theme.BorderWidth)
		applyPtr(&cfg.Theme.TitleHeight, raw.Theme.TitleHeight)
		applyPtr(&cfg.Theme.HandleHeight, raw.Theme.HandleHeight)
	}
	for action, seq := range raw.Keys {
		if seq == "" {
			delete(cfg.Keys, action)
			continue
		}
		cfg.Keys[action] = seq
	}

	return cfg
}

func applyPtr[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
