package config

import (
	"fmt"
	"maps"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawTheme struct {
	BorderWidth  *int `yaml:"border_width"`
	TitleHeight  *int `yaml:"title_height"`
	HandleHeight *int `yaml:"handle_height"`
}

// RawConfig is one YAML file as written. Nil fields were not set and leave
// the value from earlier files or the defaults alone.
type RawConfig struct {
	Include            IncludeList       `yaml:"include"`
	Display            *string           `yaml:"display"`
	XAuthority         *string           `yaml:"xauthority"`
	EdgeSnapThreshold  *int              `yaml:"edge_snap_threshold"`
	WorkspaceWarping   *bool             `yaml:"workspace_warping"`
	OpaqueMove         *bool             `yaml:"opaque_move"`
	ShowWindowPosition *bool             `yaml:"show_window_position"`
	FocusNew           *bool             `yaml:"focus_new"`
	FocusModel         *string           `yaml:"focus_model"`
	AutoRaise          *bool             `yaml:"auto_raise"`
	AutoRaiseDelayMS   *int              `yaml:"auto_raise_delay_ms"`
	ClickRaises        *bool             `yaml:"click_raises"`
	Workspaces         *int              `yaml:"workspaces"`
	WorkspaceNames     []string          `yaml:"workspace_names"`
	Placement          *string           `yaml:"placement"`
	ArrangeGap         *int              `yaml:"arrange_gap"`
	MenuLayer          *int              `yaml:"menu_layer"`
	DefaultLayer       *int              `yaml:"default_layer"`
	NumLayers          *int              `yaml:"num_layers"`
	Theme              *RawTheme         `yaml:"theme"`
	Keys               map[string]string `yaml:"keys"`
	LogLevel           *string           `yaml:"log_level"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	mergePtr(&out.Display, overlay.Display)
	mergePtr(&out.XAuthority, overlay.XAuthority)
	mergePtr(&out.EdgeSnapThreshold, overlay.EdgeSnapThreshold)
	mergePtr(&out.WorkspaceWarping, overlay.WorkspaceWarping)
	mergePtr(&out.OpaqueMove, overlay.OpaqueMove)
	mergePtr(&out.ShowWindowPosition, overlay.ShowWindowPosition)
	mergePtr(&out.FocusNew, overlay.FocusNew)
	mergePtr(&out.FocusModel, overlay.FocusModel)
	mergePtr(&out.AutoRaise, overlay.AutoRaise)
	mergePtr(&out.AutoRaiseDelayMS, overlay.AutoRaiseDelayMS)
	mergePtr(&out.ClickRaises, overlay.ClickRaises)
	mergePtr(&out.Workspaces, overlay.Workspaces)
	mergePtr(&out.Placement, overlay.Placement)
	mergePtr(&out.ArrangeGap, overlay.ArrangeGap)
	mergePtr(&out.MenuLayer, overlay.MenuLayer)
	mergePtr(&out.DefaultLayer, overlay.DefaultLayer)
	mergePtr(&out.NumLayers, overlay.NumLayers)
	mergePtr(&out.LogLevel, overlay.LogLevel)

	if overlay.WorkspaceNames != nil {
		out.WorkspaceNames = overlay.WorkspaceNames
	}

	if overlay.Theme != nil {
		theme := RawTheme{}
		if out.Theme != nil {
			theme = *out.Theme
		}
		mergePtr(&theme.BorderWidth, overlay.Theme.BorderWidth)
		mergePtr(&theme.TitleHeight, overlay.Theme.TitleHeight)
		mergePtr(&theme.HandleHeight, overlay.Theme.HandleHeight)
		out.Theme = &theme
	}

	if overlay.Keys != nil {
		keys := make(map[string]string, len(out.Keys)+len(overlay.Keys))
		maps.Copy(keys, out.Keys)
		maps.Copy(keys, overlay.Keys)
		out.Keys = keys
	}

	return out
}

func mergePtr[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}
