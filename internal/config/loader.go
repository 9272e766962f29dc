package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/1broseidon/fluxcore/internal/screen"
	"gopkg.in/yaml.v3"
)

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceFile    SourceKind = "file"
)

// Source says where a setting came from.
type Source struct {
	Kind   SourceKind
	Name   string // for defaults
	File   string
	Line   int
	Column int
}

// LoadResult is the effective configuration plus, for every key set in a
// file, the last file position that set it.
type LoadResult struct {
	Config  *Config
	Sources map[string]Source
	Files   []string // in merge order, includes before their includer
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/fluxcore/config.yaml,
// falling back to ~/.config.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "fluxcore", "config.yaml"), nil
}

// Load reads the configuration from the default location.
func Load() (*Config, error) {
	res, err := LoadWithSources()
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// LoadWithSources is Load keeping the per-key sources for config explain.
func LoadWithSources() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads the config at path and its includes. A missing file
// yields the defaults.
func LoadFromPath(path string) (*LoadResult, error) {
	l := &loader{loaded: make(map[string]bool)}
	if _, err := os.Stat(path); err == nil {
		if err := l.load(path); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return l.result()
}

// loader reads a file tree depth first. Included files are queued before
// the file that includes them so the includer overrides them.
type loader struct {
	files   []*file
	reading []string
	loaded  map[string]bool
}

func (l *loader) load(path string) error {
	path = canonicalPath(path)
	if slices.Contains(l.reading, path) {
		return fmt.Errorf("include cycle detected: %s -> %s", strings.Join(l.reading, " -> "), path)
	}
	// a file included twice is merged once, at its first position
	if l.loaded[path] {
		return nil
	}
	l.loaded[path] = true

	f, err := parseFile(path)
	if err != nil {
		return err
	}

	l.reading = append(l.reading, path)
	for _, ref := range f.includes {
		targets, err := includeTargets(path, ref.value)
		if err != nil {
			return fmt.Errorf("%s:%d:%d: include %q: %w", ref.at.File, ref.at.Line, ref.at.Column, ref.value, err)
		}
		for _, target := range targets {
			if err := l.load(target); err != nil {
				return err
			}
		}
	}
	l.reading = l.reading[:len(l.reading)-1]

	l.files = append(l.files, f)
	return nil
}

func (l *loader) result() (*LoadResult, error) {
	res := &LoadResult{Sources: make(map[string]Source)}
	var raw RawConfig
	for _, f := range l.files {
		raw = raw.merge(f.raw)
		maps.Copy(res.Sources, f.keys)
		res.Files = append(res.Files, f.path)
	}

	res.Config = BuildEffectiveConfig(raw)
	if err := res.Config.Validate(); err != nil {
		return nil, withSource(err, res.Sources)
	}
	return res, nil
}

type includeRef struct {
	value string
	at    Source
}

// file is one parsed configuration file.
type file struct {
	path     string
	raw      RawConfig
	keys     map[string]Source
	includes []includeRef
}

func parseFile(path string) (*file, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read: %w", path, err)
	}

	f := &file{path: path, keys: make(map[string]Source)}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f.raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: failed to parse yaml: %w", path, err)
	}
	f.index(&doc)

	if err := f.check(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *file) at(n *yaml.Node) Source {
	return Source{Kind: SourceFile, File: f.path, Line: n.Line, Column: n.Column}
}

// index records the position of every mapping key as a dotted path and
// collects the include entries.
func (f *file) index(doc *yaml.Node) {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return
	}
	type pending struct {
		prefix string
		node   *yaml.Node
	}
	todo := []pending{{node: doc.Content[0]}}
	for len(todo) > 0 {
		p := todo[len(todo)-1]
		todo = todo[:len(todo)-1]
		if p.node.Kind != yaml.MappingNode {
			continue
		}
		for i := 0; i+1 < len(p.node.Content); i += 2 {
			key, val := p.node.Content[i].Value, p.node.Content[i+1]
			if p.prefix != "" {
				key = p.prefix + "." + key
			}
			f.keys[key] = f.at(val)

			switch {
			case key == "include":
				f.addIncludes(val)
			case val.Kind == yaml.MappingNode:
				todo = append(todo, pending{prefix: key, node: val})
			}
		}
	}
}

func (f *file) addIncludes(val *yaml.Node) {
	items := []*yaml.Node{val}
	if val.Kind == yaml.SequenceNode {
		items = val.Content
	}
	for _, item := range items {
		if item.Kind == yaml.ScalarNode {
			f.includes = append(f.includes, includeRef{value: item.Value, at: f.at(item)})
		}
	}
}

// check rejects values that are wrong no matter what other files set, so
// the error names the file that wrote them. Checks spanning several keys
// run on the merged result.
func (f *file) check() error {
	r := f.raw
	if r.FocusModel != nil {
		c := Config{FocusModel: *r.FocusModel}
		if _, err := c.FocusPolicy(); err != nil {
			return f.invalid("focus_model", err)
		}
	}
	if r.Placement != nil {
		if _, err := screen.ParsePlacement(*r.Placement); err != nil {
			return f.invalid("placement", err)
		}
	}
	if r.LogLevel != nil && !validLogLevel(*r.LogLevel) {
		return f.invalid("log_level", errLogLevel)
	}
	if r.MenuLayer != nil && *r.MenuLayer < 0 {
		return f.invalid("menu_layer", fmt.Errorf("menu_layer must be >= 0"))
	}
	if r.NumLayers != nil && *r.NumLayers < 2 {
		return f.invalid("num_layers", fmt.Errorf("num_layers must be >= 2"))
	}
	for _, action := range slices.Sorted(maps.Keys(r.Keys)) {
		if !isAction(action) {
			return f.invalid("keys."+action, fmt.Errorf("unknown action %q", action))
		}
	}
	return nil
}

func (f *file) invalid(path string, err error) error {
	return &ValidationError{Path: path, Source: f.keys[path], Err: err}
}

func canonicalPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if real, err := filepath.EvalSymlinks(path); err == nil {
		return real
	}
	return path
}

// includeTargets resolves an include entry relative to the including
// file. A directory stands for its *.yaml and *.yml files in name order.
func includeTargets(from, include string) ([]string, error) {
	if include == "" {
		return nil, fmt.Errorf("path is empty")
	}
	if rest, ok := strings.CutPrefix(include, "~"); ok && (rest == "" || rest[0] == '/') {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		include = home + rest
	}
	if !filepath.IsAbs(include) {
		include = filepath.Join(filepath.Dir(from), include)
	}

	info, err := os.Stat(include)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{include}, nil
	}

	var out []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(include, pattern))
		if err != nil {
			return nil, err
		}
		out = append(out, matches...)
	}
	slices.Sort(out)
	return out, nil
}

// withSource fills in the file position of a validation error from the
// merged sources.
func withSource(err error, sources map[string]Source) error {
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path == "" {
		return err
	}
	if src, ok := sources[verr.Path]; ok {
		verr.Source = src
	}
	return err
}
