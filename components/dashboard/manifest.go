package dashboard

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current manifest format version for tooling.
	ManifestVersion = manifestVersionV1
)

// ViewManifest describes which bindings a dashboard view mounts. Outputs of a
// section that are not listed are never rendered.
type ViewManifest struct {
	Version  string            `json:"version" yaml:"version"`
	Name     string            `json:"name,omitempty" yaml:"name,omitempty"`
	Sections []ManifestSection `json:"sections" yaml:"sections"`
	Source   string            `json:"-" yaml:"-"`
}

// ManifestSection lists the mounted bindings of one section. An empty list mounts all of them.
type ManifestSection struct {
	Section  Section  `json:"section" yaml:"section"`
	Bindings []string `json:"bindings,omitempty" yaml:"bindings,omitempty"`
}

// DefaultViewManifest mounts every binding of every registered section.
func DefaultViewManifest(reg *Registry) *ViewManifest {
	if reg == nil {
		reg = NewRegistry()
	}
	doc := &ViewManifest{Version: manifestVersionV1, Name: "full"}
	for _, plan := range reg.Plans() {
		doc.Sections = append(doc.Sections, ManifestSection{Section: plan.Section, Bindings: plan.Bindings()})
	}
	return doc
}

// ReadManifest loads a manifest file from disk.
func ReadManifest(path string) (*ViewManifest, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dashboard: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("dashboard: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader.
func DecodeManifest(r io.Reader) (*ViewManifest, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc ViewManifest
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("dashboard: manifest is empty")
		}
		return nil, fmt.Errorf("dashboard: parse manifest: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate ensures the manifest names known sections once and never repeats a binding.
func (doc *ViewManifest) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("dashboard: unsupported manifest version %q", doc.Version)
	}
	sections := make(map[Section]struct{}, len(doc.Sections))
	bindings := make(map[string]Section)
	for idx, entry := range doc.Sections {
		if entry.Section == "" {
			return fmt.Errorf("dashboard: manifest section at index %d is missing section", idx)
		}
		if _, err := ParseSection(string(entry.Section)); err != nil {
			return fmt.Errorf("dashboard: manifest section at index %d: %w", idx, err)
		}
		if _, dup := sections[entry.Section]; dup {
			return fmt.Errorf("dashboard: manifest duplicates section %s", entry.Section)
		}
		sections[entry.Section] = struct{}{}
		for _, binding := range entry.Bindings {
			if owner, dup := bindings[binding]; dup {
				return fmt.Errorf("dashboard: manifest binds %s in both %s and %s", binding, owner, entry.Section)
			}
			bindings[binding] = entry.Section
		}
	}
	return nil
}

// NewView mounts the manifest's bindings, rejecting any binding its section does not own.
func (doc *ViewManifest) NewView(reg *Registry) (*View, error) {
	if reg == nil {
		reg = NewRegistry()
	}
	view := NewView(BindingLastUpdated)
	for _, entry := range doc.Sections {
		plan, ok := reg.Plan(entry.Section)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSection, entry.Section)
		}
		owned := plan.Bindings()
		if len(entry.Bindings) == 0 {
			for _, binding := range owned {
				view.Mount(binding)
			}
			continue
		}
		for _, binding := range entry.Bindings {
			if !contains(owned, binding) {
				return nil, fmt.Errorf("dashboard: section %s does not own binding %s", entry.Section, binding)
			}
			view.Mount(binding)
		}
	}
	return view, nil
}

func (doc *ViewManifest) applyDefaults() {
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
