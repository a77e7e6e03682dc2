package repository

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/buildpath/pkg/errors"
	"github.com/matzehuels/buildpath/pkg/model"
	"github.com/matzehuels/buildpath/pkg/pathspec"
)

// Descriptor formats, named by file extension.
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

// descriptorExts lists the extensions tried, in order, for a descriptor.
var descriptorExts = []string{".toml", ".yaml", ".yml"}

// descriptor is the on-disk form of an artifact:
//
//	group = "org.example"
//	name = "app"
//	version = "1.0"
//
//	[[paths]]
//	id = "test"
//	descend = false
//
//	[[dependencies]]
//	id = "org.example:lib:2.1"
//	paths = ["runtime", "test<runtime"]
//
//	[[overrides]]
//	match = "org.example:lib"
//	versions = "[2.0,3.0)"
//	with = "2.2"
type descriptor struct {
	Group       string   `toml:"group" yaml:"group"`
	Name        string   `toml:"name" yaml:"name"`
	Type        string   `toml:"type,omitempty" yaml:"type,omitempty"`
	Version     string   `toml:"version" yaml:"version"`
	Description string   `toml:"description,omitempty" yaml:"description,omitempty"`
	Stub        bool     `toml:"stub,omitempty" yaml:"stub,omitempty"`
	Original    string   `toml:"original,omitempty" yaml:"original,omitempty"`
	Licenses    []string `toml:"licenses,omitempty" yaml:"licenses,omitempty"`

	Paths        []pathEntry       `toml:"paths,omitempty" yaml:"paths,omitempty"`
	Dependencies []dependencyEntry `toml:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Overrides    []overrideEntry   `toml:"overrides,omitempty" yaml:"overrides,omitempty"`
}

type pathEntry struct {
	ID          string `toml:"id" yaml:"id"`
	Description string `toml:"description,omitempty" yaml:"description,omitempty"`
	Descend     *bool  `toml:"descend,omitempty" yaml:"descend,omitempty"`
	Mandatory   *bool  `toml:"mandatory,omitempty" yaml:"mandatory,omitempty"`
}

type dependencyEntry struct {
	ID    string   `toml:"id" yaml:"id"`
	Paths []string `toml:"paths" yaml:"paths"` // PathSpec shorthands
}

type overrideEntry struct {
	Paths     []string `toml:"paths,omitempty" yaml:"paths,omitempty"` // default: all paths
	Match     string   `toml:"match" yaml:"match"`
	Versions  string   `toml:"versions,omitempty" yaml:"versions,omitempty"`
	With      string   `toml:"with,omitempty" yaml:"with,omitempty"`
	WithPaths []string `toml:"with-paths,omitempty" yaml:"with-paths,omitempty"` // relative shorthands, "*<compile"
}

// LoadDescriptor reads an artifact descriptor, choosing the format from the
// file extension.
func LoadDescriptor(path string) (*model.Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	a, err := DecodeDescriptor(data, formatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// DecodeDescriptor parses a descriptor in the given format.
func DecodeDescriptor(data []byte, format string) (*model.Artifact, error) {
	var d descriptor
	switch format {
	case FormatTOML:
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&d)
		if err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
		if keys := md.Undecoded(); len(keys) > 0 {
			return nil, fmt.Errorf("decode toml: unknown key %s", keys[0])
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported descriptor format %q", format)
	}
	return d.artifact()
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

func (d *descriptor) artifact() (*model.Artifact, error) {
	id := model.NewID(d.Group, d.Name, d.Type, d.Version)
	if id.Version == "" {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "descriptor %s:%s has no version", d.Group, d.Name)
	}
	if err := id.Validate(); err != nil {
		return nil, err
	}
	a := model.NewArtifact(id)
	a.Description = d.Description
	a.Stub = d.Stub

	if d.Original != "" {
		orig, err := model.ParseID(d.Original)
		if err != nil {
			return nil, fmt.Errorf("original: %w", err)
		}
		a.OriginalID = orig
	}
	for _, l := range d.Licenses {
		lid, err := model.ParseID(l)
		if err != nil {
			return nil, fmt.Errorf("license: %w", err)
		}
		a.Licenses = append(a.Licenses, lid)
	}

	for _, p := range d.Paths {
		if err := errors.ValidatePathID(p.ID); err != nil {
			return nil, err
		}
		path := model.NewPath(p.ID, p.Description)
		if p.Descend != nil {
			path.Descend = *p.Descend
		}
		if p.Mandatory != nil {
			path.Mandatory = *p.Mandatory
		}
		a.AddPath(path)
	}

	for _, e := range d.Dependencies {
		depID, err := model.ParseID(e.ID)
		if err != nil {
			return nil, fmt.Errorf("dependency: %w", err)
		}
		dep := model.NewDependency(depID)
		for _, s := range e.Paths {
			spec, err := pathspec.Parse(s)
			if err != nil {
				return nil, fmt.Errorf("dependency %s: %w", depID, err)
			}
			dep.AddPathSpec(spec)
		}
		a.AddDependency(dep)
	}

	for _, e := range d.Overrides {
		o, err := e.override()
		if err != nil {
			return nil, fmt.Errorf("override %q: %w", e.Match, err)
		}
		a.AddOverride(o)
	}
	return a, nil
}

func (e *overrideEntry) override() (*model.Override, error) {
	pattern, err := model.ParsePattern(e.Match)
	if err != nil {
		return nil, err
	}
	versions, err := model.ParseVersionRange(e.Versions)
	if err != nil {
		return nil, err
	}
	o := &model.Override{
		Paths:       e.Paths,
		Pattern:     pattern,
		Versions:    versions,
		WithVersion: e.With,
	}
	if len(o.Paths) == 0 {
		o.Paths = []string{model.AllPaths}
	}
	if o.WithVersion != "" {
		if err := errors.ValidateVersion(o.WithVersion); err != nil {
			return nil, err
		}
	}
	for _, s := range e.WithPaths {
		spec, err := pathspec.ParseRelative(s)
		if err != nil {
			return nil, err
		}
		o.WithPathSpecs = append(o.WithPathSpecs, spec)
	}
	return o, nil
}
