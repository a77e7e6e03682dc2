package repository

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/buildpath/pkg/model"
	"github.com/matzehuels/buildpath/pkg/pathspec"
)

const appTOML = `
group = "org.example"
name = "app"
version = "1.0"
description = "example application"
licenses = ["org.example:license:1"]

[[paths]]
id = "test"
descend = false

[[dependencies]]
id = "org.example:lib:2.1"
paths = ["runtime", "test<runtime"]

[[dependencies]]
id = "org.example:extra:war:0.9"
paths = ["runtime?(x,-y)"]

[[overrides]]
match = "org.example:lib"
versions = "[2.0,3.0)"
with = "2.2"
with-paths = ["*<compile"]
`

const appYAML = `
group: org.example
name: app
version: "1.0"
description: example application
licenses: ["org.example:license:1"]
paths:
  - id: test
    descend: false
dependencies:
  - id: org.example:lib:2.1
    paths: [runtime, test<runtime]
  - id: org.example:extra:war:0.9
    paths: ["runtime?(x,-y)"]
overrides:
  - match: org.example:lib
    versions: "[2.0,3.0)"
    with: "2.2"
    with-paths: ["*<compile"]
`

func TestDecodeDescriptor(t *testing.T) {
	for _, tt := range []struct {
		format string
		data   string
	}{
		{FormatTOML, appTOML},
		{FormatYAML, appYAML},
	} {
		t.Run(tt.format, func(t *testing.T) {
			a, err := DecodeDescriptor([]byte(tt.data), tt.format)
			if err != nil {
				t.Fatalf("DecodeDescriptor: %v", err)
			}
			if a.ID.String() != "org.example:app:jar:1.0" {
				t.Errorf("ID = %s", a.ID)
			}
			if a.Description != "example application" {
				t.Errorf("Description = %q", a.Description)
			}
			if len(a.Licenses) != 1 || a.Licenses[0].Name != "license" {
				t.Errorf("Licenses = %v", a.Licenses)
			}

			p, ok := a.Path("test")
			if !ok || p.Descend || !p.Mandatory {
				t.Errorf("test path = %+v", p)
			}

			if len(a.Dependencies) != 2 {
				t.Fatalf("got %d dependencies", len(a.Dependencies))
			}
			lib := a.Dependencies[0]
			var specs []string
			for _, s := range lib.PathSpecs {
				specs = append(specs, pathspec.Format(s, nil))
				if s.Dependency != lib {
					t.Error("path spec should point back at its dependency")
				}
			}
			if diff := cmp.Diff([]string{"runtime", "test<"}, specs); diff != "" {
				t.Errorf("lib specs mismatch (-want +got):\n%s", diff)
			}
			extra := a.Dependencies[1]
			if extra.ID.Type != "war" {
				t.Errorf("extra type = %s", extra.ID.Type)
			}
			if s := extra.PathSpecs[0]; s.IsMandatory(true) || s.Options != "x,-y" {
				t.Errorf("extra spec = %+v", s)
			}

			if len(a.Overrides) != 1 {
				t.Fatalf("got %d overrides", len(a.Overrides))
			}
			o := a.Overrides[0]
			if !o.AppliesTo("anything") {
				t.Error("override without paths should apply everywhere")
			}
			if !o.Matches(model.MustParseID("org.example:lib:2.1")) || o.Matches(model.MustParseID("org.example:lib:3.0")) {
				t.Error("override range mismatch")
			}
			if o.WithVersion != "2.2" || len(o.WithPathSpecs) != 1 || o.WithPathSpecs[0].From != "compile" {
				t.Errorf("override replacement = %+v", o)
			}
		})
	}
}

func TestDecodeDescriptorErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"missing version", `group = "g"` + "\n" + `name = "n"`, "no version"},
		{"bad dependency id", `group = "g"
name = "n"
version = "1"
[[dependencies]]
id = "g:n"
paths = ["runtime"]`, "dependency"},
		{"bad shorthand", `group = "g"
name = "n"
version = "1"
[[dependencies]]
id = "g:d:1"
paths = ["runtime(("]`, "dependency g:d:jar:1"},
		{"bad range", `group = "g"
name = "n"
version = "1"
[[overrides]]
match = "g:d"
versions = "[1.0"`, "override"},
		{"unknown key", `group = "g"
name = "n"
version = "1"
colour = "blue"`, "unknown key"},
		{"reserved name", `group = "g"
name = "n@x"
version = "1"`, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDescriptor([]byte(tt.data), FormatTOML)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}

	if _, err := DecodeDescriptor([]byte(appTOML), "json"); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestLoadDescriptor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.yml")
	if err := os.WriteFile(path, []byte(appYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	a, err := LoadDescriptor(path)
	if err != nil {
		t.Fatalf("LoadDescriptor: %v", err)
	}
	if a.ID.Name != "app" {
		t.Errorf("ID = %s", a.ID)
	}

	if _, err := LoadDescriptor(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("missing file should fail")
	}
}
