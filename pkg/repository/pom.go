package repository

import (
	"encoding/xml"
	"strings"

	"github.com/matzehuels/buildpath/pkg/model"
	"github.com/matzehuels/buildpath/pkg/pathspec"
)

type pomProject struct {
	GroupID     string        `xml:"groupId"`
	ArtifactID  string        `xml:"artifactId"`
	Version     string        `xml:"version"`
	Packaging   string        `xml:"packaging"`
	Name        string        `xml:"name"`
	Description string        `xml:"description"`
	Parent      *pomParent    `xml:"parent"`
	Properties  pomProperties `xml:"properties"`

	DependencyManagement []pomDependency `xml:"dependencyManagement>dependencies>dependency"`
	Dependencies         []pomDependency `xml:"dependencies>dependency"`
	Relocation           *pomRelocation  `xml:"distributionManagement>relocation"`
}

type pomParent struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

type pomDependency struct {
	GroupID    string         `xml:"groupId"`
	ArtifactID string         `xml:"artifactId"`
	Version    string         `xml:"version"`
	Type       string         `xml:"type"`
	Scope      string         `xml:"scope"`
	Optional   string         `xml:"optional"`
	Exclusions []pomExclusion `xml:"exclusions>exclusion"`
}

type pomExclusion struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
}

type pomRelocation struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

// pomProperties collects the free-form children of <properties>.
type pomProperties map[string]string

func (p *pomProperties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	*p = make(pomProperties)
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var v string
			if err := d.DecodeElement(&v, &t); err != nil {
				return err
			}
			(*p)[t.Name.Local] = strings.TrimSpace(v)
		case xml.EndElement:
			return nil
		}
	}
}

func parsePOM(data []byte) (*pomProject, error) {
	var pom pomProject
	if err := xml.Unmarshal(data, &pom); err != nil {
		return nil, err
	}
	return &pom, nil
}

// effectivePOM is a POM with its parents folded in and properties expanded.
type effectivePOM struct {
	pomProject
	props   map[string]string
	managed map[string]pomDependency // by groupId:artifactId
}

// newEffectivePOM folds a POM and its parents, nearest first.
func newEffectivePOM(chain []*pomProject) *effectivePOM {
	child := chain[0]
	eff := &effectivePOM{
		pomProject: *child,
		props:      make(map[string]string),
		managed:    make(map[string]pomDependency),
	}

	declared := make(map[string]bool)
	for _, d := range child.Dependencies {
		declared[d.GroupID+":"+d.ArtifactID] = true
	}
	eff.Dependencies = append([]pomDependency(nil), child.Dependencies...)

	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i].Properties {
			eff.props[k] = v
		}
	}
	for _, p := range chain {
		for _, d := range p.DependencyManagement {
			key := d.GroupID + ":" + d.ArtifactID
			if _, ok := eff.managed[key]; !ok {
				eff.managed[key] = d
			}
		}
		if p == child {
			continue
		}
		for _, d := range p.Dependencies {
			if key := d.GroupID + ":" + d.ArtifactID; !declared[key] {
				declared[key] = true
				eff.Dependencies = append(eff.Dependencies, d)
			}
		}
	}

	if eff.GroupID == "" && child.Parent != nil {
		eff.GroupID = child.Parent.GroupID
	}
	if eff.Version == "" && child.Parent != nil {
		eff.Version = child.Parent.Version
	}
	eff.props["project.groupId"] = eff.GroupID
	eff.props["project.artifactId"] = eff.ArtifactID
	eff.props["project.version"] = eff.Version
	eff.props["pom.version"] = eff.Version
	if child.Parent != nil {
		eff.props["project.parent.groupId"] = child.Parent.GroupID
		eff.props["project.parent.version"] = child.Parent.Version
		eff.props["parent.version"] = child.Parent.Version
	}
	return eff
}

// expand substitutes ${...} references, leaving unknown ones in place.
func (e *effectivePOM) expand(s string) string {
	for range 8 {
		start := strings.Index(s, "${")
		if start < 0 {
			return s
		}
		end := strings.IndexByte(s[start:], '}')
		if end < 0 {
			return s
		}
		v, ok := e.props[s[start+2:start+end]]
		if !ok {
			return s
		}
		s = s[:start] + v + s[start+end+1:]
	}
	return s
}

// dependency completes d from dependencyManagement and expands properties.
func (e *effectivePOM) dependency(d pomDependency) pomDependency {
	d.GroupID = e.expand(d.GroupID)
	d.ArtifactID = e.expand(d.ArtifactID)
	if m, ok := e.managed[d.GroupID+":"+d.ArtifactID]; ok {
		if d.Version == "" {
			d.Version = m.Version
		}
		if d.Scope == "" {
			d.Scope = m.Scope
		}
		if len(d.Exclusions) == 0 {
			d.Exclusions = m.Exclusions
		}
	}
	d.Version = pinnedVersion(e.expand(d.Version))
	d.Scope = e.expand(d.Scope)
	d.Type = e.expand(d.Type)
	d.Optional = e.expand(d.Optional)
	return d
}

// pinnedVersion returns the lower bound of a range such as "[1.2,2.0)", or v
// unchanged when it is a plain version. Open lower bounds yield "".
func pinnedVersion(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "[") && !strings.HasPrefix(v, "(") {
		return v
	}
	if v[0] != '[' {
		return ""
	}
	body := strings.TrimLeft(v, "[")
	if i := strings.IndexAny(body, ",]"); i >= 0 {
		return strings.TrimSpace(body[:i])
	}
	return ""
}

// scopeSpecs maps a Maven scope onto the compile, runtime and test paths.
func scopeSpecs(scope string) []*model.PathSpec {
	switch scope {
	case "", "compile":
		return []*model.PathSpec{
			{To: model.PathCompile, From: model.PathCompile},
			{To: model.PathRuntime, From: model.PathRuntime},
		}
	case "runtime":
		return []*model.PathSpec{{To: model.PathRuntime, From: model.PathRuntime}}
	case "provided":
		return []*model.PathSpec{{To: model.PathCompile, From: model.PathCompile, Descend: model.Bool(false)}}
	case "test":
		return []*model.PathSpec{{To: model.PathTest, From: model.PathRuntime}}
	default:
		// system and import scopes carry no resolvable artifact
		return nil
	}
}

// mavenPaths are the paths every Maven artifact declares. Test dependencies
// are not transitive.
func mavenPaths() []*model.Path {
	test := model.NewPath(model.PathTest, "test classpath")
	test.Descend = false
	return []*model.Path{
		model.NewPath(model.PathCompile, "compile classpath"),
		model.NewPath(model.PathRuntime, "runtime classpath"),
		test,
	}
}

// toDependency converts a resolved POM dependency. It returns nil for
// dependencies that cannot be expressed as an identity.
func toDependency(d pomDependency) *model.Dependency {
	if strings.Contains(d.GroupID+d.ArtifactID+d.Version, "${") || d.Version == "" {
		return nil
	}
	id := model.NewID(d.GroupID, d.ArtifactID, d.Type, d.Version)
	if id.Validate() != nil {
		return nil
	}

	var excl []string
	excludeAll := false
	for _, x := range d.Exclusions {
		switch {
		case x.GroupID == "*" && x.ArtifactID == "*":
			excludeAll = true
		case x.GroupID == "*" || x.ArtifactID == "*":
			// partial wildcards have no option form
		default:
			excl = append(excl, "-"+x.GroupID+":"+x.ArtifactID)
		}
	}

	specs := scopeSpecs(d.Scope)
	if len(specs) == 0 {
		return nil
	}
	dep := model.NewDependency(id)
	for _, s := range specs {
		if d.Optional == "true" {
			s.Mandatory = model.Bool(false)
		}
		if excludeAll {
			s.Descend = model.Bool(false)
		} else if len(excl) > 0 {
			s.Options = pathspec.Join(excl)
		}
		dep.AddPathSpec(s)
	}
	return dep
}
