package repository

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/buildpath/pkg/cache"
	"github.com/matzehuels/buildpath/pkg/errors"
	"github.com/matzehuels/buildpath/pkg/httputil"
	"github.com/matzehuels/buildpath/pkg/model"
)

// MavenCentral is the default remote repository.
const MavenCentral = "https://repo1.maven.org/maven2"

const (
	maxParentDepth = 10
	snapshotTTL    = time.Hour
)

// MavenOptions configures a Maven repository.
type MavenOptions struct {
	URL         string           // Repository base URL (default: MavenCentral)
	Cache       cache.Cache      // Caches POM and checksum bytes (default: none)
	DownloadDir string           // Destination of retrieved content (default: $TMPDIR/buildpath)
	Client      *httputil.Client // HTTP client (default: httputil.NewClient with defaults)
	Logger      *log.Logger      // Debug output (default: discard)
}

// WithDefaults returns a copy of MavenOptions with zero values replaced by defaults.
func (o MavenOptions) WithDefaults() MavenOptions {
	opts := o
	if opts.URL == "" {
		opts.URL = MavenCentral
	}
	opts.URL = strings.TrimRight(opts.URL, "/")
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.DownloadDir == "" {
		opts.DownloadDir = filepath.Join(os.TempDir(), "buildpath")
	}
	if opts.Client == nil {
		opts.Client = httputil.NewClient(httputil.ClientOptions{})
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return opts
}

// Maven reads artifacts from a remote Maven repository.
//
// The POM of an artifact is folded with its parent POMs; its dependencies
// become path specs on the compile, runtime and test paths according to their
// scope. Optional dependencies are not mandatory, exclusions become "-group:name"
// options, and a relocation yields a renamed artifact whose OriginalID is the
// requested identity.
type Maven struct {
	opts  MavenOptions
	cache *cache.Scoped
}

// NewMaven creates a Maven repository.
func NewMaven(opts MavenOptions) *Maven {
	opts = opts.WithDefaults()
	ns := "maven"
	if u, err := url.Parse(opts.URL); err == nil && u.Host != "" {
		ns = "maven:" + u.Host + u.Path
	}
	return &Maven{opts: opts, cache: cache.Namespace(opts.Cache, ns, 0)}
}

// URL returns the repository base URL.
func (m *Maven) URL() string { return m.opts.URL }

func (m *Maven) Resolve(ctx context.Context, id model.ArtifactID, retrieve bool) (*model.Artifact, error) {
	return m.resolve(ctx, id, retrieve, true)
}

func (m *Maven) resolve(ctx context.Context, id model.ArtifactID, retrieve, followRelocation bool) (*model.Artifact, error) {
	chain, err := m.pomChain(ctx, id)
	if err != nil {
		return nil, err
	}
	eff := newEffectivePOM(chain)

	if r := eff.Relocation; r != nil && followRelocation {
		target := id
		if g := eff.expand(r.GroupID); g != "" {
			target.Group = g
		}
		if n := eff.expand(r.ArtifactID); n != "" {
			target.Name = n
		}
		if v := eff.expand(r.Version); v != "" {
			target.Version = v
		}
		if target != id {
			m.opts.Logger.Debug("relocated", "from", id, "to", target)
			a, err := m.resolve(ctx, target, retrieve, false)
			if err != nil {
				return nil, err
			}
			a.OriginalID = id
			return a, nil
		}
	}

	a := model.NewArtifact(id)
	a.Description = strings.TrimSpace(eff.Description)
	if a.Description == "" {
		a.Description = strings.TrimSpace(eff.Name)
	}
	for _, p := range mavenPaths() {
		a.AddPath(p)
	}
	for _, raw := range eff.Dependencies {
		d := eff.dependency(raw)
		dep := toDependency(d)
		if dep == nil {
			m.opts.Logger.Debug("skip dependency", "artifact", id, "dependency", d.GroupID+":"+d.ArtifactID, "version", d.Version, "scope", d.Scope)
			continue
		}
		a.AddDependency(dep)
	}

	if err := m.attachContent(ctx, a, retrieve); err != nil {
		return nil, err
	}
	return a, nil
}

// pomChain fetches the POM of id followed by its parents.
func (m *Maven) pomChain(ctx context.Context, id model.ArtifactID) ([]*pomProject, error) {
	data, err := m.fetch(ctx, m.relPath(id, "pom"), id.Version)
	if stderrors.Is(err, httputil.ErrNotFound) {
		return nil, &errors.UnresolvedArtifactError{ID: id.String(), Tried: []string{m.opts.URL + "/" + m.relPath(id, "pom")}}
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetch POM of %s", id)
	}
	pom, err := parsePOM(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse POM of %s", id)
	}

	chain := []*pomProject{pom}
	for p := pom.Parent; p != nil && len(chain) <= maxParentDepth; {
		pid := model.NewID(p.GroupID, p.ArtifactID, "pom", p.Version)
		data, err := m.fetch(ctx, m.relPath(pid, "pom"), pid.Version)
		if err != nil {
			m.opts.Logger.Debug("parent POM unavailable", "artifact", id, "parent", pid, "err", err)
			break
		}
		parent, err := parsePOM(data)
		if err != nil {
			m.opts.Logger.Debug("parent POM unreadable", "artifact", id, "parent", pid, "err", err)
			break
		}
		chain = append(chain, parent)
		p = parent.Parent
	}
	return chain, nil
}

// attachContent downloads the artifact's content, or records its published
// SHA-1 checksum when content is not requested.
func (m *Maven) attachContent(ctx context.Context, a *model.Artifact, retrieve bool) error {
	rel := m.relPath(a.ID, a.ID.Type)
	if !retrieve {
		sum, err := m.fetch(ctx, rel+".sha1", a.ID.Version)
		if err == nil {
			if fields := strings.Fields(string(sum)); len(fields) > 0 {
				a.Hash = fields[0]
			}
		}
		return nil
	}

	local := filepath.Join(m.opts.DownloadDir, filepath.FromSlash(rel))
	if _, err := os.Stat(local); err == nil {
		a.LocalCopy = local
		return nil
	}
	data, err := m.opts.Client.Fetch(ctx, m.opts.URL+"/"+rel)
	if stderrors.Is(err, httputil.ErrNotFound) {
		// pom-only artifacts have no content
		return nil
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "download %s", a.ID)
	}
	if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(local, data, 0o644); err != nil {
		return err
	}
	a.LocalCopy = local
	return nil
}

// fetch returns the bytes at rel, consulting the cache first. Snapshot
// entries expire after an hour; release entries never do.
func (m *Maven) fetch(ctx context.Context, rel, version string) ([]byte, error) {
	if data, ok, err := m.cache.Get(ctx, rel); err == nil && ok {
		return data, nil
	} else if err != nil {
		m.opts.Logger.Warn("cache read failed", "key", rel, "err", err)
	}

	data, err := m.opts.Client.Fetch(ctx, m.opts.URL+"/"+rel)
	if err != nil {
		return nil, err
	}

	var ttl time.Duration
	if strings.HasSuffix(version, "-SNAPSHOT") {
		ttl = snapshotTTL
	}
	if err := m.cache.Set(ctx, rel, data, ttl); err != nil {
		m.opts.Logger.Warn("cache write failed", "key", rel, "err", err)
	}
	return data, nil
}

// relPath returns "<group path>/<name>/<version>/<name>-<version>.<ext>".
func (m *Maven) relPath(id model.ArtifactID, ext string) string {
	return path.Join(strings.ReplaceAll(id.Group, ".", "/"), id.Name, id.Version,
		fmt.Sprintf("%s-%s.%s", id.Name, id.Version, ext))
}
