package repository

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/buildpath/pkg/errors"
	"github.com/matzehuels/buildpath/pkg/model"
	"github.com/matzehuels/buildpath/pkg/resolver"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	renamed := model.NewArtifact(model.MustParseID("org.new:lib:2.0"))
	renamed.OriginalID = model.MustParseID("org.old:lib:1.0")
	m := NewMemory(model.NewArtifact(model.MustParseID("g:a:1.0")), renamed)

	if m.Len() != 3 {
		t.Errorf("Len() = %d, want 3", m.Len())
	}
	if _, err := m.Resolve(ctx, model.MustParseID("g:a:1.0"), false); err != nil {
		t.Errorf("Resolve: %v", err)
	}
	a, err := m.Resolve(ctx, renamed.OriginalID, false)
	if err != nil || a.ID != renamed.ID {
		t.Errorf("renamed lookup = %v, %v", a, err)
	}

	_, err = m.Resolve(ctx, model.MustParseID("g:missing:1.0"), false)
	var miss *errors.UnresolvedArtifactError
	if !stderrors.As(err, &miss) {
		t.Fatalf("expected UnresolvedArtifactError, got %v", err)
	}
	if diff := cmp.Diff([]string{"memory"}, miss.Tried); diff != "" {
		t.Errorf("Tried mismatch (-want +got):\n%s", diff)
	}
}

func TestMemoryStubs(t *testing.T) {
	stub := model.NewArtifact(model.MustParseID("g:licensed:1.0"))
	stub.Stub = true
	copied := model.NewArtifact(model.MustParseID("g:copied:1.0"))
	copied.Stub = true
	copied.LocalCopy = "/opt/copied.jar"

	tests := []struct {
		name    string
		dep     *model.Artifact
		permit  bool
		wantErr bool
	}{
		{"stub rejected", stub, false, true},
		{"stub permitted", stub, true, false},
		{"stub with local copy", copied, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMemory(tt.dep)
			a, err := m.Resolve(context.Background(), tt.dep.ID, true)
			if err != nil {
				t.Fatal(err)
			}
			if a.LocalCopy != tt.dep.LocalCopy || a.Hash != "" {
				t.Errorf("Resolve changed content fields: LocalCopy=%q Hash=%q", a.LocalCopy, a.Hash)
			}

			root := model.NewArtifact(model.MustParseID("g:root:1.0"))
			d := model.NewDependency(tt.dep.ID, &model.PathSpec{From: model.PathRuntime, To: model.PathRuntime})
			root.AddDependency(d)

			r := resolver.New(m, resolver.Options{Retrieve: true, PermitStubs: tt.permit})
			_, err = r.ResolvePath(context.Background(), model.PathRuntime, root)
			if got := errors.Is(err, errors.ErrCodeLicensingStub); got != tt.wantErr {
				t.Errorf("licensing stub error = %v, want %v (err: %v)", got, tt.wantErr, err)
			}
		})
	}
}

func TestDir(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	base := filepath.Join(root, "org", "example", "lib", "2.1", "lib-2.1")
	writeFile(t, base+".toml", `group = "org.example"
name = "lib"
version = "2.1"
`)
	writeFile(t, base+".jar", "content")
	writeFile(t, filepath.Join(root, "org", "example", "tool", "1.0", "tool-1.0.yaml"), "group: org.example\nname: tool\nversion: \"1.0\"\n")

	d := NewDir(root)
	id := model.MustParseID("org.example:lib:2.1")

	a, err := d.Resolve(ctx, id, false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	// sha256("content")
	const want = "ed7002b439e9ac845f22357d822bac1444730fbdb6016d3ec9432297b9ec9f73"
	if a.Hash != want || a.LocalCopy != "" {
		t.Errorf("metadata lookup: Hash=%q LocalCopy=%q", a.Hash, a.LocalCopy)
	}

	a, err = d.Resolve(ctx, id, true)
	if err != nil {
		t.Fatal(err)
	}
	if a.LocalCopy != base+".jar" || a.Hash != "" {
		t.Errorf("retrieve: LocalCopy=%q Hash=%q", a.LocalCopy, a.Hash)
	}

	tool, err := d.Resolve(ctx, model.MustParseID("org.example:tool:1.0"), true)
	if err != nil {
		t.Fatalf("yaml descriptor: %v", err)
	}
	if tool.LocalCopy != "" {
		t.Error("missing content should leave LocalCopy empty")
	}

	_, err = d.Resolve(ctx, model.MustParseID("org.example:lib:9.9"), false)
	var miss *errors.UnresolvedArtifactError
	if !stderrors.As(err, &miss) || miss.Tried[0] != root {
		t.Errorf("expected miss naming %s, got %v", root, err)
	}
}

func TestDirIdentityMismatch(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "g", "a", "1.0", "a-1.0.toml"), `group = "g"
name = "b"
version = "1.0"
`)
	_, err := NewDir(root).Resolve(context.Background(), model.MustParseID("g:a:1.0"), false)
	if !errors.Is(err, errors.ErrCodeInvalidIdentity) {
		t.Errorf("expected identity error, got %v", err)
	}
}

func TestChain(t *testing.T) {
	ctx := context.Background()
	a1 := model.NewArtifact(model.MustParseID("g:a:1.0"))
	a1.Description = "first"
	a2 := model.NewArtifact(model.MustParseID("g:a:1.0"))
	a2.Description = "second"
	b := model.NewArtifact(model.MustParseID("g:b:1.0"))

	root := t.TempDir()
	c := NewChain(NewMemory(a1), NewDir(root), NewMemory(a2, b))

	got, err := c.Resolve(ctx, a1.ID, false)
	if err != nil || got.Description != "first" {
		t.Errorf("first repository should win: %v, %v", got, err)
	}
	if got, err := c.Resolve(ctx, b.ID, false); err != nil || got != b {
		t.Errorf("fallback lookup = %v, %v", got, err)
	}

	_, err = c.Resolve(ctx, model.MustParseID("g:z:1.0"), false)
	var miss *errors.UnresolvedArtifactError
	if !stderrors.As(err, &miss) {
		t.Fatalf("expected UnresolvedArtifactError, got %v", err)
	}
	if diff := cmp.Diff([]string{"memory", root, "memory"}, miss.Tried); diff != "" {
		t.Errorf("Tried mismatch (-want +got):\n%s", diff)
	}
	if miss.ID != "g:z:jar:1.0" {
		t.Errorf("ID = %s", miss.ID)
	}
}

type failingRepo struct{ err error }

func (f failingRepo) Resolve(context.Context, model.ArtifactID, bool) (*model.Artifact, error) {
	return nil, f.err
}

func TestChainStopsOnFailure(t *testing.T) {
	boom := fmt.Errorf("disk on fire")
	c := NewChain(failingRepo{boom}, NewMemory(model.NewArtifact(model.MustParseID("g:a:1.0"))))
	if _, err := c.Resolve(context.Background(), model.MustParseID("g:a:1.0"), false); err != boom {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

// countingRepo counts lookups per retrieve flag.
type countingRepo struct {
	inner    resolver.Repository
	metadata atomic.Int32
	content  atomic.Int32
	gate     chan struct{}

	metadataEntered chan struct{}
	metadataGate    chan struct{}
}

func (c *countingRepo) Resolve(ctx context.Context, id model.ArtifactID, retrieve bool) (*model.Artifact, error) {
	if retrieve {
		c.content.Add(1)
	} else {
		c.metadata.Add(1)
	}
	if c.gate != nil {
		<-c.gate
	}
	if !retrieve && c.metadataGate != nil {
		c.metadataEntered <- struct{}{}
		<-c.metadataGate
	}
	a, err := c.inner.Resolve(ctx, id, retrieve)
	if err != nil || !retrieve {
		return a, err
	}
	a = a.Clone()
	a.LocalCopy = "/tmp/" + id.Name
	return a, nil
}

func TestCaching(t *testing.T) {
	ctx := context.Background()
	id := model.MustParseID("g:a:1.0")
	inner := &countingRepo{inner: NewMemory(model.NewArtifact(id))}
	c := NewCaching(inner, 0)

	first, err := c.Resolve(ctx, id, false)
	if err != nil {
		t.Fatal(err)
	}
	first.Description = "mutated"
	second, err := c.Resolve(ctx, id, false)
	if err != nil {
		t.Fatal(err)
	}
	if second.Description == "mutated" {
		t.Error("callers must receive independent copies")
	}
	if n := inner.metadata.Load(); n != 1 {
		t.Errorf("metadata lookups = %d, want 1", n)
	}

	// Requesting content upgrades the entry once.
	for range 2 {
		a, err := c.Resolve(ctx, id, true)
		if err != nil {
			t.Fatal(err)
		}
		if a.LocalCopy != "/tmp/a" {
			t.Errorf("LocalCopy = %q", a.LocalCopy)
		}
	}
	if n := inner.content.Load(); n != 1 {
		t.Errorf("content lookups = %d, want 1", n)
	}

	// A retrieved entry also serves metadata lookups.
	if _, err := c.Resolve(ctx, id, false); err != nil {
		t.Fatal(err)
	}
	if n := inner.metadata.Load(); n != 1 {
		t.Errorf("metadata lookups = %d, want still 1", n)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}

	c.Purge()
	if c.Len() != 0 {
		t.Error("Purge should empty the cache")
	}
}

func TestCachingSingleflight(t *testing.T) {
	id := model.MustParseID("g:a:1.0")
	inner := &countingRepo{inner: NewMemory(model.NewArtifact(id)), gate: make(chan struct{})}
	c := NewCaching(inner, 0)

	const n = 8
	var started, wg sync.WaitGroup
	started.Add(n)
	wg.Add(n)
	for range n {
		go func() {
			defer wg.Done()
			started.Done()
			if _, err := c.Resolve(context.Background(), id, false); err != nil {
				t.Error(err)
			}
		}()
	}
	started.Wait()
	close(inner.gate)
	wg.Wait()

	if _, err := c.Resolve(context.Background(), id, false); err != nil {
		t.Fatal(err)
	}
	if got := inner.metadata.Load(); got >= n {
		t.Errorf("concurrent lookups were not shared: %d calls", got)
	}
}

func TestCachingKeepsContentOverLateMetadata(t *testing.T) {
	ctx := context.Background()
	id := model.MustParseID("g:a:1.0")
	inner := &countingRepo{
		inner:           NewMemory(model.NewArtifact(id)),
		metadataEntered: make(chan struct{}),
		metadataGate:    make(chan struct{}),
	}
	c := NewCaching(inner, 0)

	done := make(chan error)
	go func() {
		_, err := c.Resolve(ctx, id, false)
		done <- err
	}()
	<-inner.metadataEntered

	if _, err := c.Resolve(ctx, id, true); err != nil {
		t.Fatal(err)
	}
	close(inner.metadataGate)
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	a, err := c.Resolve(ctx, id, true)
	if err != nil {
		t.Fatal(err)
	}
	if a.LocalCopy != "/tmp/a" {
		t.Errorf("LocalCopy = %q", a.LocalCopy)
	}
	if n := inner.content.Load(); n != 1 {
		t.Errorf("content lookups = %d, want 1", n)
	}
}

func TestCachingDoesNotCacheMisses(t *testing.T) {
	m := NewMemory()
	c := NewCaching(m, 0)
	id := model.MustParseID("g:late:1.0")

	if _, err := c.Resolve(context.Background(), id, false); !errors.Is(err, errors.ErrCodeUnresolved) {
		t.Fatalf("expected unresolved, got %v", err)
	}
	m.Add(model.NewArtifact(id))
	if _, err := c.Resolve(context.Background(), id, false); err != nil {
		t.Errorf("artifact added later should resolve: %v", err)
	}
}

func TestDirWithResolver(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "g", "lib", "1.0", "lib-1.0.toml"), `group = "g"
name = "lib"
version = "1.0"

[[dependencies]]
id = "g:leaf:1.0"
paths = ["runtime"]
`)
	writeFile(t, filepath.Join(root, "g", "leaf", "1.0", "leaf-1.0.yaml"), "group: g\nname: leaf\nversion: \"1.0\"\n")

	app, err := DecodeDescriptor([]byte(`group = "g"
name = "app"
version = "1.0"

[[dependencies]]
id = "g:lib:1.0"
paths = ["runtime"]
`), FormatTOML)
	if err != nil {
		t.Fatal(err)
	}

	r := resolver.New(NewCaching(NewDir(root), 0), resolver.Options{})
	p, err := r.ResolvePath(context.Background(), model.PathRuntime, app)
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	var got []string
	for _, id := range p.IDs() {
		got = append(got, id.String())
	}
	if diff := cmp.Diff([]string{"g:lib:jar:1.0", "g:leaf:jar:1.0"}, got); diff != "" {
		t.Errorf("resolved ids mismatch (-want +got):\n%s", diff)
	}
}
