package repository

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/buildpath/pkg/cache"
	"github.com/matzehuels/buildpath/pkg/errors"
	"github.com/matzehuels/buildpath/pkg/httputil"
	"github.com/matzehuels/buildpath/pkg/model"
	"github.com/matzehuels/buildpath/pkg/pathspec"
)

const parentPOM = `<project>
  <groupId>org.example</groupId>
  <artifactId>parent</artifactId>
  <version>5</version>
  <properties>
    <guava.version>32.1.3-jre</guava.version>
  </properties>
  <dependencyManagement>
    <dependencies>
      <dependency>
        <groupId>com.google.guava</groupId>
        <artifactId>guava</artifactId>
        <version>${guava.version}</version>
      </dependency>
    </dependencies>
  </dependencyManagement>
  <dependencies>
    <dependency>
      <groupId>org.slf4j</groupId>
      <artifactId>slf4j-api</artifactId>
      <version>2.0.9</version>
    </dependency>
  </dependencies>
</project>`

const appPOM = `<?xml version="1.0" encoding="UTF-8"?>
<project>
  <parent>
    <groupId>org.example</groupId>
    <artifactId>parent</artifactId>
    <version>5</version>
  </parent>
  <artifactId>app</artifactId>
  <version>1.0</version>
  <description>Example app</description>
  <properties>
    <junit.version>4.13.2</junit.version>
  </properties>
  <dependencies>
    <dependency>
      <groupId>com.google.guava</groupId>
      <artifactId>guava</artifactId>
      <exclusions>
        <exclusion>
          <groupId>com.google.code.findbugs</groupId>
          <artifactId>jsr305</artifactId>
        </exclusion>
      </exclusions>
    </dependency>
    <dependency>
      <groupId>${project.groupId}</groupId>
      <artifactId>util</artifactId>
      <version>${project.version}</version>
      <scope>runtime</scope>
      <optional>true</optional>
    </dependency>
    <dependency>
      <groupId>junit</groupId>
      <artifactId>junit</artifactId>
      <version>${junit.version}</version>
      <scope>test</scope>
    </dependency>
    <dependency>
      <groupId>javax.servlet</groupId>
      <artifactId>servlet-api</artifactId>
      <version>[2.5,3.0)</version>
      <scope>provided</scope>
      <exclusions>
        <exclusion>
          <groupId>*</groupId>
          <artifactId>*</artifactId>
        </exclusion>
      </exclusions>
    </dependency>
    <dependency>
      <groupId>com.sun</groupId>
      <artifactId>tools</artifactId>
      <version>1.8</version>
      <scope>system</scope>
    </dependency>
    <dependency>
      <groupId>org.unknown</groupId>
      <artifactId>props</artifactId>
      <version>${undefined.version}</version>
    </dependency>
  </dependencies>
</project>`

const relocatedPOM = `<project>
  <groupId>org.old</groupId>
  <artifactId>lib</artifactId>
  <version>1.0</version>
  <distributionManagement>
    <relocation>
      <groupId>org.new</groupId>
    </relocation>
  </distributionManagement>
</project>`

const newLibPOM = `<project>
  <groupId>org.new</groupId>
  <artifactId>lib</artifactId>
  <version>1.0</version>
  <name>New lib</name>
</project>`

type mavenServer struct {
	*httptest.Server
	mu   sync.Mutex
	hits map[string]int
}

func newMavenServer(t *testing.T) *mavenServer {
	t.Helper()
	files := map[string]string{
		"/org/example/parent/5/parent-5.pom":    parentPOM,
		"/org/example/app/1.0/app-1.0.pom":      appPOM,
		"/org/example/app/1.0/app-1.0.jar":      "jar-bytes",
		"/org/example/app/1.0/app-1.0.jar.sha1": "4b3c1a0f  app-1.0.jar\n",
		"/org/old/lib/1.0/lib-1.0.pom":          relocatedPOM,
		"/org/new/lib/1.0/lib-1.0.pom":          newLibPOM,
		"/broken/x/1.0/x-1.0.pom":               "<project><dependencies>",
	}
	s := &mavenServer{hits: make(map[string]int)}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.mu.Unlock()
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *mavenServer) count(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func newTestMaven(t *testing.T, srv *mavenServer, c cache.Cache) *Maven {
	return NewMaven(MavenOptions{
		URL:         srv.URL + "/",
		Cache:       c,
		DownloadDir: t.TempDir(),
		Client:      httputil.NewClient(httputil.ClientOptions{Attempts: 1, RetryDelay: time.Millisecond}),
	})
}

func specStrings(d *model.Dependency) []string {
	var out []string
	for _, s := range d.PathSpecs {
		out = append(out, pathspec.Format(s, nil))
	}
	return out
}

func TestMavenResolve(t *testing.T) {
	srv := newMavenServer(t)
	m := newTestMaven(t, srv, nil)

	a, err := m.Resolve(context.Background(), model.MustParseID("org.example:app:1.0"), false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if a.Description != "Example app" {
		t.Errorf("Description = %q", a.Description)
	}
	if a.Hash != "4b3c1a0f" {
		t.Errorf("Hash = %q", a.Hash)
	}
	for _, id := range []string{model.PathCompile, model.PathRuntime, model.PathTest} {
		if _, ok := a.Path(id); !ok {
			t.Errorf("missing path %s", id)
		}
	}
	if p, _ := a.Path(model.PathTest); p.Descend {
		t.Error("test path should not descend by default")
	}

	got := make(map[string][]string)
	for _, d := range a.Dependencies {
		got[d.ID.String()] = specStrings(d)
	}
	want := map[string][]string{
		"com.google.guava:guava:jar:32.1.3-jre": {
			"compile=compile(-com.google.code.findbugs:jsr305)",
			"runtime(-com.google.code.findbugs:jsr305)",
		},
		"org.example:util:jar:1.0":          {"runtime?"},
		"junit:junit:jar:4.13.2":            {"test"},
		"javax.servlet:servlet-api:jar:2.5": {"compile+compile"},
		"org.slf4j:slf4j-api:jar:2.0.9":     {"compile=compile", "runtime"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("dependencies mismatch (-want +got):\n%s", diff)
	}
}

func TestMavenRetrieve(t *testing.T) {
	srv := newMavenServer(t)
	m := newTestMaven(t, srv, nil)
	id := model.MustParseID("org.example:app:1.0")

	a, err := m.Resolve(context.Background(), id, true)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(a.LocalCopy)
	if err != nil {
		t.Fatalf("LocalCopy: %v", err)
	}
	if string(data) != "jar-bytes" {
		t.Errorf("content = %q", data)
	}
	if !strings.HasSuffix(a.LocalCopy, "app-1.0.jar") {
		t.Errorf("LocalCopy = %s", a.LocalCopy)
	}

	if _, err := m.Resolve(context.Background(), id, true); err != nil {
		t.Fatal(err)
	}
	if n := srv.count("/org/example/app/1.0/app-1.0.jar"); n != 1 {
		t.Errorf("content downloaded %d times, want 1", n)
	}
}

func TestMavenRelocation(t *testing.T) {
	srv := newMavenServer(t)
	m := newTestMaven(t, srv, nil)

	old := model.MustParseID("org.old:lib:1.0")
	a, err := m.Resolve(context.Background(), old, false)
	if err != nil {
		t.Fatal(err)
	}
	if a.ID.String() != "org.new:lib:jar:1.0" {
		t.Errorf("ID = %s", a.ID)
	}
	if a.OriginalID != old {
		t.Errorf("OriginalID = %s", a.OriginalID)
	}
	if a.Description != "New lib" {
		t.Errorf("Description = %q", a.Description)
	}
}

func TestMavenErrors(t *testing.T) {
	srv := newMavenServer(t)
	m := newTestMaven(t, srv, nil)
	ctx := context.Background()

	_, err := m.Resolve(ctx, model.MustParseID("org.example:missing:1.0"), false)
	var miss *errors.UnresolvedArtifactError
	if !stderrors.As(err, &miss) {
		t.Fatalf("expected UnresolvedArtifactError, got %v", err)
	}
	if want := srv.URL + "/org/example/missing/1.0/missing-1.0.pom"; miss.Tried[0] != want {
		t.Errorf("Tried = %v, want %s", miss.Tried, want)
	}

	if _, err := m.Resolve(ctx, model.MustParseID("broken:x:1.0"), false); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("malformed POM: %v", err)
	}
}

func TestMavenCachesPOMs(t *testing.T) {
	srv := newMavenServer(t)
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	id := model.MustParseID("org.example:app:1.0")

	for range 2 {
		if _, err := newTestMaven(t, srv, fc).Resolve(ctx, id, false); err != nil {
			t.Fatal(err)
		}
	}
	for _, p := range []string{"/org/example/app/1.0/app-1.0.pom", "/org/example/parent/5/parent-5.pom"} {
		if n := srv.count(p); n != 1 {
			t.Errorf("%s fetched %d times, want 1", p, n)
		}
	}
}

func TestPinnedVersion(t *testing.T) {
	tests := map[string]string{
		"1.0":       "1.0",
		"[1.2,2.0)": "1.2",
		"[1.5]":     "1.5",
		"(,2.0]":    "",
		"(1.0,2.0)": "",
		" 3.1 ":     "3.1",
	}
	for in, want := range tests {
		if got := pinnedVersion(in); got != want {
			t.Errorf("pinnedVersion(%q) = %q, want %q", in, got, want)
		}
	}
}
