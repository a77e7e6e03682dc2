package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/buildpath/pkg/errors"
	"github.com/matzehuels/buildpath/pkg/model"
)

// Dir is a repository laid out on disk the way Maven lays out its local
// repository:
//
//	<root>/<group with dots as slashes>/<name>/<version>/<name>-<version>.toml
//	<root>/<group with dots as slashes>/<name>/<version>/<name>-<version>.<type>
//
// The first file is the artifact descriptor (".yaml" and ".yml" work too),
// the second its content.
type Dir struct {
	root string
}

// NewDir creates a repository rooted at root.
func NewDir(root string) *Dir {
	return &Dir{root: filepath.Clean(root)}
}

// Root returns the repository directory.
func (d *Dir) Root() string { return d.root }

// Resolve loads the descriptor for id. With retrieve set the artifact's
// LocalCopy points at its content file when that exists; otherwise Hash holds
// the content's SHA-256.
func (d *Dir) Resolve(ctx context.Context, id model.ArtifactID, retrieve bool) (*model.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	base := d.base(id)
	for _, ext := range descriptorExts {
		a, err := LoadDescriptor(base + ext)
		if stderrors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if a.ID != id && a.OriginalID != id {
			return nil, errors.New(errors.ErrCodeInvalidIdentity, "%s%s declares %s", base, ext, a.ID)
		}
		if err := d.attachContent(a, base, retrieve); err != nil {
			return nil, err
		}
		return a, nil
	}
	return nil, &errors.UnresolvedArtifactError{ID: id.String(), Tried: []string{d.root}}
}

func (d *Dir) attachContent(a *model.Artifact, base string, retrieve bool) error {
	content := base + "." + a.ID.Type
	if _, err := os.Stat(content); stderrors.Is(err, fs.ErrNotExist) {
		return nil
	} else if err != nil {
		return err
	}
	if retrieve {
		a.LocalCopy = content
		return nil
	}
	sum, err := hashFile(content)
	if err != nil {
		return fmt.Errorf("hash %s: %w", content, err)
	}
	a.Hash = sum
	return nil
}

// base returns the descriptor path for id without extension.
func (d *Dir) base(id model.ArtifactID) string {
	file := id.Name + "-" + id.Version
	return filepath.Join(d.root, strings.ReplaceAll(id.Group, ".", string(filepath.Separator)), id.Name, id.Version, file)
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
