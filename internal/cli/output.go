package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/matzehuels/buildpath/pkg/errors"
	"github.com/matzehuels/buildpath/pkg/model"
	"github.com/matzehuels/buildpath/pkg/paths"
	"github.com/matzehuels/buildpath/pkg/render"
)

// Output formats for resolved paths.
const (
	FormatTree  = "tree"
	FormatTable = "table"
	FormatList  = "list"
	FormatJSON  = "json"
	FormatDOT   = "dot"
	FormatSVG   = "svg"
)

var formats = []string{FormatTree, FormatTable, FormatList, FormatJSON, FormatDOT, FormatSVG}

// outputOpts holds the flags shared by commands that print a resolved path.
type outputOpts struct {
	format   string
	output   string
	detailed bool
}

func (o *outputOpts) validate() error {
	if !slices.Contains(formats, o.format) {
		return fmt.Errorf("unknown format %q (valid: %s)", o.format, strings.Join(formats, ", "))
	}
	return nil
}

// write renders p in the selected format to the -o file or w.
func (o *outputOpts) write(ctx context.Context, w io.Writer, p *model.ResolvedPath) error {
	if o.output != "" {
		f, err := os.Create(o.output)
		if err != nil {
			return fmt.Errorf("create %s: %w", o.output, err)
		}
		defer f.Close()
		if err := writePath(ctx, f, p, o.format, o.detailed); err != nil {
			return err
		}
		printFile(o.output)
		return nil
	}
	return writePath(ctx, w, p, o.format, o.detailed)
}

func writePath(ctx context.Context, w io.Writer, p *model.ResolvedPath, format string, detailed bool) error {
	switch format {
	case FormatTree:
		_, err := io.WriteString(w, paths.Format(p, false))
		return err
	case FormatTable:
		_, err := fmt.Fprintln(w, resolvedTable(p))
		return err
	case FormatList:
		for _, id := range p.IDs() {
			if _, err := fmt.Fprintln(w, id); err != nil {
				return err
			}
		}
		return nil
	case FormatJSON:
		return render.WriteJSON(w, render.Graph(p))
	case FormatDOT:
		_, err := io.WriteString(w, render.ToDOT(render.Graph(p), render.Options{Detailed: detailed}))
		return err
	case FormatSVG:
		svg, err := render.SVG(ctx, render.ToDOT(render.Graph(p), render.Options{Detailed: detailed}))
		if err != nil {
			return err
		}
		_, err = w.Write(svg)
		return err
	}
	return fmt.Errorf("unknown format %q", format)
}

// summarize prints the statistics line for p.
func summarize(p *model.ResolvedPath) {
	conflicts, overridden := 0, 0
	for _, id := range p.IDs() {
		r := p.Resolution(id)
		if r.Conflict > 0 {
			conflicts++
		}
		if r.Overridden {
			overridden++
		}
	}
	printStats(p.Len(), conflicts, overridden)
}

// conflictOf returns the ConflictError in err's chain, if any.
func conflictOf(err error) *errors.ConflictError {
	var ce *errors.ConflictError
	if stderrors.As(err, &ce) {
		return ce
	}
	return nil
}
