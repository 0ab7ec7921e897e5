package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/milk9111/chromashapes/coords"
	"github.com/milk9111/chromashapes/levels"
	"github.com/urfave/cli/v3"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "levelctl",
		Usage: "validate, inspect and rewrite level documents",
		Commands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "decode and validate level files",
				ArgsUsage: "FILE...",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return validateFiles(cmd.Root().Writer, cmd.Args().Slice())
				},
			},
			{
				Name:      "inspect",
				Usage:     "print a summary of a level file",
				ArgsUsage: "FILE",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					doc, err := readDocument(cmd.Args().First())
					if err != nil {
						return err
					}
					return inspect(cmd.Root().Writer, doc)
				},
			},
			{
				Name:      "remap",
				Usage:     "re-express a level for a different play area",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "width", Usage: "target play area width"},
					&cli.Float64Flag{Name: "height", Usage: "target play area height"},
					&cli.Float64Flag{Name: "ortho", Usage: "derive the area from an orthographic camera half height"},
					&cli.Float64Flag{Name: "aspect", Usage: "camera aspect ratio, used with --ortho"},
					&cli.Float64Flag{Name: "border", Usage: "fraction of the camera view left for play, used with --ortho", Value: 1},
					&cli.Float64Flag{Name: "tolerance", Usage: "aspect tolerance", Value: coords.DefaultTolerance},
					&cli.BoolFlag{Name: "write", Aliases: []string{"w"}, Usage: "overwrite FILE instead of printing"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					path := cmd.Args().First()
					doc, err := readDocument(path)
					if err != nil {
						return err
					}
					area, err := targetArea(cmd.Float64("width"), cmd.Float64("height"), cmd.Float64("ortho"), cmd.Float64("aspect"), cmd.Float64("border"))
					if err != nil {
						return err
					}
					out, err := remap(doc, area, cmd.Float64("tolerance"))
					if err != nil {
						return err
					}
					return emit(cmd.Root().Writer, path, out, cmd.Bool("write"))
				},
			},
			{
				Name:      "upgrade",
				Usage:     "convert child-list documents to explicit parents",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "write", Aliases: []string{"w"}, Usage: "overwrite FILE instead of printing"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					path := cmd.Args().First()
					if path == "" {
						return cli.Exit("upgrade: missing FILE", 2)
					}
					data, err := os.ReadFile(path)
					if err != nil {
						return err
					}
					doc, err := levels.Upgrade(data)
					if err != nil {
						return err
					}
					return emit(cmd.Root().Writer, path, doc, cmd.Bool("write"))
				},
			},
			{
				Name:  "list",
				Usage: "list stored and bundled levels with completion state",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dir", Usage: "save directory", Value: "levels"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return list(cmd.Root().Writer, levels.NewDirStore(cmd.String("dir")))
				},
			},
		},
	}
}

func readDocument(path string) (*levels.Document, error) {
	if path == "" {
		return nil, cli.Exit("missing FILE", 2)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return levels.Decode(data)
}

func validateFiles(w io.Writer, paths []string) error {
	if len(paths) == 0 {
		return cli.Exit("validate: missing FILE", 2)
	}
	failed := 0
	for _, p := range paths {
		if _, err := readDocument(p); err != nil {
			failed++
			fmt.Fprintf(w, "FAIL %s: %v\n", p, err)
			continue
		}
		fmt.Fprintf(w, "ok   %s\n", p)
	}
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d files invalid", failed, len(paths)), 1)
	}
	return nil
}

var kindNames = []string{"square", "circle", "diamond"}

func inspect(w io.Writer, doc *levels.Document) error {
	fmt.Fprintf(w, "name:       %s\n", doc.Name)
	fmt.Fprintf(w, "palette:    %s\n", strings.Join(doc.Palette, " "))
	fmt.Fprintf(w, "background: %d -> goal %d\n", doc.StartingBackground, doc.GoalBackground)
	fmt.Fprintf(w, "play area:  %gx%g\n", doc.PlayArea.W, doc.PlayArea.H)
	fmt.Fprintf(w, "shapes:     %d (%d roots)\n", len(doc.Shapes), len(doc.Roots()))
	for i, s := range doc.Shapes {
		parent := "-"
		if s.Parent != nil {
			parent = fmt.Sprint(*s.Parent)
		}
		move := "fixed"
		if s.Movable {
			move = "movable"
		}
		fmt.Fprintf(w, "  %2d %-7s color=%d %-7s parent=%s pos=(%.3f, %.3f) scale=(%.3f, %.3f) rot=%.2f\n",
			i, kindNames[s.Kind], s.ColorIndex, move, parent,
			s.Position.X, s.Position.Y, s.Scale.X, s.Scale.Y, s.Rotation)
	}
	return nil
}

// targetArea picks the remap target: an explicit width and height, or the
// play area of an orthographic camera.
func targetArea(width, height, ortho, aspect, border float64) (coords.Size, error) {
	switch {
	case ortho > 0 && (width > 0 || height > 0):
		return coords.Size{}, cli.Exit("remap: use either --width/--height or --ortho, not both", 2)
	case ortho > 0:
		if aspect <= 0 {
			return coords.Size{}, cli.Exit("remap: --ortho needs a positive --aspect", 2)
		}
		return coords.FromOrtho(ortho, aspect, border), nil
	case width > 0 && height > 0:
		return coords.Size{W: width, H: height}, nil
	}
	return coords.Size{}, cli.Exit("remap: missing --width and --height", 2)
}

// remap bakes the aspect fit for area into the document so it loads
// without correction on a play area of that size.
func remap(doc *levels.Document, area coords.Size, tolerance float64) (*levels.Document, error) {
	if !area.Valid() {
		return nil, fmt.Errorf("remap: invalid target area %gx%g", area.W, area.H)
	}
	saved := coords.Size{W: doc.PlayArea.W, H: doc.PlayArea.H}
	from := coords.Fit(saved, coords.Vec2{}, area, tolerance)
	to := coords.Direct(coords.Vec2{}, area)

	out := *doc
	out.PlayArea = levels.Size{W: area.W, H: area.H}
	out.Shapes = make([]levels.ShapeRecord, len(doc.Shapes))
	for i, rec := range doc.Shapes {
		pos, size := from.Denormalize(
			coords.Vec2{X: rec.Position.X, Y: rec.Position.Y},
			coords.Vec2{X: rec.Scale.X, Y: rec.Scale.Y},
		)
		np, ns := to.Normalize(pos, size)
		rec.Position = levels.Vec2{X: np.X, Y: np.Y}
		rec.Scale = levels.Vec2{X: ns.X, Y: ns.Y}
		out.Shapes[i] = rec
	}
	if err := levels.Validate(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func emit(w io.Writer, path string, doc *levels.Document, write bool) error {
	data, err := levels.Encode(doc)
	if err != nil {
		return err
	}
	if !write {
		_, err = w.Write(data)
		return err
	}
	if path == "" {
		return errors.New("no file to overwrite")
	}
	return os.WriteFile(path, data, 0o644)
}

func list(w io.Writer, store *levels.DirStore) error {
	names, err := store.List()
	if err != nil {
		return err
	}
	progress, err := store.LoadProgress()
	if err != nil {
		return err
	}
	for _, n := range names {
		mark := " "
		if progress.IsCompleted(n) {
			mark = "x"
		}
		fmt.Fprintf(w, "[%s] %s\n", mark, n)
	}
	return nil
}
