package cli

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/phanxgames/atlaspack"
)

// buildFlags holds the page and sheet flags shared by pack and tree. Values
// are applied on top of the config file only when set on the command line.
type buildFlags struct {
	width, height       int
	maxWidth, maxHeight int
	pow2                bool
	padding             int
	trim                bool
	jobs                int
}

func (f *buildFlags) register(flags *pflag.FlagSet) {
	def := DefaultConfig()
	flags.IntVar(&f.width, "width", def.Page.Width, "initial page width")
	flags.IntVar(&f.height, "height", def.Page.Height, "initial page height")
	flags.IntVar(&f.maxWidth, "max-width", def.Page.MaxWidth, "maximum page width")
	flags.IntVar(&f.maxHeight, "max-height", def.Page.MaxHeight, "maximum page height")
	flags.BoolVar(&f.pow2, "pow2", def.Page.Pow2, "keep page sizes at powers of two")
	flags.IntVar(&f.padding, "padding", def.Sheet.Padding, "transparent pixels right of and below each sprite")
	flags.BoolVar(&f.trim, "trim", def.Sheet.Trim, "crop transparent sprite borders")
	flags.IntVarP(&f.jobs, "jobs", "j", runtime.GOMAXPROCS(0), "parallel image decoders")
}

// apply overrides cfg with every flag the user set explicitly.
func (f *buildFlags) apply(flags *pflag.FlagSet, cfg Config) Config {
	set := flags.Changed
	if set("width") {
		cfg.Page.Width = f.width
	}
	if set("height") {
		cfg.Page.Height = f.height
	}
	if set("max-width") {
		cfg.Page.MaxWidth = f.maxWidth
	}
	if set("max-height") {
		cfg.Page.MaxHeight = f.maxHeight
	}
	if set("pow2") {
		cfg.Page.Pow2 = f.pow2
	}
	if set("padding") {
		cfg.Sheet.Padding = f.padding
	}
	if set("trim") {
		cfg.Sheet.Trim = f.trim
	}
	return cfg
}

// packOpts holds the command-line flags for the pack command.
type packOpts struct {
	buildFlags
	output string // output directory
	name   string // base name of the JSON and PNG files
}

func (c *CLI) packCommand() *cobra.Command {
	var opts packOpts

	cmd := &cobra.Command{
		Use:   "pack [paths...]",
		Short: "Pack images into atlas pages and TexturePacker JSON",
		Long: `Pack collects every supported image under the given files and directories,
packs them largest first and writes <name>-<page>.png plus <name>.json.

Sprite names are paths relative to the directory they were found in, without
extension and with forward slashes (e.g. "ui/button").`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.apply(cmd.Flags(), c.config)
			if cmd.Flags().Changed("output") {
				cfg.Output.Dir = opts.output
			}
			if cmd.Flags().Changed("name") {
				cfg.Output.Name = opts.name
			}
			return c.runPack(cmd.Context(), cmd.OutOrStdout(), args, cfg, opts.jobs)
		},
	}

	def := DefaultConfig()
	opts.register(cmd.Flags())
	cmd.Flags().StringVarP(&opts.output, "output", "o", def.Output.Dir, "output directory")
	cmd.Flags().StringVarP(&opts.name, "name", "n", def.Output.Name, "base name of the output files")

	return cmd
}

func (c *CLI) runPack(ctx context.Context, w io.Writer, paths []string, cfg Config, jobs int) error {
	prog := newProgress(c.Logger)

	sheet, err := c.buildSheet(ctx, paths, cfg, jobs)
	if err != nil {
		return err
	}

	files, err := sheet.WritePages(cfg.Output.Dir, cfg.Output.Name)
	if err != nil {
		return err
	}
	data, err := sheet.EncodeJSON(cfg.Output.Name)
	if err != nil {
		return err
	}
	jsonPath := filepath.Join(cfg.Output.Dir, cfg.Output.Name+".json")
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", jsonPath, err)
	}
	prog.done(fmt.Sprintf("Packed %d sprites", len(sheet.Regions)))

	printSuccess(w, "Packed %s sprites onto %s pages",
		StyleNumber.Render(fmt.Sprint(len(sheet.Regions))), StyleNumber.Render(fmt.Sprint(len(sheet.Pages))))
	for i, page := range sheet.Pages {
		b := page.Bounds()
		printDetail(w, "page %d: %dx%d", i, b.Dx(), b.Dy())
	}
	printFile(w, jsonPath)
	for _, f := range files {
		printFile(w, f)
	}
	return nil
}

// buildSheet collects, decodes and packs the images under paths.
func (c *CLI) buildSheet(ctx context.Context, paths []string, cfg Config, jobs int) (*atlaspack.Sheet, error) {
	inputs, err := collectImages(paths)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no images found in %s", strings.Join(paths, ", "))
	}
	c.Logger.Debug("Collected images", "count", len(inputs))

	sprites, err := decodeAll(ctx, inputs, jobs)
	if err != nil {
		return nil, err
	}
	return atlaspack.Build(sprites, cfg.BuildOptions())
}

// imageInput is an image file and the sprite name it will be packed under.
type imageInput struct {
	name string
	path string
}

// collectImages expands paths into image files. Directories are walked
// recursively; files are taken as given. The result is sorted by name.
func collectImages(paths []string) ([]imageInput, error) {
	var inputs []imageInput
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			inputs = append(inputs, imageInput{name: spriteName(filepath.Dir(root), root), path: root})
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !atlaspack.IsImageFile(path) {
				return nil
			}
			inputs = append(inputs, imageInput{name: spriteName(root, path), path: path})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}
	slices.SortFunc(inputs, func(a, b imageInput) int { return strings.Compare(a.name, b.name) })
	return inputs, nil
}

// spriteName returns path relative to root, slash-separated and without its
// extension.
func spriteName(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	rel = filepath.ToSlash(rel)
	return strings.TrimSuffix(rel, filepath.Ext(rel))
}

// decodeAll decodes inputs with up to jobs goroutines. The returned sprites
// keep the order of inputs.
func decodeAll(ctx context.Context, inputs []imageInput, jobs int) ([]atlaspack.Sprite, error) {
	sprites := make([]atlaspack.Sprite, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, jobs))
	for i, in := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sp, err := atlaspack.LoadSprite(in.name, in.path)
			if err != nil {
				return err
			}
			sprites[i] = sp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sprites, nil
}
