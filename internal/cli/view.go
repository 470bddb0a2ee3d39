package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	"github.com/phanxgames/atlaspack"
	"github.com/phanxgames/atlaspack/viewer"
)

func (c *CLI) viewCommand() *cobra.Command {
	cfg := viewer.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "view [atlas.json]",
		Short: "Open an atlas in an interactive viewer",
		Long: `View loads atlas JSON and the page images it references (resolved
relative to the JSON file) and shows them in a window. Use the arrow keys to
switch pages, +/- or the mouse wheel to zoom, 0 to fit and drag to pan.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			atlas, err := loadAtlasFile(args[0])
			if err != nil {
				return err
			}
			c.Logger.Info("Opening viewer", "pages", len(atlas.Pages), "regions", len(atlas.Names()))
			if cfg.Title == viewer.DefaultConfig().Title {
				cfg.Title = appName + " - " + filepath.Base(args[0])
			}
			return viewer.Run(atlas, cfg)
		},
	}

	cmd.Flags().IntVar(&cfg.Width, "window-width", cfg.Width, "window width")
	cmd.Flags().IntVar(&cfg.Height, "window-height", cfg.Height, "window height")
	cmd.Flags().BoolVar(&cfg.HideOutlines, "no-outlines", false, "start with region outlines hidden")

	return cmd
}

// loadAtlasFile reads atlas JSON and decodes the page images it lists.
func loadAtlasFile(path string) (*atlaspack.Atlas, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	images, err := atlaspack.ParsePageImages(data)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("%s lists no page images", path)
	}

	dir := filepath.Dir(path)
	pages := make([]*ebiten.Image, len(images))
	for i, name := range images {
		sp, err := atlaspack.LoadSprite(name, filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages[i] = ebiten.NewImageFromImage(sp.Image)
	}
	return atlaspack.LoadAtlas(data, pages)
}
