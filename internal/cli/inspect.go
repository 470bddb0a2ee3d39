package cli

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/phanxgames/atlaspack"
)

// pageSummary describes one page of an inspected atlas.
type pageSummary struct {
	image        string
	width        int
	height       int
	regions      int
	coveredArea  int
	trimmedCount int
}

// atlasSummary is the result of inspecting atlas JSON.
type atlasSummary struct {
	pages    []pageSummary
	regions  int
	orphaned int // regions pointing at a page the JSON does not list
}

func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [atlas.json]",
		Short: "Summarize the pages and regions of an atlas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			sum, err := inspectAtlas(data, filepath.Dir(args[0]))
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), args[0], sum)
			return nil
		},
	}
}

// inspectAtlas gathers per-page statistics. Page sizes missing from the
// JSON are read from the page image headers in dir when available.
func inspectAtlas(data []byte, dir string) (atlasSummary, error) {
	regions, err := atlaspack.ParseRegions(data)
	if err != nil {
		return atlasSummary{}, err
	}
	pages, err := atlaspack.ParsePages(data)
	if err != nil {
		return atlasSummary{}, err
	}

	sum := atlasSummary{pages: make([]pageSummary, len(pages)), regions: len(regions)}
	for i, p := range pages {
		ps := pageSummary{image: p.Image, width: p.Width, height: p.Height}
		if ps.width == 0 || ps.height == 0 {
			ps.width, ps.height = imageSize(filepath.Join(dir, p.Image))
		}
		sum.pages[i] = ps
	}
	for _, r := range regions {
		if int(r.Page) >= len(sum.pages) {
			sum.orphaned++
			continue
		}
		ps := &sum.pages[r.Page]
		ps.regions++
		ps.coveredArea += int(r.Width) * int(r.Height)
		if r.Width != r.OriginalW || r.Height != r.OriginalH {
			ps.trimmedCount++
		}
	}
	return sum, nil
}

// imageSize reads the dimensions from an image file header, or returns
// zeros when the file cannot be read.
func imageSize(path string) (int, int) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}

func printSummary(w io.Writer, path string, sum atlasSummary) {
	printTitle(w, path)
	printKeyValue(w, "pages", fmt.Sprint(len(sum.pages)))
	printKeyValue(w, "regions", fmt.Sprint(sum.regions))
	for i, p := range sum.pages {
		printInfo(w, "page %d %s", i, StyleDim.Render(p.image))
		if p.width > 0 && p.height > 0 {
			printDetail(w, "size     %dx%d", p.width, p.height)
		}
		printDetail(w, "regions  %d (%d trimmed)", p.regions, p.trimmedCount)
		printDetail(w, "covered  %s", formatArea(p.coveredArea, p.width*p.height))
	}
	if sum.orphaned > 0 {
		printWarning(w, "%d regions reference pages missing from the JSON", sum.orphaned)
	}
}
