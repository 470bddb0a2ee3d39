// Package atlaspack packs rectangular images into texture atlas pages.
//
// The core is a binary-tree partition packer. A [Layout] owns one page: each
// inserted rectangle either fills a free leaf exactly or splits it in two,
// keeping the larger leftover in one piece. When nothing fits, the page grows
// (optionally in power-of-two steps) up to its maximum size. [CreateAtlasLayout]
// and [Packer] drive layouts across pages, opening a new page whenever the
// current one is exhausted.
//
// # Quick start
//
// Pack raw sizes:
//
//	elems := []atlaspack.Element{{Width: 64, Height: 64}, {Width: 32, Height: 48}}
//	atlaspack.SortLargestFirst(elems)
//	pages, err := atlaspack.CreateAtlasLayout(elems, atlaspack.Options{
//		Width: 128, Height: 128, MaxWidth: 1024, MaxHeight: 1024,
//	})
//	// elems[i].X, elems[i].Y, elems[i].Page now hold placements.
//
// Build a sprite sheet from images and load it into Ebitengine:
//
//	sheet, err := atlaspack.Build(sprites, atlaspack.DefaultBuildOptions())
//	atlas := sheet.Atlas()
//	hero := atlas.SubImage("hero")
//
// # Sheets and TexturePacker JSON
//
// [Build] trims, pads and composes sprites onto page images. A [Sheet] can be
// written as PNG pages plus TexturePacker array-format JSON
// ([Sheet.WritePages], [Sheet.EncodeJSON]) and read back with [LoadAtlas].
//
// # Logging
//
// The package is silent by default. Call [SetLogger] with any [log/slog]
// logger to see page growth and overflow decisions at debug level.
//
// The viewer sub-package displays an [Atlas] in an Ebitengine window, and
// cmd/atlaspack wraps everything in a command-line tool.
package atlaspack
