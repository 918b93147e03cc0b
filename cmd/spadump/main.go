// spadump prints the contents of a particle effect file and exports its
// textures.
//
// # Summary only
// ./spadump boost.spa
//
// # Export textures as 4x upscaled PNGs
// ./spadump -o out -scale 4 boost.spa
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gekko3d/kartfx"
	"github.com/gekko3d/kartfx/spa"
)

func main() {
	var (
		outDir  string
		format  string
		scale   int
		verbose bool
	)

	flag.StringVar(&outDir, "o", "", "Directory to write textures to (omit to skip export)")
	flag.StringVar(&format, "format", "png", "Texture image format: 'png' or 'bmp'")
	flag.IntVar(&scale, "scale", 1, "Integer upscale factor for exported textures")
	flag.BoolVar(&verbose, "v", false, "Print every definition field and debug logging")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: spadump [options] <effect.spa>")
		fmt.Fprintln(os.Stderr, "\nOptions:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	format = strings.ToLower(format)
	if format != "png" && format != "bmp" {
		fmt.Fprintf(os.Stderr, "Unknown format: %s (use 'png' or 'bmp')\n", format)
		os.Exit(1)
	}
	if scale < 1 {
		scale = 1
	}

	logger := kartfx.NewDefaultLogger("spadump", verbose)
	path := flag.Arg(0)

	res, err := spa.LoadFile(path)
	if err != nil {
		logger.Errorf("%s: %v", path, err)
		os.Exit(1)
	}
	if err := res.VersionErr(); err != nil {
		logger.Warnf("%s: %v", path, err)
	}

	printSummary(os.Stdout, path, res, verbose)

	if outDir == "" {
		return
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		logger.Errorf("create %s: %v", outDir, err)
		os.Exit(1)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	written := 0
	for i := 0; i < res.NumTextures(); i++ {
		img, err := res.Texture(i)
		if err != nil {
			var ue *spa.UnsupportedFeatureError
			if errors.As(err, &ue) {
				logger.Warnf("texture %d: %v; skipped", i, err)
				continue
			}
			logger.Errorf("texture %d: %v", i, err)
			os.Exit(1)
		}
		name := filepath.Join(outDir, fmt.Sprintf("%s_%03d.%s", base, i, format))
		if err := writeImage(name, upscale(img, scale), format); err != nil {
			logger.Errorf("write %s: %v", name, err)
			os.Exit(1)
		}
		logger.Debugf("wrote %s", name)
		written++
	}
	logger.Infof("wrote %d of %d textures to %s", written, res.NumTextures(), outDir)
}

func printSummary(w io.Writer, path string, res *spa.Resource, verbose bool) {
	fmt.Fprintf(w, "%s: version %q, %d definitions, %d textures\n",
		path, res.Version(), res.NumDefinitions(), res.NumTextures())

	for i, d := range res.Definitions() {
		fmt.Fprintf(w, "emitter %3d: flags=%08x size=%d chance=%.3f freq=%d delay=%d lifetime=%d duration=%d tex=%d%s\n",
			i, d.Flags, d.EncodedSize(), d.ParticleChance, d.Frequency, d.Delay, d.Lifetime, d.Duration, d.TextureID, blockList(d))
		if verbose {
			fmt.Fprintf(w, "    %+v\n", *d)
		}
	}

	for i := 0; i < res.NumTextures(); i++ {
		t := res.TextureRecord(i)
		fmt.Fprintf(w, "texture %3d: %s %dx%d repeat=%t,%t flip=%t,%t color0-transparent=%t\n",
			i, t.Format, t.Width, t.Height, t.RepeatS, t.RepeatT, t.FlipS, t.FlipT, t.Color0Transparent)
	}
}

func blockList(d *spa.EmitterDefinition) string {
	var parts []string
	if d.ScaleAnim != nil {
		parts = append(parts, "scale")
	}
	if d.ColorAnim != nil {
		parts = append(parts, "color")
	}
	if d.OpacityAnim != nil {
		parts = append(parts, "opacity")
	}
	if d.TextureAnim != nil {
		parts = append(parts, "texanim")
	}
	if d.Gravity != nil {
		parts = append(parts, "gravity")
	}
	if d.Attached() {
		parts = append(parts, "attached")
	}
	if len(parts) == 0 {
		return ""
	}
	return " [" + strings.Join(parts, ",") + "]"
}
