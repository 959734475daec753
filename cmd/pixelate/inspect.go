package main

import (
	"fmt"
	"image"
	"io"
	"os"

	"github.com/cenkalti/dominantcolor"
	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/esimov/pixelate"
	"github.com/esimov/pixelate/quant"
	"github.com/esimov/pixelate/utils"
)

var dominantColors int

var inspectCmd = &cobra.Command{
	Use:   "inspect <image>",
	Short: "Report the detected grid and the colors of an image",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().IntVarP(&dominantColors, "dominant", "d", 5, "Number of dominant colors to report")
}

func runInspect(cmd *cobra.Command, args []string) error {
	proc, err := newProcessor()
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	src, err := pixelate.Decode(f)
	if err != nil {
		return err
	}
	return inspect(cmd.OutOrStdout(), src, proc.Config)
}

// inspect writes a short report about img to w. The grid is the one the
// conversion would use with cfg.
func inspect(w io.Writer, img image.Image, cfg pixelate.Config) error {
	grid, work, err := pixelate.New(cfg).Grid(img)
	if err != nil {
		return err
	}
	nrgba := imaging.Clone(img)
	b := nrgba.Bounds()
	cols, rows := grid.Cells(work.Bounds())

	fmt.Fprintf(w, "Size:            %s\n", utils.FormatSize(b.Dx(), b.Dy()))
	fmt.Fprintf(w, "Cell size:       %g\n", float64(grid.Size)/float64(cfg.InitialUpscale))
	fmt.Fprintf(w, "Grid offset:     %d,%d\n", grid.Offset.X, grid.Offset.Y)
	fmt.Fprintf(w, "Pixel art size:  %s\n", utils.FormatSize(cols, rows))
	fmt.Fprintf(w, "Distinct colors: %d\n", quant.CountColors(nrgba))

	if dominantColors <= 0 {
		return nil
	}
	fmt.Fprintln(w, "Dominant colors:")
	for _, c := range dominantcolor.FindWeight(nrgba, dominantColors) {
		fmt.Fprintf(w, "  %s %5.1f%%\n", utils.HexColor(c.RGBA), c.Weight*100)
	}
	return nil
}
