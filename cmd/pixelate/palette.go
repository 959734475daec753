package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/esimov/pixelate"
	"github.com/esimov/pixelate/quant"
	"github.com/esimov/pixelate/utils"
)

var (
	swatchTile   int
	swatchOut    string
	swatchSorted bool
)

var paletteCmd = &cobra.Command{
	Use:   "palette <image>",
	Short: "Extract the reduced palette of an image",
	Args:  cobra.ExactArgs(1),
	RunE:  runPalette,
}

func init() {
	paletteCmd.Flags().IntVar(&swatchTile, "tile", 16, "Swatch tile size in pixels")
	paletteCmd.Flags().StringVarP(&swatchOut, "out", "o", "", "Write the palette swatch to this PNG file")
	paletteCmd.Flags().BoolVar(&swatchSorted, "sort", false, "Order the palette from dark to bright")
}

func runPalette(cmd *cobra.Command, args []string) error {
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
	res, err := proc.Pixelate(src)
	if err != nil {
		return err
	}

	palette := res.Palette
	if swatchSorted {
		palette = append(quant.Palette(nil), palette...)
		quant.SortByBrightness(palette)
	}
	for _, c := range palette {
		fmt.Fprintln(cmd.OutOrStdout(), utils.HexColor(c))
	}

	if swatchOut == "" {
		return nil
	}
	out, err := os.Create(swatchOut)
	if err != nil {
		return err
	}
	if err := pixelate.Encode(out, palette.Swatch(swatchTile), pixelate.PNG); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
