/*
Package pixelate converts arbitrary raster images into clean, low color pixel art.

The conversion runs four sequential stages. The grid estimator infers the size of
the blocks the image is made of (or takes it from the configuration), the cell
aggregator reduces every block to its representative color, the palette reducer
brings the image down to the requested number of colors and the post-processor
optionally turns the background transparent and enlarges the result.

The package provides a command line interface. To check the supported commands type:

	$ pixelate --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"fmt"
		"github.com/esimov/pixelate"
	)

	func main() {
		cfg := pixelate.DefaultConfig()
		cfg.NumColors = 8
		cfg.ScaleResult = 4

		p := pixelate.New(cfg)
		if err := p.Process(in, out); err != nil {
			fmt.Printf("Error pixelating image: %s", err.Error())
		}
	}
*/
package pixelate
