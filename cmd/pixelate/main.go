package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/esimov/pixelate"
	"github.com/esimov/pixelate/config"
	"github.com/esimov/pixelate/utils"
)

const helpBanner = `
┌─┐┬─┐ ┬┌─┐┬  ┌─┐┌┬┐┌─┐
├─┘│┌┴┬┘├┤ │  ├─┤ │ ├┤
┴  ┴┴ └─└─┘┴─┘┴ ┴ ┴ └─┘

Pixel art conversion tool.
    Version: %s
`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version string

var (
	configPath  string
	source      string
	destination string

	// spinner used to instantiate and call the progress indicator.
	spinner *utils.Spinner
)

var rootCmd = &cobra.Command{
	Use:               "pixelate",
	Short:             "Convert images into pixel art",
	Long:              fmt.Sprintf(helpBanner, Version),
	PersistentPreRunE: appPersistentPreRun,
	RunE:              runConvert,
	SilenceUsage:      true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "Configuration file")
	pf.StringVarP(&config.Config.Main.LogLevel, "level", "l", config.Config.Main.LogLevel, "Log level")

	pf.IntVar(&config.Config.Pixelate.Colors, "colors", config.Config.Pixelate.Colors, "Number of palette colors")
	pf.IntVar(&config.Config.Pixelate.Scale, "scale", config.Config.Pixelate.Scale, "Upscale factor of the result (1 = none)")
	pf.IntVar(&config.Config.Pixelate.InitialUpscale, "upscale", config.Config.Pixelate.InitialUpscale, "Upscale factor applied to the source before the grid detection")
	pf.IntVar(&config.Config.Pixelate.PixelWidth, "width", config.Config.Pixelate.PixelWidth, "Cell size in source pixels (0 = auto)")
	pf.BoolVar(&config.Config.Pixelate.Transparent, "transparent", config.Config.Pixelate.Transparent, "Make the background transparent")
	pf.StringVar(&config.Config.Pixelate.Metric, "metric", config.Config.Pixelate.Metric, "Color distance: rgb or lab")
	pf.IntVar(&config.Config.Pixelate.Iterations, "iterations", config.Config.Pixelate.Iterations, "K-means refinement passes")
	pf.Float64Var(&config.Config.Pixelate.Tolerance, "tolerance", config.Config.Pixelate.Tolerance, "Background color tolerance")
	pf.Float64Var(&config.Config.Pixelate.Alignment, "alignment", config.Config.Pixelate.Alignment, "Share of edges required on the grid lines")
	pf.IntVar(&config.Config.Pixelate.Workers, "workers", config.Config.Pixelate.Workers, "Goroutines used per image (0 = number of CPUs)")

	rootCmd.Flags().StringVarP(&source, "in", "i", pipeName, "Source file, directory or URL")
	rootCmd.Flags().StringVarP(&destination, "out", "o", pipeName, "Destination file or directory")
	rootCmd.Flags().IntVar(&config.Config.Batch.Workers, "conc", config.Config.Batch.Workers, "Number of files to process concurrently")
	rootCmd.Flags().StringVar(&config.Config.Batch.Suffix, "suffix", config.Config.Batch.Suffix, "File name suffix used in batch mode")

	rootCmd.AddCommand(inspectCmd, paletteCmd, configCmd)
}

func appPersistentPreRun(cmd *cobra.Command, _ []string) error {
	// The flags given on the command line take precedence over the configuration file.
	changed := make(map[string]string)
	cmd.Flags().Visit(func(f *pflag.Flag) {
		changed[f.Name] = f.Value.String()
	})

	if err := config.LoadConfiguration(configPath); err != nil {
		return fmt.Errorf("error loading configuration (%s)", err)
	}
	for name, value := range changed {
		if err := cmd.Flags().Set(name, value); err != nil {
			return err
		}
	}

	// Setup logger
	lvl, err := log.ParseLevel(config.Config.Main.LogLevel)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
	log.SetOutput(os.Stderr)
	log.WithField("log_level", lvl).Debug()

	utils.NoColor = !term.IsTerminal(int(os.Stderr.Fd()))

	spinnerText := fmt.Sprintf("%s %s",
		utils.DecorateText("▦ PIXELATE", utils.StatusMessage),
		utils.DecorateText("is converting the image...", utils.DefaultMessage))
	spinner = utils.NewSpinner(spinnerText, time.Millisecond*100, true)

	return nil
}

// newProcessor builds the pixelation processor from the configuration.
func newProcessor() (*pixelate.Processor, error) {
	cfg, err := config.Config.Pixelate.Engine()
	if err != nil {
		return nil, err
	}
	return pixelate.New(cfg), nil
}

func runConvert(cmd *cobra.Command, _ []string) error {
	proc, err := newProcessor()
	if err != nil {
		return err
	}

	// Capture CTRL-C signal and restore the cursor visibility back.
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signalChan)
	go func() {
		if _, ok := <-signalChan; ok {
			spinner.RestoreCursor()
			os.Exit(1)
		}
	}()

	src := source
	// Check if the source path is a local image or URL.
	if utils.IsValidUrl(src) {
		f, err := utils.DownloadImage(src)
		if err != nil {
			return fmt.Errorf("failed to load the source image: %w", err)
		}
		defer os.Remove(f.Name())
		f.Close()
		src = f.Name()
	}

	var fs os.FileInfo
	// Check if the source is a pipe name or a regular file.
	if src == pipeName {
		fs, err = os.Stdin.Stat()
	} else {
		fs, err = os.Stat(src)
	}
	if err != nil {
		return fmt.Errorf("failed to load the source image: %w", err)
	}

	now := time.Now()

	switch mode := fs.Mode(); {
	case mode.IsDir():
		if destination == pipeName {
			return errors.New("a destination directory is required in batch mode")
		}
		b := &batch{
			proc:    proc,
			dst:     destination,
			suffix:  config.Config.Batch.Suffix,
			workers: config.Config.Batch.Workers,
		}
		results, err := b.run(src)
		failed := 0
		for _, res := range results {
			printStatus(cmd.ErrOrStderr(), res.dst, res.err)
			if res.err != nil {
				failed++
			}
		}
		if err != nil {
			return err
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d images could not be converted", failed, len(results))
		}
	case mode.IsRegular() || mode&os.ModeNamedPipe != 0 || mode&os.ModeCharDevice != 0:
		if destination != pipeName {
			if _, err := pixelate.FormatFromPath(destination); err != nil {
				return err
			}
		}

		spinner.Start()
		err := processFile(proc, src, destination)
		spinner.StopMsg = fmt.Sprintf("%s %s\n",
			utils.DecorateText("▦ PIXELATE", utils.StatusMessage),
			utils.DecorateText("is converting the image... ✔", utils.DefaultMessage))
		if err != nil {
			spinner.StopMsg = ""
		}
		spinner.Stop()

		printStatus(cmd.ErrOrStderr(), destination, err)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported source: %s", src)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "\nExecution time: %s\n",
		utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
	return nil
}

// processFile pixelates the in image and writes the result to out.
// The destination file is removed when the conversion fails.
func processFile(proc *pixelate.Processor, in, out string) error {
	src, dst, err := pathToFile(in, out)
	if err != nil {
		return err
	}
	defer func() {
		if f, ok := src.(*os.File); ok && f != os.Stdin {
			if err := f.Close(); err != nil {
				log.WithError(err).Warn("could not close the opened file")
			}
		}
	}()

	err = proc.Process(src, dst)
	if f, ok := dst.(*os.File); ok && f != os.Stdout {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(f.Name())
		}
	}
	return err
}

// pathToFile converts the source and destination paths to readable and writable files.
func pathToFile(in, out string) (io.Reader, io.Writer, error) {
	var (
		src io.Reader
		dst io.Writer
		err error
	)
	// Check if the source is a pipe name or a regular file.
	if in == pipeName {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, nil, errors.New("`-` should be used with a pipe for stdin")
		}
		src = os.Stdin
	} else {
		src, err = os.Open(in)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to open the source file: %w", err)
		}
	}

	// Check if the destination is a pipe name or a regular file.
	if out == pipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			if f, ok := src.(*os.File); ok && f != os.Stdin {
				f.Close()
			}
			return nil, nil, errors.New("`-` should be used with a pipe for stdout")
		}
		dst = os.Stdout
	} else {
		dst, err = os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			if f, ok := src.(*os.File); ok && f != os.Stdin {
				f.Close()
			}
			return nil, nil, fmt.Errorf("unable to create the destination file: %w", err)
		}
	}
	return src, dst, nil
}

// printStatus displays the relevant information about the conversion of one image.
func printStatus(w io.Writer, fname string, err error) {
	if err != nil {
		fmt.Fprintf(w, "%s %s\n",
			utils.DecorateText("Error converting the image:", utils.ErrorMessage),
			utils.DecorateText(fmt.Sprintf("%s\n\tReason: %v", filepath.Base(fname), err), utils.DefaultMessage),
		)
		return
	}
	if fname != pipeName {
		fmt.Fprintf(w, "The image has been saved as: %s\n",
			utils.DecorateText(filepath.Base(fname), utils.SuccessMessage),
		)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("pixelate failed")
		os.Exit(1)
	}
}
