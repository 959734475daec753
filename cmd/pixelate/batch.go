package main

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/gammazero/workerpool"
	log "github.com/sirupsen/logrus"

	"github.com/esimov/pixelate"
)

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

// result holds the outcome of the conversion of one image.
type result struct {
	src string
	dst string
	err error
}

// batch converts every supported image of a directory tree.
type batch struct {
	proc    *pixelate.Processor
	dst     string
	suffix  string
	workers int
}

// run walks the src directory and converts the images concurrently, mirroring
// the directory structure under the destination. The results are sorted by
// source path.
func (b *batch) run(src string) ([]result, error) {
	if err := os.MkdirAll(b.dst, 0755); err != nil {
		return nil, err
	}

	workers := b.workers
	// Limit the concurrently running workers to maxWorkers.
	if workers <= 0 || workers > maxWorkers {
		workers = runtime.NumCPU()
	}
	wp := workerpool.New(workers)

	var (
		mu      sync.Mutex
		results []result
	)

	done := make(chan struct{})
	paths, errc := walkDir(done, src, b.dst, pixelate.Extensions)
	for path := range paths {
		path := path
		out, err := b.outputPath(src, path)
		if err != nil {
			close(done)
			wp.StopWait()
			return results, err
		}

		wp.Submit(func() {
			if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
				mu.Lock()
				results = append(results, result{src: path, dst: out, err: err})
				mu.Unlock()
				return
			}
			err := processFile(b.proc, path, out)
			log.WithFields(log.Fields{
				"src": path,
				"dst": out,
			}).WithError(err).Debug("image converted")

			mu.Lock()
			results = append(results, result{src: path, dst: out, err: err})
			mu.Unlock()
		})
	}
	wp.StopWait()
	close(done)

	slices.SortFunc(results, func(a, b result) int {
		return strings.Compare(a.src, b.src)
	})
	return results, <-errc
}

// outputPath returns the destination file of the path image found under root.
// The results are always written as PNG.
func (b *batch) outputPath(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	stem := strings.TrimSuffix(rel, filepath.Ext(rel))
	return filepath.Join(b.dst, stem+b.suffix+".png"), nil
}

// walkDir starts a new goroutine to walk the specified directory tree
// in recursive manner and sends the path of each supported image to a new channel.
// The skip directory, usually the destination, is left out.
// It finishes in case the done channel is getting closed.
func walkDir(
	done <-chan struct{},
	src, skip string,
	srcExts []string,
) (<-chan string, <-chan error) {
	skip, _ = filepath.Abs(skip)

	pathChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		// Close the paths channel after Walk returns.
		defer close(pathChan)

		errChan <- filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if abs, _ := filepath.Abs(path); abs == skip && path != src {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if !isValidExtension(filepath.Ext(d.Name()), srcExts) {
				return nil
			}

			select {
			case <-done:
				return errors.New("directory walk cancelled")
			case pathChan <- path:
			}
			return nil
		})
	}()
	return pathChan, errChan
}

// isValidExtension checks for the supported extensions.
func isValidExtension(ext string, extensions []string) bool {
	return slices.Contains(extensions, strings.ToLower(ext))
}
