// Package session keeps the state of an interactive pixelation session: the
// loaded image, the processed result and the status line shown to the user.
// The engine itself stays stateless; a failed operation leaves the previously
// loaded and processed images untouched.
package session

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/esimov/pixelate"
)

// Status lines.
const (
	StatusReady        = "Ready"
	StatusProcessing   = "Processing..."
	StatusProcessed    = "Processing complete!"
	StatusLoadError    = "Error loading image"
	StatusProcessError = "Error during processing"
	StatusSaveError    = "Error saving image"
)

var (
	// ErrNoImage is returned when processing is requested before loading an image.
	ErrNoImage = errors.New("no image loaded")
	// ErrNoOutput is returned when saving is requested before processing the image.
	ErrNoOutput = errors.New("no processed image")
)

// Error records the session operation which failed.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// Session is the view-model of the pixelation front end. It is not safe for
// concurrent use.
type Session struct {
	Settings Settings
	// Base holds the engine options not exposed through Settings.
	Base   pixelate.Config
	Logger log.FieldLogger

	inputPath string
	input     image.Image
	output    *pixelate.Result
	status    string
}

// New creates a session with the given settings.
func New(settings Settings) *Session {
	return &Session{
		Settings: settings,
		Base:     pixelate.DefaultConfig(),
		Logger:   log.StandardLogger(),
		status:   StatusReady,
	}
}

// Status returns the current status line.
func (s *Session) Status() string { return s.status }

// Input returns the loaded image, or nil.
func (s *Session) Input() image.Image { return s.input }

// Output returns the last processing result, or nil.
func (s *Session) Output() *pixelate.Result { return s.output }

// Load opens and decodes the image file at path.
func (s *Session) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return s.fail("load", StatusLoadError, err)
	}
	defer f.Close()

	return s.LoadFrom(path, f)
}

// LoadFrom decodes the image read from r. name identifies the source in the
// status line and in the default output name. Loading a new image discards
// the previous result.
func (s *Session) LoadFrom(name string, r io.Reader) error {
	img, err := pixelate.Decode(r)
	if err != nil {
		return s.fail("load", StatusLoadError, err)
	}

	s.inputPath = name
	s.input = img
	s.output = nil
	s.status = "Loaded: " + filepath.Base(name)

	s.logger().WithFields(log.Fields{
		"file": name,
		"size": img.Bounds().Size(),
	}).Debug("image loaded")
	return nil
}

// Process runs the engine on the loaded image with the current settings.
func (s *Session) Process() error {
	if s.input == nil {
		return ErrNoImage
	}
	if err := s.Settings.Validate(); err != nil {
		return s.fail("process", StatusProcessError, err)
	}

	s.status = StatusProcessing
	p := pixelate.New(s.Settings.Config(s.Base))
	p.Logger = s.logger()

	res, err := p.Pixelate(s.input)
	if err != nil {
		return s.fail("process", StatusProcessError, err)
	}
	s.output = res
	s.status = StatusProcessed
	return nil
}

// DefaultOutputName suggests the file name of the result, derived from the input name.
func (s *Session) DefaultOutputName() string {
	if s.inputPath == "" {
		return "output_pixelated.png"
	}
	base := filepath.Base(s.inputPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_pixelated.png"
}

// Save writes the processed image to path and returns the path actually used.
// An empty path selects DefaultOutputName in the input directory and a path
// without extension gets the .png one. Unknown extensions are written as PNG.
func (s *Session) Save(path string) (string, error) {
	if s.output == nil {
		return "", ErrNoOutput
	}
	if path == "" {
		path = filepath.Join(filepath.Dir(s.inputPath), s.DefaultOutputName())
	}
	if filepath.Ext(path) == "" {
		path += ".png"
	}

	format, err := pixelate.FormatFromPath(path)
	if err != nil {
		format = pixelate.PNG
	}

	f, err := os.Create(path)
	if err != nil {
		return "", s.fail("save", StatusSaveError, err)
	}
	if err := pixelate.Encode(f, s.output.Image, format); err != nil {
		f.Close()
		return "", s.fail("save", StatusSaveError, err)
	}
	if err := f.Close(); err != nil {
		return "", s.fail("save", StatusSaveError, err)
	}

	s.status = "Saved: " + filepath.Base(path)
	return path, nil
}

func (s *Session) fail(op, status string, err error) error {
	s.status = status
	s.logger().WithError(err).WithField("op", op).Debug("session operation failed")
	return &Error{Op: op, Err: err}
}

func (s *Session) logger() log.FieldLogger {
	if s.Logger == nil {
		return log.StandardLogger()
	}
	return s.Logger
}

// Message turns an error returned by the session into a user facing message.
func Message(err error) string {
	var opErr *Error
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoImage):
		return "Please load an image first."
	case errors.Is(err, ErrNoOutput):
		return "Please process an image first."
	case errors.Is(err, pixelate.ErrInvalidConfiguration):
		if errors.As(err, &opErr) {
			err = opErr.Err
		}
		return fmt.Sprintf("Invalid settings:\n%v", err)
	case errors.As(err, &opErr):
		switch opErr.Op {
		case "load":
			return fmt.Sprintf("Failed to load image:\n%v", opErr.Err)
		case "process":
			return fmt.Sprintf("Failed to process image:\n%v", opErr.Err)
		case "save":
			return fmt.Sprintf("Failed to save image:\n%v", opErr.Err)
		}
	}
	return err.Error()
}
