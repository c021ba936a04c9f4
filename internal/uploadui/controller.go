// Package uploadui drives the skin-image recognition panel: file intake with
// validation and preview, submission to the recognizer and result display.
package uploadui

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ChlorophyllA/skin2/internal/disease"
	"github.com/ChlorophyllA/skin2/internal/model"
)

// Phase is the panel's position in its lifecycle.
type Phase int

const (
	NoImage Phase = iota
	ImageSelected
	Submitting
	ResultShown
)

func (p Phase) String() string {
	switch p {
	case NoImage:
		return "no-image"
	case ImageSelected:
		return "image-selected"
	case Submitting:
		return "submitting"
	case ResultShown:
		return "result-shown"
	}
	return "unknown"
}

var (
	ErrNoImage = errors.New("no image selected")
	ErrBusy    = errors.New("recognition in progress")
)

// Recognizer uploads image bytes and returns the detections.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (*model.RecognitionResult, error)
}

// View applies decisions to the screen. Implementations must not call back
// into the Controller.
type View interface {
	// ShowPreview shows src (a data URL); "" clears the preview.
	ShowPreview(src string)
	ShowChangeButton(visible bool)
	SetSubmitEnabled(enabled bool)
	SetLoading(visible bool)
	SetResultsVisible(visible bool)
	ShowResult(r ResultView)
	// Alert is a blocking notice the user must dismiss.
	Alert(msg string)
	SetDropHighlight(on bool)
}

type Controller struct {
	rec     Recognizer
	view    View
	catalog *disease.Catalog
	log     zerolog.Logger

	mu      sync.Mutex
	phase   Phase
	preview string // data URL of the selected image
	gen     uint64 // bumped on every selection and reset
}

func NewController(rec Recognizer, view View, catalog *disease.Catalog, logger zerolog.Logger) *Controller {
	if catalog == nil {
		catalog = disease.Default()
	}
	return &Controller{
		rec:     rec,
		view:    view,
		catalog: catalog,
		log:     logger.With().Str("component", "uploadui").Logger(),
	}
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// SelectFile handles a file from the picker or a drop. Rejected files leave
// the current selection untouched.
func (c *Controller) SelectFile(f File) error {
	if err := Validate(f); err != nil {
		c.view.Alert(err.Error())
		return err
	}
	src := EncodeDataURL(SniffMIME(f), f.Data)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == Submitting {
		return ErrBusy
	}
	c.gen++
	c.preview = src
	c.phase = ImageSelected
	c.view.ShowPreview(src)
	c.view.ShowChangeButton(true)
	c.view.SetSubmitEnabled(true)
	return nil
}

func (c *Controller) DragOver()  { c.view.SetDropHighlight(true) }
func (c *Controller) DragLeave() { c.view.SetDropHighlight(false) }

// Drop clears the highlight and takes the first dropped file, if any.
func (c *Controller) Drop(files []File) error {
	c.view.SetDropHighlight(false)
	if len(files) == 0 {
		return nil
	}
	return c.SelectFile(files[0])
}

// Submit sends the selected image for recognition and shows the outcome.
// A result that arrives after Reset or a new selection is dropped.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.phase == Submitting {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.preview == "" {
		c.mu.Unlock()
		return ErrNoImage
	}
	preview, gen := c.preview, c.gen
	c.phase = Submitting
	c.mu.Unlock()

	c.view.SetLoading(true)
	c.view.SetResultsVisible(false)

	resp, err := c.recognize(ctx, preview)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return nil
	}
	c.view.SetLoading(false)
	if err != nil {
		c.log.Error().Err(err).Msg("recognition failed")
		c.phase = ImageSelected
		c.view.Alert(AlertRecognize)
		return err
	}
	c.phase = ResultShown
	c.view.ShowResult(BuildResult(resp, preview, c.catalog))
	c.view.SetResultsVisible(true)
	return nil
}

func (c *Controller) recognize(ctx context.Context, preview string) (*model.RecognitionResult, error) {
	data, _, err := DecodeDataURL(preview)
	if err != nil {
		return nil, err
	}
	return c.rec.Recognize(ctx, data)
}

// Reset clears the selection and restores the placeholders.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.preview = ""
	c.phase = NoImage
	c.view.ShowPreview("")
	c.view.ShowChangeButton(false)
	c.view.SetLoading(false)
	c.view.ShowResult(Placeholder())
	c.view.SetResultsVisible(false)
	c.view.SetSubmitEnabled(false)
}
