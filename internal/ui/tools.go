package ui

import (
	"context"
	"fmt"
	"image/color"
	"strconv"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog/log"

	"MySketchBoard/internal/export"
	"MySketchBoard/internal/raster"
	"MySketchBoard/internal/sketch"
	"MySketchBoard/internal/state"
)

// Palette is the colours offered as swatches.
var Palette = []string{"#000000", "#ff0000", "#00ff00", "#0000ff", "#ffff00", "#ff00ff", "#00ffff"}

type colorSwatch struct {
	widget.BaseWidget
	Color    string
	OnTapped func(string)
}

func newColorSwatch(c string, tapped func(string)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	fill, err := raster.ParseColor(s.Color)
	if err != nil {
		fill = color.NRGBA{A: 255}
	}
	rect := canvas.NewRectangle(fill)
	rect.SetMinSize(fyne.NewSize(32, 32))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// Toolbar drives a board: tool, colour and size pickers, downloads, PDF
// export, upload and live search.
type Toolbar struct {
	board   *BoardWidget
	window  fyne.Window
	client  *export.Client
	timeout time.Duration
	status  *widget.Label

	mu   sync.Mutex
	live *export.LiveSearch
}

// NewToolbar returns a toolbar for board. Uploads go through client.
func NewToolbar(board *BoardWidget, window fyne.Window, client *export.Client, timeout time.Duration) *Toolbar {
	t := &Toolbar{
		board:   board,
		window:  window,
		client:  client,
		timeout: timeout,
		status:  widget.NewLabel("Ready"),
	}
	board.OnStroke(t.onStroke)
	return t
}

// Status is the label the toolbar reports to.
func (t *Toolbar) Status() *widget.Label { return t.status }

// SetStatus updates the status label from any goroutine.
func (t *Toolbar) SetStatus(text string) {
	fyne.Do(func() {
		t.status.SetText(text)
	})
}

// SetLiveSearch ranks the drawing with l after every stroke. A nil l stops
// live search.
func (t *Toolbar) SetLiveSearch(l *export.LiveSearch) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.live != nil {
		_ = t.live.Close()
	}
	t.live = l
}

// Object assembles the toolbar widgets.
func (t *Toolbar) Object() fyne.CanvasObject {
	tools := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentCreateIcon(), func() { t.set("tool", sketch.ToolMarker) }),
		widget.NewToolbarAction(theme.ContentClearIcon(), func() { t.set("tool", sketch.ToolEraser) }),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DeleteIcon(), t.clear),
	)

	swatches := container.NewHBox()
	for _, c := range Palette {
		swatches.Add(newColorSwatch(c, func(c string) { t.set("color", c) }))
	}

	sizeSlider := widget.NewSlider(1, 50)
	sizeSlider.SetValue(t.board.Settings().Size)
	sizeSlider.OnChanged = func(val float64) {
		t.set("size", strconv.FormatFloat(val, 'f', -1, 64))
	}
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), sizeSlider)

	files := widget.NewToolbar(
		widget.NewToolbarAction(theme.DownloadIcon(), func() { t.download("png") }),
		widget.NewToolbarAction(theme.FileImageIcon(), func() { t.download("jpg") }),
		widget.NewToolbarAction(theme.DocumentPrintIcon(), t.exportPDF),
		widget.NewToolbarAction(theme.UploadIcon(), t.upload),
	)

	return container.NewHBox(
		widget.NewLabel("Tool:"),
		tools,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		swatches,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sliderContainer,
		widget.NewSeparator(),
		files,
		layout.NewSpacer(),
		t.status,
	)
}

func (t *Toolbar) set(key, value string) {
	if err := t.board.Set(key, value); err != nil {
		log.Error().Err(err).Str("key", key).Msg("[UI] setting rejected")
		t.SetStatus(err.Error())
	}
}

func (t *Toolbar) clear() {
	if err := t.board.Clear(); err != nil {
		log.Error().Err(err).Msg("[UI] clear failed")
	}
	t.SetStatus("Cleared")
}

func (t *Toolbar) download(format string) {
	if err := t.board.Download(format); err != nil {
		dialog.ShowError(err, t.window)
	}
}

func (t *Toolbar) exportPDF() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()
		if err := t.board.WritePDF(writer); err != nil {
			dialog.ShowError(err, t.window)
			return
		}
		t.SetStatus("Exported " + writer.URI().Name())
	}, t.window)
	fd.SetFileName("sketch.pdf")
	fd.Show()
}

func (t *Toolbar) upload() {
	url, pairs, err := t.board.Snapshot()
	if err != nil {
		dialog.ShowError(err, t.window)
		return
	}
	t.SetStatus("Saving...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()
		if err := t.client.Upload(ctx, url, pairs); err != nil {
			log.Error().Err(err).Msg("[UI] upload failed")
			t.SetStatus("Save failed: " + err.Error())
			return
		}
		t.SetStatus(fmt.Sprintf("Saved %d strokes", len(pairs)))
	}()
}

func (t *Toolbar) onStroke(_ state.Action, pairs []state.EndpointPair) {
	t.mu.Lock()
	live := t.live
	t.mu.Unlock()
	if live == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()
		results, err := live.Rank(ctx, pairs, 1)
		if err != nil {
			log.Warn().Err(err).Msg("[UI] live search failed, disabling it")
			t.mu.Lock()
			if t.live == live {
				t.live = nil
				_ = live.Close()
			}
			t.mu.Unlock()
			return
		}
		if len(results) == 0 {
			t.SetStatus("No saved sketches yet")
			return
		}
		t.SetStatus(fmt.Sprintf("Closest: %s (%.2f)", results[0].Name, results[0].Score))
	}()
}
