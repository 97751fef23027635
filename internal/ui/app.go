package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"github.com/rs/zerolog/log"

	"MySketchBoard/internal/config"
	"MySketchBoard/internal/export"
	lnet "MySketchBoard/internal/net"
	"MySketchBoard/internal/raster"
	"MySketchBoard/internal/sketch"
)

// Options turns the canvas section of the config into sketch options.
func Options(c config.Canvas) sketch.Options {
	opts := sketch.DefaultOptions()
	if c.Tool != "" {
		opts.DefaultTool = c.Tool
	}
	if c.Color != "" {
		opts.DefaultColor = c.Color
	}
	if c.Size > 0 {
		opts.DefaultSize = c.Size
	}
	opts.Triangles = c.Triangles
	return opts
}

// RunApp opens the board window and blocks until it is closed.
func RunApp(cfg config.Config) error {
	myApp := app.NewWithID("io.sketchboard.desktop")
	myWindow := myApp.NewWindow("Sketch Board")
	myWindow.Resize(fyne.NewSize(float32(cfg.Canvas.Width)+40, float32(cfg.Canvas.Height)+80))

	board, err := NewBoardWidget(Options(cfg.Canvas), cfg.Canvas.Width, cfg.Canvas.Height)
	if err != nil {
		return fmt.Errorf("ui: create board: %w", err)
	}
	board.SetOpener(&fileOpener{window: myWindow})

	endpoint := cfg.Client.Endpoint
	if cfg.MDNS.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if found, err := lnet.Discover(ctx, 2*time.Second); err == nil {
			endpoint = found
		} else {
			log.Warn().Err(err).Str("endpoint", endpoint).Msg("[UI] no server discovered, using configured endpoint")
		}
		cancel()
	}
	toolbar := NewToolbar(board, myWindow, export.NewClient(endpoint, cfg.Client.Timeout), cfg.Client.Timeout)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Client.Timeout)
		defer cancel()
		live, err := export.DialLiveSearch(ctx, endpoint)
		if err != nil {
			log.Info().Err(err).Msg("[UI] live search unavailable")
			return
		}
		toolbar.SetLiveSearch(live)
		toolbar.SetStatus("Connected to " + endpoint)
	}()

	content := container.NewBorder(toolbar.Object(), nil, nil, nil, container.NewCenter(board))
	myWindow.SetContent(content)
	myWindow.ShowAndRun()
	toolbar.SetLiveSearch(nil)
	return nil
}

// fileOpener saves downloads to a file the user picks.
type fileOpener struct {
	window fyne.Window
}

func (o *fileOpener) Open(url string) error {
	mime, data, err := raster.DecodeDataURL(url)
	if err != nil {
		return err
	}
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()
		if _, err := writer.Write(data); err != nil {
			dialog.ShowError(err, o.window)
			return
		}
		log.Info().Str("file", writer.URI().Path()).Str("mime", mime).Msg("[UI] download saved")
	}, o.window)
	fd.SetFileName("sketch." + strings.TrimPrefix(mime, "image/"))
	fd.Show()
	return nil
}
