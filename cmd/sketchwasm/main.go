//go:build js && wasm

// Command sketchwasm binds the sketch widget to the canvas of the page it is
// loaded into.
package main

import (
	"context"
	"syscall/js"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"MySketchBoard/internal/export"
	"MySketchBoard/internal/jscanvas"
	"MySketchBoard/internal/sketch"
)

const (
	canvasID     = "simple_sketch"
	saveButtonID = "saveButton"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: consoleWriter{}, NoColor: true})

	doc := js.Global().Get("document")
	host := jscanvas.NewHost(sketch.NewRegistry(nil), doc)

	w, err := host.Attach(canvasID, sketch.DefaultOptions())
	if err != nil {
		log.Error().Err(err).Msg("[JS] bind failed")
		return
	}
	host.Expose("sketch")

	client := export.NewClient(js.Global().Get("location").Get("origin").String(), 10*time.Second)
	if btn := doc.Call("getElementById", saveButtonID); !btn.IsNull() {
		save := js.FuncOf(func(this js.Value, args []js.Value) any {
			url, err := w.SaveImage()
			if err != nil {
				log.Error().Err(err).Msg("[JS] save image failed")
				return nil
			}
			pairs := w.EndpointPairs()
			// Callbacks must not block; fetch runs on the event loop.
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := client.Upload(ctx, url, pairs); err != nil {
					log.Error().Err(err).Msg("[JS] upload failed")
				}
			}()
			return nil
		})
		btn.Call("addEventListener", "click", save)
	}

	select {}
}

// consoleWriter sends log lines to the browser console.
type consoleWriter struct{}

func (consoleWriter) Write(p []byte) (int, error) {
	js.Global().Get("console").Call("log", string(p))
	return len(p), nil
}
