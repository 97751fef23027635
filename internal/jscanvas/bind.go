//go:build js && wasm

package jscanvas

import (
	"encoding/json"
	"errors"
	"fmt"
	"syscall/js"

	"github.com/rs/zerolog/log"

	"MySketchBoard/internal/sketch"
	"MySketchBoard/internal/state"
)

var _ sketch.Canvas = (*Surface)(nil)

// Host binds canvas elements of a document to sketch widgets.
type Host struct {
	registry *sketch.Registry
	doc      js.Value
	funcs    []js.Func
}

// NewHost returns a host for doc.
func NewHost(registry *sketch.Registry, doc js.Value) *Host {
	return &Host{registry: registry, doc: doc}
}

// Registry is the command registry of the bound widgets.
func (h *Host) Registry() *sketch.Registry { return h.registry }

// Attach binds the canvas with the given id, listens for pointer and touch
// events on it and, with tool links enabled, for clicks on control links.
func (h *Host) Attach(id string, opts sketch.Options) (*sketch.Widget, error) {
	el := h.doc.Call("getElementById", id)
	if el.IsNull() || el.IsUndefined() {
		return nil, &sketch.InvocationError{Command: "bind", Reason: "no element #" + id}
	}
	w, err := h.registry.Bind([]sketch.Canvas{New(el)}, opts)
	if err != nil {
		return nil, err
	}
	w.Opener = sketch.OpenerFunc(openWindow)

	onEvent := h.listen(func(e js.Value) {
		e.Call("preventDefault")
		if err := w.OnEvent(toEvent(e)); err != nil {
			log.Error().Err(err).Str("canvas", id).Msg("[JS] event failed")
		}
	})
	for _, typ := range state.EventTypes {
		el.Call("addEventListener", string(typ), onEvent)
	}

	if opts.ToolLinks {
		onClick := h.listen(func(e js.Value) {
			link := e.Get("target").Call("closest", fmt.Sprintf(`a[href="#%s"]`, id))
			if link.IsNull() || link.IsUndefined() {
				return
			}
			e.Call("preventDefault")
			if err := h.registry.Activate(toControl(link)); err != nil {
				log.Error().Err(err).Str("canvas", id).Msg("[JS] control failed")
			}
		})
		h.doc.Get("body").Call("addEventListener", "click", onClick)
	}
	if err := w.Redraw(); err != nil {
		return nil, err
	}
	return w, nil
}

// Expose installs window[name](id, command, ...args) which runs a registry
// command and returns its result as a JS value.
func (h *Host) Expose(name string) {
	fn := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) < 2 {
			return jsError(errors.New("usage: " + name + "(id, command, ...args)"))
		}
		rest := make([]string, 0, len(args)-2)
		for _, a := range args[2:] {
			rest = append(rest, a.String())
		}
		out, err := h.registry.Invoke(args[0].String(), args[1].String(), rest...)
		if err != nil {
			return jsError(err)
		}
		return toJS(out)
	})
	h.funcs = append(h.funcs, fn)
	js.Global().Set(name, fn)
}

// Release frees every listener the host created. Bound elements stop
// reacting afterwards.
func (h *Host) Release() {
	for _, fn := range h.funcs {
		fn.Release()
	}
	h.funcs = nil
}

func (h *Host) listen(fn func(e js.Value)) js.Func {
	f := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) > 0 {
			fn(args[0])
		}
		return nil
	})
	h.funcs = append(h.funcs, f)
	return f
}

func toEvent(e js.Value) sketch.Event {
	ev := sketch.Event{
		Type:  state.EventType(e.Get("type").String()),
		PageX: floatOr(e.Get("pageX")),
		PageY: floatOr(e.Get("pageY")),
	}
	if touches := e.Get("targetTouches"); !touches.IsUndefined() && !touches.IsNull() {
		for i := 0; i < touches.Length(); i++ {
			t := touches.Index(i)
			ev.Touches = append(ev.Touches, sketch.Touch{PageX: t.Get("pageX").Float(), PageY: t.Get("pageY").Float()})
		}
	}
	return ev
}

func toControl(link js.Value) sketch.Control {
	attr := func(name string) string {
		v := link.Call("getAttribute", name)
		if v.IsNull() {
			return ""
		}
		return v.String()
	}
	return sketch.Control{
		Href:     attr("href"),
		Color:    attr("data-color"),
		Size:     attr("data-size"),
		Tool:     attr("data-tool"),
		Download: attr("data-download"),
	}
}

func floatOr(v js.Value) float64 {
	if v.Type() != js.TypeNumber {
		return 0
	}
	return v.Float()
}

func openWindow(url string) error {
	if js.Global().Call("open", url).IsNull() {
		return errors.New("popup blocked")
	}
	return nil
}

func jsError(err error) js.Value {
	return js.Global().Get("Error").New(err.Error())
}

// toJS passes scalars through and sends everything else as parsed JSON.
func toJS(v any) any {
	switch v := v.(type) {
	case nil, string, float64, bool:
		return v
	}
	data, err := json.Marshal(v)
	if err != nil {
		return jsError(err)
	}
	return js.Global().Get("JSON").Call("parse", string(data))
}
