package sketch

import (
	"strings"
)

// Registry keeps the widgets bound to the canvases of a page and exposes
// them through a string command interface.
type Registry struct {
	tools   *Toolbox
	widgets map[string]*Widget
}

// NewRegistry creates a registry whose widgets share tools. A nil toolbox
// means DefaultToolbox.
func NewRegistry(tools *Toolbox) *Registry {
	if tools == nil {
		tools = DefaultToolbox()
	}
	return &Registry{tools: tools, widgets: make(map[string]*Widget)}
}

// Tools returns the shared toolbox.
func (r *Registry) Tools() *Toolbox { return r.tools }

// Bind attaches a widget to exactly one canvas. Binding a canvas twice
// returns the widget created first.
func (r *Registry) Bind(canvases []Canvas, opts Options) (*Widget, error) {
	switch {
	case len(canvases) == 0:
		return nil, &InvocationError{Reason: "no element to bind"}
	case len(canvases) > 1:
		return nil, &InvocationError{Reason: "can only be bound to one element at a time"}
	}
	c := canvases[0]
	if w, ok := r.widgets[c.ID()]; ok {
		return w, nil
	}
	if _, err := r.tools.Lookup(opts.DefaultTool); err != nil {
		return nil, err
	}
	w := NewWidget(c, r.tools, opts)
	r.widgets[c.ID()] = w
	return w, nil
}

// Widget returns the widget bound to the canvas with the given id.
func (r *Registry) Widget(id string) (*Widget, bool) {
	w, ok := r.widgets[id]
	return w, ok
}

// Invoke runs a command against the widget bound to id. Function commands
// are called with args; property commands are read without args and
// written with one.
func (r *Registry) Invoke(id, command string, args ...string) (any, error) {
	w, ok := r.widgets[id]
	if !ok {
		return nil, &InvocationError{Command: id, Reason: "no widget bound to element"}
	}

	switch command {
	case "download":
		format := ""
		if len(args) > 0 {
			format = args[0]
		}
		return w.Download(format)
	case "set":
		if len(args) != 2 {
			return nil, &InvocationError{Command: command, Reason: "expects a key and a value"}
		}
		return nil, w.Set(args[0], args[1])
	case "redraw":
		return nil, w.Redraw()
	case "startPainting":
		w.StartPainting()
		return nil, nil
	case "stopPainting":
		return nil, w.StopPainting()
	case "clear":
		return nil, w.Clear()
	case "settings":
		return w.Settings(), nil
	case "actions":
		return w.Actions(), nil
	case "triangles":
		return w.Triangles(), nil
	case "painting":
		if len(args) > 0 {
			return nil, &InvocationError{Command: command, Reason: "read-only property"}
		}
		return w.Painting(), nil
	case "tool", "color", "size":
		switch len(args) {
		case 0:
			s := w.Settings()
			switch command {
			case "tool":
				return s.Tool, nil
			case "color":
				return s.Color, nil
			default:
				return s.Size, nil
			}
		case 1:
			return args[0], w.Set(command, args[0])
		}
		return nil, &InvocationError{Command: command, Reason: "too many arguments"}
	}
	return nil, &InvocationError{Command: command, Reason: "did not recognize the given command"}
}

// Control is a link targeting a canvas by "#<id>" whose data attributes
// carry settings or a download format.
type Control struct {
	Href     string
	Color    string
	Size     string
	Tool     string
	Download string
}

// Target returns the id of the canvas the control points at.
func (c Control) Target() string {
	return strings.TrimPrefix(c.Href, "#")
}

// Activate applies a control: colour, size and tool in that order, then a
// download when one is requested. Controls aimed at canvases bound without
// tool links are ignored.
func (r *Registry) Activate(c Control) error {
	w, ok := r.widgets[c.Target()]
	if !ok {
		return &InvocationError{Command: c.Href, Reason: "no widget bound to element"}
	}
	if !w.opts.ToolLinks {
		return nil
	}
	for _, kv := range [][2]string{{"color", c.Color}, {"size", c.Size}, {"tool", c.Tool}} {
		if kv[1] == "" {
			continue
		}
		if err := w.Set(kv[0], kv[1]); err != nil {
			return err
		}
	}
	if c.Download != "" {
		if _, err := w.Download(c.Download); err != nil {
			return err
		}
	}
	return nil
}
