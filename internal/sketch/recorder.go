package sketch

import (
	"encoding/base64"
	"fmt"
)

// Command is one recorded surface call.
type Command struct {
	Op   string
	Args []any
}

func (c Command) String() string {
	return fmt.Sprint(c.Op, c.Args)
}

// Recorder is a Canvas that records the calls made since the last Reset
// instead of rasterising them.
type Recorder struct {
	Name          string
	OffsetX       float64
	OffsetY       float64
	Width, Height float64
	Resets        int
	cmds          []Command
	composite     string
}

// NewRecorder returns a recorder of the given size placed at the page origin.
func NewRecorder(id string, width, height float64) *Recorder {
	return &Recorder{Name: id, Width: width, Height: height, composite: CompositeSourceOver}
}

func (r *Recorder) record(op string, args ...any) {
	r.cmds = append(r.cmds, Command{Op: op, Args: args})
}

// Commands returns the calls recorded since the last Reset.
func (r *Recorder) Commands() []Command {
	return append([]Command(nil), r.cmds...)
}

// Ops returns the command names recorded since the last Reset.
func (r *Recorder) Ops() []string {
	ops := make([]string, len(r.cmds))
	for i, c := range r.cmds {
		ops[i] = c.Op
	}
	return ops
}

func (r *Recorder) ID() string                  { return r.Name }
func (r *Recorder) Offset() (float64, float64)  { return r.OffsetX, r.OffsetY }
func (r *Recorder) Size() (float64, float64)    { return r.Width, r.Height }
func (r *Recorder) CompositeOperation() string  { return r.composite }
func (r *Recorder) BeginPath()                  { r.record("beginPath") }
func (r *Recorder) MoveTo(x, y float64)         { r.record("moveTo", x, y) }
func (r *Recorder) LineTo(x, y float64)         { r.record("lineTo", x, y) }
func (r *Recorder) ClosePath()                  { r.record("closePath") }
func (r *Recorder) Stroke()                     { r.record("stroke") }
func (r *Recorder) Fill()                       { r.record("fill") }
func (r *Recorder) SetStrokeStyle(color string) { r.record("strokeStyle", color) }
func (r *Recorder) SetFillStyle(color string)   { r.record("fillStyle", color) }
func (r *Recorder) SetLineWidth(width float64)  { r.record("lineWidth", width) }
func (r *Recorder) SetLineJoin(join string)     { r.record("lineJoin", join) }
func (r *Recorder) SetLineCap(lineCap string)   { r.record("lineCap", lineCap) }
func (r *Recorder) FillRect(x, y, w, h float64) { r.record("fillRect", x, y, w, h) }

func (r *Recorder) Reset() {
	r.Resets++
	r.cmds = nil
	r.composite = CompositeSourceOver
}

func (r *Recorder) SetCompositeOperation(op string) {
	r.composite = op
	r.record("globalCompositeOperation", op)
}

// DataURL encodes the recorded command list instead of pixels.
func (r *Recorder) DataURL(mime string) (string, error) {
	var payload []byte
	for _, c := range r.cmds {
		payload = append(payload, c.String()...)
		payload = append(payload, '\n')
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(payload), nil
}
