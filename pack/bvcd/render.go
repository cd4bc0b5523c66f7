package bvcd

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
)

const (
	HEADER_LINE = "// Choreo version 1"

	lineEnd = "\r\n"
	indent  = "  "
)

// footer carries editor settings that are not stored in the binary form
var footerLines = []string{
	"scalesettings",
	"{",
	`  "CChoreoView" "100"`,
	`  "SceneRampTool" "100"`,
	`  "ExpressionTool" "100"`,
	`  "GestureTool" "100"`,
	`  "RampTool" "100"`,
	"}",
	"fps 60",
	"snap off",
}

type renderer struct {
	buf bytes.Buffer
}

func (r *renderer) line(t string, format string, a ...interface{}) {
	r.buf.WriteString(t)
	if len(a) == 0 {
		r.buf.WriteString(format)
	} else {
		fmt.Fprintf(&r.buf, format, a...)
	}
	r.buf.WriteString(lineEnd)
}

func (r *renderer) open(t string)  { r.line(t, "{") }
func (r *renderer) close(t string) { r.line(t, "}") }

func (r *renderer) ramp(t, name string, ramp Ramp) {
	if len(ramp) == 0 {
		return
	}
	r.line(t, name)
	r.open(t)
	for _, p := range ramp {
		r.line(t+indent, "%s %s", formatFloat(float64(p.Time), 4), formatFloat(float64(p.Value)/255, 4))
	}
	r.close(t)
}

func (r *renderer) tags(t, header string, tags []Tag) {
	if len(tags) == 0 {
		return
	}
	r.line(t, header)
	r.open(t)
	for _, tag := range tags {
		r.line(t+indent, "%s %s", quote(tag.Name), formatFloat(tag.Fraction(), 6))
	}
	r.close(t)
}

func (r *renderer) absoluteTags(t, header string, tags []AbsoluteTag) {
	if len(tags) == 0 {
		return
	}
	r.line(t, header)
	r.open(t)
	for _, tag := range tags {
		r.line(t+indent, "%s %s", quote(tag.Name), formatFloat(tag.Fraction(), 6))
	}
	r.close(t)
}

func (r *renderer) flexTrack(t string, track *FlexTrack) {
	head := quote(track.Name)
	if !track.Active() {
		head += " disabled"
	}
	if track.Combo() {
		head += " combo"
	}
	if track.HasRange() {
		head += " range " + formatFloat(float64(track.Min), 1) + " " + formatFloat(float64(track.Max), 1)
	}
	r.line(t, head)

	for _, samples := range track.Samples {
		r.open(t)
		for _, s := range samples {
			if s.HasCurve() {
				r.line(t+indent, "%s %s curve_%s_to_curve_%s",
					formatFloat(float64(s.Time), 4), formatFloat(float64(s.Value)/255, 4), s.CurveFrom, s.CurveTo)
			} else {
				r.line(t+indent, "%s %s", formatFloat(float64(s.Time), 4), formatFloat(float64(s.Value)/255, 4))
			}
		}
		r.close(t)
	}
}

func (r *renderer) event(t string, e *Event) {
	in := t + indent

	r.line(t, "event %s %s", e.Type, quote(e.Name))
	r.open(t)

	r.line(in, "time %s %s", formatFloat(float64(e.Start), 6), formatFloat(float64(e.End), 6))
	r.line(in, "param %s", quote(e.Param))
	if e.Param2 != "" {
		r.line(in, "param2 %s", quote(e.Param2))
	}
	if e.Param3 != "" {
		r.line(in, "param3 %s", quote(e.Param3))
	}

	r.ramp(in, "event_ramp", e.Ramp)

	for _, name := range e.Flags.Names() {
		r.line(in, name)
	}
	if !e.Flags.Active() {
		r.line(in, "active 0")
	}

	if e.DistanceToTarget > 0 {
		r.line(in, "distancetotarget %s", formatFloat(float64(e.DistanceToTarget), 2))
	}

	r.tags(in, "tags", e.Tags)
	r.tags(in, "flextimingtags", e.FlexTimingTags)
	r.absoluteTags(in, "absolutetags playback_time", e.PlaybackTimeTags)
	r.absoluteTags(in, "absolutetags shifted_time", e.ShiftedTimeTags)

	if e.Type == EVENT_GESTURE && e.SequenceDuration != SEQUENCE_DURATION_UNSET {
		r.line(in, "sequenceduration %s", formatFloat(float64(e.SequenceDuration), 2))
	}

	if e.RelativeTag != nil {
		r.line(in, "relativetag %s %s", quote(e.RelativeTag.Tag), quote(e.RelativeTag.Wave))
	}

	if len(e.FlexTracks) != 0 {
		r.line(in, "flexanimations samples_use_time")
		r.open(in)
		for _, track := range e.FlexTracks {
			r.flexTrack(in+indent, track)
		}
		r.close(in)
	}

	if e.Type == EVENT_LOOP {
		r.line(in, `loopcount "%d"`, e.LoopCount)
	}

	if e.Type == EVENT_SPEAK && e.CloseCaption != nil {
		r.line(in, "cctype %s", quote(e.CloseCaption.TypeName()))
		r.line(in, "cctoken %s", quote(e.CloseCaption.Token))
		for _, name := range e.CloseCaption.Flags.Names() {
			r.line(in, name)
		}
	}

	r.close(t)
}

func (r *renderer) scene(s *Scene) {
	r.line("", HEADER_LINE)

	for _, e := range s.Events {
		r.event("", e)
	}

	for _, a := range s.Actors {
		r.line("", "actor %s", quote(a.Name))
		r.open("")
		for _, ch := range a.Channels {
			r.line(indent, "channel %s", quote(ch.Name))
			r.open(indent)
			for _, e := range ch.Events {
				r.event(indent+indent, e)
			}
			if !ch.Active {
				r.line(indent+indent, `active "0"`)
			}
			r.close(indent)
		}
		if !a.Active {
			r.line(indent, `active "0"`)
		}
		r.close("")
	}

	r.ramp("", "scene_ramp", s.Ramp)

	for _, l := range footerLines {
		r.line("", l)
	}
}

// formatFloat prints v with prec decimals. Non-finite values are spelled inf, -inf and nan.
func formatFloat(v float64, prec int) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// quote wraps s in double quotes as is; the text format has no escapes.
func quote(s string) string {
	return `"` + s + `"`
}

func (s *Scene) Render() string {
	var r renderer
	r.scene(s)
	return r.buf.String()
}

func (s *Scene) WriteTo(w io.Writer) (int64, error) {
	var r renderer
	r.scene(s)
	return r.buf.WriteTo(w)
}
