package bvcd

import (
	"math"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/drobotk/vsif2vcd/utils"
)

func crlf(lines ...string) string {
	return strings.Join(lines, "\r\n") + "\r\n"
}

var footerText = crlf(
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
)

func decompileOK(t *testing.T, pool *stringPool, data []byte) string {
	t.Helper()
	text, err := Decompile(pool, data)
	if err != nil {
		t.Fatalf("Decompile: %v", err)
	}
	return text
}

func expectStructural(t *testing.T, err error, cause error) *StructuralError {
	t.Helper()
	var serr *StructuralError
	if !errors.As(err, &serr) {
		t.Fatalf("expected StructuralError, got %v", err)
	}
	if cause != nil && !errors.Is(err, cause) {
		t.Fatalf("expected %v inside %v", cause, err)
	}
	return serr
}

func TestDecompileEmptyScene(t *testing.T) {
	pool := newStringPool()
	data := []byte{'b', 'v', 'c', 'd', 4, 0, 0, 0, 0, 0, 0, 0}

	text := decompileOK(t, pool, data)
	if want := crlf(HEADER_LINE) + footerText; text != want {
		t.Errorf("got:\n%s\nwant:\n%s", text, want)
	}
}

func TestRamp(t *testing.T) {
	pool := newStringPool()

	empty := encodeScene(pool, &Scene{})
	if text := decompileOK(t, pool, empty); strings.Contains(text, "scene_ramp") {
		t.Errorf("zero ramp rendered:\n%s", text)
	}

	values := []uint8{0, 1, 51, 128, 254, 255}
	ramp := make(Ramp, len(values))
	for i, v := range values {
		ramp[i] = RampPoint{Time: float32(i) * 0.5, Value: v}
	}
	text := decompileOK(t, pool, encodeScene(pool, &Scene{Ramp: ramp}))

	want := crlf(HEADER_LINE,
		"scene_ramp",
		"{",
		"  0.0000 0.0000",
		"  0.5000 0.0039",
		"  1.0000 0.2000",
		"  1.5000 0.5020",
		"  2.0000 0.9961",
		"  2.5000 1.0000",
		"}") + footerText
	if text != want {
		t.Errorf("got:\n%s\nwant:\n%s", text, want)
	}
}

func TestEventTypeOutOfRange(t *testing.T) {
	pool := newStringPool()
	for _, kind := range []uint8{17, 18, 0xff} {
		w := newRecordWriter(pool, VERSION)
		w.u8(1)
		w.u8(kind)
		w.Write(make([]byte, 64))

		_, err := Decompile(pool, w.Bytes())
		serr := expectStructural(t, err, ErrBadIndex)
		if serr.Offset != 10 {
			t.Errorf("kind %d: offset 0x%x, expected 0xa", kind, serr.Offset)
		}
	}

	// 16 is the last valid kind
	w := newRecordWriter(pool, VERSION)
	w.u8(1)
	w.event(activeEvent(EVENT_GENERIC, "g"))
	w.u8(0)
	w.u8(0)
	if text := decompileOK(t, pool, w.Bytes()); !strings.Contains(text, `event generic "g"`) {
		t.Errorf("generic event missing:\n%s", text)
	}
}

func TestGestureEvent(t *testing.T) {
	pool := newStringPool()
	e := &Event{
		Type:   EVENT_GESTURE,
		Name:   "wave",
		Start:  0.25,
		End:    1.5,
		Param:  "gestures/wave",
		Param2: "p2",
		Ramp: Ramp{
			{Time: 0.5, Value: 255},
			{Time: 1.25, Value: 0},
		},
		Flags:            0x01 | 0x20,
		DistanceToTarget: 12.5,
		Tags:             []Tag{{Name: "apex", Value: 128}},
		FlexTimingTags:   []Tag{{Name: "loop", Value: 51}},
		PlaybackTimeTags: []AbsoluteTag{{Name: "start", Value: 2048}},
		ShiftedTimeTags:  []AbsoluteTag{{Name: "end", Value: 4096}},
		SequenceDuration: 2.25,
		RelativeTag:      &RelativeTag{Tag: "speech", Wave: "line01"},
		FlexTracks: []*FlexTrack{
			{
				Name:  "jaw",
				Flags: FLEX_TRACK_COMBO,
				Min:   0,
				Max:   2,
				Samples: [][]FlexSample{
					{
						{Time: 0, Value: 0},
						{Time: 0.5, Value: 255, CurveTo: 15, CurveFrom: 2},
					},
					{},
				},
			},
			{
				Name:    "smile",
				Flags:   FLEX_TRACK_ACTIVE,
				Min:     0,
				Max:     1,
				Samples: [][]FlexSample{{{Time: 1, Value: 51}}},
			},
		},
	}

	text := decompileOK(t, pool, encodeScene(pool, &Scene{Events: []*Event{e}}))

	want := crlf(HEADER_LINE,
		`event gesture "wave"`,
		`{`,
		`  time 0.250000 1.500000`,
		`  param "gestures/wave"`,
		`  param2 "p2"`,
		`  event_ramp`,
		`  {`,
		`    0.5000 1.0000`,
		`    1.2500 0.0000`,
		`  }`,
		`  resumecondition`,
		`  playoverscript`,
		`  active 0`,
		`  distancetotarget 12.50`,
		`  tags`,
		`  {`,
		`    "apex" 0.501961`,
		`  }`,
		`  flextimingtags`,
		`  {`,
		`    "loop" 0.200000`,
		`  }`,
		`  absolutetags playback_time`,
		`  {`,
		`    "start" 0.500000`,
		`  }`,
		`  absolutetags shifted_time`,
		`  {`,
		`    "end" 1.000000`,
		`  }`,
		`  sequenceduration 2.25`,
		`  relativetag "speech" "line01"`,
		`  flexanimations samples_use_time`,
		`  {`,
		`    "jaw" disabled combo range 0.0 2.0`,
		`    {`,
		`      0.0000 0.0000`,
		`      0.5000 1.0000 curve_easein_to_curve_hold`,
		`    }`,
		`    {`,
		`    }`,
		`    "smile"`,
		`    {`,
		`      1.0000 0.2000`,
		`    }`,
		`  }`,
		`}`) + footerText

	if text != want {
		t.Errorf("got:\n%s\nwant:\n%s", text, want)
	}
}

func TestGestureSequenceDurationUnset(t *testing.T) {
	pool := newStringPool()
	e := activeEvent(EVENT_GESTURE, "idle")
	text := decompileOK(t, pool, encodeScene(pool, &Scene{Events: []*Event{e}}))
	if strings.Contains(text, "sequenceduration") {
		t.Errorf("unset sequence duration rendered:\n%s", text)
	}
}

func TestEventFlags(t *testing.T) {
	for _, test := range []struct {
		flags EventFlags
		lines []string
	}{
		{0x00, []string{"active 0"}},
		{0x08, nil},
		{0x3f, []string{"resumecondition", "lockbodyfacing", "fixedlength", "forceshortmovement", "playoverscript"}},
		{0x17, []string{"resumecondition", "lockbodyfacing", "fixedlength", "forceshortmovement", "active 0"}},
	} {
		pool := newStringPool()
		e := activeEvent(EVENT_EXPRESSION, "e")
		e.Flags = test.flags
		text := decompileOK(t, pool, encodeScene(pool, &Scene{Events: []*Event{e}}))

		var got []string
		for _, l := range strings.Split(text, "\r\n") {
			switch strings.TrimSpace(l) {
			case "resumecondition", "lockbodyfacing", "fixedlength", "forceshortmovement", "playoverscript", "active 0":
				got = append(got, strings.TrimSpace(l))
			}
		}
		if strings.Join(got, ",") != strings.Join(test.lines, ",") {
			t.Errorf("flags 0x%x: got %v, want %v", test.flags, got, test.lines)
		}
	}
}

func TestSpeakEvent(t *testing.T) {
	for _, test := range []struct {
		ccType uint8
		name   string
	}{{0, "cc_master"}, {1, "cc_slave"}, {2, "cc_disabled"}, {99, "cc_master"}} {
		pool := newStringPool()
		e := activeEvent(EVENT_SPEAK, "line")
		e.Param = "Alyx.Hello"
		e.CloseCaption = &CloseCaption{Type: test.ccType, Token: "Alyx.Hello", Flags: 0x5}

		text := decompileOK(t, pool, encodeScene(pool, &Scene{Events: []*Event{e}}))
		want := crlf(
			`  cctype "`+test.name+`"`,
			`  cctoken "Alyx.Hello"`,
			`  cc_usingcombinedfile`,
			`  cc_noattenuate`,
			`}`)
		if !strings.Contains(text, want) {
			t.Errorf("cc type %d: missing\n%s\nin\n%s", test.ccType, want, text)
		}
	}
}

func TestLoopEvent(t *testing.T) {
	pool := newStringPool()
	e := activeEvent(EVENT_LOOP, "again")
	e.LoopCount = 3
	text := decompileOK(t, pool, encodeScene(pool, &Scene{Events: []*Event{e}}))
	if !strings.Contains(text, crlf(`  loopcount "3"`, `}`)) {
		t.Errorf("loop count missing:\n%s", text)
	}
}

func TestNonFiniteTimes(t *testing.T) {
	pool := newStringPool()
	e := activeEvent(EVENT_EXPRESSION, "e")
	e.Start = float32(math.Inf(1))
	e.End = float32(math.NaN())
	e.DistanceToTarget = float32(math.Inf(1))
	e.Ramp = Ramp{{Time: float32(math.Inf(-1)), Value: 255}}

	text := decompileOK(t, pool, encodeScene(pool, &Scene{Events: []*Event{e}}))
	for _, want := range []string{
		crlf("  time inf nan"),
		crlf("    -inf 1.0000"),
		crlf("  distancetotarget inf"),
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in\n%s", want, text)
		}
	}
}

func TestFormatFloat(t *testing.T) {
	for _, test := range []struct {
		v    float64
		prec int
		out  string
	}{
		{0.5, 4, "0.5000"},
		{-1, 1, "-1.0"},
		{1.0 / 3, 6, "0.333333"},
		{math.Inf(1), 6, "inf"},
		{math.Inf(-1), 2, "-inf"},
		{math.NaN(), 4, "nan"},
	} {
		if s := formatFloat(test.v, test.prec); s != test.out {
			t.Errorf("formatFloat(%v,%d)=%q; expected %q", test.v, test.prec, s, test.out)
		}
	}
}

func TestAbsoluteTagQuantization(t *testing.T) {
	pool := newStringPool()
	e := activeEvent(EVENT_SPEAK, "s")
	e.CloseCaption = &CloseCaption{}
	e.PlaybackTimeTags = []AbsoluteTag{{Name: "a", Value: 0}, {Name: "b", Value: 4096}, {Name: "c", Value: 1}}

	s, err := Decode(pool, encodeScene(pool, &Scene{Events: []*Event{e}}))
	if err != nil {
		t.Fatal(err)
	}
	tags := s.Events[0].PlaybackTimeTags
	if tags[0].Fraction() != 0.0 || tags[1].Fraction() != 1.0 {
		t.Errorf("fractions %v %v", tags[0].Fraction(), tags[1].Fraction())
	}

	text := s.Render()
	want := crlf(
		`  absolutetags playback_time`,
		`  {`,
		`    "a" 0.000000`,
		`    "b" 1.000000`,
		`    "c" 0.000244`,
		`  }`)
	if !strings.Contains(text, want) {
		t.Errorf("missing\n%s\nin\n%s", want, text)
	}
}

func TestFlexRange(t *testing.T) {
	for _, test := range []struct {
		min, max float32
		suffix   string
	}{
		{0, 1, ""},
		{0, 2, " range 0.0 2.0"},
		{-1, 1, " range -1.0 1.0"},
		{0.5, 1, " range 0.5 1.0"},
	} {
		pool := newStringPool()
		e := activeEvent(EVENT_FLEXANIMATION, "f")
		e.FlexTracks = []*FlexTrack{{Name: "t", Flags: FLEX_TRACK_ACTIVE, Min: test.min, Max: test.max, Samples: [][]FlexSample{{}}}}
		text := decompileOK(t, pool, encodeScene(pool, &Scene{Events: []*Event{e}}))
		if !strings.Contains(text, "\r\n    \"t\""+test.suffix+"\r\n") {
			t.Errorf("range (%v,%v): expected suffix %q in\n%s", test.min, test.max, test.suffix, text)
		}
	}
}

func TestFlexInterpolatorOutOfRange(t *testing.T) {
	pool := newStringPool()
	e := activeEvent(EVENT_FLEXANIMATION, "f")
	e.FlexTracks = []*FlexTrack{{
		Name: "t", Flags: FLEX_TRACK_ACTIVE, Max: 1,
		Samples: [][]FlexSample{{{Time: 0, Value: 0, CurveTo: 16}}},
	}}
	_, err := Decompile(pool, encodeScene(pool, &Scene{Events: []*Event{e}}))
	expectStructural(t, err, ErrBadIndex)
}

func TestActorsAndChannels(t *testing.T) {
	pool := newStringPool()
	scene := &Scene{
		Actors: []*Actor{
			{
				Name:   "Alyx",
				Active: true,
				Channels: []*Channel{
					{Name: "Audio", Active: false, Events: []*Event{activeEvent(EVENT_SEQUENCE, "nod")}},
					{Name: "Empty", Active: true},
				},
			},
			{Name: "Barney", Active: false},
		},
	}

	text := decompileOK(t, pool, encodeScene(pool, scene))
	want := crlf(HEADER_LINE,
		`actor "Alyx"`,
		`{`,
		`  channel "Audio"`,
		`  {`,
		`    event sequence "nod"`,
		`    {`,
		`      time 0.000000 1.000000`,
		`      param ""`,
		`    }`,
		`    active "0"`,
		`  }`,
		`  channel "Empty"`,
		`  {`,
		`  }`,
		`}`,
		`actor "Barney"`,
		`{`,
		`  active "0"`,
		`}`) + footerText
	if text != want {
		t.Errorf("got:\n%s\nwant:\n%s", text, want)
	}
}

func TestBadMagic(t *testing.T) {
	pool := newStringPool()
	data := encodeScene(pool, &Scene{})
	data[0] = 'x'
	_, err := Decompile(pool, data)
	if serr := expectStructural(t, err, ErrBadMagic); serr.Offset != 0 {
		t.Errorf("offset %d", serr.Offset)
	}

	_, err = Decompile(pool, []byte("bv"))
	expectStructural(t, err, utils.ErrOutOfBounds)
}

func TestVersionWarning(t *testing.T) {
	pool := newStringPool()
	w := newRecordWriter(pool, 3)
	w.scene(&Scene{})

	s, err := Decode(pool, w.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Warnings) != 1 {
		t.Fatalf("warnings %v", s.Warnings)
	}
	var fw *FormatWarning
	if !errors.As(s.Warnings[0], &fw) || fw.Version != 3 {
		t.Errorf("warning %v", s.Warnings[0])
	}
	if text := s.Render(); text != crlf(HEADER_LINE)+footerText {
		t.Errorf("got:\n%s", text)
	}
}

func TestTruncatedRecord(t *testing.T) {
	pool := newStringPool()
	e := activeEvent(EVENT_SPEAK, "line")
	e.Ramp = Ramp{{Time: 1, Value: 2}}
	e.Tags = []Tag{{Name: "x", Value: 3}}
	e.CloseCaption = &CloseCaption{Token: "tok"}
	e.FlexTracks = []*FlexTrack{{Name: "jaw", Flags: 3, Max: 1, Samples: [][]FlexSample{{{Time: 0.1, Value: 9}}, {}}}}
	data := encodeScene(pool, &Scene{
		Events: []*Event{e},
		Actors: []*Actor{{Name: "a", Channels: []*Channel{{Name: "c"}}}},
		Ramp:   Ramp{{Time: 2, Value: 100}},
	})

	decompileOK(t, pool, data)
	for n := 0; n < len(data); n++ {
		text, err := Decompile(pool, data[:n])
		if text != "" {
			t.Fatalf("prefix %d: partial text returned", n)
		}
		var serr *StructuralError
		if !errors.As(err, &serr) {
			t.Fatalf("prefix %d: expected StructuralError, got %v", n, err)
		}
	}
}

func TestRampCountPastEnd(t *testing.T) {
	pool := newStringPool()
	w := newRecordWriter(pool, VERSION)
	w.u8(0)
	w.u8(0)
	// three points promised, one present
	w.u8(3)
	w.f32(1)
	w.u8(1)

	_, err := Decompile(pool, w.Bytes())
	serr := expectStructural(t, err, utils.ErrOutOfBounds)
	if serr.Offset != 12 {
		t.Errorf("offset 0x%x, expected 0xc", serr.Offset)
	}
}

func TestBadStringIndex(t *testing.T) {
	pool := newStringPool()
	w := newRecordWriter(pool, VERSION)
	w.u8(0)
	w.u8(1)
	w.i16(42)

	_, err := Decompile(pool, w.Bytes())
	if serr := expectStructural(t, err, nil); serr.Offset != 11 {
		t.Errorf("offset 0x%x, expected 0xb", serr.Offset)
	}
}

func TestDecodeModel(t *testing.T) {
	pool := newStringPool()
	e := activeEvent(EVENT_FLEXANIMATION, "f")
	e.FlexTracks = []*FlexTrack{{Name: "jaw", Flags: 3, Max: 1, Samples: [][]FlexSample{{{Time: 0.1, Value: 9, CurveTo: 1}}, {}}}}
	s, err := Decode(pool, encodeScene(pool, &Scene{Events: []*Event{e}, Ramp: Ramp{{Time: 2, Value: 100}}}))
	if err != nil {
		t.Fatal(err)
	}

	if s.Version != VERSION || len(s.Events) != 1 || len(s.Actors) != 0 || len(s.Ramp) != 1 {
		t.Fatalf("scene %+v", s)
	}
	got := s.Events[0]
	if got.Type != EVENT_FLEXANIMATION || got.Name != "f" || !got.Flags.Active() {
		t.Errorf("event %+v", got)
	}
	track := got.FlexTracks[0]
	if !track.Active() || !track.Combo() || track.HasRange() || len(track.Samples) != 2 {
		t.Errorf("track %+v", track)
	}
	if s := track.Samples[0][0]; s.CurveTo != 1 || s.CurveFrom != 0 || !s.HasCurve() {
		t.Errorf("sample %+v", s)
	}
}
