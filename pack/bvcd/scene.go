package bvcd

type RampPoint struct {
	Time  float32 `json:"time"`
	Value uint8   `json:"value"`
}

// Ramp is a list of scalar keyframes. Values are stored as n/255.
type Ramp []RampPoint

type Tag struct {
	Name  string `json:"name"`
	Value uint8  `json:"value"`
}

func (t Tag) Fraction() float64 { return float64(t.Value) / 255 }

// AbsoluteTag values are quantized to 1/4096.
type AbsoluteTag struct {
	Name  string `json:"name"`
	Value uint16 `json:"value"`
}

func (t AbsoluteTag) Fraction() float64 { return float64(t.Value) / 4096 }

type RelativeTag struct {
	Tag  string `json:"tag"`
	Wave string `json:"wave"`
}

type FlexSample struct {
	Time      float32      `json:"time"`
	Value     uint8        `json:"value"`
	CurveTo   Interpolator `json:"curve_to"`
	CurveFrom Interpolator `json:"curve_from"`
}

func (s FlexSample) HasCurve() bool { return s.CurveTo != 0 || s.CurveFrom != 0 }

const (
	FLEX_TRACK_ACTIVE = 1 << 0
	FLEX_TRACK_COMBO  = 1 << 1
)

type FlexTrack struct {
	Name  string  `json:"name"`
	Flags uint8   `json:"flags"`
	Min   float32 `json:"min"`
	Max   float32 `json:"max"`
	// one list, or two when the track is a combo
	Samples [][]FlexSample `json:"samples"`
}

func (t *FlexTrack) Active() bool { return t.Flags&FLEX_TRACK_ACTIVE != 0 }
func (t *FlexTrack) Combo() bool  { return t.Flags&FLEX_TRACK_COMBO != 0 }

// HasRange reports a clamp range other than the default [0,1].
func (t *FlexTrack) HasRange() bool { return t.Min != 0 || t.Max != 1 }

type CloseCaption struct {
	Type  uint8             `json:"type"`
	Token string            `json:"token"`
	Flags CloseCaptionFlags `json:"flags"`
}

func (cc *CloseCaption) TypeName() string {
	if name, ok := closeCaptionTypeNames[cc.Type]; ok {
		return name
	}
	return CC_TYPE_DEFAULT
}

const SEQUENCE_DURATION_UNSET = -1

type Event struct {
	Type   EventType `json:"type"`
	Name   string    `json:"name"`
	Start  float32   `json:"start"`
	End    float32   `json:"end"`
	Param  string    `json:"param"`
	Param2 string    `json:"param2,omitempty"`
	Param3 string    `json:"param3,omitempty"`

	Ramp             Ramp       `json:"ramp,omitempty"`
	Flags            EventFlags `json:"flags"`
	DistanceToTarget float32    `json:"distance_to_target,omitempty"`

	Tags             []Tag         `json:"tags,omitempty"`
	FlexTimingTags   []Tag         `json:"flex_timing_tags,omitempty"`
	PlaybackTimeTags []AbsoluteTag `json:"playback_time_tags,omitempty"`
	ShiftedTimeTags  []AbsoluteTag `json:"shifted_time_tags,omitempty"`

	// gesture only
	SequenceDuration float32 `json:"sequence_duration"`

	RelativeTag *RelativeTag `json:"relative_tag,omitempty"`
	FlexTracks  []*FlexTrack `json:"flex_tracks,omitempty"`

	// loop only
	LoopCount uint8 `json:"loop_count,omitempty"`
	// speak only
	CloseCaption *CloseCaption `json:"close_caption,omitempty"`
}

type Channel struct {
	Name   string   `json:"name"`
	Events []*Event `json:"events"`
	Active bool     `json:"active"`
}

type Actor struct {
	Name     string     `json:"name"`
	Channels []*Channel `json:"channels"`
	Active   bool       `json:"active"`
}

type Scene struct {
	Version  uint8    `json:"version"`
	Events   []*Event `json:"events"`
	Actors   []*Actor `json:"actors"`
	Ramp     Ramp     `json:"ramp,omitempty"`
	Warnings []error  `json:"-"`
}

// NumEvents counts top level and channel events.
func (s *Scene) NumEvents() int {
	n := len(s.Events)
	for _, a := range s.Actors {
		for _, ch := range a.Channels {
			n += len(ch.Events)
		}
	}
	return n
}
