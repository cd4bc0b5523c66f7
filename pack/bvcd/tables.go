package bvcd

type EventType uint8

const (
	EVENT_UNSPECIFIED EventType = iota
	EVENT_SECTION
	EVENT_EXPRESSION
	EVENT_LOOKAT
	EVENT_MOVETO
	EVENT_SPEAK
	EVENT_GESTURE
	EVENT_SEQUENCE
	EVENT_FACE
	EVENT_FIRETRIGGER
	EVENT_FLEXANIMATION
	EVENT_SUBSCENE
	EVENT_LOOP
	EVENT_INTERRUPT
	EVENT_STOPPOINT
	EVENT_PERMITRESPONSES
	EVENT_GENERIC
)

var eventTypeNames = [...]string{
	"unspecified",
	"section",
	"expression",
	"lookat",
	"moveto",
	"speak",
	"gesture",
	"sequence",
	"face",
	"firetrigger",
	"flexanimation",
	"subscene",
	"loop",
	"interrupt",
	"stoppoint",
	"permitresponses",
	"generic",
}

func (t EventType) Valid() bool { return int(t) < len(eventTypeNames) }

func (t EventType) String() string {
	if !t.Valid() {
		return "invalid"
	}
	return eventTypeNames[t]
}

func (t EventType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

type flagName struct {
	bit  uint8
	name string
}

const EVENT_FLAG_ACTIVE = 1 << 3

// order matters, flags are printed in table order
var eventFlagNames = [...]flagName{
	{1 << 0, "resumecondition"},
	{1 << 1, "lockbodyfacing"},
	{1 << 2, "fixedlength"},
	{1 << 4, "forceshortmovement"},
	{1 << 5, "playoverscript"},
}

type EventFlags uint8

func (f EventFlags) Active() bool { return f&EVENT_FLAG_ACTIVE != 0 }

// Names lists the named bits that are set. The active bit has no name.
func (f EventFlags) Names() []string {
	return flagNames(uint8(f), eventFlagNames[:])
}

var closeCaptionTypeNames = map[uint8]string{
	1: "cc_slave",
	2: "cc_disabled",
}

const CC_TYPE_DEFAULT = "cc_master"

var closeCaptionFlagNames = [...]flagName{
	{1 << 0, "cc_usingcombinedfile"},
	{1 << 1, "cc_combinedusesgender"},
	{1 << 2, "cc_noattenuate"},
}

type CloseCaptionFlags uint8

func (f CloseCaptionFlags) Names() []string {
	return flagNames(uint8(f), closeCaptionFlagNames[:])
}

var interpolatorNames = [...]string{
	"default",
	"catmullrom_normalize_x",
	"easein",
	"easeout",
	"easeinout",
	"bspline",
	"linear_interp",
	"kochanek",
	"kochanek_early",
	"kochanek_late",
	"simple_cubic",
	"catmullrom",
	"catmullrom_normalize",
	"catmullrom_tangent",
	"exponential_decay",
	"hold",
}

type Interpolator uint8

func (i Interpolator) Valid() bool { return int(i) < len(interpolatorNames) }

func (i Interpolator) String() string {
	if !i.Valid() {
		return "invalid"
	}
	return interpolatorNames[i]
}

func (i Interpolator) MarshalText() ([]byte, error) { return []byte(i.String()), nil }

func flagNames(v uint8, table []flagName) []string {
	names := make([]string, 0, len(table))
	for _, f := range table {
		if v&f.bit != 0 {
			names = append(names, f.name)
		}
	}
	return names
}
