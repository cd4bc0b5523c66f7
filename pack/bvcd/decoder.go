package bvcd

import (
	"github.com/pkg/errors"

	"github.com/drobotk/vsif2vcd/utils"
)

const (
	MAGIC   = "bvcd"
	VERSION = 4

	rampPointSize   = 4 + 1
	tagSize         = 2 + 1
	absoluteTagSize = 2 + 2
	flexSampleSize  = 4 + 1 + 1 + 1
)

// StringTable resolves string pool indices stored in records.
type StringTable interface {
	String(index int16) (string, error)
}

// decoder walks a record front to back exactly once.
type decoder struct {
	c    *utils.Cursor
	strs StringTable
}

func (d *decoder) structural(offset int, err error) error {
	return &StructuralError{Offset: offset, Err: err}
}

func (d *decoder) u8() (uint8, error) {
	v, err := d.c.ReadU8()
	if err != nil {
		return 0, d.structural(d.c.Pos(), err)
	}
	return v, nil
}

func (d *decoder) u16() (uint16, error) {
	v, err := d.c.ReadLU16()
	if err != nil {
		return 0, d.structural(d.c.Pos(), err)
	}
	return v, nil
}

func (d *decoder) f32() (float32, error) {
	v, err := d.c.ReadLF()
	if err != nil {
		return 0, d.structural(d.c.Pos(), err)
	}
	return v, nil
}

func (d *decoder) str() (string, error) {
	offset := d.c.Pos()
	idx, err := d.c.ReadLI16()
	if err != nil {
		return "", d.structural(offset, err)
	}
	s, err := d.strs.String(idx)
	if err != nil {
		return "", d.structural(offset, err)
	}
	return s, nil
}

// ensure rejects counts that cannot fit in the rest of the record
func (d *decoder) ensure(count, itemSize int, what string) error {
	if err := d.c.Ensure(count * itemSize); err != nil {
		return d.structural(d.c.Pos(), errors.Wrapf(err, "%d %s", count, what))
	}
	return nil
}

func (d *decoder) ramp() (Ramp, error) {
	count, err := d.u8()
	if err != nil || count == 0 {
		return nil, err
	}
	if err := d.ensure(int(count), rampPointSize, "ramp points"); err != nil {
		return nil, err
	}

	ramp := make(Ramp, count)
	for i := range ramp {
		if ramp[i].Time, err = d.f32(); err != nil {
			return nil, err
		}
		if ramp[i].Value, err = d.u8(); err != nil {
			return nil, err
		}
	}
	return ramp, nil
}

func (d *decoder) tags() ([]Tag, error) {
	count, err := d.u8()
	if err != nil || count == 0 {
		return nil, err
	}
	if err := d.ensure(int(count), tagSize, "tags"); err != nil {
		return nil, err
	}

	tags := make([]Tag, count)
	for i := range tags {
		if tags[i].Name, err = d.str(); err != nil {
			return nil, err
		}
		if tags[i].Value, err = d.u8(); err != nil {
			return nil, err
		}
	}
	return tags, nil
}

func (d *decoder) absoluteTags() ([]AbsoluteTag, error) {
	count, err := d.u8()
	if err != nil || count == 0 {
		return nil, err
	}
	if err := d.ensure(int(count), absoluteTagSize, "absolute tags"); err != nil {
		return nil, err
	}

	tags := make([]AbsoluteTag, count)
	for i := range tags {
		if tags[i].Name, err = d.str(); err != nil {
			return nil, err
		}
		if tags[i].Value, err = d.u16(); err != nil {
			return nil, err
		}
	}
	return tags, nil
}

func (d *decoder) interpolator() (Interpolator, error) {
	offset := d.c.Pos()
	v, err := d.u8()
	if err != nil {
		return 0, err
	}
	if i := Interpolator(v); !i.Valid() {
		return 0, d.structural(offset, errors.Wrapf(ErrBadIndex, "interpolator %d", v))
	} else {
		return i, nil
	}
}

func (d *decoder) flexSamples() ([]FlexSample, error) {
	count, err := d.u16()
	if err != nil {
		return nil, err
	}
	if err := d.ensure(int(count), flexSampleSize, "flex samples"); err != nil {
		return nil, err
	}

	samples := make([]FlexSample, count)
	for i := range samples {
		s := &samples[i]
		if s.Time, err = d.f32(); err != nil {
			return nil, err
		}
		if s.Value, err = d.u8(); err != nil {
			return nil, err
		}
		if s.CurveTo, err = d.interpolator(); err != nil {
			return nil, err
		}
		if s.CurveFrom, err = d.interpolator(); err != nil {
			return nil, err
		}
	}
	return samples, nil
}

func (d *decoder) flexTrack() (*FlexTrack, error) {
	t := &FlexTrack{}
	var err error
	if t.Name, err = d.str(); err != nil {
		return nil, err
	}
	if t.Flags, err = d.u8(); err != nil {
		return nil, err
	}
	if t.Min, err = d.f32(); err != nil {
		return nil, err
	}
	if t.Max, err = d.f32(); err != nil {
		return nil, err
	}

	lists := 1
	if t.Combo() {
		lists = 2
	}
	t.Samples = make([][]FlexSample, lists)
	for i := range t.Samples {
		if t.Samples[i], err = d.flexSamples(); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (d *decoder) closeCaption() (*CloseCaption, error) {
	cc := &CloseCaption{}
	var err error
	if cc.Type, err = d.u8(); err != nil {
		return nil, err
	}
	if cc.Token, err = d.str(); err != nil {
		return nil, err
	}
	flags, err := d.u8()
	if err != nil {
		return nil, err
	}
	cc.Flags = CloseCaptionFlags(flags)
	return cc, nil
}

func (d *decoder) event() (*Event, error) {
	offset := d.c.Pos()
	kind, err := d.u8()
	if err != nil {
		return nil, err
	}
	e := &Event{Type: EventType(kind), SequenceDuration: SEQUENCE_DURATION_UNSET}
	if !e.Type.Valid() {
		return nil, d.structural(offset, errors.Wrapf(ErrBadIndex, "event type %d", kind))
	}

	if e.Name, err = d.str(); err != nil {
		return nil, err
	}
	if e.Start, err = d.f32(); err != nil {
		return nil, err
	}
	if e.End, err = d.f32(); err != nil {
		return nil, err
	}
	if e.Param, err = d.str(); err != nil {
		return nil, err
	}
	if e.Param2, err = d.str(); err != nil {
		return nil, err
	}
	if e.Param3, err = d.str(); err != nil {
		return nil, err
	}
	if e.Ramp, err = d.ramp(); err != nil {
		return nil, err
	}

	flags, err := d.u8()
	if err != nil {
		return nil, err
	}
	e.Flags = EventFlags(flags)

	if e.DistanceToTarget, err = d.f32(); err != nil {
		return nil, err
	}

	if e.Tags, err = d.tags(); err != nil {
		return nil, err
	}
	if e.FlexTimingTags, err = d.tags(); err != nil {
		return nil, err
	}
	if e.PlaybackTimeTags, err = d.absoluteTags(); err != nil {
		return nil, err
	}
	if e.ShiftedTimeTags, err = d.absoluteTags(); err != nil {
		return nil, err
	}

	if e.Type == EVENT_GESTURE {
		if e.SequenceDuration, err = d.f32(); err != nil {
			return nil, err
		}
	}

	usingRelativeTag, err := d.u8()
	if err != nil {
		return nil, err
	}
	if usingRelativeTag == 1 {
		rt := &RelativeTag{}
		if rt.Tag, err = d.str(); err != nil {
			return nil, err
		}
		if rt.Wave, err = d.str(); err != nil {
			return nil, err
		}
		e.RelativeTag = rt
	}

	numTracks, err := d.u8()
	if err != nil {
		return nil, err
	}
	if numTracks != 0 {
		e.FlexTracks = make([]*FlexTrack, numTracks)
		for i := range e.FlexTracks {
			if e.FlexTracks[i], err = d.flexTrack(); err != nil {
				return nil, err
			}
		}
	}

	switch e.Type {
	case EVENT_LOOP:
		if e.LoopCount, err = d.u8(); err != nil {
			return nil, err
		}
	case EVENT_SPEAK:
		if e.CloseCaption, err = d.closeCaption(); err != nil {
			return nil, err
		}
	}

	return e, nil
}

func (d *decoder) events() ([]*Event, error) {
	count, err := d.u8()
	if err != nil {
		return nil, err
	}
	events := make([]*Event, count)
	for i := range events {
		if events[i], err = d.event(); err != nil {
			return nil, err
		}
	}
	return events, nil
}

func (d *decoder) channel() (*Channel, error) {
	ch := &Channel{}
	var err error
	if ch.Name, err = d.str(); err != nil {
		return nil, err
	}
	if ch.Events, err = d.events(); err != nil {
		return nil, err
	}
	active, err := d.u8()
	if err != nil {
		return nil, err
	}
	ch.Active = active != 0
	return ch, nil
}

func (d *decoder) actor() (*Actor, error) {
	a := &Actor{}
	var err error
	if a.Name, err = d.str(); err != nil {
		return nil, err
	}
	utils.LogDebugf("[bvcd] actor %q", a.Name)

	numChannels, err := d.u8()
	if err != nil {
		return nil, err
	}
	a.Channels = make([]*Channel, numChannels)
	for i := range a.Channels {
		if a.Channels[i], err = d.channel(); err != nil {
			return nil, err
		}
	}

	active, err := d.u8()
	if err != nil {
		return nil, err
	}
	a.Active = active != 0
	return a, nil
}

func (d *decoder) scene() (*Scene, error) {
	magic, err := d.c.Read(len(MAGIC))
	if err != nil {
		return nil, d.structural(0, err)
	}
	if string(magic) != MAGIC {
		return nil, d.structural(0, errors.Wrapf(ErrBadMagic, "%q", utils.DumpToOneLineString(magic)))
	}

	s := &Scene{}
	if s.Version, err = d.u8(); err != nil {
		return nil, err
	}
	if s.Version != VERSION {
		s.Warnings = append(s.Warnings, &FormatWarning{Version: s.Version})
	}

	// crc of the source text, not verified
	if err := d.c.Skip(4); err != nil {
		return nil, d.structural(d.c.Pos(), err)
	}

	if s.Events, err = d.events(); err != nil {
		return nil, err
	}

	numActors, err := d.u8()
	if err != nil {
		return nil, err
	}
	s.Actors = make([]*Actor, numActors)
	for i := range s.Actors {
		if s.Actors[i], err = d.actor(); err != nil {
			return nil, err
		}
	}

	if s.Ramp, err = d.ramp(); err != nil {
		return nil, err
	}

	return s, nil
}

// Decode parses a decompressed record into a scene.
func Decode(strs StringTable, data []byte) (*Scene, error) {
	d := &decoder{
		c:    utils.NewCursor(MAGIC, data),
		strs: strs,
	}
	return d.scene()
}
