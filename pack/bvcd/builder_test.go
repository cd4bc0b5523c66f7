package bvcd

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// stringPool is an in-memory StringTable with "" at index 0.
type stringPool struct {
	strs  []string
	index map[string]int16
}

func newStringPool() *stringPool {
	p := &stringPool{index: make(map[string]int16)}
	p.id("")
	return p
}

func (p *stringPool) id(s string) int16 {
	if i, ok := p.index[s]; ok {
		return i
	}
	i := int16(len(p.strs))
	p.strs = append(p.strs, s)
	p.index[s] = i
	return i
}

func (p *stringPool) String(index int16) (string, error) {
	if index < 0 || int(index) >= len(p.strs) {
		return "", errors.Errorf("bad string index %d", index)
	}
	return p.strs[index], nil
}

// recordWriter produces binary records for the decoder tests.
type recordWriter struct {
	bytes.Buffer
	pool *stringPool
}

func newRecordWriter(pool *stringPool, version uint8) *recordWriter {
	w := &recordWriter{pool: pool}
	w.WriteString(MAGIC)
	w.u8(version)
	w.Write([]byte{0xde, 0xad, 0xbe, 0xef})
	return w
}

func (w *recordWriter) u8(v uint8) { w.WriteByte(v) }

func (w *recordWriter) u16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.Write(b[:])
}

func (w *recordWriter) i16(v int16) { w.u16(uint16(v)) }

func (w *recordWriter) f32(v float32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	w.Write(b[:])
}

func (w *recordWriter) str(s string) { w.i16(w.pool.id(s)) }

func (w *recordWriter) ramp(r Ramp) {
	w.u8(uint8(len(r)))
	for _, p := range r {
		w.f32(p.Time)
		w.u8(p.Value)
	}
}

func (w *recordWriter) tags(tags []Tag) {
	w.u8(uint8(len(tags)))
	for _, t := range tags {
		w.str(t.Name)
		w.u8(t.Value)
	}
}

func (w *recordWriter) absoluteTags(tags []AbsoluteTag) {
	w.u8(uint8(len(tags)))
	for _, t := range tags {
		w.str(t.Name)
		w.u16(t.Value)
	}
}

func (w *recordWriter) event(e *Event) {
	w.u8(uint8(e.Type))
	w.str(e.Name)
	w.f32(e.Start)
	w.f32(e.End)
	w.str(e.Param)
	w.str(e.Param2)
	w.str(e.Param3)
	w.ramp(e.Ramp)
	w.u8(uint8(e.Flags))
	w.f32(e.DistanceToTarget)
	w.tags(e.Tags)
	w.tags(e.FlexTimingTags)
	w.absoluteTags(e.PlaybackTimeTags)
	w.absoluteTags(e.ShiftedTimeTags)

	if e.Type == EVENT_GESTURE {
		w.f32(e.SequenceDuration)
	}

	if e.RelativeTag != nil {
		w.u8(1)
		w.str(e.RelativeTag.Tag)
		w.str(e.RelativeTag.Wave)
	} else {
		w.u8(0)
	}

	w.u8(uint8(len(e.FlexTracks)))
	for _, t := range e.FlexTracks {
		w.str(t.Name)
		w.u8(t.Flags)
		w.f32(t.Min)
		w.f32(t.Max)
		for _, samples := range t.Samples {
			w.u16(uint16(len(samples)))
			for _, s := range samples {
				w.f32(s.Time)
				w.u8(s.Value)
				w.u8(uint8(s.CurveTo))
				w.u8(uint8(s.CurveFrom))
			}
		}
	}

	switch e.Type {
	case EVENT_LOOP:
		w.u8(e.LoopCount)
	case EVENT_SPEAK:
		w.u8(e.CloseCaption.Type)
		w.str(e.CloseCaption.Token)
		w.u8(uint8(e.CloseCaption.Flags))
	}
}

func (w *recordWriter) scene(s *Scene) {
	w.u8(uint8(len(s.Events)))
	for _, e := range s.Events {
		w.event(e)
	}
	w.u8(uint8(len(s.Actors)))
	for _, a := range s.Actors {
		w.str(a.Name)
		w.u8(uint8(len(a.Channels)))
		for _, ch := range a.Channels {
			w.str(ch.Name)
			w.u8(uint8(len(ch.Events)))
			for _, e := range ch.Events {
				w.event(e)
			}
			w.u8(boolByte(ch.Active))
		}
		w.u8(boolByte(a.Active))
	}
	w.ramp(s.Ramp)
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// encodeScene builds a version 4 record for s.
func encodeScene(pool *stringPool, s *Scene) []byte {
	w := newRecordWriter(pool, VERSION)
	w.scene(s)
	return w.Bytes()
}

// activeEvent returns a plain event with the active bit set.
func activeEvent(t EventType, name string) *Event {
	return &Event{
		Type:             t,
		Name:             name,
		Start:            0,
		End:              1,
		Flags:            EVENT_FLAG_ACTIVE,
		SequenceDuration: SEQUENCE_DURATION_UNSET,
	}
}
