package quantize

import (
	"fmt"
	"math"
	"time"

	"github.com/jsphweid/dreamland/model"
	"github.com/pkg/errors"
)

var ErrInvalidTempo = errors.New("tempo must be positive")

const (
	beatsPerBar       = 4
	sixteenthsPerBeat = 4
)

// Quantizer snaps compositions onto a steady grid at a given tempo.
type Quantizer struct {
	bpm float64
}

func New(bpm float64) (*Quantizer, error) {
	q := &Quantizer{}
	if err := q.SetBPM(bpm); err != nil {
		return nil, err
	}
	return q, nil
}

func (q *Quantizer) BPM() float64 { return q.bpm }

func (q *Quantizer) SetBPM(bpm float64) error {
	if bpm <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return errors.Wrapf(ErrInvalidTempo, "got %v", bpm)
	}
	q.bpm = bpm
	return nil
}

// EighthNote is (60 / bpm / 2) seconds.
func (q *Quantizer) EighthNote() time.Duration {
	return time.Duration(60 / q.bpm / 2 * float64(time.Second))
}

func (q *Quantizer) Sixteenth() time.Duration {
	return time.Duration(60 / q.bpm / sixteenthsPerBeat * float64(time.Second))
}

// Plan lays events out one eighth note apart, the first one immediately.
// Recorded spacing between events is dropped.
func (q *Quantizer) Plan(events []model.CompositionEvent) []model.PlanEntry {
	if len(events) == 0 {
		return []model.PlanEntry{}
	}
	eighth := q.EighthNote()
	plan := make([]model.PlanEntry, len(events))
	for i, e := range events {
		plan[i] = model.PlanEntry{Event: e.Clone(), Delay: eighth}
	}
	plan[0].Delay = 0
	return plan
}

// Position converts an offset from the start of a composition into bars,
// beats and sixteenths, rounded to the nearest sixteenth.
func (q *Quantizer) Position(offset time.Duration) model.QuantizedTime {
	if offset < 0 {
		offset = 0
	}
	n := int(math.Round(float64(offset) / float64(q.Sixteenth())))
	bar := n / (beatsPerBar * sixteenthsPerBeat)
	beat := (n / sixteenthsPerBeat) % beatsPerBar
	sixteenth := n % sixteenthsPerBeat
	return model.QuantizedTime{
		Bar:       bar,
		Beat:      beat,
		Sixteenth: sixteenth,
		Formatted: fmt.Sprintf("%d:%d:%d", bar, beat, sixteenth),
	}
}

// Annotate returns copies of events with their metrical position relative
// to the first event.
func (q *Quantizer) Annotate(events []model.CompositionEvent) []model.CompositionEvent {
	res := make([]model.CompositionEvent, len(events))
	for i, e := range events {
		c := e.Clone()
		pos := q.Position(e.Timestamp.Sub(events[0].Timestamp))
		c.Quantized = &pos
		res[i] = c
	}
	return res
}

// Duration is the time a plan takes to replay.
func Duration(plan []model.PlanEntry) time.Duration {
	var total time.Duration
	for _, p := range plan {
		total += p.Delay
	}
	return total
}
