package feedback

import (
	"github.com/jsphweid/dreamland/model"
	"github.com/jsphweid/dreamland/util"
	"golang.org/x/exp/slices"
)

// Complete lists undiscovered transformations whose notes have all been
// played but not yet unlocked.
func Complete(progress []model.TransformationProgress) []string {
	var res []string
	for _, p := range progress {
		if !p.Discovered && p.IsComplete {
			res = append(res, p.Type)
		}
	}
	return res
}

// Suggest picks the undiscovered transformation closest to completion and
// returns the notes it still needs. Ties go to the earlier entry. Nothing is
// suggested while a complete sequence is waiting to be replayed.
func Suggest(progress []model.TransformationProgress) (model.Suggestion, bool) {
	if len(Complete(progress)) > 0 {
		return model.Suggestion{}, false
	}
	best := -1
	for i, p := range progress {
		if p.Discovered || p.Progress <= 0 || p.Progress >= len(p.RequiredNotes) {
			continue
		}
		if best < 0 || p.Progress > progress[best].Progress {
			best = i
		}
	}
	if best < 0 {
		return model.Suggestion{}, false
	}
	p := progress[best]
	remaining := model.Notes{}
	for _, n := range util.Distinct(p.RequiredNotes) {
		if !slices.Contains(p.PlayedNotes, n) {
			remaining = append(remaining, n)
		}
	}
	if len(remaining) == 0 {
		return model.Suggestion{}, false
	}
	return model.Suggestion{Type: p.Type, RemainingNotes: remaining}, true
}
