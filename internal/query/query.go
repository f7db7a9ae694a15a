// Package query derives the filtered, sorted job view shown to a viewer.
package query

import (
	"slices"
	"strings"

	"github.com/neighborjob/marketplace/internal/geo"
	"github.com/neighborjob/marketplace/internal/model"
)

// Params selects and orders jobs for one viewer.
type Params struct {
	Viewer   model.Coordinate
	ViewerID string
	Search   string
	// Urgency filters to an exact match when non-empty.
	Urgency model.Urgency
	Mode    model.Mode
}

// Jobs annotates jobs with their distance from the viewer, keeps those
// matching p and orders them by urgency, most urgent first. Jobs of equal
// urgency keep their input order. The input slice is not modified.
func Jobs(jobs []model.Job, p Params) []model.Job {
	search := strings.ToLower(p.Search)

	out := make([]model.Job, 0, len(jobs))
	for _, j := range jobs {
		j.Distance = nil
		if d, ok := geo.Measure(p.Viewer, j.Location); ok {
			j.Distance = &d
		}

		if !matchesMode(j, p.ViewerID, p.Mode) {
			continue
		}
		if !matchesSearch(j, search) {
			continue
		}
		if p.Urgency != "" && j.Urgency != p.Urgency {
			continue
		}
		out = append(out, j)
	}

	slices.SortStableFunc(out, func(a, b model.Job) int {
		return b.Urgency.Weight() - a.Urgency.Weight()
	})

	return out
}

// matchesMode partitions jobs: hire shows the viewer's own postings and
// work shows everyone else's. Any mode other than hire is treated as work.
func matchesMode(j model.Job, viewerID string, mode model.Mode) bool {
	own := j.SeekerID == viewerID
	if mode == model.ModeHire {
		return own
	}
	return !own
}

func matchesSearch(j model.Job, lowered string) bool {
	if lowered == "" {
		return true
	}
	return strings.Contains(strings.ToLower(j.Title), lowered) ||
		strings.Contains(strings.ToLower(string(j.Category)), lowered)
}
