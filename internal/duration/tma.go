package duration

import (
	"sort"
	"time"

	"github.com/Veraticus/proposal-desk/internal/common"
	"github.com/Veraticus/proposal-desk/internal/model"
)

// AnalystTMA is the handling-time aggregate of one analyst.
type AnalystTMA struct {
	Analyst string
	Count   int
	Total   time.Duration
}

// Average returns the mean handling time.
func (a AnalystTMA) Average() time.Duration {
	if a.Count == 0 {
		return 0
	}
	return a.Total / time.Duration(a.Count)
}

// Query selects the records that enter the aggregate.
type Query struct {
	Start   time.Time
	End     time.Time
	Viewer  model.User
	Analyst string
}

// VisibleAnalyst returns the analyst filter the viewer is allowed to apply.
// Managers and developers see everyone or the one they picked; others only themselves.
func (q Query) VisibleAnalyst() string {
	if q.Viewer.SeesAllAnalysts() {
		return q.Analyst
	}
	return q.Viewer.Login
}

// ComputeTMA aggregates concluded records per analyst, sorted by analyst.
// Records with an unparseable duration are skipped.
func ComputeTMA(records []model.Record, q Query) []AnalystTMA {
	analyst := q.VisibleAnalyst()
	byAnalyst := make(map[string]*AnalystTMA)

	for _, r := range records {
		if !r.Status.IsConcluded() {
			continue
		}
		if !q.Start.IsZero() && r.ConcludedAt.Before(q.Start) {
			continue
		}
		if !q.End.IsZero() && r.ConcludedAt.After(q.End) {
			continue
		}
		if analyst != "" && r.Analyst != analyst {
			continue
		}

		d, err := Parse(r.Duration)
		if err != nil {
			common.LogDebug("Skipping record with unparseable duration", common.Fields{
				"number":   r.Number,
				"duration": r.Duration,
			})
			continue
		}

		agg, ok := byAnalyst[r.Analyst]
		if !ok {
			agg = &AnalystTMA{Analyst: r.Analyst}
			byAnalyst[r.Analyst] = agg
		}
		agg.Count++
		agg.Total += d
	}

	out := make([]AnalystTMA, 0, len(byAnalyst))
	for _, agg := range byAnalyst {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Analyst < out[j].Analyst })
	return out
}
