package achievement

import "github.com/wanty-app/wishfeed/internal/model"

// Engine evaluates the catalog against counter snapshots. Pure: no state, no
// stores; the unlock-and-award step belongs to the caller.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

// Evaluate returns the ids of achievements whose counter has reached its
// threshold and which are not in unlocked yet. Counter-less badges are never
// returned.
func (e *Engine) Evaluate(snapshot *model.UserProgress, unlocked map[string]bool) []string {
	if snapshot == nil {
		return nil
	}
	var newly []string
	for _, a := range Catalog {
		if a.Counter == "" || unlocked[a.ID] {
			continue
		}
		if counterValue(snapshot, a.Counter) >= a.Threshold {
			newly = append(newly, a.ID)
		}
	}
	return newly
}

// Progress describes how far a user is toward one badge.
type Progress struct {
	Achievement Achievement `json:"achievement"`
	Current     int         `json:"current"`
	Required    int         `json:"required"`
	Percent     float64     `json:"percent"`
	Unlocked    bool        `json:"unlocked"`
}

// ProgressReport returns per-badge progress for the profile surface.
func (e *Engine) ProgressReport(snapshot *model.UserProgress, unlocked map[string]bool) []Progress {
	report := make([]Progress, 0, len(Catalog))
	for _, a := range Catalog {
		p := Progress{Achievement: a, Required: a.Threshold, Unlocked: unlocked[a.ID]}
		if a.Counter != "" && snapshot != nil {
			p.Current = counterValue(snapshot, a.Counter)
		}
		switch {
		case p.Unlocked:
			p.Percent = 100
		case a.Threshold > 0:
			p.Percent = float64(p.Current) / float64(a.Threshold) * 100
			if p.Percent > 100 {
				p.Percent = 100
			}
		}
		report = append(report, p)
	}
	return report
}

func counterValue(s *model.UserProgress, c Counter) int {
	switch c {
	case CounterWishesCreated:
		return s.WishesCreated
	case CounterLikesReceived:
		return s.LikesReceived
	case CounterLikesGiven:
		return s.LikesGiven
	case CounterWishesViewed:
		return s.WishesViewed
	case CounterUsersHelped:
		return s.UsersHelped
	case CounterConsecutiveActiveDays:
		return s.ConsecutiveActiveDays
	}
	return 0
}
