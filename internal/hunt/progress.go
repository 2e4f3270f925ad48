package hunt

import (
	"cmp"
	"slices"
	"strings"
)

// Progress labels used by the admin views.
const (
	ProgressCompleted  = "completed"
	ProgressInProgress = "in-progress"
	ProgressNotStarted = "not-started"
	ProgressLocked     = "locked"
)

// Progress summarizes the whole hunt for a team: completed once the last
// round is done, in-progress once the first is.
func (t Team) Progress() string {
	switch {
	case t.Completed(NumRounds):
		return ProgressCompleted
	case t.Completed(RoundLinks):
		return ProgressInProgress
	default:
		return ProgressNotStarted
	}
}

// RoundProgress is the status of a single round for a team.
func (t Team) RoundProgress(r Round) string {
	d := t.Detail(r)
	switch {
	case d.Completed:
		return ProgressCompleted
	case r > 1 && !t.Completed(r-1):
		return ProgressLocked
	case d.StartedAt != nil || d.Attempts > 0:
		return ProgressInProgress
	default:
		return ProgressNotStarted
	}
}

// Matches reports whether query appears in the team name or in a member
// name, ignoring case. An empty query matches every team.
func (t Team) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(t.Name), q) {
		return true
	}
	return slices.ContainsFunc(t.Members, func(m string) bool {
		return strings.Contains(strings.ToLower(m), q)
	})
}

// Ranked orders teams by score, highest first. Ties go to the team that
// was active earliest, then by name.
func Ranked(teams []Team) []Team {
	out := slices.Clone(teams)
	slices.SortStableFunc(out, func(a, b Team) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := a.LastActive.Compare(b.LastActive); c != 0 {
			return c
		}
		return cmp.Compare(NameKey(a.Name), NameKey(b.Name))
	})
	return out
}
