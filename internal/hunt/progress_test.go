package hunt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgress(t *testing.T) {
	team, _ := NewTeam("t1", "Alpha", []string{"Ana", "Ben"}, t0)
	assert.Equal(t, ProgressNotStarted, team.Progress())
	assert.Equal(t, ProgressNotStarted, team.RoundProgress(RoundLinks))
	assert.Equal(t, ProgressLocked, team.RoundProgress(RoundCode))

	started := t0
	team.Rounds[0].StartedAt = &started
	assert.Equal(t, ProgressInProgress, team.RoundProgress(RoundLinks))

	team.Rounds[0].Completed = true
	assert.Equal(t, ProgressInProgress, team.Progress())
	assert.Equal(t, ProgressCompleted, team.RoundProgress(RoundLinks))
	assert.Equal(t, ProgressNotStarted, team.RoundProgress(RoundCode))
	assert.Equal(t, ProgressLocked, team.RoundProgress(RoundCipher))

	team.Rounds[1].Completed = true
	team.Rounds[2].Completed = true
	assert.Equal(t, ProgressCompleted, team.Progress())
}

func TestMatches(t *testing.T) {
	team, _ := NewTeam("t1", "Code Breakers", []string{"Ana Lopez", "Ben"}, t0)

	assert.True(t, team.Matches(""))
	assert.True(t, team.Matches("breakers"))
	assert.True(t, team.Matches("LOPEZ"))
	assert.False(t, team.Matches("zeta"))
}

func TestRanked(t *testing.T) {
	mk := func(id string, score int, active time.Duration) Team {
		return Team{ID: id, Name: id, Score: score, LastActive: t0.Add(active)}
	}
	teams := []Team{mk("c", 100, 0), mk("a", 300, time.Minute), mk("b", 300, 0), mk("d", 0, 0)}

	got := Ranked(teams)

	ids := make([]string, len(got))
	for i, tm := range got {
		ids[i] = tm.ID
	}
	assert.Equal(t, []string{"b", "a", "c", "d"}, ids)
	assert.Equal(t, "c", teams[0].ID, "input not reordered")
}
