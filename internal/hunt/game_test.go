package hunt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGame(t *testing.T) {
	g := NewGame([NumRounds]int{5, 0, 2}, t0)

	assert.Equal(t, RoundLinks, g.CurrentRound)
	assert.Equal(t, RoundOpenState, g.State(1))
	assert.Equal(t, RoundLockedState, g.State(2))
	assert.Equal(t, RoundLockedState, g.State(3))
	assert.Equal(t, 5, g.Config(1).MaxQualifyingTeams)
	assert.Equal(t, DefaultRoundCaps[1], g.Config(2).MaxQualifyingTeams)
	assert.Equal(t, 2, g.Config(3).MaxQualifyingTeams)
	require.NotNil(t, g.Config(1).StartTime)
	assert.Equal(t, t0, *g.Config(1).StartTime)
}

func TestQualifyClosesAtCap(t *testing.T) {
	g := NewGame([NumRounds]int{2, 1, 1}, t0)

	closed, err := g.Qualify(1, t0.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, closed)
	assert.Equal(t, RoundOpenState, g.State(1))

	end := t0.Add(2 * time.Minute)
	closed, err = g.Qualify(1, end)
	require.NoError(t, err)
	assert.True(t, closed)

	assert.Equal(t, RoundClosedState, g.State(1))
	assert.Equal(t, RoundOpenState, g.State(2))
	assert.Equal(t, Round(2), g.CurrentRound)
	assert.Equal(t, end, *g.Config(1).EndTime)
	assert.Equal(t, end, *g.Config(2).StartTime)

	_, err = g.Qualify(1, end)
	assert.ErrorIs(t, err, ErrRoundNotActive)
	_, err = g.Qualify(3, end)
	assert.ErrorIs(t, err, ErrRoundNotActive)
}

func TestQualifyLastRound(t *testing.T) {
	g := NewGame([NumRounds]int{1, 1, 1}, t0)
	for r := Round(1); r <= NumRounds; r++ {
		closed, err := g.Qualify(r, t0)
		require.NoError(t, err)
		assert.True(t, closed)
	}
	_, open := g.OpenRound()
	assert.False(t, open)
	assert.Equal(t, Round(3), g.CurrentRound)
	assert.Equal(t, RoundClosedState, g.State(3))
}

func TestAtMostOneOpenRound(t *testing.T) {
	g := NewGame([NumRounds]int{3, 2, 1}, t0)
	for i := 0; i < 10; i++ {
		r, ok := g.OpenRound()
		if !ok {
			break
		}
		open := 0
		for x := Round(1); x <= NumRounds; x++ {
			if g.State(x) == RoundOpenState {
				open++
			}
		}
		require.Equal(t, 1, open)
		require.Equal(t, r, g.CurrentRound)
		_, err := g.Qualify(r, t0)
		require.NoError(t, err)
	}
}

func TestAdvance(t *testing.T) {
	g := NewGame(DefaultRoundCaps, t0)

	next, err := g.Advance(t0)
	require.NoError(t, err)
	assert.Equal(t, Round(2), next)
	assert.Equal(t, RoundClosedState, g.State(1))

	_, err = g.Advance(t0)
	require.NoError(t, err)
	_, err = g.Advance(t0)
	require.NoError(t, err)

	_, err = g.Advance(t0)
	assert.ErrorIs(t, err, ErrNoOpenRound)
}

func TestSetCap(t *testing.T) {
	g := NewGame([NumRounds]int{5, 5, 5}, t0)
	_, err := g.Qualify(1, t0)
	require.NoError(t, err)
	_, err = g.Qualify(1, t0)
	require.NoError(t, err)

	assert.ErrorIs(t, g.SetCap(1, 1, t0), ErrInvalidCap)
	assert.ErrorIs(t, g.SetCap(1, 0, t0), ErrInvalidCap)
	assert.ErrorIs(t, g.SetCap(4, 3, t0), ErrInvalidRound)

	require.NoError(t, g.SetCap(3, 8, t0))
	assert.Equal(t, 8, g.Config(3).MaxQualifyingTeams)

	require.NoError(t, g.SetCap(1, 2, t0))
	assert.Equal(t, RoundClosedState, g.State(1), "cap equal to qualified closes the round")
	assert.Equal(t, RoundOpenState, g.State(2))
}
