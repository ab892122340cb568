package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WiseOwlEnglish/testrun-service/internal/models"
)

func pairsQuestion() *models.Question {
	return &models.Question{
		ID:     4,
		Type:   models.PairMatch,
		Prompt: "Match the words",
		Options: []models.Option{
			{ID: 41, QuestionID: 4, Label: "cat", Side: models.SideLeft, Position: 0},
			{ID: 42, QuestionID: 4, Label: "dog", Side: models.SideLeft, Position: 1},
			{ID: 43, QuestionID: 4, Label: "meo", Side: models.SideRight, Position: 0},
			{ID: 44, QuestionID: 4, Label: "sua", Side: models.SideRight, Position: 1},
		},
	}
}

func recordedPairs(t *testing.T, host Host, questionID uint) []models.MatchPair {
	t.Helper()
	a, ok := host.GetSelected(questionID).(models.PairsAnswer)
	if !ok {
		return nil
	}
	return a.Pairs
}

func TestPairsJoinAndRender(t *testing.T) {
	r := NewRegistry()
	host := newMapHost()
	q := pairsQuestion()
	renderer := r.Lookup(q.Type)

	require.NoError(t, renderer.Interact(q, host, Interaction{LeftID: 41, RightID: 43}))

	view := renderer.Render(q, host)
	require.NotNil(t, view.Pairs)
	require.Len(t, view.Pairs.Pairs, 1)
	assert.Equal(t, models.MatchPair{LeftID: 41, RightID: 43}, view.Pairs.Pairs[0])

	require.Len(t, view.Pairs.Left, 2)
	require.Len(t, view.Pairs.Right, 2)
	assert.True(t, view.Pairs.Left[0].Paired)
	assert.False(t, view.Pairs.Left[1].Paired)
	assert.True(t, view.Pairs.Right[0].Paired)
}

func TestPairsNeverShareAnOption(t *testing.T) {
	r := NewRegistry()
	host := newMapHost()
	q := pairsQuestion()
	renderer := r.Lookup(q.Type)

	require.NoError(t, renderer.Interact(q, host, Interaction{LeftID: 41, RightID: 43}))
	// Re-pairing the same left option steals it from its old pair.
	require.NoError(t, renderer.Interact(q, host, Interaction{LeftID: 41, RightID: 44}))

	pairs := recordedPairs(t, host, q.ID)
	require.Len(t, pairs, 1)
	assert.Equal(t, models.MatchPair{LeftID: 41, RightID: 44}, pairs[0])

	// And the same from the right side.
	require.NoError(t, renderer.Interact(q, host, Interaction{LeftID: 42, RightID: 44}))
	pairs = recordedPairs(t, host, q.ID)
	require.Len(t, pairs, 1)
	assert.Equal(t, models.MatchPair{LeftID: 42, RightID: 44}, pairs[0])
}

func TestPairsRepeatedJoinKeepsPairing(t *testing.T) {
	r := NewRegistry()
	host := newMapHost()
	q := pairsQuestion()
	renderer := r.Lookup(q.Type)

	require.NoError(t, renderer.Interact(q, host, Interaction{LeftID: 41, RightID: 43}))
	once := host.GetSelected(q.ID)

	require.NoError(t, renderer.Interact(q, host, Interaction{LeftID: 41, RightID: 43}))
	assert.True(t, models.AnswersEqual(once, host.GetSelected(q.ID)))
	assert.Len(t, recordedPairs(t, host, q.ID), 1)
}

func TestPairsReleaseGesture(t *testing.T) {
	r := NewRegistry()
	host := newMapHost()
	q := pairsQuestion()
	renderer := r.Lookup(q.Type)

	require.NoError(t, renderer.Interact(q, host, Interaction{LeftID: 41, RightID: 43}))
	require.NoError(t, renderer.Interact(q, host, Interaction{LeftID: 42, RightID: 44}))

	// Releasing by either end of the pair works.
	require.NoError(t, renderer.Interact(q, host, Interaction{OptionID: 43}))

	pairs := recordedPairs(t, host, q.ID)
	require.Len(t, pairs, 1)
	assert.Equal(t, models.MatchPair{LeftID: 42, RightID: 44}, pairs[0])
}

func TestPairsRejectsSameSideJoin(t *testing.T) {
	r := NewRegistry()
	host := newMapHost()
	q := pairsQuestion()
	renderer := r.Lookup(q.Type)

	err := renderer.Interact(q, host, Interaction{LeftID: 43, RightID: 41})
	assert.ErrorIs(t, err, ErrSideMismatch)

	err = renderer.Interact(q, host, Interaction{LeftID: 41, RightID: 42})
	assert.ErrorIs(t, err, ErrSideMismatch)

	assert.Empty(t, recordedPairs(t, host, q.ID))
}

func TestPairsRejectsIncompleteGesture(t *testing.T) {
	r := NewRegistry()
	host := newMapHost()
	q := pairsQuestion()
	renderer := r.Lookup(q.Type)

	err := renderer.Interact(q, host, Interaction{LeftID: 41})
	assert.ErrorIs(t, err, ErrEmptyGesture)

	err = renderer.Interact(q, host, Interaction{LeftID: 41, RightID: 999})
	assert.ErrorIs(t, err, ErrUnknownOption)
}
