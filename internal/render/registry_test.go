package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WiseOwlEnglish/testrun-service/internal/models"
)

// mapHost backs renderer tests with a plain map.
type mapHost struct {
	answers  map[uint]models.Answer
	disabled bool
	correct  map[uint]bool
}

func newMapHost() *mapHost {
	return &mapHost{answers: make(map[uint]models.Answer)}
}

func (h *mapHost) GetSelected(questionID uint) models.Answer { return h.answers[questionID] }

func (h *mapHost) SetSelected(questionID uint, a models.Answer) error {
	if a == nil {
		delete(h.answers, questionID)
		return nil
	}
	h.answers[questionID] = a
	return nil
}

func (h *mapHost) Disabled() bool { return h.disabled }

func (h *mapHost) Correctness(questionID uint) (bool, bool) {
	if h.correct == nil {
		return false, false
	}
	c, ok := h.correct[questionID]
	return c, ok
}

func choiceQuestion() *models.Question {
	return &models.Question{
		ID:     1,
		Type:   models.SingleChoice,
		Prompt: "Pick the animal",
		Options: []models.Option{
			{ID: 11, QuestionID: 1, Label: "cat", Position: 0},
			{ID: 12, QuestionID: 1, Label: "dog", Position: 1},
		},
	}
}

func TestRegistrySupportsBuiltinTypes(t *testing.T) {
	r := NewRegistry()

	for _, typ := range []models.QuestionType{
		models.SingleChoice, models.TextFill, models.SequenceOrder, models.PairMatch,
	} {
		assert.True(t, r.Supports(typ), "expected %s to be supported", typ)
	}
	assert.False(t, r.Supports("essay"))
}

func TestRegistryFallsBackForUnknownType(t *testing.T) {
	r := NewRegistry()
	host := newMapHost()
	q := &models.Question{ID: 9, Type: "essay", Prompt: "Write something"}

	view := r.Lookup(q.Type).Render(q, host)
	assert.True(t, view.Unsupported)
	assert.NotEmpty(t, view.Note)
	assert.Equal(t, uint(9), view.QuestionID)

	// Gestures against an unsupported question are swallowed, never recorded.
	err := r.Lookup(q.Type).Interact(q, host, Interaction{OptionID: 11})
	assert.NoError(t, err)
	assert.Nil(t, host.GetSelected(9))
}

func TestRegistryRegisterOverridesRenderer(t *testing.T) {
	r := NewRegistry()
	r.Register("essay", unsupportedRenderer{})
	assert.True(t, r.Supports("essay"))
}

func TestChoiceInteractReplacesSelection(t *testing.T) {
	r := NewRegistry()
	host := newMapHost()
	q := choiceQuestion()
	renderer := r.Lookup(q.Type)

	require.NoError(t, renderer.Interact(q, host, Interaction{OptionID: 11}))
	require.NoError(t, renderer.Interact(q, host, Interaction{OptionID: 12}))

	view := renderer.Render(q, host)
	require.Len(t, view.Choices, 2)
	assert.False(t, view.Choices[0].Selected)
	assert.True(t, view.Choices[1].Selected)
}

func TestChoiceRepeatedGestureKeepsSelection(t *testing.T) {
	r := NewRegistry()
	host := newMapHost()
	q := choiceQuestion()
	renderer := r.Lookup(q.Type)

	require.NoError(t, renderer.Interact(q, host, Interaction{OptionID: 11}))
	once := host.GetSelected(q.ID)

	require.NoError(t, renderer.Interact(q, host, Interaction{OptionID: 11}))
	assert.True(t, models.AnswersEqual(once, host.GetSelected(q.ID)))
}

func TestChoiceInteractRejectsForeignOption(t *testing.T) {
	r := NewRegistry()
	host := newMapHost()
	q := choiceQuestion()

	err := r.Lookup(q.Type).Interact(q, host, Interaction{OptionID: 999})
	assert.ErrorIs(t, err, ErrUnknownOption)
	assert.Nil(t, host.GetSelected(q.ID))

	err = r.Lookup(q.Type).Interact(q, host, Interaction{})
	assert.ErrorIs(t, err, ErrEmptyGesture)
}

func TestDisabledHostIgnoresGestures(t *testing.T) {
	r := NewRegistry()
	host := newMapHost()
	host.disabled = true
	q := choiceQuestion()

	err := r.Lookup(q.Type).Interact(q, host, Interaction{OptionID: 11})
	assert.NoError(t, err, "disabled mode swallows gestures silently")
	assert.Nil(t, host.GetSelected(q.ID))

	view := r.Lookup(q.Type).Render(q, host)
	assert.True(t, view.Disabled)
}

func TestTextInteractOverwrites(t *testing.T) {
	r := NewRegistry()
	host := newMapHost()
	q := &models.Question{ID: 2, Type: models.TextFill, Prompt: "Fill in"}
	renderer := r.Lookup(q.Type)

	first := "  Hello "
	require.NoError(t, renderer.Interact(q, host, Interaction{Text: &first}))

	view := renderer.Render(q, host)
	require.NotNil(t, view.Text)
	assert.Equal(t, "  Hello ", view.Text.Value, "text is stored exactly as typed")

	second := "Bye"
	require.NoError(t, renderer.Interact(q, host, Interaction{Text: &second}))
	view = renderer.Render(q, host)
	assert.Equal(t, "Bye", view.Text.Value)

	err := renderer.Interact(q, host, Interaction{})
	assert.ErrorIs(t, err, ErrEmptyGesture)
}

func TestTextRepeatedGestureKeepsValue(t *testing.T) {
	r := NewRegistry()
	host := newMapHost()
	q := &models.Question{ID: 2, Type: models.TextFill, Prompt: "Fill in"}
	renderer := r.Lookup(q.Type)

	typed := "bye"
	require.NoError(t, renderer.Interact(q, host, Interaction{Text: &typed}))
	once := host.GetSelected(q.ID)

	require.NoError(t, renderer.Interact(q, host, Interaction{Text: &typed}))
	assert.True(t, models.AnswersEqual(once, host.GetSelected(q.ID)))
}

func TestVerdictHostRendersReviewMarks(t *testing.T) {
	verdict := &models.Verdict{
		Questions: []models.QuestionVerdict{
			{
				QuestionID: 1,
				Answered:   true,
				Correct:    true,
				Submitted:  models.NewSubmittedAnswer(1, models.OptionAnswer{OptionID: 12}),
			},
		},
	}
	host := NewVerdictHost(verdict)
	q := choiceQuestion()

	r := NewRegistry()
	view := r.Lookup(q.Type).Render(q, host)

	assert.True(t, view.Disabled)
	require.NotNil(t, view.Correct)
	assert.True(t, *view.Correct)
	require.Len(t, view.Choices, 2)
	assert.True(t, view.Choices[1].Selected, "review shows the recorded selection")

	// Review never mutates recorded answers.
	require.NoError(t, r.Lookup(q.Type).Interact(q, host, Interaction{OptionID: 11}))
	view = r.Lookup(q.Type).Render(q, host)
	assert.True(t, view.Choices[1].Selected)
}
