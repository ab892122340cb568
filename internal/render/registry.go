package render

import (
	"errors"

	"github.com/WiseOwlEnglish/testrun-service/internal/models"
)

var (
	ErrUnknownOption = errors.New("option does not belong to this question")
	ErrSideMismatch  = errors.New("pair must join one left option with one right option")
	ErrEmptyGesture  = errors.New("interaction carries no usable input")
)

// Host is the narrow contract through which a renderer reads and writes the
// session's answer state. Renderers never touch session fields directly.
type Host interface {
	GetSelected(questionID uint) models.Answer
	SetSelected(questionID uint, a models.Answer) error

	// Disabled marks a read-only host (post-submission review). Interactions
	// must be no-ops when it is set.
	Disabled() bool

	// Correctness returns the correctness signal for a question in review
	// mode; ok is false during a live session.
	Correctness(questionID uint) (correct bool, ok bool)
}

// Interaction is one user gesture against the mounted question. The fields a
// renderer reads depend on the question type: OptionID for choice, sequence
// toggle and pair-release gestures, LeftID/RightID for creating a pair, Text
// for text input.
type Interaction struct {
	OptionID uint    `json:"option_id,omitempty"`
	LeftID   uint    `json:"left_id,omitempty"`
	RightID  uint    `json:"right_id,omitempty"`
	Text     *string `json:"text,omitempty"`
}

// Renderer turns one question plus its current answer into the view model the
// SPA draws, and applies user gestures through the host.
type Renderer interface {
	Render(q *models.Question, host Host) View
	Interact(q *models.Question, host Host, in Interaction) error
}

// Registry dispatches question types to renderers. Unknown types resolve to a
// placeholder renderer so one bad question cannot take down a session.
type Registry struct {
	renderers map[models.QuestionType]Renderer
}

// NewRegistry installs the built-in renderers for the four supported types.
func NewRegistry() *Registry {
	return &Registry{
		renderers: map[models.QuestionType]Renderer{
			models.SingleChoice:  choiceRenderer{},
			models.TextFill:      textRenderer{},
			models.SequenceOrder: sequenceRenderer{},
			models.PairMatch:     pairsRenderer{},
		},
	}
}

// Register adds or replaces the renderer for a question type.
func (r *Registry) Register(t models.QuestionType, renderer Renderer) {
	r.renderers[t] = renderer
}

// Lookup returns the renderer for a question type, falling back to the
// unsupported-type placeholder.
func (r *Registry) Lookup(t models.QuestionType) Renderer {
	if renderer, ok := r.renderers[t]; ok {
		return renderer
	}
	return unsupportedRenderer{}
}

// Supports reports whether a real renderer is registered for the type.
func (r *Registry) Supports(t models.QuestionType) bool {
	_, ok := r.renderers[t]
	return ok
}

// unsupportedRenderer renders a visible placeholder and swallows gestures.
type unsupportedRenderer struct{}

func (unsupportedRenderer) Render(q *models.Question, host Host) View {
	v := newView(q, host)
	v.Unsupported = true
	v.Note = "unsupported question type"
	return v
}

func (unsupportedRenderer) Interact(q *models.Question, host Host, in Interaction) error {
	return nil
}

// newView fills the fields every renderer shares.
func newView(q *models.Question, host Host) View {
	v := View{
		QuestionID: q.ID,
		Type:       q.Type,
		Prompt:     q.Prompt,
		AudioURL:   q.AudioURL,
		ImageURL:   q.ImageURL,
		Disabled:   host.Disabled(),
	}
	if correct, ok := host.Correctness(q.ID); ok {
		v.Correct = &correct
	}
	return v
}
