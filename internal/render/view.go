package render

import (
	"sort"

	"github.com/WiseOwlEnglish/testrun-service/internal/models"
)

// View is the render model for one mounted question. Exactly one of the
// type-specific blocks is populated, matching Type; Unsupported views carry
// only the placeholder note.
type View struct {
	QuestionID uint                `json:"question_id"`
	Type       models.QuestionType `json:"type"`
	Prompt     string              `json:"prompt"`
	AudioURL   *string             `json:"audio_url,omitempty"`
	ImageURL   *string             `json:"image_url,omitempty"`

	Disabled    bool   `json:"disabled"`
	Unsupported bool   `json:"unsupported,omitempty"`
	Note        string `json:"note,omitempty"`

	// Correct is set only in review mode.
	Correct *bool `json:"correct,omitempty"`

	Choices  []ChoiceItem   `json:"choices,omitempty"`
	Text     *TextState     `json:"text,omitempty"`
	Sequence *SequenceState `json:"sequence,omitempty"`
	Pairs    *PairsState    `json:"pairs,omitempty"`
}

type ChoiceItem struct {
	OptionID uint    `json:"option_id"`
	Label    string  `json:"label"`
	ImageURL *string `json:"image_url,omitempty"`
	Selected bool    `json:"selected"`
}

type TextState struct {
	Value string `json:"value"`
}

type SequenceState struct {
	// Bank lists the options not yet placed, in their original order; Chosen
	// lists placed options in the learner's order.
	Bank   []ChoiceItem `json:"bank"`
	Chosen []ChoiceItem `json:"chosen"`
}

type PairsState struct {
	Left  []PairItem         `json:"left"`
	Right []PairItem         `json:"right"`
	Pairs []models.MatchPair `json:"pairs"`
}

type PairItem struct {
	OptionID uint    `json:"option_id"`
	Label    string  `json:"label"`
	ImageURL *string `json:"image_url,omitempty"`
	Paired   bool    `json:"paired"`
}

// sortedOptions returns the question's options ordered by position, original
// order preserved on ties.
func sortedOptions(q *models.Question) []models.Option {
	opts := make([]models.Option, len(q.Options))
	copy(opts, q.Options)
	sort.SliceStable(opts, func(i, j int) bool {
		return opts[i].Position < opts[j].Position
	})
	return opts
}

// optionByID resolves an option id within the question, nil when absent.
func optionByID(q *models.Question, id uint) *models.Option {
	for i := range q.Options {
		if q.Options[i].ID == id {
			return &q.Options[i]
		}
	}
	return nil
}
