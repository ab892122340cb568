package render

import "github.com/WiseOwlEnglish/testrun-service/internal/models"

// choiceRenderer handles single-choice questions: clicking an option replaces
// the prior selection outright.
type choiceRenderer struct{}

func (choiceRenderer) Render(q *models.Question, host Host) View {
	v := newView(q, host)

	var selected uint
	if a, ok := host.GetSelected(q.ID).(models.OptionAnswer); ok {
		selected = a.OptionID
	}

	opts := sortedOptions(q)
	v.Choices = make([]ChoiceItem, len(opts))
	for i, opt := range opts {
		v.Choices[i] = ChoiceItem{
			OptionID: opt.ID,
			Label:    opt.Label,
			ImageURL: opt.ImageURL,
			Selected: opt.ID == selected,
		}
	}
	return v
}

func (choiceRenderer) Interact(q *models.Question, host Host, in Interaction) error {
	if host.Disabled() {
		return nil
	}
	if in.OptionID == 0 {
		return ErrEmptyGesture
	}
	if optionByID(q, in.OptionID) == nil {
		return ErrUnknownOption
	}
	return host.SetSelected(q.ID, models.OptionAnswer{OptionID: in.OptionID})
}
