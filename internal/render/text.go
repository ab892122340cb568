package render

import "github.com/WiseOwlEnglish/testrun-service/internal/models"

// textRenderer handles fill-in questions. Every keystroke overwrites the
// stored string as-is; normalization happens at grading time.
type textRenderer struct{}

func (textRenderer) Render(q *models.Question, host Host) View {
	v := newView(q, host)

	state := &TextState{}
	if a, ok := host.GetSelected(q.ID).(models.TextAnswer); ok {
		state.Value = a.Text
	}
	v.Text = state
	return v
}

func (textRenderer) Interact(q *models.Question, host Host, in Interaction) error {
	if host.Disabled() {
		return nil
	}
	if in.Text == nil {
		return ErrEmptyGesture
	}
	return host.SetSelected(q.ID, models.TextAnswer{Text: *in.Text})
}
