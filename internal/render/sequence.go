package render

import "github.com/WiseOwlEnglish/testrun-service/internal/models"

// sequenceRenderer handles ordering questions. Selecting a bank item appends
// its id to the sequence; selecting an already-placed item removes it and
// returns it to the bank, preserving the bank's original order.
type sequenceRenderer struct{}

func (sequenceRenderer) Render(q *models.Question, host Host) View {
	v := newView(q, host)

	var chosen []uint
	if a, ok := host.GetSelected(q.ID).(models.SequenceAnswer); ok {
		chosen = a.Sequence
	}
	placed := make(map[uint]bool, len(chosen))
	for _, id := range chosen {
		placed[id] = true
	}

	state := &SequenceState{
		Bank:   []ChoiceItem{},
		Chosen: []ChoiceItem{},
	}
	for _, opt := range sortedOptions(q) {
		if !placed[opt.ID] {
			state.Bank = append(state.Bank, ChoiceItem{
				OptionID: opt.ID,
				Label:    opt.Label,
				ImageURL: opt.ImageURL,
			})
		}
	}
	for _, id := range chosen {
		opt := optionByID(q, id)
		if opt == nil {
			continue
		}
		state.Chosen = append(state.Chosen, ChoiceItem{
			OptionID: opt.ID,
			Label:    opt.Label,
			ImageURL: opt.ImageURL,
			Selected: true,
		})
	}
	v.Sequence = state
	return v
}

func (sequenceRenderer) Interact(q *models.Question, host Host, in Interaction) error {
	if host.Disabled() {
		return nil
	}
	if in.OptionID == 0 {
		return ErrEmptyGesture
	}
	if optionByID(q, in.OptionID) == nil {
		return ErrUnknownOption
	}

	var current []uint
	if a, ok := host.GetSelected(q.ID).(models.SequenceAnswer); ok {
		current = a.Sequence
	}

	next := make([]uint, 0, len(current)+1)
	removed := false
	for _, id := range current {
		if id == in.OptionID {
			removed = true
			continue
		}
		next = append(next, id)
	}
	if !removed {
		next = append(next, in.OptionID)
	}

	return host.SetSelected(q.ID, models.SequenceAnswer{Sequence: next})
}
