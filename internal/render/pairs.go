package render

import "github.com/WiseOwlEnglish/testrun-service/internal/models"

// pairsRenderer handles matching questions. A gesture carrying LeftID and
// RightID joins two unpaired options from opposite sides; a gesture carrying
// OptionID releases whichever pair that option is part of. An option can
// never sit in two pairs at once.
type pairsRenderer struct{}

func (pairsRenderer) Render(q *models.Question, host Host) View {
	v := newView(q, host)

	var pairs []models.MatchPair
	if a, ok := host.GetSelected(q.ID).(models.PairsAnswer); ok {
		pairs = a.Pairs
	}
	paired := make(map[uint]bool, len(pairs)*2)
	for _, p := range pairs {
		paired[p.LeftID] = true
		paired[p.RightID] = true
	}

	state := &PairsState{
		Left:  []PairItem{},
		Right: []PairItem{},
		Pairs: pairs,
	}
	for _, opt := range sortedOptions(q) {
		item := PairItem{
			OptionID: opt.ID,
			Label:    opt.Label,
			ImageURL: opt.ImageURL,
			Paired:   paired[opt.ID],
		}
		switch opt.Side {
		case models.SideLeft:
			state.Left = append(state.Left, item)
		case models.SideRight:
			state.Right = append(state.Right, item)
		}
	}
	v.Pairs = state
	return v
}

func (pairsRenderer) Interact(q *models.Question, host Host, in Interaction) error {
	if host.Disabled() {
		return nil
	}

	var current []models.MatchPair
	if a, ok := host.GetSelected(q.ID).(models.PairsAnswer); ok {
		current = a.Pairs
	}

	// Release gesture: un-pair whichever pair contains the option.
	if in.OptionID != 0 {
		if optionByID(q, in.OptionID) == nil {
			return ErrUnknownOption
		}
		next := make([]models.MatchPair, 0, len(current))
		for _, p := range current {
			if p.LeftID == in.OptionID || p.RightID == in.OptionID {
				continue
			}
			next = append(next, p)
		}
		return host.SetSelected(q.ID, models.PairsAnswer{Pairs: next})
	}

	if in.LeftID == 0 || in.RightID == 0 {
		return ErrEmptyGesture
	}

	left := optionByID(q, in.LeftID)
	right := optionByID(q, in.RightID)
	if left == nil || right == nil {
		return ErrUnknownOption
	}
	if left.Side != models.SideLeft || right.Side != models.SideRight {
		return ErrSideMismatch
	}

	// Joining an already-paired item first releases its old pair, so no
	// option ever appears in two pairs.
	next := make([]models.MatchPair, 0, len(current)+1)
	for _, p := range current {
		if p.LeftID == in.LeftID || p.RightID == in.RightID {
			continue
		}
		next = append(next, p)
	}
	next = append(next, models.MatchPair{LeftID: in.LeftID, RightID: in.RightID})

	return host.SetSelected(q.ID, models.PairsAnswer{Pairs: next})
}
