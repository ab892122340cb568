package models

// AnswerKind discriminates the four answer shapes a question can record.
type AnswerKind string

const (
	KindOption   AnswerKind = "option"
	KindText     AnswerKind = "text"
	KindSequence AnswerKind = "sequence"
	KindPairs    AnswerKind = "pairs"
)

// Answer is the learner's in-session response to a single question. It is a
// closed union: exactly the four kinds below implement it.
type Answer interface {
	Kind() AnswerKind
	answer()
}

// OptionAnswer records a single selected option.
type OptionAnswer struct {
	OptionID uint `json:"option_id"`
}

// TextAnswer records free-form text, stored exactly as typed. Trimming and
// case folding are the grader's concern, not the session's.
type TextAnswer struct {
	Text string `json:"text"`
}

// SequenceAnswer records option ids in the order the learner arranged them.
type SequenceAnswer struct {
	Sequence []uint `json:"sequence"`
}

// PairsAnswer records left/right option pairings.
type PairsAnswer struct {
	Pairs []MatchPair `json:"pairs"`
}

type MatchPair struct {
	LeftID  uint `json:"left_id"`
	RightID uint `json:"right_id"`
}

func (OptionAnswer) Kind() AnswerKind   { return KindOption }
func (TextAnswer) Kind() AnswerKind     { return KindText }
func (SequenceAnswer) Kind() AnswerKind { return KindSequence }
func (PairsAnswer) Kind() AnswerKind    { return KindPairs }

func (OptionAnswer) answer()   {}
func (TextAnswer) answer()     {}
func (SequenceAnswer) answer() {}
func (PairsAnswer) answer()    {}

// AnswersEqual reports whether two answers are state-equal. Sequences compare
// by order, pairs as a set.
func AnswersEqual(a, b Answer) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case OptionAnswer:
		return av == b.(OptionAnswer)
	case TextAnswer:
		return av == b.(TextAnswer)
	case SequenceAnswer:
		bv := b.(SequenceAnswer)
		if len(av.Sequence) != len(bv.Sequence) {
			return false
		}
		for i := range av.Sequence {
			if av.Sequence[i] != bv.Sequence[i] {
				return false
			}
		}
		return true
	case PairsAnswer:
		bv := b.(PairsAnswer)
		if len(av.Pairs) != len(bv.Pairs) {
			return false
		}
		set := make(map[MatchPair]struct{}, len(av.Pairs))
		for _, p := range av.Pairs {
			set[p] = struct{}{}
		}
		for _, p := range bv.Pairs {
			if _, ok := set[p]; !ok {
				return false
			}
		}
		return true
	}
	return false
}

// SubmittedAnswer is the wire shape of one answer entry in a submission.
// Exactly one value field is populated for an answered question; all are
// omitted for an unanswered one, but the entry itself is always present.
type SubmittedAnswer struct {
	QuestionID uint        `json:"question_id" validate:"required"`
	OptionID   *uint       `json:"option_id,omitempty"`
	TextInput  *string     `json:"text_input,omitempty"`
	Sequence   []uint      `json:"sequence,omitempty"`
	Pairs      []MatchPair `json:"pairs,omitempty"`
}

// NewSubmittedAnswer serializes an in-session answer for submission. A nil
// answer yields an entry carrying only the question id.
func NewSubmittedAnswer(questionID uint, a Answer) SubmittedAnswer {
	sa := SubmittedAnswer{QuestionID: questionID}
	switch av := a.(type) {
	case OptionAnswer:
		optionID := av.OptionID
		sa.OptionID = &optionID
	case TextAnswer:
		text := av.Text
		sa.TextInput = &text
	case SequenceAnswer:
		sa.Sequence = av.Sequence
	case PairsAnswer:
		sa.Pairs = av.Pairs
	}
	return sa
}

// Answered reports whether any value field is populated.
func (sa SubmittedAnswer) Answered() bool {
	return sa.OptionID != nil || sa.TextInput != nil || len(sa.Sequence) > 0 || len(sa.Pairs) > 0
}

// Decode reconstructs the session answer, or nil when unanswered.
func (sa SubmittedAnswer) Decode() Answer {
	switch {
	case sa.OptionID != nil:
		return OptionAnswer{OptionID: *sa.OptionID}
	case sa.TextInput != nil:
		return TextAnswer{Text: *sa.TextInput}
	case len(sa.Sequence) > 0:
		return SequenceAnswer{Sequence: sa.Sequence}
	case len(sa.Pairs) > 0:
		return PairsAnswer{Pairs: sa.Pairs}
	}
	return nil
}

// AnswerKey is the stored correct answer for a question. It is also returned
// inside verdicts as the correct-answer reference the review view renders.
// The populated field matches the question type; Texts lists all accepted
// spellings for a text-fill question.
type AnswerKey struct {
	OptionID *uint       `json:"option_id,omitempty"`
	Texts    []string    `json:"texts,omitempty"`
	Sequence []uint      `json:"sequence,omitempty"`
	Pairs    []MatchPair `json:"pairs,omitempty"`
}
