package render

import "github.com/WiseOwlEnglish/testrun-service/internal/models"

// VerdictHost replays a graded attempt through the same renderer registry in
// read-only mode: selections come from the verdict's recorded answers and the
// correctness signal lights up per-question marks.
type VerdictHost struct {
	Verdict *models.Verdict
}

func NewVerdictHost(v *models.Verdict) *VerdictHost {
	return &VerdictHost{Verdict: v}
}

func (h *VerdictHost) GetSelected(questionID uint) models.Answer {
	if h.Verdict == nil {
		return nil
	}
	return h.Verdict.RecordedAnswer(questionID)
}

// SetSelected is a no-op: review mode never mutates recorded answers.
func (h *VerdictHost) SetSelected(questionID uint, a models.Answer) error {
	return nil
}

func (h *VerdictHost) Disabled() bool {
	return true
}

func (h *VerdictHost) Correctness(questionID uint) (bool, bool) {
	if h.Verdict == nil {
		return false, false
	}
	return h.Verdict.Correctness(questionID)
}
