package role

import "fmt"

// Stage is one of the ordered lesson stages.
type Stage string

const (
	StageWarmUp   Stage = "warm-up"
	StageSkill    Stage = "skill"
	StageBattle   Stage = "battle"
	StageCoaching Stage = "coaching"
	StageVocab    Stage = "vocab"
	StageSurgery  Stage = "surgery"
	StageReview   Stage = "review"
)

// Stages lists every stage in lesson order.
var Stages = []Stage{
	StageWarmUp,
	StageSkill,
	StageBattle,
	StageCoaching,
	StageVocab,
	StageSurgery,
	StageReview,
}

// ParseStage converts a string to a Stage.
func ParseStage(s string) (Stage, error) {
	st := Stage(s)
	if st.Index() < 0 {
		return "", fmt.Errorf("unknown stage %q", s)
	}
	return st, nil
}

// Index returns the position of s in lesson order, or -1.
func (s Stage) Index() int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return -1
}

// Next returns the stage after s. The last stage returns itself.
func (s Stage) Next() Stage {
	i := s.Index()
	if i < 0 || i == len(Stages)-1 {
		return s
	}
	return Stages[i+1]
}
