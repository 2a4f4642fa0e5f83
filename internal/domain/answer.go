package domain

// AnswerStatus classifies a sub-question answer. Branching on the status
// replaces substring checks against the model output.
type AnswerStatus string

const (
	// StatusAnswered means the model produced an answer grounded in the
	// supplied passages.
	StatusAnswered AnswerStatus = "answered"
	// StatusInsufficient means retrieval or the model found no support
	// for an answer. It is an outcome, not an error.
	StatusInsufficient AnswerStatus = "insufficient"
)

// Citation binds a numeric marker in answer text to the passage it
// references.
type Citation struct {
	Index   int
	Passage Passage
}

// SubQuestionAnswer is the result of one answer attempt for one focused
// question. Fallback attempts supersede it rather than mutate it.
type SubQuestionAnswer struct {
	Question       string
	AnswerText     string
	Status         AnswerStatus
	Citations      []Citation
	SourcePassages []Passage
}

// Insufficient reports whether the attempt found no supporting data.
func (a SubQuestionAnswer) Insufficient() bool {
	return a.Status == StatusInsufficient
}

// GapAnalysis lists what a draft answer is missing and the follow-up
// questions that would retrieve it. Advisory: either list may be empty.
type GapAnalysis struct {
	MissingInformation []string
	FollowUpQuestions  []string
}

// FinalAnswer is the terminal artifact of one end-to-end invocation.
// Citation indices are contiguous from 1 with one canonical number per
// underlying passage.
type FinalAnswer struct {
	Text      string
	Citations []Citation
}
