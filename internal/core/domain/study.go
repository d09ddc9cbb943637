package domain

// QuizItem is one parsed multiple-choice question. Options may be partially
// missing; Question, CorrectLabel and Explanation are always present on a
// parsed item.
type QuizItem struct {
	Question     string            `json:"question"`
	Options      map[string]string `json:"options"`
	CorrectLabel string            `json:"correct_label"`
	Explanation  string            `json:"explanation"`
}

// StudyResult is the full outcome of one question against a session.
// The three generated sections fail independently: a non-empty error field
// means that section is absent, the others are still usable.
type StudyResult struct {
	Answer    string        `json:"answer,omitempty"`
	FollowUps string        `json:"follow_ups,omitempty"`
	Quiz      []QuizItem    `json:"quiz,omitempty"`
	Sources   []ScoredChunk `json:"sources,omitempty"`

	// RerankDegraded marks results served in pre-rerank order after a
	// scorer failure.
	RerankDegraded bool `json:"rerank_degraded,omitempty"`

	AnswerError   string `json:"answer_error,omitempty"`
	FollowUpError string `json:"follow_up_error,omitempty"`
	QuizError     string `json:"quiz_error,omitempty"`
}
