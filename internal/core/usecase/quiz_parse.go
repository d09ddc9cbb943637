package usecase

import (
	"strings"

	"github.com/studylab/exam-ai-assistant/internal/core/domain"
)

var quizOptionLabels = []string{"A", "B", "C", "D"}

// parseQuiz converts raw quiz completion text into structured items. The
// model is asked for a fixed format but does not perfectly obey it, so the
// parser is deliberately lenient: blocks are delimited by lookahead on
// "Question:" lines (blank-line spacing is unreliable), option slots A-D may
// be missing, and any block without question, answer letter and explanation
// is dropped silently. Callers must handle a shorter-than-requested quiz.
func parseQuiz(raw string) []domain.QuizItem {
	blocks := splitQuizBlocks(raw)
	items := make([]domain.QuizItem, 0, len(blocks))
	for _, block := range blocks {
		if item, ok := parseQuizBlock(block); ok {
			items = append(items, item)
		}
	}
	return items
}

// splitQuizBlocks groups lines into blocks, starting a new block at every
// "Question:" line. Text before the first question line is preamble and is
// discarded. No trailing delimiter is required: the final block closes at
// end of input.
func splitQuizBlocks(raw string) [][]string {
	lines := strings.Split(raw, "\n")

	var blocks [][]string
	var current []string
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if _, ok := markerValue(line, "Question:"); ok {
			if current != nil {
				blocks = append(blocks, current)
			}
			current = []string{line}
			continue
		}
		if current != nil {
			current = append(current, line)
		}
	}
	if current != nil {
		blocks = append(blocks, current)
	}
	return blocks
}

// parseQuizBlock scans one block for the quiz fields. Line positions are not
// fixed: every line is checked against every marker, so out-of-order option
// lines and extra blank lines are fine.
func parseQuizBlock(lines []string) (domain.QuizItem, bool) {
	item := domain.QuizItem{Options: make(map[string]string, len(quizOptionLabels))}

	for _, line := range lines {
		if v, ok := markerValue(line, "Question:"); ok && item.Question == "" {
			item.Question = v
			continue
		}
		if v, ok := markerValue(line, "Answer:"); ok && item.CorrectLabel == "" {
			item.CorrectLabel = answerLabel(v)
			continue
		}
		if v, ok := markerValue(line, "Explanation:"); ok && item.Explanation == "" {
			item.Explanation = v
			continue
		}
		for _, label := range quizOptionLabels {
			if v, ok := markerValue(line, label+"."); ok {
				if _, seen := item.Options[label]; !seen {
					item.Options[label] = v
				}
				break
			}
		}
	}

	if item.Question == "" || item.CorrectLabel == "" || item.Explanation == "" {
		return domain.QuizItem{}, false
	}
	return item, true
}

// markerValue reports whether the line starts with the given marker,
// tolerating leading whitespace and a list bullet, and returns the trimmed
// text after the marker.
func markerValue(line, marker string) (string, bool) {
	s := strings.TrimSpace(line)
	for _, bullet := range []string{"- ", "* "} {
		if strings.HasPrefix(s, bullet) {
			s = strings.TrimSpace(strings.TrimPrefix(s, bullet))
			break
		}
	}
	if !strings.HasPrefix(s, marker) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(s, marker)), true
}

// answerLabel extracts the single correct-option letter from the text after
// "Answer:". Anything that does not lead with A-D is treated as absent.
func answerLabel(v string) string {
	if v == "" {
		return ""
	}
	label := strings.ToUpper(v[:1])
	for _, known := range quizOptionLabels {
		if label == known {
			return label
		}
	}
	return ""
}
