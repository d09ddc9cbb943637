package usecase

import "testing"

func TestParseQuizWellFormedOutput(t *testing.T) {
	raw := `Question: What does BM25 rank?
A. Images
B. Documents by keyword relevance
C. Vectors
D. Users
Answer: B
Explanation: BM25 is a lexical ranking function over documents.

Question: Which store holds the embeddings?
A. Postgres
B. Local disk
C. The vector database
D. The message queue
Answer: C
Explanation: Embeddings live in the vector database.`

	items := parseQuiz(raw)
	if len(items) != 2 {
		t.Fatalf("expected 2 quiz items, got %d", len(items))
	}

	first := items[0]
	if first.Question != "What does BM25 rank?" {
		t.Fatalf("unexpected question: %q", first.Question)
	}
	if first.CorrectLabel != "B" {
		t.Fatalf("expected correct label B, got %q", first.CorrectLabel)
	}
	if len(first.Options) != 4 || first.Options["B"] != "Documents by keyword relevance" {
		t.Fatalf("unexpected options: %v", first.Options)
	}
	if first.Explanation == "" {
		t.Fatalf("expected explanation to be captured")
	}
	if items[1].CorrectLabel != "C" {
		t.Fatalf("expected second item label C, got %q", items[1].CorrectLabel)
	}
}

func TestParseQuizMissingOptionStillParses(t *testing.T) {
	raw := `Question: Partial options?
A. Yes
B. No
Answer: A
Explanation: Options C and D were not produced.`

	items := parseQuiz(raw)
	if len(items) != 1 {
		t.Fatalf("expected 1 quiz item, got %d", len(items))
	}
	if len(items[0].Options) != 2 {
		t.Fatalf("expected 2 options, got %v", items[0].Options)
	}
	if _, ok := items[0].Options["D"]; ok {
		t.Fatalf("option D must be absent")
	}
}

func TestParseQuizDropsBlockWithoutAnswer(t *testing.T) {
	raw := `Question: Kept item?
Answer: A
Explanation: fine.

Question: Broken item without answer
A. Something
Explanation: no answer line above.`

	items := parseQuiz(raw)
	if len(items) != 1 {
		t.Fatalf("expected broken block to be dropped, got %d items", len(items))
	}
	if items[0].Question != "Kept item?" {
		t.Fatalf("wrong surviving item: %q", items[0].Question)
	}
}

func TestParseQuizDropsBlockWithInvalidAnswerLetter(t *testing.T) {
	raw := `Question: Bad letter
A. One
Answer: E
Explanation: out of range.`

	if items := parseQuiz(raw); len(items) != 0 {
		t.Fatalf("expected 0 items, got %d", len(items))
	}
}

func TestParseQuizToleratesBulletsAndPreamble(t *testing.T) {
	raw := `Here is your quiz:

- Question: Bulleted question?
- A. First
- B. Second
- Answer: a) because the first option is right
- Explanation: trimmed and matched.`

	items := parseQuiz(raw)
	if len(items) != 1 {
		t.Fatalf("expected 1 quiz item, got %d", len(items))
	}
	if items[0].CorrectLabel != "A" {
		t.Fatalf("expected normalized label A, got %q", items[0].CorrectLabel)
	}
	if items[0].Options["A"] != "First" {
		t.Fatalf("unexpected option text: %v", items[0].Options)
	}
}

func TestParseQuizEmptyAndGarbageInput(t *testing.T) {
	if items := parseQuiz(""); len(items) != 0 {
		t.Fatalf("expected no items for empty input, got %d", len(items))
	}
	if items := parseQuiz("The context does not support a quiz."); len(items) != 0 {
		t.Fatalf("expected no items for prose input, got %d", len(items))
	}
}
