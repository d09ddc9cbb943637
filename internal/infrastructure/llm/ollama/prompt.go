package ollama

import "fmt"

func buildAnswerPrompt(contextText, question string) string {
	return fmt.Sprintf(`You are a helpful undergraduate teaching AI assistant. Answer the question based only on the context below.
If the context is insufficient, say so directly.

Context:
%s

Question:
%s

Answer:`, contextText, question)
}

func buildFollowUpPrompt(contextText, question string) string {
	return fmt.Sprintf(`You are a thoughtful AI tutor. Based on the context and the undergraduate question, provide relevant information in bullet points that will deepen their understanding and they can expect in exams.

Context:
%s

Question:
%s

Follow-Up Questions:`, contextText, question)
}

func buildQuizPrompt(contextText, question string, questions int) string {
	return fmt.Sprintf(`You are an AI tutor helping students prepare for exams. Based on the context and the original question, generate a quiz with %d multiple-choice questions.

Each question must follow this exact format:
Question: [Your question here]
A. [Option A]
B. [Option B]
C. [Option C]
D. [Option D]
Answer: [Correct option letter, e.g., C]
Explanation: [Short explanation for why this is the correct answer]

Guidelines:
- Ensure the correct answer is clearly labeled with "Answer:" and the explanation starts with "Explanation:"
- Questions should range from beginner to advanced.
- Keep explanations simple and easy to understand for undergraduate students.

Context:
%s

Original Question:
%s

Quiz:`, questions, contextText, question)
}

func buildHypotheticalPrompt(question string) string {
	return fmt.Sprintf(`Write a short, plausible passage that directly answers the question below, as it might appear in a textbook. Do not say you are unsure; a best-effort draft is fine. One paragraph.

Question:
%s

Passage:`, question)
}
