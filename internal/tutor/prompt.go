package tutor

import "fmt"

// The instruction templates are a fixed contract: the generation backend is
// instruction-following and sensitive to wording, so the rule text and the
// marks-to-words heuristic must not be reworded.

const answerPromptTemplate = `
You are a strict AI tutor. You must answer the question ONLY using the provided context (staff-provided notes).

Rules:
1. STRICTLY use the provided context. Do NOT use outside knowledge.
2. If the answer is not in the context, explicitly say: "I am sorry, but the provided context does not contain information about [topic]. Therefore, I cannot explain it."
3. Do not make up information.
4. If the user asks for 'important questions' or a list, generate them based ONLY on the key concepts in the context.
5. Target length: %d marks (approx %d words).

Context:
%s

Conversation History:
%s

Current Question: %s

Answer:
`

const revisePromptTemplate = `
You are an AI tutor. You must follow the user’s editing request
but strictly use the original staff-provided answer context if needed.

Original Answer:
%s

User Request: %s (e.g. shorten, simplify, add example)

Revised Answer:
`

// BuildAnswerPrompt renders the grounded-answer instruction: rules, target
// length (marks, approximated as marks*20 words), context block, rendered
// history, the literal question, and the trailing Answer: cue.
func BuildAnswerPrompt(marks int, contextBlock string, turns []Turn, question string) string {
	return fmt.Sprintf(answerPromptTemplate, marks, marks*20, contextBlock, RenderHistory(turns), question)
}

// BuildRevisePrompt renders the revision instruction: the previous answer
// verbatim plus the user's free-text edit request. No context or history.
func BuildRevisePrompt(previousAnswer, request string) string {
	return fmt.Sprintf(revisePromptTemplate, previousAnswer, request)
}
