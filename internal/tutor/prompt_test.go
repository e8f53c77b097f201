package tutor

import (
	"strings"
	"testing"
)

func TestBuildAnswerPrompt(t *testing.T) {
	turns := []Turn{
		{Role: RoleUser, Content: "What is chapter 2 about?"},
		{Role: RoleAssistant, Content: "It covers virtual memory."},
	}
	prompt := BuildAnswerPrompt(10, "--- Source: os.pdf ---\nchapter two text\n\n", turns, "Summarize chapter 2 for 10 marks")

	for _, want := range []string{
		"You are a strict AI tutor.",
		"STRICTLY use the provided context. Do NOT use outside knowledge.",
		`"I am sorry, but the provided context does not contain information about [topic]. Therefore, I cannot explain it."`,
		"Do not make up information.",
		"generate them based ONLY on the key concepts in the context",
		"Target length: 10 marks (approx 200 words).",
		"--- Source: os.pdf ---",
		"User: What is chapter 2 about?\nAssistant: It covers virtual memory.\n",
		"Current Question: Summarize chapter 2 for 10 marks",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if !strings.HasSuffix(prompt, "Answer:\n") {
		t.Fatalf("prompt must end with the Answer: cue, got tail %q", prompt[len(prompt)-20:])
	}
	// History precedes the question.
	if strings.Index(prompt, "It covers virtual memory.") > strings.Index(prompt, "Current Question:") {
		t.Fatal("history must appear before the current question")
	}
}

func TestBuildAnswerPromptDefaultMarks(t *testing.T) {
	prompt := BuildAnswerPrompt(DefaultMarks, "ctx", nil, "explain recursion")
	if !strings.Contains(prompt, "Target length: 5 marks (approx 100 words).") {
		t.Fatalf("default marks line missing:\n%s", prompt)
	}
}

func TestBuildRevisePrompt(t *testing.T) {
	prompt := BuildRevisePrompt("X is Y.", "shorten")

	for _, want := range []string{
		"You are an AI tutor.",
		"Original Answer:\nX is Y.",
		"User Request: shorten (e.g. shorten, simplify, add example)",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("revise prompt missing %q:\n%s", want, prompt)
		}
	}
	if !strings.HasSuffix(prompt, "Revised Answer:\n") {
		t.Fatal("revise prompt must end with the Revised Answer: cue")
	}
	// No grounding interpolation in the revise flow.
	if strings.Contains(prompt, "Context:") || strings.Contains(prompt, "Conversation History:") {
		t.Fatal("revise prompt must not interpolate context or history")
	}
}
