package tutor

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubRetriever struct {
	passages []Passage
	calls    int
	lastTopK int
	lastPDF  string
}

func (s *stubRetriever) Retrieve(ctx context.Context, query string, topK int, activePDF string) []Passage {
	s.calls++
	s.lastTopK = topK
	s.lastPDF = activePDF
	return s.passages
}

type stubGenerator struct {
	answer  string
	calls   int
	prompts []string
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) string {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	return s.answer
}

type stubStore struct {
	fakeTurnSource
	pairErr   error
	pairCalls int
	pairs     [][2]string
}

func (s *stubStore) AppendTurnPair(ctx context.Context, sessionID int64, question, answer string) error {
	s.pairCalls++
	s.pairs = append(s.pairs, [2]string{question, answer})
	return s.pairErr
}

func TestAnswerShortCircuitsWithoutPassages(t *testing.T) {
	retr := &stubRetriever{} // nothing found
	gen := &stubGenerator{answer: "should never be used"}
	st := &stubStore{}
	o := NewOrchestrator(retr, gen, st, 0, testLogger())

	sid := int64(7)
	ans, err := o.Answer(context.Background(), Question{Text: "explain quantum llamas", SessionID: &sid})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if ans.Text != NoContentAnswer {
		t.Fatalf("expected fixed no-content answer, got %q", ans.Text)
	}
	if len(ans.Sources) != 0 || len(ans.Passages) != 0 {
		t.Fatalf("expected empty sources and passages, got %v / %v", ans.Sources, ans.Passages)
	}
	if gen.calls != 0 {
		t.Fatal("generation must not run on the short-circuit path")
	}
	if st.fakeTurnSource.calls != 0 {
		t.Fatal("history must not be loaded on the short-circuit path")
	}
	// The turn pair is still persisted.
	if st.pairCalls != 1 || st.pairs[0] != [2]string{"explain quantum llamas", NoContentAnswer} {
		t.Fatalf("expected persisted pair, got %v", st.pairs)
	}
}

func TestAnswerFullPipeline(t *testing.T) {
	retr := &stubRetriever{passages: []Passage{
		{PDFName: "os.pdf", ChunkID: "c1", Score: 0.92, Text: "Chapter 2 covers paging and segmentation."},
	}}
	gen := &stubGenerator{answer: "Chapter 2 is about memory management."}
	st := &stubStore{fakeTurnSource: fakeTurnSource{turns: []Turn{
		{SessionID: 3, Role: RoleAssistant, Content: "It covers virtual memory."},
		{SessionID: 3, Role: RoleUser, Content: "What is chapter 2 about?"},
	}}}
	o := NewOrchestrator(retr, gen, st, 0, testLogger())

	sid := int64(3)
	question := "Summarize chapter 2 for 10 marks"
	ans, err := o.Answer(context.Background(), Question{Text: question, ActivePDF: "os.pdf", SessionID: &sid})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if ans.Text != "Chapter 2 is about memory management." {
		t.Fatalf("unexpected answer: %q", ans.Text)
	}
	if retr.lastTopK != DefaultTopK || retr.lastPDF != "os.pdf" {
		t.Fatalf("unexpected retrieval call: topK=%d pdf=%q", retr.lastTopK, retr.lastPDF)
	}
	if len(ans.Sources) != 1 || ans.Sources[0] != "os.pdf" {
		t.Fatalf("unexpected sources: %v", ans.Sources)
	}
	if len(ans.Passages) != 1 {
		t.Fatalf("unexpected passages: %v", ans.Passages)
	}

	if gen.calls != 1 {
		t.Fatalf("expected one generation call, got %d", gen.calls)
	}
	prompt := gen.prompts[0]
	for _, want := range []string{
		"Target length: 10 marks (approx 200 words).",
		"Chapter 2 covers paging and segmentation.",
		"User: What is chapter 2 about?\nAssistant: It covers virtual memory.\n",
		"Current Question: " + question,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}

	// Persisted pair stores the raw question and generated answer verbatim.
	if st.pairCalls != 1 || st.pairs[0] != [2]string{question, "Chapter 2 is about memory management."} {
		t.Fatalf("unexpected persisted pair: %v", st.pairs)
	}
}

func TestAnswerWithoutSessionSkipsPersistence(t *testing.T) {
	retr := &stubRetriever{passages: []Passage{{PDFName: "a.pdf", Text: "text"}}}
	gen := &stubGenerator{answer: "ok"}
	st := &stubStore{}
	o := NewOrchestrator(retr, gen, st, 0, testLogger())

	if _, err := o.Answer(context.Background(), Question{Text: "q"}); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if st.pairCalls != 0 {
		t.Fatal("no session means no persistence")
	}
	if st.fakeTurnSource.calls != 0 {
		t.Fatal("no session means no history load")
	}
}

func TestAnswerPersistenceFailureSurfaces(t *testing.T) {
	retr := &stubRetriever{passages: []Passage{{PDFName: "a.pdf", Text: "text"}}}
	gen := &stubGenerator{answer: "ok"}
	st := &stubStore{pairErr: errors.New("disk on fire")}
	o := NewOrchestrator(retr, gen, st, 0, testLogger())

	sid := int64(1)
	if _, err := o.Answer(context.Background(), Question{Text: "q", SessionID: &sid}); err == nil {
		t.Fatal("expected persistence error to surface")
	}
}

func TestReviseSkipsRetrievalHistoryAndStore(t *testing.T) {
	retr := &stubRetriever{passages: []Passage{{PDFName: "a.pdf", Text: "text"}}}
	gen := &stubGenerator{answer: "X is Y"}
	st := &stubStore{}
	o := NewOrchestrator(retr, gen, st, 0, testLogger())

	got := o.Revise(context.Background(), "X is Y.", "shorten")
	if got != "X is Y" {
		t.Fatalf("unexpected revised answer: %q", got)
	}
	if retr.calls != 0 {
		t.Fatal("revise must not retrieve")
	}
	if st.fakeTurnSource.calls != 0 || st.pairCalls != 0 {
		t.Fatal("revise must not touch the store")
	}
	if gen.calls != 1 || !strings.Contains(gen.prompts[0], "Original Answer:\nX is Y.") {
		t.Fatalf("unexpected revise prompt: %v", gen.prompts)
	}
}
