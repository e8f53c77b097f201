package tutor

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// NoContentAnswer is returned when retrieval finds nothing for a question.
const NoContentAnswer = "No relevant content found in the selected PDF(s). Try selecting 'All PDFs' or rephrasing."

// DefaultTopK is the number of passages requested from the index per question.
const DefaultTopK = 10

// Retriever returns ranked passages for a query. Implementations never
// fail; an empty result stands in for every failure mode.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int, activePDF string) []Passage
}

// Generator produces answer text for a rendered prompt. All outcomes are
// plain text.
type Generator interface {
	Generate(ctx context.Context, prompt string) string
}

// ConversationStore is the slice of the external conversation store the
// pipeline needs: a windowed read and an atomic pair write.
type ConversationStore interface {
	TurnSource
	AppendTurnPair(ctx context.Context, sessionID int64, question, answer string) error
}

// Orchestrator sequences retrieval, context assembly, history windowing,
// prompt construction, generation and persistence for one question at a
// time. It holds no mutable state; concurrent requests share nothing but
// the store and the index, which have their own consistency guarantees.
type Orchestrator struct {
	retriever Retriever
	generator Generator
	turns     ConversationStore
	topK      int
	logger    *log.Logger
}

// NewOrchestrator wires the pipeline components together.
func NewOrchestrator(retriever Retriever, generator Generator, turns ConversationStore, topK int, logger *log.Logger) *Orchestrator {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[ORCH] ", log.LstdFlags)
	}
	return &Orchestrator{
		retriever: retriever,
		generator: generator,
		turns:     turns,
		topK:      topK,
		logger:    logger,
	}
}

// Answer runs the full ask pipeline for one question. The only error cases
// are internal faults (history read, persistence); retrieval and generation
// failures surface as answer text.
func (o *Orchestrator) Answer(ctx context.Context, q Question) (Answer, error) {
	start := time.Now()
	defer func() { answerDuration.Observe(time.Since(start).Seconds()) }()

	reqID := uuid.New().String()
	marks := TargetMarks(q.Text)
	o.logger.Printf("[%s] question received (marks=%d, active_pdf=%q, session=%v)", reqID, marks, q.ActivePDF, q.SessionID != nil)

	passages := o.retriever.Retrieve(ctx, q.Text, o.topK, q.ActivePDF)
	if len(passages) == 0 {
		// Cheap path: no context assembly, no history, no generation.
		retrievalEmpty.Inc()
		questionsTotal.WithLabelValues("no_content").Inc()
		o.logger.Printf("[%s] no passages found, returning fallback", reqID)
		if err := o.persistTurnPair(ctx, q, NoContentAnswer); err != nil {
			return Answer{}, err
		}
		return Answer{Text: NoContentAnswer, Sources: []string{}, Passages: []Passage{}}, nil
	}

	// Context assembly and the history read are independent; overlap them.
	type historyResult struct {
		turns []Turn
		err   error
	}
	historyCh := make(chan historyResult, 1)
	go func() {
		turns, err := LoadHistory(ctx, o.turns, q.SessionID)
		historyCh <- historyResult{turns: turns, err: err}
	}()

	contextBlock, sources := AssembleContext(passages)

	hist := <-historyCh
	if hist.err != nil {
		questionsTotal.WithLabelValues("error").Inc()
		return Answer{}, fmt.Errorf("answer %s: %w", reqID, hist.err)
	}

	prompt := BuildAnswerPrompt(marks, contextBlock, hist.turns, q.Text)
	answer := o.generator.Generate(ctx, prompt)

	if err := o.persistTurnPair(ctx, q, answer); err != nil {
		questionsTotal.WithLabelValues("error").Inc()
		return Answer{}, fmt.Errorf("answer %s: %w", reqID, err)
	}

	questionsTotal.WithLabelValues("answered").Inc()
	o.logger.Printf("[%s] answered from %d passages across %d sources", reqID, len(passages), len(sources))
	return Answer{Text: answer, Sources: sources, Passages: passages}, nil
}

// Revise rewrites a previous answer per the user's instruction. It touches
// neither retrieval nor history and persists nothing.
func (o *Orchestrator) Revise(ctx context.Context, previousAnswer, request string) string {
	revisionsTotal.Inc()
	prompt := BuildRevisePrompt(previousAnswer, request)
	return o.generator.Generate(ctx, prompt)
}

// persistTurnPair writes the question/answer pair as one unit when a
// session was supplied. Both rows or neither.
func (o *Orchestrator) persistTurnPair(ctx context.Context, q Question, answer string) error {
	if q.SessionID == nil {
		return nil
	}
	if err := o.turns.AppendTurnPair(ctx, *q.SessionID, q.Text, answer); err != nil {
		return fmt.Errorf("persist turn pair: %w", err)
	}
	return nil
}
