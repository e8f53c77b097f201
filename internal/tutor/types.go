package tutor

import (
	"regexp"
	"strconv"
	"time"
)

// Roles stored with conversation turns.
const (
	RoleUser      = "User"
	RoleAssistant = "Assistant"
)

// DefaultMarks is the answer-length target used when the question does not
// name one.
const DefaultMarks = 5

// Question is a single inbound student question. Immutable once received.
type Question struct {
	Text      string
	ActivePDF string // optional single-document filter; empty means all
	SessionID *int64 // optional; nil disables history and persistence
}

// Passage is one retrieved excerpt of source-document text. Passages live
// only for the duration of one request; they are never persisted.
type Passage struct {
	PDFName string  `json:"pdf_name"`
	ChunkID string  `json:"chunk_id"`
	Score   float64 `json:"score"`
	Text    string  `json:"text"`
}

// Turn is one message in a conversation session. Append-only.
type Turn struct {
	SessionID int64
	Role      string
	Content   string
	CreatedAt time.Time
}

// Answer is the outcome of a full ask pipeline run.
type Answer struct {
	Text     string
	Sources  []string
	Passages []Passage
}

// IndexStatus mirrors the external index service's status report.
type IndexStatus struct {
	IndexExists   bool `json:"index_exists"`
	ChunkCount    int  `json:"chunk_count"`
	MetadataCount int  `json:"metadata_count"`
}

var marksPattern = regexp.MustCompile(`(?i)(\d+)\s*marks?`)

// TargetMarks extracts the requested answer length from the question text,
// e.g. "explain X for 10 marks" yields 10. Defaults to DefaultMarks when the
// question names none.
func TargetMarks(question string) int {
	m := marksPattern.FindStringSubmatch(question)
	if m == nil {
		return DefaultMarks
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return DefaultMarks
	}
	return n
}
