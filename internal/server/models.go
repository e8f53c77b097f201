package server

import "github.com/mudhay027/ritaitutor/internal/tutor"

// AskRequest is the inbound ask payload.
type AskRequest struct {
	Question  string `json:"question"`
	ActivePdf string `json:"activePdf"`
	SessionID *int64 `json:"sessionId"`
}

// AskResponse carries the answer plus citation material for the UI.
type AskResponse struct {
	Answer     string          `json:"answer"`
	Source     []string        `json:"source"`
	UsedChunks []tutor.Passage `json:"used_chunks"`
}

// ModifyRequest is the inbound revise payload.
type ModifyRequest struct {
	Request        string `json:"request"`
	PreviousAnswer string `json:"previousAnswer"`
}

// ModifyResponse carries the revised answer.
type ModifyResponse struct {
	Answer string `json:"answer"`
}
