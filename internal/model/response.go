package model

import "time"

type ErrorResponse struct {
	Error string `json:"error"`
	Type  string `json:"type,omitempty"`
}

type DeckListResponse struct {
	Decks []*DeckRecord `json:"decks"`
	Total int           `json:"total"`
}

// StreamEvent SSE 流式生成的阶段事件
type StreamEvent struct {
	Stage      string    `json:"stage"` // start / outline / normalize / enrich / render / complete / error
	Message    string    `json:"message"`
	SlideIndex int       `json:"slide_index,omitempty"`
	DeckID     string    `json:"deck_id,omitempty"`
	Filename   string    `json:"filename,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Error      string    `json:"error,omitempty"`
}
