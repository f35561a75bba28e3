package domain

import "strings"

// AnalysisRequest asks for a translation and explanation of a text.
type AnalysisRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Level    string `json:"level"`
}

// NormalizedText is the text form used for cache identity.
func (r AnalysisRequest) NormalizedText() string {
	return strings.ToLower(strings.TrimSpace(r.Text))
}

// AnalysisResult is the language model's answer.
type AnalysisResult struct {
	Analysis string `json:"analysis"`
}

// ChatMessage is one turn of a conversation with the language model.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatReply is the model's answer and the conversation including it.
type ChatReply struct {
	Reply   string        `json:"reply"`
	History []ChatMessage `json:"history"`
}
