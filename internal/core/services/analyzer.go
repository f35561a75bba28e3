package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ewilliams-labs/melon/internal/core/domain"
	"github.com/ewilliams-labs/melon/internal/core/ports"
)

// Analyzer routes text analysis through the result cache.
type Analyzer struct {
	analyzer ports.TextAnalyzer
	cache    ports.AnalysisCache
}

// NewAnalyzer constructs an Analyzer. cache may be nil.
func NewAnalyzer(analyzer ports.TextAnalyzer, cache ports.AnalysisCache) *Analyzer {
	return &Analyzer{analyzer: analyzer, cache: cache}
}

// Analyze returns the cached analysis for req, computing it on a miss.
func (a *Analyzer) Analyze(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisResult, error) {
	if strings.TrimSpace(req.Text) == "" || req.Language == "" || req.Level == "" {
		return domain.AnalysisResult{}, fmt.Errorf("service: text, language and level are required: %w", domain.ErrIncompleteRecord)
	}

	compute := func(ctx context.Context) (domain.AnalysisResult, error) {
		return a.analyzer.AnalyzeText(ctx, req)
	}
	if a.cache == nil {
		return compute(ctx)
	}
	return a.cache.GetOrCompute(ctx, req, compute)
}

// Chat continues a conversation with the language model. Replies depend on
// the whole history, so they bypass the cache.
func (a *Analyzer) Chat(ctx context.Context, message string, history []domain.ChatMessage) (domain.ChatReply, error) {
	if strings.TrimSpace(message) == "" {
		return domain.ChatReply{}, fmt.Errorf("service: message is required: %w", domain.ErrIncompleteRecord)
	}
	for _, m := range history {
		if m.Role != "user" && m.Role != "assistant" {
			return domain.ChatReply{}, fmt.Errorf("service: unexpected role %q in history: %w", m.Role, domain.ErrIncompleteRecord)
		}
	}
	return a.analyzer.Chat(ctx, message, history)
}
