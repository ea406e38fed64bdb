package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"autochat/internal/domain"
)

const compressSystemPrompt = `You are a conversation summarizer. Given a conversation history, produce a concise summary that preserves:
- Key facts, decisions, and conclusions
- User preferences and requirements
- Important context needed to continue the conversation
- Any pending tasks or questions

Output ONLY the summary, no preamble. Be concise but comprehensive.`

// CompressionConfig controls history compression behavior.
type CompressionConfig struct {
	Enabled    bool
	Threshold  int
	KeepRecent int
}

// Compressor summarizes old thread messages to reduce token usage.
type Compressor struct {
	llm    domain.LLMProvider
	config CompressionConfig
	logger *slog.Logger
}

// NewCompressor creates a compressor with the given config.
func NewCompressor(llm domain.LLMProvider, cfg CompressionConfig, logger *slog.Logger) *Compressor {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 30
	}
	if cfg.KeepRecent <= 0 {
		cfg.KeepRecent = 10
	}
	return &Compressor{
		llm:    llm,
		config: cfg,
		logger: logger,
	}
}

// ShouldCompress returns true if the thread has more messages than the threshold.
func (c *Compressor) ShouldCompress(thread *Thread) bool {
	return thread.MessageCount() > c.config.Threshold
}

// Compress summarizes older messages and replaces them with a summary plus
// the recent tail. It only runs when the thread exceeds the threshold.
func (c *Compressor) Compress(ctx context.Context, thread *Thread) error {
	if !c.ShouldCompress(thread) {
		return nil
	}
	return c.compress(ctx, thread)
}

// ForceCompress compresses the thread regardless of threshold. The context
// guard uses this when the token budget is close to overflowing.
func (c *Compressor) ForceCompress(ctx context.Context, thread *Thread) error {
	return c.compress(ctx, thread)
}

func (c *Compressor) compress(ctx context.Context, thread *Thread) error {
	msgs := thread.Messages()
	if len(msgs) <= c.config.KeepRecent {
		return nil
	}

	toSummarize := msgs[:len(msgs)-c.config.KeepRecent]

	var sb strings.Builder
	for _, msg := range toSummarize {
		if msg.Role == domain.RoleSystem {
			continue
		}
		fmt.Fprintf(&sb, "%s: %s\n", msg.Role, msg.Content)
	}

	convText := sb.String()
	if strings.TrimSpace(convText) == "" {
		return nil
	}

	req := domain.ChatRequest{
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Content: compressSystemPrompt},
			{Role: domain.RoleUser, Content: convText},
		},
		Temperature: 0.3,
	}

	resp, err := c.llm.Chat(ctx, req)
	if err != nil {
		c.logger.Warn("compression failed, continuing without compression", "error", err)
		return domain.WrapOp("compress", err)
	}

	summary := strings.TrimSpace(resp.Message.Content)
	if summary == "" {
		return nil
	}

	thread.ReplaceWithSummary(summary, c.config.KeepRecent)
	c.logger.Info("conversation compressed",
		"thread", thread.Key,
		"original_count", len(msgs),
		"kept_recent", c.config.KeepRecent,
	)

	return nil
}
