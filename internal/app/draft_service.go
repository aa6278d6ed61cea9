package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"email-assistant/internal/ai"
	"email-assistant/internal/model"
)

var (
	ErrLogNotFound = errors.New("log not found")
	// ErrProviderFailure wraps the provider's own message so the
	// handler can surface it with a 500.
	ErrProviderFailure = errors.New("email generation failed")
)

const (
	defaultLength = 120
	defaultTone   = "formal"

	systemPrompt = "You are a helpful email assistant. " +
		"You get a prompt to write an email, " +
		"you reply with the email and nothing else."
)

// EmailLogStore is what the drafting flow needs from persistence.
type EmailLogStore interface {
	Create(log *model.EmailLog) error
	ListByUserID(userID uint) ([]model.EmailLog, error)
	GetByIDAndUserID(id, userID uint) (*model.EmailLog, error)
}

// Completer is the text-generation provider boundary.
type Completer interface {
	Complete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage, maxTokens int) (string, error)
}

// UsagePublisher delivers fire-and-forget usage events; failures never
// fail the draft request.
type UsagePublisher interface {
	Publish(ctx context.Context, event model.UsageEvent) error
}

// LogListCache is the optional Redis-backed listing cache.
type LogListCache interface {
	GetLogs(ctx context.Context, userID uint) ([]model.EmailLog, bool, error)
	SetLogs(ctx context.Context, userID uint, logs []model.EmailLog) error
	DeleteLogs(ctx context.Context, userID uint) error
	MarkDirty(ctx context.Context, userID uint) error
	IsDirty(ctx context.Context, userID uint) (bool, error)
}

type DraftService struct {
	logs      EmailLogStore
	llmClient Completer
	llmCfg    ai.ChatConfig
	publisher UsagePublisher
	logCache  LogListCache
}

type GenerateInput struct {
	UserID    uint
	UserInput string
	ReplyTo   *string
	Context   *string
	Length    *int
	Tone      string
}

func NewDraftService(
	logs EmailLogStore,
	llmClient Completer,
	llmCfg ai.ChatConfig,
	publisher UsagePublisher,
	logCache LogListCache,
) *DraftService {
	return &DraftService{
		logs:      logs,
		llmClient: llmClient,
		llmCfg:    llmCfg,
		publisher: publisher,
		logCache:  logCache,
	}
}

// Generate builds the prompt, calls the provider once (no retry), and
// persists the log row before returning. A provider failure leaves no
// partial row behind.
func (s *DraftService) Generate(ctx context.Context, input GenerateInput) (*model.EmailLog, error) {
	if input.UserID == 0 || input.UserInput == "" {
		return nil, ErrInvalidInput
	}

	length := defaultLength
	if input.Length != nil {
		length = *input.Length
	}
	tone := input.Tone
	if tone == "" {
		tone = defaultTone
	}

	messages := buildPromptMessages(input.UserInput, input.ReplyTo, input.Context, length, tone)

	generated, err := s.llmClient.Complete(ctx, s.llmCfg, messages, length)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}

	logEntry := &model.EmailLog{
		UserID:         input.UserID,
		UserInput:      input.UserInput,
		ReplyTo:        input.ReplyTo,
		Context:        input.Context,
		Length:         &length,
		Tone:           tone,
		GeneratedEmail: generated,
		CreatedAt:      time.Now().UTC(),
	}

	if s.logCache != nil {
		_ = s.logCache.MarkDirty(ctx, input.UserID)
		_ = s.logCache.DeleteLogs(ctx, input.UserID)
	}
	if err := s.logs.Create(logEntry); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		event := model.UsageEvent{
			UserID:          input.UserID,
			Tone:            tone,
			RequestedLength: length,
			GeneratedChars:  len(generated),
			CreatedAt:       time.Now().UTC(),
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			log.Printf("publish usage event failed: %v", err)
		}
	}

	return logEntry, nil
}

// ListLogs returns the caller's full email log history, serving from
// the cache when it is populated and not dirty.
func (s *DraftService) ListLogs(ctx context.Context, userID uint) ([]model.EmailLog, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	if s.logCache != nil {
		dirty, err := s.logCache.IsDirty(ctx, userID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.logCache.GetLogs(ctx, userID); cacheErr == nil && hit {
				return cached, nil
			}
		}
	}

	logs, err := s.logs.ListByUserID(userID)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		// An empty history serializes as [] rather than null.
		logs = []model.EmailLog{}
	}
	if s.logCache != nil {
		if dirty, dirtyErr := s.logCache.IsDirty(ctx, userID); dirtyErr == nil && !dirty {
			_ = s.logCache.SetLogs(ctx, userID, logs)
		}
	}
	return logs, nil
}

// GetLog is the owner-scoped point lookup. A log owned by another user
// reports ErrLogNotFound, never a forbidden outcome.
func (s *DraftService) GetLog(id, userID uint) (*model.EmailLog, error) {
	if id == 0 || userID == 0 {
		return nil, ErrInvalidInput
	}

	logEntry, err := s.logs.GetByIDAndUserID(id, userID)
	if err != nil {
		return nil, err
	}
	if logEntry == nil {
		return nil, ErrLogNotFound
	}
	return logEntry, nil
}

func buildPromptMessages(userInput string, replyTo, contextText *string, length int, tone string) []ai.ChatMessage {
	lengthText := "N/A"
	if length != 0 {
		lengthText = strconv.Itoa(length)
	}
	toneText := tone
	if toneText == "" {
		toneText = "N/A"
	}

	prompt := fmt.Sprintf(
		"Write an email based on the following input:\n"+
			"- User Input: %s\n"+
			"- Reply To: %s\n"+
			"- Context: %s\n"+
			"- Length: %s characters\n"+
			"- Tone: %s",
		userInput,
		orNA(replyTo),
		orNA(contextText),
		lengthText,
		toneText,
	)

	return []ai.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	}
}

func orNA(value *string) string {
	if value == nil || *value == "" {
		return "N/A"
	}
	return *value
}
