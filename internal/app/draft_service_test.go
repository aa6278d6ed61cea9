package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"email-assistant/internal/ai"
	"email-assistant/internal/model"
)

type memoryLogStore struct {
	logs   []model.EmailLog
	nextID uint

	createErr error
}

func newMemoryLogStore() *memoryLogStore {
	return &memoryLogStore{nextID: 1}
}

func (m *memoryLogStore) Create(log *model.EmailLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	log.ID = m.nextID
	m.nextID++
	m.logs = append(m.logs, *log)
	return nil
}

func (m *memoryLogStore) ListByUserID(userID uint) ([]model.EmailLog, error) {
	var out []model.EmailLog
	for _, l := range m.logs {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memoryLogStore) GetByIDAndUserID(id, userID uint) (*model.EmailLog, error) {
	for _, l := range m.logs {
		if l.ID == id && l.UserID == userID {
			found := l
			return &found, nil
		}
	}
	return nil, nil
}

type stubCompleter struct {
	reply string
	err   error

	gotMessages  []ai.ChatMessage
	gotMaxTokens int
	calls        int
}

func (s *stubCompleter) Complete(_ context.Context, _ ai.ChatConfig, messages []ai.ChatMessage, maxTokens int) (string, error) {
	s.calls++
	s.gotMessages = messages
	s.gotMaxTokens = maxTokens
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

type stubPublisher struct {
	events []model.UsageEvent
	err    error
}

func (s *stubPublisher) Publish(_ context.Context, event model.UsageEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

// pub is the interface type so tests passing nil leave the publisher
// genuinely absent instead of a typed-nil interface.
func newTestDraftService(store *memoryLogStore, llm *stubCompleter, pub UsagePublisher) *DraftService {
	return NewDraftService(store, llm, ai.ChatConfig{Model: "test-model"}, pub, nil)
}

func TestGeneratePersistsLogAndReturnsDraft(t *testing.T) {
	store := newMemoryLogStore()
	llm := &stubCompleter{reply: "Dear team, ..."}
	pub := &stubPublisher{}
	svc := newTestDraftService(store, llm, pub)

	logEntry, err := svc.Generate(context.Background(), GenerateInput{
		UserID:    7,
		UserInput: "ask for a deadline extension",
		Tone:      "polite",
	})
	require.NoError(t, err)

	assert.Equal(t, "Dear team, ...", logEntry.GeneratedEmail)
	assert.Equal(t, uint(7), logEntry.UserID)
	assert.Equal(t, "polite", logEntry.Tone)
	assert.False(t, logEntry.CreatedAt.IsZero())

	require.Len(t, store.logs, 1)
	assert.Equal(t, "ask for a deadline extension", store.logs[0].UserInput)
}

func TestGenerateAppliesDefaults(t *testing.T) {
	llm := &stubCompleter{reply: "ok"}
	svc := newTestDraftService(newMemoryLogStore(), llm, nil)

	logEntry, err := svc.Generate(context.Background(), GenerateInput{
		UserID:    1,
		UserInput: "say hi",
	})
	require.NoError(t, err)

	assert.Equal(t, 120, llm.gotMaxTokens)
	assert.Equal(t, "formal", logEntry.Tone)
	// The applied default is recorded on the log row, like the tone.
	require.NotNil(t, logEntry.Length)
	assert.Equal(t, 120, *logEntry.Length)
}

func TestGenerateWithoutPublisher(t *testing.T) {
	store := newMemoryLogStore()
	svc := newTestDraftService(store, &stubCompleter{reply: "ok"}, nil)

	logEntry, err := svc.Generate(context.Background(), GenerateInput{
		UserID:    1,
		UserInput: "say hi",
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", logEntry.GeneratedEmail)
	assert.Len(t, store.logs, 1)
}

func TestGeneratePromptInterpolation(t *testing.T) {
	llm := &stubCompleter{reply: "ok"}
	svc := newTestDraftService(newMemoryLogStore(), llm, nil)

	_, err := svc.Generate(context.Background(), GenerateInput{
		UserID:    1,
		UserInput: "reschedule the meeting",
		ReplyTo:   strPtr("Hi, can we meet Monday?"),
		Length:    intPtr(200),
		Tone:      "casual",
	})
	require.NoError(t, err)

	require.Len(t, llm.gotMessages, 2)
	assert.Equal(t, "system", llm.gotMessages[0].Role)
	assert.Contains(t, llm.gotMessages[0].Content, "email assistant")

	prompt := llm.gotMessages[1].Content
	assert.Equal(t, "user", llm.gotMessages[1].Role)
	assert.Contains(t, prompt, "- User Input: reschedule the meeting")
	assert.Contains(t, prompt, "- Reply To: Hi, can we meet Monday?")
	assert.Contains(t, prompt, "- Context: N/A")
	assert.Contains(t, prompt, "- Length: 200 characters")
	assert.Contains(t, prompt, "- Tone: casual")
	assert.Equal(t, 200, llm.gotMaxTokens)
}

func TestGenerateExplicitZeroLengthPassedThrough(t *testing.T) {
	llm := &stubCompleter{reply: "ok"}
	svc := newTestDraftService(newMemoryLogStore(), llm, nil)

	_, err := svc.Generate(context.Background(), GenerateInput{
		UserID:    1,
		UserInput: "say hi",
		Length:    intPtr(0),
	})
	require.NoError(t, err)

	// Zero is not rejected; the prompt renders it as N/A and the
	// provider budget is zero.
	assert.Equal(t, 0, llm.gotMaxTokens)
	assert.Contains(t, llm.gotMessages[1].Content, "- Length: N/A characters")
}

func TestGenerateProviderFailureWritesNoLog(t *testing.T) {
	store := newMemoryLogStore()
	llm := &stubCompleter{err: errors.New("quota exceeded")}
	svc := newTestDraftService(store, llm, nil)

	_, err := svc.Generate(context.Background(), GenerateInput{
		UserID:    1,
		UserInput: "say hi",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderFailure)
	assert.Contains(t, err.Error(), "quota exceeded")

	assert.Empty(t, store.logs)
	assert.Equal(t, 1, llm.calls, "provider must be called exactly once, no retry")
}

func TestGeneratePublishesUsageEvent(t *testing.T) {
	pub := &stubPublisher{}
	svc := newTestDraftService(newMemoryLogStore(), &stubCompleter{reply: "hello there"}, pub)

	_, err := svc.Generate(context.Background(), GenerateInput{
		UserID:    3,
		UserInput: "say hi",
		Tone:      "polite",
	})
	require.NoError(t, err)

	require.Len(t, pub.events, 1)
	assert.Equal(t, uint(3), pub.events[0].UserID)
	assert.Equal(t, "polite", pub.events[0].Tone)
	assert.Equal(t, 120, pub.events[0].RequestedLength)
	assert.Equal(t, len("hello there"), pub.events[0].GeneratedChars)
}

func TestGenerateSucceedsWhenPublishFails(t *testing.T) {
	store := newMemoryLogStore()
	pub := &stubPublisher{err: errors.New("broker down")}
	svc := newTestDraftService(store, &stubCompleter{reply: "ok"}, pub)

	_, err := svc.Generate(context.Background(), GenerateInput{
		UserID:    1,
		UserInput: "say hi",
	})
	assert.NoError(t, err)
	assert.Len(t, store.logs, 1)
}

func TestGetLogScopedToOwner(t *testing.T) {
	store := newMemoryLogStore()
	svc := newTestDraftService(store, &stubCompleter{reply: "ok"}, nil)

	created, err := svc.Generate(context.Background(), GenerateInput{
		UserID:    1,
		UserInput: "say hi",
	})
	require.NoError(t, err)

	got, err := svc.GetLog(created.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	// Another user with the correct id gets not-found, not forbidden.
	_, err = svc.GetLog(created.ID, 2)
	assert.ErrorIs(t, err, ErrLogNotFound)
}

func TestListLogsOnlyOwn(t *testing.T) {
	store := newMemoryLogStore()
	svc := newTestDraftService(store, &stubCompleter{reply: "ok"}, nil)

	for _, userID := range []uint{1, 1, 2} {
		_, err := svc.Generate(context.Background(), GenerateInput{
			UserID:    userID,
			UserInput: "say hi",
		})
		require.NoError(t, err)
	}

	logs, err := svc.ListLogs(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
	for _, l := range logs {
		assert.Equal(t, uint(1), l.UserID)
	}
}

func TestListLogsEmptyHistoryIsEmptySlice(t *testing.T) {
	svc := newTestDraftService(newMemoryLogStore(), &stubCompleter{reply: "ok"}, nil)

	logs, err := svc.ListLogs(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, logs, "empty history must serialize as [], not null")
	assert.Empty(t, logs)
}
