package ask

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/j0lvera/mica/internal/config"
	"github.com/j0lvera/mica/internal/registry"
	"github.com/j0lvera/mica/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusErr struct{ code int }

func (e *statusErr) Error() string   { return fmt.Sprintf("request failed with status code %d", e.code) }
func (e *statusErr) StatusCode() int { return e.code }

var errMalformed = errors.New("invalid or missing response from API")

type fakeAnswerer struct {
	mu        sync.Mutex
	answer    string
	askErr    error
	resetErr  error
	questions []string
	resets    int
}

func (f *fakeAnswerer) Ask(_ context.Context, _ int64, question string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.questions = append(f.questions, question)
	if f.askErr != nil {
		return "", f.askErr
	}
	return f.answer, nil
}

func (f *fakeAnswerer) Reset(_ context.Context, _ int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	return f.resetErr
}

type sentReply struct {
	ChatID  int64
	ReplyTo int
	Text    string
}

type reaction struct {
	MessageID int
	Emoji     string
}

type fakeMessenger struct {
	mu        sync.Mutex
	nextID    int
	replyErr  error
	replies   []sentReply
	reactions []reaction
}

func (f *fakeMessenger) Reply(_ context.Context, chatID int64, replyTo int, text string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.replyErr != nil {
		return 0, f.replyErr
	}
	f.nextID++
	f.replies = append(f.replies, sentReply{ChatID: chatID, ReplyTo: replyTo, Text: text})
	return 1000 + f.nextID, nil
}

func (f *fakeMessenger) React(_ context.Context, _ int64, messageID int, emoji string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reactions = append(f.reactions, reaction{MessageID: messageID, Emoji: emoji})
	return nil
}

func (f *fakeMessenger) lastReaction() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.reactions) == 0 {
		return ""
	}
	return f.reactions[len(f.reactions)-1].Emoji
}

// steppingClock advances by step on every call.
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := current
		current = current.Add(step)
		return now
	}
}

type fixture struct {
	handler   *Handler
	answerer  *fakeAnswerer
	messenger *fakeMessenger
	replies   *registry.Registry
	users     *store.MemoryUsers
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	replies, err := registry.New(100)
	require.NoError(t, err)

	manila, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)

	f := &fixture{
		answerer:  &fakeAnswerer{answer: "Paris"},
		messenger: &fakeMessenger{},
		replies:   replies,
		users:     store.NewMemoryUsers(),
	}
	f.handler = New(f.answerer, f.messenger, f.replies, f.users, Options{
		Triggers: []string{"ai", "ask", "gpt", "openai", "@ai"},
		Location: manila,
		Clock:    steppingClock(time.Date(2026, 10, 14, 6, 30, 0, 0, time.UTC), 1500*time.Millisecond),
	})
	return f
}

func TestMatch(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		text     string
		question string
		ok       bool
	}{
		{"ai what is go", "what is go", true},
		{"AI   what is go  ", "what is go", true},
		{"Ask why", "why", true},
		{"gpt hi", "hi", true},
		{"OpenAI hi", "hi", true},
		{"@AI hi", "hi", true},
		{"ai", "", true},
		{"hello ai", "", false},
		{"", "", false},
		{"a", "", false},
	}

	for _, tc := range cases {
		question, ok := f.handler.Match(tc.text)
		assert.Equal(t, tc.ok, ok, tc.text)
		assert.Equal(t, tc.question, question, tc.text)
	}
}

func TestTriggerWithoutQuestionSendsUsage(t *testing.T) {
	for _, trigger := range []string{"ai", "ask", "gpt", "openai", "@ai"} {
		f := newFixture(t)

		for i, text := range []string{trigger, trigger + "   ", strings.ToUpper(trigger)} {
			f.handler.Dispatch(context.Background(), Message{ChatID: 1, MessageID: 10 + i, SenderID: 7, Text: text})
		}

		assert.Empty(t, f.answerer.questions, trigger)
		require.Len(t, f.messenger.replies, 3, trigger)
		for _, r := range f.messenger.replies {
			assert.Equal(t, config.DefaultMessages.Usage, r.Text, trigger)
		}
		assert.Empty(t, f.messenger.reactions, trigger)
		assert.Equal(t, 0, f.replies.Len(), trigger)
	}
}

func TestAskSuccess(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.users.Upsert(context.Background(), store.User{ID: 7, DisplayName: "Ada"}))

	f.handler.Dispatch(context.Background(), Message{ChatID: 1, MessageID: 10, SenderID: 7, Text: "ai capital of France?"})

	assert.Equal(t, []string{"capital of France?"}, f.answerer.questions)
	require.Len(t, f.messenger.replies, 1)

	reply := f.messenger.replies[0]
	assert.Equal(t, 10, reply.ReplyTo)
	assert.Contains(t, reply.Text, "Question: capital of France?")
	assert.Contains(t, reply.Text, "Answer: Paris")
	assert.Contains(t, reply.Text, "Asked by: Ada")
	// 06:30:01.5 UTC is 2:30:01 PM in Manila.
	assert.Contains(t, reply.Text, "Response Time: 10/14/2026, 2:30:01 PM")
	assert.Contains(t, reply.Text, "Processing Time: 1.50 seconds")

	require.Equal(t, 1, f.replies.Len())
	pending, ok := f.replies.Get(registry.Key{ChatID: 1, MessageID: 1001})
	require.True(t, ok)
	assert.Equal(t, int64(7), pending.AuthorID)
	assert.Equal(t, CommandName, pending.CommandName)

	require.Len(t, f.messenger.reactions, 2)
	assert.Equal(t, config.DefaultReactions.Pending, f.messenger.reactions[0].Emoji)
	assert.Equal(t, config.DefaultReactions.Success, f.messenger.reactions[1].Emoji)
	assert.Equal(t, 10, f.messenger.reactions[1].MessageID)
}

func TestAskUnknownUserUsesFallbackName(t *testing.T) {
	f := newFixture(t)

	f.handler.Dispatch(context.Background(), Message{ChatID: 1, MessageID: 10, SenderID: 7, Text: "ask hi"})

	require.Len(t, f.messenger.replies, 1)
	assert.Contains(t, f.messenger.replies[0].Text, "Asked by: a user")
}

func TestAskFailureNeverFormatsAnswer(t *testing.T) {
	cases := map[string]struct {
		err  error
		want string
	}{
		"status": {
			err:  &statusErr{code: 503},
			want: "⚠️ An error occurred while processing your request. Error: request failed with status code 503, Status Code: 503. Please try again later.",
		},
		"malformed": {
			err:  errMalformed,
			want: "⚠️ An error occurred while processing your request. Error: invalid or missing response from API. Please try again later.",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			f.answerer.askErr = tc.err

			f.handler.Dispatch(context.Background(), Message{ChatID: 1, MessageID: 10, SenderID: 7, Text: "gpt hi"})

			require.Len(t, f.messenger.replies, 1)
			assert.Equal(t, tc.want, f.messenger.replies[0].Text)
			assert.NotContains(t, f.messenger.replies[0].Text, "Answer:")
			assert.Equal(t, 0, f.replies.Len())
			assert.Equal(t, config.DefaultReactions.Failure, f.messenger.lastReaction())
		})
	}
}

func TestAskReplySendFailureSkipsRegistration(t *testing.T) {
	f := newFixture(t)
	f.messenger.replyErr = errors.New("telegram down")

	f.handler.Dispatch(context.Background(), Message{ChatID: 1, MessageID: 10, SenderID: 7, Text: "ai hi"})

	assert.Equal(t, 0, f.replies.Len())
	assert.Equal(t, config.DefaultReactions.Failure, f.messenger.lastReaction())
}

func TestReplyFromOtherUserIsUnauthorized(t *testing.T) {
	f := newFixture(t)
	f.replies.Set(registry.PendingReply{ChatID: 1, MessageID: 500, CommandName: CommandName, AuthorID: 7})

	for _, text := range []string{"tell me more", "reset"} {
		f.handler.Dispatch(context.Background(), Message{ChatID: 1, MessageID: 11, SenderID: 8, Text: text, ReplyToID: 500})
	}

	assert.Empty(t, f.answerer.questions)
	assert.Zero(t, f.answerer.resets)
	require.Len(t, f.messenger.replies, 2)
	for _, r := range f.messenger.replies {
		assert.Equal(t, config.DefaultMessages.Unauthorized, r.Text)
	}
}

func TestReplyResetCallsResetOnly(t *testing.T) {
	for _, text := range []string{"reset", "RESET", "  Reset \n"} {
		f := newFixture(t)
		f.replies.Set(registry.PendingReply{ChatID: 1, MessageID: 500, CommandName: CommandName, AuthorID: 7})

		f.handler.Dispatch(context.Background(), Message{ChatID: 1, MessageID: 11, SenderID: 7, Text: text, ReplyToID: 500})

		assert.Equal(t, 1, f.answerer.resets, text)
		assert.Empty(t, f.answerer.questions, text)
		require.Len(t, f.messenger.replies, 1)
		assert.Equal(t, config.DefaultMessages.ResetDone, f.messenger.replies[0].Text)
		assert.Equal(t, config.DefaultReactions.Success, f.messenger.lastReaction())
		assert.Equal(t, 1, f.replies.Len(), "reset confirmation is not tracked")
	}
}

func TestReplyResetFailure(t *testing.T) {
	f := newFixture(t)
	f.answerer.resetErr = &statusErr{code: 500}
	f.replies.Set(registry.PendingReply{ChatID: 1, MessageID: 500, CommandName: CommandName, AuthorID: 7})

	f.handler.Dispatch(context.Background(), Message{ChatID: 1, MessageID: 11, SenderID: 7, Text: "reset", ReplyToID: 500})

	require.Len(t, f.messenger.replies, 1)
	assert.Contains(t, f.messenger.replies[0].Text, "clearing the conversation history")
	assert.Contains(t, f.messenger.replies[0].Text, "Status Code: 500")
	assert.Equal(t, config.DefaultReactions.Failure, f.messenger.lastReaction())
}

func TestReplyFollowUpCallsAskOnly(t *testing.T) {
	f := newFixture(t)
	f.answerer.answer = "Lyon is second"
	f.replies.Set(registry.PendingReply{ChatID: 1, MessageID: 500, CommandName: CommandName, AuthorID: 7})

	f.handler.Dispatch(context.Background(), Message{ChatID: 1, MessageID: 11, SenderID: 7, Text: "  and the second city?  ", ReplyToID: 500})

	assert.Zero(t, f.answerer.resets)
	assert.Equal(t, []string{"and the second city?"}, f.answerer.questions)
	require.Len(t, f.messenger.replies, 1)
	assert.Contains(t, f.messenger.replies[0].Text, "Question: and the second city?")
	assert.Contains(t, f.messenger.replies[0].Text, "Answer: Lyon is second")

	assert.Equal(t, 2, f.replies.Len())
	assert.True(t, f.replies.Has(registry.Key{ChatID: 1, MessageID: 1001}))
}

func TestReplyFollowUpWithoutTrigger(t *testing.T) {
	f := newFixture(t)

	f.handler.Dispatch(context.Background(), Message{ChatID: 1, MessageID: 10, SenderID: 7, Text: "ai first"})
	require.Equal(t, 1, f.replies.Len())

	f.handler.Dispatch(context.Background(), Message{ChatID: 1, MessageID: 12, SenderID: 7, Text: "second", ReplyToID: 1001})

	assert.Equal(t, []string{"first", "second"}, f.answerer.questions)
	assert.Equal(t, 2, f.replies.Len())
}

func TestReplyFollowUpFailureMessage(t *testing.T) {
	f := newFixture(t)
	f.answerer.askErr = errors.New("dial tcp: connection refused")
	f.replies.Set(registry.PendingReply{ChatID: 1, MessageID: 500, CommandName: CommandName, AuthorID: 7})

	f.handler.Dispatch(context.Background(), Message{ChatID: 1, MessageID: 11, SenderID: 7, Text: "more", ReplyToID: 500})

	require.Len(t, f.messenger.replies, 1)
	assert.Equal(t,
		"⚠️ An error occurred while processing your reply. Error: dial tcp: connection refused. Please try again later.",
		f.messenger.replies[0].Text,
	)
}

func TestReplyToTrackedMessageIDIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.replies.Set(registry.PendingReply{ChatID: 1, MessageID: 500, CommandName: CommandName, AuthorID: 7})
	f.replies.Set(registry.PendingReply{ChatID: 1, MessageID: 11, CommandName: CommandName, AuthorID: 7})

	f.handler.Dispatch(context.Background(), Message{ChatID: 1, MessageID: 11, SenderID: 7, Text: "more", ReplyToID: 500})

	assert.Empty(t, f.answerer.questions)
	assert.Empty(t, f.messenger.replies)
	assert.Empty(t, f.messenger.reactions)
}

func TestReplyToUntrackedMessageFallsBackToTrigger(t *testing.T) {
	f := newFixture(t)

	f.handler.Dispatch(context.Background(), Message{ChatID: 1, MessageID: 11, SenderID: 7, Text: "just chatting", ReplyToID: 99})
	assert.Empty(t, f.messenger.replies)

	f.handler.Dispatch(context.Background(), Message{ChatID: 1, MessageID: 12, SenderID: 7, Text: "ai hi", ReplyToID: 99})
	assert.Equal(t, []string{"hi"}, f.answerer.questions)
}

func TestUnrelatedMessageIsIgnored(t *testing.T) {
	f := newFixture(t)

	f.handler.Dispatch(context.Background(), Message{ChatID: 1, MessageID: 10, SenderID: 7, Text: "good morning"})

	assert.Empty(t, f.answerer.questions)
	assert.Empty(t, f.messenger.replies)
	assert.Empty(t, f.messenger.reactions)
}

func TestInstantAnswerShowsMinimumProcessingTime(t *testing.T) {
	replies, err := registry.New(10)
	require.NoError(t, err)
	frozen := time.Date(2026, 10, 14, 6, 30, 0, 0, time.UTC)
	messenger := &fakeMessenger{}

	h := New(&fakeAnswerer{answer: "Paris"}, messenger, replies, nil, Options{
		Triggers: []string{"ai"},
		Clock:    func() time.Time { return frozen },
	})
	h.Dispatch(context.Background(), Message{ChatID: 1, MessageID: 10, SenderID: 7, Text: "ai hi"})

	require.Len(t, messenger.replies, 1)
	assert.True(t, strings.HasSuffix(messenger.replies[0].Text, "Processing Time: 0.01 seconds"))
}

func TestTriggerInReplyToOthersAnswerIsNotAnswered(t *testing.T) {
	f := newFixture(t)
	f.replies.Set(registry.PendingReply{ChatID: 1, MessageID: 500, CommandName: CommandName, AuthorID: 7})

	f.handler.Dispatch(context.Background(), Message{ChatID: 1, MessageID: 12, SenderID: 8, Text: "ai what now?", ReplyToID: 500})

	assert.Empty(t, f.answerer.questions)
	require.Len(t, f.messenger.replies, 1)
	assert.Equal(t, config.DefaultMessages.Unauthorized, f.messenger.replies[0].Text)
}
