package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"fitpro-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsFitnessRelated(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{text: "How much protein should I eat?", want: true},
		{text: "Best HIIT routine?", want: true},
		{text: "Is FAT LOSS possible in a month", want: true},
		{text: "What's the weather tomorrow?", want: false},
		{text: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFitnessRelated(tt.text))
		})
	}
}

func TestChatService_AnswersFitnessQuestion(t *testing.T) {
	gen := &fakeGenerator{text: "About 1.6 g per kg."}
	s := NewChatService(ChatWithGateway(gen))

	res, err := s.Submit(context.Background(), "  How much protein should I eat?  ")

	require.NoError(t, err)
	assert.Equal(t, OutcomeAnswered, res.Outcome)
	require.Equal(t, 1, gen.count())
	req := gen.requests[0]
	assert.Equal(t, briefAnswerHint+"How much protein should I eat?", req.Prompt)
	assert.Equal(t, int32(2048), req.MaxOutputTokens)
	assert.InDelta(t, 0.7, req.Temperature, 0.0001)

	assert.Equal(t, []models.ChatMessage{
		{Role: models.RoleUser, Content: "How much protein should I eat?"},
		{Role: models.RoleAssistant, Content: "About 1.6 g per kg."},
	}, s.Messages())
	assert.Equal(t, TurnIdle, s.State())
	assert.Empty(t, s.LastError())
}

func TestChatService_RefusesOffTopicWithoutCalling(t *testing.T) {
	gen := &fakeGenerator{text: "sunny"}
	s := NewChatService(ChatWithGateway(gen))

	res, err := s.Submit(context.Background(), "What's the weather tomorrow?")

	require.NoError(t, err)
	assert.Equal(t, OutcomeRejected, res.Outcome)
	assert.Equal(t, 0, gen.count())
	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, models.RoleUser, msgs[0].Role)
	assert.Equal(t, RefusalMessage, msgs[1].Content)
	assert.Equal(t, TurnIdle, s.State())
}

func TestChatService_WithoutBriefAnswers(t *testing.T) {
	gen := &fakeGenerator{text: "ok"}
	s := NewChatService(ChatWithGateway(gen), ChatWithBriefAnswers(false))

	_, err := s.Submit(context.Background(), "gym plan")

	require.NoError(t, err)
	assert.Equal(t, "gym plan", gen.requests[0].Prompt)
}

func TestChatService_GatewayFailure(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
		want string
	}{
		{
			name: "policy block",
			gen:  &fakeGenerator{err: models.WithKind(models.KindProviderPolicyBlock, errors.New("Prompt was blocked: SAFETY"))},
			want: "Prompt was blocked: SAFETY",
		},
		{
			name: "empty text",
			gen:  &fakeGenerator{text: "   "},
			want: "no content produced",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := NewNotifier(time.Minute)
			s := NewChatService(ChatWithGateway(tt.gen), ChatWithNotifier(notifier))

			res, err := s.Submit(context.Background(), "workout ideas")

			require.NoError(t, err)
			assert.Equal(t, OutcomeFailed, res.Outcome)
			assert.Equal(t, ErrorMarker+tt.want, res.Reply.Content)
			assert.Equal(t, tt.want, s.LastError())
			assert.Len(t, s.Messages(), 2)
			assert.Equal(t, TurnIdle, s.State())
			notice, ok := notifier.Current()
			require.True(t, ok)
			assert.Equal(t, tt.want, notice.Message)
		})
	}
}

func TestChatService_RejectsSubmitWhileAwaiting(t *testing.T) {
	gen := &fakeGenerator{text: "done", block: make(chan struct{})}
	s := NewChatService(ChatWithGateway(gen))

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background(), "cardio plan")
		done <- err
	}()
	require.Eventually(t, func() bool { return s.State() == TurnAwaitingResponse }, time.Second, time.Millisecond)

	_, err := s.Submit(context.Background(), "yoga plan")
	assert.ErrorIs(t, err, ErrOperationInFlight)
	assert.Len(t, s.Messages(), 1, "rejected submits append nothing")

	close(gen.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, gen.count())
	assert.Len(t, s.Messages(), 2)
}

func TestChatService_LastErrorClearedOnNextTurn(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("boom")}
	s := NewChatService(ChatWithGateway(gen))

	_, err := s.Submit(context.Background(), "squats")
	require.NoError(t, err)
	assert.Equal(t, "boom", s.LastError())

	gen.err = nil
	gen.text = "ok"
	_, err = s.Submit(context.Background(), "squats again")
	require.NoError(t, err)
	assert.Empty(t, s.LastError())
}

func TestChatService_MessagesReturnsCopy(t *testing.T) {
	s := NewChatService(ChatWithGateway(&fakeGenerator{text: "ok"}))
	_, err := s.Submit(context.Background(), "weather")
	require.NoError(t, err)

	msgs := s.Messages()
	msgs[0].Content = "changed"

	assert.Equal(t, "weather", s.Messages()[0].Content)
}
