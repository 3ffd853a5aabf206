package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"fitpro-backend/models"

	"go.uber.org/zap"
)

const (
	RefusalMessage   = "❌ I'm only trained to help with **fitness-related questions**. Please ask about workouts, diet, exercise, or health."
	ErrorMarker      = "⚠️ Error: "
	briefAnswerHint  = "Answer briefly and directly. Avoid long explanations. "
	chatTemperature  = 0.7
	chatMaxOutput    = 2048
	unknownErrorText = "Unknown error"
)

var errNoContent = errors.New("no content produced")

// FitnessKeywords gate which prompts are forwarded to the generation
// service. Matching is a case-insensitive substring test.
var FitnessKeywords = []string{
	"hi", "workout", "exercise", "fitness", "gym", "diet", "calories",
	"training", "cardio", "strength", "protein", "fat loss",
	"muscle", "yoga", "running", "hiit", "squats", "reps", "sets",
	"pushups", "plank", "wellness", "health", "flexibility", "stretching",
}

// IsFitnessRelated reports whether text mentions any gate keyword
func IsFitnessRelated(text string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range FitnessKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// GenerationGateway is the remote text-generation endpoint
type GenerationGateway interface {
	Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResponse, error)
}

// TurnState is the phase of the current chat turn
type TurnState string

const (
	TurnIdle             TurnState = "idle"
	TurnSubmitting       TurnState = "submitting"
	TurnAwaitingResponse TurnState = "awaiting_response"
)

// TurnOutcome is how a finished turn ended
type TurnOutcome string

const (
	OutcomeRejected TurnOutcome = "rejected"
	OutcomeAnswered TurnOutcome = "answered"
	OutcomeFailed   TurnOutcome = "failed"
)

// ChatService runs single-turn exchanges with the generation service.
// Earlier messages are kept for display only and never sent upstream.
type ChatService struct {
	gateway    GenerationGateway
	notifier   *Notifier
	logger     *zap.Logger
	briefHints bool

	mu        sync.Mutex
	messages  []models.ChatMessage
	state     TurnState
	lastError string
}

// ChatServiceOption is a functional option for ChatService
type ChatServiceOption func(*ChatService)

// ChatWithGateway sets the generation gateway
func ChatWithGateway(gw GenerationGateway) ChatServiceOption {
	return func(s *ChatService) {
		s.gateway = gw
	}
}

// ChatWithNotifier sets the notifier
func ChatWithNotifier(n *Notifier) ChatServiceOption {
	return func(s *ChatService) {
		s.notifier = n
	}
}

// ChatWithLogger sets the logger
func ChatWithLogger(logger *zap.Logger) ChatServiceOption {
	return func(s *ChatService) {
		s.logger = logger
	}
}

// ChatWithBriefAnswers toggles the brevity instruction prefixed to prompts
func ChatWithBriefAnswers(enabled bool) ChatServiceOption {
	return func(s *ChatService) {
		s.briefHints = enabled
	}
}

// NewChatService creates a new chat service
func NewChatService(opts ...ChatServiceOption) *ChatService {
	s := &ChatService{
		logger:     zap.NewNop(),
		briefHints: true,
		state:      TurnIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitResult represents the outcome of one turn
type SubmitResult struct {
	Outcome TurnOutcome
	Reply   models.ChatMessage
}

// Submit runs one turn: the user message is always recorded, off-topic
// prompts are refused locally, and accepted ones make exactly one request.
func (s *ChatService) Submit(ctx context.Context, rawText string) (*SubmitResult, error) {
	prompt := strings.TrimSpace(rawText)

	s.mu.Lock()
	if s.state != TurnIdle {
		s.mu.Unlock()
		return nil, ErrOperationInFlight
	}
	s.state = TurnSubmitting
	s.lastError = ""
	s.messages = append(s.messages, models.ChatMessage{Role: models.RoleUser, Content: prompt})
	s.mu.Unlock()

	if !IsFitnessRelated(prompt) {
		reply := s.finish(RefusalMessage, "")
		return &SubmitResult{Outcome: OutcomeRejected, Reply: reply}, nil
	}

	s.setState(TurnAwaitingResponse)

	text, err := s.generate(ctx, prompt)
	if err != nil {
		message := models.Message(err)
		if message == "" {
			message = unknownErrorText
		}
		s.logger.Warn("chat turn failed", zap.Error(err))
		s.notifier.Error(message)
		reply := s.finish(ErrorMarker+message, message)
		return &SubmitResult{Outcome: OutcomeFailed, Reply: reply}, nil
	}

	reply := s.finish(text, "")
	return &SubmitResult{Outcome: OutcomeAnswered, Reply: reply}, nil
}

func (s *ChatService) generate(ctx context.Context, prompt string) (string, error) {
	if s.gateway == nil {
		return "", models.WithKind(models.KindConfiguration, errors.New("generation gateway not set"))
	}

	if s.briefHints {
		prompt = briefAnswerHint + prompt
	}

	resp, err := s.gateway.Generate(ctx, models.GenerationRequest{
		Prompt:          prompt,
		Temperature:     chatTemperature,
		MaxOutputTokens: chatMaxOutput,
	})
	if err != nil {
		return "", err
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return "", errNoContent
	}
	return resp.Text, nil
}

// finish appends the assistant reply and returns to Idle
func (s *ChatService) finish(content, lastError string) models.ChatMessage {
	reply := models.ChatMessage{Role: models.RoleAssistant, Content: content}
	s.mu.Lock()
	s.messages = append(s.messages, reply)
	s.lastError = lastError
	s.state = TurnIdle
	s.mu.Unlock()
	return reply
}

func (s *ChatService) setState(state TurnState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Messages returns a copy of the transcript
func (s *ChatService) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// State returns the phase of the current turn
func (s *ChatService) State() TurnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastError returns the error of the last failed turn, if any
func (s *ChatService) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}
