package mock

import "context"

// MockAnswerGenerator is a test double for ai.AnswerGenerator.
// It allows custom behavior injection via function fields.
type MockAnswerGenerator struct {
	// GenerateAnswerFunc is called by GenerateAnswer if set.
	// If nil, returns a canned answer.
	GenerateAnswerFunc func(ctx context.Context, prompt string) (string, error)

	callCount  int
	lastPrompt string
}

// NewMockAnswerGenerator creates a mock answer generator with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockGenerator().
func NewMockAnswerGenerator() *MockAnswerGenerator {
	return &MockAnswerGenerator{}
}

// GenerateAnswer returns a canned answer, recording the prompt for assertions.
func (m *MockAnswerGenerator) GenerateAnswer(ctx context.Context, prompt string) (string, error) {
	m.callCount++
	m.lastPrompt = prompt

	if m.GenerateAnswerFunc != nil {
		return m.GenerateAnswerFunc(ctx, prompt)
	}

	return "mock answer", nil
}

// CallCount returns the number of times GenerateAnswer was called.
func (m *MockAnswerGenerator) CallCount() int {
	return m.callCount
}

// LastPrompt returns the most recent prompt passed to GenerateAnswer.
func (m *MockAnswerGenerator) LastPrompt() string {
	return m.lastPrompt
}

// Reset clears recorded state and custom functions.
func (m *MockAnswerGenerator) Reset() {
	m.callCount = 0
	m.lastPrompt = ""
	m.GenerateAnswerFunc = nil
}
