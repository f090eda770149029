package narrative

import (
	"context"
	"sync"
)

// MockResponse is a canned reply for the MockProvider.
type MockResponse struct {
	Content    string
	StopReason string
	Err        error
}

// MockProvider returns canned replies in FIFO order and records every request.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	fallback  *MockResponse
	Calls     []Request
}

// NewMockProvider creates a MockProvider with the given canned replies.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// NewStaticMockProvider returns the same reply for every call.
func NewStaticMockProvider(resp MockResponse) *MockProvider {
	return &MockProvider{fallback: &resp}
}

// Generate pops the next canned reply. An empty queue yields ErrProviderUnavailable
// unless a static reply was configured.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	var resp MockResponse
	switch {
	case len(m.responses) > 0:
		resp = m.responses[0]
		m.responses = m.responses[1:]
	case m.fallback != nil:
		resp = *m.fallback
	default:
		return nil, &ErrProviderUnavailable{}
	}

	if resp.Err != nil {
		return nil, resp.Err
	}
	stop := resp.StopReason
	if stop == "" {
		stop = "end"
	}
	return &Response{Content: resp.Content, Model: "mock", StopReason: stop}, nil
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// DemoNarrative is the reply used by the "mock" provider when no replies are queued.
const DemoNarrative = `{
  "summary": "You worked through the incident and reached a stable outcome.",
  "strengths": ["Gathered evidence before acting"],
  "mistakes": ["Some actions were taken without a rollback plan"],
  "recommendations": ["Write down the hypothesis before changing production", "Communicate status early"],
  "seniorPerspective": "An experienced engineer stabilises first, then investigates, and keeps stakeholders informed throughout."
}`
