package questionapi

import (
	"context"
	"sync"

	"github.com/betbot/marketadmin/internal/domain"
)

// WriteCall records one multipart write seen by the mock.
type WriteCall struct {
	Method   string
	AnswerID string
	Payload  *Payload
}

// MockClient is a mock question API for testing
type MockClient struct {
	mu sync.RWMutex

	// Response data
	Questions      map[string]*domain.Question
	ListResponse   *ListResponse
	WriteResponse  *WriteResponse
	ResolveResp    *WriteResponse
	ListFunc       func(ctx context.Context, p ListParams) (*ListResponse, error)

	// Recorded requests
	Writes       []WriteCall
	Deleted      []string
	ListRequests []ListParams
	Resolves     map[string]domain.Outcome

	// Call tracking
	Calls map[string]int

	// Error injection
	ErrorOnNext map[string]error
}

// NewMockClient creates a new mock question API
func NewMockClient() *MockClient {
	return &MockClient{
		Questions:   make(map[string]*domain.Question),
		Resolves:    make(map[string]domain.Outcome),
		Calls:       make(map[string]int),
		ErrorOnNext: make(map[string]error),
	}
}

var _ API = (*MockClient)(nil)

func (m *MockClient) trackCall(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls[name]++
	if err, ok := m.ErrorOnNext[name]; ok {
		delete(m.ErrorOnNext, name)
		return err
	}
	return nil
}

// CallCount returns how many times name was called
func (m *MockClient) CallCount(name string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Calls[name]
}

// LastWrite returns the most recent multipart write, if any
func (m *MockClient) LastWrite() (WriteCall, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.Writes) == 0 {
		return WriteCall{}, false
	}
	return m.Writes[len(m.Writes)-1], true
}

func (m *MockClient) List(ctx context.Context, p ListParams) (*ListResponse, error) {
	if err := m.trackCall("List"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.ListRequests = append(m.ListRequests, p)
	fn := m.ListFunc
	resp := m.ListResponse
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, p)
	}
	if resp != nil {
		return resp, nil
	}
	return &ListResponse{TotalPages: 1}, nil
}

func (m *MockClient) Get(ctx context.Context, id string) (*domain.Question, error) {
	if err := m.trackCall("Get"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if q, ok := m.Questions[id]; ok {
		return q, nil
	}
	return &domain.Question{ID: id, QuestionName: "Test Question", MarketType: domain.MarketTypeAll}, nil
}

func (m *MockClient) Create(ctx context.Context, p *Payload) (*WriteResponse, error) {
	return m.write(ctx, "Create", "", p)
}

func (m *MockClient) Update(ctx context.Context, p *Payload) (*WriteResponse, error) {
	return m.write(ctx, "Update", "", p)
}

func (m *MockClient) UpdateAnswer(ctx context.Context, answerID string, p *Payload) (*WriteResponse, error) {
	return m.write(ctx, "UpdateAnswer", answerID, p)
}

func (m *MockClient) write(_ context.Context, name, answerID string, p *Payload) (*WriteResponse, error) {
	m.mu.Lock()
	m.Writes = append(m.Writes, WriteCall{Method: name, AnswerID: answerID, Payload: p})
	m.mu.Unlock()
	if err := m.trackCall(name); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.WriteResponse != nil {
		return m.WriteResponse, nil
	}
	return &WriteResponse{}, nil
}

func (m *MockClient) Delete(ctx context.Context, id string) error {
	if err := m.trackCall("Delete"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, id)
	delete(m.Questions, id)
	return nil
}

func (m *MockClient) Resolve(ctx context.Context, answerID string, outcome domain.Outcome) (*WriteResponse, error) {
	if err := m.trackCall("Resolve"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Resolves[answerID] = outcome
	if m.ResolveResp != nil {
		return m.ResolveResp, nil
	}
	return &WriteResponse{}, nil
}
