package git

import (
	"strings"
	"sync"
)

// MockRunner answers git commands from canned responses keyed by the
// space-joined argument list (e.g. "rev-parse HEAD"). It records every call.
type MockRunner struct {
	mu        sync.Mutex
	responses map[string]mockResponse
	fallback  error
	calls     []string
}

type mockResponse struct {
	out string
	err error
}

// NewMockRunner creates an empty MockRunner. Unknown commands fail with ErrNoResponse.
func NewMockRunner() *MockRunner {
	return &MockRunner{
		responses: make(map[string]mockResponse),
		fallback:  ErrNoResponse,
	}
}

// NewNotRepoRunner creates a MockRunner that reports ErrNotGitRepo for every command.
func NewNotRepoRunner() *MockRunner {
	m := NewMockRunner()
	m.fallback = ErrNotGitRepo
	return m
}

// On registers the stdout returned for args.
func (m *MockRunner) On(args string, out string) *MockRunner {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[args] = mockResponse{out: out}
	return m
}

// OnError registers a failure returned for args.
func (m *MockRunner) OnError(args string, err error) *MockRunner {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[args] = mockResponse{err: err}
	return m
}

// Run implements Runner.
func (m *MockRunner) Run(dir string, args ...string) (string, error) {
	key := strings.Join(args, " ")

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, key)
	resp, ok := m.responses[key]
	if !ok {
		return "", &Error{Op: opName(args), Args: args, Err: m.fallback}
	}
	if resp.err != nil {
		return "", &Error{Op: opName(args), Args: args, Err: resp.err}
	}
	return resp.out, nil
}

// Calls returns the commands run so far, in order.
func (m *MockRunner) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times args was run.
func (m *MockRunner) CallCount(args string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == args {
			n++
		}
	}
	return n
}
