// Package drivertest provides an in-memory GraphDriver for unit tests.
package drivertest

import (
	"context"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Call is one recorded ExecuteQuery invocation.
type Call struct {
	Query  string
	Params map[string]interface{}
}

// Handler answers a query. Returning a nil result with a nil error yields
// an empty result.
type Handler func(params map[string]interface{}) (*neo4j.EagerResult, error)

// MockDriver records every query and dispatches on the exact query text.
// Queries without a handler return MockResult/Err.
type MockDriver struct {
	mu       sync.Mutex
	Calls    []Call
	Handlers map[string]Handler

	MockResult neo4j.EagerResult
	Err        error
	Closed     bool
}

func NewMockDriver() *MockDriver {
	return &MockDriver{Handlers: make(map[string]Handler)}
}

// On registers a handler for a query constant.
func (m *MockDriver) On(query string, h Handler) *MockDriver {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Handlers == nil {
		m.Handlers = make(map[string]Handler)
	}
	m.Handlers[query] = h
	return m
}

// Rows registers a fixed result for a query.
func (m *MockDriver) Rows(query string, keys []string, rows ...[]any) *MockDriver {
	result := Result(keys, rows...)
	return m.On(query, func(map[string]interface{}) (*neo4j.EagerResult, error) {
		return &result, nil
	})
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, Call{Query: query, Params: params})
	h, ok := m.Handlers[query]
	m.mu.Unlock()

	if ok {
		res, err := h(params)
		if err != nil {
			return neo4j.EagerResult{}, err
		}
		if res == nil {
			return neo4j.EagerResult{}, nil
		}
		return *res, nil
	}

	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	return m.MockResult, nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error {
	return nil
}

func (m *MockDriver) Close(ctx context.Context) error {
	m.Closed = true
	return nil
}

// CallsTo returns the recorded calls for one query text.
func (m *MockDriver) CallsTo(query string) []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Call
	for _, c := range m.Calls {
		if c.Query == query {
			out = append(out, c)
		}
	}
	return out
}

// Result builds an EagerResult whose records share the given keys.
func Result(keys []string, rows ...[]any) neo4j.EagerResult {
	records := make([]*neo4j.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, &neo4j.Record{Keys: keys, Values: row})
	}
	return neo4j.EagerResult{Keys: keys, Records: records}
}
