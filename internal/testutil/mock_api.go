// Package testutil provides testing utilities for the alerts API client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines a canned response served by the mock API.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockAlert mirrors the alert summary fields of the ListAlerts query.
type MockAlert struct {
	AlertID       string    `json:"alertId"`
	RuleID        string    `json:"ruleId"`
	Title         string    `json:"title"`
	Severity      string    `json:"severity"`
	Status        string    `json:"status"`
	CreationTime  time.Time `json:"creationTime"`
	UpdateTime    time.Time `json:"updateTime"`
	EventsMatched int       `json:"eventsMatched"`
}

type mockPage struct {
	alerts []MockAlert
	next   string
}

// MockAPI is a configurable mock GraphQL alerts API for testing.
// Pages are looked up by the exclusiveStartKey of the request; queued
// responses are served first, in order, one per request.
type MockAPI struct {
	server *httptest.Server
	mu     sync.RWMutex
	pages  map[string]mockPage
	queue  []MockResponse

	// Tracking
	RequestCount int
	LastInput    map[string]any
	LastHeader   http.Header
}

// NewMockAPI creates a new mock alerts API server.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		pages: make(map[string]mockPage),
	}
	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// URL returns the GraphQL endpoint URL.
func (m *MockAPI) URL() string {
	return m.server.URL + "/graphql"
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Reset clears tracking counters, pages and queued responses.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastInput = nil
	m.LastHeader = nil
	m.pages = make(map[string]mockPage)
	m.queue = nil
}

// SetPage serves alerts for the given exclusiveStartKey ("" = first page),
// answering with next as lastEvaluatedKey ("" = null).
func (m *MockAPI) SetPage(token string, alerts []MockAlert, next string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[token] = mockPage{alerts: alerts, next: next}
}

// QueueResponse serves resp for the next request instead of a page.
func (m *MockAPI) QueueResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, resp)
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockAPI) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetLastInput returns the $input variable of the last request.
func (m *MockAPI) GetLastInput() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastInput
}

// GetLastHeader returns the headers of the last request.
func (m *MockAPI) GetLastHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastHeader
}

func (m *MockAPI) handle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query     string `json:"query"`
		Variables struct {
			Input map[string]any `json:"input"`
		} `json:"variables"`
	}
	decodeErr := json.NewDecoder(r.Body).Decode(&req)

	m.mu.Lock()
	m.RequestCount++
	m.LastHeader = r.Header.Clone()
	m.LastInput = req.Variables.Input
	var queued *MockResponse
	if len(m.queue) > 0 {
		queued = &m.queue[0]
		m.queue = m.queue[1:]
	}
	m.mu.Unlock()

	if queued != nil {
		writeResponse(w, *queued)
		return
	}

	if decodeErr != nil {
		writeResponse(w, MockResponse{
			StatusCode: http.StatusBadRequest,
			Body:       `{"errors":[{"message":"malformed request body"}]}`,
		})
		return
	}

	token, _ := req.Variables.Input["exclusiveStartKey"].(string)

	m.mu.RLock()
	page, ok := m.pages[token]
	m.mu.RUnlock()

	if !ok {
		writeResponse(w, NewGraphQLErrorResponse(fmt.Sprintf("invalid exclusiveStartKey %q", token)))
		return
	}

	writeResponse(w, NewAlertsResponse(page.alerts, page.next))
}

func writeResponse(w http.ResponseWriter, resp MockResponse) {
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

func defaultHeaders() map[string]string {
	return map[string]string{
		"X-RateLimit-Remaining": "100",
		"X-RateLimit-Reset":     "60",
		"Content-Type":          "application/json",
	}
}

// NewAlertsResponse creates a 200 OK ListAlerts response.
func NewAlertsResponse(alerts []MockAlert, next string) MockResponse {
	if alerts == nil {
		alerts = []MockAlert{}
	}

	var lastKey *string
	if next != "" {
		lastKey = &next
	}

	body, _ := json.Marshal(map[string]any{
		"data": map[string]any{
			"alerts": map[string]any{
				"alertSummaries":   alerts,
				"lastEvaluatedKey": lastKey,
			},
		},
	})

	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       string(body),
		Headers:    defaultHeaders(),
	}
}

// NewGraphQLErrorResponse creates a 200 OK response carrying a GraphQL error.
func NewGraphQLErrorResponse(message string) MockResponse {
	body, _ := json.Marshal(map[string]any{
		"data":   nil,
		"errors": []map[string]any{{"message": message}},
	})
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       string(body),
		Headers:    defaultHeaders(),
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"errors":[{"message":"Internal server error"}]}`,
		Headers:    defaultHeaders(),
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"errors":[{"message":"Rate limit exceeded"}]}`,
		Headers: map[string]string{
			"X-RateLimit-Remaining": "0",
			"X-RateLimit-Reset":     "30",
			"Content-Type":          "application/json",
		},
	}
}

// NewBadRequestResponse creates a 400 Bad Request response.
func NewBadRequestResponse(message string) MockResponse {
	body, _ := json.Marshal(map[string]any{
		"errors": []map[string]any{{"message": message}},
	})
	return MockResponse{
		StatusCode: http.StatusBadRequest,
		Body:       string(body),
		Headers:    defaultHeaders(),
	}
}

// MockAlerts generates n alerts with ids alert-<start>..alert-<start+n-1>.
func MockAlerts(start, n int) []MockAlert {
	created := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
	alerts := make([]MockAlert, n)
	for i := range alerts {
		id := start + i
		alerts[i] = MockAlert{
			AlertID:       fmt.Sprintf("alert-%d", id),
			RuleID:        "AWS.CloudTrail.RootActivity",
			Title:         fmt.Sprintf("Root activity %d", id),
			Severity:      "HIGH",
			Status:        "OPEN",
			CreationTime:  created.Add(-time.Duration(id) * time.Minute),
			UpdateTime:    created.Add(-time.Duration(id) * time.Minute),
			EventsMatched: id%5 + 1,
		}
	}
	return alerts
}
