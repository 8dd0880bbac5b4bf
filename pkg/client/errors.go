package client

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during retry.
	ErrContextCancelled = errors.New("context cancelled")

	// ErrRateLimited is returned when the request budget is critical.
	ErrRateLimited = errors.New("request blocked: rate limit critical")
)

// DefaultErrorMessage is shown when no better message can be derived from an error.
const DefaultErrorMessage = "There was an error when performing your request, please contact support"

// GraphQLError is one entry of the GraphQL response "errors" array.
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// QueryError represents a failed GraphQL query with additional context.
type QueryError struct {
	StatusCode    int
	ErrorClass    ErrorClass
	Message       string
	GraphQLErrors []GraphQLError
	Err           error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	msg := e.Message
	if len(e.GraphQLErrors) > 0 {
		msgs := make([]string, 0, len(e.GraphQLErrors))
		for _, gqlErr := range e.GraphQLErrors {
			msgs = append(msgs, gqlErr.Message)
		}
		msg = strings.Join(msgs, "; ")
	}

	if e.Err != nil {
		return fmt.Sprintf("query %s error (status %d): %s: %v",
			e.ErrorClass, e.StatusCode, msg, e.Err)
	}
	return fmt.Sprintf("query %s error (status %d): %s",
		e.ErrorClass, e.StatusCode, msg)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// ExtractErrorMessage derives the message a user should see for err.
// GraphQL error messages are shown as-is; anything else falls back to a
// generic message.
func ExtractErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var qe *QueryError
	if errors.As(err, &qe) && len(qe.GraphQLErrors) > 0 && qe.GraphQLErrors[0].Message != "" {
		return qe.GraphQLErrors[0].Message
	}

	if errors.Is(err, ErrRateLimited) {
		return "Too many requests, please try again in a moment"
	}

	return DefaultErrorMessage
}

// shouldRetry determines if an error should be retried based on its classification.
func shouldRetry(errorClass ErrorClass) bool {
	switch errorClass {
	case ErrorClassClient, ErrorClassGraphQL:
		// Resending the same query yields the same answer
		return false
	case ErrorClassServer, ErrorClassRateLimit, ErrorClassNetwork:
		return true
	default:
		return false
	}
}
