package graphql

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Request is the JSON body POSTed to a GraphQL endpoint.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// Response is the JSON envelope returned by a GraphQL endpoint.
type Response struct {
	Data   json.RawMessage `json:"data"`
	Errors Errors          `json:"errors,omitempty"`
}

// Location points into the query document.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Error is a single GraphQL-layer error.
type Error struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Locations  []Location     `json:"locations,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e Error) Error() string {
	if len(e.Path) == 0 {
		return e.Message
	}
	parts := make([]string, len(e.Path))
	for i, p := range e.Path {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, ".") + ": " + e.Message
}

// Errors is the errors list of a response. A non-empty list fails the
// whole operation, even when partial data is present.
type Errors []Error

func (e Errors) Error() string {
	switch len(e) {
	case 0:
		return "graphql: no errors"
	case 1:
		return "graphql: " + e[0].Error()
	default:
		return fmt.Sprintf("graphql: %s (and %d more errors)", e[0].Error(), len(e)-1)
	}
}

// ErrNoData is returned when a response carries neither data nor errors.
var ErrNoData = errors.New("graphql: response has no data")

// Decode unmarshals the response data into v. It returns the response's
// Errors when present.
func (r *Response) Decode(v any) error {
	if len(r.Errors) > 0 {
		return r.Errors
	}
	if len(r.Data) == 0 || string(r.Data) == "null" {
		return ErrNoData
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("graphql: decode data: %w", err)
	}
	return nil
}
