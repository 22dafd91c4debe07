package insight

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

// HeadingLevels lists heading tags in display order.
var HeadingLevels = [6]string{"h1", "h2", "h3", "h4", "h5", "h6"}

// AnalyzeRequest mirrors the body sent to /api/analyze.
type AnalyzeRequest struct {
	URL string `json:"url"`
}

// AnalyzeResponse mirrors the success payload returned by /api/analyze.
type AnalyzeResponse struct {
	HTMLVersion       string         `json:"htmlVersion"`
	Title             string         `json:"title"`
	Headings          map[string]int `json:"headings"`
	InternalLinks     int            `json:"internalLinks"`
	ExternalLinks     int            `json:"externalLinks"`
	InaccessibleLinks int            `json:"inaccessibleLinks"`
	HasLoginForm      bool           `json:"hasLoginForm"`
}

// HeadingCount returns the count for a heading tag, 0 when absent.
func (r AnalyzeResponse) HeadingCount(level string) int {
	return r.Headings[strings.ToLower(strings.TrimSpace(level))]
}

// Clone returns a copy that shares no map with r.
func (r AnalyzeResponse) Clone() AnalyzeResponse {
	dup := r
	if r.Headings != nil {
		dup.Headings = make(map[string]int, len(r.Headings))
		for k, v := range r.Headings {
			dup.Headings[k] = v
		}
	}
	return dup
}

// ErrorResponse is the failure payload of /api/analyze. A StatusCode of 0
// marks a client-side failure that never produced a service response.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("Error %d: %s", e.StatusCode, e.Message)
}

// IsTransportFailure reports whether the error originated on the client side.
func (e *ErrorResponse) IsTransportFailure() bool {
	return e != nil && e.StatusCode == 0
}

// UnexpectedMessage is the fixed message shown for every transport failure.
const UnexpectedMessage = "An unexpected error occurred."

// ErrUnexpected returns a fresh transport failure value.
func ErrUnexpected() *ErrorResponse {
	return &ErrorResponse{StatusCode: 0, Message: UnexpectedMessage}
}

// ContractError reports a response body that does not match AnalyzeResponse.
type ContractError struct {
	Field  string
	Reason string
}

func (e *ContractError) Error() string {
	if e.Field == "" {
		return "contract: " + e.Reason
	}
	return fmt.Sprintf("contract: %s: %s", e.Field, e.Reason)
}

// DecodeAnalyzeResponse parses and validates a success body. Unknown fields
// are ignored; every known field is required and must have the right kind.
func DecodeAnalyzeResponse(body []byte) (AnalyzeResponse, error) {
	var raw map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return AnalyzeResponse{}, &ContractError{Reason: "body is not a JSON object"}
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return AnalyzeResponse{}, &ContractError{Reason: "trailing data after JSON object"}
	}
	if raw == nil {
		return AnalyzeResponse{}, &ContractError{Reason: "body is null"}
	}

	var out AnalyzeResponse
	var err error
	if out.HTMLVersion, err = requireString(raw, "htmlVersion"); err != nil {
		return AnalyzeResponse{}, err
	}
	if out.Title, err = requireString(raw, "title"); err != nil {
		return AnalyzeResponse{}, err
	}
	if out.Headings, err = requireHeadings(raw, "headings"); err != nil {
		return AnalyzeResponse{}, err
	}
	if out.InternalLinks, err = requireCount(raw, "internalLinks"); err != nil {
		return AnalyzeResponse{}, err
	}
	if out.ExternalLinks, err = requireCount(raw, "externalLinks"); err != nil {
		return AnalyzeResponse{}, err
	}
	if out.InaccessibleLinks, err = requireCount(raw, "inaccessibleLinks"); err != nil {
		return AnalyzeResponse{}, err
	}
	if out.HasLoginForm, err = requireBool(raw, "hasLoginForm"); err != nil {
		return AnalyzeResponse{}, err
	}
	return out, nil
}

// DecodeErrorResponse parses a failure body.
func DecodeErrorResponse(body []byte) (ErrorResponse, error) {
	var payload struct {
		StatusCode *int    `json:"statusCode"`
		Message    *string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ErrorResponse{}, fmt.Errorf("decode error response: %w", err)
	}
	if payload.StatusCode == nil || payload.Message == nil {
		return ErrorResponse{}, fmt.Errorf("decode error response: statusCode and message are required")
	}
	return ErrorResponse{StatusCode: *payload.StatusCode, Message: *payload.Message}, nil
}

func lookup(raw map[string]json.RawMessage, field string) (json.RawMessage, error) {
	value, ok := raw[field]
	if !ok || isNull(value) {
		return nil, &ContractError{Field: field, Reason: "missing"}
	}
	return value, nil
}

func requireString(raw map[string]json.RawMessage, field string) (string, error) {
	value, err := lookup(raw, field)
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return "", &ContractError{Field: field, Reason: "want string"}
	}
	return s, nil
}

func requireBool(raw map[string]json.RawMessage, field string) (bool, error) {
	value, err := lookup(raw, field)
	if err != nil {
		return false, err
	}
	var b bool
	if err := json.Unmarshal(value, &b); err != nil {
		return false, &ContractError{Field: field, Reason: "want boolean"}
	}
	return b, nil
}

func requireCount(raw map[string]json.RawMessage, field string) (int, error) {
	value, err := lookup(raw, field)
	if err != nil {
		return 0, err
	}
	n, reason := parseCount(value)
	if reason != "" {
		return 0, &ContractError{Field: field, Reason: reason}
	}
	return n, nil
}

func requireHeadings(raw map[string]json.RawMessage, field string) (map[string]int, error) {
	value, err := lookup(raw, field)
	if err != nil {
		return nil, err
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(value, &entries); err != nil {
		return nil, &ContractError{Field: field, Reason: "want object"}
	}
	headings := make(map[string]int, len(entries))
	for tag, rawCount := range entries {
		n, reason := parseCount(rawCount)
		if reason != "" {
			return nil, &ContractError{Field: field + "." + tag, Reason: reason}
		}
		headings[tag] = n
	}
	return headings, nil
}

// parseCount returns a non-empty reason when value is not a non-negative integer.
func parseCount(value json.RawMessage) (int, string) {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 || (trimmed[0] != '-' && (trimmed[0] < '0' || trimmed[0] > '9')) {
		// json.Number also accepts quoted numbers.
		return 0, "want integer"
	}
	var num json.Number
	dec := json.NewDecoder(bytes.NewReader(value))
	dec.UseNumber()
	if err := dec.Decode(&num); err != nil {
		return 0, "want integer"
	}
	if n, err := num.Int64(); err == nil {
		if n < 0 {
			return 0, "must not be negative"
		}
		if uint64(n) > math.MaxInt {
			return 0, "out of range"
		}
		return int(n), ""
	}
	f, err := num.Float64()
	if err != nil || f != math.Trunc(f) {
		return 0, "want integer"
	}
	if f < 0 {
		return 0, "must not be negative"
	}
	if f >= math.MaxInt {
		return 0, "out of range"
	}
	return int(f), ""
}

func isNull(value json.RawMessage) bool {
	return string(bytes.TrimSpace(value)) == "null"
}
