package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeGraph represents mind-map graph errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeGeneration represents generation collaborator errors
	ErrorTypeGeneration ErrorType = "generation"
	// ErrorTypeSearch represents search collaborator errors
	ErrorTypeSearch ErrorType = "search"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// Category returns the error's type so embedders inherit classification
func (e *BaseError) Category() ErrorType {
	return e.Type
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Graph Errors

// ErrCapacityExceeded is returned when an expansion would push the graph
// past the node cap
type ErrCapacityExceeded struct {
	*BaseError
	Current   int
	Requested int
	Cap       int
}

func NewCapacityExceeded(current, requested, limit int) *ErrCapacityExceeded {
	return &ErrCapacityExceeded{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("adding %d nodes would exceed cap of %d (current: %d)", requested, limit, current), nil),
		Current:   current,
		Requested: requested,
		Cap:       limit,
	}
}

// ErrUnknownParent is returned when an expansion names a parent id that is
// not in the graph
type ErrUnknownParent struct {
	*BaseError
	ParentID string
}

func NewUnknownParent(parentID string) *ErrUnknownParent {
	return &ErrUnknownParent{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("unknown parent node: %s", parentID), nil),
		ParentID:  parentID,
	}
}

// ErrNodeNotFound is returned when a node id cannot be resolved
type ErrNodeNotFound struct {
	*BaseError
	NodeID string
}

func NewNodeNotFound(nodeID string) *ErrNodeNotFound {
	return &ErrNodeNotFound{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("node not found: %s", nodeID), nil),
		NodeID:    nodeID,
	}
}

// Generation Errors

// ErrMalformedSuggestions is returned when the generation collaborator's
// output cannot be parsed into the expected suggestion shape
type ErrMalformedSuggestions struct {
	*BaseError
	Raw string
}

func NewMalformedSuggestions(raw string, err error) *ErrMalformedSuggestions {
	return &ErrMalformedSuggestions{
		BaseError: NewBaseError(ErrorTypeGeneration, "generation output is not a valid suggestion list", err),
		Raw:       raw,
	}
}

// ErrGenerationFailed is returned when the generation collaborator call
// fails at the transport or quota level
type ErrGenerationFailed struct {
	*BaseError
	Model string
}

func NewGenerationFailed(model string, err error) *ErrGenerationFailed {
	return &ErrGenerationFailed{
		BaseError: NewBaseError(ErrorTypeGeneration, fmt.Sprintf("generation request failed (model: %s)", model), err),
		Model:     model,
	}
}

// Search Errors

// ErrEmptyQuery is returned when a search is attempted with a blank query
var ErrEmptyQuery = NewBaseError(ErrorTypeSearch, "query is empty or missing", nil)

// ErrSearchFailed is returned when the search collaborator call fails
type ErrSearchFailed struct {
	*BaseError
	Query string
}

func NewSearchFailed(query string, err error) *ErrSearchFailed {
	return &ErrSearchFailed{
		BaseError: NewBaseError(ErrorTypeSearch, fmt.Sprintf("search failed: %s", query), err),
		Query:     query,
	}
}

// Helper functions

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	if categorized, ok := err.(interface{ Category() ErrorType }); ok {
		return categorized.Category() == errType
	}
	if wrapper, ok := err.(interface{ Unwrap() error }); ok {
		if inner := wrapper.Unwrap(); inner != nil {
			return IsErrorType(inner, errType)
		}
	}
	return false
}
