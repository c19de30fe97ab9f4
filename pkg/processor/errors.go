package processor

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is returned when an event does not decode into the contract's event type.
	ErrParse = errors.New("failed to parse event")

	// ErrInsufficientFunds is returned when an event would take a balance below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidState is returned when an event does not fit the current projection state.
	ErrInvalidState = errors.New("invalid state")
)

// ParseError wraps a decoding failure of the event at the given position.
func ParseError(index int, err error) error {
	return fmt.Errorf("%w: event %d: %w", ErrParse, index, err)
}

// UnknownTagError reports an event tag the processor does not know.
func UnknownTagError(index int, tag uint8) error {
	return fmt.Errorf("%w: event %d: unknown tag %d", ErrParse, index, tag)
}

// IsFatal reports whether the error comes from event application rather than the database.
func IsFatal(err error) bool {
	return errors.Is(err, ErrParse) || errors.Is(err, ErrInsufficientFunds) || errors.Is(err, ErrInvalidState)
}

var (
	// ErrUnknownProjection is returned by QueryProjection for a projection the processor does not have.
	ErrUnknownProjection = errors.New("unknown projection")

	// ErrInvalidQuery is returned when a query filter cannot be parsed.
	ErrInvalidQuery = errors.New("invalid query")
)

// EventError annotates an application failure with the position of the event.
func EventError(index int, err error) error {
	return fmt.Errorf("event %d: %w", index, err)
}
