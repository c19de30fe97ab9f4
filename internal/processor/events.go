package processor

import (
	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/goran-ethernal/RWAListener/pkg/processor"
)

// ParseFunc decodes the body of an event with the given tag. It reports false for unknown tags.
type ParseFunc[E any] func(tag uint8, r *concordium.Reader) (E, bool)

// ParseEvents decodes all raw events of a call before any of them is applied,
// so a malformed event never leaves a call half applied.
func ParseEvents[E any](events [][]byte, parse ParseFunc[E]) ([]E, error) {
	parsed := make([]E, 0, len(events))
	for i, raw := range events {
		r := concordium.NewReader(raw)
		tag := r.U8()
		if err := r.Err(); err != nil {
			return nil, processor.ParseError(i, err)
		}

		ev, ok := parse(tag, r)
		if !ok {
			return nil, processor.UnknownTagError(i, tag)
		}
		if err := r.Finish(); err != nil {
			return nil, processor.ParseError(i, err)
		}
		parsed = append(parsed, ev)
	}
	return parsed, nil
}

// ApplyEvents applies parsed events in emission order and returns how many were applied.
func ApplyEvents[E any](events []E, apply func(E) error) (int, error) {
	for i, ev := range events {
		if err := apply(ev); err != nil {
			return i, processor.EventError(i, err)
		}
	}
	return len(events), nil
}
