// Package stream models entries of a log-structured, append-only stream and
// their conversion between raw byte form and typed form.
package stream

import (
	"fmt"
	"strconv"
	"strings"
)

// ID identifies a stream entry. Its textual form is "<ms>-<seq>", ordered by
// timestamp first and sequence second. AutoID defers id assignment to the
// store on append.
type ID struct {
	ms   uint64
	seq  uint64
	auto bool
}

// AutoID requests id assignment by the store ("*" on the wire).
var AutoID = ID{auto: true}

func NewID(ms, seq uint64) ID {
	return ID{ms: ms, seq: seq}
}

// ParseID parses "<ms>-<seq>" or the auto marker "*".
func ParseID(s string) (ID, error) {
	if s == "*" {
		return AutoID, nil
	}
	ms, seq, ok := strings.Cut(s, "-")
	if !ok {
		return ID{}, fmt.Errorf("stream: malformed id %q", s)
	}
	m, err := strconv.ParseUint(ms, 10, 64)
	if err != nil {
		return ID{}, fmt.Errorf("stream: malformed id %q: %w", s, err)
	}
	q, err := strconv.ParseUint(seq, 10, 64)
	if err != nil {
		return ID{}, fmt.Errorf("stream: malformed id %q: %w", s, err)
	}
	return ID{ms: m, seq: q}, nil
}

func (id ID) String() string {
	if id.auto {
		return "*"
	}
	return fmt.Sprintf("%d-%d", id.ms, id.seq)
}

func (id ID) IsAuto() bool {
	return id.auto
}

// Valid reports whether the id is concrete, i.e. not the auto marker.
func (id ID) Valid() bool {
	return !id.auto
}

// Timestamp returns the milliseconds component.
func (id ID) Timestamp() uint64 {
	return id.ms
}

// Sequence returns the per-millisecond sequence component.
func (id ID) Sequence() uint64 {
	return id.seq
}

// Before reports whether id is ordered strictly before other.
func (id ID) Before(other ID) bool {
	if id.ms != other.ms {
		return id.ms < other.ms
	}
	return id.seq < other.seq
}
