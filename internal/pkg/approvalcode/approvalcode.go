// Package approvalcode draws unique 4-digit approval codes for approved
// raffle tickets.
package approvalcode

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// Space is the number of distinct codes, "0000" through "9999".
const Space = 10000

var (
	ErrInvalidCount = errors.New("code count must be positive")
	ErrExhausted    = errors.New("not enough unused codes left")
)

// Allocator draws codes uniformly at random, rejecting collisions.
type Allocator struct {
	intN func(n int) int
}

// New returns an Allocator backed by the runtime's random source.
func New() *Allocator {
	return &Allocator{intN: rand.IntN}
}

// NewWithSource returns an Allocator drawing from r. Used for
// reproducible draws in tests.
func NewWithSource(r *rand.Rand) *Allocator {
	return &Allocator{intN: r.IntN}
}

// Allocate returns count distinct codes, none of which is in issued.
// issued is only read.
func (a *Allocator) Allocate(count int, issued map[string]struct{}) ([]string, error) {
	if count <= 0 {
		return nil, ErrInvalidCount
	}

	if count > Space-len(issued) {
		return nil, fmt.Errorf("%w: requested %d, %d available", ErrExhausted, count, Space-len(issued))
	}

	batch := make(map[string]struct{}, count)
	codes := make([]string, 0, count)
	for len(codes) < count {
		code := Format(a.intN(Space))
		if _, taken := issued[code]; taken {
			continue
		}
		if _, taken := batch[code]; taken {
			continue
		}

		batch[code] = struct{}{}
		codes = append(codes, code)
	}

	return codes, nil
}

// Format zero-pads n to four digits.
func Format(n int) string {
	return fmt.Sprintf("%04d", n)
}

// Valid reports whether code is a four character decimal string.
func Valid(code string) bool {
	if len(code) != 4 {
		return false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}

// Set builds a lookup set from a list of codes.
func Set(codes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}

	return set
}
