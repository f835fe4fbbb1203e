// Package reward grants passive currency for ordinary chat activity.
package reward

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrNoOptions is returned when there is nothing with positive weight to pick.
var ErrNoOptions = errors.New("no weighted options")

// Option is one labelled choice. Weight is relative; zero never gets picked.
type Option[T any] struct {
	Label  string
	Weight int
	Value  T
}

// Rand is the randomness a Picker or Granter draws from.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

type globalRand struct{}

func (globalRand) IntN(n int) int    { return rand.IntN(n) }
func (globalRand) Float64() float64 { return rand.Float64() }

// DefaultRand draws from math/rand/v2's global source, which is safe for
// concurrent use.
var DefaultRand Rand = globalRand{}

// Pick draws d uniformly from [0, total weight) and returns the option whose
// interval [lo, hi) contains d, walking options in slice order. A draw outside
// every interval selects the last option.
func Pick[T any](r Rand, options []Option[T]) (Option[T], error) {
	total := 0
	for _, o := range options {
		if o.Weight < 0 {
			return Option[T]{}, fmt.Errorf("option %q: negative weight %d", o.Label, o.Weight)
		}
		total += o.Weight
	}
	if total == 0 {
		return Option[T]{}, ErrNoOptions
	}
	return pickAt(options, r.IntN(total)), nil
}

func pickAt[T any](options []Option[T], d int) Option[T] {
	lo := 0
	for _, o := range options {
		hi := lo + o.Weight
		if lo <= d && d < hi {
			return o
		}
		lo = hi
	}
	return options[len(options)-1]
}
