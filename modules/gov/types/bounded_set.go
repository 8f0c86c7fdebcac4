package types

import (
	"encoding/json"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/Chiplis/Photon-solana-contracts/internal/collections"
)

// BoundedSet is an insertion ordered set with a fixed capacity. Every mutation
// returns a new set and leaves the receiver untouched, so a failed multi-step update
// never leaks a partial result.
type BoundedSet[T comparable] struct {
	capacity int
	elements []T
}

// NewBoundedSet creates a set of the given capacity holding elements in order.
// Duplicate elements fail with ErrInvalidProtocolInfo and an overfull list fails with
// ErrCapacityExceeded.
func NewBoundedSet[T comparable](capacity int, elements ...T) (BoundedSet[T], error) {
	if capacity < 0 {
		return BoundedSet[T]{}, sdkerrors.Wrapf(ErrInvalidProtocolInfo, "negative capacity %d", capacity)
	}
	if len(collections.Unique(elements)) != len(elements) {
		return BoundedSet[T]{}, sdkerrors.Wrap(ErrInvalidProtocolInfo, "duplicate set member")
	}
	if len(elements) > capacity {
		return BoundedSet[T]{}, sdkerrors.Wrapf(ErrCapacityExceeded, "%d elements exceed capacity %d", len(elements), capacity)
	}
	return BoundedSet[T]{capacity: capacity, elements: append([]T{}, elements...)}, nil
}

// Len returns the number of members.
func (s BoundedSet[T]) Len() int {
	return len(s.elements)
}

// Cap returns the fixed capacity.
func (s BoundedSet[T]) Cap() int {
	return s.capacity
}

// Contains reports membership.
func (s BoundedSet[T]) Contains(v T) bool {
	return collections.Contains(v, s.elements)
}

// Elements returns a copy of the members in set order.
func (s BoundedSet[T]) Elements() []T {
	return append([]T{}, s.elements...)
}

// AddUnique appends v if absent. Adding to a full set fails with ErrCapacityExceeded.
func (s BoundedSet[T]) AddUnique(v T) (BoundedSet[T], error) {
	if s.Contains(v) {
		return s.clone(s.elements), nil
	}
	return s.withElements(append(s.Elements(), v))
}

// MoveToEnd removes any prior occurrence of v and appends it, so the most recently
// added member is always last.
func (s BoundedSet[T]) MoveToEnd(v T) (BoundedSet[T], error) {
	return s.withElements(append(collections.Without(s.elements, v), v))
}

// Union adds every value not yet present, preserving first-seen order.
func (s BoundedSet[T]) Union(values ...T) (BoundedSet[T], error) {
	return s.withElements(collections.Unique(append(s.Elements(), values...)))
}

// RemoveAll drops every occurrence of v. Removing an absent value is a no-op.
func (s BoundedSet[T]) RemoveAll(v T) BoundedSet[T] {
	return s.clone(collections.Without(s.elements, v))
}

// Difference drops every member present in values.
func (s BoundedSet[T]) Difference(values ...T) BoundedSet[T] {
	return s.clone(collections.Without(s.elements, values...))
}

// Replace returns a set of the same capacity holding the deduplicated values.
func (s BoundedSet[T]) Replace(values ...T) (BoundedSet[T], error) {
	return s.withElements(collections.Unique(values))
}

func (s BoundedSet[T]) withElements(elements []T) (BoundedSet[T], error) {
	if len(elements) > s.capacity {
		return s, sdkerrors.Wrapf(ErrCapacityExceeded, "%d members exceed capacity %d", len(elements), s.capacity)
	}
	return s.clone(elements), nil
}

func (s BoundedSet[T]) clone(elements []T) BoundedSet[T] {
	return BoundedSet[T]{capacity: s.capacity, elements: append([]T{}, elements...)}
}

type boundedSetJSON[T comparable] struct {
	Capacity int `json:"capacity"`
	Elements []T `json:"elements"`
}

// MarshalJSON implements json.Marshaler.
func (s BoundedSet[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(boundedSetJSON[T]{Capacity: s.capacity, Elements: s.Elements()})
}

// UnmarshalJSON implements json.Unmarshaler and enforces the set invariants.
func (s *BoundedSet[T]) UnmarshalJSON(bz []byte) error {
	var raw boundedSetJSON[T]
	if err := json.Unmarshal(bz, &raw); err != nil {
		return err
	}
	set, err := NewBoundedSet(raw.Capacity, raw.Elements...)
	if err != nil {
		return err
	}
	*s = set
	return nil
}
