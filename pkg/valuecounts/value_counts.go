// Package valuecounts stores unordered counts of integer values (for
// example line lengths) with deterministic JSON serialization.
package valuecounts

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ValueCounts maps a value to the number of times it was observed.
// It serializes to JSON as an array of (value, count) pairs sorted by
// value, so that output is deterministic.
type ValueCounts map[int]int

// Pair stores a single value and its associated count.
type Pair struct {
	Value int `json:"value"`
	Count int `json:"count"`
}

// New creates a new empty ValueCounts object.
func New() ValueCounts {
	return ValueCounts{}
}

// Count produces a new ValueCounts by counting repetitions of values in
// the input data.
func Count(data []int) ValueCounts {
	vc := New()
	for _, value := range data {
		vc[value] += 1
	}
	return vc
}

// Len returns the number of distinct values stored by this ValueCounts.
func (vc ValueCounts) Len() int {
	return len(vc)
}

// String returns a string representation of this ValueCounts with values
// sorted in ascending order.
func (vc ValueCounts) String() string {
	pairStrings := make([]string, 0, len(vc))
	for _, pair := range vc.ToPairs() {
		pairStrings = append(pairStrings, fmt.Sprintf("%d: %d", pair.Value, pair.Count))
	}
	return "[" + strings.Join(pairStrings, ", ") + " ]"
}

// ToPairs converts this ValueCounts into a list of (value, count) pairs.
// The values are sorted in increasing order so that the output is
// deterministic. If this ValueCounts is empty, returns an empty slice.
func (vc ValueCounts) ToPairs() []Pair {
	pairs := make([]Pair, 0, len(vc))

	values := maps.Keys(vc)
	slices.Sort(values)

	for _, value := range values {
		pairs = append(pairs, Pair{Value: value, Count: vc[value]})
	}

	return pairs
}

// FromPairs converts a list of (value, count) pairs back into ValueCounts.
// If the same value occurs multiple times in the list, an error is returned.
func FromPairs(pairs []Pair) (ValueCounts, error) {
	valueCounts := New()

	for _, item := range pairs {
		if _, seen := valueCounts[item.Value]; seen {
			return nil, fmt.Errorf("value occurs multiple times: %d", item.Value)
		}
		valueCounts[item.Value] = item.Count
	}

	return valueCounts, nil
}

// MarshalJSON serialises this ValueCounts into a JSON array of
// {value, count} pairs.
func (vc ValueCounts) MarshalJSON() ([]byte, error) {
	return json.Marshal(vc.ToPairs())
}

// UnmarshalJSON converts data serialised by MarshalJSON back into a Go
// object. Existing counts are discarded. If the serialised array contains
// multiple counts for the same value, an error is returned and the
// original object is not modified.
func (vc *ValueCounts) UnmarshalJSON(data []byte) error {
	var pairs []Pair

	if err := json.Unmarshal(data, &pairs); err != nil {
		return err
	}

	valueCounts, err := FromPairs(pairs)
	if err != nil {
		return err
	}

	*vc = valueCounts
	return nil
}
