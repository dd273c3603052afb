// Package filter narrows label lists with a case-insensitive, in-order
// subsequence match. Results keep the original order of the input.
package filter

import (
	"slices"

	"github.com/sahilm/fuzzy"
)

// Match returns the indices of labels that contain every rune of query, in
// order, ignoring case. Spaces are matched like any other rune. The empty
// query matches every label.
func Match(query string, labels []string) []int {
	if query == "" {
		all := make([]int, len(labels))
		for i := range labels {
			all[i] = i
		}
		return all
	}

	matches := fuzzy.Find(query, labels)
	indices := make([]int, 0, len(matches))
	for _, m := range matches {
		indices = append(indices, m.Index)
	}

	// fuzzy ranks by score; the view wants listing order.
	slices.Sort(indices)
	return indices
}

// Apply is Match over arbitrary items, using label to extract the text to
// match against.
func Apply[T any](query string, items []T, label func(T) string) []int {
	labels := make([]string, len(items))
	for i, item := range items {
		labels[i] = label(item)
	}
	return Match(query, labels)
}
