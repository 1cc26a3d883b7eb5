package tui

import (
	"errors"
	"slices"

	"github.com/ktr0731/go-fuzzyfinder"
)

// ErrCancelled is returned when the user leaves the finder without choosing.
var ErrCancelled = errors.New("selection cancelled")

// SelectMany prompts the user to select any number of items from a list
// (tab marks an item, enter confirms).
// items is the list of items to display.
// labelFunc returns the string representation of an item.
// Returned indexes follow the order of items, not the order they were marked in.
func SelectMany[T any](items []T, labelFunc func(T) string) ([]int, error) {
	if len(items) == 0 {
		return nil, nil
	}

	idxs, err := fuzzyfinder.FindMulti(
		items,
		func(i int) string {
			return labelFunc(items[i])
		},
		fuzzyfinder.WithHeader("tab: mark  enter: sync marked"),
	)
	if errors.Is(err, fuzzyfinder.ErrAbort) {
		return nil, ErrCancelled
	}
	if err != nil {
		return nil, err
	}
	return sortedUnique(idxs), nil
}

func sortedUnique(idxs []int) []int {
	seen := make(map[int]bool, len(idxs))
	out := make([]int, 0, len(idxs))
	for _, i := range idxs {
		if !seen[i] {
			seen[i] = true
			out = append(out, i)
		}
	}
	slices.Sort(out)
	return out
}
