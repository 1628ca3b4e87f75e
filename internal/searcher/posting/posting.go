// Package posting implements the set algebra over sorted posting lists.
// Every function expects strictly increasing inputs, returns a fresh
// strictly increasing slice, and never modifies its arguments.
package posting

import (
	"slices"

	"github.com/sarnews/newsearch/internal/indexer/index"
)

// And returns the ids present in both lists.
func And(a, b index.PostingList) index.PostingList {
	if len(a) == 0 || len(b) == 0 {
		return index.PostingList{}
	}
	out := make(index.PostingList, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}

// Or returns the ids present in either list.
func Or(a, b index.PostingList) index.PostingList {
	out := make(index.PostingList, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		default:
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

// Minus returns the ids of a that are absent from b.
func Minus(a, b index.PostingList) index.PostingList {
	out := make(index.PostingList, 0, len(a))
	i, j := 0, 0
	for i < len(a) {
		if j >= len(b) {
			return append(out, a[i:]...)
		}
		switch {
		case a[i] == b[j]:
			i++
			j++
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		default:
			j++
		}
	}
	return out
}

// Union merges any number of lists.
func Union(lists ...index.PostingList) index.PostingList {
	out := index.PostingList{}
	for _, l := range lists {
		out = Or(out, l)
	}
	return out
}

// FromUnsorted sorts and deduplicates ids into a posting list.
func FromUnsorted(ids []int) index.PostingList {
	if len(ids) == 0 {
		return index.PostingList{}
	}
	sorted := make([]int, len(ids))
	copy(sorted, ids)
	slices.Sort(sorted)
	return index.PostingList(slices.Compact(sorted))
}
