// Package page provides pagination arithmetic for fixed-size pages.
package page

// Count returns the total number of pages needed for total records at
// the given page size (ceiling division). Zero records means zero pages.
func Count(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Bounds returns the [start, end) slice bounds for a 1-based page
// number over total records. Page numbers below 1 are clamped to 1 so a
// caller error never produces a negative skip; pages past the end
// collapse to an empty range at total.
func Bounds(pageNum, size, total int) (start, end int) {
	if pageNum < 1 {
		pageNum = 1
	}
	start = size * (pageNum - 1)
	if start > total {
		start = total
	}
	end = start + size
	if end > total {
		end = total
	}
	return start, end
}
