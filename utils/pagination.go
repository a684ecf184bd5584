package utils

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Pagination defaults for list endpoints
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ParsePagination reads page and limit query values. Missing, malformed or
// non-positive values fall back to the defaults; limit is capped at MaxLimit.
func ParsePagination(pageParam, limitParam string) (page, limit int) {
	page = parsePositive(pageParam, DefaultPage)
	limit = parsePositive(limitParam, DefaultLimit)
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// Offset returns the number of rows to skip for a page. Pages past what an int can
// address saturate at math.MaxInt instead of wrapping around.
func Offset(page, limit int) int {
	if page <= 1 || limit <= 0 {
		return 0
	}
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

// TotalPages returns the number of pages needed for total items
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func parsePositive(value string, fallback int) int {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// DayRange parses a YYYY-MM-DD date and returns the UTC half-open range [start, end) covering it
func DayRange(date string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return start, start.AddDate(0, 0, 1), nil
}
