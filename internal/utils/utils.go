package utils

import "strings"

func ToPtr[T any](t T) *T {
	return &t
}

func FromPtr[T any](t *T) T {
	var zero T
	if t == nil {
		return zero
	}
	return *t
}

// FromPtrOr dereferences t, or returns fallback when t is nil.
func FromPtrOr[T any](t *T, fallback T) T {
	if t == nil {
		return fallback
	}
	return *t
}

// TrimToPtr trims surrounding space and returns nil for an empty result.
func TrimToPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
