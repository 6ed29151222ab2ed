package ptr

func Of[T any](v T) *T {
	return &v
}

// Or returns the pointed-to value, or fallback for nil. Used for optional request fields with a
// configured default.
func Or[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
