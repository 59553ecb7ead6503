package clcdkutil

// Or returns v unless it is the zero value, in which case def is returned.
// Stack props use it to fall back to defaults for fields the caller left unset.
func Or[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

// OrPtr dereferences v, falling back to def when v is nil.
func OrPtr[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}
