package domain

// RawBundle is the platform-specific data bundle produced by a scraper. The
// shape varies per platform, so it stays a loose map until the unifier maps it
// into a UnifiedDocument. The accessors below are nil-safe: a missing or
// mistyped key yields the zero value, never a panic.
type RawBundle map[string]any

// Map returns the nested bundle under key, or nil.
func (b RawBundle) Map(key string) RawBundle {
	if b == nil {
		return nil
	}
	switch v := b[key].(type) {
	case map[string]any:
		return RawBundle(v)
	case RawBundle:
		return v
	default:
		return nil
	}
}

// String returns the string under key, or "".
func (b RawBundle) String(key string) string {
	if b == nil {
		return ""
	}
	s, _ := b[key].(string)
	return s
}

// Int returns the integer under key, accepting the numeric types JSON
// decoding and scraper bundles actually produce.
func (b RawBundle) Int(key string) int64 {
	if b == nil {
		return 0
	}
	switch v := b[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// Slice returns the list under key, or nil.
func (b RawBundle) Slice(key string) []any {
	if b == nil {
		return nil
	}
	s, _ := b[key].([]any)
	return s
}

// Clone returns a shallow copy one level deep, enough for callers that need
// to attach top-level fields without mutating the scraper's bundle.
func (b RawBundle) Clone() RawBundle {
	if b == nil {
		return nil
	}
	out := make(RawBundle, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}
