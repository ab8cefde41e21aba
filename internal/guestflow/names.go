package guestflow

import "strings"

// NormalizeNames canonicalizes a comma-separated companion name list: each
// segment trimmed with inner whitespace collapsed, empty segments dropped,
// segments rejoined with a bare comma. The result is a fixed point, so
// normalizing twice changes nothing.
//
//	" Ana ,, Luis  " → "Ana,Luis"
func NormalizeNames(raw string) string {
	segments := strings.Split(raw, ",")
	cleaned := make([]string, 0, len(segments))
	for _, segment := range segments {
		fields := strings.Fields(segment)
		if len(fields) == 0 {
			continue
		}
		cleaned = append(cleaned, strings.Join(fields, " "))
	}
	return strings.Join(cleaned, ",")
}

// CountNames reports how many name segments the input holds after
// normalization.
func CountNames(raw string) int {
	normalized := NormalizeNames(raw)
	if normalized == "" {
		return 0
	}
	return strings.Count(normalized, ",") + 1
}
