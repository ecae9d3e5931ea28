// Package filter decides which scalars are worth deriving.
//
// The checks narrow the search to the 72-bit window whose leading nibble is
// 4-7 and skip candidates whose tail contains a run of five identical hex
// digits. Everything the filter accepts is still derived and compared.
package filter

const (
	// ScalarHexLen is the width of a formatted scalar.
	ScalarHexLen = 64
	// ZeroPrefixLen is the number of leading characters that must be '0'.
	ZeroPrefixLen = 46
	// LeadIndex is the position of the most significant free nibble.
	LeadIndex = ZeroPrefixLen
	// RunLen is the length of a rejected run of identical characters.
	RunLen = 5
)

// Accepts reports whether the 64 character hex scalar passes all checks.
// It reads s only and keeps no state.
func Accepts[S ~string | ~[]byte](s S) bool {
	if len(s) != ScalarHexLen {
		return false
	}

	for i := 0; i < ZeroPrefixLen; i++ {
		if s[i] != '0' {
			return false
		}
	}

	switch s[LeadIndex] {
	case '4', '5', '6', '7':
	default:
		return false
	}

	return !hasRun(s[LeadIndex+1:])
}

// hasRun reports whether tail holds RunLen equal characters in a row.
func hasRun[S ~string | ~[]byte](tail S) bool {
	run := 1
	for i := 1; i < len(tail); i++ {
		if tail[i] == tail[i-1] {
			run++
			if run >= RunLen {
				return true
			}
			continue
		}
		run = 1
	}
	return false
}
