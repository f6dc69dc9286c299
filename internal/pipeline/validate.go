package pipeline

import "regexp"

// urlPattern accepts http/https followed by one or more non-whitespace
// characters. Anything stricter belongs to the liveness probe, which sees the
// URL after this gate.
var urlPattern = regexp.MustCompile(`^(?i)(?:http|https)://\S+$`)

// ValidateURL classifies the syntax of a raw URL without touching the
// network. It is pure and deterministic.
func ValidateURL(raw string) Validity {
	if urlPattern.MatchString(raw) {
		return ValiditySyntaxValid
	}
	return ValiditySyntaxInvalid
}

// Classify wraps ValidateURL into an immutable Candidate.
func Classify(raw string) Candidate {
	return Candidate{RawURL: raw, Validity: ValidateURL(raw)}
}
