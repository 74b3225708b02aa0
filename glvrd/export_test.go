package glvrd

// Test hooks for unexported helpers.
var (
	EscapeComponent = escapeComponent
	CountLetters    = countLetters
)

// EncodeForm encodes ordered key/value pairs as a POST body
func EncodeForm(pairs ...string) string {
	fields := make([]formField, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		fields = append(fields, formField{Key: pairs[i], Value: pairs[i+1]})
	}
	return encodeForm(fields...)
}

// NewStatusError builds the marker error used by the transport wrappers
func NewStatusError(code int) error {
	return &statusError{code: code}
}
