// internal/app/system/limits/limits.go
package limits

// Size limits shared by handlers. Validator tags on input structs carry
// their own per-field maxima.
const (
	// MaxJSONBody caps every decoded request body.
	MaxJSONBody = 1 << 20 // 1 MB

	// MaxMessageLength caps chat text after sanitizing, in runes.
	MaxMessageLength = 2000

	// MaxPageSize is the largest page a list endpoint will return.
	MaxPageSize = 100

	// DefaultPageSize applies when no limit is given.
	DefaultPageSize = 50
)
