package parseas

// UnknownPolicy controls how unknown keys are handled.
type UnknownPolicy int

const (
	UnknownStrip  UnknownPolicy = iota // Drop unknown keys.
	UnknownStrict                      // Reject unknown keys with an error.
)

func (p UnknownPolicy) String() string {
	switch p {
	case UnknownStrip:
		return "strip"
	case UnknownStrict:
		return "strict"
	default:
		return "unknown"
	}
}

// Config holds the flags the engine reads while validating a Schema.
type Config struct {
	// Partial makes every field optional: absent fields are not errors and
	// receive no default; present fields are validated as usual.
	Partial bool
	// Root marks a synthesized schema whose single field "root" decides
	// success. See RootSchema.
	Root bool
	// Unknown selects the policy for keys that match no field.
	Unknown UnknownPolicy
}
