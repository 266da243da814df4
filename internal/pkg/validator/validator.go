package validator

// Validator validates structs against their declared rules.
type Validator interface {
	// Validate returns an error describing the first set of failed rules, or
	// nil when the value passes.
	Validate(data any) error
}
