package validator

// Validator validates a struct and returns a V10ValidationError (or any
// error) when it is invalid.
type Validator interface {
	Validate(data any) error
}
