package sentinel

var _ error = Error("")

// Error is an immutable error backed by a string constant. Because the type
// is comparable, errors.Is matches it with == through any number of %w
// wrappers.
type Error string

// Error implements the error interface.
func (e Error) Error() string {
	return string(e)
}
