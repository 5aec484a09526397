/*
Package errors implements custom error interfaces for mvault.

The idea is to reuse as many errors from this package as possible and
define custom package errors when absolutely necessary. Errors are
categorized by a root error that carries a unique code. Use the Is method
of a root error to test what category an error belongs to, regardless of
how many times it was wrapped on the way up.

Always wrap an error with additional context before returning it from a
function:

	if err := action.Validate(); err != nil {
		return errors.Wrap(err, "action")
	}
*/
package errors
