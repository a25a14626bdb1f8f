// Package errors provides the classified error type used across dn2docbook.
//
// Every failure that can end a conversion run is a ClassifiedError carrying a
// category (parse, transform, index, filesystem, config, ...), a severity and
// structured context. The CLI adapter turns the category into a process exit
// code and a one-line message.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryParse, "source is not well-formed XML").
//		WithContext("file", path).
//		Build()
package errors
