// Package errors provides sentinel errors for conversion operations.
// They sit in the cause chain of the classified errors returned by package convert,
// so callers can match them with errors.Is.
package errors

import "errors"

var (
	// ErrMalformedXML indicates a source or index document is not well-formed XML.
	ErrMalformedXML = errors.New("malformed XML")

	// ErrTransformFailed indicates the stylesheet could not be applied to a document.
	ErrTransformFailed = errors.New("stylesheet transform failed")

	// ErrMissingIndexTitle indicates the index document has no section/title text.
	ErrMissingIndexTitle = errors.New("index has no section/title")

	// ErrReadSource indicates a source or index file could not be read.
	ErrReadSource = errors.New("read source failed")

	// ErrWriteOutput indicates an output file could not be written.
	ErrWriteOutput = errors.New("write output failed")

	// ErrCreateOutputDir indicates the output directory could not be created.
	ErrCreateOutputDir = errors.New("create output directory failed")

	// ErrUnknownToplevel indicates no folder assembler exists for the requested toplevel.
	ErrUnknownToplevel = errors.New("unknown toplevel")
)
