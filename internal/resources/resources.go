// Package resources carries the DocUtils-to-DocBook stylesheet shipped with the binary.
package resources

import (
	_ "embed"
	"fmt"
	"os"
)

// StylesheetName is the name of the embedded stylesheet, used in logs and temp files.
const StylesheetName = "dn2osdbk.xsl"

//go:embed dn2osdbk.xsl
var stylesheet []byte

// Stylesheet returns the embedded stylesheet.
func Stylesheet() []byte {
	out := make([]byte, len(stylesheet))
	copy(out, stylesheet)
	return out
}

// LoadStylesheet reads the stylesheet at path, or returns the embedded one when path is empty.
// The second result names where the stylesheet came from.
func LoadStylesheet(path string) ([]byte, string, error) {
	if path == "" {
		return Stylesheet(), "embedded:" + StylesheetName, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read stylesheet: %w", err)
	}
	return data, path, nil
}
