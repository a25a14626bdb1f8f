package xslt

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// XsltprocEngineName is the registry name of the command line engine.
const XsltprocEngineName = "xsltproc"

func init() {
	Register(XsltprocEngineName, func(sheet Stylesheet) (Engine, error) {
		return NewXsltproc("", sheet)
	})
}

// Xsltproc runs the xsltproc binary once per document, feeding it on stdin.
type Xsltproc struct {
	binary  string
	sheet   string
	tempDir string
}

// NewXsltproc locates binary (xsltproc on PATH when empty) and materializes in-memory
// stylesheets into a temporary directory removed by Close.
func NewXsltproc(binary string, sheet Stylesheet) (*Xsltproc, error) {
	if binary == "" {
		binary = XsltprocEngineName
	}
	resolved, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("locate %s: %w", binary, err)
	}

	x := &Xsltproc{binary: resolved, sheet: sheet.Path}
	if x.sheet == "" {
		dir, err := os.MkdirTemp("", "dn2docbook-xslt-*")
		if err != nil {
			return nil, fmt.Errorf("create stylesheet dir: %w", err)
		}
		x.tempDir = dir
		x.sheet = filepath.Join(dir, "stylesheet.xsl")
		if err := os.WriteFile(x.sheet, sheet.Data, 0o600); err != nil {
			_ = os.RemoveAll(dir)
			return nil, fmt.Errorf("write stylesheet: %w", err)
		}
	}
	return x, nil
}

// Transform runs xsltproc on source and returns its stdout.
func (x *Xsltproc) Transform(ctx context.Context, source []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, x.binary, "--nonet", x.sheet, "-")
	cmd.Stdin = bytes.NewReader(source)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("xsltproc failed: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("xsltproc failed: %w", err)
	}
	return stdout.Bytes(), nil
}

// Close removes the materialized stylesheet, if any.
func (x *Xsltproc) Close() error {
	if x.tempDir == "" {
		return nil
	}
	return os.RemoveAll(x.tempDir)
}
