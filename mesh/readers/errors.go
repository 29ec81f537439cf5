package readers

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrNotAnMshFile    = errors.New("not a Gmsh MSH file: first line is not $MeshFormat")
	ErrMalformedHeader = errors.New("malformed $MeshFormat header")
	ErrMalformedRecord = errors.New("malformed record")
	ErrDiagnostics     = errors.New("diagnostics reported in strict mode")
)

// DiagnosticKind classifies a non-fatal problem found while reading
type DiagnosticKind int

const (
	UnsupportedElementType DiagnosticKind = iota
	UnknownSection
	StrayLine
	MissingEndMarker
)

func (k DiagnosticKind) String() string {
	return [...]string{"UnsupportedElementType", "UnknownSection", "StrayLine", "MissingEndMarker"}[k]
}

// Diagnostic is a non-fatal problem. The mesh is still produced.
type Diagnostic struct {
	Kind    DiagnosticKind
	Line    int
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s: %s", d.Line, d.Kind, d.Message)
}

// diagnostics accumulates problems and echoes each one to the logger
type diagnostics struct {
	logger *slog.Logger
	list   []Diagnostic
}

func (d *diagnostics) report(kind DiagnosticKind, line int, format string, args ...interface{}) {
	diag := Diagnostic{Kind: kind, Line: line, Message: fmt.Sprintf(format, args...)}
	d.list = append(d.list, diag)
	d.logger.Warn(diag.Message, "kind", kind.String(), "line", line)
}

// malformed wraps ErrMalformedRecord with the offending line
func malformed(line int, format string, args ...interface{}) error {
	return fmt.Errorf("%w: line %d: %s", ErrMalformedRecord, line, fmt.Sprintf(format, args...))
}
