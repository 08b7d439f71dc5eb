// Package diagnostics defines the error and warning taxonomy shared by every
// translator-facing package (§7 of the specification this module implements).
package diagnostics

import "fmt"

// Kind enumerates the translation failure categories an implementer must
// model. Names are user-visible.
type Kind string

const (
	ParseError           Kind = "ParseError"
	UnresolvedIdentifier Kind = "UnresolvedIdentifier"
	AmbiguousReference   Kind = "AmbiguousReference"
	UnsupportedFeature   Kind = "UnsupportedFeature"
	AmbiguousOuterJoin   Kind = "AmbiguousOuterJoin"
	SegmentationFailed   Kind = "SegmentationFailed"
	CircularTypeReference Kind = "CircularTypeReference"
	TypeInferenceConflict Kind = "TypeInferenceConflict"
	MetadataMissing      Kind = "MetadataMissing"
)

// Diagnostics is a single translation failure. A non-nil *Diagnostics
// returned from a translator entry point indicates the translation failed;
// it satisfies the error interface so callers can treat it as a richer error
// type (spec §9: "best modeled as a Result type").
type Diagnostics struct {
	Kind       Kind
	Message    string
	Line       int
	Column     int
	Identifier string // offending identifier or construct, when relevant
}

func (d *Diagnostics) Error() string {
	if d == nil {
		return ""
	}
	if d.Identifier != "" {
		return fmt.Sprintf("%s at %d:%d (%s): %s", d.Kind, d.Line, d.Column, d.Identifier, d.Message)
	}
	return fmt.Sprintf("%s at %d:%d: %s", d.Kind, d.Line, d.Column, d.Message)
}

// New constructs a Diagnostics value.
func New(kind Kind, line, col int, identifier, format string, args ...interface{}) *Diagnostics {
	return &Diagnostics{
		Kind:       kind,
		Message:    fmt.Sprintf(format, args...),
		Line:       line,
		Column:     col,
		Identifier: identifier,
	}
}

// Warning is a non-fatal adjustment reported alongside successful output
// (e.g. the FOLLOWS trigger clause being dropped, or a SYS_GUID() call
// requiring the pgcrypto extension).
type Warning struct {
	Message    string
	Line       int
	Column     int
	Identifier string
}

func (w Warning) String() string {
	if w.Identifier != "" {
		return fmt.Sprintf("%d:%d (%s): %s", w.Line, w.Column, w.Identifier, w.Message)
	}
	return fmt.Sprintf("%d:%d: %s", w.Line, w.Column, w.Message)
}
