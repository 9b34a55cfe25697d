package agent

import "fmt"

// SourceKind enumerates the three accepted ingestion input kinds.
// Exactly one must be set on a Source; presenting more than one is a
// caller error (spec §4.6).
type SourceKind string

const (
	SourceKindPDF        SourceKind = "pdf"
	SourceKindURL        SourceKind = "url"
	SourceKindStructured SourceKind = "structured"
)

// StructuredInput is the already-parsed field set accepted by the
// structured-text ingestion path, with optional companion free-text
// fields used to fill any blanks (spec §4.6).
type StructuredInput struct {
	Fields      map[string]string
	StartupName string
	Description string
	Market      string
	Team        string
	Traction    string
}

// Source is the tagged union of ingestion inputs. Build one via the
// NewXSource constructors rather than populating fields directly so that
// exactly one kind is ever set.
type Source struct {
	Kind       SourceKind
	PDFBytes   []byte
	URL        string
	Structured StructuredInput
}

// NewPDFSource builds a PDF ingestion source.
func NewPDFSource(data []byte) Source {
	return Source{Kind: SourceKindPDF, PDFBytes: data}
}

// NewURLSource builds a URL ingestion source.
func NewURLSource(url string) Source {
	return Source{Kind: SourceKindURL, URL: url}
}

// NewStructuredSource builds a structured-text ingestion source.
func NewStructuredSource(input StructuredInput) Source {
	return Source{Kind: SourceKindStructured, Structured: input}
}

// Validate enforces "exactly one source kind is accepted" (spec §4.6).
func (s Source) Validate() error {
	switch s.Kind {
	case SourceKindPDF:
		if len(s.PDFBytes) == 0 {
			return fmt.Errorf("pdf source: no bytes provided")
		}
	case SourceKindURL:
		if s.URL == "" {
			return fmt.Errorf("url source: no url provided")
		}
	case SourceKindStructured:
		// Structured input may be entirely blank fields; that is
		// handled downstream by StartupFacts.WithDefaults, not rejected here.
	default:
		return fmt.Errorf("unknown or unset source kind %q", s.Kind)
	}
	return nil
}
