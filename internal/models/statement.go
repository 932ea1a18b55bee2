package models

// RawStatementInput is the evidence supplied for one analysis.
// At most one of Document and FreeText is populated.
type RawStatementInput struct {
	Document *StatementDocument
	FreeText string
}

// StatementDocument is an uploaded statement file
type StatementDocument struct {
	Bytes    []byte
	MimeType string
	FileName string
}

// PartKind tells the oracle how to read a part
type PartKind string

const (
	PartText   PartKind = "text"
	PartBinary PartKind = "binary"
)

// Part is one element of a ScoringRequest. Binary parts carry base64 data.
type Part struct {
	Kind     PartKind `json:"kind"`
	MimeType string   `json:"mimeType,omitempty"`
	Data     string   `json:"data,omitempty"`
	Text     string   `json:"text,omitempty"`
}

// ScoringRequest is the ordered, immutable payload sent to the oracle
type ScoringRequest struct {
	parts    []Part
	fileName string
}

// NewScoringRequest copies parts into a new request
func NewScoringRequest(fileName string, parts ...Part) *ScoringRequest {
	cp := make([]Part, len(parts))
	copy(cp, parts)
	return &ScoringRequest{parts: cp, fileName: fileName}
}

// Parts returns a copy of the request parts in order
func (r *ScoringRequest) Parts() []Part {
	cp := make([]Part, len(r.parts))
	copy(cp, r.parts)
	return cp
}

// FileName is the document name, empty for text requests
func (r *ScoringRequest) FileName() string {
	return r.fileName
}

// HasBinary reports whether the request carries a document
func (r *ScoringRequest) HasBinary() bool {
	for _, p := range r.parts {
		if p.Kind == PartBinary {
			return true
		}
	}
	return false
}

// Instruction returns the text of the last text part
func (r *ScoringRequest) Instruction() string {
	for i := len(r.parts) - 1; i >= 0; i-- {
		if r.parts[i].Kind == PartText {
			return r.parts[i].Text
		}
	}
	return ""
}
