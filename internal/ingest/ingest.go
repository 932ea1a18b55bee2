package ingest

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/Dan9191/trust-score-service/internal/models"
)

const (
	// DefaultMaxDocumentBytes is the upload ceiling (20 MiB)
	DefaultMaxDocumentBytes = 20 * 1024 * 1024
	// DefaultFileName is used when a document arrives without a name
	DefaultFileName = "statement.pdf"
	// MimePDF is the only supported document type
	MimePDF = "application/pdf"
)

var (
	ErrUnsupportedMimeType = errors.New("unsupported document type")
	ErrDocumentTooLarge    = errors.New("document too large")
	ErrEmptyDocument       = errors.New("document is empty")
	ErrInvalidEncoding     = errors.New("document is not valid base64")
)

// Ingestor turns raw statement input into a ScoringRequest
type Ingestor struct {
	maxBytes int64
}

// NewIngestor creates an ingestor; maxBytes <= 0 selects the default ceiling
func NewIngestor(maxBytes int64) *Ingestor {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxDocumentBytes
	}
	return &Ingestor{maxBytes: maxBytes}
}

// MaxBytes returns the document size ceiling
func (i *Ingestor) MaxBytes() int64 {
	return i.maxBytes
}

// Ingest builds the request. A document takes precedence over free text;
// with neither, the sample statement is analysed.
func (i *Ingestor) Ingest(in models.RawStatementInput) (*models.ScoringRequest, error) {
	if in.Document != nil {
		return i.ingestDocument(in.Document)
	}

	text := strings.TrimSpace(in.FreeText)
	if text == "" {
		text = SampleStatement
	}
	return models.NewScoringRequest("", models.Part{
		Kind: models.PartText,
		Text: Instruction + "\n\nBank Statement Data:\n" + text,
	}), nil
}

func (i *Ingestor) ingestDocument(doc *models.StatementDocument) (*models.ScoringRequest, error) {
	mimeType, err := normalizeMimeType(doc.MimeType)
	if err != nil {
		return nil, err
	}
	if len(doc.Bytes) == 0 {
		return nil, ErrEmptyDocument
	}
	if int64(len(doc.Bytes)) > i.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrDocumentTooLarge, len(doc.Bytes), i.maxBytes)
	}

	fileName := strings.TrimSpace(doc.FileName)
	if fileName == "" {
		fileName = DefaultFileName
	}

	return models.NewScoringRequest(fileName,
		models.Part{
			Kind:     models.PartBinary,
			MimeType: mimeType,
			Data:     EncodeDocument(doc.Bytes),
		},
		models.Part{
			Kind: models.PartText,
			Text: fmt.Sprintf("%s\n\nThe bank statement PDF %q has been provided above. Analyze all transactions in detail.", Instruction, fileName),
		},
	), nil
}

// normalizeMimeType drops parameters and case; an empty type is read as PDF
func normalizeMimeType(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return MimePDF, nil
	}
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMimeType, raw)
	}
	if mediaType != MimePDF {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMimeType, mediaType)
	}
	return mediaType, nil
}

// EncodeDocument returns the transmission-safe form of a document
func EncodeDocument(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeDocument reverses EncodeDocument. It accepts unpadded input and a
// leading data URL prefix, and returns the declared mime type of that prefix.
func DecodeDocument(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	var declared string
	if strings.HasPrefix(s, "data:") {
		comma := strings.IndexByte(s, ',')
		if comma < 0 {
			return nil, "", ErrInvalidEncoding
		}
		header := s[len("data:"):comma]
		if !strings.HasSuffix(header, ";base64") {
			return nil, "", ErrInvalidEncoding
		}
		declared = strings.TrimSuffix(header, ";base64")
		s = s[comma+1:]
	}

	s = strings.TrimRight(s, "=")
	b, err := base64.RawStdEncoding.DecodeString(s)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return b, declared, nil
}
