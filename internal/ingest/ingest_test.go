package ingest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Dan9191/trust-score-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allBytes() []byte {
	b := make([]byte, 0, 512)
	for i := 0; i < 2; i++ {
		for v := 0; v < 256; v++ {
			b = append(b, byte(v))
		}
	}
	return b
}

func TestIngest_FreeText(t *testing.T) {
	ing := NewIngestor(0)

	req, err := ing.Ingest(models.RawStatementInput{FreeText: "  Salary ₹25,000 on the 1st  "})
	require.NoError(t, err)

	parts := req.Parts()
	require.Len(t, parts, 1)
	assert.Equal(t, models.PartText, parts[0].Kind)
	assert.True(t, strings.HasPrefix(parts[0].Text, Instruction))
	assert.True(t, strings.HasSuffix(parts[0].Text, "Bank Statement Data:\nSalary ₹25,000 on the 1st"))
	assert.False(t, req.HasBinary())
	assert.Empty(t, req.FileName())
}

func TestIngest_FallsBackToSample(t *testing.T) {
	req, err := NewIngestor(0).Ingest(models.RawStatementInput{})
	require.NoError(t, err)
	assert.Contains(t, req.Instruction(), SampleStatement)
}

func TestIngest_DocumentRoundTripsByteForByte(t *testing.T) {
	payload := allBytes()
	original := bytes.Clone(payload)

	req, err := NewIngestor(0).Ingest(models.RawStatementInput{
		Document: &models.StatementDocument{Bytes: payload, MimeType: "application/pdf", FileName: "march.pdf"},
	})
	require.NoError(t, err)

	parts := req.Parts()
	require.Len(t, parts, 2)
	assert.Equal(t, models.PartBinary, parts[0].Kind)
	assert.Equal(t, MimePDF, parts[0].MimeType)
	assert.Equal(t, models.PartText, parts[1].Kind)
	assert.Contains(t, parts[1].Text, `"march.pdf"`)
	assert.Equal(t, "march.pdf", req.FileName())

	decoded, declared, err := DecodeDocument(parts[0].Data)
	require.NoError(t, err)
	assert.Empty(t, declared)
	assert.Equal(t, original, decoded)
	assert.Equal(t, original, payload, "input slice must not be modified")
}

func TestIngest_DocumentDefaults(t *testing.T) {
	req, err := NewIngestor(0).Ingest(models.RawStatementInput{
		Document: &models.StatementDocument{Bytes: []byte("%PDF-1.7"), MimeType: "Application/PDF; charset=binary"},
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultFileName, req.FileName())
	assert.Equal(t, MimePDF, req.Parts()[0].MimeType)
}

func TestIngest_DocumentTakesPrecedenceOverText(t *testing.T) {
	req, err := NewIngestor(0).Ingest(models.RawStatementInput{
		Document: &models.StatementDocument{Bytes: []byte("%PDF"), MimeType: MimePDF},
		FreeText: "ignored",
	})
	require.NoError(t, err)
	assert.True(t, req.HasBinary())
	assert.NotContains(t, req.Instruction(), "ignored")
}

func TestIngest_Rejections(t *testing.T) {
	tests := []struct {
		name string
		doc  models.StatementDocument
		want error
	}{
		{name: "unsupported type", doc: models.StatementDocument{Bytes: []byte("x"), MimeType: "image/png"}, want: ErrUnsupportedMimeType},
		{name: "malformed type", doc: models.StatementDocument{Bytes: []byte("x"), MimeType: "/;"}, want: ErrUnsupportedMimeType},
		{name: "empty", doc: models.StatementDocument{MimeType: MimePDF}, want: ErrEmptyDocument},
		{name: "too large", doc: models.StatementDocument{Bytes: make([]byte, 11), MimeType: MimePDF}, want: ErrDocumentTooLarge},
	}

	ing := NewIngestor(10)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := tt.doc
			req, err := ing.Ingest(models.RawStatementInput{Document: &doc})
			assert.Nil(t, req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestIngest_ExactlyAtCeiling(t *testing.T) {
	_, err := NewIngestor(10).Ingest(models.RawStatementInput{
		Document: &models.StatementDocument{Bytes: make([]byte, 10), MimeType: MimePDF},
	})
	assert.NoError(t, err)
}

func TestScoringRequest_PartsAreCopies(t *testing.T) {
	req, err := NewIngestor(0).Ingest(models.RawStatementInput{FreeText: "abc"})
	require.NoError(t, err)

	parts := req.Parts()
	parts[0].Text = "mutated"
	assert.NotEqual(t, "mutated", req.Parts()[0].Text)
}

func TestDecodeDocument(t *testing.T) {
	payload := allBytes()
	encoded := EncodeDocument(payload)

	t.Run("unpadded", func(t *testing.T) {
		b, _, err := DecodeDocument(strings.TrimRight(encoded, "="))
		require.NoError(t, err)
		assert.Equal(t, payload, b)
	})

	t.Run("data url", func(t *testing.T) {
		b, declared, err := DecodeDocument("data:application/pdf;base64," + encoded)
		require.NoError(t, err)
		assert.Equal(t, "application/pdf", declared)
		assert.Equal(t, payload, b)
	})

	t.Run("invalid", func(t *testing.T) {
		_, _, err := DecodeDocument("not*base64!")
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})

	t.Run("data url without base64 marker", func(t *testing.T) {
		_, _, err := DecodeDocument("data:application/pdf,abc")
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})
}
