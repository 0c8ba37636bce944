package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/futig/knowledge-backend/internal/entity"
	"github.com/gabriel-vasile/mimetype"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

var SupportedExtensions = map[string]bool{
	".txt": true,
	".pdf": true,
}

// Extractor pulls plain text out of uploaded documents
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Supports reports whether ext (lower case, with dot) can be extracted
func (e *Extractor) Supports(ext string) bool {
	return SupportedExtensions[ext]
}

// Extract returns the text of content. Failures wrap entity.ErrExtraction.
func (e *Extractor) Extract(ctx context.Context, content []byte, ext string) (string, error) {
	mtype := mimetype.Detect(content)
	ctxzap.Debug(ctx, "detected content type",
		zap.String("extension", ext),
		zap.String("mime", mtype.String()),
	)

	switch ext {
	case ".txt":
		return extractText(content, mtype)
	case ".pdf":
		return extractPDF(content, mtype)
	default:
		return "", fmt.Errorf("%w: %s", entity.ErrInvalidExtension, ext)
	}
}

func extractText(content []byte, mtype *mimetype.MIME) (string, error) {
	if len(content) == 0 {
		return "", nil
	}
	if !isText(mtype) {
		return "", fmt.Errorf("%w: content is %s, not text", entity.ErrExtraction, mtype.String())
	}
	return strings.ToValidUTF8(string(content), "\uFFFD"), nil
}

func isText(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

func extractPDF(content []byte, mtype *mimetype.MIME) (text string, err error) {
	if !mtype.Is("application/pdf") {
		return "", fmt.Errorf("%w: PDF parsing error: content is %s", entity.ErrExtraction, mtype.String())
	}

	// the pdf reader panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: PDF parsing error: %v", entity.ErrExtraction, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("%w: PDF parsing error: %v", entity.ErrExtraction, err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: PDF parsing error: %v", entity.ErrExtraction, err)
	}

	data, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("%w: PDF parsing error: %v", entity.ErrExtraction, err)
	}

	return strings.ToValidUTF8(string(data), "\uFFFD"), nil
}
