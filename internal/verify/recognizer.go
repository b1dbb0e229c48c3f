package verify

import (
	"context"
	"regexp"

	dErrors "bisaathi/pkg/domain-errors"
)

// Recognizer extracts a CM/L code from a label image. Implementations are
// opaque to this package; callers bound the call with a context deadline.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// looseCodePattern finds CM/L-looking tokens inside free text, tolerating the
// separator variants NormalizeCode accepts.
var looseCodePattern = regexp.MustCompile(`(?i)CM[/ _-]?L[ _-]?\d{5,10}`)

// TextRecognizer reads the image bytes as plain text and picks out the first
// CM/L token. It stands in for an OCR backend in development and tests.
type TextRecognizer struct{}

func (TextRecognizer) Recognize(_ context.Context, image []byte) (string, error) {
	match := looseCodePattern.Find(image)
	if match == nil {
		return "", dErrors.New(dErrors.CodeValidation, "no CM/L code found on the label")
	}
	return string(match), nil
}
