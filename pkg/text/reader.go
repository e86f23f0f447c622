package text

import (
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ReadTranscript reads a whole transcript as UTF-8. A UTF-8 or UTF-16 byte
// order mark is honored and stripped, which covers exports from Windows
// clients. The result is NFC-normalized so identical URLs compare equal.
func ReadTranscript(r io.Reader) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(r, decoder))
	if err != nil {
		return "", fmt.Errorf("failed to read transcript: %w", err)
	}
	return norm.NFC.String(string(data)), nil
}
