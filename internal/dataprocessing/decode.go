package dataprocessing

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// DefaultEncodings is the decode order used when none is configured
var DefaultEncodings = []string{"utf-8", "windows-1252"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var legacyEncodings = map[string]encoding.Encoding{
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
	"latin-1":      charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
	"utf-16":       unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
}

// SupportedEncoding reports whether name can be passed to DecodeText
func SupportedEncoding(name string) bool {
	name = canonicalEncoding(name)
	if name == "utf-8" {
		return true
	}
	_, ok := legacyEncodings[name]
	return ok
}

// DecodeText converts raw bytes to text trying each encoding in order.
// Decoding is strict: an encoding that cannot represent every byte is skipped.
// A leading byte order mark is removed.
func DecodeText(raw []byte, encodings []string) (string, error) {
	if len(encodings) == 0 {
		encodings = DefaultEncodings
	}

	for _, name := range encodings {
		text, err := decodeStrict(raw, canonicalEncoding(name))
		if err != nil {
			continue
		}
		return strings.TrimPrefix(text, "\ufeff"), nil
	}

	return "", &DecodeError{Attempted: append([]string(nil), encodings...)}
}

func decodeStrict(raw []byte, name string) (string, error) {
	if name == "utf-8" {
		raw = bytes.TrimPrefix(raw, utf8BOM)
		if !utf8.Valid(raw) {
			return "", fmt.Errorf("invalid utf-8 sequence")
		}
		return string(raw), nil
	}

	enc, ok := legacyEncodings[name]
	if !ok {
		return "", fmt.Errorf("unsupported encoding %q", name)
	}

	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", name, err)
	}
	// x/text decoders substitute U+FFFD for undecodable input
	if bytes.ContainsRune(decoded, utf8.RuneError) {
		return "", fmt.Errorf("%s cannot represent input", name)
	}
	return string(decoded), nil
}

func canonicalEncoding(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "_", "-")
	if name == "utf8" {
		return "utf-8"
	}
	return name
}
