package rsacore

import (
	"encoding/base64"
	"errors"
	"unicode/utf8"
)

// ErrInvalidText is returned by BytesToText for data that is not valid UTF-8.
var ErrInvalidText = errors.New("bytes are not valid UTF-8")

// TextToBytes converts text to its UTF-8 bytes.
func TextToBytes(text string) []byte {
	return []byte(text)
}

// BytesToText converts UTF-8 bytes back to text. Binary data that is not
// valid UTF-8 is rejected rather than silently mangled.
func BytesToText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", ErrInvalidText
	}
	return string(data), nil
}

// ToBase64 encodes bytes to standard base64 with padding, the transport
// encoding for all binary envelope and key fields.
func ToBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// FromBase64 decodes standard base64 (with padding) to bytes.
func FromBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
