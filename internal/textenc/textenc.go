// Package textenc converts between remote output bytes and Go strings.
package textenc

import (
	"encoding/base64"
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

// Decode decodes b as UTF-8, replacing each maximal invalid subsequence
// with one U+FFFD.
// It never fails and valid UTF-8 is returned unchanged.
func Decode(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	out, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		// The UTF-8 decoder substitutes rather than failing.
		return string([]rune(string(b)))
	}
	return string(out)
}

// EncodeUTF16LE encodes s as little-endian UTF-16 without a byte order mark,
// the form Windows expects for wide strings.
func EncodeUTF16LE(s string) ([]byte, error) {
	out, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("encode utf-16le: %w", err)
	}
	return out, nil
}

// EncodePowerShellCommand returns script in the base64(UTF-16LE) form
// accepted by powershell.exe -EncodedCommand.
func EncodePowerShellCommand(script string) (string, error) {
	encoded, err := EncodeUTF16LE(script)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(encoded), nil
}
