package textenc

import (
	"encoding/base64"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"empty", nil, ""},
		{"ascii", []byte("hello\r\n"), "hello\r\n"},
		{"multibyte", []byte("héllo wörld ✓"), "héllo wörld ✓"},
		{"invalid byte", []byte{'a', 0xff, 'b'}, "a�b"},
		{"two invalid bytes", []byte{0xfe, 0xff}, "��"},
		{"truncated sequence", []byte{'x', 0xe2, 0x9c}, "x\uFFFD"},
		{"truncated sequence mid-text", []byte{0xe2, 0x9c, 'y'}, "\uFFFDy"},
		{"overlong encoding", []byte{0xc0, 0xaf}, "\uFFFD\uFFFD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decode(tt.in))
		})
	}
}

func TestDecode_AlwaysValidUTF8(t *testing.T) {
	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}
	assert.True(t, utf8.ValidString(Decode(all)))
}

func TestEncodeUTF16LE(t *testing.T) {
	got, err := EncodeUTF16LE("Aé")
	require.NoError(t, err)
	assert.Equal(t, []byte{'A', 0x00, 0xe9, 0x00}, got)
}

func TestEncodePowerShellCommand(t *testing.T) {
	got, err := EncodePowerShellCommand("Get-Date")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(got)
	require.NoError(t, err)
	assert.Equal(t, []byte("G\x00e\x00t\x00-\x00D\x00a\x00t\x00e\x00"), raw)
}
