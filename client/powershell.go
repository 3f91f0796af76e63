package client

import (
	"bytes"
	"encoding/xml"
	"regexp"
	"strconv"
	"strings"

	"github.com/smnsjas/winrm-run/internal/textenc"
)

const powershellExe = "powershell.exe"

// clixmlHeader starts a CLIXML-serialised stderr stream.
const clixmlHeader = "#< CLIXML"

// powershellArgs returns the powershell.exe arguments that run script.
func powershellArgs(script string) ([]string, error) {
	encoded, err := textenc.EncodePowerShellCommand(script)
	if err != nil {
		return nil, err
	}
	return []string{"-NoProfile", "-NonInteractive", "-EncodedCommand", encoded}, nil
}

type clixmlObjs struct {
	Strings []clixmlString `xml:"S"`
}

type clixmlString struct {
	Stream string `xml:"S,attr"`
	Text   string `xml:",chardata"`
}

var clixmlEscape = regexp.MustCompile(`_x([0-9A-Fa-f]{4})_`)

// cleanCLIXML turns a CLIXML stderr stream into plain text.
//
// Every top-level <S> record (error, warning, verbose) is kept and the
// result is trimmed. Anything that is not CLIXML, fails to parse, or holds
// no records is returned unchanged.
func cleanCLIXML(stderr []byte) []byte {
	trimmed := bytes.TrimLeft(stderr, " \t\r\n")
	if !bytes.HasPrefix(trimmed, []byte(clixmlHeader)) {
		return stderr
	}

	body := trimmed[len(clixmlHeader):]
	var objs clixmlObjs
	if err := xml.Unmarshal(body, &objs); err != nil {
		return stderr
	}

	var sb strings.Builder
	for _, s := range objs.Strings {
		sb.WriteString(decodeCLIXMLString(s.Text))
	}

	cleaned := strings.TrimSpace(sb.String())
	if cleaned == "" {
		return stderr
	}
	return []byte(cleaned)
}

// decodeCLIXMLString expands _xHHHH_ escapes. _x000D__x000A_ becomes "\n".
func decodeCLIXMLString(s string) string {
	s = strings.ReplaceAll(s, "_x000D__x000A_", "\n")
	return clixmlEscape.ReplaceAllStringFunc(s, func(m string) string {
		code, err := strconv.ParseUint(m[2:6], 16, 32)
		if err != nil {
			return m
		}
		return string(rune(code))
	})
}
