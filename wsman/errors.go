package wsman

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
)

// Fault is a SOAP fault returned by a WinRM endpoint.
type Fault struct {
	// Code is the SOAP fault code (e.g. "s:Sender").
	Code string

	// Subcode is the WS-Management subcode (e.g. "w:TimedOut").
	Subcode string

	// Reason is the human-readable fault reason.
	Reason string

	// WSManCode is the numeric WinRM error code.
	WSManCode uint32

	// Machine is the machine that generated the fault.
	Machine string

	// Message is the detailed WinRM fault message.
	Message string
}

// Error implements the error interface.
func (f *Fault) Error() string {
	var parts []string
	if f.Code != "" {
		parts = append(parts, f.Code)
	}
	if f.Subcode != "" {
		parts = append(parts, f.Subcode)
	}
	if f.Reason != "" {
		parts = append(parts, f.Reason)
	} else if f.Message != "" {
		parts = append(parts, f.Message)
	}
	if f.WSManCode != 0 {
		parts = append(parts, fmt.Sprintf("code=%d", f.WSManCode))
	}
	return "wsman fault: " + strings.Join(parts, ": ")
}

// IsAccessDenied reports whether the fault means access was denied.
func (f *Fault) IsAccessDenied() bool {
	// 5 is ERROR_ACCESS_DENIED.
	return strings.Contains(f.Subcode, "AccessDenied") || f.WSManCode == 5
}

// IsTimeout reports whether the fault is an OperationTimeout expiry.
// For Receive this only means no output was ready yet.
func (f *Fault) IsTimeout() bool {
	// 2150858793 is ERROR_WSMAN_OPERATION_TIMEDOUT.
	return strings.Contains(f.Subcode, "TimedOut") || f.WSManCode == 2150858793
}

// IsFault reports whether err wraps a *Fault.
func IsFault(err error) bool {
	var f *Fault
	return errors.As(err, &f)
}

// ParseFault returns the fault carried by a SOAP response, or nil if the
// response is not a fault.
func ParseFault(data []byte) (*Fault, error) {
	if !strings.Contains(string(data), ":Fault") && !strings.Contains(string(data), "<Fault") {
		return nil, nil
	}

	var env faultEnvelope
	if err := xml.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse fault: %w", err)
	}
	if env.Body.Fault.Code.Value == "" {
		return nil, nil
	}

	return &Fault{
		Code:      env.Body.Fault.Code.Value,
		Subcode:   env.Body.Fault.Code.Subcode.Value,
		Reason:    strings.TrimSpace(env.Body.Fault.Reason.Text),
		WSManCode: env.Body.Fault.Detail.WSManFault.Code,
		Machine:   env.Body.Fault.Detail.WSManFault.Machine,
		Message:   strings.TrimSpace(env.Body.Fault.Detail.WSManFault.Message),
	}, nil
}

// CheckFault returns the response's fault as an error, if any.
func CheckFault(data []byte) error {
	fault, err := ParseFault(data)
	if err != nil {
		return err
	}
	if fault != nil {
		return fault
	}
	return nil
}

type faultEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Fault struct {
			Code struct {
				Value   string `xml:"Value"`
				Subcode struct {
					Value string `xml:"Value"`
				} `xml:"Subcode"`
			} `xml:"Code"`
			Reason struct {
				Text string `xml:"Text"`
			} `xml:"Reason"`
			Detail struct {
				WSManFault struct {
					Code    uint32 `xml:"Code,attr"`
					Machine string `xml:"Machine,attr"`
					Message string `xml:"Message"`
				} `xml:"WSManFault"`
			} `xml:"Detail"`
		} `xml:"Fault"`
	} `xml:"Body"`
}
