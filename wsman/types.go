package wsman

// EndpointReference is the WS-Addressing reference returned by Create.
// It identifies the shell instance on the server.
type EndpointReference struct {
	Address     string     `xml:"Address"`
	ResourceURI string     `xml:"ReferenceParameters>ResourceURI"`
	Selectors   []Selector `xml:"ReferenceParameters>SelectorSet>Selector"`
}

// ShellID returns the value of the ShellId selector, or "" if absent.
func (e *EndpointReference) ShellID() string {
	for _, sel := range e.Selectors {
		if sel.Name == "ShellId" {
			return sel.Value
		}
	}
	return ""
}

// ShellSpec describes the WinRS shell to create.
type ShellSpec struct {
	// WorkingDirectory is the initial directory of the shell.
	WorkingDirectory string

	// Environment holds variables set in the shell.
	Environment map[string]string

	// IdleTimeout is an ISO 8601 duration (e.g. "PT30M").
	IdleTimeout string

	// Options are WinRS shell options sent in the OptionSet header,
	// e.g. WINRS_CODEPAGE or WINRS_NOPROFILE.
	Options map[string]string
}

// ReceiveResult contains the output of one Receive round trip.
type ReceiveResult struct {
	Stdout       []byte
	Stderr       []byte
	CommandState string
	ExitCode     int
	Done         bool
}
