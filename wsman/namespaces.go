package wsman

// XML namespace URIs used in WS-Management SOAP envelopes.
const (
	// NsSoap is the SOAP 1.2 envelope namespace.
	NsSoap = "http://www.w3.org/2003/05/soap-envelope"

	// NsAddressing is the WS-Addressing namespace.
	NsAddressing = "http://schemas.xmlsoap.org/ws/2004/08/addressing"

	// NsWsman is the DMTF WS-Management namespace.
	NsWsman = "http://schemas.dmtf.org/wbem/wsman/1/wsman.xsd"

	// NsWsmanMicrosoft is the Microsoft WS-Management namespace extension.
	NsWsmanMicrosoft = "http://schemas.microsoft.com/wbem/wsman/1/wsman.xsd"

	// NsShell is the Windows Remote Shell namespace.
	NsShell = "http://schemas.microsoft.com/wbem/wsman/1/windows/shell"
)

// AddressAnonymous is the WS-Addressing anonymous reply address.
const AddressAnonymous = "http://schemas.xmlsoap.org/ws/2004/08/addressing/role/anonymous"

// WS-Transfer actions.
const (
	// ActionCreate creates a WinRS shell.
	ActionCreate = "http://schemas.xmlsoap.org/ws/2004/09/transfer/Create"

	// ActionDelete deletes a WinRS shell.
	ActionDelete = "http://schemas.xmlsoap.org/ws/2004/09/transfer/Delete"
)

// Windows Remote Shell actions.
const (
	// ActionCommand starts a command inside a shell.
	ActionCommand = "http://schemas.microsoft.com/wbem/wsman/1/windows/shell/Command"

	// ActionReceive polls a command's output streams.
	ActionReceive = "http://schemas.microsoft.com/wbem/wsman/1/windows/shell/Receive"

	// ActionSignal sends a control signal to a command.
	ActionSignal = "http://schemas.microsoft.com/wbem/wsman/1/windows/shell/Signal"
)

// Signal codes for the Signal action.
const (
	// SignalTerminate releases a finished (or running) command.
	SignalTerminate = "http://schemas.microsoft.com/wbem/wsman/1/windows/shell/signal/terminate"

	// SignalCtrlC delivers Ctrl+C to the command.
	SignalCtrlC = "http://schemas.microsoft.com/wbem/wsman/1/windows/shell/signal/ctrl_c"
)

// Command states reported in ReceiveResponse.
const (
	CommandStateDone    = "http://schemas.microsoft.com/wbem/wsman/1/windows/shell/CommandState/Done"
	CommandStateRunning = "http://schemas.microsoft.com/wbem/wsman/1/windows/shell/CommandState/Running"
)

// ResourceURIWinRS is the resource URI of the cmd.exe shell.
const ResourceURIWinRS = "http://schemas.microsoft.com/wbem/wsman/1/windows/shell/cmd"
