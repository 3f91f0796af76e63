package wsman

import (
	"context"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/smnsjas/winrm-run/wsman/transport"
)

const (
	maxEnvelopeSize  = 153600
	operationTimeout = "PT60S"
	// receiveTimeout is shorter than the HTTP timeout so an idle command
	// produces a TimedOut fault instead of a dropped connection.
	receiveTimeout = "PT20S"
	locale         = "en-US"
)

// Poster sends a SOAP request and returns the response body.
// *transport.HTTPTransport implements it.
type Poster interface {
	Post(ctx context.Context, url string, body []byte) ([]byte, error)
}

var _ Poster = (*transport.HTTPTransport)(nil)

// Client is a WSMan client for one WinRM endpoint.
type Client struct {
	endpoint  string
	transport Poster
	sessionID string
}

// NewClient creates a WSMan client posting to endpoint through tr.
func NewClient(endpoint string, tr Poster) *Client {
	return &Client{
		endpoint:  endpoint,
		transport: tr,
		sessionID: newID(),
	}
}

// Endpoint returns the endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// SessionID returns the WS-Management SessionId sent with every request.
func (c *Client) SessionID() string {
	return c.sessionID
}

func newID() string {
	return "uuid:" + strings.ToUpper(uuid.New().String())
}

// newEnvelope fills the headers shared by every shell operation.
func (c *Client) newEnvelope(action string) *Envelope {
	return NewEnvelope().
		WithAction(action).
		WithTo(c.endpoint).
		WithMessageID(newID()).
		WithReplyTo(AddressAnonymous).
		WithMaxEnvelopeSize(maxEnvelopeSize).
		WithOperationTimeout(operationTimeout).
		WithSessionID(c.sessionID).
		WithLocale(locale).
		WithShellNamespace()
}

type shellBody struct {
	XMLName          xml.Name         `xml:"rsp:Shell"`
	InputStreams     string           `xml:"rsp:InputStreams"`
	OutputStreams    string           `xml:"rsp:OutputStreams"`
	WorkingDirectory string           `xml:"rsp:WorkingDirectory,omitempty"`
	Environment      *environmentBody `xml:"rsp:Environment,omitempty"`
	IdleTimeOut      string           `xml:"rsp:IdleTimeOut,omitempty"`
}

type environmentBody struct {
	Variables []variable `xml:"rsp:Variable"`
}

type variable struct {
	Name  string `xml:"Name,attr"`
	Value string `xml:",chardata"`
}

// Create opens a WinRS cmd shell and returns its endpoint reference.
func (c *Client) Create(ctx context.Context, spec ShellSpec) (*EndpointReference, error) {
	env := c.newEnvelope(ActionCreate).
		WithResourceURI(ResourceURIWinRS).
		WithOptions(spec.Options)

	body := shellBody{
		InputStreams:     "stdin",
		OutputStreams:    "stdout stderr",
		WorkingDirectory: spec.WorkingDirectory,
		IdleTimeOut:      spec.IdleTimeout,
	}
	if len(spec.Environment) > 0 {
		names := make([]string, 0, len(spec.Environment))
		for name := range spec.Environment {
			names = append(names, name)
		}
		sort.Strings(names)
		body.Environment = &environmentBody{}
		for _, name := range names {
			body.Environment.Variables = append(body.Environment.Variables,
				variable{Name: name, Value: spec.Environment[name]})
		}
	}

	respBody, err := c.sendBody(ctx, env, body)
	if err != nil {
		return nil, fmt.Errorf("create shell: %w", err)
	}

	var resp createResponse
	if err := xml.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("parse create response: %w", err)
	}

	created := resp.Body.ResourceCreated
	epr := &EndpointReference{
		Address:     created.Address,
		ResourceURI: created.ReferenceParameters.ResourceURI,
		Selectors:   created.ReferenceParameters.SelectorSet.Selectors,
	}
	if epr.ResourceURI == "" {
		epr.ResourceURI = ResourceURIWinRS
	}
	// Older listeners only return the shell in the body.
	if epr.ShellID() == "" && resp.Body.Shell.ShellID != "" {
		epr.Selectors = append(epr.Selectors, Selector{Name: "ShellId", Value: resp.Body.Shell.ShellID})
	}
	if epr.ShellID() == "" {
		return nil, errors.New("create shell: response carries no ShellId")
	}

	return epr, nil
}

type commandLineBody struct {
	XMLName   xml.Name `xml:"rsp:CommandLine"`
	Command   string   `xml:"rsp:Command"`
	Arguments []string `xml:"rsp:Arguments"`
}

// Command starts command with args in the shell and returns the command ID.
// The command line is run through cmd.exe by the WinRS service.
func (c *Client) Command(ctx context.Context, epr *EndpointReference, command string, args []string) (string, error) {
	env := c.newEnvelope(ActionCommand).
		WithEPR(epr).
		WithOption("WINRS_CONSOLEMODE_STDIN", "TRUE").
		WithOption("WINRS_SKIP_CMD_SHELL", "FALSE")

	respBody, err := c.sendBody(ctx, env, commandLineBody{Command: command, Arguments: args})
	if err != nil {
		return "", fmt.Errorf("create command: %w", err)
	}

	var resp commandResponse
	if err := xml.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("parse command response: %w", err)
	}
	if resp.Body.CommandResponse.CommandID == "" {
		return "", errors.New("create command: response carries no CommandId")
	}

	return resp.Body.CommandResponse.CommandID, nil
}

type receiveBody struct {
	XMLName       xml.Name `xml:"rsp:Receive"`
	DesiredStream struct {
		CommandID string `xml:"CommandId,attr"`
		Streams   string `xml:",chardata"`
	} `xml:"rsp:DesiredStream"`
}

// Receive polls the command's stdout and stderr once.
//
// An OperationTimeout fault is not an error here: it means the command
// produced nothing within the timeout, and an empty result is returned.
func (c *Client) Receive(ctx context.Context, epr *EndpointReference, commandID string) (*ReceiveResult, error) {
	env := c.newEnvelope(ActionReceive).
		WithEPR(epr).
		WithOperationTimeout(receiveTimeout).
		WithOption("WSMAN_CMDSHELL_OPTION_KEEPALIVE", "TRUE")

	var body receiveBody
	body.DesiredStream.CommandID = commandID
	body.DesiredStream.Streams = "stdout stderr"

	respBody, err := c.sendBody(ctx, env, body)
	if err != nil {
		var fault *Fault
		if errors.As(err, &fault) && fault.IsTimeout() {
			return &ReceiveResult{}, nil
		}
		return nil, fmt.Errorf("receive: %w", err)
	}

	var resp receiveResponse
	if err := xml.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("parse receive response: %w", err)
	}

	result := &ReceiveResult{}
	for _, stream := range resp.Body.ReceiveResponse.Streams {
		if stream.CommandID != "" && !strings.EqualFold(stream.CommandID, commandID) {
			continue
		}
		content := strings.TrimSpace(stream.Content)
		if content == "" {
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(content)
		if err != nil {
			return nil, fmt.Errorf("decode %s stream: %w", stream.Name, err)
		}
		switch stream.Name {
		case "stdout":
			result.Stdout = append(result.Stdout, decoded...)
		case "stderr":
			result.Stderr = append(result.Stderr, decoded...)
		}
	}

	state := resp.Body.ReceiveResponse.CommandState
	result.CommandState = state.State
	if state.ExitCode != nil {
		result.ExitCode = *state.ExitCode
	}
	result.Done = state.State == CommandStateDone || state.ExitCode != nil

	return result, nil
}

type signalBody struct {
	XMLName   xml.Name `xml:"rsp:Signal"`
	CommandID string   `xml:"CommandId,attr"`
	Code      string   `xml:"rsp:Code"`
}

// Signal sends a signal code (e.g. SignalTerminate) to a command.
func (c *Client) Signal(ctx context.Context, epr *EndpointReference, commandID, code string) error {
	env := c.newEnvelope(ActionSignal).WithEPR(epr)

	if _, err := c.sendBody(ctx, env, signalBody{CommandID: commandID, Code: code}); err != nil {
		return fmt.Errorf("signal: %w", err)
	}
	return nil
}

// Delete closes the shell.
func (c *Client) Delete(ctx context.Context, epr *EndpointReference) error {
	env := c.newEnvelope(ActionDelete).WithEPR(epr)

	if _, err := c.sendEnvelope(ctx, env); err != nil {
		return fmt.Errorf("delete shell: %w", err)
	}
	return nil
}

// sendBody marshals body into env and sends it.
func (c *Client) sendBody(ctx context.Context, env *Envelope, body any) ([]byte, error) {
	content, err := xml.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}
	return c.sendEnvelope(ctx, env.WithBody(content))
}

// sendEnvelope marshals and posts env, returning the response body.
// SOAP faults are returned as *Fault even on HTTP 500 responses.
func (c *Client) sendEnvelope(ctx context.Context, env *Envelope) ([]byte, error) {
	body, err := env.Marshal()
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}

	respBody, postErr := c.transport.Post(ctx, c.endpoint, body)

	// WinRM reports faults with HTTP 500; prefer the parsed fault.
	if len(respBody) > 0 {
		if err := CheckFault(respBody); err != nil {
			var fault *Fault
			if errors.As(err, &fault) {
				return nil, fmt.Errorf("wsman: %w", err)
			}
		}
	}
	if postErr != nil {
		return nil, postErr
	}

	return respBody, nil
}

type createResponse struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		ResourceCreated struct {
			Address             string `xml:"Address"`
			ReferenceParameters struct {
				ResourceURI string `xml:"ResourceURI"`
				SelectorSet struct {
					Selectors []Selector `xml:"Selector"`
				} `xml:"SelectorSet"`
			} `xml:"ReferenceParameters"`
		} `xml:"ResourceCreated"`
		Shell struct {
			ShellID string `xml:"ShellId"`
		} `xml:"Shell"`
	} `xml:"Body"`
}

type commandResponse struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		CommandResponse struct {
			CommandID string `xml:"CommandId"`
		} `xml:"CommandResponse"`
	} `xml:"Body"`
}

type receiveResponse struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		ReceiveResponse struct {
			Streams []struct {
				Name      string `xml:"Name,attr"`
				CommandID string `xml:"CommandId,attr"`
				End       string `xml:"End,attr"`
				Content   string `xml:",chardata"`
			} `xml:"Stream"`
			CommandState struct {
				CommandID string `xml:"CommandId,attr"`
				State     string `xml:"State,attr"`
				ExitCode  *int   `xml:"ExitCode"`
			} `xml:"CommandState"`
		} `xml:"ReceiveResponse"`
	} `xml:"Body"`
}
