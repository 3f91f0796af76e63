package wsman

import (
	"encoding/xml"
	"sort"
)

// Envelope is a SOAP 1.2 envelope carrying a WS-Management message.
type Envelope struct {
	XMLName xml.Name `xml:"s:Envelope"`

	NsSoap    string `xml:"xmlns:s,attr"`
	NsAddr    string `xml:"xmlns:a,attr"`
	NsWsman   string `xml:"xmlns:w,attr"`
	NsMsWsman string `xml:"xmlns:p,attr"`
	NsShellNs string `xml:"xmlns:rsp,attr,omitempty"`

	Header *Header `xml:"s:Header"`
	Body   *Body   `xml:"s:Body"`
}

// Header holds the WS-Addressing and WS-Management headers.
type Header struct {
	Action    string   `xml:"a:Action,omitempty"`
	To        string   `xml:"a:To,omitempty"`
	MessageID string   `xml:"a:MessageID,omitempty"`
	ReplyTo   *ReplyTo `xml:"a:ReplyTo,omitempty"`

	ResourceURI      string  `xml:"w:ResourceURI,omitempty"`
	MaxEnvelopeSize  int     `xml:"w:MaxEnvelopeSize,omitempty"`
	OperationTimeout string  `xml:"w:OperationTimeout,omitempty"`
	Locale           *Locale `xml:"w:Locale,omitempty"`
	DataLocale       *Locale `xml:"p:DataLocale,omitempty"`
	SessionID        string  `xml:"p:SessionId,omitempty"`

	SelectorSet *SelectorSet `xml:"w:SelectorSet,omitempty"`
	OptionSet   *OptionSet   `xml:"w:OptionSet,omitempty"`
}

// ReplyTo is the WS-Addressing ReplyTo element.
type ReplyTo struct {
	Address string `xml:"a:Address"`
}

// Locale is a WS-Management locale header.
type Locale struct {
	Lang string `xml:"xml:lang,attr"`
}

// SelectorSet contains selectors addressing a specific resource instance.
type SelectorSet struct {
	Selectors []Selector `xml:"w:Selector"`
}

// Selector is a single selector name/value pair.
type Selector struct {
	Name  string `xml:"Name,attr"`
	Value string `xml:",chardata"`
}

// OptionSet contains options for the operation.
type OptionSet struct {
	Options []Option `xml:"w:Option"`
}

// Option is a single WS-Management option.
type Option struct {
	Name  string `xml:"Name,attr"`
	Value string `xml:",chardata"`
}

// Body is the SOAP body. Content is written verbatim.
type Body struct {
	Content []byte `xml:",innerxml"`
}

// NewEnvelope creates an envelope with the standard namespace declarations.
func NewEnvelope() *Envelope {
	return &Envelope{
		NsSoap:    NsSoap,
		NsAddr:    NsAddressing,
		NsWsman:   NsWsman,
		NsMsWsman: NsWsmanMicrosoft,
		Header:    &Header{},
		Body:      &Body{},
	}
}

// WithAction sets the WS-Addressing Action header.
func (e *Envelope) WithAction(action string) *Envelope {
	e.Header.Action = action
	return e
}

// WithTo sets the WS-Addressing To header (the endpoint URL).
func (e *Envelope) WithTo(to string) *Envelope {
	e.Header.To = to
	return e
}

// WithMessageID sets the WS-Addressing MessageID header.
func (e *Envelope) WithMessageID(messageID string) *Envelope {
	e.Header.MessageID = messageID
	return e
}

// WithReplyTo sets the WS-Addressing ReplyTo header.
func (e *Envelope) WithReplyTo(address string) *Envelope {
	e.Header.ReplyTo = &ReplyTo{Address: address}
	return e
}

// WithResourceURI sets the WS-Management ResourceURI header.
func (e *Envelope) WithResourceURI(uri string) *Envelope {
	e.Header.ResourceURI = uri
	return e
}

// WithMaxEnvelopeSize sets the WS-Management MaxEnvelopeSize header.
func (e *Envelope) WithMaxEnvelopeSize(size int) *Envelope {
	e.Header.MaxEnvelopeSize = size
	return e
}

// WithOperationTimeout sets the OperationTimeout header as an ISO 8601
// duration, e.g. "PT60S".
func (e *Envelope) WithOperationTimeout(timeout string) *Envelope {
	e.Header.OperationTimeout = timeout
	return e
}

// WithLocale sets both the Locale and DataLocale headers.
func (e *Envelope) WithLocale(lang string) *Envelope {
	e.Header.Locale = &Locale{Lang: lang}
	e.Header.DataLocale = &Locale{Lang: lang}
	return e
}

// WithSessionID sets the Microsoft SessionId header.
func (e *Envelope) WithSessionID(id string) *Envelope {
	e.Header.SessionID = id
	return e
}

// WithShellNamespace declares the rsp prefix used by shell bodies.
func (e *Envelope) WithShellNamespace() *Envelope {
	e.NsShellNs = NsShell
	return e
}

// WithSelector adds a selector to the SelectorSet.
func (e *Envelope) WithSelector(name, value string) *Envelope {
	if e.Header.SelectorSet == nil {
		e.Header.SelectorSet = &SelectorSet{}
	}
	e.Header.SelectorSet.Selectors = append(e.Header.SelectorSet.Selectors,
		Selector{Name: name, Value: value})
	return e
}

// WithEPR targets the envelope at the shell identified by epr.
func (e *Envelope) WithEPR(epr *EndpointReference) *Envelope {
	e.WithResourceURI(epr.ResourceURI)
	for _, s := range epr.Selectors {
		e.WithSelector(s.Name, s.Value)
	}
	return e
}

// WithOption adds an option to the OptionSet.
func (e *Envelope) WithOption(name, value string) *Envelope {
	if e.Header.OptionSet == nil {
		e.Header.OptionSet = &OptionSet{}
	}
	e.Header.OptionSet.Options = append(e.Header.OptionSet.Options,
		Option{Name: name, Value: value})
	return e
}

// WithOptions adds every entry of opts, in key order so envelopes are
// reproducible.
func (e *Envelope) WithOptions(opts map[string]string) *Envelope {
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e.WithOption(k, opts[k])
	}
	return e
}

// WithBody sets the SOAP body content.
func (e *Envelope) WithBody(content []byte) *Envelope {
	e.Body.Content = content
	return e
}

// Marshal serializes the envelope to XML.
func (e *Envelope) Marshal() ([]byte, error) {
	return xml.Marshal(e)
}

// MarshalIndent serializes the envelope to indented XML.
func (e *Envelope) MarshalIndent(prefix, indent string) ([]byte, error) {
	return xml.MarshalIndent(e, prefix, indent)
}
