//go:build !windows

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-krb5/krb5/client"
	"github.com/go-krb5/krb5/config"
	"github.com/go-krb5/krb5/credentials"
	"github.com/go-krb5/krb5/spnego"
)

// KerberosProvider implements SecurityProvider with the pure Go krb5 library.
type KerberosProvider struct {
	client     *client.Client
	spnego     *spnego.SPNEGO
	targetSPN  string
	loggedIn   bool
	isComplete bool
}

// NewKerberosProvider creates the Kerberos provider for this platform.
// It fails if krb5.conf or the credential cache cannot be loaded.
func NewKerberosProvider(cfg KerberosConfig) (SecurityProvider, error) {
	confPath := cfg.krb5ConfPath()
	conf, err := config.Load(confPath)
	if err != nil {
		return nil, fmt.Errorf("load krb5.conf from %s: %w", confPath, err)
	}

	var cl *client.Client
	switch {
	case cfg.CCachePath != "":
		cc, err := credentials.LoadCCache(cfg.CCachePath)
		if err != nil {
			return nil, fmt.Errorf("load ccache from %s: %w", cfg.CCachePath, err)
		}
		cl, err = client.NewFromCCache(cc, conf, client.DisablePAFXFAST(true))
		if err != nil {
			return nil, fmt.Errorf("create client from ccache: %w", err)
		}
	case cfg.Credentials != nil && cfg.Credentials.Password != "":
		user, realm := cfg.principal()
		if realm == "" {
			realm = conf.LibDefaults.DefaultRealm
		}
		cl = client.NewWithPassword(user, realm, cfg.Credentials.Password, conf, client.DisablePAFXFAST(true))
	default:
		return nil, errors.New("no kerberos credentials: a password or credential cache is required")
	}

	return &KerberosProvider{
		client:    cl,
		targetSPN: cfg.TargetSPN,
	}, nil
}

// Step performs a SPNEGO step.
//
// Step(nil) produces a fresh NegTokenInit carrying an AP-REQ. A non-empty
// input token is the server's final reply and ends the exchange.
func (p *KerberosProvider) Step(_ context.Context, inputToken []byte) ([]byte, bool, error) {
	if len(inputToken) > 0 {
		if !p.isComplete {
			return nil, false, errors.New("server token received before the client token was sent")
		}
		return nil, false, nil
	}

	if !p.loggedIn {
		if err := p.client.Login(); err != nil {
			return nil, false, fmt.Errorf("kerberos login: %w", err)
		}
		p.loggedIn = true
	}

	if p.spnego == nil {
		p.spnego = spnego.SPNEGOClient(p.client, p.targetSPN)
	}

	tkn, err := p.spnego.InitSecContext()
	if err != nil {
		return nil, false, fmt.Errorf("init security context for %s: %w", p.targetSPN, err)
	}
	token, err := tkn.Marshal()
	if err != nil {
		return nil, false, fmt.Errorf("marshal token: %w", err)
	}

	p.isComplete = true
	return token, false, nil
}

// Complete returns true once a token has been produced.
func (p *KerberosProvider) Complete() bool {
	return p.isComplete
}

// Close destroys the client's session.
func (p *KerberosProvider) Close() error {
	p.client.Destroy()
	return nil
}

// SupportsSSO reports whether the logged-on user's credentials can be used.
func SupportsSSO() bool {
	return false
}
