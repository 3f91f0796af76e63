//go:build windows

package auth

import (
	"context"
	"fmt"

	"github.com/alexbrainman/sspi"
	"github.com/alexbrainman/sspi/negotiate"
)

// KerberosProvider implements SecurityProvider with the Windows SSPI
// Negotiate package.
type KerberosProvider struct {
	cred       *sspi.Credentials
	ctx        *negotiate.ClientContext
	targetSPN  string
	isComplete bool
}

// NewKerberosProvider creates the Kerberos provider for this platform.
// Without a username the logged-on user's credentials are used.
func NewKerberosProvider(cfg KerberosConfig) (SecurityProvider, error) {
	var (
		cred *sspi.Credentials
		err  error
	)
	if cfg.Credentials != nil && cfg.Credentials.Username != "" {
		user, domain := SplitUsername(cfg.Credentials.Username)
		if domain == "" {
			domain = cfg.Credentials.Domain
		}
		if domain == "" {
			domain = cfg.Realm
		}
		cred, err = negotiate.AcquireUserCredentials(domain, user, cfg.Credentials.Password)
	} else {
		cred, err = negotiate.AcquireCurrentUserCredentials()
	}
	if err != nil {
		return nil, fmt.Errorf("acquire sspi credentials: %w", err)
	}

	return &KerberosProvider{
		cred:      cred,
		targetSPN: cfg.TargetSPN,
	}, nil
}

// Step performs an SSPI step. Step(nil) starts a new client context.
func (p *KerberosProvider) Step(_ context.Context, inputToken []byte) ([]byte, bool, error) {
	if len(inputToken) == 0 {
		p.releaseContext()
		ctx, token, err := negotiate.NewClientContext(p.cred, p.targetSPN)
		if err != nil {
			return nil, false, fmt.Errorf("init security context for %s: %w", p.targetSPN, err)
		}
		p.ctx = ctx
		p.isComplete = false
		return token, true, nil
	}

	if p.ctx == nil {
		return nil, false, fmt.Errorf("server token received before the client token was sent")
	}
	done, token, err := p.ctx.Update(inputToken)
	if err != nil {
		return nil, false, fmt.Errorf("update security context: %w", err)
	}
	p.isComplete = done
	return token, !done, nil
}

// Complete returns true once SSPI reports the context established.
func (p *KerberosProvider) Complete() bool {
	return p.isComplete
}

// Close releases the context and the credentials handle.
func (p *KerberosProvider) Close() error {
	p.releaseContext()
	if p.cred != nil {
		err := p.cred.Release()
		p.cred = nil
		return err
	}
	return nil
}

func (p *KerberosProvider) releaseContext() {
	if p.ctx != nil {
		_ = p.ctx.Release()
		p.ctx = nil
	}
}

// SupportsSSO reports whether the logged-on user's credentials can be used.
func SupportsSSO() bool {
	return true
}
