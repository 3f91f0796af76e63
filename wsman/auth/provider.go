package auth

import "context"

// SecurityProvider handles the token exchange behind Negotiate
// authentication. It hides the difference between go-krb5 and
// Windows SSPI.
//
// Implementations are not safe for concurrent use.
//
// The typical flow is:
//  1. Step(nil) returns the initial token
//  2. The token is sent to the server
//  3. The server responds with a challenge token
//  4. Step(challenge) returns the response token
//  5. Repeat until continueNeeded is false
//
// Calling Step(nil) again starts a new context.
type SecurityProvider interface {
	// Step processes an input token and produces an output token.
	// continueNeeded reports whether more legs are expected.
	Step(ctx context.Context, inputToken []byte) (outputToken []byte, continueNeeded bool, err error)

	// Complete returns true if the security context has been established.
	Complete() bool

	// Close releases any resources associated with the context.
	Close() error
}
