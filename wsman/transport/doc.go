// Package transport provides the HTTP/TLS transport for WSMan requests.
//
// Authentication is layered on top by replacing the http.Client's
// RoundTripper (see package auth).
package transport
