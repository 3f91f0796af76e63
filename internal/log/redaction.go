package log

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
)

const redacted = "[REDACTED]"

// sensitiveKeyParts redact any attribute whose lower-cased key contains
// one of them. "ccache" and "ccname" cover Kerberos credential cache paths
// (KRB5CCNAME).
var sensitiveKeyParts = []string{
	"password",
	"pass",
	"secret",
	"token",
	"key",
	"hash",
	"auth",
	"ticket",
	"cred",
	"ccache",
	"ccname",
}

func isSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	for _, part := range sensitiveKeyParts {
		if strings.Contains(key, part) {
			return true
		}
	}
	return false
}

// RedactingHandler removes secrets before records reach the wrapped
// handler. LogValuers are resolved first, so a type that renders itself as
// a group cannot smuggle a secret past the key check. Passwords embedded in
// URL values (proxy URLs) are masked as well.
type RedactingHandler struct {
	next slog.Handler
}

// NewRedactingHandler wraps next.
func NewRedactingHandler(next slog.Handler) *RedactingHandler {
	return &RedactingHandler{next: next}
}

func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *RedactingHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(redact(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &RedactingHandler{next: h.next.WithAttrs(redactAll(attrs))}
}

func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{next: h.next.WithGroup(name)}
}

func redactAll(attrs []slog.Attr) []slog.Attr {
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = redact(a)
	}
	return out
}

func redact(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()

	switch {
	case v.Kind() == slog.KindGroup:
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(redactAll(v.Group())...)}
	case isSensitiveKey(a.Key):
		return slog.String(a.Key, redacted)
	case v.Kind() == slog.KindString:
		return slog.String(a.Key, RedactURL(v.String()))
	}
	return slog.Attr{Key: a.Key, Value: v}
}

// RedactURL masks the password of a URL with user information. Anything
// else is returned unchanged.
func RedactURL(s string) string {
	if !strings.Contains(s, "://") || !strings.Contains(s, "@") {
		return s
	}
	u, err := url.Parse(s)
	if err != nil || u.User == nil {
		return s
	}
	if _, ok := u.User.Password(); !ok {
		return s
	}
	return u.Redacted()
}
