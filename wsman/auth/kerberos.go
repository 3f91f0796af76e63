package auth

import (
	"os"
	"strings"
)

// DefaultKrb5Conf is used when neither KerberosConfig.Krb5ConfPath nor
// KRB5_CONFIG is set.
const DefaultKrb5Conf = "/etc/krb5.conf"

// KerberosConfig holds the settings shared by the platform Kerberos providers.
type KerberosConfig struct {
	// TargetSPN is the service principal, e.g. "HTTP/server.domain.com".
	TargetSPN string

	// Realm is the Kerberos realm. If empty it is taken from a
	// user@REALM username, then from krb5.conf.
	Realm string

	// Krb5ConfPath is the krb5.conf location. Ignored on Windows.
	Krb5ConfPath string

	// CCachePath is a credential cache to use instead of a password.
	// Ignored on Windows.
	CCachePath string

	// Credentials are the username and password. On Windows an empty
	// username means the logged-on user.
	Credentials *Credentials
}

// TargetSPNForHost returns the default WinRM service principal for host.
func TargetSPNForHost(host string) string {
	return "HTTP/" + host
}

// krb5ConfPath resolves the krb5.conf location.
func (c KerberosConfig) krb5ConfPath() string {
	if c.Krb5ConfPath != "" {
		return c.Krb5ConfPath
	}
	if env := os.Getenv("KRB5_CONFIG"); env != "" {
		return env
	}
	return DefaultKrb5Conf
}

// principal returns the user name and realm to log in with.
func (c KerberosConfig) principal() (user, realm string) {
	if c.Credentials == nil {
		return "", strings.ToUpper(c.Realm)
	}
	user, domain := SplitUsername(c.Credentials.Username)
	realm = c.Realm
	if realm == "" {
		realm = domain
	}
	if realm == "" {
		realm = c.Credentials.Domain
	}
	return user, strings.ToUpper(realm)
}
