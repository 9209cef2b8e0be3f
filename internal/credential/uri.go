package credential

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/peternagy/dbquerytool/internal/types"
)

// redactedPassword replaces passwords in display URIs.
const redactedPassword = "xxxxx"

// BuildURI renders a profile as a connection URI. When redact is set the
// password is masked.
func BuildURI(kind types.StoreKind, p types.ConnectionProfile, redact bool) string {
	var b strings.Builder

	password := p.Password
	if redact && password != "" {
		password = redactedPassword
	}

	// Credentials use url.UserPassword().String() for RFC 3986 userinfo encoding.
	switch kind {
	case types.KindRedis:
		b.WriteString("redis://")
		if password != "" {
			b.WriteString(url.UserPassword("", password).String())
			b.WriteByte('@')
		}
	default:
		b.WriteString("mongodb://")
		if p.Username != "" {
			if password != "" {
				b.WriteString(url.UserPassword(p.Username, password).String())
			} else {
				b.WriteString(url.User(p.Username).String())
			}
			b.WriteByte('@')
		}
	}

	b.WriteString(formatHost(p.Host, p.Port))
	b.WriteByte('/')
	if kind == types.KindRedis {
		b.WriteString(strconv.Itoa(p.DB))
	} else {
		b.WriteString(p.Database)
	}
	return b.String()
}

// ParseURI builds a profile from a mongodb:// or redis:// URI. The profile
// name is left empty.
func ParseURI(uri string) (types.StoreKind, types.ConnectionProfile, error) {
	var p types.ConnectionProfile

	parsed, err := url.Parse(uri)
	if err != nil {
		return "", p, fmt.Errorf("invalid URI: %w", err)
	}

	var kind types.StoreKind
	switch parsed.Scheme {
	case "mongodb":
		kind = types.KindMongo
		p.Port = 27017
	case "redis":
		kind = types.KindRedis
		p.Port = 6379
	default:
		return "", p, fmt.Errorf("invalid URI scheme %q: must be mongodb:// or redis://", parsed.Scheme)
	}

	p.Host = parsed.Hostname()
	if p.Host == "" {
		p.Host = "localhost"
	}
	if port := parsed.Port(); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return "", p, fmt.Errorf("invalid port %q", port)
		}
		p.Port = n
	}

	if parsed.User != nil {
		if kind == types.KindMongo {
			p.Username = parsed.User.Username()
		}
		p.Password, _ = parsed.User.Password()
	}

	path := strings.TrimPrefix(parsed.Path, "/")
	if kind == types.KindRedis {
		if path != "" {
			n, err := strconv.Atoi(path)
			if err != nil || n < 0 {
				return "", p, fmt.Errorf("invalid redis database index %q", path)
			}
			p.DB = n
		}
	} else {
		p.Database = path
	}

	return kind, p, nil
}

// formatHost formats a host:port pair, using defaults for missing values.
func formatHost(host string, port int) string {
	if host == "" {
		host = "localhost"
	}
	if port == 0 {
		return host
	}
	return fmt.Sprintf("%s:%d", host, port)
}
