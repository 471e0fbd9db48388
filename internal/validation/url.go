package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// RemoteHost extracts the host from a VCS remote. Both URL forms
// (https://host/org/repo, ssh://git@host:22/org/repo) and scp-like
// git@host:org/repo forms are accepted.
func RemoteHost(remote string) (string, error) {
	remote = strings.TrimSpace(remote)
	if remote == "" {
		return "", fmt.Errorf("remote URL is empty")
	}

	if strings.Contains(remote, "://") {
		parsed, err := url.Parse(remote)
		if err != nil {
			return "", fmt.Errorf("invalid remote URL: %w", err)
		}
		if parsed.Hostname() == "" {
			return "", fmt.Errorf("remote URL must have a hostname")
		}
		return strings.ToLower(parsed.Hostname()), nil
	}

	// scp-like syntax: [user@]host:path
	colon := strings.Index(remote, ":")
	if colon <= 0 {
		return "", fmt.Errorf("unrecognized remote format: %s", remote)
	}
	host := remote[:colon]
	if at := strings.LastIndex(host, "@"); at >= 0 {
		host = host[at+1:]
	}
	if host == "" || strings.ContainsAny(host, "/ ") {
		return "", fmt.Errorf("unrecognized remote format: %s", remote)
	}

	return strings.ToLower(host), nil
}
