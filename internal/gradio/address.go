package gradio

import (
	"fmt"
	"net/url"
	"strings"
)

const spaceHostSuffix = ".hf.space"

// ResolveAddress приводит адрес к базовому URL приложения.
// Поддерживается абсолютный http(s) URL и идентификатор Space вида "owner/name".
func ResolveAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", ErrEmptyAddress
	}

	if strings.Contains(address, "://") {
		u, err := url.Parse(address)
		if err != nil {
			return "", fmt.Errorf("parse address: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
		}
		if u.Host == "" {
			return "", fmt.Errorf("address %q has no host", address)
		}
		u.RawQuery = ""
		u.Fragment = ""
		return strings.TrimRight(u.String(), "/"), nil
	}

	owner, name, ok := strings.Cut(address, "/")
	if !ok || owner == "" || name == "" || strings.ContainsAny(name, "/ ") || strings.Contains(owner, " ") {
		return "", fmt.Errorf("malformed address %q: want URL or owner/space", address)
	}
	return "https://" + spaceSubdomain(owner) + "-" + spaceSubdomain(name) + spaceHostSuffix, nil
}

func spaceSubdomain(part string) string {
	return strings.NewReplacer("_", "-", ".", "-").Replace(strings.ToLower(part))
}
