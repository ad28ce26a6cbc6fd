package port

import (
	"fmt"
	"strconv"
	"strings"
)

// Listen port range and default.
const (
	Min     = 1
	Max     = 65535
	Default = 3000
)

// Parse converts a PORT value to a port number.
// An empty or whitespace-only value yields Default.
func Parse(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Default, nil
	}

	p, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q: must be a number", s)
	}

	if err := Validate(p); err != nil {
		return 0, err
	}

	return p, nil
}

// Validate checks that p is inside the usable TCP port range.
// Zero is accepted and means "any free port", which tests rely on.
func Validate(p int) error {
	if p == 0 {
		return nil
	}
	if p < Min || p > Max {
		return fmt.Errorf("port %d out of range %d-%d", p, Min, Max)
	}
	return nil
}

// ListenAddr returns the address the server binds to for port p.
func ListenAddr(p int) string {
	return ":" + strconv.Itoa(p)
}

// LocalURL returns the loopback URL for a relay listening on port p.
func LocalURL(p int) string {
	return fmt.Sprintf("http://localhost:%d", p)
}
