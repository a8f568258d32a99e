package probe

import (
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ConnectionErrorType categorizes the type of connection error.
type ConnectionErrorType int

const (
	// ConnectionErrorUnknown indicates an unclassified connection error.
	ConnectionErrorUnknown ConnectionErrorType = iota
	// ConnectionErrorTLS indicates a TLS/certificate verification error.
	ConnectionErrorTLS
	// ConnectionErrorNetwork indicates a network connectivity error (e.g., refused, unreachable).
	ConnectionErrorNetwork
	// ConnectionErrorTimeout indicates a connection timeout.
	ConnectionErrorTimeout
	// ConnectionErrorDNS indicates a DNS resolution failure.
	ConnectionErrorDNS
)

// String returns a human-readable name for the connection error type.
func (t ConnectionErrorType) String() string {
	switch t {
	case ConnectionErrorTLS:
		return "TLS certificate error"
	case ConnectionErrorNetwork:
		return "Connection refused or unreachable"
	case ConnectionErrorTimeout:
		return "Timed out"
	case ConnectionErrorDNS:
		return "Host not found"
	default:
		return "Connection error"
	}
}

// ConnectionError indicates that an endpoint could not be reached at all.
type ConnectionError struct {
	// Endpoint is the URL that could not be reached.
	Endpoint string
	Type     ConnectionErrorType
	Reason   error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s: %s (%v)", e.Endpoint, e.Type, e.Reason)
}

func (e *ConnectionError) Unwrap() error {
	return e.Reason
}

// StatusError is returned when an endpoint answered with an unexpected
// HTTP status.
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected HTTP status %d", e.Endpoint, e.StatusCode)
}

// Describe renders err as a short cause suitable for a status table.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var connErr *ConnectionError
	if errors.As(err, &connErr) {
		return connErr.Type.String()
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("HTTP %d", statusErr.StatusCode)
	}
	return err.Error()
}

// ClassifyConnectionError wraps err in a ConnectionError with the
// matching type. A nil err returns nil.
func ClassifyConnectionError(err error, endpoint string) *ConnectionError {
	if err == nil {
		return nil
	}

	t := ConnectionErrorUnknown
	var dnsErr *net.DNSError
	switch {
	case isTLSError(err):
		t = ConnectionErrorTLS
	case errors.As(err, &dnsErr):
		t = ConnectionErrorDNS
	case isTimeoutError(err):
		t = ConnectionErrorTimeout
	case isNetworkError(err.Error()):
		t = ConnectionErrorNetwork
	}
	return &ConnectionError{Endpoint: endpoint, Type: t, Reason: err}
}

func isTLSError(err error) bool {
	var certErr *x509.CertificateInvalidError
	var hostErr *x509.HostnameError
	var unknownAuthErr *x509.UnknownAuthorityError
	if errors.As(err, &certErr) || errors.As(err, &hostErr) || errors.As(err, &unknownAuthErr) {
		return true
	}

	errStr := err.Error()
	for _, keyword := range []string{"x509:", "certificate", "tls:", "TLS handshake"} {
		if strings.Contains(errStr, keyword) {
			return true
		}
	}
	return false
}

func isTimeoutError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}

	errStr := err.Error()
	return strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded")
}

func isNetworkError(errStr string) bool {
	for _, keyword := range []string{
		"connection refused",
		"connection reset",
		"network is unreachable",
		"no route to host",
		"dial tcp",
		"connect:",
	} {
		if strings.Contains(errStr, keyword) {
			return true
		}
	}
	return false
}
