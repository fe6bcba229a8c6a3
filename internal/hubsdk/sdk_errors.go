package hubsdk

import (
	"errors"
	"fmt"
	"strings"

	"github.com/imroc/req/v3"
)

var (
	// ErrNoHost means the config named no hub to talk to.
	ErrNoHost = errors.New("hub host is required")

	// ErrInvalidMAC means the credential is not a MAC address in any
	// recognized notation.
	ErrInvalidMAC = errors.New("invalid MAC address")

	// ErrLoginFailed means the hub answered the login request but did not
	// accept the MAC address as a credential.
	ErrLoginFailed = errors.New("hub rejected the MAC address credential")
)

// HubError is a non-success HTTP response from the diagnostic service.
type HubError struct {
	Op     string // the high-level operation, e.g. "login"
	Status int    // HTTP status code
	Detail string // truncated response body, may be empty
}

func (e *HubError) Error() string {
	msg := fmt.Sprintf("hub %s failed with status %d", e.Op, e.Status)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

const maxErrorDetail = 200

// hubError builds a HubError from an error-state response. The body is kept
// only in truncated form; the hub serves HTML error pages, not structured
// errors.
func hubError(op string, resp *req.Response) error {
	detail := strings.TrimSpace(resp.String())
	if len(detail) > maxErrorDetail {
		detail = detail[:maxErrorDetail] + "..."
	}
	return &HubError{
		Op:     op,
		Status: resp.StatusCode,
		Detail: detail,
	}
}
