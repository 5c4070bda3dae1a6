package footballapi

import (
	"fmt"
	"strings"

	"github.com/riskibarqy/tactical-intel/internal/usecase"
)

// UpstreamError is returned once every available credential failed a call.
type UpstreamError struct {
	Endpoint   string
	Credential Credential
	// StatusCode is the last HTTP status seen; zero for transport failures.
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "football api %s failed", e.Endpoint)
	if e.Credential != "" {
		fmt.Fprintf(&b, " credential=%s", e.Credential)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " status=%d", e.StatusCode)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func (e *UpstreamError) Is(target error) bool {
	return target == usecase.ErrUpstreamUnavailable
}

// statusError is a non-2xx response for one credential.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("provider status=%d body=%s", e.status, e.body)
}

// credentialRejected reports statuses that point at the key itself.
func (e *statusError) credentialRejected() bool {
	switch e.status {
	case 401, 403, 429:
		return true
	default:
		return false
	}
}
