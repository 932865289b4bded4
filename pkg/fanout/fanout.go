// Package fanout issues multiple independent outbound calls at once and
// merges the outcomes without letting one failure cancel the rest.
//
// Per-call errors (timeouts, refused connections, bad status codes, broken
// payloads) are data: they occupy that call's slot in the result set and are
// never escalated into a failure of the gather itself. The result set always
// has exactly one entry per issued call, in input order.
package fanout

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Abraxas-365/concourse/pkg/errx"
)

// Call is a stateless descriptor for one outbound request.
type Call struct {
	// Target is the URL (or logical source name for fake fetchers).
	Target string `json:"target"`

	// Timeout applies to this call only; zero falls back to the
	// aggregator default.
	Timeout time.Duration `json:"timeout_ns,omitempty"`
}

// Result is the settled outcome of one call.
type Result struct {
	Target  string
	Payload json.RawMessage
	Err     error
	Latency time.Duration
}

// OK reports whether the call produced a payload.
func (r Result) OK() bool { return r.Err == nil }

// MarshalJSON renders the error as a string so per-call failures travel as
// data in the merged response.
func (r Result) MarshalJSON() ([]byte, error) {
	out := struct {
		Target    string          `json:"target"`
		OK        bool            `json:"ok"`
		Payload   json.RawMessage `json:"payload,omitempty"`
		Error     string          `json:"error,omitempty"`
		LatencyMS int64           `json:"latency_ms"`
	}{
		Target:    r.Target,
		OK:        r.OK(),
		Payload:   r.Payload,
		LatencyMS: r.Latency.Milliseconds(),
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

// ErrRegistry holds the package's error codes.
var ErrRegistry = errx.NewRegistry("FANOUT")

var (
	CodeCallTimeout = ErrRegistry.Register("CALL_TIMEOUT", errx.TypeExternal, http.StatusGatewayTimeout, "External call timed out")
	CodeCallFailed  = ErrRegistry.Register("CALL_FAILED", errx.TypeExternal, http.StatusBadGateway, "External call failed")
	CodeBadStatus   = ErrRegistry.Register("BAD_STATUS", errx.TypeExternal, http.StatusBadGateway, "External call returned a non-2xx status")
	CodeBadPayload  = ErrRegistry.Register("BAD_PAYLOAD", errx.TypeExternal, http.StatusBadGateway, "External call returned a malformed payload")
)
