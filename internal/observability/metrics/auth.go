package metrics

import (
	"time"

	apperrors "github.com/learning-at-home/dalle/internal/errors"
	"github.com/learning-at-home/dalle/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultDenied  = "denied"
)

// JoinMetric captures details about one join/refresh exchange for metric
// emission.
type JoinMetric struct {
	Result   string
	Duration time.Duration
	Err      error
}

// EmitJoin emits standardised join lifecycle metrics.
func EmitJoin(sink statsd.Sink, in JoinMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{"result": in.Result}
	if in.Err != nil && in.Result != ResultSuccess {
		if code := apperrors.GetCode(in.Err); code != "" {
			tags["error_class"] = string(code)
		} else {
			tags["error_class"] = "unknown"
		}
	}

	sink.Count("auth.join", 1, tags)

	if in.Duration > 0 {
		sink.Timing("auth.join.duration", in.Duration, tags)
	}
}

// Validation failure reasons, tagged onto auth.token.invalid.
const (
	ReasonNoAuthorityKey        = "no_authority_key"
	ReasonBadSignature          = "bad_signature"
	ReasonUnparseableExpiration = "unparseable_expiration"
	ReasonTimezonePresent       = "timezone_present"
	ReasonExpired               = "expired"
)

// EmitValidationFailure counts one local token validation failure.
func EmitValidationFailure(sink statsd.Sink, reason string) {
	if sink == nil || reason == "" {
		return
	}
	sink.Count("auth.token.invalid", 1, map[string]string{"reason": reason})
}
