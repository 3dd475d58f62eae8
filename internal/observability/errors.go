package observability

import (
	"context"
	"errors"
	"net/http"

	"github.com/baxromumarov/trailscript/internal/httpx"
	"github.com/baxromumarov/trailscript/internal/trailsdb"
)

const (
	ErrorNetwork   = "network"
	ErrorNotFound  = "not_found"
	ErrorParsing   = "parsing"
	ErrorRateLimit = "rate_limit"
	ErrorCanceled  = "canceled"
	ErrorUnknown   = "unknown"
)

func ClassifyFetchError(err error) string {
	if err == nil {
		return ErrorUnknown
	}
	if errors.Is(err, context.Canceled) {
		return ErrorCanceled
	}
	var fe *httpx.FetchError
	if errors.As(err, &fe) {
		return classifyStatus(fe.Status)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorNetwork
	}
	return ErrorUnknown
}

func ClassifyAPIError(err error) string {
	if err == nil {
		return ErrorUnknown
	}
	if errors.Is(err, context.Canceled) {
		return ErrorCanceled
	}
	var ae *trailsdb.APIError
	if errors.As(err, &ae) {
		if trailsdb.IsPayloadError(ae) {
			return ErrorParsing
		}
		return classifyStatus(ae.Status)
	}
	return ErrorUnknown
}

func classifyStatus(status int) string {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrorRateLimit
	case status == http.StatusNotFound:
		return ErrorNotFound
	default:
		return ErrorNetwork
	}
}
