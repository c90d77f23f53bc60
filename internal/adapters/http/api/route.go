package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/routerelay/internal/adapters/provider/tomtom"
	"github.com/okian/routerelay/internal/domain/route"
	"github.com/okian/routerelay/pkg/logger"
	"github.com/okian/routerelay/pkg/metrics"
)

// Response bodies for upstream failures.
const (
	msgFetchFailed        = "Failed to fetch route data"
	msgProviderDown       = "route provider unavailable"
	msgProviderTimeout    = "route provider timed out"
	msgProviderBadPayload = "invalid response from route provider"
	msgInvalidJSON        = "invalid JSON body"
	msgBodyTooLarge       = "request body too large"
)

// HeaderUpstreamStatus echoes the provider status on relayed failures.
const HeaderUpstreamStatus = "X-Upstream-Status"

// RouteHandler handles POST /get_route.
type RouteHandler struct {
	svc          RouteService
	maxBodyBytes int64
	metrics      *metrics.Manager
	logger       logger.Logger
}

// NewRouteHandler creates a new route handler.
func NewRouteHandler(svc RouteService, maxBodyBytes int64, m *metrics.Manager, l logger.Logger) *RouteHandler {
	return &RouteHandler{svc: svc, maxBodyBytes: maxBodyBytes, metrics: m, logger: l}
}

// HandleGetRoute decodes the route request, relays it and writes the
// provider payload back unchanged.
func (h *RouteHandler) HandleGetRoute(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_route"
	ctx := r.Context()

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "")
		h.logger.Debug(ctx, "rejected request", logger.Error(NewKind(op, ErrMethodNotAllowed)), logger.String("method", r.Method))
		return
	}

	req, err := route.Decode(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		status, msg, reason := decodeFailure(err)
		h.metrics.RecordRouteRejection(reason)
		h.logger.Debug(ctx, "rejected request", logger.Error(WrapKind(op, ErrBadRequest, err)))
		writeError(w, status, msg)
		return
	}

	body, err := h.svc.GetRoute(ctx, req)
	if err != nil {
		status, msg := upstreamFailure(err)
		var se *tomtom.StatusError
		if errors.As(err, &se) {
			w.Header().Set(HeaderUpstreamStatus, strconv.Itoa(se.Code))
		}
		h.logger.Debug(ctx, "relay failed", logger.Error(WrapKind(op, ErrUpstream, err)), logger.Int("status", status))
		writeError(w, status, msg)
		return
	}

	writeRawJSON(w, http.StatusOK, body)
}

// decodeFailure maps a route.Decode error to status, message and metric reason.
func decodeFailure(err error) (int, string, string) {
	var mbe *http.MaxBytesError
	var fe *route.FieldError
	switch {
	case errors.As(err, &mbe):
		return http.StatusBadRequest, msgBodyTooLarge, "too_large"
	case errors.As(err, &fe):
		reason := "invalid_field"
		if errors.Is(err, route.ErrMissingField) {
			reason = "missing_field"
		}
		return http.StatusBadRequest, fe.Error(), reason
	default:
		return http.StatusBadRequest, msgInvalidJSON, "malformed"
	}
}

// upstreamFailure maps a relay error to status and message. Non-success
// provider replies collapse into one fixed payload.
func upstreamFailure(err error) (int, string) {
	switch {
	case errors.Is(err, tomtom.ErrUpstreamStatus):
		return http.StatusInternalServerError, msgFetchFailed
	case errors.Is(err, tomtom.ErrTimeout):
		return http.StatusGatewayTimeout, msgProviderTimeout
	case errors.Is(err, tomtom.ErrInvalidPayload):
		return http.StatusBadGateway, msgProviderBadPayload
	case errors.Is(err, tomtom.ErrUnavailable):
		return http.StatusBadGateway, msgProviderDown
	default:
		return http.StatusInternalServerError, msgFetchFailed
	}
}
