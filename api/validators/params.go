package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/fulfilment-application/monolith/pkg/errors"
)

const maxBusinessUnitCodeLength = 50

// ParsePathID extracts a positive integer identifier from the route.
func ParsePathID(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeInvalidArgument, "path parameter must be a positive integer").
			WithDetails(map[string]any{"field": key})
	}
	return value, nil
}

// ParseBusinessUnitCode extracts a warehouse business unit code from the route.
func ParseBusinessUnitCode(r *http.Request, key string) (string, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeInvalidArgument, "business unit code is required").
			WithDetails(map[string]any{"field": key})
	}
	if len(raw) > maxBusinessUnitCodeLength {
		return "", pkgerrors.New(pkgerrors.CodeInvalidArgument, "business unit code too long").
			WithDetails(map[string]any{"field": key, "max": maxBusinessUnitCodeLength})
	}
	return raw, nil
}
