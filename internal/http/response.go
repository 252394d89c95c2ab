package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/0finn0the0human0/springbootTraining/internal/apperr"
	"github.com/0finn0the0human0/springbootTraining/pkg/zerror"
)

const maxBodyBytes = 1 << 20 // 1 MB

var (
	errRouteNotFound    = zerror.NewNotFound("ROUTE_NOT_FOUND", "route not found")
	errMethodNotAllowed = zerror.NewZError(nil, zerror.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	errEmptyBody        = errors.New("request body is empty")
	errTrailingData     = errors.New("request body has data after the JSON document")
)

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return encodeJSON(w, v)
}

func encodeJSON(w io.Writer, v any) error {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// decodeJSON reads exactly one JSON document from the request body into v.
// Malformed input and anything after the document are reported as an invalid request.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			err = errEmptyBody
		}
		return malformedBody(err)
	}

	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errTrailingData
		}
		return malformedBody(err)
	}

	return nil
}

func malformedBody(err error) error {
	return zerror.NewBadRequest(apperr.InvalidRequestErrorCode, "Malformed request body").WrapParent(err)
}
