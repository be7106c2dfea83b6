package handler

import (
	"encoding/json"
	"errors"
	"github.com/Chakyiu/chakyiu-blog/internal/logger"
	"github.com/Chakyiu/chakyiu-blog/internal/middleware"
	"github.com/Chakyiu/chakyiu-blog/internal/service"
	"io"
	"net/http"
	"strconv"
)

const maxBodyBytes = 1 << 20

type contentRequest struct {
	Content string `json:"content"`
}

type roleRequest struct {
	Role string `json:"role"`
}

// decodeJSON reads a JSON request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return service.ValidationError("Request body is empty")
		case errors.As(err, &maxErr):
			return service.ValidationError("Request body is too large")
		default:
			return service.ValidationError("Request body is not valid JSON")
		}
	}
	return nil
}

// respondError writes the failure envelope for a service error. Internal
// details are logged, never returned.
func respondError(w http.ResponseWriter, log logger.Logger, err error) {
	status := middleware.StatusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error(err, "Request failed")
	}
	middleware.WriteJSONError(w, status, service.PublicMessage(err))
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
