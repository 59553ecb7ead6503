// Package apiresp writes the JSON responses shared by the API functions.
package apiresp

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/cockroachdb/errors"
)

// CORS header values returned on every response.
const (
	AllowOrigin  = "*"
	AllowMethods = "GET,POST,PUT,DELETE,OPTIONS"
	AllowHeaders = "Content-Type,X-Api-Key"
)

// SetHeaders sets the content type and CORS headers.
func SetHeaders(h http.Header) {
	h.Set("Content-Type", "application/json")
	h.Set("Access-Control-Allow-Origin", AllowOrigin)
	h.Set("Access-Control-Allow-Methods", AllowMethods)
	h.Set("Access-Control-Allow-Headers", AllowHeaders)
}

// Encode renders body as two-space indented JSON. HTML characters are not escaped
// and non-ASCII text is kept as is.
func Encode(body any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(body); err != nil {
		return nil, errors.Wrap(err, "encode response body")
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// JSON writes body with the given status code.
func JSON(w http.ResponseWriter, status int, body any) error {
	data, err := Encode(body)
	if err != nil {
		return err
	}
	SetHeaders(w.Header())
	w.WriteHeader(status)
	_, err = w.Write(data)
	return errors.Wrap(err, "write response")
}

// Error writes {"error": msg} with the given status code.
func Error(w http.ResponseWriter, status int, msg string) error {
	return JSON(w, status, map[string]string{"error": msg})
}

// InternalError writes the generic 500 response including the cause.
func InternalError(w http.ResponseWriter, cause error) error {
	return JSON(w, http.StatusInternalServerError, map[string]string{
		"error":   "Internal server error",
		"details": cause.Error(),
	})
}

// NotFound responds to requests no route matched.
func NotFound(w http.ResponseWriter, _ *http.Request) error {
	return Error(w, http.StatusNotFound, "Endpoint not found")
}

// DecodeObject decodes a JSON object request body. An empty body yields a nil map.
func DecodeObject(r *http.Request) (map[string]any, error) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "decode request body")
	}
	return body, nil
}
