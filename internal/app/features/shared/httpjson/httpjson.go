// Package httpjson reads and writes the JSON bodies of the API.
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/samaquete/admin/internal/app/system/apperr"
)

// Write sends v as JSON with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK is Write with 200.
func OK(w http.ResponseWriter, v any) { Write(w, http.StatusOK, v) }

// Created is Write with 201.
func Created(w http.ResponseWriter, v any) { Write(w, http.StatusCreated, v) }

// Decode reads one JSON object of at most limit bytes into dst. Malformed,
// empty or oversized bodies come back as *apperr.ValidationError.
func Decode(w http.ResponseWriter, r *http.Request, dst any, limit int64) error {
	body := http.MaxBytesReader(w, r.Body, limit)
	defer body.Close()

	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		var syntax *json.SyntaxError
		var typ *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			return apperr.Invalid("body", "corps de requête requis")
		case errors.As(err, &tooLarge):
			return apperr.Invalid("body", "requête trop volumineuse")
		case errors.As(err, &typ):
			return apperr.Invalid(typ.Field, "type de valeur invalide")
		case errors.As(err, &syntax), errors.Is(err, io.ErrUnexpectedEOF):
			return apperr.Invalid("body", "JSON invalide")
		}
		return apperr.Invalid("body", err.Error())
	}
	if dec.More() {
		return apperr.Invalid("body", "données inattendues après l'objet JSON")
	}
	return nil
}
