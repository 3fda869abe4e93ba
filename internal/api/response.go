package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

// Pagination bounds. Limits outside [1, maxLimit] are rejected with a 422.
const maxLimit = 500

// WriteJSON marshals v as JSON and writes it to w with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

// ListResponse is the envelope for every paginated collection.
type ListResponse struct {
	Items  any `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// WriteList writes a 200 collection envelope.
func WriteList(w http.ResponseWriter, items any, total, limit, offset int) {
	WriteJSON(w, http.StatusOK, ListResponse{Items: items, Total: total, Limit: limit, Offset: offset})
}

// Pagination parses the limit and offset query parameters, applying
// defaultLimit when limit is absent. Invalid values produce validation
// details instead of silently clamping.
func Pagination(r *http.Request, defaultLimit int) (limit, offset int, details []ValidationDetail) {
	limit = defaultLimit
	q := r.URL.Query()

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			details = append(details, InvalidInteger("query", "limit"))
		case n < 1:
			details = append(details, FieldInvalid("query", "limit",
				"Input should be greater than or equal to 1", "greater_than_equal"))
		case n > maxLimit:
			details = append(details, FieldInvalid("query", "limit",
				"Input should be less than or equal to 500", "less_than_equal"))
		default:
			limit = n
		}
	}

	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			details = append(details, InvalidInteger("query", "offset"))
		case n < 0:
			details = append(details, FieldInvalid("query", "offset",
				"Input should be greater than or equal to 0", "greater_than_equal"))
		default:
			offset = n
		}
	}
	return limit, offset, details
}

// BackgroundFlag parses the background query parameter. Absent means false.
func BackgroundFlag(r *http.Request) (bool, *ValidationDetail) {
	raw := r.URL.Query().Get("background")
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		d := InvalidBoolean("query", "background")
		return false, &d
	}
	return v, nil
}

// DecodeJSON reads the request body into v. A false return means a 422 has
// already been written.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteValidationError(w, InvalidJSONBody())
		return false
	}
	return true
}
