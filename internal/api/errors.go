package api

import "net/http"

// ValidationDetail is one entry in the detail list of a 422 response.
type ValidationDetail struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// FieldRequired reports a missing required field. in is where the field
// lives: "body", "query", or "path".
func FieldRequired(in, field string) ValidationDetail {
	return ValidationDetail{
		Loc:  []any{in, field},
		Msg:  "Field required",
		Type: "missing",
	}
}

// FieldInvalid reports a field that was present but unusable.
func FieldInvalid(in, field, msg, typ string) ValidationDetail {
	return ValidationDetail{
		Loc:  []any{in, field},
		Msg:  msg,
		Type: typ,
	}
}

// InvalidInteger reports a query or path value that failed integer parsing.
func InvalidInteger(in, field string) ValidationDetail {
	return FieldInvalid(in, field,
		"Input should be a valid integer, unable to parse string as an integer", "int_parsing")
}

// InvalidBoolean reports a query value that failed boolean parsing.
func InvalidBoolean(in, field string) ValidationDetail {
	return FieldInvalid(in, field,
		"Input should be a valid boolean, unable to interpret input", "bool_parsing")
}

// InvalidJSONBody reports a request body that was not valid JSON.
func InvalidJSONBody() ValidationDetail {
	return ValidationDetail{
		Loc:  []any{"body"},
		Msg:  "JSON decode error",
		Type: "json_invalid",
	}
}

// WriteValidationError writes a 422 with the given detail entries.
func WriteValidationError(w http.ResponseWriter, details ...ValidationDetail) {
	WriteJSON(w, http.StatusUnprocessableEntity, map[string][]ValidationDetail{"detail": details})
}

// WriteDetail writes a response whose body is {"detail": message}.
func WriteDetail(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"detail": message})
}

// WriteNotFound writes a 404 naming the missing resource, e.g. "Template not
// found".
func WriteNotFound(w http.ResponseWriter, what string) {
	WriteDetail(w, http.StatusNotFound, what+" not found")
}

// WriteUnauthorized writes the standard 401 body and challenge header.
func WriteUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	WriteDetail(w, http.StatusUnauthorized, "Not authenticated")
}

// WriteForbidden writes the standard 403 body.
func WriteForbidden(w http.ResponseWriter) {
	WriteDetail(w, http.StatusForbidden, "Not enough permissions")
}

// WriteConflict writes a 409 with the given message.
func WriteConflict(w http.ResponseWriter, message string) {
	WriteDetail(w, http.StatusConflict, message)
}

// WriteInternal writes the generic 500 body.
func WriteInternal(w http.ResponseWriter) {
	WriteDetail(w, http.StatusInternalServerError, "Internal Server Error")
}
