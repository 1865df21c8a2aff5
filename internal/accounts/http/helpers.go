package http

import (
	"encoding/json"
	"net/http"
)

const (
	passwordMinLength = 4
	passwordMaxLength = 100
)

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

func passwordLengthOK(password string) bool {
	return len(password) >= passwordMinLength && len(password) <= passwordMaxLength
}
