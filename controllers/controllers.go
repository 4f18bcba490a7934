package controllers

import (
	"encoding/json"
	"net/http"

	"go-storefront/apperror"
	"go-storefront/utils"
)

const maxJSONBody = 1 << 20

// decodeJSON reads a JSON body into v, reporting malformed payloads as bad
// requests.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperror.Invalid("Invalid input", utils.ValidationDetails(err), err)
	}
	return nil
}
