package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// maxRequestBody caps request bodies. Memo generation requests carry only
// identifiers and deal descriptions, so anything larger is not a real client.
const maxRequestBody = 1 << 20

// DecodeJSON decodes the request body into v. The body is size-capped and
// must contain exactly one JSON value.
func DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("request body contains more than one JSON value")
	}
	return nil
}
