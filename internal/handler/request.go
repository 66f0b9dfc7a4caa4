package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"inventory-catalog-api/pkg/apierror"
	"inventory-catalog-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// maxBodyBytes bounds request bodies on the management API.
const maxBodyBytes = 1 << 20

// decodeJSON reads a JSON body into dst. Numbers are kept as json.Number so
// decimal slot values are not rounded through float64.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty request body")
		}
		return err
	}
	return nil
}

// bind decodes and validates a request body, writing the error response on failure.
func bind(w http.ResponseWriter, r *http.Request, v *Validator, dst any) bool {
	if err := decodeJSON(r, dst); err != nil {
		response.Error(w, apierror.BadRequest(ErrMsgInvalidRequest).WithDetails(apierror.FieldError{Field: "body", Message: err.Error()}))
		return false
	}
	if err := v.ValidateStruct(dst); err != nil {
		response.Error(w, apierror.ValidationError("", FieldErrors(err)...))
		return false
	}
	return true
}

// inventoryIDParam reads the {id} route parameter.
func inventoryIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		response.Error(w, apierror.BadRequest(ErrMsgInvalidInventoryID))
		return 0, false
	}
	return id, true
}

// versionQuery reads a required ?expectedVersion= parameter.
func versionQuery(w http.ResponseWriter, r *http.Request) (int64, bool) {
	v, err := strconv.ParseInt(r.URL.Query().Get("expectedVersion"), 10, 64)
	if err != nil || v < 1 {
		response.Error(w, apierror.ValidationError(ErrMsgInvalidVersion,
			apierror.FieldError{Field: "expectedVersion", Message: "Must be at least 1"}))
		return 0, false
	}
	return v, true
}
