package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/chainsafe/canton-backing/pkg/app/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeAndValidate reads a JSON request body into dst and runs struct
// validation on it. The body is capped at 1MB.
func DecodeAndValidate(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return apperrors.ValidationError(err, "failed to read request")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperrors.ValidationError(err, "invalid JSON")
	}
	if err := validate.Struct(dst); err != nil {
		return apperrors.ValidationError(err, "invalid request: "+err.Error())
	}
	return nil
}
