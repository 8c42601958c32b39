package util

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Validatable is implemented by request payloads checking their own fields.
type Validatable interface {
	Validate() error
}

// BindAndValidateBody binds the request body into v and runs its Validate method.
func BindAndValidateBody(c echo.Context, v Validatable) error {
	binder := &echo.DefaultBinder{}
	if err := binder.BindBody(c, v); err != nil {
		LogFromContext(c.Request().Context()).Debug().Err(err).Msg("Failed to bind request body")
		return err
	}

	return v.Validate()
}

// BindAndValidatePathParams binds path params into v and runs its Validate method.
func BindAndValidatePathParams(c echo.Context, v Validatable) error {
	binder := &echo.DefaultBinder{}
	if err := binder.BindPathParams(c, v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid path parameters").SetInternal(err)
	}

	return v.Validate()
}

// BindAndValidateQueryParams binds query params into v and runs its Validate method.
func BindAndValidateQueryParams(c echo.Context, v Validatable) error {
	binder := &echo.DefaultBinder{}
	if err := binder.BindQueryParams(c, v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters").SetInternal(err)
	}

	return v.Validate()
}
