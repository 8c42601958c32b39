package httperrors

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/iao-solana/internal/i18n"
	"github/chapool/iao-solana/internal/util"
)

type HTTPErrorHandlerConfig struct {
	HideInternalServerErrorDetails bool
	I18n                           *i18n.Service
}

// HTTPErrorHandlerWithConfig renders every error as HTTPError JSON, mapping
// program errors first and localizing titles by Accept-Language.
func HTTPErrorHandlerWithConfig(config HTTPErrorHandlerConfig) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		log := util.LogFromContext(c.Request().Context())

		var he *HTTPError
		var echoErr *echo.HTTPError

		mapped := FromError(err)
		switch {
		case errors.As(mapped, &he):
		case errors.As(mapped, &echoErr):
			he = NewFromEcho(echoErr.Code, echoErr.Message)
			he.Internal = echoErr.Internal
		default:
			he = NewHTTPError(http.StatusInternalServerError, TypeGeneric, statusText(http.StatusInternalServerError))
			he.Internal = err
			if !config.HideInternalServerErrorDetails {
				he.Detail = err.Error()
			}
		}

		if he.Code >= http.StatusInternalServerError {
			log.Error().Err(err).Int("status", he.Code).Msg("Request failed")
		} else {
			log.Debug().Err(err).Int("status", he.Code).Msg("Request failed")
		}

		if he.MessageKey != "" && config.I18n != nil {
			lang := config.I18n.ParseAcceptLanguage(c.Request().Header.Get("Accept-Language"))
			localized := *he
			localized.Title = config.I18n.Translate(he.MessageKey, lang, he.MessageData)
			he = &localized
		}

		if c.Response().Committed {
			return
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(he.Code)
		} else {
			err = c.JSON(he.Code, he)
		}
		if err != nil {
			log.Warn().Err(err).AnErr("http_err", he).Msg("Failed to handle HTTP error")
		}
	}
}
