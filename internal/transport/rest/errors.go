package rest

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"ReadLater/internal/domain"
)

// toHTTPError maps use case errors onto HTTP statuses.
func toHTTPError(err error) error {
	var extErr *domain.ExternalHTTPError
	switch {
	case errors.Is(err, domain.ErrItemNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.As(err, &extErr):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error()).SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}
}
