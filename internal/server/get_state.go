package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// GetStateHandler returns the scene state of a session.
func GetStateHandler(c echo.Context) error {
	s, ok, err := lookupSession(c)
	if !ok {
		return err
	}
	return c.JSON(http.StatusOK, s.State())
}
