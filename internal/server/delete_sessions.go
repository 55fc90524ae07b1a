package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ha1tch/reseau/pkg/logger"
	"github.com/ha1tch/reseau/pkg/reseau"
)

type sessionParams struct {
	ID string `param:"id" validate:"required,uuid"`
}

// lookupSession resolves the :id parameter. On failure the error response
// has been written and ok is false.
func lookupSession(c echo.Context) (s *reseau.Session, ok bool, err error) {
	params := new(sessionParams)
	params.ID = c.Param("id")
	if err := c.Validate(params); err != nil {
		return nil, false, c.JSON(http.StatusBadRequest, messageResponse{
			Message: "Invalid session id",
		})
	}
	s, found := c.(*AppContext).App.Sessions.Get(params.ID)
	if !found {
		return nil, false, c.JSON(http.StatusNotFound, messageResponse{
			Message: "Session not found",
		})
	}
	return s, true, nil
}

// DeleteSessionHandler closes a session and forgets it.
func DeleteSessionHandler(c echo.Context) error {
	params := new(sessionParams)
	params.ID = c.Param("id")
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{
			Message: "Invalid session id",
		})
	}

	if !c.(*AppContext).App.Sessions.Delete(params.ID) {
		return c.JSON(http.StatusNotFound, messageResponse{
			Message: "Session not found",
		})
	}
	logger.Info("Session closed", "id", params.ID)

	return c.JSON(http.StatusOK, messageResponse{
		Message: "Session closed",
	})
}
