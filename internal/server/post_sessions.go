package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ha1tch/reseau/pkg/logger"
	"github.com/ha1tch/reseau/pkg/physics"
	"github.com/ha1tch/reseau/pkg/reseau"
)

type messageResponse struct {
	Message string `json:"message"`
}

type statsResponse struct {
	Nodes    int `json:"nodes"`
	Edges    int `json:"edges"`
	Dangling int `json:"dangling"`
}

// CreateSessionHandler builds a session over the cached dataset.
func CreateSessionHandler(c echo.Context) error {
	type createSessionBody struct {
		Profile string  `json:"profile" validate:"omitempty,oneof=standard low-power"`
		Width   float64 `json:"width" validate:"omitempty,min=100,max=8192"`
		Height  float64 `json:"height" validate:"omitempty,min=100,max=8192"`
		Refresh bool    `json:"refresh"`
	}

	type createSessionResponse struct {
		ID    string        `json:"id"`
		Stats statsResponse `json:"stats"`
		State reseau.State  `json:"state"`
	}

	body := new(createSessionBody)
	if err := c.Bind(body); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(body); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{
			Message: "Invalid request body",
		})
	}

	app := c.(*AppContext).App
	cfg := app.Config

	ds, err := app.Dataset(c.Request().Context(), body.Refresh)
	if err != nil {
		logger.Error("Failed to load dataset", "err", err)
		return c.JSON(http.StatusBadGateway, messageResponse{
			Message: "Impossible de charger les données",
		})
	}

	profile := cfg.PhysicsProfile()
	if body.Profile != "" {
		profile, _ = physics.ProfileByName(body.Profile)
	}

	width, height := body.Width, body.Height
	if width == 0 {
		width = float64(cfg.View.Width)
	}
	if height == 0 {
		height = float64(cfg.View.Height)
	}

	opts := reseau.Options{
		Profile: profile,
		Width:   width,
		Height:  height,
		Metrics: app.Metrics,
	}
	if app.NewScheduler != nil {
		opts.Scheduler = app.NewScheduler()
	}

	s := reseau.New(opts)
	st := s.Load(ds)
	id := app.Sessions.Add(s)
	logger.Info("Session created", "id", id, "nodes", st.Nodes, "profile", profile.Name)

	return c.JSON(http.StatusCreated, createSessionResponse{
		ID: id,
		Stats: statsResponse{
			Nodes:    st.Nodes,
			Edges:    st.Edges,
			Dangling: st.Dangling,
		},
		State: s.State(),
	})
}
