package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ha1tch/reseau/pkg/geom"
	"github.com/ha1tch/reseau/pkg/graph"
	"github.com/ha1tch/reseau/pkg/interact"
	"github.com/ha1tch/reseau/pkg/reseau"
)

var buttons = map[string]interact.Button{
	"":          interact.ButtonPrimary,
	"primary":   interact.ButtonPrimary,
	"secondary": interact.ButtonSecondary,
	"middle":    interact.ButtonMiddle,
}

// PointerHandler forwards a mouse event to a session.
func PointerHandler(c echo.Context) error {
	type pointerBody struct {
		Type   string  `json:"type" validate:"required,oneof=down move up leave"`
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Button string  `json:"button" validate:"omitempty,oneof=primary secondary middle"`
	}

	s, ok, err := lookupSession(c)
	if !ok {
		return err
	}

	body := new(pointerBody)
	if err := c.Bind(body); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(body); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{
			Message: "Invalid pointer event",
		})
	}

	switch body.Type {
	case "down":
		s.PointerDown(body.X, body.Y, buttons[body.Button])
	case "move":
		s.PointerMove(body.X, body.Y)
	case "up":
		s.PointerUp()
	case "leave":
		s.PointerLeave()
	}

	return c.JSON(http.StatusOK, s.State())
}

// TouchHandler forwards a touch event to a session.
func TouchHandler(c echo.Context) error {
	type touchPoint struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}

	type touchBody struct {
		Type    string       `json:"type" validate:"required,oneof=start move end"`
		Touches []touchPoint `json:"touches" validate:"required_unless=Type end,max=10"`
	}

	s, ok, err := lookupSession(c)
	if !ok {
		return err
	}

	body := new(touchBody)
	if err := c.Bind(body); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(body); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{
			Message: "Invalid touch event",
		})
	}

	points := make([]interact.Touch, len(body.Touches))
	for i, p := range body.Touches {
		points[i] = interact.Touch{X: p.X, Y: p.Y}
	}

	switch body.Type {
	case "start":
		s.TouchStart(points)
	case "move":
		s.TouchMove(points)
	case "end":
		s.TouchEnd()
	}

	return c.JSON(http.StatusOK, s.State())
}

// navigation is the entity a client should open after a navigate action.
type navigation struct {
	Kind graph.Kind `json:"kind"`
	Name string     `json:"name"`
}

func navigator(target **navigation) interact.Navigator {
	to := func(k graph.Kind) func(string) {
		return func(name string) { *target = &navigation{Kind: k, Name: name} }
	}
	return interact.Navigator{
		OnMedia:        to(graph.KindMedia),
		OnPerson:       to(graph.KindPerson),
		OnOrganisation: to(graph.KindOrganisation),
	}
}

// ViewHandler runs a view command such as zoom, filter or search.
func ViewHandler(c echo.Context) error {
	type viewBody struct {
		Action string  `json:"action" validate:"required,oneof=zoom-in zoom-out zoom-at reset centre focus tool filter cycle-filter search select navigate resize"`
		Value  string  `json:"value" validate:"max=200"`
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Factor float64 `json:"factor" validate:"omitempty,gt=0,lte=10"`
		Width  float64 `json:"width" validate:"omitempty,gt=0"`
		Height float64 `json:"height" validate:"omitempty,gt=0"`
	}

	type viewResponse struct {
		OK       bool         `json:"ok"`
		Navigate *navigation  `json:"navigate,omitempty"`
		State    reseau.State `json:"state"`
	}

	s, ok, err := lookupSession(c)
	if !ok {
		return err
	}

	body := new(viewBody)
	if err := c.Bind(body); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(body); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{
			Message: "Invalid view action",
		})
	}

	res := viewResponse{OK: true}
	switch body.Action {
	case "zoom-in":
		s.ZoomIn()
	case "zoom-out":
		s.ZoomOut()
	case "zoom-at":
		if body.Factor == 0 {
			return c.JSON(http.StatusBadRequest, messageResponse{Message: "Missing zoom factor"})
		}
		s.ZoomAt(body.X, body.Y, body.Factor)
	case "reset":
		s.ResetView()
	case "centre":
		res.OK = s.CentreOnSelection()
	case "focus":
		res.OK = s.ToggleFocus()
	case "tool":
		tool, err := interact.ParseTool(body.Value)
		if err != nil {
			return c.JSON(http.StatusBadRequest, messageResponse{Message: "Unknown tool"})
		}
		s.SetTool(tool)
	case "filter":
		kind := graph.Kind(body.Value)
		if kind != "" && !kind.Valid() {
			return c.JSON(http.StatusBadRequest, messageResponse{Message: "Unknown kind"})
		}
		s.SetFilter(kind)
	case "cycle-filter":
		s.CycleFilter()
	case "search":
		s.SetSearch(body.Value)
	case "select":
		res.OK = s.Select(body.Value)
	case "navigate":
		res.OK = s.Navigate(navigator(&res.Navigate))
	case "resize":
		if body.Width == 0 || body.Height == 0 {
			return c.JSON(http.StatusBadRequest, messageResponse{Message: "Missing element size"})
		}
		s.Resize(geom.Rect{X: body.X, Y: body.Y, W: body.Width, H: body.Height})
	}

	res.State = s.State()
	return c.JSON(http.StatusOK, res)
}
