package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
)

type executeReq struct {
	Action     string         `json:"action" validate:"required"`
	Parameters map[string]any `json:"parameters"`
}

// Response is the envelope for every action result. Data is null on failure
// and Error is null on success.
type Response struct {
	Success bool    `json:"success"`
	Data    any     `json:"data"`
	Error   *string `json:"error"`
}

func failure(msg string) Response {
	return Response{Success: false, Error: &msg}
}

// POST /agent/execute
func (s *Server) handlePostExecute(c echo.Context) error {
	var req executeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failure("invalid json"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failure("missing action"))
	}

	reqID := c.Response().Header().Get(echo.HeaderXRequestID)
	log.Info("executing action", "action", req.Action, "request_id", reqID)

	data, err := s.Agent.Execute(c.Request().Context(), req.Action, req.Parameters)
	if err != nil {
		log.Error("action failed", "action", req.Action, "request_id", reqID, "err", err)
		return c.JSON(http.StatusOK, failure(err.Error()))
	}

	return c.JSON(http.StatusOK, Response{Success: true, Data: data})
}
