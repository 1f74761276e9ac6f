// Package server exposes the engine to consumers over HTTP: an SSE stream
// of tick results plus REST endpoints for history, configuration, and the
// manual boost/terminate operations.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/procboost/boostd/internal/boost"
	"github.com/procboost/boostd/internal/monitor"
	"github.com/procboost/boostd/internal/priority"
	"github.com/procboost/boostd/internal/proctab"
)

// Server serves the HTTP consumer surface for one engine.
type Server struct {
	echo   *echo.Echo
	engine *monitor.Engine
	hub    *Hub
}

// New wires a Server around engine and hub. The hub must be the engine's
// sink for the stream endpoint to carry data.
func New(engine *monitor.Engine, hub *Hub) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(log.INFO)

	s := &Server{echo: e, engine: engine, hub: hub}

	e.GET("/api/stream", s.streamHandler)
	e.GET("/api/history", s.historyHandler)
	e.GET("/api/config", s.getConfigHandler)
	e.PUT("/api/config", s.putConfigHandler)
	e.GET("/api/process/:pid", s.processDetailHandler)
	e.POST("/api/process/:pid/priority", s.setPriorityHandler)
	e.DELETE("/api/process/:pid", s.terminateHandler)

	return s
}

// Start blocks serving on addr until Shutdown or a fatal listen error.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Close immediately closes the server's listeners.
func (s *Server) Close() error {
	return s.echo.Close()
}

func (s *Server) streamHandler(c echo.Context) error {
	c.Logger().Info("SSE request received", "remote_addr", c.Request().RemoteAddr)

	resp := c.Response()
	resp.Header().Set("Content-Type", "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(resp.Writer, "event: connected\ndata: Connected to tick stream\n\n")
	resp.Flush()

	results, cancel := s.hub.Subscribe()
	defer cancel()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			c.Logger().Info("SSE client disconnected")
			return nil
		case result := <-results:
			payload, err := json.Marshal(result)
			if err != nil {
				c.Logger().Error("marshalling tick result", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(resp.Writer, "event: tick\ndata: %s\n\n", payload); err != nil {
				return nil
			}
			resp.Flush()
		}
	}
}

func (s *Server) historyHandler(c echo.Context) error {
	store := s.engine.History()
	return c.JSON(http.StatusOK, echo.Map{
		"actions": store.Actions(),
		"stats":   store.Stats(),
	})
}

// configPayload is the wire form of boost.Config, with the level spelled
// by name.
type configPayload struct {
	Enabled   bool    `json:"enabled"`
	Threshold float64 `json:"threshold"`
	Level     string  `json:"level"`
}

func (s *Server) getConfigHandler(c echo.Context) error {
	cfg := s.engine.Config().Load()
	return c.JSON(http.StatusOK, configPayload{
		Enabled:   cfg.Enabled,
		Threshold: cfg.Threshold,
		Level:     cfg.Level.String(),
	})
}

func (s *Server) putConfigHandler(c echo.Context) error {
	var payload configPayload
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(err))
	}
	level, err := priority.ParseLevel(payload.Level)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(err))
	}
	cfg := boost.Config{
		Enabled:   payload.Enabled,
		Threshold: payload.Threshold,
		Level:     level,
	}
	s.engine.Config().Store(cfg)
	return c.JSON(http.StatusOK, payload)
}

func (s *Server) processDetailHandler(c echo.Context) error {
	pid, err := parsePid(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(err))
	}
	detail, err := proctab.LookupDetail(pid)
	if err != nil {
		return c.JSON(statusFor(err), errorBody(err))
	}
	return c.JSON(http.StatusOK, detail)
}

type priorityRequest struct {
	Level string `json:"level"`
}

func (s *Server) setPriorityHandler(c echo.Context) error {
	pid, err := parsePid(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(err))
	}
	var req priorityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(err))
	}
	level, err := priority.ParseLevel(req.Level)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(err))
	}
	if err := s.engine.BoostProcess(pid, level); err != nil {
		return c.JSON(statusFor(err), errorBody(err))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"pid":   pid,
		"level": level.String(),
	})
}

func (s *Server) terminateHandler(c echo.Context) error {
	pid, err := parsePid(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(err))
	}
	if err := s.engine.TerminateProcess(pid); err != nil {
		return c.JSON(statusFor(err), errorBody(err))
	}
	return c.JSON(http.StatusOK, echo.Map{"pid": pid, "terminated": true})
}

func parsePid(c echo.Context) (int32, error) {
	pid, err := strconv.ParseInt(c.Param("pid"), 10, 32)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid %q", c.Param("pid"))
	}
	return int32(pid), nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, priority.ErrProcessVanished):
		return http.StatusNotFound
	case errors.Is(err, priority.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, priority.ErrUnsupportedLevel):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(err error) echo.Map {
	return echo.Map{"error": err.Error()}
}
