package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procboost/boostd/internal/boost"
	"github.com/procboost/boostd/internal/history"
	"github.com/procboost/boostd/internal/monitor"
	"github.com/procboost/boostd/internal/priority"
)

type stubMapper struct {
	setErr  error
	termErr error
	setPids []int32
}

func (m *stubMapper) SetPriority(pid int32, level priority.Level) error {
	m.setPids = append(m.setPids, pid)
	return m.setErr
}

func (m *stubMapper) Terminate(pid int32) error { return m.termErr }

func newTestServer(mapper priority.Mapper) *Server {
	engine := monitor.NewEngine(monitor.Options{
		Mapper:  mapper,
		Config:  monitor.NewConfigStore(boost.DefaultConfig()),
		History: history.NewStore(100, 60),
	})
	return New(engine, NewHub())
}

func doRequest(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func TestGetConfigDefaults(t *testing.T) {
	s := newTestServer(&stubMapper{})

	rec := doRequest(s, http.MethodGet, "/api/config", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var payload configPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.False(t, payload.Enabled)
	assert.Equal(t, 50.0, payload.Threshold)
	assert.Equal(t, "high", payload.Level)
}

func TestPutConfigRoundTrip(t *testing.T) {
	s := newTestServer(&stubMapper{})

	rec := doRequest(s, http.MethodPut, "/api/config",
		`{"enabled":true,"threshold":65,"level":"very-high"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	cfg := s.engine.Config().Load()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 65.0, cfg.Threshold)
	assert.Equal(t, priority.VeryHigh, cfg.Level)
}

func TestPutConfigRejectsUnknownLevel(t *testing.T) {
	s := newTestServer(&stubMapper{})

	rec := doRequest(s, http.MethodPut, "/api/config",
		`{"enabled":true,"threshold":65,"level":"ludicrous"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetPriorityEndpoint(t *testing.T) {
	mapper := &stubMapper{}
	s := newTestServer(mapper)

	rec := doRequest(s, http.MethodPost, "/api/process/123/priority", `{"level":"high"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int32{123}, mapper.setPids)

	actions := s.engine.History().Actions()
	require.Len(t, actions, 1)
	assert.Equal(t, history.KindBoost, actions[0].Kind)
}

func TestSetPriorityVanishedIs404(t *testing.T) {
	s := newTestServer(&stubMapper{setErr: priority.ErrProcessVanished})

	rec := doRequest(s, http.MethodPost, "/api/process/123/priority", `{"level":"high"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetPriorityDeniedIs403(t *testing.T) {
	s := newTestServer(&stubMapper{setErr: priority.ErrAccessDenied})

	rec := doRequest(s, http.MethodPost, "/api/process/123/priority", `{"level":"high"}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSetPriorityBadPid(t *testing.T) {
	s := newTestServer(&stubMapper{})

	rec := doRequest(s, http.MethodPost, "/api/process/nope/priority", `{"level":"high"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTerminateEndpoint(t *testing.T) {
	s := newTestServer(&stubMapper{})

	rec := doRequest(s, http.MethodDelete, "/api/process/123", "")

	require.Equal(t, http.StatusOK, rec.Code)
	actions := s.engine.History().Actions()
	require.Len(t, actions, 1)
	assert.Equal(t, history.KindKill, actions[0].Kind)
}

func TestHistoryEndpoint(t *testing.T) {
	s := newTestServer(&stubMapper{})
	s.engine.History().AppendAction(history.NewEntry(history.KindAutoBoost, "boosted pid 1"))

	rec := doRequest(s, http.MethodGet, "/api/history", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Actions []history.Entry `json:"actions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Actions, 1)
	assert.Equal(t, "boosted pid 1", body.Actions[0].Message)
}
