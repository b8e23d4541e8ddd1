package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/maze-rl/policies"
	"github.com/zeu5/maze-rl/types"
)

func newTestServer(t *testing.T) (*Server, *policies.QTable, context.Context) {
	t.Helper()
	table, err := policies.NewQTable(2, 2)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewServer(ctx, "127.0.0.1:0", "run-1", table, cancel, nil), table, ctx
}

func do(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestStatusFollowsSteps(t *testing.T) {
	s, _, _ := newTestServer(t)
	require.NoError(t, s.OnStep(types.StepInfo{Episode: 4, Step: 2, Mode: types.ModeExploitation, NextState: 1, Epsilon: 0.25}))

	rec := do(t, s, http.MethodGet, "/status")
	require.Equal(t, http.StatusOK, rec.Code)
	var status Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, Status{RunID: "run-1", Episode: 4, Step: 2, Mode: "exploitation", Epsilon: 0.25, State: 1}, status)
}

func TestTableSnapshot(t *testing.T) {
	s, table, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/qtable")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, table.Set(1, 0, 2))
	require.NoError(t, s.OnEpisodeEnd(types.EpisodeSummary{Episode: 0}))
	// later writes are not visible until the next episode ends
	require.NoError(t, table.Set(0, 0, 5))

	rec = do(t, s, http.MethodGet, "/qtable")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0.000000,0.000000,\n2.000000,0.000000,\n", rec.Body.String())
}

func TestStopCancels(t *testing.T) {
	s, _, ctx := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/stop")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.ErrorIs(t, ctx.Err(), context.Canceled)

	rec = do(t, s, http.MethodGet, "/status")
	assert.Contains(t, rec.Body.String(), `"stopping":true`)
}

func TestStartServesAndStops(t *testing.T) {
	s, _, ctx := newTestServer(t)
	require.NoError(t, s.Start())
	assert.NotEqual(t, "127.0.0.1:0", s.Addr)

	resp, err := http.Get("http://" + s.Addr + "/status")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post("http://"+s.Addr+"/stop", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestStartFailsOnTakenPort(t *testing.T) {
	first, _, _ := newTestServer(t)
	require.NoError(t, first.Start())

	second := NewServer(context.Background(), first.Addr, "run-2", first.table, func() {}, nil)
	err := second.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), first.Addr)
}
