package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/zeu5/maze-rl/types"
)

type Status struct {
	RunID    string  `json:"run_id"`
	Episode  int     `json:"episode"`
	Step     int     `json:"step"`
	Mode     string  `json:"mode"`
	Epsilon  float64 `json:"epsilon"`
	State    int     `json:"state"`
	Stopping bool    `json:"stopping"`
}

// Server exposes a running session over HTTP. It only sees snapshots
// taken on the agent's side, never the live table.
type Server struct {
	Addr   string
	ctx    context.Context
	server *http.Server
	logger log.Logger

	table io.WriterTo
	stop  context.CancelFunc

	lock   *sync.Mutex
	status Status
	dump   []byte
}

var _ types.Observer = &Server{}

// NewServer serves until ctx is done. stop is called on POST /stop
func NewServer(ctx context.Context, addr, runID string, table io.WriterTo, stop context.CancelFunc, logger log.Logger) *Server {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	s := &Server{
		Addr:   addr,
		ctx:    ctx,
		logger: logger,
		table:  table,
		stop:   stop,
		lock:   new(sync.Mutex),
		status: Status{RunID: runID, Mode: types.ModeTraining.String()},
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.GET("/status", s.handleStatus)
	r.GET("/qtable", s.handleTable)
	r.POST("/stop", s.handleStop)
	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start binds Addr and serves in the background. A failed bind is
// returned, Addr is updated to the bound address.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.Addr, err)
	}
	s.Addr = ln.Addr().String()

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			level.Error(s.logger).Log("msg", "http server failed", "addr", s.Addr, "err", err)
		}
	}()

	go func() {
		<-s.ctx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.server.Shutdown(ctx)
	}()
	return nil
}

func (s *Server) OnStep(info types.StepInfo) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.status.Episode = info.Episode
	s.status.Step = info.Step
	s.status.Mode = info.Mode.String()
	s.status.Epsilon = info.Epsilon
	s.status.State = int(info.NextState)
	return nil
}

func (s *Server) OnEpisodeEnd(e types.EpisodeSummary) error {
	var buf bytes.Buffer
	if _, err := s.table.WriteTo(&buf); err != nil {
		return err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.status.Episode = e.Episode
	s.status.Epsilon = e.Epsilon
	s.dump = buf.Bytes()
	return nil
}

func (s *Server) handleStatus(c *gin.Context) {
	s.lock.Lock()
	status := s.status
	s.lock.Unlock()
	c.JSON(http.StatusOK, status)
}

func (s *Server) handleTable(c *gin.Context) {
	s.lock.Lock()
	dump := s.dump
	s.lock.Unlock()
	if dump == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no episode finished yet"})
		return
	}
	c.Data(http.StatusOK, "text/csv; charset=utf-8", dump)
}

func (s *Server) handleStop(c *gin.Context) {
	s.lock.Lock()
	s.status.Stopping = true
	s.lock.Unlock()
	level.Info(s.logger).Log("msg", "stop requested over http", "remote", c.ClientIP())
	s.stop()
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}
