// Package server feeds the browser viewer: the program model over HTTP and
// playback over a websocket per viewer.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	gcode "github.com/leftmike/gcsim"
	"github.com/leftmike/gcsim/internal/logging"
	"github.com/leftmike/gcsim/internal/workspace"
	"github.com/leftmike/gcsim/playback"
)

type Options struct {
	Playback   []playback.Option
	RapidRate  float64 // mm per minute, for the estimated time
	Tessellate bool    // send arc points with arc commands
	ArcStep    float64
	Logger     *slog.Logger
}

type Server struct {
	ws       *workspace.Workspace
	opts     Options
	logger   *slog.Logger
	mux      *http.ServeMux
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*session
}

func New(ws *workspace.Workspace, opts Options) *Server {
	if opts.ArcStep <= 0.0 {
		opts.ArcStep = 0.5
	}
	s := &Server{
		ws:     ws,
		opts:   opts,
		logger: logging.Component(opts.Logger, "server"),
		mux:    http.NewServeMux(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // local viewer
			},
		},
		sessions: map[string]*session{},
	}

	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /program", s.handleProgram)
	s.mux.HandleFunc("GET /source", s.handleSource)
	s.mux.HandleFunc("GET /ws", s.handleWebsocket)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type command struct {
	gcode.MotionCommand
	Points []gcode.Position `json:"points,omitempty"`
}

type programPayload struct {
	Revision    int                `json:"revision"`
	Path        string             `json:"path,omitempty"`
	TotalLines  int                `json:"totalLines"`
	EndLine     int                `json:"endLine,omitempty"`
	Initial     gcode.Position     `json:"initial"`
	Commands    []command          `json:"commands"`
	Bounds      gcode.Box          `json:"bounds"`
	Diagnostics []gcode.Diagnostic `json:"diagnostics"`
	Stats       gcode.Stats        `json:"stats"`
}

func (s *Server) programPayload(p *gcode.Program, rev int) programPayload {
	pp := programPayload{
		Revision:    rev,
		Path:        s.ws.Path(),
		TotalLines:  p.TotalLines,
		EndLine:     p.EndLine,
		Initial:     p.Initial.Position,
		Commands:    make([]command, 0, len(p.Commands)),
		Bounds:      p.Bounds,
		Diagnostics: p.Diagnostics,
		Stats:       gcode.Analyze(p, s.opts.RapidRate),
	}
	if pp.Diagnostics == nil {
		pp.Diagnostics = []gcode.Diagnostic{}
	}
	for _, cmd := range p.Commands {
		c := command{MotionCommand: cmd}
		if s.opts.Tessellate && cmd.Kind.IsArc() {
			c.Points = gcode.Tessellate(cmd, s.opts.ArcStep)
		}
		pp.Commands = append(pp.Commands, c)
	}
	return pp
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

func (s *Server) handleProgram(w http.ResponseWriter, r *http.Request) {
	p, rev := s.ws.Current()
	writeJSON(w, s.programPayload(p, rev))
}

func (s *Server) handleSource(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	err := s.ws.Export(w)
	if err != nil {
		s.logger.Error("source", "error", err)
	}
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade", "error", err)
		return
	}

	sess := s.newSession(conn)
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	sess.serve(s.ws.Current())

	s.mu.Lock()
	delete(s.sessions, sess.id)
	s.mu.Unlock()
}

// Sessions returns the number of connected viewers.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Reload sends a new program to every viewer; each keeps its position.
func (s *Server) Reload(p *gcode.Program, rev int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("reload", "revision", rev, "sessions", len(s.sessions))
	for _, sess := range s.sessions {
		sess.reload(p, rev)
	}
}

func (s *Server) closeSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions {
		sess.close()
	}
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return s.Serve(ctx, l)
}

func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
		s.closeSessions()
	}()

	s.logger.Info("listening", "addr", l.Addr().String())
	err := srv.Serve(l)
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		return nil
	}
	return fmt.Errorf("server: %w", err)
}
