package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	gcode "github.com/leftmike/gcsim"
	"github.com/leftmike/gcsim/playback"
)

const (
	pongWait   = 120 * time.Second
	pingPeriod = 50 * time.Second
	writeWait  = 10 * time.Second
)

// Client messages
const (
	msgPlay     = "play"
	msgPause    = "pause"
	msgStop     = "stop"
	msgForward  = "forward"
	msgBackward = "backward"
	msgSeek     = "seek"
	msgSpeed    = "speed"
)

// Server messages
const (
	msgSnapshot = "snapshot"
	msgProgram  = "program"
	msgError    = "error"
)

type clientMessage struct {
	Type  string  `json:"type"`
	Index int     `json:"index,omitempty"`
	Speed float64 `json:"speed,omitempty"`
}

type serverMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// session is one viewer. The controller belongs to the goroutine running
// playback.Run; everything else reaches it through ops.
type session struct {
	id     string
	srv    *Server
	conn   *websocket.Conn
	ctrl   *playback.Controller
	ops    chan playback.Op
	out    chan serverMessage
	snaps  chan playback.Snapshot // holds only the latest snapshot
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger
}

func (s *Server) newSession(conn *websocket.Conn) *session {
	ctx, cancel := context.WithCancel(context.Background())
	sess := &session{
		id:     uuid.NewString(),
		srv:    s,
		conn:   conn,
		ops:    make(chan playback.Op),
		out:    make(chan serverMessage, 16),
		snaps:  make(chan playback.Snapshot, 1),
		ctx:    ctx,
		cancel: cancel,
	}
	sess.logger = s.logger.With("session", sess.id)

	opts := append([]playback.Option{}, s.opts.Playback...)
	opts = append(opts, playback.WithLogger(sess.logger), playback.WithObserver(sess.sendSnapshot))
	sess.ctrl = playback.New(opts...)
	return sess
}

func (sess *session) sendSnapshot(snap playback.Snapshot) {
	for {
		select {
		case sess.snaps <- snap:
			return
		default:
		}
		select {
		case <-sess.snaps:
		default:
		}
	}
}

func (sess *session) send(msg serverMessage) {
	select {
	case sess.out <- msg:
	case <-sess.ctx.Done():
	}
}

func (sess *session) sendError(code, message string) {
	sess.send(serverMessage{Type: msgError, Payload: errorPayload{Code: code, Message: message}})
}

func (sess *session) do(op playback.Op) {
	select {
	case sess.ops <- op:
	case <-sess.ctx.Done():
	}
}

func (sess *session) close() {
	sess.cancel()
	sess.conn.Close()
}

// serve runs the session until the viewer goes away.
func (sess *session) serve(p *gcode.Program, rev int) {
	defer sess.close()
	sess.logger.Info("connected", "remote", sess.conn.RemoteAddr().String())

	sess.send(serverMessage{Type: msgProgram, Payload: sess.srv.programPayload(p, rev)})
	sess.ctrl.Load(p)

	go sess.writeLoop()
	go playback.Run(sess.ctx, sess.ctrl, sess.ops)

	sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	sess.conn.SetPongHandler(func(string) error {
		sess.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg clientMessage
		err := sess.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway,
				websocket.CloseNormalClosure) {
				sess.logger.Error("read", "error", err)
			} else {
				sess.logger.Info("disconnected")
			}
			return
		}

		op := clientOp(msg)
		if op == nil {
			sess.sendError("unknown_type", "unknown message type: "+msg.Type)
			continue
		}
		sess.do(op)
	}
}

func clientOp(msg clientMessage) playback.Op {
	switch msg.Type {
	case msgPlay:
		return (*playback.Controller).Play
	case msgPause:
		return (*playback.Controller).Pause
	case msgStop:
		return (*playback.Controller).Stop
	case msgForward:
		return (*playback.Controller).StepForward
	case msgBackward:
		return (*playback.Controller).StepBackward
	case msgSeek:
		return func(c *playback.Controller) {
			c.Seek(msg.Index)
		}
	case msgSpeed:
		return func(c *playback.Controller) {
			c.SetSpeed(msg.Speed)
		}
	}
	return nil
}

// reload sends the new program before any snapshot of it.
func (sess *session) reload(p *gcode.Program, rev int) {
	msg := serverMessage{Type: msgProgram, Payload: sess.srv.programPayload(p, rev)}
	go sess.do(func(c *playback.Controller) {
		sess.send(msg)
		st := c.State()
		c.Load(p)
		c.Seek(st.Index)
		if c.State().Index < p.Len() {
			switch st.Status {
			case playback.Playing:
				c.Play()
			case playback.Paused:
				c.Play()
				c.Pause()
			}
		}
	})
}

// writeLoop is the only writer to the connection. Queued messages go out
// before the latest snapshot.
func (sess *session) writeLoop() {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case msg := <-sess.out:
			if !sess.write(msg) {
				return
			}
			continue
		default:
		}

		select {
		case <-sess.ctx.Done():
			return
		case msg := <-sess.out:
			if !sess.write(msg) {
				return
			}
		case snap := <-sess.snaps:
			if !sess.write(serverMessage{Type: msgSnapshot, Payload: snap}) {
				return
			}
		case <-ping.C:
			sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := sess.conn.WriteMessage(websocket.PingMessage, nil)
			if err != nil {
				sess.logger.Debug("ping", "error", err)
				sess.close()
				return
			}
		}
	}
}

func (sess *session) write(msg serverMessage) bool {
	sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := sess.conn.WriteJSON(msg)
	if err != nil {
		sess.logger.Debug("write", "type", msg.Type, "error", err)
		sess.close()
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
