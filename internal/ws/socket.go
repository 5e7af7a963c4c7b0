package ws

import (
    "net/http"
    "sync"

    "github.com/gin-gonic/gin"
    socketio "github.com/googollee/go-socket.io"
    "github.com/kiliankoe/numberhunter/internal/config"
    "github.com/kiliankoe/numberhunter/internal/game"
    "github.com/rs/zerolog/log"
)

type ConnCtx struct {
    Code     string
    Token    string
    ViewerID string
    Role     string // "host" | "viewer"
}

type Server struct {
    RM     *game.RoomManager
    io     *socketio.Server
    config config.Config

    mu       sync.Mutex
    members  map[string]map[string]socketio.Conn // sessionCode -> socketID -> Conn
    watching map[string]*watch                   // sessionCode -> round subscription
}

type watch struct {
    rev   uint64 // last broadcast revision
    unsub func()
}

func New(rm *game.RoomManager, cfg config.Config) *Server {
    return &Server{
        RM:       rm,
        config:   cfg,
        members:  make(map[string]map[string]socketio.Conn),
        watching: make(map[string]*watch),
    }
}

// Mount attaches Socket.IO server with handlers to the given Gin engine.
func (srv *Server) Mount(r *gin.Engine) *socketio.Server {
    io := socketio.NewServer(nil)
    srv.io = io

    srv.RM.OnRoundFinished(func(s *game.Session, res game.RoundResult) {
        io.BroadcastToRoom("/", s.Code, "round:finished", res)
    })
    srv.RM.OnSessionClosed(srv.detach)

    io.OnConnect("/", func(s socketio.Conn) error {
        s.SetContext(&ConnCtx{})
        log.Info().Str("sid", s.ID()).Msg("socket connected")
        return nil
    })

    // game:create
    io.OnEvent("/", "game:create", func(s socketio.Conn, payload struct {
        Config game.SessionConfig `json:"config"`
    }) map[string]any {
        cfg := payload.Config
        if cfg.TargetCount == 0 {
            cfg.TargetCount = srv.config.DefaultTargetCount
        }
        code, hostToken, err := srv.RM.CreateSession(cfg)
        if err != nil {
            return srv.err(s, "internal", err.Error())
        }
        s.SetContext(&ConnCtx{Code: code, Token: hostToken, Role: "host"})
        srv.attach(code, s)
        log.Info().Str("sid", s.ID()).Str("code", code).Msg("game:create")
        srv.emitStateTo(s, code)
        return map[string]any{"sessionCode": code, "hostToken": hostToken}
    })

    // game:join (watch only)
    io.OnEvent("/", "game:join", func(s socketio.Conn, payload struct {
        SessionCode string `json:"sessionCode"`
        Name        string `json:"name"`
    }) map[string]any {
        sess, err := srv.RM.Get(payload.SessionCode)
        if err != nil {
            return srv.err(s, "session_not_found", "Session not found")
        }
        viewerID := sess.Join(payload.Name)
        s.SetContext(&ConnCtx{Code: payload.SessionCode, ViewerID: viewerID, Role: "viewer"})
        srv.attach(payload.SessionCode, s)
        log.Info().Str("sid", s.ID()).Str("code", payload.SessionCode).Str("viewerId", viewerID).Msg("game:join")
        srv.emitStateTo(s, payload.SessionCode)
        return map[string]any{"viewerId": viewerID}
    })

    // game:resume (host reconnection)
    io.OnEvent("/", "game:resume", func(s socketio.Conn, payload struct {
        SessionCode string `json:"sessionCode"`
        Token       string `json:"token"`
    }) map[string]any {
        sess, err := srv.RM.Get(payload.SessionCode)
        if err != nil {
            return srv.err(s, "session_not_found", "Session not found")
        }
        if err := sess.Authorize(payload.Token); err != nil {
            return srv.err(s, "unauthorized", "Invalid host token")
        }
        s.SetContext(&ConnCtx{Code: payload.SessionCode, Token: payload.Token, Role: "host"})
        srv.attach(payload.SessionCode, s)
        log.Info().Str("sid", s.ID()).Str("code", payload.SessionCode).Msg("game:resume")
        srv.emitStateTo(s, payload.SessionCode)
        return map[string]any{"ok": true}
    })

    io.OnEvent("/", "round:configure", func(s socketio.Conn, payload struct {
        TargetCount    int `json:"targetCount"`
        Width          int `json:"width"`
        Height         int `json:"height"`
        ViewportWidth  int `json:"viewportWidth"`
        ViewportHeight int `json:"viewportHeight"`
    }) map[string]any {
        sess, errOut := srv.hostSession(s)
        if errOut != nil {
            return errOut
        }
        w, h := payload.Width, payload.Height
        if (w == 0 || h == 0) && payload.ViewportWidth > 0 && payload.ViewportHeight > 0 {
            a := game.PlayArea(payload.ViewportWidth, payload.ViewportHeight)
            w, h = a.Width, a.Height
        }
        if err := sess.Round.Configure(payload.TargetCount, w, h); err != nil {
            return srv.err(s, "invalid_phase", err.Error())
        }
        return map[string]any{"ok": true}
    })

    io.OnEvent("/", "round:start", func(s socketio.Conn) map[string]any {
        sess, errOut := srv.hostSession(s)
        if errOut != nil {
            return errOut
        }
        return map[string]any{"started": sess.Round.Start()}
    })

    io.OnEvent("/", "round:click", func(s socketio.Conn, payload struct {
        TargetID string `json:"targetId"`
    }) map[string]any {
        sess, errOut := srv.hostSession(s)
        if errOut != nil {
            return errOut
        }
        return map[string]any{"result": sess.Round.Click(payload.TargetID)}
    })

    io.OnEvent("/", "round:autoplay", func(s socketio.Conn) map[string]any {
        sess, errOut := srv.hostSession(s)
        if errOut != nil {
            return errOut
        }
        return map[string]any{"autoPlay": sess.Round.ToggleAutoPlay()}
    })

    io.OnEvent("/", "round:restart", func(s socketio.Conn) map[string]any {
        sess, errOut := srv.hostSession(s)
        if errOut != nil {
            return errOut
        }
        sess.Round.Restart()
        return map[string]any{"ok": true}
    })

    io.OnError("/", func(s socketio.Conn, e error) {
        log.Error().Err(e).Msg("socket error")
    })
    io.OnDisconnect("/", func(s socketio.Conn, reason string) {
        if ctx, ok := s.Context().(*ConnCtx); ok && ctx.Code != "" {
            srv.removeMember(ctx.Code, s)
            if ctx.ViewerID != "" {
                if sess, err := srv.RM.Get(ctx.Code); err == nil {
                    sess.Leave(ctx.ViewerID)
                }
            }
        }
        log.Info().Str("sid", s.ID()).Str("reason", reason).Msg("socket disconnected")
    })

    go func() {
        if err := io.Serve(); err != nil {
            log.Error().Err(err).Msg("socket.io serve")
        }
    }()

    // Mount to router
    r.GET("/socket.io/*any", gin.WrapH(io))
    r.POST("/socket.io/*any", gin.WrapH(io))

    // Basic CORS preflight for Socket.IO POST
    r.OPTIONS("/socket.io/*any", func(c *gin.Context) {
        c.Header("Access-Control-Allow-Origin", "*")
        c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
        c.Header("Access-Control-Allow-Headers", "Content-Type")
        c.Status(http.StatusNoContent)
    })

    return io
}

// attach joins the connection to the session room and makes sure the
// session's round publishes to that room.
func (srv *Server) attach(code string, c socketio.Conn) {
    c.Join(code)
    srv.mu.Lock()
    if srv.members[code] == nil {
        srv.members[code] = make(map[string]socketio.Conn)
    }
    srv.members[code][c.ID()] = c
    w := srv.watching[code]
    if w != nil {
        srv.mu.Unlock()
        return
    }
    w = &watch{}
    srv.watching[code] = w
    srv.mu.Unlock()

    sess, err := srv.RM.Get(code)
    if err != nil {
        srv.detach(code)
        return
    }
    unsub := sess.Round.Subscribe(func(snap game.Snapshot) { srv.publish(code, snap) })
    srv.mu.Lock()
    if srv.watching[code] == w {
        w.unsub = unsub
        unsub = nil
    }
    srv.mu.Unlock()
    // session went away while subscribing
    if unsub != nil {
        unsub()
    }
}

// detach drops all bookkeeping for a closed session.
func (srv *Server) detach(code string) {
    srv.mu.Lock()
    w := srv.watching[code]
    delete(srv.watching, code)
    delete(srv.members, code)
    srv.mu.Unlock()
    if w != nil && w.unsub != nil {
        w.unsub()
    }
}

// publish sends the full board when it changed and a light tick otherwise.
// Snapshots can reach it out of order; older revisions are dropped.
func (srv *Server) publish(code string, snap game.Snapshot) {
    srv.mu.Lock()
    defer srv.mu.Unlock()
    event := srv.eventFor(code, snap.Revision)
    if event == "" || srv.io == nil {
        return
    }
    if event == "round:tick" {
        srv.io.BroadcastToRoom("/", code, event, map[string]any{"elapsed": snap.Elapsed, "state": snap.State})
        return
    }
    srv.io.BroadcastToRoom("/", code, event, snap)
}

// eventFor picks the event for a snapshot revision. Caller holds mu.
func (srv *Server) eventFor(code string, rev uint64) string {
    w := srv.watching[code]
    if w == nil {
        return ""
    }
    switch {
    case rev > w.rev:
        w.rev = rev
        return "game:state"
    case rev == w.rev:
        return "round:tick"
    default:
        return ""
    }
}

func (srv *Server) removeMember(code string, c socketio.Conn) {
    srv.mu.Lock()
    defer srv.mu.Unlock()
    if m := srv.members[code]; m != nil {
        delete(m, c.ID())
    }
}

// Members returns the number of connections watching a session.
func (srv *Server) Members(code string) int {
    srv.mu.Lock()
    defer srv.mu.Unlock()
    return len(srv.members[code])
}

func (srv *Server) emitStateTo(c socketio.Conn, code string) {
    sess, err := srv.RM.Get(code)
    if err != nil {
        return
    }
    ctx, _ := c.Context().(*ConnCtx)
    you := map[string]any{"role": ctx.Role}
    if ctx.ViewerID != "" {
        you["viewerId"] = ctx.ViewerID
    }
    c.Emit("game:state", sess.Round.Snapshot())
    c.Emit("game:session", map[string]any{
        "sessionCode": code,
        "you":         you,
        "viewers":     sess.Viewers(),
        "results":     sess.Results(),
    })
}

// hostSession resolves the caller's session and checks it is the host.
func (srv *Server) hostSession(s socketio.Conn) (*game.Session, map[string]any) {
    ctx, ok := s.Context().(*ConnCtx)
    if !ok || ctx.Code == "" {
        return nil, srv.err(s, "session_not_found", "Session not found")
    }
    sess, err := srv.RM.Get(ctx.Code)
    if err != nil {
        return nil, srv.err(s, "session_not_found", "Session not found")
    }
    if ctx.Role != "host" || sess.Authorize(ctx.Token) != nil {
        return nil, srv.err(s, "unauthorized", "Only the host can play")
    }
    return sess, nil
}

func (srv *Server) err(s socketio.Conn, code, message string) map[string]any {
    s.Emit("error", map[string]any{"code": code, "message": message})
    return map[string]any{"error": message}
}
