package game

import (
    "crypto/subtle"
    "errors"
    "math/rand"
    "sort"
    "sync"
    "time"

    "github.com/google/uuid"
    "github.com/rs/zerolog"
    "github.com/rs/zerolog/log"
)

var (
    ErrSessionNotFound = errors.New("session not found")
    ErrNotHost         = errors.New("not host")
    ErrInvalidPhase    = errors.New("invalid phase for action")
)

type Session struct {
    Code      string
    CreatedAt time.Time
    HostToken string
    Round     *Round

    viewers map[string]*Viewer
    results []RoundResult

    mu sync.Mutex
}

type RoomManager struct {
    mu        sync.RWMutex
    sessions  map[string]*Session
    active    string // most recently created session
    single    bool
    roundOpts []Option
    finished  []func(*Session, RoundResult)
    closed    []func(code string)
}

// NewRoomManager creates a manager whose rounds are built with opts.
func NewRoomManager(opts ...Option) *RoomManager {
    return &RoomManager{sessions: make(map[string]*Session), roundOpts: opts}
}

// SetSingleSession makes CreateSession close every other session.
func (rm *RoomManager) SetSingleSession(on bool) {
    rm.mu.Lock()
    defer rm.mu.Unlock()
    rm.single = on
}

// OnRoundFinished registers fn for every round that ends in any session.
// Must be called before sessions are created.
func (rm *RoomManager) OnRoundFinished(fn func(*Session, RoundResult)) {
    rm.mu.Lock()
    defer rm.mu.Unlock()
    rm.finished = append(rm.finished, fn)
}

// OnSessionClosed registers fn for every session that is closed, evicted by
// single-session mode or torn down by CloseAll. fn runs without the manager
// lock held.
func (rm *RoomManager) OnSessionClosed(fn func(code string)) {
    rm.mu.Lock()
    defer rm.mu.Unlock()
    rm.closed = append(rm.closed, fn)
}

func (rm *RoomManager) CreateSession(cfg SessionConfig) (code string, hostToken string, err error) {
    rm.mu.Lock()
    var evicted []string
    defer func() {
        hooks := append([]func(string){}, rm.closed...)
        rm.mu.Unlock()
        fireClosed(hooks, evicted)
    }()

    if rm.single {
        for c, s := range rm.sessions {
            s.Round.Close()
            delete(rm.sessions, c)
            evicted = append(evicted, c)
        }
    }

    code = randomCode(5)
    for rm.sessions[code] != nil {
        code = randomCode(5)
    }
    hostToken = uuid.NewString()

    logger := log.Logger.With().Str("code", code).Logger()
    opts := append(append([]Option{}, rm.roundOpts...), WithLogger(logger))
    s := &Session{
        Code:      code,
        CreatedAt: time.Now().UTC(),
        HostToken: hostToken,
        Round:     NewRound(cfg, opts...),
        viewers:   make(map[string]*Viewer),
    }
    finished := append([]func(*Session, RoundResult){}, rm.finished...)
    s.Round.OnFinish(func(res RoundResult) {
        s.mu.Lock()
        s.results = append(s.results, res)
        s.mu.Unlock()
        for _, fn := range finished {
            fn(s, res)
        }
    })

    rm.sessions[code] = s
    rm.active = code
    logger.Info().Int("n", s.Round.Config().TargetCount).Msg("session created")
    return code, hostToken, nil
}

func (rm *RoomManager) Get(code string) (*Session, error) {
    rm.mu.RLock()
    defer rm.mu.RUnlock()
    s := rm.sessions[code]
    if s == nil {
        return nil, ErrSessionNotFound
    }
    return s, nil
}

func (rm *RoomManager) Active() (string, *Session) {
    rm.mu.RLock()
    defer rm.mu.RUnlock()
    if rm.active == "" {
        return "", nil
    }
    return rm.active, rm.sessions[rm.active]
}

// Close tears down a session and its round.
func (rm *RoomManager) Close(code string) error {
    rm.mu.Lock()
    s := rm.sessions[code]
    if s == nil {
        rm.mu.Unlock()
        return ErrSessionNotFound
    }
    s.Round.Close()
    delete(rm.sessions, code)
    if rm.active == code {
        rm.active = ""
    }
    hooks := append([]func(string){}, rm.closed...)
    rm.mu.Unlock()
    fireClosed(hooks, []string{code})
    return nil
}

// CloseAll tears down every session, used on shutdown.
func (rm *RoomManager) CloseAll() {
    rm.mu.Lock()
    var codes []string
    for code, s := range rm.sessions {
        s.Round.Close()
        delete(rm.sessions, code)
        codes = append(codes, code)
    }
    rm.active = ""
    hooks := append([]func(string){}, rm.closed...)
    rm.mu.Unlock()
    fireClosed(hooks, codes)
}

func fireClosed(hooks []func(string), codes []string) {
    for _, code := range codes {
        for _, fn := range hooks {
            fn(code)
        }
    }
}

func (rm *RoomManager) Len() int {
    rm.mu.RLock()
    defer rm.mu.RUnlock()
    return len(rm.sessions)
}

// Authorize checks a host token.
func (s *Session) Authorize(hostToken string) error {
    if subtle.ConstantTimeCompare([]byte(hostToken), []byte(s.HostToken)) != 1 {
        return ErrNotHost
    }
    return nil
}

// Join registers a viewer that may watch but not play.
func (s *Session) Join(name string) string {
    s.mu.Lock()
    defer s.mu.Unlock()
    v := &Viewer{ID: uuid.NewString(), Name: name, JoinedAt: time.Now().UTC()}
    s.viewers[v.ID] = v
    return v.ID
}

func (s *Session) Leave(viewerID string) {
    s.mu.Lock()
    defer s.mu.Unlock()
    delete(s.viewers, viewerID)
}

func (s *Session) Viewers() []*Viewer {
    s.mu.Lock()
    defer s.mu.Unlock()
    out := make([]*Viewer, 0, len(s.viewers))
    for _, v := range s.viewers {
        out = append(out, &Viewer{ID: v.ID, Name: v.Name, JoinedAt: v.JoinedAt})
    }
    sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
    return out
}

func (s *Session) Results() []RoundResult {
    s.mu.Lock()
    defer s.mu.Unlock()
    return append([]RoundResult(nil), s.results...)
}

// Best returns the fastest cleared round, if any.
func (s *Session) Best() (RoundResult, bool) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var best RoundResult
    found := false
    for _, r := range s.results {
        if r.Outcome != OutcomeCleared {
            continue
        }
        if !found || r.TargetCount > best.TargetCount || (r.TargetCount == best.TargetCount && r.Elapsed < best.Elapsed) {
            best = r
            found = true
        }
    }
    return best, found
}

// Logger returns a logger tagged with the session code.
func (s *Session) Logger() zerolog.Logger {
    return log.Logger.With().Str("code", s.Code).Logger()
}

func randomCode(n int) string {
    letters := []rune("ABCDEFGHJKLMNPQRSTUVWXYZ23456789")
    b := make([]rune, n)
    for i := range b {
        b[i] = letters[rand.Intn(len(letters))]
    }
    return string(b)
}
