package game

import (
	"testing"
	"time"

	"github.com/kiliankoe/numberhunter/internal/clock"
)

func TestNewRoomManager(t *testing.T) {
	rm := NewRoomManager()
	if rm.sessions == nil {
		t.Fatal("sessions map should be initialized")
	}
	if code, s := rm.Active(); code != "" || s != nil {
		t.Fatal("active session should be empty initially")
	}
}

func TestCreateSession(t *testing.T) {
	rm := NewRoomManager()
	code, hostToken, err := rm.CreateSession(SessionConfig{TargetCount: 25, Width: 600, Height: 400})
	if err != nil {
		t.Fatalf("should be able to create session: %v", err)
	}
	if len(code) != 5 {
		t.Fatalf("expected 5 character code, got %q", code)
	}
	if hostToken == "" {
		t.Fatal("host token should not be empty")
	}

	session, err := rm.Get(code)
	if err != nil {
		t.Fatalf("should be able to retrieve created session: %v", err)
	}
	if session.Code != code || session.HostToken != hostToken {
		t.Fatal("session identity mismatch")
	}
	if session.Round.State() != StateSetup {
		t.Fatalf("expected Setup, got %s", session.Round.State())
	}
	if session.Round.Config().TargetCount != 25 {
		t.Fatalf("expected 25 targets, got %d", session.Round.Config().TargetCount)
	}
	if active, _ := rm.Active(); active != code {
		t.Fatalf("expected active %s, got %s", code, active)
	}
}

func TestGetUnknownSession(t *testing.T) {
	rm := NewRoomManager()
	if _, err := rm.Get("NOPE1"); err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if err := rm.Close("NOPE1"); err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestAuthorize(t *testing.T) {
	rm := NewRoomManager()
	code, hostToken, _ := rm.CreateSession(SessionConfig{TargetCount: 5})
	s, _ := rm.Get(code)
	if err := s.Authorize(hostToken); err != nil {
		t.Fatalf("host token should authorize: %v", err)
	}
	if err := s.Authorize("invalid-token"); err != ErrNotHost {
		t.Fatalf("expected ErrNotHost, got %v", err)
	}
}

func TestViewers(t *testing.T) {
	rm := NewRoomManager()
	code, _, _ := rm.CreateSession(SessionConfig{TargetCount: 5})
	s, _ := rm.Get(code)

	a := s.Join("Alice")
	b := s.Join("Bob")
	if a == "" || a == b {
		t.Fatal("viewer ids should be unique")
	}
	if got := len(s.Viewers()); got != 2 {
		t.Fatalf("expected 2 viewers, got %d", got)
	}
	s.Leave(a)
	v := s.Viewers()
	if len(v) != 1 || v[0].Name != "Bob" {
		t.Fatalf("unexpected viewers after leave: %+v", v)
	}
}

func TestCloseSessionStopsRound(t *testing.T) {
	clk := clock.NewMock(time.Unix(0, 0))
	rm := NewRoomManager(WithClock(clk))
	code, _, _ := rm.CreateSession(SessionConfig{TargetCount: 5})
	s, _ := rm.Get(code)
	s.Round.Start()

	if err := rm.Close(code); err != nil {
		t.Fatal(err)
	}
	if s.Round.PendingTimers() != 0 {
		t.Fatal("closing a session must cancel its timers")
	}
	if _, err := rm.Get(code); err != ErrSessionNotFound {
		t.Fatal("closed session should be gone")
	}
	if active, _ := rm.Active(); active != "" {
		t.Fatal("closed session should no longer be active")
	}
}

func TestSessionClosedHooks(t *testing.T) {
	rm := NewRoomManager()
	var closed []string
	rm.OnSessionClosed(func(code string) { closed = append(closed, code) })

	a, _, _ := rm.CreateSession(SessionConfig{TargetCount: 5})
	if err := rm.Close(a); err != nil {
		t.Fatal(err)
	}
	if len(closed) != 1 || closed[0] != a {
		t.Fatalf("expected close hook for %s, got %v", a, closed)
	}
	if err := rm.Close(a); err != ErrSessionNotFound {
		t.Fatalf("second close: %v", err)
	}
	if len(closed) != 1 {
		t.Fatalf("hook must not fire for unknown sessions: %v", closed)
	}

	rm.SetSingleSession(true)
	b, _, _ := rm.CreateSession(SessionConfig{TargetCount: 5})
	rm.CreateSession(SessionConfig{TargetCount: 5})
	if len(closed) != 2 || closed[1] != b {
		t.Fatalf("expected eviction hook for %s, got %v", b, closed)
	}

	rm.CloseAll()
	if len(closed) != 3 || rm.Len() != 0 {
		t.Fatalf("expected CloseAll hook, got %v", closed)
	}
}

func TestSingleSessionMode(t *testing.T) {
	rm := NewRoomManager()
	rm.SetSingleSession(true)
	first, _, _ := rm.CreateSession(SessionConfig{TargetCount: 5})
	second, _, _ := rm.CreateSession(SessionConfig{TargetCount: 5})
	if rm.Len() != 1 {
		t.Fatalf("expected one session, got %d", rm.Len())
	}
	if _, err := rm.Get(first); err != ErrSessionNotFound {
		t.Fatal("first session should be closed")
	}
	if _, err := rm.Get(second); err != nil {
		t.Fatal("second session should exist")
	}
}

func TestRoundResultsRecorded(t *testing.T) {
	clk := clock.NewMock(time.Unix(0, 0))
	rm := NewRoomManager(WithClock(clk))
	var exported []RoundResult
	rm.OnRoundFinished(func(_ *Session, res RoundResult) { exported = append(exported, res) })

	code, _, _ := rm.CreateSession(SessionConfig{TargetCount: 3, AutoPlay: true})
	s, _ := rm.Get(code)
	s.Round.Start()
	clk.Advance(3 * time.Second)

	s.Round.Restart()
	s.Round.Start()
	// Click the wrong target right away.
	for _, tg := range s.Round.Snapshot().Targets {
		if tg.Number == 2 {
			s.Round.Click(tg.ID)
		}
	}
	clk.Advance(time.Second)

	results := s.Results()
	if len(results) != 2 || len(exported) != 2 {
		t.Fatalf("expected 2 results, got %d (exported %d)", len(results), len(exported))
	}
	if results[0].Outcome != OutcomeCleared || results[1].Outcome != OutcomeGameOver {
		t.Fatalf("unexpected outcomes %+v", results)
	}
	if results[1].Index != 2 {
		t.Fatalf("expected second round index 2, got %d", results[1].Index)
	}
	best, ok := s.Best()
	if !ok || best.Index != 1 {
		t.Fatalf("expected best round 1, got %+v (%v)", best, ok)
	}
}
