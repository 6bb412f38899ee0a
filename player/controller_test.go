package player

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// fakePlayer records calls and lets tests drive its status
type fakePlayer struct {
	mu       sync.Mutex
	status   Status
	captions []string
	muted    bool
	loads    []string
	plays    int
	loadErr  error
}

func (f *fakePlayer) SetCaption(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.captions = append(f.captions, text)
	return nil
}

func (f *fakePlayer) SetMuted(_ context.Context, muted bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.muted = muted
	return nil
}

func (f *fakePlayer) Load(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return f.loadErr
	}
	f.loads = append(f.loads, path)
	f.status = StatusLoading
	return nil
}

func (f *fakePlayer) Play(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plays++
	f.status = StatusPlaying
	return nil
}

func (f *fakePlayer) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakePlayer) setStatus(s Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = s
}

func (f *fakePlayer) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.loads)
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
}

func clipFolder(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		touch(t, filepath.Join(dir, name))
	}
	return dir
}

func newTestController(left, right *fakePlayer) *Controller {
	return NewController(left, right,
		WithRand(rand.New(rand.NewPCG(7, 11))),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func TestPlayVideos_StartsBothSides(t *testing.T) {
	left, right := &fakePlayer{}, &fakePlayer{}
	c := newTestController(left, right)

	sel := Selection{
		LeftFolder:   clipFolder(t, "a.mp4", "b.avi", "notes.txt"),
		RightFolder:  clipFolder(t, "c.mkv"),
		LeftCaption:  "Before",
		RightCaption: "After",
	}
	started, err := c.PlayVideos(context.Background(), sel)
	if err != nil {
		t.Fatal(err)
	}
	if !started {
		t.Error("expected PlayVideos to report a start")
	}

	if !left.muted || !right.muted {
		t.Error("expected both sides muted")
	}
	if l, r := c.Muted(); !l || !r {
		t.Errorf("Muted() = %v, %v, want true, true", l, r)
	}
	if len(left.captions) != 1 || left.captions[0] != "Before" {
		t.Errorf("left captions: %v", left.captions)
	}
	if len(right.captions) != 1 || right.captions[0] != "After" {
		t.Errorf("right captions: %v", right.captions)
	}
	if left.loadCount() != 1 || right.loadCount() != 1 {
		t.Fatalf("expected one load per side, got %d/%d", left.loadCount(), right.loadCount())
	}
	if left.plays != 1 || right.plays != 1 {
		t.Errorf("expected one play per side, got %d/%d", left.plays, right.plays)
	}
	if right.loads[0] != filepath.Join(sel.RightFolder, "c.mkv") {
		t.Errorf("right loaded %q", right.loads[0])
	}
}

func TestPlayVideos_UnreadableFolder(t *testing.T) {
	left, right := &fakePlayer{}, &fakePlayer{}
	c := newTestController(left, right)

	sel := Selection{
		LeftFolder:  filepath.Join(t.TempDir(), "missing"),
		RightFolder: clipFolder(t, "c.mkv"),
	}
	if _, err := c.PlayVideos(context.Background(), sel); err == nil {
		t.Fatal("expected error for missing folder")
	}
	if right.loadCount() != 0 {
		t.Error("nothing should be loaded after a scan failure")
	}
}

func TestPlayNextVideos_Membership(t *testing.T) {
	left, right := &fakePlayer{}, &fakePlayer{}
	c := newTestController(left, right)

	leftDir := clipFolder(t, "1.mp4", "2.mp4", "3.mkv")
	rightDir := clipFolder(t, "x.avi", "y.avi")
	if _, err := c.PlayVideos(context.Background(), Selection{LeftFolder: leftDir, RightFolder: rightDir}); err != nil {
		t.Fatal(err)
	}

	valid := map[string]bool{
		filepath.Join(leftDir, "1.mp4"):  true,
		filepath.Join(leftDir, "2.mp4"):  true,
		filepath.Join(leftDir, "3.mkv"):  true,
		filepath.Join(rightDir, "x.avi"): true,
		filepath.Join(rightDir, "y.avi"): true,
	}

	for range 200 {
		started, err := c.PlayNextVideos(context.Background())
		if err != nil || !started {
			t.Fatalf("PlayNextVideos: started=%v err=%v", started, err)
		}
	}

	for _, p := range append(left.loads, right.loads...) {
		if !valid[p] {
			t.Fatalf("loaded %q which is not a candidate", p)
		}
	}
	for _, p := range left.loads {
		if filepath.Dir(p) != leftDir {
			t.Fatalf("left side loaded a right clip %q", p)
		}
	}
}

func TestPlayNextVideos_EmptySideIsNoop(t *testing.T) {
	tests := []struct {
		name  string
		left  []string
		right []string
	}{
		{"left empty", nil, []string{"a.mp4"}},
		{"right empty", []string{"a.mp4"}, nil},
		{"both empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			left, right := &fakePlayer{}, &fakePlayer{}
			c := newTestController(left, right)

			sel := Selection{
				LeftFolder:  clipFolder(t, tt.left...),
				RightFolder: clipFolder(t, tt.right...),
			}
			startedFirst, err := c.PlayVideos(context.Background(), sel)
			if err != nil {
				t.Fatal(err)
			}
			if startedFirst {
				t.Error("PlayVideos reported a start with an empty side")
			}
			started, err := c.PlayNextVideos(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if started {
				t.Error("expected no start")
			}
			if left.loadCount() != 0 || right.loadCount() != 0 || left.plays != 0 || right.plays != 0 {
				t.Errorf("expected no load/play, got loads %d/%d plays %d/%d",
					left.loadCount(), right.loadCount(), left.plays, right.plays)
			}
		})
	}
}

func TestCheckVideosFinished_JoinCondition(t *testing.T) {
	tests := []struct {
		left, right Status
		restart     bool
	}{
		{StatusEndOfMedia, StatusPlaying, false},
		{StatusPlaying, StatusEndOfMedia, false},
		{StatusEndOfMedia, StatusLoading, false},
		{StatusEndOfMedia, StatusInvalidMedia, false},
		{StatusPlaying, StatusPlaying, false},
		{StatusEndOfMedia, StatusEndOfMedia, true},
	}

	for _, tt := range tests {
		t.Run(tt.left.String()+"/"+tt.right.String(), func(t *testing.T) {
			left, right := &fakePlayer{}, &fakePlayer{}
			c := newTestController(left, right)
			sel := Selection{LeftFolder: clipFolder(t, "a.mp4"), RightFolder: clipFolder(t, "b.mp4")}
			if _, err := c.PlayVideos(context.Background(), sel); err != nil {
				t.Fatal(err)
			}

			left.setStatus(tt.left)
			right.setStatus(tt.right)
			restarted, err := c.CheckVideosFinished(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if restarted != tt.restart {
				t.Errorf("restarted = %v, want %v", restarted, tt.restart)
			}
			wantLoads := 1
			if tt.restart {
				wantLoads = 2
			}
			if left.loadCount() != wantLoads || right.loadCount() != wantLoads {
				t.Errorf("loads = %d/%d, want %d", left.loadCount(), right.loadCount(), wantLoads)
			}
		})
	}
}

func TestCheckVideosFinished_OncePerJointEnd(t *testing.T) {
	left, right := &fakePlayer{}, &fakePlayer{}
	c := newTestController(left, right)
	sel := Selection{LeftFolder: clipFolder(t, "a.mp4"), RightFolder: clipFolder(t, "b.mp4")}
	if _, err := c.PlayVideos(context.Background(), sel); err != nil {
		t.Fatal(err)
	}

	left.setStatus(StatusEndOfMedia)
	right.setStatus(StatusEndOfMedia)

	// Both sides fire a notification for the same joint end.
	first, _ := c.CheckVideosFinished(context.Background())
	second, _ := c.CheckVideosFinished(context.Background())

	if !first || second {
		t.Fatalf("expected exactly one restart, got first=%v second=%v", first, second)
	}
	if left.loadCount() != 2 {
		t.Errorf("expected 2 loads, got %d", left.loadCount())
	}
}

func TestCaptionsStaticAcrossCycles(t *testing.T) {
	left, right := &fakePlayer{}, &fakePlayer{}
	c := newTestController(left, right)
	sel := Selection{
		LeftFolder:   clipFolder(t, "a.mp4", "b.mp4"),
		RightFolder:  clipFolder(t, "c.mp4"),
		LeftCaption:  "L",
		RightCaption: "R",
	}
	if _, err := c.PlayVideos(context.Background(), sel); err != nil {
		t.Fatal(err)
	}

	for range 10 {
		left.setStatus(StatusEndOfMedia)
		right.setStatus(StatusEndOfMedia)
		if _, err := c.CheckVideosFinished(context.Background()); err != nil {
			t.Fatal(err)
		}
	}

	if len(left.captions) != 1 || len(right.captions) != 1 {
		t.Errorf("captions set %d/%d times, want once each", len(left.captions), len(right.captions))
	}
	if l, r := c.Captions(); l != "L" || r != "R" {
		t.Errorf("Captions() = %q, %q", l, r)
	}
}

func TestPlayNextVideos_LoadError(t *testing.T) {
	left, right := &fakePlayer{}, &fakePlayer{}
	c := newTestController(left, right)
	sel := Selection{LeftFolder: clipFolder(t, "a.mp4"), RightFolder: clipFolder(t, "b.mp4")}
	if _, err := c.PlayVideos(context.Background(), sel); err != nil {
		t.Fatal(err)
	}

	left.loadErr = errors.New("boom")
	if _, err := c.PlayNextVideos(context.Background()); err == nil {
		t.Fatal("expected load error")
	}
}

func TestOnCycle(t *testing.T) {
	left, right := &fakePlayer{}, &fakePlayer{}
	c := newTestController(left, right)

	var got []string
	c.OnCycle(func(l, r string) { got = append(got, filepath.Base(l), filepath.Base(r)) })

	sel := Selection{LeftFolder: clipFolder(t, "a.mp4"), RightFolder: clipFolder(t, "b.mp4")}
	if _, err := c.PlayVideos(context.Background(), sel); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "a.mp4" || got[1] != "b.mp4" {
		t.Errorf("OnCycle got %v", got)
	}
}

func TestRun_RestartsOnNotification(t *testing.T) {
	left, right := &fakePlayer{}, &fakePlayer{}
	c := newTestController(left, right)
	sel := Selection{LeftFolder: clipFolder(t, "a.mp4"), RightFolder: clipFolder(t, "b.mp4")}
	if _, err := c.PlayVideos(context.Background(), sel); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	// Only one side finished: no restart.
	left.setStatus(StatusEndOfMedia)
	c.StatusChanged()
	time.Sleep(20 * time.Millisecond)
	if left.loadCount() != 1 {
		t.Fatalf("restarted with only one side finished")
	}

	right.setStatus(StatusEndOfMedia)
	c.StatusChanged()
	c.StatusChanged()

	deadline := time.Now().Add(2 * time.Second)
	for left.loadCount() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for restart")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v, want context.Canceled", err)
	}
	if left.loadCount() != 2 || right.loadCount() != 2 {
		t.Errorf("expected exactly one restart, loads %d/%d", left.loadCount(), right.loadCount())
	}
}
