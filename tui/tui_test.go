package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"skybrawl/client"
	"skybrawl/config"
	"skybrawl/scene"
	"skybrawl/world"
)

type recordedAction struct {
	player  int
	action  world.Action
	pressed bool
}

type recorder struct {
	got []recordedAction
}

func (r *recorder) Press(p int, a world.Action)   { r.got = append(r.got, recordedAction{p, a, true}) }
func (r *recorder) Release(p int, a world.Action) { r.got = append(r.got, recordedAction{p, a, false}) }

func TestKeyMapLookup(t *testing.T) {
	keys := DefaultKeyMap()
	b, ok := keys.Lookup(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone))
	if !ok || b != (Binding{0, world.MoveRight}) {
		t.Fatalf("right arrow = %+v, %v", b, ok)
	}
	b, ok = keys.Lookup(tcell.NewEventKey(tcell.KeyRune, 'e', tcell.ModNone))
	if !ok || b != (Binding{1, world.LaunchMissile}) {
		t.Fatalf("'e' = %+v, %v", b, ok)
	}
	if _, ok := keys.Lookup(tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModNone)); ok {
		t.Fatalf("'z' should be unbound")
	}
}

func TestInputHoldsUntilRepeatStops(t *testing.T) {
	in := NewInput(DefaultKeyMap())
	rec := &recorder{}
	start := time.Unix(0, 0)
	right := tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone)

	// 自动重复只产生一次按下
	in.HandleKey(right, start, rec)
	in.HandleKey(right, start.Add(100*time.Millisecond), rec)
	in.Expire(start.Add(200*time.Millisecond), rec)
	in.HandleKey(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), start.Add(200*time.Millisecond), rec)
	in.Expire(start.Add(100*time.Millisecond+HoldTimeout+time.Millisecond), rec)

	want := []recordedAction{
		{0, world.MoveRight, true},
		{0, world.Jump, true},
		{0, world.MoveRight, false},
	}
	if len(rec.got) != len(want) {
		t.Fatalf("got %+v, want %+v", rec.got, want)
	}
	for i := range want {
		if rec.got[i] != want[i] {
			t.Fatalf("action %d = %+v, want %+v", i, rec.got[i], want[i])
		}
	}
}

func newScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	screen.SetSize(w, h)
	t.Cleanup(screen.Fini)
	return screen
}

func row(screen tcell.Screen, y int) string {
	w, _ := screen.Size()
	var sb strings.Builder
	for x := 0; x < w; x++ {
		ch, _, _, _ := screen.GetContent(x, y)
		if ch == 0 {
			ch = ' '
		}
		sb.WriteRune(ch)
	}
	return sb.String()
}

func TestDrawWorldScalesEntities(t *testing.T) {
	screen := newScreen(t, 100, 50)
	w := world.New(config.World{Width: 1000, Height: 500}, nil)
	w.AddCharacter(1, scene.Vec2{X: 100, Y: 100})
	w.AddCharacter(2, scene.Vec2{X: 800, Y: 300})

	r := NewRenderer(screen)
	r.DrawWorld(w, func(id int32) bool { return id == 1 }, DrawOptions{})
	screen.Show()

	// 角色 48x64，中心 (100,100) 缩放 0.1 后落在 x 7..12、y 6..13
	if ch, _, _, _ := screen.GetContent(10, 10); ch != '@' {
		t.Fatalf("local character cell = %q", ch)
	}
	if ch, _, _, _ := screen.GetContent(80, 30); ch != '&' {
		t.Fatalf("remote character cell = %q", ch)
	}
	if ch, _, _, _ := screen.GetContent(50, 40); ch == '@' || ch == '&' {
		t.Fatalf("empty cell drawn as %q", ch)
	}

	r.DrawWorld(w, nil, DrawOptions{ShowBounds: true})
	if ch, _, _, _ := screen.GetContent(7, 6); ch != '·' {
		t.Fatalf("bounds corner = %q", ch)
	}
}

func TestDrawShowsConnectionFailure(t *testing.T) {
	screen := newScreen(t, 60, 10)
	s := client.NewSession(nil, config.DefaultClient(), nil)

	NewRenderer(screen).Draw(s, DrawOptions{})
	if got := row(screen, 5); !strings.Contains(got, TextConnectFailed) {
		t.Fatalf("row 5 = %q", got)
	}
}

func TestToneStreamsUntilDone(t *testing.T) {
	spec := toneTable[world.SoundCollectPickup]
	tn := newTone(spec, sampleRate)
	total := sampleRate.N(spec.duration)

	buf := make([][2]float64, 512)
	streamed := 0
	for {
		n, ok := tn.Stream(buf)
		for i := 0; i < n; i++ {
			if buf[i][0] < -1 || buf[i][0] > 1 || buf[i][0] != buf[i][1] {
				t.Fatalf("sample %d out of range: %v", streamed+i, buf[i])
			}
		}
		streamed += n
		if !ok {
			break
		}
	}
	if streamed != total {
		t.Fatalf("streamed %d samples, want %d", streamed, total)
	}
	if tn.Err() != nil {
		t.Fatal(tn.Err())
	}
}

func TestSpeakerIgnoresPlayBeforeInit(t *testing.T) {
	sp := NewSpeaker()
	sp.Play(world.SoundExplosion1, scene.Vec2{})
	sp.Play(world.SoundEffect(99), scene.Vec2{})
	sp.Close()
	if sp.mixer.Len() != 0 {
		t.Fatalf("mixer has %d streamers before init", sp.mixer.Len())
	}
}
