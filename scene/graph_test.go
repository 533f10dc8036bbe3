package scene

import (
	"testing"
	"time"
)

const (
	catA Category = 1 << iota
	catB
	catC
)

func TestWorldPositionComposesAncestors(t *testing.T) {
	g := New()
	parent := g.Attach(Root, catA, Vec2{}, nil)
	child := g.Attach(parent, catB, Vec2{X: 2, Y: 2}, nil)
	g.SetPosition(parent, Vec2{X: 10, Y: 20})
	g.SetPosition(child, Vec2{X: 1, Y: 2})

	if got := g.WorldPosition(child); got != (Vec2{X: 11, Y: 22}) {
		t.Fatalf("child world = %+v", got)
	}
	// 祖先移动后不能读到旧缓存
	g.Move(parent, Vec2{X: 5})
	if got := g.WorldPosition(child); got != (Vec2{X: 16, Y: 22}) {
		t.Fatalf("child world after parent move = %+v", got)
	}
	g.Move(Root, Vec2{Y: 100})
	if got := g.WorldPosition(child); got != (Vec2{X: 16, Y: 122}) {
		t.Fatalf("child world after root move = %+v", got)
	}
}

func TestCollisionPairsEmittedOnce(t *testing.T) {
	g := New()
	a := g.Attach(Root, catA, Vec2{X: 10, Y: 10}, nil)
	b := g.Attach(Root, catB, Vec2{X: 10, Y: 10}, nil)
	c := g.Attach(b, catC, Vec2{X: 10, Y: 10}, nil)
	far := g.Attach(Root, catC, Vec2{X: 10, Y: 10}, nil)
	g.SetPosition(a, Vec2{X: 0, Y: 0})
	g.SetPosition(b, Vec2{X: 5, Y: 0})
	g.SetPosition(c, Vec2{X: -2, Y: 0}) // 世界坐标 (3,0)
	g.SetPosition(far, Vec2{X: 500, Y: 500})

	pairs := g.CollisionPairs(nil)
	seen := map[Pair]int{}
	for _, p := range pairs {
		if p.First >= p.Second {
			t.Fatalf("pair not canonical: %+v", p)
		}
		seen[p]++
	}
	want := []Pair{{a, b}, {a, c}, {b, c}}
	if len(pairs) != len(want) {
		t.Fatalf("got %d pairs %+v, want %d", len(pairs), pairs, len(want))
	}
	for _, p := range want {
		if seen[p] != 1 {
			t.Fatalf("pair %+v seen %d times", p, seen[p])
		}
	}
}

func TestCollisionPairsSkipZeroSizeAndEdgeContact(t *testing.T) {
	g := New()
	a := g.Attach(Root, catA, Vec2{X: 10, Y: 10}, nil)
	b := g.Attach(Root, catB, Vec2{X: 10, Y: 10}, nil)
	g.Attach(Root, catC, Vec2{}, nil)
	g.SetPosition(b, Vec2{X: 10}) // 仅边相接
	if pairs := g.CollisionPairs(nil); len(pairs) != 0 {
		t.Fatalf("edge contact produced %+v", pairs)
	}
	g.SetPosition(b, Vec2{X: 9.5})
	if pairs := g.CollisionPairs(nil); len(pairs) != 1 || pairs[0] != (Pair{a, b}) {
		t.Fatalf("pairs = %+v", pairs)
	}
	g.MarkForRemoval(b)
	if pairs := g.CollisionPairs(nil); len(pairs) != 0 {
		t.Fatalf("marked node still collides: %+v", pairs)
	}
}

func TestMatchesCategoriesCanonicalizes(t *testing.T) {
	g := New()
	a := g.Attach(Root, catA, Vec2{X: 1, Y: 1}, nil)
	b := g.Attach(Root, catB, Vec2{X: 1, Y: 1}, nil)

	p := Pair{a, b}
	if !g.MatchesCategories(&p, catB, catA) {
		t.Fatalf("expected match")
	}
	if p.First != b || p.Second != a {
		t.Fatalf("pair not reordered: %+v", p)
	}
	p = Pair{a, b}
	if !g.MatchesCategories(&p, catA, catB) || p.First != a {
		t.Fatalf("pair reordered unexpectedly: %+v", p)
	}
	if g.MatchesCategories(&p, catC, catA) {
		t.Fatalf("unexpected match")
	}
}

func TestDispatchReachesMatchingNodes(t *testing.T) {
	g := New()
	a := g.Attach(Root, catA, Vec2{}, nil)
	b := g.Attach(Root, catB, Vec2{}, nil)
	ab := g.Attach(b, catA|catC, Vec2{}, nil)

	const move Action = 1
	var hit []NodeID
	handlers := Handlers{
		move: func(id NodeID, cmd Command, dt time.Duration) {
			hit = append(hit, id)
			g.Move(id, cmd.Vec)
		},
	}
	g.Dispatch(Command{Category: catA, Action: move, Vec: Vec2{X: 1}}, handlers, time.Second)
	if len(hit) != 2 || hit[0] != a || hit[1] != ab {
		t.Fatalf("dispatch hit %v", hit)
	}
	if g.Position(b) != (Vec2{}) {
		t.Fatalf("non-matching node moved")
	}
	// 未注册的动作被忽略
	g.Dispatch(Command{Category: catA, Action: 99}, handlers, time.Second)
	if len(hit) != 2 {
		t.Fatalf("unknown action dispatched")
	}
}

func TestRemoveWrecksCascadesAndReusesSlots(t *testing.T) {
	g := New()
	a := g.Attach(Root, catA, Vec2{}, "a")
	child := g.Attach(a, catB, Vec2{}, "child")
	keep := g.Attach(Root, catC, Vec2{}, "keep")

	g.MarkForRemoval(a)
	var payloads []any
	n := g.RemoveWrecks(func(id NodeID, payload any) { payloads = append(payloads, payload) })
	if n != 2 || len(payloads) != 2 {
		t.Fatalf("removed %d (%v), want 2", n, payloads)
	}
	if g.Valid(a) || g.Valid(child) || !g.Valid(keep) {
		t.Fatalf("unexpected validity after removal")
	}
	if kids := g.Children(Root); len(kids) != 1 || kids[0] != keep {
		t.Fatalf("root children = %v", kids)
	}
	if g.Len() != 2 {
		t.Fatalf("Len = %d, want 2", g.Len())
	}
	reused := g.Attach(Root, catA, Vec2{}, nil)
	if reused != a && reused != child {
		t.Fatalf("slot not reused: %d", reused)
	}
	if g.Marked(reused) {
		t.Fatalf("reused slot inherited removal mark")
	}
}

func TestRootCannotBeRemoved(t *testing.T) {
	g := New()
	g.MarkForRemoval(Root)
	if g.RemoveWrecks(nil) != 0 || !g.Valid(Root) {
		t.Fatalf("root removed")
	}
	if g.Attach(NodeID(42), catA, Vec2{}, nil) != NoNode {
		t.Fatalf("attach to invalid parent succeeded")
	}
}

func TestQueueIsFIFO(t *testing.T) {
	var q Queue
	q.Push(Command{Value: 1})
	q.Push(Command{Value: 2})
	if q.Len() != 2 {
		t.Fatalf("Len = %d", q.Len())
	}
	c, _ := q.Pop()
	if c.Value != 1 {
		t.Fatalf("first pop = %d", c.Value)
	}
	c, _ = q.Pop()
	if c.Value != 2 {
		t.Fatalf("second pop = %d", c.Value)
	}
	if _, ok := q.Pop(); ok || !q.Empty() {
		t.Fatalf("queue not empty")
	}
}
