package scene

// Pair 无序碰撞对；First < Second 为规范形式
type Pair struct {
	First, Second NodeID
}

// CollisionPairs 返回所有包围盒相交的节点对，每对只出现一次。
// 零尺寸节点、待移除节点以及 filter 返回 false 的节点不参与
func (g *Graph) CollisionPairs(filter func(id NodeID) bool) []Pair {
	var ids []NodeID
	var rects []Rect
	g.Walk(func(id NodeID) {
		n := &g.nodes[id]
		if n.marked || n.size.X <= 0 || n.size.Y <= 0 {
			return
		}
		if filter != nil && !filter(id) {
			return
		}
		ids = append(ids, id)
		rects = append(rects, g.Bounds(id))
	})

	var pairs []Pair
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if !rects[i].Intersects(rects[j]) {
				continue
			}
			a, b := ids[i], ids[j]
			if a > b {
				a, b = b, a
			}
			pairs = append(pairs, Pair{First: a, Second: b})
		}
	}
	return pairs
}

// MatchesCategories 若碰撞对的任一顺序满足 (a, b)，返回 true
// 并将 p 调整为 First 属于 a、Second 属于 b
func (g *Graph) MatchesCategories(p *Pair, a, b Category) bool {
	c1 := g.Category(p.First)
	c2 := g.Category(p.Second)
	switch {
	case a&c1 != 0 && b&c2 != 0:
		return true
	case a&c2 != 0 && b&c1 != 0:
		p.First, p.Second = p.Second, p.First
		return true
	}
	return false
}
