package scene

import "time"

// NodeID 节点在 arena 中的稳定下标
type NodeID int32

const (
	// NoNode 无效节点
	NoNode NodeID = -1
	// Root 根节点固定为 0
	Root NodeID = 0
)

type node struct {
	live     bool
	parent   NodeID
	children []NodeID

	local Vec2 // 相对父节点的位置
	world Vec2 // 缓存的世界坐标
	dirty bool // 祖先或自身移动后置位，读取时重算

	size     Vec2 // 以位置为中心的包围盒尺寸；零尺寸不参与碰撞
	category Category
	marked   bool // 待移除标记，每帧 RemoveWrecks 检查一次
	payload  any
}

// Graph 场景图：arena 持有全部节点，父子关系用下标表示。
// 非并发安全，只能在拥有它的模拟循环中使用
type Graph struct {
	nodes []node
	free  []NodeID
}

// New 创建只含根节点的场景图
func New() *Graph {
	return &Graph{nodes: []node{{live: true, parent: NoNode}}}
}

// Valid 节点是否存在
func (g *Graph) Valid(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes) && g.nodes[id].live
}

// Len 存活节点数（含根）
func (g *Graph) Len() int {
	return len(g.nodes) - len(g.free)
}

// Attach 在 parent 下创建子节点，返回其 ID
func (g *Graph) Attach(parent NodeID, category Category, size Vec2, payload any) NodeID {
	if !g.Valid(parent) {
		return NoNode
	}
	n := node{
		live:     true,
		parent:   parent,
		size:     size,
		category: category,
		payload:  payload,
		dirty:    true,
	}
	var id NodeID
	if k := len(g.free); k > 0 {
		id = g.free[k-1]
		g.free = g.free[:k-1]
		g.nodes[id] = n
	} else {
		id = NodeID(len(g.nodes))
		g.nodes = append(g.nodes, n)
	}
	g.nodes[parent].children = append(g.nodes[parent].children, id)
	return id
}

// Parent 父节点
func (g *Graph) Parent(id NodeID) NodeID {
	if !g.Valid(id) {
		return NoNode
	}
	return g.nodes[id].parent
}

// Children 子节点列表副本
func (g *Graph) Children(id NodeID) []NodeID {
	if !g.Valid(id) {
		return nil
	}
	return append([]NodeID(nil), g.nodes[id].children...)
}

// Payload 节点附带的实体
func (g *Graph) Payload(id NodeID) any {
	if !g.Valid(id) {
		return nil
	}
	return g.nodes[id].payload
}

// Category 节点类别
func (g *Graph) Category(id NodeID) Category {
	if !g.Valid(id) {
		return 0
	}
	return g.nodes[id].category
}

// SetCategory 修改节点类别
func (g *Graph) SetCategory(id NodeID, c Category) {
	if g.Valid(id) {
		g.nodes[id].category = c
	}
}

// Size 包围盒尺寸
func (g *Graph) Size(id NodeID) Vec2 {
	if !g.Valid(id) {
		return Vec2{}
	}
	return g.nodes[id].size
}

// SetSize 修改包围盒尺寸
func (g *Graph) SetSize(id NodeID, s Vec2) {
	if g.Valid(id) {
		g.nodes[id].size = s
	}
}

// Position 相对父节点的位置
func (g *Graph) Position(id NodeID) Vec2 {
	if !g.Valid(id) {
		return Vec2{}
	}
	return g.nodes[id].local
}

// SetPosition 设置相对位置，并使整棵子树的世界坐标缓存失效
func (g *Graph) SetPosition(id NodeID, p Vec2) {
	if !g.Valid(id) {
		return
	}
	g.nodes[id].local = p
	g.invalidate(id)
}

// Move 按偏移移动节点
func (g *Graph) Move(id NodeID, d Vec2) {
	if !g.Valid(id) {
		return
	}
	g.SetPosition(id, g.nodes[id].local.Add(d))
}

func (g *Graph) invalidate(id NodeID) {
	stack := []NodeID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &g.nodes[cur]
		if n.dirty && cur != id {
			// 子树已失效
			continue
		}
		n.dirty = true
		stack = append(stack, n.children...)
	}
}

// WorldPosition 由祖先链组合出的世界坐标
func (g *Graph) WorldPosition(id NodeID) Vec2 {
	if !g.Valid(id) {
		return Vec2{}
	}
	n := &g.nodes[id]
	if !n.dirty {
		return n.world
	}
	if n.parent == NoNode {
		n.world = n.local
	} else {
		n.world = g.WorldPosition(n.parent).Add(n.local)
	}
	n.dirty = false
	return n.world
}

// Bounds 世界坐标下的包围盒
func (g *Graph) Bounds(id NodeID) Rect {
	if !g.Valid(id) {
		return Rect{}
	}
	return RectAround(g.WorldPosition(id), g.nodes[id].size)
}

// MarkForRemoval 标记节点，下一次 RemoveWrecks 时连同子树移除
func (g *Graph) MarkForRemoval(id NodeID) {
	if g.Valid(id) && id != Root {
		g.nodes[id].marked = true
	}
}

// Marked 是否已标记待移除
func (g *Graph) Marked(id NodeID) bool {
	return g.Valid(id) && g.nodes[id].marked
}

// Walk 先序遍历存活节点；fn 中移除的节点及其子树不再访问
func (g *Graph) Walk(fn func(id NodeID)) {
	stack := []NodeID{Root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !g.Valid(id) {
			continue
		}
		fn(id)
		if !g.Valid(id) {
			continue
		}
		ch := g.nodes[id].children
		for i := len(ch) - 1; i >= 0; i-- {
			stack = append(stack, ch[i])
		}
	}
}

// Dispatch 将命令交给每个类别匹配的节点
func (g *Graph) Dispatch(cmd Command, handlers Handlers, dt time.Duration) {
	h, ok := handlers[cmd.Action]
	if !ok || cmd.Category == 0 {
		return
	}
	g.Walk(func(id NodeID) {
		if g.nodes[id].category&cmd.Category != 0 {
			h(id, cmd, dt)
		}
	})
}

// Update 常规逐节点更新
func (g *Graph) Update(fn func(id NodeID)) {
	g.Walk(fn)
}

// RemoveWrecks 移除所有被标记的节点及其子树；onRemove 对每个被移除节点调用一次
func (g *Graph) RemoveWrecks(onRemove func(id NodeID, payload any)) int {
	var wrecks []NodeID
	g.Walk(func(id NodeID) {
		if g.nodes[id].marked {
			wrecks = append(wrecks, id)
		}
	})
	removed := 0
	for _, id := range wrecks {
		if g.Valid(id) {
			removed += g.Detach(id, onRemove)
		}
	}
	return removed
}

// Detach 立即移除节点及其子树，返回移除的节点数
func (g *Graph) Detach(id NodeID, onRemove func(id NodeID, payload any)) int {
	if !g.Valid(id) || id == Root {
		return 0
	}
	p := g.nodes[id].parent
	if g.Valid(p) {
		ch := g.nodes[p].children
		for i, c := range ch {
			if c == id {
				g.nodes[p].children = append(ch[:i], ch[i+1:]...)
				break
			}
		}
	}

	removed := 0
	stack := []NodeID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := g.nodes[cur]
		stack = append(stack, n.children...)
		if onRemove != nil {
			onRemove(cur, n.payload)
		}
		g.nodes[cur] = node{parent: NoNode}
		g.free = append(g.free, cur)
		removed++
	}
	return removed
}
