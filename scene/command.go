package scene

import "time"

// Category 节点类别位掩码，用于碰撞过滤与命令路由
type Category uint32

// Action 命令动作判别值，由处理表解释
type Action uint16

// Command 广播给场景图的命令：类别掩码 + 动作 + 参数。
// 参数是普通数据，不持有任何节点引用
type Command struct {
	Category Category
	Action   Action
	Target   int32 // 例如角色标识
	Value    int32 // 例如音效编号
	Vec      Vec2  // 例如位置或速度
}

// Handler 命令处理函数，对每个类别匹配的节点调用一次
type Handler func(id NodeID, cmd Command, dt time.Duration)

// Handlers 动作 → 处理函数 的显式处理表
type Handlers map[Action]Handler

// Queue 命令 FIFO 队列
type Queue struct {
	items []Command
}

// Push 追加命令
func (q *Queue) Push(c Command) { q.items = append(q.items, c) }

// Pop 取出队首命令
func (q *Queue) Pop() (Command, bool) {
	if len(q.items) == 0 {
		return Command{}, false
	}
	c := q.items[0]
	q.items[0] = Command{}
	q.items = q.items[1:]
	return c, true
}

// Len 队列长度
func (q *Queue) Len() int { return len(q.items) }

// Empty 队列是否为空
func (q *Queue) Empty() bool { return len(q.items) == 0 }
