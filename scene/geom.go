package scene

import "math"

// Vec2 二维向量
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }
func (v Vec2) Dist(o Vec2) float64 { return v.Sub(o).Len() }
func (v Vec2) IsZero() bool { return v.X == 0 && v.Y == 0 }
func (v Vec2) Unit() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return v.Scale(1 / l)
}

// Rect 轴对齐矩形，Left/Top 为左上角
type Rect struct {
	Left, Top, Width, Height float64
}

// RectAround 以 center 为中心、size 为尺寸的矩形
func RectAround(center, size Vec2) Rect {
	return Rect{
		Left:   center.X - size.X/2,
		Top:    center.Y - size.Y/2,
		Width:  size.X,
		Height: size.Y,
	}
}

func (r Rect) Right() float64  { return r.Left + r.Width }
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Empty 面积为零的矩形不参与碰撞
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Intersects 严格相交（仅边相接不算）
func (r Rect) Intersects(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.Left < o.Right() && o.Left < r.Right() &&
		r.Top < o.Bottom() && o.Top < r.Bottom()
}

// Contains 点是否在矩形内（含左上边界）
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Left && p.X < r.Right() && p.Y >= r.Top && p.Y < r.Bottom()
}
