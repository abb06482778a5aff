// Package utils 提供通用工具函数
package utils

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// PointerKind 指针事件类型
type PointerKind int

const (
	// PointerMouseDown 鼠标按下
	PointerMouseDown PointerKind = iota
	// PointerMouseUp 鼠标释放
	PointerMouseUp
	// PointerMouseMove 鼠标移动
	PointerMouseMove
	// PointerTouchStart 触摸开始
	PointerTouchStart
	// PointerTouchMove 触摸移动
	PointerTouchMove
	// PointerTouchEnd 触摸结束
	PointerTouchEnd
)

// String 返回事件类型名称
func (k PointerKind) String() string {
	switch k {
	case PointerMouseDown:
		return "mousedown"
	case PointerMouseUp:
		return "mouseup"
	case PointerMouseMove:
		return "mousemove"
	case PointerTouchStart:
		return "touchstart"
	case PointerTouchMove:
		return "touchmove"
	case PointerTouchEnd:
		return "touchend"
	default:
		return "unknown"
	}
}

// IsTouch 是否为触摸事件
func (k PointerKind) IsTouch() bool {
	return k == PointerTouchStart || k == PointerTouchMove || k == PointerTouchEnd
}

// TouchPoint 单个触摸点（页面坐标）
type TouchPoint struct {
	ID   int
	X, Y float64
}

// PointerEvent 鼠标或触摸事件
//
// 触摸事件的位置来自触摸点列表，鼠标事件的位置来自 X/Y。
type PointerEvent struct {
	Kind PointerKind
	X, Y float64
	// Touches 当前所有仍在屏幕上的触摸点
	Touches []TouchPoint
	// ChangedTouches 本次事件中发生变化的触摸点
	ChangedTouches []TouchPoint
}

// Position 把事件归一化为一个页面坐标
//
// touchmove 取 Touches 的第一个点；touchstart/touchend 取 ChangedTouches 的第一个点
// （touchend 时手指已离开，Touches 中不再包含它）。
// 对应列表为空时返回 false。
func (e PointerEvent) Position() (float64, float64, bool) {
	switch e.Kind {
	case PointerTouchMove:
		if len(e.Touches) == 0 {
			return 0, 0, false
		}
		return e.Touches[0].X, e.Touches[0].Y, true
	case PointerTouchStart, PointerTouchEnd:
		if len(e.ChangedTouches) == 0 {
			return 0, 0, false
		}
		return e.ChangedTouches[0].X, e.ChangedTouches[0].Y, true
	default:
		return e.X, e.Y, true
	}
}

// CanvasPoint 页面坐标转换为绘制表面坐标
// offsetX/offsetY 为画布在页面中的左上角，resolution 为物理/逻辑像素比
func CanvasPoint(pageX, pageY, offsetX, offsetY, resolution float64) (float64, float64) {
	if resolution <= 0 {
		resolution = 1
	}
	return (pageX - offsetX) * resolution, (pageY - offsetY) * resolution
}

// PollPointer 读取本帧刚发生的点击或触摸
// 优先检测触摸，返回归一化后的事件
func PollPointer() (PointerEvent, bool) {
	// 首先检查触摸输入（移动设备）
	touchIDs := inpututil.AppendJustPressedTouchIDs(nil)
	if len(touchIDs) > 0 {
		changed := make([]TouchPoint, 0, len(touchIDs))
		for _, id := range touchIDs {
			x, y := ebiten.TouchPosition(id)
			changed = append(changed, TouchPoint{ID: int(id), X: float64(x), Y: float64(y)})
		}

		var touches []TouchPoint
		for _, id := range ebiten.AppendTouchIDs(nil) {
			x, y := ebiten.TouchPosition(id)
			touches = append(touches, TouchPoint{ID: int(id), X: float64(x), Y: float64(y)})
		}

		return PointerEvent{
			Kind:           PointerTouchStart,
			Touches:        touches,
			ChangedTouches: changed,
		}, true
	}

	// 其次检查鼠标输入（桌面设备）
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		return PointerEvent{Kind: PointerMouseDown, X: float64(x), Y: float64(y)}, true
	}

	return PointerEvent{}, false
}
