package systems

import (
	"runtime"
	"sync"
	"testing"
	"time"
)

// visibilityRecorder 记录可见性切换序列（测试用）
type visibilityRecorder struct {
	mu     sync.Mutex
	events []bool
}

func (r *visibilityRecorder) SetVisible(visible bool) {
	r.mu.Lock()
	r.events = append(r.events, visible)
	r.mu.Unlock()
}

func (r *visibilityRecorder) Events() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]bool, len(r.events))
	copy(out, r.events)
	return out
}

// driveClock 持续推进帧时钟，直到 done 关闭
func driveClock(t *testing.T, clock *TickClock, done <-chan struct{}) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for {
		select {
		case <-done:
			return
		default:
		}
		if time.Now().After(deadline) {
			t.Fatalf("burst did not finish after %d frames", clock.Frame())
		}
		clock.Tick()
		runtime.Gosched()
	}
}
