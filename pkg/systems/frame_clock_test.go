package systems

import "testing"

func TestTickClock_RunsPendingOnce(t *testing.T) {
	clock := NewTickClock()

	calls := 0
	clock.RequestFrame(func() { calls++ })
	clock.RequestFrame(func() { calls++ })
	clock.RequestFrame(nil)

	if clock.Pending() != 2 {
		t.Fatalf("Pending() = %d, want 2", clock.Pending())
	}
	if n := clock.Tick(); n != 2 || calls != 2 {
		t.Fatalf("Tick() ran %d callbacks (calls=%d), want 2", n, calls)
	}
	if n := clock.Tick(); n != 0 || calls != 2 {
		t.Errorf("second Tick() ran %d callbacks (calls=%d), want 0", n, calls)
	}
	if clock.Frame() != 2 {
		t.Errorf("Frame() = %d, want 2", clock.Frame())
	}
}

// TestTickClock_RequestDuringTick 回调中登记的请求留到下一帧
func TestTickClock_RequestDuringTick(t *testing.T) {
	clock := NewTickClock()

	var frames []uint64
	var loop func()
	loop = func() {
		frames = append(frames, clock.Frame())
		if len(frames) < 3 {
			clock.RequestFrame(loop)
		}
	}
	clock.RequestFrame(loop)

	for i := 0; i < 5; i++ {
		clock.Tick()
	}

	want := []uint64{1, 2, 3}
	if len(frames) != len(want) {
		t.Fatalf("frames = %v, want %v", frames, want)
	}
	for i := range want {
		if frames[i] != want[i] {
			t.Errorf("frames = %v, want %v", frames, want)
			break
		}
	}
}

func TestImmediateClock(t *testing.T) {
	called := false
	ImmediateClock{}.RequestFrame(func() { called = true })
	if !called {
		t.Error("ImmediateClock did not run the callback synchronously")
	}
	ImmediateClock{}.RequestFrame(nil)
}
