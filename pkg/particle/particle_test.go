package particle

import (
	"image"
	"math"
	"math/rand"
	"testing"
)

func newTestRand() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

// TestNew_RootParticle 测试第 0 代粒子的初始速度分布
func TestNew_RootParticle(t *testing.T) {
	rnd := newTestRand()

	sawLeft, sawRight := false, false
	for i := 0; i < 500; i++ {
		p := New(100, 200, 0, 0, rnd)

		if p.ImageIndex != 0 {
			t.Fatalf("root particle ImageIndex = %d, want 0", p.ImageIndex)
		}
		if p.AlphaDecay != AlphaDecay {
			t.Fatalf("root particle AlphaDecay = %v, want %v", p.AlphaDecay, AlphaDecay)
		}

		vx := p.Velocity.X
		switch {
		case vx >= -5 && vx <= -3:
			sawLeft = true
		case vx >= 3 && vx <= 5:
			sawRight = true
		default:
			t.Fatalf("root velocity.x = %v, want in [-5,-3] ∪ [3,5]", vx)
		}

		if p.Velocity.Y < -8 || p.Velocity.Y > -4 {
			t.Fatalf("root velocity.y = %v, want in [-8,-4]", p.Velocity.Y)
		}
		if p.Position != (Vec{X: 100, Y: 200}) {
			t.Fatalf("position = %+v, want (100,200)", p.Position)
		}
		if p.Scale != 0 || p.Alpha != 1 {
			t.Fatalf("scale/alpha = %v/%v, want 0/1", p.Scale, p.Alpha)
		}
	}

	if !sawLeft || !sawRight {
		t.Errorf("expected both launch directions, left=%v right=%v", sawLeft, sawRight)
	}
}

// TestNew_ChildParticle 测试子代粒子：速度范围、调色板索引、更快的衰减
func TestNew_ChildParticle(t *testing.T) {
	rnd := newTestRand()
	seen := make(map[int]bool)

	for i := 0; i < 500; i++ {
		p := New(0, 0, 1, 0, rnd)

		if p.ImageIndex < 1 || p.ImageIndex > PaletteSize-1 {
			t.Fatalf("child ImageIndex = %d, want in [1,%d]", p.ImageIndex, PaletteSize-1)
		}
		seen[p.ImageIndex] = true

		if math.Abs(p.AlphaDecay-0.97) > 1e-12 {
			t.Fatalf("child AlphaDecay = %v, want 0.97", p.AlphaDecay)
		}

		vx := math.Abs(p.Velocity.X)
		if vx < 1 || vx > 3 {
			t.Fatalf("child |velocity.x| = %v, want in [1,3]", vx)
		}
		if p.Velocity.Y < -6 || p.Velocity.Y > -3 {
			t.Fatalf("child velocity.y = %v, want in [-6,-3]", p.Velocity.Y)
		}
	}

	if len(seen) != PaletteSize-1 {
		t.Errorf("child palette indices seen = %v, want all of 1..%d", seen, PaletteSize-1)
	}
}

// TestNew_SpinFollowsDirection 旋转方向与水平发射方向一致
func TestNew_SpinFollowsDirection(t *testing.T) {
	rnd := newTestRand()
	for i := 0; i < 500; i++ {
		p := New(0, 0, i%2, 0, rnd)
		if p.Velocity.X < 0 && (p.Spin < -MaxSpin || p.Spin > 0) {
			t.Fatalf("leftward particle spin = %v, want in [-0.05,0]", p.Spin)
		}
		if p.Velocity.X >= 0 && (p.Spin < 0 || p.Spin > MaxSpin) {
			t.Fatalf("rightward particle spin = %v, want in [0,0.05]", p.Spin)
		}
		if p.Angle < -MaxInitAngle || p.Angle > MaxInitAngle || p.Angle != math.Trunc(p.Angle) {
			t.Fatalf("initial angle = %v, want integer in [-20,20]", p.Angle)
		}
	}
}

func TestMove_Integration(t *testing.T) {
	p := &Particle{
		Position:   Vec{X: 10, Y: 20},
		Velocity:   Vec{X: 2, Y: -1},
		Spin:       0.01,
		Alpha:      1,
		AlphaDecay: AlphaDecay,
	}

	p.Move()

	if p.Position != (Vec{X: 12, Y: 19}) {
		t.Errorf("position = %+v, want (12,19)", p.Position)
	}
	if math.Abs(p.Velocity.X-1.98) > 1e-12 {
		t.Errorf("velocity.x = %v, want 1.98", p.Velocity.X)
	}
	if math.Abs(p.Velocity.Y-(-0.92)) > 1e-12 {
		t.Errorf("velocity.y = %v, want -0.92", p.Velocity.Y)
	}
	if math.Abs(p.Angle-0.01) > 1e-12 {
		t.Errorf("angle = %v, want 0.01", p.Angle)
	}
	// 仍在上升，透明度不变
	if p.Alpha != 1 {
		t.Errorf("alpha = %v, want 1 while ascending", p.Alpha)
	}
	if math.Abs(p.Scale-0.1) > 1e-12 {
		t.Errorf("scale = %v, want 0.1", p.Scale)
	}
}

// TestMove_AlphaDecayArithmetic alpha=0.25 下落中，两帧后仍未失效
func TestMove_AlphaDecayArithmetic(t *testing.T) {
	p := &Particle{
		Velocity:   Vec{X: 0, Y: 1},
		Alpha:      0.25,
		AlphaDecay: 0.95,
	}

	p.Move()
	if math.Abs(p.Alpha-0.2375) > 1e-12 {
		t.Fatalf("alpha after 1 tick = %v, want 0.2375", p.Alpha)
	}
	if p.Expired() {
		t.Fatal("particle should not be expired at alpha 0.2375")
	}

	p.Move()
	if math.Abs(p.Alpha-0.225625) > 1e-9 {
		t.Fatalf("alpha after 2 ticks = %v, want ≈0.2256", p.Alpha)
	}
	if p.Expired() {
		t.Fatal("particle should not be expired at alpha 0.2256")
	}
}

func TestMove_ScaleClamped(t *testing.T) {
	p := &Particle{Alpha: 1, AlphaDecay: AlphaDecay, Velocity: Vec{Y: -100}}
	for i := 0; i < 30; i++ {
		p.Move()
		if p.Scale < 0 || p.Scale > 1 {
			t.Fatalf("tick %d: scale = %v, want in [0,1]", i, p.Scale)
		}
	}
	if p.Scale != 1 {
		t.Errorf("scale = %v, want 1 after 30 ticks", p.Scale)
	}
}

// TestMove_AlphaMonotonicOnceDescending 下落后透明度单调递减，且在首次低于阈值时失效
func TestMove_AlphaMonotonicOnceDescending(t *testing.T) {
	rnd := newTestRand()
	for n := 0; n < 50; n++ {
		p := New(0, 0, n%2, 0, rnd)

		ticks := 0
		prev := p.Alpha
		for !p.Expired() {
			p.Move()
			ticks++
			if p.Descending() && p.Alpha >= prev {
				t.Fatalf("alpha did not decrease while descending: %v -> %v", prev, p.Alpha)
			}
			if !p.Descending() && p.Alpha != prev {
				t.Fatalf("alpha changed while ascending: %v -> %v", prev, p.Alpha)
			}
			prev = p.Alpha
			if ticks > 1000 {
				t.Fatal("particle never expired")
			}
		}
		if p.Alpha >= ExpireAlpha {
			t.Fatalf("expired with alpha %v", p.Alpha)
		}
	}
}

func TestExpired(t *testing.T) {
	tests := []struct {
		alpha float64
		want  bool
	}{
		{1, false},
		{0.2, false},
		{0.1999, true},
		{0, true},
	}
	for _, tt := range tests {
		p := &Particle{Alpha: tt.alpha}
		if got := p.Expired(); got != tt.want {
			t.Errorf("Expired() with alpha %v = %v, want %v", tt.alpha, got, tt.want)
		}
	}
}

type recordingSurface struct {
	clears int
	draws  []DrawOptions
}

func (s *recordingSurface) Clear() { s.clears++ }

func (s *recordingSurface) DrawImage(_ Bitmap, opts DrawOptions) {
	s.draws = append(s.draws, opts)
}

type fakeBitmap struct{}

func (fakeBitmap) Bounds() image.Rectangle { return image.Rect(0, 0, 10, 10) }

func TestRender(t *testing.T) {
	p := &Particle{
		Position: Vec{X: 5, Y: 6},
		Angle:    0.5,
		Scale:    0.3,
		Alpha:    0.7,
	}
	s := &recordingSurface{}
	p.Render(s, fakeBitmap{})

	if len(s.draws) != 1 {
		t.Fatalf("draw calls = %d, want 1", len(s.draws))
	}
	want := DrawOptions{X: 5, Y: 6, Angle: 0.5, Scale: 0.3, Alpha: 0.7}
	if s.draws[0] != want {
		t.Errorf("draw opts = %+v, want %+v", s.draws[0], want)
	}

	// 缺少绘制表面时不应 panic
	p.Render(nil, fakeBitmap{})
}
