package atlaspack

import (
	"errors"
	"math/rand/v2"
	"testing"
)

type placed struct {
	x, y, w, h int
}

func (a placed) overlaps(b placed) bool {
	return a.x < b.x+b.w && b.x < a.x+a.w &&
		a.y < b.y+b.h && b.y < a.y+a.h
}

func mustLayout(t *testing.T, w, h, maxW, maxH int, pow2 bool) *Layout {
	t.Helper()
	l, err := NewLayout(w, h, maxW, maxH, pow2)
	if err != nil {
		t.Fatalf("NewLayout(%d, %d, %d, %d, %v): %v", w, h, maxW, maxH, pow2, err)
	}
	return l
}

func mustAdd(t *testing.T, l *Layout, w, h, wantX, wantY int) {
	t.Helper()
	x, y, ok := l.AddElement(w, h)
	if !ok {
		t.Fatalf("AddElement(%d, %d) failed, want (%d, %d)", w, h, wantX, wantY)
	}
	if x != wantX || y != wantY {
		t.Fatalf("AddElement(%d, %d) = (%d, %d), want (%d, %d)", w, h, x, y, wantX, wantY)
	}
}

func TestNewLayout_InvalidConfig(t *testing.T) {
	tests := []struct {
		name             string
		w, h, maxW, maxH int
		pow2             bool
		field            string
	}{
		{"zero width", 0, 64, 64, 64, false, "Width"},
		{"negative height", 64, -1, 64, 64, false, "Height"},
		{"width over max", 128, 64, 64, 64, false, "Width"},
		{"height over max", 64, 128, 64, 64, false, "Height"},
		{"pow2 width over max", 128, 64, 100, 100, true, "Width"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLayout(tt.w, tt.h, tt.maxW, tt.maxH, tt.pow2)
			if err == nil {
				t.Fatalf("NewLayout succeeded with %dx%d, want error", l.Width(), l.Height())
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("err = %v, want ErrInvalidConfig", err)
			}
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("err = %T, want *ConfigError", err)
			}
			if ce.Field != tt.field {
				t.Errorf("Field = %q, want %q", ce.Field, tt.field)
			}
		})
	}
}

func TestNewLayout_Pow2RoundsSizes(t *testing.T) {
	l := mustLayout(t, 100, 60, 500, 500, true)
	if l.Width() != 128 || l.Height() != 64 {
		t.Errorf("size = %dx%d, want 128x64", l.Width(), l.Height())
	}
	if l.MaxWidth() != 256 || l.MaxHeight() != 256 {
		t.Errorf("max = %dx%d, want 256x256", l.MaxWidth(), l.MaxHeight())
	}
	if !l.Pow2() {
		t.Error("Pow2() = false, want true")
	}
}

func TestNewLayout_Pow2CapsAtMax(t *testing.T) {
	tests := []struct {
		w, h, maxW, maxH int
		wantW, wantH     int
	}{
		{100, 100, 100, 100, 64, 64},
		{300, 64, 400, 400, 256, 64},
		{64, 200, 256, 200, 64, 128},
	}
	for _, tt := range tests {
		l := mustLayout(t, tt.w, tt.h, tt.maxW, tt.maxH, true)
		if l.Width() != tt.wantW || l.Height() != tt.wantH {
			t.Errorf("NewLayout(%d, %d, %d, %d, true) = %dx%d, want %dx%d",
				tt.w, tt.h, tt.maxW, tt.maxH, l.Width(), l.Height(), tt.wantW, tt.wantH)
		}
		if l.Width() > l.MaxWidth() || l.Height() > l.MaxHeight() {
			t.Errorf("size %dx%d exceeds max %dx%d", l.Width(), l.Height(), l.MaxWidth(), l.MaxHeight())
		}
	}
	_, err := CreateAtlasLayout([]Element{{Width: 60, Height: 60}}, Options{Width: 100, Height: 100, MaxWidth: 100, MaxHeight: 100, Pow2: true})
	if err != nil {
		t.Errorf("CreateAtlasLayout with 100x100 pow2 page: %v", err)
	}
}

func TestLayout_ExactFit(t *testing.T) {
	l := mustLayout(t, 64, 64, 64, 64, false)
	mustAdd(t, l, 64, 64, 0, 0)

	if _, _, ok := l.AddElement(1, 1); ok {
		t.Error("AddElement(1, 1) on a full page succeeded, want failure")
	}
	if l.IsEmpty() {
		t.Error("IsEmpty() = true after exact fit, want false")
	}
}

func TestLayout_SplitPlacement(t *testing.T) {
	l := mustLayout(t, 128, 128, 128, 128, false)
	mustAdd(t, l, 64, 64, 0, 0)
	mustAdd(t, l, 64, 64, 64, 0)
	mustAdd(t, l, 64, 64, 0, 64)
	mustAdd(t, l, 64, 64, 64, 64)

	if _, _, ok := l.AddElement(1, 1); ok {
		t.Error("AddElement(1, 1) succeeded on a packed page, want failure")
	}
	if !l.nodes[0].full {
		t.Error("root not marked full after four exact quarters")
	}
	if s := l.Stats(); s.Utilization != 1 || s.FullLeaves != 4 {
		t.Errorf("stats = %+v, want utilization 1 and 4 full leaves", s)
	}
}

func TestLayout_SplitKeepsLargerLeftover(t *testing.T) {
	// 100 wide leftover vs 10 tall leftover: split vertically so the
	// right-hand 100x64 strip stays whole.
	l := mustLayout(t, 128, 64, 128, 64, false)
	mustAdd(t, l, 28, 54, 0, 0)
	mustAdd(t, l, 100, 64, 28, 0)
}

func TestLayout_GrowsTowardSquare(t *testing.T) {
	l := mustLayout(t, 64, 64, 256, 256, false)
	mustAdd(t, l, 64, 64, 0, 0)

	mustAdd(t, l, 64, 64, 64, 0)
	if l.Width() != 128 || l.Height() != 64 {
		t.Fatalf("after first growth size = %dx%d, want 128x64", l.Width(), l.Height())
	}

	mustAdd(t, l, 64, 64, 0, 64)
	if l.Width() != 128 || l.Height() != 128 {
		t.Fatalf("after second growth size = %dx%d, want 128x128", l.Width(), l.Height())
	}

	mustAdd(t, l, 64, 64, 64, 64)
	if l.Width() != 128 || l.Height() != 128 {
		t.Errorf("free slot should not grow page, size = %dx%d", l.Width(), l.Height())
	}
}

func TestLayout_GrowsEmptyPageInPlace(t *testing.T) {
	l := mustLayout(t, 32, 32, 256, 256, false)
	mustAdd(t, l, 100, 20, 0, 0)
	if l.Width() != 132 || l.Height() != 32 {
		t.Errorf("size = %dx%d, want 132x32", l.Width(), l.Height())
	}
}

func TestLayout_FailedGrowthRollsBack(t *testing.T) {
	l := mustLayout(t, 64, 64, 128, 128, false)
	mustAdd(t, l, 64, 64, 0, 0)

	if _, _, ok := l.AddElement(100, 100); ok {
		t.Fatal("AddElement(100, 100) succeeded, want failure")
	}
	if l.Width() != 64 || l.Height() != 64 {
		t.Errorf("size after failed growth = %dx%d, want 64x64", l.Width(), l.Height())
	}
	if got := l.Stats().Nodes; got != 1 {
		t.Errorf("nodes after failed growth = %d, want 1", got)
	}

	// The layout is still usable.
	mustAdd(t, l, 64, 64, 64, 0)
}

func TestLayout_LargerThanMax(t *testing.T) {
	l := mustLayout(t, 64, 64, 500, 500, false)
	if _, _, ok := l.AddElement(600, 600); ok {
		t.Error("AddElement(600, 600) with max 500 succeeded, want failure")
	}
	if !l.IsEmpty() {
		t.Error("IsEmpty() = false after rejected element, want true")
	}
}

func TestLayout_Pow2Growth(t *testing.T) {
	l := mustLayout(t, 100, 100, 500, 500, true)
	mustAdd(t, l, 100, 100, 0, 0)
	mustAdd(t, l, 100, 100, 128, 0)
	if l.Width() != 256 || l.Height() != 128 {
		t.Errorf("size = %dx%d, want 256x128", l.Width(), l.Height())
	}
}

func TestLayout_ZeroAndNegativeSizes(t *testing.T) {
	l := mustLayout(t, 64, 64, 64, 64, false)
	x, y, ok := l.AddElement(0, 10)
	if !ok || x != 0 || y != 0 {
		t.Errorf("AddElement(0, 10) = (%d, %d, %v), want (0, 0, true)", x, y, ok)
	}
	if !l.IsEmpty() {
		t.Error("zero-area element consumed space")
	}
	if _, _, ok := l.AddElement(-1, 5); ok {
		t.Error("AddElement(-1, 5) succeeded, want failure")
	}
}

func TestLayout_Clear(t *testing.T) {
	l := mustLayout(t, 64, 64, 512, 512, false)
	for range 6 {
		if _, _, ok := l.AddElement(64, 64); !ok {
			t.Fatal("AddElement(64, 64) failed")
		}
	}
	if l.Width() == 64 && l.Height() == 64 {
		t.Fatal("page did not grow")
	}

	l.Clear()
	if !l.IsEmpty() {
		t.Error("IsEmpty() = false after Clear")
	}
	if l.Width() != 64 || l.Height() != 64 {
		t.Errorf("size after Clear = %dx%d, want 64x64", l.Width(), l.Height())
	}
	if s := l.Stats(); s.UsedArea != 0 || s.Nodes != 1 {
		t.Errorf("stats after Clear = %+v, want one node and no used area", s)
	}
	mustAdd(t, l, 64, 64, 0, 0)
}

func TestLayout_RandomNoOverlapAndContainment(t *testing.T) {
	for _, pow2 := range []bool{false, true} {
		rng := rand.New(rand.NewPCG(7, 11))
		l := mustLayout(t, 64, 64, 512, 512, pow2)

		var rects []placed
		for range 300 {
			w, h := 1+rng.IntN(48), 1+rng.IntN(48)
			x, y, ok := l.AddElement(w, h)
			if !ok {
				continue
			}
			r := placed{x, y, w, h}
			for _, other := range rects {
				if r.overlaps(other) {
					t.Fatalf("pow2=%v: %+v overlaps %+v", pow2, r, other)
				}
			}
			rects = append(rects, r)
		}
		if len(rects) == 0 {
			t.Fatalf("pow2=%v: nothing placed", pow2)
		}
		for _, r := range rects {
			if r.x < 0 || r.y < 0 || r.x+r.w > l.Width() || r.y+r.h > l.Height() {
				t.Errorf("pow2=%v: %+v outside %dx%d page", pow2, r, l.Width(), l.Height())
			}
		}
		if l.Width() > 512 || l.Height() > 512 {
			t.Errorf("pow2=%v: page %dx%d exceeds max", pow2, l.Width(), l.Height())
		}
		if pow2 && (nextPow2(l.Width()) != l.Width() || nextPow2(l.Height()) != l.Height()) {
			t.Errorf("page %dx%d not a power of two", l.Width(), l.Height())
		}
	}
}

func TestLayout_TreeInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	l := mustLayout(t, 32, 32, 256, 256, false)
	for range 100 {
		l.AddElement(1+rng.IntN(40), 1+rng.IntN(40))
	}

	var check func(idx int)
	check = func(idx int) {
		n := l.nodes[idx]
		if n.isLeaf() {
			if n.children[1] != noChild {
				t.Fatalf("node %d has only one child", idx)
			}
			return
		}
		a, b := l.nodes[n.children[0]], l.nodes[n.children[1]]
		for _, c := range []node{a, b} {
			if c.w <= 0 || c.h <= 0 {
				t.Fatalf("node %d has empty child %+v", idx, c)
			}
			if c.x < n.x || c.y < n.y || c.x+c.w > n.x+n.w || c.y+c.h > n.y+n.h {
				t.Fatalf("child %+v escapes parent %+v", c, n)
			}
		}
		if (placed{a.x, a.y, a.w, a.h}).overlaps(placed{b.x, b.y, b.w, b.h}) {
			t.Fatalf("children of node %d overlap", idx)
		}
		if n.full != (a.full && b.full) && n.full {
			t.Fatalf("node %d full but a child has room", idx)
		}
		check(n.children[0])
		check(n.children[1])
	}
	check(0)

	root := l.nodes[0]
	if root.x != 0 || root.y != 0 || root.w != l.Width() || root.h != l.Height() {
		t.Errorf("root %+v does not span the %dx%d page", root, l.Width(), l.Height())
	}
}

func TestPow2Helpers(t *testing.T) {
	tests := []struct {
		in, next, prev int
	}{
		{0, 1, 0},
		{1, 1, 1},
		{2, 2, 2},
		{3, 4, 2},
		{100, 128, 64},
		{256, 256, 256},
		{500, 512, 256},
	}
	for _, tt := range tests {
		if got := nextPow2(tt.in); got != tt.next {
			t.Errorf("nextPow2(%d) = %d, want %d", tt.in, got, tt.next)
		}
		if got := prevPow2(tt.in); got != tt.prev {
			t.Errorf("prevPow2(%d) = %d, want %d", tt.in, got, tt.prev)
		}
	}
}

func BenchmarkLayout_AddElement(b *testing.B) {
	rng := rand.New(rand.NewPCG(1, 2))
	sizes := make([][2]int, 512)
	for i := range sizes {
		sizes[i] = [2]int{4 + rng.IntN(60), 4 + rng.IntN(60)}
	}
	l, _ := NewLayout(256, 256, 4096, 4096, false)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.Clear()
		for _, s := range sizes {
			l.AddElement(s[0], s[1])
		}
	}
}
