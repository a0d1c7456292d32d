package grid

import (
	"errors"
	"testing"

	"github.com/dshills/replscreen/internal/renderer/core"
)

// pattern fills b with distinct letters so misplaced cells are detectable.
func pattern(b *Buffer) {
	for pos := 0; pos < b.Size(); pos++ {
		b.SetAt(pos, core.NewCell(rune('A'+pos%52), core.ColorDefault, core.ColorDefault))
	}
}

func TestNew(t *testing.T) {
	b := New(10, 3)
	if b.Width() != 10 || b.Height() != 3 || b.Size() != 30 {
		t.Fatalf("size = %dx%d (%d), want 10x3 (30)", b.Width(), b.Height(), b.Size())
	}
	for pos := 0; pos < b.Size(); pos++ {
		if !b.At(pos).Equals(core.EmptyCell()) {
			t.Fatalf("cell %d = %+v, want empty", pos, b.At(pos))
		}
	}
}

func TestLinearAndGridAddressing(t *testing.T) {
	b := New(4, 3)
	c := core.NewCell('x', core.ColorRed, core.ColorDefault)
	b.SetCell(2, 1, c)
	if got := b.At(1*4 + 2); !got.Equals(c) {
		t.Errorf("At(6) = %+v, want %+v", got, c)
	}
	b.SetAt(11, c)
	if got := b.Cell(3, 2); !got.Equals(c) {
		t.Errorf("Cell(3,2) = %+v, want %+v", got, c)
	}

	// out of range access is harmless
	b.SetCell(9, 9, c)
	if got := b.Cell(-1, 0); !got.Equals(core.EmptyCell()) {
		t.Errorf("Cell(-1,0) = %+v, want empty", got)
	}
}

func TestFill(t *testing.T) {
	b := New(5, 4)
	if err := b.Fill(core.NewRect(1, 1, 3, 2), '#', core.ColorGreen, core.ColorBlack); err != nil {
		t.Fatalf("Fill() error = %v", err)
	}
	want := []string{"", " ###", " ###", ""}
	for row, w := range want {
		if got := b.Row(row); got != w {
			t.Errorf("Row(%d) = %q, want %q", row, got, w)
		}
	}
	if !b.Cell(2, 1).Fg.Equals(core.ColorGreen) {
		t.Error("fill color not applied")
	}
}

func TestFillOutOfBounds(t *testing.T) {
	b := New(5, 4)
	before := b.Clone()
	err := b.Fill(core.NewRect(3, 3, 3, 2), '#', core.ColorDefault, core.ColorDefault)
	if !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("Fill() error = %v, want ErrOutOfBounds", err)
	}
	var be *BoundsError
	if !errors.As(err, &be) || be.Op != "fill" {
		t.Errorf("error = %#v, want *BoundsError{Op: fill}", err)
	}
	if !b.Equal(before) {
		t.Error("failed fill modified the buffer")
	}
}

func TestCopyBetweenBuffers(t *testing.T) {
	src := New(6, 4)
	pattern(src)
	dst := New(3, 2)
	if err := Copy(dst, 0, 0, src, core.NewRect(2, 1, 3, 2)); err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			if got, want := dst.Cell(x, y).Rune, src.Cell(x+2, y+1).Rune; got != want {
				t.Errorf("dst(%d,%d) = %q, want %q", x, y, got, want)
			}
		}
	}
}

func TestCopyOverlapMatchesTemporary(t *testing.T) {
	src := core.NewRect(2, 2, 4, 3)
	offsets := []struct {
		name   string
		dx, dy int
	}{
		{"down", 0, 1},
		{"up", 0, -1},
		{"right", 1, 0},
		{"left", -1, 0},
		{"down-right", 2, 2},
		{"down-left", -2, 1},
		{"up-right", 1, -2},
		{"up-left", -2, -2},
		{"same", 0, 0},
	}

	for _, tt := range offsets {
		t.Run(tt.name, func(t *testing.T) {
			got := New(9, 8)
			pattern(got)
			want := got.Clone()

			// reference: through a fresh temporary buffer
			tmp := New(src.W, src.H)
			if err := Copy(tmp, 0, 0, want, src); err != nil {
				t.Fatal(err)
			}
			if err := Copy(want, src.X+tt.dx, src.Y+tt.dy, tmp, tmp.Bounds()); err != nil {
				t.Fatal(err)
			}

			if err := Copy(got, src.X+tt.dx, src.Y+tt.dy, got, src); err != nil {
				t.Fatalf("Copy() error = %v", err)
			}
			if !got.Equal(want) {
				for row := 0; row < got.Height(); row++ {
					if got.Row(row) != want.Row(row) {
						t.Errorf("row %d = %q, want %q", row, got.Row(row), want.Row(row))
					}
				}
			}
		})
	}
}

func TestCopyOutOfBounds(t *testing.T) {
	b := New(4, 4)
	if err := Copy(b, 2, 2, b, core.NewRect(0, 0, 3, 3)); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("dst overflow error = %v, want ErrOutOfBounds", err)
	}
	if err := Copy(b, 0, 0, b, core.NewRect(-1, 0, 2, 2)); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("src underflow error = %v, want ErrOutOfBounds", err)
	}
}

func TestText(t *testing.T) {
	b := New(4, 2)
	for i, r := range "abcdefgh" {
		b.SetAt(i, core.NewCell(r, core.ColorDefault, core.ColorDefault))
	}
	tests := []struct {
		from, to int
		want     string
	}{
		{0, 3, "abc"},
		{2, 6, "cdef"},
		{6, 100, "gh"},
		{5, 5, ""},
		{-3, 1, "a"},
	}
	for _, tt := range tests {
		if got := b.Text(tt.from, tt.to); got != tt.want {
			t.Errorf("Text(%d,%d) = %q, want %q", tt.from, tt.to, got, tt.want)
		}
	}
}
