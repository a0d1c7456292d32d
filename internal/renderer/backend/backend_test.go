package backend

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/replscreen/internal/input/key"
	"github.com/dshills/replscreen/internal/renderer/core"
)

func TestNullHostPaintRun(t *testing.T) {
	h := NewNullHost(6, 2)
	h.PaintRun(1, 0, "abc", core.ColorRed, core.ColorDefault, core.StyleBold)
	h.PaintRun(4, 1, "xyz", core.ColorDefault, core.ColorDefault, core.StyleNone)

	if got := h.Line(0); got != " abc  " {
		t.Errorf("Line(0) = %q, want %q", got, " abc  ")
	}
	if got := h.Line(1); got != "    xy" {
		t.Errorf("Line(1) = %q, want %q (clipped)", got, "    xy")
	}
	if c := h.Cell(2, 0); !c.Fg.Equals(core.ColorRed) || c.Style != core.StyleBold {
		t.Errorf("Cell(2,0) = %+v", c)
	}
	if n := h.PaintedCells(); n != 6 {
		t.Errorf("PaintedCells() = %d, want 6", n)
	}
	h.ResetLog()
	if len(h.Paints()) != 0 {
		t.Error("ResetLog() kept paints")
	}
}

func TestNullHostEvents(t *testing.T) {
	h := NewNullHost(4, 4)
	ev := key.NewRuneEvent('q', key.ModNone)
	h.PostKeyEvent(ev)
	if got := h.NextKeyEvent(); !got.Equals(ev) {
		t.Errorf("NextKeyEvent() = %v, want %v", got, ev)
	}

	h.Resize(8, 3)
	if got := h.NextKeyEvent(); got.Key != key.KeyResize {
		t.Errorf("after Resize NextKeyEvent() = %v, want Resize", got)
	}
	if w, hgt := h.Size(); w != 8 || hgt != 3 {
		t.Errorf("Size() = %dx%d, want 8x3", w, hgt)
	}

	go h.Shutdown()
	if got := h.NextKeyEvent(); got.Key != key.KeyNone {
		t.Errorf("after Shutdown NextKeyEvent() = %v, want KeyNone", got)
	}
}

func TestGateInline(t *testing.T) {
	h := NewNullHost(4, 1)
	g := NewGate(h)
	g.Do(func(h Host) { h.PaintRun(0, 0, "hi", core.ColorDefault, core.ColorDefault, 0) })
	if got := h.Line(0); got != "hi  " {
		t.Errorf("Line(0) = %q", got)
	}
	if g.Calls() != 1 {
		t.Errorf("Calls() = %d, want 1", g.Calls())
	}
}

func TestGateServeRunsOnServingGoroutine(t *testing.T) {
	h := NewNullHost(10, 1)
	g := NewGate(h)
	ctx, cancel := context.WithCancel(context.Background())

	var served sync.WaitGroup
	served.Add(1)
	inServe := make(chan struct{})
	var serveErr error
	go func() {
		defer served.Done()
		close(inServe)
		serveErr = g.Serve(ctx)
	}()
	<-inServe
	for !g.serving.Load() {
		time.Sleep(time.Millisecond)
	}

	var wg sync.WaitGroup
	for i := range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Do(func(h Host) { h.PaintRun(i, 0, "x", core.ColorDefault, core.ColorDefault, 0) })
		}()
	}
	wg.Wait()
	if got := h.Line(0); got != "xxxxx     " {
		t.Errorf("Line(0) = %q", got)
	}

	cancel()
	served.Wait()
	if !errors.Is(serveErr, context.Canceled) {
		t.Errorf("Serve() error = %v, want context.Canceled", serveErr)
	}
	if err := g.Serve(context.Background()); !errors.Is(err, ErrGateServed) {
		t.Errorf("second Serve() error = %v, want ErrGateServed", err)
	}

	// after Serve returns, calls run inline again
	g.Do(func(h Host) { h.PaintRun(9, 0, "y", core.ColorDefault, core.ColorDefault, 0) })
	if got := h.Cell(9, 0).Rune; got != 'y' {
		t.Errorf("inline call after Serve painted %q", got)
	}
}

func TestConvertKey(t *testing.T) {
	tests := []struct {
		name string
		k    tcell.Key
		r    rune
		m    tcell.ModMask
		want key.Event
	}{
		{"rune", tcell.KeyRune, 'x', tcell.ModNone, key.NewRuneEvent('x', key.ModNone)},
		{"ctrl letter", tcell.KeyCtrlC, 0, tcell.ModCtrl, key.NewRuneEvent('c', key.ModCtrl)},
		{"ctrl rune", tcell.KeyRune, 'K', tcell.ModCtrl, key.NewRuneEvent('k', key.ModCtrl)},
		{"enter", tcell.KeyEnter, 0, tcell.ModNone, key.NewSpecialEvent(key.KeyEnter, key.ModNone)},
		{"alt enter", tcell.KeyEnter, 0, tcell.ModAlt, key.NewSpecialEvent(key.KeyEnter, key.ModAlt)},
		{"backtab", tcell.KeyBacktab, 0, tcell.ModNone, key.NewSpecialEvent(key.KeyTab, key.ModShift)},
		{"backspace2", tcell.KeyBackspace2, 0, tcell.ModNone, key.NewSpecialEvent(key.KeyBackspace, key.ModNone)},
		{"shift left", tcell.KeyLeft, 0, tcell.ModShift, key.NewSpecialEvent(key.KeyLeft, key.ModShift)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := convertKey(tt.k, tt.r, tt.m); !got.Equals(tt.want) {
				t.Errorf("convertKey() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestBlend(t *testing.T) {
	c := core.ColorFromRGB(100, 100, 100)
	light := blend(c, 1, highlightAmount)
	dark := blend(c, 0, shadowAmount)
	if light.R <= c.R || dark.R >= c.R {
		t.Errorf("blend: light %v dark %v from %v", light, dark, c)
	}
	if got := blend(core.ColorDefault, 1, 0.5); !got.IsDefault() {
		t.Errorf("blend(default) = %v, want default", got)
	}
}
