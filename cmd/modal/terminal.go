package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/modal/internal/config"
	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/input/key"
	"github.com/dshills/modal/internal/logging"
	"github.com/dshills/modal/internal/register"
	"github.com/dshills/modal/internal/session"
)

// Shell keys handled before the session sees them.
var (
	quitKey = key.Ctrl('q')
	saveKey = key.Ctrl('s')
)

var (
	textStyle      = tcell.StyleDefault
	selectionStyle = tcell.StyleDefault.Reverse(true)
	statusStyle    = tcell.StyleDefault.Bold(true)
	errorStyle     = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

// terminal renders a session on a tcell screen. It implements
// session.UI.
type terminal struct {
	screen tcell.Screen
	buf    *buffer.Buffer
	path   string

	mu          sync.Mutex
	top         int
	status      string
	statusError bool
	decorations map[string][]buffer.Range
}

func runTerminal(ctx context.Context, cfg config.Config, buf *buffer.Buffer, registers *register.Table, log *logging.Logger, opts Options) int {
	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize terminal: %v\n", err)
		return 1
	}
	defer screen.Fini()

	t := &terminal{
		screen:      screen,
		buf:         buf,
		path:        opts.Args.File,
		decorations: make(map[string][]buffer.Range),
	}
	s, plugins, err := newSession(cfg, buf, t, registers, log, opts)
	if err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer plugins.Close()

	w, err := config.Watch(ctx, opts.Config, func(next config.Config) {
		s.SetConfig(next)
		t.SetStatusText("configuration reloaded", false)
		screen.PostEvent(tcell.NewEventInterrupt(nil))
	}, log)
	if err != nil {
		log.Warn("not watching %s: %v", opts.Config, err)
	} else {
		defer w.Close()
	}

	go func() {
		<-ctx.Done()
		screen.PostEvent(tcell.NewEventInterrupt(nil))
	}()

	t.loop(ctx, s, log)

	if err := saveRegisters(registers, opts.Registers); err != nil {
		log.Error("%v", err)
	}
	return 0
}

// loop draws and feeds keys to the session until the quit key or ctx is
// done.
func (t *terminal) loop(ctx context.Context, s *session.Session, log *logging.Logger) {
	for ctx.Err() == nil {
		t.draw(s)

		switch ev := t.screen.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventResize:
			t.screen.Sync()
		case *tcell.EventKey:
			k, ok := key.FromTcell(ev)
			if !ok {
				continue
			}
			switch k {
			case quitKey:
				return
			case saveKey:
				t.save(log)
				continue
			}
			if err := s.HandleKeyContext(ctx, k); err != nil {
				t.SetStatusText(err.Error(), true)
			}
		}
	}
}

func (t *terminal) save(log *logging.Logger) {
	if t.path == "" {
		t.SetStatusText("no file name", true)
		return
	}
	if err := os.WriteFile(t.path, []byte(t.buf.String()), 0o644); err != nil {
		log.Error("writing %s: %v", t.path, err)
		t.SetStatusText(err.Error(), true)
		return
	}
	t.SetStatusText(fmt.Sprintf("%q %dL written", t.path, t.buf.LineCount()), false)
}

// RevealRange scrolls so that the start of r is visible.
func (t *terminal) RevealRange(r buffer.Range) {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, h := t.screen.Size()
	rows := max(h-1, 1)
	switch {
	case r.Start.Line < t.top:
		t.top = r.Start.Line
	case r.Start.Line >= t.top+rows:
		t.top = r.Start.Line - rows + 1
	}
}

// SetDecorations replaces the highlighted ranges under name.
func (t *terminal) SetDecorations(name string, ranges []buffer.Range) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.decorations[name] = ranges
}

// SetStatusText shows text in the status line until the next message.
func (t *terminal) SetStatusText(text string, isError bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status, t.statusError = text, isError
}

func (t *terminal) draw(s *session.Session) {
	cursors := s.Cursors()
	modeName := s.Mode().DisplayName()
	pendingKeys := s.PendingDisplay()
	recording, isRecording := s.Recording()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Clear()
	w, h := t.screen.Size()
	rows := max(h-1, 1)
	selections := t.decorations[session.SelectionDecoration]

	for y := 0; y < rows; y++ {
		n := t.top + y
		if n >= t.buf.LineCount() {
			t.screen.SetContent(0, y, '~', nil, textStyle)
			continue
		}
		t.drawLine(n, y, w, selections)
	}

	for i, c := range cursors {
		p := c.Active
		if p.Line < t.top || p.Line >= t.top+rows {
			continue
		}
		x := screenColumn(t.buf.LineAt(p.Line).Text, p.Column)
		if i == 0 {
			t.screen.ShowCursor(x, p.Line-t.top)
			continue
		}
		r, comb, _, _ := t.screen.GetContent(x, p.Line-t.top)
		t.screen.SetContent(x, p.Line-t.top, r, comb, selectionStyle)
	}

	left := modeName
	if isRecording {
		left += fmt.Sprintf(" recording @%c", recording)
	}
	style := statusStyle
	if t.status != "" {
		left = t.status
		if t.statusError {
			style = errorStyle
		}
	}
	drawText(t.screen, 0, h-1, w, left, style)
	drawText(t.screen, max(w-12, 0), h-1, 12, pendingKeys, statusStyle)
	t.screen.Show()
}

// drawLine draws line n at row y, highlighting selected text.
func (t *terminal) drawLine(n, y, width int, selections []buffer.Range) {
	text := t.buf.LineAt(n).Text
	x, col := 0, 0
	g := uniseg.NewGraphemes(text)
	for g.Next() && x < width {
		runes := g.Runes()
		style := textStyle
		if selected(selections, buffer.Pos(n, col)) {
			style = selectionStyle
		}
		t.screen.SetContent(x, y, runes[0], runes[1:], style)
		x += max(g.Width(), 1)
		col += len(g.Str())
	}
}

func selected(ranges []buffer.Range, p buffer.Position) bool {
	for _, r := range ranges {
		if r.Contains(p) {
			return true
		}
	}
	return false
}

// screenColumn returns the screen cell of byte column col.
func screenColumn(line string, col int) int {
	return uniseg.StringWidth(line[:min(col, len(line))])
}

func drawText(screen tcell.Screen, x, y, width int, text string, style tcell.Style) {
	g := uniseg.NewGraphemes(text)
	end := x + width
	for g.Next() && x < end {
		runes := g.Runes()
		screen.SetContent(x, y, runes[0], runes[1:], style)
		x += max(g.Width(), 1)
	}
}
