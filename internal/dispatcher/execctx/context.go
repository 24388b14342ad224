// Package execctx provides the execution context for action handlers.
//
// A Context is built by the dispatcher for every invocation of an action,
// once per cursor or once for the whole command. Handlers read the
// document, the register table, and the resolved command parameters from
// it, and request edits, cursor moves, and mode changes through it. The
// dispatcher applies the requests after all invocations of a step ran.
package execctx

import (
	"github.com/samber/mo"

	"github.com/dshills/modal/internal/config"
	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/engine/cursor"
	"github.com/dshills/modal/internal/input/key"
	"github.com/dshills/modal/internal/input/mode"
	"github.com/dshills/modal/internal/logging"
	"github.com/dshills/modal/internal/register"
	"github.com/dshills/modal/internal/transform"
)

// MacroControl is the part of the macro recorder handlers may drive.
type MacroControl interface {
	// BeginMacro starts recording into register name.
	BeginMacro(name rune) error
	// EndMacro stops recording and stores the macro.
	EndMacro() (rune, error)
	// Recording returns the register being recorded into, if any.
	Recording() mo.Option[rune]
	// LastInvoked returns the register last replayed with @.
	LastInvoked() mo.Option[rune]
}

// CommandState is the part of the pending command that prefix actions
// update.
type CommandState interface {
	// AccumulateCount adds a typed count digit.
	AccumulateCount(digit int)
	// DropCountDigit removes the last typed count digit.
	DropCountDigit()
	// SetRegister selects the register for the command.
	SetRegister(name rune)
}

// Env holds the collaborators shared by every invocation in a session.
type Env struct {
	Buffer    buffer.TextBuffer
	Registers *register.Table
	Config    config.Config
	Log       *logging.Logger
	State     *State
	Macros    MacroControl
}

// Context is the execution context of one action invocation.
type Context struct {
	Env

	// Mode is the mode the action was matched in.
	Mode mode.Mode

	// CursorIndex and Cursor identify the cursor this invocation runs
	// for. Once-actions run with index 0 and see every cursor in Cursors.
	CursorIndex int
	Cursor      cursor.Cursor
	Cursors     []cursor.Cursor

	// Count is the command count; 0 when none was typed.
	Count int

	// Register is the register selected with a " prefix.
	Register mo.Option[rune]

	// Keys are the tokens that matched the action; Captures are the tokens
	// consumed by <character>, <register>, and <number> placeholders.
	Keys     []key.Event
	Captures []key.Event

	// Operator names the pending operator while its motion runs.
	Operator string

	// Replaying is set while a macro or dot repeat is being replayed.
	Replaying bool

	// Pending is the command being built.
	Pending CommandState

	acc      *transform.Accumulator
	next     mo.Option[mode.Mode]
	cursors  []cursor.Cursor
	complete mo.Option[bool]
	stored   mo.Option[StoredText]
}

// StoredText is register text an operator produced for its cursor.
type StoredText struct {
	Register rune
	Text     string
	Wise     register.Wise
	Yank     bool
}

// New creates a context queueing its requests on acc.
func New(env Env, acc *transform.Accumulator) *Context {
	if env.Log == nil {
		env.Log = logging.Nop()
	}
	if env.State == nil {
		env.State = NewState()
	}
	return &Context{Env: env, acc: acc}
}

// WithCursor returns the context bound to cursor i.
func (ctx *Context) WithCursor(i int, c cursor.Cursor) *Context {
	ctx.CursorIndex = i
	ctx.Cursor = c
	return ctx
}

// WithCount returns the context with the command count set.
func (ctx *Context) WithCount(count int) *Context {
	ctx.Count = max(count, 0)
	return ctx
}

// GetCount returns the count, defaulting to 1.
func (ctx *Context) GetCount() int {
	if ctx.Count <= 0 {
		return 1
	}
	return ctx.Count
}

// Pos returns the active position of the cursor.
func (ctx *Context) Pos() buffer.Position {
	return ctx.Cursor.Active
}

// Line returns the text of line n.
func (ctx *Context) Line(n int) string {
	return ctx.Buffer.LineAt(n).Text
}

// LastLine returns the index of the final line.
func (ctx *Context) LastLine() int {
	return ctx.Buffer.LineCount() - 1
}

// Char returns the character captured by a <character> placeholder.
func (ctx *Context) Char() (rune, bool) {
	if len(ctx.Captures) == 0 {
		return 0, false
	}
	return ctx.Captures[len(ctx.Captures)-1].Char()
}

// RegisterName returns the selected register, or 0 for the default.
func (ctx *Context) RegisterName() rune {
	return ctx.Register.OrElse(0)
}

// Emit queues a transformation. Unattributed transformations are
// attributed to this invocation's cursor.
func (ctx *Context) Emit(t transform.Transformation) {
	if t.Cursor.IsAbsent() && t.Kind != transform.MacroReplay && t.Kind != transform.DotRepeat && t.Kind != transform.ShowStatus {
		t.Cursor = mo.Some(ctx.CursorIndex)
	}
	ctx.acc.Add(t)
}

// Insert queues an insertion at p; the cursor lands at land.
func (ctx *Context) Insert(p buffer.Position, text string, land buffer.Position) {
	ctx.Emit(transform.Insert(ctx.CursorIndex, p, text).WithDiff(transform.Target(land)))
}

// Delete queues a deletion of r; the cursor lands at land.
func (ctx *Context) Delete(r buffer.Range, land buffer.Position) {
	ctx.Emit(transform.Delete(ctx.CursorIndex, r).WithDiff(transform.Target(land)))
}

// Replace queues a replacement of r; the cursor lands at land.
func (ctx *Context) Replace(r buffer.Range, text string, land buffer.Position) {
	ctx.Emit(transform.Replace(ctx.CursorIndex, r, text).WithDiff(transform.Target(land)))
}

// MoveTo places the cursor at p without editing.
func (ctx *Context) MoveTo(p buffer.Position) {
	ctx.Emit(transform.Move(ctx.CursorIndex, p))
}

// Select sets the cursor's anchor and active position.
func (ctx *Context) Select(c cursor.Cursor) {
	ctx.Emit(transform.Select(ctx.CursorIndex, c))
}

// Status shows text in the status line once the command finishes.
func (ctx *Context) Status(text string) {
	ctx.Emit(transform.Transformation{Kind: transform.ShowStatus, Text: text})
}

// SetMode requests a mode change after the step.
func (ctx *Context) SetMode(m mode.Mode) {
	ctx.next = mo.Some(m)
}

// SetCursors replaces the whole cursor set after the step. Positions are
// in post-edit coordinates. Only meaningful for once-actions.
func (ctx *Context) SetCursors(cursors []cursor.Cursor) {
	ctx.cursors = append([]cursor.Cursor(nil), cursors...)
}

// KeepPending marks the command as still waiting for more keys.
func (ctx *Context) KeepPending() {
	ctx.complete = mo.Some(false)
}

// Finish marks the command as complete even if the action is normally
// followed by more keys.
func (ctx *Context) Finish() {
	ctx.complete = mo.Some(true)
}

// StoreText queues text for the selected register. The dispatcher writes
// the texts of every cursor whose edits were applied as one value, after
// the step.
func (ctx *Context) StoreText(text string, wise register.Wise, yank bool) {
	ctx.stored = mo.Some(StoredText{Register: ctx.RegisterName(), Text: text, Wise: wise, Yank: yank})
}

// Stored returns the text queued with StoreText.
func (ctx *Context) Stored() mo.Option[StoredText] {
	return ctx.stored
}

// NextMode returns the mode requested with SetMode.
func (ctx *Context) NextMode() mo.Option[mode.Mode] {
	return ctx.next
}

// ReplacedCursors returns the cursors set with SetCursors, or nil.
func (ctx *Context) ReplacedCursors() []cursor.Cursor {
	return ctx.cursors
}

// Completion returns the completion override set with KeepPending or
// Finish.
func (ctx *Context) Completion() mo.Option[bool] {
	return ctx.complete
}

// RecordChange records an edit typed during an insert session so that
// dot repeat can replay it. Only the primary cursor's edits are kept.
func (ctx *Context) RecordChange(r buffer.Range, text string) {
	if ctx.CursorIndex != 0 || ctx.Replaying {
		return
	}
	start := buffer.Offset(ctx.Buffer, r.Start)
	ctx.acc.AddContentChange(transform.ContentChange{
		Range:       r,
		RangeOffset: start,
		RangeLength: buffer.Offset(ctx.Buffer, r.End) - start,
		Text:        text,
	})
}
