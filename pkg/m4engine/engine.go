// Package m4engine implements an m4-style macro processor: a tokenizer
// over a re-entrant push-back input stream, a hash-table macro store, a
// call-frame stack with per-call argument collection, and eleven output
// diversions.
package m4engine

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/avsandbox/spotkit/pkg/pushbuf"
	"github.com/avsandbox/spotkit/pkg/symtab"
)

// errEndOfInput is the internal sentinel for "the input stream is
// exhausted"; it is never returned from Run.
var errEndOfInput = errors.New("m4engine: end of input")

// discardSlot is the diversion index backing divert(-1): writes to it are
// dropped immediately rather than buffered.
const discardSlot = 10

const numBuckets = 16384

// builtinNames is the full set of recognized built-ins, installed as
// hash-table entries with an absent definition.
var builtinNames = []string{
	"define", "undefine", "changequote", "divert", "divnum", "undivert",
	"dumpdef", "errprint", "ifdef", "ifelse", "include", "len", "index",
	"substr", "translit", "dnl", "esyscmd", "maketemp", "incr", "add",
	"mult", "sub", "div", "mod", "htdist", "dirsep",
}

// Engine is one macro-processing run: input stream, symbol table, call
// stack, quoting state, and diversion bank.
type Engine struct {
	input       *pushbuf.Buf
	table       *symtab.Table
	frames      []*frame
	diversions  [11]*pushbuf.Buf
	activeDiv   int
	leftQuote   byte
	rightQuote  byte
	quoteDepth  int
	readStdin   bool
	stdinReader io.ByteReader
	out         io.Writer
	errOut      io.Writer
	tmp         *pushbuf.Buf
}

// NewEngine returns a ready engine that writes diversion 0 to out and
// diagnostics to errOut.
func NewEngine(out, errOut io.Writer) *Engine {
	e := &Engine{
		input:      pushbuf.New(4096),
		table:      symtab.New(numBuckets),
		leftQuote:  '`',
		rightQuote: '\'',
		out:        out,
		errOut:     errOut,
		tmp:        pushbuf.New(64),
	}

	for i := range e.diversions {
		e.diversions[i] = pushbuf.New(256)
	}

	for _, name := range builtinNames {
		e.table.Upsert(name, nil)
	}

	return e
}

// Define pre-loads a user macro definition before Run starts; cmd/m4's -D
// flag and the tests use it.
func (e *Engine) Define(name, def string) {
	d := def
	e.table.Upsert(name, &d)
}

// LoadString injects s directly into the input stream ahead of any
// included files, for testing and for piping a literal fragment to Run.
func (e *Engine) LoadString(s string) error {
	return e.input.UnshiftStr(s)
}

// Run include's files in reverse order (so the first file's bytes pop
// first), optionally falls back to stdin when files is empty, and drives
// the macro-expansion loop to completion.
func (e *Engine) Run(files []string, readStdin bool, stdinReader io.ByteReader) error {
	e.readStdin = readStdin
	e.stdinReader = stdinReader

	for i := len(files) - 1; i >= 0; i-- {
		if err := e.input.IncludeFile(files[i]); err != nil {
			return err
		}
	}

	return e.loop()
}

func (e *Engine) loop() error {
	for {
		tok, err := e.readToken()
		if errors.Is(err, errEndOfInput) {
			return e.handleEndOfInput()
		}

		if err != nil {
			return err
		}

		if err := e.step(tok); err != nil {
			if errors.Is(err, errEndOfInput) {
				return e.handleEndOfInput()
			}

			return err
		}

		if len(e.frames) == 0 {
			if err := e.flushDiversionZero(); err != nil {
				return err
			}
		}
	}
}

func (e *Engine) handleEndOfInput() error {
	if len(e.frames) > 0 {
		return fmt.Errorf("m4: end of input with %d unclosed macro call(s)", len(e.frames))
	}

	if e.quoteDepth > 0 {
		return errors.New("m4: end of input with unclosed quote")
	}

	return e.undivertAll()
}

// readToken reads one tokenizer word, stripping GetWord's trailing NUL.
func (e *Engine) readToken() (string, error) {
	tok, eof, err := pushbuf.GetWord(e.input, e.readStdin, e.stdinReader)
	if err != nil {
		return "", err
	}

	if eof {
		return "", errEndOfInput
	}

	return string(tok[:len(tok)-1]), nil
}

// step processes one token against the current quoting/call-stack state,
// in the same priority order as the reference tokenizer: quote-open,
// quote-close, quote-on passthrough, macro lookup, arg-end, arg-comma,
// nested close-paren, nested open-paren, default passthrough.
func (e *Engine) step(tok string) error {
	lq := string(e.leftQuote)
	rq := string(e.rightQuote)

	if e.quoteDepth == 0 {
		if tok == lq {
			e.quoteDepth = 1

			return nil
		}
	} else {
		if tok == rq {
			e.quoteDepth--
			if e.quoteDepth > 0 {
				return e.emitStr(tok)
			}

			return nil
		}

		if tok == lq {
			e.quoteDepth++

			return e.emitStr(tok)
		}

		return e.emitStr(tok)
	}

	if def, hasDef, ok := e.table.GetDef(tok); ok {
		return e.handleMacroToken(tok, def, hasDef)
	}

	if len(e.frames) > 0 {
		top := e.frames[len(e.frames)-1]

		if tok == ")" && top.bracketDepth == 1 {
			return e.handleArgEnd()
		}

		if tok == "," && top.bracketDepth == 1 {
			top.activeArg++
			if top.activeArg > 9 {
				return fmt.Errorf("m4: %s: too many arguments", top.name)
			}

			return e.eatWs()
		}

		if tok == ")" {
			top.bracketDepth--

			return top.appendArg(tok)
		}

		if tok == "(" {
			top.bracketDepth++

			return top.appendArg(tok)
		}

		return top.appendArg(tok)
	}

	return e.emitStr(tok)
}

// handleMacroToken decides between argument collection and a no-arg
// invocation, peeking one token ahead.
func (e *Engine) handleMacroToken(name, def string, hasDef bool) error {
	next, err := e.readToken()

	eofHit := errors.Is(err, errEndOfInput)
	if err != nil && !eofHit {
		return err
	}

	if !eofHit && next == "(" {
		e.frames = append(e.frames, &frame{name: name, def: def, hasDef: hasDef, bracketDepth: 1, activeArg: 1})

		return e.eatWs()
	}

	if !eofHit {
		if err := e.input.UnshiftStr(next); err != nil {
			return err
		}
	}

	if !hasDef {
		return e.processBuiltinNoArgs(name)
	}

	return e.input.UnshiftStr(stripDef(def))
}

// handleArgEnd closes the active call, dispatching to a built-in or
// substituting and re-injecting a user macro's definition.
func (e *Engine) handleArgEnd() error {
	n := len(e.frames)
	top := e.frames[n-1]
	e.frames = e.frames[:n-1]

	if !top.hasDef {
		return e.processBuiltinWithArgs(top)
	}

	return e.input.UnshiftStr(top.substitute())
}

// eatWs discards consecutive whitespace-only tokens, pushing back the
// first non-whitespace token it finds.
func (e *Engine) eatWs() error {
	for {
		tok, err := e.readToken()
		if errors.Is(err, errEndOfInput) {
			return err
		}

		if err != nil {
			return err
		}

		if len(tok) == 1 && isWhitespaceByte(tok[0]) {
			continue
		}

		return e.input.UnshiftStr(tok)
	}
}

func isWhitespaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// dnl discards raw bytes up to and including the next newline, or to end
// of input, whichever comes first.
func (e *Engine) dnl() error {
	for {
		c, eof, err := e.input.PopOrStdin(e.readStdin, e.stdinReader)
		if err != nil {
			return err
		}

		if eof {
			return nil
		}

		if c == '\n' {
			return nil
		}
	}
}

// emitStr routes s to the current argument buffer if a call is open,
// otherwise to the active diversion (dropped if diverted to discard).
func (e *Engine) emitStr(s string) error {
	if len(e.frames) > 0 {
		return e.frames[len(e.frames)-1].appendArg(s)
	}

	if e.activeDiv == discardSlot {
		return nil
	}

	return e.diversions[e.activeDiv].PushStr(s)
}

func (e *Engine) flushDiversionZero() error {
	if _, err := e.out.Write(e.diversions[0].Bytes()); err != nil {
		return err
	}

	e.diversions[0].Reset()

	return nil
}

// undivertAll folds diversions 1-9 into diversion 0 and flushes it; it is
// run once at clean end of input.
func (e *Engine) undivertAll() error {
	for d := 1; d <= 9; d++ {
		if err := e.diversions[d].Transfer(e.diversions[0]); err != nil {
			return err
		}
	}

	return e.flushDiversionZero()
}

func dirSeparator() string {
	return string(os.PathSeparator)
}
