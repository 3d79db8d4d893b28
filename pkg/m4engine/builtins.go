package m4engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/avsandbox/spotkit/pkg/checked"
	"github.com/avsandbox/spotkit/pkg/randname"
)

// processBuiltinNoArgs handles a built-in invoked without a following "(".
// Only a handful of built-ins have meaningful no-arg behavior; anything
// else just passes its own name through as literal text.
func (e *Engine) processBuiltinNoArgs(name string) error {
	switch name {
	case "dnl":
		return e.dnl()
	case "divnum":
		return e.emitDivnum()
	case "undivert":
		return e.undivertNoArgs()
	case "divert":
		e.activeDiv = 0

		return nil
	case "htdist":
		return e.table.HistDist(e.errOut)
	case "dirsep":
		return e.emitStr(dirSeparator())
	default:
		return e.emitStr(name)
	}
}

// processBuiltinWithArgs dispatches a built-in call whose arguments have
// just finished collecting in fr.
func (e *Engine) processBuiltinWithArgs(fr *frame) error {
	argCount := fr.activeArg

	switch fr.name {
	case "define":
		def := fr.arg(2)
		e.table.Upsert(fr.arg(1), &def)

		return nil
	case "undefine":
		return e.table.Delete(fr.arg(1))
	case "changequote":
		return e.builtinChangequote(fr.arg(1), fr.arg(2))
	case "divert":
		return e.builtinDivert(fr.arg(1))
	case "divnum":
		return e.emitDivnum()
	case "undivert":
		return e.builtinUndivertArgs(fr, argCount)
	case "dumpdef":
		return e.builtinDumpdef(fr, argCount)
	case "errprint":
		return e.builtinErrprint(fr, argCount)
	case "ifdef":
		return e.builtinIfdef(fr)
	case "ifelse":
		return e.builtinIfelse(fr, argCount)
	case "include":
		return e.input.IncludeFile(fr.arg(1))
	case "len":
		return e.emitStr(strconv.Itoa(len(fr.arg(1))))
	case "index":
		return e.emitStr(strconv.Itoa(strings.Index(fr.arg(1), fr.arg(2))))
	case "substr":
		return e.builtinSubstr(fr, argCount)
	case "translit":
		return e.builtinTranslit(fr)
	case "dnl":
		return e.dnl()
	case "esyscmd":
		return e.tmp.Esyscmd(e.input, fr.arg(1))
	case "maketemp":
		return e.builtinMaketemp(fr.arg(1))
	case "incr":
		return e.builtinIncr(fr)
	case "add":
		return e.builtinAddMult(fr, argCount, 0, func(a, b int64) (int64, bool) { return checked.Add(a, b) })
	case "mult":
		return e.builtinAddMult(fr, argCount, 1, func(a, b int64) (int64, bool) { return checked.Mul(a, b) })
	case "sub":
		return e.builtinSub(fr, argCount)
	case "div":
		return e.builtinDiv(fr)
	case "mod":
		return e.builtinMod(fr)
	case "htdist":
		return e.table.HistDist(e.errOut)
	case "dirsep":
		return e.emitStr(dirSeparator())
	default:
		return fmt.Errorf("m4: unrecognized built-in %q", fr.name)
	}
}

func parseNonNeg(s string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("m4: invalid non-negative integer %q", s)
	}

	return v, nil
}

func (e *Engine) emitDivnum() error {
	n := e.activeDiv
	if n == discardSlot {
		n = -1
	}

	return e.emitStr(strconv.Itoa(n))
}

func (e *Engine) builtinChangequote(l, r string) error {
	if l == "" && r == "" {
		e.leftQuote, e.rightQuote = '`', '\''

		return nil
	}

	if len(l) != 1 || len(r) != 1 {
		return errors.New("m4: changequote: delimiters must each be a single byte")
	}

	lb, rb := l[0], r[0]
	if lb == rb {
		return errors.New("m4: changequote: delimiters must be distinct")
	}

	if !isGraphic(lb) || !isGraphic(rb) {
		return errors.New("m4: changequote: delimiters must be graphic bytes")
	}

	if isReservedQuote(lb) || isReservedQuote(rb) {
		return errors.New("m4: changequote: delimiters may not be ',' '(' or ')'")
	}

	e.leftQuote, e.rightQuote = lb, rb

	return nil
}

func isGraphic(b byte) bool { return b > 0x20 && b < 0x7f }

func isReservedQuote(b byte) bool { return b == ',' || b == '(' || b == ')' }

func (e *Engine) builtinDivert(arg string) error {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return fmt.Errorf("m4: divert: invalid diversion number %q", arg)
	}

	if n == -1 {
		e.activeDiv = discardSlot

		return nil
	}

	if n < 0 || n > 9 {
		return fmt.Errorf("m4: divert: diversion number out of range: %d", n)
	}

	e.activeDiv = n

	return nil
}

// undivertNoArgs flushes diversions 1-9 into diversion 0. It is the
// no-argument undivert, only meaningful from diversion 0.
func (e *Engine) undivertNoArgs() error {
	if e.activeDiv != 0 {
		return nil
	}

	for d := 1; d <= 9; d++ {
		if err := e.diversions[d].Transfer(e.diversions[0]); err != nil {
			return err
		}
	}

	return nil
}

func (e *Engine) builtinUndivertArgs(fr *frame, argCount int) error {
	if argCount == 0 {
		return e.undivertNoArgs()
	}

	for k := 1; k <= argCount && k <= 9; k++ {
		d, err := strconv.Atoi(strings.TrimSpace(fr.arg(k)))
		if err != nil || d < 1 || d > 9 || d == e.activeDiv {
			continue
		}

		if err := e.diversions[d].Transfer(e.diversions[e.activeDiv]); err != nil {
			return err
		}
	}

	return nil
}

func (e *Engine) builtinDumpdef(fr *frame, argCount int) error {
	if argCount == 0 {
		for _, name := range e.table.Names() {
			e.writeDumpdefLine(name)
		}

		return nil
	}

	for k := 1; k <= argCount; k++ {
		e.writeDumpdefLine(fr.arg(k))
	}

	return nil
}

func (e *Engine) writeDumpdefLine(name string) {
	def, hasDef, ok := e.table.GetDef(name)
	if !ok {
		fmt.Fprintf(e.errOut, "%s: undefined\n", name)

		return
	}

	if !hasDef {
		fmt.Fprintf(e.errOut, "%s:\t<built-in>\n", name)

		return
	}

	fmt.Fprintf(e.errOut, "%s:\t%s\n", name, def)
}

func (e *Engine) builtinErrprint(fr *frame, argCount int) error {
	parts := make([]string, argCount)
	for k := 1; k <= argCount; k++ {
		parts[k-1] = fr.arg(k)
	}

	_, err := fmt.Fprint(e.errOut, strings.Join(parts, " "))

	return err
}

func (e *Engine) builtinIfdef(fr *frame) error {
	if e.table.Lookup(fr.arg(1)) {
		return e.input.UnshiftStr(fr.arg(2))
	}

	return e.input.UnshiftStr(fr.arg(3))
}

// builtinIfelse implements chained ifelse(a,b,t,c,d,u,...,else): compares
// successive (a,b) pairs and unshifts the matching then-clause, or the
// trailing odd-one-out else-clause if no pair matches.
func (e *Engine) builtinIfelse(fr *frame, argCount int) error {
	i := 1
	for i+2 <= argCount {
		if fr.arg(i) == fr.arg(i+1) {
			return e.input.UnshiftStr(fr.arg(i + 2))
		}

		i += 3
	}

	if i <= argCount {
		return e.input.UnshiftStr(fr.arg(i))
	}

	return nil
}

func (e *Engine) builtinSubstr(fr *frame, argCount int) error {
	s := fr.arg(1)
	if len(s) == 0 {
		return nil
	}

	w, err := parseNonNeg(fr.arg(2))
	if err != nil {
		return err
	}

	start := int(w)
	if start >= len(s) {
		return nil
	}

	avail := len(s) - start
	reqLen := avail

	if argCount >= 3 {
		l, err := parseNonNeg(fr.arg(3))
		if err != nil {
			return err
		}

		reqLen = int(l)
		if reqLen > avail {
			reqLen = avail
		}
	}

	if reqLen <= 0 {
		return nil
	}

	return e.emitStr(s[start : start+reqLen])
}

// builtinTranslit builds a 256-entry byte map: unlisted bytes pass
// through, bytes in from map to the parallel byte in to (first occurrence
// wins), and bytes in from with no counterpart in to are deleted.
func (e *Engine) builtinTranslit(fr *frame) error {
	s := fr.arg(1)
	from := fr.arg(2)
	to := fr.arg(3)

	const (
		passThrough = -1
		deleted     = -2
	)

	var mapping [256]int
	for i := range mapping {
		mapping[i] = passThrough
	}

	for i := 0; i < len(from); i++ {
		c := from[i]
		if mapping[c] != passThrough {
			continue
		}

		if i < len(to) {
			mapping[c] = int(to[i])
		} else {
			mapping[c] = deleted
		}
	}

	var out strings.Builder

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch mapping[c] {
		case passThrough:
			out.WriteByte(c)
		case deleted:
			// dropped
		default:
			out.WriteByte(byte(mapping[c]))
		}
	}

	return e.emitStr(out.String())
}

func (e *Engine) builtinMaketemp(template string) error {
	path, err := randname.MakeTemp(template)
	if err != nil {
		return err
	}

	return e.emitStr(path)
}

func (e *Engine) builtinIncr(fr *frame) error {
	v, err := parseNonNeg(fr.arg(1))
	if err != nil {
		return err
	}

	r, ok := checked.Add(v, 1)
	if !ok {
		return errors.New("m4: incr: integer overflow")
	}

	return e.emitStr(strconv.FormatInt(r, 10))
}

func (e *Engine) builtinAddMult(fr *frame, argCount int, identity int64, combine func(a, b int64) (int64, bool)) error {
	acc := identity

	for k := 1; k <= argCount; k++ {
		v, err := parseNonNeg(fr.arg(k))
		if err != nil {
			return err
		}

		next, ok := combine(acc, v)
		if !ok {
			return fmt.Errorf("m4: %s: integer overflow", fr.name)
		}

		acc = next
	}

	return e.emitStr(strconv.FormatInt(acc, 10))
}

func (e *Engine) builtinSub(fr *frame, argCount int) error {
	acc, err := parseNonNeg(fr.arg(1))
	if err != nil {
		return err
	}

	for k := 2; k <= argCount; k++ {
		v, err := parseNonNeg(fr.arg(k))
		if err != nil {
			return err
		}

		if v > acc {
			return errors.New("m4: sub: integer underflow")
		}

		acc -= v
	}

	return e.emitStr(strconv.FormatInt(acc, 10))
}

func (e *Engine) builtinDiv(fr *frame) error {
	a, err := parseNonNeg(fr.arg(1))
	if err != nil {
		return err
	}

	b, err := parseNonNeg(fr.arg(2))
	if err != nil {
		return err
	}

	if b == 0 {
		return errors.New("m4: div: divide by zero")
	}

	return e.emitStr(strconv.FormatInt(a/b, 10))
}

func (e *Engine) builtinMod(fr *frame) error {
	a, err := parseNonNeg(fr.arg(1))
	if err != nil {
		return err
	}

	b, err := parseNonNeg(fr.arg(2))
	if err != nil {
		return err
	}

	if b == 0 {
		return errors.New("m4: mod: modulo by zero")
	}

	return e.emitStr(strconv.FormatInt(a%b, 10))
}
