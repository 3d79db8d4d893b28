package m4engine

import (
	"strings"

	"github.com/avsandbox/spotkit/pkg/pushbuf"
)

// frame is one call-stack entry: the macro being invoked, its unexpanded
// definition (meaningless for built-ins), the unquoted-bracket depth open
// within this call, the argument currently being collected, and the
// lazily-allocated argument buffers (index 0 unused).
type frame struct {
	name         string
	def          string
	hasDef       bool
	bracketDepth int
	activeArg    int
	args         [10]*pushbuf.Buf
}

// appendArg pushes s onto the buffer for the currently active argument,
// allocating it on first use.
func (f *frame) appendArg(s string) error {
	if f.args[f.activeArg] == nil {
		f.args[f.activeArg] = pushbuf.New(32)
	}

	return f.args[f.activeArg].PushStr(s)
}

// arg returns argument k's collected text, or the empty string if that
// slot was never allocated. A single trailing NUL is stripped if present.
func (f *frame) arg(k int) string {
	if k < 1 || k > 9 || f.args[k] == nil {
		return ""
	}

	b := f.args[k].Bytes()
	if len(b) > 0 && b[len(b)-1] == 0 {
		b = b[:len(b)-1]
	}

	return string(b)
}

// substitute expands $1-$9 in def against this frame's collected
// arguments; $ followed by a non-digit is literal.
func (f *frame) substitute() string {
	var out strings.Builder

	def := f.def
	for i := 0; i < len(def); i++ {
		c := def[i]

		if c == '$' && i+1 < len(def) {
			d := def[i+1]
			if d >= '1' && d <= '9' {
				out.WriteString(f.arg(int(d - '0')))
				i++

				continue
			}
		}

		out.WriteByte(c)
	}

	return out.String()
}

// stripDef removes every $1-$9 placeholder pair from def, for invoking a
// user macro with no arguments at all.
func stripDef(def string) string {
	var out strings.Builder

	for i := 0; i < len(def); i++ {
		c := def[i]

		if c == '$' && i+1 < len(def) {
			d := def[i+1]
			if d >= '1' && d <= '9' {
				i++

				continue
			}
		}

		out.WriteByte(c)
	}

	return out.String()
}
