// Package spot implements the spot command: a line-oriented front end over
// pkg/gapbuf's buffer ring, standing in for the screen/TUI layer spec.md
// places out of scope. Each editor action below corresponds to one of the
// keybindings spec.md describes for the full-screen editor (w -> ^x ^s, q!
// -> ^x ^c, k -> ^[ !, bn/bp -> ^x ->/^x <-).
package spot

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/avsandbox/spotkit/pkg/gapbuf"
)

// Run opens one buffer per file argument (or a single unnamed buffer when
// none are given) into a ring and drives the command loop until the ring
// empties or the user quits.
func Run(out, errOut io.Writer, args []string) int {
	var ring *gapbuf.Ring

	if len(args) == 0 {
		ring = gapbuf.NewRing(gapbuf.New(""))
	} else {
		for i, path := range args {
			buf := gapbuf.New(path)

			if err := buf.InsertFile(path); err != nil && !os.IsNotExist(err) {
				fmt.Fprintf(errOut, "spot: %s: %v\n", path, err)

				return 1
			}

			buf.StartOfBuffer()

			if i == 0 {
				ring = gapbuf.NewRing(buf)
			} else {
				ring.Add(buf)
			}
		}

		ring.Next() // Add leaves the last-added file active; return to the first.
	}

	repl := &repl{ring: ring, out: out, errOut: errOut}

	return repl.run()
}

type repl struct {
	ring   *gapbuf.Ring
	out    io.Writer
	errOut io.Writer
	liner  *liner.State
	clip   *gapbuf.Buffer
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".spot_history")
}

func (r *repl) run() int {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)

	if f, err := os.Open(historyFile()); err == nil {
		r.liner.ReadHistory(f)
		f.Close()
	}

	for r.ring != nil {
		prompt := fmt.Sprintf("spot:%s> ", bufferLabel(r.ring.Active()))

		line, err := r.liner.Prompt(prompt)
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				break
			}

			fmt.Fprintf(r.errOut, "spot: %v\n", err)

			return 1
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.liner.AppendHistory(line)

		if quit, code := r.dispatch(line); quit {
			r.saveHistory()

			return code
		}
	}

	r.saveHistory()

	return 0
}

func (r *repl) saveHistory() {
	path := historyFile()
	if path == "" {
		return
	}

	if f, err := os.Create(path); err == nil {
		r.liner.WriteHistory(f)
		f.Close()
	}
}

func bufferLabel(b *gapbuf.Buffer) string {
	if b.Filename() == "" {
		return "*scratch*"
	}

	return b.Filename()
}

// dispatch runs one command line against the active buffer, returning
// (true, exitCode) when the loop should stop.
func (r *repl) dispatch(line string) (bool, int) {
	verb, rest := splitVerb(line)
	buf := r.ring.Active()

	switch verb {
	case "i":
		if err := buf.InsertStr(rest); err != nil {
			r.reportErr(err)
		}

	case "d":
		mult := parseMult(rest, 1)
		if err := buf.Delete(mult); err != nil {
			r.reportErr(err)
		}

	case "bs":
		mult := parseMult(rest, 1)
		if err := buf.Backspace(mult); err != nil {
			r.reportErr(err)
		}

	case "n":
		buf.DownLine(parseMult(rest, 1))

	case "p":
		buf.UpLine(parseMult(rest, 1))

	case "f":
		buf.MoveRight(parseMult(rest, 1))

	case "b":
		buf.MoveLeft(parseMult(rest, 1))

	case "sol":
		buf.StartOfLine()

	case "eol":
		buf.EndOfLine()

	case "sob":
		buf.StartOfBuffer()

	case "eob":
		buf.EndOfBuffer()

	case "m":
		buf.SetMark()

	case "m!":
		buf.ClearMark()

	case "x":
		if err := buf.SwitchCursorAndMark(); err != nil {
			r.reportErr(err)
		}

	case "c":
		r.clip = gapbuf.New("")
		if err := buf.CutRegion(r.clip); err != nil {
			r.reportErr(err)
		}

	case "y":
		if r.clip == nil {
			fmt.Fprintln(r.errOut, "spot: nothing cut yet")

			break
		}

		if err := buf.Paste(r.clip, parseMult(rest, 1)); err != nil {
			r.reportErr(err)
		}

	default:
		if handled, quit, code := r.dispatchSearchOrIO(verb, rest); handled {
			return quit, code
		}

		fmt.Fprintf(r.errOut, "spot: unknown command %q\n", verb)
	}

	return false, 0
}

// dispatchSearchOrIO handles the verbs whose parsing is involved enough to
// deserve their own switch: search, replace, buffer-ring motion, save, and
// quit.
func (r *repl) dispatchSearchOrIO(verb, rest string) (handled, quit bool, code int) {
	switch {
	case verb == "w":
		if err := r.ring.Active().WriteFile(); err != nil {
			r.reportErr(err)
		}

		return true, false, 0

	case verb == "q":
		if r.ring.Active().Modified() {
			fmt.Fprintln(r.errOut, "spot: buffer modified, use q! to discard")

			return true, false, 0
		}

		return true, true, 0

	case verb == "q!":
		return true, true, 0

	case verb == "k":
		if r.ring.Kill() {
			r.ring = nil
		}

		return true, false, 0

	case verb == "bn":
		r.ring.Next()

		return true, false, 0

	case verb == "bp":
		r.ring.Prev()

		return true, false, 0

	case strings.HasPrefix(verb, "/"):
		pattern := verb[1:] + rest
		if !r.ring.Active().ForwardSearchLiteral([]byte(pattern)) {
			fmt.Fprintln(r.errOut, "spot: pattern not found")
		}

		return true, false, 0

	case strings.HasPrefix(verb, "s/"):
		spec := strings.TrimPrefix(verb, "s")

		if err := r.ring.Active().RegexReplaceRegion(spec, false); err != nil {
			r.reportErr(err)
		}

		return true, false, 0
	}

	return false, false, 0
}

func (r *repl) reportErr(err error) {
	fmt.Fprintf(r.errOut, "spot: %v\n", err)
}

func splitVerb(line string) (verb, rest string) {
	i := strings.IndexByte(line, ' ')
	if i < 0 {
		return line, ""
	}

	return line[:i], strings.TrimPrefix(line[i:], " ")
}

func parseMult(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}

	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}

	return n
}
