package metadata

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
)

const (
	inputSkip = "SKIP"
	inputQuit = "QUIT"
)

// Prompter asks for metadata values with one huh form per field. `SKIP`
// leaves a non-required field unset, `QUIT` aborts with ErrUserCancelled and
// an empty answer applies the default. Invalid answers are reported and asked
// for again.
type Prompter struct {
	accessible bool
	in         *lineReader
	out        io.Writer
	theme      *huh.Theme
}

// Collect asks for every field of `spec` in accessible mode, prompting on
// `out` and reading the answers line by line from `in`
func Collect(spec Spec, in io.Reader, out io.Writer) (Values, error) {
	return NewAccessiblePrompter(in, out).Collect(spec)
}

// NewAccessiblePrompter creates a line based prompter for plain pipes and
// screen readers
func NewAccessiblePrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{accessible: true, in: newLineReader(in), out: out, theme: huh.ThemeBase()}
}

// NewTerminalPrompter creates a prompter with interactive inputs, it needs a
// terminal on stdin. The forms are drawn on `out`.
func NewTerminalPrompter(out io.Writer) *Prompter {
	return &Prompter{out: out, theme: huh.ThemeCharm()}
}

// Collect asks for every field of `spec`
func (p *Prompter) Collect(spec Spec) (Values, error) {
	ret := make(Values, len(spec))
	for _, f := range spec {
		if p.in != nil && p.in.exhausted() {
			return nil, p.in.endOfInput()
		}
		answer, err := p.ask(f)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(answer) == inputQuit {
			return nil, ErrUserCancelled
		}
		v, set, err := resolve(f, answer)
		if err != nil {
			return nil, err
		}
		if set {
			ret[f.Key] = v
		}
	}
	return ret, nil
}

func (p *Prompter) ask(f Field) (string, error) {
	var answer string
	ended := false
	var seen int
	if p.in != nil {
		seen = p.in.lines
	}

	input := huh.NewInput().
		Title(fmt.Sprintf("Please enter %s", f.Description)).
		Description(hint(f)).
		Placeholder(f.Example).
		Validate(func(s string) error {
			if p.in != nil {
				// validated without a new line, the input is gone
				if p.in.drained && p.in.lines == seen {
					ended = true
					return nil
				}
				seen = p.in.lines
			}
			if strings.TrimSpace(s) == inputQuit {
				return nil
			}
			_, _, err := resolve(f, s)
			return err
		}).
		Value(&answer)

	form := huh.NewForm(huh.NewGroup(input)).
		WithTheme(p.theme).
		WithAccessible(p.accessible).
		WithOutput(p.out)
	if p.in != nil {
		form = form.WithInput(p.in)
	}
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", ErrUserCancelled
		}
		return "", fmt.Errorf("%w: %w", ErrUserCancelled, err)
	}
	if ended {
		return "", p.in.endOfInput()
	}
	return answer, nil
}

func hint(f Field) string {
	var b strings.Builder
	fmt.Fprintf(&b, "example: %s", f.Example)
	if f.Default != "" {
		fmt.Fprintf(&b, ", default: %s", f.Default)
	}
	if f.Required {
		fmt.Fprintf(&b, " (%s to cancel)", inputQuit)
	} else {
		fmt.Fprintf(&b, " (%s to skip, %s to cancel)", inputSkip, inputQuit)
	}
	return b.String()
}

// resolve turns an answer into the value of field `f`. `set` is false for a
// skipped field.
func resolve(f Field, answer string) (v any, set bool, err error) {
	answer = strings.TrimSpace(answer)
	switch answer {
	case inputSkip:
		if f.Required {
			return nil, false, errors.New("Cannot skip, value required")
		}
		return nil, false, nil
	case "":
		if f.Default == "" {
			return nil, false, errors.New("No default value, must enter something")
		}
		answer = f.Default
	}
	v, err = f.Parse(answer)
	if err != nil {
		if errors.Is(err, ErrInvalidMetadata) {
			return nil, false, fmt.Errorf("Value (%s) is invalid", answer)
		}
		return nil, false, err
	}
	return v, true, nil
}

// lineReader hands out at most one line per Read. The accessible prompts
// buffer their input, this keeps the lines of later fields in place.
type lineReader struct {
	r       *bufio.Reader
	pending []byte
	lines   int
	drained bool
	err     error
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReader(r)}
}

func (l *lineReader) Read(p []byte) (int, error) {
	if len(l.pending) == 0 {
		if l.drained {
			return 0, io.EOF
		}
		line, err := l.r.ReadBytes('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				l.err = err
			}
			if len(line) == 0 {
				l.drained = true
				return 0, io.EOF
			}
		}
		l.pending = line
		l.lines++
	}
	n := copy(p, l.pending)
	l.pending = l.pending[n:]
	return n, nil
}

func (l *lineReader) exhausted() bool {
	if len(l.pending) > 0 {
		return false
	}
	if l.drained {
		return true
	}
	if _, err := l.r.Peek(1); err != nil {
		if !errors.Is(err, io.EOF) {
			l.err = err
		}
		l.drained = true
		return true
	}
	return false
}

func (l *lineReader) endOfInput() error {
	if l.err != nil {
		return fmt.Errorf("%w: reading input: %w", ErrUserCancelled, l.err)
	}
	return fmt.Errorf("%w: end of input", ErrUserCancelled)
}
