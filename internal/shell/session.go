package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/contactkeval/option-pricer/internal/logger"
)

const title = "Option Pricing with Black-Scholes Model"

// Session runs the form over a line-oriented terminal. Like entry widgets,
// field texts persist between calculations: an empty answer keeps the
// previous text.
type Session struct {
	form *Form
	in   *bufio.Scanner
	out  *bufio.Writer
}

// NewSession binds a fresh form to in/out and writes the title.
func NewSession(in io.Reader, out io.Writer) *Session {
	s := &Session{
		form: NewForm(),
		in:   bufio.NewScanner(in),
		out:  bufio.NewWriter(out),
	}
	fmt.Fprintln(s.out, title)
	return s
}

// Form exposes the session's display state.
func (s *Session) Form() *Form { return s.form }

// Run prompts for the five fields, calculates, prints the display lines and
// repeats until input is exhausted or ctx is cancelled. Invalid input never
// ends the session.
func (s *Session) Run(ctx context.Context) error {
	for {
		for _, field := range Fields() {
			if err := ctx.Err(); err != nil {
				return err
			}

			prompt := field.Label()
			if prev := s.form.Get(field); prev != "" {
				prompt += " [" + prev + "]"
			}
			fmt.Fprint(s.out, prompt+": ")
			if err := s.out.Flush(); err != nil {
				return err
			}

			if !s.in.Scan() {
				return s.in.Err()
			}
			if text := strings.TrimSpace(s.in.Text()); text != "" {
				s.form.Set(field, text)
			}
		}

		if err := s.form.Calculate(); err != nil {
			logger.Debugf("calculate: %v", err)
		}
		for _, line := range s.form.Display() {
			fmt.Fprintln(s.out, line)
		}
		if err := s.out.Flush(); err != nil {
			return err
		}
	}
}

// Close flushes pending output.
func (s *Session) Close() error {
	return s.out.Flush()
}
