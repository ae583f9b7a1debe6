// Package intake collects the monitor configuration interactively.
package intake

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hostwatch/internal/config"
	"golang.org/x/term"
)

// ErrInputClosed is returned when standard input ends before every value has
// been collected.
var ErrInputClosed = errors.New("configuration input closed")

type Prompter struct {
	in         *bufio.Reader
	out        io.Writer
	readSecret func() (string, error)
	// restore puts the terminal back when a read is abandoned.
	restore func()
}

// New returns a Prompter reading from in and writing prompts to out. When in is
// a terminal the SMTP password is read without echo.
func New(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{
		in:  bufio.NewReader(in),
		out: out,
	}
	p.readSecret = p.readLine

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		if state, err := term.GetState(fd); err == nil {
			p.restore = func() { term.Restore(fd, state) }
		}
		p.readSecret = func() (string, error) {
			b, err := term.ReadPassword(fd)
			fmt.Fprintln(p.out)
			if err != nil {
				return "", fmt.Errorf("failed to read password: %w", err)
			}
			return string(b), nil
		}
	}
	return p
}

// Fill prompts for each missing field in intake order and stores the answers in
// cfg. Invalid thresholds and intervals are re-prompted until valid. A
// cancelled ctx abandons the pending read and returns ctx.Err().
func (p *Prompter) Fill(ctx context.Context, cfg *config.Config, missing []config.Field) error {
	if len(missing) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	want := make(map[config.Field]bool, len(missing))
	for _, f := range missing {
		want[f] = true
	}

	fmt.Fprintln(p.out, "--- System Monitor Configuration ---")
	for _, f := range config.IntakeFields {
		if !want[f] {
			continue
		}
		if f == config.FieldSMTPUsername {
			fmt.Fprintf(p.out, "\n--- SMTP Configuration for Alerts (%s:%d) ---\n", cfg.Relay.Host, cfg.Relay.Port)
		}
		if err := p.ask(ctx, cfg, f); err != nil {
			return err
		}
	}
	return nil
}

func (p *Prompter) ask(ctx context.Context, cfg *config.Config, f config.Field) error {
	read := p.readLine
	if f == config.FieldSMTPPassword {
		read = p.readSecret
	}

	for {
		fmt.Fprint(p.out, prompt(cfg, f))
		raw, err := p.await(ctx, read)
		if err != nil {
			return err
		}

		err = cfg.Apply(f, raw)
		if err == nil {
			return nil
		}
		var verr *config.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		fmt.Fprintln(p.out, verr.Error())
	}
}

type readResult struct {
	line string
	err  error
}

// await runs read in the background so cancellation is seen while the
// operator has not answered yet.
func (p *Prompter) await(ctx context.Context, read func() (string, error)) (string, error) {
	if err := ctx.Err(); err != nil {
		fmt.Fprintln(p.out)
		return "", err
	}

	done := make(chan readResult, 1)
	go func() {
		line, err := read()
		done <- readResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		if p.restore != nil {
			p.restore()
		}
		fmt.Fprintln(p.out)
		return "", ctx.Err()
	case r := <-done:
		return r.line, r.err
	}
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrInputClosed
		}
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func prompt(cfg *config.Config, f config.Field) string {
	switch f {
	case config.FieldCPUThreshold:
		return "Enter CPU threshold (e.g., 80.0 for 80%): "
	case config.FieldRAMThreshold:
		return "Enter RAM threshold (e.g., 85.0 for 85%): "
	case config.FieldDiskThreshold:
		return fmt.Sprintf("Enter Disk threshold for '%s' (e.g., 90.0 for 90%%): ", cfg.MountPoint)
	case config.FieldRecipient:
		return "Enter email address for alerts: "
	case config.FieldSMTPUsername:
		return "Enter your SMTP username (e.g., your_email@gmail.com): "
	case config.FieldSMTPPassword:
		return "Enter your SMTP password (an app password if 2-Step Verification is on): "
	case config.FieldPollInterval:
		return "Enter check interval in seconds (e.g., 60): "
	default:
		return fmt.Sprintf("Enter %s: ", f.Label())
	}
}
