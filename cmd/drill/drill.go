package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/lingokids/review-api/internal/domain"
	"github.com/lingokids/review-api/internal/session"
)

// drill drives a session from line-oriented input: an empty line reveals the
// back, a digit from 0 to 5 grades the card and "q" ends the session. The
// session also ends at end of input or after maxReviews grades when
// maxReviews is positive. Cancelling the context ends the session even while
// it waits for input.
type drill struct {
	controller *session.Controller
	in         io.Reader
	out        io.Writer
	maxReviews int

	lines <-chan string
}

// flushTimeout bounds the final write of pending schedules, which runs even
// after the drill context is cancelled.
const flushTimeout = 10 * time.Second

func newDrill(c *session.Controller, in io.Reader, out io.Writer, maxReviews int) *drill {
	return &drill{
		controller: c,
		in:         in,
		out:        out,
		maxReviews: maxReviews,
	}
}

// run plays the session to completion and writes pending schedules.
func (d *drill) run(ctx context.Context) error {
	c := d.controller
	total := len(c.Cards())

	done := make(chan struct{})
	defer close(done)
	d.lines = readLines(d.in, done)

	for c.State() != session.StateComplete {
		if ctx.Err() != nil {
			c.End()
			break
		}

		card := c.Current()
		switch c.State() {
		case session.StateShowingFront:
			d.printf("\n[%d/%d] %s\n(enter to reveal, q to quit) ", c.Index()+1, total, card.Front)
			line, ok := d.readLine(ctx)
			if !ok || line == "q" {
				c.End()
				continue
			}
			if err := c.Reveal(); err != nil {
				return err
			}

		case session.StateShowingBack:
			d.printf("  -> %s\n(grade 0-5, q to quit) ", card.Back)
			line, ok := d.readLine(ctx)
			if !ok || line == "q" {
				c.End()
				continue
			}
			if err := d.grade(ctx, line); err != nil {
				return err
			}
			if d.maxReviews > 0 && c.Reviewed() >= d.maxReviews {
				c.End()
			}

		default:
			return fmt.Errorf("unexpected session state %s", c.State())
		}
	}

	if ctx.Err() != nil {
		d.printf("\ninterrupted\n")
	}
	return d.finish(ctx)
}

// grade applies one typed grade. Bad input and failed writes are reported to
// the learner and do not stop the drill.
func (d *drill) grade(ctx context.Context, line string) error {
	q, err := strconv.Atoi(line)
	if err != nil {
		d.printf("please type a number from %d to %d\n", domain.MinQuality, domain.MaxQuality)
		return nil
	}

	err = d.controller.Grade(ctx, domain.Quality(q))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrInvalidGrade):
		d.printf("please type a number from %d to %d\n", domain.MinQuality, domain.MaxQuality)
		return nil
	case errors.Is(err, session.ErrPersistFailed):
		d.printf("(progress not saved yet, will retry)\n")
		return nil
	default:
		return err
	}
}

// finish retries pending writes with a fresh deadline so an interrupt does
// not discard them.
func (d *drill) finish(ctx context.Context) error {
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
	defer cancel()

	flushErr := d.controller.Flush(flushCtx)
	pending := len(d.controller.Pending())

	d.printf("\nreviewed %d card(s)\n", d.controller.Reviewed())
	if pending > 0 {
		d.printf("%d schedule(s) could not be saved\n", pending)
	}
	return flushErr
}

// readLine waits for the next input line. It reports false at end of input
// or when ctx is done.
func (d *drill) readLine(ctx context.Context) (string, bool) {
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-d.lines:
		if !ok {
			return "", false
		}
		return strings.ToLower(strings.TrimSpace(line)), true
	}
}

// readLines scans r on its own goroutine so a blocked read never holds up
// the drill. The goroutine exits at end of input or once done is closed and
// the pending read returns.
func readLines(r io.Reader, done <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()
	return lines
}

func (d *drill) printf(format string, args ...any) {
	fmt.Fprintf(d.out, format, args...)
}
