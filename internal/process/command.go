// Package process runs a shell command and exposes its output as one ordered, deadline-bounded
// stream of lines.
//
// Standard output is delivered first, in full, followed by standard error. The two streams are
// not interleaved by arrival time, so markers written to both streams are seen in that order.
package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// ErrTimeout is returned by NextLine once the command's time budget is spent.
var ErrTimeout = errors.New("command timed out")

// SpawnError reports that the shell could not be started.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %q: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// Options configure a single command invocation.
type Options struct {
	Command string
	// Env is the complete environment of the child in KEY=VALUE form.
	Env []string
	Dir string
	// Timeout bounds the whole invocation. Zero means no limit.
	Timeout time.Duration
	Now     func() time.Time
}

// Command is a running shell command. It must be closed.
type Command struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr io.ReadCloser
	now    func() time.Time

	deadline time.Time
	expired  bool

	lines    chan string
	done     chan struct{}
	finished chan struct{}
	once     sync.Once
}

// Start spawns opts.Command through the platform shell with no standard input.
func Start(opts Options) (*Command, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	name, args := shellCommand(opts.Command)
	cmd := exec.Command(name, args...)
	cmd.Env = opts.Env
	cmd.Dir = opts.Dir
	cmd.Stdin = nil
	configureProcess(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &SpawnError{Command: opts.Command, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &SpawnError{Command: opts.Command, Err: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Command: opts.Command, Err: err}
	}

	c := &Command{
		cmd:      cmd,
		stdout:   stdout,
		stderr:   stderr,
		now:      opts.Now,
		lines:    make(chan string, 64),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	if opts.Timeout > 0 {
		c.deadline = opts.Now().Add(opts.Timeout)
	}

	go c.pump()
	return c, nil
}

// NextLine returns the next output line. It returns io.EOF once both streams are exhausted
// and the process has exited, and ErrTimeout once the deadline has passed. After a timeout
// the process is killed and every later call returns ErrTimeout.
func (c *Command) NextLine(ctx context.Context) (string, error) {
	if c.expired {
		return "", ErrTimeout
	}

	if c.deadline.IsZero() {
		select {
		case line, ok := <-c.lines:
			if !ok {
				return "", io.EOF
			}
			return line, nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	// Lines the child already wrote are delivered before the deadline is checked.
	select {
	case line, ok := <-c.lines:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	default:
	}

	remaining := c.deadline.Sub(c.now())
	if remaining <= 0 {
		c.expire()
		return "", ErrTimeout
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()

	select {
	case line, ok := <-c.lines:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	case <-timer.C:
		c.expire()
		return "", ErrTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// ExitCode returns the exit status of a finished command, or -1 while it is still running.
func (c *Command) ExitCode() int {
	select {
	case <-c.finished:
	default:
		return -1
	}
	if c.cmd.ProcessState == nil {
		return -1
	}
	return c.cmd.ProcessState.ExitCode()
}

// Close kills the process if it is still running and releases its pipes. It is safe to call
// more than once.
func (c *Command) Close() error {
	c.once.Do(func() {
		close(c.done)
		select {
		case <-c.finished:
			return
		default:
		}
		killProcess(c.cmd)
		_ = c.stdout.Close()
		_ = c.stderr.Close()
		<-c.finished
	})
	return nil
}

func (c *Command) expire() {
	c.expired = true
	_ = c.Close()
}

func (c *Command) pump() {
	defer close(c.finished)
	defer close(c.lines)

	collected := make(chan []string, 1)
	go func() {
		var buffered []string
		readLines(c.stderr, func(line string) bool {
			buffered = append(buffered, line)
			return true
		})
		collected <- buffered
	}()

	readLines(c.stdout, c.send)
	for _, line := range <-collected {
		if !c.send(line) {
			break
		}
	}

	_ = c.cmd.Wait()
}

func (c *Command) send(line string) bool {
	select {
	case c.lines <- line:
		return true
	case <-c.done:
		return false
	}
}

func readLines(r io.Reader, emit func(string) bool) {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
			if !emit(line) {
				return
			}
		}
		if err != nil {
			return
		}
	}
}
