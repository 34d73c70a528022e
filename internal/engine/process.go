package engine

import (
	"bufio"
	"errors"
	"io"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"
)

const (
	eventBuffer  = 64
	maxLineBytes = 1 << 20
)

type eventKind int

const (
	eventStdout eventKind = iota
	eventStderr
	eventTerminated
	eventError
)

func (k eventKind) String() string {
	switch k {
	case eventStdout:
		return "stdout"
	case eventStderr:
		return "stderr"
	case eventTerminated:
		return "terminated"
	default:
		return "error"
	}
}

// processEvent is one lifecycle notification from a spawned worker. The
// terminal kinds (terminated, error) are always the last event on a channel.
type processEvent struct {
	kind eventKind
	line string
	code int
	err  error
}

type commandFunc func(name string, args ...string) *exec.Cmd

// managedProcess is the worker currently (or most recently) owned by the
// supervisor.
type managedProcess struct {
	cmd       *exec.Cmd
	pid       int
	startedAt time.Time
	config    Config
	events    <-chan processEvent

	// done is closed once the process has been reaped; exitCode is valid after.
	done     chan struct{}
	exitCode int
	// stopping is set before the supervisor terminates the process, so the
	// watcher treats the resulting exit as clean.
	stopping atomic.Bool
}

func (p *managedProcess) exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// spawn starts the worker and wires its output and exit into the returned
// process's event channel.
func spawn(command commandFunc, bin string, args []string, cfg Config) (*managedProcess, error) {
	cmd := command(bin, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &SpawnError{Path: bin, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &SpawnError{Path: bin, Err: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Path: bin, Err: err}
	}

	ch := make(chan processEvent, eventBuffer)
	p := &managedProcess{
		cmd:       cmd,
		pid:       cmd.Process.Pid,
		startedAt: time.Now(),
		config:    cfg,
		events:    ch,
		done:      make(chan struct{}),
	}
	var pumps sync.WaitGroup
	pumps.Add(2)
	go pump(stdout, eventStdout, ch, &pumps)
	go pump(stderr, eventStderr, ch, &pumps)
	go p.reap(ch, &pumps)
	return p, nil
}

// pump forwards output lines until the pipe closes.
func pump(r io.Reader, kind eventKind, ch chan<- processEvent, wg *sync.WaitGroup) {
	defer wg.Done()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLineBytes)
	for sc.Scan() {
		ch <- processEvent{kind: kind, line: sc.Text()}
	}
	// an oversized line stops the scanner; keep draining so the child never
	// blocks on a full pipe
	_, _ = io.Copy(io.Discard, r)
}

// reap waits for the process after its pipes are drained, records the exit,
// and emits the terminal event.
func (p *managedProcess) reap(ch chan<- processEvent, pumps *sync.WaitGroup) {
	pumps.Wait()
	err := p.cmd.Wait()

	ev := processEvent{kind: eventTerminated}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		ev.code = exitErr.ExitCode()
	default:
		ev = processEvent{kind: eventError, err: err}
	}
	p.exitCode = -1
	if p.cmd.ProcessState != nil {
		p.exitCode = p.cmd.ProcessState.ExitCode()
	}
	close(p.done)
	ch <- ev
	close(ch)
}
