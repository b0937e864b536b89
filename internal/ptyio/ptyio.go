// Package ptyio defines the PTY interface the Session consumes and its
// creack/pty-backed implementation: spawning the child on a pseudo-tty,
// sizing it, and relaying bytes both directions.
package ptyio

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/creack/pty"
)

// Pty is the session-facing pseudo-teletype contract. The concrete type
// is *Process; the interface exists so session tests can substitute an
// in-memory pipe pair.
type Pty interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Resize(cols, rows int) error
	Kill(sig syscall.Signal) error
	// Wait blocks until the child exits and returns its exit code, or -1
	// when the status is unknown.
	Wait() int
}

// Process is a child process attached to a PTY master.
type Process struct {
	ptm *os.File
	cmd *exec.Cmd
}

var _ Pty = (*Process)(nil)

// Start spawns program with args and env on a fresh PTY of the given
// size. A failure to spawn leaks no PTY resources.
func Start(program string, args []string, env []string, cols, rows int) (*Process, error) {
	cmd := exec.Command(program, args...)
	cmd.Env = env
	ptm, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
	if err != nil {
		return nil, fmt.Errorf("start command: %w", err)
	}
	return &Process{ptm: ptm, cmd: cmd}, nil
}

// Read reads the child's output from the PTY master. It blocks until
// output is available; the Session runs it on a dedicated goroutine and
// serializes delivery, preserving arrival order.
func (p *Process) Read(buf []byte) (int, error) {
	return p.ptm.Read(buf)
}

// Write sends input bytes to the child.
func (p *Process) Write(buf []byte) (int, error) {
	return p.ptm.Write(buf)
}

// Resize updates the PTY's window size, delivering SIGWINCH to the child.
func (p *Process) Resize(cols, rows int) error {
	return pty.Setsize(p.ptm, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
}

// Kill delivers sig to the child process.
func (p *Process) Kill(sig syscall.Signal) error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Signal(sig)
}

// Wait reaps the child and returns its exit code, -1 if unknown.
func (p *Process) Wait() int {
	err := p.cmd.Wait()
	if err == nil {
		return 0
	}
	if ee, ok := err.(*exec.ExitError); ok {
		return ee.ExitCode()
	}
	return -1
}

// Close releases the PTY master descriptor.
func (p *Process) Close() error {
	return p.ptm.Close()
}
