// Package priority translates abstract scheduling levels into the native
// priority representation of the running platform and performs the actual
// priority-set and terminate operations. Expected OS conditions (vanished
// process, permission denial) come back as errors, never as panics.
package priority

import (
	"errors"
	"fmt"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// Level is an abstract, ordered scheduling preference. Lower values mean
// more scheduling priority.
type Level int

const (
	VeryHigh Level = iota
	High
	AboveNormal
	Normal
	BelowNormal
	Low
)

var levelNames = map[Level]string{
	VeryHigh:    "very-high",
	High:        "high",
	AboveNormal: "above-normal",
	Normal:      "normal",
	BelowNormal: "below-normal",
	Low:         "low",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// ParseLevel converts a level name ("high", "above-normal", ...) into a
// Level. Matching is case-insensitive.
func ParseLevel(s string) (Level, error) {
	for l, name := range levelNames {
		if strings.EqualFold(s, name) {
			return l, nil
		}
	}
	return Normal, fmt.Errorf("parse level %q: %w", s, ErrUnsupportedLevel)
}

// Failure kinds. Callers distinguish them with errors.Is.
var (
	// ErrProcessVanished means the target process exited before or during
	// the operation. Expected and ignorable.
	ErrProcessVanished = errors.New("process vanished")

	// ErrAccessDenied means the OS refused the operation for the current
	// credentials.
	ErrAccessDenied = errors.New("access denied")

	// ErrUnsupportedLevel means the requested level has no native mapping.
	// Rejected before any syscall is attempted.
	ErrUnsupportedLevel = errors.New("unsupported priority level")
)

// Mapper applies scheduling-priority changes and terminations for one
// platform. Implementations are safe for concurrent use.
type Mapper interface {
	// SetPriority sets pid's native priority to the mapping of level.
	SetPriority(pid int32, level Level) error

	// Terminate requests cooperative termination of pid and escalates to a
	// forced kill if the process is still alive after the grace period.
	// It never blocks materially longer than the grace period.
	Terminate(pid int32) error
}

// DefaultGrace is the wait between the cooperative terminate request and
// the forced-kill escalation.
const DefaultGrace = 2500 * time.Millisecond

const killPollInterval = 100 * time.Millisecond

// NewMapper returns the Mapper for the running platform. Non-Windows
// platforms all use Linux-style nice values.
func NewMapper() Mapper {
	return &nativeMapper{grace: DefaultGrace, poll: killPollInterval}
}

// nativeMapper implements Mapper. SetPriority and the level table live in
// the per-platform mapper_*.go files.
type nativeMapper struct {
	grace time.Duration
	poll  time.Duration
}

func (m *nativeMapper) Terminate(pid int32) error {
	p, err := process.NewProcess(pid)
	if err != nil {
		return fmt.Errorf("terminate pid %d: %w", pid, ErrProcessVanished)
	}

	if err := p.Terminate(); err != nil {
		return classify("terminate", pid, err)
	}

	deadline := time.Now().Add(m.grace)
	for time.Now().Before(deadline) {
		running, err := p.IsRunning()
		if err != nil || !running {
			return nil
		}
		time.Sleep(m.poll)
	}

	// Still alive after the grace period, stop asking nicely.
	if err := p.Kill(); err != nil {
		if isVanished(err) {
			return nil
		}
		return classify("kill", pid, err)
	}
	return nil
}

// classify maps raw OS errors onto the failure kinds callers act on.
func classify(op string, pid int32, err error) error {
	switch {
	case isVanished(err):
		return fmt.Errorf("%s pid %d: %w", op, pid, ErrProcessVanished)
	case errors.Is(err, syscall.EPERM) || errors.Is(err, syscall.EACCES):
		return fmt.Errorf("%s pid %d: %w", op, pid, ErrAccessDenied)
	default:
		return fmt.Errorf("%s pid %d: %w", op, pid, err)
	}
}

func isVanished(err error) bool {
	return errors.Is(err, process.ErrorProcessNotRunning) ||
		errors.Is(err, syscall.ESRCH)
}
