// Package editor finds or starts the text editor that receives dictation
// and gives it input focus.
package editor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"notewriter/log"
)

// ProcessLister reports the names of running processes.
type ProcessLister interface {
	Names(ctx context.Context) ([]string, error)
}

// Spawner starts an executable without waiting for it.
type Spawner interface {
	Spawn(command string) (*os.Process, error)
}

// Focuser moves input focus to the editor.
type Focuser interface {
	Focus(ctx context.Context) error
}

type Config struct {
	Name        string
	Command     string
	SettleDelay time.Duration
}

type Launcher struct {
	cfg     Config
	lister  ProcessLister
	spawner Spawner
	focus   Focuser
	sleep   func(context.Context, time.Duration) error

	mu      sync.Mutex
	spawned *os.Process
}

func NewLauncher(cfg Config, focus Focuser) *Launcher {
	return &Launcher{
		cfg:     cfg,
		lister:  SystemProcesses{},
		spawner: ExecSpawner{},
		focus:   focus,
		sleep:   sleepCtx,
	}
}

// WithProcesses replaces the process source. Used by tests and -doctor.
func (l *Launcher) WithProcesses(p ProcessLister) *Launcher {
	l.lister = p
	return l
}

func (l *Launcher) WithSpawner(s Spawner) *Launcher {
	l.spawner = s
	return l
}

func (l *Launcher) withSleep(fn func(context.Context, time.Duration) error) *Launcher {
	l.sleep = fn
	return l
}

// Spawned returns the process started by EnsureOpen, or nil when the
// editor was already running.
func (l *Launcher) Spawned() *os.Process {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.spawned
}

// Running reports whether a process whose name contains the editor name
// is alive.
func (l *Launcher) Running(ctx context.Context) (bool, error) {
	names, err := l.lister.Names(ctx)
	if err != nil {
		return false, fmt.Errorf("list processes: %w", err)
	}
	want := strings.ToLower(l.cfg.Name)
	for _, n := range names {
		if strings.Contains(strings.ToLower(n), want) {
			return true, nil
		}
	}
	return false, nil
}

// EnsureOpen makes sure the editor runs and holds focus. Failures are
// logged and reported as false.
func (l *Launcher) EnsureOpen(ctx context.Context) bool {
	running, err := l.Running(ctx)
	if err != nil {
		log.Errorf("editor_lookup_failed: %v", err)
		return false
	}

	if running {
		log.Info("editor_already_running name=" + l.cfg.Name)
		return true
	}

	p, err := l.spawner.Spawn(l.cfg.Command)
	if err != nil {
		log.Errorf("editor_spawn_failed: %v", err)
		return false
	}
	l.mu.Lock()
	l.spawned = p
	l.mu.Unlock()
	log.Infof("editor_spawned command=%s pid=%d", l.cfg.Command, p.Pid)

	if err := l.sleep(ctx, l.cfg.SettleDelay); err != nil {
		log.Warnf("editor_settle_interrupted: %v", err)
		return false
	}

	if l.focus != nil {
		if err := l.focus.Focus(ctx); err != nil {
			log.Errorf("editor_focus_failed: %v", err)
			return false
		}
	}
	return true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ExecSpawner starts the command with no arguments and never reaps it.
type ExecSpawner struct{}

func (ExecSpawner) Spawn(command string) (*os.Process, error) {
	cmd := exec.Command(command)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd.Process, nil
}
