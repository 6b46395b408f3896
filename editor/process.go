package editor

import (
	"context"

	"github.com/shirou/gopsutil/v4/process"
)

// SystemProcesses lists processes through gopsutil.
type SystemProcesses struct{}

func (SystemProcesses) Names(ctx context.Context) ([]string, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(procs))
	for _, p := range procs {
		// processes can exit between listing and lookup
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// StaticProcesses is a fixed process list.
type StaticProcesses []string

func (s StaticProcesses) Names(context.Context) ([]string, error) {
	return []string(s), nil
}
