// Package proc provides point-in-time process snapshots, process-tree
// enumeration, and per-tree resource aggregation for the sidebar.
package proc

import (
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/process"
)

// Info is what the snapshot records about one process. CPUPercent is
// expressed as a percentage of a single core, the same convention the
// OS tools use, so a tree's sum can exceed 100.
type Info struct {
	PID         int32
	PPID        int32
	CPUPercent  float64
	MemoryBytes uint64
}

// Snapshot is an immutable view of all processes at one instant.
// Tree and Sample are pure functions of a Snapshot; callers decide how
// often to refresh (the panel refreshes roughly once per second).
type Snapshot struct {
	procs    map[int32]Info
	children map[int32][]int32
	cores    int
	takenAt  time.Time
}

// NewSnapshot builds a snapshot from explicit process records. Used by
// tests and by anything that already holds a process listing.
func NewSnapshot(infos []Info, cores int) *Snapshot {
	if cores < 1 {
		cores = 1
	}
	s := &Snapshot{
		procs:    make(map[int32]Info, len(infos)),
		children: make(map[int32][]int32),
		cores:    cores,
		takenAt:  time.Now(),
	}
	for _, info := range infos {
		s.procs[info.PID] = info
		s.children[info.PPID] = append(s.children[info.PPID], info.PID)
	}
	return s
}

// Contains reports whether pid was alive when the snapshot was taken.
func (s *Snapshot) Contains(pid int32) bool {
	_, ok := s.procs[pid]
	return ok
}

// Lookup returns the recorded info for pid.
func (s *Snapshot) Lookup(pid int32) (Info, bool) {
	info, ok := s.procs[pid]
	return info, ok
}

// Cores returns the logical core count used for CPU normalization.
func (s *Snapshot) Cores() int { return s.cores }

// TakenAt returns when the snapshot was captured.
func (s *Snapshot) TakenAt() time.Time { return s.takenAt }

// Provider refreshes snapshots from the live system. It keeps process
// handles across refreshes because per-process CPU percentages are
// deltas: the first observation of a process reads as zero and the
// next refresh yields a usable figure.
type Provider struct {
	mu      sync.Mutex
	handles map[int32]*process.Process
	cores   int
}

// NewProvider returns a Provider ready for its first Refresh.
func NewProvider() *Provider {
	cores, err := cpu.Counts(true)
	if err != nil || cores < 1 {
		cores = 1
	}
	return &Provider{
		handles: make(map[int32]*process.Process),
		cores:   cores,
	}
}

// Refresh captures a new snapshot of every visible process. Processes
// that vanished since the last refresh are forgotten; new ones are
// tracked from now on.
func (p *Provider) Refresh() (*Snapshot, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	seen := make(map[int32]struct{}, len(procs))
	infos := make([]Info, 0, len(procs))
	for _, fresh := range procs {
		pid := fresh.Pid
		seen[pid] = struct{}{}

		handle, ok := p.handles[pid]
		if !ok {
			handle = fresh
			p.handles[pid] = handle
		}

		info := Info{PID: pid}
		if ppid, err := handle.Ppid(); err == nil {
			info.PPID = ppid
		}
		if pct, err := handle.CPUPercent(); err == nil {
			info.CPUPercent = pct
		}
		if mem, err := handle.MemoryInfo(); err == nil && mem != nil {
			info.MemoryBytes = mem.RSS
		}
		infos = append(infos, info)
	}

	for pid := range p.handles {
		if _, ok := seen[pid]; !ok {
			delete(p.handles, pid)
		}
	}

	return NewSnapshot(infos, p.cores), nil
}
