package proc

import "fmt"

// Usage is the last-sampled resource figure for one session's process
// tree. The zero value means "not yet sampled" and renders as "--".
// It is recomputed wholesale on each sample, never partially updated.
type Usage struct {
	CPUPercent  float32
	MemoryBytes uint64
}

// Sample aggregates CPU and memory across every pid of tree that still
// exists in the snapshot. The summed CPU is divided by the logical core
// count so a single busy core on an 8-core machine reads ~12.5, not
// 100. An empty tree falls back to sampling root as a single process,
// which covers trees that failed to enumerate.
func Sample(root int32, tree map[int32]struct{}, s *Snapshot) Usage {
	var totalCPU float64
	var totalMem uint64

	if len(tree) > 0 {
		for pid := range tree {
			info, ok := s.Lookup(pid)
			if !ok {
				continue
			}
			totalCPU += info.CPUPercent
			totalMem += info.MemoryBytes
		}
	} else if info, ok := s.Lookup(root); ok {
		totalCPU = info.CPUPercent
		totalMem = info.MemoryBytes
	}

	return Usage{
		CPUPercent:  float32(totalCPU / float64(s.Cores())),
		MemoryBytes: totalMem,
	}
}

// FormatCPU renders the CPU figure for the sidebar. "--" until the
// first sample lands; whole percents from 10% up, one decimal below.
func (u Usage) FormatCPU() string {
	if u.CPUPercent == 0 && u.MemoryBytes == 0 {
		return "--"
	}
	if u.CPUPercent >= 10 {
		return fmt.Sprintf("%.0f%%", u.CPUPercent)
	}
	return fmt.Sprintf("%.1f%%", u.CPUPercent)
}

// FormatMemory renders the memory figure scaled to B/K/M/G.
func (u Usage) FormatMemory() string {
	bytes := u.MemoryBytes
	switch {
	case bytes == 0:
		return "--"
	case bytes < 1024:
		return fmt.Sprintf("%dB", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.1fK", float64(bytes)/1024)
	case bytes < 1024*1024*1024:
		return fmt.Sprintf("%.1fM", float64(bytes)/(1024*1024))
	default:
		return fmt.Sprintf("%.2fG", float64(bytes)/(1024*1024*1024))
	}
}
