//go:build windows

package pty

import (
	"time"
	"unsafe"

	"github.com/charmbracelet/log"
	"golang.org/x/sys/windows"
)

// processTree collects pid and every transitive descendant from a
// Toolhelp process snapshot.
func processTree(root uint32) map[uint32]struct{} {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		log.Debug("process snapshot failed", "err", err)
		return map[uint32]struct{}{root: {}}
	}
	defer windows.CloseHandle(snap)

	children := make(map[uint32][]uint32)
	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))
	for err := windows.Process32First(snap, &entry); err == nil; err = windows.Process32Next(snap, &entry) {
		children[entry.ParentProcessID] = append(children[entry.ParentProcessID], entry.ProcessID)
	}

	tree := map[uint32]struct{}{root: {}}
	queue := []uint32{root}
	for len(queue) > 0 {
		pid := queue[0]
		queue = queue[1:]
		for _, child := range children[pid] {
			if _, seen := tree[child]; seen {
				continue
			}
			tree[child] = struct{}{}
			queue = append(queue, child)
		}
	}
	return tree
}

// eachThread calls fn with an open handle for every thread owned by a
// pid in tree.
func eachThread(tree map[uint32]struct{}, fn func(h windows.Handle)) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPTHREAD, 0)
	if err != nil {
		log.Debug("thread snapshot failed", "err", err)
		return
	}
	defer windows.CloseHandle(snap)

	var entry windows.ThreadEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))
	for err := windows.Thread32First(snap, &entry); err == nil; err = windows.Thread32Next(snap, &entry) {
		if _, ok := tree[entry.OwnerProcessID]; !ok {
			continue
		}
		h, err := windows.OpenThread(windows.THREAD_SUSPEND_RESUME, false, entry.ThreadID)
		if err != nil {
			continue
		}
		fn(h)
		windows.CloseHandle(h)
	}
}

// suspendTree freezes every thread of every process under pid. Windows
// has no process-level stop signal, so this walks threads the way
// debuggers do.
func suspendTree(pid int) bool {
	tree := processTree(uint32(pid))
	touched := false
	eachThread(tree, func(h windows.Handle) {
		if _, err := windows.SuspendThread(h); err == nil {
			touched = true
		}
	})
	return touched
}

// resumeTree thaws the tree. ResumeThread decrements the suspend
// count, mirroring a single prior suspendTree.
func resumeTree(pid int) bool {
	tree := processTree(uint32(pid))
	touched := false
	eachThread(tree, func(h windows.Handle) {
		if _, err := windows.ResumeThread(h); err == nil {
			touched = true
		}
	})
	return touched
}

// terminateTree kills pid and all descendants. A suspended tree is
// resumed first so the processes can actually die, then each member is
// terminated with a bounded wait, and a short settle pause lets the
// console host finish tearing down before the next PTY is created.
func terminateTree(pid int, suspended bool) {
	if suspended {
		resumeTree(pid)
	}

	for member := range processTree(uint32(pid)) {
		h, err := windows.OpenProcess(windows.PROCESS_TERMINATE|windows.SYNCHRONIZE, false, member)
		if err != nil {
			continue
		}
		_ = windows.TerminateProcess(h, 1)
		_, _ = windows.WaitForSingleObject(h, 1000)
		windows.CloseHandle(h)
	}

	time.Sleep(100 * time.Millisecond)
}
