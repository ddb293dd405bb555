//go:build windows

package pty

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"
)

// windowsDevice is a ConPTY. Two anonymous pipes stand in for the
// master side: we write keystrokes to inW and read screen output from
// outR; the console holds the opposite ends.
type windowsDevice struct {
	hpc  windows.Handle
	inW  *os.File
	outR *os.File

	proc windows.Handle
	pid  uint32

	closeOnce sync.Once
	closeErr  error
}

func openDevice(rows, cols uint16) (device, error) {
	var inR, inW, outR, outW windows.Handle
	if err := windows.CreatePipe(&inR, &inW, nil, 0); err != nil {
		return nil, fmt.Errorf("create input pipe: %w", err)
	}
	if err := windows.CreatePipe(&outR, &outW, nil, 0); err != nil {
		windows.CloseHandle(inR)
		windows.CloseHandle(inW)
		return nil, fmt.Errorf("create output pipe: %w", err)
	}

	size := windows.Coord{X: int16(cols), Y: int16(rows)}
	var hpc windows.Handle
	err := windows.CreatePseudoConsole(size, inR, outW, 0, &hpc)

	// The console duplicated its ends; ours would otherwise keep the
	// output pipe from ever reporting EOF.
	windows.CloseHandle(inR)
	windows.CloseHandle(outW)

	if err != nil {
		windows.CloseHandle(inW)
		windows.CloseHandle(outR)
		return nil, fmt.Errorf("create pseudo console: %w", err)
	}

	return &windowsDevice{
		hpc:  hpc,
		inW:  os.NewFile(uintptr(inW), "|conpty-in"),
		outR: os.NewFile(uintptr(outR), "|conpty-out"),
	}, nil
}

func (d *windowsDevice) Spawn(program string, args []string, dir string, env []string) (int, error) {
	cmdLine, err := windows.UTF16PtrFromString(windows.ComposeCommandLine(append([]string{program}, args...)))
	if err != nil {
		return 0, err
	}
	var dirPtr *uint16
	if dir != "" {
		dirPtr, err = windows.UTF16PtrFromString(dir)
		if err != nil {
			return 0, err
		}
	}

	attrs, err := windows.NewProcThreadAttributeList(1)
	if err != nil {
		return 0, fmt.Errorf("allocate attribute list: %w", err)
	}
	defer attrs.Delete()
	if err := attrs.Update(
		windows.PROC_THREAD_ATTRIBUTE_PSEUDOCONSOLE,
		unsafe.Pointer(d.hpc),
		unsafe.Sizeof(d.hpc),
	); err != nil {
		return 0, fmt.Errorf("bind pseudo console: %w", err)
	}

	si := new(windows.StartupInfoEx)
	si.Cb = uint32(unsafe.Sizeof(*si))
	si.ProcThreadAttributeList = attrs.List()

	var pi windows.ProcessInformation
	err = windows.CreateProcess(
		nil,
		cmdLine,
		nil,
		nil,
		false,
		windows.EXTENDED_STARTUPINFO_PRESENT|windows.CREATE_UNICODE_ENVIRONMENT,
		envBlock(env),
		dirPtr,
		&si.StartupInfo,
		&pi,
	)
	if err != nil {
		return 0, err
	}
	windows.CloseHandle(pi.Thread)

	d.proc = pi.Process
	d.pid = pi.ProcessId
	return int(pi.ProcessId), nil
}

func (d *windowsDevice) Read(p []byte) (int, error)  { return d.outR.Read(p) }
func (d *windowsDevice) Write(p []byte) (int, error) { return d.inW.Write(p) }

// Resize is a known gap on ConPTY: ResizePseudoConsole invalidates the
// console's scrollback in a way that corrupts our replayed stream, so
// only the emulator grid is resized. See the session's Resize.
func (d *windowsDevice) Resize(rows, cols uint16) error {
	return nil
}

func (d *windowsDevice) Wait() (int, error) {
	if d.proc == 0 {
		return -1, errors.New("pty: no child to wait for")
	}
	if _, err := windows.WaitForSingleObject(d.proc, windows.INFINITE); err != nil {
		return -1, err
	}
	var code uint32
	if err := windows.GetExitCodeProcess(d.proc, &code); err != nil {
		return -1, err
	}
	return int(int32(code)), nil
}

func (d *windowsDevice) Close() error {
	d.closeOnce.Do(func() {
		// ClosePseudoConsole before the pipes, otherwise the console
		// host can hang flushing output nobody reads.
		if d.hpc != 0 {
			windows.ClosePseudoConsole(d.hpc)
			d.hpc = 0
		}
		d.inW.Close()
		d.closeErr = d.outR.Close()
		if d.proc != 0 {
			windows.CloseHandle(d.proc)
			d.proc = 0
		}
	})
	return d.closeErr
}

// envBlock packs k=v strings into the double-NUL-terminated UTF-16
// block CreateProcessW expects.
func envBlock(env []string) *uint16 {
	if len(env) == 0 {
		return nil
	}
	var block []uint16
	for _, kv := range env {
		block = append(block, utf16.Encode([]rune(kv))...)
		block = append(block, 0)
	}
	block = append(block, 0)
	return &block[0]
}
