package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"

	"github.com/devdeck/devdeck/internal/arbiter"
	"github.com/devdeck/devdeck/internal/config"
	"github.com/devdeck/devdeck/internal/platform"
	"github.com/devdeck/devdeck/internal/project"
	"github.com/devdeck/devdeck/internal/pty"
	"github.com/devdeck/devdeck/internal/workspace"
)

var runCmd = &cobra.Command{
	Use:   "run [dir...]",
	Short: "Run project dev commands under the panel event loop",
	Long: `run scans each directory, launches its dev command in a PTY and
drives the event loop: draining session output, folding exits back
into the workspace and sampling resource usage. With --restart a dev
server that exits is relaunched once its old process tree is gone.`,
	RunE: runRun,
}

var (
	runCommandFlag string
	runExecFlag    string
	runRestartFlag bool
	runRowsFlag    uint16
	runColsFlag    uint16
	runShellFlag   string
)

func init() {
	runCmd.Flags().StringVar(&runCommandFlag, "command", "", "Shell command to run instead of the dev script")
	runCmd.Flags().StringVar(&runExecFlag, "exec", "", "Program to run directly, bypassing the shell")
	runCmd.Flags().BoolVar(&runRestartFlag, "restart", false, "Relaunch a dev server after it exits")
	runCmd.Flags().Uint16Var(&runRowsFlag, "rows", 24, "PTY rows")
	runCmd.Flags().Uint16Var(&runColsFlag, "cols", 80, "PTY columns")
	runCmd.Flags().StringVar(&runShellFlag, "shell", "", "Windows shell preference (powershell or cmd)")
}

// pollInterval is the main loop cadence, roughly 30 frames a second.
const pollInterval = 33 * time.Millisecond

// launch describes one session to start in a slot.
type launch struct {
	slot    *workspace.Slot
	program string
	args    []string
	command string
}

func runRun(cmd *cobra.Command, args []string) error {
	settings := loadSettings()
	choice := settings.WindowsShell
	if runShellFlag != "" {
		choice = platform.ShellChoice(runShellFlag)
	}

	dirs := args
	if len(dirs) == 0 {
		dirs = []string{"."}
	}

	queue := pty.NewQueue()
	manager := pty.NewManager(queue)
	state := workspace.NewState()
	bridge := workspace.NewBridge(queue, workspace.WithOutput(os.Stdout))
	arb := arbiter.New(arbiter.DefaultCooldown())

	var starts []launch
	launched := make(map[*workspace.Slot]launch)
	for _, dir := range dirs {
		p, err := project.Scan(dir)
		if err != nil {
			return err
		}
		l, err := launchFor(state.AddProject(p))
		if err != nil {
			return err
		}
		starts = append(starts, l)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	input := make(chan []byte, 16)
	go readStdin(input)

	var cleanups []*arbiter.Cleanup
	lastPID := make(map[*workspace.Slot]int)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdown(state)
			return nil
		case <-ticker.C:
		}

		bridge.Drain(state)
		state.Tick()
		forwardInput(input, state)

		if text, ok := state.Status(); ok {
			printStatus(text)
		}

		// A dev exit with --restart waits for the old tree to vanish
		// before the slot is relaunched.
		if runRestartFlag {
			for slot, pid := range lastPID {
				if slot.Dev != nil {
					continue
				}
				delete(lastPID, slot)
				log.Info("scheduling restart", "project", slot.Project.Name, "old_pid", pid)
				cleanups = append(cleanups, arbiter.NewCleanup(int32(pid), slot.Project.Dir, arbiter.DefaultCleanupTimeout))
			}
		}

		if snap := state.Snapshot(); snap != nil && len(cleanups) > 0 {
			remaining := cleanups[:0]
			for _, c := range cleanups {
				if !c.Poll(snap) {
					remaining = append(remaining, c)
					continue
				}
				if slot := slotByDir(state, c.Target()); slot != nil {
					arb.QueueRequest(c.Target())
					if l := launched[slot]; l.command != "" {
						arb.CacheCommand(c.Target(), l.command)
					}
				}
			}
			cleanups = remaining
		}

		if arb.Poll() {
			if req, ok := arb.TakeRequest(); ok {
				cached, hasCmd := arb.TakeCommand()
				if slot := slotByDir(state, req.Target); slot != nil {
					l := launched[slot]
					if hasCmd && cached.Target == req.Target {
						l.command = cached.CommandText
					}
					starts = append(starts, l)
				} else {
					log.Debug("dropping request for a removed slot", "target", req.Target)
				}
			}
		}

		if len(starts) > 0 {
			l := starts[0]
			if arb.TryAcquire("start " + l.slot.Project.Name) {
				starts = starts[1:]
				session, err := startSession(manager, l, choice)
				if err != nil {
					arb.ReleaseOnFailure()
					state.SetStatus(fmt.Sprintf("%s: launch failed: %v", l.slot.Project.Name, err))
				} else {
					arb.MarkCreated("started " + l.slot.Project.Name)
					l.slot.Dev = session
					launched[l.slot] = l
					lastPID[l.slot] = session.Pid()
				}
			}
		}

		if len(starts) == 0 && len(cleanups) == 0 && !anyDevRunning(state) && !arb.HasRequest() {
			bridge.Drain(state)
			shutdown(state)
			return nil
		}
	}
}

// launchFor resolves what to start in a freshly scanned slot.
func launchFor(slot *workspace.Slot) (launch, error) {
	l := launch{slot: slot}
	switch {
	case runExecFlag != "":
		words, err := shellquote.Split(runExecFlag)
		if err != nil {
			return l, fmt.Errorf("parse --exec: %w", err)
		}
		if len(words) == 0 {
			return l, fmt.Errorf("--exec is empty")
		}
		l.program, l.args = words[0], words[1:]
	case runCommandFlag != "":
		l.command = runCommandFlag
	default:
		c, ok := slot.Project.DevCommand()
		if !ok {
			return l, fmt.Errorf("%s has no dev script; use --command or --exec", slot.Project.Name)
		}
		l.command = slot.Project.FullCommand(c)
	}
	return l, nil
}

func startSession(manager *pty.Manager, l launch, choice platform.ShellChoice) (*pty.Session, error) {
	id := uuid.NewString()
	if l.program != "" {
		return manager.CreateCommand(id, l.program, l.args, l.slot.Project.Dir, runRowsFlag, runColsFlag)
	}
	return manager.RunShellCommand(id, l.command, l.slot.Project.Dir, runRowsFlag, runColsFlag, choice)
}

func loadSettings() config.Settings {
	path, err := config.DefaultPath()
	if err != nil {
		log.Debug("no config dir", "err", err)
		return config.Settings{}
	}
	settings, err := config.Load(path)
	if err != nil {
		log.Warn("settings unreadable; using defaults", "path", path, "err", err)
		return config.Settings{}
	}
	return settings
}

func readStdin(input chan<- []byte) {
	buf := make([]byte, 1024)
	for {
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			input <- data
		}
		if err != nil {
			return
		}
	}
}

// forwardInput drains buffered keystrokes into the first running dev
// session. State is only touched here, on the main loop.
func forwardInput(input <-chan []byte, state *workspace.State) {
	for {
		select {
		case data := <-input:
			for _, slot := range state.Slots() {
				if slot.Dev != nil && slot.Dev.Running() {
					slot.Dev.SendInput(data)
					break
				}
			}
		default:
			return
		}
	}
}

func slotByDir(state *workspace.State, dir string) *workspace.Slot {
	for _, slot := range state.Slots() {
		if slot.Project.Dir == dir {
			return slot
		}
	}
	return nil
}

func anyDevRunning(state *workspace.State) bool {
	for _, slot := range state.Slots() {
		if slot.Dev != nil && slot.Dev.Running() {
			return true
		}
	}
	return false
}

func shutdown(state *workspace.State) {
	for _, slot := range state.Slots() {
		if slot.Dev != nil {
			slot.Dev.Close()
			slot.Dev = nil
		}
		if slot.Shell != nil {
			slot.Shell.Close()
			slot.Shell = nil
		}
	}
}

// printStatus writes transient status lines to stderr so they never
// interleave with session output on stdout.
var lastStatus string

func printStatus(text string) {
	if text == lastStatus {
		return
	}
	lastStatus = text
	fmt.Fprintln(os.Stderr, "* "+text)
}
