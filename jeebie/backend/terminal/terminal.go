package terminal

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/valerio/jeebie-runner/jeebie/addr"
	"github.com/valerio/jeebie-runner/jeebie/backend"
	"github.com/valerio/jeebie-runner/jeebie/backend/terminal/render"
	"github.com/valerio/jeebie-runner/jeebie/debug"
	"github.com/valerio/jeebie-runner/jeebie/disasm"
	"github.com/valerio/jeebie-runner/jeebie/display"
	"github.com/valerio/jeebie-runner/jeebie/events"
	"github.com/valerio/jeebie-runner/jeebie/input"
	"github.com/valerio/jeebie-runner/jeebie/input/action"
	"github.com/valerio/jeebie-runner/jeebie/input/event"
	"github.com/valerio/jeebie-runner/jeebie/runner"
)

const (
	width          = display.Width
	registerHeight = 12
	disasmHeight   = 9
	minTermWidth   = 80
	minTermHeight  = 24

	// stepMany is how many instructions the step x10 key retires.
	stepMany = 10

	// refreshInterval paces redraws and key release detection.
	refreshInterval = time.Second / 30
)

// Terminals only report key presses. A game key counts as held until it
// has not repeated for keyTimeout, slightly longer than the typical key
// repeat interval.
const keyTimeout = 100 * time.Millisecond

// Observer is a tcell debugger panel: the game screen, the registers and
// next instructions of the latest snapshot, active breakpoints and logs.
type Observer struct {
	screen   tcell.Screen
	logs     *render.LogBuffer
	logLevel *slog.LevelVar
	clock    events.Clock
	manager  *input.Manager

	state *runner.State
	tx    *runner.Sender

	frame       []byte
	snapshot    *debug.Snapshot
	breakpoints []runner.Descriptor
	keyStates   map[action.Action]time.Time
	prompt      *prompt
	quit        bool
	perf        perf

	// SnapshotDir is where F9 saves PNG frames.
	SnapshotDir string
}

// prompt is the breakpoint entry line.
type prompt struct {
	remove bool
	text   []rune
}

// New creates a terminal observer drawing on screen. Logs captured in logs
// are shown in the panel; logLevel filters what is displayed.
func New(screen tcell.Screen, logs *render.LogBuffer, logLevel *slog.LevelVar, clock events.Clock) *Observer {
	if clock == nil {
		clock = events.SystemClock
	}
	if logLevel == nil {
		logLevel = new(slog.LevelVar)
	}
	return &Observer{
		screen:    screen,
		logs:      logs,
		logLevel:  logLevel,
		clock:     clock,
		frame:     make([]byte, display.FrameSize),
		keyStates: make(map[action.Action]time.Time),
	}
}

// NewLogger creates the log buffer and a logger that feeds it. A nil level
// captures everything down to debug.
func NewLogger(size int, level slog.Leveler) (*render.LogBuffer, *slog.Logger) {
	if level == nil {
		level = slog.LevelDebug
	}
	logs := render.NewLogBuffer(size)
	return logs, slog.New(render.NewLogBufferHandler(logs, level))
}

// NewScreen creates and initializes the terminal screen.
func NewScreen() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %w", err)
	}
	return screen, nil
}

// Run draws until the user quits or ctx is done. The screen must be
// initialized; Run finalizes it before returning.
func (t *Observer) Run(ctx context.Context, state *runner.State, tx *runner.Sender) error {
	defer func() {
		slog.Info("Cleaning up terminal observer")
		t.screen.Fini()
	}()

	t.attach(state, tx)

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	eventCh := make(chan tcell.Event, 16)
	stop := make(chan struct{})
	defer close(stop)
	go t.pollEvents(eventCh, stop)

	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	snapshots := state.Snapshots()
	slog.Info("Terminal observer started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-eventCh:
			t.handleEvent(ev)
		case <-state.Repaint():
			if state.Frame().Consume(func(buf []byte) { copy(t.frame, buf) }) {
				t.perf.frame()
			}
		case snap, ok := <-snapshots:
			if !ok {
				snapshots = nil
				continue
			}
			t.snapshot = &snap
		case <-ticker.C:
			t.releaseExpiredKeys()
		}
		t.perf.tick(t.clock.Now())

		if t.quit {
			t.send(runner.Exit{})
			return nil
		}

		t.render()
		t.screen.Show()
	}
}

func (t *Observer) attach(state *runner.State, tx *runner.Sender) {
	t.state = state
	t.tx = tx
	t.manager = input.NewManager(tx, t.clock)
	t.registerActions()
}

func (t *Observer) pollEvents(out chan<- tcell.Event, stop <-chan struct{}) {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case out <- ev:
		case <-stop:
			return
		}
	}
}

func (t *Observer) send(cmd runner.Command) {
	if err := t.tx.Send(cmd); err != nil {
		slog.Warn("Command not delivered", "command", fmt.Sprintf("%T", cmd), "error", err)
	}
}

func (t *Observer) registerActions() {
	t.manager.On(action.RunnerPauseToggle, event.Press, func() {
		switch t.state.Status() {
		case runner.Stopped, runner.Break:
			t.send(runner.Resume{})
		default:
			t.send(runner.Pause{})
		}
	})
	t.manager.On(action.RunnerStepInstruction, event.Press, func() {
		t.send(runner.Step{Count: 1})
	})
	t.manager.On(action.RunnerStepMany, event.Press, func() {
		t.send(runner.Step{Count: stepMany})
	})
	t.manager.On(action.RunnerFrameLimitToggle, event.Press, func() {
		if t.state.Status() == runner.FrameLimited {
			t.send(runner.FrameUnlimit{})
		} else {
			t.send(runner.FrameLimit{})
		}
	})
	t.manager.On(action.RunnerBreakpointAdd, event.Press, func() {
		t.prompt = &prompt{}
	})
	t.manager.On(action.RunnerBreakpointRemove, event.Press, func() {
		t.prompt = &prompt{remove: true}
	})
	t.manager.On(action.RunnerSnapshot, event.Press, t.saveSnapshot)
	t.manager.On(action.RunnerQuit, event.Press, func() {
		t.quit = true
	})
	t.manager.On(action.DebugLogLevelIncrease, event.Press, func() {
		t.changeLogLevel(1)
	})
	t.manager.On(action.DebugLogLevelDecrease, event.Press, func() {
		t.changeLogLevel(-1)
	})
}

func (t *Observer) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if t.prompt != nil {
			t.promptKey(ev)
			return
		}
		if ev.Key() == tcell.KeyCtrlC {
			t.quit = true
			return
		}
		if act, ok := input.GetDefaultMapping(keyName(ev)); ok {
			t.trigger(act)
		}
	case *tcell.EventResize:
		t.screen.Sync()
	}
}

// tcellKeyNameMap converts tcell keys to key names used in default mappings
var tcellKeyNameMap = map[tcell.Key]string{
	tcell.KeyEnter:  "Enter",
	tcell.KeyUp:     "Up",
	tcell.KeyDown:   "Down",
	tcell.KeyLeft:   "Left",
	tcell.KeyRight:  "Right",
	tcell.KeyEscape: "Escape",
	tcell.KeyF9:     "F9",
}

func keyName(ev *tcell.EventKey) string {
	if ev.Key() == tcell.KeyRune {
		if ev.Rune() == ' ' {
			return "Space"
		}
		return string(ev.Rune())
	}
	return tcellKeyNameMap[ev.Key()]
}

func (t *Observer) trigger(act action.Action) {
	if _, ok := act.Button(); !ok {
		t.manager.Trigger(act, event.Press)
		return
	}

	// D-pad directions are exclusive: a new direction releases the others.
	if act.IsDPad() {
		for held := range t.keyStates {
			if held.IsDPad() && held != act {
				t.manager.Trigger(held, event.Release)
				delete(t.keyStates, held)
			}
		}
	}

	if _, held := t.keyStates[act]; !held {
		t.manager.Trigger(act, event.Press)
	}
	t.keyStates[act] = t.clock.Now()
}

func (t *Observer) releaseExpiredKeys() {
	now := t.clock.Now()
	for act, last := range t.keyStates {
		if now.Sub(last) >= keyTimeout {
			t.manager.Trigger(act, event.Release)
			delete(t.keyStates, act)
		}
	}
}

func (t *Observer) promptKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		t.prompt = nil
	case tcell.KeyEnter:
		p := t.prompt
		t.prompt = nil
		t.commitBreakpoint(string(p.text), p.remove)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if n := len(t.prompt.text); n > 0 {
			t.prompt.text = t.prompt.text[:n-1]
		}
	case tcell.KeyRune:
		t.prompt.text = append(t.prompt.text, ev.Rune())
	}
}

// commitBreakpoint validates free text here, so the runner only ever sees
// typed descriptors.
func (t *Observer) commitBreakpoint(text string, remove bool) {
	d, err := backend.ParseBreakpoint(text)
	if err != nil {
		slog.Warn("Breakpoint rejected", "input", text, "error", err)
		return
	}

	idx := -1
	for i, bp := range t.breakpoints {
		if bp == d {
			idx = i
		}
	}

	if remove {
		t.send(runner.UnsetBreakpoint{Breakpoint: d})
		if idx >= 0 {
			t.breakpoints = append(t.breakpoints[:idx], t.breakpoints[idx+1:]...)
		}
		slog.Info("Breakpoint removed", "breakpoint", d)
		return
	}

	t.send(runner.SetBreakpoint{Breakpoint: d})
	if idx < 0 {
		t.breakpoints = append(t.breakpoints, d)
	}
	slog.Info("Breakpoint added", "breakpoint", d)
}

// Track records breakpoints installed on the runner by someone else, so the
// panel lists them. It does not send anything.
func (t *Observer) Track(ds ...runner.Descriptor) {
	for _, d := range ds {
		if !slices.Contains(t.breakpoints, d) {
			t.breakpoints = append(t.breakpoints, d)
		}
	}
}

// Breakpoints returns the breakpoints this observer has set or tracks.
func (t *Observer) Breakpoints() []runner.Descriptor {
	return t.breakpoints
}

func (t *Observer) saveSnapshot() {
	path, err := debug.SaveFramePNGToDir(t.frame, "jeebie", t.SnapshotDir)
	if err != nil {
		slog.Error("Failed to save snapshot", "error", err)
		return
	}
	slog.Info("Snapshot saved", "path", path)
}

func (t *Observer) changeLogLevel(direction int) {
	levels := []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError}

	current := 1
	for i, l := range levels {
		if l == t.logLevel.Level() {
			current = i
		}
	}

	next := current - direction
	if next < 0 || next >= len(levels) {
		return
	}
	t.logLevel.Set(levels[next])
	slog.Info("Log filter changed", "from", levels[current], "to", levels[next])
}

func (t *Observer) render() {
	termWidth, termHeight := t.screen.Size()
	if termWidth < minTermWidth || termHeight < minTermHeight {
		t.screen.Clear()
		style := tcell.StyleDefault.Foreground(tcell.ColorRed)
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		t.drawText(0, termHeight/2, termWidth, msg, style)
		return
	}

	t.screen.Clear()

	dividerX := width + 1
	panelX := dividerX + 2
	panelWidth := termWidth - panelX
	if panelWidth < 0 {
		panelWidth = 0
	}

	t.drawBorders(termWidth, termHeight, dividerX)
	t.drawGameBoy(termHeight)
	t.drawRegisters(panelX, 1, panelWidth)
	t.drawDisassembly(panelX, registerHeight+2, panelWidth)
	t.drawLogs(panelX, registerHeight+disasmHeight+4, panelWidth, termHeight)
	t.drawFooter(termWidth, termHeight)
}

func (t *Observer) drawText(x, y, maxWidth int, text string, style tcell.Style) {
	i := 0
	for _, ch := range text {
		if i >= maxWidth {
			break
		}
		t.screen.SetContent(x+i, y, ch, nil, style)
		i++
	}
}

func (t *Observer) drawBorders(termWidth, termHeight, dividerX int) {
	borderStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	titleStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)

	for y := 0; y < termHeight-1; y++ {
		t.screen.SetContent(dividerX, y, '│', nil, borderStyle)
	}

	for _, y := range []int{registerHeight + 1, registerHeight + disasmHeight + 3} {
		for x := dividerX + 1; x < termWidth; x++ {
			t.screen.SetContent(x, y, '─', nil, borderStyle)
		}
		t.screen.SetContent(dividerX, y, '├', nil, borderStyle)
	}

	t.drawText(1, 0, dividerX-1, " Game Boy ", titleStyle)
	t.drawText(dividerX+2, 0, termWidth, fmt.Sprintf(" %s | %s ", t.state.Status(), &t.perf), titleStyle)
	t.drawText(dividerX+2, registerHeight+1, termWidth, " Disassembly ", titleStyle)
	t.drawText(dividerX+2, registerHeight+disasmHeight+3,
		termWidth, fmt.Sprintf(" Logs [%s] (-/+ filter) ", t.logLevel.Level()), titleStyle)
}

var shadeColors = [4]tcell.Color{
	render.ShadeBlack:     tcell.ColorBlack,
	render.ShadeDarkGrey:  tcell.ColorGray,
	render.ShadeLightGrey: tcell.ColorSilver,
	render.ShadeWhite:     tcell.ColorWhite,
}

func (t *Observer) drawGameBoy(termHeight int) {
	for y := 0; y < display.Height; y += 2 {
		screenY := y/2 + 1
		if screenY >= termHeight-1 {
			return
		}
		for x := 0; x < width; x++ {
			top := render.ShadeAt(t.frame, x, y)
			bottom := render.ShadeAt(t.frame, x, y+1)
			char := render.GetHalfBlockChar(top, bottom)

			fg, bg := shadeColors[top], shadeColors[bottom]
			if char == '▄' {
				fg, bg = shadeColors[bottom], shadeColors[top]
			}
			t.screen.SetContent(x, screenY, char, nil, tcell.StyleDefault.Foreground(fg).Background(bg))
		}
	}
}

func (t *Observer) drawRegisters(x, y, maxWidth int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	if t.snapshot == nil {
		t.drawText(x, y, maxWidth, "No snapshot yet", style)
		return
	}

	for i, line := range t.snapshot.Lines() {
		if i >= registerHeight-1 {
			break
		}
		t.drawText(x, y+i, maxWidth, line, style)
	}

	bps := make([]string, len(t.breakpoints))
	for i, bp := range t.breakpoints {
		bps[i] = bp.String()
	}
	line := "Breakpoints: none"
	if len(bps) > 0 {
		line = "Breakpoints: " + strings.Join(bps, ", ")
	}
	t.drawText(x, y+registerHeight-1, maxWidth, line, tcell.StyleDefault.Foreground(tcell.ColorRed))
}

// memoryReader lets a snapshot memory dump be disassembled.
type memoryReader [addr.MemorySize]uint8

func (m *memoryReader) Read(address uint16) uint8 {
	return m[address]
}

func (t *Observer) drawDisassembly(x, y, maxWidth int) {
	if t.snapshot == nil {
		return
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	currentStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)

	lines := []disasm.Instruction{t.snapshot.Instruction}
	if t.snapshot.Memory != nil {
		lines = disasm.DisassembleRange((*memoryReader)(t.snapshot.Memory), t.snapshot.Registers.PC, disasmHeight)
	}

	for i, in := range lines {
		marker, useStyle := ' ', style
		if i == 0 {
			marker, useStyle = '→', currentStyle
		}
		t.drawText(x, y+i, maxWidth, fmt.Sprintf("%c 0x%04X: %s", marker, in.Address, in.String()), useStyle)
	}
}

func (t *Observer) drawLogs(x, y, maxWidth, termHeight int) {
	available := termHeight - y - 1
	if maxWidth <= 0 || available <= 0 {
		return
	}

	debugStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)
	infoStyle := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	warnStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	errStyle := tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)

	row := 0
	for _, entry := range t.logs.GetRecent(available * 2) {
		if row >= available {
			break
		}
		if entry.Level < t.logLevel.Level() {
			continue
		}

		style := infoStyle
		switch {
		case entry.Level >= slog.LevelError:
			style = errStyle
		case entry.Level >= slog.LevelWarn:
			style = warnStyle
		case entry.Level < slog.LevelInfo:
			style = debugStyle
		}

		t.drawText(x, y+row, maxWidth, render.Truncate(render.FormatLogEntry(entry), maxWidth), style)
		row++
	}
}

func (t *Observer) drawFooter(termWidth, termHeight int) {
	y := termHeight - 1
	if t.prompt != nil {
		label := "Add breakpoint"
		if t.prompt.remove {
			label = "Remove breakpoint"
		}
		text := fmt.Sprintf(" %s (pc 0150, write $ff40, reg a, flag z): %s_", label, string(t.prompt.text))
		t.drawText(0, y, termWidth, text, tcell.StyleDefault.Foreground(tcell.ColorYellow))
		return
	}

	help := " SPACE=pause/resume N=step M=step x10 L=frame limit B/shift+B=breakpoint F9=snapshot Q=quit "
	t.drawText(0, y, termWidth, help, tcell.StyleDefault.Foreground(tcell.ColorWhite))
}
