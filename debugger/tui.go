package debugger

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// TUI is the full-screen terminal front end for Debugger.
type TUI struct {
	Debugger *Debugger
	App      *tview.Application
	Pages    *tview.Pages

	MainLayout *tview.Flex
	LeftPanel  *tview.Flex
	RightPanel *tview.Flex

	DisassemblyView *tview.TextView
	VariablesView   *tview.TextView
	StackView       *tview.TextView
	BreakpointsView *tview.TextView
	OutputView      *tview.TextView
	CommandInput    *tview.InputField
}

// NewTUI wires a TUI around an already-constructed Debugger.
func NewTUI(d *Debugger) *TUI {
	t := &TUI{Debugger: d, App: tview.NewApplication()}
	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()
	return t
}

func (t *TUI) initializeViews() {
	t.DisassemblyView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.DisassemblyView.SetBorder(true).SetTitle(" Instructions ")

	t.VariablesView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.VariablesView.SetBorder(true).SetTitle(" Variables ")

	t.StackView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.StackView.SetBorder(true).SetTitle(" Operand Stack ")

	t.BreakpointsView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.BreakpointsView.SetBorder(true).SetTitle(" Breakpoints ")

	t.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().SetLabel("> ").SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

func (t *TUI) buildLayout() {
	t.LeftPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.DisassemblyView, 0, 2, false).
		AddItem(t.BreakpointsView, 8, 0, false)

	t.RightPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.VariablesView, 0, 1, false).
		AddItem(t.StackView, 0, 1, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.LeftPanel, 0, 2, false).
		AddItem(t.RightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)

	t.Pages = tview.NewPages().AddPage("main", t.MainLayout, true, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			t.executeCommand("help")
			return nil
		case tcell.KeyF5:
			t.executeCommand("continue")
			return nil
		case tcell.KeyF9:
			t.executeCommand("break")
			return nil
		case tcell.KeyF11:
			t.executeCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		}
		return event
	})
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key == tcell.KeyEnter {
		cmd := t.CommandInput.GetText()
		if cmd != "" {
			t.executeCommand(cmd)
			t.CommandInput.SetText("")
		}
	}
}

func (t *TUI) executeCommand(cmd string) {
	t.Debugger.Output.Reset()
	err := t.Debugger.ExecuteCommand(cmd)
	output := t.Debugger.GetOutput()

	if err != nil {
		t.WriteOutput(fmt.Sprintf("[red]Error:[white] %v\n", err))
	}
	if output != "" {
		t.WriteOutput(output)
	}
	t.RefreshAll()
}

// WriteOutput appends text to the output view and scrolls to the end.
func (t *TUI) WriteOutput(text string) {
	_, _ = t.OutputView.Write([]byte(text))
	t.OutputView.ScrollToEnd()
}

// RefreshAll redraws every panel from current debugger state.
func (t *TUI) RefreshAll() {
	t.updateDisassemblyView()
	t.updateVariablesView()
	t.updateStackView()
	t.updateBreakpointsView()
	t.App.Draw()
}

func (t *TUI) updateDisassemblyView() {
	t.DisassemblyView.Clear()

	if t.Debugger.Frame == nil {
		t.DisassemblyView.SetText("[yellow]Program not running. Type 'run' to start.[white]")
		return
	}

	code := t.Debugger.Frame.Code()
	pc := t.Debugger.Frame.PC()

	start := pc - 10
	if start < 0 {
		start = 0
	}
	end := pc + 10
	if end > len(code) {
		end = len(code)
	}

	var lines []string
	for i := start; i < end; i++ {
		marker, color := "  ", "white"
		if i == pc {
			marker, color = "->", "yellow"
		}
		if t.Debugger.Breakpoints.At(i) != nil {
			marker = "* "
		}
		lines = append(lines, fmt.Sprintf("[%s]%s %4d: %s[white]", color, marker, i, code[i].String()))
	}
	t.DisassemblyView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) updateVariablesView() {
	t.VariablesView.Clear()
	if t.Debugger.Frame == nil {
		t.VariablesView.SetText("[yellow]No frame[white]")
		return
	}
	vars := t.Debugger.Frame.Vars()
	var lines []string
	for name, v := range vars {
		lines = append(lines, fmt.Sprintf("%s = %s", name, v.String()))
	}
	if len(lines) == 0 {
		lines = []string{"[yellow]No variables assigned yet[white]"}
	}
	t.VariablesView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) updateStackView() {
	t.StackView.Clear()
	if t.Debugger.Frame == nil {
		t.StackView.SetText("[yellow]No frame[white]")
		return
	}
	stack := t.Debugger.Frame.Stack()
	var lines []string
	for i := len(stack) - 1; i >= 0; i-- {
		lines = append(lines, fmt.Sprintf("[%d] %s", i, stack[i].String()))
	}
	if len(lines) == 0 {
		lines = []string{"[yellow]empty[white]"}
	}
	t.StackView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) updateBreakpointsView() {
	t.BreakpointsView.Clear()
	bps := t.Debugger.Breakpoints.All()
	if len(bps) == 0 {
		t.BreakpointsView.SetText("[yellow]No breakpoints set[white]")
		return
	}
	var lines []string
	for _, bp := range bps {
		status, color := "enabled", "green"
		if !bp.Enabled {
			status, color = "disabled", "red"
		}
		lines = append(lines, fmt.Sprintf("%d: [%s]%s[white] instruction %d (hits: %d)", bp.ID, color, status, bp.Index, bp.HitCount))
	}
	t.BreakpointsView.SetText(strings.Join(lines, "\n"))
}

// Run shows the welcome banner and starts the tview event loop.
func (t *TUI) Run() error {
	t.RefreshAll()
	t.WriteOutput("[green]sylph debugger[white]\n")
	t.WriteOutput("Press F1 for help, F5 to continue, F11 to step\n")
	t.WriteOutput("Type 'help' for the full command list\n\n")
	return t.App.SetRoot(t.Pages, true).SetFocus(t.CommandInput).Run()
}

// Stop shuts down the tview application.
func (t *TUI) Stop() {
	t.App.Stop()
}
