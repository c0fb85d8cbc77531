package ui

import (
	"fmt"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// ProgramController forwards workflow UI calls to a running tea.Program.
// Calls made before Attach are dropped.
type ProgramController struct {
	mu      sync.RWMutex
	program *tea.Program
}

func (c *ProgramController) Attach(p *tea.Program) {
	c.mu.Lock()
	c.program = p
	c.mu.Unlock()
}

func (c *ProgramController) send(msg tea.Msg) {
	c.mu.RLock()
	p := c.program
	c.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}

func (c *ProgramController) SetBusy(busy bool)          { c.send(BusyMsg{Busy: busy}) }
func (c *ProgramController) ShowError(message string)   { c.send(ErrorMsg{Text: message}) }
func (c *ProgramController) ShowSuccess(message string) { c.send(SuccessMsg{Text: message}) }
func (c *ProgramController) ResetForm()                 { c.send(ResetFormMsg{}) }

// ConsoleController prints workflow feedback for non-interactive runs.
type ConsoleController struct {
	out io.Writer
}

func NewConsoleController(out io.Writer) *ConsoleController {
	return &ConsoleController{out: out}
}

func (c *ConsoleController) SetBusy(busy bool) {
	if busy {
		fmt.Fprintln(c.out, labelBusy)
	}
}

func (c *ConsoleController) ShowError(message string) {
	fmt.Fprintf(c.out, "Error: %s\n", message)
}

func (c *ConsoleController) ShowSuccess(message string) {
	fmt.Fprintln(c.out, message)
}

// ResetForm is a no-op: flags are not reused between runs.
func (c *ConsoleController) ResetForm() {}
