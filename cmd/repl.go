package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/mvberg/serialgw/internal/gateway"
	"github.com/mvberg/serialgw/internal/tui/styles"
)

// repl bundles the single stdin line channel and the cancellation
// context so every verb that needs a follow-up prompt (send, add,
// delete, ...) reads from the same source as the command loop rather
// than opening a second, competing reader on os.Stdin.
type repl struct {
	ctx   context.Context
	lines <-chan string
	gw    *gateway.Gateway
}

// runREPL drives the interactive command surface (spec § 6): list
// devices (ld), list system ports (lp), list id-to-port mappings (lm),
// send (s), broadcast (b), add (a), add all new (an), delete (d),
// delete all (da), quit (q). Stdin is read on its own goroutine so a
// concurrent SIGINT can interrupt a blocked read and drive the stop
// sequence instead of waiting for the next line.
func runREPL(gw *gateway.Gateway) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT)
	defer stop()

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	r := &repl{ctx: ctx, lines: lines, gw: gw}

	fmt.Println(styles.TitleStyle.Render("serialgw"))
	printHelp()

	for {
		line, ok := r.next()
		if !ok {
			shutdown(gw)
			return
		}
		if r.dispatch(line) {
			shutdown(gw)
			return
		}
	}
}

// next blocks for the next stdin line, or reports ok == false if the
// REPL was cancelled (SIGINT) or stdin was closed.
func (r *repl) next() (string, bool) {
	select {
	case <-r.ctx.Done():
		return "", false
	case line, open := <-r.lines:
		return line, open
	}
}

func shutdown(gw *gateway.Gateway) {
	gw.Stop()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for !gw.AllReadersExited() {
		<-ticker.C
	}
	gw.Wait()
}

func printHelp() {
	fmt.Println("commands: ld (list devices), lp (list ports), lm (list mappings),")
	fmt.Println("          s (send), b (broadcast), a (add), an (add all new),")
	fmt.Println("          d (delete), da (delete all), q (quit)")
}

// dispatch handles one REPL verb and reports whether the REPL should
// stop (the "q" verb, or cancellation while prompting for an argument).
func (r *repl) dispatch(line string) bool {
	gw := r.gw
	verb := strings.TrimSpace(line)
	switch verb {
	case "ld":
		listDevices(gw)
	case "lp":
		listPorts(gw)
	case "lm":
		listMappings(gw)
	case "s":
		return r.send()
	case "b":
		return r.broadcast()
	case "a":
		return r.add()
	case "an":
		n := gw.AddNewSerialPorts(false)
		fmt.Println(styles.InfoStyle.Render(fmt.Sprintf("admitted %d new device(s)", n)))
	case "d":
		return r.deleteOne()
	case "da":
		n := gw.DeleteAll()
		fmt.Println(styles.InfoStyle.Render(fmt.Sprintf("deleted %d device(s)", n)))
	case "q":
		return true
	case "":
		// ignore blank lines
	default:
		fmt.Println(styles.ErrorStyle.Render("unknown command: " + verb))
	}
	return false
}

// prompt prints label and blocks for the next stdin line. ok is false
// if the REPL was cancelled while waiting, in which case the caller
// should treat dispatch as done.
func (r *repl) prompt(label string) (string, bool) {
	fmt.Print(label + ": ")
	return r.next()
}

func listDevices(gw *gateway.Gateway) {
	ids := gw.ListDeviceIDs()
	sort.Strings(ids)
	mappings := gw.ListMappings()

	columns := []table.Column{
		{Title: "ID", Width: 20},
		{Title: "Port", Width: 24},
	}
	rows := make([]table.Row, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, table.Row{id, mappings[id]})
	}
	renderTable(columns, rows)
}

func listPorts(gw *gateway.Gateway) {
	ports, err := gw.ListSystemPorts()
	if err != nil {
		fmt.Println(styles.ErrorStyle.Render("list ports failed: " + err.Error()))
		return
	}

	columns := []table.Column{
		{Title: "Port", Width: 24},
		{Title: "Descriptor", Width: 40},
	}
	rows := make([]table.Row, 0, len(ports))
	for _, p := range ports {
		rows = append(rows, table.Row{p.Port, p.Descriptor})
	}
	renderTable(columns, rows)
}

func listMappings(gw *gateway.Gateway) {
	mappings := gw.ListMappings()
	ids := make([]string, 0, len(mappings))
	for id := range mappings {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	columns := []table.Column{
		{Title: "ID", Width: 20},
		{Title: "Port", Width: 24},
	}
	rows := make([]table.Row, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, table.Row{id, mappings[id]})
	}
	renderTable(columns, rows)
}

func (r *repl) send() bool {
	id, ok := r.prompt("id")
	if !ok {
		return true
	}
	message, ok := r.prompt("message")
	if !ok {
		return true
	}
	r.gw.SendToDevice(id, message)
	return false
}

func (r *repl) broadcast() bool {
	message, ok := r.prompt("message")
	if !ok {
		return true
	}
	r.gw.Broadcast(message)
	return false
}

func (r *repl) add() bool {
	port, ok := r.prompt("port")
	if !ok {
		return true
	}
	if r.gw.AddSerialDevice(port, false) {
		fmt.Println(styles.StatusConnectedStyle.Render("admitted " + port))
	} else {
		fmt.Println(styles.StatusDisconnectedStyle.Render("failed to admit " + port))
	}
	return false
}

func (r *repl) deleteOne() bool {
	id, ok := r.prompt("id")
	if !ok {
		return true
	}
	if r.gw.DeleteDevice(id) {
		fmt.Println(styles.InfoStyle.Render("deleted " + id))
	} else {
		fmt.Println(styles.ErrorStyle.Render("no such device: " + id))
	}
	return false
}

func renderTable(columns []table.Column, rows []table.Row) {
	if len(rows) == 0 {
		fmt.Println(styles.InfoStyle.Render("(none)"))
		return
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1),
	)

	ts := table.DefaultStyles()
	ts.Header = ts.Header.BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).Bold(true)
	ts.Selected = lipgloss.NewStyle()
	t.SetStyles(ts)

	fmt.Println(t.View())
}
