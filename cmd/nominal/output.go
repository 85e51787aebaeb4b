package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"nominal/internal/prof"
)

var (
	trueColor  = color.New(color.FgGreen, color.Bold)
	falseColor = color.New(color.FgRed, color.Bold)
	typeColor  = color.New(color.FgCyan)
	dimColor   = color.New(color.Faint)
	warnColor  = color.New(color.FgYellow, color.Bold)
)

var profiler *prof.Profiler

// setup applies --color and starts profiling before any command runs.
func setup(cmd *cobra.Command, _ []string) error {
	if err := setupColor(cmd); err != nil {
		return err
	}
	flags := cmd.Root().PersistentFlags()
	cpu, err := flags.GetString("cpuprofile")
	if err != nil {
		return fmt.Errorf("failed to get cpuprofile flag: %w", err)
	}
	mem, err := flags.GetString("memprofile")
	if err != nil {
		return fmt.Errorf("failed to get memprofile flag: %w", err)
	}
	if cpu == "" && mem == "" {
		return nil
	}
	profiler, err = prof.Start(cpu, mem)
	return err
}

// teardown writes pending profiles.
func teardown(*cobra.Command, []string) error {
	if profiler == nil {
		return nil
	}
	err := profiler.Stop()
	profiler = nil
	return err
}

func setupColor(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "", "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}

func printVerdict(out io.Writer, ok bool) {
	if ok {
		fmt.Fprintln(out, trueColor.Sprint("true"))
		return
	}
	fmt.Fprintln(out, falseColor.Sprint("false"))
}

func printType(out io.Writer, s fmt.Stringer) {
	fmt.Fprintln(out, typeColor.Sprint(s.String()))
}

// table prints rows in aligned columns. Widths are measured in terminal
// cells so wide identifiers line up.
type table struct {
	rows [][]string
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) write(out io.Writer, colors ...*color.Color) {
	var widths []int
	for _, row := range t.rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	for _, row := range t.rows {
		var b strings.Builder
		for i, cell := range row {
			text := cell
			if i < len(colors) && colors[i] != nil {
				text = colors[i].Sprint(cell)
			}
			b.WriteString(text)
			if i < len(row)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-runewidth.StringWidth(cell)+2))
			}
		}
		fmt.Fprintln(out, b.String())
	}
}
