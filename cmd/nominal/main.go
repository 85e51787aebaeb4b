package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"nominal/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "nominal",
	Short: "Type queries over a class path",
	Long: `nominal answers type system questions (subtyping, casts, least upper
bounds, erasure, capture, member lookup, function descriptors) about the
classes on a class path of descriptor packs and manifests.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.AddCommand(subtypeCmd)
	rootCmd.AddCommand(sameCmd)
	rootCmd.AddCommand(castableCmd)
	rootCmd.AddCommand(lubCmd)
	rootCmd.AddCommand(glbCmd)
	rootCmd.AddCommand(erasureCmd)
	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(closureCmd)
	rootCmd.AddCommand(membersCmd)
	rootCmd.AddCommand(descriptorCmd)
	rootCmd.AddCommand(packCmd)
	rootCmd.AddCommand(versionCmd)

	flags := rootCmd.PersistentFlags()
	flags.StringArray("classpath", nil, "class path entry (.ntp pack, .toml or .yaml manifest); repeatable")
	flags.String("config", "", "path to nominal.toml (default: nearest one above the working directory)")
	flags.Bool("no-core", false, "leave the embedded core library off the class path")
	flags.String("trace", "", "trace output file (- for stderr)")
	flags.String("trace-level", "", "trace level (off|error|phase|detail|debug)")
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.String("diag-format", "pretty", "class path diagnostics format (pretty|json)")
	flags.Bool("timings", false, "print phase timings to stderr")
	flags.String("cpuprofile", "", "write a CPU profile to this file")
	flags.String("memprofile", "", "write a heap profile to this file")
}

// main runs the root command. Any error exits with status 1.
func main() {
	rootCmd.Version = version.String()
	err := rootCmd.Execute()
	if stopErr := teardown(nil, nil); err == nil {
		err = stopErr
	}
	if err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
