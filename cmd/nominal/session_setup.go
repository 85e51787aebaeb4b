package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"nominal/internal/code"
	"nominal/internal/config"
	"nominal/internal/diagfmt"
	"nominal/internal/observ"
	"nominal/internal/session"
)

// loadOptions reads the configuration file named by --config, or the
// nearest nominal.toml, and applies the persistent flags over it.
func loadOptions(cmd *cobra.Command) (config.Options, error) {
	flags := cmd.Root().PersistentFlags()

	path, err := flags.GetString("config")
	if err != nil {
		return config.Options{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	var opts config.Options
	if path != "" {
		opts, err = config.Load(path)
	} else {
		opts, _, err = config.Discover(".")
	}
	if err != nil {
		return config.Options{}, err
	}

	classpath, err := flags.GetStringArray("classpath")
	if err != nil {
		return config.Options{}, fmt.Errorf("failed to get classpath flag: %w", err)
	}
	opts.Classpath = append(opts.Classpath, classpath...)

	if flags.Changed("no-core") {
		if opts.NoCore, err = flags.GetBool("no-core"); err != nil {
			return config.Options{}, fmt.Errorf("failed to get no-core flag: %w", err)
		}
	}

	traceOutput, err := flags.GetString("trace")
	if err != nil {
		return config.Options{}, fmt.Errorf("failed to get trace flag: %w", err)
	}
	traceLevel, err := flags.GetString("trace-level")
	if err != nil {
		return config.Options{}, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	if traceOutput != "" {
		opts.Trace.Output = traceOutput
		if opts.Trace.Level == "off" && traceLevel == "" {
			opts.Trace.Level = "phase"
		}
	}
	if traceLevel != "" {
		opts.Trace.Level = traceLevel
	}
	return opts, nil
}

// withSession opens a session for the command, runs fn and reports the
// collected diagnostics and, with --timings, the phase timings to stderr.
func withSession(cmd *cobra.Command, fn func(s *session.Session) error) error {
	flags := cmd.Root().PersistentFlags()
	diagFormat, err := flags.GetString("diag-format")
	if err != nil {
		return fmt.Errorf("failed to get diag-format flag: %w", err)
	}
	if diagFormat != "pretty" && diagFormat != "json" {
		return fmt.Errorf("invalid --diag-format value %q (expected pretty|json)", diagFormat)
	}
	timings, err := flags.GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}

	timer := observ.NewTimer()
	phase := timer.Begin("open")
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	s, err := session.Open(cmd.Context(), opts)
	if err != nil {
		return err
	}
	timer.End(phase, fmt.Sprintf("%d classes", s.Loader.Len()))

	phase = timer.Begin("query")
	runErr := fn(s)
	timer.End(phase, fmt.Sprintf("%d classes entered", s.Syms.ClassCount()))

	stderr := cmd.ErrOrStderr()
	if items := s.Bag.Items(); len(items) > 0 {
		if diagFormat == "json" {
			runErr = errors.Join(runErr, diagfmt.JSON(stderr, items, diagfmt.JSONOpts{IncludeNotes: true}))
		} else {
			diagfmt.Pretty(stderr, items, diagfmt.PrettyOpts{Color: !color.NoColor, ShowNotes: true})
		}
	}
	if timings {
		fmt.Fprint(stderr, timer.Summary())
	}
	return errors.Join(runErr, s.Close())
}

// parseTypes reads each argument as a type in signature syntax.
func parseTypes(s *session.Session, args []string) ([]code.Type, error) {
	out := make([]code.Type, len(args))
	for i, arg := range args {
		t, err := s.ParseType(arg)
		if err != nil {
			return nil, fmt.Errorf("type %q: %w", arg, err)
		}
		if err := completeAll(t); err != nil {
			return nil, fmt.Errorf("type %q: %w", arg, err)
		}
		out[i] = t
	}
	return out, nil
}

// completeAll completes every class t mentions so a class missing from
// the class path is reported before the query runs.
func completeAll(t code.Type) error {
	switch t := t.(type) {
	case *code.ArrayType:
		return completeAll(t.Elem)
	case *code.WildcardType:
		if t.Bound == nil {
			return nil
		}
		return completeAll(t.Bound)
	case *code.ClassType:
		if err := t.TSym().Complete(); err != nil {
			return err
		}
		if outer := t.EnclosingType(); outer != nil && outer.Tag() == code.TagClass {
			if err := completeAll(outer); err != nil {
				return err
			}
		}
		for _, a := range t.TypeArguments() {
			if err := completeAll(a); err != nil {
				return err
			}
		}
	}
	return nil
}
