package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"nominal/internal/classpath"
)

var packOutput string

func init() {
	packCmd.Flags().StringVarP(&packOutput, "output", "o", "", "pack file to write (must end in "+classpath.PackExt+")")
	_ = packCmd.MarkFlagRequired("output")
}

var packCmd = &cobra.Command{
	Use:   "pack MANIFEST... -o OUT" + classpath.PackExt,
	Short: "Merge manifests into one binary descriptor pack",
	Long: `pack reads TOML, YAML or pack manifests and writes their classes, in
argument order, to a single msgpack descriptor pack. A class declared by
several inputs keeps its first declaration.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPack,
}

func runPack(cmd *cobra.Command, args []string) error {
	if filepath.Ext(packOutput) != classpath.PackExt {
		return fmt.Errorf("pack: output %q must end in %s", packOutput, classpath.PackExt)
	}
	entries, err := classpath.ReadAll(cmd.Context(), args, 0)
	if err != nil {
		return err
	}
	merged := &classpath.Manifest{Schema: classpath.Schema}
	seen := make(map[string]string)
	for _, e := range entries {
		for _, c := range e.Manifest.Classes {
			if first, dup := seen[c.Name]; dup {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %s: %s already declared in %s\n", warnColor.Sprint("WARNING"), e.Path, c.Name, first)
				continue
			}
			seen[c.Name] = e.Path
			merged.Classes = append(merged.Classes, c)
		}
	}
	if err := classpath.WritePackFile(packOutput, merged); err != nil {
		return fmt.Errorf("pack: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d classes to %s\n", trueColor.Sprint("packed"), len(merged.Classes), packOutput)
	return nil
}
