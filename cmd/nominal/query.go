package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nominal/internal/code"
	"nominal/internal/session"
	"nominal/internal/types"
)

// relationCmd builds a command answering a yes/no question about two
// types.
func relationCmd(use, short string, rel func(t *types.Types, a, b code.Type) bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " T S",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *session.Session) error {
				ts, err := parseTypes(s, args)
				if err != nil {
					return err
				}
				printVerdict(cmd.OutOrStdout(), rel(s.Types, ts[0], ts[1]))
				return nil
			})
		},
	}
}

var subtypeCmd = relationCmd("subtype", "Report whether T is a subtype of S",
	func(t *types.Types, a, b code.Type) bool { return t.IsSubtype(a, b) })

var sameCmd = relationCmd("same", "Report whether T and S are the same type",
	func(t *types.Types, a, b code.Type) bool { return t.IsSameType(a, b) })

var castableCmd = relationCmd("castable", "Report whether T can be cast to S",
	func(t *types.Types, a, b code.Type) bool { return t.IsCastable(a, b) })

// foldCmd builds a command combining one or more types into one.
func foldCmd(use, short string, fold func(t *types.Types, ts ...code.Type) code.Type) *cobra.Command {
	return &cobra.Command{
		Use:   use + " T...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *session.Session) error {
				ts, err := parseTypes(s, args)
				if err != nil {
					return err
				}
				res := fold(s.Types, ts...)
				if res.Tag() == code.TagError {
					return fmt.Errorf("%s: no %s of %s", use, use, code.TypesString(ts))
				}
				printType(cmd.OutOrStdout(), res)
				return nil
			})
		},
	}
}

var lubCmd = foldCmd("lub", "Print the least upper bound of the types",
	func(t *types.Types, ts ...code.Type) code.Type { return t.Lub(ts...) })

var glbCmd = foldCmd("glb", "Print the greatest lower bound of the types",
	func(t *types.Types, ts ...code.Type) code.Type { return t.Glb(ts...) })

var erasureCmd = &cobra.Command{
	Use:   "erasure T",
	Short: "Print the erasure of T",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session.Session) error {
			ts, err := parseTypes(s, args)
			if err != nil {
				return err
			}
			printType(cmd.OutOrStdout(), s.Types.Erasure(ts[0]))
			return nil
		})
	},
}

var captureCmd = &cobra.Command{
	Use:   "capture T",
	Short: "Print the capture conversion of T and the bounds of its fresh variables",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session.Session) error {
			ts, err := parseTypes(s, args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			captured := s.Types.Capture(ts[0])
			printType(out, captured)
			var tab table
			for _, a := range captured.TypeArguments() {
				if cv, ok := a.(*code.CapturedType); ok {
					tab.add(cv.String(), "extends "+cv.UpperBound().String(), "super "+cv.LowerBound().String())
				}
			}
			tab.write(out, typeColor, nil, nil)
			return nil
		})
	},
}

var closureCmd = &cobra.Command{
	Use:   "closure T",
	Short: "List the supertype closure of T, highest rank first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session.Session) error {
			ts, err := parseTypes(s, args)
			if err != nil {
				return err
			}
			var tab table
			for _, c := range s.Types.Closure(ts[0]) {
				kind := "class"
				if c.IsInterface() {
					kind = "interface"
				}
				tab.add(fmt.Sprint(s.Types.Rank(c)), kind, c.String())
			}
			tab.write(cmd.OutOrStdout(), dimColor, nil, typeColor)
			return nil
		})
	},
}

var membersCmd = &cobra.Command{
	Use:   "members T",
	Short: "List the members of T and its supertypes with their types as members of T",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session.Session) error {
			ts, err := parseTypes(s, args)
			if err != nil {
				return err
			}
			site := ts[0]
			if site.Tag() != code.TagClass {
				return fmt.Errorf("members: %s is not a class type", site)
			}
			var tab table
			for sym := range s.Types.MembersClosure(site, false).Symbols(nil) {
				if sym.Kind() != code.KindVar && sym.Kind() != code.KindMethod {
					continue
				}
				tab.add(sym.Kind().String(), sym.Owner().String()+"."+sym.Name().String(), s.Types.MemberType(site, sym).String())
			}
			tab.write(cmd.OutOrStdout(), dimColor, nil, typeColor)
			return nil
		})
	},
}

var descriptorCmd = &cobra.Command{
	Use:   "descriptor I",
	Short: "Print the function descriptor of the functional interface I",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session.Session) error {
			ts, err := parseTypes(s, args)
			if err != nil {
				return err
			}
			mt, err := s.Types.FindDescriptorType(ts[0])
			if err != nil {
				var fe *types.FunctionDescriptorLookupError
				if errors.As(err, &fe) {
					return fmt.Errorf("descriptor: %s", fe.Fragment)
				}
				return err
			}
			sym, err := s.Types.FindDescriptorSymbol(ts[0].TSym())
			if err != nil {
				return err
			}
			var params []string
			for _, p := range sym.Params(s.Names) {
				params = append(params, p.Name().String())
			}
			var tab table
			tab.add("method", sym.Owner().String()+"."+sym.Name().String())
			tab.add("params", strings.Join(params, ", "))
			tab.add("type", mt.String())
			tab.write(cmd.OutOrStdout(), dimColor, typeColor)
			return nil
		})
	},
}
