package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logLevel string

func newLogger() (*zap.SugaredLogger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("parsing --log-level %q: %w", logLevel, err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger.Sugar(), nil
}

func runScenario(path string) ([]*session, error) {
	scenario, err := LoadScenario(path)
	if err != nil {
		return nil, err
	}
	log, err := newLogger()
	if err != nil {
		return nil, err
	}
	defer log.Sync() //nolint:errcheck

	sessions := make([]*session, 0, len(scenario.Allocations))
	var allocID uint64
	for _, alloc := range scenario.Allocations {
		s, err := newSession(allocID, alloc, log)
		if err != nil {
			return sessions, fmt.Errorf("allocation %q: %w", alloc.Name, err)
		}
		allocID++
		sessions = append(sessions, s)

		for i, op := range alloc.Ops {
			if err := s.apply(op); err != nil {
				return sessions, fmt.Errorf("allocation %q op %d (%s): %w", alloc.Name, i, op.Op, err)
			}
		}
	}
	return sessions, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tbsim",
		Short: "Replay borrow-tree scenarios and report the first Undefined Behavior found",
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	var runCmd = &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Replay a scenario to completion or first error",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := runScenario(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}

	var dumpCmd = &cobra.Command{
		Use:   "dump <scenario.yaml>",
		Short: "Replay a scenario and print the final tree shape of every allocation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := runScenario(args[0])
			for _, s := range sessions {
				fmt.Fprintf(cmd.OutOrStdout(), "=== %s ===\n", s.alloc)
				s.tree.Dump(cmd.OutOrStdout())
			}
			return err
		},
	}

	var validateCmd = &cobra.Command{
		Use:   "validate <scenario.yaml>",
		Short: "Parse a scenario file and report schema errors without executing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := LoadScenario(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		},
	}

	root.AddCommand(runCmd, dumpCmd, validateCmd)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
