package wsp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/assignsat/assignsat/cmd/config"
	"github.com/assignsat/assignsat/pkg/csp"
	"github.com/assignsat/assignsat/pkg/wsp"
)

func NewWSPCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wsp <instance>",
		Short: "Solves a workflow satisfiability instance",
		Long: `Solves a workflow satisfiability instance: one user per workflow
step under authorisation, separation/binding of duty, at-most-k,
one-team and user-capacity constraints. Instances ending in .json use
the JSON dialect, anything else the line-oriented one. On
infeasibility the conflicting constraints are reported; there is no
automatic repair for workflow instances.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("file (%s) not found", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return solve(cmd, args[0])
		},
	}

	cmd.Flags().IntP("solutions", "n", 0, "number of distinct solutions to enumerate")
	cmd.Flags().Duration("timeout", 0, "wall-clock budget for the enumeration")
	cmd.Flags().String("encoding", "", "constraint encoding: matrix or int")
	cmd.Flags().StringP("output", "o", "", "write results to this file instead of stdout")
	return cmd
}

func solve(cmd *cobra.Command, path string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("solutions") {
		cfg.Solutions, _ = cmd.Flags().GetInt("solutions")
	}
	if cmd.Flags().Changed("timeout") {
		timeout, _ := cmd.Flags().GetDuration("timeout")
		cfg.Timeout = config.Duration(timeout)
	}
	if cmd.Flags().Changed("encoding") {
		cfg.Encoding, _ = cmd.Flags().GetString("encoding")
	}

	var inst *wsp.Instance
	if filepath.Ext(path) == ".json" {
		inst, err = wsp.InstanceFromJSON(path)
	} else {
		inst, err = wsp.ParseInstanceFile(path)
	}
	if err != nil {
		return err
	}
	inst.DefaultCapacity = cfg.DefaultCapacity

	result, err := wsp.Solve(context.Background(), inst, wsp.Options{
		Encoding: cfg.Encoding,
		Limit:    cfg.Solutions,
		Timeout:  time.Duration(cfg.Timeout),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if output, _ := cmd.Flags().GetString("output"); output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("error creating output file (%s): %w", output, err)
		}
		defer f.Close()
		out = f
	}
	return report(out, result)
}

func report(w io.Writer, result *wsp.Result) error {
	if result.Status == csp.StatusUnknown {
		fmt.Fprintln(w, "unknown")
		fmt.Fprintln(w, "The solver gave no verdict within the time budget.")
		return nil
	}
	if result.Status == csp.StatusUnsat {
		fmt.Fprintln(w, "unsat")
		fmt.Fprintln(w, "Conflicting constraints detected:")
		for _, c := range result.Core {
			fmt.Fprintf(w, "  - %s\n", c)
		}
		fmt.Fprintln(w, "No repair applies to workflow instances; revise the instance data manually.")
		return nil
	}
	if result.Incomplete {
		fmt.Fprintln(w, "enumeration timed out; the solution list may be incomplete")
		if len(result.Solutions) == 0 {
			// The instance is satisfiable even though no solution was
			// enumerated in time; an unsat verdict would be wrong here.
			fmt.Fprintln(w, "sat")
			_, err := fmt.Fprintf(w, "Time Elapsed: %dms\n", result.Elapsed.Milliseconds())
			return err
		}
	}
	return wsp.WriteSolutions(w, result.Solutions, result.Elapsed)
}
