package timetable

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/assignsat/assignsat/cmd/config"
	"github.com/assignsat/assignsat/pkg/timetable"
)

func NewTimetableCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timetable <instance>",
		Short: "Solves an exam timetabling instance",
		Long: `Solves an exam timetabling instance: every exam gets a slot, a room
and an invigilator under capacity, uniqueness and student-overlap
constraints. Infeasible instances are relaxed automatically (more
slots, more invigilators, bigger rooms) until a solution exists or the
repair round cap is reached.`,
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
	cmd.Flags().Int("max-repair-rounds", 0, "cap on the number of repair rounds")
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
	if cmd.Flags().Changed("max-repair-rounds") {
		cfg.MaxRepairRounds, _ = cmd.Flags().GetInt("max-repair-rounds")
	}

	inst, err := timetable.ParseInstanceFile(path)
	if err != nil {
		return err
	}

	result, err := timetable.Solve(context.Background(), inst, timetable.Options{
		Limit:     cfg.Solutions,
		Timeout:   time.Duration(cfg.Timeout),
		MaxRounds: cfg.MaxRepairRounds,
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

func report(w io.Writer, result *timetable.Result) error {
	if result.Report.Repaired() {
		fmt.Fprintf(w, "solved after %d repair rounds\n", result.Report.Rounds)
		if result.Report.SlotsAdded > 0 {
			fmt.Fprintf(w, "  - increased number of time slots by %d\n", result.Report.SlotsAdded)
		}
		if result.Report.InvigilatorsAdded > 0 {
			fmt.Fprintf(w, "  - increased number of invigilators to %d\n", result.Repaired.Invigilators)
		}
		for room := 0; room < result.Repaired.Rooms; room++ {
			if added := result.Report.RoomCapacityAdded[room]; added > 0 {
				fmt.Fprintf(w, "  - increased capacity of room %d by %d\n", room, added)
			}
		}
	} else {
		fmt.Fprintln(w, "solved without repair")
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
	return timetable.WriteSolutions(w, result.Solutions, result.Elapsed)
}
