package validate

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/assignsat/assignsat/pkg/timetable"
	"github.com/assignsat/assignsat/pkg/wsp"
)

func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <instance> <solution>",
		Short: "Checks a solution file against its instance",
		Long: `Checks a solution file against its instance, independently of any
solver. The instance dialect is sniffed from the first line: a
'Number of students' attribute means timetabling, anything else the
workflow dialect. Exits non-zero when the solution is invalid.`,
		Args: cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("file (%s) not found", path)
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], args[1])
		},
	}
}

func run(cmd *cobra.Command, instancePath, solutionPath string) error {
	isTimetable, err := sniffTimetable(instancePath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if isTimetable {
		inst, err := timetable.ParseInstanceFile(instancePath)
		if err != nil {
			return err
		}
		sol, unsat, err := timetable.ReadSolutionFile(solutionPath)
		if err != nil {
			return err
		}
		if unsat {
			fmt.Fprintln(out, "solution file declares unsat; nothing to validate")
			return nil
		}
		if ok, violations := timetable.Validate(inst, sol); !ok {
			for _, v := range violations {
				fmt.Fprintln(out, v)
			}
			return fmt.Errorf("solution violates %d constraints", len(violations))
		}
	} else {
		inst, err := parseWSPInstance(instancePath)
		if err != nil {
			return err
		}
		f, err := os.Open(solutionPath)
		if err != nil {
			return fmt.Errorf("error opening solution file (%s): %w", solutionPath, err)
		}
		defer f.Close()
		sol, unsat, err := wsp.ReadSolution(f)
		if err != nil {
			return err
		}
		if unsat {
			fmt.Fprintln(out, "solution file declares unsat; nothing to validate")
			return nil
		}
		if ok, violations := wsp.Validate(inst, sol); !ok {
			for _, v := range violations {
				fmt.Fprintln(out, v)
			}
			return fmt.Errorf("solution violates %d constraints", len(violations))
		}
	}

	fmt.Fprintln(out, "solution is valid")
	return nil
}

func parseWSPInstance(path string) (*wsp.Instance, error) {
	if strings.HasSuffix(path, ".json") {
		return wsp.InstanceFromJSON(path)
	}
	return wsp.ParseInstanceFile(path)
}

// sniffTimetable reads the first non-empty line of the instance file
// to pick the dialect.
func sniffTimetable(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("error opening instance file (%s): %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		return strings.HasPrefix(line, "Number of students"), nil
	}
	return false, fmt.Errorf("instance file (%s) is empty", path)
}
