package timetable

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Placement assigns one exam its resources.
type Placement struct {
	Exam        int
	Room        int
	Slot        int
	Invigilator int
}

// Solution holds one placement per exam, indexed by exam number.
type Solution []Placement

// Lines renders the solution in the exchange format, one exam per
// line.
func (s Solution) Lines() []string {
	lines := make([]string, len(s))
	for i, p := range s {
		lines[i] = fmt.Sprintf("Exam: %d  Room: %d  Slot: %d  Invigilator: %d", p.Exam, p.Room, p.Slot, p.Invigilator)
	}
	return lines
}

var placementLine = regexp.MustCompile(`^Exam:\s*(\d+)\s+Room:\s*(\d+)\s+Slot:\s*(\d+)\s+Invigilator:\s*(\d+)$`)

// ReadSolution parses the exchange format leniently: sat/unsat
// verdicts, 'Solution N:' block headers and trailing time annotations
// are tolerated, and an unsat verdict short-circuits with no
// placements. Only the first solution block is read.
func ReadSolution(r io.Reader) (Solution, bool, error) {
	scanner := bufio.NewScanner(r)
	var sol Solution
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || line == "sat":
			continue
		case line == "unsat":
			return nil, true, nil
		case strings.HasPrefix(line, "Solution "):
			if len(sol) > 0 {
				return sol, false, nil
			}
			continue
		case strings.HasPrefix(line, "Time"):
			continue
		}
		m := placementLine.FindStringSubmatch(line)
		if m == nil {
			return nil, false, fmt.Errorf("could not parse solution line %q", line)
		}
		exam, _ := strconv.Atoi(m[1])
		room, _ := strconv.Atoi(m[2])
		slot, _ := strconv.Atoi(m[3])
		inv, _ := strconv.Atoi(m[4])
		sol = append(sol, Placement{Exam: exam, Room: room, Slot: slot, Invigilator: inv})
	}
	if err := scanner.Err(); err != nil {
		return nil, false, fmt.Errorf("error reading solution: %w", err)
	}
	return sol, false, nil
}

// ReadSolutionFile opens and parses a solution file.
func ReadSolutionFile(path string) (Solution, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false, fmt.Errorf("error opening solution file (%s): %w", path, err)
	}
	defer f.Close()
	return ReadSolution(f)
}

// WriteSolutions renders a run's verdict, its solutions and the
// elapsed time in the exchange format.
func WriteSolutions(w io.Writer, solutions []Solution, elapsed time.Duration) error {
	if len(solutions) == 0 {
		if _, err := fmt.Fprintln(w, "unsat"); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintln(w, "sat"); err != nil {
			return err
		}
		for i, sol := range solutions {
			if len(solutions) > 1 {
				if _, err := fmt.Fprintf(w, "Solution %d:\n", i+1); err != nil {
					return err
				}
			}
			for _, line := range sol.Lines() {
				if _, err := fmt.Fprintln(w, line); err != nil {
					return err
				}
			}
		}
	}
	_, err := fmt.Fprintf(w, "Time Elapsed: %dms\n", elapsed.Milliseconds())
	return err
}
