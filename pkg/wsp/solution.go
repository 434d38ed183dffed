package wsp

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Solution maps each step to its assigned user.
type Solution map[int]int

// Lines renders the solution in the sN: uN dialect, ordered by step.
func (sol Solution) Lines() []string {
	steps := make([]int, 0, len(sol))
	for s := range sol {
		steps = append(steps, s)
	}
	sort.Ints(steps)
	lines := make([]string, len(steps))
	for i, s := range steps {
		lines[i] = fmt.Sprintf("s%d: u%d", s, sol[s])
	}
	return lines
}

var assignmentLine = regexp.MustCompile(`^s(\d+):\s*u(\d+)$`)

// ReadSolution parses a solution file. The literal token unsat (alone
// or as a verdict line) short-circuits to an unsat result; sat
// verdict lines, Solution N: headers and elapsed-time annotations are
// tolerated around the sN: uN assignment lines.
func ReadSolution(r io.Reader) (Solution, bool, error) {
	sol := Solution{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case strings.EqualFold(line, "unsat"):
			return nil, true, nil
		case strings.EqualFold(line, "sat"):
		case strings.HasPrefix(line, "Solution"):
		case strings.HasPrefix(line, "Time"):
		default:
			m := assignmentLine.FindStringSubmatch(line)
			if m == nil {
				return nil, false, fmt.Errorf("could not parse solution line %q", line)
			}
			s, _ := strconv.Atoi(m[1])
			u, _ := strconv.Atoi(m[2])
			sol[s] = u
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, false, fmt.Errorf("error reading solution: %w", err)
	}
	return sol, false, nil
}

// WriteSolutions renders a run's output: the sat/unsat verdict,
// numbered solution blocks when more than one solution was requested,
// and the elapsed-time annotation.
func WriteSolutions(w io.Writer, sols []Solution, elapsed time.Duration) error {
	if len(sols) == 0 {
		if _, err := fmt.Fprintln(w, "unsat"); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "Time Elapsed: %dms\n", elapsed.Milliseconds())
		return err
	}

	if _, err := fmt.Fprintln(w, "sat"); err != nil {
		return err
	}
	for i, sol := range sols {
		if len(sols) > 1 {
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
	_, err := fmt.Fprintf(w, "Time Elapsed: %dms\n", elapsed.Milliseconds())
	return err
}
