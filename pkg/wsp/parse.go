package wsp

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/golang/glog"
)

var (
	headerLine = regexp.MustCompile(`^#?[A-Za-z][A-Za-z ]*:\s*(\d+)\s*$`)
	stepToken  = regexp.MustCompile(`^s(\d+)$`)
	userToken  = regexp.MustCompile(`^u(\d+)$`)
	teamGroup  = regexp.MustCompile(`\(([^)]*)\)`)
)

// ParseInstance reads the line-oriented WSP dialect: three header
// lines declaring the step, user and constraint counts followed by
// one constraint fact per line. Unknown fact keywords are a parse
// error, never silently skipped.
func ParseInstance(r io.Reader) (*Instance, error) {
	scanner := bufio.NewScanner(r)

	inst := &Instance{}
	for _, field := range []*int{&inst.Steps, &inst.Users} {
		value, err := readHeader(scanner)
		if err != nil {
			return nil, err
		}
		*field = value
	}
	// The declared constraint count is part of the dialect but the
	// fact lines themselves are authoritative.
	if _, err := readHeader(scanner); err != nil {
		return nil, err
	}

	authorised := map[int]bool{}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := parseFact(inst, line, authorised); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading instance: %w", err)
	}
	if err := inst.checkBounds(); err != nil {
		return nil, err
	}
	return inst, nil
}

// ParseInstanceFile opens and parses an instance file.
func ParseInstanceFile(path string) (*Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening instance file (%s): %w", path, err)
	}
	defer f.Close()
	inst, err := ParseInstance(f)
	if err != nil {
		return nil, fmt.Errorf("error parsing instance file (%s): %w", path, err)
	}
	return inst, nil
}

func readHeader(scanner *bufio.Scanner) (int, error) {
	if !scanner.Scan() {
		return 0, fmt.Errorf("missing header line: expected three 'Key: integer' lines")
	}
	line := strings.TrimSpace(scanner.Text())
	m := headerLine.FindStringSubmatch(line)
	if m == nil {
		return 0, fmt.Errorf("could not parse header line %q; expected 'Key: integer'", line)
	}
	return strconv.Atoi(m[1])
}

func parseFact(inst *Instance, line string, authorised map[int]bool) error {
	parts := strings.Fields(line)
	switch parts[0] {
	case "Authorisations":
		if len(parts) < 2 {
			return fmt.Errorf("invalid authorisation fact %q", line)
		}
		user, err := parseUser(parts[1])
		if err != nil {
			return err
		}
		steps, err := parseSteps(parts[2:])
		if err != nil {
			return err
		}
		if authorised[user] {
			// The first fact per user wins, matching the
			// established behavior callers depend on.
			glog.Warningf("user u%d has multiple authorisations defined; only the first will be used", user)
			return nil
		}
		authorised[user] = true
		inst.Authorisations = append(inst.Authorisations, Authorisation{User: user, Steps: steps})

	case "Separation-of-duty":
		s1, s2, err := parseStepPair(parts[1:], line)
		if err != nil {
			return err
		}
		inst.Separations = append(inst.Separations, SeparationOfDuty{S1: s1, S2: s2})

	case "Binding-of-duty":
		s1, s2, err := parseStepPair(parts[1:], line)
		if err != nil {
			return err
		}
		inst.Bindings = append(inst.Bindings, BindingOfDuty{S1: s1, S2: s2})

	case "At-most-k":
		if len(parts) < 3 {
			return fmt.Errorf("invalid at-most-k fact %q", line)
		}
		k, err := strconv.Atoi(parts[1])
		if err != nil {
			return fmt.Errorf("invalid at-most-k bound %q in %q", parts[1], line)
		}
		steps, err := parseSteps(parts[2:])
		if err != nil {
			return err
		}
		inst.AtMostKs = append(inst.AtMostKs, AtMostK{K: k, Steps: steps})

	case "One-team":
		steps, teams, err := parseOneTeam(line)
		if err != nil {
			return err
		}
		inst.OneTeams = append(inst.OneTeams, OneTeam{Steps: steps, Teams: teams})

	case "User-Capacity":
		if len(parts) != 3 {
			return fmt.Errorf("invalid user-capacity fact %q", line)
		}
		user, err := parseUser(parts[1])
		if err != nil {
			return err
		}
		capacity, err := strconv.Atoi(parts[2])
		if err != nil {
			return fmt.Errorf("invalid capacity %q in %q", parts[2], line)
		}
		inst.Capacities = append(inst.Capacities, UserCapacity{User: user, Capacity: capacity})

	default:
		return fmt.Errorf("unknown constraint keyword %q in %q", parts[0], line)
	}
	return nil
}

func parseUser(token string) (int, error) {
	m := userToken.FindStringSubmatch(token)
	if m == nil {
		return 0, fmt.Errorf("invalid user token %q", token)
	}
	return strconv.Atoi(m[1])
}

func parseStep(token string) (int, error) {
	m := stepToken.FindStringSubmatch(token)
	if m == nil {
		return 0, fmt.Errorf("invalid step token %q", token)
	}
	return strconv.Atoi(m[1])
}

func parseSteps(tokens []string) ([]int, error) {
	steps := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		s, err := parseStep(tok)
		if err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
	return steps, nil
}

func parseStepPair(tokens []string, line string) (int, int, error) {
	if len(tokens) != 2 {
		return 0, 0, fmt.Errorf("expected two step tokens in %q", line)
	}
	s1, err := parseStep(tokens[0])
	if err != nil {
		return 0, 0, err
	}
	s2, err := parseStep(tokens[1])
	if err != nil {
		return 0, 0, err
	}
	return s1, s2, nil
}

// parseOneTeam splits a one-team fact into its step list and its
// parenthesized user teams, e.g. "One-team s1 s2 (u1 u2) (u3)".
func parseOneTeam(line string) ([]int, [][]int, error) {
	body := strings.TrimPrefix(line, "One-team")
	head := body
	if i := strings.IndexByte(body, '('); i >= 0 {
		head = body[:i]
	}
	steps, err := parseSteps(strings.Fields(head))
	if err != nil {
		return nil, nil, err
	}

	var teams [][]int
	for _, group := range teamGroup.FindAllStringSubmatch(body, -1) {
		var team []int
		for _, tok := range strings.Fields(group[1]) {
			u, err := parseUser(tok)
			if err != nil {
				return nil, nil, err
			}
			team = append(team, u)
		}
		teams = append(teams, team)
	}

	if len(steps) == 0 || len(teams) == 0 {
		return nil, nil, fmt.Errorf("unable to parse one-team fact %q", line)
	}
	return steps, teams, nil
}
