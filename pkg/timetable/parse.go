package timetable

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var (
	attrLine = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9 ]*):\s*(\d+)\s*$`)
	pairLine = regexp.MustCompile(`^\s*(\d+)\s+(\d+)\s*$`)
)

// ParseInstance reads the line-oriented timetabling dialect: a header
// block of 'Key: integer' attributes, one 'Room N capacity' line per
// declared room, then exam-student incidence pairs until EOF. The
// invigilator count is an optional attribute; absent, the pool
// defaults to three.
func ParseInstance(r io.Reader) (*Instance, error) {
	scanner := bufio.NewScanner(r)

	inst := &Instance{Invigilators: DefaultInvigilators}
	for _, attr := range []struct {
		name  string
		field *int
	}{
		{"Number of students", &inst.Students},
		{"Number of exams", &inst.Exams},
		{"Number of slots", &inst.Slots},
		{"Number of rooms", &inst.Rooms},
	} {
		value, err := readAttribute(scanner, attr.name)
		if err != nil {
			return nil, err
		}
		*attr.field = value
	}

	for room := 0; room < inst.Rooms; room++ {
		value, err := readAttribute(scanner, fmt.Sprintf("Room %d capacity", room))
		if err != nil {
			return nil, err
		}
		inst.RoomCapacities = append(inst.RoomCapacities, value)
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if m := attrLine.FindStringSubmatch(line); m != nil && m[1] == "Number of invigilators" {
			inst.Invigilators, _ = strconv.Atoi(m[2])
			continue
		}
		m := pairLine.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("could not parse line %q; expected an 'exam student' pair", line)
		}
		exam, _ := strconv.Atoi(m[1])
		student, _ := strconv.Atoi(m[2])
		inst.ExamStudents = append(inst.ExamStudents, [2]int{exam, student})
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

func readAttribute(scanner *bufio.Scanner, name string) (int, error) {
	if !scanner.Scan() {
		return 0, fmt.Errorf("missing header line; expected the %q attribute", name)
	}
	line := strings.TrimSpace(scanner.Text())
	m := attrLine.FindStringSubmatch(line)
	if m == nil || m[1] != name {
		return 0, fmt.Errorf("could not parse line %q; expected the %q attribute", line, name)
	}
	return strconv.Atoi(m[2])
}
