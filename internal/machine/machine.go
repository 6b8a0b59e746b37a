// Package machine defines the puzzle machine model and the input parser.
package machine

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Machine is one puzzle instance: a set of buttons, each incrementing a
// fixed subset of counters by one per press (and toggling the matching
// indicator lights), plus the exact joltage targets per counter and the
// desired light diagram.
type Machine struct {
	// Lights is the target indicator diagram; Lights[i] means light i must
	// end up on. Empty for inputs without a diagram.
	Lights []bool
	// Buttons[i] holds the counter/light indices button i affects, sorted
	// and deduplicated.
	Buttons [][]int
	// Targets holds the exact joltage target per counter.
	Targets []int
}

var (
	lightsRe  = regexp.MustCompile(`\[([.#]+)\]`)
	buttonRe  = regexp.MustCompile(`\((\d+(?:,\d+)*)\)`)
	targetsRe = regexp.MustCompile(`\{(\d+(?:,\d+)*)\}`)
)

// ParseLine parses a single machine description such as
//
//	[.##.] (3) (1,3) (2) (2,3) (0,2) (0,1) {3,5,4,7}
//
// The light diagram and the joltage targets are each optional, but at
// least one of them must be present.
func ParseLine(line string) (*Machine, error) {
	m := &Machine{}

	if match := lightsRe.FindStringSubmatch(line); match != nil {
		for _, c := range match[1] {
			m.Lights = append(m.Lights, c == '#')
		}
	}

	for _, match := range buttonRe.FindAllStringSubmatch(line, -1) {
		idx, err := parseIntList(match[1])
		if err != nil {
			return nil, fmt.Errorf("bad button %q: %w", match[0], err)
		}
		m.Buttons = append(m.Buttons, dedupe(idx))
	}

	if match := targetsRe.FindStringSubmatch(line); match != nil {
		targets, err := parseIntList(match[1])
		if err != nil {
			return nil, fmt.Errorf("bad targets %q: %w", match[0], err)
		}
		m.Targets = targets
	}

	if len(m.Buttons) == 0 {
		return nil, fmt.Errorf("no buttons in %q", line)
	}
	if len(m.Targets) == 0 && len(m.Lights) == 0 {
		return nil, fmt.Errorf("no targets or light diagram in %q", line)
	}

	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// ParseAll reads machine descriptions from r, one per line. Blank lines
// are skipped.
func ParseAll(r io.Reader) ([]*Machine, error) {
	var machines []*Machine
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		m, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		machines = append(machines, m)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return machines, nil
}

func (m *Machine) validate() error {
	max := len(m.Targets)
	if max == 0 {
		max = len(m.Lights)
	}
	for i, b := range m.Buttons {
		for _, idx := range b {
			if idx < 0 || idx >= max {
				return fmt.Errorf("button %d references index %d, machine has %d", i, idx, max)
			}
		}
	}
	for i, tgt := range m.Targets {
		if tgt < 0 {
			return fmt.Errorf("counter %d has negative target %d", i, tgt)
		}
	}
	return nil
}

func parseIntList(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// dedupe sorts indices and drops duplicates; a duplicate within one
// button's list is treated as pressing the same counter once.
func dedupe(idx []int) []int {
	sort.Ints(idx)
	out := idx[:0]
	for i, v := range idx {
		if i == 0 || v != idx[i-1] {
			out = append(out, v)
		}
	}
	return out
}
