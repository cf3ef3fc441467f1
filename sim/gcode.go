package sim

import (
	"fmt"
	"strconv"
	"strings"
)

// Command is one parsed G-code line
type Command struct {
	Type    byte             // 'G', 'M', 'T'
	Number  int              // 28 for G28
	Params  map[byte]float64 // bare letters such as the X in "G28 X" read as 0
	Comment string
}

// Is reports whether the command is typ followed by num
func (c *Command) Is(typ byte, num int) bool {
	return c.Type == typ && c.Number == num
}

// Has checks if a parameter exists in the command
func (c *Command) Has(param byte) bool {
	_, ok := c.Params[param]
	return ok
}

// Get returns a parameter value, or def if not present
func (c *Command) Get(param byte, def float64) float64 {
	if v, ok := c.Params[param]; ok {
		return v
	}
	return def
}

func (c *Command) String() string {
	return fmt.Sprintf("%c%d", c.Type, c.Number)
}

// ParseLine parses a single line of G-code. Blank lines and pure
// comments return a nil command.
func ParseLine(line string) (*Command, error) {
	if i := strings.IndexAny(line, ";("); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, nil
	}

	head := strings.ToUpper(fields[0])
	switch head[0] {
	case 'G', 'M', 'T':
	default:
		return nil, fmt.Errorf("unknown command %q", fields[0])
	}
	num, err := strconv.Atoi(head[1:])
	if err != nil {
		return nil, fmt.Errorf("command number %q: %w", fields[0], err)
	}

	cmd := &Command{
		Type:   head[0],
		Number: num,
		Params: make(map[byte]float64, len(fields)-1),
	}
	for _, f := range fields[1:] {
		letter := toUpper(f[0])
		if letter < 'A' || letter > 'Z' {
			return nil, fmt.Errorf("parameter %q", f)
		}
		if len(f) == 1 {
			cmd.Params[letter] = 0
			continue
		}
		v, err := strconv.ParseFloat(f[1:], 64)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", f, err)
		}
		cmd.Params[letter] = v
	}
	return cmd, nil
}

// ParseLines splits a multi-line injection and parses every line
func ParseLines(gcode string) ([]*Command, error) {
	var cmds []*Command
	for _, line := range strings.Split(gcode, "\n") {
		cmd, err := ParseLine(line)
		if err != nil {
			return cmds, err
		}
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return cmds, nil
}

func toUpper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
