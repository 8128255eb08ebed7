package domain

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Command is a control action. The string values are stable: they are
// sent across process boundaries and bound to status indicator buttons.
type Command string

const (
	CmdStart  Command = "START"
	CmdPause  Command = "PAUSE"
	CmdResume Command = "RESUME"
	CmdStop   Command = "STOP"
	CmdSkip   Command = "SKIP"
)

// Commands lists the full command vocabulary.
var Commands = []Command{CmdStart, CmdPause, CmdResume, CmdStop, CmdSkip}

// CommandRequest is a command plus its optional argument.
type CommandRequest struct {
	Command Command
	// Mode is only read by CmdStart. Empty means work.
	Mode TimerMode
}

// ParseCommand converts user input into a Command, case-insensitively.
// Unknown input yields ErrUnknownCommand with the closest match suggested.
func ParseCommand(s string) (Command, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for _, c := range Commands {
		if Command(upper) == c {
			return c, nil
		}
	}
	if suggestion := SuggestCommand(upper); suggestion != "" {
		return "", fmt.Errorf("%w %q (did you mean %s?)", ErrUnknownCommand, s, suggestion)
	}
	return "", fmt.Errorf("%w %q", ErrUnknownCommand, s)
}

// SuggestCommand returns the best fuzzy match for input, or "".
func SuggestCommand(input string) Command {
	if input == "" {
		return ""
	}
	names := make([]string, len(Commands))
	for i, c := range Commands {
		names[i] = string(c)
	}
	matches := fuzzy.Find(strings.ToUpper(input), names)
	if len(matches) == 0 {
		return ""
	}
	return Commands[matches[0].Index]
}

// Apply runs the command against a state. START with a break mode starts
// that break; commands that do not fit the current state leave it unchanged.
func (r CommandRequest) Apply(s PomodoroState) (PomodoroState, error) {
	switch r.Command {
	case CmdStart:
		mode, err := ParseMode(string(r.Mode))
		if err != nil {
			return s, err
		}
		return s.Start(mode), nil
	case CmdPause:
		return s.Pause(), nil
	case CmdResume:
		return s.Resume(), nil
	case CmdStop:
		return s.Stop(), nil
	case CmdSkip:
		return s.Skip(), nil
	default:
		return s, fmt.Errorf("%w %q", ErrUnknownCommand, string(r.Command))
	}
}
