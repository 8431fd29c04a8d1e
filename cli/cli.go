package cli

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	flag "github.com/spf13/pflag"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	HelpPatterns      = []string{"--help", "-h"} // HelpPatterns is a slice of flags that should trigger the output of usage information with the top-level [CommandSet].

	keyCleansePattern = regexp.MustCompile(`\s`)
)

// CommandFunc is a function that may be executed within a [Command].
type CommandFunc = func(flags *flag.FlagSet, printer *Printer) error

// Command is an executable function in a CLI.
// It's created with [CommandSet.AddCommand].
type Command struct {
	flags      *flag.FlagSet
	exec       CommandFunc
	key        string
	parent     string
	shortUsage string
	printer    *Printer
	aliases    []string
}

func cleanseKey(key string) string {
	return keyCleansePattern.ReplaceAllString(strings.ToLower(key), "")
}

func newCommand(key, parent, shortUsage string, printer *Printer) *Command {
	key = cleanseKey(key)
	fs := flag.NewFlagSet(key, flag.ContinueOnError)
	fs.BoolP("help", "h", false, "Prints this usage information")
	fs.SetInterspersed(false)
	cmd := &Command{flags: fs, key: key, parent: parent, shortUsage: shortUsage, printer: printer}
	cmd.Usage("").Does(func(flags *flag.FlagSet, _ *Printer) error {
		flags.Usage()
		return nil
	})
	return cmd
}

// Does specifies the [CommandFunc] that should be executed by this [Command].
func (c *Command) Does(commandFunc CommandFunc) *Command {
	if commandFunc == nil {
		return c
	}
	c.exec = commandFunc
	return c
}

// Flags returns the [flag.FlagSet] for this [Command].
func (c *Command) Flags() *flag.FlagSet {
	return c.flags
}

// Usage allows specifying a longer description of the [Command] that will be output when a [HelpPatterns] flag is passed.
// The parent command name is prepended, and the short description and flag usages are appended.
func (c *Command) Usage(format string, args ...any) *Command {
	text := fmt.Sprintf(format, args...)
	if len(c.parent) > 0 && len(text) > 0 {
		text = c.parent + " " + text
	}
	if len(text) > 0 {
		text = "USAGE:\n" + text
	}
	c.flags.Usage = func() {
		var buf strings.Builder
		if len(text) == 0 {
			buf.WriteString("\n" + c.shortUsage + "\n")
		} else {
			if !strings.HasSuffix(text, "\n") {
				text += "\n"
			}
			buf.WriteString(fmt.Sprintf("%s\n\n%s", c.shortUsage, text))
		}
		buf.WriteString("\nFLAGS\n")
		buf.WriteString(c.flags.FlagUsages())
		c.printer.Print(buf.String())
	}
	return c
}

// Exec parses flags from args and executes the command.
// If a help flag was given, then usage is printed instead.
func (c *Command) Exec(args []string) error {
	c.flags.SetOutput(c.printer.Writer())
	if err := c.flags.Parse(args); err != nil {
		return err
	}
	if val, _ := c.flags.GetBool("help"); val {
		c.flags.Usage()
		return nil
	}
	return c.exec(c.flags, c.printer)
}

// CommandSet is a group of [Command].
type CommandSet struct {
	commands map[string]*Command
	aliases  map[string]*Command
	printer  *Printer
	parent   string
}

// NewCommandSet is used to set up a top level [CommandSet] as the root of a CLI's command structure.
// The parent(s) should be the commands used to invoke this [CommandSet], they're used in usage information.
func NewCommandSet(parent ...string) *CommandSet {
	return &CommandSet{printer: NewPrinter(), parent: strings.Join(parent, " ")}
}

// AddCommand adds a sub-command to this [CommandSet].
// The key parameter will be cleansed to remove spaces, and normalize to lower-case.
// Aliases may be added as a way to support shorter variants of the same [Command].
func (s *CommandSet) AddCommand(key, shortUsage string, aliases ...string) *Command {
	key = cleanseKey(key)
	cmd := newCommand(key, s.parent, shortUsage, s.Printer())
	if s.commands == nil {
		s.commands = map[string]*Command{}
	}
	s.commands[key] = cmd
	for _, alias := range aliases {
		alias = cleanseKey(alias)
		if len(alias) == 0 {
			continue
		}
		if s.aliases == nil {
			s.aliases = map[string]*Command{}
		}
		s.aliases[alias] = cmd
		cmd.aliases = append(cmd.aliases, alias)
	}
	slices.Sort(cmd.aliases)
	return cmd
}

// Printer returns the cached [Printer] for this [CommandSet], which is shared with its commands.
func (s *CommandSet) Printer() *Printer {
	if s.printer == nil {
		s.printer = NewPrinter()
	}
	return s.printer
}

// Exec executes this [CommandSet].
// It's expected that the first argument is the key or alias of a sub-command.
func (s *CommandSet) Exec(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: no arguments", ErrUnknownCommand)
	}
	key := strings.ToLower(args[0])
	cmd, ok := s.commands[key]
	if !ok {
		cmd, ok = s.aliases[key]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
		}
	}
	return cmd.Exec(args[1:])
}

// RespondUsage will print usage information with the [CommandSet]'s [Printer] if args is empty, or starts with one of [HelpPatterns].
// If usage information was printed, then true will be returned.
func (s *CommandSet) RespondUsage(args []string, format string, vals ...any) bool {
	if len(args) > 0 && !slices.Contains(HelpPatterns, args[0]) {
		return false
	}
	s.PrintUsage(format, vals...)
	return true
}

// PrintUsage prints the given description followed by the command list.
func (s *CommandSet) PrintUsage(format string, vals ...any) {
	text := fmt.Sprintf(format, vals...)
	if len(text) > 0 {
		text = strings.TrimSuffix("\n\n"+text, "\n")
	}
	s.Printer().Printf("%s%s\n\nCOMMANDS:\n%s", s.parent, text, s.CommandUsages())
}

// CommandUsages returns a string including the usage information for sub-commands in this [CommandSet].
//
// The sub-command keys will be sorted alphabetically before output.
func (s *CommandSet) CommandUsages() string {
	var (
		buf         strings.Builder
		keys        = make([]string, 0, len(s.commands))
		withAliases = make([]string, len(s.commands))
		maxLen      int
	)
	for key := range s.commands {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for i, key := range keys {
		withAliases[i] = strings.Join(append([]string{key}, s.commands[key].aliases...), ", ")
		maxLen = max(maxLen, len(withAliases[i]))
	}
	fmtStr := fmt.Sprintf("  %%-%ds\t%%s\n", maxLen)
	for i, key := range keys {
		buf.WriteString(fmt.Sprintf(fmtStr, withAliases[i], s.commands[key].shortUsage))
	}
	return buf.String()
}
