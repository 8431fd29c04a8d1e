/*
Package cli provides a small, opinionated command tree on top of [pflag].

  - User-visible output goes to STDERR by default, through a [Printer] that can be redirected.
  - Flags are NOT interspersed, so flags and arguments are parsed predictably.
  - Flags apply to the command at hand. There are no global flags.
  - Sub-commands are matched case-insensitively, and may have aliases.

# Invocation

	CLI_NAME SUB-COMMAND [FLAGS...] [ARGS...]

Calling CLI_NAME alone, or with '-h' or '--help', prints the command list with [CommandSet.RespondUsage].
Every [Command] gets '-h' and '--help' flags that print its own usage.

[pflag]: https://github.com/spf13/pflag
*/
package cli
