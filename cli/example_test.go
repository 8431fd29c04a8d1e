package cli

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
)

func ExampleNewCommandSet() {
	// The string used should be the name used to invoke your CLI.
	tlc := NewCommandSet("my-cli")
	// Output goes to STDERR by default, this is just so the example can check it.
	tlc.Printer().Redirect(os.Stdout)

	sub := tlc.AddCommand("sub-command", "Shows an example of a sub-command")
	sub.Flags().Bool("do-something", false, "Makes the sub-command do something")

	// Parent command references will automatically be prepended to this string.
	sub.Usage("sub-command [FLAGS]")

	// Flags are already parsed by the time this function is executed.
	sub.Does(func(flags *flag.FlagSet, printer *Printer) error {
		if MustGet(flags.GetBool("do-something")) {
			printer.Println("sub-command ran")
		}
		return nil
	})

	// Sub-commands will be matched case-insensitive.
	if err := tlc.Exec([]string{"suB-ComMAnd", "--do-something"}); err != nil {
		fmt.Println("Something bad happened!")
	}
	fmt.Println()

	// Help flags are automatically set up for each command.
	_ = tlc.Exec([]string{"sub-command", "-h"})

	// Output:
	// sub-command ran
	//
	// Shows an example of a sub-command
	//
	// USAGE:
	// my-cli sub-command [FLAGS]
	//
	// FLAGS
	//       --do-something   Makes the sub-command do something
	//   -h, --help           Prints this usage information
}
