// Package builtin implements the shell's builtin utilities. Each file
// registers itself with the interpreter's builtin tables from an init
// function; importing this package for side effects is enough to install
// them all.
package builtin

import (
	"fmt"
	"io"
	"strconv"

	getopt "github.com/pborman/getopt/v2"

	"github.com/poshell/poshell/core/interp"
)

// Command wraps getopt flag handling for builtins that take options, in the
// usual usage/short-description shape. Builtins whose option syntax getopt
// cannot express (set, echo) parse by hand instead.
type Command struct {
	// Use holds a one line usage string.
	Use string
	// Short holds a one line description of the builtin.
	Short string

	flags *getopt.Set
}

// Flags gets the command's flag set.
func (c *Command) Flags() *getopt.Set {
	if c.flags == nil {
		c.flags = getopt.New()
	}
	return c.flags
}

// PrintHelp writes help for the command to the given writer.
func (c *Command) PrintHelp(w io.Writer) {
	fmt.Fprint(w, "usage: ")
	fmt.Fprintln(w, c.Use)
	fmt.Fprintln(w, c.Short)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	c.Flags().PrintOptions(w)
}

// Run parses the builtin's arguments and, if that worked, calls the
// callback with the remaining operands.
func (c *Command) Run(p *interp.Proc, callback func(args []string) int) int {
	opts := c.Flags()
	if err := opts.Getopt(append([]string{p.Name}, p.Args...), nil); err != nil {
		fmt.Fprintf(p.Stderr, "%s: %v\n", p.Name, err)
		c.PrintHelp(p.Stderr)
		return 2
	}
	return callback(opts.Args())
}

// errf writes a builtin diagnostic in the usual name-prefixed form.
func errf(p *interp.Proc, format string, args ...any) {
	fmt.Fprintf(p.Stderr, "%s: %s\n", p.Name, fmt.Sprintf(format, args...))
}

// parseCount parses the numeric operand of break, continue, shift, and
// wait.
func parseCount(arg string) (int, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, false
	}
	return n, true
}
