// Package protocol implements the line-oriented command protocol spoken on
// every client connection.
package protocol

import "strings"

// Command is one parsed command line
type Command struct {
	// Verb is upper-cased
	Verb string
	// Args are the whitespace-separated tokens after the verb
	Args []string
	// Text is everything after the verb with surrounding space trimmed
	Text string
}

// Parse splits a command line into its verb and arguments. A blank line
// yields a Command with an empty verb.
func Parse(line string) Command {
	line = strings.TrimSpace(strings.TrimRight(line, "\r\n"))
	if line == "" {
		return Command{}
	}
	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	return Command{
		Verb: strings.ToUpper(verb),
		Args: strings.Fields(rest),
		Text: rest,
	}
}

// Arg returns the i-th argument or "" if absent
func (c Command) Arg(i int) string {
	if i >= 0 && i < len(c.Args) {
		return c.Args[i]
	}
	return ""
}

// TextAfter returns the raw text following the first n arguments
func (c Command) TextAfter(n int) string {
	rest := c.Text
	for i := 0; i < n; i++ {
		rest = strings.TrimLeft(rest, " \t")
		idx := strings.IndexAny(rest, " \t")
		if idx < 0 {
			return ""
		}
		rest = rest[idx:]
	}
	return strings.TrimSpace(rest)
}
