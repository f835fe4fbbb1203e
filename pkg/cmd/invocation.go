// Package cmd provides the transport-agnostic front of a text command: turning
// a raw message into an Invocation. How the invocation is resolved and run
// (Discord, CLI) is left to the callers.
package cmd

import (
	"strings"
	"unicode"
)

// Invocation is a parsed command: name as typed, whitespace-split arguments,
// and the unsplit text after the name for handlers that need it.
type Invocation struct {
	Name string
	Args []string
	Raw  string
}

// Result is either "not a command" (OK == false) or a parsed Invocation.
type Result struct {
	OK         bool
	Invocation Invocation
}

// Parse interprets raw as a command invocation under prefix.
//
// Leading whitespace before the prefix and whitespace between the prefix and
// the command name are both accepted. Parse never fails: any text it cannot
// interpret yields a Result with OK == false.
func Parse(raw, prefix string) Result {
	if prefix == "" {
		return Result{}
	}
	text := strings.TrimLeftFunc(raw, unicode.IsSpace)
	if !strings.HasPrefix(text, prefix) {
		return Result{}
	}
	body := strings.TrimLeftFunc(text[len(prefix):], unicode.IsSpace)
	if body == "" {
		return Result{}
	}

	name := body
	rest := ""
	if i := strings.IndexFunc(body, unicode.IsSpace); i >= 0 {
		name = body[:i]
		rest = strings.TrimLeftFunc(body[i:], unicode.IsSpace)
	}

	return Result{
		OK: true,
		Invocation: Invocation{
			Name: name,
			Args: strings.Fields(rest),
			Raw:  rest,
		},
	}
}
