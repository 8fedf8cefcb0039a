package main

import (
	"fmt"
	"io"
	"strings"
)

// Command is one of the closed set of subcommands.
type Command int

const (
	CommandHelp Command = iota
	CommandIn
	CommandPopulate
	CommandMigrate
	CommandServe
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var commandNames = map[string]Command{
	"help":     CommandHelp,
	"in":       CommandIn,
	"populate": CommandPopulate,
	"migrate":  CommandMigrate,
	"serve":    CommandServe,
}

func (c Command) String() string {
	for name, cmd := range commandNames {
		if cmd == c {
			return name
		}
	}
	return "help"
}

// parseCommand splits argv into a command and its arguments. Anything that is
// not a known command falls back to help.
func parseCommand(args []string) (Command, []string) {
	if len(args) == 0 {
		return CommandHelp, nil
	}
	cmd, ok := commandNames[strings.ToLower(args[0])]
	if !ok {
		return CommandHelp, nil
	}
	return cmd, args[1:]
}

const usage = `getaroom finds free classrooms from a published class timetable.

Usage:
  getaroom help                          show this message
  getaroom in <building> [-format text|csv|pdf|xlsx] [-at RFC3339] [-out file]
                                         list rooms free right now
  getaroom populate [timetable.html]     load the timetable into the database
  getaroom migrate                       apply database migrations
  getaroom serve                         run the HTTP API

Configuration is read from .env and the environment (DB_*, REDIS_*,
ENABLE_CACHE, LOG_*, TIMETABLE_SOURCE, BUILDING_LOOKUP_FILE, DEDUP_TIME_SLOTS).
`

func printUsage(w io.Writer) {
	fmt.Fprint(w, usage)
}
