package cli

import (
	"fmt"
	"io"
)

// commandInfo describes a command for help output.
type commandInfo struct {
	Name        string
	Summary     string // one-line for top-level listing
	Usage       string // "tasktrack add <description>"
	Description string // multi-line detail
}

// commands is the ordered registry of all tasktrack commands.
var commands = []commandInfo{
	{
		Name:    "add",
		Summary: "Add a new task",
		Usage:   "tasktrack add <description>",
		Description: "Appends a task with status todo and prints its ID. Remaining\n" +
			"arguments are joined with spaces to form the description.",
	},
	{
		Name:        "update",
		Summary:     "Change a task's description",
		Usage:       "tasktrack update <id> <description>",
		Description: "Replaces the description of the task at position <id>. Status is unchanged.",
	},
	{
		Name:    "delete",
		Summary: "Delete a task",
		Usage:   "tasktrack delete <id>",
		Description: "Removes the task at position <id>. Tasks after it move up one\n" +
			"position, so their IDs decrease by one.",
	},
	{
		Name:        "mark-in-progress",
		Summary:     "Mark a task as in-progress",
		Usage:       "tasktrack mark-in-progress <id>",
		Description: "Sets the status of the task at position <id> to in-progress.",
	},
	{
		Name:        "mark-done",
		Summary:     "Mark a task as done",
		Usage:       "tasktrack mark-done <id>",
		Description: "Sets the status of the task at position <id> to done.",
	},
	{
		Name:    "list",
		Summary: "List tasks, optionally by status",
		Usage:   "tasktrack list [todo|in-progress|done]",
		Description: "Lists every task with its ID. With a status, lists only tasks with\n" +
			"that status; IDs still refer to positions in the full list.",
	},
	{
		Name:    "clean",
		Summary: "Remove malformed tasks",
		Usage:   "tasktrack clean",
		Description: "Removes every task that lacks a description or a status and\n" +
			"reports how many were removed.",
	},
	{
		Name:        "stats",
		Summary:     "Show task statistics",
		Usage:       "tasktrack stats",
		Description: "Displays task counts by status, plus malformed tasks.",
	},
	{
		Name:    "check",
		Summary: "Run diagnostic checks",
		Usage:   "tasktrack check",
		Description: "Checks the tasks file for JSON syntax errors, records that do not\n" +
			"match the task schema, and a stale cache. Read-only. Exits 1 on errors.",
	},
	{
		Name:        "rebuild",
		Summary:     "Rebuild the query cache",
		Usage:       "tasktrack rebuild",
		Description: "Deletes and recreates the SQLite cache from the tasks file.",
	},
	{
		Name:        "help",
		Summary:     "Show help for a command",
		Usage:       "tasktrack help [<command>]",
		Description: "Shows usage information. With no argument, lists all commands.\nWith a command name, shows detailed help for that command.",
	},
}

// findCommand returns the commandInfo for the given name, or nil.
func findCommand(name string) *commandInfo {
	for i := range commands {
		if commands[i].Name == name {
			return &commands[i]
		}
	}
	return nil
}

// usageFor returns the usage line of a registered command.
func usageFor(name string) string {
	if cmd := findCommand(name); cmd != nil {
		return cmd.Usage
	}
	return "tasktrack " + name
}

// printTopLevelHelp writes the full command listing to w.
func printTopLevelHelp(w io.Writer) {
	fmt.Fprintln(w, "Usage: tasktrack [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-18s%s\n", cmd.Name, cmd.Summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global flags:")
	fmt.Fprintln(w, "  --file, -f <path>   Tasks file (default: tasks.json)")
	fmt.Fprintln(w, "  --quiet, -q         Suppress output")
	fmt.Fprintln(w, "  --verbose, -v       Show debug information")
	fmt.Fprintln(w, "  --toon              Force TOON output format")
	fmt.Fprintln(w, "  --pretty            Force pretty output format")
	fmt.Fprintln(w, "  --json              Force JSON output format")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Use 'tasktrack help <command>' for more information about a command.")
}

// printCommandHelp writes detailed help for a single command to w.
func printCommandHelp(w io.Writer, cmd *commandInfo) {
	fmt.Fprintf(w, "Usage: %s\n", cmd.Usage)
	fmt.Fprintln(w)
	fmt.Fprintln(w, cmd.Description)
}

// runHelp prints top-level help or help for the named command.
func (a *App) runHelp(args []string) error {
	if len(args) == 0 {
		printTopLevelHelp(a.Stdout)
		return nil
	}
	cmd := findCommand(args[0])
	if cmd == nil {
		return &UnknownCommandError{Name: args[0]}
	}
	printCommandHelp(a.Stdout, cmd)
	return nil
}
