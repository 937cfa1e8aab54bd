package main

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "A fast, configurable shell plugin manager"
	MsgInitShort       = "Create a new plugin configuration file"
	MsgAddShort        = "Add a plugin to the configuration file"
	MsgRemoveShort     = "Remove a plugin from the configuration file"
	MsgLockShort       = "Resolve the configuration and write the lock file"
	MsgSourceShort     = "Print the shell script that loads your plugins"
	MsgCompletionShort = "Generate shell completion script"

	// Status messages
	MsgInitialized   = "Initialized config file %s\n"
	MsgAddToRc       = "\nAdd this line to your shell rc file:\n\n    %s\n"
	MsgPluginAdded   = "Added plugin '%s' to %s\n"
	MsgPluginRemoved = "Removed plugin '%s' from %s\n"
	MsgLocked        = "Locked %s\n"
)

// MsgUsageTemplate is the usage template for all commands. Section
// headers go through the boldUpper template func so they stand out on a
// terminal and degrade to plain text elsewhere.
const MsgUsageTemplate = `{{boldUpper "Usage:"}}{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

{{boldUpper "Aliases:"}}
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

{{boldUpper "Examples:"}}
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}

{{boldUpper "Commands:"}}{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

{{boldUpper "Flags:"}}
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

{{boldUpper "Global Flags:"}}
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableSubCommands}}

Use {{bold (printf "%s [command] --help" .CommandPath)}} for more information about a command.{{end}}
`
