package constants

const (
	Version        = `0.1.0`
	AppName        = `knot`
	ConfigFile     = `config`
	ConfigFileType = `yaml`
	ConfigDir      = `/.knot/`
	EnvFile        = `.env`
	EnvPrefix      = `KNOT`
	LogFile        = `knot.log`

	DefaultVaultDir   = `.knot_vault`
	NoteExt           = `.md`
	TrashDir          = `.trash`
	DefaultReadingWPM = 200
	DefaultLogLevel   = `info`
	ListTimeFormat    = `2006-01-02 15:04`

	FilterCommitClear  = `clear`
	FilterCommitRetain = `retain`

	DeleteModeRemove = `remove`
	DeleteModeTrash  = `trash`

	// SkipStateAnnotation marks commands that run before a valid config
	// exists.
	SkipStateAnnotation = `knot/skip-state`
)

// Palette is the fixed category color cycle. Categories take
// Palette[position%len(Palette)] in listing order.
var Palette = [6]string{
	"#89DCEB", // cyan
	"#F5C2E7", // magenta
	"#A6E3A1", // green
	"#F9E2AF", // yellow
	"#89B4FA", // blue
	"#FAB387", // peach
}

const Help = `Usage:
  {{if .Runnable}}{{.UseLine}}{{end}}
  {{if .HasAvailableSubCommands}}{{.CommandPath}} [command]{{end}}
{{if gt (len .Aliases) 0}}
Aliases:
  {{.NameAndAliases}}
{{end}}{{if .HasExample}}
Examples:
{{.Example}}
{{end}}{{if .HasAvailableSubCommands}}
Available Commands:{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}
{{end}}{{if .HasAvailableLocalFlags}}
Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}
{{end}}{{if .HasAvailableInheritedFlags}}
Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}
{{end}}{{if .HasAvailableSubCommands}}
Use "{{.CommandPath}} [command] --help" for more information about a command.
{{end}}`
