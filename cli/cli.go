// Package cli is the command-line entry point: decode an EBX asset into an
// inspectable JSON dump, or hand off to the interactive folder picker in ui.
package cli

import (
	"path/filepath"
	"strings"

	"github.com/alexflint/go-arg"

	"github.com/shoe7ess/FrostyToolsuite/ebxlog"
	"github.com/shoe7ess/FrostyToolsuite/ui"
)

// defaultConvertSuffix names the JSON dump the interactive picker writes
// alongside a selected .ebx file.
const defaultConvertSuffix = ".json"

type (
	Args struct {
		Interactive  *InteractiveCmd `arg:"subcommand:interactive"`
		Convert      *ConvertCmd     `arg:"subcommand:convert"`
		DebugLogging bool            `arg:"--debug-logging" help:"log per-field schema-drift skips to stderr"`
	}
	InteractiveCmd struct{}
	ConvertCmd     struct {
		// TODO: improve UX of `from` and `to`
		// the underlying library has some limitation on displaying help and placeholder
		// too long placeholder force help to be put on another line, which looks really ugly
		// that is why text is really sparse for the arguments, even though I wanted it to be clearer
		From  string `arg:"required" help:"path to source .ebx file" placeholder:"asset.ebx"`
		To    string `arg:"required" help:"path to destination .json file" placeholder:"asset.json"`
		Force bool   `help:"overwrite the destination file"`
	}
)

// Logger is the codec's debug-logging sink, swapped to ebxlog.Stderr when
// --debug-logging is passed. The reader's per-field schema-drift tolerance
// reports through this rather than writing straight to stdout.
var Logger ebxlog.Logger = ebxlog.Default

func (Args) Description() string {
	des := strings.Join(
		[]string{
			"Ruin has come to our command line.\n",
			"A CLI utility to decode EBX (Frostbite's Entity Binary format) object",
			"graphs into inspectable JSON.",
		},
		"\n",
	)
	des += "\n"
	return des
}

// StartInteractive lets an operator browse to an .ebx file and invokes the
// same conversion path as `cli convert`, writing the dump next to the
// source file.
func StartInteractive() {
	selected := ui.Start()
	if selected == "" {
		return
	}
	base := strings.TrimSuffix(selected, filepath.Ext(selected))
	StartConverting(selected, base+defaultConvertSuffix, false)
}

func Start() {
	args := Args{}
	arg.MustParse(&args)

	if args.DebugLogging {
		Logger = ebxlog.Stderr{}
	}

	if (args.Interactive == nil && args.Convert == nil) ||
		args.Interactive != nil {
		StartInteractive()
	} else {
		StartConverting(
			args.Convert.From,
			args.Convert.To,
			args.Convert.Force,
		)
	}
}
