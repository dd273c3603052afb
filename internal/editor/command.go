package editor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Paintersrp/knot/internal/config"
	"github.com/Paintersrp/knot/internal/pathutil"
)

type editorCommand struct {
	command string
	args    []string
	wait    bool
}

type templateContext struct {
	File     string
	Vault    string
	Relative string
	Filename string
	Editor   string
	BaseCmd  string
	BaseArgs []string
}

// CommandLauncher starts the editor configured in config.Config, falling back
// to $VISUAL and then $EDITOR when no editor is set.
type CommandLauncher struct {
	editor   string
	args     []string
	template config.CommandTemplate
	vault    string
	getenv   func(string) string
}

func NewCommandLauncher(cfg *config.Config, vault string) *CommandLauncher {
	return &CommandLauncher{
		editor:   strings.TrimSpace(cfg.Editor),
		args:     cfg.EditorArgs,
		template: cfg.EditorTemplate,
		vault:    vault,
		getenv:   os.Getenv,
	}
}

func (l *CommandLauncher) Launch(path string, stdio Stdio) (int, error) {
	ec, err := l.resolve(path)
	if err != nil {
		return -1, err
	}

	cmd := exec.Command(ec.command, ec.args...)
	if !ec.wait && !stdio.Block {
		if err := cmd.Start(); err != nil {
			return -1, err
		}
		go func() { _ = cmd.Wait() }()
		return 0, nil
	}

	cmd.Stdin = stdio.In
	cmd.Stdout = stdio.Out
	cmd.Stderr = stdio.Err

	err = cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, err
	}
	return 0, nil
}

// Describe returns the command line that Launch would run for path.
func (l *CommandLauncher) Describe(path string) (string, error) {
	ec, err := l.resolve(path)
	if err != nil {
		return "", err
	}
	return strings.Join(append([]string{ec.command}, ec.args...), " "), nil
}

func (l *CommandLauncher) resolve(path string) (*editorCommand, error) {
	editor := l.editor
	if editor == "" {
		editor = strings.TrimSpace(l.getenv("VISUAL"))
	}
	if editor == "" {
		editor = strings.TrimSpace(l.getenv("EDITOR"))
	}

	base, baseErr := l.buildEditorCommand(path, editor)

	if execName := strings.TrimSpace(l.template.Exec); execName != "" {
		ctx := l.buildTemplateContext(path, editor, base)
		return applyTemplate(l.template, ctx, base)
	}

	if baseErr != nil {
		return nil, baseErr
	}
	return base, nil
}

func (l *CommandLauncher) buildEditorCommand(path, editor string) (*editorCommand, error) {
	switch editor {
	case "nvim", "vim", "nano":
		return l.terminalCommand(editor, path), nil
	case "helix":
		return l.terminalCommand("hx", path), nil
	case "vscode", "code":
		args := append([]string{"--wait"}, l.args...)
		return &editorCommand{command: "code", args: append(args, path), wait: true}, nil
	case "custom":
		return nil, fmt.Errorf("custom editor requires an editor_template command")
	case "":
		return nil, fmt.Errorf("editor not configured: set editor in the config file or $EDITOR")
	}

	// Anything else came from $VISUAL or $EDITOR, which may carry flags.
	fields := strings.Fields(editor)
	args := append(fields[1:len(fields):len(fields)], l.args...)
	return &editorCommand{command: fields[0], args: append(args, path), wait: true}, nil
}

func (l *CommandLauncher) terminalCommand(name, path string) *editorCommand {
	args := make([]string, 0, len(l.args)+1)
	args = append(args, l.args...)
	return &editorCommand{command: name, args: append(args, path), wait: true}
}

func (l *CommandLauncher) buildTemplateContext(path, editor string, base *editorCommand) templateContext {
	relative, err := pathutil.Relative(l.vault, path)
	if err != nil || !pathutil.Within(l.vault, path) {
		relative = path
	}

	ctx := templateContext{
		File:     path,
		Vault:    l.vault,
		Relative: relative,
		Filename: filepath.Base(path),
		Editor:   editor,
		BaseCmd:  editor,
	}

	if base != nil {
		if base.command != "" {
			ctx.BaseCmd = base.command
		}
		ctx.BaseArgs = append(ctx.BaseArgs, base.args...)
	}

	return ctx
}

func applyTemplate(template config.CommandTemplate, ctx templateContext, base *editorCommand) (*editorCommand, error) {
	execName := strings.TrimSpace(expandPlaceholders(template.Exec, ctx))
	if execName == "" {
		return nil, fmt.Errorf("editor_template.exec must not be empty")
	}

	wait := true
	if base != nil {
		wait = base.wait
	}
	if template.Wait != nil {
		wait = *template.Wait
	}

	args := expandTemplateArgs(template.Args, ctx)
	if len(template.Args) == 0 {
		args = []string{ctx.File}
	}

	return &editorCommand{command: execName, args: args, wait: wait}, nil
}

func expandTemplateArgs(raw []string, ctx templateContext) []string {
	joined := strings.Join(ctx.BaseArgs, " ")

	args := make([]string, 0, len(raw))
	for _, token := range raw {
		if strings.TrimSpace(token) == "{args}" {
			args = append(args, ctx.BaseArgs...)
			continue
		}

		expanded := expandPlaceholders(token, ctx)
		expanded = strings.ReplaceAll(expanded, "{args}", joined)
		args = append(args, expanded)
	}

	return args
}

func expandPlaceholders(value string, ctx templateContext) string {
	return strings.NewReplacer(
		"{file}", ctx.File,
		"{vault}", ctx.Vault,
		"{relative}", ctx.Relative,
		"{filename}", ctx.Filename,
		"{cmd}", ctx.BaseCmd,
		"{editor}", ctx.Editor,
	).Replace(value)
}
