package prompt

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

// maxInvalidInputs bounds re-prompts for unparseable answers.
const maxInvalidInputs = 3

// Terminal is a readline-backed Prompter.
type Terminal struct {
	rl  *readline.Instance
	out io.Writer
}

// NewTerminal creates a Terminal reading from in and echoing to out.
// Pass nil for both to use the process stdio.
func NewTerminal(in io.ReadCloser, out io.Writer) (*Terminal, error) {
	if out == nil {
		out = os.Stdout
	}
	cfg := &readline.Config{
		Prompt:          "> ",
		Stdout:          out,
		InterruptPrompt: "^C",
		EOFPrompt:       "",
		HistoryLimit:    -1,
	}
	if in != nil {
		cfg.Stdin = in
	}
	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create readline instance: %w", err)
	}
	return &Terminal{rl: rl, out: out}, nil
}

// Close releases the terminal.
func (t *Terminal) Close() error {
	return t.rl.Close()
}

// IsInteractive reports whether stdin and stdout are both terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

var errCancelled = errors.New("input cancelled")

func (t *Terminal) readLine(prompt string) (string, error) {
	t.rl.SetPrompt(prompt)
	line, err := t.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return "", errCancelled
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (t *Terminal) Confirm(message string, def bool) Answer[bool] {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	for range maxInvalidInputs {
		line, err := t.readLine(fmt.Sprintf("%s %s ", message, hint))
		if err != nil {
			return Cancel[bool]()
		}
		if v, ok := parseYesNo(line, def); ok {
			return Value(v)
		}
		fmt.Fprintln(t.out, "Please answer y or n.")
	}
	return Value(def)
}

func (t *Terminal) Text(message, def string) Answer[string] {
	p := message + ": "
	if def != "" {
		p = fmt.Sprintf("%s [%s]: ", message, def)
	}
	line, err := t.readLine(p)
	if err != nil {
		return Cancel[string]()
	}
	if line == "" {
		return Skip[string]()
	}
	return Value(line)
}

func (t *Terminal) Secret(message string) Answer[string] {
	b, err := t.rl.ReadPassword(message + ": ")
	if err != nil {
		return Cancel[string]()
	}
	s := strings.TrimSpace(string(b))
	if s == "" {
		return Skip[string]()
	}
	return Value(s)
}

func (t *Terminal) Select(message string, choices []Choice) Answer[string] {
	if len(choices) == 0 {
		return Skip[string]()
	}
	fmt.Fprintln(t.out, message)
	for i, c := range choices {
		fmt.Fprintf(t.out, "  %d) %s\n", i+1, c.Label)
	}
	for range maxInvalidInputs {
		line, err := t.readLine(fmt.Sprintf("Select 1-%d: ", len(choices)))
		if err != nil {
			return Cancel[string]()
		}
		if idx, ok := resolveChoice(line, choices); ok {
			return Value(choices[idx].Value)
		}
		fmt.Fprintf(t.out, "Invalid choice %q.\n", line)
	}
	return Skip[string]()
}

func (t *Terminal) MultiSelect(message string, choices []Choice) Answer[[]string] {
	fmt.Fprintln(t.out, message)
	for i, c := range choices {
		mark := " "
		if c.Checked {
			mark = "x"
		}
		fmt.Fprintf(t.out, "  [%s] %d) %s\n", mark, i+1, c.Label)
	}
	fmt.Fprintln(t.out, "Enter numbers or names separated by commas, 'none' for no selection, or press Enter to keep the checked items.")

	for range maxInvalidInputs {
		line, err := t.readLine("Selection: ")
		if err != nil {
			return Cancel[[]string]()
		}
		if selected, ok := parseSelection(line, choices); ok {
			return Value(selected)
		}
		fmt.Fprintf(t.out, "Invalid selection %q.\n", line)
	}
	return Value(checkedValues(choices))
}

func parseYesNo(s string, def bool) (bool, bool) {
	switch strings.ToLower(s) {
	case "":
		return def, true
	case "y", "yes":
		return true, true
	case "n", "no":
		return false, true
	}
	return false, false
}

// resolveChoice accepts a 1-based index or a choice value.
func resolveChoice(s string, choices []Choice) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= len(choices) {
			return n - 1, true
		}
		return 0, false
	}
	idx := slices.IndexFunc(choices, func(c Choice) bool { return strings.EqualFold(c.Value, s) })
	return idx, idx >= 0
}

func parseSelection(s string, choices []Choice) ([]string, bool) {
	switch strings.ToLower(s) {
	case "":
		return checkedValues(choices), true
	case "none", "-":
		return []string{}, true
	}
	var selected []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx, ok := resolveChoice(part, choices)
		if !ok {
			return nil, false
		}
		if !slices.Contains(selected, choices[idx].Value) {
			selected = append(selected, choices[idx].Value)
		}
	}
	return selected, true
}

func checkedValues(choices []Choice) []string {
	selected := []string{}
	for _, c := range choices {
		if c.Checked {
			selected = append(selected, c.Value)
		}
	}
	return selected
}
