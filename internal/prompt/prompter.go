package prompt

// Choice is one option of Select or MultiSelect.
type Choice struct {
	Label string
	Value string
	// Checked pre-selects the option in MultiSelect.
	Checked bool
}

// Prompter asks the user questions.
//
// Text and Secret return Skip on empty input. Confirm returns def on empty
// input. Select and MultiSelect return the chosen Values; a MultiSelect
// with nothing chosen is Value of an empty slice.
type Prompter interface {
	Confirm(message string, def bool) Answer[bool]
	Text(message, def string) Answer[string]
	Secret(message string) Answer[string]
	Select(message string, choices []Choice) Answer[string]
	MultiSelect(message string, choices []Choice) Answer[[]string]
}
