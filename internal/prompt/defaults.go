package prompt

// Defaults answers every prompt with its default without reading input.
// Select has no default and is cancelled.
type Defaults struct{}

func (Defaults) Confirm(_ string, def bool) Answer[bool] { return Value(def) }
func (Defaults) Text(_, _ string) Answer[string]         { return Skip[string]() }
func (Defaults) Secret(string) Answer[string]            { return Skip[string]() }
func (Defaults) Select(string, []Choice) Answer[string]  { return Cancel[string]() }
func (Defaults) MultiSelect(_ string, choices []Choice) Answer[[]string] {
	return Value(checkedValues(choices))
}

// AssumeYes answers every confirmation with yes.
type AssumeYes struct{ Defaults }

func (AssumeYes) Confirm(string, bool) Answer[bool] { return Value(true) }
