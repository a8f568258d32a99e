package prompt

import (
	"fmt"
	"sync"
)

// Step is one scripted reply.
type Step struct {
	kind  Kind
	value any
}

// Reply scripts a value. Its type must match the prompt it answers:
// bool for Confirm, string for Text, Secret and Select, []string for
// MultiSelect.
func Reply(v any) Step { return Step{kind: KindValue, value: v} }

// SkipReply scripts an empty input.
func SkipReply() Step { return Step{kind: KindSkip} }

// CancelReply scripts Ctrl+C.
func CancelReply() Step { return Step{kind: KindCancel} }

// Script is a Prompter replaying fixed replies. Once the replies run out
// every prompt is cancelled, which keeps a miscounted script from looping.
type Script struct {
	mu    sync.Mutex
	steps []Step
	asked []string
	// Choices records the options offered by each Select/MultiSelect.
	choices [][]Choice
}

// NewScript creates a Script.
func NewScript(steps ...Step) *Script {
	return &Script{steps: steps}
}

// Asked returns every prompt message in order.
func (s *Script) Asked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.asked...)
}

// Offered returns the choices of every Select/MultiSelect in order.
func (s *Script) Offered() [][]Choice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]Choice(nil), s.choices...)
}

// Remaining is the number of unused replies.
func (s *Script) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.steps)
}

func (s *Script) next(message string) Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.asked = append(s.asked, message)
	if len(s.steps) == 0 {
		return CancelReply()
	}
	step := s.steps[0]
	s.steps = s.steps[1:]
	return step
}

func replay[T any](step Step, message string) Answer[T] {
	switch step.kind {
	case KindSkip:
		return Skip[T]()
	case KindCancel:
		return Cancel[T]()
	}
	v, ok := step.value.(T)
	if !ok {
		panic(fmt.Sprintf("scripted reply %T does not fit prompt %q", step.value, message))
	}
	return Value(v)
}

func (s *Script) Confirm(message string, def bool) Answer[bool] {
	a := replay[bool](s.next(message), message)
	if a.IsSkip() {
		return Value(def)
	}
	return a
}

func (s *Script) Text(message, _ string) Answer[string] {
	return replay[string](s.next(message), message)
}

func (s *Script) Secret(message string) Answer[string] {
	return replay[string](s.next(message), message)
}

func (s *Script) Select(message string, choices []Choice) Answer[string] {
	s.mu.Lock()
	s.choices = append(s.choices, choices)
	s.mu.Unlock()
	return replay[string](s.next(message), message)
}

func (s *Script) MultiSelect(message string, choices []Choice) Answer[[]string] {
	s.mu.Lock()
	s.choices = append(s.choices, choices)
	s.mu.Unlock()
	a := replay[[]string](s.next(message), message)
	if a.IsSkip() {
		return Value(checkedValues(choices))
	}
	return a
}
