package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pixelle/internal/config"
	"pixelle/internal/probe"
	"pixelle/internal/prompt"
	"pixelle/internal/provider"
	"pixelle/pkg/logging"
)

const (
	choiceDone   = "done"
	choiceCancel = "cancel"
)

// ConfigureProviders runs the provider loop until every provider is
// configured, the user picks done, or the user cancels. At least one
// provider is required.
func (w *Wizard) ConfigureProviders(ctx context.Context) (config.ProviderSet, error) {
	var set config.ProviderSet
	failures := 0

	for {
		remaining := provider.Remaining(set.IDs())
		if len(remaining) == 0 {
			w.success("All providers are configured")
			return set, nil
		}

		if set.Len() > 0 {
			w.printf("Configured providers: %s\n", joinIDs(set.IDs()))
		}

		message := "Select a model provider to configure"
		if set.Len() > 0 {
			message = "Select another provider, or finish"
		}
		answer := w.prompter.Select(message, providerChoices(remaining, set.Len() > 0))
		if answer.IsCancelled() {
			return config.ProviderSet{}, ErrCancelled
		}

		choice, ok := answer.Get()
		switch {
		case !ok && set.Len() > 0:
			failures++
			if failures >= w.maxAttempts {
				w.warn("No valid selection, continuing with %s", joinIDs(set.IDs()))
				return set, nil
			}
			continue
		case !ok:
			// Counted below.
		case choice == choiceCancel:
			confirm := w.prompter.Confirm("Cancel the setup?", false)
			if confirm.IsCancelled() || confirm.Or(false) {
				return config.ProviderSet{}, ErrCancelled
			}
			continue
		case choice == choiceDone:
			if set.Len() > 0 {
				return set, nil
			}
		default:
			pc, err := w.configureChoice(ctx, choice, set)
			if err != nil {
				return config.ProviderSet{}, err
			}
			if pc != nil {
				if err := set.Add(*pc); err != nil {
					w.failure("%v", err)
					continue
				}
				failures = 0
				w.success("%s configured with models %s", pc.Spec().DisplayName, strings.Join(pc.Models, ", "))

				if len(provider.Remaining(set.IDs())) == 0 {
					continue
				}
				more := w.prompter.Confirm("Configure another provider?", false)
				if more.IsCancelled() {
					return config.ProviderSet{}, ErrCancelled
				}
				if !more.Or(false) {
					return set, nil
				}
				continue
			}
		}

		if set.Len() == 0 {
			failures++
			w.warn("At least one provider is required to continue")
			if failures >= w.maxAttempts {
				return config.ProviderSet{}, fmt.Errorf("%w: no provider configured after %d attempts", ErrCancelled, failures)
			}
		}
	}
}

func (w *Wizard) configureChoice(ctx context.Context, choice string, set config.ProviderSet) (*config.ProviderConfig, error) {
	id, err := provider.Parse(choice)
	if err != nil {
		w.failure("%v", err)
		return nil, nil
	}
	if set.Has(id) {
		w.failure("%s: %s", config.ErrDuplicateProvider, id)
		return nil, nil
	}
	return w.ConfigureProvider(ctx, provider.MustLookup(id))
}

func providerChoices(remaining []provider.Spec, allowDone bool) []prompt.Choice {
	choices := make([]prompt.Choice, 0, len(remaining)+2)
	for _, s := range remaining {
		choices = append(choices, prompt.Choice{
			Label: fmt.Sprintf("%s - %s", s.DisplayName, s.Description),
			Value: string(s.ID),
		})
	}
	if allowDone {
		choices = append(choices, prompt.Choice{Label: "Done", Value: choiceDone})
	}
	return append(choices, prompt.Choice{Label: "Cancel setup", Value: choiceCancel})
}

// ConfigureProvider runs the sub-flow for one provider. A nil config with
// a nil error means the provider was skipped.
func (w *Wizard) ConfigureProvider(ctx context.Context, spec provider.Spec) (*config.ProviderConfig, error) {
	w.printf("\nConfiguring %s (%s)\n", spec.DisplayName, spec.Description)
	if spec.KeyURL != "" {
		w.printf("See %s\n", spec.KeyURL)
	}

	var apiKey string
	if spec.NeedsAPIKey {
		a := w.prompter.Secret(spec.DisplayName + " API key")
		if a.IsCancelled() {
			return nil, ErrCancelled
		}
		key, ok := a.Get()
		if !ok {
			w.warn("No API key entered, skipping %s", spec.DisplayName)
			return nil, nil
		}
		apiKey = key
	}

	endpoint := spec.DefaultEndpoint
	if spec.EndpointOverridable {
		useDefault := w.prompter.Confirm(fmt.Sprintf("Use the default endpoint %s?", spec.DefaultEndpoint), true)
		if useDefault.IsCancelled() {
			return nil, ErrCancelled
		}
		if !useDefault.Or(true) {
			a := w.prompter.Text(spec.DisplayName+" endpoint", spec.DefaultEndpoint)
			if a.IsCancelled() {
				return nil, ErrCancelled
			}
			endpoint = normalizeURL(a.Or(spec.DefaultEndpoint))
		}
	}

	if spec.Discovery == provider.DiscoveryOllama {
		var connErr error
		_ = w.withSpinner("Testing connection to Ollama...", func() error {
			connErr = w.probe.Ollama(ctx, endpoint)
			return nil
		})
		if err := interrupted(ctx); err != nil {
			return nil, err
		}
		if connErr != nil {
			w.failure("Cannot reach Ollama at %s: %s", endpoint, probe.Describe(connErr))
			w.printf("Make sure Ollama is running, then configure it again.\n")
			return nil, nil
		}
		w.success("Connected to Ollama")
	}

	models, err := w.chooseModels(ctx, spec, endpoint, apiKey)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		w.warn("No models chosen, skipping %s", spec.DisplayName)
		return nil, nil
	}

	pc := &config.ProviderConfig{ID: spec.ID, Credential: apiKey, Models: models}
	if endpoint != spec.DefaultEndpoint {
		pc.Endpoint = endpoint
	}
	logging.Debug("Wizard", "Provider %s configured with %d models", spec.ID, len(models))
	return pc, nil
}

// chooseModels discovers models when the provider supports it and lets
// the user pick; otherwise it offers the default list or free text.
func (w *Wizard) chooseModels(ctx context.Context, spec provider.Spec, endpoint, apiKey string) ([]string, error) {
	if spec.Discovery != provider.DiscoveryNone {
		var found []string
		var listErr error
		_ = w.withSpinner("Fetching available models...", func() error {
			found, listErr = w.probe.ListModels(ctx, spec, endpoint, apiKey)
			return nil
		})
		if err := interrupted(ctx); err != nil {
			return nil, err
		}

		switch {
		case listErr != nil:
			w.warn("Could not list models from %s: %s", endpoint, probe.Describe(listErr))
		case len(found) == 0:
			w.warn("No models found at %s", endpoint)
			if spec.ID == provider.Ollama {
				w.printf("Download one first, for example: ollama pull llama3\n")
			}
		default:
			return w.selectModels(spec, found)
		}
	}

	if len(spec.DefaultModels) > 0 {
		defaults := provider.JoinModels(spec.DefaultModels)
		useDefaults := w.prompter.Confirm(fmt.Sprintf("Use the default models %s?", defaults), true)
		if useDefaults.IsCancelled() {
			return nil, ErrCancelled
		}
		if useDefaults.Or(true) {
			return spec.DefaultModels, nil
		}
	}
	return w.enterModels(spec)
}

func (w *Wizard) selectModels(spec provider.Spec, found []string) ([]string, error) {
	recommended, others := spec.Partition(found)
	w.printf("Found %d models\n", len(found))
	if len(recommended) > 0 {
		w.printf("Recommended models are pre-selected: %s\n", strings.Join(recommended, ", "))
	}

	choices := make([]prompt.Choice, 0, len(found))
	for _, m := range recommended {
		choices = append(choices, prompt.Choice{Label: m + " (recommended)", Value: m, Checked: true})
	}
	for _, m := range others {
		choices = append(choices, prompt.Choice{Label: m, Value: m})
	}

	a := w.prompter.MultiSelect("Select the models to use", choices)
	if a.IsCancelled() {
		return nil, ErrCancelled
	}
	if selected, ok := a.Get(); ok && len(selected) > 0 {
		return selected, nil
	}
	w.warn("No models selected, enter them manually")
	return w.enterModels(spec)
}

// enterModels reads a comma separated list, re-prompting on invalid input.
// When attempts run out the defaults are used, or the provider is skipped
// if it has none.
func (w *Wizard) enterModels(spec provider.Spec) ([]string, error) {
	def := provider.JoinModels(spec.DefaultModels)
	for range w.maxAttempts {
		a := w.prompter.Text("Models (comma separated)", def)
		if a.IsCancelled() {
			return nil, ErrCancelled
		}
		input := a.Or(def)
		models, err := provider.ParseModels(input)
		if err == nil {
			return models, nil
		}
		w.failure("Invalid model list %q: %v", input, err)
	}
	if len(spec.DefaultModels) > 0 {
		w.warn("Using the default models %s", def)
		return spec.DefaultModels, nil
	}
	return nil, nil
}

func joinIDs(ids []provider.ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}

// IsCancelled reports whether err is a user cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
