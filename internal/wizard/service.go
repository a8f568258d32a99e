package wizard

import (
	"strconv"

	"pixelle/internal/config"
)

// ConfigureService asks for the port and host. An invalid port is
// re-prompted; when attempts run out the default port is used.
func (w *Wizard) ConfigureService() (config.ServiceConfig, error) {
	svc := config.DefaultServiceConfig()
	defPort := strconv.Itoa(config.DefaultPort)

	portSet := false
	for range w.maxAttempts {
		a := w.prompter.Text("Service port", defPort)
		if a.IsCancelled() {
			return config.ServiceConfig{}, ErrCancelled
		}
		input := a.Or(defPort)
		port, err := strconv.Atoi(input)
		if err == nil && port >= 1 && port <= 65535 {
			svc.Port = port
			portSet = true
			break
		}
		w.failure("Invalid port %q: enter a number between 1 and 65535", input)
	}
	if !portSet {
		w.warn("Using the default port %d", config.DefaultPort)
	}
	w.success("The service will listen on port %d", svc.Port)

	w.printf("\nlocalhost accepts local connections only; %s accepts connections from other machines.\n", config.PublicBindHost)
	a := w.prompter.Text("Host", config.DefaultHost)
	if a.IsCancelled() {
		return config.ServiceConfig{}, ErrCancelled
	}
	svc.Host = a.Or(config.DefaultHost)

	if svc.IsPublic() {
		w.warn("Security notice: binding to %s exposes the service to your network.", config.PublicBindHost)
		w.printf("  1. Configure firewall rules\n")
		w.printf("  2. Enable strong authentication in front of the service\n")
		w.printf("  3. Only run it on a trusted network\n")
	}
	return svc, nil
}
