package config

const (
	// DefaultEngineEndpoint is the address of a local workflow engine.
	DefaultEngineEndpoint = "http://localhost:8188"

	DefaultHost = "localhost"
	DefaultPort = 9004

	// PublicBindHost exposes the server on every interface.
	PublicBindHost = "0.0.0.0"

	DefaultExecutorType = "http"

	DefaultAuthSecret = "changeme-generate-a-secure-secret-key"

	// DefaultStoragePath is relative to the project root.
	DefaultStoragePath = "files"

	// DefaultMaxFileSize bounds uploaded files (100 MiB).
	DefaultMaxFileSize int64 = 100 * 1024 * 1024

	// WorkflowDir holds user workflow definitions, relative to the root.
	WorkflowDir = "data/custom_workflows"
)

// Env keys that are not provider specific.
const (
	KeyHost               = "HOST"
	KeyPort               = "PORT"
	KeyPublicReadURL      = "PUBLIC_READ_URL"
	KeyEngineBaseURL      = "COMFYUI_BASE_URL"
	KeyEngineAPIKey       = "COMFYUI_API_KEY"
	KeyEngineCookies      = "COMFYUI_COOKIES"
	KeyEngineExecutorType = "COMFYUI_EXECUTOR_TYPE"
	KeyAuthSecret         = "CHAINLIT_AUTH_SECRET"
	KeyWebUIEnabled       = "CHAINLIT_AUTH_ENABLED"
	KeySaveStarterEnabled = "CHAINLIT_SAVE_STARTER_ENABLED"
	KeyDefaultModel       = "CHAINLIT_CHAT_DEFAULT_MODEL"
	KeyLocalStoragePath   = "LOCAL_STORAGE_PATH"
	KeyMaxFileSize        = "MAX_FILE_SIZE"
)

// DefaultServiceConfig returns the default binding.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{Host: DefaultHost, Port: DefaultPort}
}
