package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`

	// Secret used to encrypt donor data carried in URLs and the session cookie.
	// openssl rand -base64 32
	// or `foodshare keygen`
	EncryptionKey string `envconfig:"ENCRYPTION_KEY"`

	// Backend collaborator (donor lookup, donation log, impact recalculation).
	// Defaults to this server when unset.
	BackendBaseURL    string `envconfig:"BACKEND_BASE_URL"`
	BackendTimeoutSec uint   `envconfig:"BACKEND_TIMEOUT_SEC" default:"5"`

	// Artificial pause on the loading slide before the impact is shown.
	LoadingDelayMS uint `envconfig:"LOADING_DELAY_MS" default:"2500"`

	CookieName string `envconfig:"SESSION_COOKIE_NAME" default:"impact_session"`

	// 1 day
	SessionMaxAgeSec int `envconfig:"SESSION_MAX_AGE_SEC" default:"86400"`

	// 1 hour
	SessionIdleTimeoutSec int `envconfig:"SESSION_IDLE_TIMEOUT_SEC" default:"3600"`
}
