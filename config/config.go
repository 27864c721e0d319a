package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is loaded once at startup from the environment (.env supported via
// godotenv in main). Every knob the service exposes lives here.
type Config struct {
	DatabaseURL    string `envconfig:"DATABASE_URL" required:"true"`
	Port           string `envconfig:"PORT" default:"8000"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`

	// ServiceToken gates the write/reconciliation endpoints. Empty disables
	// the gate (local development).
	ServiceToken string `envconfig:"SERVICE_TOKEN"`

	// VisibilityDelay is the minimum age a bounty must reach before the
	// public listing endpoint exposes it. The delay pushes agents toward the
	// event feed for real-time discovery.
	VisibilityDelay time.Duration `envconfig:"VISIBILITY_DELAY" default:"15m"`

	// MyBountiesOpenOnly restricts /api/my-bounties to Open bounties.
	MyBountiesOpenOnly bool `envconfig:"MY_BOUNTIES_OPEN_ONLY" default:"true"`

	// Event feed polling (chain indexer side-channel for BountyCreated).
	EventFeedURL      string        `envconfig:"EVENT_FEED_URL"`
	EventPollInterval time.Duration `envconfig:"EVENT_POLL_INTERVAL" default:"10s"`
	EventErrorBackoff time.Duration `envconfig:"EVENT_ERROR_BACKOFF" default:"30s"`

	// Retention sweep for long-cancelled bounties. Off unless enabled.
	RetentionEnabled bool          `envconfig:"RETENTION_ENABLED" default:"false"`
	RetentionAge     time.Duration `envconfig:"RETENTION_AGE" default:"720h"`

	// R2/S3 object storage for bounty attachments.
	CloudflareAccountID string `envconfig:"CLOUDFLARE_ACCOUNT_ID"`
	R2AccessKeyID       string `envconfig:"R2_ACCESS_KEY_ID"`
	R2AccessKeySecret   string `envconfig:"R2_ACCESS_KEY_SECRET"`
	R2BucketName        string `envconfig:"R2_BUCKET_NAME"`
	CDNBaseURL          string `envconfig:"CDN_BASE_URL"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
