package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Content  ContentConfig  `mapstructure:"content"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// BaseURL is the absolute URL the REST root is reachable at; it prefixes Link headers.
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
	// MountPath is where the REST server is mounted on the HTTP router.
	MountPath           string `mapstructure:"mount_path" validate:"required,startswith=/"`
	MaxBodyBytes        int64  `mapstructure:"max_body_bytes" validate:"gte=0"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds" validate:"gte=0"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds" validate:"gte=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Driver selects the content store backend.
	Driver string `mapstructure:"driver" validate:"required,oneof=memory postgres"`
	URL    string `mapstructure:"url" validate:"required_if=Driver postgres,omitempty,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	// CookieName is the cookie checked for a JWT when no Authorization header is sent.
	CookieName string `mapstructure:"cookie_name"`
}

// CacheConfig configures the optional Redis object cache.
type CacheConfig struct {
	// RedisAddr enables the object cache when set (host:port).
	RedisAddr  string `mapstructure:"redis_addr" validate:"omitempty,hostname_port"`
	RedisDB    int    `mapstructure:"redis_db" validate:"gte=0"`
	TTLSeconds int    `mapstructure:"ttl_seconds" validate:"gte=0"`
}

// ContentConfig configures the post type, status and taxonomy registry.
type ContentConfig struct {
	// RegistryFile is an optional YAML file extending the built-in registry.
	RegistryFile string `mapstructure:"registry_file"`
	// SeedDemoContent creates an admin user and a sample post at startup when no admin exists.
	SeedDemoContent bool `mapstructure:"seed_demo_content"`
	// DemoAdminPassword is the password given to the seeded "admin" user.
	DemoAdminPassword string `mapstructure:"demo_admin_password" validate:"required_if=SeedDemoContent true,omitempty,min=8"`
}
