package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-errors/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP          HTTP          `json:"http"`
	Persistence   Persistence   `json:"persistence"`
	Registration  Registration  `json:"registration"`
	JWT           JWT           `json:"jwt"`
	Google        Google        `json:"google"`
	Notifications Notifications `json:"notifications"`
	NATS          NATS          `json:"nats"`
	Redis         Redis         `json:"redis"`
}

type JWT struct {
	Secret string `json:"secret"`
}

type Google struct {
	APIKey   string `json:"api_key" yaml:"api_key"`
	Language string `json:"language"`
}

type Notifications struct {
	LeadMinutes uint `json:"lead_minutes" yaml:"lead_minutes"`
}

type NATS struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url"`
}

type Redis struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Username string `json:"username"`
	Password string `json:"password"`
	Database int    `json:"database"`
}

type Registration struct {
	Enabled bool `json:"enabled"`
}

type Persistence struct {
	Database Database `json:"database"`
	Uploads  Uploads  `json:"uploads"`
}

type DatabaseDriver string

const (
	DatabaseDriverSQLite   DatabaseDriver = "sqlite"
	DatabaseDriverMySQL    DatabaseDriver = "mysql"
	DatabaseDriverPostgres DatabaseDriver = "postgres"
)

type Database struct {
	Driver          DatabaseDriver `json:"driver"`
	Database        string         `json:"database"`
	Username        string         `json:"username"`
	Password        string         `json:"password"`
	Host            string         `json:"host"`
	Port            uint16         `json:"port"`
	ExtraParameters string         `json:"extra_parameters" yaml:"extra_parameters"`
}

type UploadsDriver string

const (
	UploadsDriverFilesystem UploadsDriver = "filesystem"
	UploadsDriverS3         UploadsDriver = "s3"
)

type FilesystemOptions struct {
	Directory string `json:"directory"`
}

type S3Options struct {
	Region   string `json:"region"`
	Bucket   string `json:"bucket"`
	Endpoint string `json:"endpoint"`
}

type Uploads struct {
	Driver            UploadsDriver     `json:"driver"`
	FilesystemOptions FilesystemOptions `json:"filesystem_options" yaml:"filesystem_options"`
	S3Options         S3Options         `json:"s3_options" yaml:"s3_options"`
}

type HTTPListener struct {
	IPV4Host string `json:"ipv4_host" yaml:"ipv4_host"`
	IPV6Host string `json:"ipv6_host" yaml:"ipv6_host"`
	Port     uint16 `json:"port"`
}

type Tracing struct {
	Enabled      bool   `json:"enabled"`
	OTLPEndpoint string `json:"otlp_endpoint" yaml:"otlp_endpoint"`
}

type PProf struct {
	Enabled bool `json:"enabled"`
}

type Metrics struct {
	HTTPListener
	Enabled bool `json:"enabled"`
}

type HTTP struct {
	HTTPListener
	Tracing
	PProf          PProf    `json:"pprof"`
	TrustedProxies []string `json:"trusted_proxies" yaml:"trusted_proxies"`
	Metrics        Metrics  `json:"metrics"`
	CORSHosts      []string `json:"cors_hosts" yaml:"cors_hosts"`
}

//nolint:golint,gochecknoglobals
var (
	ConfigFileKey                         = "config"
	HTTPIPV4HostKey                       = "http.ipv4_host"
	HTTPIPV6HostKey                       = "http.ipv6_host"
	HTTPPortKey                           = "http.port"
	HTTPTracingEnabledKey                 = "http.tracing.enabled"
	HTTPTracingOTLPEndKey                 = "http.tracing.otlp_endpoint"
	HTTPPProfEnabledKey                   = "http.pprof.enabled"
	HTTPTrustedProxiesKey                 = "http.trusted_proxies"
	HTTPMetricsEnabledKey                 = "http.metrics.enabled"
	HTTPMetricsIPV4HostKey                = "http.metrics.ipv4_host"
	HTTPMetricsIPV6HostKey                = "http.metrics.ipv6_host"
	HTTPMetricsPortKey                    = "http.metrics.port"
	HTTPCORSHostsKey                      = "http.cors_hosts"
	PersistenceDatabaseDriverKey          = "persistence.database.driver"
	PersistenceDatabaseDatabaseKey        = "persistence.database.database"
	PersistenceDatabaseUsernameKey        = "persistence.database.username"
	PersistenceDatabasePasswordKey        = "persistence.database.password"
	PersistenceDatabaseHostKey            = "persistence.database.host"
	PersistenceDatabasePortKey            = "persistence.database.port"
	PersistenceDatabaseExtraParametersKey = "persistence.database.extra_parameters"
	PersistenceUploadsDriverKey           = "persistence.uploads.driver"
	PersistenceUploadsDirectoryKey        = "persistence.uploads.filesystem_options.directory"
	PersistenceUploadsS3RegionKey         = "persistence.uploads.s3_options.region"
	PersistenceUploadsS3BucketKey         = "persistence.uploads.s3_options.bucket"
	PersistenceUploadsS3EndpointKey       = "persistence.uploads.s3_options.endpoint"
	RegistrationEnabledKey                = "registration.enabled"
	JWTSecretKey                          = "jwt.secret"
	GoogleAPIKeyKey                       = "google.api_key"
	GoogleLanguageKey                     = "google.language"
	NotificationsLeadMinutesKey           = "notifications.lead_minutes"
	NATSEnabledKey                        = "nats.enabled"
	NATSURLKey                            = "nats.url"
	RedisEnabledKey                       = "redis.enabled"
	RedisAddressKey                       = "redis.address"
	RedisUsernameKey                      = "redis.username"
	RedisPasswordKey                      = "redis.password"
	RedisDatabaseKey                      = "redis.database"
)

const (
	DefaultConfigPath                  = "config.yaml"
	DefaultHTTPIPV4Host                = "0.0.0.0"
	DefaultHTTPIPV6Host                = "::"
	DefaultHTTPPort                    = 8080
	DefaultHTTPMetricsIPV4Host         = "127.0.0.1"
	DefaultHTTPMetricsIPV6Host         = "::1"
	DefaultHTTPMetricsPort             = 8081
	DefaultPersistenceDatabaseDriver   = DatabaseDriverSQLite
	DefaultPersistenceDatabaseDatabase = "saferoute.db"
	DefaultPersistenceUploadsDriver    = UploadsDriverFilesystem
	DefaultPersistenceUploadsDirectory = "uploads/"
	DefaultRegistrationEnabled         = true
	DefaultGoogleLanguage              = "en"
	DefaultNotificationsLeadMinutes    = 5
	DefaultRedisAddress                = "localhost:6379"
)

func RegisterFlags(cmd *cobra.Command) {
	cmd.Flags().StringP(ConfigFileKey, "c", DefaultConfigPath, "Config file path")
	cmd.Flags().String(HTTPIPV4HostKey, DefaultHTTPIPV4Host, "HTTP server IPv4 host")
	cmd.Flags().String(HTTPIPV6HostKey, DefaultHTTPIPV6Host, "HTTP server IPv6 host")
	cmd.Flags().Uint16(HTTPPortKey, DefaultHTTPPort, "HTTP server port")
	cmd.Flags().Bool(HTTPTracingEnabledKey, false, "Enable Open Telemetry tracing")
	cmd.Flags().String(HTTPTracingOTLPEndKey, "", "Open Telemetry endpoint")
	cmd.Flags().Bool(HTTPPProfEnabledKey, false, "Enable pprof")
	cmd.Flags().StringSlice(HTTPTrustedProxiesKey, []string{}, "Comma-separated list of trusted proxies")
	cmd.Flags().Bool(HTTPMetricsEnabledKey, false, "Enable metrics server")
	cmd.Flags().String(HTTPMetricsIPV4HostKey, DefaultHTTPMetricsIPV4Host, "Metrics server IPv4 host")
	cmd.Flags().String(HTTPMetricsIPV6HostKey, DefaultHTTPMetricsIPV6Host, "Metrics server IPv6 host")
	cmd.Flags().Uint16(HTTPMetricsPortKey, DefaultHTTPMetricsPort, "Metrics server port")
	cmd.Flags().StringSlice(HTTPCORSHostsKey, []string{}, "Comma-separated list of CORS hosts")
	cmd.Flags().String(PersistenceDatabaseDriverKey, string(DefaultPersistenceDatabaseDriver), "Database driver")
	cmd.Flags().String(PersistenceDatabaseDatabaseKey, DefaultPersistenceDatabaseDatabase, "Database path")
	cmd.Flags().String(PersistenceDatabaseUsernameKey, "", "Database username")
	cmd.Flags().String(PersistenceDatabasePasswordKey, "", "Database password")
	cmd.Flags().String(PersistenceDatabaseHostKey, "", "Database host")
	cmd.Flags().Uint16(PersistenceDatabasePortKey, 0, "Database port")
	cmd.Flags().String(PersistenceDatabaseExtraParametersKey, "", "Database extra parameters")
	cmd.Flags().String(PersistenceUploadsDriverKey, string(DefaultPersistenceUploadsDriver), "Uploads storage driver")
	cmd.Flags().String(PersistenceUploadsDirectoryKey, DefaultPersistenceUploadsDirectory, "Uploads directory")
	cmd.Flags().String(PersistenceUploadsS3RegionKey, "", "Uploads S3 region")
	cmd.Flags().String(PersistenceUploadsS3BucketKey, "", "Uploads S3 bucket")
	cmd.Flags().String(PersistenceUploadsS3EndpointKey, "", "Uploads S3 endpoint")
	cmd.Flags().Bool(RegistrationEnabledKey, DefaultRegistrationEnabled, "Enable registration")
	cmd.Flags().String(JWTSecretKey, "", "JWT signing secret")
	cmd.Flags().String(GoogleAPIKeyKey, "", "Google Maps Platform API key")
	cmd.Flags().String(GoogleLanguageKey, DefaultGoogleLanguage, "Preferred language for place and route text")
	cmd.Flags().Uint(NotificationsLeadMinutesKey, DefaultNotificationsLeadMinutes, "Minutes before departure to send trip reminders")
	cmd.Flags().Bool(NATSEnabledKey, false, "Enable NATS reminder fan-out")
	cmd.Flags().String(NATSURLKey, "", "NATS server URL")
	cmd.Flags().Bool(RedisEnabledKey, false, "Enable Redis place caching")
	cmd.Flags().String(RedisAddressKey, DefaultRedisAddress, "Redis address")
	cmd.Flags().String(RedisUsernameKey, "", "Redis username")
	cmd.Flags().String(RedisPasswordKey, "", "Redis password")
	cmd.Flags().Int(RedisDatabaseKey, 0, "Redis database number")
}

var (
	ErrJWTSecretRequired      = errors.New("JWT secret is required")
	ErrGoogleAPIKeyRequired   = errors.New("Google API key is required")
	ErrOTLPEndpointRequired   = errors.New("OTLP endpoint is required when tracing is enabled")
	ErrDBHostRequired         = errors.New("Database host is required")
	ErrDBDatabaseRequired     = errors.New("Database name is required")
	ErrDatabaseDriverRequired = errors.New("Database driver is required")
	ErrUploadsDriverInvalid   = errors.New("Uploads driver must be filesystem or s3")
	ErrS3BucketRequired       = errors.New("S3 bucket is required for the s3 uploads driver")
	ErrNATSURLRequired        = errors.New("NATS URL is required when NATS is enabled")
	ErrRedisAddressRequired   = errors.New("Redis address is required when Redis is enabled")
)

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return ErrJWTSecretRequired
	}
	if c.Google.APIKey == "" {
		return ErrGoogleAPIKeyRequired
	}
	if c.HTTP.Tracing.Enabled && c.HTTP.Tracing.OTLPEndpoint == "" {
		return ErrOTLPEndpointRequired
	}
	if c.Persistence.Database.Driver == "" {
		return ErrDatabaseDriverRequired
	}
	if c.Persistence.Database.Driver != DatabaseDriverSQLite && c.Persistence.Database.Host == "" {
		return ErrDBHostRequired
	}
	if c.Persistence.Database.Database == "" {
		return ErrDBDatabaseRequired
	}
	switch c.Persistence.Uploads.Driver {
	case UploadsDriverFilesystem:
	case UploadsDriverS3:
		if c.Persistence.Uploads.S3Options.Bucket == "" {
			return ErrS3BucketRequired
		}
	default:
		return ErrUploadsDriverInvalid
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		return ErrNATSURLRequired
	}
	if c.Redis.Enabled && c.Redis.Address == "" {
		return ErrRedisAddressRequired
	}

	return nil
}

func LoadConfig(cmd *cobra.Command) (*Config, error) {
	var config Config

	// Load flags from envs
	ctx, cancel := context.WithCancelCause(cmd.Context())
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if ctx.Err() != nil {
			return
		}
		optName := strings.ReplaceAll(strings.ReplaceAll(strings.ToUpper(f.Name), "-", "_"), ".", "__")
		if val, ok := os.LookupEnv(optName); !f.Changed && ok {
			if err := f.Value.Set(val); err != nil {
				cancel(err)
			}
			f.Changed = true
		}
	})
	if ctx.Err() != nil {
		return &config, fmt.Errorf("failed to load env: %w", context.Cause(ctx))
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return &config, fmt.Errorf("failed to get config path: %w", err)
	}
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return &config, fmt.Errorf("failed to read config: %w", err)
		} else if err == nil {
			if err := yaml.Unmarshal(data, &config); err != nil {
				return &config, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		}
	}

	err = overrideFlags(&config, cmd)
	if err != nil {
		return &config, fmt.Errorf("failed to override flags: %w", err)
	}

	// Defaults
	if config.HTTP.IPV4Host == "" {
		config.HTTP.IPV4Host = DefaultHTTPIPV4Host
	}
	if config.HTTP.IPV6Host == "" {
		config.HTTP.IPV6Host = DefaultHTTPIPV6Host
	}
	if config.HTTP.Port == 0 {
		config.HTTP.Port = DefaultHTTPPort
	}
	if config.HTTP.Metrics.IPV4Host == "" {
		config.HTTP.Metrics.IPV4Host = DefaultHTTPMetricsIPV4Host
	}
	if config.HTTP.Metrics.IPV6Host == "" {
		config.HTTP.Metrics.IPV6Host = DefaultHTTPMetricsIPV6Host
	}
	if config.HTTP.Metrics.Port == 0 {
		config.HTTP.Metrics.Port = DefaultHTTPMetricsPort
	}
	if config.Persistence.Database.Driver == "" {
		config.Persistence.Database.Driver = DefaultPersistenceDatabaseDriver
	}
	if config.Persistence.Database.Database == "" {
		config.Persistence.Database.Database = DefaultPersistenceDatabaseDatabase
	}
	if config.Persistence.Uploads.Driver == "" {
		config.Persistence.Uploads.Driver = DefaultPersistenceUploadsDriver
	}
	if config.Persistence.Uploads.FilesystemOptions.Directory == "" {
		config.Persistence.Uploads.FilesystemOptions.Directory = DefaultPersistenceUploadsDirectory
	}
	if config.Google.Language == "" {
		config.Google.Language = DefaultGoogleLanguage
	}
	if config.Notifications.LeadMinutes == 0 {
		config.Notifications.LeadMinutes = DefaultNotificationsLeadMinutes
	}
	if config.Redis.Address == "" {
		config.Redis.Address = DefaultRedisAddress
	}

	return &config, nil
}

func overrideFlags(config *Config, cmd *cobra.Command) error {
	var err error
	if cmd.Flags().Changed(HTTPIPV4HostKey) {
		config.HTTP.IPV4Host, err = cmd.Flags().GetString(HTTPIPV4HostKey)
		if err != nil {
			return fmt.Errorf("failed to get HTTP IPv4 host: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPIPV6HostKey) {
		config.HTTP.IPV6Host, err = cmd.Flags().GetString(HTTPIPV6HostKey)
		if err != nil {
			return fmt.Errorf("failed to get HTTP IPv6 host: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPPortKey) {
		config.HTTP.Port, err = cmd.Flags().GetUint16(HTTPPortKey)
		if err != nil {
			return fmt.Errorf("failed to get HTTP port: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPTracingEnabledKey) {
		config.HTTP.Tracing.Enabled, err = cmd.Flags().GetBool(HTTPTracingEnabledKey)
		if err != nil {
			return fmt.Errorf("failed to get tracing enabled: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPTracingOTLPEndKey) {
		config.HTTP.Tracing.OTLPEndpoint, err = cmd.Flags().GetString(HTTPTracingOTLPEndKey)
		if err != nil {
			return fmt.Errorf("failed to get tracing OTLP endpoint: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPPProfEnabledKey) {
		config.HTTP.PProf.Enabled, err = cmd.Flags().GetBool(HTTPPProfEnabledKey)
		if err != nil {
			return fmt.Errorf("failed to get pprof enabled: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPTrustedProxiesKey) {
		config.HTTP.TrustedProxies, err = cmd.Flags().GetStringSlice(HTTPTrustedProxiesKey)
		if err != nil {
			return fmt.Errorf("failed to get trusted proxies: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPMetricsEnabledKey) {
		config.HTTP.Metrics.Enabled, err = cmd.Flags().GetBool(HTTPMetricsEnabledKey)
		if err != nil {
			return fmt.Errorf("failed to get metrics enabled: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPMetricsIPV4HostKey) {
		config.HTTP.Metrics.IPV4Host, err = cmd.Flags().GetString(HTTPMetricsIPV4HostKey)
		if err != nil {
			return fmt.Errorf("failed to get metrics IPv4 host: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPMetricsIPV6HostKey) {
		config.HTTP.Metrics.IPV6Host, err = cmd.Flags().GetString(HTTPMetricsIPV6HostKey)
		if err != nil {
			return fmt.Errorf("failed to get metrics IPv6 host: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPMetricsPortKey) {
		config.HTTP.Metrics.Port, err = cmd.Flags().GetUint16(HTTPMetricsPortKey)
		if err != nil {
			return fmt.Errorf("failed to get metrics port: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPCORSHostsKey) {
		config.HTTP.CORSHosts, err = cmd.Flags().GetStringSlice(HTTPCORSHostsKey)
		if err != nil {
			return fmt.Errorf("failed to get CORS hosts: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceDatabaseDriverKey) {
		var driver string
		driver, err = cmd.Flags().GetString(PersistenceDatabaseDriverKey)
		if err != nil {
			return fmt.Errorf("failed to get database driver: %w", err)
		}
		config.Persistence.Database.Driver = DatabaseDriver(driver)
	}

	if cmd.Flags().Changed(PersistenceDatabaseDatabaseKey) {
		config.Persistence.Database.Database, err = cmd.Flags().GetString(PersistenceDatabaseDatabaseKey)
		if err != nil {
			return fmt.Errorf("failed to get database path: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceDatabaseUsernameKey) {
		config.Persistence.Database.Username, err = cmd.Flags().GetString(PersistenceDatabaseUsernameKey)
		if err != nil {
			return fmt.Errorf("failed to get database username: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceDatabasePasswordKey) {
		config.Persistence.Database.Password, err = cmd.Flags().GetString(PersistenceDatabasePasswordKey)
		if err != nil {
			return fmt.Errorf("failed to get database password: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceDatabaseHostKey) {
		config.Persistence.Database.Host, err = cmd.Flags().GetString(PersistenceDatabaseHostKey)
		if err != nil {
			return fmt.Errorf("failed to get database host: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceDatabasePortKey) {
		config.Persistence.Database.Port, err = cmd.Flags().GetUint16(PersistenceDatabasePortKey)
		if err != nil {
			return fmt.Errorf("failed to get database port: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceDatabaseExtraParametersKey) {
		config.Persistence.Database.ExtraParameters, err = cmd.Flags().GetString(PersistenceDatabaseExtraParametersKey)
		if err != nil {
			return fmt.Errorf("failed to get database extra parameters: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceUploadsDriverKey) {
		var driver string
		driver, err = cmd.Flags().GetString(PersistenceUploadsDriverKey)
		if err != nil {
			return fmt.Errorf("failed to get uploads driver: %w", err)
		}
		config.Persistence.Uploads.Driver = UploadsDriver(driver)
	}

	if cmd.Flags().Changed(PersistenceUploadsDirectoryKey) {
		config.Persistence.Uploads.FilesystemOptions.Directory, err = cmd.Flags().GetString(PersistenceUploadsDirectoryKey)
		if err != nil {
			return fmt.Errorf("failed to get uploads directory: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceUploadsS3RegionKey) {
		config.Persistence.Uploads.S3Options.Region, err = cmd.Flags().GetString(PersistenceUploadsS3RegionKey)
		if err != nil {
			return fmt.Errorf("failed to get uploads S3 region: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceUploadsS3BucketKey) {
		config.Persistence.Uploads.S3Options.Bucket, err = cmd.Flags().GetString(PersistenceUploadsS3BucketKey)
		if err != nil {
			return fmt.Errorf("failed to get uploads S3 bucket: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceUploadsS3EndpointKey) {
		config.Persistence.Uploads.S3Options.Endpoint, err = cmd.Flags().GetString(PersistenceUploadsS3EndpointKey)
		if err != nil {
			return fmt.Errorf("failed to get uploads S3 endpoint: %w", err)
		}
	}

	if cmd.Flags().Changed(RegistrationEnabledKey) {
		config.Registration.Enabled, err = cmd.Flags().GetBool(RegistrationEnabledKey)
		if err != nil {
			return fmt.Errorf("failed to get registration enabled: %w", err)
		}
	}

	if cmd.Flags().Changed(JWTSecretKey) {
		config.JWT.Secret, err = cmd.Flags().GetString(JWTSecretKey)
		if err != nil {
			return fmt.Errorf("failed to get JWT secret: %w", err)
		}
	}

	if cmd.Flags().Changed(GoogleAPIKeyKey) {
		config.Google.APIKey, err = cmd.Flags().GetString(GoogleAPIKeyKey)
		if err != nil {
			return fmt.Errorf("failed to get Google API key: %w", err)
		}
	}

	if cmd.Flags().Changed(GoogleLanguageKey) {
		config.Google.Language, err = cmd.Flags().GetString(GoogleLanguageKey)
		if err != nil {
			return fmt.Errorf("failed to get Google language: %w", err)
		}
	}

	if cmd.Flags().Changed(NotificationsLeadMinutesKey) {
		config.Notifications.LeadMinutes, err = cmd.Flags().GetUint(NotificationsLeadMinutesKey)
		if err != nil {
			return fmt.Errorf("failed to get notifications lead minutes: %w", err)
		}
	}

	if cmd.Flags().Changed(NATSEnabledKey) {
		config.NATS.Enabled, err = cmd.Flags().GetBool(NATSEnabledKey)
		if err != nil {
			return fmt.Errorf("failed to get NATS enabled: %w", err)
		}
	}

	if cmd.Flags().Changed(NATSURLKey) {
		config.NATS.URL, err = cmd.Flags().GetString(NATSURLKey)
		if err != nil {
			return fmt.Errorf("failed to get NATS URL: %w", err)
		}
	}

	if cmd.Flags().Changed(RedisEnabledKey) {
		config.Redis.Enabled, err = cmd.Flags().GetBool(RedisEnabledKey)
		if err != nil {
			return fmt.Errorf("failed to get Redis enabled: %w", err)
		}
	}

	if cmd.Flags().Changed(RedisAddressKey) {
		config.Redis.Address, err = cmd.Flags().GetString(RedisAddressKey)
		if err != nil {
			return fmt.Errorf("failed to get Redis address: %w", err)
		}
	}

	if cmd.Flags().Changed(RedisUsernameKey) {
		config.Redis.Username, err = cmd.Flags().GetString(RedisUsernameKey)
		if err != nil {
			return fmt.Errorf("failed to get Redis username: %w", err)
		}
	}

	if cmd.Flags().Changed(RedisPasswordKey) {
		config.Redis.Password, err = cmd.Flags().GetString(RedisPasswordKey)
		if err != nil {
			return fmt.Errorf("failed to get Redis password: %w", err)
		}
	}

	if cmd.Flags().Changed(RedisDatabaseKey) {
		config.Redis.Database, err = cmd.Flags().GetInt(RedisDatabaseKey)
		if err != nil {
			return fmt.Errorf("failed to get Redis database: %w", err)
		}
	}

	return nil
}
