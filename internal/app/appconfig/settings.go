package appconfig

import (
	"time"

	"github.com/kvv-bao/profiler/internal/app/appcontext"
)

type ConfigSpec struct {
	// ServiceAddress is the listen address would listen on for serving normal service requests.
	ServiceAddress string `required:"true" split_words:"true" default:"localhost:9010"`

	// LogJsonStdout is whether to log JSON logs (instead of pretty-print logs) to stdout for the ease of log collection.
	LogJsonStdout bool `split_words:"true" default:"false"`

	// LogFile is the path of the rotated JSON log file. Leaving this empty disables file logging.
	LogFile string `split_words:"true" default:"logs/app.log"`

	// LogFileMaxSizeMB is the size in megabytes at which the log file is rotated.
	LogFileMaxSizeMB int `split_words:"true" default:"100"`

	// LogFileMaxBackups is the number of rotated log files to keep.
	LogFileMaxBackups int `split_words:"true" default:"10"`

	// TrustedProxies is a list of trusted proxies that are trusted to report a real IP via the X-Forwarded-For header.
	TrustedProxies []string `required:"true" split_words:"true" default:"::1,127.0.0.1,10.0.0.0/8"`

	// DevMode to indicate development mode. When true, the program would spin up utilities for debugging and
	// provide a more contextual message when encountered a panic. See internal/server/httpserver/http.go for the
	// actual implementation details.
	DevMode bool `split_words:"true"`

	// TracingEnabled to indicate whether to enable OpenTelemetry tracing.
	TracingEnabled bool `split_words:"true"`

	// TracingExporters to indicate which exporters to use for tracing.
	// Valid values are: jaeger, otlp, stdout (for debug).
	TracingExporters []string `split_words:"true" default:"jaeger"`

	// TracingSampleRate to indicate the sampling rate for tracing.
	// Valid values are: 0.0 (disabled), 1.0 (all traces), or a value between 0.0 and 1.0 (sampling rate).
	TracingSampleRate float64 `split_words:"true" default:"1.0"`

	// infrastructure components connection instructions

	// PostgresDSN is the data source name for the PostgreSQL database. See
	// https://bun.uptrace.dev/postgres/#pgdriver for more details on how to construct a PostgreSQL DSN.
	PostgresDSN string `required:"true" split_words:"true"`

	PostgresMaxOpenConns    int           `split_words:"true" default:"10"`
	PostgresMaxIdleConns    int           `split_words:"true" default:"2"`
	PostgresConnMaxLifeTime time.Duration `split_words:"true" default:"5m"`
	PostgresConnMaxIdleTime time.Duration `split_words:"true" default:"5m"`

	BunDebugVerbose bool `split_words:"true"`

	// NatsURL is the URL of the NATS server. See https://pkg.go.dev/github.com/nats-io/nats.go#Connect
	// for more information on how to construct a NATS URL.
	NatsURL string `required:"true" split_words:"true" default:"nats://127.0.0.1:4222"`

	// RedisURL is the URL of the Redis server. See https://pkg.go.dev/github.com/redis/go-redis/v9#ParseURL
	// for more information on how to construct a Redis URL.
	RedisURL string `required:"true" split_words:"true" default:"redis://127.0.0.1:6379/1"`

	// SentryDSN is the DSN of the Sentry server. See https://pkg.go.dev/github.com/getsentry/sentry-go#ClientOptions
	SentryDSN string `split_words:"true"`

	// ExportS3Bucket is the bucket every published audit document is copied to.
	// Leaving this empty disables the export.
	ExportS3Bucket string `split_words:"true"`

	// ExportS3Prefix is the key prefix of exported audit documents.
	ExportS3Prefix string `split_words:"true" default:"profile-trees/"`

	// ExportS3Region is the region of the export bucket.
	ExportS3Region string `split_words:"true" default:"eu-central-1"`

	// ExportS3Endpoint overrides the S3 endpoint, e.g. for a MinIO deployment.
	ExportS3Endpoint string `split_words:"true"`

	// ExportS3AccessKey and ExportS3SecretKey are static credentials for the export bucket.
	// When left empty, the default AWS credential chain is used.
	ExportS3AccessKey string `split_words:"true"`
	ExportS3SecretKey string `split_words:"true"`

	// HTTPServerShutdownTimeout is the timeout for the HTTP server to shut down gracefully.
	HTTPServerShutdownTimeout time.Duration `required:"true" split_words:"true" default:"60s"`

	// WorkerInterval describes the interval in-between two profile tree rebuilds
	WorkerInterval time.Duration `required:"true" split_words:"true" default:"24h"`

	// WorkerTimeout describes the timeout for a single rebuild to run
	WorkerTimeout time.Duration `required:"true" split_words:"true" default:"30m"`

	// WorkerHeartbeatURL is the map of URLs to ping to check if the worker is alive.
	// The key is the name of the worker, and the value is the base64 encoded URL.
	// Possible keys are: "rebuild"
	WorkerHeartbeatURL WorkerHeartbeatURLMap `split_words:"true"`

	// WorkerEnabled is a flag to indicate whether to enable the worker.
	WorkerEnabled bool `split_words:"true"`

	// AdminKey is the key used to authenticate the admin API.
	AdminKey string `split_words:"true"`

	// DocumentCacheTTL is how long the audit document and the profile list of a snapshot are kept in Redis.
	DocumentCacheTTL time.Duration `split_words:"true" default:"24h"`

	ProfileSpec
}

// ProfileSpec configures the profile tree builds. It is parsed on its own by the offline CLI commands.
type ProfileSpec struct {
	// ProfileFeatures is the ordered list of the 7 characteristics the tree splits on.
	ProfileFeatures []string `required:"true" split_words:"true" default:"nationality,visa_type,post,age_group,travel_purpose,occupation,previous_visits"`

	// ProfileMinGroupSize is the minimum member count of a group.
	ProfileMinGroupSize int `split_words:"true" default:"50"`

	// ProfileMinGroupSizePerLevel optionally sets one minimum per tree level, overriding ProfileMinGroupSize.
	ProfileMinGroupSizePerLevel []int `split_words:"true"`

	// ProfileMinHitRateForFavorable is the hit rate at or above which a group is favorable.
	ProfileMinHitRateForFavorable float64 `split_words:"true" default:"0.8"`

	// ProfileMinRejectionRateForRisk is the rejection rate at or above which a group is a risk.
	ProfileMinRejectionRateForRisk float64 `split_words:"true" default:"0.3"`

	// ProfileMinDepth removes leaf profiles constraining fewer characteristics. 0 disables it.
	ProfileMinDepth int `split_words:"true" default:"0"`

	// ProfileBuildConcurrency bounds the number of subtrees built at once. 0 means unbounded.
	ProfileBuildConcurrency int `split_words:"true" default:"4"`

	// ProfileRecordFilter is an optional expression selecting the historical records a build uses,
	// e.g. `Count >= 10 && Path[0] != "(unknown)"`.
	ProfileRecordFilter string `split_words:"true"`

	// ProfileDatasetVersion selects the dataset version of historical groups to build from.
	// Leaving this empty selects the most recent version.
	ProfileDatasetVersion string `split_words:"true"`
}

type Config struct {
	// ConfigSpec holds every setting parsed from the environment.
	ConfigSpec

	// AppContext is the application context
	AppContext appcontext.Ctx
}
