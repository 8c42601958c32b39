package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/subosito/gotenv"
	"github/chapool/iao-solana/internal/util"
)

type Database struct {
	Host             string
	Port             int
	Username         string
	Password         string `json:"-"` // sensitive
	Database         string
	AdditionalParams map[string]string `json:",omitempty"` // Optional additional connection parameters mapped into the connection string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
}

// ConnectionString generates a connection string to be passed to sql.Open or equivalents, assuming Postgres syntax
func (c Database) ConnectionString() string {
	var b []byte
	b = fmt.Appendf(b, "host=%s port=%d user=%s password=%s dbname=%s", c.Host, c.Port, c.Username, c.Password, c.Database)

	if _, ok := c.AdditionalParams["sslmode"]; !ok {
		b = fmt.Appendf(b, " sslmode=disable")
	}

	for key, value := range c.AdditionalParams {
		b = fmt.Appendf(b, " %s=%s", key, value)
	}

	return string(b)
}

type EchoServer struct {
	Debug         bool
	ListenAddress string
}

type Management struct {
	ReadinessTimeout time.Duration
	LivenessTimeout  time.Duration
}

type LoggerServer struct {
	Level              zerolog.Level
	RequestLevel       zerolog.Level
	PrettyPrintConsole bool
}

// Provider mirrors the environment AnchorProvider.env() reads.
type Provider struct {
	URL                 string
	FallbackURLs        []string
	WalletPath          string
	Commitment          string
	PreflightCommitment string
	SkipPreflight       bool
	ConfirmTimeout      time.Duration
	PollInterval        time.Duration
}

// URLs returns the primary URL followed by all fallbacks.
func (p Provider) URLs() []string {
	urls := make([]string, 0, 1+len(p.FallbackURLs))
	if p.URL != "" {
		urls = append(urls, p.URL)
	}

	return append(urls, p.FallbackURLs...)
}

type Program struct {
	WorkspaceName string
	WorkspaceDir  string
	Cluster       string
	// ProgramID overrides the address found in Anchor.toml or the IDL.
	ProgramID string
	// StateAddress is the ProgramState account created by initialize.
	StateAddress string
}

type Keystore struct {
	Path     string
	Password string `json:"-"` // sensitive
}

type Ledger struct {
	Enabled bool
	// ReconcileInterval is how often the server re-checks pending transactions. Zero disables it.
	ReconcileInterval time.Duration
}

type I18n struct {
	DefaultLanguage string
	// BundleDir optionally holds additional *.toml message files overriding the embedded ones.
	BundleDir string
}

type Server struct {
	Database   Database
	Echo       EchoServer
	Management Management
	Logger     LoggerServer
	Provider   Provider
	Program    Program
	Keystore   Keystore
	Ledger     Ledger
	I18n       I18n
}

// DefaultServiceConfigFromEnv returns the server config as parsed from environment variables
// and their respective defaults defined below.
// We don't expect that ENV_VARs change while we are running our application or our tests
// (and it would be a bad thing to do anyways with parallel testing).
// Do NOT use os.Setenv / os.Unsetenv in tests utilizing DefaultServiceConfigFromEnv()!
func DefaultServiceConfigFromEnv() Server {
	// An `.env.local` file in your project root can override the currently set ENV variables.
	//
	// We never automatically apply `.env.local` when running "go test" as these ENV variables
	// may be sensitive (e.g. secrets to external APIs) and applying them modifies the process
	// global "os.Env" state.
	// Use `util.LoadEnvFile` instead of this if you need this in a test.
	if !util.RunningInTest() {
		DotEnvTryLoad(filepath.Join(util.GetProjectRootDir(), ".env.local"), gotenv.OverLoad)
	}

	workspaceDir := util.GetEnv("IAO_WORKSPACE_DIR", util.GetProjectRootDir())

	return Server{
		Database: Database{
			Host:     util.GetEnv("PGHOST", "postgres"),
			Port:     util.GetEnvAsInt("PGPORT", 5432),
			Database: util.GetEnv("PGDATABASE", "iao"),
			Username: util.GetEnv("PGUSER", "dbuser"),
			Password: util.GetEnv("PGPASSWORD", ""),
			AdditionalParams: map[string]string{
				"sslmode": util.GetEnv("PGSSLMODE", "disable"),
			},
			MaxOpenConns:    util.GetEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    util.GetEnvAsInt("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: util.GetEnvAsDuration("DB_CONN_MAX_LIFETIME", 60*time.Second),
		},
		Echo: EchoServer{
			Debug:         util.GetEnvAsBool("SERVER_ECHO_DEBUG", false),
			ListenAddress: util.GetEnv("SERVER_ECHO_LISTEN_ADDRESS", ":8080"),
		},
		Management: Management{
			ReadinessTimeout: util.GetEnvAsDuration("SERVER_MANAGEMENT_READINESS_TIMEOUT", 4*time.Second),
			LivenessTimeout:  util.GetEnvAsDuration("SERVER_MANAGEMENT_LIVENESS_TIMEOUT", 9*time.Second),
		},
		Logger: LoggerServer{
			Level:              util.LogLevelFromString(util.GetEnv("SERVER_LOGGER_LEVEL", zerolog.InfoLevel.String())),
			RequestLevel:       util.LogLevelFromString(util.GetEnv("SERVER_LOGGER_REQUEST_LEVEL", zerolog.DebugLevel.String())),
			PrettyPrintConsole: util.GetEnvAsBool("SERVER_LOGGER_PRETTY_PRINT_CONSOLE", false),
		},
		Provider: Provider{
			URL:                 util.GetEnv("ANCHOR_PROVIDER_URL", ""),
			FallbackURLs:        util.GetEnvAsStringArr("IAO_RPC_FALLBACK_URLS", nil),
			WalletPath:          util.GetEnv("ANCHOR_WALLET", ""),
			Commitment:          util.GetEnv("IAO_COMMITMENT", "confirmed"),
			PreflightCommitment: util.GetEnv("IAO_PREFLIGHT_COMMITMENT", "processed"),
			SkipPreflight:       util.GetEnvAsBool("IAO_SKIP_PREFLIGHT", false),
			ConfirmTimeout:      util.GetEnvAsDuration("IAO_CONFIRM_TIMEOUT", 60*time.Second),
			PollInterval:        util.GetEnvAsDuration("IAO_CONFIRM_POLL_INTERVAL", 500*time.Millisecond),
		},
		Program: Program{
			WorkspaceName: util.GetEnv("IAO_WORKSPACE_PROGRAM", "IaoSolana"),
			WorkspaceDir:  workspaceDir,
			Cluster:       util.GetEnv("IAO_CLUSTER", ""),
			ProgramID:     util.GetEnv("IAO_PROGRAM_ID", ""),
			StateAddress:  util.GetEnv("IAO_PROGRAM_STATE", ""),
		},
		Keystore: Keystore{
			Path:     util.GetEnv("IAO_KEYSTORE_PATH", ""),
			Password: util.GetEnv("IAO_KEYSTORE_PASSWORD", ""),
		},
		Ledger: Ledger{
			Enabled:           util.GetEnvAsBool("IAO_LEDGER_ENABLED", false),
			ReconcileInterval: util.GetEnvAsDuration("IAO_LEDGER_RECONCILE_INTERVAL", 30*time.Second),
		},
		I18n: I18n{
			DefaultLanguage: util.GetEnv("SERVER_I18N_DEFAULT_LANGUAGE", "en"),
			BundleDir:       util.GetEnv("SERVER_I18N_BUNDLE_DIR", ""),
		},
	}
}

// DotEnvTryLoad forcefully overrides ENV variables through the provided file.
func DotEnvTryLoad(absolutePathToEnvFile string, loader func(filenames ...string) error) {
	err := loader(absolutePathToEnvFile)
	if err != nil {
		log.Debug().Err(err).Str("envFile", absolutePathToEnvFile).Msg(".env file not loaded")
	}
}
