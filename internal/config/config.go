package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/bashhack/softlock/pkg/errors"
	"github.com/bashhack/softlock/pkg/lock"
)

// EnvPrefix is prepended to every environment variable softlock reads.
const EnvPrefix = "SOFTLOCK_"

const (
	// DefaultTimeout is how long `softlock run` waits for the lock.
	// Zero means wait until the lock is free.
	DefaultTimeout time.Duration = 0

	// DefaultLogFileName is the log file created under the XDG data directory
	// when debug logging is on and no log file is given.
	DefaultLogFileName = "softlock.log"
)

// Config holds all softlock settings.
// Values come from defaults, an optional YAML file, SOFTLOCK_* environment
// variables and command-line flags, in increasing order of precedence.
type Config struct {
	// Lock configuration

	// LockPath is the lock file to operate on. Commands usually take it as
	// an argument; the environment and config file can supply a default.
	LockPath string

	// Timeout is how long to wait for a contended lock. Zero waits until
	// the lock is free.
	Timeout time.Duration

	// NonBlocking makes a single acquisition attempt, overriding Timeout.
	NonBlocking bool

	// BackoffInitial, BackoffFactor and BackoffMax shape the wait between
	// contended attempts.
	BackoffInitial time.Duration
	BackoffFactor  float64
	BackoffMax     time.Duration

	// ReleaseAttempts and ReleaseDelay bound the retries of a busy lock file
	// on release.
	ReleaseAttempts int
	ReleaseDelay    time.Duration

	// Output options

	// Verbose echoes informational messages to stdout.
	Verbose bool

	// Debug enables structured debug logging.
	Debug bool

	// LogFile receives the debug log. Defaults under $XDG_DATA_HOME.
	LogFile string

	// MetricsFile, if set, receives lock metrics in Prometheus text format
	// when the command exits.
	MetricsFile string

	// ConfigFile is the YAML file the other settings may be read from.
	ConfigFile string

	// VersionInfo contains version, commit, and build date information.
	VersionInfo VersionInfo

	// ParsedQuiet tracks the state of the --quiet flag, which inverts Verbose.
	ParsedQuiet *bool
}

// VersionInfo contains build-time version metadata.
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// New creates a new Config with default values
func New() *Config {
	return &Config{
		Timeout:         DefaultTimeout,
		BackoffInitial:  lock.DefaultBackoffInitial,
		BackoffFactor:   lock.DefaultBackoffFactor,
		BackoffMax:      lock.DefaultBackoffMax,
		ReleaseAttempts: lock.DefaultReleaseAttempts,
		ReleaseDelay:    lock.DefaultReleaseDelay,
		Verbose:         true,

		VersionInfo: VersionInfo{
			Version: "dev",
			Commit:  "unknown",
			Date:    "unknown",
		},
	}
}

// setting ties a configurable field to its flag, environment variable and
// YAML key.
type setting struct {
	flag string
	env  string
}

var (
	settingLock            = setting{flag: "lock", env: "LOCK"}
	settingTimeout         = setting{flag: "timeout", env: "TIMEOUT"}
	settingNonBlocking     = setting{flag: "nonblock", env: "NONBLOCK"}
	settingBackoffInitial  = setting{flag: "backoff-initial", env: "BACKOFF_INITIAL"}
	settingBackoffFactor   = setting{flag: "backoff-factor", env: "BACKOFF_FACTOR"}
	settingBackoffMax      = setting{flag: "backoff-max", env: "BACKOFF_MAX"}
	settingReleaseAttempts = setting{flag: "release-attempts", env: "RELEASE_ATTEMPTS"}
	settingReleaseDelay    = setting{flag: "release-delay", env: "RELEASE_DELAY"}
	settingVerbose         = setting{flag: "quiet", env: "VERBOSE"}
	settingDebug           = setting{flag: "debug", env: "DEBUG"}
	settingLogFile         = setting{flag: "log-file", env: "LOG_FILE"}
	settingMetricsFile     = setting{flag: "metrics-file", env: "METRICS_FILE"}
	settingConfigFile      = setting{flag: "config", env: "CONFIG"}
)

// LoadFromEnvironment updates config from SOFTLOCK_* environment variables.
// Unparseable values are ignored.
func (c *Config) LoadFromEnvironment() {
	c.LockPath = getEnvString(settingLock.env, c.LockPath)
	c.Timeout = getEnvDuration(settingTimeout.env, c.Timeout)
	c.NonBlocking = getEnvBool(settingNonBlocking.env, c.NonBlocking)
	c.BackoffInitial = getEnvDuration(settingBackoffInitial.env, c.BackoffInitial)
	c.BackoffFactor = getEnvFloat(settingBackoffFactor.env, c.BackoffFactor)
	c.BackoffMax = getEnvDuration(settingBackoffMax.env, c.BackoffMax)
	c.ReleaseAttempts = getEnvInt(settingReleaseAttempts.env, c.ReleaseAttempts)
	c.ReleaseDelay = getEnvDuration(settingReleaseDelay.env, c.ReleaseDelay)
	c.Verbose = getEnvBool(settingVerbose.env, c.Verbose)
	c.Debug = getEnvBool(settingDebug.env, c.Debug)
	c.LogFile = getEnvString(settingLogFile.env, c.LogFile)
	c.MetricsFile = getEnvString(settingMetricsFile.env, c.MetricsFile)
	c.ConfigFile = getEnvString(settingConfigFile.env, c.ConfigFile)
}

// SetupFlags registers the global flags shared by every command.
func (c *Config) SetupFlags(fs *pflag.FlagSet) {
	quiet := !c.Verbose

	fs.StringVar(&c.ConfigFile, settingConfigFile.flag, c.ConfigFile, "Path to a YAML config file")
	fs.BoolVar(&c.Debug, settingDebug.flag, c.Debug, "Enable debug logging")
	fs.StringVar(&c.LogFile, settingLogFile.flag, c.LogFile, "Path to log file (default: ~/.local/share/softlock/logs/softlock.log)")
	fs.BoolVarP(&quiet, settingVerbose.flag, "q", quiet, "Hide informational messages")
	fs.StringVar(&c.MetricsFile, settingMetricsFile.flag, c.MetricsFile, "Write lock metrics in Prometheus text format to this file on exit")
	fs.DurationVar(&c.BackoffInitial, settingBackoffInitial.flag, c.BackoffInitial, "First wait between contended attempts")
	fs.Float64Var(&c.BackoffFactor, settingBackoffFactor.flag, c.BackoffFactor, "Growth factor of the wait between attempts")
	fs.DurationVar(&c.BackoffMax, settingBackoffMax.flag, c.BackoffMax, "Longest wait between attempts")
	fs.IntVar(&c.ReleaseAttempts, settingReleaseAttempts.flag, c.ReleaseAttempts, "Attempts to delete a busy lock file on release")
	fs.DurationVar(&c.ReleaseDelay, settingReleaseDelay.flag, c.ReleaseDelay, "Pause between release attempts")

	c.ParsedQuiet = &quiet
}

// SetupAcquireFlags registers the flags of commands that acquire the lock.
func (c *Config) SetupAcquireFlags(fs *pflag.FlagSet) {
	fs.DurationVarP(&c.Timeout, settingTimeout.flag, "t", c.Timeout, "How long to wait for the lock (0 waits forever)")
	fs.BoolVarP(&c.NonBlocking, settingNonBlocking.flag, "n", c.NonBlocking, "Fail at once if the lock is held")
}

// fileConfig is the YAML shape of a config file. Nil fields are unset.
type fileConfig struct {
	Lock            *string        `yaml:"lock"`
	Timeout         *time.Duration `yaml:"timeout"`
	NonBlocking     *bool          `yaml:"nonblock"`
	BackoffInitial  *time.Duration `yaml:"backoff_initial"`
	BackoffFactor   *float64       `yaml:"backoff_factor"`
	BackoffMax      *time.Duration `yaml:"backoff_max"`
	ReleaseAttempts *int           `yaml:"release_attempts"`
	ReleaseDelay    *time.Duration `yaml:"release_delay"`
	Verbose         *bool          `yaml:"verbose"`
	Debug           *bool          `yaml:"debug"`
	LogFile         *string        `yaml:"log_file"`
	MetricsFile     *string        `yaml:"metrics_file"`
}

// ApplyFile reads the YAML config file at path. A value is taken from the
// file only if neither its flag (as recorded in fs) nor its environment
// variable was set. Unknown keys are an error.
func (c *Config) ApplyFile(path string, fs *pflag.FlagSet) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.NewConfigError("config", path, errors.Wrap(err, "failed to read config file"))
	}

	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && err != io.EOF {
		return errors.NewConfigError("config", path,
			errors.Wrap(errors.ErrInvalidConfiguration, fmt.Sprintf("failed to parse config file: %v", err)))
	}

	overridden := func(s setting) bool {
		if fs != nil {
			if f := fs.Lookup(s.flag); f != nil && f.Changed {
				return true
			}
		}
		_, ok := os.LookupEnv(EnvPrefix + s.env)
		return ok
	}

	applyValue(&c.LockPath, fc.Lock, overridden(settingLock))
	applyValue(&c.Timeout, fc.Timeout, overridden(settingTimeout))
	applyValue(&c.NonBlocking, fc.NonBlocking, overridden(settingNonBlocking))
	applyValue(&c.BackoffInitial, fc.BackoffInitial, overridden(settingBackoffInitial))
	applyValue(&c.BackoffFactor, fc.BackoffFactor, overridden(settingBackoffFactor))
	applyValue(&c.BackoffMax, fc.BackoffMax, overridden(settingBackoffMax))
	applyValue(&c.ReleaseAttempts, fc.ReleaseAttempts, overridden(settingReleaseAttempts))
	applyValue(&c.ReleaseDelay, fc.ReleaseDelay, overridden(settingReleaseDelay))
	applyValue(&c.Verbose, fc.Verbose, overridden(settingVerbose))
	applyValue(&c.Debug, fc.Debug, overridden(settingDebug))
	applyValue(&c.LogFile, fc.LogFile, overridden(settingLogFile))
	applyValue(&c.MetricsFile, fc.MetricsFile, overridden(settingMetricsFile))
	return nil
}

func applyValue[T any](dst *T, v *T, overridden bool) {
	if v != nil && !overridden {
		*dst = *v
	}
}

// Resolve completes the configuration after flags are parsed: it applies
// inverted flags and the config file, then finalizes.
func (c *Config) Resolve(fs *pflag.FlagSet) error {
	if c.ParsedQuiet != nil && fs != nil {
		if f := fs.Lookup(settingVerbose.flag); f != nil && f.Changed {
			c.Verbose = !*c.ParsedQuiet
		}
	}
	if c.ConfigFile != "" {
		if err := c.ApplyFile(c.ConfigFile, fs); err != nil {
			return err
		}
	}
	return c.Finalize()
}

// Finalize validates and finalizes the configuration
func (c *Config) Finalize() error {
	if c.Timeout < 0 {
		return errors.NewConfigError("timeout", c.Timeout,
			errors.Wrap(errors.ErrInvalidConfiguration, "timeout must not be negative"))
	}
	if c.BackoffInitial <= 0 {
		return errors.NewConfigError("backoffInitial", c.BackoffInitial,
			errors.Wrap(errors.ErrInvalidConfiguration, "initial backoff must be greater than 0"))
	}
	if c.BackoffFactor <= 1 {
		return errors.NewConfigError("backoffFactor", c.BackoffFactor,
			errors.Wrap(errors.ErrInvalidConfiguration, "backoff factor must be greater than 1"))
	}
	if c.BackoffMax < c.BackoffInitial {
		return errors.NewConfigError("backoffMax", c.BackoffMax,
			errors.Wrapf(errors.ErrInvalidConfiguration, "max backoff must be at least the initial backoff (%s)", c.BackoffInitial))
	}
	if c.ReleaseAttempts < 1 {
		return errors.NewConfigError("releaseAttempts", c.ReleaseAttempts,
			errors.Wrap(errors.ErrInvalidConfiguration, "release attempts must be at least 1"))
	}
	if c.ReleaseDelay <= 0 {
		return errors.NewConfigError("releaseDelay", c.ReleaseDelay,
			errors.Wrap(errors.ErrInvalidConfiguration, "release delay must be greater than 0"))
	}

	if c.LockPath != "" {
		abs, err := filepath.Abs(c.LockPath)
		if err != nil {
			return errors.NewConfigError("lockPath", c.LockPath, errors.Wrap(err, "failed to resolve absolute path"))
		}
		c.LockPath = abs
	}

	if c.LogFile == "" {
		// Follow XDG Base Directory Specification
		logDir := os.Getenv("XDG_DATA_HOME")
		if logDir == "" {
			homeDir, err := os.UserHomeDir()
			if err == nil {
				logDir = filepath.Join(homeDir, ".local", "share")
			} else {
				logDir = os.TempDir()
			}
		}
		c.LogFile = filepath.Join(logDir, "softlock", "logs", DefaultLogFileName)
	}

	return nil
}

// EffectiveTimeout converts the command-line timeout into the lock's terms:
// non-blocking is a single attempt and zero waits forever.
func (c *Config) EffectiveTimeout() time.Duration {
	switch {
	case c.NonBlocking:
		return 0
	case c.Timeout == 0:
		return lock.WaitForever
	default:
		return c.Timeout
	}
}

// LockOptions returns the lock options described by the configuration.
func (c *Config) LockOptions() []lock.Option {
	return []lock.Option{
		lock.WithTimeout(c.EffectiveTimeout()),
		lock.WithBackoff(c.BackoffInitial, c.BackoffFactor, c.BackoffMax),
		lock.WithReleaseRetry(c.ReleaseAttempts, c.ReleaseDelay),
	}
}

// getEnvString returns an environment variable string or a default value
func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(EnvPrefix + key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns an environment variable as int or a default value
func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(EnvPrefix + key); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

// getEnvFloat returns an environment variable as float64 or a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if valueStr, exists := os.LookupEnv(EnvPrefix + key); exists {
		if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
			return value
		}
	}
	return defaultValue
}

// getEnvDuration returns an environment variable as a duration or a default
// value. A bare number is taken as seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr, exists := os.LookupEnv(EnvPrefix + key)
	if !exists {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	if secs, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return defaultValue
}

// getEnvBool returns an environment variable as bool or a default value
func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(EnvPrefix + key); exists {
		valueLower := strings.ToLower(valueStr)
		if valueLower == "true" || valueLower == "1" || valueLower == "yes" {
			return true
		}
		if valueLower == "false" || valueLower == "0" || valueLower == "no" {
			return false
		}
	}
	return defaultValue
}
