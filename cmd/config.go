package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/jobs"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	// PolicyFile is the dispatch.yaml watched for policy changes.
	PolicyFile    string
	SweepSchedule string
	SweepTimeout  time.Duration
	SweepSecret   string

	FirebaseCredentialsFile string
	AWSRegion               string
	SESFromEmail            string
	// Operators are "name:email" pairs seeded into the operator directory.
	Operators []string

	LogLevel string
}

// LoadConfig reads settings in order: .env (if present), environment, flags.
func LoadConfig(args []string) (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		HTTPPort:                envOr("HTTP_PORT", "8080"),
		DBHost:                  envOr("DB_HOST", "localhost"),
		DBPort:                  envOr("DB_PORT", "5432"),
		DBUser:                  envOr("DB_USER", "postgres"),
		DBPassword:              os.Getenv("DB_PASSWORD"),
		DBName:                  envOr("DB_NAME", "dispatch"),
		DBSslMode:               envOr("DB_SSLMODE", "disable"),
		PolicyFile:              envOr("POLICY_FILE", "dispatch.yaml"),
		SweepSchedule:           envOr("SWEEP_SCHEDULE", jobs.DefaultSweepSchedule),
		SweepSecret:             os.Getenv("SWEEP_SECRET"),
		FirebaseCredentialsFile: os.Getenv("FIREBASE_CREDENTIALS_FILE"),
		AWSRegion:               os.Getenv("AWS_REGION"),
		SESFromEmail:            os.Getenv("SES_FROM_EMAIL"),
		Operators:               splitList(os.Getenv("OPERATORS")),
		LogLevel:                envOr("LOG_LEVEL", "info"),
	}

	timeout, err := time.ParseDuration(envOr("SWEEP_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("SWEEP_TIMEOUT: %w", err)
	}
	cfg.SweepTimeout = timeout

	flags := pflag.NewFlagSet("dispatch", pflag.ContinueOnError)
	flags.StringVarP(&cfg.HTTPPort, "http-port", "p", cfg.HTTPPort, "port to listen on")
	flags.StringVar(&cfg.PolicyFile, "policy-file", cfg.PolicyFile, "dispatch policy file, watched for changes")
	flags.StringVar(&cfg.SweepSchedule, "sweep-schedule", cfg.SweepSchedule, "cron schedule of the dispatch sweep, with seconds")
	flags.DurationVar(&cfg.SweepTimeout, "sweep-timeout", cfg.SweepTimeout, "upper bound for one scheduled sweep")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	if err = flags.Parse(args); err != nil {
		return Config{}, err
	}

	if err = cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errList []error

	if port, err := strconv.Atoi(c.HTTPPort); err != nil || port <= 0 || port > 65535 {
		errList = append(errList, fmt.Errorf("invalid http port: %q", c.HTTPPort))
	}
	if c.SweepTimeout <= 0 {
		errList = append(errList, fmt.Errorf("invalid sweep timeout: %s", c.SweepTimeout))
	}
	if c.SESFromEmail != "" && c.AWSRegion == "" {
		errList = append(errList, errors.New("AWS_REGION is required when SES_FROM_EMAIL is set"))
	}
	if _, err := c.OperatorAccounts(); err != nil {
		errList = append(errList, err)
	}

	return errors.Join(errList...)
}

// DSN builds the PostgreSQL connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// OperatorAccounts parses Operators. The id is derived from the e-mail so the
// same entry keeps its id across restarts.
func (c Config) OperatorAccounts() ([]ports.Operator, error) {
	operators := make([]ports.Operator, 0, len(c.Operators))
	for _, entry := range c.Operators {
		name, email, ok := strings.Cut(entry, ":")
		name, email = strings.TrimSpace(name), strings.ToLower(strings.TrimSpace(email))
		if !ok || name == "" || !strings.Contains(email, "@") {
			return nil, fmt.Errorf("invalid operator %q, want name:email", entry)
		}

		id, err := operatorID(email)
		if err != nil {
			return nil, err
		}
		operators = append(operators, ports.Operator{ID: id, Name: name, Email: email})
	}
	return operators, nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var operatorNamespace = uuid.MustParse("8f3e2a64-4c1b-4f0e-9a7d-2b6c5e1d9f30")

func operatorID(email string) (kernel.UUID, error) {
	id := uuid.NewSHA1(operatorNamespace, []byte(email))
	return kernel.UUIDFromBytes(id[:])
}
