package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile          = ".env"
	defaultMappingFile      = "politician_mapping.json"
	defaultMappingThreshold = 0.90
	defaultIndexThreshold   = 0.92
	defaultPoliticiansPath  = "/politicians"
	defaultIssuesPath       = "/politician_issues"
	defaultView             = "ANALYTICS.MRT_ADMIN.CANDIDATE_ISSUE_RATINGS__CURRENT"
	defaultNameColumn       = "CANDIDATE_NAME_FIRST_LAST"
	defaultQueryTimeout     = 5 * time.Minute
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Snowflake SnowflakeConfig
	Firebase  FirebaseConfig
	Matching  MatchingConfig
	Pipeline  PipelineConfig
}

// SnowflakeConfig holds connection and query parameters for the tabular source.
type SnowflakeConfig struct {
	Account    string
	User       string
	Password   string
	Warehouse  string
	Database   string
	Schema     string
	Role       string
	View       string
	NameColumn string
}

// FirebaseConfig stores Realtime Database settings.
type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
	DatabaseURL     string
}

// MatchingConfig tunes the identity resolution engine.
type MatchingConfig struct {
	MappingFile      string
	MappingThreshold float64
	IndexThreshold   float64
	PoliticiansPath  string
	IssuesPath       string
}

// PipelineConfig controls optional post-run behaviour.
type PipelineConfig struct {
	CompletionTopic string
	BackupBucket    string
	BackupObject    string
	QueryTimeout    time.Duration
}

// SecretResolver resolves references to external secrets (e.g. Secret Manager URIs).
type SecretResolver interface {
	ResolveSecret(ctx context.Context, ref string) (string, error)
}

// SecretResolverFunc adapts ordinary functions to SecretResolver.
type SecretResolverFunc func(context.Context, string) (string, error)

// ResolveSecret resolves the secret using the wrapped function.
func (f SecretResolverFunc) ResolveSecret(ctx context.Context, ref string) (string, error) {
	return f(ctx, ref)
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// SecretError describes failures while resolving a secret reference.
type SecretError struct {
	Ref string
	Err error
}

// Error implements the error interface.
func (e *SecretError) Error() string {
	return fmt.Sprintf("secret resolution failed for ref %q: %v", e.Ref, e.Err)
}

// Unwrap exposes the underlying error.
func (e *SecretError) Unwrap() error { return e.Err }

var errSecretResolverNotConfigured = errors.New("secret resolver not configured")

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
	secret       SecretResolver
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// WithSecretResolver sets a custom secret resolver used for secret:// references.
func WithSecretResolver(resolver SecretResolver) Option {
	return func(o *loaderOptions) {
		o.secret = resolver
	}
}

// EnvironmentValues returns the effective key/value environment map after applying the same
// precedence rules as Load (dotenv < OS env < explicit env map). Callers use the result to
// initialise dependencies, such as the secret fetcher, before invoking Load.
func EnvironmentValues(opts ...Option) (map[string]string, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string)
	merge := func(source map[string]string) {
		for key, value := range source {
			values[key] = value
		}
	}

	merge(dotEnvValues)

	if options.useSystemEnv {
		system := make(map[string]string)
		for _, entry := range os.Environ() {
			parts := strings.SplitN(entry, "=", 2)
			if len(parts) != 2 {
				continue
			}
			key := strings.TrimSpace(parts[0])
			if key == "" {
				continue
			}
			system[key] = parts[1]
		}
		merge(system)
	}

	merge(options.envMap)

	return values, nil
}

// Load assembles the pipeline configuration by combining defaults, .env overrides,
// environment variables, and optional secret manager lookups.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
		secret: SecretResolverFunc(func(ctx context.Context, ref string) (string, error) {
			return "", &SecretError{Ref: ref, Err: errSecretResolverNotConfigured}
		}),
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	cfg := Config{
		Snowflake: SnowflakeConfig{
			Account:    stringWithDefault(lookup, "POLISYNC_SNOWFLAKE_ACCOUNT", ""),
			User:       stringWithDefault(lookup, "POLISYNC_SNOWFLAKE_USER", ""),
			Password:   stringWithDefault(lookup, "POLISYNC_SNOWFLAKE_PASSWORD", ""),
			Warehouse:  stringWithDefault(lookup, "POLISYNC_SNOWFLAKE_WAREHOUSE", ""),
			Database:   stringWithDefault(lookup, "POLISYNC_SNOWFLAKE_DATABASE", ""),
			Schema:     stringWithDefault(lookup, "POLISYNC_SNOWFLAKE_SCHEMA", ""),
			Role:       stringWithDefault(lookup, "POLISYNC_SNOWFLAKE_ROLE", ""),
			View:       stringWithDefault(lookup, "POLISYNC_SNOWFLAKE_VIEW", defaultView),
			NameColumn: stringWithDefault(lookup, "POLISYNC_SNOWFLAKE_NAME_COLUMN", defaultNameColumn),
		},
		Firebase: FirebaseConfig{
			ProjectID:       stringWithDefault(lookup, "POLISYNC_FIREBASE_PROJECT_ID", ""),
			CredentialsFile: stringWithDefault(lookup, "POLISYNC_FIREBASE_CREDENTIALS_FILE", ""),
			DatabaseURL:     stringWithDefault(lookup, "POLISYNC_FIREBASE_DATABASE_URL", ""),
		},
		Matching: MatchingConfig{
			MappingFile:      stringWithDefault(lookup, "POLISYNC_MAPPING_FILE", defaultMappingFile),
			MappingThreshold: floatWithDefault(lookup, "POLISYNC_MAPPING_THRESHOLD", defaultMappingThreshold),
			IndexThreshold:   floatWithDefault(lookup, "POLISYNC_INDEX_THRESHOLD", defaultIndexThreshold),
			PoliticiansPath:  pathWithDefault(lookup, "POLISYNC_POLITICIANS_PATH", defaultPoliticiansPath),
			IssuesPath:       pathWithDefault(lookup, "POLISYNC_ISSUES_PATH", defaultIssuesPath),
		},
		Pipeline: PipelineConfig{
			CompletionTopic: stringWithDefault(lookup, "POLISYNC_COMPLETION_TOPIC", ""),
			BackupBucket:    stringWithDefault(lookup, "POLISYNC_BACKUP_BUCKET", ""),
			BackupObject:    stringWithDefault(lookup, "POLISYNC_BACKUP_OBJECT", ""),
			QueryTimeout:    durationWithDefault(lookup, "POLISYNC_QUERY_TIMEOUT", defaultQueryTimeout),
		},
	}

	// Snowflake passwords are commonly kept in Secret Manager.
	resolved, err := resolveSecret(ctx, cfg.Snowflake.Password, options.secret)
	if err != nil {
		return Config{}, err
	}
	cfg.Snowflake.Password = resolved

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func resolveSecret(ctx context.Context, value string, resolver SecretResolver) (string, error) {
	if value == "" || !isSecretReference(value) {
		return value, nil
	}
	normalized := normalizeSecretReference(value)
	if resolver == nil {
		return "", &SecretError{Ref: normalized, Err: errSecretResolverNotConfigured}
	}
	secret, err := resolver.ResolveSecret(ctx, normalized)
	if err != nil {
		return "", &SecretError{Ref: normalized, Err: err}
	}
	return secret, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if cfg.Snowflake.Account == "" {
		missing = append(missing, "Snowflake.Account")
	}
	if cfg.Snowflake.User == "" {
		missing = append(missing, "Snowflake.User")
	}
	if cfg.Snowflake.Password == "" {
		missing = append(missing, "Snowflake.Password")
	}
	if cfg.Snowflake.Warehouse == "" {
		missing = append(missing, "Snowflake.Warehouse")
	}
	if cfg.Snowflake.Database == "" {
		missing = append(missing, "Snowflake.Database")
	}
	if cfg.Snowflake.Schema == "" {
		missing = append(missing, "Snowflake.Schema")
	}
	if cfg.Firebase.DatabaseURL == "" {
		missing = append(missing, "Firebase.DatabaseURL")
	}
	if cfg.Firebase.CredentialsFile == "" {
		missing = append(missing, "Firebase.CredentialsFile")
	}
	if cfg.Matching.MappingFile == "" {
		missing = append(missing, "Matching.MappingFile")
	}
	if cfg.Matching.MappingThreshold <= 0 || cfg.Matching.MappingThreshold > 1 {
		missing = append(missing, "Matching.MappingThreshold")
	}
	if cfg.Matching.IndexThreshold <= 0 || cfg.Matching.IndexThreshold > 1 {
		missing = append(missing, "Matching.IndexThreshold")
	}
	if cfg.Pipeline.QueryTimeout <= 0 {
		missing = append(missing, "Pipeline.QueryTimeout")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func isSecretReference(value string) bool {
	trimmed := strings.TrimSpace(value)
	return strings.HasPrefix(trimmed, "secret://") || strings.HasPrefix(trimmed, "sm://")
}

func normalizeSecretReference(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "sm://") {
		return "secret://" + strings.TrimPrefix(trimmed, "sm://")
	}
	return trimmed
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		value = strings.Trim(value, "\"'")
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func floatWithDefault(lookup func(string) (string, bool), key string, fallback float64) float64 {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return fallback
}

// pathWithDefault normalises database paths to a single leading slash.
func pathWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	value := stringWithDefault(lookup, key, fallback)
	value = strings.TrimSpace(value)
	if value == "" {
		value = fallback
	}
	if !strings.HasPrefix(value, "/") {
		value = "/" + value
	}
	return value
}
