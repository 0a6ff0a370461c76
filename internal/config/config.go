// Package config loads and validates app config from env and an optional
// .env file using Viper, plus the directory target list from a YAML file.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"ldap-identity-bridge/internal/ldapauth/domain"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// DatabaseURL is the Postgres DSN the identity store lives in.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// TargetsFile is the path to the YAML file listing directory targets.
	TargetsFile string `mapstructure:"LDAP_TARGETS_FILE"`
	// FallbackGroupID is the group assigned when no target-specific group
	// assignment succeeds. Empty disables the fallback.
	FallbackGroupID string `mapstructure:"FALLBACK_GROUP_ID"`
	// DefaultLocale is applied to newly created users (e.g. "en-US").
	DefaultLocale string `mapstructure:"DEFAULT_LOCALE"`
	// BcryptCost is the bcrypt cost factor (4–31) for opaque credentials; default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// DialTimeout is the directory connect timeout (e.g. "10s").
	DialTimeout string `mapstructure:"LDAP_DIAL_TIMEOUT"`
	// OTLPEndpoint is the OTLP gRPC collector endpoint; empty disables telemetry export.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the
// environment via Viper. Missing .env is ignored (e.g. in CI). Env vars
// override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("LDAP_TARGETS_FILE", "targets.yaml")
	v.SetDefault("FALLBACK_GROUP_ID", "")
	v.SetDefault("DEFAULT_LOCALE", "en-US")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("LDAP_DIAL_TIMEOUT", "10s")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	return &cfg, nil
}

// targetSpec is the YAML shape of one directory target.
type targetSpec struct {
	Disabled bool `mapstructure:"disabled"`
	// Server is "host" or "host:port"; port defaults to 389.
	Server string `mapstructure:"server"`
	// ProtocolVersion is "auto" (default), "2", or "3".
	ProtocolVersion string `mapstructure:"protocol_version"`

	BindRDN      string `mapstructure:"bind_rdn"`
	SearchBaseDN string `mapstructure:"search_base_dn"`
	SearchFilter string `mapstructure:"search_filter"`

	GroupAttribute  string `mapstructure:"group_attribute"`
	GroupTemplateID string `mapstructure:"group_template_id"`

	SecondaryGroupBaseDN string `mapstructure:"secondary_group_base_dn"`
	SecondaryGroupFilter string `mapstructure:"secondary_group_filter"`
}

// LoadTargets reads the target list from the YAML file at path. The file
// holds a top-level "targets" sequence; order is the order targets are tried.
// Every target is validated and the list is capped at domain.MaxTargets.
func LoadTargets(path string) ([]domain.Target, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: reading targets file: %w", err)
	}

	var raw struct {
		Targets []targetSpec `mapstructure:"targets"`
	}
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("config: parsing targets file: %w", err)
	}
	if len(raw.Targets) > domain.MaxTargets {
		return nil, fmt.Errorf("config: %d targets configured, at most %d allowed", len(raw.Targets), domain.MaxTargets)
	}

	targets := make([]domain.Target, 0, len(raw.Targets))
	for i, spec := range raw.Targets {
		tgt, err := spec.toTarget()
		if err != nil {
			return nil, fmt.Errorf("config: target %d: %w", i, err)
		}
		targets = append(targets, tgt)
	}
	return targets, nil
}

func (s targetSpec) toTarget() (domain.Target, error) {
	tgt := domain.Target{
		Disabled:                     s.Disabled,
		BindRDNTemplate:              s.BindRDN,
		SearchBaseDN:                 s.SearchBaseDN,
		SearchFilterTemplate:         s.SearchFilter,
		GroupAssignmentAttribute:     s.GroupAttribute,
		GroupTemplateID:              s.GroupTemplateID,
		SecondaryGroupBaseDN:         s.SecondaryGroupBaseDN,
		SecondaryGroupFilterTemplate: s.SecondaryGroupFilter,
	}

	host, port, err := splitServer(s.Server)
	if err != nil {
		return domain.Target{}, err
	}
	tgt.Host = host
	tgt.Port = port

	switch strings.ToLower(strings.TrimSpace(s.ProtocolVersion)) {
	case "", "auto":
		tgt.VersionPolicy = domain.VersionAuto
	case "2":
		tgt.VersionPolicy = domain.VersionFixed
		tgt.Version = 2
	case "3":
		tgt.VersionPolicy = domain.VersionFixed
		tgt.Version = 3
	default:
		return domain.Target{}, fmt.Errorf("protocol_version %q, want auto, 2, or 3", s.ProtocolVersion)
	}

	if err := tgt.Validate(); err != nil {
		return domain.Target{}, err
	}
	return tgt, nil
}

// splitServer parses "host" or "host:port". A bare host gets port 0, which
// the target resolves to the standard LDAP port.
func splitServer(server string) (string, int, error) {
	server = strings.TrimSpace(server)
	if server == "" {
		return "", 0, errors.New("server is required")
	}
	if !strings.Contains(server, ":") {
		return server, 0, nil
	}
	host, portStr, err := net.SplitHostPort(server)
	if err != nil {
		return "", 0, fmt.Errorf("server %q: %w", server, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("server %q: invalid port %q", server, portStr)
	}
	return host, port, nil
}
