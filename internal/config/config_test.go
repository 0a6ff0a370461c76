package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ldap-identity-bridge/internal/ldapauth/domain"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TargetsFile != "targets.yaml" {
		t.Errorf("TargetsFile = %q, want %q", cfg.TargetsFile, "targets.yaml")
	}
	if cfg.DefaultLocale != "en-US" {
		t.Errorf("DefaultLocale = %q, want %q", cfg.DefaultLocale, "en-US")
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.DialTimeout != "10s" {
		t.Errorf("DialTimeout = %q, want %q", cfg.DialTimeout, "10s")
	}
	if cfg.OTLPEndpoint != "" {
		t.Errorf("OTLPEndpoint = %q, want empty", cfg.OTLPEndpoint)
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("DATABASE_URL", "postgres://localhost/identity")
	os.Setenv("FALLBACK_GROUP_ID", "g-members")
	os.Setenv("BCRYPT_COST", "14")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabaseURL != "postgres://localhost/identity" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.FallbackGroupID != "g-members" {
		t.Errorf("FallbackGroupID = %q", cfg.FallbackGroupID)
	}
	if cfg.BcryptCost != 14 {
		t.Errorf("BcryptCost = %d, want 14", cfg.BcryptCost)
	}
}

func TestLoad_InvalidBcryptCost(t *testing.T) {
	os.Clearenv()
	os.Setenv("BCRYPT_COST", "99")

	if _, err := Load(); err == nil {
		t.Fatal("Load accepted BCRYPT_COST=99")
	}
}

func writeTargetsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "targets.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing targets file: %v", err)
	}
	return path
}

func TestLoadTargets(t *testing.T) {
	path := writeTargetsFile(t, `
targets:
  - server: ldap1.example.com
    bind_rdn: uid=%s,ou=people,dc=example,dc=com
    search_base_dn: ou=people,dc=example,dc=com
    search_filter: uid=%s
    group_attribute: ou
    group_template_id: g-template
  - server: ldap2.example.com:10389
    protocol_version: "3"
    disabled: true
    bind_rdn: cn=%s,dc=example,dc=com
    search_filter: cn=%s
    secondary_group_base_dn: ou=groups,dc=example,dc=com
    secondary_group_filter: (memberUid=%s)
`)

	targets, err := LoadTargets(path)
	if err != nil {
		t.Fatalf("LoadTargets: %v", err)
	}
	if len(targets) != 2 {
		t.Fatalf("targets: got %d, want 2", len(targets))
	}

	first := targets[0]
	if first.Host != "ldap1.example.com" || first.EffectivePort() != domain.DefaultPort {
		t.Errorf("first target server: got %s:%d", first.Host, first.EffectivePort())
	}
	if first.VersionPolicy != domain.VersionAuto {
		t.Errorf("first target version policy: got %v, want auto", first.VersionPolicy)
	}
	if first.GroupAssignmentAttribute != "ou" || first.GroupTemplateID != "g-template" {
		t.Errorf("first target group config: %q %q", first.GroupAssignmentAttribute, first.GroupTemplateID)
	}

	second := targets[1]
	if !second.Disabled {
		t.Error("second target not disabled")
	}
	if second.Host != "ldap2.example.com" || second.Port != 10389 {
		t.Errorf("second target server: got %s:%d", second.Host, second.Port)
	}
	if second.VersionPolicy != domain.VersionFixed || second.Version != 3 {
		t.Errorf("second target version: got policy=%v version=%d", second.VersionPolicy, second.Version)
	}
	if second.SecondaryGroupBaseDN == "" || second.SecondaryGroupFilterTemplate == "" {
		t.Error("second target secondary group config not loaded")
	}
}

func TestLoadTargets_TooMany(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("targets:\n")
	for i := 0; i <= domain.MaxTargets; i++ {
		sb.WriteString("  - server: ldap.example.com\n")
		sb.WriteString("    bind_rdn: uid=%s,dc=example,dc=com\n")
		sb.WriteString("    search_filter: uid=%s\n")
	}
	path := writeTargetsFile(t, sb.String())

	if _, err := LoadTargets(path); err == nil {
		t.Fatal("LoadTargets accepted more than the maximum number of targets")
	}
}

func TestLoadTargets_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing server", "targets:\n  - bind_rdn: uid=%s\n    search_filter: uid=%s\n"},
		{"bad protocol version", "targets:\n  - server: ldap.example.com\n    protocol_version: \"4\"\n    bind_rdn: uid=%s\n    search_filter: uid=%s\n"},
		{"bad port", "targets:\n  - server: ldap.example.com:notaport\n    bind_rdn: uid=%s\n    search_filter: uid=%s\n"},
		{"no placeholder in filter", "targets:\n  - server: ldap.example.com\n    bind_rdn: uid=%s\n    search_filter: (objectClass=*)\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTargetsFile(t, tt.yaml)
			if _, err := LoadTargets(path); err == nil {
				t.Error("LoadTargets accepted invalid config")
			}
		})
	}
}
