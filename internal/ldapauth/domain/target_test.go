package domain

import "testing"

func validTarget() Target {
	return Target{
		Host:                 "ldap.example.com",
		BindRDNTemplate:      "uid=%s,ou=people,dc=example,dc=com",
		SearchFilterTemplate: "uid=%s",
	}
}

func TestTargetValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Target)
		wantErr bool
	}{
		{"valid", func(*Target) {}, false},
		{"missing host", func(t *Target) { t.Host = "" }, true},
		{"negative port", func(t *Target) { t.Port = -1 }, true},
		{"port too large", func(t *Target) { t.Port = 70000 }, true},
		{"bind template without placeholder", func(t *Target) { t.BindRDNTemplate = "cn=admin" }, true},
		{"filter template without placeholder", func(t *Target) { t.SearchFilterTemplate = "(objectClass=*)" }, true},
		{"fixed version 2", func(t *Target) { t.VersionPolicy = VersionFixed; t.Version = 2 }, false},
		{"fixed version 3", func(t *Target) { t.VersionPolicy = VersionFixed; t.Version = 3 }, false},
		{"fixed version out of range", func(t *Target) { t.VersionPolicy = VersionFixed; t.Version = 4 }, true},
		{"fixed version unset", func(t *Target) { t.VersionPolicy = VersionFixed }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tgt := validTarget()
			tt.mutate(&tgt)
			err := tgt.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate: got %v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func TestEffectivePort(t *testing.T) {
	tgt := validTarget()
	if got := tgt.EffectivePort(); got != DefaultPort {
		t.Errorf("default port: got %d, want %d", got, DefaultPort)
	}
	tgt.Port = 636
	if got := tgt.EffectivePort(); got != 636 {
		t.Errorf("explicit port: got %d, want 636", got)
	}
}

func TestSubstituteLogin(t *testing.T) {
	got := SubstituteLogin("uid=%s,ou=people,dc=example,dc=com", "jdoe")
	if got != "uid=jdoe,ou=people,dc=example,dc=com" {
		t.Errorf("SubstituteLogin: got %q", got)
	}
	if got := SubstituteLogin("(&(uid=%s)(memberUid=%s))", "jdoe"); got != "(&(uid=jdoe)(memberUid=jdoe))" {
		t.Errorf("every placeholder substituted: got %q", got)
	}
}
