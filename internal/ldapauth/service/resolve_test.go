package service

import (
	"slices"
	"testing"

	"ldap-identity-bridge/internal/directory"
)

func TestResolveAttributes(t *testing.T) {
	entry := directory.Entry{
		DN: "uid=jdoe,ou=people,dc=example,dc=com",
		Attributes: map[string][]string{
			"uid":              {"  jdoe  "},
			"MAIL":             {"jdoe@example.com"}, // attribute names are case-insensitive
			"givenName":        {"Jane"},
			"sn":               {"Doe"},
			"telephoneNumber":  {" +1 555 0100 "},
			"mobile":           {"   "}, // blank after trimming
			"departmentNumber": {"R&D"},
			"o":                {"Example Corp"},
			"jpegPhoto":        {"\xff\xd8jpeg-bytes"},
		},
	}

	attrs := resolveAttributes(entry, "jdoe")

	if attrs.Nickname != "jdoe" {
		t.Errorf("nickname: got %q", attrs.Nickname)
	}
	if attrs.Email != "jdoe@example.com" {
		t.Errorf("email: got %q", attrs.Email)
	}
	if attrs.FirstName != "Jane" || attrs.LastName != "Doe" {
		t.Errorf("names: got %q %q", attrs.FirstName, attrs.LastName)
	}
	if got := attrs.CustomFields["officephone"]; got != "+1 555 0100" {
		t.Errorf("office phone not trimmed: got %q", got)
	}
	if _, ok := attrs.CustomFields["cellphone"]; ok {
		t.Error("blank mobile produced a field value")
	}
	if !slices.Equal(attrs.Organizations, []string{"R&D", "Example Corp"}) {
		t.Errorf("organizations: got %v", attrs.Organizations)
	}
	if string(attrs.Photo) != "\xff\xd8jpeg-bytes" {
		t.Errorf("photo: got %d bytes", len(attrs.Photo))
	}
}

func TestResolveAttributes_Sparse(t *testing.T) {
	entry := directory.Entry{
		DN:         "cn=minimal,dc=example,dc=com",
		Attributes: map[string][]string{"sn": {"Minimal"}},
	}

	attrs := resolveAttributes(entry, "minimal-login")

	if attrs.Nickname != "minimal-login" {
		t.Errorf("nickname fallback: got %q, want the login", attrs.Nickname)
	}
	if attrs.Email != "" || attrs.FirstName != "" {
		t.Errorf("absent attributes resolved non-empty: %q %q", attrs.Email, attrs.FirstName)
	}
	if len(attrs.CustomFields) != 0 || len(attrs.Organizations) != 0 || len(attrs.Photo) != 0 {
		t.Error("sparse entry produced extra fields")
	}
}
