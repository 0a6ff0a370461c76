package service

import (
	"strings"

	"ldap-identity-bridge/internal/directory"
	"ldap-identity-bridge/internal/ldapauth/domain"
)

// fieldSpec ties a directory attribute to the custom field it populates.
// Definitions and their owning groups are created on demand the first time an
// attribute is seen.
type fieldSpec struct {
	attr  string
	code  string
	name  string
	group string
}

var customFieldSpecs = []fieldSpec{
	{attr: "roomNumber", code: "roomnumber", name: "Room number", group: "Address"},
	{attr: "businessCategory", code: "businesscategory", name: "Business category", group: "About me"},
	{attr: "telephoneNumber", code: "officephone", name: "Office phone", group: "Phone"},
	{attr: "mobile", code: "cellphone", name: "Cell phone", group: "Phone"},
	{attr: "employeeNumber", code: "employeenumber", name: "Employee number", group: "About me"},
	{attr: "title", code: "title", name: "Title", group: "About me"},
	{attr: "telexNumber", code: "telex", name: "Telex", group: "Phone"},
}

// organizationAttrs are resolved independently; a user may gain one
// organization from each.
var organizationAttrs = []string{"departmentNumber", "o"}

func specByCode(code string) (fieldSpec, bool) {
	for _, s := range customFieldSpecs {
		if s.code == code {
			return s, true
		}
	}
	return fieldSpec{}, false
}

// resolveAttributes maps one directory entry to normalized identity fields.
// Pure: no network or persistence calls. Every textual value is trimmed;
// blank-after-trim means absent, so no empty field records are ever created.
func resolveAttributes(e directory.Entry, login string) domain.ResolvedAttributes {
	attrs := domain.ResolvedAttributes{Nickname: login}
	if v := trimmedFirst(e, "uid"); v != "" {
		attrs.Nickname = v
	}
	attrs.Email = trimmedFirst(e, "mail")
	attrs.FirstName = trimmedFirst(e, "givenName")
	attrs.LastName = trimmedFirst(e, "sn")

	for _, spec := range customFieldSpecs {
		if v := trimmedFirst(e, spec.attr); v != "" {
			if attrs.CustomFields == nil {
				attrs.CustomFields = make(map[string]string)
			}
			attrs.CustomFields[spec.code] = v
		}
	}

	for _, attr := range organizationAttrs {
		if v := trimmedFirst(e, attr); v != "" {
			attrs.Organizations = append(attrs.Organizations, v)
		}
	}

	if photo := e.Values("jpegPhoto"); len(photo) > 0 && photo[0] != "" {
		attrs.Photo = []byte(photo[0])
	}
	return attrs
}

func trimmedFirst(e directory.Entry, attr string) string {
	return strings.TrimSpace(e.First(attr))
}
