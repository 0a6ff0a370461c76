package service

import (
	"context"
	"fmt"

	orgdomain "ldap-identity-bridge/internal/organization/domain"
	fielddomain "ldap-identity-bridge/internal/userfield/domain"
)

// attemptCaches holds the lookup caches for one authentication attempt. A
// fresh set is constructed per attempt and discarded with it, so stale
// cross-attempt data cannot leak. Not safe for concurrent use; each attempt
// owns its own instance.
type attemptCaches struct {
	fieldGroups map[string]string // group name → id
	fieldDefs   map[string]string // field code → definition id
	orgs        map[string]string // organization name → id
}

func newAttemptCaches() *attemptCaches {
	return &attemptCaches{
		fieldGroups: make(map[string]string),
		fieldDefs:   make(map[string]string),
		orgs:        make(map[string]string),
	}
}

// fieldDefinitionID returns the definition ID for a field code, creating the
// definition (and its owning group) on first sight.
func (s *Service) fieldDefinitionID(ctx context.Context, caches *attemptCaches, code string) (string, error) {
	if id, ok := caches.fieldDefs[code]; ok {
		return id, nil
	}
	spec, ok := specByCode(code)
	if !ok {
		return "", fmt.Errorf("unknown custom field code %q", code)
	}
	def, err := s.fields.GetDefinitionByCode(ctx, code)
	if err != nil {
		return "", err
	}
	if def == nil {
		groupID, err := s.fieldGroupID(ctx, caches, spec.group)
		if err != nil {
			return "", err
		}
		def = &fielddomain.FieldDefinition{
			ID:      s.newID(),
			Code:    spec.code,
			Name:    spec.name,
			GroupID: groupID,
		}
		if err := s.fields.CreateDefinition(ctx, def); err != nil {
			return "", err
		}
	}
	caches.fieldDefs[code] = def.ID
	return def.ID, nil
}

func (s *Service) fieldGroupID(ctx context.Context, caches *attemptCaches, name string) (string, error) {
	if id, ok := caches.fieldGroups[name]; ok {
		return id, nil
	}
	group, err := s.fields.GetGroupByName(ctx, name)
	if err != nil {
		return "", err
	}
	if group == nil {
		group = &fielddomain.FieldGroup{ID: s.newID(), Name: name}
		if err := s.fields.CreateGroup(ctx, group); err != nil {
			return "", err
		}
	}
	caches.fieldGroups[name] = group.ID
	return group.ID, nil
}

// organizationID returns the organization ID for a name, creating the
// organization on first sight.
func (s *Service) organizationID(ctx context.Context, caches *attemptCaches, name string) (string, error) {
	if id, ok := caches.orgs[name]; ok {
		return id, nil
	}
	org, err := s.orgs.GetByName(ctx, name)
	if err != nil {
		return "", err
	}
	if org == nil {
		org = &orgdomain.Org{ID: s.newID(), Name: name, CreatedAt: s.now()}
		if err := s.orgs.Create(ctx, org); err != nil {
			return "", err
		}
	}
	caches.orgs[name] = org.ID
	return org.ID, nil
}
