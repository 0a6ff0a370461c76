// Package service implements the directory authentication and
// identity-reconciliation engine: the ordered multi-server bind/search
// protocol and the create-vs-update policy for users, groups, organizations,
// custom fields, and avatars.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"ldap-identity-bridge/internal/directory"
	filedomain "ldap-identity-bridge/internal/file/domain"
	groupdomain "ldap-identity-bridge/internal/group/domain"
	"ldap-identity-bridge/internal/ldapauth/domain"
	orgdomain "ldap-identity-bridge/internal/organization/domain"
	"ldap-identity-bridge/internal/security"
	"ldap-identity-bridge/internal/telemetry"
	userdomain "ldap-identity-bridge/internal/user/domain"
	fielddomain "ldap-identity-bridge/internal/userfield/domain"
)

// UserStore is the minimal user persistence needed by the engine.
type UserStore interface {
	GetByLogin(ctx context.Context, login string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
	Update(ctx context.Context, u *userdomain.User) error
}

// GroupStore is the minimal group persistence needed by the engine.
type GroupStore interface {
	GetByID(ctx context.Context, id string) (*groupdomain.Group, error)
	GetByName(ctx context.Context, name string) (*groupdomain.Group, error)
	Create(ctx context.Context, g *groupdomain.Group) error
	MergeSecondaryGroups(ctx context.Context, userID string, groupIDs []string) error
}

// OrganizationStore is the minimal organization persistence needed by the engine.
type OrganizationStore interface {
	GetByName(ctx context.Context, name string) (*orgdomain.Org, error)
	Create(ctx context.Context, o *orgdomain.Org) error
	MergeUserOrganizations(ctx context.Context, userID string, orgIDs []string) error
}

// FieldStore is the minimal custom-field persistence needed by the engine.
type FieldStore interface {
	GetGroupByName(ctx context.Context, name string) (*fielddomain.FieldGroup, error)
	CreateGroup(ctx context.Context, g *fielddomain.FieldGroup) error
	GetDefinitionByCode(ctx context.Context, code string) (*fielddomain.FieldDefinition, error)
	CreateDefinition(ctx context.Context, d *fielddomain.FieldDefinition) error
	SetUserValue(ctx context.Context, userID, fieldID, value string) error
}

// FileStore is the minimal image-asset persistence needed by the engine.
type FileStore interface {
	Create(ctx context.Context, f *filedomain.File) error
}

// Deps carries the collaborators the engine is constructed with. Everything
// is injected; the engine holds no process-wide state.
type Deps struct {
	// Dialer opens directory connections. nil means the runtime has no
	// directory support; every attempt is rejected without touching stores.
	Dialer directory.Dialer

	Users  UserStore
	Groups GroupStore
	Orgs   OrganizationStore
	Fields FieldStore
	Files  FileStore

	Hasher *security.Hasher

	// Targets is the ordered configuration snapshot, at most
	// domain.MaxTargets entries.
	Targets []domain.Target
	// FallbackGroupID is the group used when no target-specific assignment
	// succeeds. Empty means no fallback: a user that cannot be assigned a
	// group is not created.
	FallbackGroupID string

	// Logger receives operator diagnostics. nil uses slog.Default().
	Logger *slog.Logger
	// Emitter receives audit events. nil disables them.
	Emitter telemetry.EventEmitter
}

// Service is the reconciliation engine. One instance may serve many
// sequential attempts; each attempt constructs its own caches.
type Service struct {
	dialer          directory.Dialer
	users           UserStore
	groups          GroupStore
	orgs            OrganizationStore
	fields          FieldStore
	files           FileStore
	hasher          *security.Hasher
	targets         []domain.Target
	fallbackGroupID string

	log     *slog.Logger
	emitter telemetry.EventEmitter
	tracer  trace.Tracer
	counter metric.Int64Counter

	now   func() time.Time
	newID func() string
}

// NewService returns an engine wired with the given dependencies.
func NewService(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		dialer:          d.Dialer,
		users:           d.Users,
		groups:          d.Groups,
		orgs:            d.Orgs,
		fields:          d.Fields,
		files:           d.Files,
		hasher:          d.Hasher,
		targets:         d.Targets,
		fallbackGroupID: d.FallbackGroupID,
		log:             logger,
		emitter:         d.Emitter,
		tracer:          otel.Tracer("ldapauth"),
		now:             func() time.Time { return time.Now().UTC() },
		newID:           uuid.NewString,
	}
	counter, err := otel.Meter("ldapauth").Int64Counter("ldapauth.attempts",
		metric.WithDescription("Authentication attempts by outcome"))
	if err == nil {
		s.counter = counter
	}
	return s
}

// NeedsRawSecret reports that the engine consumes the raw secret: the caller
// must not attempt a login with only a digest, since a directory bind needs
// the plaintext.
func (s *Service) NeedsRawSecret() bool { return true }

// Authenticate runs one authentication attempt: each enabled target in order
// is connected, bound, searched, and reconciled until one fully succeeds.
// Per-target failures are absorbed and logged; the caller only ever observes
// accepted or not accepted. locale is the host's locale hint, applied when a
// new identity is created.
func (s *Service) Authenticate(ctx context.Context, creds domain.Credentials, locale string) (*domain.Result, error) {
	ctx, span := s.tracer.Start(ctx, "ldapauth.Authenticate",
		trace.WithAttributes(attribute.String("login", creds.Login)))
	defer span.End()

	res := &domain.Result{TargetIndex: -1}
	switch {
	case s.dialer == nil:
		s.log.Warn("directory support unavailable, rejecting", "login", creds.Login)
		s.finish(ctx, creds.Login, res, "unsupported")
		return res, nil
	case len(s.targets) == 0:
		s.log.Debug("no directory targets configured", "login", creds.Login)
		s.finish(ctx, creds.Login, res, "no_targets")
		return res, nil
	}

	caches := newAttemptCaches()
	for idx, tgt := range enabledTargets(s.targets) {
		if outcome := s.tryTarget(ctx, caches, idx, tgt, creds, locale); outcome != nil {
			res = outcome
			break
		}
	}

	outcome := "rejected"
	if res.Accepted {
		outcome = "accepted"
	}
	s.finish(ctx, creds.Login, res, outcome)
	return res, nil
}

// tryTarget processes one target to completion. A nil return means the
// target failed in a recoverable way and the engine advances to the next; a
// non-nil result means the attempt succeeded and iteration stops.
func (s *Service) tryTarget(ctx context.Context, caches *attemptCaches, idx int, tgt domain.Target, creds domain.Credentials, locale string) *domain.Result {
	log := s.log.With("target", idx, "host", tgt.Host, "port", tgt.EffectivePort())

	conn, err := s.dialer.Dial(ctx, tgt.Host, tgt.EffectivePort())
	if err != nil {
		log.Debug("connect failed", "error", err)
		return nil
	}
	defer conn.Close()
	log.Debug("connected")

	// The negotiated version stays on the connection for this target's
	// searches; the initial one is restored on every exit path.
	initial := conn.ProtocolVersion()
	defer func() {
		if err := conn.SetProtocolVersion(initial); err != nil {
			log.Debug("restoring protocol version failed", "version", initial, "error", err)
		}
	}()

	version, err := negotiateBind(conn, tgt, creds.Login, creds.Secret, log)
	if err != nil {
		log.Debug("bind failed", "error", err)
		return nil
	}
	log.Debug("bound", "protocol_version", version)

	filter := domain.SubstituteLogin(tgt.SearchFilterTemplate, directory.EscapeFilter(creds.Login))
	entries, err := conn.Search(tgt.SearchBaseDN, filter, nil)
	if err != nil {
		log.Debug("search failed", "base_dn", tgt.SearchBaseDN, "filter", filter, "error", err)
		return nil
	}
	if len(entries) != 1 {
		// Ambiguous or absent identity: this target does not recognize the
		// login. Not a directory failure.
		log.Debug("search did not match exactly one entry", "count", len(entries))
		return nil
	}
	entry := entries[0]
	attrs := resolveAttributes(entry, creds.Login)

	user, err := s.users.GetByLogin(ctx, creds.Login)
	if err != nil {
		log.Error("user lookup failed", "error", err)
		return nil
	}

	created := false
	if user != nil {
		if err := s.updateUser(ctx, user, attrs, log); err != nil {
			log.Error("user update failed", "error", err)
			return nil
		}
	} else {
		user = s.buildUser(creds.Login, attrs, locale)
		if !s.assignPrimaryGroup(ctx, user, entry, tgt, log) {
			log.Debug("not creating user: no group could be assigned")
			return nil
		}
		if err := user.Validate(); err != nil {
			log.Error("new user invalid", "error", err)
			return nil
		}
		hash, err := security.NewOpaqueCredential(s.hasher)
		if err != nil {
			log.Error("credential generation failed", "error", err)
			return nil
		}
		user.PasswordHash = hash
		if err := s.users.Create(ctx, user); err != nil {
			log.Error("user create failed", "error", err)
			return nil
		}
		created = true
		log.Info("created user", "user_id", user.ID)
	}

	if err := s.applyCustomFields(ctx, caches, user, attrs); err != nil {
		log.Error("custom field reconciliation failed", "error", err)
		return nil
	}
	if err := s.mergeOrganizations(ctx, caches, user, attrs); err != nil {
		log.Error("organization reconciliation failed", "error", err)
		return nil
	}
	if err := s.attachAvatar(ctx, user, attrs); err != nil {
		log.Error("avatar attachment failed", "error", err)
		return nil
	}

	// Best-effort: never aborts an otherwise successful attempt.
	s.reconcileSecondaryGroups(ctx, conn, tgt, user, creds.Login, log)

	return &domain.Result{Accepted: true, UserID: user.ID, Created: created, TargetIndex: idx}
}

// buildUser constructs a new identity from resolved attributes. The primary
// group and credential are filled in by the caller before persisting.
func (s *Service) buildUser(login string, attrs domain.ResolvedAttributes, locale string) *userdomain.User {
	now := s.now()
	return &userdomain.User{
		ID:        s.newID(),
		Login:     login,
		Nickname:  attrs.Nickname,
		FirstName: attrs.FirstName,
		LastName:  attrs.LastName,
		Email:     attrs.Email,
		Locale:    locale,
		Status:    userdomain.UserStatusAutoActivated,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// updateUser mutates the existing identity from resolved attributes. Only
// present attributes are applied; an absent attribute never clears a field.
// The primary group is never changed here: reassigning it on every login
// would fight manual administrative overrides. The opaque credential is
// regenerated so a stale locally stored secret can never authenticate.
func (s *Service) updateUser(ctx context.Context, user *userdomain.User, attrs domain.ResolvedAttributes, log *slog.Logger) error {
	if attrs.Nickname != "" {
		user.Nickname = attrs.Nickname
	}
	if attrs.FirstName != "" {
		user.FirstName = attrs.FirstName
	}
	if attrs.LastName != "" {
		user.LastName = attrs.LastName
	}
	if attrs.Email != "" {
		user.Email = attrs.Email
	}
	hash, err := security.NewOpaqueCredential(s.hasher)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.Status = userdomain.UserStatusAutoActivated
	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	log.Debug("updated user", "user_id", user.ID)
	return nil
}

// assignPrimaryGroup resolves the group a new user is created with:
// the group named by the target's assignment attribute, else a clone of the
// configured template under that name, else the global fallback group.
// Returns false when no group can be assigned; the user must not be created.
func (s *Service) assignPrimaryGroup(ctx context.Context, user *userdomain.User, entry directory.Entry, tgt domain.Target, log *slog.Logger) bool {
	if tgt.GroupAssignmentAttribute != "" {
		if value := trimmedFirst(entry, tgt.GroupAssignmentAttribute); value != "" {
			log.Debug("assigning group by attribute", "attribute", tgt.GroupAssignmentAttribute, "value", value)
			if id, ok := s.groupByValue(ctx, value, tgt, log); ok {
				user.GroupID = id
				return true
			}
		}
	}
	if s.fallbackGroupID == "" {
		log.Debug("no fallback group configured")
		return false
	}
	group, err := s.groups.GetByID(ctx, s.fallbackGroupID)
	if err != nil || group == nil {
		log.Debug("fallback group not found", "group_id", s.fallbackGroupID, "error", err)
		return false
	}
	log.Debug("using fallback group", "group", group.Name)
	user.GroupID = group.ID
	return true
}

// groupByValue finds the group named by the assignment value, cloning the
// target's template when the name is unknown. An existing group always wins
// over the template.
func (s *Service) groupByValue(ctx context.Context, value string, tgt domain.Target, log *slog.Logger) (string, bool) {
	group, err := s.groups.GetByName(ctx, value)
	if err != nil {
		log.Error("group lookup failed", "name", value, "error", err)
		return "", false
	}
	if group != nil {
		log.Debug("assigning existing group", "group", group.Name)
		return group.ID, true
	}
	if tgt.GroupTemplateID == "" {
		log.Debug("group does not exist and no template configured", "name", value)
		return "", false
	}
	template, err := s.groups.GetByID(ctx, tgt.GroupTemplateID)
	if err != nil || template == nil {
		log.Debug("template group not found", "group_id", tgt.GroupTemplateID, "error", err)
		return "", false
	}
	clone := template.CloneNamed(value)
	clone.ID = s.newID()
	clone.CreatedAt = s.now()
	if err := s.groups.Create(ctx, clone); err != nil {
		log.Error("group create failed", "name", value, "error", err)
		return "", false
	}
	log.Info("created group from template", "group", clone.Name, "template", template.Name)
	return clone.ID, true
}

// applyCustomFields upserts one value per resolved custom field, creating
// definitions and field groups on demand through the attempt caches.
func (s *Service) applyCustomFields(ctx context.Context, caches *attemptCaches, user *userdomain.User, attrs domain.ResolvedAttributes) error {
	for code, value := range attrs.CustomFields {
		fieldID, err := s.fieldDefinitionID(ctx, caches, code)
		if err != nil {
			return err
		}
		if err := s.fields.SetUserValue(ctx, user.ID, fieldID, value); err != nil {
			return err
		}
	}
	return nil
}

// mergeOrganizations resolves each organization name and extends the user's
// memberships. Existing memberships are never dropped.
func (s *Service) mergeOrganizations(ctx context.Context, caches *attemptCaches, user *userdomain.User, attrs domain.ResolvedAttributes) error {
	if len(attrs.Organizations) == 0 {
		return nil
	}
	ids := make([]string, 0, len(attrs.Organizations))
	for _, name := range attrs.Organizations {
		id, err := s.organizationID(ctx, caches, name)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	return s.orgs.MergeUserOrganizations(ctx, user.ID, ids)
}

// attachAvatar stores resolved photo bytes as an image asset and makes it
// the avatar only when the user has none; an existing avatar is never
// overwritten.
func (s *Service) attachAvatar(ctx context.Context, user *userdomain.User, attrs domain.ResolvedAttributes) error {
	if len(attrs.Photo) == 0 {
		return nil
	}
	asset := &filedomain.File{
		ID:          s.newID(),
		UserID:      user.ID,
		ContentType: "image/jpeg",
		Content:     attrs.Photo,
		CreatedAt:   s.now(),
	}
	if err := s.files.Create(ctx, asset); err != nil {
		return err
	}
	if user.AvatarFileID != "" {
		return nil
	}
	user.AvatarFileID = asset.ID
	user.UpdatedAt = s.now()
	return s.users.Update(ctx, user)
}

// reconcileSecondaryGroups runs the optional second search and merges the
// returned cn values into the user's secondary memberships, creating groups
// by name on demand. Everything here is best-effort: failures are logged and
// never abort the attempt.
func (s *Service) reconcileSecondaryGroups(ctx context.Context, conn directory.Conn, tgt domain.Target, user *userdomain.User, login string, log *slog.Logger) {
	if tgt.SecondaryGroupBaseDN == "" || tgt.SecondaryGroupFilterTemplate == "" {
		return
	}
	filter := domain.SubstituteLogin(tgt.SecondaryGroupFilterTemplate, directory.EscapeFilter(login))
	entries, err := conn.Search(tgt.SecondaryGroupBaseDN, filter, []string{"cn"})
	if err != nil {
		log.Debug("secondary group search failed", "base_dn", tgt.SecondaryGroupBaseDN, "error", err)
		return
	}
	var ids []string
	for _, e := range entries {
		name := trimmedFirst(e, "cn")
		if name == "" {
			continue
		}
		group, err := s.groups.GetByName(ctx, name)
		if err != nil {
			log.Debug("secondary group lookup failed", "name", name, "error", err)
			return
		}
		if group == nil {
			group = &groupdomain.Group{ID: s.newID(), Name: name, CreatedAt: s.now()}
			if err := s.groups.Create(ctx, group); err != nil {
				log.Debug("secondary group create failed", "name", name, "error", err)
				return
			}
		}
		ids = append(ids, group.ID)
	}
	if len(ids) == 0 {
		return
	}
	if err := s.groups.MergeSecondaryGroups(ctx, user.ID, ids); err != nil {
		log.Debug("secondary group merge failed", "error", err)
		return
	}
	log.Debug("merged secondary groups", "count", len(ids))
}

// finish records the attempt's metric and audit event.
func (s *Service) finish(ctx context.Context, login string, res *domain.Result, outcome string) {
	if s.counter != nil {
		s.counter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
	if s.emitter != nil {
		_ = s.emitter.Emit(ctx, &telemetry.AuthEvent{
			Login:       login,
			Outcome:     outcome,
			UserID:      res.UserID,
			Created:     res.Created,
			TargetIndex: res.TargetIndex,
			OccurredAt:  s.now(),
		})
	}
}
