package authz

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"blockfunders/internal/cache"
	"blockfunders/internal/errors"
	"blockfunders/internal/model"
	"blockfunders/internal/repository"
)

const (
	permVersionKey = "perm_version"
	permCacheTTL   = 10 * time.Minute
)

// Authorizer resolves a user's effective permission set (the union over
// all assigned roles) and owns every mutation of the role/permission
// model, so the system-role guard cannot be bypassed by handlers writing
// to the store directly.
//
// Effective sets are cached in redis under a key that embeds a global
// version counter; any mutation bumps the counter, so stale sets are
// simply never read again instead of being chased key by key.
type Authorizer struct {
	roleRepo repository.RoleRepository
	permRepo repository.PermissionRepository
	userRepo repository.UserRepository
	cache    *cache.Client
}

// NewAuthorizer creates the authorization service.
func NewAuthorizer(
	roleRepo repository.RoleRepository,
	permRepo repository.PermissionRepository,
	userRepo repository.UserRepository,
	cacheClient *cache.Client,
) *Authorizer {
	return &Authorizer{
		roleRepo: roleRepo,
		permRepo: permRepo,
		userRepo: userRepo,
		cache:    cacheClient,
	}
}

// EffectivePermissions returns the sorted union of permission names across
// the user's roles.
func (a *Authorizer) EffectivePermissions(ctx context.Context, userID uint) ([]string, error) {
	key, cacheable := a.permCacheKey(ctx, userID)
	if cacheable {
		if data, _ := a.cache.Get(ctx, key); data != nil {
			var names []string
			if json.Unmarshal(data, &names) == nil {
				return names, nil
			}
		}
	}

	roles, err := a.roleRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}

	set := make(map[string]struct{})
	for _, role := range roles {
		for _, perm := range role.Permissions {
			set[perm.Name] = struct{}{}
		}
	}

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)

	if cacheable {
		if data, err := json.Marshal(names); err == nil {
			_ = a.cache.Set(ctx, key, data, permCacheTTL)
		}
	}
	return names, nil
}

// HasPermission reports whether the user's effective set contains name.
func (a *Authorizer) HasPermission(ctx context.Context, userID uint, name string) (bool, error) {
	names, err := a.EffectivePermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// AssignRole adds a role to a user.
func (a *Authorizer) AssignRole(ctx context.Context, user *model.User, role *model.Role) error {
	if err := a.userRepo.AppendRole(ctx, user, role); err != nil {
		return err
	}
	a.invalidate(ctx)
	return nil
}

// SyncRoles replaces a user's role set.
func (a *Authorizer) SyncRoles(ctx context.Context, user *model.User, roles []model.Role) error {
	if err := a.userRepo.ReplaceRoles(ctx, user, roles); err != nil {
		return err
	}
	a.invalidate(ctx)
	return nil
}

// SetRolePermissions replaces a role's permission set. Unknown permission
// names fail validation; system roles cannot be re-permissioned.
func (a *Authorizer) SetRolePermissions(ctx context.Context, roleID uint, names []string) ([]model.Permission, error) {
	role, err := a.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		return nil, translateNotFound(err)
	}
	if role.IsSystem {
		return nil, errors.ErrCannotModifySystemRole
	}

	perms, err := a.permRepo.FindByNames(ctx, names)
	if err != nil {
		return nil, err
	}
	if len(perms) != len(dedupe(names)) {
		return nil, errors.NewValidation("permissions", "one or more permissions do not exist")
	}

	if err := a.roleRepo.ReplacePermissions(ctx, role, perms); err != nil {
		return nil, err
	}
	a.invalidate(ctx)
	return perms, nil
}

// RenameRole renames a non-system role.
func (a *Authorizer) RenameRole(ctx context.Context, roleID uint, name string) (*model.Role, error) {
	role, err := a.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		return nil, translateNotFound(err)
	}
	if role.IsSystem {
		return nil, errors.ErrCannotModifySystemRole
	}

	role.Name = name
	if err := a.roleRepo.Update(ctx, role); err != nil {
		if err == gorm.ErrDuplicatedKey {
			return nil, errors.NewValidation("name", "name already taken")
		}
		return nil, err
	}
	return role, nil
}

// DeleteRole removes a non-system role together with its assignments.
func (a *Authorizer) DeleteRole(ctx context.Context, roleID uint) error {
	role, err := a.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		return translateNotFound(err)
	}
	if role.IsSystem {
		return errors.ErrCannotModifySystemRole
	}

	if err := a.roleRepo.Delete(ctx, roleID); err != nil {
		return err
	}
	a.invalidate(ctx)
	return nil
}

// permCacheKey embeds the current global permission version so bumped
// versions orphan old entries instead of requiring per-user deletes.
func (a *Authorizer) permCacheKey(ctx context.Context, userID uint) (string, bool) {
	ver, ok := a.cache.GetInt64(ctx, permVersionKey)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("perms:v%d:user:%d", ver, userID), true
}

func (a *Authorizer) invalidate(ctx context.Context) {
	_, _ = a.cache.Incr(ctx, permVersionKey)
}

func translateNotFound(err error) error {
	if err == gorm.ErrRecordNotFound {
		return errors.ErrNotFound
	}
	return err
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := names[:0:0]
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
