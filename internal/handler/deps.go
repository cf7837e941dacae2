package handler

import (
	"context"

	"connect/internal/app/assistant"
	"connect/internal/app/directory"
	"connect/internal/app/identity"
	"connect/internal/app/storage"
	"connect/internal/app/user"
	"connect/internal/app/workspace"
	"connect/internal/configs"
	"connect/internal/pkg/pow"
)

// AppDeps are the process-wide services the handlers depend on.
type AppDeps struct {
	Config    *configs.AppConfig
	Identity  *identity.Service
	Directory directory.Provider
	Assistant assistant.Provider

	// Avatars is nil when object storage is not configured.
	Avatars *storage.Avatars

	// Pow gates login; a disabled guard accepts every request.
	Pow *pow.Guard
}

// avatarResolver returns Avatars as a resolver, or nil when storage is disabled.
func (d *AppDeps) avatarResolver() directory.AvatarResolver {
	if d.Avatars == nil {
		return nil
	}
	return d.Avatars
}

// resolveUserAvatar turns a stored avatar key into a fetchable URL.
func (d *AppDeps) resolveUserAvatar(ctx context.Context, u user.User) user.User {
	if directory.IsURL(u.Avatar) {
		return u
	}
	if d.Avatars != nil {
		if url, err := d.Avatars.ResolveAvatar(ctx, u.Avatar); err == nil {
			u.Avatar = url
			return u
		}
	}
	u.Avatar = user.InitialsAvatar(u.Name)
	return u
}

// WorkspaceDeps builds the dependencies of a connection's workspace.
func (d *AppDeps) WorkspaceDeps() workspace.Deps {
	return workspace.Deps{
		Identity:      d.Identity,
		Directory:     d.Directory,
		Assistant:     d.Assistant,
		Avatars:       d.avatarResolver(),
		AllowedDomain: d.Config.AllowedEmailDomain,
		LogoutPolicy:  d.Config.LogoutPolicy,
		Mention:       d.Config.AssistantMention,
		HistorySize:   d.Config.AssistantHistorySize,
	}
}
