package directory

import (
	"context"
	"slices"
)

// DemoColleagues is the directory served when no account database is configured.
var DemoColleagues = []Profile{
	{ID: "u2", Name: "Alex Rivera", Email: "alex.rivera@acertax.com", Avatar: "https://i.pravatar.cc/150?u=u2", Status: "online"},
	{ID: "u3", Name: "Jessica Park", Email: "jessica.park@acertax.com", Avatar: "https://i.pravatar.cc/150?u=u3", Status: "online"},
	{ID: "u4", Name: "Marcus Chen", Email: "marcus.chen@acertax.com", Avatar: "https://i.pravatar.cc/150?u=u4", Status: "online"},
	{ID: "u5", Name: "Sarah Miller", Email: "sarah.miller@acertax.com", Avatar: "https://i.pravatar.cc/150?u=u5", Status: "away"},
	{ID: "u6", Name: "David Wilson", Email: "david.wilson@acertax.com", Avatar: "https://i.pravatar.cc/150?u=u6", Status: "online"},
	{ID: "u7", Name: "Elena Rodriguez", Email: "elena.rodriguez@acertax.com", Avatar: "https://i.pravatar.cc/150?u=u7", Status: "online"},
}

// Static serves a fixed list of profiles.
type Static struct {
	profiles []Profile
}

// NewStatic returns a provider over profiles.
func NewStatic(profiles []Profile) *Static {
	return &Static{profiles: slices.Clone(profiles)}
}

// ListProfiles implements Provider.
func (s *Static) ListProfiles(_ context.Context, excludingUserID string) ([]Profile, error) {
	out := make([]Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		if p.ID != excludingUserID {
			out = append(out, p)
		}
	}
	return out, nil
}
