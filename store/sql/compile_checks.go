package sqlstore

import "github.com/leeford/team-request-app/core"

var (
	_ core.RequestStore = (*RequestStore)(nil)
	_ core.RequestStore = (*CachedRequestStore)(nil)
)
