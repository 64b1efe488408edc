package graph

import "github.com/leeford/team-request-app/core"

var (
	_ core.GraphClient = (*Client)(nil)
	_ TokenProvider    = StaticTokenProvider("")
)
