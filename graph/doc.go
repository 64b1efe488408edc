// Package graph implements the core.GraphClient contract against the
// Microsoft Graph REST API: user search, group lookups, asynchronous team
// creation, membership grants and group settings.
package graph
