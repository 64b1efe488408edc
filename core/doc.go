// Package core contains the canonical team-request domain contracts,
// entities, and the provisioning orchestration logic. Lower-level adapters
// must depend on this package; core must not depend on store-specific or
// transport-specific adapters.
package core
