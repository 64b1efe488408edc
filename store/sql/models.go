package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type teamRequestRecord struct {
	bun.BaseModel `bun:"table:team_requests,alias:tr"`

	ID                string                 `bun:"id,pk"`
	RequestedByUserID string                 `bun:"requested_by_user_id,notnull"`
	RequestedAt       time.Time              `bun:"requested_at,notnull"`
	TeamDisplayName   string                 `bun:"team_display_name,notnull"`
	TeamDescription   string                 `bun:"team_description,notnull"`
	TeamVisibility    string                 `bun:"team_visibility,notnull"`
	TeamAllowGuests   bool                   `bun:"team_allow_guests,notnull"`
	TeamTemplate      teamTemplatePayload    `bun:"team_template,type:jsonb,notnull"`
	TeamOwners        []string               `bun:"team_owners,type:jsonb,notnull"`
	TeamMembers       []string               `bun:"team_members,type:jsonb,notnull"`
	Status            string                 `bun:"status,notnull"`
	StatusHistory     []statusHistoryPayload `bun:"status_history,type:jsonb,notnull"`
	CreatedTeamID     string                 `bun:"created_team_id"`
	Error             string                 `bun:"error"`
	GraphRequests     []graphRequestPayload  `bun:"graph_requests,type:jsonb,notnull"`
	CreatedAt         time.Time              `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt         time.Time              `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type appConfigRecord struct {
	bun.BaseModel `bun:"table:team_app_configuration,alias:tac"`

	ID                     string                `bun:"id,pk"`
	TeamAllowGuestsDefault bool                  `bun:"team_allow_guests_default,notnull"`
	TeamVisibilityDefault  string                `bun:"team_visibility_default,notnull"`
	MinimumTeamOwners      int                   `bun:"minimum_team_owners,notnull"`
	TeamTemplates          []teamTemplatePayload `bun:"team_templates,type:jsonb,notnull"`
	CreatedAt              time.Time             `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt              time.Time             `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type teamTemplatePayload struct {
	ID               string `json:"id"`
	DisplayName      string `json:"displayName"`
	ShortDescription string `json:"shortDescription"`
}

type statusHistoryPayload struct {
	Status string    `json:"status"`
	At     time.Time `json:"at"`
}

type graphRequestPayload struct {
	TargetURI string `json:"targetUri"`
	Body      any    `json:"body"`
}
