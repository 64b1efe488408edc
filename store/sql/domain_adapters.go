package sqlstore

import (
	"time"

	"github.com/leeford/team-request-app/core"
)

func newTeamRequestRecord(request core.TeamRequest, now time.Time) *teamRequestRecord {
	return &teamRequestRecord{
		ID:                request.ID,
		RequestedByUserID: request.RequestedByUserID,
		RequestedAt:       request.RequestedAt.UTC(),
		TeamDisplayName:   request.TeamDisplayName,
		TeamDescription:   request.TeamDescription,
		TeamVisibility:    string(request.TeamVisibility),
		TeamAllowGuests:   request.TeamAllowGuests,
		TeamTemplate:      toTemplatePayload(request.TeamTemplate),
		TeamOwners:        copyStrings(request.TeamOwners),
		TeamMembers:       copyStrings(request.TeamMembers),
		Status:            string(request.Status),
		StatusHistory:     toHistoryPayloads(request.StatusHistory),
		CreatedTeamID:     request.CreatedTeamID,
		Error:             request.Error,
		GraphRequests:     toGraphRequestPayloads(request.GraphRequests),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func (r *teamRequestRecord) toDomain() core.TeamRequest {
	if r == nil {
		return core.TeamRequest{}
	}
	return core.TeamRequest{
		ID:                r.ID,
		RequestedByUserID: r.RequestedByUserID,
		RequestedAt:       r.RequestedAt,
		TeamDisplayName:   r.TeamDisplayName,
		TeamDescription:   r.TeamDescription,
		TeamVisibility:    core.TeamVisibility(r.TeamVisibility),
		TeamAllowGuests:   r.TeamAllowGuests,
		TeamTemplate:      fromTemplatePayload(r.TeamTemplate),
		TeamOwners:        copyStrings(r.TeamOwners),
		TeamMembers:       copyStrings(r.TeamMembers),
		Status:            core.RequestStatus(r.Status),
		StatusHistory:     fromHistoryPayloads(r.StatusHistory),
		CreatedTeamID:     r.CreatedTeamID,
		Error:             r.Error,
		GraphRequests:     fromGraphRequestPayloads(r.GraphRequests),
	}
}

func newAppConfigRecord(config core.AppConfig, now time.Time) *appConfigRecord {
	id := config.ID
	if id == "" {
		id = core.AppConfigID
	}
	templates := make([]teamTemplatePayload, 0, len(config.TeamTemplates))
	for _, template := range config.TeamTemplates {
		templates = append(templates, toTemplatePayload(template))
	}
	return &appConfigRecord{
		ID:                     id,
		TeamAllowGuestsDefault: config.TeamAllowGuestsDefault,
		TeamVisibilityDefault:  string(config.TeamVisibilityDefault),
		MinimumTeamOwners:      config.MinimumTeamOwners,
		TeamTemplates:          templates,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
}

func (r *appConfigRecord) toDomain() core.AppConfig {
	if r == nil {
		return core.AppConfig{}
	}
	templates := make([]core.TeamTemplate, 0, len(r.TeamTemplates))
	for _, template := range r.TeamTemplates {
		templates = append(templates, fromTemplatePayload(template))
	}
	return core.AppConfig{
		ID:                     r.ID,
		TeamAllowGuestsDefault: r.TeamAllowGuestsDefault,
		TeamVisibilityDefault:  core.TeamVisibility(r.TeamVisibilityDefault),
		MinimumTeamOwners:      r.MinimumTeamOwners,
		TeamTemplates:          templates,
	}
}

func toTemplatePayload(template core.TeamTemplate) teamTemplatePayload {
	return teamTemplatePayload{
		ID:               template.ID,
		DisplayName:      template.DisplayName,
		ShortDescription: template.ShortDescription,
	}
}

func fromTemplatePayload(payload teamTemplatePayload) core.TeamTemplate {
	return core.TeamTemplate{
		ID:               payload.ID,
		DisplayName:      payload.DisplayName,
		ShortDescription: payload.ShortDescription,
	}
}

func toHistoryPayloads(entries []core.StatusHistoryEntry) []statusHistoryPayload {
	out := make([]statusHistoryPayload, 0, len(entries))
	for _, entry := range entries {
		out = append(out, statusHistoryPayload{Status: string(entry.Status), At: entry.At.UTC()})
	}
	return out
}

func fromHistoryPayloads(payloads []statusHistoryPayload) []core.StatusHistoryEntry {
	out := make([]core.StatusHistoryEntry, 0, len(payloads))
	for _, payload := range payloads {
		out = append(out, core.StatusHistoryEntry{Status: core.RequestStatus(payload.Status), At: payload.At})
	}
	return out
}

func toGraphRequestPayloads(entries []core.GraphRequestEntry) []graphRequestPayload {
	out := make([]graphRequestPayload, 0, len(entries))
	for _, entry := range entries {
		out = append(out, graphRequestPayload{TargetURI: entry.TargetURI, Body: entry.Body})
	}
	return out
}

func fromGraphRequestPayloads(payloads []graphRequestPayload) []core.GraphRequestEntry {
	out := make([]core.GraphRequestEntry, 0, len(payloads))
	for _, payload := range payloads {
		out = append(out, core.GraphRequestEntry{TargetURI: payload.TargetURI, Body: payload.Body})
	}
	return out
}

func copyStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return append([]string{}, values...)
}
