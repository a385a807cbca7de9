package dto

import "basegraph.app/ticketsync/internal/model"

// EventResponse is the webhook reply: the processing result plus delivery
// bookkeeping.
type EventResponse struct {
	Status     model.Status   `json:"status"`
	Message    string         `json:"message"`
	TicketKeys []string       `json:"ticket_keys"`
	Actions    []string       `json:"actions"`
	Operations []model.Action `json:"operations"`
	Details    map[string]any `json:"details,omitempty"`
	DeliveryID string         `json:"delivery_id"`
	Duplicate  bool           `json:"duplicate"`
}

func NewEventResponse(result *model.Result, deliveryID string, duplicate bool) EventResponse {
	keys := result.TicketKeys
	if keys == nil {
		keys = []string{}
	}
	ops := result.Actions
	if ops == nil {
		ops = []model.Action{}
	}
	return EventResponse{
		Status:     result.Status,
		Message:    result.Message,
		TicketKeys: keys,
		Actions:    result.Descriptions(),
		Operations: ops,
		Details:    result.Details,
		DeliveryID: deliveryID,
		Duplicate:  duplicate,
	}
}

type HealthResponse struct {
	Status          string `json:"status"`
	JiraConnected   bool   `json:"jira_connected"`
	GitHubConnected bool   `json:"github_connected"`
	GitLabConnected bool   `json:"gitlab_connected"`
	RedisConnected  bool   `json:"redis_connected"`
}
