package models

const (
	FraudDecisionTopic2Subscribe string = "fraud.decisions"
)

// FraudDecisionEvent is an external fraud review outcome for a session.
type FraudDecisionEvent struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	Reason    string `json:"reason"`
}
