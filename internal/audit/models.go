// Package audit implements the transactional-outbox audit trail. Events are
// written to the outbox table inside the same transaction as the operation
// they describe and published to Kafka by the outbox worker; Kafka is the
// durable audit log.
package audit

import (
	"time"
)

// Kind tags an audit event.
type Kind string

const (
	KindRLSBypass       Kind = "RLS_BYPASS"
	KindUserRegistered  Kind = "USER_REGISTERED"
	KindShareLinkAccess Kind = "SHARE_LINK_ACCESS"
)

// Event is one audit record. UserID is empty for anonymous events (public
// share-link access before any identity exists).
type Event struct {
	Kind      Kind      `json:"kind"`
	Reason    string    `json:"reason,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	ClientIP  string    `json:"client_ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
