package domain

import "strings"

var twilioStatuses = map[string]MessageStatus{
	"queued":      StatusPending,
	"sent":        StatusSent,
	"delivered":   StatusDelivered,
	"failed":      StatusFailed,
	"undelivered": StatusFailed,
}

var sendGridEventStatuses = map[string]MessageStatus{
	"processed": StatusSent,
	"delivered": StatusDelivered,
	"bounce":    StatusFailed,
	"dropped":   StatusFailed,
	"deferred":  StatusPending,
}

// MapTwilioStatus maps a Twilio MessageStatus onto the canonical status.
// Unknown values map to SENT; known reports whether the value was in the table.
func MapTwilioStatus(twilioStatus string) (status MessageStatus, known bool) {
	status, known = twilioStatuses[strings.ToLower(twilioStatus)]
	if !known {
		return StatusSent, false
	}
	return status, true
}

// MapSendGridEvent maps a SendGrid event type onto the canonical status.
// Engagement events (open, click, spam_report, unsubscribe) return false and
// must not change the status.
func MapSendGridEvent(eventType string) (MessageStatus, bool) {
	status, ok := sendGridEventStatuses[strings.ToLower(eventType)]
	return status, ok
}

func isTerminal(s MessageStatus) bool {
	return s == StatusDelivered || s == StatusFailed
}

// ResolveStatus returns the status a message should end up in when a provider
// reports next. With guard off the latest report always wins. With guard on a
// DELIVERED or FAILED message is never moved back to PENDING or SENT.
func ResolveStatus(current, next MessageStatus, guard bool) MessageStatus {
	if guard && isTerminal(current) && !isTerminal(next) {
		return current
	}
	return next
}
