package types

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func NormalizePriority(raw string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "low":
		return PriorityLow, true
	case "medium":
		return PriorityMedium, true
	case "high":
		return PriorityHigh, true
	case "critical":
		return PriorityCritical, true
	default:
		return "", false
	}
}

// Urgent reports whether the priority qualifies for voice auto-play.
func (p Priority) Urgent() bool {
	return p == PriorityHigh || p == PriorityCritical
}

const (
	NotificationStatusPending   = "pending"
	NotificationStatusDelivered = "delivered"
	NotificationStatusApproved  = "approved"
	NotificationStatusRejected  = "rejected"
	NotificationStatusSent      = "sent"
)

// Notification is one entry of the notification queue. Entries are mutated
// only by approval responses and late voice_ready events.
type Notification struct {
	ID               string
	Type             string
	Title            string
	Message          string
	Priority         Priority
	Timestamp        string
	AgentID          string
	RequiresApproval bool
	Status           string
	VoiceAvailable   bool
	VoiceURL         string
	Data             map[string]any
}

// VoiceReady is the late-binding signal that a previously announced
// notification now has an audio asset.
type VoiceReady struct {
	NotificationID string
	VoiceURL       string
}

// IsControlPayload reports stream chatter that carries no notification.
func IsControlPayload(raw map[string]any) bool {
	switch asString(raw["type"]) {
	case "keepalive", "connected":
		return true
	}
	return false
}

// VoiceReadyFromPayload extracts a voice_ready event, if the payload is one.
func VoiceReadyFromPayload(raw map[string]any) (VoiceReady, bool) {
	if asString(raw["type"]) != "voice_ready" {
		return VoiceReady{}, false
	}
	return VoiceReady{
		NotificationID: asString(raw["notification_id"]),
		VoiceURL:       asString(raw["voice_url"]),
	}, true
}

// NormalizeNotification fills every required field of an inbound record, from
// either the history prefetch or the stream. notifyBase is the notification
// service base URL used to resolve relative voice URLs.
func NormalizeNotification(raw map[string]any, notifyBase string) Notification {
	id := asString(raw["id"])
	if id == "" {
		id = NewNotificationID()
	}

	priority, ok := NormalizePriority(asString(raw["priority"]))
	if !ok {
		priority = PriorityMedium
	}

	timestamp := asString(raw["created_at"])
	if timestamp == "" {
		timestamp = asString(raw["timestamp"])
	}
	if timestamp == "" {
		timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	title := asString(raw["title"])
	if title == "" {
		title = "Notification"
	}
	kind := asString(raw["type"])
	if kind == "" {
		kind = "info"
	}
	agent := asString(raw["agent_id"])
	if agent == "" {
		agent = "System"
	}

	requiresApproval := asBool(raw["requires_approval"])
	status := asString(raw["status"])
	if status == "" {
		if requiresApproval {
			status = NotificationStatusPending
		} else {
			status = NotificationStatusDelivered
		}
	}

	voiceURL := asString(raw["voice_url"])
	voiceAvailable := asBool(raw["has_voice"]) || voiceURL != ""

	return Notification{
		ID:               id,
		Type:             kind,
		Title:            title,
		Message:          asString(raw["message"]),
		Priority:         priority,
		Timestamp:        timestamp,
		AgentID:          agent,
		RequiresApproval: requiresApproval,
		Status:           status,
		VoiceAvailable:   voiceAvailable,
		VoiceURL:         ResolveVoiceURL(voiceURL, id, notifyBase),
		Data:             asMap(raw["data"]),
	}
}

// ResolveVoiceURL turns the server-reported voice URL into an absolute one.
// Relative URLs are prefixed with the notification service base; when no URL
// is reported but the id is known, the conventional voice path is synthesized.
func ResolveVoiceURL(url, id, notifyBase string) string {
	url = strings.TrimSpace(url)
	if url == "" && id == "" {
		return ""
	}
	if url == "" {
		url = "/api/notifications/" + id + "/voice"
	}
	if strings.HasPrefix(url, "http") {
		return url
	}
	return strings.TrimRight(notifyBase, "/") + url
}

// NewNotificationID synthesizes a stable id for records that arrive without
// one.
func NewNotificationID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	return strconv.FormatInt(time.Now().UnixNano(), 36)
}

func asString(value any) string {
	text, _ := value.(string)
	return text
}

func asBool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "1"
	default:
		return false
	}
}

func asMap(value any) map[string]any {
	m, _ := value.(map[string]any)
	return m
}
