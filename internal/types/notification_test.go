package types

import (
	"testing"
	"time"
)

const testBase = "http://127.0.0.1:5001"

func TestNormalizeNotificationDefaults(t *testing.T) {
	n := NormalizeNotification(map[string]any{}, testBase)

	if n.ID == "" {
		t.Fatalf("expected synthesized id")
	}
	if n.Type != "info" {
		t.Fatalf("expected type info, got %q", n.Type)
	}
	if n.Title != "Notification" {
		t.Fatalf("expected default title, got %q", n.Title)
	}
	if n.Priority != PriorityMedium {
		t.Fatalf("expected medium priority, got %q", n.Priority)
	}
	if n.AgentID != "System" {
		t.Fatalf("expected System agent, got %q", n.AgentID)
	}
	if n.Status != NotificationStatusDelivered {
		t.Fatalf("expected delivered status, got %q", n.Status)
	}
	if _, err := time.Parse(time.RFC3339, n.Timestamp); err != nil {
		t.Fatalf("expected RFC3339 timestamp, got %q: %v", n.Timestamp, err)
	}
	if n.VoiceAvailable {
		t.Fatalf("expected no voice without has_voice or voice_url")
	}
}

func TestNormalizeNotificationApprovalPending(t *testing.T) {
	n := NormalizeNotification(map[string]any{
		"id":                "n3",
		"requires_approval": true,
	}, testBase)

	if !n.RequiresApproval {
		t.Fatalf("expected requires_approval")
	}
	if n.Status != NotificationStatusPending {
		t.Fatalf("expected pending status, got %q", n.Status)
	}
}

func TestNormalizeNotificationResolvesRelativeVoiceURL(t *testing.T) {
	n := NormalizeNotification(map[string]any{
		"id":        "n1",
		"has_voice": true,
		"voice_url": "/api/notifications/n1/voice",
	}, testBase)

	if !n.VoiceAvailable {
		t.Fatalf("expected voice available")
	}
	want := testBase + "/api/notifications/n1/voice"
	if n.VoiceURL != want {
		t.Fatalf("voice url = %q, want %q", n.VoiceURL, want)
	}
}

func TestNormalizeNotificationKeepsAbsoluteVoiceURL(t *testing.T) {
	n := NormalizeNotification(map[string]any{
		"id":        "n1",
		"voice_url": "https://cdn.example/voice.mp3",
	}, testBase)

	if n.VoiceURL != "https://cdn.example/voice.mp3" {
		t.Fatalf("expected absolute url kept, got %q", n.VoiceURL)
	}
	if !n.VoiceAvailable {
		t.Fatalf("voice_url alone should imply availability")
	}
}

func TestResolveVoiceURLSynthesizesFromID(t *testing.T) {
	got := ResolveVoiceURL("", "n9", testBase)
	want := testBase + "/api/notifications/n9/voice"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if ResolveVoiceURL("", "", testBase) != "" {
		t.Fatalf("expected empty url without id")
	}
}

func TestVoiceReadyFromPayload(t *testing.T) {
	event, ok := VoiceReadyFromPayload(map[string]any{
		"type":            "voice_ready",
		"notification_id": "n2",
		"voice_url":       "/api/notifications/n2/voice",
	})
	if !ok {
		t.Fatalf("expected voice_ready payload")
	}
	if event.NotificationID != "n2" {
		t.Fatalf("unexpected notification id %q", event.NotificationID)
	}

	if _, ok := VoiceReadyFromPayload(map[string]any{"type": "info"}); ok {
		t.Fatalf("info payload is not voice_ready")
	}
}

func TestIsControlPayload(t *testing.T) {
	for _, kind := range []string{"keepalive", "connected"} {
		if !IsControlPayload(map[string]any{"type": kind}) {
			t.Fatalf("expected %q to be control payload", kind)
		}
	}
	if IsControlPayload(map[string]any{"type": "workflow_update"}) {
		t.Fatalf("workflow_update is not control payload")
	}
}

func TestPriorityUrgent(t *testing.T) {
	cases := map[Priority]bool{
		PriorityLow:      false,
		PriorityMedium:   false,
		PriorityHigh:     true,
		PriorityCritical: true,
	}
	for priority, want := range cases {
		if priority.Urgent() != want {
			t.Fatalf("%s urgent = %v, want %v", priority, priority.Urgent(), want)
		}
	}
}
