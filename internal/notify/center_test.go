package notify

import (
	"fmt"
	"testing"

	"sourcebot/internal/types"
)

const testBase = "http://127.0.0.1:5001"

func streamPayload(id string, priority string) map[string]any {
	return map[string]any{
		"id":       id,
		"type":     "info",
		"title":    "Update",
		"message":  "something happened",
		"priority": priority,
	}
}

func TestHandleEventPrependsAndCountsUnread(t *testing.T) {
	c := NewCenter(testBase)
	c.HandleEvent(streamPayload("n1", "low"))
	c.HandleEvent(streamPayload("n2", "medium"))

	if c.Len() != 2 {
		t.Fatalf("len = %d", c.Len())
	}
	if c.Notifications()[0].ID != "n2" {
		t.Fatalf("newest first violated: %+v", c.Notifications()[0])
	}
	if c.UnreadCount() != 2 {
		t.Fatalf("unread = %d", c.UnreadCount())
	}
}

func TestHandleEventCapsQueue(t *testing.T) {
	c := NewCenter(testBase)
	for i := 0; i < MaxNotifications+5; i++ {
		c.HandleEvent(streamPayload(fmt.Sprintf("n%d", i), "low"))
	}
	if c.Len() != MaxNotifications {
		t.Fatalf("len = %d, want %d", c.Len(), MaxNotifications)
	}
	if c.Notifications()[0].ID != fmt.Sprintf("n%d", MaxNotifications+4) {
		t.Fatalf("newest entry missing after truncation")
	}
	if _, ok := c.Find("n0"); ok {
		t.Fatalf("oldest entry should have fallen off")
	}
}

func TestHandleEventToastDurations(t *testing.T) {
	c := NewCenter(testBase)

	effects := c.HandleEvent(streamPayload("n1", "critical"))
	if effects.Toast == nil || effects.Toast.Duration != ToastDurationCritical {
		t.Fatalf("critical toast = %+v", effects.Toast)
	}

	effects = c.HandleEvent(streamPayload("n2", "high"))
	if effects.Toast == nil || effects.Toast.Duration != ToastDurationDefault {
		t.Fatalf("high toast = %+v", effects.Toast)
	}
}

func TestHandleEventAutoPlayOnlyForUrgentVoice(t *testing.T) {
	c := NewCenter(testBase)

	payload := streamPayload("n1", "high")
	payload["has_voice"] = true
	effects := c.HandleEvent(payload)
	if effects.AutoPlay == nil {
		t.Fatalf("expected auto-play for urgent voice notification")
	}
	if effects.AutoPlay.Delay != AutoPlayDelayStream {
		t.Fatalf("delay = %v", effects.AutoPlay.Delay)
	}

	payload = streamPayload("n2", "medium")
	payload["has_voice"] = true
	if effects := c.HandleEvent(payload); effects.AutoPlay != nil {
		t.Fatalf("medium priority must not auto-play")
	}

	if effects := c.HandleEvent(streamPayload("n3", "critical")); effects.AutoPlay != nil {
		t.Fatalf("urgent without voice must not auto-play")
	}
}

func TestVoiceReadyUpdatesEntryInPlace(t *testing.T) {
	c := NewCenter(testBase)
	c.HandleEvent(streamPayload("n1", "high"))
	c.HandleEvent(streamPayload("n2", "low"))
	unread := c.UnreadCount()

	effects := c.HandleEvent(map[string]any{
		"type":            "voice_ready",
		"notification_id": "n1",
		"voice_url":       "/api/notifications/n1/voice",
	})
	if effects.Toast != nil {
		t.Fatalf("voice_ready must not toast")
	}
	if effects.AutoPlay == nil || effects.AutoPlay.Delay != AutoPlayDelayVoiceReady {
		t.Fatalf("auto-play = %+v", effects.AutoPlay)
	}

	n, ok := c.Find("n1")
	if !ok || !n.VoiceAvailable {
		t.Fatalf("entry not updated: %+v", n)
	}
	if n.VoiceURL != testBase+"/api/notifications/n1/voice" {
		t.Fatalf("voice url = %q", n.VoiceURL)
	}
	if c.Len() != 2 {
		t.Fatalf("voice_ready must not add entries, len = %d", c.Len())
	}
	if c.UnreadCount() != unread {
		t.Fatalf("voice_ready must not change unread count")
	}
}

func TestVoiceReadyForUnknownIDIsNoOp(t *testing.T) {
	c := NewCenter(testBase)
	c.HandleEvent(streamPayload("n1", "low"))

	effects := c.HandleEvent(map[string]any{
		"type":            "voice_ready",
		"notification_id": "missing",
		"voice_url":       "/api/notifications/missing/voice",
	})
	if effects.Toast != nil || effects.AutoPlay != nil {
		t.Fatalf("unexpected effects: %+v", effects)
	}
	if c.Len() != 1 {
		t.Fatalf("len = %d", c.Len())
	}
}

func TestVoiceReadyNonUrgentDoesNotAutoPlay(t *testing.T) {
	c := NewCenter(testBase)
	c.HandleEvent(streamPayload("n1", "medium"))

	effects := c.HandleEvent(map[string]any{
		"type":            "voice_ready",
		"notification_id": "n1",
	})
	if effects.AutoPlay != nil {
		t.Fatalf("medium priority must not auto-play on voice_ready")
	}
	n, _ := c.Find("n1")
	if !n.VoiceAvailable {
		t.Fatalf("voice flag not set")
	}
}

func TestSeedHistoryMarksAllUnreadAndFindsUrgentVoice(t *testing.T) {
	c := NewCenter(testBase)
	play, ok := c.SeedHistory([]map[string]any{
		{"id": "h1", "priority": "low"},
		{"id": "h2", "priority": "critical", "has_voice": true},
		{"id": "h3", "priority": "high", "has_voice": true},
	})
	if c.Len() != 3 {
		t.Fatalf("len = %d", c.Len())
	}
	if c.UnreadCount() != 3 {
		t.Fatalf("unread = %d", c.UnreadCount())
	}
	if !ok {
		t.Fatalf("expected auto-play from history")
	}
	if play.NotificationID != "h2" {
		t.Fatalf("expected first urgent voice entry, got %q", play.NotificationID)
	}
	if play.Delay != AutoPlayDelayHistory {
		t.Fatalf("delay = %v", play.Delay)
	}
}

func TestSeedHistoryReplacesQueue(t *testing.T) {
	c := NewCenter(testBase)
	c.HandleEvent(streamPayload("stale", "low"))

	_, ok := c.SeedHistory([]map[string]any{{"id": "h1"}})
	if ok {
		t.Fatalf("no urgent voice entry, no auto-play expected")
	}
	if c.Len() != 1 {
		t.Fatalf("len = %d", c.Len())
	}
	if _, found := c.Find("stale"); found {
		t.Fatalf("seed must replace the queue")
	}
}

func TestApplyApproval(t *testing.T) {
	c := NewCenter(testBase)
	payload := streamPayload("n1", "high")
	payload["requires_approval"] = true
	c.HandleEvent(payload)

	if !c.ApplyApproval("n1", true) {
		t.Fatalf("approval not applied")
	}
	n, _ := c.Find("n1")
	if n.Status != types.NotificationStatusApproved || n.RequiresApproval {
		t.Fatalf("after approve: %+v", n)
	}

	c.ApplyApproval("n1", false)
	n, _ = c.Find("n1")
	if n.Status != types.NotificationStatusRejected {
		t.Fatalf("after reject: %+v", n)
	}

	if c.ApplyApproval("missing", true) {
		t.Fatalf("unknown id must report false")
	}
}

func TestMarkAsReadAndClearAll(t *testing.T) {
	c := NewCenter(testBase)
	c.HandleEvent(streamPayload("n1", "low"))
	c.HandleEvent(streamPayload("n2", "low"))

	c.MarkAsRead()
	if c.UnreadCount() != 0 {
		t.Fatalf("unread = %d", c.UnreadCount())
	}
	if c.Len() != 2 {
		t.Fatalf("mark as read must keep the queue")
	}

	c.HandleEvent(streamPayload("n3", "low"))
	if c.UnreadCount() != 1 {
		t.Fatalf("unread after new arrival = %d", c.UnreadCount())
	}

	c.ClearAll()
	if c.Len() != 0 || c.UnreadCount() != 0 {
		t.Fatalf("clear all left state: len=%d unread=%d", c.Len(), c.UnreadCount())
	}
}

func TestConnectedFlag(t *testing.T) {
	c := NewCenter(testBase)
	if c.Connected() {
		t.Fatalf("starts disconnected")
	}
	c.SetConnected(true)
	if !c.Connected() {
		t.Fatalf("flag not set")
	}
	c.SetConnected(false)
	if c.Connected() {
		t.Fatalf("flag not cleared")
	}
}
