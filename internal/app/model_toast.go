package app

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"sourcebot/internal/notify"
	"sourcebot/internal/types"
)

func (m *Model) showInfoToast(message string) {
	m.showToast(types.PriorityMedium, message, notify.ToastDurationDefault)
}

func (m *Model) showErrorToast(message string) {
	m.showToast(types.PriorityHigh, message, notify.ToastDurationDefault)
}

func (m *Model) showNotificationToast(toast *notify.Toast) {
	if toast == nil {
		return
	}
	message := toast.Title
	if toast.Message != "" {
		message += ": " + toast.Message
	}
	m.showToast(toast.Priority, message, toast.Duration)
}

func (m *Model) showToast(priority types.Priority, message string, duration time.Duration) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	m.toastText = message
	m.toastPriority = priority
	m.toastUntil = time.Now().Add(duration)
}

func (m *Model) clearToast() {
	m.toastText = ""
	m.toastPriority = types.PriorityMedium
	m.toastUntil = time.Time{}
}

func (m *Model) toastActive(at time.Time) bool {
	if strings.TrimSpace(m.toastText) == "" {
		return false
	}
	if m.toastUntil.IsZero() {
		return true
	}
	if at.IsZero() {
		at = time.Now()
	}
	return at.Before(m.toastUntil)
}

func (m *Model) toastLine(width int) string {
	if !m.toastActive(time.Now()) || width <= 0 {
		return ""
	}
	maxTextWidth := max(1, width-4)
	text := truncateToWidth(m.toastText, maxTextWidth)
	pill := priorityStyle(m.toastPriority).Render(" " + text + " ")
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, pill)
}
