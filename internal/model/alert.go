package model

import (
	"time"

	"github.com/google/uuid"
)

type AlertSource string

const (
	AlertSourceKeyboard AlertSource = "keyboard"
	AlertSourceTap      AlertSource = "tap"
)

type AlertStatus string

const (
	AlertStatusTriggered AlertStatus = "triggered"
)

// Alert records one SOS activation.
type Alert struct {
	ID          uuid.UUID   `json:"id"`
	Source      AlertSource `json:"source"`
	SessionID   string      `json:"session_id,omitempty"`
	Status      AlertStatus `json:"status"`
	TriggeredAt time.Time   `json:"triggered_at"`
}
