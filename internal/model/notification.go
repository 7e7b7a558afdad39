package model

type Severity string

const (
	SeverityDefault     Severity = "default"
	SeverityDestructive Severity = "destructive"
)

// Notification is a transient, dismissible message for the user.
type Notification struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

// IsUrgent reports whether the notification uses the destructive style.
func (n Notification) IsUrgent() bool {
	return n.Severity == SeverityDestructive
}
