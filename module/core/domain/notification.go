package domain

import "time"

type Channel string

const (
	ChannelConsole     Channel = "console"
	ChannelEmail       Channel = "email"
	ChannelTextMessage Channel = "text-message"
	ChannelWhatsApp    Channel = "whatsapp"
)

func (c Channel) Valid() bool {
	switch c {
	case ChannelConsole, ChannelEmail, ChannelTextMessage, ChannelWhatsApp:
		return true
	}
	return false
}

// NotificationKey identifies one ledger entry. At most one record exists per
// (EventID, ContactID, Channel).
type NotificationKey struct {
	EventID   string
	ContactID string
	PLWDID    string
	Channel   Channel
}

type NotificationRecord struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	PLWDID    string    `json:"plwd_id"`
	ContactID string    `json:"contact_id"`
	Channel   Channel   `json:"channel"`
	CreatedAt time.Time `json:"created_at"`
}

// NotifyParams is handed to every channel delegate for one out-of-range event.
type NotifyParams struct {
	Event       *CalendarEvent
	PLWD        *PLWD
	Location    Coordinate
	Recipients  []Recipient
	AllowResend bool
}

// WanderingAlert is broadcast to other systems when a PLWD is out of range.
type WanderingAlert struct {
	EventID        string     `json:"event_id"`
	PLWDID         string     `json:"plwd_id"`
	WatchID        string     `json:"watch_id"`
	Destination    Coordinate `json:"destination"`
	Location       Coordinate `json:"location"`
	DistanceMeters float64    `json:"distance_meters"`
	DetectedAt     time.Time  `json:"detected_at"`
}
