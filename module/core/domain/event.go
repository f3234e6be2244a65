package domain

import "time"

type Destination struct {
	Description string      `json:"description"`
	Location    *Coordinate `json:"location,omitempty"`
}

// CalendarEvent is a scheduled appointment for one PLWD. Its carecircle
// members and external contacts are the alert recipients.
type CalendarEvent struct {
	ID                string             `json:"id"`
	PLWDID            string             `json:"plwd_id"`
	CreatedBy         string             `json:"created_by"`
	Title             string             `json:"title"`
	Address           *Destination       `json:"address,omitempty"`
	StartTime         time.Time          `json:"start_time"`
	EndTime           time.Time          `json:"end_time"`
	Repeat            string             `json:"repeat"`
	PickedUp          bool               `json:"picked_up"`
	CarecircleMembers []CarecircleMember `json:"carecircle_members"`
	ExternalContacts  []ExternalContact  `json:"external_contacts"`
}

func (e *CalendarEvent) HasDestination() bool {
	return e.Address != nil && e.Address.Location != nil
}

// IsOngoing reports whether now falls inside [StartTime, EndTime] and the
// event has a destination to be near.
func (e *CalendarEvent) IsOngoing(now time.Time) bool {
	if !e.HasDestination() {
		return false
	}
	return !now.Before(e.StartTime) && !now.After(e.EndTime)
}

// GraceDelayExceeded reports whether now > StartTime + delay.
func (e *CalendarEvent) GraceDelayExceeded(now time.Time, delay time.Duration) bool {
	return now.After(e.StartTime.Add(delay))
}

// Recipients lists external contacts first, then carecircle members.
func (e *CalendarEvent) Recipients() []Recipient {
	out := make([]Recipient, 0, len(e.ExternalContacts)+len(e.CarecircleMembers))
	for _, c := range e.ExternalContacts {
		out = append(out, c)
	}
	for _, m := range e.CarecircleMembers {
		out = append(out, m)
	}
	return out
}

func (e *CalendarEvent) DestinationDescription() string {
	if e.Address == nil {
		return ""
	}
	return e.Address.Description
}
