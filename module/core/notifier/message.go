package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/imec-int/monument-plwd-sub000/module/core/domain"
)

const clockLayout = "15:04"

type Message struct {
	Subject string
	Body    string
}

// Composer renders the alert text shared by every channel.
type Composer struct {
	trackingBaseURL string
	loc             *time.Location
}

func NewComposer(trackingBaseURL string, loc *time.Location) *Composer {
	if loc == nil {
		loc = time.UTC
	}
	return &Composer{trackingBaseURL: strings.TrimRight(trackingBaseURL, "/"), loc: loc}
}

func (c *Composer) TrackingLink(eventID string) string {
	return c.trackingBaseURL + "/location/" + eventID
}

// Compose builds the message for one recipient. The recipient's own contact
// never appears among the other people to call.
func (c *Composer) Compose(p domain.NotifyParams, to domain.Recipient) Message {
	self := to.ContactInfo()
	plwdName := p.PLWD.FullName()

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", self.FullName())
	fmt.Fprintf(&b, "%s has not arrived at %q", plwdName, p.Event.Title)
	if d := p.Event.DestinationDescription(); d != "" {
		fmt.Fprintf(&b, " (%s)", d)
	}
	fmt.Fprintf(&b, ", planned from %s to %s.\n",
		p.Event.StartTime.In(c.loc).Format(clockLayout),
		p.Event.EndTime.In(c.loc).Format(clockLayout),
	)
	fmt.Fprintf(&b, "Follow %s's location: %s\n", p.PLWD.FirstName, c.TrackingLink(p.Event.ID))

	if p.PLWD.Phone != "" {
		fmt.Fprintf(&b, "\nCall %s: %s\n", plwdName, p.PLWD.Phone)
	}

	var others []string
	for _, r := range p.Recipients {
		contact := r.ContactInfo()
		if contact.ID == self.ID || contact.Phone == "" {
			continue
		}
		others = append(others, fmt.Sprintf("- %s (%s): %s", contact.FullName(), r.RecipientAffiliation(), contact.Phone))
	}
	if len(others) > 0 {
		b.WriteString("\nOther people to call:\n")
		b.WriteString(strings.Join(others, "\n"))
		b.WriteString("\n")
	}

	return Message{
		Subject: fmt.Sprintf("Wandering alert: %s has not arrived at %s", plwdName, p.Event.Title),
		Body:    b.String(),
	}
}
