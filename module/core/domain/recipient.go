package domain

import "strings"

// Contact is the uniform shape every delivery channel addresses.
type Contact struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

func (c Contact) FullName() string {
	return joinName(c.FirstName, c.LastName)
}

// Recipient is either a CarecircleMember or an ExternalContact.
type Recipient interface {
	RecipientID() string
	ContactInfo() Contact
	RecipientAffiliation() string
}

// CarecircleMember is an internal user holding permissions over a PLWD.
type CarecircleMember struct {
	ID          string   `json:"id"`
	Affiliation string   `json:"affiliation"`
	Permissions []string `json:"permissions"`
	User        Contact  `json:"user"`
}

func (m CarecircleMember) RecipientID() string          { return m.ID }
func (m CarecircleMember) ContactInfo() Contact         { return m.User }
func (m CarecircleMember) RecipientAffiliation() string { return m.Affiliation }

func (m CarecircleMember) HasPermission(p string) bool {
	for _, have := range m.Permissions {
		if have == p {
			return true
		}
	}
	return false
}

// ExternalContact has no account and is only reachable as a recipient.
type ExternalContact struct {
	ID          string  `json:"id"`
	Affiliation string  `json:"affiliation"`
	Contact     Contact `json:"contact"`
}

func (e ExternalContact) RecipientID() string          { return e.ID }
func (e ExternalContact) ContactInfo() Contact         { return e.Contact }
func (e ExternalContact) RecipientAffiliation() string { return e.Affiliation }

func joinName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
