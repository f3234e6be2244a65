package domain

// PLWD is a person living with dementia, tracked through a watch.
type PLWD struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	WatchID   string `json:"watch_id"`
}

func (p *PLWD) FullName() string {
	return joinName(p.FirstName, p.LastName)
}
