package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/imec-int/monument-plwd-sub000/module/core/domain"
	"github.com/imec-int/monument-plwd-sub000/module/core/internal/repository/database"
)

var _ database.EventRepository = (*EventRepo)(nil)

type EventRepo struct {
	db *sql.DB
}

func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

// GetOngoingEvents returns events with a destination whose window contains
// now, both bounds inclusive, with their recipients joined in.
func (r *EventRepo) GetOngoingEvents(ctx context.Context, now time.Time) ([]domain.CalendarEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, plwd_id, created_by, title, address_description, address_latitude, address_longitude, start_time, end_time, repeat, picked_up
		FROM calendar_event
		WHERE address_latitude IS NOT NULL AND address_longitude IS NOT NULL AND start_time <= $1 AND end_time >= $1
		ORDER BY start_time ASC`,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("query ongoing events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var (
		events []domain.CalendarEvent
		ids    []string
	)
	for rows.Next() {
		var (
			ev          domain.CalendarEvent
			description sql.NullString
			lat, lng    sql.NullFloat64
		)
		if err := rows.Scan(&ev.ID, &ev.PLWDID, &ev.CreatedBy, &ev.Title, &description, &lat, &lng,
			&ev.StartTime, &ev.EndTime, &ev.Repeat, &ev.PickedUp); err != nil {
			return nil, err
		}
		if lat.Valid && lng.Valid {
			ev.Address = &domain.Destination{
				Description: description.String,
				Location:    &domain.Coordinate{Lat: lat.Float64, Lng: lng.Float64},
			}
		}
		events = append(events, ev)
		ids = append(ids, ev.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return events, nil
	}

	members, err := r.carecircleMembers(ctx, ids)
	if err != nil {
		return nil, err
	}
	contacts, err := r.externalContacts(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range events {
		events[i].CarecircleMembers = members[events[i].ID]
		events[i].ExternalContacts = contacts[events[i].ID]
	}
	return events, nil
}

func (r *EventRepo) carecircleMembers(ctx context.Context, eventIDs []string) (map[string][]domain.CarecircleMember, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT ecm.event_id, cm.id, cm.affiliation, cm.permissions, u.id, u.first_name, u.last_name, COALESCE(u.phone, ''), u.email
		FROM calendar_event_carecircle_member ecm
		JOIN carecircle_member cm ON cm.id = ecm.carecircle_member_id
		JOIN users u ON u.id = cm.user_id
		WHERE ecm.event_id = ANY($1)
		ORDER BY ecm.event_id, ecm.position`,
		pq.Array(eventIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("query carecircle members: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string][]domain.CarecircleMember)
	for rows.Next() {
		var (
			eventID string
			m       domain.CarecircleMember
		)
		if err := rows.Scan(&eventID, &m.ID, &m.Affiliation, pq.Array(&m.Permissions),
			&m.User.ID, &m.User.FirstName, &m.User.LastName, &m.User.Phone, &m.User.Email); err != nil {
			return nil, err
		}
		out[eventID] = append(out[eventID], m)
	}
	return out, rows.Err()
}

func (r *EventRepo) externalContacts(ctx context.Context, eventIDs []string) (map[string][]domain.ExternalContact, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT eec.event_id, ec.id, ec.affiliation, ec.first_name, ec.last_name, COALESCE(ec.phone, ''), COALESCE(ec.email, '')
		FROM calendar_event_external_contact eec
		JOIN external_contact ec ON ec.id = eec.external_contact_id
		WHERE eec.event_id = ANY($1)
		ORDER BY eec.event_id, eec.position`,
		pq.Array(eventIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("query external contacts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string][]domain.ExternalContact)
	for rows.Next() {
		var (
			eventID string
			c       domain.ExternalContact
		)
		if err := rows.Scan(&eventID, &c.ID, &c.Affiliation,
			&c.Contact.FirstName, &c.Contact.LastName, &c.Contact.Phone, &c.Contact.Email); err != nil {
			return nil, err
		}
		c.Contact.ID = c.ID
		out[eventID] = append(out[eventID], c)
	}
	return out, rows.Err()
}

// Delete removes the event and its ledger rows in one transaction.
func (r *EventRepo) Delete(ctx context.Context, eventID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM notification WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("delete notifications: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM calendar_event WHERE id = $1`, eventID)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit()
}
