package notifier

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/imec-int/monument-plwd-sub000/module/core/domain"
	"github.com/imec-int/monument-plwd-sub000/module/core/internal/gateway/sendgrid"
)

type memLedger struct {
	records   map[domain.NotificationKey]bool
	hasErr    error
	insertErr error
	inserts   int
}

func newMemLedger() *memLedger {
	return &memLedger{records: map[domain.NotificationKey]bool{}}
}

func (l *memLedger) HasNotificationForEvent(_ context.Context, key domain.NotificationKey) (bool, error) {
	if l.hasErr != nil {
		return false, l.hasErr
	}
	return l.records[key], nil
}

func (l *memLedger) Insert(_ context.Context, key domain.NotificationKey) (*domain.NotificationRecord, error) {
	l.inserts++
	if l.insertErr != nil {
		return nil, l.insertErr
	}
	if l.records[key] {
		return nil, domain.ErrAlreadyNotified
	}
	l.records[key] = true
	return &domain.NotificationRecord{EventID: key.EventID, ContactID: key.ContactID, Channel: key.Channel}, nil
}

type fakeSMS struct {
	sent  map[string]string
	failX map[string]bool
}

func (f *fakeSMS) SendSMS(_ context.Context, to, body string) (string, error) {
	if f.failX[to] {
		return "", domain.ErrGatewayRejected
	}
	if f.sent == nil {
		f.sent = map[string]string{}
	}
	f.sent[to] = body
	return "SM" + to, nil
}

func (f *fakeSMS) SendWhatsApp(ctx context.Context, to, body string) (string, error) {
	return f.SendSMS(ctx, to, body)
}

type fakeMail struct {
	mails []sendgrid.Mail
}

func (f *fakeMail) Send(_ context.Context, mail sendgrid.Mail) error {
	f.mails = append(f.mails, mail)
	return nil
}

func fixtureParams() domain.NotifyParams {
	dest := domain.Coordinate{Lat: 51.0543, Lng: 3.7174}
	ev := &domain.CalendarEvent{
		ID:        "ev-1",
		PLWDID:    "plwd-1",
		Title:     "Bakery",
		StartTime: time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC),
		Address:   &domain.Destination{Description: "Kerkstraat 1, Gent", Location: &dest},
		ExternalContacts: []domain.ExternalContact{
			{ID: "x1", Affiliation: "neighbour", Contact: domain.Contact{ID: "x1", FirstName: "Jef", LastName: "Wouters", Phone: "+32470000002"}},
		},
		CarecircleMembers: []domain.CarecircleMember{
			{ID: "m1", Affiliation: "daughter", User: domain.Contact{ID: "u1", FirstName: "Ann", LastName: "Claes", Phone: "+32470000001", Email: "ann@example.com"}},
			{ID: "m2", Affiliation: "son", User: domain.Contact{ID: "u2", FirstName: "Bart", LastName: "Claes", Email: "bart@example.com"}},
		},
	}
	return domain.NotifyParams{
		Event:      ev,
		PLWD:       &domain.PLWD{ID: "plwd-1", FirstName: "Maria", LastName: "Claes", Phone: "+32470000009", WatchID: "w1"},
		Location:   domain.Coordinate{Lat: 51.06, Lng: 3.72},
		Recipients: ev.Recipients(),
	}
}

func TestComposer_Compose(t *testing.T) {
	brussels, err := time.LoadLocation("Europe/Brussels")
	require.NoError(t, err)
	c := NewComposer("https://portal.example/", brussels)
	p := fixtureParams()

	msg := c.Compose(p, p.Recipients[1])

	assert.Contains(t, msg.Subject, "Maria Claes")
	assert.Contains(t, msg.Body, "Hello Ann Claes")
	assert.Contains(t, msg.Body, `"Bakery" (Kerkstraat 1, Gent)`)
	assert.Contains(t, msg.Body, "from 10:00 to 11:00")
	assert.Contains(t, msg.Body, "https://portal.example/location/ev-1")
	assert.Contains(t, msg.Body, "Call Maria Claes: +32470000009")
	assert.Contains(t, msg.Body, "Jef Wouters (neighbour): +32470000002")
	assert.NotContains(t, msg.Body, "+32470000001")
	assert.NotContains(t, msg.Body, "Bart")
}

func TestComposer_NoOthersSection(t *testing.T) {
	c := NewComposer("https://portal.example", nil)
	p := fixtureParams()
	p.Recipients = p.Recipients[:1]

	msg := c.Compose(p, p.Recipients[0])
	assert.False(t, strings.Contains(msg.Body, "Other people to call"))
}

func TestChannelDelegate_SendsAndRecords(t *testing.T) {
	sms := &fakeSMS{}
	ledger := newMemLedger()
	d := NewTextMessageDelegate(sms, ledger, NewComposer("https://p", time.UTC), zap.NewNop())
	p := fixtureParams()

	require.NoError(t, d.NotifyForEvent(context.Background(), p))

	assert.Len(t, sms.sent, 2)
	assert.Contains(t, sms.sent, "+32470000002")
	assert.Contains(t, sms.sent, "+32470000001")
	assert.True(t, ledger.records[domain.NotificationKey{EventID: "ev-1", ContactID: "x1", PLWDID: "plwd-1", Channel: domain.ChannelTextMessage}])
	assert.True(t, ledger.records[domain.NotificationKey{EventID: "ev-1", ContactID: "u1", PLWDID: "plwd-1", Channel: domain.ChannelTextMessage}])
	assert.Len(t, ledger.records, 2)
}

func TestChannelDelegate_SkipsAlreadyNotified(t *testing.T) {
	sms := &fakeSMS{}
	ledger := newMemLedger()
	ledger.records[domain.NotificationKey{EventID: "ev-1", ContactID: "x1", PLWDID: "plwd-1", Channel: domain.ChannelTextMessage}] = true
	d := NewTextMessageDelegate(sms, ledger, NewComposer("https://p", time.UTC), zap.NewNop())

	require.NoError(t, d.NotifyForEvent(context.Background(), fixtureParams()))

	assert.NotContains(t, sms.sent, "+32470000002")
	assert.Contains(t, sms.sent, "+32470000001")
}

func TestChannelDelegate_AllowResend(t *testing.T) {
	sms := &fakeSMS{}
	ledger := newMemLedger()
	ledger.records[domain.NotificationKey{EventID: "ev-1", ContactID: "x1", PLWDID: "plwd-1", Channel: domain.ChannelTextMessage}] = true
	d := NewTextMessageDelegate(sms, ledger, NewComposer("https://p", time.UTC), zap.NewNop())
	p := fixtureParams()
	p.AllowResend = true

	require.NoError(t, d.NotifyForEvent(context.Background(), p))
	assert.Contains(t, sms.sent, "+32470000002")
}

func TestChannelDelegate_FailedSendIsNotRecorded(t *testing.T) {
	sms := &fakeSMS{failX: map[string]bool{"+32470000002": true}}
	ledger := newMemLedger()
	d := NewTextMessageDelegate(sms, ledger, NewComposer("https://p", time.UTC), zap.NewNop())

	require.NoError(t, d.NotifyForEvent(context.Background(), fixtureParams()))

	assert.False(t, ledger.records[domain.NotificationKey{EventID: "ev-1", ContactID: "x1", PLWDID: "plwd-1", Channel: domain.ChannelTextMessage}])
	assert.True(t, ledger.records[domain.NotificationKey{EventID: "ev-1", ContactID: "u1", PLWDID: "plwd-1", Channel: domain.ChannelTextMessage}])
}

func TestChannelDelegate_LedgerErrorSkipsSend(t *testing.T) {
	sms := &fakeSMS{}
	ledger := newMemLedger()
	ledger.hasErr = errors.New("db down")
	d := NewTextMessageDelegate(sms, ledger, NewComposer("https://p", time.UTC), zap.NewNop())

	require.NoError(t, d.NotifyForEvent(context.Background(), fixtureParams()))
	assert.Empty(t, sms.sent)
}

func TestChannelDelegate_ConflictOnInsertIsFine(t *testing.T) {
	sms := &fakeSMS{}
	ledger := newMemLedger()
	ledger.insertErr = domain.ErrAlreadyNotified
	d := NewWhatsAppDelegate(sms, ledger, NewComposer("https://p", time.UTC), zap.NewNop())

	require.NoError(t, d.NotifyForEvent(context.Background(), fixtureParams()))
	assert.Len(t, sms.sent, 2)
	assert.Equal(t, 2, ledger.inserts)
}

func TestEmailDelegate_SkipsRecipientsWithoutEmail(t *testing.T) {
	mail := &fakeMail{}
	ledger := newMemLedger()
	d := NewEmailDelegate(mail, ledger, NewComposer("https://p", time.UTC), zap.NewNop())

	require.NoError(t, d.NotifyForEvent(context.Background(), fixtureParams()))

	require.Len(t, mail.mails, 2)
	assert.Equal(t, "ann@example.com", mail.mails[0].To.Email)
	assert.Equal(t, "bart@example.com", mail.mails[1].To.Email)
	assert.NotEmpty(t, mail.mails[0].Subject)
	assert.Len(t, ledger.records, 2)
}

func TestConsoleDelegate_LogsEachRecipient(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	d := NewConsoleDelegate(newMemLedger(), NewComposer("https://p", time.UTC), zap.New(core))

	require.NoError(t, d.NotifyForEvent(context.Background(), fixtureParams()))

	alerts := logs.FilterMessage("Wandering alert").All()
	require.Len(t, alerts, 3)
	assert.Equal(t, "x1", alerts[0].ContextMap()["contact_id"])
}

func TestChannelDelegate_RequiresEventAndPLWD(t *testing.T) {
	d := NewConsoleDelegate(newMemLedger(), NewComposer("https://p", time.UTC), zap.NewNop())
	assert.Error(t, d.NotifyForEvent(context.Background(), domain.NotifyParams{}))
}

type stubDelegate struct {
	channel domain.Channel
	err     error
	panics  bool
	called  int
}

func (s *stubDelegate) Channel() domain.Channel { return s.channel }

func (s *stubDelegate) NotifyForEvent(_ context.Context, _ domain.NotifyParams) error {
	s.called++
	if s.panics {
		panic("boom")
	}
	return s.err
}

func TestCompositeDispatcher_RunsEveryDelegate(t *testing.T) {
	failing := &stubDelegate{channel: domain.ChannelEmail, err: errors.New("smtp down")}
	panicking := &stubDelegate{channel: domain.ChannelWhatsApp, panics: true}
	ok := &stubDelegate{channel: domain.ChannelTextMessage}
	c := NewCompositeDispatcher(zap.NewNop(), failing, panicking, ok)

	err := c.NotifyForEvent(context.Background(), fixtureParams())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp down")
	assert.Contains(t, err.Error(), "delegate panic")
	assert.Equal(t, 1, ok.called)
	assert.Equal(t, []domain.Channel{domain.ChannelEmail, domain.ChannelWhatsApp, domain.ChannelTextMessage}, c.Channels())
}

func TestCompositeDispatcher_NoErrors(t *testing.T) {
	c := NewCompositeDispatcher(zap.NewNop(), &stubDelegate{channel: domain.ChannelConsole})
	assert.NoError(t, c.NotifyForEvent(context.Background(), fixtureParams()))
}
