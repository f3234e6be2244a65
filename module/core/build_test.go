package core

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/imec-int/monument-plwd-sub000/config"
	"github.com/imec-int/monument-plwd-sub000/module/core/domain"
)

func TestBuild_RequiresDatabase(t *testing.T) {
	_, err := Build(config.Load(), Deps{}, zap.NewNop())
	assert.Error(t, err)
}

func TestBuild_EnabledChannels(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cfg := config.Load()
	cfg.Notify = config.NotifyConfig{Console: true, Email: true, WhatsApp: true}

	m, err := Build(cfg, Deps{DB: db}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []domain.Channel{domain.ChannelConsole, domain.ChannelEmail, domain.ChannelWhatsApp}, m.Channels())
	assert.NoError(t, m.StartSubscribers())
}

func TestBuild_RegistersRoutes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	m, err := Build(config.Load(), Deps{DB: db}, zap.NewNop())
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	m.RegisterRoutes(&r.RouterGroup)

	mock.ExpectQuery("SELECT (.+) FROM notification").
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "plwd_id", "contact_id", "channel", "created_at"}))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/events/ev-1/notifications", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewAlertCron(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	m, err := Build(config.Load(), Deps{DB: db}, zap.NewNop())
	require.NoError(t, err)

	c, err := m.NewAlertCron(context.Background(), "@every 1m", zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)

	_, err = m.NewAlertCron(context.Background(), "every now and then", zap.NewNop())
	assert.Error(t, err)
}

func TestRunAlertTick_ListFailureIsLogged(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	m, err := Build(config.Load(), Deps{DB: db}, zap.NewNop())
	require.NoError(t, err)

	mock.ExpectQuery("SELECT (.+) FROM calendar_event").WillReturnError(errors.New("db down"))
	m.RunAlertTick(context.Background(), zap.NewNop())
	assert.NoError(t, mock.ExpectationsWereMet())
}
