package config

import (
	"context"
	"database/sql"
	"net/http"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	goredis "github.com/go-redis/redis/v8"
	amqp "github.com/rabbitmq/amqp091-go"
)

// HealthChecker reports on every backing service. Nil dependencies are
// treated as disabled and left out of the report.
type HealthChecker struct {
	db       *sql.DB
	redis    *goredis.Client
	amqpConn *amqp.Connection
	mqtt     mqtt.Client
}

func NewHealthChecker(db *sql.DB, redis *goredis.Client, amqpConn *amqp.Connection, mqttClient mqtt.Client) *HealthChecker {
	return &HealthChecker{db: db, redis: redis, amqpConn: amqpConn, mqtt: mqttClient}
}

func (h *HealthChecker) Register(r *gin.Engine) {
	r.GET("/healthz", h.Handle)
}

func (h *HealthChecker) Handle(c *gin.Context) {
	status := http.StatusOK
	deps := gin.H{}
	report := func(name string, err error) {
		if err != nil {
			deps[name] = gin.H{"status": "down", "error": err.Error()}
			status = http.StatusServiceUnavailable
			return
		}
		deps[name] = gin.H{"status": "up"}
	}

	ctx := c.Request.Context()
	if h.db != nil {
		report("postgres", h.db.PingContext(ctx))
	}
	if h.redis != nil {
		report("redis", h.pingRedis(ctx))
	}
	if h.amqpConn != nil {
		report("rabbitmq", closedErr(h.amqpConn.IsClosed(), "connection closed"))
	}
	if h.mqtt != nil {
		report("mqtt", closedErr(!h.mqtt.IsConnected(), "not connected"))
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}

	c.JSON(status, gin.H{
		"status":       overall,
		"dependencies": deps,
	})
}

func (h *HealthChecker) pingRedis(ctx context.Context) error {
	return h.redis.Ping(ctx).Err()
}

type healthError string

func (e healthError) Error() string { return string(e) }

func closedErr(down bool, msg string) error {
	if down {
		return healthError(msg)
	}
	return nil
}
