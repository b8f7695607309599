package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a:9092", "b:9092"}, CSV(" a:9092, ,b:9092 "))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("NOTIFY_TOPIC", "")
	t.Setenv("SMTP_PORT", "not-a-number")

	cfg := Load()
	require.Equal(t, 8080, cfg.ServerPort)
	require.Equal(t, "order_notifications", cfg.NotifyTopic)
	require.Equal(t, 587, cfg.SMTPPort)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg := Load()
	require.Equal(t, 9000, cfg.ServerPort)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	require.Equal(t, []byte("s3cret"), cfg.JWTAccessSecret)
}
