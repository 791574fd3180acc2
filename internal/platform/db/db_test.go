package db

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"linetrack-backend/internal/platform/config"
)

func TestDSN(t *testing.T) {
	got := DSN(config.DatabaseConfig{
		Host: "db", Port: 3306, Username: "u", Password: "p", DBName: "linetrack",
	})
	assert.Equal(t, "u:p@tcp(db:3306)/linetrack?parseTime=true&tls=false&timeout=3s&readTimeout=5s&writeTimeout=5s&loc=UTC", got)
}
