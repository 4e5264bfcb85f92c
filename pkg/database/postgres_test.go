package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/techskill-console/pkg/config"
)

func TestDSN(t *testing.T) {
	cfg := config.DatabaseConfig{Host: "db", Port: 5433, User: "console", Password: "pw", Name: "ledger"}
	assert.Equal(t, "host=db port=5433 user=console password=pw dbname=ledger sslmode=disable", DSN(cfg))

	cfg.SSLMode = "require"
	assert.Contains(t, DSN(cfg), "sslmode=require")
}

func TestTuneAppliesPoolLimits(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(raw, "postgres")
	defer db.Close()

	Tune(db, config.DatabaseConfig{MaxOpenConns: 4, MaxIdleConns: 2})
	assert.Equal(t, 4, db.Stats().MaxOpenConnections)

	mock.ExpectClose()
}
