package db_test

import (
	"testing"

	"github.com/sahelpay/sahelpay/internal/config"
	"github.com/sahelpay/sahelpay/pkg/db"
	"github.com/stretchr/testify/require"
)

func TestDialectPerType(t *testing.T) {
	cases := []struct {
		dbType string
		want   string
	}{
		{"postgres", "postgres"},
		{"mysql", "mysql"},
		{"sqlite", "sqlite"},
	}

	for _, tc := range cases {
		dialect, err := db.Dialect(db.Config{Type: tc.dbType, Name: "sahelpay"})
		require.NoError(t, err, tc.dbType)
		require.Equal(t, tc.want, dialect.Name())
	}

	_, err := db.Dialect(db.Config{Type: "mongodb"})
	require.Error(t, err)
}

func TestConfigMapsToConnector(t *testing.T) {
	cfg := config.Config{
		DBType:            "postgres",
		DBHost:            "db.internal",
		DBPort:            "5433",
		DBName:            "sahelpay",
		DBUser:            "app",
		DBPassword:        "secret",
		DBSSLMode:         "require",
		DBMaxIdleConn:     3,
		DBMaxOpenConn:     12,
		DBConnMaxLifetime: 600,
	}

	got := cfg.DB()
	require.Equal(t, db.Config{
		Type:            "postgres",
		Host:            "db.internal",
		Port:            "5433",
		Name:            "sahelpay",
		User:            "app",
		Password:        "secret",
		SSLMode:         "require",
		MaxIdleConn:     3,
		MaxOpenConn:     12,
		ConnMaxLifetime: 600,
	}, got)

	dialect, err := db.Dialect(got)
	require.NoError(t, err)
	require.Equal(t, "postgres", dialect.Name())
}
