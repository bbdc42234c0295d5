package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name: "default configuration",
			envVars: map[string]string{
				"ENVIRONMENT": "development",
			},
			wantErr: false,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "development", cfg.Environment)
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "https://openrouter.ai/api/v1", cfg.Oracle.BaseURL)
				assert.NotEmpty(t, cfg.Oracle.Model)
				assert.False(t, cfg.Auth.Enabled())
			},
		},
		{
			name: "production configuration",
			envVars: map[string]string{
				"ENVIRONMENT":        "production",
				"SERVER_PORT":        "9000",
				"DB_HOST":            "prod-db.example.com",
				"DB_PORT":            "5433",
				"OPENROUTER_API_KEY": "sk-or-xxxxx",
				"AUTH_SECRET":        "topsecret",
			},
			wantErr: false,
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.IsProduction())
				assert.False(t, cfg.IsDevelopment())
				assert.Equal(t, 9000, cfg.Server.Port)
				assert.Equal(t, "prod-db.example.com", cfg.Database.Host)
				assert.Equal(t, 5433, cfg.Database.Port)
				assert.True(t, cfg.Auth.Enabled())
			},
		},
		{
			name: "production without oracle API key fails",
			envVars: map[string]string{
				"ENVIRONMENT": "production",
				"AUTH_SECRET": "topsecret",
			},
			wantErr: true,
		},
		{
			name: "custom timeouts and pool settings",
			envVars: map[string]string{
				"SERVER_READ_TIMEOUT": "60s",
				"OPENROUTER_TIMEOUT":  "15s",
				"DB_MAX_OPEN_CONNS":   "50",
			},
			wantErr: false,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 60*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 15*time.Second, cfg.Oracle.Timeout)
				assert.Equal(t, 50, cfg.Database.MaxOpenConns)
			},
		},
		{
			name: "DATABASE_URL takes precedence",
			envVars: map[string]string{
				"DATABASE_URL": "postgres://u:p@db.example.com:5433/sift?sslmode=require",
			},
			wantErr: false,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "postgres://u:p@db.example.com:5433/sift?sslmode=require", cfg.Database.DSN())
				assert.Equal(t, "host=db.example.com port=5433 database=sift", cfg.Database.LogString())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := New()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestDatabaseConfigDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "companysift",
		Password: "secret",
		Database: "companysift",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "dbname=companysift")
	assert.Contains(t, dsn, "sslmode=disable")

	// LogString must never expose the password
	assert.NotContains(t, cfg.LogString(), "secret")
}

func TestServerConfigAddress(t *testing.T) {
	cfg := ServerConfig{Host: "127.0.0.1", Port: 9090}
	assert.Equal(t, "127.0.0.1:9090", cfg.Address())
}
