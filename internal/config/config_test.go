package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedKeys = []string{
	"APP_PORT", "LOG_LEVEL", "TIMEZONE", "SEED", "NEARBY_LIMIT",
	"PRICE_REFRESH_CRON", "SNAPSHOT_CRON", "ALERT_CRON",
	"WHATSAPP_TOKEN", "WHATSAPP_PHONE_NUMBER_ID", "META_VERIFY_TOKEN",
	"WHATSAPP_BASE_URL", "WHATSAPP_API_VERSION",
	"GOOGLE_SHEETS_CREDENTIALS_PATH", "GOOGLE_SHEET_DATABASE_ID",
	"MONGODB_URI", "MONGODB_DB_NAME",
}

// clearEnv blanks every managed key; empty values fall back to defaults.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range managedKeys {
		t.Setenv(key, "")
	}
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, uint64(0), cfg.Data.Seed)
	assert.Equal(t, 10, cfg.Data.NearbyLimit)
	assert.Equal(t, "0 6 * * *", cfg.Scheduler.PriceRefreshCron)
	assert.Equal(t, "0 20 * * *", cfg.Scheduler.SnapshotCron)
	assert.Equal(t, "0 8 * * *", cfg.Scheduler.AlertCron)
	assert.Equal(t, "Asia/Kolkata", cfg.Scheduler.Timezone)
	assert.False(t, cfg.WhatsApp.Enabled())
	assert.False(t, cfg.Sheets.Enabled())
	assert.False(t, cfg.MongoDB.Enabled())
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides variables that are already set, even when empty.
	for _, key := range []string{"APP_PORT", "SEED", "WHATSAPP_TOKEN", "WHATSAPP_PHONE_NUMBER_ID", "META_VERIFY_TOKEN"} {
		require.NoError(t, os.Unsetenv(key))
	}

	path := filepath.Join(t.TempDir(), ".env")
	content := "APP_PORT=9090\nSEED=42\nWHATSAPP_TOKEN=tok\nWHATSAPP_PHONE_NUMBER_ID=123\nMETA_VERIFY_TOKEN=verify\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		for _, key := range []string{"APP_PORT", "SEED", "WHATSAPP_TOKEN", "WHATSAPP_PHONE_NUMBER_ID", "META_VERIFY_TOKEN"} {
			_ = os.Unsetenv(key)
		}
	})

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, uint64(42), cfg.Data.Seed)
	assert.True(t, cfg.WhatsApp.Enabled())
	assert.Equal(t, "verify", cfg.WhatsApp.VerifyToken)
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("SEED", "-1")

	_, err := Load(missingEnvFile(t))
	assert.ErrorContains(t, err, "SEED must be a non-negative integer")

	t.Setenv("SEED", "")
	t.Setenv("NEARBY_LIMIT", "many")
	_, err = Load(missingEnvFile(t))
	assert.ErrorContains(t, err, "NEARBY_LIMIT must be an integer")
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Data:   DataConfig{NearbyLimit: 10},
		Scheduler: SchedulerConfig{
			PriceRefreshCron: "0 6 * * *",
			SnapshotCron:     "0 20 * * *",
			AlertCron:        "0 8 * * *",
			Timezone:         "UTC",
		},
		WhatsApp: WhatsAppConfig{BaseURL: "https://graph.facebook.com", APIVersion: "v20.0"},
		MongoDB:  MongoDBConfig{DBName: "mandi"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "partial whatsapp",
			mutate:  func(c *Config) { c.WhatsApp.AccessToken = "tok" },
			wantErr: "WHATSAPP_PHONE_NUMBER_ID must be provided",
		},
		{
			name: "missing verify token",
			mutate: func(c *Config) {
				c.WhatsApp.AccessToken = "tok"
				c.WhatsApp.PhoneNumberID = "123"
			},
			wantErr: "META_VERIFY_TOKEN must be provided",
		},
		{
			name:    "partial sheets",
			mutate:  func(c *Config) { c.Sheets.SpreadsheetID = "sheet" },
			wantErr: "GOOGLE_SHEETS_CREDENTIALS_PATH must be provided",
		},
		{
			name: "mongo without database",
			mutate: func(c *Config) {
				c.MongoDB.URI = "mongodb://localhost:27017"
				c.MongoDB.DBName = ""
			},
			wantErr: "MONGODB_DB_NAME must be provided",
		},
		{
			name:    "unknown timezone",
			mutate:  func(c *Config) { c.Scheduler.Timezone = "Mars/Olympus" },
			wantErr: `TIMEZONE "Mars/Olympus"`,
		},
		{
			name:    "zero nearby limit",
			mutate:  func(c *Config) { c.Data.NearbyLimit = 0 },
			wantErr: "NEARBY_LIMIT must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
