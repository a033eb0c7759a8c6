package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		wantErr     bool
		errorString string
	}{
		{
			name: "valid local-only config",
			config: Config{
				Port:          "8080",
				SQLiteDBPath:  "./test.db",
				DriveFileName: "zakat-app-data.json",
				SyncDebounce:  3 * time.Second,
				Language:      "en",
			},
			wantErr: false,
		},
		{
			name: "invalid port - non-numeric",
			config: Config{
				Port:          "abc",
				SQLiteDBPath:  "./test.db",
				DriveFileName: "zakat-app-data.json",
				SyncDebounce:  3 * time.Second,
				Language:      "en",
			},
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name: "invalid port - out of range",
			config: Config{
				Port:          "70000",
				SQLiteDBPath:  "./test.db",
				DriveFileName: "zakat-app-data.json",
				SyncDebounce:  3 * time.Second,
				Language:      "en",
			},
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name: "missing database path",
			config: Config{
				Port:          "8080",
				SQLiteDBPath:  "",
				DriveFileName: "zakat-app-data.json",
				SyncDebounce:  3 * time.Second,
				Language:      "en",
			},
			wantErr:     true,
			errorString: "SQLite database path cannot be empty",
		},
		{
			name: "missing drive file name",
			config: Config{
				Port:          "8080",
				SQLiteDBPath:  "./test.db",
				DriveFileName: "",
				SyncDebounce:  3 * time.Second,
				Language:      "en",
			},
			wantErr:     true,
			errorString: "Drive file name cannot be empty",
		},
		{
			name: "cloud sync with missing token file path",
			config: Config{
				Port:                  "8080",
				SQLiteDBPath:          "./test.db",
				DriveFileName:         "zakat-app-data.json",
				GoogleOAuthClientJSON: "{}",
				GoogleOAuthTokenFile:  "",
				OAuthRedirectPort:     "8085",
				SyncDebounce:          3 * time.Second,
				Language:              "en",
			},
			wantErr:     true,
			errorString: "GOOGLE_OAUTH_TOKEN_FILE cannot be empty when cloud sync is configured",
		},
		{
			name: "cloud sync with invalid redirect port",
			config: Config{
				Port:                  "8080",
				SQLiteDBPath:          "./test.db",
				DriveFileName:         "zakat-app-data.json",
				GoogleOAuthClientJSON: "{}",
				GoogleOAuthTokenFile:  "./token.json",
				OAuthRedirectPort:     "abc",
				SyncDebounce:          3 * time.Second,
				Language:              "en",
			},
			wantErr:     true,
			errorString: "invalid OAuth redirect port 'abc': must be a number",
		},
		{
			name: "cloud sync with non-existent client file",
			config: Config{
				Port:                  "8080",
				SQLiteDBPath:          "./test.db",
				DriveFileName:         "zakat-app-data.json",
				GoogleOAuthClientFile: "/non/existent/file.json",
				GoogleOAuthTokenFile:  "./token.json",
				OAuthRedirectPort:     "8085",
				SyncDebounce:          3 * time.Second,
				Language:              "en",
			},
			wantErr:     true,
			errorString: "Google OAuth client file does not exist",
		},
		{
			name: "sync debounce too short",
			config: Config{
				Port:          "8080",
				SQLiteDBPath:  "./test.db",
				DriveFileName: "zakat-app-data.json",
				SyncDebounce:  50 * time.Millisecond,
				Language:      "en",
			},
			wantErr:     true,
			errorString: "invalid sync debounce 50ms: must be at least 100ms",
		},
		{
			name: "sync debounce too long",
			config: Config{
				Port:          "8080",
				SQLiteDBPath:  "./test.db",
				DriveFileName: "zakat-app-data.json",
				SyncDebounce:  2 * time.Minute,
				Language:      "en",
			},
			wantErr:     true,
			errorString: "invalid sync debounce 2m0s: must be at most 1 minute",
		},
		{
			name: "missing language",
			config: Config{
				Port:          "8080",
				SQLiteDBPath:  "./test.db",
				DriveFileName: "zakat-app-data.json",
				SyncDebounce:  3 * time.Second,
				Language:      "",
			},
			wantErr:     true,
			errorString: "language cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Config.Validate() error = nil, wantErr %v", tt.wantErr)
					return
				}
				if tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Config.Validate() error = %v, want error containing %v", err.Error(), tt.errorString)
				}
			} else {
				if err != nil {
					t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
				}
			}
		})
	}
}

func TestConfig_ValidateWithClientFile(t *testing.T) {
	tmpDir := t.TempDir()
	clientFile := filepath.Join(tmpDir, "client.json")
	if err := os.WriteFile(clientFile, []byte(`{"installed":{"client_id":"test"}}`), 0644); err != nil {
		t.Fatalf("Failed to create test client file: %v", err)
	}

	cfg := Config{
		Port:                  "8080",
		SQLiteDBPath:          filepath.Join(tmpDir, "zakat.db"),
		DriveFileName:         "zakat-app-data.json",
		GoogleOAuthClientFile: clientFile,
		GoogleOAuthTokenFile:  filepath.Join(tmpDir, "token.json"),
		OAuthRedirectPort:     "8085",
		SyncDebounce:          3 * time.Second,
		Language:              "en",
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Config.Validate() error = %v, want nil", err)
	}
	if !cfg.CloudSyncConfigured() {
		t.Error("CloudSyncConfigured() = false, want true")
	}

	data, err := cfg.OAuthClientJSON()
	if err != nil {
		t.Fatalf("OAuthClientJSON() error = %v", err)
	}
	if !strings.Contains(string(data), "client_id") {
		t.Errorf("OAuthClientJSON() = %s, want client file contents", data)
	}
}

func TestConfig_OAuthClientJSONPrefersInline(t *testing.T) {
	cfg := Config{
		GoogleOAuthClientJSON: `{"installed":{"client_id":"inline"}}`,
		GoogleOAuthClientFile: "/non/existent/file.json",
	}
	data, err := cfg.OAuthClientJSON()
	if err != nil {
		t.Fatalf("OAuthClientJSON() error = %v", err)
	}
	if !strings.Contains(string(data), "inline") {
		t.Errorf("OAuthClientJSON() = %s, want inline JSON", data)
	}
}

func TestLoad(t *testing.T) {
	originalVars := map[string]string{
		"PORT":            os.Getenv("PORT"),
		"SQLITE_DB_PATH":  os.Getenv("SQLITE_DB_PATH"),
		"DRIVE_FILE_NAME": os.Getenv("DRIVE_FILE_NAME"),
		"SYNC_DEBOUNCE":   os.Getenv("SYNC_DEBOUNCE"),
		"LANGUAGE":        os.Getenv("LANGUAGE"),
		"LOG_LEVEL":       os.Getenv("LOG_LEVEL"),
	}
	for key := range originalVars {
		os.Unsetenv(key)
	}
	defer func() {
		for key, value := range originalVars {
			if value != "" {
				os.Setenv(key, value)
			} else {
				os.Unsetenv(key)
			}
		}
	}()

	t.Run("default values", func(t *testing.T) {
		cfg := Load()

		if cfg.Port != "8080" {
			t.Errorf("Load() Port = %v, want 8080", cfg.Port)
		}
		if cfg.SQLiteDBPath != "./data/zakat.db" {
			t.Errorf("Load() SQLiteDBPath = %v, want ./data/zakat.db", cfg.SQLiteDBPath)
		}
		if cfg.DriveFileName != "zakat-app-data.json" {
			t.Errorf("Load() DriveFileName = %v, want zakat-app-data.json", cfg.DriveFileName)
		}
		if cfg.SyncDebounce != 3*time.Second {
			t.Errorf("Load() SyncDebounce = %v, want 3s", cfg.SyncDebounce)
		}
		if cfg.Language != "en" {
			t.Errorf("Load() Language = %v, want en", cfg.Language)
		}
		if cfg.CloudSyncConfigured() {
			t.Error("Load() CloudSyncConfigured() = true with no credentials")
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		os.Setenv("PORT", "9090")
		os.Setenv("SQLITE_DB_PATH", "/tmp/test.db")
		os.Setenv("DRIVE_FILE_NAME", "custom.json")
		os.Setenv("SYNC_DEBOUNCE", "5s")
		os.Setenv("LANGUAGE", "ar")

		cfg := Load()

		if cfg.Port != "9090" {
			t.Errorf("Load() Port = %v, want 9090", cfg.Port)
		}
		if cfg.SQLiteDBPath != "/tmp/test.db" {
			t.Errorf("Load() SQLiteDBPath = %v, want /tmp/test.db", cfg.SQLiteDBPath)
		}
		if cfg.DriveFileName != "custom.json" {
			t.Errorf("Load() DriveFileName = %v, want custom.json", cfg.DriveFileName)
		}
		if cfg.SyncDebounce != 5*time.Second {
			t.Errorf("Load() SyncDebounce = %v, want 5s", cfg.SyncDebounce)
		}
		if cfg.Language != "ar" {
			t.Errorf("Load() Language = %v, want ar", cfg.Language)
		}
	})

	t.Run("invalid duration uses default", func(t *testing.T) {
		os.Setenv("SYNC_DEBOUNCE", "invalid")

		cfg := Load()

		if cfg.SyncDebounce != 3*time.Second {
			t.Errorf("Load() SyncDebounce = %v, want 3s (default for invalid input)", cfg.SyncDebounce)
		}
	})
}
