package main

import (
	"path/filepath"
	"slices"
	"testing"

	"github.com/JonMunkholm/stockpos/internal/config"
)

func TestServerEnv(t *testing.T) {
	cfg, err := config.LoadFrom(func(key string) (string, bool) {
		if key == "SERVER_PORT" {
			return "9090", true
		}
		return "", false
	})
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	dir := t.TempDir()
	env := serverEnv(cfg, dir)

	want := []string{
		"STORE_DRIVER=sqlite",
		"SQLITE_PATH=" + filepath.Join(dir, "stockpos.db"),
		"SERVER_HOST=127.0.0.1",
		"SERVER_PORT=9090",
	}
	if !slices.Equal(env, want) {
		t.Errorf("serverEnv = %v, want %v", env, want)
	}
}

func TestLauncherLookup_IgnoresOtherDrivers(t *testing.T) {
	env := map[string]string{"STORE_DRIVER": "postgres", "SERVER_PORT": "9091"}
	lookup := launcherLookup(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})

	cfg, err := config.LoadFrom(lookup)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Store.Driver != config.DriverSQLite {
		t.Errorf("Driver = %q, want sqlite", cfg.Store.Driver)
	}
	if cfg.Server.Port != 9091 {
		t.Errorf("Port = %d, want 9091", cfg.Server.Port)
	}
}

func TestBrowserCommand(t *testing.T) {
	tests := []struct {
		goos     string
		wantName string
		wantArgs int
	}{
		{"darwin", "open", 1},
		{"windows", "rundll32", 2},
		{"linux", "xdg-open", 1},
		{"freebsd", "xdg-open", 1},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args := browserCommand(tt.goos, "http://127.0.0.1:8080")
			if name != tt.wantName || len(args) != tt.wantArgs {
				t.Errorf("browserCommand(%s) = %s %v", tt.goos, name, args)
			}
			if args[len(args)-1] != "http://127.0.0.1:8080" {
				t.Errorf("url not last argument: %v", args)
			}
		})
	}
}

func TestResolveDataDir(t *testing.T) {
	if got, _ := resolveDataDir("/srv/pos"); got != "/srv/pos" {
		t.Errorf("explicit dir = %q", got)
	}
	got, err := resolveDataDir("")
	if err != nil {
		t.Skipf("no user config dir: %v", err)
	}
	if filepath.Base(got) != appName {
		t.Errorf("default dir = %q", got)
	}
}

func TestLocalURL(t *testing.T) {
	if got := localURL(8080); got != "http://127.0.0.1:8080" {
		t.Errorf("localURL = %q", got)
	}
}
