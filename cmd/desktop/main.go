// Command desktop runs the server as a child process against a local sqlite
// file and opens the system browser on it.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/stockpos/internal/config"
	"github.com/JonMunkholm/stockpos/internal/logging"
)

const (
	appName       = "stockpos"
	serverBinName = "stockpos-server"
)

func main() {
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.LoadFrom(launcherLookup(os.LookupEnv))
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if err := run(cfg); err != nil {
		slog.Error("desktop launcher failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	dataDir, err := resolveDataDir(cfg.Desktop.DataDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	bin, err := resolveServerBinary(cfg.Desktop.ServerBinary)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := exec.Command(bin)
	cmd.Env = append(os.Environ(), serverEnv(cfg, dataDir)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start server %s: %w", bin, err)
	}

	url := localURL(cfg.Server.Port)
	slog.Info("server started", "pid", cmd.Process.Pid, "url", url, "database", cfg.Store.DatabaseFile(dataDir))

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	if cfg.Desktop.OpenBrowser {
		select {
		case <-time.After(cfg.Desktop.StartupDelay):
			if err := openBrowser(url); err != nil {
				slog.Warn("could not open browser", "url", url, "error", err)
			}
		case err := <-exited:
			return serverExit(err)
		case <-ctx.Done():
		}
	}

	select {
	case err := <-exited:
		return serverExit(err)
	case <-ctx.Done():
	}

	slog.Info("stopping server")
	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil && !errors.Is(err, os.ErrProcessDone) {
		cmd.Process.Kill() //nolint:errcheck // best effort
	}

	select {
	case err := <-exited:
		return serverExit(err)
	case <-time.After(cfg.Server.ShutdownTimeout + 5*time.Second):
		slog.Warn("server did not stop in time, killing it")
		cmd.Process.Kill() //nolint:errcheck // best effort
		<-exited
		return nil
	}
}

// launcherLookup pins STORE_DRIVER to sqlite, the only driver the launcher
// starts the server with, so settings for other drivers are not validated.
func launcherLookup(base config.LookupFunc) config.LookupFunc {
	return func(key string) (string, bool) {
		if key == "STORE_DRIVER" {
			return config.DriverSQLite, true
		}
		return base(key)
	}
}

// serverEnv is appended to the launcher's environment, so these values win
// over any inherited ones.
func serverEnv(cfg *config.Config, dataDir string) []string {
	return []string{
		"STORE_DRIVER=" + config.DriverSQLite,
		"SQLITE_PATH=" + cfg.Store.DatabaseFile(dataDir),
		"SERVER_HOST=127.0.0.1",
		"SERVER_PORT=" + strconv.Itoa(cfg.Server.Port),
	}
}

func localURL(port int) string {
	sc := config.ServerConfig{Host: "127.0.0.1", Port: port}
	return sc.URL()
}

func resolveDataDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(base, appName), nil
}

// resolveServerBinary prefers the configured path, then a server binary next
// to the launcher, then one on PATH.
func resolveServerBinary(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	name := serverBinName
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	if self, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(self), name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("server binary %s not found; set DESKTOP_SERVER_BINARY: %w", name, err)
	}
	return path, nil
}

func browserCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}

func openBrowser(url string) error {
	name, args := browserCommand(runtime.GOOS, url)
	return exec.Command(name, args...).Start()
}

// serverExit treats a clean exit or termination by our own signal as success.
func serverExit(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return nil
		}
	}
	return fmt.Errorf("server exited: %w", err)
}
