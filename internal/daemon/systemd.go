package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultUnitPath is where InstallSystemdUnit writes the service
const DefaultUnitPath = "/etc/systemd/system/mediasort.service"

// GenerateSystemdUnit creates a service running mediasort in watch mode
func GenerateSystemdUnit(binaryPath, configPath string) (string, error) {
	if !filepath.IsAbs(binaryPath) {
		return "", fmt.Errorf("binary path must be absolute: %s", binaryPath)
	}
	if !filepath.IsAbs(configPath) {
		return "", fmt.Errorf("config path must be absolute: %s", configPath)
	}
	if strings.ContainsAny(binaryPath+configPath, " \t\n\"'") {
		return "", fmt.Errorf("paths must not contain whitespace or quotes")
	}

	unit := fmt.Sprintf(`[Unit]
Description=mediasort inbox watcher
After=network-online.target
Wants=network-online.target

[Service]
Type=simple
ExecStart=%s --config %s
Restart=on-failure
RestartSec=10

[Install]
WantedBy=multi-user.target
`, binaryPath, configPath)

	return unit, nil
}

// InstallSystemdUnit writes the service file to unitPath
func InstallSystemdUnit(unitPath, binaryPath, configPath string) error {
	unit, err := GenerateSystemdUnit(binaryPath, configPath)
	if err != nil {
		return err
	}

	if err := os.WriteFile(unitPath, []byte(unit), 0o644); err != nil {
		return fmt.Errorf("failed to write unit file: %w", err)
	}
	return nil
}
