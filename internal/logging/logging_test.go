package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"

	"sentinel/internal/config"
)

func TestConfigure(t *testing.T) {
	t.Run("json format emits structured lines", func(t *testing.T) {
		var buf bytes.Buffer
		logger := log.New()
		if err := configure(logger, config.LogConfig{Level: "debug", Format: "json"}, &buf); err != nil {
			t.Fatalf("configure: %v", err)
		}

		logger.WithField("subnet", "10.0.0.0/24").Debug("Scan started")

		var line map[string]any
		if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
			t.Fatalf("expected JSON output, got %q", buf.String())
		}
		if line["subnet"] != "10.0.0.0/24" {
			t.Errorf("expected subnet field, got %v", line["subnet"])
		}
	})

	t.Run("level filters lower entries", func(t *testing.T) {
		var buf bytes.Buffer
		logger := log.New()
		if err := configure(logger, config.LogConfig{Level: "warn", Format: "text"}, &buf); err != nil {
			t.Fatalf("configure: %v", err)
		}

		logger.Info("hidden")
		logger.Warn("shown")

		if strings.Contains(buf.String(), "hidden") {
			t.Error("expected info entry to be filtered")
		}
		if !strings.Contains(buf.String(), "shown") {
			t.Error("expected warn entry in output")
		}
	})

	t.Run("rejects unknown values", func(t *testing.T) {
		if err := configure(log.New(), config.LogConfig{Level: "loud"}, &bytes.Buffer{}); err == nil {
			t.Error("expected error for unknown level")
		}
		if err := configure(log.New(), config.LogConfig{Level: "info", Format: "xml"}, &bytes.Buffer{}); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}
