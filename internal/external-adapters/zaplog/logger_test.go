package zaplog

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/ochairo/plugincheck/internal/domain/interfaces"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"DEBUG", zapcore.DebugLevel, false},
		{"info", zapcore.InfoLevel, false},
		{"Warn", zapcore.WarnLevel, false},
		{"ERROR", zapcore.ErrorLevel, false},
		{"verbose", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	var logger interfaces.Logger = NewWithWriter(zapcore.InfoLevel, FormatJSON, &buf)

	logger.Debug("hidden")
	logger.Info("Scan finished", interfaces.F("scanned", 3), interfaces.F("root", "/plugins"))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "Scan finished", entry["msg"])
	assert.Equal(t, float64(3), entry["scanned"])
	assert.Equal(t, "/plugins", entry["root"])
}

func TestLogger_ConsoleLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(zapcore.WarnLevel, FormatConsole, &buf).Named("scan")

	logger.Info("quiet")
	logger.Warn("loud", interfaces.F("artifact", "foo.zip"))

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "WARN | scan | loud")
	assert.Contains(t, out, "foo.zip")
}
