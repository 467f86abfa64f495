package main

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) string { return "" }

func descriptor(version, url string) string {
	return `<teamcity-plugin>
  <info>
    <version>` + version + `</version>
    <vendor>
      <name>JetBrains</name>
      <url>` + url + `</url>
    </vendor>
  </info>
</teamcity-plugin>`
}

func writePluginZip(t *testing.T, path, content string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck // test cleanup

	w := zip.NewWriter(f)
	ew, err := w.Create("teamcity-plugin.xml")
	require.NoError(t, err)
	_, err = ew.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr, noEnv)
	return code, stdout.String(), stderr.String()
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"one argument", []string{"plugins"}},
		{"three arguments", []string{"plugins", "9.0", "extra"}},
		{"unknown flag", []string{"--bogus", "plugins", "9.0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, _ := runCLI(t, tt.args...)
			assert.Equal(t, 1, code)
			assert.Contains(t, stdout, "Usage:")
			assert.Contains(t, stdout, "plugincheck <plugins-dir> <version>")
		})
	}
}

func TestRun_MissingRoot(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")

	code, _, stderr := runCLI(t, missing, "9.0")

	assert.Equal(t, 2, code)
	assert.Equal(t, "Failed to find plugins path: "+missing+"\n", stderr)
}

func TestRun_Scenarios(t *testing.T) {
	t.Run("valid plugin", func(t *testing.T) {
		root := t.TempDir()
		writePluginZip(t, filepath.Join(root, "foo.zip"), descriptor("9.0", "https://www.jetbrains.com"))

		code, stdout, _ := runCLI(t, root, "9.0")

		assert.Equal(t, 0, code)
		assert.Contains(t, stdout, "##teamcity[testSuiteStarted name='PluginVersions']")
		assert.Contains(t, stdout, "foo.zip -> 9.0")
		assert.NotContains(t, stdout, "Errors:")
	})

	t.Run("version mismatch", func(t *testing.T) {
		root := t.TempDir()
		writePluginZip(t, filepath.Join(root, "foo.zip"), descriptor("8.0", "https://www.jetbrains.com"))

		code, stdout, _ := runCLI(t, root, "9.0")

		assert.Equal(t, 2, code)
		assert.Contains(t, stdout, "Errors:\nfoo.zip: incorrect plugin version: 8.0\n")
	})

	t.Run("mixed batch", func(t *testing.T) {
		root := t.TempDir()
		writePluginZip(t, filepath.Join(root, "good.zip"), descriptor("9.0", "http://www.jetbrains.com"))
		require.NoError(t, os.Mkdir(filepath.Join(root, "bar"), 0750))

		code, stdout, _ := runCLI(t, root, "9.0")

		assert.Equal(t, 2, code)
		assert.Contains(t, stdout, "status='WARNING'")
		errorsSection := stdout[strings.Index(stdout, "Errors:"):]
		assert.Contains(t, errorsSection, "bar: teamcity-plugin.xml is not contained in .zip")
		assert.NotContains(t, errorsSection, "good.zip")
	})

	t.Run("console format", func(t *testing.T) {
		root := t.TempDir()
		writePluginZip(t, filepath.Join(root, "foo.zip"), descriptor("9.0", "https://www.jetbrains.com"))

		code, stdout, _ := runCLI(t, "--format", "console", root, "9.0")

		assert.Equal(t, 0, code)
		assert.NotContains(t, stdout, "##teamcity")
		assert.Contains(t, stdout, "1 scanned, 0 failures, 0 advisories")
	})
}

func TestRun_SetupErrors(t *testing.T) {
	root := t.TempDir()

	badConfig := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(badConfig, []byte("policy:\n  vendorname: x\n"), 0600))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown format", []string{"--format", "junit", root, "9.0"}, `unknown format "junit"`},
		{"bad config", []string{"--config", badConfig, root, "9.0"}, "failed to load config"},
		{"missing config", []string{"--config", filepath.Join(root, "none.yaml"), root, "9.0"}, "failed to load config"},
		{"sign key without report", []string{"--sign-key", "key.asc", root, "9.0"}, "a signing key needs a report path"},
		{"bad skip pattern", []string{"--skip", "[x", root, "9.0"}, "scan.skip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, tt.args...)
			assert.Equal(t, 1, code)
			assert.Contains(t, stderr, tt.want)
		})
	}
}

func TestRun_SkipFlag(t *testing.T) {
	root := t.TempDir()
	writePluginZip(t, filepath.Join(root, "old.zip"), descriptor("1.0", "https://www.jetbrains.com"))
	writePluginZip(t, filepath.Join(root, "new.zip"), descriptor("9.0", "https://www.jetbrains.com"))

	code, stdout, _ := runCLI(t, "--skip", "old*", root, "9.0")

	assert.Equal(t, 0, code)
	assert.NotContains(t, stdout, "old.zip")
}

// writeKeyPair writes an armored private key and public keyring into dir
func writeKeyPair(t *testing.T, dir string) (string, string) {
	t.Helper()

	entity, err := openpgp.NewEntity("release bot", "", "release@example.com", nil)
	require.NoError(t, err)

	var priv, pub bytes.Buffer
	w, err := armor.Encode(&priv, openpgp.PrivateKeyType, nil)
	require.NoError(t, err)
	require.NoError(t, entity.SerializePrivate(w, nil))
	require.NoError(t, w.Close())

	w, err = armor.Encode(&pub, openpgp.PublicKeyType, nil)
	require.NoError(t, err)
	require.NoError(t, entity.Serialize(w))
	require.NoError(t, w.Close())

	privPath := filepath.Join(dir, "private.asc")
	pubPath := filepath.Join(dir, "public.asc")
	require.NoError(t, os.WriteFile(privPath, priv.Bytes(), 0600))
	require.NoError(t, os.WriteFile(pubPath, pub.Bytes(), 0600))

	return privPath, pubPath
}

func TestRun_SignedReport(t *testing.T) {
	root := t.TempDir()
	writePluginZip(t, filepath.Join(root, "foo.zip"), descriptor("8.0", "https://www.jetbrains.com"))

	keys := t.TempDir()
	privPath, pubPath := writeKeyPair(t, keys)
	reportPath := filepath.Join(t.TempDir(), "report.json")

	code, _, stderr := runCLI(t, "--report", reportPath, "--sign-key", privPath, root, "9.0")
	require.Equal(t, 2, code, stderr)

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"passed": false`)
	assert.Contains(t, string(data), "foo.zip: incorrect plugin version: 8.0")
	assert.FileExists(t, reportPath+".asc")

	t.Run("verifies", func(t *testing.T) {
		code, stdout, stderr := runCLI(t, "verify-report", reportPath, "--key", pubPath)
		assert.Equal(t, 0, code, stderr)
		assert.Contains(t, stdout, "Signature OK")
		assert.Contains(t, stdout, "failed (1 failures)")
	})

	t.Run("tampered report", func(t *testing.T) {
		tampered := filepath.Join(t.TempDir(), "report.json")
		require.NoError(t, os.WriteFile(tampered, bytes.Replace(data, []byte(`"passed": false`), []byte(`"passed": true`), 1), 0600))

		code, _, stderr := runCLI(t, "verify-report", tampered, "--key", pubPath, "--signature", reportPath+".asc")
		assert.Equal(t, 2, code)
		assert.Contains(t, stderr, "signature verification failed")
	})

	t.Run("missing key flag", func(t *testing.T) {
		code, stdout, _ := runCLI(t, "verify-report", reportPath)
		assert.Equal(t, 1, code)
		assert.Contains(t, stdout, "--key is required")
	})
}
