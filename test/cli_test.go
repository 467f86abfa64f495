package test_test

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

var (
	buildOnce sync.Once
	cliPath   string
	buildErr  error
	buildOut  []byte
)

// buildCLI builds the plugincheck CLI binary once per test run
func buildCLI(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping CLI integration test in short mode")
	}

	buildOnce.Do(func() {
		buildDir, err := filepath.Abs(filepath.Join("..", "test-dist", "cli-bin"))
		if err != nil {
			buildErr = err
			return
		}
		if err := os.MkdirAll(buildDir, 0750); err != nil {
			buildErr = err
			return
		}

		cliPath = filepath.Join(buildDir, "plugincheck")
		cmd := exec.Command("go", "build", "-o", cliPath, "../cmd/plugincheck") // #nosec G204 -- test code with controlled input
		buildOut, buildErr = cmd.CombinedOutput()
	})

	if buildErr != nil {
		t.Fatalf("Failed to build CLI: %v\nOutput: %s", buildErr, buildOut)
	}
	return cliPath
}

// runCLI runs the binary and returns its exit code, stdout and stderr
func runCLI(t *testing.T, env []string, args ...string) (int, string, string) {
	t.Helper()

	cmd := exec.Command(buildCLI(t), args...) // #nosec G204 -- test code with controlled input
	cmd.Dir = t.TempDir()
	cmd.Env = append(os.Environ(), env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	code := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			t.Fatalf("Failed to run CLI: %v", err)
		}
		code = exitErr.ExitCode()
	}

	return code, stdout.String(), stderr.String()
}

func pluginDescriptor(version, vendor, url string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<teamcity-plugin xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
  <info>
    <name>sample</name>
    <display-name>Sample</display-name>
    <version>` + version + `</version>
    <vendor>
      <name>` + vendor + `</name>
      <url>` + url + `</url>
    </vendor>
  </info>
  <deployment use-separate-classloader="true"/>
</teamcity-plugin>
`
}

func writeArchive(t *testing.T, path string, entries map[string]string) {
	t.Helper()

	f, err := os.Create(path) // #nosec G304 -- path is inside the test temp dir
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close() //nolint:errcheck // test cleanup

	w := zip.NewWriter(f)
	for name, content := range entries {
		ew, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := ew.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

// TestCLI_Help tests help output for all commands
func TestCLI_Help(t *testing.T) {
	for _, args := range [][]string{{"--help"}, {"verify-report", "--help"}} {
		t.Run(strings.Join(args, "_"), func(t *testing.T) {
			code, stdout, _ := runCLI(t, nil, args...)
			if code != 0 {
				t.Errorf("help exited with %d", code)
			}
			if !strings.Contains(stdout, "Usage:") {
				t.Errorf("Expected usage information in help output, got:\n%s", stdout)
			}
		})
	}
}

// TestCLI_ExitCodes runs the documented scenarios through the binary
func TestCLI_ExitCodes(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(t *testing.T, root string)
		args       func(root string) []string
		wantCode   int
		wantStdout []string
		wantStderr string
	}{
		{
			name:       "wrong argument count",
			args:       func(root string) []string { return []string{root} },
			wantCode:   1,
			wantStdout: []string{"Usage:"},
		},
		{
			name:       "plugins path is a file",
			setup:      func(t *testing.T, root string) { writeArchive(t, filepath.Join(root, "x.zip"), nil) },
			args:       func(root string) []string { return []string{filepath.Join(root, "x.zip"), "9.0"} },
			wantCode:   2,
			wantStderr: "Failed to find plugins path: ",
		},
		{
			name: "valid zipped plugin",
			setup: func(t *testing.T, root string) {
				writeArchive(t, filepath.Join(root, "foo.zip"), map[string]string{
					"teamcity-plugin.xml": pluginDescriptor("9.0", "JetBrains", "https://www.jetbrains.com"),
				})
			},
			args:       func(root string) []string { return []string{root, "9.0"} },
			wantCode:   0,
			wantStdout: []string{"Scanning: foo.zip", "foo.zip -> 9.0", "##teamcity[testFinished name='foo.zip']"},
		},
		{
			name: "version mismatch",
			setup: func(t *testing.T, root string) {
				writeArchive(t, filepath.Join(root, "foo.zip"), map[string]string{
					"teamcity-plugin.xml": pluginDescriptor("8.0", "JetBrains", "https://www.jetbrains.com"),
				})
			},
			args:       func(root string) []string { return []string{root, "9.0"} },
			wantCode:   2,
			wantStdout: []string{"Errors:\nfoo.zip: incorrect plugin version: 8.0\n"},
		},
		{
			name:       "missing descriptor",
			setup:      func(t *testing.T, root string) { _ = os.Mkdir(filepath.Join(root, "bar"), 0750) },
			args:       func(root string) []string { return []string{root, "9.0"} },
			wantCode:   2,
			wantStdout: []string{"bar: teamcity-plugin.xml is not contained in .zip"},
		},
		{
			name: "insecure url passes with advisory",
			setup: func(t *testing.T, root string) {
				writeArchive(t, filepath.Join(root, "foo.zip"), map[string]string{
					"teamcity-plugin.xml": pluginDescriptor("9.0", "JetBrains", "http://www.jetbrains.com"),
				})
			},
			args:       func(root string) []string { return []string{root, "9.0"} },
			wantCode:   0,
			wantStdout: []string{"status='WARNING'"},
		},
		{
			name: "hidden entries are ignored",
			setup: func(t *testing.T, root string) {
				_ = os.Mkdir(filepath.Join(root, ".git"), 0750)
				writeArchive(t, filepath.Join(root, ".broken.zip"), nil)
			},
			args:     func(root string) []string { return []string{root, "9.0"} },
			wantCode: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			if tt.setup != nil {
				tt.setup(t, root)
			}

			code, stdout, stderr := runCLI(t, nil, tt.args(root)...)

			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d\nstdout:\n%s\nstderr:\n%s", code, tt.wantCode, stdout, stderr)
			}
			for _, want := range tt.wantStdout {
				if !strings.Contains(stdout, want) {
					t.Errorf("stdout missing %q:\n%s", want, stdout)
				}
			}
			if tt.wantStderr != "" && !strings.Contains(stderr, tt.wantStderr) {
				t.Errorf("stderr missing %q:\n%s", tt.wantStderr, stderr)
			}
		})
	}
}

// TestCLI_LogsStayOffStdout checks that debug logging never mixes into the trace
func TestCLI_LogsStayOffStdout(t *testing.T) {
	root := t.TempDir()
	writeArchive(t, filepath.Join(root, "foo.zip"), map[string]string{
		"teamcity-plugin.xml": pluginDescriptor("9.0", "JetBrains", "https://www.jetbrains.com"),
	})

	code, stdout, stderr := runCLI(t, []string{"LOGGING_FORMAT=JSON"}, "--log-level", "DEBUG", root, "9.0")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}

	if !strings.Contains(stderr, `"msg":"Scan finished"`) {
		t.Errorf("expected JSON debug logs on stderr, got:\n%s", stderr)
	}
	for _, line := range strings.Split(strings.TrimSpace(stdout), "\n") {
		if strings.HasPrefix(line, "{") {
			t.Errorf("log line leaked to stdout: %s", line)
		}
	}
}
