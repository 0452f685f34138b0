package integration

import (
	"bytes"
	"os/exec"
	"path/filepath"
	"testing"
)

// runCommand runs a command and returns stdout, stderr, and error.
func runCommand(dir string, name string, args ...string) (string, string, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// buildAddBindings builds the add-bindings binary for testing.
// Returns the absolute path to the binary.
func buildAddBindings(t *testing.T) string {
	t.Helper()

	rootDir, err := filepath.Abs("../../")
	if err != nil {
		t.Fatalf("failed to get absolute path to root: %v", err)
	}

	outputPath := filepath.Join(t.TempDir(), "add-bindings-test")

	cmd := exec.Command("go", "build", "-o", outputPath, "./cmd/add-bindings")
	cmd.Dir = rootDir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("failed to build add-bindings: %v\noutput: %s", err, out)
	}

	return outputPath
}

// exitCode returns the exit code of a finished command, or -1.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}
