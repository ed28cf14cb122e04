//go:build integration

package testutil

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	cliImage       = "alpine:3.20"
	cliPath        = "/usr/local/bin/mutationq"
	cliExitTimeout = 2 * time.Minute
)

// BuildBinary cross-compiles the command in pkg for linux without cgo.
func BuildBinary(t *testing.T, pkg string) string {
	t.Helper()

	bin := filepath.Join(t.TempDir(), "mutationq")
	cmd := exec.Command("go", "build", "-o", bin, pkg)
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0", "GOOS=linux", "GOARCH="+runtime.GOARCH)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build %s: %v\n%s", pkg, err, out)
	}

	return bin
}

// CLIRun describes one invocation of the mutationq binary inside a container.
type CLIRun struct {
	Network *testcontainers.DockerNetwork
	Binary  string
	Args    []string
	// Env carries MUTATIONQ_* settings, exercising the same path as a deployed relay.
	Env map[string]string
}

// CLIResult is the exit code and combined output of a CLIRun.
type CLIResult struct {
	ExitCode int
	Output   string
}

// RunCLI runs the binary to completion and returns its result.
func RunCLI(t *testing.T, ctx context.Context, run CLIRun) CLIResult {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:      cliImage,
			Entrypoint: []string{cliPath},
			Cmd:        run.Args,
			Env:        run.Env,
			Networks:   []string{run.Network.Name},
			Files: []testcontainers.ContainerFile{{
				HostFilePath:      run.Binary,
				ContainerFilePath: cliPath,
				FileMode:          0o755,
			}},
			WaitingFor: wait.ForExit().WithExitTimeout(cliExitTimeout),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start cli container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	logs, err := container.Logs(ctx)
	if err != nil {
		t.Fatalf("read cli logs: %v", err)
	}
	defer logs.Close()

	out, err := io.ReadAll(logs)
	if err != nil {
		t.Fatalf("read cli logs: %v", err)
	}
	state, err := container.State(ctx)
	if err != nil {
		t.Fatalf("read cli state: %v", err)
	}

	return CLIResult{ExitCode: state.ExitCode, Output: string(out)}
}
