package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestWritingCommandsRefuseMemoryStore(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("APP_ENV", "test")
	t.Setenv("LOG_LEVEL", "error")

	cases := [][]string{
		{"admins", "create", "--email", "root@example.com", "--password", "pw", "--name", "Root"},
		{"tickets", "assign-unassigned"},
	}
	for _, args := range cases {
		t.Run(strings.Join(args[:2], " "), func(t *testing.T) {
			var out bytes.Buffer
			rootCmd.SetOut(&out)
			rootCmd.SetErr(&out)
			rootCmd.SetArgs(args)

			err := rootCmd.Execute()
			if !errors.Is(err, errPostgresRequired) {
				t.Fatalf("expected errPostgresRequired, got %v", err)
			}
			if strings.Contains(out.String(), "created admin") {
				t.Fatalf("reported success: %q", out.String())
			}
		})
	}
}
