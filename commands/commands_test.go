package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stevemurr/string-analysis-server/config"
	"github.com/stevemurr/string-analysis-server/store"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "string-analysis-server", cmd.Use)

	for _, name := range []string{"serve", "analyze"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"config", "json-logs", "log-level"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
	level := cmd.PersistentFlags().Lookup("log-level")
	assert.Equal(t, "info", level.DefValue)

	// The root command serves, so it carries the serve flags too.
	for _, name := range []string{"port", "host", "backend"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func TestServeFlagsBindConfig(t *testing.T) {
	t.Setenv("PORT", "9999")
	opts := &RootOptions{v: viper.New()}
	serve := NewServeCommand(opts)

	var cfg *config.Config
	serve.RunE = func(*cobra.Command, []string) error {
		if err := opts.load(); err != nil {
			return err
		}
		var err error
		cfg, err = opts.Config()
		return err
	}
	serve.SetArgs([]string{"--port", "4321", "--backend", "sqlite"})
	require.NoError(t, serve.Execute())

	require.NotNil(t, cfg)
	assert.Equal(t, 4321, cfg.Server.Port, "flags win over the environment")
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestAnalyzeCommand(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"analyze", "--compact", "racecar", "hello world"})
	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var first store.Record
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "racecar", first.Value)
	assert.Equal(t, first.Properties.SHA256Hash, first.ID)
	assert.True(t, first.Properties.IsPalindrome)
	assert.Equal(t, 7, first.Properties.Length)
	assert.Equal(t, 4, first.Properties.UniqueCharacters)

	var second store.Record
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, 2, second.Properties.WordCount)
	assert.False(t, second.Properties.IsPalindrome)
}

func TestAnalyzeCommandRequiresArgs(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"analyze"})
	assert.Error(t, cmd.Execute())
}

func TestInvalidBackendIsRejected(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"serve", "--backend", "json"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store.backend")
}

func TestRunServer(t *testing.T) {
	for _, backend := range store.Backends {
		t.Run(backend, func(t *testing.T) {
			cfg := &config.Config{
				Server: config.ServerConfig{
					Host:            "127.0.0.1",
					Port:            0,
					AllowedOrigins:  []string{"*"},
					ShutdownTimeout: time.Second,
				},
				Store: config.StoreConfig{Backend: backend},
				Log:   config.LogConfig{Level: "info"},
			}

			ctx, cancel := context.WithCancel(context.Background())
			ready := make(chan string, 1)
			done := make(chan error, 1)
			go func() { done <- runServer(ctx, cfg, ready) }()

			var addr string
			select {
			case addr = <-ready:
			case err := <-done:
				t.Fatalf("server exited early: %v", err)
			case <-time.After(5 * time.Second):
				t.Fatal("server did not start")
			}

			resp, err := http.Post("http://"+addr+"/strings", "application/json", strings.NewReader(`{"value":"level"}`))
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusCreated, resp.StatusCode)

			resp, err = http.Get("http://" + addr + "/metrics")
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			cancel()
			select {
			case err := <-done:
				assert.NoError(t, err)
			case <-time.After(5 * time.Second):
				t.Fatal("server did not shut down")
			}
		})
	}
}
