package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/apisim/internal/id"
	"github.com/getmockd/apisim/pkg/config"
	"github.com/getmockd/apisim/pkg/mock"
	"github.com/getmockd/apisim/pkg/server"
	"github.com/getmockd/apisim/pkg/store"
	"github.com/getmockd/apisim/pkg/store/memory"
)

func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// startServer runs a real handler tree over a memory store.
func startServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()
	st := memory.New()
	cfg := config.Default()
	cfg.Backend = string(store.BackendMemory)
	cfg.RateLimit.RPS = 0
	srv := server.New(cfg, st)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Shutdown(context.Background())
	})
	return ts, st
}

func seedCollection(t *testing.T, st *memory.Store) *mock.Collection {
	t.Helper()
	ctx := context.Background()
	now := time.Now()
	p := &mock.Project{ID: id.New(), Name: "Shop", Slug: "shop", CreatedAt: now}
	require.NoError(t, st.CreateProject(ctx, p))
	c := &mock.Collection{ID: id.New(), ProjectID: p.ID, Name: "V1", Slug: "v1", CreatedAt: now}
	require.NoError(t, st.CreateCollection(ctx, c))
	require.NoError(t, st.CreateAPI(ctx, &mock.API{
		ID:           id.New(),
		CollectionID: c.ID,
		Method:       mock.MethodGet,
		Endpoint:     "/ping",
		StatusCode:   200,
		ResponseType: mock.ResponseJSON,
		ResponseBody: `{"pong":true}`,
		CreatedAt:    now,
	}))
	return c
}

func TestServeFlags_Resolve(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "apisim.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("port: 6000\nmock_prefix: stub\nlog:\n  level: debug\n"), 0o600))

	tests := []struct {
		name    string
		args    []string
		env     map[string]string
		check   func(t *testing.T, cfg *config.Config)
		wantErr string
	}{
		{
			name: "defaults",
			env:  map[string]string{},
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, config.DefaultPort, cfg.Port)
				assert.Equal(t, config.DefaultMockPrefix, cfg.MockPrefix)
				assert.Equal(t, string(store.BackendSQLite), cfg.Backend)
			},
		},
		{
			name: "file overrides defaults",
			args: []string{"--config", cfgPath},
			env:  map[string]string{},
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, 6000, cfg.Port)
				assert.Equal(t, "stub", cfg.MockPrefix)
				assert.Equal(t, "debug", cfg.Log.Level)
			},
		},
		{
			name: "env overrides file",
			args: []string{"--config", cfgPath},
			env:  map[string]string{"APISIM_PORT": "7000", "APISIM_LOG_LEVEL": "warn"},
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, 7000, cfg.Port)
				assert.Equal(t, "warn", cfg.Log.Level)
				assert.Equal(t, "stub", cfg.MockPrefix)
			},
		},
		{
			name: "flags override env",
			args: []string{"--config", cfgPath, "--port", "8000", "--prefix", "fake"},
			env:  map[string]string{"APISIM_PORT": "7000"},
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, 8000, cfg.Port)
				assert.Equal(t, "fake", cfg.MockPrefix)
			},
		},
		{
			name: "unset flags keep env values",
			args: []string{"--log-format", "json"},
			env:  map[string]string{"APISIM_HOST": "0.0.0.0"},
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "0.0.0.0", cfg.Host)
				assert.Equal(t, "json", cfg.Log.Format)
			},
		},
		{
			name: "ephemeral selects memory",
			args: []string{"--backend", "sqlite", "--ephemeral"},
			env:  map[string]string{},
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, string(store.BackendMemory), cfg.Backend)
			},
		},
		{
			name:    "invalid log level",
			args:    []string{"--log-level", "loud"},
			env:     map[string]string{},
			wantErr: "log.level",
		},
		{
			name:    "invalid port",
			args:    []string{"--port", "70000"},
			env:     map[string]string{},
			wantErr: "port",
		},
		{
			name:    "missing config file",
			args:    []string{"--config", filepath.Join(dir, "nope.yaml")},
			env:     map[string]string{},
			wantErr: "read config",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := &serveFlags{}
			cmd := f.command()
			require.NoError(t, cmd.ParseFlags(tt.args))

			cfg, err := f.resolve(cmd, tt.env)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestHealthCmd(t *testing.T) {
	t.Parallel()

	ts, _ := startServer(t)

	t.Run("healthy", func(t *testing.T) {
		out, _, err := runCLI(t, "health", "--url", ts.URL)
		require.NoError(t, err)
		assert.Equal(t, "healthy\n", out)
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := runCLI(t, "health", "--url", ts.URL, "--json")
		require.NoError(t, err)
		var res healthResult
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.Equal(t, "healthy", res.Status)
		assert.Equal(t, "apisim", res.App)
	})

	t.Run("unreachable", func(t *testing.T) {
		_, errOut, err := runCLI(t, "health", "--url", "http://127.0.0.1:1")
		assert.ErrorIs(t, err, ErrUnhealthy)
		assert.Contains(t, errOut, "apisim serve")
	})
}

func TestExportCmd(t *testing.T) {
	t.Parallel()

	ts, st := startServer(t)
	c := seedCollection(t, st)

	t.Run("json to stdout", func(t *testing.T) {
		out, _, err := runCLI(t, "export", c.ID, "--url", ts.URL)
		require.NoError(t, err)
		var export mock.CollectionExport
		require.NoError(t, json.Unmarshal([]byte(out), &export))
		assert.Equal(t, c.ID, export.Collection.ID)
		require.Len(t, export.APIs, 1)
		assert.Equal(t, "/ping", export.APIs[0].Endpoint)
	})

	t.Run("yaml to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.yaml")
		_, errOut, err := runCLI(t, "export", c.ID, "--url", ts.URL, "--format", "yaml", "--output", path)
		require.NoError(t, err)
		assert.Contains(t, errOut, path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "endpoint: /ping")
	})

	t.Run("invalid format", func(t *testing.T) {
		_, _, err := runCLI(t, "export", c.ID, "--url", ts.URL, "--format", "xml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid format")
	})

	t.Run("unknown collection", func(t *testing.T) {
		_, _, err := runCLI(t, "export", "missing", "--url", ts.URL)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 404, apiErr.StatusCode)
	})

	t.Run("requires an id", func(t *testing.T) {
		_, _, err := runCLI(t, "export", "--url", ts.URL)
		assert.Error(t, err)
	})
}

func TestVersionCmd(t *testing.T) {
	t.Parallel()

	out, _, err := runCLI(t, "version", "--json")
	require.NoError(t, err)

	var info VersionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
}

func TestFormatError(t *testing.T) {
	t.Parallel()

	msg := FormatError(&APIError{ErrorCode: ErrCodeConnection, Message: "cannot connect"})
	assert.Contains(t, msg, "apisim serve")
	assert.Contains(t, msg, URLEnv)

	assert.Equal(t, "Error: boom", FormatError(&APIError{ErrorCode: "internal_error", Message: "boom"}))
}
