package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comigor/becas-go/internal/agent"
	"github.com/comigor/becas-go/internal/config"
	"github.com/comigor/becas-go/internal/history"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"OPENAI_API_KEY", "BECAS_LLM_API_KEY", "CONFIG_PATH", "BECAS_HISTORY_DRIVER"} {
		t.Setenv(k, "")
	}
}

func testDeps(resp *mockResponder) Deps {
	deps := DefaultDeps()
	deps.NewResponder = func(config.LLMConfig) agent.Responder { return resp }
	return deps
}

func TestRootCmd_Use(t *testing.T) {
	cmd := NewRootCmd(DefaultDeps())
	assert.Equal(t, "becas", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("config"))
	assert.NotNil(t, cmd.Flags().Lookup("log-level"))
	assert.NotNil(t, cmd.Flags().Lookup("dir"))
}

func TestRootCmd_MissingCredential(t *testing.T) {
	clearEnv(t)
	resp := &mockResponder{}
	cmd := NewRootCmd(testDeps(resp))
	cmd.SetArgs([]string{})
	cmd.SetIn(strings.NewReader("hola\n"))
	out := &strings.Builder{}
	cmd.SetOut(out)

	err := cmd.Execute()

	require.ErrorIs(t, err, config.ErrMissingCredential)
	assert.Empty(t, resp.payloads)
	assert.Empty(t, out.String())
}

func TestRootCmd_RejectsArgs(t *testing.T) {
	clearEnv(t)
	cmd := NewRootCmd(DefaultDeps())
	cmd.SetArgs([]string{"extra"})
	cmd.SetOut(&strings.Builder{})
	cmd.SetErr(&strings.Builder{})

	assert.Error(t, cmd.Execute())
}

func TestRootCmd_RunsSession(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	resp := &mockResponder{reply: "Consulta el portal de Pronabec."}

	cmd := NewRootCmd(testDeps(resp))
	cmd.SetArgs([]string{"--log-level", "error"})
	cmd.SetIn(strings.NewReader("¿Cuándo cierra la convocatoria?\n/salir\n"))
	out := &strings.Builder{}
	cmd.SetOut(out)

	require.NoError(t, cmd.Execute())
	require.Equal(t, []string{"¿Cuándo cierra la convocatoria?"}, resp.payloads)
	assert.Contains(t, out.String(), history.Greeting)
	assert.Contains(t, out.String(), "Consulta el portal de Pronabec.")
}

func TestRootCmd_DirResolvesRelativePaths(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bases.txt"), []byte("Plazo: 30 de abril."), 0o600))
	resp := &mockResponder{reply: "El plazo vence el 30 de abril."}

	cmd := NewRootCmd(testDeps(resp))
	cmd.SetArgs([]string{"--log-level", "error", "--dir", dir})
	cmd.SetIn(strings.NewReader("/adjuntar bases.txt\n¿Hasta cuándo?\n/exportar txt chat.txt\n/salir\n"))
	out := &strings.Builder{}
	cmd.SetOut(out)

	require.NoError(t, cmd.Execute())
	require.Len(t, resp.payloads, 1)
	assert.Contains(t, resp.payloads[0], "Plazo: 30 de abril.")

	data, err := os.ReadFile(filepath.Join(dir, "chat.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "El plazo vence el 30 de abril.")
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	mem, err := OpenStore(ctx, config.HistoryConfig{Driver: config.HistoryMemory})
	require.NoError(t, err)
	assert.IsType(t, &history.Memory{}, mem)
	require.NoError(t, mem.Close())

	db, err := OpenStore(ctx, config.HistoryConfig{Driver: config.HistorySQLite})
	require.NoError(t, err)
	assert.IsType(t, &history.SQLite{}, db)
	msgs, err := db.All(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, history.Greeting, msgs[0].Content)
	require.NoError(t, db.Close())
}
