package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/plusminus/internal/store"
)

func TestReplayEmptyDatabase(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run(t, "replay")
	require.NoError(t, err)
	assert.Contains(t, out, "No events found in database.")
}

func TestReplayDeterministic(t *testing.T) {
	env := newTestEnv(t)
	seedBlocks(t, env)
	_, _, err := env.run(t, "load", "join", `<mutation items="0"></mutation>`)
	require.NoError(t, err)

	out, _, err := env.run(t, "replay")
	require.NoError(t, err)
	assert.Contains(t, out, "Replay Summary: 5 event(s), 2 block(s)")
	assert.Contains(t, out, "✓ Replay verified deterministic")

	out, _, err = env.run(t, "--format", "json", "replay")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Deterministic)
	assert.Len(t, resp.Data.Hashes, 2)
	assert.Len(t, resp.Data.Hashes["list"], 64)
}

func TestReplayDetectsTamperedLog(t *testing.T) {
	env := newTestEnv(t)
	_, _, err := env.run(t, "new", "lists_create_with", "--id", "list")
	require.NoError(t, err)
	_, _, err = env.run(t, "click", "list", "plus")
	require.NoError(t, err)

	st, err := store.Open(env.db)
	require.NoError(t, err)
	_, err = st.DB().Exec("DELETE FROM events WHERE seq = 2")
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, _, err := env.run(t, "--format", "json", "replay")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "REPLAY_MISMATCH", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "block=list")
}
