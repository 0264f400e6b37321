package datalog

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goquarium/host/capture"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "potlab.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSessionRoundTrip(t *testing.T) {
	db := openTestDB(t)

	id, err := db.BeginSession("/dev/ttyACM0", "first swing")
	require.NoError(t, err)

	in := []capture.Sample{
		{TimeMS: 0, Pot: 500, Cmd: 90},
		{TimeMS: 10, Pot: 504, Cmd: 115},
		{TimeMS: 20, Pot: 508, Cmd: 115},
	}
	require.NoError(t, db.AddSamples(id, in))

	out, err := db.Samples(id)
	require.NoError(t, err)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}

	sessions, err := db.Sessions()
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, id, sessions[0].ID)
	assert.Equal(t, "/dev/ttyACM0", sessions[0].Device)
	assert.Equal(t, "first swing", sessions[0].Note)
	assert.Equal(t, 3, sessions[0].Samples)
	assert.NotEmpty(t, sessions[0].StartedAt)
}

func TestSessionsAreIsolated(t *testing.T) {
	db := openTestDB(t)

	first, err := db.BeginSession("sim", "")
	require.NoError(t, err)
	second, err := db.BeginSession("sim", "rerun")
	require.NoError(t, err)

	require.NoError(t, db.AddSamples(first, []capture.Sample{{TimeMS: 0, Pot: 100, Cmd: 90}}))
	require.NoError(t, db.AddSamples(second, []capture.Sample{
		{TimeMS: 0, Pot: 900, Cmd: 90},
		{TimeMS: 10, Pot: 899, Cmd: 85},
	}))

	out, err := db.Samples(first)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 100, out[0].Pot)

	sessions, err := db.Sessions()
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, 1, sessions[0].Samples)
	assert.Equal(t, 2, sessions[1].Samples)
}

func TestEmptySession(t *testing.T) {
	db := openTestDB(t)

	id, err := db.BeginSession("sim", "nothing captured")
	require.NoError(t, err)

	out, err := db.Samples(id)
	require.NoError(t, err)
	assert.Empty(t, out)

	sessions, err := db.Sessions()
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Zero(t, sessions[0].Samples)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "potlab.db")

	db, err := NewDB(path)
	require.NoError(t, err)
	id, err := db.BeginSession("sim", "")
	require.NoError(t, err)
	require.NoError(t, db.AddSamples(id, []capture.Sample{{TimeMS: 5, Pot: 321, Cmd: 70}}))
	require.NoError(t, db.Close())

	db, err = NewDB(path)
	require.NoError(t, err)
	defer db.Close()

	out, err := db.Samples(id)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, capture.Sample{TimeMS: 5, Pot: 321, Cmd: 70}, out[0])
}
