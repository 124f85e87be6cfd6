package setup_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"music-room/internal/infra/setup"
)

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rooms.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultSampleRooms(t *testing.T) {
	rooms := setup.DefaultSampleRooms()
	require.Len(t, rooms, 2)

	assert.Equal(t, "room_sample1", rooms[0].ID)
	assert.Equal(t, "Chill Vibes", rooms[0].Name)
	assert.Equal(t, "Lo-fi", *rooms[0].Genre)
	assert.Equal(t, 12, rooms[0].MemberCount)

	assert.Equal(t, "room_sample2", rooms[1].ID)
	assert.Equal(t, "Rock Classics", rooms[1].Name)
	assert.Equal(t, "The best rock hits from the 70s to 90s", *rooms[1].Description)
	assert.Equal(t, 8, rooms[1].MemberCount)
}

func TestLoadSeedRooms_EmptyPathUsesDefaults(t *testing.T) {
	rooms, err := setup.LoadSeedRooms("")
	require.NoError(t, err)
	assert.Equal(t, setup.DefaultSampleRooms(), rooms)
}

func TestLoadSeedRooms_File(t *testing.T) {
	path := writeSeed(t, `
rooms:
  - id: room_jazz
    name: Jazz Corner
    genre: Jazz
    member_count: 3
  - id: room_secret
    name: Secret Sessions
    description: Invite only
    is_public: false
`)

	rooms, err := setup.LoadSeedRooms(path)
	require.NoError(t, err)
	require.Len(t, rooms, 2)

	assert.Equal(t, "room_jazz", rooms[0].ID)
	assert.True(t, rooms[0].IsPublic, "is_public defaults to true")
	assert.Nil(t, rooms[0].Description)
	assert.Equal(t, "Jazz", *rooms[0].Genre)
	assert.Equal(t, 3, rooms[0].MemberCount)

	assert.False(t, rooms[1].IsPublic)
	assert.Equal(t, "Invite only", *rooms[1].Description)
}

func TestLoadSeedRooms_Errors(t *testing.T) {
	cases := map[string]string{
		"missing name": "rooms:\n  - id: room_a\n",
		"duplicate id": "rooms:\n  - id: room_a\n    name: A\n  - id: room_a\n    name: B\n",
		"bad yaml":     "rooms: [",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := setup.LoadSeedRooms(writeSeed(t, content))
			assert.Error(t, err)
		})
	}

	_, err := setup.LoadSeedRooms(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
