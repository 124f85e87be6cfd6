package memdbpersistence_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"music-room/internal/domain"
	memdbpersistence "music-room/internal/infra/persistence/memdb"
	"music-room/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) *memdbpersistence.RoomRepository {
	t.Helper()
	repo, err := memdbpersistence.NewRoomRepository()
	require.NoError(t, err)
	return repo
}

func room(id, name string) *domain.Room {
	genre := "Lo-fi"
	return &domain.Room{ID: id, Name: name, Genre: &genre, IsPublic: true, CreatedAt: time.Now(), MemberCount: 1}
}

func TestRoomRepository_SaveAndFind(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, room("room_a", "A")))

	got, err := repo.FindByID(ctx, "room_a")
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)
	assert.Equal(t, "Lo-fi", *got.Genre)

	exists, err := repo.Exists(ctx, "room_a")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRoomRepository_FindByID_NotFound(t *testing.T) {
	repo := newRepo(t)

	got, err := repo.FindByID(context.Background(), "room_missing")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, repository.ErrRoomNotFound)
}

func TestRoomRepository_FindAll_InsertionOrder(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	// ID 的字典序与插入顺序相反
	for _, id := range []string{"room_c", "room_b", "room_a"} {
		require.NoError(t, repo.Save(ctx, room(id, id)))
	}
	// 覆盖不改变位置
	require.NoError(t, repo.Save(ctx, room("room_c", "renamed")))

	rooms, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 3)
	assert.Equal(t, "room_c", rooms[0].ID)
	assert.Equal(t, "renamed", rooms[0].Name)
	assert.Equal(t, "room_b", rooms[1].ID)
	assert.Equal(t, "room_a", rooms[2].ID)
}

func TestRoomRepository_FindAll_Empty(t *testing.T) {
	repo := newRepo(t)

	rooms, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, rooms)
	assert.Empty(t, rooms)
}

func TestRoomRepository_Delete(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, room("room_a", "A")))

	require.NoError(t, repo.Delete(ctx, "room_a"))
	_, err := repo.FindByID(ctx, "room_a")
	assert.ErrorIs(t, err, repository.ErrRoomNotFound)

	// 重复删除仍然是 not found
	assert.ErrorIs(t, repo.Delete(ctx, "room_a"), repository.ErrRoomNotFound)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRoomRepository_ReturnsCopies(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	original := room("room_a", "A")
	require.NoError(t, repo.Save(ctx, original))

	// 修改入参和返回值都不影响存储
	original.Name = "changed"
	*original.Genre = "changed"
	got, err := repo.FindByID(ctx, "room_a")
	require.NoError(t, err)
	got.Name = "also changed"
	*got.Genre = "also changed"

	again, err := repo.FindByID(ctx, "room_a")
	require.NoError(t, err)
	assert.Equal(t, "A", again.Name)
	assert.Equal(t, "Lo-fi", *again.Genre)
}

func TestRoomRepository_SaveRejectsMissingID(t *testing.T) {
	repo := newRepo(t)
	assert.Error(t, repo.Save(context.Background(), &domain.Room{Name: "no id"}))
	assert.Error(t, repo.Save(context.Background(), nil))
}

func TestRoomRepository_ConcurrentAccess(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	const workers = 16
	const perWorker = 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := fmt.Sprintf("room_%d_%d", w, i)
				assert.NoError(t, repo.Save(ctx, room(id, id)))
				_, err := repo.FindAll(ctx)
				assert.NoError(t, err)
				if i%2 == 0 {
					assert.NoError(t, repo.Delete(ctx, id))
				}
			}
		}(w)
	}
	wg.Wait()

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, workers*perWorker/2, n)
}
