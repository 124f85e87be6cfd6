package memdbpersistence

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/go-memdb"

	"music-room/internal/domain"
	"music-room/internal/repository"
)

const roomTable = "room"

// roomRecord 是存入 memdb 的行，Seq 记录插入顺序。
type roomRecord struct {
	ID   string
	Seq  uint64
	Room domain.Room
}

func roomSchema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			roomTable: {
				Name: roomTable,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
				},
			},
		},
	}
}

// RoomRepository 是 RoomRepository 接口基于 go-memdb 的进程内实现。
// 写事务由 memdb 的写锁串行化，读事务读取不可变快照。
type RoomRepository struct {
	db *memdb.MemDB
	// 只在写事务内读写
	seq uint64
}

// NewRoomRepository 创建空的房间存储
func NewRoomRepository() (*RoomRepository, error) {
	db, err := memdb.NewMemDB(roomSchema())
	if err != nil {
		return nil, fmt.Errorf("memdb: create room store: %w", err)
	}
	return &RoomRepository{db: db}, nil
}

var _ repository.RoomRepository = (*RoomRepository)(nil)

// Save 插入或覆盖房间，覆盖时保留原来的插入位置
func (r *RoomRepository) Save(ctx context.Context, room *domain.Room) error {
	if room == nil || room.ID == "" {
		return fmt.Errorf("memdb: save room: missing id")
	}

	txn := r.db.Txn(true)
	defer txn.Abort()

	existing, err := txn.First(roomTable, "id", room.ID)
	if err != nil {
		return fmt.Errorf("memdb: lookup room %s: %w", room.ID, err)
	}
	var seq uint64
	if rec, ok := existing.(*roomRecord); ok {
		seq = rec.Seq
	} else {
		r.seq++
		seq = r.seq
	}

	if err := txn.Insert(roomTable, &roomRecord{ID: room.ID, Seq: seq, Room: cloneRoom(*room)}); err != nil {
		return fmt.Errorf("memdb: insert room %s: %w", room.ID, err)
	}
	txn.Commit()
	return nil
}

// FindByID 根据房间 ID 查找房间
func (r *RoomRepository) FindByID(ctx context.Context, id string) (*domain.Room, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	obj, err := txn.First(roomTable, "id", id)
	if err != nil {
		return nil, fmt.Errorf("memdb: find room %s: %w", id, err)
	}
	if obj == nil {
		return nil, repository.ErrRoomNotFound
	}
	room := cloneRoom(obj.(*roomRecord).Room)
	return &room, nil
}

// FindAll 按插入顺序返回全部房间
func (r *RoomRepository) FindAll(ctx context.Context) ([]domain.Room, error) {
	records, err := r.records()
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Seq < records[j].Seq })

	rooms := make([]domain.Room, 0, len(records))
	for _, rec := range records {
		rooms = append(rooms, cloneRoom(rec.Room))
	}
	return rooms, nil
}

// Delete 删除房间
func (r *RoomRepository) Delete(ctx context.Context, id string) error {
	txn := r.db.Txn(true)
	defer txn.Abort()

	obj, err := txn.First(roomTable, "id", id)
	if err != nil {
		return fmt.Errorf("memdb: find room %s: %w", id, err)
	}
	if obj == nil {
		return repository.ErrRoomNotFound
	}
	if err := txn.Delete(roomTable, obj); err != nil {
		return fmt.Errorf("memdb: delete room %s: %w", id, err)
	}
	txn.Commit()
	return nil
}

// Exists 检查房间 ID 是否存在
func (r *RoomRepository) Exists(ctx context.Context, id string) (bool, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	obj, err := txn.First(roomTable, "id", id)
	if err != nil {
		return false, fmt.Errorf("memdb: find room %s: %w", id, err)
	}
	return obj != nil, nil
}

// Count 返回房间数量
func (r *RoomRepository) Count(ctx context.Context) (int, error) {
	records, err := r.records()
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func (r *RoomRepository) records() ([]*roomRecord, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(roomTable, "id")
	if err != nil {
		return nil, fmt.Errorf("memdb: list rooms: %w", err)
	}
	var records []*roomRecord
	for obj := it.Next(); obj != nil; obj = it.Next() {
		records = append(records, obj.(*roomRecord))
	}
	return records, nil
}

// cloneRoom 深拷贝指针字段，调用方拿到的房间不会与存储共享内存
func cloneRoom(room domain.Room) domain.Room {
	if room.Description != nil {
		d := *room.Description
		room.Description = &d
	}
	if room.Genre != nil {
		g := *room.Genre
		room.Genre = &g
	}
	return room
}
