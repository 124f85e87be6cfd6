package setup

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"music-room/internal/domain"
)

// seedFile 是种子文件的 YAML 结构
type seedFile struct {
	Rooms []seedRoom `yaml:"rooms"`
}

type seedRoom struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Description *string `yaml:"description"`
	Genre       *string `yaml:"genre"`
	IsPublic    *bool   `yaml:"is_public"`
	MemberCount int     `yaml:"member_count"`
}

// DefaultSampleRooms 返回启动时写入的两个示例房间
func DefaultSampleRooms() []domain.Room {
	return []domain.Room{
		{
			ID:          "room_sample1",
			Name:        "Chill Vibes",
			Description: strPtr("Relaxing music for studying and working"),
			Genre:       strPtr("Lo-fi"),
			IsPublic:    true,
			MemberCount: 12,
		},
		{
			ID:          "room_sample2",
			Name:        "Rock Classics",
			Description: strPtr("The best rock hits from the 70s to 90s"),
			Genre:       strPtr("Classic Rock"),
			IsPublic:    true,
			MemberCount: 8,
		},
	}
}

// LoadSeedRooms 读取 YAML 种子文件。path 为空时返回默认示例房间。
func LoadSeedRooms(path string) ([]domain.Room, error) {
	if path == "" {
		return DefaultSampleRooms(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}
	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}

	rooms := make([]domain.Room, 0, len(file.Rooms))
	seen := make(map[string]bool, len(file.Rooms))
	for i, r := range file.Rooms {
		if r.ID == "" || r.Name == "" {
			return nil, fmt.Errorf("seed file %s: room #%d needs both id and name", path, i+1)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("seed file %s: duplicate room id %q", path, r.ID)
		}
		seen[r.ID] = true

		room := domain.Room{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			Genre:       r.Genre,
			IsPublic:    true,
			MemberCount: r.MemberCount,
		}
		if r.IsPublic != nil {
			room.IsPublic = *r.IsPublic
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

func strPtr(s string) *string { return &s }
