package domain

import "time"

// Track 表示房间里的一首曲目。目前没有任何存储或路由读写它。
type Track struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Artist   string    `json:"artist"`
	Duration int       `json:"duration"` // 秒
	AddedBy  string    `json:"added_by"`
	AddedAt  time.Time `json:"added_at"`
}
