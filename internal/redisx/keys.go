package redisx

import "time"

const (
	// Pub/sub channel shared by every relay instance: pos:relay:{topic}
	ChannelRelay = "pos:relay:%s"

	// Dedup bus delivery: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLDedup = 10 * time.Minute
)
