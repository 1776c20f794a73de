package domain

import "time"

// RequestRecord is the immutable metadata captured for each inbound request.
type RequestRecord struct {
	Method     string        `bson:"method" json:"method"`
	Path       string        `bson:"path" json:"path"`
	Route      string        `bson:"route,omitempty" json:"route,omitempty"`
	ClientIP   string        `bson:"clientIp" json:"clientIp"`
	UserAgent  string        `bson:"userAgent,omitempty" json:"userAgent,omitempty"`
	Status     int           `bson:"status" json:"status"`
	Latency    time.Duration `bson:"latency" json:"latency"`
	ReceivedAt time.Time     `bson:"receivedAt" json:"receivedAt"`
}
