package models

import "time"

// ChatRecord is one answered chat query.
type ChatRecord struct {
	ID           string
	Query        string
	Response     string
	Persona      string
	ResultsCount int
	SourcesCount int
	CacheHit     bool
	LatencyMS    int
	CreatedAt    time.Time
}

// ChatSource is one cited event of a chat answer, in final citation order.
type ChatSource struct {
	ID       int64
	ChatID   string
	Citation int
	EventID  string
}
