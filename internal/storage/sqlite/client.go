package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/elyx-health/journey-backend/internal/storage/models"
	"github.com/elyx-health/journey-backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS chat_history (
		id TEXT PRIMARY KEY,
		query_text TEXT NOT NULL,
		response TEXT,
		persona TEXT,
		results_count INTEGER,
		sources_count INTEGER,
		cache_hit INTEGER DEFAULT 0,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chat_created ON chat_history(created_at);

	CREATE TABLE IF NOT EXISTS chat_sources (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		chat_id TEXT NOT NULL,
		citation INTEGER NOT NULL,
		event_id TEXT NOT NULL,
		FOREIGN KEY (chat_id) REFERENCES chat_history(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_sources_chat ON chat_sources(chat_id);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("Database schema initialized")
	return nil
}

func (c *Client) InsertChatRecord(record *models.ChatRecord) error {
	_, err := c.db.Exec(`
		INSERT INTO chat_history (id, query_text, response, persona, results_count, sources_count, cache_hit, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Query,
		record.Response,
		record.Persona,
		record.ResultsCount,
		record.SourcesCount,
		boolToInt(record.CacheHit),
		record.LatencyMS,
		record.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert chat record: %w", err)
	}
	return nil
}

func (c *Client) InsertChatSource(source *models.ChatSource) error {
	_, err := c.db.Exec(`
		INSERT INTO chat_sources (chat_id, citation, event_id)
		VALUES (?, ?, ?)`,
		source.ChatID,
		source.Citation,
		source.EventID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert chat source: %w", err)
	}
	return nil
}

func (c *Client) ListRecentChats(limit int) ([]models.ChatRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := c.db.Query(`
		SELECT id, query_text, response, persona, results_count, sources_count, cache_hit, latency_ms, created_at
		FROM chat_history
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat history: %w", err)
	}
	defer rows.Close()

	var records []models.ChatRecord
	for rows.Next() {
		var record models.ChatRecord
		var cacheHit int
		var createdAt int64
		if err := rows.Scan(
			&record.ID,
			&record.Query,
			&record.Response,
			&record.Persona,
			&record.ResultsCount,
			&record.SourcesCount,
			&cacheHit,
			&record.LatencyMS,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chat record: %w", err)
		}
		record.CacheHit = cacheHit != 0
		record.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, record)
	}

	return records, rows.Err()
}

func (c *Client) SourcesForChat(chatID string) ([]models.ChatSource, error) {
	rows, err := c.db.Query(`
		SELECT id, chat_id, citation, event_id
		FROM chat_sources
		WHERE chat_id = ?
		ORDER BY citation ASC`, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat sources: %w", err)
	}
	defer rows.Close()

	var sources []models.ChatSource
	for rows.Next() {
		var source models.ChatSource
		if err := rows.Scan(&source.ID, &source.ChatID, &source.Citation, &source.EventID); err != nil {
			return nil, fmt.Errorf("failed to scan chat source: %w", err)
		}
		sources = append(sources, source)
	}

	return sources, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
