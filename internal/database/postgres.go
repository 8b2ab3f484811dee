package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"

	"TrackingServer/internal/model"
)

type PostgresService struct {
	db     *sql.DB
	table  string
	insert string
}

// NewPostgresService connects directly to a PostgreSQL database.
// The store key is used as password unless the url already carries one.
func NewPostgresService(config model.StoreConfig) (*PostgresService, error) {
	connStr, err := withPassword(config.Url, config.Key)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, err
	}

	table := pgx.Identifier{config.Table}.Sanitize()

	return &PostgresService{
		db:     db,
		table:  config.Table,
		insert: fmt.Sprintf("INSERT INTO %s (type, data, session_id, url, timestamp, ip_address) VALUES ($1, $2, $3, $4, $5, $6)", table),
	}, nil
}

func withPassword(rawUrl, password string) (string, error) {
	u, err := url.Parse(rawUrl)
	if err != nil {
		return "", err
	}

	if _, ok := u.User.Password(); ok || password == "" {
		return u.String(), nil
	}

	username := "postgres"
	if u.User != nil && u.User.Username() != "" {
		username = u.User.Username()
	}
	u.User = url.UserPassword(username, password)

	return u.String(), nil
}

func (s *PostgresService) InsertTracking(ctx context.Context, record model.TrackingRecord) error {
	res, err := s.db.ExecContext(ctx, s.insert,
		record.Type,
		record.Data,
		record.SessionId,
		record.Url,
		record.Timestamp,
		record.IpAddress,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected != 1 {
		return fmt.Errorf("Expected 1 tracking row to be inserted but was %d", rowsAffected)
	}

	return nil
}

// Health checks the health of the database connection by pinging the database.
// It returns a map with keys indicating various health statistics.
func (s *PostgresService) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	err := s.db.PingContext(ctx)
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := s.db.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()

	if dbStats.WaitCount > 1000 {
		stats["message"] = "The database has a high number of wait events, indicating potential bottlenecks."
	}

	return stats
}

func (s *PostgresService) Close() error {
	slog.Info("Disconnected from tracking database", "table", s.table)
	return s.db.Close()
}
