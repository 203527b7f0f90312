package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/lib/pq"

	"wikirace/internal/player"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Postgres keeps player records in a single players table, one row per name.
// Unset best marks are NULL columns, mirroring the JSON encoding.
type Postgres struct {
	conn *sql.DB
}

func ConnectPostgres(dsn string) (*Postgres, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	log.Println("[DB] Connected to PostgreSQL")
	return &Postgres{conn: conn}, nil
}

func (p *Postgres) Close() error {
	return p.conn.Close()
}

func (p *Postgres) Migrate() error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations dir: %w", err)
	}
	for _, entry := range entries {
		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}
		if _, err := p.conn.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", entry.Name(), err)
		}
		log.Printf("[DB] Applied migration: %s\n", entry.Name())
	}
	return nil
}

func (p *Postgres) Exists(name string) (bool, error) {
	var exists bool
	err := p.conn.QueryRow(`SELECT EXISTS (SELECT 1 FROM players WHERE name = $1)`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking player: %w", err)
	}
	return exists, nil
}

const playerColumns = `points, xp, level, games_played, games_won, total_clicks,
	avg_clicks, total_time, avg_time, rank, best_time, best_clicks, best_score,
	current_streak, win_streak, best_win_streak, achievements, articles_visited,
	last_played, created_at`

func scanRecord(scan func(dest ...any) error) (*player.Record, error) {
	rec := player.NewRecord()
	var bestTime sql.NullFloat64
	var bestClicks sql.NullInt64
	var lastPlayed sql.NullTime
	err := scan(
		&rec.Points, &rec.XP, &rec.Level, &rec.GamesPlayed, &rec.GamesWon,
		&rec.TotalClicks, &rec.AvgClicks, &rec.TotalTime, &rec.AvgTime,
		&rec.Rank, &bestTime, &bestClicks, &rec.BestScore,
		&rec.CurrentStreak, &rec.WinStreak, &rec.BestWinStreak,
		pq.Array(&rec.Achievements), pq.Array(&rec.ArticlesVisited),
		&lastPlayed, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.BestTime = math.Inf(1)
	rec.BestClicks = player.NoBestClicks
	if bestTime.Valid {
		rec.BestTime = bestTime.Float64
	}
	if bestClicks.Valid {
		rec.BestClicks = int(bestClicks.Int64)
	}
	if lastPlayed.Valid {
		lp := lastPlayed.Time
		rec.LastPlayed = &lp
	}
	if rec.Achievements == nil {
		rec.Achievements = []string{}
	}
	if rec.ArticlesVisited == nil {
		rec.ArticlesVisited = []string{}
	}
	return rec, nil
}

func (p *Postgres) Load(name string) (*player.Record, error) {
	row := p.conn.QueryRow(`SELECT `+playerColumns+` FROM players WHERE name = $1`, name)
	rec, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading player: %w", err)
	}
	return rec, nil
}

func (p *Postgres) Save(name string, rec *player.Record) error {
	var bestTime sql.NullFloat64
	if !math.IsInf(rec.BestTime, 1) {
		bestTime = sql.NullFloat64{Float64: rec.BestTime, Valid: true}
	}
	var bestClicks sql.NullInt64
	if rec.BestClicks != player.NoBestClicks {
		bestClicks = sql.NullInt64{Int64: int64(rec.BestClicks), Valid: true}
	}
	var lastPlayed sql.NullTime
	if rec.LastPlayed != nil {
		lastPlayed = sql.NullTime{Time: *rec.LastPlayed, Valid: true}
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := p.conn.Exec(`
		INSERT INTO players (name, `+playerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (name) DO UPDATE SET
			points = $2, xp = $3, level = $4, games_played = $5, games_won = $6,
			total_clicks = $7, avg_clicks = $8, total_time = $9, avg_time = $10,
			rank = $11, best_time = $12, best_clicks = $13, best_score = $14,
			current_streak = $15, win_streak = $16, best_win_streak = $17,
			achievements = $18, articles_visited = $19, last_played = $20
	`, name,
		rec.Points, rec.XP, rec.Level, rec.GamesPlayed, rec.GamesWon,
		rec.TotalClicks, rec.AvgClicks, rec.TotalTime, rec.AvgTime,
		rec.Rank, bestTime, bestClicks, rec.BestScore,
		rec.CurrentStreak, rec.WinStreak, rec.BestWinStreak,
		pq.Array(rec.Achievements), pq.Array(rec.ArticlesVisited),
		lastPlayed, createdAt,
	)
	if err != nil {
		return fmt.Errorf("saving player: %w", err)
	}
	return nil
}

func (p *Postgres) ListAll() ([]Entry, error) {
	rows, err := p.conn.Query(`SELECT name, ` + playerColumns + ` FROM players`)
	if err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var name string
		rec, err := scanRecord(func(dest ...any) error {
			return rows.Scan(append([]any{&name}, dest...)...)
		})
		if err != nil {
			return nil, fmt.Errorf("scanning player: %w", err)
		}
		entries = append(entries, Entry{Name: name, Record: rec})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	return entries, nil
}

func (p *Postgres) Delete(name string) (bool, error) {
	res, err := p.conn.Exec(`DELETE FROM players WHERE name = $1`, name)
	if err != nil {
		return false, fmt.Errorf("deleting player: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting player: %w", err)
	}
	return n > 0, nil
}
