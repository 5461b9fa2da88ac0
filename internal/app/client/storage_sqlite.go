package client

import (
	"database/sql"
	"fmt"

	"noisemap/internal/domain/marker"

	_ "github.com/mattn/go-sqlite3"
)

// Cache хранит снимок последнего известного набора маркеров.
type Cache interface {
	Load() ([]marker.Marker, error)
	Save(markers []marker.Marker) error
	Close() error
}

type SQLiteStorage struct {
	db *sql.DB
}

var _ Cache = (*SQLiteStorage)(nil)

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы данных: %w", err)
	}

	storage := &SQLiteStorage{db: db}

	// Создаем таблицы
	if err := storage.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка инициализации таблиц: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) initTables() error {
	// pos сохраняет порядок хранилища, id может повторяться
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS markers (
			pos INTEGER PRIMARY KEY,
			id INTEGER NOT NULL,
			lon REAL NOT NULL,
			lat REAL NOT NULL,
			marker_type INTEGER NOT NULL,
			title TEXT,
			volume INTEGER NOT NULL,
			audio_status INTEGER NOT NULL
		);
	`)

	return err
}

// Save заменяет снимок целиком.
func (s *SQLiteStorage) Save(markers []marker.Marker) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM markers"); err != nil {
		return fmt.Errorf("ошибка очистки кэша: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO markers (pos, id, lon, lat, marker_type, title, volume, audio_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("ошибка подготовки запроса: %w", err)
	}
	defer stmt.Close()

	for i, m := range markers {
		var title sql.NullString
		if m.Title != nil {
			title = sql.NullString{String: *m.Title, Valid: true}
		}
		if _, err := stmt.Exec(i, m.ID, m.Position.Lon, m.Position.Lat,
			int(m.Type), title, m.Volume, int(m.AudioStatus)); err != nil {
			return fmt.Errorf("ошибка сохранения маркера %d: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return nil
}

// Load читает снимок в сохраненном порядке.
func (s *SQLiteStorage) Load() ([]marker.Marker, error) {
	rows, err := s.db.Query(`
		SELECT id, lon, lat, marker_type, title, volume, audio_status
		FROM markers
		ORDER BY pos
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer rows.Close()

	markers := []marker.Marker{}
	for rows.Next() {
		var (
			m           marker.Marker
			title       sql.NullString
			markerType  int
			audioStatus int
		)
		if err := rows.Scan(&m.ID, &m.Position.Lon, &m.Position.Lat,
			&markerType, &title, &m.Volume, &audioStatus); err != nil {
			return nil, fmt.Errorf("ошибка сканирования маркера: %w", err)
		}
		m.Type = marker.Type(markerType)
		m.AudioStatus = marker.AudioStatus(audioStatus)
		if title.Valid {
			m.Title = marker.StrPtr(title.String)
		}
		markers = append(markers, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения маркеров: %w", err)
	}
	return markers, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
