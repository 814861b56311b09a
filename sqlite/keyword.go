package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/fwojciec/serpwatch"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ serpwatch.KeywordService = (*KeywordService)(nil)

// KeywordService implements serpwatch.KeywordService using SQLite.
type KeywordService struct {
	db *DB
}

// NewKeywordService creates a new KeywordService.
func NewKeywordService(db *DB) *KeywordService {
	return &KeywordService{db: db}
}

// AddKeyword stores text as an active keyword. An existing keyword keeps
// its ID and position and is reactivated.
func (s *KeywordService) AddKeyword(ctx context.Context, text string) (*serpwatch.Keyword, error) {
	kw := &serpwatch.Keyword{Text: strings.TrimSpace(text), Active: true}
	if err := kw.Validate(); err != nil {
		return nil, err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO keywords (id, text, active, created_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(text) DO UPDATE SET active = 1
	`, uuid.New().String(), kw.Text, formatTime(time.Now()))
	if err != nil {
		return nil, err
	}

	var createdAt string
	if err := s.db.QueryRowContext(ctx, `
		SELECT id, created_at FROM keywords WHERE text = ?
	`, kw.Text).Scan(&kw.ID, &createdAt); err != nil {
		return nil, err
	}
	if kw.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return kw, nil
}

// ActiveKeywords returns active keyword texts in insertion order.
func (s *KeywordService) ActiveKeywords(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT text FROM keywords WHERE active = 1 ORDER BY rowid ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, err
		}
		texts = append(texts, text)
	}
	return texts, rows.Err()
}

// SetKeywordActive toggles whether a keyword is crawled.
func (s *KeywordService) SetKeywordActive(ctx context.Context, text string, active bool) error {
	result, err := s.db.ExecContext(ctx, "UPDATE keywords SET active = ? WHERE text = ?", active, strings.TrimSpace(text))
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return serpwatch.Errorf(serpwatch.ENOTFOUND, "keyword %q not found", text)
	}
	return nil
}
