package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/railgames/shareboard/internal/game"
)

// record is one persisted game document. The document is stored whole as
// JSONB; Active is mirrored into a column so dead rooms are queryable.
type record struct {
	Code      string `gorm:"primaryKey;size:32"`
	Doc       []byte `gorm:"type:jsonb;not null"`
	Active    bool   `gorm:"not null;index"`
	UpdatedAt time.Time
}

func (record) TableName() string { return "game_documents" }

// DB is the Postgres-backed store. Documents survive restarts; change
// fanout stays process-local, which is enough for the single companion
// service this backs.
type DB struct {
	db *gorm.DB
	bc *broadcaster
}

var _ Store = (*DB)(nil)

// OpenDB connects to Postgres and migrates the documents table.
func OpenDB(dsn string) (*DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &DB{db: db, bc: newBroadcaster()}, nil
}

func (s *DB) Read(ctx context.Context, code string) (*game.Document, error) {
	var rec record
	err := s.db.WithContext(ctx).First(&rec, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return decode(rec.Doc)
}

func (s *DB) Subscribe(ctx context.Context, code string) (Subscription, error) {
	initial, err := s.Read(ctx, code)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return s.bc.subscribe(code, initial), nil
}

// Write merge-updates the named fields. The read-apply-save runs under a
// row lock so one Write is atomic; concurrent Writes to the same field
// remain last-write-wins across calls.
func (s *DB) Write(ctx context.Context, code string, fields Fields) error {
	var snap *game.Document
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec record
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&rec, "code = ?", code).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("read document: %w", err)
		}

		doc, err := decode(rec.Doc)
		if err != nil {
			return err
		}
		applyFields(doc, fields)

		raw, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode document: %w", err)
		}
		rec.Doc = raw
		rec.Active = doc.Active
		if err := tx.Save(&rec).Error; err != nil {
			return fmt.Errorf("save document: %w", err)
		}
		snap = doc
		return nil
	})
	if err != nil {
		return err
	}

	s.bc.publish(code, snap)
	return nil
}

func (s *DB) WriteFull(ctx context.Context, code string, doc *game.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	rec := record{Code: code, Doc: raw, Active: doc.Active}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("write document: %w", err)
	}

	s.bc.publish(code, doc.Clone())
	return nil
}

func decode(raw []byte) (*game.Document, error) {
	var doc game.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}
