package object

import (
	"errors"
	"fmt"
	"os"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var _ Backend = (*SQLite)(nil)

// objectRow is one record of the objects table.
type objectRow struct {
	OID  string `gorm:"column:oid;primaryKey;size:40"`
	Type string `gorm:"column:type;not null"`
	Data []byte `gorm:"column:data;not null"`
}

func (objectRow) TableName() string { return "objects" }

// SQLite stores objects in a single SQLite database file.
type SQLite struct {
	path string
	db   *gorm.DB
	log  logrus.FieldLogger
}

// openGorm opens path with a single pooled connection so concurrent puts
// are serialized instead of failing with SQLITE_BUSY.
func openGorm(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// CreateSQLite creates the database file at path and its objects table.
func CreateSQLite(path string, log logrus.FieldLogger) (*SQLite, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("create sqlite store: %s already exists", path)
	}
	db, err := openGorm(path)
	if err != nil {
		return nil, fmt.Errorf("create sqlite store %s: %w", path, err)
	}
	if err := db.AutoMigrate(&objectRow{}); err != nil {
		return nil, fmt.Errorf("create sqlite store %s: migrate: %w", path, err)
	}
	s := newSQLite(path, db, log)
	s.log.WithField("path", path).Info("initialized sqlite object store")
	return s, nil
}

// OpenSQLite opens an existing database file. A missing file or objects
// table is ErrNotInitialized.
func OpenSQLite(path string, log logrus.FieldLogger) (*SQLite, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", ErrNotInitialized, path)
		}
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	db, err := openGorm(path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store %s: %w", path, err)
	}
	s := newSQLite(path, db, log)
	if err := s.Ready(); err != nil {
		s.Close()
		return nil, err
	}
	s.log.WithField("path", path).Info("opened sqlite object store")
	return s, nil
}

func newSQLite(path string, db *gorm.DB, log logrus.FieldLogger) *SQLite {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SQLite{
		path: path,
		db:   db,
		log:  log.WithField("backend", "sqlite"),
	}
}

func (s *SQLite) Ready() error {
	if !s.db.Migrator().HasTable(&objectRow{}) {
		return fmt.Errorf("%w: %s has no objects table", ErrNotInitialized, s.path)
	}
	return nil
}

func (s *SQLite) Has(h Hash) (bool, error) {
	var n int64
	if err := s.db.Model(&objectRow{}).Where("oid = ?", string(h)).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Put relies on the primary key for atomic insert-if-absent.
func (s *SQLite) Put(h Hash, objType ObjectType, payload []byte) error {
	if payload == nil {
		payload = []byte{}
	}
	row := objectRow{OID: string(h), Type: objType.String(), Data: payload}
	res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return &WriteError{Op: "insert", Key: h, Err: res.Error}
	}
	if res.RowsAffected > 0 {
		s.log.WithFields(logrus.Fields{"hash": h, "type": objType, "size": len(payload)}).Debug("wrote object")
	}
	return nil
}

func (s *SQLite) Get(h Hash) (ObjectType, []byte, error) {
	var row objectRow
	err := s.db.Where("oid = ?", string(h)).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil, fmt.Errorf("object %s: %w", h, ErrNotFound)
		}
		return 0, nil, fmt.Errorf("object read %s: %w", h, err)
	}
	objType, err := ParseObjectType(row.Type)
	if err != nil {
		return 0, nil, fmt.Errorf("object read %s: %w", h, err)
	}
	if row.Data == nil {
		row.Data = []byte{}
	}
	return objType, row.Data, nil
}

func (s *SQLite) Hashes() ([]Hash, error) {
	var oids []string
	if err := s.db.Model(&objectRow{}).Order("oid").Pluck("oid", &oids).Error; err != nil {
		return nil, fmt.Errorf("list sqlite objects: %w", err)
	}
	hashes := make([]Hash, 0, len(oids))
	for _, oid := range oids {
		hashes = append(hashes, Hash(oid))
	}
	return hashes, nil
}

func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
