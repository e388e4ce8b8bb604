package object

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/sirupsen/logrus"
	"github.com/syndtr/goleveldb/leveldb"
	lerrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var _ Backend = (*LevelDB)(nil)

// Object records are indexed by "obj:" followed by the textual hash.
const keyPrefixObject = "obj:"

// levelRecord is the split (type, payload) form of an object. The canonical
// encoding is rebuilt from it for hash verification.
type levelRecord struct {
	Type string `cbor:"1,keyasint"`
	Data []byte `cbor:"2,keyasint"`
}

var (
	recordEncMode cbor.EncMode
	recordDecMode cbor.DecMode
)

func init() {
	var err error
	recordEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("object: CBOR encoder initialization failed: " + err.Error())
	}
	recordDecMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("object: CBOR decoder initialization failed: " + err.Error())
	}
}

// LevelDB stores objects in an embedded LevelDB database.
type LevelDB struct {
	path string
	log  logrus.FieldLogger

	mu     sync.Mutex
	db     *leveldb.DB
	closed bool
}

func keyFromHash(h Hash) []byte {
	return append([]byte(keyPrefixObject), h...)
}

// CreateLevelDB creates a new database at path. It fails if one exists.
func CreateLevelDB(path string, log logrus.FieldLogger) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{
		Compression:  opt.NoCompression,
		ErrorIfExist: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create leveldb store %s: %w", path, err)
	}
	l := newLevelDB(path, db, log)
	l.log.WithField("path", path).Info("initialized leveldb object store")
	return l, nil
}

// OpenLevelDB opens an existing database. A missing database is
// ErrNotInitialized.
func OpenLevelDB(path string, log logrus.FieldLogger) (*LevelDB, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", ErrNotInitialized, path)
		}
		return nil, fmt.Errorf("open leveldb store: %w", err)
	}

	opts := &opt.Options{
		Compression:    opt.NoCompression,
		ErrorIfMissing: true,
	}
	db, err := leveldb.OpenFile(path, opts)
	if lerrors.IsCorrupted(err) {
		db, err = leveldb.RecoverFile(path, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("open leveldb store %s: %w", path, err)
	}
	l := newLevelDB(path, db, log)
	l.log.WithField("path", path).Info("opened leveldb object store")
	return l, nil
}

func newLevelDB(path string, db *leveldb.DB, log logrus.FieldLogger) *LevelDB {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LevelDB{
		path: path,
		db:   db,
		log:  log.WithField("backend", "leveldb"),
	}
}

func (l *LevelDB) Ready() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.db == nil || l.closed {
		return fmt.Errorf("%w: leveldb store %s is not open", ErrNotInitialized, l.path)
	}
	return nil
}

func (l *LevelDB) Has(h Hash) (bool, error) {
	return l.db.Has(keyFromHash(h), nil)
}

func (l *LevelDB) Put(h Hash, objType ObjectType, payload []byte) error {
	raw, err := recordEncMode.Marshal(levelRecord{Type: objType.String(), Data: payload})
	if err != nil {
		return &WriteError{Op: "encode", Key: h, Err: err}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := keyFromHash(h)
	exists, err := l.db.Has(key, nil)
	if err != nil {
		return &WriteError{Op: "lookup", Key: h, Err: err}
	}
	if exists {
		return nil
	}
	if err := l.db.Put(key, raw, nil); err != nil {
		return &WriteError{Op: "put", Key: h, Err: err}
	}

	l.log.WithFields(logrus.Fields{"hash": h, "type": objType, "size": len(payload)}).Debug("wrote object")
	return nil
}

func (l *LevelDB) Get(h Hash) (ObjectType, []byte, error) {
	raw, err := l.db.Get(keyFromHash(h), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return 0, nil, fmt.Errorf("object %s: %w", h, ErrNotFound)
		}
		return 0, nil, fmt.Errorf("object read %s: %w", h, err)
	}

	var rec levelRecord
	if err := recordDecMode.Unmarshal(raw, &rec); err != nil {
		return 0, nil, fmt.Errorf("object read %s: %w: %v", h, ErrCorrupt, err)
	}
	objType, err := ParseObjectType(rec.Type)
	if err != nil {
		return 0, nil, fmt.Errorf("object read %s: %w", h, err)
	}
	if rec.Data == nil {
		rec.Data = []byte{}
	}
	return objType, rec.Data, nil
}

func (l *LevelDB) Hashes() ([]Hash, error) {
	iter := l.db.NewIterator(util.BytesPrefix([]byte(keyPrefixObject)), nil)
	defer iter.Release()

	var hashes []Hash
	for iter.Next() {
		h := Hash(iter.Key()[len(keyPrefixObject):])
		if !h.Valid() {
			continue
		}
		hashes = append(hashes, h)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("list leveldb objects: %w", err)
	}
	return hashes, nil
}

func (l *LevelDB) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || l.db == nil {
		return nil
	}
	l.closed = true
	return l.db.Close()
}
