package object

// Backend is the persistence medium behind a Store. Implementations only
// need keyed insert-if-absent and fetch; hashing and type checks live in
// Store.
type Backend interface {
	// Ready returns an error wrapping ErrNotInitialized when the backing
	// location has not been created.
	Ready() error
	Has(h Hash) (bool, error)
	// Put inserts the record for h if it is absent. Inserting an existing
	// key is a no-op. The write must be atomic per key.
	Put(h Hash, objType ObjectType, payload []byte) error
	// Get returns the record for h, wrapping ErrNotFound when it does not
	// exist and ErrCorrupt when it cannot be decoded.
	Get(h Hash) (ObjectType, []byte, error)
	// Hashes lists every stored key in ascending order.
	Hashes() ([]Hash, error)
	Close() error
}
