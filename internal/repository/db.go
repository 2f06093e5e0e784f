package repository

import "github.com/dgraph-io/badger/v4"

// DBRepository narrows badger to the two transaction entrypoints the history
// store needs, so tests can open a throwaway database in a temp dir.
type DBRepository interface {
	View(fn func(txn *badger.Txn) error) error
	Update(fn func(txn *badger.Txn) error) error
	Close() error
}

type BadgerDBRepository struct {
	db *badger.DB
}

func NewBadgerDBRepository(db *badger.DB) DBRepository {
	return &BadgerDBRepository{db: db}
}

func (r *BadgerDBRepository) View(fn func(txn *badger.Txn) error) error {
	return r.db.View(fn)
}

func (r *BadgerDBRepository) Update(fn func(txn *badger.Txn) error) error {
	return r.db.Update(fn)
}

func (r *BadgerDBRepository) Close() error {
	return r.db.Close()
}

// OpenBadger opens (or creates) the history database in dir with badger's
// own logging silenced.
func OpenBadger(dir string) (DBRepository, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return NewBadgerDBRepository(db), nil
}
