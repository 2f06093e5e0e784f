// Package store persists benchmark runs so sweeps can be compared over time.
package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/proxystack/wasmbench/internal/repository"
	"github.com/proxystack/wasmbench/pkg/bench/errors"
	"github.com/proxystack/wasmbench/pkg/types"
)

const runKeyPrefix = "run/"

// RunSummary is the listing view of a stored run.
type RunSummary struct {
	ID       string `json:"id"`
	Suite    string `json:"suite"`
	Rounds   int    `json:"rounds"`
	Failures int    `json:"failures"`
}

// Store is a badger-backed history of benchmark runs.
type Store struct {
	repo repository.DBRepository
}

// New creates a Store on top of a DBRepository.
func New(repo repository.DBRepository) *Store {
	return &Store{repo: repo}
}

// Open opens the history database in dir.
func Open(dir string) (*Store, error) {
	repo, err := repository.OpenBadger(dir)
	if err != nil {
		return nil, errors.Wrap(errors.DomainStore, errors.CodeStoreError,
			"failed to open history database", err)
	}
	return New(repo), nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.repo.Close()
}

// Save persists a run under its ID.
func (s *Store) Save(run *types.RunResult) error {
	if run.ID == "" {
		return errors.New(errors.DomainStore, errors.CodeStoreError,
			"run has no ID")
	}

	data, err := json.Marshal(run)
	if err != nil {
		return errors.Wrap(errors.DomainStore, errors.CodeStoreError,
			"failed to encode run", err)
	}

	err = s.repo.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(runKeyPrefix+run.ID), data)
	})
	if err != nil {
		return errors.Wrap(errors.DomainStore, errors.CodeStoreError,
			"failed to save run", err)
	}
	return nil
}

// Get loads a run by ID.
func (s *Store) Get(id string) (*types.RunResult, error) {
	var run types.RunResult

	err := s.repo.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(runKeyPrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &run)
		})
	})
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, errors.New(errors.DomainStore, errors.CodeRunNotFound,
				fmt.Sprintf("run %s not found in history", id))
		}
		return nil, errors.Wrap(errors.DomainStore, errors.CodeStoreError,
			"failed to load run", err)
	}

	return &run, nil
}

// List returns summaries of all stored runs, newest first. Run IDs are
// report timestamps, so lexical order is chronological order.
func (s *Store) List() ([]RunSummary, error) {
	var summaries []RunSummary

	err := s.repo.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(runKeyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var run types.RunResult
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &run)
			})
			if err != nil {
				return err
			}
			summaries = append(summaries, RunSummary{
				ID:       strings.TrimPrefix(string(item.Key()), runKeyPrefix),
				Suite:    run.Suite,
				Rounds:   len(run.Rounds),
				Failures: len(run.Failures),
			})
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.DomainStore, errors.CodeStoreError,
			"failed to list runs", err)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].ID > summaries[j].ID
	})
	return summaries, nil
}

// Prune deletes all but the newest keep runs and returns the deleted IDs.
func (s *Store) Prune(keep int) ([]string, error) {
	if keep < 0 {
		keep = 0
	}

	summaries, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(summaries) <= keep {
		return nil, nil
	}

	var deleted []string
	err = s.repo.Update(func(txn *badger.Txn) error {
		for _, summary := range summaries[keep:] {
			if err := txn.Delete([]byte(runKeyPrefix + summary.ID)); err != nil {
				return err
			}
			deleted = append(deleted, summary.ID)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.DomainStore, errors.CodeStoreError,
			"failed to prune runs", err)
	}

	return deleted, nil
}
