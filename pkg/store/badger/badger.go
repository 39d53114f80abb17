// Copyright 2023 Hedgehog
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package badger keeps vendor model instances in an embedded badger database
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v4"
	"go.githedgehog.com/provisioner/pkg/store"
	"go.githedgehog.com/provisioner/pkg/vmodel"
)

const keyPrefix = "vmodel:"

// Store implements store.VModelStore on top of badger
type Store struct {
	db *badger.DB
}

var _ store.VModelStore = &Store{}

// Open opens or creates the database in directory `path`. An empty path
// keeps everything in memory.
func Open(path string) (*Store, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(filepath.Clean(path))
	}
	opts.Logger = nil
	opts = opts.WithValueLogFileSize(1 << 24)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func key(id string) []byte {
	return []byte(keyPrefix + id)
}

func (s *Store) put(vm *vmodel.VModel, mustExist bool) error {
	data, err := json.Marshal(vm)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key(vm.UUID))
		switch {
		case err == nil && !mustExist:
			return store.AlreadyExistsError("vmodel", vm.UUID)
		case errors.Is(err, badger.ErrKeyNotFound) && mustExist:
			return store.NotFoundError("vmodel", vm.UUID)
		case err != nil && !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		return txn.Set(key(vm.UUID), data)
	})
}

func (s *Store) Create(_ context.Context, vm *vmodel.VModel) error {
	return s.put(vm, false)
}

func (s *Store) Save(_ context.Context, vm *vmodel.VModel) error {
	return s.put(vm, true)
}

func (s *Store) Get(_ context.Context, id string) (*vmodel.VModel, error) {
	var out vmodel.VModel
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return store.NotFoundError("vmodel", id)
			}
			return err
		}
		return item.Value(func(v []byte) error {
			return json.Unmarshal(v, &out)
		})
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) List(_ context.Context) ([]*vmodel.VModel, error) {
	var ret []*vmodel.VModel
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var vm vmodel.VModel
			if err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &vm)
			}); err != nil {
				return fmt.Errorf("badger: decoding %s: %w", it.Item().Key(), err)
			}
			ret = append(ret, &vm)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key(id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return store.NotFoundError("vmodel", id)
			}
			return err
		}
		return txn.Delete(key(id))
	})
}
