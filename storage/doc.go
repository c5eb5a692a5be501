// Copyright 2025 Poiesic Systems
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


// Package storage provides the durable key-value abstraction used by seekr.
//
// Search history and saved searches are small, client-side records. They are
// kept behind the KVStore interface so that the controller does not depend on
// a particular backing store. The default implementation lives in
// storage/badger and keeps data in an embedded BadgerDB directory.
//
// # Constructor Return Type Pattern
//
// Public constructors return the KVStore interface:
//
//	store, err := badger.NewStore(path)  // returns storage.KVStore
//
// Test helpers (badger.NewMemoryStore) also return the interface. Use
// OpenStore when the concrete *badger.Store is needed.
//
// # Keys
//
// Keys are plain strings. Components namespace their keys: history uses the
// single key "search-history", saved searches use the "saved:" prefix.
//
// # Values
//
// Values are opaque bytes. MarshalJSON and UnmarshalJSON wrap encoding/json so
// that decoding failures are reported as ErrSerializationFailed.
//
// # Thread Safety
//
// All KVStore implementations must be safe for concurrent use.
//
// # Context Support
//
// All methods accept context.Context. The badger store checks the context
// before starting a transaction.
package storage
