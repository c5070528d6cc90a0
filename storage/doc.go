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


// Package storage defines the storage abstraction layer for semcache.
//
// Two independent stores exist: a DocumentStore holding embedded document
// chunks, and a SemanticCacheStore holding cached answers. A cache entry
// references chunks only by opaque id; the stores share no object graph and
// remain independently deletable. Consistency between them is eventual:
// the re-ingest cascade invalidates cache entries before deleting chunks,
// narrowing but not closing the window in which a cached answer can still
// reference a chunk about to disappear.
//
// # Constructor Return Type Pattern
//
// Public constructors return the interface type to enforce abstraction and
// keep backends swappable:
//
//	store, err := badger.NewDocumentStore(backend)  // returns storage.DocumentStore
//
// # Thread Safety
//
// All store implementations must be thread-safe and support concurrent
// access from multiple goroutines.
package storage
