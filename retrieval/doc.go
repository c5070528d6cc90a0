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


// Package retrieval provides semantic retrieval of document chunks for
// answer generation.
//
// The Retriever embeds a query, runs a top-K nearest-neighbor search against
// the document store, and then filters the ranked candidates by a minimum
// similarity threshold. Filtering preserves the store's ranking order, so the
// result is always an ordered prefix-compatible subset of the raw candidates.
package retrieval
