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


// Package orchestrator coordinates chat request handling with a semantic
// cache-aside protocol.
//
// For each prompt the orchestrator embeds the query once and checks the
// semantic cache. A live cached entry whose similarity reaches the hit
// threshold answers the request immediately; the document store and the
// generation model are never touched on a hit. On a miss the orchestrator
// retrieves relevant chunks, generates a fresh answer, returns it, and hands
// the cache write to a background queue so response latency never includes
// the cache store.
package orchestrator
