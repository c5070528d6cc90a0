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


// Package ingest turns raw documents into embedded, searchable chunks.
//
// An ingest request validates its inputs, registers a job for status
// tracking, and hands the heavy work to a background task queue. The task
// chunks the document, embeds and stores the chunks through a bounded worker
// pool, and records progress on the job as it goes. The first embedding or
// storage failure stops the fan-out and marks the job failed.
//
// Re-ingesting a document first cascades through the semantic cache: every
// cached answer grounded in one of the document's existing chunks is
// invalidated before the chunks themselves are deleted and replaced. The
// cascade runs on the request path, not in the background, so stale answers
// stop being servable the moment the re-ingest request is accepted.
package ingest
