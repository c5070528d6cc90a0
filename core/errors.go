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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidIngestRequest indicates an ingest request failed validation.
	ErrInvalidIngestRequest = errors.New("invalid ingest request")

	// ErrInvalidPrompt indicates a chat prompt failed validation.
	ErrInvalidPrompt = errors.New("invalid prompt")

	// ErrInvalidCacheEntry indicates a CacheEntry failed validation.
	ErrInvalidCacheEntry = errors.New("invalid cache entry")

	// ErrInvalidJobStatus indicates an invalid JobStatus value.
	ErrInvalidJobStatus = errors.New("invalid job status")

	// ErrEmptyDocumentID indicates the document ID field is empty.
	ErrEmptyDocumentID = errors.New("document id cannot be empty")

	// ErrEmptyFileName indicates the file name field is empty.
	ErrEmptyFileName = errors.New("file name cannot be empty")

	// ErrEmptyContent indicates the content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrContentTooLarge indicates the content exceeds the ingest size limit.
	ErrContentTooLarge = errors.New("content exceeds maximum size")

	// ErrEmptyPrompt indicates the prompt field is empty.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")

	// ErrPromptTooLong indicates the prompt exceeds the length limit.
	ErrPromptTooLong = errors.New("prompt exceeds maximum length")

	// ErrExpiryBeforeCreation indicates a cache entry expiring before it was created.
	ErrExpiryBeforeCreation = errors.New("expiry cannot precede creation time")
)
