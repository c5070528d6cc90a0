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

import (
	"fmt"
	"strings"
)

const (
	// MaxContentLength is the upper bound for ingested document content.
	MaxContentLength = 10 * 1024 * 1024 // 10 MiB

	// MaxPromptLength is the upper bound for a chat prompt.
	MaxPromptLength = 10_000
)

// ValidateIngestRequest validates the inputs of an ingest or re-ingest request.
//
// Validation rules:
//   - DocumentID, FileName and Content must not be empty or whitespace-only
//   - Content must not exceed MaxContentLength
//
// Validation happens at the request boundary; the pipeline itself assumes
// well-formed inputs.
func ValidateIngestRequest(documentID, fileName, content string) error {
	if strings.TrimSpace(documentID) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidIngestRequest, ErrEmptyDocumentID)
	}
	if strings.TrimSpace(fileName) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidIngestRequest, ErrEmptyFileName)
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidIngestRequest, ErrEmptyContent)
	}
	if len(content) > MaxContentLength {
		return fmt.Errorf("%w: %w (%d bytes)", ErrInvalidIngestRequest, ErrContentTooLarge, len(content))
	}
	return nil
}

// ValidatePrompt validates a chat prompt.
func ValidatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPrompt, ErrEmptyPrompt)
	}
	if len(prompt) > MaxPromptLength {
		return fmt.Errorf("%w: %w (%d chars)", ErrInvalidPrompt, ErrPromptTooLong, len(prompt))
	}
	return nil
}

// ValidateCacheEntry validates a CacheEntry before storage.
//
// Validation rules:
//   - Prompt and Answer must not be empty
//   - ExpiresAt must not precede CreatedAt
func ValidateCacheEntry(entry *CacheEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidCacheEntry)
	}
	if entry.Prompt == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCacheEntry, ErrEmptyPrompt)
	}
	if entry.Answer == "" {
		return fmt.Errorf("%w: empty answer", ErrInvalidCacheEntry)
	}
	if entry.ExpiresAt.Before(entry.CreatedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidCacheEntry, ErrExpiryBeforeCreation)
	}
	return nil
}
