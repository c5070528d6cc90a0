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


// Package ai defines the capability interfaces for the embedding and answer
// generation providers, their shared configuration, and the bounded retry
// policy applied to every external call.
//
// Errors split into two classes: ErrMalformedResponse marks structurally
// unusable provider output and is never retried; everything else is treated
// as transient and retried with exponential backoff up to the configured
// attempt cap. Each call carries its own independent retry policy instance;
// there is no shared cross-request retry budget.
//
// Production implementations live in ai/openai; deterministic test doubles
// live in ai/mock. Providers are wired explicitly at process startup.
package ai
