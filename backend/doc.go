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


// Package backend defines the contract between the query controller and the
// search service.
//
// The controller never ranks, filters or facets anything itself. It builds a
// request, hands it to a Backend, and decides what to do with the response.
//
// # Implementation Packages
//
//   - backend/remote: client for a search service speaking JSON over HTTP
//   - backend/memory: in-process engine over a static catalog, used by the
//     CLI's offline mode and by integration tests
//   - backend/mock: test double with injectable behaviour and call counters
package backend
