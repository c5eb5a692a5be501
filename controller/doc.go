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


// Package controller orchestrates search input, caching and backend calls.
//
// A Controller accepts keystroke input through UpdateQuery, fetches
// suggestions for every change and issues a debounced search once input is
// quiet. Search results are cached per (query, filters, sort) and the cache is
// cleared whenever filters change. Each request channel carries its own
// sequence number; a response is applied only if it answers the newest
// request on its channel, so late responses never overwrite newer state.
//
// A failed search sets SearchState.Error and keeps the previous results on
// screen. History and saved searches are persisted through storage.KVStore.
//
// Basic usage:
//
//	ctrl, err := controller.New(b,
//		controller.WithHistory(hist),
//		controller.WithSavedSearches(mgr),
//	)
//	if err != nil {
//		return err
//	}
//	defer ctrl.Close()
//
//	ctrl.UpdateQuery("customer")
//	state := ctrl.State()
//
// Shared searches are encoded with EncodeShare and decoded with DecodeShare.
package controller
