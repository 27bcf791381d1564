// Copyright 2015 Google Inc. All Rights Reserved.
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

// Package reactord is a minimal HTTP/1.1 static-file server for Linux,
// built directly on readiness-based I/O multiplexing (epoll) and a
// fixed-size worker pool, rather than a goroutine per connection.
//
// The primary elements of interest are:
//
//  *  Server, the reactor that owns the listening socket, the epoll
//     descriptor, and the connection slot table.
//
//  *  Config, which controls the document root, worker pool size, ready
//     queue bound, and optional idle-connection sweep.
//
//  *  New and Server.Run, which construct and then block serving
//     requests until an unrecoverable error occurs.
package reactord
