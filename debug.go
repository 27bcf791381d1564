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

package reactord

import (
	"io"
	"log"
	"os"
)

// loggers groups the three logging streams described in the server's
// ambient logging design: access (one line per completed response),
// debug (per-event reactor/worker tracing, silent unless enabled), and
// err (transport/protocol errors).
type loggers struct {
	access *log.Logger
	debug  *log.Logger
	err    *log.Logger
}

const logFlags = log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile

// newLoggers builds the three loggers. access and err always write to
// stderr; debug writes to stderr only when verbose is true, and is
// discarded otherwise.
func newLoggers(verbose bool) loggers {
	var debugWriter io.Writer = io.Discard
	if verbose {
		debugWriter = os.Stderr
	}
	return loggers{
		access: log.New(os.Stderr, "reactord: access: ", logFlags),
		debug:  log.New(debugWriter, "reactord: debug: ", logFlags),
		err:    log.New(os.Stderr, "reactord: error: ", logFlags),
	}
}
