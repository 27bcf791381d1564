// Copyright 2015 Google Inc. All Rights Reserved.
// Author: jacobsa@google.com (Aaron Jacobs)

package reactord

import "github.com/nwidger/reactord/internal/slot"

// Outcome values a completed request can resolve to. These re-export
// slot.Outcome (itself httpconn.Outcome) so callers of this package
// never need to import the internal packages directly.
const (
	NoResource       = slot.NoResource
	ForbiddenRequest = slot.ForbiddenRequest
	FileRequest      = slot.FileRequest
	BadRequest       = slot.BadRequest
	InternalError    = slot.InternalError
)
