// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Template Stack Contributors

package errutil

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs err at error level with structured context if it carries an
// oops error anywhere in its chain. The oops code and context are expanded
// into attributes; extra attributes are appended as given.
func LogError(ctx context.Context, logger *slog.Logger, msg string, err error, extra ...any) {
	attrs := make([]any, 0, 6+len(extra))
	if oopsErr, ok := oops.AsOops(err); ok {
		attrs = append(attrs, "error", err.Error())
		if code := oopsErr.Code(); code != nil && code != "" {
			attrs = append(attrs, "code", code)
		}
		if oc := oopsErr.Context(); len(oc) > 0 {
			attrs = append(attrs, "context", oc)
		}
	} else {
		attrs = append(attrs, "error", err)
	}
	attrs = append(attrs, extra...)
	logger.ErrorContext(ctx, msg, attrs...)
}
