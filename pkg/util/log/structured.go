// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cockroachdb/linkedlist/pkg/util/timeutil"
	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/redact"
)

// addStructured creates a structured log entry and writes it to the
// current output.
func addStructured(
	ctx context.Context, sev Severity, depth int, format string, args []interface{},
) {
	var buf strings.Builder
	buf.WriteByte(sev.Char())
	buf.WriteString(timeutil.Now().Format("060102 15:04:05.000000"))
	buf.WriteByte(' ')
	if _, file, line, ok := runtime.Caller(depth + 1); ok {
		fmt.Fprintf(&buf, "%s:%d ", filepath.Base(file), line)
	} else {
		buf.WriteString("???:0 ")
	}
	buf.WriteByte(' ')
	if formatTags(ctx, true /* brackets */, &buf) {
		buf.WriteByte(' ')
	}
	msg := redact.Sprintf(format, args...)
	if logging.redactable.Load() {
		buf.WriteString(string(msg))
	} else {
		buf.WriteString(msg.StripMarkers())
	}
	buf.WriteByte('\n')
	writeEntry([]byte(buf.String()))
}

// formatTags appends the tags from the context to buf. It returns whether
// any tags were written.
//
// Single-letter keys are rendered without a separator, as in "n1"; longer
// keys use "key=value".
func formatTags(ctx context.Context, brackets bool, buf *strings.Builder) bool {
	tags := logtags.FromContext(ctx)
	if tags == nil || len(tags.Get()) == 0 {
		return false
	}
	if brackets {
		buf.WriteByte('[')
	}
	for i, t := range tags.Get() {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(t.Key())
		if t.Value() == nil {
			continue
		}
		if len(t.Key()) > 1 {
			buf.WriteByte('=')
		}
		buf.WriteString(t.ValueStr())
	}
	if brackets {
		buf.WriteByte(']')
	}
	return true
}
