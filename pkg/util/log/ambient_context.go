// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

import (
	"context"

	"github.com/cockroachdb/logtags"
)

// AmbientContext is a helper type used to "annotate" context.Contexts with log
// tags. It is intended to be embedded into various long-lived structures
// whose methods have no context of their own to log with.
//
// The zero value is usable and adds no tags.
type AmbientContext struct {
	tags *logtags.Buffer

	// backgroundCtx is context.Background() annotated with tags, cached so
	// that hot paths annotating the background context don't allocate.
	backgroundCtx context.Context
}

// AddLogTag adds a tag to the ambient context.
func (ac *AmbientContext) AddLogTag(name string, value interface{}) {
	ac.tags = ac.tags.Add(name, value)
	ac.backgroundCtx = logtags.AddTags(context.Background(), ac.tags)
}

// AnnotateCtx annotates a given context with the information in
// AmbientContext.
func (ac *AmbientContext) AnnotateCtx(ctx context.Context) context.Context {
	switch {
	case ac.tags == nil:
		return ctx
	case ctx == context.Background():
		return ac.backgroundCtx
	default:
		return logtags.AddTags(ctx, ac.tags)
	}
}
