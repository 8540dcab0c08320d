// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package randutil

import (
	"context"
	"math/rand"
	"os"
	"strconv"

	"github.com/cockroachdb/linkedlist/pkg/util/log"
	"github.com/cockroachdb/linkedlist/pkg/util/timeutil"
)

// seedEnvVar overrides the seed used by NewTestRand so that a failing
// randomized test can be replayed.
const seedEnvVar = "COCKROACH_RANDOM_SEED"

// NewTestRand returns an instance of math/rand.Rand for use in tests, along
// with its seed. The seed is logged, and can be fixed through the
// COCKROACH_RANDOM_SEED environment variable.
func NewTestRand() (*rand.Rand, int64) {
	seed := timeutil.Now().UnixNano()
	if s, ok := os.LookupEnv(seedEnvVar); ok {
		var err error
		seed, err = strconv.ParseInt(s, 10, 64)
		if err != nil {
			panic(err)
		}
	}
	log.Infof(context.Background(), "random seed: %d", seed)
	return rand.New(rand.NewSource(seed)), seed
}
