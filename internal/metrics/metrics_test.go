// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounters(t *testing.T) {
	r := New()

	r.Render("main", 5, true)
	r.Render("main", 5, false)
	r.Lookup(LookupHit)
	r.Lookup(LookupHit)
	r.Problem("main", "cycle")

	assert.Equal(t, 1.0, testutil.ToFloat64(r.renders.WithLabelValues("main", "true")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.lookups.WithLabelValues(LookupHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.problems.WithLabelValues("main", "cycle")))
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.Render("main", 1, true)
	r.Lookup(LookupStore)
	r.Problem("main", "cycle")
}

func TestHandler(t *testing.T) {
	r := New()
	r.Lookup(LookupNotFound)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `navmenu_lookups_total{result="not_found"} 1`))
}
