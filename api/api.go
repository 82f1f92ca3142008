// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api assembles the vault's REST surface.
package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/trustake/staker/api/admin"
	"github.com/trustake/staker/api/vault"
	"github.com/trustake/staker/metrics"
	"github.com/trustake/staker/staker"
)

type Options struct {
	AllowedOrigins string
	EnableMetrics  bool
	EnableAdmin    bool
}

// New returns the assembled http handler.
func New(s *staker.Staker, opts Options) http.Handler {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	v := vault.New(s)
	v.Mount(router, "/staker")
	v.MountToken(router, "/token")

	if opts.EnableAdmin {
		admin.New(s).Mount(router, "/admin")
	}
	if opts.EnableMetrics {
		router.Path("/metrics").Handler(metrics.HTTPHandler())
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)
	return handler
}
