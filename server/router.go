// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/ava-labs/avalanchego/utils/set"
)

var ErrDuplicateRoute = errors.New("duplicate route")

// router maps registered paths to handlers. Registration after Dispatch
// is allowed; requests to unknown paths 404.
type router struct {
	lock sync.RWMutex

	mux    *http.ServeMux
	routes set.Set[string]
}

func newRouter() *router {
	return &router{mux: http.NewServeMux()}
}

func (r *router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.lock.RLock()
	mux := r.mux
	r.lock.RUnlock()
	mux.ServeHTTP(w, req)
}

func (r *router) AddRouter(base, endpoint string, handler http.Handler) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	path := base + endpoint
	if r.routes.Contains(path) {
		return ErrDuplicateRoute
	}
	r.routes.Add(path)
	r.mux.Handle(path, handler)
	return nil
}

// filterInvalidHosts rejects requests whose Host header is not in
// [hosts]. An empty list allows everything.
func filterInvalidHosts(next http.Handler, hosts []string) http.Handler {
	if len(hosts) == 0 {
		return next
	}
	allowed := set.Of(hosts...)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Host
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		if !allowed.Contains(host) {
			http.Error(w, "invalid host", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
