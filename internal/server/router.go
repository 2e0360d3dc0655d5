package server

import (
	"net/http"
	"sort"
	"strings"
)

// BasicRouter dispatches requests by path through an [http.ServeMux], then by method.
//
// Middleware added with [BasicRouter.Use] wraps every handler registered after it.
type BasicRouter struct {
	mux         *http.ServeMux
	middlewares []Middleware
	methods     map[string]map[string]http.Handler // path -> method -> wrapped handler
	handlers    []string                           // paths owned by a [Handler]
}

func NewBasicRouter() *BasicRouter {
	return &BasicRouter{
		mux:     http.NewServeMux(),
		methods: make(map[string]map[string]http.Handler),
	}
}

// Use appends middleware; the first added is the outermost.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers handler for method on path. Several methods may share a path;
// any other method gets 405 with an Allow header listing the registered ones.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	method = strings.ToUpper(method)

	byMethod, ok := r.methods[path]
	if !ok {
		byMethod = make(map[string]http.Handler)
		r.methods[path] = byMethod
		r.mux.Handle(path, r.Apply(r.dispatch(path)))
	}
	byMethod[method] = handler
}

func (r *BasicRouter) dispatch(path string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		byMethod := r.methods[path]
		if h, ok := byMethod[req.Method]; ok {
			h.ServeHTTP(w, req)
			return
		}

		w.Header().Set("Allow", strings.Join(sortedKeys(byMethod), ", "))
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	})
}

// Handler registers a [Handler] on every path from its Routes. The handler checks methods itself.
func (r *BasicRouter) Handler(handler Handler) {
	wrapped := r.Apply(handler)
	for _, route := range handler.Routes() {
		r.mux.Handle(route, wrapped)
		r.handlers = append(r.handlers, route)
	}
}

func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Apply wraps handler with the middleware registered so far.
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	wrapped := handler
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}
	return wrapped
}

// Routes lists registered routes as "METHOD /path", or "* /path" for [Handler] routes, sorted by path.
func (r *BasicRouter) Routes() []string {
	routes := make([]string, 0, len(r.methods)+len(r.handlers))
	for _, path := range r.handlers {
		routes = append(routes, "* "+path)
	}
	for path, byMethod := range r.methods {
		for _, method := range sortedKeys(byMethod) {
			routes = append(routes, method+" "+path)
		}
	}

	sort.SliceStable(routes, func(i, j int) bool {
		_, pi, _ := strings.Cut(routes[i], " ")
		_, pj, _ := strings.Cut(routes[j], " ")
		if pi != pj {
			return pi < pj
		}
		return routes[i] < routes[j]
	})
	return routes
}

func sortedKeys(m map[string]http.Handler) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
