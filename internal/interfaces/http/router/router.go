// Package router assembles the gin engine: middleware chain and route tables.
package router

import (
	"github.com/gin-gonic/gin"
)

// Route is one endpoint of a Resource
type Route struct {
	Method  string
	Path    string // relative to the resource prefix
	Handler gin.HandlerFunc
}

// Resource is the route table of one API resource
type Resource struct {
	Name       string
	Prefix     string
	Middleware []gin.HandlerFunc
	Routes     []Route
}

func (res Resource) mount(rg *gin.RouterGroup) {
	group := rg.Group(res.Prefix, res.Middleware...)
	for _, route := range res.Routes {
		group.Handle(route.Method, route.Path, route.Handler)
	}
}

// Router mounts resources under /api/{version}
type Router struct {
	engine     *gin.Engine
	version    string
	middleware []gin.HandlerFunc
	resources  []Resource
}

// Option configures a Router
type Option func(*Router)

// WithAPIVersion sets the version segment of the prefix (default "v1")
func WithAPIVersion(version string) Option {
	return func(r *Router) { r.version = version }
}

// NewRouter creates a router on engine
func NewRouter(engine *gin.Engine, opts ...Option) *Router {
	r := &Router{engine: engine, version: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Use adds middleware that runs for versioned routes only
func (r *Router) Use(middleware ...gin.HandlerFunc) *Router {
	r.middleware = append(r.middleware, middleware...)
	return r
}

// Mount queues resources for Setup
func (r *Router) Mount(resources ...Resource) *Router {
	r.resources = append(r.resources, resources...)
	return r
}

// Setup registers every queued resource on the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/"+r.version, r.middleware...)
	for _, res := range r.resources {
		res.mount(api)
	}
}

// Prefix returns the versioned path prefix
func (r *Router) Prefix() string {
	return "/api/" + r.version
}
