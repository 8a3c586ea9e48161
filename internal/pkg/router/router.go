package router

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/shandysiswandi/safestreet/internal/pkg/config"
	"github.com/shandysiswandi/safestreet/internal/pkg/instrument"
	"github.com/shandysiswandi/safestreet/internal/pkg/jwt"
	"github.com/shandysiswandi/safestreet/internal/pkg/uid"
)

// Handler returns a value to encode as the success envelope, or an error
// to encode as the error envelope.
type Handler func(r *Request) (any, error)

// Verifier checks bearer tokens.
type Verifier interface {
	Verify(token string) (jwt.Claims, error)
}

// Enforcer decides whether a subject may perform an action on an object.
// *casbin.Enforcer satisfies it.
type Enforcer interface {
	Enforce(rvals ...any) (bool, error)
}

// Config holds the router's collaborators.
type Config struct {
	Config     config.Config
	UUID       uid.StringID
	JWT        Verifier
	Instrument instrument.Instrumentation
	Enforcer   Enforcer
}

// Router is an httprouter with a fixed middleware stack in front of every
// endpoint: recover, real IP, correlation id, observability, maintenance
// switch, authentication. Endpoints are authenticated unless marked Public.
type Router struct {
	hr       *httprouter.Router
	mws      []Middleware
	public   map[string]map[string]struct{}
	enforcer Enforcer
}

// NewRouter builds the router with the default middleware stack.
func NewRouter(cfg Config) *Router {
	hr := &httprouter.Router{
		RedirectTrailingSlash:  true,
		RedirectFixedPath:      true,
		HandleMethodNotAllowed: true,
		HandleOPTIONS:          true,
		SaveMatchedRoutePath:   true,
		NotFound: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, errorResponse{Error: "Endpoint not found"}, http.StatusNotFound)
		}),
		MethodNotAllowed: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, errorResponse{Error: "Method not allowed"}, http.StatusMethodNotAllowed)
		}),
	}

	ins := cfg.Instrument
	if ins == nil {
		ins = instrument.NewNoop()
	}

	r := &Router{
		hr:       hr,
		public:   map[string]map[string]struct{}{},
		enforcer: cfg.Enforcer,
	}
	r.mws = []Middleware{
		middlewareRecoverer,
		middlewareIP,
		middlewareCorrelationID(cfg.UUID),
		middlewareObservability(cfg.Config, ins),
		middlewareMaintenance(cfg.Config),
		middlewareAuthentication(cfg.JWT, r.isPublic),
	}

	r.Public(http.MethodGet, "/")
	r.GET("/", func(*Request) (any, error) {
		return Message("Welcome to SafeStreet API"), nil
	})

	return r
}

// Public exempts method+path from authentication.
func (r *Router) Public(method, path string) {
	if r.public[method] == nil {
		r.public[method] = map[string]struct{}{}
	}
	r.public[method][path] = struct{}{}
}

func (r *Router) isPublic(method, path string) bool {
	_, ok := r.public[method][path]
	return ok
}

// GET registers h for GET path, with mws running after the default stack.
func (r *Router) GET(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodGet, path, h, mws...)
}

// POST registers h for POST path.
func (r *Router) POST(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodPost, path, h, mws...)
}

// GETRaw registers a plain http.Handler behind the default stack.
func (r *Router) GETRaw(path string, h http.Handler, mws ...Middleware) {
	r.hr.Handler(http.MethodGet, path, Chain(h, append(r.stack(), mws...)...))
}

func (r *Router) endpoint(method, path string, h Handler, mws ...Middleware) {
	final := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		resp, err := h(&Request{Request: req})
		if err != nil {
			if rec, ok := w.(interface{ SetError(error) }); ok {
				rec.SetError(err)
			}
			encodeError(w, err)
			return
		}
		encodeSuccess(w, resp)
	})

	r.hr.Handler(method, path, Chain(final, append(r.stack(), mws...)...))
}

func (r *Router) stack() []Middleware {
	return append([]Middleware(nil), r.mws...)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.hr.ServeHTTP(w, req)
}
