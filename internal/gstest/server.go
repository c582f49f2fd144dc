// Package gstest runs an in-memory stand-in for the GeoServer styles REST
// endpoint. It stores CSS bodies per workspace and records every request.
package gstest

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
)

const (
	DefaultUsername = "admin"
	DefaultPassword = "geoserver"

	mimeGeoCSS = "application/vnd.geoserver.geocss+css"
)

// Request is a recorded call.
type Request struct {
	Method      string
	Path        string // decoded path
	RequestURI  string // path and query as sent
	ContentType string
	Body        string
	Username    string
	Purge       bool
	Recurse     bool
}

// Server is a fake GeoServer. Handlers are safe for concurrent use.
type Server struct {
	*httptest.Server

	Username string
	Password string

	mu       sync.Mutex
	styles   map[string]string // key: workspace + "/" + name
	requests []Request

	publishResponse string
	updateResponse  string
	inUse           map[string]bool
}

// New starts a fake GeoServer with the default admin credentials.
// Callers must Close it.
func New() *Server {
	s := &Server{
		Username: DefaultUsername,
		Password: DefaultPassword,
		styles:   make(map[string]string),
		inUse:    make(map[string]bool),
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

func (s *Server) router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.recordAndAuthenticate)
	for _, prefix := range []string{"/rest", "/rest/workspaces/{workspace}"} {
		sub := r.PathPrefix(prefix).Subrouter()
		sub.HandleFunc("/styles.json", s.list).Methods(http.MethodGet)
		sub.HandleFunc("/styles", s.create).Methods(http.MethodPost)
		sub.HandleFunc("/styles/{name}.{ext:json|css}", s.get).Methods(http.MethodGet)
		sub.HandleFunc("/styles/{name}.css", s.update).Methods(http.MethodPut)
		sub.HandleFunc("/styles/{name}.css", s.remove).Methods(http.MethodDelete)
	}
	return r
}

// SetPublishResponse sets the body returned by successful POSTs.
func (s *Server) SetPublishResponse(body string) {
	s.mu.Lock()
	s.publishResponse = body
	s.mu.Unlock()
}

// SetUpdateResponse sets the body returned by successful PUTs.
func (s *Server) SetUpdateResponse(body string) {
	s.mu.Lock()
	s.updateResponse = body
	s.mu.Unlock()
}

// MarkInUse makes DELETE of the style fail with 403 unless recurse is set.
func (s *Server) MarkInUse(workspace, name string) {
	s.mu.Lock()
	s.inUse[key(workspace, name)] = true
	s.mu.Unlock()
}

// Seed stores a style directly.
func (s *Server) Seed(workspace, name, body string) {
	s.mu.Lock()
	s.styles[key(workspace, name)] = body
	s.mu.Unlock()
}

// Style returns the stored CSS of a style.
func (s *Server) Style(workspace, name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	body, ok := s.styles[key(workspace, name)]
	return body, ok
}

// Requests returns a copy of the recorded requests.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestsByMethod returns the recorded requests using method.
func (s *Server) RequestsByMethod(method string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Method == method {
			out = append(out, r)
		}
	}
	return out
}

func key(workspace, name string) string { return workspace + "/" + name }

func (s *Server) recordAndAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		user, pass, ok := r.BasicAuth()
		q := r.URL.Query()
		purge, _ := strconv.ParseBool(q.Get("purge"))
		recurse, _ := strconv.ParseBool(q.Get("recurse"))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:      r.Method,
			Path:        r.URL.Path,
			RequestURI:  r.RequestURI,
			ContentType: r.Header.Get("Content-Type"),
			Body:        string(body),
			Username:    user,
			Purge:       purge,
			Recurse:     recurse,
		})
		s.mu.Unlock()

		if !ok || user != s.Username || pass != s.Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="GeoServer Realm"`)
			http.Error(w, "HTTP 401 Unauthorized", http.StatusUnauthorized)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	ws := mux.Vars(r)["workspace"]
	s.mu.Lock()
	var names []string
	for k := range s.styles {
		if len(k) > len(ws) && k[:len(ws)+1] == ws+"/" {
			names = append(names, k[len(ws)+1:])
		}
	}
	s.mu.Unlock()
	sort.Strings(names)

	w.Header().Set("Content-Type", "application/json")
	if len(names) == 0 {
		_, _ = io.WriteString(w, `{"styles":""}`)
		return
	}
	type ref struct {
		Name string `json:"name"`
		Href string `json:"href"`
	}
	refs := make([]ref, len(names))
	for i, n := range names {
		refs[i] = ref{Name: n, Href: s.URL + "/rest/styles/" + n + ".json"}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"styles": map[string]any{"style": refs}})
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	body, ok := s.Style(vars["workspace"], vars["name"])
	if !ok {
		http.Error(w, "No such style: "+vars["name"], http.StatusNotFound)
		return
	}
	if vars["ext"] == "css" {
		w.Header().Set("Content-Type", mimeGeoCSS)
		_, _ = io.WriteString(w, body)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"style": map[string]any{"name": vars["name"], "format": "css"}})
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	if !isGeoCSS(r) {
		http.Error(w, "Unsupported style format", http.StatusUnsupportedMediaType)
		return
	}
	ws := mux.Vars(r)["workspace"]
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "Style must have a name", http.StatusBadRequest)
		return
	}
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.styles[key(ws, name)]; exists {
		http.Error(w, "Style "+name+" already exists", http.StatusForbidden)
		return
	}
	s.styles[key(ws, name)] = string(body)
	w.WriteHeader(http.StatusCreated)
	_, _ = io.WriteString(w, s.publishResponse)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	if !isGeoCSS(r) {
		http.Error(w, "Unsupported style format", http.StatusUnsupportedMediaType)
		return
	}
	vars := mux.Vars(r)
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(vars["workspace"], vars["name"])
	if _, exists := s.styles[k]; !exists {
		http.Error(w, "No such style: "+vars["name"], http.StatusNotFound)
		return
	}
	s.styles[k] = string(body)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, s.updateResponse)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	recurse, _ := strconv.ParseBool(r.URL.Query().Get("recurse"))

	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(vars["workspace"], vars["name"])
	if _, exists := s.styles[k]; !exists {
		http.Error(w, "No such style: "+vars["name"], http.StatusNotFound)
		return
	}
	if s.inUse[k] && !recurse {
		http.Error(w, "Can't delete style referenced by existing layers.", http.StatusForbidden)
		return
	}
	delete(s.styles, k)
	delete(s.inUse, k)
	w.WriteHeader(http.StatusOK)
}

func isGeoCSS(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == mimeGeoCSS
}
