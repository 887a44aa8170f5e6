package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/showgrid/showgrid-go/schema"
)

// FakeAPI is an in-memory Showgrid backend for tests. It serves the
// public list/detail endpoints and the admin CRUD endpoints with the
// real envelope shapes, and can be told to fail upcoming requests to
// exercise error and rollback paths.
type FakeAPI struct {
	Server *httptest.Server

	mu         sync.Mutex
	events     []schema.Event
	cities     []schema.City
	failTimes  int
	failStatus int
	requests   int
}

// NewFakeAPI starts the fake backend. The server is closed when the
// test finishes.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()

	f := &FakeAPI{}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/events", f.listEvents)
	mux.HandleFunc("GET /api/events/{slug}", f.getEvent)
	mux.HandleFunc("POST /api/admin/events", f.createEvent)
	mux.HandleFunc("PUT /api/admin/events/{slug}", f.updateEvent)
	mux.HandleFunc("DELETE /api/admin/events/{slug}", f.deleteEvent)
	mux.HandleFunc("GET /api/cities", f.listCities)
	mux.HandleFunc("GET /api/cities/{slug}", f.getCity)
	mux.HandleFunc("POST /api/admin/cities", f.createCity)
	mux.HandleFunc("PUT /api/admin/cities/{slug}", f.updateCity)
	mux.HandleFunc("DELETE /api/admin/cities/{slug}", f.deleteCity)

	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.interceptFailure(w) {
			return
		}
		f.countRequest()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.Server.Close)

	return f
}

// URL returns the base URL of the fake backend.
func (f *FakeAPI) URL() string { return f.Server.URL }

// SeedEvents replaces the event table.
func (f *FakeAPI) SeedEvents(events ...schema.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append([]schema.Event(nil), events...)
}

// SeedCities replaces the city table.
func (f *FakeAPI) SeedCities(cities ...schema.City) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cities = append([]schema.City(nil), cities...)
}

// EventSlugs returns the slugs currently stored, in order.
func (f *FakeAPI) EventSlugs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	slugs := make([]string, len(f.events))
	for i, e := range f.events {
		slugs[i] = e.Slug
	}
	return slugs
}

// FailWith makes the next n requests answer with the given status
// before any routing happens.
func (f *FakeAPI) FailWith(status, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failStatus = status
	f.failTimes = n
}

// Requests returns how many requests reached the backend, failures
// included.
func (f *FakeAPI) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func (f *FakeAPI) interceptFailure(w http.ResponseWriter) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTimes <= 0 {
		return false
	}
	f.failTimes--
	f.requests++
	http.Error(w, `{"message":"injected failure"}`, f.failStatus)
	return true
}

func (f *FakeAPI) countRequest() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// paginate applies search/limit/offset semantics shared by both list
// endpoints. match decides whether an index passes the search filter.
func paginate(r *http.Request, total int, match func(i int, search string) bool) (indexes []int, count int, hasMore bool) {
	q := r.URL.Query()
	search := strings.ToLower(q.Get("search"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	var filtered []int
	for i := 0; i < total; i++ {
		if search == "" || match(i, search) {
			filtered = append(filtered, i)
		}
	}
	count = len(filtered)

	if offset > count {
		offset = count
	}
	end := count
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return filtered[offset:end], count, end < count
}

func (f *FakeAPI) listEvents(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx, count, hasMore := paginate(r, len(f.events), func(i int, search string) bool {
		return strings.Contains(strings.ToLower(f.events[i].Name), search) ||
			strings.Contains(strings.ToLower(f.events[i].City), search)
	})

	page := make([]schema.Event, len(idx))
	for i, j := range idx {
		page[i] = f.events[j]
	}
	writeJSON(w, http.StatusOK, schema.EventList{
		Count:      count,
		Events:     page,
		Pagination: &schema.Pagination{HasMore: hasMore},
	})
}

func (f *FakeAPI) getEvent(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	slug := r.PathValue("slug")
	for _, e := range f.events {
		if e.Slug == slug {
			// Details come back wrapped, matching the backend.
			writeJSON(w, http.StatusOK, map[string]schema.Event{"event": e})
			return
		}
	}
	http.Error(w, `{"message":"event not found"}`, http.StatusNotFound)
}

func (f *FakeAPI) createEvent(w http.ResponseWriter, r *http.Request) {
	var event schema.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, `{"message":"bad payload"}`, http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	writeJSON(w, http.StatusCreated, event)
}

func (f *FakeAPI) updateEvent(w http.ResponseWriter, r *http.Request) {
	var event schema.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, `{"message":"bad payload"}`, http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	slug := r.PathValue("slug")
	for i := range f.events {
		if f.events[i].Slug == slug {
			f.events[i] = event
			writeJSON(w, http.StatusOK, event)
			return
		}
	}
	http.Error(w, `{"message":"event not found"}`, http.StatusNotFound)
}

func (f *FakeAPI) deleteEvent(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	slug := r.PathValue("slug")
	for i := range f.events {
		if f.events[i].Slug == slug {
			f.events = append(f.events[:i], f.events[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	http.Error(w, `{"message":"event not found"}`, http.StatusNotFound)
}

func (f *FakeAPI) listCities(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx, count, hasMore := paginate(r, len(f.cities), func(i int, search string) bool {
		return strings.Contains(strings.ToLower(f.cities[i].Name), search)
	})

	page := make([]schema.City, len(idx))
	for i, j := range idx {
		page[i] = f.cities[j]
	}
	writeJSON(w, http.StatusOK, schema.CityList{
		Count:      count,
		Cities:     page,
		Pagination: &schema.Pagination{HasMore: hasMore},
	})
}

func (f *FakeAPI) getCity(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	slug := r.PathValue("slug")
	for _, c := range f.cities {
		if c.Slug == slug {
			writeJSON(w, http.StatusOK, map[string]schema.City{"city": c})
			return
		}
	}
	http.Error(w, `{"message":"city not found"}`, http.StatusNotFound)
}

func (f *FakeAPI) createCity(w http.ResponseWriter, r *http.Request) {
	var city schema.City
	if err := json.NewDecoder(r.Body).Decode(&city); err != nil {
		http.Error(w, `{"message":"bad payload"}`, http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.cities = append(f.cities, city)
	writeJSON(w, http.StatusCreated, city)
}

func (f *FakeAPI) updateCity(w http.ResponseWriter, r *http.Request) {
	var city schema.City
	if err := json.NewDecoder(r.Body).Decode(&city); err != nil {
		http.Error(w, `{"message":"bad payload"}`, http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	slug := r.PathValue("slug")
	for i := range f.cities {
		if f.cities[i].Slug == slug {
			f.cities[i] = city
			writeJSON(w, http.StatusOK, city)
			return
		}
	}
	http.Error(w, `{"message":"city not found"}`, http.StatusNotFound)
}

func (f *FakeAPI) deleteCity(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	slug := r.PathValue("slug")
	for i := range f.cities {
		if f.cities[i].Slug == slug {
			f.cities = append(f.cities[:i], f.cities[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	http.Error(w, `{"message":"city not found"}`, http.StatusNotFound)
}
