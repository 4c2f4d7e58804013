package middleware

import (
	"net/http"
	"strings"
	"sync"

	"github.com/angelmondragon/storefront/api/responses"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/types"
)

// Fault makes one endpoint answer with an error instead of its handler.
type Fault struct {
	Status  int
	Code    pkgerrors.Code
	Message string
	// Times limits how many requests fail. Zero fails every request.
	Times int
}

// Faults counts requests per endpoint and injects failures or holds on
// demand. Endpoints are keyed by method and exact path.
type Faults struct {
	mu     sync.Mutex
	calls  map[string]int
	faults map[string]*Fault
	holds  map[string]chan struct{}
}

func NewFaults() *Faults {
	return &Faults{
		calls:  make(map[string]int),
		faults: make(map[string]*Fault),
		holds:  make(map[string]chan struct{}),
	}
}

func endpoint(method, path string) string {
	return strings.ToUpper(method) + " " + path
}

// Fail installs f for method and path.
func (f *Faults) Fail(method, path string, fault Fault) {
	if fault.Status == 0 {
		fault.Status = http.StatusInternalServerError
	}
	if fault.Code == "" {
		fault.Code = pkgerrors.FromStatus(fault.Status)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults[endpoint(method, path)] = &fault
}

// Hold parks requests to method and path until the returned release is called.
func (f *Faults) Hold(method, path string) (release func()) {
	ch := make(chan struct{})
	f.mu.Lock()
	f.holds[endpoint(method, path)] = ch
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.holds, endpoint(method, path))
			f.mu.Unlock()
			close(ch)
		})
	}
}

// Calls reports how many requests reached method and path.
func (f *Faults) Calls(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[endpoint(method, path)]
}

// Reset forgets counts, faults and holds.
func (f *Faults) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.holds {
		close(ch)
	}
	f.calls = make(map[string]int)
	f.faults = make(map[string]*Fault)
	f.holds = make(map[string]chan struct{})
}

func (f *Faults) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := endpoint(r.Method, r.URL.Path)

		f.mu.Lock()
		f.calls[key]++
		hold := f.holds[key]
		fault := f.take(key)
		f.mu.Unlock()

		if hold != nil {
			select {
			case <-hold:
			case <-r.Context().Done():
				return
			}
		}
		if fault != nil {
			responses.WriteBare(w, fault.Status, types.ErrorEnvelope{Error: types.APIError{
				Code:    string(fault.Code),
				Message: fault.message(),
			}})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// take returns the fault for key and consumes one use. Callers hold f.mu.
func (f *Faults) take(key string) *Fault {
	fault, ok := f.faults[key]
	if !ok {
		return nil
	}
	out := *fault
	if fault.Times > 0 {
		fault.Times--
		if fault.Times == 0 {
			delete(f.faults, key)
		}
	}
	return &out
}

func (f Fault) message() string {
	if f.Message != "" {
		return f.Message
	}
	return http.StatusText(f.Status)
}
