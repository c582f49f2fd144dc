package api

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// call records one verb invocation on fakeBackend.
type call struct {
	method      string
	url         string
	body        string
	contentType string
}

// fakeBackend is an in-process StyleExistenceChecker + HTTPVerbExecutor.
type fakeBackend struct {
	mu sync.Mutex

	exists    map[string]bool // key: workspace + "/" + name
	existsErr error

	response   string // body returned by Post/Put/Get
	respondNil bool   // Post/Put/Get/Delete fail as if no response came back

	existsCalls []string
	calls       []call
}

func newFakeBackend() *fakeBackend { return &fakeBackend{exists: map[string]bool{}} }

func (f *fakeBackend) seed(workspace, name string) { f.exists[workspace+"/"+name] = true }

func (f *fakeBackend) Exists(_ context.Context, workspace, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.existsCalls = append(f.existsCalls, workspace+"/"+name)
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.exists[workspace+"/"+name], nil
}

func (f *fakeBackend) record(c call) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	if f.respondNil {
		return "", fmt.Errorf("no response")
	}
	return f.response, nil
}

func (f *fakeBackend) Get(_ context.Context, url string) (string, error) {
	return f.record(call{method: "GET", url: url})
}

func (f *fakeBackend) Post(_ context.Context, url, body, contentType string) (string, error) {
	return f.record(call{method: "POST", url: url, body: body, contentType: contentType})
}

func (f *fakeBackend) Put(_ context.Context, url, body, contentType string) (string, error) {
	return f.record(call{method: "PUT", url: url, body: body, contentType: contentType})
}

func (f *fakeBackend) Delete(_ context.Context, url string) error {
	_, err := f.record(call{method: "DELETE", url: url})
	return err
}

func testEndpoint() Endpoint {
	return Endpoint{BaseURL: "http://gs:8080/geoserver/", Log: zerolog.Nop()}
}
