package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dcfaria/GeoServer/internal/gstest"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCLI_PublishGetListRemove(t *testing.T) {
	srv := gstest.New()
	defer srv.Close()
	t.Setenv("GEOSERVER_URL", srv.URL)

	css := "* { stroke: red; }"
	out, err := run(t, css, "publish", "--name", "My Style")
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if strings.TrimSpace(out) != "published My Style: true" {
		t.Fatalf("unexpected publish output %q", out)
	}
	if body, ok := srv.Style("", "My Style"); !ok || body != css {
		t.Fatalf("style not stored: %q %v", body, ok)
	}

	out, err = run(t, "", "get", "-n", "My Style")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if out != css {
		t.Fatalf("get returned %q", out)
	}

	out, err = run(t, "", "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	var refs []map[string]string
	if err := json.Unmarshal([]byte(out), &refs); err != nil {
		t.Fatalf("list output not JSON: %v: %s", err, out)
	}
	if len(refs) != 1 || refs[0]["name"] != "My Style" {
		t.Fatalf("unexpected list %v", refs)
	}

	if _, err := run(t, "", "remove", "-n", "My Style", "--purge"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	dels := srv.RequestsByMethod(http.MethodDelete)
	if len(dels) != 1 || !strings.HasSuffix(dels[0].RequestURI, "?purge=true&recurse=false") {
		t.Fatalf("unexpected delete requests %+v", dels)
	}

	out, err = run(t, "", "exists", "-n", "My Style")
	if err != nil {
		t.Fatalf("exists failed: %v", err)
	}
	if strings.TrimSpace(out) != "false" {
		t.Fatalf("style still reported as existing: %q", out)
	}
}

func TestCLI_UpdateFromFileInWorkspace(t *testing.T) {
	srv := gstest.New()
	defer srv.Close()
	srv.Seed("topp", "roads", "old")
	t.Setenv("GEOSERVER_URL", srv.URL)

	path := filepath.Join(t.TempDir(), "roads.css")
	if err := os.WriteFile(path, []byte("* { stroke: blue; }"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, "", "update", "-n", "roads", "-w", "topp", "-f", path); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if body, _ := srv.Style("topp", "roads"); body != "* { stroke: blue; }" {
		t.Fatalf("style not updated, got %q", body)
	}

	out, err := run(t, "", "exists", "-n", "roads", "-w", "topp")
	if err != nil || strings.TrimSpace(out) != "true" {
		t.Fatalf("exists in workspace: %q %v", out, err)
	}
}

func TestCLI_FlagsOverrideEnvironment(t *testing.T) {
	srv := gstest.New()
	defer srv.Close()
	srv.Password = "secret"
	t.Setenv("GEOSERVER_URL", "http://unreachable.invalid/geoserver")
	t.Setenv("GEOSERVER_PASSWORD", "wrong")

	_, err := run(t, "", "--url", srv.URL, "--password", "secret", "list")
	if err != nil {
		t.Fatalf("flags did not override env: %v", err)
	}
}

func TestCLI_URLFlagReplacesInvalidEnvironment(t *testing.T) {
	srv := gstest.New()
	defer srv.Close()
	t.Setenv("GEOSERVER_URL", "ftp://not-geoserver")

	if _, err := run(t, "", "--url", srv.URL, "list"); err != nil {
		t.Fatalf("valid --url should win over invalid GEOSERVER_URL: %v", err)
	}
	if _, err := run(t, "", "list"); err == nil {
		t.Fatal("expected invalid GEOSERVER_URL to fail without --url")
	}
}

func TestCLI_Errors(t *testing.T) {
	srv := gstest.New()
	defer srv.Close()
	srv.Seed("", "taken", "x")
	t.Setenv("GEOSERVER_URL", srv.URL)

	if _, err := run(t, "", "publish", "-n", "empty"); err == nil {
		t.Fatal("expected validation error for empty stdin body")
	}
	if _, err := run(t, "* {}", "publish", "-n", "taken"); err == nil {
		t.Fatal("expected conflict error")
	}
	if _, err := run(t, "* {}", "update", "-n", "missing"); err == nil {
		t.Fatal("expected conflict error for missing style")
	}
	if _, err := run(t, "", "get"); err == nil {
		t.Fatal("expected required flag error")
	}
	if n := len(srv.RequestsByMethod(http.MethodPost)); n != 0 {
		t.Fatalf("no POST expected, got %d", n)
	}
}

func TestCLI_NonEmptyResponseFails(t *testing.T) {
	srv := gstest.New()
	defer srv.Close()
	srv.SetPublishResponse("<html>error</html>")
	t.Setenv("GEOSERVER_URL", srv.URL)

	out, err := run(t, "* {}", "publish", "-n", "s1")
	if err == nil {
		t.Fatal("expected error for false result")
	}
	if strings.TrimSpace(out) != "published s1: false" {
		t.Fatalf("unexpected output %q", out)
	}
}
