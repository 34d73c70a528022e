package httpapi

import (
	"encoding/json"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/swaggo/swag"

	_ "astrod/docs"
)

type docOperation struct {
	Parameters []struct {
		Name string `json:"name"`
		In   string `json:"in"`
	} `json:"parameters"`
	Responses map[string]json.RawMessage `json:"responses"`
}

func readDocPaths(t *testing.T) map[string]map[string]docOperation {
	t.Helper()
	doc, err := swag.ReadDoc("swagger")
	if err != nil {
		t.Fatalf("ReadDoc: %v", err)
	}
	var v struct {
		Paths map[string]map[string]docOperation `json:"paths"`
	}
	if err := json.Unmarshal([]byte(doc), &v); err != nil {
		t.Fatalf("doc is not JSON: %v", err)
	}
	return v.Paths
}

func TestDocCoversEveryAPIRoute(t *testing.T) {
	paths := readDocPaths(t)
	r := NewMux(&mockService{}).(chi.Routes)
	var routes []string
	err := chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		switch {
		case route == "/healthz", route == "/metrics", strings.HasPrefix(route, "/swagger"):
			return nil
		}
		routes = append(routes, strings.ToLower(method)+" "+route)
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	var documented []string
	for p, ops := range paths {
		for m := range ops {
			documented = append(documented, m+" "+p)
		}
	}
	sort.Strings(routes)
	sort.Strings(documented)
	if strings.Join(routes, "\n") != strings.Join(documented, "\n") {
		t.Fatalf("routes and doc differ\nroutes:\n%s\ndoc:\n%s", strings.Join(routes, "\n"), strings.Join(documented, "\n"))
	}
}

var (
	annRouter = regexp.MustCompile(`^// @Router\s+(\S+)\s+\[(\w+)\]`)
	annStatus = regexp.MustCompile(`^// @(?:Success|Failure)\s+(\d+)`)
	annParam  = regexp.MustCompile(`^// @Param\s+(\S+)\s+(\w+)`)
)

func TestDocMatchesHandlerAnnotations(t *testing.T) {
	var src []byte
	for _, name := range []string{"server.go", "sse.go"} {
		b, err := os.ReadFile(name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		src = append(src, b...)
	}
	paths := readDocPaths(t)
	var statuses, params []string
	for _, line := range strings.Split(string(src), "\n") {
		line = strings.TrimSpace(line)
		if m := annStatus.FindStringSubmatch(line); m != nil {
			statuses = append(statuses, m[1])
			continue
		}
		if m := annParam.FindStringSubmatch(line); m != nil {
			params = append(params, m[2]+":"+m[1])
			continue
		}
		m := annRouter.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		op, ok := paths[m[1]][m[2]]
		if !ok {
			t.Fatalf("%s %s is annotated but not documented", m[2], m[1])
		}
		var got []string
		for code := range op.Responses {
			got = append(got, code)
		}
		sort.Strings(got)
		sort.Strings(statuses)
		if strings.Join(got, ",") != strings.Join(statuses, ",") {
			t.Fatalf("%s %s responses: doc=%v annotations=%v", m[2], m[1], got, statuses)
		}
		var gotParams []string
		for _, p := range op.Parameters {
			gotParams = append(gotParams, p.In+":"+p.Name)
		}
		sort.Strings(gotParams)
		sort.Strings(params)
		if strings.Join(gotParams, ",") != strings.Join(params, ",") {
			t.Fatalf("%s %s params: doc=%v annotations=%v", m[2], m[1], gotParams, params)
		}
		statuses, params = nil, nil
	}
}
