//nolint:varnamelen // Test files use idiomatic short variable names (t, tt, etc.)
package statusapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/joe/fairwatch/internal/statusapi"
	"github.com/joe/fairwatch/internal/tracker"
	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers
)

func TestFetchPriority(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.Expect(r.URL.Path).To(Equal("/api/run-status"))
		g.Expect(r.URL.Query().Get("runPrefix")).To(Equal("Test 1"))
		g.Expect(r.Header.Get(statusapi.RequestIDHeader)).NotTo(BeEmpty())

		_, _ = io.WriteString(w, `{"workflowsByPriority":[
			{"workflowPriority":1,"numberOfWorkflows":20,"activities":[
				{"activityNumber":1,"numberCompleted":20},{"activityNumber":2,"numberCompleted":5}]},
			{"workflowPriority":2,"numberOfWorkflows":20,"activities":[]}],
			"totalWorkflowsInTest":40}`)
	}))
	t.Cleanup(srv.Close)

	client := statusapi.NewClient(srv.URL+"/api/", nil)

	snapshot, err := client.Fetch(context.Background(), tracker.ModePriority, "Test 1")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(snapshot.Mode).To(Equal(tracker.ModePriority))
	g.Expect(snapshot.TotalWorkflows).To(Equal(40))
	g.Expect(snapshot.Classes).To(HaveLen(2))
	g.Expect(snapshot.Classes[0].ID).To(Equal(tracker.PriorityClassID(1)))
	g.Expect(snapshot.Classes[0].StepsCompleted()).To(Equal(25))
}

func TestFetchFairness(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.Expect(r.URL.Path).To(Equal("/run-status-fairness"))

		_, _ = io.WriteString(w, `{"workflowsByFairness":[
			{"fairnessKey":"first-class","fairnessWeight":15,"numberOfWorkflows":4,
			 "activities":[{"activityNumber":1,"numberCompleted":9},{"activityNumber":7,"numberCompleted":3}]},
			{"fairnessKey":"economy-class","fairnessWeight":0.5,"numberOfWorkflows":2,"activities":null}],
			"totalWorkflowsInTest":6}`)
	}))
	t.Cleanup(srv.Close)

	snapshot, err := statusapi.NewClient(srv.URL, nil).Fetch(context.Background(), tracker.ModeFairness, "p")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(snapshot.Classes).To(HaveLen(2))

	first := snapshot.Classes[0]
	g.Expect(first.ID).To(Equal(tracker.ClassID("first-class|15")))
	// clamped to the declared total, unknown activity ignored
	g.Expect(first.Stages).To(Equal([tracker.StageCount]int{4, 0, 0, 0, 0}))
	g.Expect(snapshot.Classes[1].ID).To(Equal(tracker.ClassID("economy-class|0.5")))
}

func TestFetchRequiresPrefix(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	_, err := statusapi.NewClient("http://127.0.0.1:1", nil).FetchPriority(context.Background(), " ")
	g.Expect(err).To(MatchError(statusapi.ErrMissingPrefix))
}

func TestAPIErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"json message", http.StatusInternalServerError, `{"message":"Temporal is down"}`, "Temporal is down"},
		{"json error", http.StatusBadRequest, `{"error":"runPrefix missing"}`, "runPrefix missing"},
		{"plain text", http.StatusBadGateway, "upstream gone\n", "upstream gone"},
		{"empty", http.StatusBadRequest, "", "Bad Request"},
		{"json without message", http.StatusNotFound, `{"status":"nope"}`, "Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			t.Cleanup(srv.Close)

			_, err := statusapi.NewClient(srv.URL, nil).FetchPriority(context.Background(), "x")

			var apiErr *statusapi.APIError
			g.Expect(errors.As(err, &apiErr)).To(BeTrue())
			g.Expect(apiErr.StatusCode()).To(Equal(tt.status))
			g.Expect(apiErr.UserMessage()).To(Equal(tt.message))
			g.Expect(apiErr.Endpoint).To(ContainSubstring("/run-status?runPrefix=x"))
		})
	}
}

func TestMalformedResponse(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "<html>vite</html>")
	}))
	t.Cleanup(srv.Close)

	_, err := statusapi.NewClient(srv.URL, nil).FetchFairness(context.Background(), "x")
	g.Expect(err).To(MatchError(statusapi.ErrMalformedResponse))
}

func TestSubmit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		cfg       statusapi.TestConfig
		wantBands bool
	}{
		{
			name: "fairness sends bands",
			cfg: statusapi.TestConfig{
				WorkflowIDPrefix:  "Test-010126-0900",
				NumberOfWorkflows: 100,
				Mode:              tracker.ModeFairness,
				Bands:             []statusapi.Band{{Key: "first-class", Weight: 6}},
			},
			wantBands: true,
		},
		{
			name: "priority drops bands",
			cfg: statusapi.TestConfig{
				WorkflowIDPrefix:  "Test-010126-0900",
				NumberOfWorkflows: 100,
				Mode:              tracker.ModePriority,
				Bands:             []statusapi.Band{{Key: "first-class", Weight: 6}},
				DisableFairness:   true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			var got map[string]any

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				g.Expect(r.Method).To(Equal(http.MethodPost))
				g.Expect(r.URL.Path).To(Equal(statusapi.StartPath))
				g.Expect(json.NewDecoder(r.Body).Decode(&got)).To(Succeed())
				_, _ = io.WriteString(w, "Done")
			}))
			t.Cleanup(srv.Close)

			err := statusapi.NewClient(srv.URL, nil).Submit(context.Background(), tt.cfg)
			g.Expect(err).NotTo(HaveOccurred())
			g.Expect(got).To(HaveKeyWithValue("workflowIdPrefix", "Test-010126-0900"))
			g.Expect(got).To(HaveKeyWithValue("numberOfWorkflows", BeNumerically("==", 100)))
			g.Expect(got).To(HaveKeyWithValue("mode", string(tt.cfg.Mode)))

			if tt.wantBands {
				g.Expect(got).To(HaveKey("bands"))
			} else {
				g.Expect(got).NotTo(HaveKey("bands"))
				g.Expect(got).NotTo(HaveKey("disableFairness"))
			}
		})
	}
}

func TestDeclaredOrder(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cfg := statusapi.TestConfig{
		Mode: tracker.ModeFairness,
		Bands: []statusapi.Band{
			{Key: "first-class", Weight: 6},
			{Key: "economy-class", Weight: 1},
		},
	}

	g.Expect(cfg.DeclaredOrder()).To(Equal([]tracker.ClassID{"first-class|6", "economy-class|1"}))

	cfg.DisableFairness = true
	g.Expect(cfg.DeclaredOrder()).To(Equal([]tracker.ClassID{"first-class|0", "economy-class|0"}))

	cfg.Mode = tracker.ModePriority
	g.Expect(cfg.DeclaredOrder()).To(BeNil())
}
