package harness

import (
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/weave/internal/flowdoc"
)

// goldenClock pins the serialized createdAt so golden files are stable.
func goldenClock() time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
}

// RunWithGolden executes a scenario, checks its expectations, and
// additionally compares the executed graph's serialized document
// (results included) against testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, s *Scenario) *Result {
	t.Helper()

	result, err := Run(s)
	if err != nil {
		t.Fatalf("scenario %s: %v", s.Name, err)
	}
	for _, msg := range result.Errors {
		t.Errorf("scenario %s: %s", s.Name, msg)
	}

	doc, err := flowdoc.Serialize(result.Graph, s.Name,
		flowdoc.WithClock(goldenClock),
		flowdoc.WithResults(),
	)
	if err != nil {
		t.Fatalf("scenario %s: serialize: %v", s.Name, err)
	}
	data, err := flowdoc.Marshal(doc)
	if err != nil {
		t.Fatalf("scenario %s: marshal: %v", s.Name, err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, s.Name, data)
	return result
}
