// Command validate checks a scoring-request fixture for integrity before it
// is published to the request topic: request validity, sample cleanliness
// under the strict (enhanced) rules, and scoring reproducibility across two
// independently constructed engines.
//
// Usage:
//
//	go run ./cmd/validate -fixture data/mock/scoring_requests.json -seed 42
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/model"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
	"github.com/couchcryptid/climate-risk-engine/internal/predict"
)

// fixtureClock must match the clock genmock stamped the fixture with, so the
// strict staleness check sees the samples as recent.
var fixtureClock = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	fixture := flag.String("fixture", "", "path to the scoring-request JSON fixture")
	seed := flag.Int64("seed", 42, "training seed for the reproducibility check")
	flag.Parse()

	if *fixture == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*fixture, *seed); code != 0 {
		os.Exit(code)
	}
}

func run(fixturePath string, seed int64) int {
	domain.SetClock(clockwork.NewFakeClockAt(fixtureClock))
	defer domain.SetClock(nil)

	fmt.Println("=== Scoring Fixture Validation ===")
	fmt.Println()

	requests, err := loadFixture(fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load fixture: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateRequests(requests),
		validateSamples(requests),
		validateReproducibility(requests, seed),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Requests: %d\n", len(requests))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadFixture(path string) ([]domain.ScoringRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var requests []domain.ScoringRequest
	if err := json.Unmarshal(data, &requests); err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return nil, fmt.Errorf("fixture is empty")
	}
	return requests, nil
}

// ── Phase 1: Request Validity ──
// Every fixture request must pass the same validation the API applies.

func validateRequests(requests []domain.ScoringRequest) *phase {
	p := &phase{name: "Phase 1: Request Validity"}

	for i, req := range requests {
		r := predict.Request{Location: req.Location, Toggles: req.Toggles, Model: req.Model}
		if err := r.Validate(); err != nil {
			p.errorf("request %d: %v", i, err)
		}
	}
	return p
}

// ── Phase 2: Sample Cleanliness ──
// Every sample of every selected signal must survive the strict cleaning
// rules; a fixture that sheds samples would test less than it appears to.

func validateSamples(requests []domain.ScoringRequest) *phase {
	p := &phase{name: "Phase 2: Sample Cleanliness (strict)"}

	dropCounts := map[domain.DropReason]int{}
	for i, req := range requests {
		for _, signal := range domain.Signals() {
			if !req.Toggles.Enabled(signal) {
				continue
			}
			series := req.Samples.Series(signal)
			if len(series) == 0 {
				p.errorf("request %d: signal %s selected but has no samples", i, signal)
				continue
			}
			for j, s := range series {
				if reason := domain.CheckSample(s, true); reason != domain.DropNone {
					dropCounts[reason]++
					p.errorf("request %d: %s sample %d dropped: %s", i, signal, j, reason)
				}
			}
		}
	}

	if len(dropCounts) > 0 {
		fmt.Printf("  Drop reasons: %v\n", dropCounts)
	}
	return p
}

// ── Phase 3: Scoring Reproducibility ──
// Two engines built from the same seed must agree on every request. This
// guards the determinism the prediction IDs depend on.

func validateReproducibility(requests []domain.ScoringRequest, seed int64) *phase {
	p := &phase{name: "Phase 3: Scoring Reproducibility"}

	first := newOrchestrator(seed)
	second := newOrchestrator(seed)

	for i, req := range requests {
		r := predict.Request{Location: req.Location, Toggles: req.Toggles, Model: req.Model}

		a, err := first.Score(r, req.Samples)
		if err != nil {
			p.errorf("request %d: first engine: %v", i, err)
			continue
		}
		b, err := second.Score(r, req.Samples)
		if err != nil {
			p.errorf("request %d: second engine: %v", i, err)
			continue
		}

		if a.ID != b.ID {
			p.errorf("request %d: ID mismatch: %s vs %s", i, a.ID, b.ID)
		}
		if !floatEq(a.Drought.Probability, b.Drought.Probability) {
			p.errorf("request %d: drought probability: %g vs %g", i, a.Drought.Probability, b.Drought.Probability)
		}
		if !floatEq(a.Flood.Probability, b.Flood.Probability) {
			p.errorf("request %d: flood probability: %g vs %g", i, a.Flood.Probability, b.Flood.Probability)
		}
		if !floatEq(a.Drought.Confidence, b.Drought.Confidence) {
			p.errorf("request %d: confidence: %g vs %g", i, a.Drought.Confidence, b.Drought.Confidence)
		}
	}
	return p
}

func newOrchestrator(seed int64) *predict.Orchestrator {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	return predict.NewOrchestrator(logger, metrics, nil, model.NewManager(logger, metrics, seed))
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-12
}
