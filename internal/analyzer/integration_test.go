package analyzer

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/webcarbon/carbon-footprint-analyzer/internal/carbon"
	"github.com/webcarbon/carbon-footprint-analyzer/internal/model"
	"github.com/webcarbon/carbon-footprint-analyzer/internal/platform/telemetry"
)

// newLiveMux wires the real engine and HTTP client, allowed to reach
// loopback test servers.
func newLiveMux(timeout time.Duration) *http.ServeMux {
	logger := discardLogger()
	fetcher := carbon.NewHTTPClient(carbon.ClientOptions{Timeout: timeout, AllowPrivate: true})
	svc := NewService(carbon.NewEngine(fetcher), telemetry.New(), logger)
	mux := http.NewServeMux()
	NewTransport(svc, logger, 0).RegisterRoutes(mux)
	return mux
}

func TestAnalyze_EndToEnd(t *testing.T) {
	page := `<!DOCTYPE html><html><head>
		<link rel="stylesheet" href="/a.css">
		<script src="/a.js"></script>
		<script>inline()</script>
	</head><body><img src="/1.png"><img src="/2.png"></body></html>`

	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			http.Redirect(w, r, "/page", http.StatusFound)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, page)
	}))
	defer target.Close()

	rec := postAnalyze(newLiveMux(5*time.Second), fmt.Sprintf(`{"url": %q}`, target.URL+"/start"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var got model.Analysis
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	want := model.Metrics{
		PageSize:       0,
		JSCount:        1,
		CSSCount:       1,
		ImageCount:     2,
		ServerLocation: "Estimated",
		Caching:        "Not Checked",
		CDNUsage:       false,
	}
	if got.Metrics != want {
		t.Errorf("metrics = %+v, want %+v", got.Metrics, want)
	}
	if got.TotalCO2 != 0 {
		t.Errorf("total_co2 = %v, want 0", got.TotalCO2)
	}
}

func TestAnalyze_EndToEnd_Timeout(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer target.Close()

	start := time.Now()
	rec := postAnalyze(newLiveMux(100*time.Millisecond), fmt.Sprintf(`{"url": %q}`, target.URL))

	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("request took %s, want prompt failure", elapsed)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if detail := decodeDetail(t, rec); !strings.HasPrefix(detail, "Timed out fetching the page") {
		t.Errorf("detail = %q, want timeout description", detail)
	}
}

func TestAnalyze_EndToEnd_ConnectionRefused(t *testing.T) {
	target := httptest.NewServer(http.NotFoundHandler())
	addr := target.URL
	target.Close()

	rec := postAnalyze(newLiveMux(5*time.Second), fmt.Sprintf(`{"url": %q}`, addr))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if detail := decodeDetail(t, rec); !strings.HasPrefix(detail, "Failed to fetch the page") {
		t.Errorf("detail = %q, want fetch failure description", detail)
	}
}
