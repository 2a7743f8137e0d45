package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/use-agent/dealscope/models"
)

// CLI flags
var (
	apiURL      = flag.String("api-url", "http://localhost:5000", "DealScope API base URL")
	runs        = flag.Int("runs", 2, "Number of runs per keyword for averaging")
	maxProducts = flag.Int("max-products", 12, "max_products sent with each request")
	output      = flag.String("output", "benchmark-results.json", "JSON output file path")
)

// Keywords covering electronics, fashion and beauty listings.
var testKeywords = []string{
	"laptop",
	"headphones",
	"running shoes",
	"lipstick",
	"sunscreen",
}

// --- Benchmark result types ---

type runResult struct {
	Run        int               `json:"run"`
	TotalMs    int64             `json:"total_ms"`
	Items      int               `json:"items"`
	PerSite    map[string]int    `json:"per_site"`
	WithImage  int               `json:"with_image"`
	WithPct    int               `json:"with_discount"`
	SiteErrors map[string]string `json:"site_errors,omitempty"`
	Success    bool              `json:"success"`
	Error      string            `json:"error,omitempty"`
}

type keywordAverages struct {
	TotalMs      float64 `json:"total_ms"`
	Items        float64 `json:"items"`
	ImagePercent float64 `json:"image_percent"`
	PctPercent   float64 `json:"discount_percent"`
}

type keywordResult struct {
	Keyword  string           `json:"keyword"`
	Runs     []runResult      `json:"runs"`
	Averages *keywordAverages `json:"averages,omitempty"`
}

type benchmarkReport struct {
	Timestamp      string          `json:"timestamp"`
	APIURL         string          `json:"api_url"`
	RunsPerKeyword int             `json:"runs_per_keyword"`
	Results        []keywordResult `json:"results"`
}

func main() {
	flag.Parse()

	fmt.Println("=== DealScope Benchmark Suite ===")
	fmt.Printf("API URL:     %s\n", *apiURL)
	fmt.Printf("Runs/query:  %d\n", *runs)
	fmt.Printf("Output:      %s\n", *output)
	fmt.Println()

	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		fmt.Fprintf(os.Stderr, "Make sure DealScope is running (go run ./cmd/dealscope)\n")
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		APIURL:         *apiURL,
		RunsPerKeyword: *runs,
	}

	for _, kw := range testKeywords {
		fmt.Printf("Benchmarking %q ...\n", kw)
		kr := keywordResult{Keyword: kw}

		for i := 1; i <= *runs; i++ {
			fmt.Printf("  Run %d/%d ... ", i, *runs)
			rr := benchmarkKeyword(kw, i)
			if rr.Success {
				fmt.Printf("OK  %dms  %d items  %s\n", rr.TotalMs, rr.Items, siteSummary(rr))
			} else {
				fmt.Printf("FAILED: %s\n", rr.Error)
			}
			kr.Runs = append(kr.Runs, rr)
		}

		kr.Averages = computeAverages(kr.Runs)
		report.Results = append(report.Results, kr)
		fmt.Println()
	}

	printTable(report.Results)

	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func checkAPI(baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/api/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func benchmarkKeyword(keyword string, run int) runResult {
	rr := runResult{Run: run, PerSite: map[string]int{}}

	bodyBytes, err := json.Marshal(map[string]any{
		"keyword":      keyword,
		"max_products": *maxProducts,
	})
	if err != nil {
		rr.Error = fmt.Sprintf("marshal error: %v", err)
		return rr
	}

	req, err := http.NewRequest(http.MethodPost, *apiURL+"/api/scrape", bytes.NewReader(bodyBytes))
	if err != nil {
		rr.Error = fmt.Sprintf("request error: %v", err)
		return rr
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Minute}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		rr.Error = fmt.Sprintf("request failed: %v", err)
		return rr
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var er models.ErrorResponse
		json.NewDecoder(resp.Body).Decode(&er)
		rr.Error = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, er.Error)
		return rr
	}

	var sr models.ScrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		rr.Error = fmt.Sprintf("decode error: %v", err)
		return rr
	}
	rr.TotalMs = time.Since(start).Milliseconds()

	rr.Success = sr.Success
	rr.Items = len(sr.Items)
	rr.SiteErrors = sr.SiteErrors
	for _, it := range sr.Items {
		rr.PerSite[it.Site]++
		if it.Image != "" {
			rr.WithImage++
		}
		if it.DiscountPercent != nil {
			rr.WithPct++
		}
	}
	return rr
}

func siteSummary(rr runResult) string {
	names := make([]string, 0, len(rr.PerSite)+len(rr.SiteErrors))
	for site := range rr.PerSite {
		names = append(names, site)
	}
	for site := range rr.SiteErrors {
		names = append(names, site)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, site := range names {
		if _, failed := rr.SiteErrors[site]; failed {
			parts = append(parts, site+"=ERR")
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%d", site, rr.PerSite[site]))
	}
	return strings.Join(parts, " ")
}

func computeAverages(runs []runResult) *keywordAverages {
	var successCount int
	var avg keywordAverages

	for _, r := range runs {
		if !r.Success {
			continue
		}
		successCount++
		avg.TotalMs += float64(r.TotalMs)
		avg.Items += float64(r.Items)
		if r.Items > 0 {
			avg.ImagePercent += 100 * float64(r.WithImage) / float64(r.Items)
			avg.PctPercent += 100 * float64(r.WithPct) / float64(r.Items)
		}
	}

	if successCount == 0 {
		return nil
	}

	n := float64(successCount)
	avg.TotalMs /= n
	avg.Items /= n
	avg.ImagePercent /= n
	avg.PctPercent /= n
	return &avg
}

func printTable(results []keywordResult) {
	fmt.Println(strings.Repeat("─", 75))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Keyword\tAvg Latency\tAvg Items\tImages\tDiscounts\n")
	fmt.Fprintf(w, "───────\t───────────\t─────────\t──────\t─────────\n")

	for _, r := range results {
		if r.Averages == nil {
			fmt.Fprintf(w, "%s\tFAILED\t-\t-\t-\n", r.Keyword)
			continue
		}
		fmt.Fprintf(w, "%s\t%dms\t%.1f\t%.0f%%\t%.0f%%\n",
			r.Keyword,
			int64(r.Averages.TotalMs),
			r.Averages.Items,
			r.Averages.ImagePercent,
			r.Averages.PctPercent,
		)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 75))
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
