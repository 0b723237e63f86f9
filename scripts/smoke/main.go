// Command smoke probes a running scheduler API and reports status and
// latency per endpoint. Critical endpoint failures exit non-zero so the
// check can gate a deploy.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type probe struct {
	Method    string `json:"method"`
	Path      string `json:"path"`
	WantState int    `json:"want_status"`
	Critical  bool   `json:"critical"`
}

type probeConfig struct {
	Probes []probe `json:"probes"`
}

type result struct {
	Probe    probe
	Status   int
	Duration time.Duration
	Err      error
}

func main() {
	var (
		baseURL    string
		probesPath string
		token      string
		timeout    time.Duration
	)

	flag.StringVar(&baseURL, "base", "http://localhost:8080", "Scheduler API base URL")
	flag.StringVar(&probesPath, "probes", filepath.Join("scripts", "smoke", "probes.json"), "Path to JSON probes file")
	flag.StringVar(&token, "token", "", "Bearer token for protected endpoints")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	probes, err := loadProbes(probesPath)
	if err != nil {
		log.Fatalf("failed to load probes: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	var failed int
	results := make([]result, 0, len(probes))
	for _, p := range probes {
		res := runProbe(client, baseURL, token, p)
		if !res.ok() && p.Critical {
			failed++
		}
		results = append(results, res)
	}

	printReport(results)
	fmt.Printf("Critical failures: %d\n", failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func loadProbes(path string) ([]probe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg probeConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Probes) == 0 {
		return nil, fmt.Errorf("no probes defined in %s", path)
	}
	return cfg.Probes, nil
}

func runProbe(client *http.Client, base, token string, p probe) result {
	res := result{Probe: p}

	method := strings.ToUpper(strings.TrimSpace(p.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := p.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequest(method, strings.TrimRight(base, "/")+path, nil)
	if err != nil {
		res.Err = err
		return res
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	res.Duration = time.Since(start)
	if err != nil {
		res.Err = err
		return res
	}
	defer resp.Body.Close() //nolint:errcheck
	res.Status = resp.StatusCode
	return res
}

func (r result) ok() bool {
	if r.Err != nil {
		return false
	}
	want := r.Probe.WantState
	if want == 0 {
		want = http.StatusOK
	}
	return r.Status == want
}

func printReport(results []result) {
	fmt.Println("Scheduler API Smoke Report")
	fmt.Println("==========================")
	for _, res := range results {
		status := "OK"
		if !res.ok() {
			status = "FAIL"
		}
		fmt.Printf("[%s] %s %s\n", status, res.Probe.Method, res.Probe.Path)
		if res.Err != nil {
			fmt.Printf("  Error: %v\n", res.Err)
			continue
		}
		fmt.Printf("  Status: %d (%s) | Critical: %t\n", res.Status, res.Duration, res.Probe.Critical)
	}
}
