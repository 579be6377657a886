package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/alteredgenome/kumareport/internal/config"
	"github.com/alteredgenome/kumareport/internal/jobs"
	"github.com/alteredgenome/kumareport/internal/kuma"
	"github.com/alteredgenome/kumareport/internal/models"
	"github.com/alteredgenome/kumareport/internal/render"
	"github.com/alteredgenome/kumareport/internal/report"
)

const version = "1.7.0"

// beatHistoryHours is how much heartbeat history is requested per
// monitor, enough to cover the monthly window with room to spare.
const beatHistoryHours = 10000

// fetchWorkers bounds how many monitors are fetched and analyzed at
// the same time.
const fetchWorkers = 4

func printBanner() {
	fmt.Printf("kumareport %s\n", version)
	fmt.Println("(c) 2025 alteredgenome")
	fmt.Println("====================================================")
}

func main() {
	log.SetFlags(0)

	configPath := flag.String("config", config.DefaultPath, "path to the configuration file")
	monitorSel := flag.String("monitors", "", "comma-separated monitor numbers to include, or \"all\" (prompts when empty)")
	schedule := flag.String("schedule", "", "cron expression to generate reports on a schedule instead of once")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}
	printBanner()

	// A .env file is optional
	_ = godotenv.Load()

	cfg := config.Load(*configPath)
	saveNeeded := !cfg.Complete()
	cfg.ApplyEnv()

	stdin := bufio.NewReader(os.Stdin)
	if err := cfg.PromptMissing(stdin, os.Stdout); err != nil {
		log.Fatalf("Failed to read configuration: %v", err)
	}

	password := os.Getenv("KUMA_PASSWORD")
	if password == "" {
		pw, err := config.PromptPassword(cfg.Username)
		if err != nil {
			log.Fatalf("Failed to read password: %v", err)
		}
		password = pw
	}

	savePath := ""
	if saveNeeded {
		savePath = *configPath
	}

	if *schedule != "" {
		runScheduled(*schedule, cfg, password, *monitorSel, savePath, stdin)
		return
	}

	if err := runReport(cfg, password, *monitorSel, savePath, stdin); err != nil {
		log.Fatalf("Report generation failed: %v", err)
	}
}

// runScheduled generates reports on a cron schedule until interrupted.
func runScheduled(spec string, cfg *config.Config, password, monitorSel, savePath string, stdin *bufio.Reader) {
	scheduler := jobs.NewScheduler()
	err := scheduler.Add(spec, func() {
		// Scheduled runs cannot prompt; they require --monitors
		sel := monitorSel
		if sel == "" {
			sel = "all"
		}
		if err := runReport(cfg, password, sel, "", stdin); err != nil {
			log.Printf("Report generation failed: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Invalid schedule %q: %v", spec, err)
	}

	scheduler.Start()
	defer scheduler.Stop()
	log.Printf("Generating reports on schedule %q. Press Ctrl+C to stop.", spec)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")
}

// runReport connects to the server, analyzes the selected monitors and
// writes one report document.
func runReport(cfg *config.Config, password, monitorSel, savePath string, stdin *bufio.Reader) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	client, err := kuma.Dial(ctx, cfg.URL)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Login(ctx, cfg.Username, password); err != nil {
		return err
	}
	log.Println("\nSuccessfully connected to Uptime Kuma!")
	if exp, ok := client.TokenExpiry(); ok {
		log.Printf("Session token valid until %s", exp.Format(time.RFC1123))
	}

	if savePath != "" {
		if err := cfg.Save(savePath); err != nil {
			log.Printf("Warning: %v", err)
		} else {
			log.Printf("Configuration saved to %s for future use.", savePath)
		}
	}

	monitors, err := client.Monitors(ctx)
	if err != nil {
		return err
	}
	if len(monitors) == 0 {
		log.Println("No monitors found.")
		return nil
	}

	selected, err := selectMonitors(monitors, monitorSel, stdin)
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		log.Println("No monitors selected. Exiting.")
		return nil
	}

	log.Println("\nAnalyzing data and generating report...")
	now := time.Now()
	reports := analyzeMonitors(ctx, client, selected, cfg.Timezone, now)
	if len(reports) == 0 {
		return errors.New("no monitor could be analyzed")
	}

	names := make([]string, len(selected))
	for i, m := range selected {
		names[i] = m.Name
	}
	meta := render.Meta{
		Username:    cfg.Username,
		Timezone:    cfg.Timezone,
		GeneratedAt: now.In(report.Location(cfg.Timezone)),
		Monitors:    names,
	}

	filename, err := render.Write(cfg.ExportFormat, meta, reports)
	if err != nil {
		return err
	}
	log.Printf("\nReport successfully generated: %s", filename)
	return nil
}

// analyzeMonitors fetches and analyzes the selected monitors with a
// bounded worker pool. Each monitor is independent, so a failure skips
// that monitor without aborting the others. All monitors share the
// same now so the report is internally consistent.
func analyzeMonitors(ctx context.Context, client *kuma.Client, monitors []models.Monitor, timezone string, now time.Time) []render.MonitorReport {
	results := make([]*render.MonitorReport, len(monitors))
	sem := make(chan struct{}, fetchWorkers)
	var wg sync.WaitGroup

	for i, mon := range monitors {
		wg.Add(1)
		go func(i int, mon models.Monitor) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			log.Printf("  - Processing: %s", mon.Name)
			beats, err := client.GetMonitorBeats(ctx, mon.ID, beatHistoryHours)
			if err != nil {
				log.Printf("Skipping monitor %s: %v", mon.Name, err)
				return
			}

			analysis := report.Detect(beats, timezone, now)
			results[i] = &render.MonitorReport{
				MonitorName: mon.Name,
				Summary:     report.Summarize(analysis, now),
				Incidents:   analysis.Incidents,
			}
		}(i, mon)
	}
	wg.Wait()

	reports := make([]render.MonitorReport, 0, len(monitors))
	for _, r := range results {
		if r != nil {
			reports = append(reports, *r)
		}
	}
	return reports
}

// selectMonitors resolves the --monitors flag, or prompts when it is
// empty. Selections are 1-based positions in the listing.
func selectMonitors(monitors []models.Monitor, sel string, stdin *bufio.Reader) ([]models.Monitor, error) {
	if sel != "" {
		return parseSelection(monitors, sel)
	}

	fmt.Println("\nAvailable Monitors:")
	for i, m := range monitors {
		fmt.Printf("  [%d] %s\n", i+1, m.Name)
	}

	for {
		fmt.Print("\nEnter the numbers of the monitors for the report (e.g., 1, 3, 4), or 'all': ")
		line, err := stdin.ReadString('\n')
		if err != nil {
			return nil, err
		}

		selected, err := parseSelection(monitors, strings.TrimSpace(line))
		if err != nil {
			fmt.Println("Error: Invalid selection. Please try again.")
			continue
		}
		return selected, nil
	}
}

// parseSelection parses "all" or a comma-separated list of 1-based
// monitor numbers.
func parseSelection(monitors []models.Monitor, sel string) ([]models.Monitor, error) {
	if strings.EqualFold(sel, "all") {
		return monitors, nil
	}

	var selected []models.Monitor
	for _, part := range strings.Split(sel, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid monitor number %q", part)
		}
		if n < 1 || n > len(monitors) {
			return nil, fmt.Errorf("monitor number %d out of range", n)
		}
		selected = append(selected, monitors[n-1])
	}
	return selected, nil
}
