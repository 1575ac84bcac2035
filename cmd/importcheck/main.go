// Command importcheck runs the statement importer over a CSV or OFX file
// and prints what would be detected, the recurring payments in it and a
// balance forecast built from those rows alone.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"expensetracker/internal/detect"
	"expensetracker/internal/forecast"
	"expensetracker/internal/logger"
	"expensetracker/internal/models"
)

func main() {
	days := flag.Int("days", 30, "forecast window in days")
	verbose := flag.Bool("v", false, "log importer events to stderr")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("Usage: importcheck [-days N] [-v] <statement.csv|statement.ofx>")
		os.Exit(1)
	}
	path := flag.Arg(0)

	level := "error"
	if *verbose {
		level = "debug"
	}
	logger.Init(logger.Options{Level: level, Format: "text", Output: os.Stderr})

	f, err := os.Open(path)
	if err != nil {
		fmt.Printf("Error opening statement: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	detected, err := detect.NewImporter().Import(context.Background(), path, f)
	if err != nil {
		fmt.Printf("Error reading statement: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Detected: %d transactions\n\n", len(detected))

	// Summary by category
	counts := make(map[string]int)
	totals := make(map[string]float64)
	for _, d := range detected {
		counts[d.Category]++
		totals[d.Category] += d.Amount
	}
	fmt.Println("Summary by Category:")
	fmt.Println("--------------------")
	for _, c := range models.Categories {
		if counts[c] > 0 {
			fmt.Printf("  %-18s: %3d transactions, total: %10.2f\n", c, counts[c], totals[c])
		}
	}

	fmt.Println("\nAll Transactions:")
	fmt.Println("-----------------")
	txns := make([]models.Transaction, 0, len(detected))
	for i, d := range detected {
		online := ""
		if d.IsOnlineSale {
			online = " [online]"
		}
		fmt.Printf("  %s | %10.2f | %-24s | %-18s | %s%s\n",
			d.Date, d.Amount, d.Merchant, d.Category, d.Confidence, online)

		t := d.Staged(0).Promote()
		t.ID = int64(i + 1)
		txns = append(txns, t)
	}

	patterns := detect.DetectRecurring(txns)
	fmt.Printf("\nRecurring: %d\n", len(patterns))
	for _, p := range patterns {
		fmt.Printf("  %-24s %-8s avg %10.2f  next %s\n", p.Merchant, p.Pattern, p.AvgAmount, p.NextExpected)
	}

	fc := forecast.Balance(txns, patterns, *days, time.Now())
	fmt.Printf("\nForecast (%d days):\n", fc.Days)
	fmt.Printf("  Current balance:   %10.2f\n", fc.CurrentBalance)
	fmt.Printf("  Daily average:     %10.2f\n", fc.DailyAverage)
	fmt.Printf("  Projected balance: %10.2f\n", fc.ProjectedBalance)
	fmt.Printf("  Confidence:        %s\n", fc.Confidence)
}
