// Command closeweek pays every unpaid record of a week at one workplace
// through the payroll API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"workshop-payroll-bot/internal/client"
	"workshop-payroll-bot/internal/config"
	"workshop-payroll-bot/internal/logging"
	"workshop-payroll-bot/internal/payroll"
	"workshop-payroll-bot/internal/service"
	"workshop-payroll-bot/internal/session"
)

// The payment controller keys submissions by chat; the command has one.
const sessionKey int64 = 0

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	logging.SetLevel(cfg.LogLevel)

	defaultURL := cfg.BackendURL
	if defaultURL == "" {
		defaultURL = "http://localhost" + cfg.HTTPAddr
	}

	backendURL := flag.String("backend", defaultURL, "payroll API base URL")
	workplaceID := flag.Uint("workplace", 0, "workplace ID (required)")
	weekID := flag.Uint("week", 0, "week ID, current week when 0")
	dryRun := flag.Bool("dry-run", false, "list what would be paid without paying")
	timeout := flag.Duration("timeout", time.Minute, "overall timeout")
	flag.Parse()

	if *workplaceID == 0 {
		fmt.Fprintln(os.Stderr, "closeweek: -workplace is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	backend := client.NewHTTPBackend(*backendURL, nil)
	paid, total, err := closeWeek(ctx, backend, uint(*workplaceID), uint(*weekID), *dryRun)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to close week")
	}

	logrus.WithFields(logrus.Fields{
		"paid":    paid,
		"total":   service.FormatAmount(total),
		"dry_run": *dryRun,
	}).Info("Week closed")
}

// closeWeek pays every record that offers the pay action and returns how
// many were paid and the amount handed out. Records refused by the guard on
// the server are skipped; other errors stop the run.
func closeWeek(ctx context.Context, backend client.Backend, workplaceID, weekID uint, dryRun bool) (int, decimal.Decimal, error) {
	logger := logging.New()

	if weekID == 0 {
		week, err := backend.CurrentWeek(ctx, time.Now())
		if err != nil {
			return 0, decimal.Zero, fmt.Errorf("current week: %w", err)
		}
		weekID = week.ID
	}

	page, err := backend.GetWeekRecords(ctx, weekID, workplaceID)
	if err != nil {
		return 0, decimal.Zero, fmt.Errorf("week records: %w", err)
	}

	payments := session.NewPaymentController(backend, session.NewStore())
	sum := decimal.Zero
	paid := 0
	for _, view := range page.Records {
		if view.Action != payroll.ActionPay {
			continue
		}

		fields := logrus.Fields{
			"record_id": view.Record.ID,
			"worker":    view.WorkerName,
			"reste":     service.FormatAmount(view.Due),
		}
		if dryRun {
			logger.WithFields(fields).Info("Would pay")
			continue
		}

		_, err := payments.Submit(ctx, sessionKey, view, payroll.ActionPay)
		var guard *payroll.GuardViolation
		switch {
		case errors.As(err, &guard):
			logger.WithFields(fields).WithError(err).Warn("Skipped")
			continue
		case err != nil:
			return paid, sum, fmt.Errorf("pay record %s: %w", view.Record.ID, err)
		}

		logger.WithFields(fields).Info("Paid")
		sum = sum.Add(view.Due)
		paid++
	}
	return paid, sum, nil
}
