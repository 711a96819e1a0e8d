// Command tranxledger records and inspects the local transaction history.
//
// Commands:
//
//	record     Append one transaction
//	history    List transactions matching a filter
//	extrema    Print the first/last moments and smallest/largest amounts
//	count      Print the number of stored transactions
//	watch      Print recorded-transaction notifications from the broker
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"tranxledger/internal/amqp"
	"tranxledger/internal/backend"
	"tranxledger/internal/cli"
	"tranxledger/internal/config"
	"tranxledger/internal/core"
	"tranxledger/internal/log"
	"tranxledger/internal/services"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	cmd, args := os.Args[1], os.Args[2:]

	var err error
	switch cmd {
	case "record":
		err = runRecord(logger, cfg, args)
	case "history":
		err = runHistory(logger, cfg, args)
	case "extrema":
		err = runExtrema(logger, cfg, args)
	case "count":
		err = runCount(logger, cfg, args)
	case "watch":
		err = runWatch(logger, cfg, args)
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  tranxledger <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  record    -direction <in|out> -amount CUR:value [-purpose p] [-tid id] [-at moment]")
	fmt.Println("  history   [-direction d] [-purpose p|none] [-from t] [-to t] [-min a] [-max a] [-desc] [-json]")
	fmt.Println("  extrema")
	fmt.Println("  count")
	fmt.Println("  watch     requires AMQP_URL")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Printf("  LEDGER_BACKEND          one of %v, default sqlite\n", backend.GetBackendTypeStrings())
	fmt.Println("  LEDGER_DB_PATH          SQLite file, default ./data/tranx_history.db")
	fmt.Println("  LEDGER_FIXTURE_IMAGE    pre-built database copied in when the ledger file is missing")
	fmt.Println("  HISTORY_CACHE_SIZE, HISTORY_CACHE_TTL")
	fmt.Println("  AMQP_URL, AMQP_EXCHANGE, AMQP_QUEUE")
	fmt.Println("  LOG_LEVEL               debug|info|warn|error")
}

// withLedger opens the ledger, runs fn and closes it, logging the outcome.
func withLedger(logger *slog.Logger, cfg *config.Config, op string, fn func(context.Context, *services.LedgerService) error) error {
	l := log.New(log.Config{Handler: logger.Handler(), Component: log.ComponentCLI})
	ctx := log.WithContext(context.Background(), l)
	res := cli.OpenLedger(ctx, logger, cfg)
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Warn("Failed to close ledger", "error", err)
		}
	}()

	sl := log.NewStructuredLogger(l)
	start := time.Now()
	err := fn(ctx, res.Service)
	sl.LogOperation(ctx, op, time.Since(start).Milliseconds(), err)
	return err
}

func runRecord(logger *slog.Logger, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("record", flag.ExitOnError)
	tid := fs.String("tid", "", "external transaction identity (default: random UUID)")
	direction := fs.String("direction", "", "incoming|outgoing")
	purpose := fs.String("purpose", "", "purpose tag")
	amountText := fs.String("amount", "", "amount as CUR:value, e.g. EUR:12.50")
	at := fs.String("at", "", "moment, e.g. 2024-05-01T12:00:00+02:00 (default: now)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *direction == "" || *amountText == "" {
		fs.Usage()
		return fmt.Errorf("-direction and -amount are required")
	}
	d, err := core.ParseDirection(*direction)
	if err != nil {
		return err
	}
	amount, err := core.ParseAmount(*amountText)
	if err != nil {
		return err
	}
	moment := core.MomentOf(time.Now())
	if *at != "" {
		if moment, err = core.ParseMoment(*at); err != nil {
			return err
		}
	}
	if *tid == "" {
		*tid = uuid.NewString()
	}

	return withLedger(logger, cfg, log.OpRecord, func(ctx context.Context, svc *services.LedgerService) error {
		t, err := svc.Record(ctx, services.RecordRequest{
			TID:       *tid,
			Purpose:   core.Purpose(*purpose),
			Amount:    amount,
			Direction: d,
			Moment:    moment,
		})
		if err != nil {
			return err
		}
		fmt.Printf("recorded %d %s\n", t.ID, t.TID)
		return nil
	})
}

func runHistory(logger *slog.Logger, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	var ff cli.FilterFlags
	ff.Register(fs)
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filter, err := ff.Build()
	if err != nil {
		return err
	}

	return withLedger(logger, cfg, log.OpHistory, func(ctx context.Context, svc *services.LedgerService) error {
		h := svc.History()
		if err := h.SetFilter(filter); err != nil {
			return err
		}
		entries, err := h.GetHistory(ctx)
		if err != nil {
			return err
		}
		if *asJSON {
			return cli.WriteHistoryJSON(os.Stdout, entries)
		}
		return cli.PrintHistory(os.Stdout, entries)
	})
}

func runExtrema(logger *slog.Logger, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("extrema", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	return withLedger(logger, cfg, log.OpExtrema, func(_ context.Context, svc *services.LedgerService) error {
		e, ok, err := svc.History().Extrema()
		if err != nil {
			return err
		}
		return cli.PrintExtrema(os.Stdout, e, ok)
	})
}

func runCount(logger *slog.Logger, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("count", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	return withLedger(logger, cfg, log.OpCount, func(ctx context.Context, svc *services.LedgerService) error {
		n, err := svc.History().Count(ctx)
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	})
}

func runWatch(logger *slog.Logger, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cfg.AMQPURL == "" {
		return fmt.Errorf("watch requires AMQP_URL")
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return err
	}

	ctx, done := cli.GracefulShutdown(logger, 5*time.Second, func() {
		if err := client.Close(); err != nil {
			logger.Warn("Failed to close AMQP client", "error", err)
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeTranxRecorded(gctx, func(msg *amqp.TranxRecordedMessage) error {
			_, err := fmt.Printf("%d\t%s\t%s\t%s\t%s\n", msg.ID, msg.Moment, msg.Direction, msg.Amount, msg.TID)
			return err
		})
	})

	err = g.Wait()
	if ctx.Err() != nil {
		cli.WaitForShutdown(ctx, done)
		return nil
	}
	client.Close()
	return err
}
