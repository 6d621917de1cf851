// Command balancea runs one-shot maintenance and reporting tasks against the
// configured data store.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/balancea/internal/app"
	"github.com/MrJamesThe3rd/balancea/internal/config"
	"github.com/MrJamesThe3rd/balancea/internal/importer"
	"github.com/MrJamesThe3rd/balancea/internal/logger"
	"github.com/MrJamesThe3rd/balancea/internal/money"
	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

const usage = `usage: balancea <command> [flags]

commands:
  analyze              print every alert raised by the analyzer
  health               print the financial health score
  import -format F F   import a CSV file (formats: ledger, cgd)
  export [-o FILE]     write the ledger as CSV (stdout by default)
  report               print the text report
  dedupe               remove duplicate transactions
  backup <create|list|prune|restore NAME>
  ask MESSAGE          send one message to the assistant
`

var errUsage = errors.New("invalid usage")

type command func(ctx context.Context, a *app.App, args []string, out io.Writer) error

var commands = map[string]command{
	"analyze": runAnalyze,
	"health":  runHealth,
	"import":  runImport,
	"export":  runExport,
	"report":  runReport,
	"dedupe":  runDedupe,
	"backup":  runBackup,
	"ask":     runAsk,
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}

		fmt.Fprintln(os.Stderr, "balancea:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	cmd, ok := commands[args[0]]
	if !ok {
		return errUsage
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// stdout carries command output, so logs go to stderr.
	log := logger.New(logger.Options{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty, Out: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	return cmd(ctx, a, args[1:], out)
}

func runAnalyze(ctx context.Context, a *app.App, _ []string, out io.Writer) error {
	l, err := a.Transactions.Snapshot(ctx)
	if err != nil {
		return err
	}

	alerts := a.Analyzer.AnalyzeAll(l)

	budgets, err := a.Budgets.Alerts(ctx)
	if err != nil {
		return err
	}

	goals, err := a.Goals.AllAlerts(ctx)
	if err != nil {
		return err
	}

	alerts = append(append(alerts, budgets...), goals...)
	if len(alerts) == 0 {
		fmt.Fprintln(out, "No alerts.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, al := range alerts {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", al.Kind, al.Title, al.Message)
	}

	return tw.Flush()
}

func runHealth(ctx context.Context, a *app.App, _ []string, out io.Writer) error {
	l, err := a.Transactions.Snapshot(ctx)
	if err != nil {
		return err
	}

	h := a.Analyzer.HealthSummary(l)

	fmt.Fprintf(out, "Score:        %d/100 (%s)\n", h.Score, h.Level)
	fmt.Fprintf(out, "Savings rate: %s\n", money.FormatPercent(h.SavingsRate))
	fmt.Fprintf(out, "Income:       %s\n", money.Format(l.TotalIncome()))
	fmt.Fprintf(out, "Expenses:     %s\n", money.Format(l.TotalExpense()))
	fmt.Fprintf(out, "Balance:      %s\n", money.Format(l.Balance()))

	return nil
}

func runImport(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	format := fs.String("format", string(importer.FormatLedger), "input format")

	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return errUsage
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := a.Importer.Import(ctx, importer.Format(*format), f)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "imported %d, skipped %d duplicates, rejected %d\n",
		len(res.Imported), len(res.Skipped), len(res.Invalid))

	for _, row := range res.Invalid {
		fmt.Fprintf(out, "  rejected %s %q: %v\n", row.Params.Date.Format(time.DateOnly), row.Params.Description, row.Err)
	}

	return nil
}

func runExport(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	path := fs.String("o", "", "output file")

	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	w := out

	if *path != "" {
		f, err := os.Create(*path)
		if err != nil {
			return err
		}
		defer f.Close()

		w = f
	}

	n, err := a.Export.WriteCSV(ctx, w, transaction.ListFilter{})
	if err != nil {
		return err
	}

	if *path != "" {
		fmt.Fprintf(out, "exported %d transactions to %s\n", n, *path)
	}

	return nil
}

func runReport(ctx context.Context, a *app.App, _ []string, out io.Writer) error {
	r, err := a.Export.Report(ctx, transaction.ListFilter{})
	if err != nil {
		return err
	}

	return r.WriteTo(out)
}

func runDedupe(ctx context.Context, a *app.App, _ []string, out io.Writer) error {
	n, err := a.Transactions.RemoveDuplicates(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "removed %d duplicates\n", n)

	return nil
}

func runBackup(_ context.Context, a *app.App, args []string, out io.Writer) error {
	if a.Config.Storage.Backend != config.BackendFile {
		return fmt.Errorf("backups cover the file backend only, current backend is %s", a.Config.Storage.Backend)
	}

	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "create":
		snap, err := a.Backup.Create()
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "created %s (%d files)\n", snap.Name, len(snap.Files))
	case "list":
		snaps, err := a.Backup.List()
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, s := range snaps {
			fmt.Fprintf(tw, "%s\t%s\t%d files\n", s.Name, s.Created.Format("2006-01-02 15:04:05"), len(s.Files))
		}

		return tw.Flush()
	case "prune":
		n, err := a.Backup.Prune(a.Config.Backup.MaxFiles)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "removed %d snapshots\n", n)
	case "restore":
		if len(args) != 2 {
			return errUsage
		}

		if err := a.Backup.Restore(args[1]); err != nil {
			return err
		}

		fmt.Fprintf(out, "restored %s\n", args[1])
	default:
		return errUsage
	}

	return nil
}

func runAsk(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	reply := a.Chat.Reply(ctx, strings.Join(args, " "))
	if !reply.OK {
		if reply.Hint != "" {
			return fmt.Errorf("%s (%s)", reply.Err, reply.Hint)
		}

		return errors.New(reply.Err)
	}

	fmt.Fprintln(out, reply.Text)

	return nil
}
