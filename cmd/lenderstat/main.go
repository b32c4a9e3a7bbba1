package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"

	"github.com/defiprog/lenderstat/internal/chain"
	"github.com/defiprog/lenderstat/internal/classify"
	"github.com/defiprog/lenderstat/internal/config"
	"github.com/defiprog/lenderstat/internal/export"
	"github.com/defiprog/lenderstat/internal/external"
	"github.com/defiprog/lenderstat/internal/merge"
	"github.com/defiprog/lenderstat/internal/report"
	"github.com/defiprog/lenderstat/internal/snapshot"
	"github.com/defiprog/lenderstat/internal/source"
)

const (
	entitySlug = "vault-baddebt"
	entityName = "Vault bad debt investigation"

	reportJSONFile = "lender_report.json"
	reportMDFile   = "lender_report.md"
	ledgerXLSXFile = "lender_ledger.xlsx"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:           "lenderstat",
		Usage:          "aggregate lender exposure of a lending vault across its deposit sources",
		DefaultCommand: "report",
		Commands: []*cli.Command{
			{
				Name:   "report",
				Usage:  "merge the fetched datasets and write the report outputs",
				Action: runReport,
			},
			{
				Name:   "fetch",
				Usage:  "populate the data directory from a JSON-RPC endpoint",
				Action: runFetch,
			},
			{
				Name:   "classify",
				Usage:  "classify the observed vault calls and print the breakdown",
				Action: runClassify,
			},
			{
				Name:   "history",
				Usage:  "list stored report snapshots",
				Action: runHistory,
			},
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func runReport(c *cli.Context) error {
	cfg := config.Load()

	ds, err := source.NewLoader(cfg.DataDir).Load()
	if err != nil {
		return err
	}

	vault, err := ds.Vault.State()
	if err != nil {
		return err
	}

	ledger, err := merge.Merge(
		merge.DefaultInputs(ds.Holders, ds.GaugeDepositors, ds.PoolDepositors),
		vault,
		merge.NewExclusionSet(ds.Vault.ExcludedAddresses),
	)
	if err != nil {
		return err
	}

	summary := merge.Summarize(ledger, vault)
	if summary.CoverageFlagged {
		slog.Warn("tracked shares exceed the reference total supply",
			"coverage_pct", summary.CoveragePct.StringFixed(2), "block", ds.Vault.Block)
	}

	var classified []classify.Classification
	if ds.Calls != nil {
		classified = classify.ClassifyAll(ds.Calls)
	}

	doc := report.Build(ledger, summary, ds.Vault, vault, classified, time.Now())

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", cfg.OutDir, err)
	}
	jsonPath := filepath.Join(cfg.OutDir, reportJSONFile)
	if err := report.WriteJSON(doc, jsonPath); err != nil {
		return err
	}
	if err := report.WriteMarkdown(doc, cfg.TopN, filepath.Join(cfg.OutDir, reportMDFile)); err != nil {
		return err
	}
	if err := export.NewXLSXWriter(filepath.Join(cfg.OutDir, ledgerXLSXFile)).Write(doc); err != nil {
		return err
	}
	slog.Info("report written", "dir", cfg.OutDir, "lenders", summary.UniqueLenders)

	if cfg.DatabaseURL != "" {
		if err := storeSnapshot(c.Context, cfg.DatabaseURL, doc); err != nil {
			return err
		}
	}

	report.PrintSummary(os.Stdout, doc, cfg.TopN)
	return nil
}

func storeSnapshot(ctx context.Context, databaseURL string, doc report.Document) error {
	pool, err := snapshot.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	svc := snapshot.NewService(snapshot.NewPgRepository(pool))
	if err := svc.Store(ctx, entitySlug, entityName, utcDate(doc.GeneratedAt), doc); err != nil {
		return err
	}
	slog.Info("snapshot stored", "entity", entitySlug)
	return nil
}

func runFetch(c *cli.Context) error {
	cfg := config.Load()
	if cfg.RPCURL == "" {
		return cli.Exit("RPC_URL is required for fetch", 1)
	}

	addresses := map[string]string{
		"VAULT_ADDRESS": cfg.VaultAddress,
		"GAUGE_ADDRESS": cfg.GaugeAddress,
		"POOL_ADDRESS":  cfg.PoolAddress,
	}
	for key, addr := range addresses {
		if !common.IsHexAddress(addr) {
			return cli.Exit(fmt.Sprintf("%s is not a valid address: %s", key, addr), 1)
		}
	}

	client, err := chain.Dial(c.Context, cfg.RPCURL, cfg.RPCRetryMax, cfg.RPCRetryBaseDelay)
	if err != nil {
		return err
	}
	defer client.Close()

	quotes := external.NewCoinGeckoClient(cfg.CoinGeckoURL, cfg.CoinGeckoRetryMax, cfg.CoinGeckoDelay)
	fetcher := chain.NewFetcher(
		client,
		common.HexToAddress(cfg.VaultAddress),
		common.HexToAddress(cfg.GaugeAddress),
		common.HexToAddress(cfg.PoolAddress),
		cfg.FromBlock,
		quotes,
	)

	ds, err := fetcher.FetchAll(c.Context)
	if err != nil {
		return err
	}

	writer, err := source.NewWriter(cfg.DataDir)
	if err != nil {
		return err
	}
	if err := writer.WriteAll(ds); err != nil {
		return err
	}

	slog.Info("datasets written", "dir", cfg.DataDir,
		"holders", len(ds.Holders), "gauge", len(ds.GaugeDepositors), "pool", len(ds.PoolDepositors))
	return nil
}

func runClassify(c *cli.Context) error {
	cfg := config.Load()

	calls, err := source.NewLoader(cfg.DataDir).LoadCalls()
	if err != nil {
		return err
	}
	if calls == nil {
		return cli.Exit(fmt.Sprintf("no %s in %s", source.CallsFile, cfg.DataDir), 1)
	}

	classified := classify.ClassifyAll(calls)
	for _, cl := range classified {
		marker := " "
		if cl.Mismatch {
			marker = "!"
		}
		fmt.Printf("%s %-10s %-24s %s (%d logs, %d transfers)\n",
			marker, cl.Category, cl.Label, cl.TxHash, cl.LogCount, cl.TransferCount)
	}

	b := classify.Summarize(classified)
	fmt.Printf("\n%d standard, %d leverage, %d unknown", b.Standard, b.Leverage, b.Unknown)
	if b.Mismatches > 0 {
		fmt.Printf(" (%d heuristic mismatches)", b.Mismatches)
	}
	fmt.Println()
	return nil
}

func runHistory(c *cli.Context) error {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		return cli.Exit("DATABASE_URL is required for history", 1)
	}

	pool, err := snapshot.Connect(c.Context, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	svc := snapshot.NewService(snapshot.NewPgRepository(pool))
	snapshots, err := svc.History(c.Context, entitySlug, 30)
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		fmt.Println("no stored snapshots")
		return nil
	}

	for _, s := range snapshots {
		fmt.Printf("%s  created %s  (%d bytes)\n",
			s.SnapshotDate.Format("2006-01-02"),
			s.CreatedAt.Format(time.RFC3339),
			len(s.Data))
	}
	return nil
}

// utcDate normalizes a timestamp to midnight UTC for the snapshot key.
func utcDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
