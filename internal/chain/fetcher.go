package chain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/defiprog/lenderstat/internal/domain"
	"github.com/defiprog/lenderstat/internal/source"
)

// QuoteService resolves an external USD quote for the reference asset.
type QuoteService interface {
	USDQuote(ctx context.Context, symbol string) (string, error)
}

// Fetcher pulls the vault snapshot and the three depositor datasets from
// chain and shapes them into the fixed data-directory layout.
type Fetcher struct {
	client    *Client
	vault     common.Address
	gauge     common.Address
	pool      common.Address
	fromBlock uint64
	quotes    QuoteService // optional
}

// NewFetcher creates a Fetcher. quotes may be nil; USD annotation is skipped then.
func NewFetcher(client *Client, vault, gauge, pool common.Address, fromBlock uint64, quotes QuoteService) *Fetcher {
	return &Fetcher{
		client:    client,
		vault:     vault,
		gauge:     gauge,
		pool:      pool,
		fromBlock: fromBlock,
		quotes:    quotes,
	}
}

// FetchAll reads everything one report run needs. The gauge and pool
// addresses are recorded as excluded from the direct-holding source: their
// share balances are re-attributed per user by the stake datasets.
func (f *Fetcher) FetchAll(ctx context.Context) (source.Datasets, error) {
	vaultDoc, err := f.fetchVault(ctx)
	if err != nil {
		return source.Datasets{}, err
	}

	holders, err := f.fetchBalances(ctx, f.vault, "vault holders")
	if err != nil {
		return source.Datasets{}, err
	}
	gaugeDepositors, err := f.fetchBalances(ctx, f.gauge, "gauge depositors")
	if err != nil {
		return source.Datasets{}, err
	}
	poolDepositors, err := f.fetchBalances(ctx, f.pool, "pool depositors")
	if err != nil {
		return source.Datasets{}, err
	}

	return source.Datasets{
		Holders:         holders,
		GaugeDepositors: gaugeDepositors,
		PoolDepositors:  poolDepositors,
		Vault:           vaultDoc,
	}, nil
}

func (f *Fetcher) fetchVault(ctx context.Context) (source.VaultDocument, error) {
	block, err := f.client.blockNumber(ctx)
	if err != nil {
		return source.VaultDocument{}, err
	}

	totalSupply, err := f.client.callUint256(ctx, f.vault, "totalSupply")
	if err != nil {
		return source.VaultDocument{}, fmt.Errorf("reading totalSupply: %w", err)
	}
	totalAssets, err := f.client.callUint256(ctx, f.vault, "totalAssets")
	if err != nil {
		return source.VaultDocument{}, fmt.Errorf("reading totalAssets: %w", err)
	}
	pricePerShare, err := f.client.callUint256(ctx, f.vault, "pricePerShare")
	if err != nil {
		return source.VaultDocument{}, fmt.Errorf("reading pricePerShare: %w", err)
	}
	symbol, err := f.client.callString(ctx, f.vault, "symbol")
	if err != nil {
		return source.VaultDocument{}, fmt.Errorf("reading symbol: %w", err)
	}

	doc := source.VaultDocument{
		Address:           f.vault.Hex(),
		Symbol:            symbol,
		Chain:             "ethereum",
		Block:             block,
		PricePerShare:     FromWei(pricePerShare).String(),
		TotalSupplyShares: FromWei(totalSupply).String(),
		TotalAssetsValue:  FromWei(totalAssets).String(),
		ExcludedAddresses: []string{f.gauge.Hex(), f.pool.Hex()},
	}

	if f.quotes != nil {
		quote, err := f.quotes.USDQuote(ctx, symbol)
		if err != nil {
			// Annotation only; the report proceeds without it.
			slog.Warn("USD quote unavailable", "symbol", symbol, "error", err)
		} else {
			doc.USDQuote = quote
		}
	}

	return doc, nil
}

// fetchBalances discovers addresses that ever received the contract's token
// via Transfer logs, then reads each current balance. Zero balances are
// dropped here so closed positions never reach the datasets.
func (f *Fetcher) fetchBalances(ctx context.Context, token common.Address, what string) ([]domain.SourceRecord, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(f.fromBlock),
		Addresses: []common.Address{token},
		Topics:    [][]common.Hash{{TransferTopic}},
	}
	logs, err := f.client.filterLogs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("scanning %s transfers: %w", what, err)
	}

	seen := make(map[common.Address]bool)
	var addresses []common.Address
	for _, entry := range logs {
		if len(entry.Topics) < 3 {
			continue
		}
		to := common.BytesToAddress(entry.Topics[2].Bytes())
		if to == (common.Address{}) || seen[to] {
			continue
		}
		seen[to] = true
		addresses = append(addresses, to)
	}

	records := make([]domain.SourceRecord, 0, len(addresses))
	for _, addr := range addresses {
		balance, err := f.client.callUint256(ctx, token, "balanceOf", addr)
		if err != nil {
			return nil, fmt.Errorf("reading %s balance of %s: %w", what, addr.Hex(), err)
		}
		if balance.Sign() <= 0 {
			continue
		}
		records = append(records, domain.SourceRecord{
			Address: addr.Hex(),
			Shares:  FromWei(balance).String(),
		})
	}

	slog.Info("fetched balances", "dataset", what, "transfers", len(logs), "holders", len(records))
	return records, nil
}
