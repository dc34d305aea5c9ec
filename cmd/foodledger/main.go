package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"

	"github.com/codedbydumi/Blockchain-Food-Supply/config"
	"github.com/codedbydumi/Blockchain-Food-Supply/custody"
	"github.com/codedbydumi/Blockchain-Food-Supply/ledger"
	"github.com/codedbydumi/Blockchain-Food-Supply/store"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	handler := pterm.NewSlogHandler(&pterm.DefaultLogger)
	logger := slog.New(handler)

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Error("invalid configuration", "error", err.Error())
		os.Exit(1)
	}

	if err := run(os.Args[1], os.Args[2:], cfg, logger); err != nil {
		logger.Error("command failed", "error", err.Error())
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: %s <command> [args]

commands:
  info               chain statistics
  validate           verify chain integrity
  mine               seal pending custody events into a new block
  submit             record a custody event interactively
  history <product>  full custody history of a product
  block <index>      show a block
  pending            custody events awaiting inclusion
`, os.Args[0])
}

func run(command string, args []string, cfg config.Config, logger *slog.Logger) error {
	pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("Food", pterm.FgGreen.ToStyle()),
		putils.LettersFromStringWithStyle("Ledger", pterm.FgDarkGray.ToStyle()),
	).Render()

	chain, err := ledger.Load(cfg.LedgerPath, cfg.Difficulty)
	if err != nil {
		if errors.Is(err, ledger.ErrCorruptLedger) {
			return fmt.Errorf("refusing to start over a damaged ledger file: %w", err)
		}
		return err
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()

	service := custody.NewService(st, chain, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch command {
	case "info":
		return runInfo(chain)
	case "validate":
		return runValidate(chain)
	case "mine":
		return runMine(ctx, service, chain, cfg)
	case "submit":
		return runSubmit(ctx, service, chain, cfg)
	case "history":
		if len(args) != 1 {
			return fmt.Errorf("history needs a product id")
		}
		return runHistory(chain, args[0])
	case "block":
		if len(args) != 1 {
			return fmt.Errorf("block needs an index")
		}
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid block index %q: %w", args[0], err)
		}
		return runBlock(chain, index)
	case "pending":
		return runPending(ctx, service)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func runInfo(chain *ledger.Ledger) error {
	info := chain.Info()
	data := [][]string{
		{"Blocks", strconv.Itoa(info.BlockCount)},
		{"Sealed transactions", strconv.Itoa(info.TransactionCount)},
		{"Pending transactions", strconv.Itoa(info.PendingCount)},
		{"Difficulty", strconv.Itoa(info.Difficulty)},
		{"Latest hash", info.LatestHash},
		{"Valid", strconv.FormatBool(info.IsValid)},
	}
	return pterm.DefaultTable.WithData(data).Render()
}

func runValidate(chain *ledger.Ledger) error {
	if chain.ValidateChain() {
		pterm.Success.Println("chain is intact")
		return nil
	}
	index, _ := chain.FindFirstInvalidIndex()
	pterm.Error.Printfln("chain is broken, first invalid block: %d", index)
	return fmt.Errorf("ledger integrity check failed at block %d", index)
}

func runMine(ctx context.Context, service *custody.Service, chain *ledger.Ledger, cfg config.Config) error {
	spinner, _ := pterm.DefaultSpinner.Start("Mining pending custody events...")
	block, err := service.SealPending(ctx)
	if errors.Is(err, ledger.ErrNothingToMine) {
		spinner.Warning("nothing to mine")
		return nil
	}
	if err != nil {
		spinner.Fail()
		return err
	}
	spinner.Success()
	pterm.Success.Printfln("block %d sealed with %d transactions, hash %s",
		block.Index, len(block.Transactions), block.Hash)
	return chain.Save(cfg.LedgerPath)
}

func runSubmit(ctx context.Context, service *custody.Service, chain *ledger.Ledger, cfg config.Config) error {
	productID, _ := pterm.DefaultInteractiveTextInput.WithDefaultText("Product id").Show()
	fromID, _ := pterm.DefaultInteractiveTextInput.WithDefaultText("From party").Show()
	toID, _ := pterm.DefaultInteractiveTextInput.WithDefaultText("To party").Show()
	kind, _ := pterm.DefaultInteractiveSelect.
		WithOptions([]string{string(ledger.KindCreate), string(ledger.KindTransfer), string(ledger.KindReceive)}).
		Show("Event type")
	quantityText, _ := pterm.DefaultInteractiveTextInput.WithDefaultText("Quantity").WithDefaultValue("1").Show()
	quantity, err := strconv.ParseFloat(quantityText, 64)
	if err != nil {
		return fmt.Errorf("invalid quantity %q: %w", quantityText, err)
	}
	location, _ := pterm.DefaultInteractiveTextInput.WithDefaultText("Location (optional)").Show()

	record := ledger.NewTransactionRecord(productID, fromID, toID, ledger.TransactionKind(kind), quantity)
	if location != "" {
		record.Location = &location
	}

	if err := service.RecordEvent(ctx, record); err != nil {
		return err
	}
	pterm.Success.Printfln("recorded %s, awaiting inclusion in the next block", record.TransactionID)
	return chain.Save(cfg.LedgerPath)
}

func runHistory(chain *ledger.Ledger, productID string) error {
	history := chain.ProductHistory(productID)
	if len(history) == 0 {
		pterm.Warning.Printfln("no sealed custody events for product %s", productID)
		return nil
	}
	data := [][]string{{"Block", "Type", "From", "To", "Qty", "Transaction"}}
	for _, entry := range history {
		tx := entry.Transaction
		data = append(data, []string{
			strconv.Itoa(entry.BlockIndex),
			string(tx.TransactionType),
			tx.FromUserID,
			tx.ToUserID,
			strconv.FormatFloat(tx.Quantity, 'f', -1, 64),
			tx.TransactionID,
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func runBlock(chain *ledger.Ledger, index int) error {
	block, err := chain.BlockByIndex(index)
	if err != nil {
		return err
	}
	data := [][]string{
		{"Index", strconv.Itoa(block.Index)},
		{"Timestamp", block.Timestamp},
		{"Previous hash", block.PreviousHash},
		{"Nonce", strconv.FormatUint(block.Nonce, 10)},
		{"Hash", block.Hash},
		{"Transactions", strconv.Itoa(len(block.Transactions))},
	}
	if err := pterm.DefaultTable.WithData(data).Render(); err != nil {
		return err
	}
	for _, tx := range block.Transactions {
		pterm.Info.Printfln("%s  %s: %s -> %s (%v)",
			tx.TransactionID, tx.TransactionType, tx.FromUserID, tx.ToUserID, tx.Quantity)
	}
	return nil
}

func runPending(ctx context.Context, service *custody.Service) error {
	entries, err := service.Unconfirmed(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		pterm.Info.Println("no custody events awaiting inclusion")
		return nil
	}
	for _, entry := range entries {
		tx := entry.Record
		pterm.Info.Printfln("%s  %s: %s -> %s (%v)",
			tx.TransactionID, tx.TransactionType, tx.FromUserID, tx.ToUserID, tx.Quantity)
	}
	return nil
}
