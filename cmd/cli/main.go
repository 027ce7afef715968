package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/iho/vestflow/internal/adapter/csvio"
	filerepo "github.com/iho/vestflow/internal/adapter/repository/file"
	memoryrepo "github.com/iho/vestflow/internal/adapter/repository/memory"
	sqliterepo "github.com/iho/vestflow/internal/adapter/repository/sqlite"
	"github.com/iho/vestflow/internal/domain"
	"github.com/iho/vestflow/internal/infrastructure/logger"
	"github.com/iho/vestflow/internal/usecase"
)

// Output file names, one per pipeline stage.
const (
	fileOutflows      = "outflows.csv"
	fileTransfers     = "transfers.csv"
	fileRewards       = "rewards.csv"
	fileRewardDisplay = "rewards_display.csv"
	fileSuppressions  = "suppressions.csv"
)

type runOptions struct {
	anchoragePath  string
	walletsPath    string
	vestingPath    string
	bitwavePath    string
	outDir         string
	counterBackend string
	counterPath    string
	logLevel       string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vestflow",
		Short:         "Convert custodian vesting reports into accounting import files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd())

	return root
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full report pipeline against local CSV files",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runPipeline(cmd, opts); err != nil {
				pterm.Error.Printf("Pipeline failed: %v\n", err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.anchoragePath, "anchorage", "", "path to the Anchorage transaction report CSV (required)")
	cmd.Flags().StringVar(&opts.walletsPath, "wallets", "", "path to the wallets list CSV (required)")
	cmd.Flags().StringVar(&opts.vestingPath, "vesting-pairs", "", "path to the vesting wallet pairs CSV (required)")
	cmd.Flags().StringVar(&opts.bitwavePath, "bitwave", "", "path to the Bitwave export CSV (optional, enables stages 3 and 4)")
	cmd.Flags().StringVar(&opts.outDir, "out", "out", "directory for the generated CSV files")
	cmd.Flags().StringVar(&opts.counterBackend, "counter-backend", "sqlite", "id counter backend: sqlite, file or memory")
	cmd.Flags().StringVar(&opts.counterPath, "counter-path", "data/id_counter.db", "path of the sqlite or file counter store")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	cmd.MarkFlagRequired("anchorage")
	cmd.MarkFlagRequired("wallets")
	cmd.MarkFlagRequired("vesting-pairs")

	return cmd
}

func runPipeline(cmd *cobra.Command, opts *runOptions) error {
	log := logger.New(logger.Config{Level: opts.logLevel, Format: "console"})

	store, closeStore, err := newCounterStore(opts)
	if err != nil {
		return err
	}
	defer closeStore()

	in, err := loadInputs(opts)
	if err != nil {
		return err
	}

	idGen := usecase.NewVTGenerator(store, log, usecase.NopMetrics{})
	pipeline := usecase.NewPipelineUseCase(
		usecase.NewOutflowUseCase(log, usecase.NopMetrics{}),
		usecase.NewTransferUseCase(idGen, log, usecase.NopMetrics{}),
		usecase.NewRewardUseCase(idGen, log, usecase.NopMetrics{}),
		usecase.NewSuppressionUseCase(log, usecase.NopMetrics{}),
		log,
		usecase.NopMetrics{},
	)

	result := pipeline.Run(cmd.Context(), in)

	if err := writeOutputs(opts.outDir, result); err != nil {
		return err
	}

	printSummary(opts.outDir, result)
	return nil
}

func newCounterStore(opts *runOptions) (usecase.CounterStore, func(), error) {
	noop := func() {}

	switch opts.counterBackend {
	case "sqlite":
		store, err := sqliterepo.Open(opts.counterPath)
		if err != nil {
			return nil, noop, fmt.Errorf("open sqlite counter: %w", err)
		}
		return store, func() { store.Close() }, nil
	case "file":
		return filerepo.NewCounterStore(opts.counterPath), noop, nil
	case "memory":
		return memoryrepo.NewCounterStore(), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown counter backend %q", opts.counterBackend)
	}
}

func loadInputs(opts *runOptions) (usecase.PipelineInput, error) {
	var in usecase.PipelineInput

	custodian, err := readFile(opts.anchoragePath, csvio.ReadCustodianTransactions)
	if err != nil {
		return in, err
	}
	wallets, err := readFile(opts.walletsPath, csvio.ReadWallets)
	if err != nil {
		return in, err
	}
	pairRows, err := readFile(opts.vestingPath, csvio.ReadVestingPairs)
	if err != nil {
		return in, err
	}

	dir, err := domain.NewWalletDirectory(wallets)
	if err != nil {
		return in, err
	}
	pairs, err := domain.NewVestingPairTable(pairRows)
	if err != nil {
		return in, err
	}

	in.Custodian = custodian
	in.Directory = dir
	in.Pairs = pairs

	if opts.bitwavePath != "" {
		rewards, err := readFile(opts.bitwavePath, csvio.ReadRewardTransactions)
		if err != nil {
			return in, err
		}
		in.Rewards = rewards
		in.HasRewards = true
	}

	return in, nil
}

func readFile[T any](path string, decode func(r io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

func writeOutputs(outDir string, result *usecase.PipelineResult) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if err := writeFile(outDir, fileOutflows, func(f *os.File) error {
		return csvio.WriteOutflows(f, result.Stage1.Outflows)
	}); err != nil {
		return err
	}
	if err := writeFile(outDir, fileTransfers, func(f *os.File) error {
		return csvio.WriteLedgerEntries(f, result.Stage2.Entries)
	}); err != nil {
		return err
	}
	if err := writeFile(outDir, fileRewards, func(f *os.File) error {
		return csvio.WriteLedgerEntries(f, result.Stage3.Entries)
	}); err != nil {
		return err
	}
	if err := writeFile(outDir, fileRewardDisplay, func(f *os.File) error {
		return csvio.WriteRewardDisplay(f, result.Stage3.Display)
	}); err != nil {
		return err
	}
	return writeFile(outDir, fileSuppressions, func(f *os.File) error {
		return csvio.WriteSuppressions(f, result.Stage4.Suppressions)
	})
}

func writeFile(outDir, name string, write func(f *os.File) error) error {
	path := filepath.Join(outDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func printSummary(outDir string, result *usecase.PipelineResult) {
	pterm.DefaultSection.Println("Pipeline Summary")

	data := pterm.TableData{
		{"Stage", "Rows", "Warnings", "Output"},
		{"Outflows", fmt.Sprint(len(result.Stage1.Outflows)), fmt.Sprint(len(result.Stage1.Warnings)), filepath.Join(outDir, fileOutflows)},
		{"Transfers", fmt.Sprint(len(result.Stage2.Entries)), fmt.Sprint(len(result.Stage2.Warnings)), filepath.Join(outDir, fileTransfers)},
		{"Rewards", fmt.Sprint(len(result.Stage3.Entries)), fmt.Sprint(len(result.Stage3.Warnings)), filepath.Join(outDir, fileRewards)},
		{"Suppressions", fmt.Sprint(len(result.Stage4.Suppressions)), fmt.Sprint(len(result.Stage4.Warnings)), filepath.Join(outDir, fileSuppressions)},
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()

	for _, w := range result.Warnings {
		pterm.Warning.Println(w)
	}
	for _, w := range result.Stage1.Warnings {
		pterm.Warning.Println(w)
	}
	for _, w := range result.Stage2.Warnings {
		pterm.Warning.Println(w)
	}
	for _, w := range result.Stage3.Warnings {
		pterm.Warning.Println(w)
	}
	for _, w := range result.Stage4.Warnings {
		pterm.Warning.Println(w)
	}

	pterm.Success.Printf("Run %s completed\n", result.RunID)
}
