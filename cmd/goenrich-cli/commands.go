package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yashubustudio/goenrich/enrichment"
)

// newService is replaced in tests.
var newService = enrichment.NewDefaultService

type cliOptions struct {
	configPath string
	verbose    bool

	inputPath  string
	column     string
	species    string
	email      string
	outputPath string
	outputDir  string
	parallel   bool
	saveIDs    bool
	stdout     bool

	runTimeout     time.Duration
	resolveTimeout time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}
	root := &cobra.Command{
		Use:   "goenrich-cli",
		Short: "Resolve gene identifiers and run a DAVID GO enrichment analysis",
		Long: `goenrich-cli resolves a gene list (symbols, Entrez or Ensembl IDs) to Ensembl
gene IDs with MyGene.info, submits them to the DAVID web service and writes the
functional annotation chart as CSV.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config.json or config.yaml (default: ./config.json)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newRunCmd(opts), newResolveCmd(opts), newColumnsCmd(), newOrganismsCmd())
	return root
}

func newRunCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full resolve, submit and parse pipeline",
		Example: `  goenrich-cli run --input genes.csv --column "Gene Symbol" --species Human --email me@example.org
  goenrich-cli run --input genes.txt --species mouse --email me@example.org --stdout`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, opts)
		},
	}
	addInputFlags(cmd, opts)
	cmd.Flags().StringVar(&opts.email, "email", os.Getenv("DAVID_EMAIL"), "Email registered with DAVID (default: $DAVID_EMAIL)")
	cmd.Flags().StringVar(&opts.outputPath, "output", "", "CSV file to write results (default: --output-dir/GO_<column>.csv)")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "Directory for result files when --output is omitted (default: config outputDir)")
	cmd.Flags().BoolVar(&opts.saveIDs, "save-ids", false, "Also write the submitted Ensembl IDs to submitted_genes.txt")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "Print a preview of the results to STDOUT")
	cmd.Flags().DurationVar(&opts.runTimeout, "timeout", 15*time.Minute, "Overall time limit for the run")
	return cmd
}

func newResolveCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve identifiers to Ensembl gene IDs without submitting them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, opts)
		},
	}
	addInputFlags(cmd, opts)
	cmd.Flags().DurationVar(&opts.resolveTimeout, "timeout", 5*time.Minute, "Overall time limit for the lookup")
	return cmd
}

func addInputFlags(cmd *cobra.Command, opts *cliOptions) {
	cmd.Flags().StringVarP(&opts.inputPath, "input", "i", "", "CSV/TSV/text file containing gene identifiers")
	cmd.Flags().StringVarP(&opts.column, "column", "c", "", "Column name or #index holding the identifiers (default: auto-detect)")
	cmd.Flags().StringVarP(&opts.species, "species", "s", "Human", "Species label or MyGene.info species tag")
	cmd.Flags().BoolVar(&opts.parallel, "parallel", false, "Query all identifier scopes concurrently")
	_ = cmd.MarkFlagRequired("input")
}

func newColumnsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "columns FILE",
		Short: "List the columns of a CSV/TSV gene list and the suggested gene column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := enrichment.ReadInputFileMetadata(args[0])
			if err != nil {
				return err
			}
			printColumns(cmd.OutOrStdout(), meta)
			return nil
		},
	}
}

func newOrganismsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "organisms",
		Short: "List the known species labels and their MyGene.info tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, c := range enrichment.OrganismChoices() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", c.Label, c.Organism)
			}
			return nil
		},
	}
}

// setup loads config, builds the logger and the service shared by run and resolve.
func setup(opts *cliOptions) (*enrichment.Service, enrichment.Config, *zap.Logger, error) {
	cfg, err := enrichment.LoadConfig(strings.TrimSpace(opts.configPath))
	if err != nil {
		return nil, cfg, nil, fmt.Errorf("load config: %w", err)
	}
	if opts.verbose {
		cfg.LogLevel = "debug"
	}
	if opts.parallel {
		cfg.ParallelScopes = true
	}
	logger, err := enrichment.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, cfg, nil, err
	}
	service, err := newService(cfg, logger)
	if err != nil {
		return nil, cfg, logger, fmt.Errorf("init service: %w", err)
	}
	return service, cfg, logger, nil
}

func loadGenes(opts *cliOptions) ([]string, enrichment.Organism, error) {
	organism, ok := enrichment.ParseOrganism(opts.species)
	if !ok {
		return nil, "", errors.New("missing --species")
	}
	genes, err := enrichment.ParseGeneListFile(strings.TrimSpace(opts.inputPath), opts.column)
	if err != nil {
		return nil, "", fmt.Errorf("read gene list: %w", err)
	}
	if len(genes) == 0 {
		return nil, "", errors.New("input file does not contain any gene identifiers")
	}
	return genes, organism, nil
}

func runPipeline(cmd *cobra.Command, opts *cliOptions) error {
	email := strings.TrimSpace(opts.email)
	if email == "" {
		return &enrichment.AuthError{Err: errors.New("missing --email (or $DAVID_EMAIL)")}
	}
	genes, organism, err := loadGenes(opts)
	if err != nil {
		return err
	}
	service, cfg, logger, err := setup(opts)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.runTimeout)
	defer cancel()
	res, err := service.Run(ctx, genes, organism, email)
	if err != nil {
		return err
	}

	dir := opts.outputDir
	if dir == "" {
		dir = cfg.OutputDir
	}
	outputPath, err := resolveOutputPath(opts.outputPath, dir, columnLabel(opts.column, opts.inputPath))
	if err != nil {
		return err
	}
	if err := enrichment.SaveTable(outputPath, res.Table); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d valid ENSEMBL IDs found via %s (%d unresolved)\n", len(res.IDs), res.Scope, len(res.Unresolved))
	if opts.saveIDs {
		path, err := enrichment.SaveSubmittedIDs(filepath.Dir(outputPath), res.IDs)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Submitted IDs saved to %s\n", path)
	}
	fmt.Fprintf(out, "Results saved to %s\n", outputPath)
	if opts.stdout {
		printSummary(out, res.Table)
	}
	return nil
}

func runResolve(cmd *cobra.Command, opts *cliOptions) error {
	genes, organism, err := loadGenes(opts)
	if err != nil {
		return err
	}
	service, _, logger, err := setup(opts)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.resolveTimeout)
	defer cancel()
	res := service.Resolve(ctx, genes, organism)
	if !res.Matched {
		return enrichment.ErrResolutionEmpty
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# scope=%s resolved=%d unresolved=%d\n", res.Scope, len(res.IDs), len(res.Unresolved))
	for _, id := range res.IDs {
		fmt.Fprintln(out, id)
	}
	for _, raw := range res.Unresolved {
		fmt.Fprintf(out, "# unresolved: %s\n", raw)
	}
	return nil
}

// columnLabel names the output file after the selected column, or the input
// file for plain text lists.
func columnLabel(column, inputPath string) string {
	if c := strings.TrimSpace(column); c != "" {
		return c
	}
	base := filepath.Base(inputPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func resolveOutputPath(path, dir, column string) (string, error) {
	if path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("resolve output path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
		return absPath, nil
	}
	if dir == "" {
		dir = "csv"
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve output dir: %w", err)
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	return filepath.Join(absDir, enrichment.ResultFileName(column)), nil
}

func printColumns(w io.Writer, meta enrichment.InputFileMetadata) {
	if len(meta.Columns) == 0 {
		fmt.Fprintf(w, "plain text list (%s); every token is an identifier\n", meta.Encoding)
		return
	}
	for i, col := range meta.Columns {
		mark := " "
		if col == meta.Suggested {
			mark = "*"
		}
		sample := ""
		if i < len(meta.Samples) && meta.Samples[i] != "" {
			sample = " (e.g. " + meta.Samples[i] + ")"
		}
		fmt.Fprintf(w, "%s #%d %s%s\n", mark, i+1, col, sample)
	}
}

func printSummary(w io.Writer, records []enrichment.Record) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "==== Enrichment preview ====")
	limit := 10
	if len(records) < limit {
		limit = len(records)
	}
	for i := 0; i < limit; i++ {
		rec := records[i]
		fmt.Fprintf(w, "%d. [%s] %s\n", i+1, rec.Category, rec.Term)
		fmt.Fprintf(w, "    count=%d p=%.3g fold=%.2f benjamini=%.3g\n", rec.ListHits, rec.PValue, rec.FoldEnrichment, rec.Benjamini)
	}
	if len(records) > limit {
		fmt.Fprintf(w, "... %d more terms\n", len(records)-limit)
	}
	if len(records) == 0 {
		fmt.Fprintln(w, "no enriched terms")
	}
}
