package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"docdrift/internal/config"
	"docdrift/internal/drift"
	"docdrift/internal/report"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "docdrift",
		Short: "Documentation drift detection for Python projects",
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(run(cmd))
		},
	}

	flagRoot             string
	flagModules          []string
	flagIgnoreSubmodules []string
	flagSkipReexports    []string
	flagDocsDir          string
	flagMkdocsFile       string
	flagConfig           string

	flagCheckAll      bool
	flagCheckBasic    bool
	flagCheckExternal bool
	flagCheckQuality  bool

	flagLLMBackend    string
	flagLLMModel      string
	flagLLMBaseURL    string
	flagQualitySample float64

	flagLinkTimeout     time.Duration
	flagLinkConcurrency int
	flagSkipDomains     []string

	flagJSON     bool
	flagWarnOnly bool
	flagVerbose  bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.Flags()

	flags.StringVar(&flagRoot, "root", ".", "Root path of repository (default: current dir)")
	flags.StringSliceVar(&flagModules, "modules", nil, "Modules to check")
	flags.StringSliceVar(&flagIgnoreSubmodules, "ignore-submodules", nil, "Submodules to skip when walking the API surface")
	flags.StringSliceVar(&flagSkipReexports, "skip-reexports", nil, "Re-exported API names to skip in coverage checks")
	flags.StringVar(&flagDocsDir, "docs-dir", "docs", "Documentation directory, relative to root")
	flags.StringVar(&flagMkdocsFile, "mkdocs-file", "mkdocs.yml", "mkdocs config file, relative to root")
	flags.StringVarP(&flagConfig, "config", "c", "", "Path to a docdrift YAML config file")

	flags.BoolVar(&flagCheckAll, "check-all", false, "Run all drift detection checks")
	flags.BoolVar(&flagCheckBasic, "check-basic", false, "Run basic checks (API coverage, references, params, local links, mkdocs)")
	flags.BoolVar(&flagCheckExternal, "check-external-links", false, "Check external HTTP links (can be slow)")
	flags.BoolVar(&flagCheckQuality, "check-quality", false, "Check documentation quality using LLM")

	flags.StringVar(&flagLLMBackend, "llm-backend", "ollama", "LLM backend to use (default: ollama)")
	flags.StringVar(&flagLLMModel, "llm-model", "", "LLM model name (defaults: qwen2.5:3b for ollama, gpt-4o-mini for openai, gemini-2.5-flash for gemini)")
	flags.StringVar(&flagLLMBaseURL, "llm-base-url", "", "Override the LLM endpoint (ollama and openai)")
	flags.Float64Var(&flagQualitySample, "quality-sample", 1.0, "Sample rate for quality checks (0.0-1.0, default: 1.0 = all APIs)")

	flags.DurationVar(&flagLinkTimeout, "link-timeout", 10*time.Second, "Timeout per external link request")
	flags.IntVar(&flagLinkConcurrency, "link-concurrency", 5, "Concurrent external link requests")
	flags.StringSliceVar(&flagSkipDomains, "skip-domains", nil, "Domains to skip when checking external links")

	flags.BoolVar(&flagJSON, "json", false, "Output as JSON")
	flags.BoolVar(&flagWarnOnly, "warn-only", false, "Exit 0 even when issues are found")
	flags.BoolVarP(&flagVerbose, "verbose", "v", false, "Verbose output")
}

func run(cmd *cobra.Command) int {
	ctx := context.Background()
	flags := cmd.Flags()

	// 1. Layer the file config under explicitly set flags
	cfg, ok := loadFileConfig()
	if !ok {
		return 1
	}

	root := flagRoot
	if !flags.Changed("root") && cfg.Project.Root != "" {
		root = cfg.Project.Root
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid root path: %v\n", err)
		return 1
	}

	modules := flagModules
	if len(modules) == 0 {
		modules = cfg.Project.Modules
	}
	ignoreSubmodules := flagIgnoreSubmodules
	if len(ignoreSubmodules) == 0 {
		ignoreSubmodules = cfg.Project.IgnoreSubmodules
	}
	skipReexports := flagSkipReexports
	if len(skipReexports) == 0 {
		skipReexports = cfg.Project.SkipReexports
	}
	docsDir := flagDocsDir
	if !flags.Changed("docs-dir") && cfg.Docs.Dir != "" {
		docsDir = cfg.Docs.Dir
	}
	mkdocsFile := flagMkdocsFile
	if !flags.Changed("mkdocs-file") && cfg.Docs.MkdocsFile != "" {
		mkdocsFile = cfg.Docs.MkdocsFile
	}

	backend := strings.ToLower(strings.TrimSpace(flagLLMBackend))
	if !flags.Changed("llm-backend") && cfg.LLM.Backend != "" {
		backend = strings.ToLower(strings.TrimSpace(cfg.LLM.Backend))
	}
	switch backend {
	case "ollama", "openai", "gemini":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid --llm-backend %q (choose from: ollama, openai, gemini)\n", backend)
		return 1
	}
	model := flagLLMModel
	if model == "" {
		model = cfg.LLM.Model
	}
	baseURL := flagLLMBaseURL
	if baseURL == "" {
		baseURL = cfg.LLM.BaseURL
	}
	sample := flagQualitySample
	if !flags.Changed("quality-sample") && cfg.LLM.SampleRate > 0 {
		sample = cfg.LLM.SampleRate
	}

	linkTimeout := flagLinkTimeout
	if !flags.Changed("link-timeout") && cfg.Links.TimeoutSeconds > 0 {
		linkTimeout = time.Duration(cfg.Links.TimeoutSeconds) * time.Second
	}
	linkConcurrency := flagLinkConcurrency
	if !flags.Changed("link-concurrency") && cfg.Links.MaxConcurrent > 0 {
		linkConcurrency = cfg.Links.MaxConcurrent
	}
	skipDomains := flagSkipDomains
	if len(skipDomains) == 0 {
		skipDomains = cfg.Links.SkipDomains
	}

	// 2. Default to --check-all if nothing specified
	full, includeExternal, includeQuality := selectChecks(
		flagCheckAll, flagCheckBasic, flagCheckExternal, flagCheckQuality)

	// 3. Get the API key for hosted backends if needed
	apiKey := resolveAPIKey(backend, cfg)
	if flagCheckQuality && backend == "openai" && apiKey == "" {
		fmt.Fprintln(os.Stderr, "Error: OPENAI_API_KEY environment variable not set")
		fmt.Fprintln(os.Stderr, "Set with: export OPENAI_API_KEY='sk-proj-...'")
		return 1
	}
	if flagCheckQuality && backend == "gemini" && apiKey == "" {
		fmt.Fprintln(os.Stderr, "Error: GEMINI_API_KEY environment variable not set")
		fmt.Fprintln(os.Stderr, "Set with: export GEMINI_API_KEY='AIza...'")
		return 1
	}

	opts := drift.Options{
		ProjectRoot:      absRoot,
		DocsDir:          docsDir,
		MkdocsFile:       mkdocsFile,
		Modules:          modules,
		IgnoreSubmodules: ignoreSubmodules,
		SkipReexports:    skipReexports,
		LinkTimeout:      linkTimeout,
		LinkConcurrency:  linkConcurrency,
		SkipDomains:      skipDomains,
		LLMBackend:       backend,
		LLMModel:         model,
		LLMAPIKey:        apiKey,
		LLMBaseURL:       baseURL,
		QualitySample:    sample,
		Verbose:          flagVerbose,
	}

	// 4. Run checks
	if full {
		if !flagJSON {
			fmt.Println("Running documentation drift detection...")
		}

		opts.Basic = true
		opts.ExternalLinks = includeExternal
		opts.Quality = includeQuality

		r := drift.NewDetector(opts).Run(ctx)

		if flagJSON {
			printJSON(r)
		} else {
			fmt.Println(report.Format(r))
		}

		if r.HasIssues() && !flagWarnOnly {
			return 1
		}
		return 0
	}

	// 5. Standalone external links check
	if !flagJSON {
		fmt.Println("Checking external links...")
	}
	opts.ExternalLinks = true
	r := drift.NewDetector(opts).Run(ctx)

	if flagJSON {
		printJSON(r)
		if r.HasIssues() && !flagWarnOnly {
			return 1
		}
		return 0
	}

	if len(r.BrokenExternalLinks) > 0 {
		fmt.Printf("\nBroken external links (%d):\n", len(r.BrokenExternalLinks))
		for _, link := range r.BrokenExternalLinks {
			fmt.Printf("  %s: %s (status: %v)\n", link.Location, link.URL, link.Status)
		}
		if flagWarnOnly {
			return 0
		}
		return 1
	}
	fmt.Println("All external links OK")
	return 0
}

// selectChecks maps the check toggles onto a run mode. Nothing selected
// means everything runs. A full run covers the basic checks plus whatever
// else was asked for; only --check-external-links alone skips them.
func selectChecks(all, basic, external, quality bool) (full, includeExternal, includeQuality bool) {
	if !all && !basic && !external && !quality {
		all = true
	}
	full = all || basic || quality
	includeExternal = all || external
	includeQuality = all || quality
	return full, includeExternal, includeQuality
}

// loadFileConfig reads the config file named by --config, falling back to
// docdrift.yaml in the working directory when one exists.
func loadFileConfig() (*config.Config, bool) {
	path := flagConfig
	if path == "" {
		if _, err := os.Stat("docdrift.yaml"); err != nil {
			// No config file; LoadConfig still pulls in .env defaults.
			_, _ = config.LoadConfig("docdrift.yaml")
			return &config.Config{}, true
		}
		path = "docdrift.yaml"
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config %s: %v\n", path, err)
		return nil, false
	}
	return cfg, true
}

func resolveAPIKey(backend string, cfg *config.Config) string {
	var envKey string
	switch backend {
	case "openai":
		envKey = os.Getenv("OPENAI_API_KEY")
	case "gemini":
		envKey = os.Getenv("GEMINI_API_KEY")
	}
	if envKey != "" {
		return envKey
	}
	return cfg.LLM.APIKey
}

func printJSON(r *report.Report) {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to encode report: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
