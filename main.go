// xlfkit: batch machine translation of XLIFF catalog directories.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/minios-linux/xlfkit/catalog"
	"github.com/minios-linux/xlfkit/config"
	"github.com/minios-linux/xlfkit/i18n"
	"github.com/minios-linux/xlfkit/langmeta"
	"github.com/minios-linux/xlfkit/merge"
	"github.com/minios-linux/xlfkit/scan"
	"github.com/minios-linux/xlfkit/settings"
	"github.com/minios-linux/xlfkit/translator"
	"github.com/minios-linux/xlfkit/translator/google"
	"github.com/minios-linux/xlfkit/translator/microsoft"
	"github.com/minios-linux/xlfkit/xliff"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	blue   = color.New(color.FgBlue).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.Bold, color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.Bold, color.FgCyan).SprintFunc()
)

// stderr is where the log helpers write.
var stderr io.Writer = color.Error

func logInfo(format string, args ...any) {
	fmt.Fprintf(stderr, "%s %s\n", blue("[INFO]"), fmt.Sprintf(format, args...))
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(stderr, "%s %s\n", green("[OK]"), fmt.Sprintf(format, args...))
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(stderr, "%s %s\n", yellow("[WARN]"), fmt.Sprintf(format, args...))
}

func logError(format string, args ...any) {
	fmt.Fprintf(stderr, "%s %s\n", red("[ERROR]"), fmt.Sprintf(format, args...))
}

// ---------------------------------------------------------------------------
// Global flag
// ---------------------------------------------------------------------------

var rootDir string

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "xlfkit",
		Short: i18n.T("Machine translate XLIFF catalog directories"),
		Long: `xlfkit: batch machine translation of XLIFF catalogs.

Catalog files are named catalogue.locale.xlf (messages.fr.xlf). Every unit
whose target still equals its source is sent to the translation provider,
and the result is written back into the catalog with a machine-translated
marker.

Settings are read from .xlfkit.yaml in the project root when present;
command-line flags override them.

Commands:
  translate   Translate a catalog directory
  status      Show catalogs and pending units per locale
  detect      Detect the language of a text
  languages   List the languages supported by the provider
  auth        Manage provider credentials

Providers:
  microsoft   Microsoft Translator (subscription key, default)
  google      Google Translate (no key)`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")

	root.AddCommand(
		newTranslateCmd(),
		newStatusCmd(),
		newDetectCmd(),
		newLanguagesCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "xlfkit version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// Flags shared by the provider commands
// ---------------------------------------------------------------------------

type providerFlags struct {
	provider string
	apiKey   string
	region   string
	host     string
	category string
	proxy    string
	timeout  time.Duration
	retries  int
	verbose  bool
}

func bindProviderFlags(fs *pflag.FlagSet, v *providerFlags) {
	fs.StringVar(&v.provider, "provider", "", "Translation provider: microsoft, google")
	fs.StringVar(&v.apiKey, "api-key", "", "Subscription key (or "+settings.EnvAPIKey+" env var)")
	fs.StringVar(&v.region, "region", "", "Translator resource region")
	fs.StringVar(&v.host, "host", "", "API host or one of global, us, europe, asia")
	fs.StringVar(&v.category, "category", "", "Translation category: general, tech")
	fs.StringVar(&v.proxy, "proxy", "", "HTTP/HTTPS proxy URL")
	fs.DurationVar(&v.timeout, "timeout", 0, "Request timeout (0 = provider default)")
	fs.IntVar(&v.retries, "max-retries", 0, "Maximum retries on throttling and server errors (0 = provider default)")
	fs.BoolVar(&v.verbose, "verbose", false, "Enable debug logging")
}

func registerProviderCompletion(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("provider", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"microsoft\tMicrosoft Translator (subscription key)",
			"google\tGoogle Translate (no key)",
		}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("region", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return microsoft.Regions, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("category", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return microsoft.Categories, cobra.ShellCompDirectiveNoFileComp
	})
}

func (v providerFlags) apply(f *config.File, fs *pflag.FlagSet) {
	if fs.Changed("provider") {
		f.Provider.Name = strings.ToLower(v.provider)
	}
	if fs.Changed("region") {
		f.Provider.Region = v.region
	}
	if fs.Changed("host") {
		f.Provider.Host = v.host
	}
	if fs.Changed("category") {
		f.Provider.Category = v.category
	}
	if fs.Changed("proxy") {
		f.Provider.Proxy = v.proxy
	}
	if fs.Changed("timeout") {
		f.Provider.Timeout = v.timeout
	}
	if fs.Changed("max-retries") {
		f.Provider.Retries = v.retries
	}
}

// loadSettings reads .xlfkit.yaml from the project root, falling back to the
// defaults. found reports whether a file was read.
func loadSettings() (f *config.File, found bool, err error) {
	f, err = config.Load(rootDir)
	if err != nil {
		return nil, false, err
	}
	if f == nil {
		return config.Default(), false, nil
	}
	return f, true, nil
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{Prefix: "xlfkit"})
	if verbose {
		logger.SetLevel(log.DebugLevel)
		logger.SetReportTimestamp(true)
	}
	return logger
}

// newTranslatorFunc builds the provider; tests replace it.
var newTranslatorFunc = newTranslator

func newTranslator(f *config.File, apiKeyFlag string, logger *log.Logger) (translator.Translator, error) {
	words, err := f.ExcludedWords(rootDir)
	if err != nil {
		return nil, err
	}
	p := f.Provider

	switch p.Name {
	case config.ProviderGoogle:
		return google.New(google.Config{
			LocaleMap:           p.LocaleMap,
			PlaceholderPatterns: p.PlaceholderPatterns,
			ExcludedWords:       words,
		})

	case config.ProviderMicrosoft:
		key, source := settings.ResolveAPIKey(apiKeyFlag, config.ProviderMicrosoft)
		if key == "" {
			return nil, fmt.Errorf("provider 'microsoft' requires a subscription key\n\n" +
				"Option 1: Store your key:\n" +
				"  xlfkit auth login --region REGION\n\n" +
				"Option 2: Pass key directly:\n" +
				"  --api-key YOUR_KEY or export " + settings.EnvAPIKey + "=YOUR_KEY")
		}
		region, host := p.Region, p.Host
		if source == "store" {
			if info := settings.Get(config.ProviderMicrosoft); info != nil {
				if region == "" {
					region = info.Region
				}
				if host == "" {
					host = info.Host
				}
			}
		}
		logger.Debug("Using subscription key", "source", source, "key", settings.MaskKey(key), "region", region)
		return microsoft.New(microsoft.Config{
			SubscriptionKey:     key,
			Region:              region,
			Host:                host,
			Proxy:               p.Proxy,
			Timeout:             p.Timeout,
			MaxRetries:          p.Retries,
			LocaleMap:           p.LocaleMap,
			PlaceholderPatterns: p.PlaceholderPatterns,
			ExcludedWords:       words,
			Category:            p.Category,
			Logger:              logger,
		})
	}
	return nil, fmt.Errorf("unknown provider %q (valid: %s)", p.Name, strings.Join(config.Providers, ", "))
}

// signalContext returns a context cancelled on the first interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		select {
		case <-sigCh:
			logWarning("%s", i18n.T("Interrupted, finishing current file..."))
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

type translateFlags struct {
	providerFlags

	dir        string
	ext        string
	source     string
	locales    []string
	exclude    []string
	catalogues []string

	newOnly          bool
	dryRun           bool
	memory           bool
	outputTranslated bool
	strict           bool
	maxFailures      int
	noProgress       bool
}

func bindTranslateFlags(fs *pflag.FlagSet, v *translateFlags) {
	bindProviderFlags(fs, &v.providerFlags)

	fs.StringVar(&v.dir, "dir", "", "Catalog directory (default: auto-detect)")
	fs.StringVar(&v.ext, "ext", "", "Catalog file extension (default .xlf)")
	fs.StringVar(&v.source, "source", "", "Source locale (default "+scan.DefaultSourceLocale+")")
	fs.StringSliceVar(&v.locales, "lang", nil, "Only translate these locales (comma-separated)")
	fs.StringSliceVar(&v.exclude, "exclude", nil, "Never translate these locales (comma-separated)")
	fs.StringSliceVar(&v.catalogues, "catalogue", nil, "Only translate these catalogues (comma-separated)")

	fs.BoolVar(&v.newOnly, "new-only", false, `Only translate targets with state="new"`)
	fs.BoolVar(&v.dryRun, "dry-run", false, "Translate without writing files")
	fs.BoolVar(&v.memory, "memory", false, "Skip units already machine translated")
	fs.BoolVar(&v.outputTranslated, "output-translated", false, "Log every translated string")
	fs.BoolVar(&v.strict, "strict", false, "Abort on malformed catalog file names")
	fs.IntVar(&v.maxFailures, "max-failures", 0, "Failed translations before a file is abandoned (default 10)")
	fs.BoolVar(&v.noProgress, "no-progress", false, "Disable the progress bar")
}

// apply overrides the settings with the flags given on the command line.
func (v translateFlags) apply(f *config.File, fs *pflag.FlagSet) error {
	v.providerFlags.apply(f, fs)

	if fs.Changed("dir") {
		f.Dir = v.dir
	}
	if fs.Changed("ext") {
		f.Extension = catalog.NormalizeExtension(v.ext)
	}
	if fs.Changed("source") {
		f.SourceLocale = v.source
	}
	if fs.Changed("lang") {
		f.Locales = v.locales
	}
	if fs.Changed("exclude") {
		f.ExcludeLocales = v.exclude
	}
	if fs.Changed("catalogue") {
		f.Catalogues = v.catalogues
	}
	if fs.Changed("new-only") {
		f.NewOnly = v.newOnly
	}
	if fs.Changed("dry-run") {
		f.DryRun = v.dryRun
	}
	if fs.Changed("memory") {
		f.Memory = v.memory
	}
	if fs.Changed("output-translated") {
		f.OutputTranslated = v.outputTranslated
	}
	if fs.Changed("strict") {
		f.FilenamePolicy = string(scan.PolicyTolerant)
		if v.strict {
			f.FilenamePolicy = string(scan.PolicyStrict)
		}
	}
	if fs.Changed("max-failures") {
		f.MaxFailures = v.maxFailures
	}
	return f.Validate()
}

// resolveCatalogDir points f.Dir at an auto-detected catalog directory when
// neither a config file nor --dir chose one.
func resolveCatalogDir(f *config.File, found, dirFlag bool) error {
	if found || dirFlag {
		return nil
	}
	p := config.Detect(rootDir, f.Extension)
	if p == nil {
		absRoot, _ := filepath.Abs(rootDir)
		return fmt.Errorf("no *%s catalogs found below %s (use --dir)", f.Extension, absRoot)
	}
	f.Dir = p.Dir
	return nil
}

func newTranslateCmd() *cobra.Command {
	var v translateFlags

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate a catalog directory",
		Long: `Translate every catalog in a directory.

Units whose target equals the source are sent to the provider. Translated
units are stamped with a machine-translated marker and the date. The
source locale and en_GB/en_US are never translated into.

Examples:
  # Translate with Microsoft Translator (key from 'xlfkit auth login')
  xlfkit translate

  # Only Spanish and French, only state="new" targets
  xlfkit translate --lang es,fr --new-only

  # Google Translate, no files written
  xlfkit translate --provider google --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, v)
		},
	}

	bindTranslateFlags(cmd.Flags(), &v)
	registerProviderCompletion(cmd)

	return cmd
}

func runTranslate(cmd *cobra.Command, v translateFlags) error {
	f, found, err := loadSettings()
	if err != nil {
		return err
	}
	if err := v.apply(f, cmd.Flags()); err != nil {
		return err
	}
	if err := resolveCatalogDir(f, found, cmd.Flags().Changed("dir")); err != nil {
		return err
	}

	job, err := f.Job(rootDir)
	if err != nil {
		return err
	}

	errOut := cmd.ErrOrStderr()
	logger := newLogger(errOut, v.verbose)
	if found {
		logger.Debug("Loaded settings", "file", f.Path())
	}

	tr, err := newTranslatorFunc(f, v.apiKey, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	var bar *progressbar.ProgressBar
	opts := scan.Options{Logger: logger}
	if !v.noProgress && !v.verbose {
		opts.OnProgress = func(done, total int, file string) {
			if bar == nil {
				bar = newProgressBar(errOut, total)
			}
			bar.Describe(fmt.Sprintf("[cyan]%s[reset]", file))
			_ = bar.Set(done)
		}
	}

	logInfo(i18n.T("Translating %s (%s, source %s)"), job.Dir, tr.Provider(), job.SourceLocale)
	sum, runErr := scan.New(tr, job, opts).Run(ctx)
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(errOut)
	}

	printSummary(errOut, sum, job.Commit)

	if runErr != nil {
		return runErr
	}
	if n := len(sum.Failures); n > 0 {
		return errors.New(i18n.Tf("%d catalog file(s) failed", n))
	}
	return nil
}

func newProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

func printSummary(w io.Writer, sum scan.Summary, commit bool) {
	fmt.Fprintf(w, "\n%s\n", cyan(i18n.T("Summary")))
	fmt.Fprintln(w, strings.Repeat("─", 60))

	row := func(label, value string) {
		fmt.Fprintf(w, "  %-24s %s\n", label+":", value)
	}
	list := func(items []string) string {
		if len(items) == 0 {
			return "-"
		}
		return strings.Join(items, ", ")
	}

	row(i18n.T("Strings requested"), fmt.Sprint(sum.StringsRequested))
	row(i18n.T("Strings translated"), fmt.Sprint(sum.StringsTranslated))
	row(i18n.T("Locales translated"), list(sum.LocalesTranslated))
	row(i18n.T("Locales skipped"), list(sum.LocalesSkipped))
	row(i18n.T("Catalogues translated"), list(sum.CataloguesTranslated))
	row(i18n.T("Catalogues skipped"), list(sum.CataloguesSkipped))
	if commit {
		row(i18n.T("Files written"), fmt.Sprint(sum.FilesWritten))
	} else {
		row(i18n.T("Files written"), yellow(i18n.T("none (dry run)")))
	}
	if len(sum.Abandoned) > 0 {
		row(i18n.T("Abandoned"), yellow(list(sum.Abandoned)))
	}
	if len(sum.MalformedSkipped) > 0 {
		row(i18n.T("Malformed names"), yellow(list(sum.MalformedSkipped)))
	}
	for _, fail := range sum.Failures {
		fmt.Fprintf(w, "  %s %s\n", red("✗"), fail.Error())
	}
	fmt.Fprintln(w)
}

// ---------------------------------------------------------------------------
// status (read-only)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	var (
		dir     string
		ext     string
		newOnly bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show catalogs and pending units per locale",
		Long: `Show the detected catalog directory and, per locale, how many units
are still untranslated. Does not modify any files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, found, err := loadSettings()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("dir") {
				f.Dir = dir
			}
			if cmd.Flags().Changed("ext") {
				f.Extension = catalog.NormalizeExtension(ext)
			}
			if cmd.Flags().Changed("new-only") {
				f.NewOnly = newOnly
			}
			if err := resolveCatalogDir(f, found, cmd.Flags().Changed("dir")); err != nil {
				return err
			}
			job, err := f.Job(rootDir)
			if err != nil {
				return err
			}

			proj, err := config.Inspect(job.Dir, job.Extension)
			if err != nil {
				return err
			}
			rows, err := collectStatus(proj, merge.Filter{NewOnly: job.NewOnly, Memory: job.Memory})
			if err != nil {
				return err
			}
			printStatus(cmd.ErrOrStderr(), proj, rows, job.SourceLocale)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Catalog directory (default: auto-detect)")
	cmd.Flags().StringVar(&ext, "ext", "", "Catalog file extension (default .xlf)")
	cmd.Flags().BoolVar(&newOnly, "new-only", false, `Count only targets with state="new" as pending`)

	return cmd
}

type statusRow struct {
	Locale  string
	Files   int
	Units   int
	Pending int
	Machine int
	Broken  []string
}

// collectStatus counts the units of every catalog in proj per locale.
func collectStatus(proj *config.Project, filter merge.Filter) ([]statusRow, error) {
	byLocale := make(map[string]*statusRow)
	for _, n := range proj.Files {
		row := byLocale[n.Locale]
		if row == nil {
			row = &statusRow{Locale: n.Locale}
			byLocale[n.Locale] = row
		}
		row.Files++

		doc, err := xliff.ParseFile(filepath.Join(proj.Dir, n.File))
		if err != nil {
			row.Broken = append(row.Broken, n.File)
			continue
		}
		for _, u := range doc.Units() {
			row.Units++
			if filter.Candidate(u) {
				row.Pending++
			}
			if u.IsMachineTranslated() {
				row.Machine++
			}
		}
	}

	rows := make([]statusRow, 0, len(byLocale))
	for _, locale := range proj.Locales {
		if row := byLocale[locale]; row != nil {
			rows = append(rows, *row)
		}
	}
	return rows, nil
}

func printStatus(w io.Writer, proj *config.Project, rows []statusRow, sourceLocale string) {
	fmt.Fprintf(w, "\n%s\n", cyan(i18n.T("Catalogs")))
	fmt.Fprintln(w, strings.Repeat("─", 60))
	fmt.Fprintf(w, "  %-12s %s\n", i18n.T("Directory:"), proj.Dir)
	fmt.Fprintf(w, "  %-12s %s\n", i18n.T("Catalogues:"), strings.Join(proj.Catalogues, ", "))
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(i18n.N("Found %d catalog file", "Found %d catalog files", len(proj.Files)), len(proj.Files)))
	if len(proj.Malformed) > 0 {
		fmt.Fprintf(w, "  %-12s %s\n", i18n.T("Malformed:"), yellow(strings.Join(proj.Malformed, ", ")))
	}
	fmt.Fprintln(w)

	if len(rows) == 0 {
		logInfo(i18n.T("No catalogs found in %s"), proj.Dir)
		return
	}

	fmt.Fprintf(w, "%-28s %6s %7s %8s %8s  %s\n", "Locale", "Files", "Units", "Pending", "Machine", "Done")
	fmt.Fprintln(w, strings.Repeat("─", 78))
	for _, r := range rows {
		label := langmeta.Label(r.Locale)
		if r.Locale == sourceLocale {
			fmt.Fprintf(w, "%-28s %6d %7d %8s %8s  %s\n", label, r.Files, r.Units, "-", "-", i18n.T("source"))
			continue
		}
		percent := 100
		if r.Units > 0 {
			percent = (r.Units - r.Pending) * 100 / r.Units
		}
		fmt.Fprintf(w, "%-28s %6d %7d %8d %8d  %s\n", label, r.Files, r.Units, r.Pending, r.Machine, percentBar(percent, 20))
		for _, b := range r.Broken {
			fmt.Fprintf(w, "  %s %s\n", red("✗"), i18n.Tf("%s could not be parsed", b))
		}
	}
	fmt.Fprintln(w)
}

// percentBar renders a coloured bar of the given width and the percentage.
func percentBar(percent, width int) string {
	percent = max(0, min(percent, 100))
	filled := percent * width / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	paint := green
	switch {
	case percent < 50:
		paint = red
	case percent < 100:
		paint = yellow
	}
	return fmt.Sprintf("%s %3d%%", paint(bar), percent)
}

// ---------------------------------------------------------------------------
// detect
// ---------------------------------------------------------------------------

func newDetectCmd() *cobra.Command {
	var v providerFlags

	cmd := &cobra.Command{
		Use:   "detect [text...]",
		Short: "Detect the language of a text",
		Long: `Detect the language of the arguments, or of standard input when no
argument is given. With a locale_map configured the result is reported as
the local locale code.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if text == "" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading standard input: %w", err)
				}
				text = strings.TrimSpace(string(data))
			}

			f, _, err := loadSettings()
			if err != nil {
				return err
			}
			v.apply(f, cmd.Flags())
			if err := f.Validate(); err != nil {
				return err
			}

			tr, err := newTranslatorFunc(f, v.apiKey, newLogger(cmd.ErrOrStderr(), v.verbose))
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			code, err := tr.DetectLanguage(ctx, text)
			if errors.Is(err, translator.ErrNotSupported) {
				return fmt.Errorf("provider %s cannot detect languages", tr.Provider())
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), code)
			return nil
		},
	}

	bindProviderFlags(cmd.Flags(), &v)
	registerProviderCompletion(cmd)

	return cmd
}

// ---------------------------------------------------------------------------
// languages
// ---------------------------------------------------------------------------

func newLanguagesCmd() *cobra.Command {
	var (
		v      providerFlags
		scopes []string
	)

	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List the languages supported by the provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, _, err := loadSettings()
			if err != nil {
				return err
			}
			v.apply(f, cmd.Flags())
			if err := f.Validate(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if f.Provider.Name == config.ProviderGoogle {
				for _, code := range google.Locales {
					fmt.Fprintf(out, "  %-10s %s\n", code, langmeta.Resolve(code).Name)
				}
				return nil
			}

			tr, err := newTranslatorFunc(f, v.apiKey, newLogger(cmd.ErrOrStderr(), v.verbose))
			if err != nil {
				return err
			}
			ms, ok := tr.(*microsoft.Client)
			if !ok {
				return fmt.Errorf("provider %s cannot list languages", tr.Provider())
			}

			ctx, cancel := signalContext()
			defer cancel()

			langs, err := ms.Languages(ctx, scopes...)
			if err != nil {
				return err
			}
			printLanguages(out, langs)
			return nil
		},
	}

	bindProviderFlags(cmd.Flags(), &v)
	cmd.Flags().StringSliceVar(&scopes, "scope", []string{"translation"}, "Scopes: translation, transliteration, dictionary")
	registerProviderCompletion(cmd)

	return cmd
}

func printLanguages(w io.Writer, langs map[string]map[string]microsoft.Language) {
	scopes := make([]string, 0, len(langs))
	for s := range langs {
		scopes = append(scopes, s)
	}
	sort.Strings(scopes)

	for _, s := range scopes {
		fmt.Fprintf(w, "%s (%d)\n", cyan(s), len(langs[s]))
		codes := make([]string, 0, len(langs[s]))
		for c := range langs[s] {
			codes = append(codes, c)
		}
		sort.Strings(codes)
		for _, c := range codes {
			l := langs[s][c]
			fmt.Fprintf(w, "  %-12s %-28s %s\n", c, l.Name, l.NativeName)
		}
	}
}

// ---------------------------------------------------------------------------
// auth
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage provider credentials",
		Long: `Manage the Microsoft Translator subscription key.

Keys are stored in ` + "`$XDG_DATA_HOME/xlfkit/auth.json`" + ` with mode 0600.
The ` + settings.EnvAPIKey + ` environment variable and the --api-key flag
take precedence over the stored key.

Examples:
  xlfkit auth login --region westeurope    Store a key (prompted)
  xlfkit auth logout                       Remove all credentials
  xlfkit auth list                         Show stored credentials`,
	}

	cmd.AddCommand(
		newAuthLoginCmd(),
		newAuthLogoutCmd(),
		newAuthListCmd(),
	)

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var key, region, host string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a Microsoft Translator subscription key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if region != "" && !microsoft.ValidRegion(region) {
				return fmt.Errorf("unknown region %q", region)
			}

			existing := settings.Get(config.ProviderMicrosoft)
			if key == "" {
				w := cmd.ErrOrStderr()
				fmt.Fprintf(w, "\n%s\n", cyan("Microsoft Translator: subscription key setup"))
				fmt.Fprintln(w, strings.Repeat("─", 60))
				if existing != nil && existing.Key != "" {
					fmt.Fprintf(w, "  Current key: %s\n", yellow(settings.MaskKey(existing.Key)))
					fmt.Fprint(w, "  Enter new key to replace, or press Enter to keep: ")
				} else {
					fmt.Fprint(w, "  Enter subscription key: ")
				}
				scanner := bufio.NewScanner(cmd.InOrStdin())
				if scanner.Scan() {
					key = strings.TrimSpace(scanner.Text())
				}
				fmt.Fprintln(w)
			}

			if key == "" {
				if existing == nil || existing.Key == "" {
					return errors.New("no subscription key provided")
				}
				key = existing.Key
				if region == "" {
					region = existing.Region
				}
				if host == "" {
					host = existing.Host
				}
			}

			info := &settings.Info{Type: "api", Key: key, Region: region, Host: host}
			if err := settings.Set(config.ProviderMicrosoft, info); err != nil {
				return fmt.Errorf("saving subscription key: %w", err)
			}
			logSuccess(i18n.T("Subscription key saved to %s"), settings.FilePath())
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Subscription key (prompted when omitted)")
	cmd.Flags().StringVar(&region, "region", "", "Translator resource region")
	cmd.Flags().StringVar(&host, "host", "", "API host or one of global, us, europe, asia")
	_ = cmd.RegisterFlagCompletionFunc("region", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return microsoft.Regions, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if provider != "" {
				if err := settings.Remove(provider); err != nil {
					return fmt.Errorf("removing %s credentials: %w", provider, err)
				}
				logSuccess(i18n.T("%s credentials removed"), provider)
				return nil
			}
			if err := settings.RemoveAll(); err != nil {
				return err
			}
			logSuccess("%s", i18n.T("All stored credentials removed"))
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Provider to logout (default: all)")

	return cmd
}

func newAuthListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show stored credentials",
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.ErrOrStderr()
			fmt.Fprintf(w, "\n%s\n", cyan(i18n.T("Stored Credentials")))
			fmt.Fprintln(w, strings.Repeat("─", 60))

			store := settings.Load()
			ids := store.Providers()
			if !slices.Contains(ids, config.ProviderMicrosoft) {
				ids = append([]string{config.ProviderMicrosoft}, ids...)
			}
			for _, id := range ids {
				info := store[id]
				if info == nil || info.Key == "" {
					fmt.Fprintf(w, "  %-12s %s\n", id, red("not configured"))
					continue
				}
				status := fmt.Sprintf("%s (key: %s", green("configured"), settings.MaskKey(info.Key))
				if info.Region != "" {
					status += ", region: " + info.Region
				}
				if info.Host != "" {
					status += ", host: " + info.Host
				}
				fmt.Fprintf(w, "  %-12s %s)\n", id, status)
			}

			fmt.Fprintf(w, "\n  %s\n", yellow("Environment Variables"))
			if env := os.Getenv(settings.EnvAPIKey); env != "" {
				fmt.Fprintf(w, "  %s: %s (overrides stored keys)\n", settings.EnvAPIKey, green(settings.MaskKey(env)))
			} else {
				fmt.Fprintf(w, "  %s: %s\n", settings.EnvAPIKey, red("not set"))
			}
			fmt.Fprintln(w)
		},
	}
}
