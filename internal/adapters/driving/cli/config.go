package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

var (
	configShowFormat string
	configInitForce  bool
)

var rawConfig = map[string]string{rawConfigAnnotation: "true"}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and edit the docsync configuration file.

Settings are resolved from defaults, then the config file, then the .env
file and process environment, then command-line flags.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective settings",
	Long:  `Show the settings after every source has been applied. Secrets are masked.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print the config file path",
	Args:        cobra.NoArgs,
	Annotations: rawConfig,
	RunE:        runConfigPath,
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Write a config file with the default settings",
	Args:        cobra.NoArgs,
	Annotations: rawConfig,
	RunE:        runConfigInit,
}

var configWizardCmd = &cobra.Command{
	Use:         "wizard",
	Short:       "Interactive setup wizard",
	Long:        `Run an interactive wizard to configure the store, extractor and engine step by step.`,
	Args:        cobra.NoArgs,
	Annotations: rawConfig,
	RunE:        runConfigWizard,
}

func init() {
	configShowCmd.Flags().StringVarP(&configShowFormat, "format", "o", "toml", "output format: toml, yaml, json")
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing config file")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configWizardCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if currentSettings == nil {
		return errors.New("settings service not configured")
	}
	redacted := currentSettings.Redacted()

	switch strings.ToLower(configShowFormat) {
	case "toml":
		data, err := toml.Marshal(redacted)
		if err != nil {
			return fmt.Errorf("failed to marshal TOML: %w", err)
		}
		cmd.Print(string(data))
		return nil
	case formatJSON, formatYAML:
		return writeStructured(cmd.OutOrStdout(), strings.ToLower(configShowFormat), redacted)
	default:
		return fmt.Errorf("unknown format %q (use toml, yaml or json)", configShowFormat)
	}
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	cmd.Println(displayPath(settingsService.Path()))
	return nil
}

func displayPath(path string) string {
	if path == "" {
		return "(in memory)"
	}
	return path
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	path := settingsService.Path()
	if path != "" && !configInitForce {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		}
	}

	if err := settingsService.Save(domain.DefaultSettings()); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	cmd.Printf("Wrote default settings to %s\n", displayPath(path))
	return nil
}

func runConfigWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	cmd.Println("docsync Setup Wizard")
	cmd.Println("====================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	// Step 1: Document store
	cmd.Println("Step 1: Document Store")
	cmd.Println("----------------------")
	stores := []domain.StoreType{
		domain.StoreDropbox, domain.StoreGoogleDrive, domain.StoreGitHub, domain.StoreFilesystem,
	}
	current := 1
	for i, st := range stores {
		cmd.Printf("  %d. %s\n", i+1, st.Description())
		if st == settings.Store.Type {
			current = i + 1
		}
	}
	cmd.Printf("\nEnter choice [%d]: ", current)
	settings.Store.Type = stores[parseChoice(readLine(reader), len(stores), current)-1]

	settings.Store.Container = prompt(cmd, reader, containerPrompt(settings.Store.Type), settings.Store.Container)

	if settings.Store.Type.RequiresToken() {
		cmd.Printf("Access token (leave blank to use %s): ", settings.Store.Type.TokenEnv())
		if token := readPassword(cmd.InOrStdin(), reader); token != "" {
			settings.Store.Token = token
		}
		cmd.Println()
	}
	cmd.Println()

	// Step 2: Extractor
	cmd.Println("Step 2: Text Extraction")
	cmd.Println("-----------------------")
	settings.Extractor.URL = prompt(cmd, reader, "Tika URL", settings.Extractor.URL)
	cmd.Println()

	// Step 3: Search engine
	cmd.Println("Step 3: Search Engine")
	cmd.Println("---------------------")
	engines := []domain.EngineType{domain.EngineElasticsearch, domain.EngineBleve}
	current = 1
	for i, et := range engines {
		cmd.Printf("  %d. %s\n", i+1, et)
		if et == settings.Engine.Type {
			current = i + 1
		}
	}
	cmd.Printf("\nEnter choice [%d]: ", current)
	settings.Engine.Type = engines[parseChoice(readLine(reader), len(engines), current)-1]
	if settings.Engine.Type == domain.EngineElasticsearch {
		settings.Engine.URL = prompt(cmd, reader, "Elasticsearch URL", settings.Engine.URL)
	}
	settings.Engine.Index = prompt(cmd, reader, "Index name", settings.Engine.Index)

	workers := prompt(cmd, reader, "Concurrent workers", strconv.Itoa(settings.Sync.Workers))
	if n, err := strconv.Atoi(workers); err == nil {
		settings.Sync.Workers = n
	}
	cmd.Println()

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Println("Settings saved.")
	return nil
}

func containerPrompt(t domain.StoreType) string {
	switch t {
	case domain.StoreGitHub:
		return "Repository (owner/repo[/path])"
	case domain.StoreFilesystem:
		return "Directory"
	default:
		return "Folder (blank for root)"
	}
}

// prompt asks for a value, keeping current when the answer is blank.
func prompt(cmd *cobra.Command, reader *bufio.Reader, label, current string) string {
	cmd.Printf("%s [%s]: ", label, current)
	if v := readLine(reader); v != "" {
		return v
	}
	return current
}

func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is a terminal.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}
