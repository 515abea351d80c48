package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/sagarc03/b2files/clientcli"
)

var (
	version = "dev"

	cfgFile    string
	profile    string
	endpoint   string
	keyID      string
	appKey     string
	bucketID   string
	jsonOutput bool
	quiet      bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:     "b2-cli",
	Version: version,
	Short:   "List and upload files in B2 compatible buckets",
	Long: `b2-cli lists file names and uploads files through the B2 native API.

Credentials are resolved from, in increasing precedence:
  - the selected profile in ~/.b2files/config.yaml
  - B2_ENDPOINT, B2_APPLICATION_KEY_ID, B2_APPLICATION_KEY, B2_BUCKET_ID
  - command line flags`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.b2files/config.yaml, env: B2_CONFIG)")
	flags.StringVarP(&profile, "profile", "p", "", "profile name (env: B2_PROFILE)")
	flags.StringVarP(&endpoint, "endpoint", "e", "", "authorization endpoint (default: "+clientcli.DefaultEndpoint+", env: B2_ENDPOINT)")
	flags.StringVar(&keyID, "key-id", "", "application key id (env: B2_APPLICATION_KEY_ID)")
	flags.StringVar(&appKey, "key", "", "application key (env: B2_APPLICATION_KEY)")
	flags.StringVarP(&bucketID, "bucket", "b", "", "bucket id (env: B2_BUCKET_ID)")
	flags.BoolVar(&jsonOutput, "json", false, "output as JSON")
	flags.BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log requests to stderr")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
	})))
}

// getConfigPath returns the config file path from flag, env, or default.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := clientcli.ConfigPathFromEnv(); p != "" {
		return p
	}
	return clientcli.DefaultConfigPath()
}

// buildConfig merges config from profile, env vars, and flags (flags take precedence).
func buildConfig() (*clientcli.Config, error) {
	var configs []*clientcli.Config

	profileName := profile
	if profileName == "" {
		profileName = clientcli.ProfileFromEnv()
	}
	explicit := cfgFile != "" || profileName != ""

	if configPath := getConfigPath(); configPath != "" {
		file, err := clientcli.LoadConfigFile(configPath)
		switch {
		case err == nil:
			p, profileErr := file.GetProfile(profileName)
			if profileErr != nil && (profileName != "" || !errors.Is(profileErr, clientcli.ErrNoProfiles)) {
				return nil, profileErr
			}
			configs = append(configs, clientcli.ConfigFromProfile(p))
		case explicit:
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	configs = append(configs,
		clientcli.ConfigFromEnv(),
		&clientcli.Config{
			Endpoint: endpoint,
			KeyID:    keyID,
			Key:      appKey,
			BucketID: bucketID,
		},
	)

	return clientcli.MergeConfig(configs...), nil
}

func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

func getClient() (*clientcli.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}

	return clientcli.New(cfg, clientcli.WithLogger(slog.Default()))
}
