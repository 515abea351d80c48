package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/sagarc03/b2files/clientcli"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Manage account profiles",
	Long: `Manage account profiles in the configuration file.

Profiles save an endpoint, application key and default bucket so you can
switch between accounts using --profile or B2_PROFILE.

Configuration is stored in ~/.b2files/config.yaml`,
}

var configureListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles with their key id and default bucket",
	Long: `List every saved profile. The default profile is marked with an asterisk (*).

With --check each application key is authorized against its endpoint and the
account id and bucket restriction returned by the service are printed.`,
	RunE: runConfigureList,
}

var configureAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a new profile",
	Long: `Add a new profile interactively.

You will be prompted for:
  - Endpoint URL
  - Application key id
  - Application key
  - Default bucket id (optional)
  - Whether to set as default

The key is checked against the endpoint before saving.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigureAdd,
}

var configureRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a profile",
	Long: `Remove a profile. Removing the default profile promotes the first
remaining profile to default.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigureRemove,
}

var configureSetDefaultCmd = &cobra.Command{
	Use:   "set-default <name>",
	Short: "Use a profile when --profile and B2_PROFILE are unset",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigureSetDefault,
}

var configureShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a profile's endpoint, key and bucket",
	Long: `Show one profile, the default one when no name is given.

The key id and key are masked unless --show-secrets is set. With --check the
key is authorized and the bucket it is restricted to, if any, is printed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigureShow,
}

var (
	showSecrets   bool
	checkProfiles bool
	assumeYes     bool
)

func init() {
	configureCmd.AddCommand(configureListCmd)
	configureCmd.AddCommand(configureAddCmd)
	configureCmd.AddCommand(configureRemoveCmd)
	configureCmd.AddCommand(configureSetDefaultCmd)
	configureCmd.AddCommand(configureShowCmd)

	for _, c := range []*cobra.Command{configureListCmd, configureShowCmd} {
		c.Flags().BoolVar(&showSecrets, "show-secrets", false, "print key ids and keys unmasked")
		c.Flags().BoolVar(&checkProfiles, "check", false, "authorize each key against its endpoint")
	}
	configureRemoveCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "remove without asking")
}

// loadProfiles reads the profile file. A missing file yields an empty set when allowMissing is true.
func loadProfiles(allowMissing bool) (*clientcli.ConfigFile, string, error) {
	path := getConfigPath()

	cfg, err := clientcli.LoadConfigFile(path)
	switch {
	case err == nil:
		return cfg, path, nil
	case allowMissing && errors.Is(err, os.ErrNotExist):
		return &clientcli.ConfigFile{}, path, nil
	default:
		return nil, path, err
	}
}

func bucketScope(bucketID string) string {
	if bucketID == "" {
		return "no default bucket"
	}
	return "default bucket " + bucketID
}

func runConfigureList(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadProfiles(true)
	if err != nil {
		return err
	}

	if len(cfg.Profiles) == 0 {
		fmt.Println("No profiles configured.")
		fmt.Println("Run 'b2-cli configure add <name>' to create one.")
		return nil
	}

	formatter := getFormatter()
	if checkProfiles {
		return formatter.FormatProfileChecks(os.Stdout, clientcli.CheckProfiles(cmd.Context(), cfg.Profiles))
	}

	defaultName := ""
	if p, defaultErr := cfg.GetDefaultProfile(); defaultErr == nil {
		defaultName = p.Name
	}
	return formatter.FormatProfileList(os.Stdout, cfg.Profiles, defaultName, showSecrets)
}



func runConfigureAdd(_ *cobra.Command, args []string) error {
	name := args[0]
	cfg, configPath, err := loadProfiles(true)
	if err != nil {
		return err
	}

	existing, _ := cfg.GetProfile(name)
	if existing != nil && !confirm(fmt.Sprintf("Profile '%s' (key %s) exists. Replace it", name, existing.KeyID)) {
		fmt.Println("Cancelled.")
		return nil
	}

	answers := make(map[string]string, 4)
	for _, q := range []struct {
		key    string
		prompt promptui.Prompt
	}{
		{"endpoint", promptui.Prompt{Label: "Endpoint URL", Default: clientcli.DefaultEndpoint, Validate: validEndpoint}},
		{"key_id", promptui.Prompt{Label: "Application Key ID", Validate: required("application key id")}},
		{"key", promptui.Prompt{Label: "Application Key", Mask: '*', Validate: required("application key")}},
		{"bucket_id", promptui.Prompt{Label: "Default Bucket ID (optional)"}},
	} {
		answer, promptErr := q.prompt.Run()
		if promptErr != nil {
			return handlePromptError(promptErr)
		}
		answers[q.key] = strings.TrimSpace(answer)
	}

	profile := clientcli.Profile{
		Name:     name,
		Endpoint: strings.TrimSuffix(answers["endpoint"], "/"),
		KeyID:    answers["key_id"],
		Key:      answers["key"],
		BucketID: answers["bucket_id"],
		Default:  len(cfg.Profiles) == 0 || confirm("Set as default profile"),
	}

	fmt.Print("Checking application key... ")
	check := clientcli.CheckProfile(context.Background(), profile)
	switch {
	case !check.OK():
		fmt.Println("FAILED")
		fmt.Printf("Warning: %v\n", check.Err)
		if !confirm("Save profile anyway") {
			fmt.Println("Cancelled.")
			return nil
		}
	case profile.BucketID == "" && check.AllowedBucket != "":
		profile.BucketID = check.AllowedBucket
		fmt.Printf("OK (account %s, key restricted to bucket %s)\n", check.AccountID, check.AllowedBucket)
	default:
		fmt.Printf("OK (account %s)\n", check.AccountID)
	}

	if existing != nil {
		err = cfg.UpdateProfile(profile)
	} else {
		err = cfg.AddProfile(profile)
	}
	if err != nil {
		return err
	}
	if profile.Default {
		if err = cfg.SetDefault(name); err != nil {
			return err
		}
	}
	if err = cfg.Save(configPath); err != nil {
		return err
	}

	verb := "added"
	if existing != nil {
		verb = "updated"
	}
	fmt.Printf("Profile '%s' %s (%s).\n", name, verb, bucketScope(profile.BucketID))
	if profile.Default {
		fmt.Println("It is now the default profile.")
	}
	return nil
}

// confirm asks a yes/no question; any answer but yes counts as no.
func confirm(label string) bool {
	_, err := (&promptui.Prompt{Label: label, IsConfirm: true}).Run()
	return err == nil
}

func validEndpoint(input string) error {
	if input == "" {
		return errors.New("endpoint URL is required")
	}
	u, err := url.Parse(input)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("endpoint must be an http:// or https:// URL with a host")
	}
	return nil
}

func runConfigureRemove(_ *cobra.Command, args []string) error {
	name := args[0]

	cfg, path, err := loadProfiles(false)
	if err != nil {
		return err
	}

	p, err := cfg.GetProfile(name)
	if err != nil {
		return err
	}
	wasDefault := p.Default

	if !assumeYes && !confirm(fmt.Sprintf("Remove profile '%s' (key %s, %s)", name, p.KeyID, bucketScope(p.BucketID))) {
		fmt.Println("Cancelled.")
		return nil
	}

	if err = cfg.RemoveProfile(name); err != nil {
		return err
	}

	promoted := ""
	if wasDefault && len(cfg.Profiles) > 0 {
		promoted = cfg.Profiles[0].Name
		if err = cfg.SetDefault(promoted); err != nil {
			return err
		}
	}

	if err = cfg.Save(path); err != nil {
		return err
	}

	fmt.Printf("Profile '%s' removed.\n", name)
	if promoted != "" {
		fmt.Printf("Default profile is now '%s'.\n", promoted)
	}
	return nil
}

func runConfigureSetDefault(_ *cobra.Command, args []string) error {
	name := args[0]

	cfg, path, err := loadProfiles(false)
	if err != nil {
		return err
	}

	if err = cfg.SetDefault(name); err != nil {
		return err
	}
	if err = cfg.Save(path); err != nil {
		return err
	}

	p, _ := cfg.GetProfile(name)
	fmt.Printf("Default profile set to '%s' (%s, %s).\n", name, p.Endpoint, bucketScope(p.BucketID))
	return nil
}

func runConfigureShow(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadProfiles(false)
	if err != nil {
		return err
	}

	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	p, err := cfg.GetProfile(name)
	if err != nil {
		return err
	}

	formatter := getFormatter()
	if checkProfiles {
		return formatter.FormatProfileChecks(os.Stdout, []clientcli.ProfileCheck{clientcli.CheckProfile(cmd.Context(), *p)})
	}

	// Without a name GetProfile falls back to the default, marked or not.
	isDefault := p.Default || name == ""
	return formatter.FormatProfileShow(os.Stdout, *p, isDefault, showSecrets)
}

func required(field string) func(string) error {
	return func(input string) error {
		if strings.TrimSpace(input) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

// handlePromptError treats Ctrl-C and Ctrl-D as a clean cancel.
func handlePromptError(err error) error {
	switch {
	case errors.Is(err, promptui.ErrInterrupt):
		fmt.Println()
		fallthrough
	case errors.Is(err, promptui.ErrAbort), errors.Is(err, promptui.ErrEOF):
		fmt.Println("Cancelled.")
		return nil
	default:
		return err
	}
}
