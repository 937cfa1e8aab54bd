package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plugman-sh/plugman/pkg/config"
	"github.com/plugman-sh/plugman/pkg/core"
	"github.com/plugman-sh/plugman/pkg/logging"
	"github.com/plugman-sh/plugman/pkg/paths"
	"github.com/plugman-sh/plugman/pkg/shell"
)

func pipelineOptions() core.Options {
	return core.Options{
		ConfigDir: configDir,
		DataDir:   dataDir,
		Profile:   profile,
	}
}

var initShell string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: MsgInitShort,
	Long: `Init creates a new plugin configuration file and prints the snippet to
add to your shell rc file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := paths.New(configDir, dataDir)
		if err != nil {
			return err
		}
		if err := config.Init(p.ConfigFile(), initShell); err != nil {
			return err
		}
		fmt.Printf(MsgInitialized, p.ConfigFile())
		fmt.Printf(MsgAddToRc, shell.GetIntegrationSnippet(initShell))
		return nil
	},
}

var (
	addDir      string
	addUses     []string
	addApply    []string
	addRaw      string
	addProfiles []string
)

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: MsgAddShort,
	Long: `Add appends a plugin entry to the configuration file. Pass --dir for a
sourced plugin or --raw for an inline one; exactly one is required.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := paths.New(configDir, dataDir)
		if err != nil {
			return err
		}
		f, err := config.ReadFile(p.ConfigFile())
		if err != nil {
			return err
		}
		plugin := config.Plugin{
			Name:     args[0],
			Dir:      addDir,
			Uses:     addUses,
			Apply:    addApply,
			Raw:      addRaw,
			Profiles: addProfiles,
		}
		if err := f.AddPlugin(plugin); err != nil {
			return err
		}
		if err := f.WriteTo(p.ConfigFile()); err != nil {
			return err
		}
		fmt.Printf(MsgPluginAdded, args[0], p.ConfigFile())
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: MsgRemoveShort,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := paths.New(configDir, dataDir)
		if err != nil {
			return err
		}
		f, err := config.ReadFile(p.ConfigFile())
		if err != nil {
			return err
		}
		if err := f.RemovePlugin(args[0]); err != nil {
			return err
		}
		if err := f.WriteTo(p.ConfigFile()); err != nil {
			return err
		}
		fmt.Printf(MsgPluginRemoved, args[0], p.ConfigFile())
		return nil
	},
}

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: MsgLockShort,
	Long: `Lock resolves the configuration against the active profile and writes
the lock file. The previous lock file is kept if resolution fails.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger("cmd.lock")
		lf, path, err := core.Lock(pipelineOptions())
		if err != nil {
			return err
		}
		logger.Info().Int("plugins", len(lf.Plugins)).Msg("Lock complete")
		fmt.Printf(MsgLocked, path)
		return nil
	},
}

var relock bool

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: MsgSourceShort,
	Long: `Source prints the shell script that loads your plugins. A valid,
up-to-date lock file is reused; otherwise the configuration is
re-resolved and the lock file replaced first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := pipelineOptions()
		opts.Relock = relock
		out, err := core.Source(opts)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initShell, "shell", "zsh", "Target shell (zsh or bash)")

	addCmd.Flags().StringVar(&addDir, "dir", "", "Source directory (may use {{ data_dir }}, {{ name }}, {{ home }})")
	addCmd.Flags().StringSliceVar(&addUses, "uses", nil, "Glob patterns selecting the files to source")
	addCmd.Flags().StringSliceVar(&addApply, "apply", nil, "Templates applied to the plugin")
	addCmd.Flags().StringVar(&addRaw, "raw", "", "Literal shell text for an inline plugin")
	addCmd.Flags().StringSliceVar(&addProfiles, "profiles", nil, "Profiles the plugin is restricted to")

	sourceCmd.Flags().BoolVar(&relock, "relock", false, "Force re-resolution of the configuration")
}
