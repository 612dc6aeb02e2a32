package daemon

import (
	"fmt"

	"github.com/jessevdk/go-flags"
	"github.com/spf13/cobra"

	"github.com/orbitrollup/batch-submitter/batch-submitter/config"
	"github.com/orbitrollup/batch-submitter/util"
)

func NewInitCmd() *cobra.Command {
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the batchd home directory.",
		RunE:  initHome,
	}

	initCmd.Flags().Bool(forceFlag, false, "Override existing configuration")

	return initCmd
}

func initHome(cmd *cobra.Command, _ []string) error {
	homePath, err := getHomePath(cmd)
	if err != nil {
		return fmt.Errorf("failed to get home path: %w", err)
	}
	force, err := cmd.Flags().GetBool(forceFlag)
	if err != nil {
		return fmt.Errorf("failed to get force flag: %w", err)
	}

	if util.FileExists(homePath) && !force {
		return fmt.Errorf("home path %s already exists", homePath)
	}

	if err := util.MakeDirectory(homePath); err != nil {
		return fmt.Errorf("failed to create home directory: %w", err)
	}
	// Create log directory
	logDir := config.LogDir(homePath)
	if err := util.MakeDirectory(logDir); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	defaultConfig := config.DefaultConfig()
	fileParser := flags.NewParser(&defaultConfig, flags.Default)

	if err := flags.NewIniParser(fileParser).WriteFile(config.CfgFile(homePath), flags.IniIncludeComments|flags.IniIncludeDefaults); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
