package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/mediasort/internal/config"
	"github.com/Nomadcxx/mediasort/internal/daemon"
)

func newConfigCommand(opts *rootOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			data, err := config.Marshal(cfg, opts.configPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s\n", opts.configPath)
			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(out, "# invalid: %v\n", err)
			}
			_, err = out.Write(data)
			return err
		},
	}

	configCmd.AddCommand(newConfigInitCommand())
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init <path>",
		Short: "Write a default configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve config path: %w", err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.Save(config.DefaultConfig(), target); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote default configuration to %s\n", target)
			fmt.Fprintln(out, "Set dir_watch, show_path, movie_path and omdb.apikey before starting mediasort.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing file")
	return cmd
}

func newServiceCommand(opts *rootOptions) *cobra.Command {
	var unitPath string
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "service",
		Short: "Install a systemd unit running mediasort in watch mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			binary, err := os.Executable()
			if err != nil {
				return fmt.Errorf("locate executable: %w", err)
			}
			configPath, err := filepath.Abs(opts.configPath)
			if err != nil {
				return fmt.Errorf("resolve config path: %w", err)
			}

			out := cmd.OutOrStdout()
			if printOnly {
				unit, err := daemon.GenerateSystemdUnit(binary, configPath)
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(out, unit)
				return err
			}

			if err := daemon.InstallSystemdUnit(unitPath, binary, configPath); err != nil {
				return err
			}
			fmt.Fprintf(out, "Installed %s\n", unitPath)
			fmt.Fprintln(out, "Enable it with: systemctl daemon-reload && systemctl enable --now mediasort")
			return nil
		},
	}

	cmd.Flags().StringVar(&unitPath, "unit-path", daemon.DefaultUnitPath, "where to write the unit file")
	cmd.Flags().BoolVar(&printOnly, "print", false, "print the unit instead of installing it")
	return cmd
}
