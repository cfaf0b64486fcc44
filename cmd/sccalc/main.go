// Package main is sccalc, a cobra-based CLI exposing two subcommands:
// db-install deploys the catalog from its CSV sources, and run parses a
// chain expression and prints its short-circuit current.
package main

import (
	"context"
	"fmt"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/spf13/cobra"

	"shortcircuitcalc/internal/catalog"
	_ "shortcircuitcalc/internal/catalog/mysqlbackend"
	_ "shortcircuitcalc/internal/catalog/sqlitebackend"
	"shortcircuitcalc/internal/chainparser"
	"shortcircuitcalc/internal/config"
	"shortcircuitcalc/internal/installer"
	"shortcircuitcalc/internal/logging"
)

type rootFlags struct {
	configPath      string
	credentialsPath string
}

type dbInstallFlags struct {
	dataDir   string
	rulesPath string
}

func main() {
	root := &rootFlags{}
	rootCmd := &cobra.Command{
		Use:   "sccalc",
		Short: "Low-voltage short-circuit current calculator",
	}
	rootCmd.PersistentFlags().StringVar(&root.configPath, "config", "config.txt", "Path to the process settings file")
	rootCmd.PersistentFlags().StringVar(&root.credentialsPath, "credentials", "credentials.json", "Path to the MySQL credentials file")

	rootCmd.AddCommand(dbInstallCmd(root))
	rootCmd.AddCommand(runCmd(root))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func dbInstallCmd(root *rootFlags) *cobra.Command {
	flags := &dbInstallFlags{}
	cmd := &cobra.Command{
		Use:   "db-install",
		Short: "Deploy or reinstall the catalog from its CSV sources",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runDBInstall(root, flags)
		},
	}
	cmd.Flags().StringVar(&flags.dataDir, "data-dir", "data", "Root of the CSV catalog tree")
	cmd.Flags().StringVar(&flags.rulesPath, "rules", "", "Optional TOML row-count sanity overlay")
	return cmd
}

func runDBInstall(root *rootFlags, flags *dbInstallFlags) error {
	ctx := context.Background()
	log := logging.New(os.Stdout)

	settings := config.NewSettings(root.configPath)
	session, err := catalog.Open(ctx, settings, root.credentialsPath, log)
	if err != nil {
		return err
	}
	defer session.Close()

	reg := catalog.NewRegistry(session.Backend(), log)
	return installer.Deploy(ctx, session, reg, settings, installer.Options{
		DataDir:   flags.dataDir,
		RulesPath: flags.rulesPath,
	}, log)
}

func runCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <chain expression>",
		Short: "Parse a chain expression and print the first chain's three-phase short-circuit current",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runCalculate(root, args[0])
		},
	}
	return cmd
}

func runCalculate(root *rootFlags, text string) error {
	ctx := context.Background()
	log := logging.New(os.Stdout)

	settings := config.NewSettings(root.configPath)
	session, err := catalog.Open(ctx, settings, root.credentialsPath, log)
	if err != nil {
		return err
	}
	defer session.Close()

	system, err := chainparser.Parse(ctx, session, settings, text)
	if err != nil {
		return err
	}
	if system.Len() == 0 {
		return fmt.Errorf("no chain found in expression")
	}

	current, err := system.At(0).ThreePhaseCurrent(ctx, settings)
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", current.String())
	return nil
}
