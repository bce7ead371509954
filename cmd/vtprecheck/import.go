package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/vtprecheck/internal/artifact"
	"github.com/nao1215/vtprecheck/internal/config"
	"github.com/nao1215/vtprecheck/internal/database"
	vtlog "github.com/nao1215/vtprecheck/internal/log"
)

// NewImportCmd creates the import command.
func NewImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [export-file...]",
		Short: "Import analysis exports into the program store",
		Long: `Import loads analysis export files into the local program store so that
they can be checked by name with 'vtprecheck check --db'.

A program whose name is already in the store is replaced.

Examples:
  # Import two exports
  vtprecheck import libfoo-1.0.yaml libfoo-1.1.yaml

  # List imported programs
  vtprecheck import --list`,
		RunE: runImportCmd,
	}

	cmd.Flags().BoolP("list", "l", false,
		"List imported programs instead of importing")
	cmd.Flags().String("db-dir", "",
		"Directory of the program store (default: XDG data directory)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .vtprecheck in current or home directory)")

	return cmd
}

// resolveDBDir returns the database directory from --db-dir, the config file
// or the XDG default, in that order.
func resolveDBDir(cmd *cobra.Command) (string, error) {
	if cmd.Flags().Changed("db-dir") {
		return cmd.Flags().GetString("db-dir")
	}

	cfg := config.NewConfig()
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return "", err
	}
	if err := loadConfigFile(cfg, configPath); err != nil {
		return "", err
	}
	return cfg.DBDir, nil
}

// runImportCmd executes the import command.
func runImportCmd(cmd *cobra.Command, args []string) error {
	list, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if !list && len(args) == 0 {
		return errors.New("at least one export file is required (use --list to see imported programs)")
	}

	dbDir, err := resolveDBDir(cmd)
	if err != nil {
		return err
	}

	logger := vtlog.NewLogger(cmd.ErrOrStderr(), getVerboseFlag(cmd))

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	if list {
		return listPrograms(ctx, out, db)
	}

	for _, path := range args {
		p, err := artifact.LoadFile(path)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		if err := db.ImportProgram(ctx, p); err != nil {
			return fmt.Errorf("failed to import %s: %w", path, err)
		}

		noReturn := 0
		for fn := range p.Functions() {
			if fn.NoReturn {
				noReturn++
			}
		}
		logger.Info("program imported", "path", path, "name", p.Name(), "digest", p.Digest())
		fmt.Fprintf(out, "Imported %s: %d functions, %d no-return\n", p.Name(), p.FunctionCount(), noReturn)
	}

	return nil
}

// listPrograms prints every imported program.
func listPrograms(ctx context.Context, out io.Writer, db *database.ArtifactDB) error {
	programs, err := db.ListPrograms(ctx)
	if err != nil {
		return fmt.Errorf("failed to list programs: %w", err)
	}

	if len(programs) == 0 {
		fmt.Fprintln(out, "No programs imported.")
		fmt.Fprintln(out, "\nUse 'vtprecheck import <file>' to import an analysis export.")
		return nil
	}

	fmt.Fprintf(out, "Imported programs (%d):\n\n", len(programs))
	fmt.Fprintf(out, "  %-30s  %-10s  %-12s  %s\n", "Name", "Functions", "Digest", "Imported")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 76))
	for _, p := range programs {
		digest := p.Digest
		if len(digest) > 12 {
			digest = digest[:12]
		}
		fmt.Fprintf(out, "  %-30s  %-10d  %-12s  %s\n",
			p.Name, p.FunctionCount, digest, p.ImportedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
