package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"didp/feature/imports"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	importKey      string
	importName     string
	importSheet    string
	importCategory string
	importNoHeader bool
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a spreadsheet or CSV file as a table",
	Long: `Reads an xlsx or csv file and stores one sheet as an imported table.

Examples:
  # Key and name default to the file name
  didp import trades.xlsx

  # Pick a sheet and a key
  didp import book.xlsx --sheet Confirms --key confirms --category fx`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importKey, "key", "", "Table key (defaults to the file name)")
	importCmd.Flags().StringVar(&importName, "name", "", "Display name (defaults to the key)")
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "Sheet to import (defaults to the first)")
	importCmd.Flags().StringVar(&importCategory, "category", "", "Table category")
	importCmd.Flags().BoolVar(&importNoHeader, "no-headers", false, "Treat the first row as data")
	RootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	a, err := bootstrap()
	if err != nil {
		return err
	}
	svc := a.imports.Service()
	ctx := cmd.Context()

	up, err := svc.Upload(ctx, filepath.Base(path), data)
	if err != nil {
		return err
	}

	in := imports.ConfirmInput{
		FileID:     up.FileID,
		TableKey:   importKey,
		TableName:  importName,
		SheetName:  importSheet,
		HasHeaders: !importNoHeader,
	}
	if in.TableKey == "" {
		in.TableKey = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if in.TableName == "" {
		in.TableName = in.TableKey
	}
	if importCategory != "" {
		in.Category = &importCategory
	}

	d, err := svc.Confirm(ctx, in)
	if err != nil {
		svc.Cleanup(up.FileID)
		return err
	}
	a.logger.Info("Table imported",
		zap.String("key", d.Key),
		zap.Int("columns", len(d.Columns)),
		zap.Int("rows", d.RowCount))
	return nil
}
