package main

import (
	"flowdata/internal/service"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newTemplateCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write an empty workbook with every recognised sheet and header",
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeWorkbookCmd(cmd, output, service.TemplateSheets())
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "import_template.xlsx", "Output workbook path")
	return cmd
}

func newSampleCmd() *cobra.Command {
	var (
		output   string
		template bool
	)

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write a small consistent workbook that imports cleanly",
		RunE: func(cmd *cobra.Command, args []string) error {
			sheets := service.SampleSheets()
			if template {
				sheets = service.TemplateSheets()
			}
			return writeWorkbookCmd(cmd, output, sheets)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", filepath.Join("storage", "uploads", "sample_flows.xlsx"), "Output workbook path")
	cmd.Flags().BoolVar(&template, "template", false, "Write only the header rows")
	return cmd
}

func writeWorkbookCmd(cmd *cobra.Command, output string, sheets []service.SheetData) error {
	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return withCode(exitUsage, fmt.Errorf("create output directory: %w", err))
		}
	}
	if err := service.WriteWorkbook(output, sheets); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Workbook written to %s\n", output)
	for _, sheet := range sheets {
		fmt.Fprintf(out, "  %-22s %d row(s)\n", sheet.Name, max(len(sheet.Rows)-1, 0))
	}
	return nil
}
