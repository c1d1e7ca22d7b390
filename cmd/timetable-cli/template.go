package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sonarsarthak/EDUManager/internal/ingest"
)

func templateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "template",
		Short:   "Write a sample course sheet",
		Example: "timetable-cli template --out courses.xlsx",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, _ := cmd.Flags().GetString("out")
			format, err := ingest.DetectFormat(out)
			if err != nil {
				return err
			}
			data, err := ingest.Template(format)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write template: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Template written to %s\n", out)
			return nil
		},
	}
	cmd.Flags().String("out", "course_template.csv", "destination file; the extension picks csv or xlsx")
	return cmd
}
