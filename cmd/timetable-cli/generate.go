package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sonarsarthak/EDUManager/internal/ingest"
	"github.com/sonarsarthak/EDUManager/internal/models"
	"github.com/sonarsarthak/EDUManager/internal/service"
	"github.com/sonarsarthak/EDUManager/internal/timetable"
	"github.com/sonarsarthak/EDUManager/pkg/config"
	"github.com/sonarsarthak/EDUManager/pkg/storage"
)

const (
	flagInput  = "input"
	flagOutput = "output"
	flagSeed   = "seed"
	flagFormat = "format"
)

func generateCmd(cfg *config.Config, log *zap.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate",
		Short:   "Schedule a course sheet and write the faculty, class and summary tables",
		Example: "timetable-cli generate --input courses.xlsx --format csv --format pdf --seed 42",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input, _ := cmd.Flags().GetString(flagInput)
			output, _ := cmd.Flags().GetString(flagOutput)
			formats, _ := cmd.Flags().GetStringSlice(flagFormat)

			seed := cfg.Timetable.Seed
			if cmd.Flags().Changed(flagSeed) {
				seed, _ = cmd.Flags().GetInt64(flagSeed)
			}
			if seed == 0 {
				seed = time.Now().UnixNano()
			}

			exportFormats := make([]models.ExportFormat, 0, len(formats))
			for _, raw := range formats {
				format := models.ExportFormat(raw)
				if !format.Valid() {
					return fmt.Errorf("unsupported export format %q", raw)
				}
				exportFormats = append(exportFormats, format)
			}

			grid, err := timetable.ParseGrid(cfg.Timetable.Days, cfg.Timetable.Periods)
			if err != nil {
				return err
			}

			sheet, err := ingest.LoadFile(input)
			if err != nil {
				return err
			}
			for _, dropped := range sheet.Dropped {
				log.Warn("course row skipped", zap.Int("line", dropped.Line), zap.String("reason", dropped.Reason))
			}

			engine := timetable.NewEngine(timetable.WithGrid(grid), timetable.WithSeed(seed), timetable.WithLogger(log))
			stats := engine.Run(sheet.Requirements)

			store, err := storage.NewLocalStorage(output)
			if err != nil {
				return err
			}
			exports := service.NewExportService(store, nil, service.ExportConfig{}, nil, log)
			tables := service.BuildTables(grid, engine.Faculty(), engine.Classes())

			var written []string
			for _, format := range exportFormats {
				files, err := exports.Render(tables, format)
				if err != nil {
					return err
				}
				paths, err := exports.Store("", files)
				if err != nil {
					return err
				}
				for _, rel := range paths {
					written = append(written, store.Path(rel))
				}
			}

			printReport(cmd.OutOrStdout(), seed, stats, timetable.Summarize(grid, engine.Faculty(), engine.Classes()), written)
			return nil
		},
	}

	cmd.Flags().String(flagInput, "", "course sheet to schedule (.csv or .xlsx)")
	cmd.Flags().String(flagOutput, cfg.Exports.OutputDir, "directory the rendered tables are written to")
	cmd.Flags().Int64(flagSeed, 0, "random seed; the same seed and sheet reproduce the same timetable")
	cmd.Flags().StringSlice(flagFormat, []string{string(models.ExportFormatCSV)}, "export format: csv, xlsx or pdf (repeatable)")
	_ = cmd.MarkFlagRequired(flagInput)
	return cmd
}

func printReport(w io.Writer, seed int64, stats timetable.RunStats, analytics timetable.Analytics, written []string) {
	fmt.Fprintf(w, "Seed: %d\n", seed)
	fmt.Fprintf(w, "Courses scheduled: %d/%d (%.1f%%)\n", stats.FullySuccessfulCourses, stats.TotalCourses, stats.SuccessRate())
	fmt.Fprintf(w, "Sessions scheduled: %d/%d (%.1f%%)\n", stats.SessionsPlaced, stats.SessionsRequired, stats.SessionSuccessRate())
	fmt.Fprintf(w, "Conflicts: %d\n", stats.Shortfall())

	fmt.Fprintln(w, "\nFaculty workload:")
	for _, tally := range analytics.FacultyWorkload {
		fmt.Fprintf(w, "  %s: %d sessions\n", tally.Label, tally.Count)
	}
	fmt.Fprintln(w, "\nSessions per day:")
	for _, tally := range analytics.DailyDistribution {
		fmt.Fprintf(w, "  %s: %d\n", tally.Label, tally.Count)
	}

	for _, course := range stats.Courses {
		if !course.Complete() {
			fmt.Fprintf(w, "Incomplete: %s %s %s placed %d of %d\n", course.Branch, course.Semester, course.CourseCode, course.Placed, course.Required)
		}
	}

	if len(written) > 0 {
		fmt.Fprintln(w, "\nFiles:")
		for _, path := range written {
			fmt.Fprintf(w, "  %s\n", path)
		}
	}
}
