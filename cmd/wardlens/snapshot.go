package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/stwalsh4118/wardlens/internal/dictionary"
	"github.com/stwalsh4118/wardlens/internal/export"
	"github.com/stwalsh4118/wardlens/internal/handlers"
	"github.com/stwalsh4118/wardlens/internal/logger"
	"github.com/stwalsh4118/wardlens/internal/services"
)

func snapshotCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Compute every view once and write it as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.close()
			return writeSnapshot(cmd.Context(), a.service, out, log)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "snapshot", "output directory")
	return cmd
}

func exportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the survey metric comparisons to an Excel workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.close()
			return writeWorkbook(cmd.Context(), a.service, out)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "wardlens-metrics.xlsx", "output file")
	return cmd
}

// writeSnapshot computes each view in blocking mode and writes one
// indented JSON file per view into dir.
func writeSnapshot(ctx context.Context, svc services.AnalysisService, dir string, log *logger.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	views := []struct {
		file  string
		build func() (interface{}, error)
	}{
		{"comparison.json", func() (interface{}, error) { return svc.DistrictComparison(ctx, services.Block) }},
		{"food-access.json", func() (interface{}, error) { return svc.FoodAccess(ctx, services.Block) }},
		{"incidents.json", func() (interface{}, error) {
			return svc.Incidents(ctx, services.Block, services.IncidentQuery{})
		}},
		{"dictionary-metrics.json", func() (interface{}, error) { return svc.DataDictionary(ctx, services.Block) }},
		{"map-layers.json", func() (interface{}, error) { return svc.MapLayers(ctx, services.Block, services.MapQuery{}) }},
	}
	for _, d := range dictionary.SurveyDomains {
		d := d
		views = append(views, struct {
			file  string
			build func() (interface{}, error)
		}{
			file: fmt.Sprintf("metrics-%s.json", d),
			build: func() (interface{}, error) {
				return svc.DomainMetrics(ctx, services.Block, d, "")
			},
		})
	}

	for _, v := range views {
		bundle, err := v.build()
		if err != nil {
			return fmt.Errorf("failed to build %s: %w", v.file, err)
		}
		data, err := json.MarshalIndent(bundle, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", v.file, err)
		}
		path := filepath.Join(dir, v.file)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		log.Info("Wrote snapshot view", map[string]interface{}{"file": path, "bytes": len(data)})
	}
	return nil
}

// writeWorkbook exports one sheet per survey domain.
func writeWorkbook(ctx context.Context, svc services.AnalysisService, path string) error {
	sheets := make([]export.Sheet, 0, len(dictionary.SurveyDomains))
	for _, d := range dictionary.SurveyDomains {
		bundle, err := svc.DomainMetrics(ctx, services.Block, d, "")
		if err != nil {
			return fmt.Errorf("failed to compare %s metrics: %w", d, err)
		}
		sheets = append(sheets, export.Sheet{Name: handlers.SheetName(d), Metrics: bundle.Metrics})
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := export.Write(f, sheets, svc.Districts()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
