package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/mdiasanta/req-hunter/internal/domain"
	"github.com/mdiasanta/req-hunter/internal/service"
	"github.com/spf13/cobra"
)

func newScrapeCmd(configPath *string) *cobra.Command {
	var sourceID uint

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Run one scrape now and print the result as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			a, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx = service.WithTrigger(ctx, service.TriggerCLI)
			var result *domain.ScrapeResult
			if sourceID > 0 {
				result, err = a.scrape.RunSourceByID(ctx, sourceID)
			} else {
				result, err = a.scrape.RunAllSources(ctx)
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().UintVar(&sourceID, "source-id", 0, "scrape only this source, even if inactive")
	return cmd
}
