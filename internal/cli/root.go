// Package cli is the docuchunk command line: the same upload, process and
// chunk listing operations as the HTTP API, run against the local stores.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"docuchunk/internal/service"
)

var (
	version = "dev"

	// dataService is set by main before Execute.
	dataService service.DataService
)

var rootCmd = &cobra.Command{
	Use:           "docuchunk",
	Short:         "Ingest documents and split them into stored chunks",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// SetDataService installs the service every command runs against.
func SetDataService(s service.DataService) {
	dataService = s
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func requireService() (service.DataService, error) {
	if dataService == nil {
		return nil, errors.New("data service not configured")
	}
	return dataService, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
