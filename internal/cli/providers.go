package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/v2kk/stackctl/internal/provider"
	"github.com/v2kk/stackctl/internal/provider/awscloud"
	"github.com/v2kk/stackctl/internal/provider/hetzner"
)

// providerFactories maps provider namespaces to constructors. Factories run
// lazily, only for namespaces the selected stack actually declares.
var providerFactories = map[string]provider.Factory{
	awscloud.Namespace: func(ctx context.Context, logger *slog.Logger) (provider.Provider, error) {
		return awscloud.New(ctx, logger)
	},
	hetzner.Namespace: func(_ context.Context, logger *slog.Logger) (provider.Provider, error) {
		return hetzner.New(os.Getenv("HCLOUD_TOKEN"), logger)
	},
}
