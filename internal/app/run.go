package app

import (
	"context"
	"fmt"

	"github.com/vk/pipelibgo/internal/ctxlog"
)

// Run resolves the entry module across the attached libraries and executes
// every match in resolution order, each in a fresh scope seeded with the
// configured bindings. An entry module present in no library is fatal at
// this level; the resolver itself treats it as an empty result.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	refs, err := a.resolver.Resolve(ctx, a.config.EntryModule)
	if err != nil {
		return fmt.Errorf("failed to resolve entry module: %w", err)
	}
	if len(refs) == 0 {
		return fmt.Errorf("module %q not found in any attached library", a.config.EntryModule)
	}
	a.logger.Info("🚀 Starting pipeline run.", "module", a.config.EntryModule, "matches", len(refs))

	for _, ref := range refs {
		if err := a.executor.Execute(ctx, ref.Source, ref.Path, a.config.Bindings); err != nil {
			return err
		}
	}

	a.logger.Info("🏁 Pipeline run finished.")
	return nil
}
