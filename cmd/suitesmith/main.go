// Command suitesmith co-authors QA test suites with an LLM assistant.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/suitesmith/internal/adapters/driven/ai"
	"github.com/custodia-labs/suitesmith/internal/adapters/driven/assistant"
	"github.com/custodia-labs/suitesmith/internal/adapters/driven/config/file"
	"github.com/custodia-labs/suitesmith/internal/adapters/driven/explorer"
	"github.com/custodia-labs/suitesmith/internal/adapters/driven/publish/github"
	"github.com/custodia-labs/suitesmith/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/suitesmith/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/suitesmith/internal/adapters/driving/cli"
	"github.com/custodia-labs/suitesmith/internal/core/domain"
	"github.com/custodia-labs/suitesmith/internal/core/ports/driven"
	"github.com/custodia-labs/suitesmith/internal/core/services"
	"github.com/custodia-labs/suitesmith/internal/logger"
)

// version is set by the linker.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configDir, err := file.DefaultDir()
	if err != nil {
		return err
	}
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}

	blobs, closeStore, err := openBlobStore(settings.Storage.Backend, filepath.Join(configDir, "data"))
	if err != nil {
		return err
	}
	defer closeStore()

	repo := services.NewRepositoryService(blobs)
	if err := repo.Load(ctx); err != nil {
		return fmt.Errorf("loading collections: %w", err)
	}

	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		return fmt.Errorf("loading prompts: %w", err)
	}
	if watcher, err := file.NewPromptWatcher(prompts); err != nil {
		logger.Warn("prompt hot reload disabled: %v", err)
	} else {
		go func() {
			if err := watcher.Run(ctx); err != nil {
				logger.Warn("prompt watcher stopped: %v", err)
			}
		}()
	}

	// A missing or broken LLM config only disables the assistant; the
	// repository and manual editing keep working.
	var asst driven.Assistant
	llm, err := ai.CreateLLMService(&settings.LLM)
	switch {
	case err != nil:
		logger.Warn("LLM disabled: %v", err)
	case llm != nil:
		defer llm.Close()
		asst = assistant.New(llm, prompts)
	}

	workflow := services.NewWorkflowService(repo, explorer.New(), asst)
	workflow.SetDesiredCount(settings.Design.DesiredCount)

	var publisher driven.Publisher
	if token := settings.Publish.GitHubToken; token != "" {
		p, err := github.New(ctx, token)
		if err != nil {
			logger.Warn("publishing disabled: %v", err)
		} else {
			publisher = p
		}
	}

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Repository: repo,
		Review:     services.NewReviewService(repo, asst, settings.Review.DirtyPolicy),
		Workflow:   workflow,
		Settings:   settingsService,
		Publish:    services.NewPublishService(repo, publisher),
	})
	return cli.Execute(ctx)
}

// openBlobStore opens the durable store for backend.
func openBlobStore(backend domain.StorageBackend, dataDir string) (driven.BlobStore, func(), error) {
	if backend == domain.StorageBackendMemory {
		logger.Debug("using in-memory storage; nothing will persist")
		return memory.NewBlobStore(), func() {}, nil
	}

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	logger.Debug("using database %s", store.Path())
	return store.BlobStore(), func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing database: %v", err)
		}
	}, nil
}
