// Copyright 2025 Studium Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package studium

import (
	"io"
	"log/slog"

	"github.com/studium-hq/studium/ai"
	"github.com/studium-hq/studium/ai/openai"
	"github.com/studium-hq/studium/ingestion"
	"github.com/studium-hq/studium/reembed"
	"github.com/studium-hq/studium/search"
	"github.com/studium-hq/studium/storage"
	"github.com/studium-hq/studium/storage/badger"
)

type Database struct {
	backend       *badger.Backend
	sourceRepo    storage.SourceRepository
	embeddingRepo storage.EmbeddingRepository
	provider      ai.AIProvider
	logger        *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
}

// WithAIConfig sets the AI provider configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	// Create source repository
	sourceRepo, err := badger.NewSourceRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create embedding repository
	embeddingRepo := badger.NewEmbeddingRepository(backend)

	// Create AI provider with configured settings
	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		sourceRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:       backend,
		sourceRepo:    sourceRepo,
		embeddingRepo: embeddingRepo,
		provider:      provider,
		logger:        slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	// Close repositories
	if err := db.embeddingRepo.Close(); err != nil {
		db.logger.Error("error closing embedding repository", "err", err)
		return err
	}
	if err := db.sourceRepo.Close(); err != nil {
		db.logger.Error("error closing source repository", "err", err)
		return err
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) SourceRepository() storage.SourceRepository {
	return db.sourceRepo
}

func (db *Database) EmbeddingRepository() storage.EmbeddingRepository {
	return db.embeddingRepo
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.sourceRepo, db.embeddingRepo, db.provider, opts...)
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.sourceRepo, db.embeddingRepo, db.provider, opts...)
}

func (db *Database) NewReembedder(config *reembed.Config, progress io.Writer) *reembed.Reembedder {
	return reembed.NewReembedder(db.sourceRepo, db.embeddingRepo, db.provider.Embedder(), config, progress)
}
