package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Veraticus/proposal-desk/internal/cli"
	"github.com/Veraticus/proposal-desk/internal/common"
	"github.com/Veraticus/proposal-desk/internal/config"
	"github.com/Veraticus/proposal-desk/internal/model"
	"github.com/Veraticus/proposal-desk/internal/service"
	"github.com/Veraticus/proposal-desk/internal/sheets"
	"github.com/Veraticus/proposal-desk/internal/storage"
	"github.com/Veraticus/proposal-desk/internal/storage/dynamo"
	"github.com/spf13/viper"
)

// openSQLite opens the local database with proper path expansion and migrates it.
func openSQLite(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DataFile(config.DBFileName)
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// openProposalStore returns the configured proposal store. The sqlite backend
// shares db; its Close is a no-op so the caller closes db once.
func openProposalStore(ctx context.Context, db *storage.SQLiteStorage) (service.ProposalStore, error) {
	backend := viper.GetString("storage.backend")
	switch backend {
	case "", "sqlite":
		return sharedStore{db}, nil
	case "dynamodb":
		cfg := dynamo.Config{
			Region:          viper.GetString("dynamodb.region"),
			Endpoint:        viper.GetString("dynamodb.endpoint"),
			AccessKeyID:     viper.GetString("dynamodb.access_key_id"),
			SecretAccessKey: viper.GetString("dynamodb.secret_access_key"),
			TablePrefix:     viper.GetString("dynamodb.table_prefix"),
		}.WithEnvDefaults()

		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		store := dynamo.NewStore(client, cfg.TablePrefix)

		if viper.GetBool("dynamodb.create_tables") {
			if err := dynamo.EnsureTables(ctx, client, store.Tables()); err != nil {
				return nil, err
			}
		}

		common.LogDebug("Using DynamoDB proposal store", common.Fields{
			"region": cfg.Region,
			"tables": store.Tables(),
		})
		return store, nil
	}
	return nil, fmt.Errorf("%w: unknown storage backend %q", common.ErrInvalidConfig, backend)
}

// sharedStore hides Close so the sqlite handle is closed by its owner only.
type sharedStore struct {
	*storage.SQLiteStorage
}

func (sharedStore) Close() error { return nil }

// openCatalog prefers the offline CSV file when configured, then the synced
// snapshot in the local database.
func openCatalog(ctx context.Context, db *storage.SQLiteStorage) (service.Catalog, error) {
	if path := viper.GetString("catalog.file"); path != "" {
		idx, err := sheets.LoadCSVFile(config.ExpandPath(path), viper.GetInt("catalog.header_rows"))
		if err != nil {
			return nil, err
		}
		common.LogInfo("Loaded catalog from file", common.Fields{"path": path, "rows": idx.Len()})
		return idx, nil
	}

	syncedAt, err := db.CatalogSyncedAt(ctx)
	if err != nil {
		return nil, err
	}
	if syncedAt.IsZero() {
		fmt.Fprintln(os.Stderr, cli.FormatWarning(`Catálogo vazio. Rode "propostas catalog sync" para carregar regiões e convênios.`))
	}
	return db, nil
}

// currentUser resolves the analyst running the command from analyst.login or $USER.
func currentUser(ctx context.Context, dir service.UserDirectory) (*model.User, error) {
	login := viper.GetString("analyst.login")
	if login == "" {
		login = os.Getenv("USER")
	}
	if login == "" {
		return nil, common.NewUserError("Informe o analista com --analyst", common.ErrMissingConfig)
	}

	user, err := dir.GetUser(ctx, login)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NewUserError(
			fmt.Sprintf(`Analista %q não cadastrado. Use "propostas users add %s"`, login, login), err)
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive() {
		return nil, common.NewUserError(fmt.Sprintf("Analista %q está inativo", login), common.ErrUserInactive)
	}
	return user, nil
}
