package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/storygen/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/storygen/internal/common"
	"github.com/dmitrijs2005/storygen/internal/dbx"
	"github.com/dmitrijs2005/storygen/internal/logging"
)

// CredentialStore keeps the bearer credential in the local metadata table and
// mirrors it in memory for the HTTP client.
//
// Older installs stored the credential under a legacy key; Load moves it to
// the current key the first time it is read.
type CredentialStore struct {
	db     *sql.DB
	log    logging.Logger
	cached string
}

func NewCredentialStore(db *sql.DB, log logging.Logger) *CredentialStore {
	return &CredentialStore{db: db, log: log}
}

func (s *CredentialStore) getMetadataRepo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

// Load reads the persisted credential. "" means none is stored.
func (s *CredentialStore) Load(ctx context.Context) (string, error) {
	repo := s.getMetadataRepo(s.db)

	token, ok, err := repo.Get(ctx, common.TokenStorageKey)
	if err != nil {
		return "", err
	}
	if ok && token != "" {
		s.cached = token
		return token, nil
	}

	legacy, ok, err := repo.Get(ctx, common.LegacyTokenStorageKey)
	if err != nil {
		return "", err
	}
	if !ok || legacy == "" {
		s.cached = ""
		return "", nil
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := s.getMetadataRepo(tx)
		if err := r.Set(ctx, common.TokenStorageKey, legacy); err != nil {
			return err
		}
		return r.Delete(ctx, common.LegacyTokenStorageKey)
	})
	if err != nil {
		s.log.Warn(ctx, "could not migrate legacy credential", "error", err)
	} else {
		s.log.Debug(ctx, "migrated legacy credential key")
	}

	s.cached = legacy
	return legacy, nil
}

// Save persists token. The in-memory copy only changes once the write
// succeeded.
func (s *CredentialStore) Save(ctx context.Context, token string) error {
	if err := s.getMetadataRepo(s.db).Set(ctx, common.TokenStorageKey, token); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	s.cached = token
	return nil
}

// Clear removes the credential under both the current and the legacy key.
// The in-memory copy is dropped even when the delete fails.
func (s *CredentialStore) Clear(ctx context.Context) error {
	s.cached = ""

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.getMetadataRepo(tx).Delete(ctx, common.TokenStorageKey, common.LegacyTokenStorageKey)
	})
	if err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

// Token returns the credential last loaded or saved.
func (s *CredentialStore) Token() string {
	return s.cached
}
