package secrets

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/dividendlab/cashflow-backend/internal/apperrors"
	"github.com/dividendlab/cashflow-backend/internal/repository"
)

// CredentialStore resolves provider API keys, preferring the encrypted copy
// in the system_setting table and falling back to the environment. When an
// environment key exists but no stored copy does, the key is persisted
// encrypted so later deployments can omit the variable.
type CredentialStore struct {
	settings  *repository.SettingRepository
	encryptor *Encryptor // nil disables encrypted storage
}

// NewCredentialStore creates a CredentialStore. encryptor may be nil.
func NewCredentialStore(settings *repository.SettingRepository, encryptor *Encryptor) *CredentialStore {
	return &CredentialStore{
		settings:  settings,
		encryptor: encryptor,
	}
}

// ProviderKey returns the API key for a provider. envValue is the key from
// the environment, which wins only when nothing usable is stored.
func (s *CredentialStore) ProviderKey(ctx context.Context, providerName, envValue string) (string, error) {
	settingKey := "provider_api_key_" + providerName

	stored, err := s.settings.GetSetting(ctx, settingKey)
	switch {
	case errors.Is(err, apperrors.ErrSettingNotFound):
		if envValue != "" && s.encryptor != nil {
			if storeErr := s.store(ctx, settingKey, envValue); storeErr != nil {
				log.Printf("Credentials: could not persist %s key: %v", providerName, storeErr)
			}
		}
		return envValue, nil
	case err != nil:
		return "", fmt.Errorf("failed to read stored credential: %w", err)
	}

	if s.encryptor == nil {
		// Stored value is unreadable without the fernet key.
		return envValue, nil
	}

	plaintext, err := s.encryptor.Decrypt(stored)
	if err != nil {
		log.Printf("Credentials: stored %s key unreadable, using environment: %v", providerName, err)
		return envValue, nil
	}
	return plaintext, nil
}

func (s *CredentialStore) store(ctx context.Context, settingKey, value string) error {
	token, err := s.encryptor.Encrypt(value)
	if err != nil {
		return err
	}
	return s.settings.SetSetting(ctx, settingKey, token)
}
