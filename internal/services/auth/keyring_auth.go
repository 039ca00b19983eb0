package auth

import (
	"errors"

	"github.com/zalando/go-keyring"
)

// KeyringStore keeps secrets under one keychain service.
type KeyringStore struct {
	service string
}

func NewKeyringStore(service string) *KeyringStore {
	if service == "" {
		service = ServiceName
	}
	return &KeyringStore{service: service}
}

func (k *KeyringStore) SetToken(name string, token string) error {
	return keyring.Set(k.service, NormalizeName(name), token)
}

func (k *KeyringStore) GetToken(name string) (string, error) {
	token, err := keyring.Get(k.service, NormalizeName(name))
	switch {
	case err == nil:
		return token, nil
	case errors.Is(err, keyring.ErrNotFound):
		return "", ErrTokenNotFound
	}
	return "", err
}

func (k *KeyringStore) DeleteToken(name string) error {
	if err := keyring.Delete(k.service, NormalizeName(name)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrTokenNotFound
		}
		return err
	}
	return nil
}
