// Package auth keeps ccev's secrets in the OS keychain: the Cloudflare API
// token and the signing secret for clear-cache trigger links.
package auth

import (
	"errors"

	"nathanbeddoewebdev/ccev/internal/util"
)

const ServiceName = "ccev"

// Well-known entry names.
const (
	EntryCloudflare    = "cloudflare"
	EntryTriggerSecret = "trigger-secret"
)

var ErrTokenNotFound = errors.New("auth token not found")

// Store reads and writes named secrets.
type Store interface {
	SetToken(name string, token string) error
	GetToken(name string) (string, error)
	DeleteToken(name string) error
}

// DefaultStore returns the standard auth store backed by the OS keychain.
func DefaultStore() Store {
	return NewKeyringStore(ServiceName)
}

// NormalizeName normalizes an entry name for consistent key lookup.
func NormalizeName(name string) string {
	return util.NormalizeKey(name)
}

// KnownEntries lists the entry names "ccev auth" manages.
func KnownEntries() []string {
	return []string{EntryCloudflare, EntryTriggerSecret}
}
