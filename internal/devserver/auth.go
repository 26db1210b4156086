package devserver

import (
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

type account struct {
	hash []byte
	role string
}

// Accounts checks login credentials against bcrypt hashes.
type Accounts struct {
	mu       sync.RWMutex
	accounts map[string]account
}

func NewAccounts() *Accounts {
	return &Accounts{accounts: make(map[string]account)}
}

// HashPassword hashes the password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// Add registers email with a plain password.
func (a *Accounts) Add(email, password, role string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.accounts[strings.ToLower(strings.TrimSpace(email))] = account{hash: []byte(hash), role: role}
	return nil
}

// Check returns the account role when the password matches.
func (a *Accounts) Check(email, password string) (string, bool) {
	a.mu.RLock()
	acc, ok := a.accounts[strings.ToLower(strings.TrimSpace(email))]
	a.mu.RUnlock()
	if !ok {
		return "", false
	}
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
		return "", false
	}
	return acc.role, true
}
