package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt cost factor (12 is a good balance of security and performance)
const bcryptCost = 12

// ErrAccountNotFound is returned when an account lookup fails.
var ErrAccountNotFound = errors.New("account not found")

// ErrAccountExists is returned when trying to create a duplicate account.
var ErrAccountExists = errors.New("account already exists")

// ErrInvalidCredentials is returned when login credentials are incorrect.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrAccountBanned is returned when a banned account tries to login.
var ErrAccountBanned = errors.New("account is banned")

// Account represents a player account.
type Account struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	LastLogin    *time.Time
	LastIP       string
	Banned       bool
}

// CreateAccount creates a new account with the given username and password.
// The password is hashed with bcrypt before storage.
func (d *Database) CreateAccount(username, password string) (*Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.New("username cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var id int64
	if d.dialect.SupportsLastInsertID() {
		result, err := d.db.Exec(
			d.qb.Build("INSERT INTO accounts (username, password_hash) VALUES (?, ?)"),
			username, string(hash),
		)
		if err != nil {
			if d.dialect.IsDuplicateKeyError(err) {
				return nil, ErrAccountExists
			}
			return nil, fmt.Errorf("failed to create account: %w", err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to get account ID: %w", err)
		}
	} else {
		err := d.db.QueryRow(
			d.qb.BuildWithReturning("INSERT INTO accounts (username, password_hash) VALUES (?, ?)", "id"),
			username, string(hash),
		).Scan(&id)
		if err != nil {
			if d.dialect.IsDuplicateKeyError(err) {
				return nil, ErrAccountExists
			}
			return nil, fmt.Errorf("failed to create account: %w", err)
		}
	}

	return &Account{
		ID:           id,
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}, nil
}

// ValidateLogin checks if the username and password are correct.
// Returns the account if valid, or ErrInvalidCredentials if not.
// The ipAddress parameter is recorded as the connection IP.
func (d *Database) ValidateLogin(username, password, ipAddress string) (*Account, error) {
	account, err := d.GetAccountByUsername(username)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if account.Banned {
		return nil, ErrAccountBanned
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := d.UpdateLastLoginAndIP(account.ID, ipAddress); err != nil {
		// Recording the login is best-effort; don't fail the login itself
		return account, nil
	}

	return account, nil
}

// GetAccountByUsername retrieves an account by username (case-insensitive).
func (d *Database) GetAccountByUsername(username string) (*Account, error) {
	return d.getAccount(
		d.qb.Build("SELECT id, username, password_hash, created_at, last_login, last_ip, banned FROM accounts WHERE username = ?"),
		username,
	)
}

// GetAccountByID retrieves an account by ID.
func (d *Database) GetAccountByID(accountID int64) (*Account, error) {
	return d.getAccount(
		d.qb.Build("SELECT id, username, password_hash, created_at, last_login, last_ip, banned FROM accounts WHERE id = ?"),
		accountID,
	)
}

func (d *Database) getAccount(query string, arg any) (*Account, error) {
	var account Account
	var lastLogin sql.NullTime
	var lastIP sql.NullString
	var banned int

	err := d.db.QueryRow(query, arg).Scan(
		&account.ID, &account.Username, &account.PasswordHash,
		&account.CreatedAt, &lastLogin, &lastIP, &banned,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if lastLogin.Valid {
		account.LastLogin = &lastLogin.Time
	}
	if lastIP.Valid {
		account.LastIP = lastIP.String
	}
	account.Banned = banned != 0

	return &account, nil
}

// UpdateLastLoginAndIP updates the last_login timestamp and IP address for an account.
func (d *Database) UpdateLastLoginAndIP(accountID int64, ipAddress string) error {
	_, err := d.db.Exec(
		d.qb.Build("UPDATE accounts SET last_login = CURRENT_TIMESTAMP, last_ip = ? WHERE id = ?"),
		ipAddress, accountID,
	)
	if err != nil {
		return fmt.Errorf("failed to update last login and IP: %w", err)
	}
	return nil
}

// SetBanned sets or clears the banned flag for an account.
func (d *Database) SetBanned(accountID int64, banned bool) error {
	value := 0
	if banned {
		value = 1
	}
	_, err := d.db.Exec(
		d.qb.Build("UPDATE accounts SET banned = ? WHERE id = ?"),
		value, accountID,
	)
	if err != nil {
		return fmt.Errorf("failed to update ban status: %w", err)
	}
	return nil
}

// AccountExists checks if an account with the given username exists.
func (d *Database) AccountExists(username string) (bool, error) {
	var count int
	err := d.db.QueryRow(
		d.qb.Build("SELECT COUNT(*) FROM accounts WHERE username = ?"),
		username,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check account existence: %w", err)
	}
	return count > 0, nil
}
