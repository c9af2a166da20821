// Package auth resolves who is making a request. Credentials are a fixed
// demo directory; there are no sessions or stored secrets.
package auth

import (
	"crypto/subtle"
	"errors"
	"sort"
	"strings"
)

// Role is cosmetic; nothing is enforced by role.
type Role string

const (
	RoleMarketing Role = "marketing"
	RoleAdmin     Role = "admin"
)

// User is an authenticated person.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// ErrInvalidCredentials is returned when the email or password does not match.
var ErrInvalidCredentials = errors.New("invalid email or password")

type account struct {
	user     User
	password string
}

// Directory is a fixed set of accounts keyed by lower-case email.
type Directory struct {
	accounts map[string]account
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{accounts: make(map[string]account)}
}

// DemoDirectory returns the two demo accounts shown on the login screen.
func DemoDirectory() *Directory {
	d := NewDirectory()
	d.Add(User{ID: "1", Email: "john@company.com", Name: "John Doe", Role: RoleMarketing}, "password123")
	d.Add(User{ID: "2", Email: "admin@company.com", Name: "Admin User", Role: RoleAdmin}, "password123")
	return d
}

// Add registers u with password, replacing any account with the same email.
func (d *Directory) Add(u User, password string) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	d.accounts[u.Email] = account{user: u, password: password}
}

// Authenticate checks email and password. Email matching is case-insensitive.
func (d *Directory) Authenticate(email, password string) (*User, error) {
	acct, ok := d.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(acct.password), []byte(password)) != 1 {
		return nil, ErrInvalidCredentials
	}
	u := acct.user
	return &u, nil
}

// Users returns every account's user, ordered by ID.
func (d *Directory) Users() []User {
	users := make([]User, 0, len(d.accounts))
	for _, a := range d.accounts {
		users = append(users, a.user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}
