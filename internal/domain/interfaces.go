package domain

import "context"

// DocumentStore provides access to a single named collection of documents.
// Any document or key-value backend exposing these four operations satisfies
// it; no transactions, indexes, or queries beyond a full listing are needed.
type DocumentStore interface {
	// ListAll returns every document in the collection in insertion order
	ListAll(ctx context.Context) ([]Document, error)

	// Insert stores a new document and returns its assigned id
	Insert(ctx context.Context, fields map[string]any) (string, error)

	// UpdateFields merges the given fields into an existing document
	UpdateFields(ctx context.Context, id string, fields map[string]any) error

	// Delete removes a document by id
	Delete(ctx context.Context, id string) error

	// Close releases any underlying resources
	Close() error
}

// User identifies an authenticated account. A nil *User means anonymous.
type User struct {
	ID    string
	Name  string
	Token string
}

// LinkCode is a short code the user enters on the identity provider's link
// page to claim a login.
type LinkCode struct {
	ID        int
	Code      string
	VerifyURL string
}

// IdentityProvider is the external identity service. Any provider supporting
// an OAuth-style link/device flow with token validation satisfies this.
type IdentityProvider interface {
	// BeginLogin requests a fresh link code for an interactive sign-in
	BeginLogin(ctx context.Context) (*LinkCode, error)

	// WaitLogin polls until the code is claimed and returns the user.
	// Returns an error if the code expires or the context is cancelled.
	WaitLogin(ctx context.Context, code *LinkCode) (*User, error)

	// Validate resolves a previously issued token into a user
	Validate(ctx context.Context, token string) (*User, error)

	// Logout invalidates a token server-side
	Logout(ctx context.Context, token string) error
}
