package model

// User is the authenticated user profile returned by the backend.
type User struct {
	// ID is the backend's numeric identifier for this user.
	ID int `json:"id"`

	// Username is the login name, also shown in the header greeting.
	Username string `json:"username"`

	// Email is the address registered for this account.
	Email string `json:"email"`
}
