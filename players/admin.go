package players

// Credential is one entry of the operator-curated admin list, loaded once at
// startup. Either a username+password pair or an auth token must be set for
// the entry to match anything.
type Credential struct {
	Username  string `json:"username,omitempty"`
	Password  string `json:"password,omitempty"`
	AuthToken string `json:"auth,omitempty"`
}

// VerifyAdminCredentials checks a username+password pair against the admin
// list. Linear scan; the list is small and operator-curated.
func (r *Registry) VerifyAdminCredentials(username, password string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.admins {
		if c.Username != "" && c.Username == username && c.Password != "" && c.Password == password {
			return true
		}
	}
	return false
}

// VerifyAdminAuthToken checks an auth token against the admin list.
func (r *Registry) VerifyAdminAuthToken(auth string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.admins {
		if c.AuthToken != "" && c.AuthToken == auth {
			return true
		}
	}
	return false
}
