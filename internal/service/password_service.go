package service

// PasswordService hashes and verifies credentials. Verify reports a mismatch
// as false with a nil error; errors are reserved for bad input.
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(password, digest string) (bool, error)
}
