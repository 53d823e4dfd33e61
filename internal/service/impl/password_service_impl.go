package impl

import "golang.org/x/crypto/bcrypt"

const DefaultBcryptCost = 12

type PasswordServiceImpl struct {
	cost int
}

// NewPasswordServiceBcrypt clamps cost into bcrypt's accepted range; zero
// selects DefaultBcryptCost.
func NewPasswordServiceBcrypt(cost int) *PasswordServiceImpl {
	switch {
	case cost == 0:
		cost = DefaultBcryptCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &PasswordServiceImpl{cost: cost}
}

func (p *PasswordServiceImpl) Cost() int { return p.cost }

func (p *PasswordServiceImpl) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", ErrEmptyPassword.WithMessage("password cannot be hashed").Wrap(err)
	}
	return string(h), nil
}

func (p *PasswordServiceImpl) Verify(password, digest string) (bool, error) {
	if password == "" {
		return false, ErrEmptyPassword
	}
	if digest == "" {
		return false, ErrEmptyDigest
	}
	// mismatches and malformed digests both report false
	if err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)); err != nil {
		return false, nil
	}
	return true, nil
}
