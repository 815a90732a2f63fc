package auth

import "golang.org/x/crypto/bcrypt"

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// Hasher hashes and verifies passwords with bcrypt.  Each hash embeds its
// own random salt and cost, so a hash produced under an older cost still
// verifies after the cost is raised.
type Hasher struct {
	cost  int
	dummy []byte
}

// NewHasher returns a Hasher using cost, or bcrypt.DefaultCost when cost is
// out of range.
func NewHasher(cost int) Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	// dummy is compared against when a login names an unknown user so
	// that both paths cost one bcrypt comparison.
	dummy, _ := bcrypt.GenerateFromPassword([]byte("unknown-user"), cost)
	return Hasher{cost: cost, dummy: dummy}
}

// Hash returns a bcrypt hash of password.
func (h Hasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether password matches hash.  A malformed hash is a
// mismatch, and so is any password longer than MaxPasswordBytes: bcrypt
// only reads the first 72 bytes, and no such password can have been
// hashed by Hash.
func (h Hasher) Verify(password, hash string) bool {
	if len(password) > MaxPasswordBytes {
		h.Burn(password)
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Burn performs a comparison whose result is discarded.
func (h Hasher) Burn(password string) {
	if len(password) > MaxPasswordBytes {
		password = password[:MaxPasswordBytes]
	}
	if h.dummy != nil {
		_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
	}
}
