package model

const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// Page is skip/limit pagination as exposed on every list endpoint.
type Page struct {
	Skip  int
	Limit int
}

// Normalize clamps Skip to >= 0 and Limit to (0, MaxLimit], defaulting
// to DefaultLimit.
func (p Page) Normalize() Page {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}
