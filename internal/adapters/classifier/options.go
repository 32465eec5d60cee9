package classifier

// Policy decides what happens when a row carries a categorical level the
// model never saw in training.
type Policy string

// Unknown category policies.
const (
	// PolicyError fails the whole scoring call.
	PolicyError Policy = "error"
	// PolicyIgnore lets the level contribute nothing, like an all-zero
	// one-hot vector.
	PolicyIgnore Policy = "ignore"
)

// Option applies a configuration option to the Model.
type Option func(*Model)

// WithUnknownCategory sets the unknown level policy. Unrecognised values
// are ignored and the default (PolicyError) stays in effect.
func WithUnknownCategory(p Policy) Option {
	return func(m *Model) {
		switch p {
		case PolicyError, PolicyIgnore:
			m.policy = p
		}
	}
}
