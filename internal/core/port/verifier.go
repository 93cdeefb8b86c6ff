package port

import "context"

// OwnershipVerifier confirms that a claimant controls the named external
// profile by locating a one-time code within it. On success it also
// returns the profile's canonical spelling of the name, which may differ
// from the claimant's input in casing. A false result with nil error means
// the code never appeared before the verifier's deadline; transient fetch
// failures are absorbed by the verifier itself and only cancellation of
// ctx propagates as an error.
type OwnershipVerifier interface {
	VerifyCode(ctx context.Context, name, code string) (string, bool, error)
}
