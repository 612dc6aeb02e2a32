package types

// Role identifies which kind of rollup batch a submitter commits to the
// base chain.
type Role string

const (
	// RoleTxBatch submits transaction batches.
	RoleTxBatch Role = "tx-batch"
	// RoleStateBatch submits state-root batches.
	RoleStateBatch Role = "state-batch"
)

func (r Role) String() string {
	return string(r)
}

// SubmitterBinding pairs a role with the submitter instance that serves it
// and whether the daemon should schedule it. A binding is immutable after
// construction; a disabled binding is never scheduled.
type SubmitterBinding struct {
	Role      Role
	Submitter Submitter
	Enabled   bool
}
