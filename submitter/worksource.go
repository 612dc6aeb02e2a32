package submitter

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/orbitrollup/batch-submitter/types"
)

// WorkSource yields the next batch payload ready for submission. A nil
// payload with a nil error means there is no batch pending.
type WorkSource interface {
	NextBatch(ctx context.Context) ([]byte, error)
}

const (
	methodNextTxBatch    = "rollup_nextTxBatch"
	methodNextStateBatch = "rollup_nextStateBatch"
)

var _ WorkSource = (*RPCWorkSource)(nil)

// RPCWorkSource pulls pre-encoded batch payloads from the rollup node
// over JSON-RPC.
type RPCWorkSource struct {
	client *rpc.Client
	method string
}

func NewRPCWorkSource(client *rpc.Client, role types.Role) (*RPCWorkSource, error) {
	var method string
	switch role {
	case types.RoleTxBatch:
		method = methodNextTxBatch
	case types.RoleStateBatch:
		method = methodNextStateBatch
	default:
		return nil, fmt.Errorf("unknown submitter role: %s", role)
	}

	return &RPCWorkSource{
		client: client,
		method: method,
	}, nil
}

func (s *RPCWorkSource) NextBatch(ctx context.Context) ([]byte, error) {
	var payload hexutil.Bytes
	if err := s.client.CallContext(ctx, &payload, s.method); err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.method, err)
	}

	if len(payload) == 0 {
		return nil, nil
	}

	return payload, nil
}
