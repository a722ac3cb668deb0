package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"coinboard/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int    `json:"id"`
}

type rpcResponse struct {
	ID     int             `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// RPCNode serves rpc_node: node liveness expressed as the latest block
// number and gas price, fetched as one JSON-RPC batch. Each configured
// endpoint gets its own adapter instance so the balancer can rotate them.
type RPCNode struct {
	name    string
	chain   string
	client  *http.Client
	nodeURL string
	tracer  trace.Tracer
}

func NewRPCNode(tracer trace.Tracer, name, chain, nodeURL string) *RPCNode {
	return &RPCNode{
		name:    name,
		chain:   chain,
		client:  &http.Client{},
		nodeURL: strings.TrimSpace(nodeURL),
		tracer:  tracer,
	}
}

func (p *RPCNode) batch(ctx context.Context, methods ...string) (map[int]json.RawMessage, error) {
	reqs := make([]rpcRequest, len(methods))
	for i, m := range methods {
		reqs[i] = rpcRequest{JSONRPC: "2.0", Method: m, Params: []any{}, ID: i + 1}
	}
	body, err := json.Marshal(reqs)
	if err != nil {
		return nil, domain.NewResourceError(p.name, domain.FailProvider, err)
	}

	var resps []rpcResponse
	if err := postJSON(ctx, p.client, p.name, p.nodeURL, bytes.NewReader(body), &resps); err != nil {
		return nil, err
	}

	results := make(map[int]json.RawMessage, len(resps))
	for _, r := range resps {
		if r.Error != nil {
			return nil, domain.NewResourceError(p.name, domain.FailProvider,
				fmt.Errorf("rpc error %d: %s", r.Error.Code, r.Error.Message))
		}
		results[r.ID] = r.Result
	}
	return results, nil
}

func (p *RPCNode) hexResult(results map[int]json.RawMessage, id int) (int64, error) {
	raw, ok := results[id]
	if !ok {
		return 0, fmt.Errorf("missing result for request %d", id)
	}
	var hexVal string
	if err := json.Unmarshal(raw, &hexVal); err != nil {
		return 0, err
	}
	return hexToInt64(hexVal)
}

func (p *RPCNode) Call(ctx context.Context, _ domain.Params) (any, error) {
	ctx, span := p.tracer.Start(ctx, "rpcnode.status")
	defer span.End()

	if p.nodeURL == "" {
		return nil, domain.NewResourceError(p.name, domain.FailProvider,
			fmt.Errorf("node url is required"))
	}

	results, err := p.batch(ctx, "eth_blockNumber", "eth_gasPrice")
	if err != nil {
		return nil, err
	}

	blockNumber, err := p.hexResult(results, 1)
	if err != nil {
		return nil, domain.NewResourceError(p.name, domain.FailProvider,
			fmt.Errorf("parse block number: %w", err))
	}
	gasPriceWei, err := p.hexResult(results, 2)
	if err != nil {
		return nil, domain.NewResourceError(p.name, domain.FailProvider,
			fmt.Errorf("parse gas price: %w", err))
	}

	return &domain.RPCStatus{
		Chain:        p.chain,
		BlockNumber:  blockNumber,
		GasPriceGwei: float64(gasPriceWei) / 1e9,
		NodeID:       p.name,
	}, nil
}

// RPCGas serves gas for ethereum directly from a node's eth_gasPrice,
// spreading slow/fast around the quoted price the way wallets do.
type RPCGas struct {
	node *RPCNode
}

func NewRPCGas(node *RPCNode) *RPCGas { return &RPCGas{node: node} }

func (p *RPCGas) Call(ctx context.Context, _ domain.Params) (any, error) {
	ctx, span := p.node.tracer.Start(ctx, "rpcnode.gas")
	defer span.End()

	if p.node.nodeURL == "" {
		return nil, domain.NewResourceError(p.node.name, domain.FailProvider,
			fmt.Errorf("node url is required"))
	}

	results, err := p.node.batch(ctx, "eth_gasPrice")
	if err != nil {
		return nil, err
	}
	gasPriceWei, err := p.node.hexResult(results, 1)
	if err != nil {
		return nil, domain.NewResourceError(p.node.name, domain.FailProvider,
			fmt.Errorf("parse gas price: %w", err))
	}

	avg := float64(gasPriceWei) / 1e9
	return &domain.GasEstimate{
		Chain:     p.node.chain,
		Unit:      "gwei",
		Fast:      avg * 1.2,
		Avg:       avg,
		Slow:      avg * 0.85,
		FetchedAt: time.Now().UTC(),
	}, nil
}
