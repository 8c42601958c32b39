package chain

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/iao-solana/internal/metrics"
)

var (
	// ErrAccountNotFound 账户不存在
	ErrAccountNotFound = errors.New("account not found")
	// ErrNodesUnavailable 所有节点均无法连接
	ErrNodesUnavailable = errors.New("all RPC nodes are unavailable")
)

// RPCClient 封装 Solana JSON-RPC 客户端，支持多个 URL 和故障转移
type RPCClient struct {
	urls    []string
	clients []*rpc.Client
	metrics *metrics.Service
	mu      sync.RWMutex
	current int // 当前使用的客户端索引
}

// NewRPCClient 创建新的 RPC 客户端
func NewRPCClient(urls []string, m *metrics.Service) (*RPCClient, error) {
	if len(urls) == 0 {
		return nil, errors.New("at least one RPC URL is required")
	}

	clients := make([]*rpc.Client, 0, len(urls))
	for _, url := range urls {
		clients = append(clients, rpc.New(url))
	}

	return &RPCClient{
		urls:    urls,
		clients: clients,
		metrics: m,
		current: 0,
	}, nil
}

// Close 关闭所有客户端连接
func (c *RPCClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, client := range c.clients {
		if err := client.Close(); err != nil {
			log.Debug().Str("url", c.urls[i]).Err(err).Msg("Failed to close RPC client")
		}
	}
}

// URL 返回当前使用的节点 URL
func (c *RPCClient) URL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.urls[c.current]
}

// LatestBlockhash 获取最新区块哈希及其最后有效区块高度
func (c *RPCClient) LatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (solana.Hash, uint64, error) {
	var res *rpc.GetLatestBlockhashResult
	err := c.do(ctx, "getLatestBlockhash", func(client *rpc.Client) error {
		var err error
		res, err = client.GetLatestBlockhash(ctx, commitment)
		return err
	})
	if err != nil {
		return solana.Hash{}, 0, errors.Wrap(err, "failed to get latest blockhash")
	}

	if res == nil || res.Value == nil {
		return solana.Hash{}, 0, errors.New("empty latest blockhash response")
	}

	return res.Value.Blockhash, res.Value.LastValidBlockHeight, nil
}

// BlockHeight 获取当前区块高度
func (c *RPCClient) BlockHeight(ctx context.Context, commitment rpc.CommitmentType) (uint64, error) {
	var height uint64
	err := c.do(ctx, "getBlockHeight", func(client *rpc.Client) error {
		var err error
		height, err = client.GetBlockHeight(ctx, commitment)
		return err
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to get block height")
	}

	return height, nil
}

// SendTransaction 发送已签名的交易
func (c *RPCClient) SendTransaction(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error) {
	var sig solana.Signature
	err := c.do(ctx, "sendTransaction", func(client *rpc.Client) error {
		var err error
		sig, err = client.SendTransactionWithOpts(ctx, tx, opts)
		return err
	})
	if err != nil {
		return solana.Signature{}, errors.Wrap(err, "failed to send transaction")
	}

	return sig, nil
}

// SignatureStatus 查询交易签名状态，未知签名返回 nil
func (c *RPCClient) SignatureStatus(ctx context.Context, sig solana.Signature, searchHistory bool) (*rpc.SignatureStatusesResult, error) {
	var res *rpc.GetSignatureStatusesResult
	err := c.do(ctx, "getSignatureStatuses", func(client *rpc.Client) error {
		var err error
		res, err = client.GetSignatureStatuses(ctx, searchHistory, sig)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get signature status")
	}

	if res == nil || len(res.Value) == 0 {
		return nil, nil
	}

	return res.Value[0], nil
}

// AccountInfo 获取账户信息
func (c *RPCClient) AccountInfo(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.Account, error) {
	var res *rpc.GetAccountInfoResult
	err := c.do(ctx, "getAccountInfo", func(client *rpc.Client) error {
		var err error
		res, err = client.GetAccountInfoWithOpts(ctx, account, &rpc.GetAccountInfoOpts{
			Encoding:   solana.EncodingBase64,
			Commitment: commitment,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, errors.Wrapf(ErrAccountNotFound, "account %s", account)
		}
		return nil, errors.Wrap(err, "failed to get account info")
	}

	if res == nil || res.Value == nil {
		return nil, errors.Wrapf(ErrAccountNotFound, "account %s", account)
	}

	return res.Value, nil
}

// Balance 获取账户余额（lamports）
func (c *RPCClient) Balance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (uint64, error) {
	var res *rpc.GetBalanceResult
	err := c.do(ctx, "getBalance", func(client *rpc.Client) error {
		var err error
		res, err = client.GetBalance(ctx, account, commitment)
		return err
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to get balance")
	}

	return res.Value, nil
}

// RequestAirdrop 请求空投（仅本地/测试网络）
func (c *RPCClient) RequestAirdrop(ctx context.Context, account solana.PublicKey, lamports uint64, commitment rpc.CommitmentType) (solana.Signature, error) {
	var sig solana.Signature
	err := c.do(ctx, "requestAirdrop", func(client *rpc.Client) error {
		var err error
		sig, err = client.RequestAirdrop(ctx, account, lamports, commitment)
		return err
	})
	if err != nil {
		return solana.Signature{}, errors.Wrap(err, "failed to request airdrop")
	}

	return sig, nil
}

// Health 检查节点健康状态
func (c *RPCClient) Health(ctx context.Context) error {
	var status string
	err := c.do(ctx, "getHealth", func(client *rpc.Client) error {
		var err error
		status, err = client.GetHealth(ctx)
		return err
	})
	if err != nil {
		return errors.Wrap(err, "failed to get node health")
	}

	if status != rpc.HealthOk {
		return errors.Errorf("node is unhealthy: %s", status)
	}

	return nil
}

// do 在当前节点执行调用；传输层失败时切换到下一个节点重试，JSON-RPC 错误直接返回
func (c *RPCClient) do(ctx context.Context, method string, call func(client *rpc.Client) error) error {
	var lastErr error

	for attempt := 0; attempt < len(c.clients); attempt++ {
		idx, client := c.getClient()

		started := time.Now()
		err := call(client)
		c.metrics.ObserveRPC(method, started, err)

		if err == nil || !isTransportError(err) || ctx.Err() != nil {
			return err
		}

		lastErr = err
		log.Warn().
			Str("url", c.urls[idx]).
			Str("method", method).
			Err(err).
			Msg("RPC node request failed, switching to next node")
		c.rotate(idx)
	}

	return fmt.Errorf("%w: %w", ErrNodesUnavailable, lastErr)
}

// getClient 获取当前客户端
func (c *RPCClient) getClient() (int, *rpc.Client) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.current, c.clients[c.current]
}

// rotate 将当前索引移到 failed 之后的节点；并发调用只会推进一次
func (c *RPCClient) rotate(failed int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == failed {
		c.current = (failed + 1) % len(c.clients)
	}
}

func isTransportError(err error) bool {
	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		return false
	}

	return !errors.Is(err, rpc.ErrNotFound)
}
