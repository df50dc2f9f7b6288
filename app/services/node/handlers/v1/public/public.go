// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/ardanlabs/powchain/business/sys/validate"
	"github.com/ardanlabs/powchain/business/web/errs"
	"github.com/ardanlabs/powchain/foundation/blockchain/chain"
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/powchain/foundation/events"
	"github.com/ardanlabs/powchain/foundation/nameservice"
	"github.com/ardanlabs/powchain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of chain endpoints.
type Handlers struct {
	Log     *zap.SugaredLogger
	Chain   *chain.BlockChain
	Gen     genesis.Genesis
	Workers int
	NS      *nameservice.NameService
	WS      websocket.Upgrader
	Evts    *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.Gen, http.StatusOK)
}

// Status returns a summary of the chain.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	st := status{
		Length:       h.Chain.Len(),
		Difficulty:   h.Chain.Difficulty(),
		MiningReward: h.Chain.MiningReward(),
		TotalSupply:  h.Chain.TotalSupply(),
		Issued:       h.Chain.Issued(),
	}

	if last, ok := h.Chain.Last(); ok {
		st.LatestBlock = last.Hash()
	}

	return web.Respond(ctx, w, st, http.StatusOK)
}

// Blocks returns every block in the chain.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	dbBlocks := h.Chain.Blocks()
	if len(dbBlocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	blocks := make([]block, len(dbBlocks))
	for i, dbBlock := range dbBlocks {
		blocks[i] = toBlock(h.NS, dbBlock)
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// BlockByNumber returns the block at the specified position.
func (h Handlers) BlockByNumber(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	number, err := strconv.ParseUint(web.Param(r, "number"), 10, 64)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid block number: %w", err), http.StatusBadRequest)
	}

	dbBlock, err := h.Chain.BlockByNumber(number)
	if err != nil {
		return errs.FromChain(err)
	}

	return web.Respond(ctx, w, toBlock(h.NS, dbBlock), http.StatusOK)
}

// Balances returns the current balances for all addresses or the one
// specified.
func (h Handlers) Balances(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var dbBalances map[database.Address]uint64

	switch param := web.Param(r, "address"); param {
	case "":
		dbBalances = h.Chain.Balances()

	default:
		address, err := database.ParseAddress(param)
		if err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}

		value, exists := h.Chain.Balance(address)
		if !exists {
			return errs.NewTrusted(fmt.Errorf("address %s has no balance", address), http.StatusNotFound)
		}

		dbBalances = map[database.Address]uint64{address: value}
	}

	bals := make([]balance, 0, len(dbBalances))
	for address, value := range dbBalances {
		bals = append(bals, balance{
			Address: address,
			Name:    h.NS.Lookup(address),
			Balance: value,
		})
	}

	sort.Slice(bals, func(i, j int) bool {
		return bals[i].Address < bals[j].Address
	})

	resp := balances{
		Balances: bals,
	}

	if last, ok := h.Chain.Last(); ok {
		resp.LatestBlock = last.Hash()
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mine mines the next block holding the specified transactions and submits
// it to the chain.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var mr mineRequest
	if err := web.Decode(r, &mr); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(mr); err != nil {
		return err
	}

	h.Log.Infow("mine block", "traceid", v.TraceID, "broadcaster", mr.Broadcaster, "trans", len(mr.Transactions))

	dbBlock, err := h.Chain.MineNext(ctx, chain.MineArgs{
		Trans:       mr.toDB(),
		Broadcaster: database.Address(mr.Broadcaster),
		Workers:     h.Workers,
	})
	if err != nil {
		return errs.FromChain(err)
	}

	return web.Respond(ctx, w, toBlock(h.NS, dbBlock), http.StatusCreated)
}
