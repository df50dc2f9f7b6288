package public

import (
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/digest"
	"github.com/ardanlabs/powchain/foundation/blockchain/pow"
	"github.com/ardanlabs/powchain/foundation/nameservice"
)

type tx struct {
	From     database.Address `json:"from"`
	FromName string           `json:"from_name"`
	To       database.Address `json:"to"`
	ToName   string           `json:"to_name"`
	Value    uint64           `json:"value"`
	Hash     digest.Digest    `json:"hash"`
}

type block struct {
	Number          uint64           `json:"number"`
	Hash            digest.Digest    `json:"hash"`
	PrevBlockHash   *digest.Digest   `json:"prev_block_hash,omitempty"`
	TimeStamp       uint64           `json:"timestamp"`
	Nonce           uint64           `json:"nonce"`
	Difficulty      pow.Target       `json:"difficulty"`
	Broadcaster     database.Address `json:"broadcaster"`
	BroadcasterName string           `json:"broadcaster_name"`
	Trans           []tx             `json:"trans"`
}

type balance struct {
	Address database.Address `json:"address"`
	Name    string           `json:"name"`
	Balance uint64           `json:"balance"`
}

type balances struct {
	LatestBlock digest.Digest `json:"latest_block"`
	Balances    []balance     `json:"balances"`
}

type status struct {
	Length       int           `json:"length"`
	LatestBlock  digest.Digest `json:"latest_block"`
	Difficulty   pow.Target    `json:"difficulty"`
	MiningReward uint64        `json:"mining_reward"`
	TotalSupply  uint64        `json:"total_supply"`
	Issued       uint64        `json:"issued"`
}

// =============================================================================

type newTx struct {
	From  string `json:"from" validate:"required,address"`
	To    string `json:"to" validate:"required,address"`
	Value uint64 `json:"value"`
}

type mineRequest struct {
	Broadcaster  string  `json:"broadcaster" validate:"required,address"`
	Transactions []newTx `json:"transactions" validate:"dive"`
}

func (mr mineRequest) toDB() []database.Tx {
	trans := make([]database.Tx, len(mr.Transactions))
	for i, nt := range mr.Transactions {
		trans[i] = database.NewTx(database.Address(nt.From), database.Address(nt.To), nt.Value)
	}
	return trans
}

// =============================================================================

func toTx(ns *nameservice.NameService, dbTx database.Tx) tx {
	return tx{
		From:     dbTx.From,
		FromName: ns.Lookup(dbTx.From),
		To:       dbTx.To,
		ToName:   ns.Lookup(dbTx.To),
		Value:    dbTx.Value,
		Hash:     dbTx.Hash(),
	}
}

func toBlock(ns *nameservice.NameService, dbBlock database.Block) block {
	trans := make([]tx, len(dbBlock.Trans))
	for i, dbTx := range dbBlock.Trans {
		trans[i] = toTx(ns, dbTx)
	}

	return block{
		Number:          dbBlock.Header.Number,
		Hash:            dbBlock.Hash(),
		PrevBlockHash:   dbBlock.Header.PrevBlockHash,
		TimeStamp:       dbBlock.Header.TimeStamp,
		Nonce:           dbBlock.Header.Nonce,
		Difficulty:      dbBlock.Header.Difficulty,
		Broadcaster:     dbBlock.Header.Broadcaster,
		BroadcasterName: ns.Lookup(dbBlock.Header.Broadcaster),
		Trans:           trans,
	}
}
