package balance_test

import (
	"errors"
	"maps"
	"math"
	"testing"

	"github.com/ardanlabs/powchain/foundation/blockchain/balance"
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

var (
	alice = database.ToAddress("alice")
	bob   = database.ToAddress("bob")
	carol = database.ToAddress("carol")
)

// =============================================================================

func TestApply(t *testing.T) {
	type table struct {
		name  string
		start map[database.Address]uint64
		tx    database.Tx
		final map[database.Address]uint64
		err   error
	}

	tt := []table{
		{
			name:  "transfer",
			start: map[database.Address]uint64{alice: 100},
			tx:    database.NewTx(alice, bob, 60),
			final: map[database.Address]uint64{alice: 40, bob: 60},
		},
		{
			name:  "whole-balance",
			start: map[database.Address]uint64{alice: 100, bob: 1},
			tx:    database.NewTx(alice, bob, 100),
			final: map[database.Address]uint64{alice: 0, bob: 101},
		},
		{
			name:  "to-self",
			start: map[database.Address]uint64{alice: 100},
			tx:    database.NewTx(alice, alice, 30),
			final: map[database.Address]uint64{alice: 100},
		},
		{
			name:  "zero-from-unknown",
			start: map[database.Address]uint64{},
			tx:    database.NewTx(carol, bob, 0),
			final: map[database.Address]uint64{},
		},
		{
			name:  "insufficient",
			start: map[database.Address]uint64{alice: 10},
			tx:    database.NewTx(alice, bob, 11),
			final: map[database.Address]uint64{alice: 10},
			err:   database.ErrInsufficientInputVal,
		},
		{
			name:  "unknown-source",
			start: map[database.Address]uint64{alice: 10},
			tx:    database.NewTx(carol, bob, 1),
			final: map[database.Address]uint64{alice: 10},
			err:   database.ErrInvalidInput,
		},
		{
			name:  "mint-source",
			start: map[database.Address]uint64{alice: 10},
			tx:    database.NewMintTx(bob, 1),
			final: map[database.Address]uint64{alice: 10},
			err:   database.ErrInvalidCoinbaseTransaction,
		},
		{
			name:  "mint-destination",
			start: map[database.Address]uint64{alice: 10},
			tx:    database.NewTx(alice, database.MintAccount, 5),
			final: map[database.Address]uint64{alice: 10},
			err:   database.ErrInvalidInput,
		},
	}

	t.Log("Given the need to apply a transfer to the ledger.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen applying %s.", testID, tst.tx)
				{
					vs := balance.New()
					for address, value := range tst.start {
						if err := vs.Mint(address, value); err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be able to mint the starting balances: %v", failed, testID, err)
						}
					}

					err := vs.Apply(tst.tx.From, tst.tx.To, tst.tx.Value)
					switch tst.err {
					case nil:
						if err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be able to apply the transfer: %v", failed, testID, err)
						}
						t.Logf("\t%s\tTest %d:\tShould be able to apply the transfer.", success, testID)

					default:
						if !errors.Is(err, tst.err) {
							t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, err)
							t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.err)
							t.Fatalf("\t%s\tTest %d:\tShould fail with the right error.", failed, testID)
						}
						t.Logf("\t%s\tTest %d:\tShould fail with the right error.", success, testID)
					}

					if got := vs.Copy(); !maps.Equal(got, tst.final) {
						t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, got)
						t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.final)
						t.Fatalf("\t%s\tTest %d:\tShould have the right balances.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould have the right balances.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func TestApplyBatch(t *testing.T) {
	type table struct {
		name  string
		start map[database.Address]uint64
		trans []database.Tx
		final map[database.Address]uint64
		err   error
	}

	tt := []table{
		{
			name:  "chained",
			start: map[database.Address]uint64{alice: 100},
			trans: []database.Tx{
				database.NewTx(alice, bob, 60),
				database.NewTx(bob, carol, 50),
			},
			final: map[database.Address]uint64{alice: 40, bob: 10, carol: 50},
		},
		{
			name:  "over-spend-rolls-back",
			start: map[database.Address]uint64{alice: 100},
			trans: []database.Tx{
				database.NewTx(alice, bob, 60),
				database.NewTx(alice, carol, 60),
			},
			final: map[database.Address]uint64{alice: 100},
			err:   database.ErrInsufficientInputVal,
		},
		{
			name:  "late-failure-rolls-back-chain",
			start: map[database.Address]uint64{alice: 100, bob: 5},
			trans: []database.Tx{
				database.NewTx(alice, bob, 10),
				database.NewTx(bob, carol, 15),
				database.NewTx(carol, alice, 1),
				database.NewTx(database.ToAddress("nobody"), alice, 1),
			},
			final: map[database.Address]uint64{alice: 100, bob: 5},
			err:   database.ErrInvalidInput,
		},
		{
			name:  "empty",
			start: map[database.Address]uint64{alice: 1},
			final: map[database.Address]uint64{alice: 1},
		},
	}

	t.Log("Given the need to apply a batch of transfers as a single unit.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen applying %d transactions.", testID, len(tst.trans))
				{
					vs := balance.New()
					for address, value := range tst.start {
						if err := vs.Mint(address, value); err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be able to mint the starting balances: %v", failed, testID, err)
						}
					}
					total := vs.Total()

					err := vs.ApplyBatch(tst.trans)
					switch tst.err {
					case nil:
						if err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be able to apply the batch: %v", failed, testID, err)
						}
						t.Logf("\t%s\tTest %d:\tShould be able to apply the batch.", success, testID)

					default:
						if !errors.Is(err, tst.err) {
							t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, err)
							t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.err)
							t.Fatalf("\t%s\tTest %d:\tShould fail with the right error.", failed, testID)
						}
						t.Logf("\t%s\tTest %d:\tShould fail with the right error.", success, testID)
					}

					if got := vs.Copy(); !maps.Equal(got, tst.final) {
						t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, got)
						t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.final)
						t.Fatalf("\t%s\tTest %d:\tShould have the right balances.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould have the right balances.", success, testID)

					if vs.Total() != total {
						t.Fatalf("\t%s\tTest %d:\tShould conserve value, got %d, exp %d.", failed, testID, vs.Total(), total)
					}
					t.Logf("\t%s\tTest %d:\tShould conserve value.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func TestMint(t *testing.T) {
	t.Log("Given the need to create value.")
	{
		t.Logf("\tTest 0:\tWhen minting and rewarding.")
		{
			vs := balance.New()

			for _, err := range []error{vs.Mint(alice, 5000), vs.RewardMiner(bob, 1), vs.RewardMiner(bob, 1)} {
				if err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould be able to create value: %v", failed, err)
				}
			}

			if v, ok := vs.Balance(alice); !ok || v != 5000 {
				t.Fatalf("\t%s\tTest 0:\tShould credit the mint, got %d.", failed, v)
			}
			t.Logf("\t%s\tTest 0:\tShould credit the mint.", success)

			if v, ok := vs.Balance(bob); !ok || v != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould credit each reward, got %d.", failed, v)
			}
			t.Logf("\t%s\tTest 0:\tShould credit each reward.", success)

			if _, ok := vs.Balance(carol); ok {
				t.Fatalf("\t%s\tTest 0:\tShould not know an address never credited.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould not know an address never credited.", success)

			vs.Reset()
			if vs.Total() != 0 || len(vs.Copy()) != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould be empty after a reset.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould be empty after a reset.", success)
		}
	}
}

func TestSupplyLimit(t *testing.T) {
	t.Log("Given the need to keep every balance within the range of a uint64.")
	{
		t.Logf("\tTest 0:\tWhen the whole supply is already minted.")
		{
			vs := balance.New()

			if err := vs.Mint(alice, math.MaxUint64); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to mint the largest value: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to mint the largest value.", success)

			if err := vs.RewardMiner(bob, 1); !errors.Is(err, database.ErrValueOverflow) {
				t.Fatalf("\t%s\tTest 0:\tShould refuse a reward past the limit, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould refuse a reward past the limit.", success)

			if _, ok := vs.Balance(bob); ok {
				t.Fatalf("\t%s\tTest 0:\tShould not credit the refused reward.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould not credit the refused reward.", success)

			if err := vs.Apply(alice, bob, math.MaxUint64); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to move the whole supply: %v", failed, err)
			}

			exp := map[database.Address]uint64{alice: 0, bob: math.MaxUint64}
			if got := vs.Copy(); !maps.Equal(got, exp) {
				t.Logf("\t%s\tTest 0:\tgot: %v", failed, got)
				t.Logf("\t%s\tTest 0:\texp: %v", failed, exp)
				t.Fatalf("\t%s\tTest 0:\tShould move the value without losing any.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould move the value without losing any.", success)

			if vs.Total() != math.MaxUint64 {
				t.Fatalf("\t%s\tTest 0:\tShould keep the total supply, got %d.", failed, vs.Total())
			}
			t.Logf("\t%s\tTest 0:\tShould keep the total supply.", success)
		}

		t.Logf("\tTest 1:\tWhen minting to the mint source.")
		{
			vs := balance.New()

			if err := vs.Mint(database.MintAccount, 10); !errors.Is(err, database.ErrInvalidCoinbaseTransaction) {
				t.Fatalf("\t%s\tTest 1:\tShould refuse the mint, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould refuse the mint.", success)

			if vs.Total() != 0 || len(vs.Copy()) != 0 {
				t.Fatalf("\t%s\tTest 1:\tShould leave the store empty.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould leave the store empty.", success)
		}
	}
}

func TestApplyBlock(t *testing.T) {
	type table struct {
		name   string
		start  uint64
		trans  []database.Tx
		reward uint64
		final  map[database.Address]uint64
		err    error
	}

	tt := []table{
		{
			name:   "transfers-and-reward",
			start:  100,
			trans:  []database.Tx{database.NewTx(alice, bob, 60)},
			reward: 1,
			final:  map[database.Address]uint64{alice: 40, bob: 60, carol: 1},
		},
		{
			name:   "failed-transfer-no-reward",
			start:  100,
			trans:  []database.Tx{database.NewTx(alice, bob, 60), database.NewTx(alice, bob, 60)},
			reward: 1,
			final:  map[database.Address]uint64{alice: 100},
			err:    database.ErrInsufficientInputVal,
		},
		{
			name:   "reward-past-limit",
			start:  math.MaxUint64,
			trans:  []database.Tx{database.NewTx(alice, bob, 60)},
			reward: 1,
			final:  map[database.Address]uint64{alice: math.MaxUint64},
			err:    database.ErrValueOverflow,
		},
	}

	t.Log("Given the need to apply a block's transfers and reward as one unit.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen applying %d transactions and a reward of %d.", testID, len(tst.trans), tst.reward)
				{
					vs := balance.New()
					if err := vs.Mint(alice, tst.start); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to mint the starting balance: %v", failed, testID, err)
					}

					err := vs.ApplyBlock(tst.trans, carol, tst.reward)
					if !errors.Is(err, tst.err) {
						t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, err)
						t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.err)
						t.Fatalf("\t%s\tTest %d:\tShould get the right result.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get the right result.", success, testID)

					if got := vs.Copy(); !maps.Equal(got, tst.final) {
						t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, got)
						t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.final)
						t.Fatalf("\t%s\tTest %d:\tShould have the right balances.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould have the right balances.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}
