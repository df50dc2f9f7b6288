package pow_test

import (
	"testing"

	"github.com/ardanlabs/powchain/foundation/blockchain/pow"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

func TestCheckDifficulty(t *testing.T) {
	type table struct {
		name   string
		window [16]byte
		target pow.Target
		solved bool
	}

	tt := []table{
		{
			name:   "zero-window",
			target: pow.NewTarget(0, 1),
			solved: true,
		},
		{
			name:   "equal-is-not-solved",
			window: [16]byte{0: 1},
			target: pow.NewTarget(0, 1),
			solved: false,
		},
		{
			name:   "high-byte-dominates",
			window: [16]byte{14: 0xff},
			target: pow.NewTarget(0x00ffffffffffffff, 0xffffffffffffffff),
			solved: true,
		},
		{
			name:   "high-byte-too-large",
			window: [16]byte{15: 0x80},
			target: pow.NewTarget(0x00ffffffffffffff, 0xffffffffffffffff),
			solved: false,
		},
		{
			name:   "zero-target",
			target: pow.Target{},
			solved: false,
		},
	}

	t.Log("Given the need to check a digest against a difficulty target.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen checking window %x against %s.", testID, tst.window, tst.target)
				{
					hash := make([]byte, 32)
					for i := range 16 {
						hash[i] = 0xff
					}
					copy(hash[16:], tst.window[:])

					if got := pow.CheckDifficulty(hash, tst.target); got != tst.solved {
						t.Fatalf("\t%s\tTest %d:\tShould get solved=%t, got %t.", failed, testID, tst.solved, got)
					}
					t.Logf("\t%s\tTest %d:\tShould get solved=%t.", success, testID, tst.solved)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func TestCheckDifficultyPanics(t *testing.T) {
	t.Log("Given the need to fail fast on a malformed digest.")
	{
		t.Logf("\tTest 0:\tWhen the digest is 31 bytes.")
		{
			defer func() {
				if recover() == nil {
					t.Fatalf("\t%s\tTest 0:\tShould panic.", failed)
				}
				t.Logf("\t%s\tTest 0:\tShould panic.", success)
			}()

			pow.CheckDifficulty(make([]byte, 31), pow.DefaultTarget)
		}
	}
}

func TestParseTarget(t *testing.T) {
	type table struct {
		name  string
		input string
		hi    uint64
		lo    uint64
		fails bool
	}

	tt := []table{
		{name: "default", input: "0x000ffffffffffffffffffffffffffff", hi: 0x0000ffffffffffff, lo: 0xffffffffffffffff},
		{name: "no-prefix", input: "ff", lo: 0xff},
		{name: "zero", input: "0x0"},
		{name: "max", input: "0xffffffffffffffffffffffffffffffff", hi: ^uint64(0), lo: ^uint64(0)},
		{name: "too-wide", input: "0x1ffffffffffffffffffffffffffffffff", fails: true},
		{name: "empty", input: "0x", fails: true},
		{name: "not-hex", input: "0xzz", fails: true},
	}

	t.Log("Given the need to parse difficulty targets.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen parsing %q.", testID, tst.input)
				{
					target, err := pow.ParseTarget(tst.input)
					if tst.fails {
						if err == nil {
							t.Fatalf("\t%s\tTest %d:\tShould get an error.", failed, testID)
						}
						t.Logf("\t%s\tTest %d:\tShould get an error.", success, testID)
						return
					}

					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to parse: %v", failed, testID, err)
					}

					if target.Hi() != tst.hi || target.Lo() != tst.lo {
						t.Logf("\t%s\tTest %d:\tgot: %x %x", failed, testID, target.Hi(), target.Lo())
						t.Logf("\t%s\tTest %d:\texp: %x %x", failed, testID, tst.hi, tst.lo)
						t.Fatalf("\t%s\tTest %d:\tShould get the right value.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get the right value.", success, testID)

					back, err := pow.ParseTarget(target.String())
					if err != nil || back != target {
						t.Fatalf("\t%s\tTest %d:\tShould round trip through String.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould round trip through String.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func TestTargetBytes(t *testing.T) {
	t.Log("Given the need to encode a target.")
	{
		t.Logf("\tTest 0:\tWhen encoding a target with both halves set.")
		{
			b := pow.NewTarget(0x0807060504030201, 0x100f0e0d0c0b0a09).Bytes()

			exp := [16]byte{9, 10, 11, 12, 13, 14, 15, 16, 1, 2, 3, 4, 5, 6, 7, 8}
			if b != exp {
				t.Logf("\t%s\tTest 0:\tgot: %x", failed, b)
				t.Logf("\t%s\tTest 0:\texp: %x", failed, exp)
				t.Fatalf("\t%s\tTest 0:\tShould be little endian, low half first.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould be little endian, low half first.", success)
		}

		t.Logf("\tTest 1:\tWhen comparing targets.")
		{
			easy := pow.NewTarget(1, 0)
			hard := pow.NewTarget(0, ^uint64(0))

			if !easy.Easier(hard) || hard.Easier(easy) || easy.Easier(easy) {
				t.Fatalf("\t%s\tTest 1:\tShould order targets numerically.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould order targets numerically.", success)
		}
	}
}
