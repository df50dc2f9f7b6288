package digest_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/ardanlabs/powchain/foundation/blockchain/digest"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type label string

func (l label) Bytes() []byte {
	return []byte(l)
}

// =============================================================================

func TestSum(t *testing.T) {
	type table struct {
		name string
		data string
		hex  string
	}

	tt := []table{
		{
			name: "empty",
			data: "",
			hex:  "0xe3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name: "abc",
			data: "abc",
			hex:  "0xba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		},
	}

	t.Log("Given the need to hash data.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen hashing %q.", testID, tst.data)
				{
					d := digest.Of(label(tst.data))
					if d.Hex() != tst.hex {
						t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, d.Hex())
						t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.hex)
						t.Fatalf("\t%s\tTest %d:\tShould get the SHA-256 digest.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get the SHA-256 digest.", success, testID)

					if digest.Sum([]byte(tst.data)) != d {
						t.Fatalf("\t%s\tTest %d:\tShould get the same digest from Sum and Of.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get the same digest from Sum and Of.", success, testID)

					back, err := digest.FromHex(d.Hex())
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to parse the hex form: %v", failed, testID, err)
					}
					if back != d {
						t.Fatalf("\t%s\tTest %d:\tShould parse back to the same digest.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould parse back to the same digest.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func TestFromHexErrors(t *testing.T) {
	t.Log("Given the need to reject malformed digests.")
	{
		for testID, s := range []string{"", "abc", "0x1234", "0xzz"} {
			t.Logf("\tTest %d:\tWhen parsing %q.", testID, s)
			{
				if _, err := digest.FromHex(s); err == nil {
					t.Fatalf("\t%s\tTest %d:\tShould get an error.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould get an error.", success, testID)
			}
		}
	}
}

func TestEncoder(t *testing.T) {
	t.Log("Given the need to build a canonical encoding.")
	{
		t.Logf("\tTest 0:\tWhen encoding integers, strings and digests.")
		{
			d := digest.Sum([]byte("x"))

			got := digest.NewEncoder(64).
				Uint64(1).
				String("ab").
				Digest(d).
				Raw([]byte{0xff}).
				Bytes()

			exp := []byte{1, 0, 0, 0, 0, 0, 0, 0, 'a', 'b'}
			exp = append(exp, d[:]...)
			exp = append(exp, 0xff)

			if !bytes.Equal(got, exp) {
				t.Logf("\t%s\tTest 0:\tgot: %x", failed, got)
				t.Logf("\t%s\tTest 0:\texp: %x", failed, exp)
				t.Fatalf("\t%s\tTest 0:\tShould write little endian fields in order.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould write little endian fields in order.", success)
		}

		t.Logf("\tTest 1:\tWhen marshaling a digest to JSON.")
		{
			d := digest.Sum([]byte("json"))

			data, err := json.Marshal(struct {
				Hash digest.Digest `json:"hash"`
			}{d})
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to marshal: %v", failed, err)
			}

			var v struct {
				Hash digest.Digest `json:"hash"`
			}
			if err := json.Unmarshal(data, &v); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to unmarshal: %v", failed, err)
			}

			if v.Hash != d {
				t.Fatalf("\t%s\tTest 1:\tShould round trip through the hex text form.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould round trip through the hex text form.", success)
		}
	}
}
