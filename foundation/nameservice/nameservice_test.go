package nameservice_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/nameservice"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func TestLookup(t *testing.T) {
	t.Log("Given the need to display addresses by name.")
	{
		t.Logf("\tTest 0:\tWhen names are loaded from a file.")
		{
			path := filepath.Join(t.TempDir(), "names")
			if err := os.WriteFile(path, []byte("# accounts\nxavier\n\n  yolanda  \n"), 0600); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to write the names file: %v", failed, err)
			}

			ns, err := nameservice.Load(path, "Genesis Block")
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to load the names file: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to load the names file.", success)

			if n := len(ns.Copy()); n != 3 {
				t.Fatalf("\t%s\tTest 0:\tShould know 3 names, got %d.", failed, n)
			}
			t.Logf("\t%s\tTest 0:\tShould know 3 names.", success)

			for _, label := range []string{"Genesis Block", "xavier", "yolanda"} {
				if got := ns.Lookup(database.ToAddress(label)); got != label {
					t.Fatalf("\t%s\tTest 0:\tShould resolve %q, got %q.", failed, label, got)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould resolve every label.", success)

			unknown := database.ToAddress("zoe")
			if got := ns.Lookup(unknown); got != string(unknown) {
				t.Fatalf("\t%s\tTest 0:\tShould return an unknown address as is, got %q.", failed, got)
			}
			t.Logf("\t%s\tTest 0:\tShould return an unknown address as is.", success)
		}

		t.Logf("\tTest 1:\tWhen the names file doesn't exist.")
		{
			if _, err := nameservice.Load(filepath.Join(t.TempDir(), "missing")); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould fail to load.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould fail to load.", success)
		}
	}
}
