// Package nameservice maps well known labels to the addresses derived from
// them so balances and blocks can be displayed with readable names.
package nameservice

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// NameService maintains a map of addresses for name lookup.
type NameService struct {
	addresses map[database.Address]string
}

// New constructs a name service knowing the specified labels.
func New(labels ...string) *NameService {
	ns := NameService{
		addresses: make(map[database.Address]string, len(labels)),
	}

	for _, label := range labels {
		ns.Add(label)
	}

	return &ns
}

// Load constructs a name service from a file holding one label per line.
// Blank lines and lines starting with # are skipped.
func Load(path string, labels ...string) (*NameService, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open names file: %w", err)
	}
	defer f.Close()

	ns := New(labels...)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		label := strings.TrimSpace(scanner.Text())
		if label == "" || strings.HasPrefix(label, "#") {
			continue
		}

		ns.Add(label)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read names file: %w", err)
	}

	return ns, nil
}

// Add registers the label and returns the address derived from it.
func (ns *NameService) Add(label string) database.Address {
	address := database.ToAddress(label)
	ns.addresses[address] = label

	return address
}

// Lookup returns the name for the specified address. An unknown address is
// returned as is.
func (ns *NameService) Lookup(address database.Address) string {
	name, exists := ns.addresses[address]
	if !exists {
		return string(address)
	}
	return name
}

// Copy returns a copy of the map of addresses and names.
func (ns *NameService) Copy() map[database.Address]string {
	cpy := make(map[database.Address]string, len(ns.addresses))
	for address, name := range ns.addresses {
		cpy[address] = name
	}
	return cpy
}
