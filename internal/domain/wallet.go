package domain

// Wallet is one entry of the wallet directory. Address may be empty;
// such wallets still participate in name lookups.
type Wallet struct {
	ID      string
	Name    string
	Address string
}

// WalletDirectory indexes wallets by address, name and id. Names are a
// join key for Stage 2 and 3, so construction rejects duplicates
// instead of silently taking the first match.
type WalletDirectory struct {
	byAddress map[string]string
	byName    map[string]Wallet
	byID      map[string]Wallet
}

// NewWalletDirectory builds a directory from directory rows. Duplicate
// ids or duplicate non-empty names fail the whole load with a
// ValidationError.
func NewWalletDirectory(wallets []Wallet) (*WalletDirectory, error) {
	d := &WalletDirectory{
		byAddress: make(map[string]string, len(wallets)),
		byName:    make(map[string]Wallet, len(wallets)),
		byID:      make(map[string]Wallet, len(wallets)),
	}

	var dups []string
	for _, w := range wallets {
		if _, ok := d.byID[w.ID]; ok {
			dups = append(dups, "ID "+w.ID)
			continue
		}
		if w.Name != "" {
			if _, ok := d.byName[w.Name]; ok {
				dups = append(dups, "Name "+w.Name)
				continue
			}
			d.byName[w.Name] = w
		}
		d.byID[w.ID] = w
		if w.Address != "" {
			d.byAddress[w.Address] = w.Name
		}
	}

	if len(dups) > 0 {
		return nil, &ValidationError{Table: TableWallets, Duplicates: dups}
	}

	return d, nil
}

// NameForAddress resolves a destination address to a wallet name.
func (d *WalletDirectory) NameForAddress(address string) (string, bool) {
	name, ok := d.byAddress[address]
	return name, ok
}

// ByName looks a wallet up by its (unique) name.
func (d *WalletDirectory) ByName(name string) (Wallet, bool) {
	w, ok := d.byName[name]
	return w, ok
}

// ByID looks a wallet up by its id.
func (d *WalletDirectory) ByID(id string) (Wallet, bool) {
	w, ok := d.byID[id]
	return w, ok
}

// Len returns the number of wallets in the directory.
func (d *WalletDirectory) Len() int {
	return len(d.byID)
}

// VestingPair routes vesting outflows: tokens leaving the originating
// wallet are credited to its beneficiary wallet.
type VestingPair struct {
	Originating string
	Beneficiary string
}

// VestingPairTable maps originating wallet names to beneficiary wallet
// names. The mapping is assumed one-to-one; duplicate originating names
// fail construction.
type VestingPairTable struct {
	byOriginating map[string]string
}

// NewVestingPairTable builds the pair table, rejecting duplicate
// originating wallet names with a ValidationError.
func NewVestingPairTable(pairs []VestingPair) (*VestingPairTable, error) {
	t := &VestingPairTable{byOriginating: make(map[string]string, len(pairs))}

	var dups []string
	for _, p := range pairs {
		if _, ok := t.byOriginating[p.Originating]; ok {
			dups = append(dups, "Originating Wallet "+p.Originating)
			continue
		}
		t.byOriginating[p.Originating] = p.Beneficiary
	}

	if len(dups) > 0 {
		return nil, &ValidationError{Table: TableVestingPairs, Duplicates: dups}
	}

	return t, nil
}

// Beneficiary returns the beneficiary wallet name for an originating
// wallet name.
func (t *VestingPairTable) Beneficiary(originating string) (string, bool) {
	b, ok := t.byOriginating[originating]
	return b, ok
}

// Len returns the number of pairs in the table.
func (t *VestingPairTable) Len() int {
	return len(t.byOriginating)
}
