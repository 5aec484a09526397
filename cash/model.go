package cash

import (
	amino "github.com/tendermint/go-amino"

	"github.com/iov-one/mvault"
	"github.com/iov-one/mvault/coin"
	"github.com/iov-one/mvault/errors"
)

// walletPrefix is the key namespace all wallet records are stored under.
const walletPrefix = "cash:"

// Wallet is the state of funds held by a single address.
type Wallet struct {
	Address mvault.Address
	Balance coin.Coin
}

// Validate ensures the wallet can be persisted.
func (w *Wallet) Validate() error {
	if err := w.Address.Validate(); err != nil {
		return errors.Wrap(err, "address")
	}
	if err := w.Balance.Validate(); err != nil {
		return errors.Wrap(err, "balance")
	}
	if !w.Balance.IsNonNegative() {
		return errors.Wrap(errors.ErrModel, "negative balance")
	}
	return nil
}

// WalletBucket stores wallet records in a KVStore, one per address.
type WalletBucket struct {
	cdc *amino.Codec
}

// NewWalletBucket returns a bucket for wallet records.
func NewWalletBucket() WalletBucket {
	return WalletBucket{cdc: amino.NewCodec()}
}

func walletKey(addr mvault.Address) []byte {
	return append([]byte(walletPrefix), addr...)
}

// Get loads the wallet of given address or returns nil if there is none.
func (b WalletBucket) Get(db mvault.KVStore, addr mvault.Address) (*Wallet, error) {
	raw := db.Get(walletKey(addr))
	if raw == nil {
		return nil, nil
	}
	var w Wallet
	if err := b.cdc.UnmarshalBinaryBare(raw, &w); err != nil {
		return nil, errors.Wrap(err, "cannot decode wallet")
	}
	return &w, nil
}

// GetOrCreate loads the wallet of given address, creating an empty one
// with the given ticker if it does not exist yet.
func (b WalletBucket) GetOrCreate(db mvault.KVStore, addr mvault.Address, ticker string) (*Wallet, error) {
	w, err := b.Get(db, addr)
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = &Wallet{
			Address: addr.Clone(),
			Balance: coin.NewCoin(0, 0, ticker),
		}
	}
	return w, nil
}

// Save persists the wallet state.
func (b WalletBucket) Save(db mvault.KVStore, w *Wallet) error {
	if err := w.Validate(); err != nil {
		return errors.Wrap(err, "invalid wallet")
	}
	raw, err := b.cdc.MarshalBinaryBare(w)
	if err != nil {
		return errors.Wrap(err, "cannot encode wallet")
	}
	db.Set(walletKey(w.Address), raw)
	return nil
}
