package cash

import (
	"github.com/iov-one/mvault"
	"github.com/iov-one/mvault/coin"
	"github.com/iov-one/mvault/errors"
)

// Controller is the functionality needed by the execution coordinator to
// perform and observe transfers. BaseController should work plenty fine,
// but you can add other logic if so desired.
type Controller interface {
	// MoveCoins removes funds from the source wallet and adds them to
	// the destination wallet.
	MoveCoins(db mvault.KVStore, src, dest mvault.Address, amount coin.Coin) error

	// IssueCoins adds funds to the destination wallet out of thin air.
	IssueCoins(db mvault.KVStore, dest mvault.Address, amount coin.Coin) error

	// Balance returns the funds held by given address. A missing wallet
	// reports a zero balance.
	Balance(db mvault.KVStore, addr mvault.Address) (coin.Coin, error)
}

// BaseController implements a nothing-fancy Controller on top of a wallet
// bucket.
type BaseController struct {
	bucket WalletBucket
}

var _ Controller = BaseController{}

// NewController returns a base controller with a default wallet bucket.
func NewController() BaseController {
	return BaseController{bucket: NewWalletBucket()}
}

// MoveCoins moves the given amount from src to dest. If src doesn't exist,
// or doesn't have sufficient coins, it fails.
func (c BaseController) MoveCoins(db mvault.KVStore, src, dest mvault.Address, amount coin.Coin) error {
	if !amount.IsPositive() {
		return errors.Wrapf(errors.ErrInput, "non-positive transfer: %v", amount)
	}

	sender, err := c.bucket.Get(db, src)
	if err != nil {
		return err
	}
	if sender == nil {
		return errors.Wrapf(errors.ErrEmpty, "empty account %s", src)
	}
	if !sender.Balance.IsGTE(amount) {
		return errors.Wrapf(errors.ErrAmount, "insufficient funds: %v < %v",
			sender.Balance, amount)
	}

	recipient, err := c.bucket.GetOrCreate(db, dest, amount.Ticker)
	if err != nil {
		return err
	}

	sender.Balance, err = sender.Balance.Subtract(amount)
	if err != nil {
		return err
	}
	recipient.Balance, err = recipient.Balance.Add(amount)
	if err != nil {
		return err
	}

	// save them and return
	if err := c.bucket.Save(db, sender); err != nil {
		return err
	}
	return c.bucket.Save(db, recipient)
}

// IssueCoins attempts to add the given amount of coins to the destination
// address. Fails if it overflows the wallet.
func (c BaseController) IssueCoins(db mvault.KVStore, dest mvault.Address, amount coin.Coin) error {
	if !amount.IsPositive() {
		return errors.Wrapf(errors.ErrInput, "non-positive issue: %v", amount)
	}

	recipient, err := c.bucket.GetOrCreate(db, dest, amount.Ticker)
	if err != nil {
		return err
	}
	recipient.Balance, err = recipient.Balance.Add(amount)
	if err != nil {
		return err
	}

	return c.bucket.Save(db, recipient)
}

// Balance returns the amount held by given address. An address without a
// wallet record holds zero of an unknown currency.
func (c BaseController) Balance(db mvault.KVStore, addr mvault.Address) (coin.Coin, error) {
	w, err := c.bucket.Get(db, addr)
	if err != nil {
		return coin.Coin{}, err
	}
	if w == nil {
		return coin.Coin{}, nil
	}
	return w.Balance, nil
}
