/*
Package cash keeps track of funds. It maintains one wallet per address and
moves value between wallets.

The multisig execution coordinator uses the Controller interface of this
package as its transfer collaborator: a vault is an address with a wallet,
and executing an approved action moves coins from the vault wallet to the
destination wallet. A transfer can fail, most notably when the vault does
not hold enough funds, and the coordinator reacts to that signal.
*/
package cash
