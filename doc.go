/*
Package mvault defines the shared types for the mvault multi-party
authorization engine.

A vault is controlled by a fixed set of owners. Any transfer of value out
of the vault must be approved by a configured quorum of those owners before
it is performed. The root package holds only the types that every other
package needs: the Address identifier and the key-value storage interfaces.

The engine itself lives in the multisig package. Supporting packages:

	errors   - coded errors with stack traces
	coin     - transfer amount value type
	store    - btree backed in-memory KVStore
	cash     - funds ledger, the transfer collaborator
	multisig - registry, action log, approval tracking, execution
*/
package mvault
