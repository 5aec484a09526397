/*
Package multisig implements the multi-party authorization engine.

A Vault is controlled by a fixed registry of owners with a quorum
threshold. Owners submit actions (transfer of a coin amount to a
destination address) and confirm them. Once the number of distinct
confirmations reaches the quorum, the action is executed exactly once by
moving funds out of the vault wallet. A failed transfer returns the action
to the pending state with all confirmations preserved, so it can be
retried later.

Approval accounting is pluggable: the default BitmaskTracker stores one
bitset per action, the alternative SetTracker stores one record per
(action, owner) pair. Both expose identical behavior.
*/
package multisig
