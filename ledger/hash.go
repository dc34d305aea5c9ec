package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Seal computes the content hash of a block from its five sealed fields. It is
// pure and deterministic: the same inputs always produce the same digest.
//
// The canonical byte string is the concatenation of index, timestamp, the
// canonical JSON encoding of the transactions, the previous hash and the
// nonce. Canonicalization is a frozen contract: changing it after ledgers
// exist on disk would break verification of all historical blocks.
func Seal(index int, timestamp string, transactions []TransactionRecord, previousHash string, nonce uint64) string {
	data := fmt.Sprintf("%d%s%s%s%d", index, timestamp, canonicalJSON(transactions), previousHash, nonce)
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// canonicalJSON encodes the transactions with object keys in lexicographic
// order so that semantically identical records always produce identical
// bytes. encoding/json guarantees sorted keys for maps, so the records are
// round-tripped through generic maps before the final encoding.
func canonicalJSON(transactions []TransactionRecord) string {
	raw, _ := json.Marshal(transactions)

	var generic []map[string]any
	_ = json.Unmarshal(raw, &generic)

	out, _ := json.Marshal(generic)
	return string(out)
}
