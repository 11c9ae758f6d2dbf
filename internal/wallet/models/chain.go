package models

// Block is a read-only projection of one mined block. The client never
// mutates blocks, only lists and displays them.
type Block struct {
	Index        int64    `json:"index"`
	Hash         string   `json:"hash"`
	PreviousHash string   `json:"previous_hash"`
	Nonce        int64    `json:"nonce"`
	Difficulty   int      `json:"difficulty"`
	Timestamp    int64    `json:"timestamp"`
	Transactions []string `json:"transactions"`
}

// ChainView is the full chain listing plus its reported length.
type ChainView struct {
	Length int64   `json:"chain_length"`
	Blocks []Block `json:"blocks"`
}

// ChainStatus is the result of a chain validation probe.
type ChainStatus struct {
	Valid  bool  `json:"valid"`
	Length int64 `json:"chain_length"`
}
