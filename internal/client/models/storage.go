package models

// StorageObjectReference pairs the content address of a blob with the ledger
// object tracking it, plus the retention parameters it was registered under.
// It is unusable before the register transaction succeeds.
type StorageObjectReference struct {
	BlobID   string `json:"blob_id"`
	ObjectID string `json:"object_id"`

	Epochs    uint64 `json:"epochs"`
	Deletable bool   `json:"deletable"`
	Owner     string `json:"owner"`
}

// EncryptedPayload is ciphertext bytes plus the opaque content id correlating
// them to the key-release policy on the ledger. Immutable once produced.
type EncryptedPayload struct {
	Ciphertext []byte
	ContentID  string
}
