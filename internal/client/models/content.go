package models

import (
	"strings"

	"github.com/dmitrijs2005/sealstream/internal/common"
)

// ContentMetadata is the display and marketplace metadata attached to a
// published object via the ledger's content-record entry point.
type ContentMetadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`

	// Marketplace terms. Price is in the ledger's smallest coin unit,
	// TTL in milliseconds, Scarcity is the max copies (0 = unlimited).
	Price    uint64 `json:"price"`
	TTLMs    uint64 `json:"ttl_ms"`
	Scarcity uint64 `json:"scarcity"`
}

// Validate checks the fields required before any pipeline work starts.
func (m ContentMetadata) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return common.ErrInvalidInput
	}
	if strings.TrimSpace(m.Description) == "" {
		return common.ErrInvalidInput
	}
	return nil
}
