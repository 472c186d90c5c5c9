package dto

import (
	"strings"

	"github.com/shopspring/decimal"
)

type MarkSettlement struct {
	SettlementID    string          `json:"settlement_id"`
	MerchantID      string          `json:"merchant_id"`
	TransactionRefs []string        `json:"transaction_refs"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	TotalFees       decimal.Decimal `json:"total_fees"`
	TotalNetAmount  decimal.Decimal `json:"total_net_amount"`
}

func (p *MarkSettlement) Sanitize() {
	p.SettlementID = strings.TrimSpace(p.SettlementID)
	p.MerchantID = strings.TrimSpace(p.MerchantID)
	refs := p.TransactionRefs[:0]
	for _, ref := range p.TransactionRefs {
		if ref = strings.TrimSpace(ref); ref != "" {
			refs = append(refs, ref)
		}
	}
	p.TransactionRefs = refs
}
