package dto

import (
	"strings"

	"github.com/shopspring/decimal"
)

type InitiatePayment struct {
	MerchantID     string          `json:"merchant_id"`
	TerminalID     string          `json:"terminal_id"`
	Amount         decimal.Decimal `json:"amount"`
	TransactionRef string          `json:"transaction_ref"`
	CallbackURL    string          `json:"callback_url"`
}

func (p *InitiatePayment) Sanitize() {
	p.MerchantID = strings.TrimSpace(p.MerchantID)
	p.TerminalID = strings.TrimSpace(p.TerminalID)
	p.TransactionRef = strings.TrimSpace(p.TransactionRef)
	p.CallbackURL = strings.TrimSpace(p.CallbackURL)
}

type CompletePayment struct {
	SessionID           string          `json:"session_id"`
	FromAccount         string          `json:"from_account"`
	MerchantID          string          `json:"merchant_id"`
	Amount              decimal.Decimal `json:"amount"`
	SourceRoutingNumber string          `json:"source_routing_number"`
}

func (p *CompletePayment) Sanitize() {
	p.SessionID = strings.TrimSpace(p.SessionID)
	p.FromAccount = strings.TrimSpace(p.FromAccount)
	p.MerchantID = strings.TrimSpace(p.MerchantID)
	p.SourceRoutingNumber = strings.TrimSpace(p.SourceRoutingNumber)
}

type CancelPayment struct {
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
}

func (p *CancelPayment) Sanitize() {
	p.SessionID = strings.TrimSpace(p.SessionID)
	p.Reason = strings.TrimSpace(p.Reason)
}

type UpdateStatus struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func (p *UpdateStatus) Sanitize() {
	p.Status = strings.ToUpper(strings.TrimSpace(p.Status))
	p.Reason = strings.TrimSpace(p.Reason)
}
