package economy

import "github.com/pixil98/go-realm/internal/storage"

type BankOpt func(*Bank)

// WithAccountStore persists user accounts through s.
func WithAccountStore(s storage.Storer[*Account]) BankOpt {
	return func(b *Bank) {
		b.store = s
	}
}

// WithReceiptValidator checks cash package receipts with v.
func WithReceiptValidator(v ReceiptValidator) BankOpt {
	return func(b *Bank) {
		b.receipts = v
	}
}
