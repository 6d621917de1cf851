package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

type transactionResponse struct {
	ID          uuid.UUID        `json:"id"`
	Date        string           `json:"date"`
	Description string           `json:"description"`
	Amount      string           `json:"amount"`
	Kind        transaction.Type `json:"kind"`
	Category    string           `json:"category"`
	CreatedAt   *time.Time       `json:"created_at,omitempty"`
	UpdatedAt   *time.Time       `json:"updated_at,omitempty"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:          tx.ID,
		Date:        tx.Date.Format(time.DateOnly),
		Description: tx.Description,
		Amount:      tx.Amount.StringFixed(2),
		Kind:        tx.Type,
		Category:    tx.Category,
		UpdatedAt:   tx.UpdatedAt,
	}

	if !tx.CreatedAt.IsZero() {
		resp.CreatedAt = new(tx.CreatedAt)
	}

	return resp
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}
