package sqlite

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/stampcard/card"
)

// cardModel is the SQLite row representation of a loyalty card.
type cardModel struct {
	grove.BaseModel `grove:"table:stampcard_cards"`

	ID               string    `grove:"id,pk"`
	CustomerID       string    `grove:"customer_id"`
	CustomerName     string    `grove:"customer_name"`
	CustomerEmail    string    `grove:"customer_email"`
	CafeUserID       string    `grove:"cafe_user_id"`
	CurrentStamps    int       `grove:"current_stamps"`
	TotalStamps      int       `grove:"total_stamps"`
	AvailableRewards int       `grove:"available_rewards"`
	TotalRedeemed    int       `grove:"total_redeemed"`
	Pinned           bool      `grove:"pinned"`
	IssueDate        time.Time `grove:"issue_date"`
	LastStampDate    time.Time `grove:"last_stamp_date"`
	History          string    `grove:"history"`
	Schema           int       `grove:"schema"`
	Version          int64     `grove:"version"`
	CreatedAt        time.Time `grove:"created_at"`
	UpdatedAt        time.Time `grove:"updated_at"`
}

func toCardModel(c *card.Card) *cardModel {
	return &cardModel{
		ID:               c.ID,
		CustomerID:       c.CustomerID,
		CustomerName:     c.CustomerName,
		CustomerEmail:    c.CustomerEmail,
		CafeUserID:       c.CafeUserID,
		CurrentStamps:    c.CurrentStamps,
		TotalStamps:      c.TotalStamps,
		AvailableRewards: c.AvailableRewards,
		TotalRedeemed:    c.TotalRedeemed,
		Pinned:           c.Pinned,
		IssueDate:        c.IssueDate,
		LastStampDate:    c.LastStampDate,
		History:          c.History,
		Schema:           c.Schema,
		Version:          c.Version,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

func fromCardModel(m *cardModel) *card.Card {
	c := &card.Card{
		ID:               m.ID,
		CustomerID:       m.CustomerID,
		CustomerName:     m.CustomerName,
		CustomerEmail:    m.CustomerEmail,
		CafeUserID:       m.CafeUserID,
		CurrentStamps:    m.CurrentStamps,
		TotalStamps:      m.TotalStamps,
		AvailableRewards: m.AvailableRewards,
		TotalRedeemed:    m.TotalRedeemed,
		Pinned:           m.Pinned,
		IssueDate:        m.IssueDate,
		LastStampDate:    m.LastStampDate,
		History:          m.History,
		Schema:           m.Schema,
		Version:          m.Version,
	}
	c.CreatedAt = m.CreatedAt
	c.UpdatedAt = m.UpdatedAt
	return c
}
