package mongo

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/stampcard/card"
	"github.com/xraph/stampcard/types"
)

type cardModel struct {
	grove.BaseModel `grove:"table:stampcard_cards"`

	ID            string    `grove:"id,pk"          bson:"_id"`
	CustomerID    string    `grove:"customer_id"    bson:"customer_id"`
	CustomerName  string    `grove:"customer_name"  bson:"customer_name"`
	CustomerEmail string    `grove:"customer_email" bson:"customer_email"`
	CafeUserID    string    `grove:"cafe_user_id"   bson:"cafe_user_id"`
	CurrentStamps int       `grove:"current_stamps" bson:"current_stamps"`
	TotalStamps   int       `grove:"total_stamps"   bson:"total_stamps"`
	Available     int       `grove:"available_rewards" bson:"available_rewards"`
	TotalRedeemed int       `grove:"total_redeemed" bson:"total_redeemed"`
	Pinned        bool      `grove:"pinned"         bson:"pinned"`
	IssueDate     time.Time `grove:"issue_date"     bson:"issue_date"`
	LastStampDate time.Time `grove:"last_stamp_date" bson:"last_stamp_date"`
	History       string    `grove:"history"        bson:"history"`
	Schema        int       `grove:"schema"         bson:"schema"`
	Version       int64     `grove:"version"        bson:"version"`
	CreatedAt     time.Time `grove:"created_at"     bson:"created_at"`
	UpdatedAt     time.Time `grove:"updated_at"     bson:"updated_at"`
}

func toCardModel(c *card.Card) *cardModel {
	return &cardModel{
		ID:            c.ID,
		CustomerID:    c.CustomerID,
		CustomerName:  c.CustomerName,
		CustomerEmail: c.CustomerEmail,
		CafeUserID:    c.CafeUserID,
		CurrentStamps: c.CurrentStamps,
		TotalStamps:   c.TotalStamps,
		Available:     c.AvailableRewards,
		TotalRedeemed: c.TotalRedeemed,
		Pinned:        c.Pinned,
		IssueDate:     c.IssueDate,
		LastStampDate: c.LastStampDate,
		History:       c.History,
		Schema:        c.Schema,
		Version:       c.Version,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func fromCardModel(m *cardModel) *card.Card {
	return &card.Card{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:               m.ID,
		CustomerID:       m.CustomerID,
		CustomerName:     m.CustomerName,
		CustomerEmail:    m.CustomerEmail,
		CafeUserID:       m.CafeUserID,
		CurrentStamps:    m.CurrentStamps,
		TotalStamps:      m.TotalStamps,
		AvailableRewards: m.Available,
		TotalRedeemed:    m.TotalRedeemed,
		Pinned:           m.Pinned,
		IssueDate:        m.IssueDate,
		LastStampDate:    m.LastStampDate,
		History:          m.History,
		Schema:           m.Schema,
		Version:          m.Version,
	}
}
