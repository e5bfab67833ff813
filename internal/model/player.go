package model

import "github.com/google/uuid"

// Player represents a participant in a single game.
// Players are owned by the game they joined and are never shared
// across games.
type Player struct {
	ID           uuid.UUID
	DisplayName  string
	EmailAddress string
	Voucher      string // empty when no voucher was claimed
	IsBanned     bool
}

// Ban marks the player as banned. Banned players stay in the roster
// but are excluded from externally visible projections.
func (p *Player) Ban() {
	p.IsBanned = true
}

// SetVoucher records the voucher claimed for this player
func (p *Player) SetVoucher(voucher string) {
	p.Voucher = voucher
}
