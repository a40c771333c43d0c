package monitor

import "time"

type Status struct {
	PostgreSQL   bool      `json:"postgresql"`
	Redis        bool      `json:"redis"`
	OutboundOK   bool      `json:"outbound"`
	OutboundSize int       `json:"outbound_size"`
	LastCheck    time.Time `json:"last_check"`
}
