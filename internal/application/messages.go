package application

import (
	"time"

	"foliotrack/internal/domain"
)

// Message is what background work publishes for the UI loop to apply. The
// concrete types below are the only implementations; the unexported marker
// keeps the set closed so the consumer switch stays exhaustive.
type Message interface {
	isMessage()
}

// RowUpdate carries a refreshed price and derived figures for one holding.
type RowUpdate struct {
	Index        int
	Symbol       string
	CurrentPrice domain.Decimal
	ProfitLoss   domain.Decimal
	DaysOwned    int
	HasDays      bool
}

// TotalsUpdate carries portfolio-wide figures after a refresh.
type TotalsUpdate struct {
	TotalPL    domain.Decimal
	TotalValue domain.Decimal
	At         time.Time
}

// NameUpdate carries a resolved company name for one holding.
type NameUpdate struct {
	Index  int
	Symbol string
	Name   string
}

// StatusUpdate toggles the busy indicator around a refresh.
type StatusUpdate struct {
	Updating bool
}

// PortfolioChanged tells the UI to rebuild its rows after a holding was
// added or removed.
type PortfolioChanged struct {
	Holdings []domain.Holding
}

// CommentaryReady delivers a generated portfolio commentary.
type CommentaryReady struct {
	Text string
}

// LogLine appends one line to the UI log view.
type LogLine struct {
	Text string
}

func (RowUpdate) isMessage()        {}
func (TotalsUpdate) isMessage()     {}
func (NameUpdate) isMessage()       {}
func (StatusUpdate) isMessage()     {}
func (PortfolioChanged) isMessage() {}
func (CommentaryReady) isMessage()  {}
func (LogLine) isMessage()          {}
