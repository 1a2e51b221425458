package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestLedgerTotals_Consistent(t *testing.T) {
	totals := &LedgerTotals{
		TotalBalance:     decimal.NewFromInt(1700),
		TotalOpening:     decimal.NewFromInt(1500),
		TotalDeposits:    decimal.NewFromInt(500),
		TotalWithdrawals: decimal.NewFromInt(300),
	}

	if !totals.Consistent() {
		t.Fatalf("expected consistent ledger, expected balance %s", totals.ExpectedBalance())
	}

	totals.TotalBalance = decimal.NewFromInt(1699)
	if totals.Consistent() {
		t.Fatal("expected mismatch to be inconsistent")
	}

	totals.TotalBalance = decimal.NewFromInt(1700)
	totals.NegativeAccounts = 1
	if totals.Consistent() {
		t.Fatal("expected negative account to be inconsistent")
	}
}

func TestAccountFlows_CalculatedBalance(t *testing.T) {
	flows := &AccountFlows{
		OpeningBalance: decimal.NewFromInt(1000),
		TotalIn:        decimal.NewFromInt(550),
		TotalOut:       decimal.NewFromInt(675),
	}

	if got := flows.CalculatedBalance(); !got.Equal(decimal.NewFromInt(875)) {
		t.Fatalf("expected 875, got %s", got)
	}
}
