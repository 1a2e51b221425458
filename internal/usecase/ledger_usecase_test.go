package usecase_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
	"github.com/iho/bankledger/internal/usecase/mocks"
)

func TestLedgerUseCase_CheckConsistency(t *testing.T) {
	tests := []struct {
		name        string
		totals      *domain.LedgerTotals
		repoErr     error
		expectError error
	}{
		{
			name: "consistent ledger",
			totals: &domain.LedgerTotals{
				TotalBalance:     dec("1800"),
				TotalOpening:     dec("1500"),
				TotalDeposits:    dec("500"),
				TotalWithdrawals: dec("200"),
			},
		},
		{
			name: "balances drifted",
			totals: &domain.LedgerTotals{
				TotalBalance:     dec("1800.01"),
				TotalOpening:     dec("1500"),
				TotalDeposits:    dec("500"),
				TotalWithdrawals: dec("200"),
			},
			expectError: usecase.ErrInconsistentLedger,
		},
		{
			name: "negative account",
			totals: &domain.LedgerTotals{
				TotalBalance:     dec("1500"),
				TotalOpening:     dec("1500"),
				TotalDeposits:    dec("0"),
				TotalWithdrawals: dec("0"),
				NegativeAccounts: 1,
			},
			expectError: usecase.ErrInconsistentLedger,
		},
		{
			name:        "store failure",
			repoErr:     errors.New("timeout"),
			expectError: domain.ErrOperationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			ledgerRepo := mocks.NewMockLedgerRepository(ctrl)
			ledgerRepo.EXPECT().Totals(gomock.Any()).Return(tt.totals, tt.repoErr)

			report, err := usecase.NewLedgerUseCase(ledgerRepo).CheckConsistency(context.Background())

			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Fatalf("expected %v, got %v", tt.expectError, err)
				}
				if errors.Is(err, usecase.ErrInconsistentLedger) && (report == nil || report.Consistent) {
					t.Fatal("expected an inconsistent report alongside the error")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !report.Consistent || !report.ExpectedBalance.Equal(dec("1800")) {
				t.Fatalf("unexpected report %+v", report)
			}
		})
	}
}
