package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTRStatusTransitions(t *testing.T) {
	t.Run("черновик", func(t *testing.T) {
		require.True(t, TRStatusDraft.IsAllowChange(TRStatusPendingApproval))
		require.True(t, TRStatusDraft.IsAllowChange(TRStatusApproved)) // автоодобрение без политики
		require.True(t, TRStatusDraft.IsAllowChange(TRStatusCancelled))
		require.False(t, TRStatusDraft.IsAllowChange(TRStatusRejected))
	})

	t.Run("на согласовании", func(t *testing.T) {
		require.True(t, TRStatusPendingApproval.IsAllowChange(TRStatusApproved))
		require.True(t, TRStatusPendingApproval.IsAllowChange(TRStatusRejected))
		require.True(t, TRStatusPendingApproval.IsAllowChange(TRStatusCancelled))
		require.False(t, TRStatusPendingApproval.IsAllowChange(TRStatusDraft))
	})

	t.Run("терминальные статусы", func(t *testing.T) {
		for _, status := range []TRStatus{TRStatusApproved, TRStatusRejected, TRStatusCancelled} {
			require.True(t, status.IsTerminal(), string(status))
			require.False(t, status.IsAllowChange(TRStatusPendingApproval), string(status))
			require.False(t, status.AllowDecision(), string(status))
			require.False(t, status.AllowCancel(), string(status))
		}
	})

	t.Run("решения и отмена", func(t *testing.T) {
		require.True(t, TRStatusPendingApproval.AllowDecision())
		require.False(t, TRStatusDraft.AllowDecision())
		require.True(t, TRStatusDraft.AllowCancel())
		require.True(t, TRStatusPendingApproval.AllowCancel())
	})
}

func TestApproverRolesByLevel(t *testing.T) {
	require.Equal(t, []CompanyRole{CompanyRoleManager, CompanyRoleAdmin}, ApproverRolesByLevel[ApprovalLevelManager])
	require.Equal(t, []CompanyRole{CompanyRoleFinance}, ApproverRolesByLevel[ApprovalLevelFinance])
}

func TestTripTypeValidate(t *testing.T) {
	require.NoError(t, TripTypeOneWay.Validate())
	require.NoError(t, TripType("").Validate())
	require.ErrorIs(t, TripType("cruise").Validate(), ErrUnknownTripType)
}
