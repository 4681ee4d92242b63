package stocktake

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storeops/internal/core/apperror"
	"storeops/internal/core/id"
	"storeops/internal/domain/catalog"
)

func draftCheck(t *testing.T) *Check {
	t.Helper()
	return NewCheck("u-1", "weekly count", "IC-20260829-AAAAAA", []catalog.Product{
		{ID: id.New(), Name: "Cola 330ml", Quantity: 10},
		{ID: id.New(), Name: "Chips", Quantity: 5},
	})
}

func TestNewCheck(t *testing.T) {
	chk := draftCheck(t)

	assert.Equal(t, StatusDraft, chk.Status)
	assert.Equal(t, "u-1", chk.CreatedBy)
	assert.Equal(t, 1, chk.Version)
	assert.Equal(t, 2, chk.TotalProducts)
	assert.Zero(t, chk.CheckedProducts)
	for _, it := range chk.Items {
		assert.False(t, it.Checked)
		assert.Nil(t, it.ActualQuantity)
		assert.Zero(t, it.Difference)
	}
}

func TestEnsureStatus_Table(t *testing.T) {
	ops := []Operation{OpUpdateItem, OpSaveDraft, OpSubmit, OpApprove, OpReject, OpDelete}

	allowed := map[Status]map[Operation]bool{
		StatusDraft:     {OpUpdateItem: true, OpSaveDraft: true, OpSubmit: true, OpDelete: true},
		StatusSubmitted: {OpApprove: true, OpReject: true},
		StatusApproved:  {}, // terminal
		StatusRejected:  {}, // terminal
	}

	for status, ok := range allowed {
		for _, op := range ops {
			chk := draftCheck(t)
			chk.Status = status

			err := chk.EnsureStatus(op)
			if ok[op] {
				assert.NoError(t, err, "%s from %s", op, status)
				continue
			}
			require.Error(t, err, "%s from %s", op, status)
			appErr, isApp := apperror.AsAppError(err)
			require.True(t, isApp)
			assert.Equal(t, apperror.CodeInvalidState, appErr.Code)
		}
	}
}

func TestApplyItemCount_MergesNoteAndReason(t *testing.T) {
	chk := draftCheck(t)
	pid := chk.Items[0].ProductID

	note := "shelf 3"
	reason := "recount"
	require.NoError(t, chk.ApplyItemCount(pid, qty(12), &note, &reason))
	assert.Equal(t, "shelf 3", chk.Items[0].Note)
	assert.Equal(t, "recount", chk.Items[0].Reason)

	// nil and empty leave existing values untouched
	empty := ""
	require.NoError(t, chk.ApplyItemCount(pid, qty(11), nil, &empty))
	assert.Equal(t, "shelf 3", chk.Items[0].Note)
	assert.Equal(t, "recount", chk.Items[0].Reason)
}

func TestApplyItemCount_UnknownProduct(t *testing.T) {
	chk := draftCheck(t)

	err := chk.ApplyItemCount(id.New(), qty(1), nil, nil)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestMergeDraft(t *testing.T) {
	chk := draftCheck(t)
	a, b := chk.Items[0].ProductID, chk.Items[1].ProductID

	err := chk.MergeDraft([]DraftItem{
		{ProductID: a, ActualQuantity: qty(12), Reason: "recount"},
		{ProductID: b, ActualQuantity: qty(5)},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, chk.CheckedProducts)
	assert.Equal(t, 1, chk.Matched)
	assert.Equal(t, 1, chk.Over)
	assert.Equal(t, int64(2), chk.Items[0].Difference)
	// baseline survives the bulk replace
	assert.Equal(t, int64(10), chk.Items[0].SystemQuantity)
}

func TestMergeDraft_UnknownProduct(t *testing.T) {
	chk := draftCheck(t)

	err := chk.MergeDraft([]DraftItem{{ProductID: id.New(), ActualQuantity: qty(1)}})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestMissingReasons(t *testing.T) {
	chk := draftCheck(t)
	a, b := chk.Items[0].ProductID, chk.Items[1].ProductID

	require.NoError(t, chk.ApplyItemCount(a, qty(12), nil, nil)) // diff, no reason
	require.NoError(t, chk.ApplyItemCount(b, qty(5), nil, nil))  // matched
	assert.Equal(t, 1, chk.MissingReasons())

	// whitespace is not a reason
	blank := "   "
	require.NoError(t, chk.ApplyItemCount(a, qty(12), nil, &blank))
	assert.Equal(t, 1, chk.MissingReasons())

	reason := "recount"
	require.NoError(t, chk.ApplyItemCount(a, qty(12), nil, &reason))
	assert.Zero(t, chk.MissingReasons())
}

func TestLifecycleMarkers(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	chk := draftCheck(t)
	chk.MarkSubmitted(now)
	assert.Equal(t, StatusSubmitted, chk.Status)
	require.NotNil(t, chk.SubmittedAt)
	assert.Equal(t, now, *chk.SubmittedAt)

	chk.MarkApproved("mgr-1", now)
	assert.Equal(t, StatusApproved, chk.Status)
	require.NotNil(t, chk.ApprovedBy)
	assert.Equal(t, "mgr-1", *chk.ApprovedBy)

	other := draftCheck(t)
	other.MarkSubmitted(now)
	other.MarkRejected("mgr-2", "price tag mismatch", now)
	assert.Equal(t, StatusRejected, other.Status)
	assert.Equal(t, "price tag mismatch", other.RejectReason)
	require.NotNil(t, other.RejectedBy)
	assert.Equal(t, "mgr-2", *other.RejectedBy)
}
