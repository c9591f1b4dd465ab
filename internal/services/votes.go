package services

import (
	"context"
	"errors"

	"failboard/internal/models"
	"failboard/internal/storage"
)

// VoteService is the voting ledger: at most one vote per (post, user)
// pair, with the post's rating kept in step with the vote rows.
type VoteService struct {
	store storage.Storage
}

func NewVoteService(store storage.Storage) *VoteService {
	return &VoteService{store: store}
}

// Cast records one vote. Returns true when the vote counted, false
// when the user already voted or the post does not exist. "Already
// voted" is a normal outcome, not an error.
//
// The pre-check is just a fast path; the composite unique index on
// (post_id, user_id) is what holds under concurrent duplicates, and
// the insert plus rating increment run in one transaction so a
// missing post never leaves an orphan vote row behind.
func (s *VoteService) Cast(ctx context.Context, postID, userID uint, value int) (bool, error) {
	if _, err := s.store.GetVote(ctx, postID, userID); err == nil {
		return false, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return false, err
	}

	vote := &models.Vote{
		UserID: userID,
		PostID: postID,
		Value:  value,
	}
	if err := s.store.InsertVote(ctx, vote); err != nil {
		if errors.Is(err, storage.ErrAlreadyVoted) || errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
