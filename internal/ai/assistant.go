package ai

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/job-ranker/internal/logger"
	"github.com/spigell/job-ranker/internal/postings"
	"github.com/spigell/job-ranker/internal/resume"
)

// Reviewer gives a second opinion on how well a posting fits a resume.
type Reviewer interface {
	Review(ctx context.Context, features *resume.Features, posting *postings.Posting) (*postings.AIAssessment, error)
}

// ReviewTop asks the reviewer about the first top postings of an already
// ranked list and stores the answers in Posting.AI. Scores and order are not
// touched. A failed review is logged and recorded in AIAssessment.Error.
func ReviewTop(ctx context.Context, reviewer Reviewer, features *resume.Features, ranked []*postings.Posting, top int, log *zap.Logger) int {
	if log == nil {
		log = zap.NewNop()
	}
	if reviewer == nil || top <= 0 {
		return 0
	}

	reviewed := 0
	for _, posting := range ranked {
		if reviewed >= top {
			break
		}
		if posting == nil {
			continue
		}
		if ctx.Err() != nil {
			log.Warn("stopping ai review", zap.Error(ctx.Err()))
			break
		}
		reviewed++

		postingLog := logger.WithFields(log, logger.PostingFields(posting.Platform, posting.URL)...)

		assessment, err := reviewer.Review(ctx, features, posting)
		if err != nil {
			postingLog.Warn("ai review failed", zap.Error(err))
			posting.AI = &postings.AIAssessment{Error: err.Error()}
			continue
		}

		posting.AI = assessment
		postingLog.Info("ai review",
			zap.Bool("fit", assessment.Fit),
			zap.Float64("ai_score", assessment.Score),
			zap.String("reason", assessment.Reason),
		)
	}

	return reviewed
}
