package branches

import (
	"context"

	"github.com/Domenick1991/gymvisits/internal/domain"
	"github.com/Domenick1991/gymvisits/internal/repository"
	"github.com/Domenick1991/gymvisits/internal/timeparse"
)

type BranchUseCase interface {
	GetByID(ctx context.Context, id int64) (*domain.Branch, error)
	Schedule(ctx context.Context, branchID int64) ([]ScheduleRow, error)
}

type Cache interface {
	GetSchedule(ctx context.Context, branchID int64) ([]domain.ScheduleSlot, error)
	SetSchedule(ctx context.Context, branchID int64, slots []domain.ScheduleSlot) error
}

// ScheduleRow is a display row: the hour is inferred from the raw slot
// label with the lossy duration heuristic, never with the booking parser.
type ScheduleRow struct {
	Weekday  string `json:"weekday"`
	Hour     int    `json:"hour"`
	Slot     string `json:"slot"`
	Activity string `json:"activity"`
}

type BranchService struct {
	repo  repository.BranchRepository
	cache Cache
}

func NewBranchService(repo repository.BranchRepository, cache Cache) *BranchService {
	return &BranchService{repo: repo, cache: cache}
}

func (s *BranchService) GetByID(ctx context.Context, id int64) (*domain.Branch, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *BranchService) Schedule(ctx context.Context, branchID int64) ([]ScheduleRow, error) {
	var slots []domain.ScheduleSlot
	if s.cache != nil {
		if cached, err := s.cache.GetSchedule(ctx, branchID); err == nil && cached != nil {
			slots = cached
		}
	}

	if slots == nil {
		loaded, err := s.repo.ListSchedule(ctx, branchID)
		if err != nil {
			return nil, err
		}
		slots = loaded
		if s.cache != nil {
			_ = s.cache.SetSchedule(ctx, branchID, slots)
		}
	}

	rows := make([]ScheduleRow, 0, len(slots))
	for _, slot := range slots {
		rows = append(rows, ScheduleRow{
			Weekday:  slot.Weekday,
			Hour:     timeparse.DisplayHour(slot.Slot),
			Slot:     slot.Slot,
			Activity: slot.Activity,
		})
	}
	return rows, nil
}

var _ BranchUseCase = (*BranchService)(nil)
