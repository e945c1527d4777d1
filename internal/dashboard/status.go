package dashboard

import (
	"errors"
	"fmt"

	"github.com/wonny/snapboard/internal/contracts"
)

// FetchError marks a table read that failed or timed out
type FetchError struct {
	Table string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Table, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// StatusOf maps an error onto a section status
// ⭐ SSOT: "데이터 없음" vs "잘못된 데이터" vs "조회 실패" 구분은 여기서만
func StatusOf(err error) Status {
	var fetchErr *FetchError
	switch {
	case err == nil:
		return StatusOK
	case errors.As(err, &fetchErr):
		return StatusUnavailable
	case contracts.IsNoData(err):
		return StatusNoData
	case contracts.IsMalformed(err):
		return StatusMalformed
	default:
		return StatusUnavailable
	}
}

func stateOf(err error) SectionState {
	if err == nil {
		return SectionState{Status: StatusOK}
	}

	state := SectionState{Status: StatusOf(err), Message: err.Error()}
	if errors.Is(err, contracts.ErrEmptyPortfolio) {
		state.Message = "no portfolio data yet"
	}
	return state
}
