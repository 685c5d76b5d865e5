package cp

import (
	"context"
	"fmt"
	"time"
)

// Solve решает модель с ограничением по времени limit (0 - без ограничения,
// кроме дедлайна ctx). По истечении времени возвращается лучшее найденное
// решение со статусом StatusTimeout, а не ошибка.
func Solve(ctx context.Context, m *Model, limit time.Duration) (*Response, error) {
	start := time.Now()

	if m == nil {
		return nil, fmt.Errorf("%w: nil model", ErrInvalidModel)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	if limit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, limit)
		defer cancel()
	}

	var (
		resp *Response
		err  error
	)
	switch {
	case m.isBoolean():
		resp, err = solvePB(ctx, m)
	case m.isDisjunctive():
		resp, err = solveDisjunctive(ctx, m)
	default:
		return nil, fmt.Errorf("%w: model %q mixes boolean and interval parts", ErrUnsupportedModel, m.Name)
	}
	if err != nil {
		return nil, err
	}
	resp.WallTime = time.Since(start)
	return resp, nil
}
