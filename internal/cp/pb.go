package cp

import (
	"context"
	"sort"

	"github.com/crillab/gophersat/solver"
)

// pbSlot допускает не больше одного работающего решателя gophersat в
// процессе: обучение клауз в нём использует общий для пакета буфер.
// Слот освобождается, только когда Optimal действительно завершился.
var pbSlot = make(chan struct{}, 1)

// solvePB переводит булеву модель в псевдобулевы ограничения gophersat
// и запускает оптимизацию в режиме anytime: каждое улучшающее решение
// приходит через канал results. При отмене ctx возвращается лучшее из полученных.
func solvePB(ctx context.Context, m *Model) (*Response, error) {
	n := len(m.bools)

	constrs, ok := m.pbConstraints()
	if !ok {
		return &Response{Status: StatusInfeasible}, nil
	}

	if n == 0 {
		// Нет переменных: все ограничения уже проверены как константы.
		resp := &Response{Status: StatusOptimal, HasSolution: true, HasBound: true}
		resp.Objective = m.objectiveValue(nil)
		resp.Bound = resp.Objective
		return resp, nil
	}

	// Решатель определяет число переменных по максимальному литералу
	// в ограничениях, поэтому последняя переменная упоминается явно.
	constrs = append(constrs, solver.PropClause(n, -n))

	if ctx.Err() != nil {
		return &Response{Status: StatusTimeout}, nil
	}
	select {
	case pbSlot <- struct{}{}:
	case <-ctx.Done():
		// Предыдущий решатель ещё дорабатывает после своего таймаута.
		return &Response{Status: StatusTimeout}, nil
	}

	pb := solver.ParsePBConstrs(constrs)
	if lits, weights := m.pbCostFunc(); len(lits) > 0 {
		pb.SetCostFunc(lits, weights)
	}
	s := solver.New(pb)

	results := make(chan solver.Result)
	done := make(chan solver.Result, 1)
	go func() {
		defer func() { <-pbSlot }()
		// Optimal не прерывается извне и сам закрывает results.
		done <- s.Optimal(results, nil)
	}()

	best, status := collectPB(ctx, results, done)
	resp := &Response{Status: status}
	if status == StatusInfeasible || status == StatusUnknown || best.Model == nil {
		return resp, nil
	}

	bools := make([]bool, n)
	for i := 0; i < n && i < len(best.Model); i++ {
		bools[i] = best.Model[i]
	}
	resp.bools = bools
	resp.HasSolution = true
	resp.Objective = m.objectiveValue(bools)
	if resp.Status == StatusOptimal {
		resp.HasBound = true
		resp.Bound = resp.Objective
	}
	return resp, nil
}

// collectPB читает поток решений Optimal. При отмене ctx возвращает
// лучшее полученное решение со статусом StatusTimeout, а остаток потока
// дочитывается в фоне до закрытия results.
func collectPB(ctx context.Context, results <-chan solver.Result, done <-chan solver.Result) (solver.Result, Status) {
	var best solver.Result
	for {
		select {
		case r, open := <-results:
			if !open {
				final := <-done
				switch {
				case final.Status == solver.Sat:
					return final, StatusOptimal
				case final.Status == solver.Unsat:
					return solver.Result{}, StatusInfeasible
				case best.Model != nil:
					return best, StatusFeasible
				default:
					return solver.Result{}, StatusUnknown
				}
			}
			if r.Status == solver.Sat {
				best = r
			}
		case <-ctx.Done():
			go func() {
				for range results {
				}
			}()
			return best, StatusTimeout
		}
	}
}

// pbConstraints возвращает false, если какое-то ограничение заведомо невыполнимо.
func (m *Model) pbConstraints() ([]solver.PBConstr, bool) {
	var out []solver.PBConstr

	for _, group := range m.exactly {
		lits := make([]int, len(group))
		for i, v := range group {
			lits[i] = int(v)
		}
		out = append(out, solver.AtLeast(lits, 1))
		if len(lits) > 1 {
			out = append(out, solver.AtMost(lits, 1))
		}
	}

	for _, c := range m.clauses {
		if len(c) == 0 {
			return nil, false
		}
		lits := make([]int, len(c))
		for i, l := range c {
			lits[i] = dimacs(l)
		}
		out = append(out, solver.PropClause(lits...))
	}

	for _, l := range m.linears {
		switch l.op {
		case GE:
			c, ok := geConstr(l.terms, l.rhs)
			if !ok {
				return nil, false
			}
			out = append(out, c...)
		case LE:
			c, ok := geConstr(negate(l.terms), -l.rhs)
			if !ok {
				return nil, false
			}
			out = append(out, c...)
		case EQ:
			ge, ok := geConstr(l.terms, l.rhs)
			if !ok {
				return nil, false
			}
			le, ok := geConstr(negate(l.terms), -l.rhs)
			if !ok {
				return nil, false
			}
			out = append(out, ge...)
			out = append(out, le...)
		}
	}
	return out, true
}

// geConstr нормализует Σ c·x >= k к положительным весам:
// при c < 0 слагаемое c·x заменяется на c + |c|·¬x.
func geConstr(terms []Term, k int) ([]solver.PBConstr, bool) {
	var (
		lits    []int
		weights []int
		total   int
	)
	for _, t := range merge(terms) {
		switch {
		case t.Coef > 0:
			lits = append(lits, int(t.Var))
			weights = append(weights, t.Coef)
			total += t.Coef
		case t.Coef < 0:
			lits = append(lits, -int(t.Var))
			weights = append(weights, -t.Coef)
			total -= t.Coef
			k -= t.Coef
		}
	}
	if k <= 0 {
		return nil, true
	}
	if total < k {
		return nil, false
	}
	return []solver.PBConstr{solver.GtEq(lits, weights, k)}, true
}

func (m *Model) pbCostFunc() ([]solver.Lit, []int) {
	if m.obj == nil {
		return nil, nil
	}
	var (
		lits    []solver.Lit
		weights []int
	)
	for _, t := range merge(m.obj.terms) {
		switch {
		case t.Coef > 0:
			lits = append(lits, solver.IntToLit(int32(t.Var)))
			weights = append(weights, t.Coef)
		case t.Coef < 0:
			lits = append(lits, solver.IntToLit(-int32(t.Var)))
			weights = append(weights, -t.Coef)
		}
	}
	return lits, weights
}

// objectiveValue считается по модели, а не по весу решателя:
// так константы нормализации не влияют на результат.
func (m *Model) objectiveValue(bools []bool) int {
	if m.obj == nil {
		return 0
	}
	v := m.obj.offset
	for _, t := range m.obj.terms {
		if int(t.Var) <= len(bools) && bools[t.Var-1] {
			v += t.Coef
		}
	}
	return v
}

func dimacs(l Literal) int {
	if l.Negated {
		return -int(l.Var)
	}
	return int(l.Var)
}

func negate(terms []Term) []Term {
	out := make([]Term, len(terms))
	for i, t := range terms {
		out[i] = Term{Var: t.Var, Coef: -t.Coef}
	}
	return out
}

// merge складывает коэффициенты повторяющихся переменных; порядок детерминирован.
func merge(terms []Term) []Term {
	acc := make(map[BoolVar]int, len(terms))
	for _, t := range terms {
		acc[t.Var] += t.Coef
	}
	out := make([]Term, 0, len(acc))
	for v, c := range acc {
		if c != 0 {
			out = append(out, Term{Var: v, Coef: c})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Var < out[j].Var })
	return out
}
