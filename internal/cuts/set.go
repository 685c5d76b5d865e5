package cuts

// Set накапливает отсечения: только добавление,
// порядок вставки сохраняется, повторы игнорируются.
type Set struct {
	cuts []Cut
	seen map[string]struct{}
}

func NewSet() *Set {
	return &Set{seen: make(map[string]struct{})}
}

// Add добавляет отсечение и сообщает, было ли оно новым.
func (s *Set) Add(c Cut) bool {
	k := c.key()
	if _, ok := s.seen[k]; ok {
		return false
	}
	c.Pairs = append([]Pair(nil), c.Pairs...)
	s.seen[k] = struct{}{}
	s.cuts = append(s.cuts, c)
	return true
}

// AddAll возвращает число реально добавленных отсечений.
func (s *Set) AddAll(cs []Cut) int {
	added := 0
	for _, c := range cs {
		if s.Add(c) {
			added++
		}
	}
	return added
}

func (s *Set) Len() int { return len(s.cuts) }

// All возвращает отсечения в порядке вставки. Срез нельзя изменять.
func (s *Set) All() []Cut { return s.cuts[:len(s.cuts):len(s.cuts)] }

// BoundFor: наибольшая граница среди отсечений, активных на назначении a.
// Это минимальное значение makespan, которое мастер может приписать a.
func (s *Set) BoundFor(a []int) int {
	best := 0
	for _, c := range s.cuts {
		if c.Kind == Optimality && c.Bound > best && c.Applies(a) {
			best = c.Bound
		}
	}
	return best
}

// Forbids сообщает, исключает ли какое-либо отсечение допустимости назначение a.
func (s *Set) Forbids(a []int) bool {
	for _, c := range s.cuts {
		if c.Kind == Feasibility && c.Applies(a) {
			return true
		}
	}
	return false
}
