package service

import (
	"sort"
	"time"

	"github.com/panjiggm/syntegra-app-sub003/internal/model"
	"github.com/panjiggm/syntegra-app-sub003/internal/repository"
	"gorm.io/gorm"
)

// fakeClock pins "now" so lifecycle and scoring math are deterministic.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// memStore is the shared in-memory backing for the fake repositories. The
// fakes reproduce the association loading the real repositories do via
// Preload, so service code sees fully hydrated rows either way.
type memStore struct {
	users    map[uint]model.User
	tests    map[uint]model.Test
	attempts map[uint]model.Attempt
	answers  []model.Answer
	results  map[uint]model.Result
	nextID   uint
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[uint]model.User),
		tests:    make(map[uint]model.Test),
		attempts: make(map[uint]model.Attempt),
		results:  make(map[uint]model.Result),
	}
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

func (s *memStore) addUser(u model.User) model.User {
	if u.ID == 0 {
		u.ID = s.id()
	}
	s.users[u.ID] = u
	return u
}

func (s *memStore) addTest(t model.Test) model.Test {
	if t.ID == 0 {
		t.ID = s.id()
	}
	for i := range t.Questions {
		if t.Questions[i].ID == 0 {
			t.Questions[i].ID = s.id()
		}
		t.Questions[i].TestID = t.ID
	}
	s.tests[t.ID] = t
	return t
}

func (s *memStore) addAttempt(a model.Attempt) model.Attempt {
	if a.ID == 0 {
		a.ID = s.id()
	}
	s.attempts[a.ID] = a
	return a
}

func (s *memStore) addAnswer(a model.Answer) model.Answer {
	if a.ID == 0 {
		a.ID = s.id()
	}
	s.answers = append(s.answers, a)
	return a
}

func (s *memStore) addResult(r model.Result) model.Result {
	if r.ID == 0 {
		r.ID = s.id()
	}
	s.results[r.ID] = r
	return r
}

func (s *memStore) questionByID(id uint) model.Question {
	for _, t := range s.tests {
		for _, q := range t.Questions {
			if q.ID == id {
				return q
			}
		}
	}
	return model.Question{}
}

// --- Repository fakes -------------------------------------------------------

type fakeUserRepo struct{ store *memStore }

func (r *fakeUserRepo) Create(u *model.User) error {
	*u = r.store.addUser(*u)
	return nil
}

func (r *fakeUserRepo) FindByID(id uint) (*model.User, error) {
	u, ok := r.store.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

type fakeTestRepo struct{ store *memStore }

func (r *fakeTestRepo) Create(t *model.Test) error {
	*t = r.store.addTest(*t)
	return nil
}

func (r *fakeTestRepo) FindByID(id uint) (*model.Test, error) {
	t, ok := r.store.tests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	t.Questions = nil
	return &t, nil
}

func (r *fakeTestRepo) FindByIDWithQuestions(id uint) (*model.Test, error) {
	t, ok := r.store.tests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &t, nil
}

func (r *fakeTestRepo) FindAllWithQuestionCount() ([]repository.TestWithQuestionCount, error) {
	var out []repository.TestWithQuestionCount
	for _, t := range r.store.tests {
		out = append(out, repository.TestWithQuestionCount{Test: t, QuestionCount: len(t.Questions)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeAttemptRepo struct {
	store *memStore

	// failCreates makes the next N Creates fail with a duplicate-key error,
	// simulating the unique index rejecting a concurrently taken number.
	failCreates int
	updates     int
}

func (r *fakeAttemptRepo) Create(a *model.Attempt) error {
	if r.failCreates > 0 {
		r.failCreates--
		return gorm.ErrDuplicatedKey
	}
	for _, existing := range r.store.attempts {
		if existing.UserID == a.UserID && existing.TestID == a.TestID && existing.AttemptNumber == a.AttemptNumber {
			return gorm.ErrDuplicatedKey
		}
	}
	*a = r.store.addAttempt(*a)
	return nil
}

func (r *fakeAttemptRepo) Update(a *model.Attempt) error {
	if _, ok := r.store.attempts[a.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.updates++
	stored := *a
	stored.Test = model.Test{}
	stored.User = model.User{}
	stored.Answers = nil
	r.store.attempts[a.ID] = stored
	return nil
}

func (r *fakeAttemptRepo) FindByID(id uint) (*model.Attempt, error) {
	a, ok := r.store.attempts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (r *fakeAttemptRepo) FindByIDWithTest(id uint) (*model.Attempt, error) {
	a, ok := r.store.attempts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	a.Test = r.store.tests[a.TestID]
	a.Test.Questions = nil
	return &a, nil
}

func (r *fakeAttemptRepo) FindByIDWithDetails(id uint) (*model.Attempt, error) {
	a, ok := r.store.attempts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	a.Test = r.store.tests[a.TestID]
	a.Test.Questions = nil
	a.User = r.store.users[a.UserID]
	for _, ans := range r.store.answers {
		if ans.AttemptID == id {
			ans.Question = r.store.questionByID(ans.QuestionID)
			a.Answers = append(a.Answers, ans)
		}
	}
	return &a, nil
}

func (r *fakeAttemptRepo) FindAllByTestAndUser(testID uint, userID uint) ([]model.Attempt, error) {
	var out []model.Attempt
	for _, a := range r.store.attempts {
		if a.TestID == testID && a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AttemptNumber > out[j].AttemptNumber })
	return out, nil
}

func (r *fakeAttemptRepo) MaxAttemptNumber(userID, testID uint) (int, error) {
	max := 0
	for _, a := range r.store.attempts {
		if a.UserID == userID && a.TestID == testID && a.AttemptNumber > max {
			max = a.AttemptNumber
		}
	}
	return max, nil
}

type fakeAnswerRepo struct{ store *memStore }

func (r *fakeAnswerRepo) Create(a *model.Answer) error {
	*a = r.store.addAnswer(*a)
	return nil
}

func (r *fakeAnswerRepo) FindByAttemptID(attemptID uint) ([]model.Answer, error) {
	var out []model.Answer
	for _, a := range r.store.answers {
		if a.AttemptID == attemptID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeResultRepo struct{ store *memStore }

func (r *fakeResultRepo) FindByID(id uint) (*model.Result, error) {
	res, ok := r.store.results[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	res.User = r.store.users[res.UserID]
	return &res, nil
}

func (r *fakeResultRepo) FindByAttemptID(attemptID uint) (*model.Result, error) {
	for _, res := range r.store.results {
		if res.AttemptID == attemptID {
			return &res, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeResultRepo) Upsert(result *model.Result) error {
	for id, existing := range r.store.results {
		if existing.AttemptID == result.AttemptID {
			result.ID = id
			r.store.results[id] = *result
			return nil
		}
	}
	*result = r.store.addResult(*result)
	return nil
}

func (r *fakeResultRepo) FindWithTraitsInWindow(from, to time.Time, testID *uint, limit int) ([]model.Result, error) {
	var out []model.Result
	for _, res := range r.store.results {
		if res.Traits == nil {
			continue
		}
		if res.CalculatedAt.Before(from) || !res.CalculatedAt.Before(to) {
			continue
		}
		if testID != nil && res.TestID != *testID {
			continue
		}
		res.User = r.store.users[res.UserID]
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CalculatedAt.After(out[j].CalculatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
