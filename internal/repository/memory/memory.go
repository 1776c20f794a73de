// Package memory provides in-process implementations of the repository
// interfaces. They apply the same guards as the MongoDB repositories and are
// used to run the services without a database.
package memory

import (
	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository"
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store holds every collection behind a single lock.
type Store struct {
	mu        sync.Mutex
	users     map[primitive.ObjectID]domain.User
	machines  map[primitive.ObjectID]domain.Machine
	workouts  map[primitive.ObjectID]domain.Workout
	exercises map[primitive.ObjectID]domain.Exercise
	sessions  map[string]domain.Session
	requests  []domain.RequestRecord
}

func NewStore() *Store {
	return &Store{
		users:     make(map[primitive.ObjectID]domain.User),
		machines:  make(map[primitive.ObjectID]domain.Machine),
		workouts:  make(map[primitive.ObjectID]domain.Workout),
		exercises: make(map[primitive.ObjectID]domain.Exercise),
		sessions:  make(map[string]domain.Session),
	}
}

func (s *Store) Users() repository.UserRepository         { return userRepo{s} }
func (s *Store) Machines() repository.MachineRepository   { return machineRepo{s} }
func (s *Store) Workouts() repository.WorkoutRepository   { return workoutRepo{s} }
func (s *Store) Exercises() repository.ExerciseRepository { return exerciseRepo{s} }
func (s *Store) Sessions() repository.SessionRepository   { return sessionRepo{s} }
func (s *Store) Requests() repository.RequestRepository   { return requestRepo{s} }

// Recorded returns a copy of every request record inserted so far.
func (s *Store) Recorded() []domain.RequestRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.RequestRecord(nil), s.requests...)
}

// --- Users ---

type userRepo struct{ s *Store }

func (r userRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Username == "" || user.Email == "" || user.PasswordHash == "" {
		return primitive.NilObjectID, errors.New("user username, email, and password hash are required")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email || u.Username == user.Username {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.SavedWorkoutIDs == nil {
		user.SavedWorkoutIDs = []primitive.ObjectID{}
	}
	r.s.users[user.ID] = copyUser(*user)
	return user.ID, nil
}

func (r userRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := copyUser(u)
	return &out, nil
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Email == email })
}

func (r userRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Username == username })
}

func (r userRepo) find(match func(domain.User) bool) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if match(u) {
			out := copyUser(u)
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r userRepo) Update(ctx context.Context, id primitive.ObjectID, update domain.UserUpdate) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for otherID, other := range r.s.users {
		if otherID == id {
			continue
		}
		if (update.Email != nil && other.Email == *update.Email) ||
			(update.Username != nil && other.Username == *update.Username) {
			return nil, repository.ErrDuplicate
		}
	}
	if update.IsEmpty() {
		out := copyUser(u)
		return &out, nil
	}

	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&u.Username, update.Username)
	set(&u.Email, update.Email)
	set(&u.FirstName, update.FirstName)
	set(&u.LastName, update.LastName)
	set(&u.Bio, update.Bio)
	set(&u.ProfileImageKey, update.ProfileImageKey)
	u.UpdatedAt = time.Now().UTC()
	r.s.users[id] = u

	out := copyUser(u)
	return &out, nil
}

func (r userRepo) SetCurrentWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	if u.HasActiveWorkout() {
		return repository.ErrConditionFailed
	}
	id := workoutID
	u.CurrentWorkoutID = &id
	u.UpdatedAt = time.Now().UTC()
	r.s.users[userID] = u
	return nil
}

func (r userRepo) SaveWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.CurrentWorkoutID = nil
	saved := false
	for _, id := range u.SavedWorkoutIDs {
		if id == workoutID {
			saved = true
			break
		}
	}
	if !saved {
		u.SavedWorkoutIDs = append(u.SavedWorkoutIDs, workoutID)
	}
	u.UpdatedAt = time.Now().UTC()
	r.s.users[userID] = u
	return nil
}

// --- Machines ---

type machineRepo struct{ s *Store }

func (r machineRepo) Create(ctx context.Context, machine *domain.Machine) (primitive.ObjectID, error) {
	if machine.Name == "" {
		return primitive.NilObjectID, errors.New("machine name is required")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	machine.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	machine.CreatedAt = now
	machine.UpdatedAt = now
	if machine.Status == "" {
		machine.Status = domain.MachineAvailable
	}
	r.s.machines[machine.ID] = *machine
	return machine.ID, nil
}

func (r machineRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Machine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.machines[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (r machineRepo) List(ctx context.Context, filter domain.MachineFilter) ([]domain.Machine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	machines := []domain.Machine{}
	for _, m := range r.s.machines {
		if filter.Category != "" && m.Category != filter.Category {
			continue
		}
		if filter.Status != "" && m.Status != filter.Status {
			continue
		}
		machines = append(machines, m)
	}
	sort.Slice(machines, func(i, j int) bool { return machines[i].Name < machines[j].Name })
	return machines, nil
}

func (r machineRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.MachineStatus, exclusive bool) (*domain.Machine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.machines[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if exclusive && m.Status == status {
		return nil, repository.ErrConditionFailed
	}
	m.Status = status
	m.UpdatedAt = time.Now().UTC()
	r.s.machines[id] = m
	return &m, nil
}

// --- Workouts ---

type workoutRepo struct{ s *Store }

func (r workoutRepo) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("workout requires userId")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	workout.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	workout.Status = domain.WorkoutActive
	workout.StartedAt = now
	workout.UpdatedAt = now
	workout.EndedAt = nil
	workout.Rating = nil
	if workout.Machines == nil {
		workout.Machines = []domain.MachineEntry{}
	}
	if workout.ExerciseIDs == nil {
		workout.ExerciseIDs = []primitive.ObjectID{}
	}
	r.s.workouts[workout.ID] = copyWorkout(*workout)
	return workout.ID, nil
}

func (r workoutRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := copyWorkout(w)
	return &out, nil
}

func (r workoutRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	workouts := []domain.Workout{}
	for _, w := range r.s.workouts {
		if w.UserID == userID {
			workouts = append(workouts, copyWorkout(w))
		}
	}
	sort.SliceStable(workouts, func(i, j int) bool { return workouts[i].StartedAt.After(workouts[j].StartedAt) })
	return workouts, nil
}

func (r workoutRepo) AddMachine(ctx context.Context, workoutID primitive.ObjectID, entry domain.MachineEntry) (*domain.Workout, error) {
	return r.modify(workoutID, domain.WorkoutActive, func(w *domain.Workout) bool {
		if w.Entry(entry.MachineID) != nil {
			return false
		}
		w.Machines = append(w.Machines, entry)
		return true
	})
}

func (r workoutRepo) AddCardio(ctx context.Context, workoutID primitive.ObjectID, entry domain.MachineEntry, stat domain.CardioStat) (*domain.Workout, error) {
	return r.modify(workoutID, domain.WorkoutActive, func(w *domain.Workout) bool {
		if e := w.Entry(entry.MachineID); e != nil {
			e.Cardio = append(e.Cardio, stat)
			return true
		}
		entry.Cardio = []domain.CardioStat{stat}
		w.Machines = append(w.Machines, entry)
		return true
	})
}

func (r workoutRepo) AddSet(ctx context.Context, workoutID primitive.ObjectID, entry domain.MachineEntry, set domain.StrengthSet) (*domain.Workout, error) {
	return r.modify(workoutID, domain.WorkoutActive, func(w *domain.Workout) bool {
		if e := w.Entry(entry.MachineID); e != nil {
			e.Sets = append(e.Sets, set)
			return true
		}
		entry.Sets = []domain.StrengthSet{set}
		w.Machines = append(w.Machines, entry)
		return true
	})
}

func (r workoutRepo) AddExercise(ctx context.Context, workoutID, exerciseID primitive.ObjectID) (*domain.Workout, error) {
	return r.modify(workoutID, domain.WorkoutActive, func(w *domain.Workout) bool {
		w.ExerciseIDs = append(w.ExerciseIDs, exerciseID)
		return true
	})
}

func (r workoutRepo) End(ctx context.Context, workoutID primitive.ObjectID, endedAt time.Time) (*domain.Workout, error) {
	return r.modify(workoutID, domain.WorkoutActive, func(w *domain.Workout) bool {
		w.Status = domain.WorkoutEnded
		at := endedAt
		w.EndedAt = &at
		return true
	})
}

func (r workoutRepo) SetRating(ctx context.Context, workoutID primitive.ObjectID, rating int) (*domain.Workout, error) {
	return r.modify(workoutID, domain.WorkoutEnded, func(w *domain.Workout) bool {
		v := rating
		w.Rating = &v
		return true
	})
}

// modify applies change to a copy of the workout when it holds status.
// change returning false leaves the stored workout untouched.
func (r workoutRepo) modify(id primitive.ObjectID, status domain.WorkoutStatus, change func(*domain.Workout) bool) (*domain.Workout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if stored.Status != status {
		return nil, repository.ErrConditionFailed
	}
	w := copyWorkout(stored)
	if !change(&w) {
		return nil, repository.ErrConditionFailed
	}
	w.UpdatedAt = time.Now().UTC()
	r.s.workouts[id] = w

	out := copyWorkout(w)
	return &out, nil
}

// --- Exercises ---

type exerciseRepo struct{ s *Store }

func (r exerciseRepo) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.WorkoutID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("exercise requires workoutId")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	exercise.ID = primitive.NewObjectID()
	exercise.CreatedAt = time.Now().UTC()
	r.s.exercises[exercise.ID] = *exercise
	return exercise.ID, nil
}

func (r exerciseRepo) GetByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) ([]domain.Exercise, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	exercises := []domain.Exercise{}
	for _, e := range r.s.exercises {
		if e.WorkoutID == workoutID {
			exercises = append(exercises, e)
		}
	}
	sort.SliceStable(exercises, func(i, j int) bool { return exercises[i].CreatedAt.Before(exercises[j].CreatedAt) })
	return exercises, nil
}

// --- Sessions ---

type sessionRepo struct{ s *Store }

func (r sessionRepo) Create(ctx context.Context, session *domain.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.sessions[session.ID]; exists {
		return repository.ErrDuplicate
	}
	r.s.sessions[session.ID] = *session
	return nil
}

func (r sessionRepo) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &sess, nil
}

func (r sessionRepo) Revoke(ctx context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[id]
	if !ok || sess.RevokedAt != nil {
		return nil
	}
	revokedAt := at
	sess.RevokedAt = &revokedAt
	r.s.sessions[id] = sess
	return nil
}

// --- Requests ---

type requestRepo struct{ s *Store }

func (r requestRepo) Insert(ctx context.Context, record domain.RequestRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.requests = append(r.s.requests, record)
	return nil
}

// --- copies ---

func copyUser(u domain.User) domain.User {
	if u.CurrentWorkoutID != nil {
		id := *u.CurrentWorkoutID
		u.CurrentWorkoutID = &id
	}
	u.SavedWorkoutIDs = append([]primitive.ObjectID{}, u.SavedWorkoutIDs...)
	return u
}

func copyWorkout(w domain.Workout) domain.Workout {
	if w.Rating != nil {
		v := *w.Rating
		w.Rating = &v
	}
	if w.EndedAt != nil {
		t := *w.EndedAt
		w.EndedAt = &t
	}
	machines := make([]domain.MachineEntry, len(w.Machines))
	for i, e := range w.Machines {
		e.Cardio = append([]domain.CardioStat{}, e.Cardio...)
		e.Sets = append([]domain.StrengthSet{}, e.Sets...)
		machines[i] = e
	}
	w.Machines = machines
	w.ExerciseIDs = append([]primitive.ObjectID{}, w.ExerciseIDs...)
	return w
}
