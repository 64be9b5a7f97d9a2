// Package store is the authoritative in-memory holder of all Sheriff's Office
// record collections. It is the single source of truth for reads and writes
// within the process; snapshot persistence lives in snapshot.go.
package store

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rhodessheriff/sheriffd/internal/errors"
	"github.com/rhodessheriff/sheriffd/internal/logging"
	"github.com/rhodessheriff/sheriffd/internal/model"
)

// Default credentials seeded into an empty store. The password is stored as a
// bcrypt hash, never in the clear.
const (
	SeedUsername = "sheriff"
	SeedPassword = "admin123"
)

// Store holds every entity collection behind a single store-wide lock.
// All request handlers go through it synchronously; background work (autosave)
// only takes the lock for the duration of the snapshot copy.
type Store struct {
	mu sync.RWMutex

	users       map[string]model.User
	cases       map[string]model.Case
	jailRecords map[string]model.JailRecord
	fines       map[string]model.Fine
	cityLaws    *model.CityLaws
	weapons     map[string]model.Weapon
	tasks       map[string]model.Task
	globalNotes map[string]model.GlobalNote
	userNotes   map[string]model.UserNote
	auditLogs   map[string]model.AuditLog

	dataFile string
	logger   *slog.Logger
}

// New creates a store seeded with the default Sheriff user.
func New(dataFile string) *Store {
	s := &Store{
		dataFile: dataFile,
		logger:   logging.ForService("store"),
	}
	s.resetLocked()
	return s
}

// resetLocked replaces all collections with the seed dataset. Callers must
// hold the write lock or have exclusive access.
func (s *Store) resetLocked() {
	s.users = make(map[string]model.User)
	s.cases = make(map[string]model.Case)
	s.jailRecords = make(map[string]model.JailRecord)
	s.fines = make(map[string]model.Fine)
	s.cityLaws = nil
	s.weapons = make(map[string]model.Weapon)
	s.tasks = make(map[string]model.Task)
	s.globalNotes = make(map[string]model.GlobalNote)
	s.userNotes = make(map[string]model.UserNote)
	s.auditLogs = make(map[string]model.AuditLog)

	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
	if err != nil {
		// bcrypt only fails on invalid cost, which is a constant here
		s.logger.Error("failed to hash seed password", "error", err)
		return
	}
	seed := model.User{
		ID:       uuid.NewString(),
		Username: SeedUsername,
		Password: string(hash),
		Rank:     model.RankSheriff,
	}
	s.users[seed.ID] = seed
}

// --- Users ---

// UserInput carries the fields for creating a user. Password must already be
// a bcrypt hash.
type UserInput struct {
	Username           string
	Password           string
	Rank               model.Rank
	MustChangePassword int
}

// GetUser returns the user with the given id.
func (s *Store) GetUser(id string) (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

// GetUserByUsername returns the user with the given username.
func (s *Store) GetUserByUsername(username string) (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, true
		}
	}
	return model.User{}, false
}

// AllUsers returns every user. The order is unspecified.
func (s *Store) AllUsers() []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	return users
}

// CreateUser adds a new user. The username must be unique among live users.
func (s *Store) CreateUser(in UserInput) (model.User, error) {
	if !model.ValidRank(in.Rank) {
		return model.User{}, errors.Newf("unknown rank: %s", in.Rank).
			Component("store").
			Category(errors.CategoryValidation).
			Build()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == in.Username {
			return model.User{}, errors.Newf("username already exists: %s", in.Username).
				Component("store").
				Category(errors.CategoryConflict).
				Context("username", in.Username).
				Build()
		}
	}

	user := model.User{
		ID:                 uuid.NewString(),
		Username:           in.Username,
		Password:           in.Password,
		Rank:               in.Rank,
		MustChangePassword: in.MustChangePassword,
	}
	s.users[user.ID] = user
	return user, nil
}

// UpdateUserPassword replaces the stored hash and clears the
// mustChangePassword flag. No-op when the user does not exist.
func (s *Store) UpdateUserPassword(userID, newHash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return
	}
	u.Password = newHash
	u.MustChangePassword = 0
	s.users[userID] = u
}

// --- Cases ---

// CaseInput carries the fields for creating a case file.
type CaseInput struct {
	CaseNumber      string `json:"caseNumber"`
	PersonName      string `json:"personName"`
	Crime           string `json:"crime"`
	Status          string `json:"status"`
	Notes           string `json:"notes"`
	Photo           string `json:"photo"`
	Characteristics string `json:"characteristics"`
	Handler         string `json:"handler"`
}

// CaseUpdate carries a partial case mutation; nil fields are left untouched.
// ID and createdAt are never updatable.
type CaseUpdate struct {
	CaseNumber      *string `json:"caseNumber"`
	PersonName      *string `json:"personName"`
	Crime           *string `json:"crime"`
	Status          *string `json:"status"`
	Notes           *string `json:"notes"`
	Photo           *string `json:"photo"`
	Characteristics *string `json:"characteristics"`
	Handler         *string `json:"handler"`
}

// AllCases returns all case files, newest first.
func (s *Store) AllCases() []model.Case {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.casesSortedLocked()
}

func (s *Store) casesSortedLocked() []model.Case {
	cases := make([]model.Case, 0, len(s.cases))
	for _, c := range s.cases {
		cases = append(cases, c)
	}
	sort.Slice(cases, func(i, j int) bool {
		return cases[i].CreatedAt.After(cases[j].CreatedAt)
	})
	return cases
}

// GetCase returns the case with the given id.
func (s *Store) GetCase(id string) (model.Case, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cases[id]
	return c, ok
}

// CreateCase adds a new case file. The case number must be unique among live
// cases and the status must belong to the case vocabulary.
func (s *Store) CreateCase(in CaseInput) (model.Case, error) {
	if !model.ValidCaseStatus(in.Status) {
		return model.Case{}, errors.Newf("unknown case status: %s", in.Status).
			Component("store").
			Category(errors.CategoryValidation).
			Build()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cases {
		if c.CaseNumber == in.CaseNumber {
			return model.Case{}, errors.Newf("case number already exists: %s", in.CaseNumber).
				Component("store").
				Category(errors.CategoryConflict).
				Context("caseNumber", in.CaseNumber).
				Build()
		}
	}

	now := time.Now()
	c := model.Case{
		ID:              uuid.NewString(),
		CaseNumber:      in.CaseNumber,
		PersonName:      in.PersonName,
		Crime:           in.Crime,
		Status:          in.Status,
		Notes:           in.Notes,
		Photo:           in.Photo,
		Characteristics: in.Characteristics,
		Handler:         in.Handler,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.cases[c.ID] = c
	return c, nil
}

// UpdateCase merges the non-nil fields into the case and bumps updatedAt.
// Silent no-op when the id is absent; existence is the route layer's check.
func (s *Store) UpdateCase(id string, upd CaseUpdate) error {
	if upd.Status != nil && !model.ValidCaseStatus(*upd.Status) {
		return errors.Newf("unknown case status: %s", *upd.Status).
			Component("store").
			Category(errors.CategoryValidation).
			Build()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cases[id]
	if !ok {
		return nil
	}
	if upd.CaseNumber != nil {
		c.CaseNumber = *upd.CaseNumber
	}
	if upd.PersonName != nil {
		c.PersonName = *upd.PersonName
	}
	if upd.Crime != nil {
		c.Crime = *upd.Crime
	}
	if upd.Status != nil {
		c.Status = *upd.Status
	}
	if upd.Notes != nil {
		c.Notes = *upd.Notes
	}
	if upd.Photo != nil {
		c.Photo = *upd.Photo
	}
	if upd.Characteristics != nil {
		c.Characteristics = *upd.Characteristics
	}
	if upd.Handler != nil {
		c.Handler = *upd.Handler
	}
	c.UpdatedAt = time.Now()
	s.cases[id] = c
	return nil
}

// UpdateCaseStatus sets the status and bumps updatedAt.
func (s *Store) UpdateCaseStatus(id, status string) error {
	if !model.ValidCaseStatus(status) {
		return errors.Newf("unknown case status: %s", status).
			Component("store").
			Category(errors.CategoryValidation).
			Build()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cases[id]
	if !ok {
		return nil
	}
	c.Status = status
	c.UpdatedAt = time.Now()
	s.cases[id] = c
	return nil
}

// DeleteCase removes the case. No-op when the id is absent.
func (s *Store) DeleteCase(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cases, id)
}

// GetPersonsSummary groups all cases by person name. Iteration runs over the
// newest-first case list, so the first non-empty photo/characteristics of the
// most recent case wins; strict greater-than keeps the earlier-seen case on
// createdAt ties. The result is ordered by descending case count.
func (s *Store) GetPersonsSummary() []model.PersonSummary {
	s.mu.RLock()
	cases := s.casesSortedLocked()
	s.mu.RUnlock()

	byName := make(map[string]*model.PersonSummary)
	order := make([]string, 0)

	for i := range cases {
		c := cases[i]
		p, ok := byName[c.PersonName]
		if !ok {
			last := c.CreatedAt
			byName[c.PersonName] = &model.PersonSummary{
				Name:            c.PersonName,
				Photo:           c.Photo,
				Characteristics: c.Characteristics,
				CaseCount:       1,
				LastCrime:       c.Crime,
				LastCaseDate:    &last,
				Cases:           []model.Case{c},
			}
			order = append(order, c.PersonName)
			continue
		}
		p.CaseCount++
		p.Cases = append(p.Cases, c)
		if p.Photo == "" && c.Photo != "" {
			p.Photo = c.Photo
		}
		if p.Characteristics == "" && c.Characteristics != "" {
			p.Characteristics = c.Characteristics
		}
		if p.LastCaseDate != nil && c.CreatedAt.After(*p.LastCaseDate) {
			last := c.CreatedAt
			p.LastCrime = c.Crime
			p.LastCaseDate = &last
		}
	}

	persons := make([]model.PersonSummary, 0, len(order))
	for _, name := range order {
		persons = append(persons, *byName[name])
	}
	sort.SliceStable(persons, func(i, j int) bool {
		return persons[i].CaseCount > persons[j].CaseCount
	})
	return persons
}

// --- Jail ---

// JailRecordInput carries the fields for creating a jail record.
type JailRecordInput struct {
	PersonName      string    `json:"personName"`
	Crime           string    `json:"crime"`
	DurationMinutes int       `json:"durationMinutes"`
	StartTime       time.Time `json:"startTime"`
	Handler         string    `json:"handler"`
}

// AllJailRecords returns all jail records, newest start time first.
func (s *Store) AllJailRecords() []model.JailRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]model.JailRecord, 0, len(s.jailRecords))
	for _, r := range s.jailRecords {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].StartTime.After(records[j].StartTime)
	})
	return records
}

// GetJailRecord returns the record with the given id.
func (s *Store) GetJailRecord(id string) (model.JailRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.jailRecords[id]
	return r, ok
}

// CreateJailRecord adds a new, unreleased jail record.
func (s *Store) CreateJailRecord(in JailRecordInput) model.JailRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := model.JailRecord{
		ID:              uuid.NewString(),
		PersonName:      in.PersonName,
		Crime:           in.Crime,
		DurationMinutes: in.DurationMinutes,
		StartTime:       in.StartTime,
		Handler:         in.Handler,
	}
	s.jailRecords[r.ID] = r
	return r
}

// ReleaseInmate marks the record released now. Releasing an already released
// record just rewrites the same terminal state.
func (s *Store) ReleaseInmate(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.jailRecords[id]
	if !ok {
		return
	}
	now := time.Now()
	r.Released = 1
	r.ReleasedAt = &now
	s.jailRecords[id] = r
}

// DeleteJailRecord removes the record. No-op when the id is absent.
func (s *Store) DeleteJailRecord(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jailRecords, id)
}

// --- Fines ---

// FineInput carries the fields for creating a fine.
type FineInput struct {
	Violation string `json:"violation"`
	Amount    int    `json:"amount"`
	Remarks   string `json:"remarks"`
}

// AllFines returns every fine. The order is unspecified.
func (s *Store) AllFines() []model.Fine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fines := make([]model.Fine, 0, len(s.fines))
	for _, f := range s.fines {
		fines = append(fines, f)
	}
	return fines
}

// GetFine returns the fine with the given id.
func (s *Store) GetFine(id string) (model.Fine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.fines[id]
	return f, ok
}

// CreateFine adds a new fine.
func (s *Store) CreateFine(in FineInput) model.Fine {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := model.Fine{
		ID:        uuid.NewString(),
		Violation: in.Violation,
		Amount:    in.Amount,
		Remarks:   in.Remarks,
	}
	s.fines[f.ID] = f
	return f
}

// DeleteFine removes the fine. No-op when the id is absent.
func (s *Store) DeleteFine(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fines, id)
}

// --- City laws ---

// CityLaws returns the law document singleton, if one has been saved.
func (s *Store) CityLaws() (model.CityLaws, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cityLaws == nil {
		return model.CityLaws{}, false
	}
	return *s.cityLaws, true
}

// SaveCityLaws overwrites the law document singleton. Creation and update are
// the same operation.
func (s *Store) SaveCityLaws(content, updatedBy string) model.CityLaws {
	s.mu.Lock()
	defer s.mu.Unlock()
	laws := model.CityLaws{
		ID:        model.CityLawsID,
		Content:   content,
		UpdatedAt: time.Now(),
		UpdatedBy: updatedBy,
	}
	s.cityLaws = &laws
	return laws
}

// --- Weapons ---

// WeaponInput carries the fields for registering a weapon.
type WeaponInput struct {
	SerialNumber string `json:"serialNumber"`
	WeaponType   string `json:"weaponType"`
	Owner        string `json:"owner"`
	Category     string `json:"category"`
	Status       string `json:"status"`
}

// AllWeapons returns all weapons, newest first.
func (s *Store) AllWeapons() []model.Weapon {
	s.mu.RLock()
	defer s.mu.RUnlock()
	weapons := make([]model.Weapon, 0, len(s.weapons))
	for _, w := range s.weapons {
		weapons = append(weapons, w)
	}
	sort.Slice(weapons, func(i, j int) bool {
		return weapons[i].CreatedAt.After(weapons[j].CreatedAt)
	})
	return weapons
}

// GetWeapon returns the weapon with the given id.
func (s *Store) GetWeapon(id string) (model.Weapon, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.weapons[id]
	return w, ok
}

// CreateWeapon registers a new weapon. The serial number must be unique among
// live weapons and the status must belong to the category's vocabulary.
func (s *Store) CreateWeapon(in WeaponInput, createdBy string) (model.Weapon, error) {
	if _, ok := model.WeaponStatusesByCategory[in.Category]; !ok {
		return model.Weapon{}, errors.Newf("unknown weapon category: %s", in.Category).
			Component("store").
			Category(errors.CategoryValidation).
			Build()
	}
	if !model.ValidWeaponStatus(in.Category, in.Status) {
		return model.Weapon{}, errors.Newf("status %q not allowed for category %q", in.Status, in.Category).
			Component("store").
			Category(errors.CategoryValidation).
			Build()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.weapons {
		if w.SerialNumber == in.SerialNumber {
			return model.Weapon{}, errors.Newf("serial number already exists: %s", in.SerialNumber).
				Component("store").
				Category(errors.CategoryConflict).
				Context("serialNumber", in.SerialNumber).
				Build()
		}
	}

	now := time.Now()
	w := model.Weapon{
		ID:              uuid.NewString(),
		SerialNumber:    in.SerialNumber,
		WeaponType:      in.WeaponType,
		Owner:           in.Owner,
		Category:        in.Category,
		Status:          in.Status,
		StatusChangedAt: now,
		CreatedAt:       now,
		CreatedBy:       createdBy,
		UpdatedAt:       now,
		UpdatedBy:       createdBy,
	}
	s.weapons[w.ID] = w
	return w, nil
}

// UpdateWeaponStatus sets the status, validated against the weapon's
// category, and bumps statusChangedAt/updatedAt/updatedBy.
func (s *Store) UpdateWeaponStatus(id, status, updatedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.weapons[id]
	if !ok {
		return nil
	}
	if !model.ValidWeaponStatus(w.Category, status) {
		return errors.Newf("status %q not allowed for category %q", status, w.Category).
			Component("store").
			Category(errors.CategoryValidation).
			Build()
	}
	now := time.Now()
	w.Status = status
	w.StatusChangedAt = now
	w.UpdatedAt = now
	w.UpdatedBy = updatedBy
	s.weapons[id] = w
	return nil
}

// DeleteWeapon removes the weapon. No-op when the id is absent.
func (s *Store) DeleteWeapon(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.weapons, id)
}

// --- Tasks ---

// TaskInput carries the fields for creating a task.
type TaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	AssignedTo  string `json:"assignedTo"`
	AssignedBy  string `json:"assignedBy"`
	Status      string `json:"status"`
}

// AllTasks returns all tasks, newest first.
func (s *Store) AllTasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tasks := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks
}

// GetTask returns the task with the given id.
func (s *Store) GetTask(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	return t, ok
}

// CreateTask adds a new task.
func (s *Store) CreateTask(in TaskInput) (model.Task, error) {
	if !model.ValidTaskStatus(in.Status) {
		return model.Task{}, errors.Newf("unknown task status: %s", in.Status).
			Component("store").
			Category(errors.CategoryValidation).
			Build()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	t := model.Task{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		AssignedTo:  in.AssignedTo,
		AssignedBy:  in.AssignedBy,
		Status:      in.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.tasks[t.ID] = t
	return t, nil
}

// UpdateTaskStatus sets the status and bumps updatedAt.
func (s *Store) UpdateTaskStatus(id, status string) error {
	if !model.ValidTaskStatus(status) {
		return errors.Newf("unknown task status: %s", status).
			Component("store").
			Category(errors.CategoryValidation).
			Build()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil
	}
	t.Status = status
	t.UpdatedAt = time.Now()
	s.tasks[id] = t
	return nil
}

// TransferTask reassigns the task. Prior assignees are not retained.
func (s *Store) TransferTask(id, assignedTo string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return
	}
	t.AssignedTo = assignedTo
	t.UpdatedAt = time.Now()
	s.tasks[id] = t
}

// --- Notes ---

// AllGlobalNotes returns all shared notes, newest first.
func (s *Store) AllGlobalNotes() []model.GlobalNote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	notes := make([]model.GlobalNote, 0, len(s.globalNotes))
	for _, n := range s.globalNotes {
		notes = append(notes, n)
	}
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})
	return notes
}

// GetGlobalNote returns the shared note with the given id.
func (s *Store) GetGlobalNote(id string) (model.GlobalNote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.globalNotes[id]
	return n, ok
}

// CreateGlobalNote adds a shared note.
func (s *Store) CreateGlobalNote(content, author string) model.GlobalNote {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	n := model.GlobalNote{
		ID:        uuid.NewString(),
		Content:   content,
		Author:    author,
		CreatedAt: now,
		UpdatedAt: now,
		UpdatedBy: author,
	}
	s.globalNotes[n.ID] = n
	return n
}

// UpdateGlobalNote replaces the content and records the editor.
func (s *Store) UpdateGlobalNote(id, content, updatedBy string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.globalNotes[id]
	if !ok {
		return
	}
	n.Content = content
	n.UpdatedAt = time.Now()
	n.UpdatedBy = updatedBy
	s.globalNotes[id] = n
}

// DeleteGlobalNote removes the shared note. No-op when the id is absent.
func (s *Store) DeleteGlobalNote(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.globalNotes, id)
}

// UserNotes returns the private notes of one user, newest first.
func (s *Store) UserNotes(userID string) []model.UserNote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	notes := make([]model.UserNote, 0)
	for _, n := range s.userNotes {
		if n.UserID == userID {
			notes = append(notes, n)
		}
	}
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})
	return notes
}

// GetUserNote returns the private note with the given id.
func (s *Store) GetUserNote(id string) (model.UserNote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.userNotes[id]
	return n, ok
}

// CreateUserNote adds a private note for the given user.
func (s *Store) CreateUserNote(userID, content string) model.UserNote {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	n := model.UserNote{
		ID:        uuid.NewString(),
		UserID:    userID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.userNotes[n.ID] = n
	return n
}

// UpdateUserNote replaces the content of a private note.
func (s *Store) UpdateUserNote(id, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.userNotes[id]
	if !ok {
		return
	}
	n.Content = content
	n.UpdatedAt = time.Now()
	s.userNotes[id] = n
}

// DeleteUserNote removes the private note. No-op when the id is absent.
func (s *Store) DeleteUserNote(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.userNotes, id)
}

// --- Audit logs ---

// AuditLogInput carries the fields for one audit trail entry.
type AuditLogInput struct {
	Action   string
	Entity   string
	EntityID string
	Details  string
	Username string
}

// CreateAuditLog appends an audit trail entry with a fresh id and timestamp.
func (s *Store) CreateAuditLog(in AuditLogInput) model.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := model.AuditLog{
		ID:        uuid.NewString(),
		Action:    in.Action,
		Entity:    in.Entity,
		EntityID:  in.EntityID,
		Details:   in.Details,
		Username:  in.Username,
		Timestamp: time.Now(),
	}
	s.auditLogs[entry.ID] = entry
	return entry
}

// AllAuditLogs returns the full audit trail, newest first.
func (s *Store) AllAuditLogs() []model.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	logs := make([]model.AuditLog, 0, len(s.auditLogs))
	for _, l := range s.auditLogs {
		logs = append(logs, l)
	}
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].Timestamp.After(logs[j].Timestamp)
	})
	return logs
}

// RecentAuditLogs returns the newest limit entries.
func (s *Store) RecentAuditLogs(limit int) []model.AuditLog {
	logs := s.AllAuditLogs()
	if limit < len(logs) {
		logs = logs[:limit]
	}
	return logs
}
