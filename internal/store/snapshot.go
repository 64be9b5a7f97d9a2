package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rhodessheriff/sheriffd/internal/errors"
	"github.com/rhodessheriff/sheriffd/internal/model"
)

// Snapshot is the aggregate JSON document persisted to disk and served over
// the admin channel. A missing collection key means "leave empty" on import.
type Snapshot struct {
	Users       []model.User       `json:"users"`
	Cases       []model.Case       `json:"cases"`
	JailRecords []model.JailRecord `json:"jailRecords"`
	Fines       []model.Fine       `json:"fines"`
	CityLaws    *model.CityLaws    `json:"cityLaws,omitempty"`
	Weapons     []model.Weapon     `json:"weapons"`
	Tasks       []model.Task       `json:"tasks"`
	GlobalNotes []model.GlobalNote `json:"globalNotes"`
	UserNotes   []model.UserNote   `json:"userNotes"`
	AuditLogs   []model.AuditLog   `json:"auditLogs"`
}

// ValidationResult reports the outcome of a structural snapshot check.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// FileStatus describes the snapshot file on disk.
type FileStatus struct {
	DataFile string     `json:"dataFile"`
	Exists   bool       `json:"exists"`
	Size     int64      `json:"size"`
	ModTime  *time.Time `json:"modTime,omitempty"`
}

// ExportState copies the current contents of every collection into a
// snapshot. The copy is taken under the read lock so it is internally
// consistent.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Users:       make([]model.User, 0, len(s.users)),
		Cases:       make([]model.Case, 0, len(s.cases)),
		JailRecords: make([]model.JailRecord, 0, len(s.jailRecords)),
		Fines:       make([]model.Fine, 0, len(s.fines)),
		Weapons:     make([]model.Weapon, 0, len(s.weapons)),
		Tasks:       make([]model.Task, 0, len(s.tasks)),
		GlobalNotes: make([]model.GlobalNote, 0, len(s.globalNotes)),
		UserNotes:   make([]model.UserNote, 0, len(s.userNotes)),
		AuditLogs:   make([]model.AuditLog, 0, len(s.auditLogs)),
	}
	for _, u := range s.users {
		snap.Users = append(snap.Users, u)
	}
	for _, c := range s.cases {
		snap.Cases = append(snap.Cases, c)
	}
	for _, r := range s.jailRecords {
		snap.JailRecords = append(snap.JailRecords, r)
	}
	for _, f := range s.fines {
		snap.Fines = append(snap.Fines, f)
	}
	if s.cityLaws != nil {
		laws := *s.cityLaws
		snap.CityLaws = &laws
	}
	for _, w := range s.weapons {
		snap.Weapons = append(snap.Weapons, w)
	}
	for _, t := range s.tasks {
		snap.Tasks = append(snap.Tasks, t)
	}
	for _, n := range s.globalNotes {
		snap.GlobalNotes = append(snap.GlobalNotes, n)
	}
	for _, n := range s.userNotes {
		snap.UserNotes = append(snap.UserNotes, n)
	}
	for _, l := range s.auditLogs {
		snap.AuditLogs = append(snap.AuditLogs, l)
	}
	return snap
}

// snapshotKeys maps each known top-level key to a decode probe for its
// expected shape.
var snapshotKeys = map[string]func(json.RawMessage) error{
	"users":       probe[[]model.User],
	"cases":       probe[[]model.Case],
	"jailRecords": probe[[]model.JailRecord],
	"fines":       probe[[]model.Fine],
	"cityLaws":    probe[*model.CityLaws],
	"weapons":     probe[[]model.Weapon],
	"tasks":       probe[[]model.Task],
	"globalNotes": probe[[]model.GlobalNote],
	"userNotes":   probe[[]model.UserNote],
	"auditLogs":   probe[[]model.AuditLog],
}

func probe[T any](raw json.RawMessage) error {
	var v T
	return json.Unmarshal(raw, &v)
}

// ValidateState structurally checks a raw snapshot document without touching
// the store. Absent keys are fine; present keys must decode to the expected
// shape, and unknown keys are flagged.
func ValidateState(raw []byte) ValidationResult {
	result := ValidationResult{Valid: true, Errors: []string{}}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("not a JSON object: %v", err))
		return result
	}

	for key, rawValue := range doc {
		check, known := snapshotKeys[key]
		if !known {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("unknown key %q", key))
			continue
		}
		if err := check(rawValue); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("key %q has unexpected shape: %v", key, err))
		}
	}
	return result
}

// ImportState validates raw and, only if it passes, atomically replaces every
// collection with the snapshot's contents. On validation failure the store is
// left untouched.
func (s *Store) ImportState(raw []byte) (ValidationResult, error) {
	result := ValidateState(raw)
	if !result.Valid {
		return result, errors.Newf("snapshot failed validation").
			Component("store").
			Category(errors.CategoryValidation).
			Build()
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return result, errors.New(fmt.Errorf("decoding snapshot: %w", err)).
			Component("store").
			Category(errors.CategoryValidation).
			Build()
	}

	// Build the new collections aside, then swap under the lock.
	users := make(map[string]model.User, len(snap.Users))
	for _, u := range snap.Users {
		users[u.ID] = u
	}
	cases := make(map[string]model.Case, len(snap.Cases))
	for _, c := range snap.Cases {
		cases[c.ID] = c
	}
	jailRecords := make(map[string]model.JailRecord, len(snap.JailRecords))
	for _, r := range snap.JailRecords {
		jailRecords[r.ID] = r
	}
	fines := make(map[string]model.Fine, len(snap.Fines))
	for _, f := range snap.Fines {
		fines[f.ID] = f
	}
	weapons := make(map[string]model.Weapon, len(snap.Weapons))
	for _, w := range snap.Weapons {
		weapons[w.ID] = w
	}
	tasks := make(map[string]model.Task, len(snap.Tasks))
	for _, t := range snap.Tasks {
		tasks[t.ID] = t
	}
	globalNotes := make(map[string]model.GlobalNote, len(snap.GlobalNotes))
	for _, n := range snap.GlobalNotes {
		globalNotes[n.ID] = n
	}
	userNotes := make(map[string]model.UserNote, len(snap.UserNotes))
	for _, n := range snap.UserNotes {
		userNotes[n.ID] = n
	}
	auditLogs := make(map[string]model.AuditLog, len(snap.AuditLogs))
	for _, l := range snap.AuditLogs {
		auditLogs[l.ID] = l
	}

	s.mu.Lock()
	s.users = users
	s.cases = cases
	s.jailRecords = jailRecords
	s.fines = fines
	s.cityLaws = snap.CityLaws
	s.weapons = weapons
	s.tasks = tasks
	s.globalNotes = globalNotes
	s.userNotes = userNotes
	s.auditLogs = auditLogs
	s.mu.Unlock()

	s.logger.Info("snapshot imported",
		"users", len(users), "cases", len(cases), "weapons", len(weapons))
	return result, nil
}

// ResetToSeed discards all data and restores the seed dataset.
func (s *Store) ResetToSeed() {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()
	s.logger.Warn("store reset to seed data")
}

// SaveNow writes the current state to the data file. The write goes through a
// temp file and rename so a crash mid-write never leaves a torn snapshot.
func (s *Store) SaveNow() error {
	snap := s.ExportState()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return errors.New(fmt.Errorf("encoding snapshot: %w", err)).
			Component("store").
			Category(errors.CategoryFileIO).
			Build()
	}

	dir := filepath.Dir(s.dataFile)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.New(fmt.Errorf("creating data directory %s: %w", dir, err)).
			Component("store").
			Category(errors.CategoryFileIO).
			Build()
	}

	tmp := s.dataFile + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.New(fmt.Errorf("writing snapshot: %w", err)).
			Component("store").
			Category(errors.CategoryFileIO).
			Build()
	}
	if err := os.Rename(tmp, s.dataFile); err != nil {
		return errors.New(fmt.Errorf("replacing snapshot file: %w", err)).
			Component("store").
			Category(errors.CategoryFileIO).
			Build()
	}

	s.logger.Debug("snapshot saved", "path", s.dataFile, "bytes", len(data))
	return nil
}

// Load replaces the store contents with the snapshot file, if one exists.
// A missing file is not an error; the seed data stays in place.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.dataFile)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("no snapshot file, starting from seed data", "path", s.dataFile)
			return nil
		}
		return errors.New(fmt.Errorf("reading snapshot file %s: %w", s.dataFile, err)).
			Component("store").
			Category(errors.CategoryFileIO).
			Build()
	}

	if _, err := s.ImportState(data); err != nil {
		return errors.New(fmt.Errorf("loading snapshot file %s: %w", s.dataFile, err)).
			Component("store").
			Category(errors.CategoryFileIO).
			Build()
	}
	s.logger.Info("snapshot loaded", "path", s.dataFile)
	return nil
}

// Status reports whether the snapshot file exists and its size and mtime.
func (s *Store) Status() FileStatus {
	status := FileStatus{DataFile: s.dataFile}
	info, err := os.Stat(s.dataFile)
	if err != nil {
		return status
	}
	mtime := info.ModTime()
	status.Exists = true
	status.Size = info.Size()
	status.ModTime = &mtime
	return status
}

// StartAutosave periodically saves the store until ctx is cancelled. A final
// save runs on shutdown. Does nothing when interval is not positive.
func (s *Store) StartAutosave(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.SaveNow(); err != nil {
					s.logger.Error("autosave failed", "error", err)
				}
			case <-ctx.Done():
				if err := s.SaveNow(); err != nil {
					s.logger.Error("final save failed", "error", err)
				}
				return
			}
		}
	}()
}
