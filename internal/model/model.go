// Package model defines the Sheriff's Office record types and their shared
// vocabularies: ranks, case/task statuses and the per-category weapon
// statuses. JSON field names follow the wire format the web client expects.
package model

import "time"

// Rank is a deputy's position in the Sheriff's Office hierarchy.
type Rank string

const (
	RankTrainee        Rank = "Trainee"
	RankDeputyJunior   Rank = "Deputy Junior"
	RankDeputySheriff  Rank = "Deputy Sheriff"
	RankDeputySenior   Rank = "Deputy Senior"
	RankDeputySergeant Rank = "Deputy Sergeant"
	RankChiefDeputy    Rank = "Chief Deputy"
	RankSheriff        Rank = "Sheriff"
)

// Ranks lists all ranks in ascending order of seniority.
var Ranks = []Rank{
	RankTrainee,
	RankDeputyJunior,
	RankDeputySheriff,
	RankDeputySenior,
	RankDeputySergeant,
	RankChiefDeputy,
	RankSheriff,
}

// ValidRank reports whether r is a known rank.
func ValidRank(r Rank) bool {
	for _, known := range Ranks {
		if r == known {
			return true
		}
	}
	return false
}

// Case statuses. German values are part of the wire format.
const (
	CaseStatusOpen       = "offen"
	CaseStatusInProgress = "in Bearbeitung"
	CaseStatusClosed     = "abgeschlossen"
)

// CaseStatuses lists the allowed case statuses.
var CaseStatuses = []string{CaseStatusOpen, CaseStatusInProgress, CaseStatusClosed}

// ValidCaseStatus reports whether status belongs to the case vocabulary.
func ValidCaseStatus(status string) bool {
	for _, s := range CaseStatuses {
		if status == s {
			return true
		}
	}
	return false
}

// Task statuses.
const (
	TaskStatusOpen       = "offen"
	TaskStatusInProgress = "in Bearbeitung"
	TaskStatusDone       = "erledigt"
)

// TaskStatuses lists the allowed task statuses.
var TaskStatuses = []string{TaskStatusOpen, TaskStatusInProgress, TaskStatusDone}

// ValidTaskStatus reports whether status belongs to the task vocabulary.
func ValidTaskStatus(status string) bool {
	for _, s := range TaskStatuses {
		if status == s {
			return true
		}
	}
	return false
}

// Weapon categories and per-category statuses. Citizen weapons move between
// registered/confiscated/lost, service weapons between issued/locker/lost.
const (
	WeaponCategoryCitizen = "Bürgerwaffe"
	WeaponCategoryService = "Dienstwaffe"

	WeaponStatusRegistered  = "registriert"
	WeaponStatusConfiscated = "eingezogen"
	WeaponStatusIssued      = "vergeben"
	WeaponStatusInLocker    = "im Waffenschrank"
	WeaponStatusLost        = "verloren gegangen"
)

// WeaponStatusesByCategory maps each category to its allowed statuses.
var WeaponStatusesByCategory = map[string][]string{
	WeaponCategoryCitizen: {WeaponStatusRegistered, WeaponStatusConfiscated, WeaponStatusLost},
	WeaponCategoryService: {WeaponStatusIssued, WeaponStatusInLocker, WeaponStatusLost},
}

// ValidWeaponStatus reports whether status is allowed for the given category.
func ValidWeaponStatus(category, status string) bool {
	for _, s := range WeaponStatusesByCategory[category] {
		if status == s {
			return true
		}
	}
	return false
}

// User is a deputy account. Password always holds a bcrypt hash.
// MustChangePassword uses 0/1 like the rest of the wire format's flags.
type User struct {
	ID                 string `json:"id"`
	Username           string `json:"username"`
	Password           string `json:"password"`
	Rank               Rank   `json:"rank"`
	MustChangePassword int    `json:"mustChangePassword"`
}

// PublicUser is the client-visible projection of a User, without the
// password hash.
type PublicUser struct {
	ID                 string `json:"id"`
	Username           string `json:"username"`
	Rank               Rank   `json:"rank"`
	MustChangePassword int    `json:"mustChangePassword"`
}

// Public strips the password hash for API responses.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:                 u.ID,
		Username:           u.Username,
		Rank:               u.Rank,
		MustChangePassword: u.MustChangePassword,
	}
}

// Case is one case file against a person.
type Case struct {
	ID              string    `json:"id"`
	CaseNumber      string    `json:"caseNumber"`
	PersonName      string    `json:"personName"`
	Crime           string    `json:"crime"`
	Status          string    `json:"status"`
	Notes           string    `json:"notes"`
	Photo           string    `json:"photo"` // data URL
	Characteristics string    `json:"characteristics"`
	Handler         string    `json:"handler"` // username of assigned deputy
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// PersonSummary aggregates every case filed against one person name. It is
// derived from the case collection, never stored.
type PersonSummary struct {
	Name            string     `json:"name"`
	Photo           string     `json:"photo,omitempty"`
	Characteristics string     `json:"characteristics,omitempty"`
	CaseCount       int        `json:"caseCount"`
	LastCrime       string     `json:"lastCrime,omitempty"`
	LastCaseDate    *time.Time `json:"lastCaseDate,omitempty"`
	Cases           []Case     `json:"cases"`
}

// JailRecord is one jail stay. Released uses 0/1.
type JailRecord struct {
	ID              string     `json:"id"`
	PersonName      string     `json:"personName"`
	Crime           string     `json:"crime"`
	DurationMinutes int        `json:"durationMinutes"`
	StartTime       time.Time  `json:"startTime"`
	Handler         string     `json:"handler"`
	Released        int        `json:"released"`
	ReleasedAt      *time.Time `json:"releasedAt"`
}

// Fine is one catalog entry of violation and amount.
type Fine struct {
	ID        string `json:"id"`
	Violation string `json:"violation"`
	Amount    int    `json:"amount"`
	Remarks   string `json:"remarks"`
}

// CityLawsID is the fixed id of the single law document.
const CityLawsID = "singleton"

// CityLaws is the city's law text, kept as a singleton document.
type CityLaws struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updatedAt"`
	UpdatedBy string    `json:"updatedBy"`
}

// Weapon is one registered weapon, either a citizen's or a service weapon.
type Weapon struct {
	ID              string    `json:"id"`
	SerialNumber    string    `json:"serialNumber"`
	WeaponType      string    `json:"weaponType"`
	Owner           string    `json:"owner"`
	Category        string    `json:"category"`
	Status          string    `json:"status"`
	StatusChangedAt time.Time `json:"statusChangedAt"`
	CreatedAt       time.Time `json:"createdAt"`
	CreatedBy       string    `json:"createdBy"`
	UpdatedAt       time.Time `json:"updatedAt"`
	UpdatedBy       string    `json:"updatedBy"`
}

// Task is a work item assigned to one deputy.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AssignedTo  string    `json:"assignedTo"` // username
	AssignedBy  string    `json:"assignedBy"` // username
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// GlobalNote is a note shared with the whole office.
type GlobalNote struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Author    string    `json:"author"` // username
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	UpdatedBy string    `json:"updatedBy"`
}

// UserNote is a note private to one user.
type UserNote struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuditLog is one entry in the append-only audit trail.
type AuditLog struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entityId"`
	Details   string    `json:"details"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}
