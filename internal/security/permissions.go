package security

import "github.com/rhodessheriff/sheriffd/internal/model"

// Permission names one gated capability.
type Permission string

const (
	// PermDeleteRecords gates destructive deletes on cases, jail records,
	// fines, weapons and shared notes.
	PermDeleteRecords Permission = "delete-records"
	// PermAssignTasks gates task creation and transfer.
	PermAssignTasks Permission = "assign-tasks"
	// PermManageUsers gates account creation.
	PermManageUsers Permission = "manage-users"
	// PermEditLaws gates writing the city law document.
	PermEditLaws Permission = "edit-laws"
)

// permissionTable maps each permission to the ranks holding it. Ranks not
// listed are denied.
var permissionTable = map[Permission][]model.Rank{
	PermDeleteRecords: {model.RankSheriff, model.RankChiefDeputy, model.RankDeputySergeant},
	PermAssignTasks:   {model.RankSheriff, model.RankDeputySheriff, model.RankDeputySergeant},
	PermManageUsers:   {model.RankSheriff},
	PermEditLaws:      {model.RankSheriff, model.RankChiefDeputy},
}

// Allowed reports whether the given rank holds the permission. Unknown
// permissions and unknown ranks are always denied.
func Allowed(perm Permission, rank model.Rank) bool {
	for _, r := range permissionTable[perm] {
		if r == rank {
			return true
		}
	}
	return false
}
