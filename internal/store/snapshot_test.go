package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhodessheriff/sheriffd/internal/model"
)

func populate(t *testing.T, s *Store) {
	t.Helper()
	_, err := s.CreateCase(CaseInput{CaseNumber: "C-001", PersonName: "Micah Bell", Crime: "Mord", Status: model.CaseStatusOpen})
	require.NoError(t, err)
	_, err = s.CreateWeapon(WeaponInput{
		SerialNumber: "SN-1", WeaponType: "Revolver", Owner: "Arthur",
		Category: model.WeaponCategoryCitizen, Status: model.WeaponStatusRegistered,
	}, "sheriff")
	require.NoError(t, err)
	s.CreateJailRecord(JailRecordInput{PersonName: "Micah Bell", Crime: "Mord", DurationMinutes: 30, StartTime: time.Now(), Handler: "sheriff"})
	s.CreateFine(FineInput{Violation: "Zu schnelles Reiten", Amount: 15})
	s.SaveCityLaws("§1", "sheriff")
	s.CreateGlobalNote("Besprechung um 8", "sheriff")
}

// asJSON canonicalizes a value for comparison. Timestamps survive a snapshot
// round trip only up to their JSON representation, so deep equality on the
// structs themselves would be too strict.
func asJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newTestStore(t)
	populate(t, src)

	data, err := json.Marshal(src.ExportState())
	require.NoError(t, err)

	dst := newTestStore(t)
	result, err := dst.ImportState(data)
	require.NoError(t, err)
	assert.True(t, result.Valid)

	assert.Equal(t, asJSON(t, src.AllCases()), asJSON(t, dst.AllCases()))
	assert.Equal(t, asJSON(t, src.AllWeapons()), asJSON(t, dst.AllWeapons()))
	assert.Equal(t, asJSON(t, src.AllJailRecords()), asJSON(t, dst.AllJailRecords()))
	assert.ElementsMatch(t, src.AllFines(), dst.AllFines())

	srcLaws, _ := src.CityLaws()
	dstLaws, ok := dst.CityLaws()
	require.True(t, ok)
	assert.Equal(t, asJSON(t, srcLaws), asJSON(t, dstLaws))

	// The destination's seed user is replaced by the imported users.
	assert.ElementsMatch(t, src.AllUsers(), dst.AllUsers())
}

func TestValidateStateReportsErrorsWithoutMutating(t *testing.T) {
	s := newTestStore(t)
	populate(t, s)
	before := s.ExportState()

	result := ValidateState([]byte(`{"cases": "not-a-list", "bogus": []}`))
	assert.False(t, result.Valid)
	assert.Len(t, result.Errors, 2)

	result = ValidateState([]byte(`not json`))
	assert.False(t, result.Valid)

	result = ValidateState([]byte(`{"cases": []}`))
	assert.True(t, result.Valid, "absent keys are not an error")
	assert.Empty(t, result.Errors)

	assert.Equal(t, before, s.ExportState(), "validation never touches the store")
}

func TestImportStateRejectsInvalidDocument(t *testing.T) {
	s := newTestStore(t)
	populate(t, s)
	before := s.ExportState()

	result, err := s.ImportState([]byte(`{"weapons": 42}`))
	require.Error(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, before, s.ExportState(), "failed import leaves the store untouched")
}

func TestSaveAndLoad(t *testing.T) {
	dataFile := filepath.Join(t.TempDir(), "data", "storage.json")

	src := New(dataFile)
	populate(t, src)
	require.NoError(t, src.SaveNow())

	status := src.Status()
	assert.True(t, status.Exists)
	assert.Positive(t, status.Size)
	require.NotNil(t, status.ModTime)

	// No stray temp file left behind.
	_, err := os.Stat(dataFile + ".tmp")
	assert.True(t, os.IsNotExist(err))

	reloaded := New(dataFile)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, asJSON(t, src.AllCases()), asJSON(t, reloaded.AllCases()))
	assert.ElementsMatch(t, src.AllUsers(), reloaded.AllUsers())
}

func TestLoadMissingFileKeepsSeed(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, s.Load())

	_, ok := s.GetUserByUsername(SeedUsername)
	assert.True(t, ok)
}

func TestResetToSeed(t *testing.T) {
	s := newTestStore(t)
	populate(t, s)

	s.ResetToSeed()

	assert.Empty(t, s.AllCases())
	assert.Empty(t, s.AllWeapons())
	users := s.AllUsers()
	require.Len(t, users, 1)
	assert.Equal(t, SeedUsername, users[0].Username)
}
