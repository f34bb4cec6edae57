package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/formkit-api/internal/models"
)

func setupFormTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Form{},
		&models.Question{},
		&models.FormResponse{},
		&models.QuestionResponse{},
		&models.QuizAttempt{},
	))
	return db
}

func seedForm(t *testing.T, db *gorm.DB, ownerID uint, title, status string) models.Form {
	t.Helper()
	form := models.Form{
		PublicID: fmt.Sprintf("%s-%d", strings.ToLower(strings.ReplaceAll(title, " ", "-")), ownerID),
		OwnerID:  ownerID,
		Title:    title,
		Status:   status,
	}
	require.NoError(t, db.Create(&form).Error)
	return form
}

func intPtr(v int) *int { return &v }

func uintPtr(v uint) *uint { return &v }
